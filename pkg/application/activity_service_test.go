package application_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/felixgeelhaar/taskport/pkg/application"
	"github.com/felixgeelhaar/taskport/pkg/domain/activity"
	"github.com/felixgeelhaar/taskport/pkg/exchange"
	"github.com/felixgeelhaar/taskport/pkg/storage"
)

func TestActivityService_LogChainsEvents(t *testing.T) {
	repo := &MockEventRepo{}
	sink := &MockSink{}
	service := application.NewActivityService(repo, sink)
	service.SetClock(clock)
	ctx := context.Background()

	if err := service.Log(ctx, activity.ActionExport, "csv", map[string]interface{}{"projects": 2}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if err := service.Log(ctx, activity.ActionImport, "json", nil); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	if len(repo.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(repo.Events))
	}
	first, second := repo.Events[0], repo.Events[1]
	if first.PrevHash != "" || second.PrevHash != first.Hash {
		t.Error("events are not chained")
	}
	if first.ID == "" || first.ID == second.ID {
		t.Error("expected unique event IDs")
	}
	if !first.Timestamp.Equal(fixedNow) || first.Format != "csv" {
		t.Errorf("unexpected event %+v", first)
	}
	if len(sink.Published) != 2 || sink.Published[1].Hash != second.Hash {
		t.Errorf("sink received %+v", sink.Published)
	}

	violations, err := service.VerifyIntegrity(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(violations) != 0 {
		t.Errorf("unexpected violations %v", violations)
	}
}

func TestActivityService_Errors(t *testing.T) {
	ctx := context.Background()

	service := application.NewActivityService(&MockEventRepo{RecordError: errors.New("disk full")})
	if err := service.Log(ctx, activity.ActionExport, "pdf", nil); err == nil {
		t.Error("expected error on record failure")
	}

	service = application.NewActivityService(&MockEventRepo{LoadError: errors.New("locked")})
	if err := service.Log(ctx, activity.ActionExport, "pdf", nil); err == nil {
		t.Error("expected error on load failure")
	}
}

func TestActivityService_VerifyIntegrityDetectsTampering(t *testing.T) {
	repo := &MockEventRepo{}
	service := application.NewActivityService(repo)
	ctx := context.Background()

	for _, f := range []string{"json", "xlsx", "csv"} {
		if err := service.Log(ctx, activity.ActionExport, f, nil); err != nil {
			t.Fatal(err)
		}
	}
	repo.Events[1].Format = "pdf"

	violations, err := service.VerifyIntegrity(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(violations) != 1 || !strings.Contains(violations[0], "event 1") {
		t.Fatalf("expected one violation for event 1, got %v", violations)
	}

	repo.Events = repo.Events[:1]
	repo.Events = append(repo.Events, activity.Event{ID: "x", PrevHash: "bogus"})
	violations, _ = service.VerifyIntegrity(ctx)
	if len(violations) != 2 {
		t.Errorf("expected broken link and bad hash, got %v", violations)
	}
}

func TestExchangeService_RecordsDeliveredExports(t *testing.T) {
	repo := &MockEventRepo{}
	dl := &MockDownloader{}
	svc := application.NewExchangeService(exchange.DefaultRegistry(), dl,
		application.WithClock(clock), application.WithActivity(application.NewActivityService(repo)))
	ctx := context.Background()

	a, err := svc.ExportAndDownload(ctx, exchange.FormatCSV, sampleProjects(), exchange.KindTasks)
	if err != nil {
		t.Fatal(err)
	}
	if len(repo.Events) != 1 {
		t.Fatalf("expected one event, got %d", len(repo.Events))
	}
	e := repo.Events[0]
	if e.Action != activity.ActionExport || e.Format != "csv" || e.Metadata["filename"] != a.Filename || e.Metadata["kind"] != "tasks" {
		t.Errorf("unexpected event %+v", e)
	}

	// Rendering without delivery is not recorded.
	if _, err := svc.ExportToJSON(ctx, sampleProjects()); err != nil {
		t.Fatal(err)
	}
	dl.Err = errors.New("disk full")
	if _, err := svc.ExportAndDownload(ctx, exchange.FormatJSON, sampleProjects(), ""); err == nil {
		t.Fatal("expected download error")
	}
	if len(repo.Events) != 1 {
		t.Errorf("expected only delivered exports recorded, got %d", len(repo.Events))
	}
}

func TestExchangeService_ActivityFailureDoesNotFailExport(t *testing.T) {
	repo := &MockEventRepo{RecordError: errors.New("read-only")}
	dl := &MockDownloader{}
	svc := application.NewExchangeService(nil, dl, application.WithActivity(application.NewActivityService(repo)))

	if _, err := svc.ExportAndDownload(context.Background(), exchange.FormatJSON, sampleProjects(), ""); err != nil {
		t.Fatalf("export should succeed, got %v", err)
	}
	if dl.Calls != 1 {
		t.Error("file not delivered")
	}
}

func TestImportService_RecordsImport(t *testing.T) {
	dir := t.TempDir()
	files := storage.NewFilesystemRepository(dir)
	activitySvc := application.NewActivityService(files)
	svc := application.NewExchangeService(nil, nil, application.WithActivity(activitySvc))
	importer := application.NewImportService(&MockRepo{Projects: sampleProjects()}, svc, application.NewImportMerger(), nil)
	ctx := context.Background()

	body := `{"projects": [{"id": "p3", "name": "Launch"}], "tasks": [{"id": "t9", "projectId": "ghost"}]}`
	if _, err := importer.ImportFile(ctx, exchange.FormatJSON, strings.NewReader(body)); err != nil {
		t.Fatal(err)
	}

	events, err := activitySvc.Timeline(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Action != activity.ActionImport || events[0].Format != "json" {
		t.Fatalf("unexpected timeline %+v", events)
	}
	// Counts come back from JSON as float64.
	if events[0].Metadata["projects_added"] != float64(1) || events[0].Metadata["orphans"] != float64(1) {
		t.Errorf("unexpected metadata %v", events[0].Metadata)
	}

	if _, err := importer.ImportFile(ctx, exchange.FormatJSON, strings.NewReader("{")); err == nil {
		t.Fatal("expected parse error")
	}
	events, _ = activitySvc.Timeline(ctx)
	if len(events) != 1 {
		t.Error("failed import must not be recorded")
	}
}
