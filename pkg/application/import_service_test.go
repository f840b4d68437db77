package application_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/felixgeelhaar/taskport/pkg/application"
	"github.com/felixgeelhaar/taskport/pkg/domain/project"
	"github.com/felixgeelhaar/taskport/pkg/exchange"
)

func newImportService(repo *MockRepo) *application.ImportService {
	return application.NewImportService(repo, newExchange(&MockDownloader{}), newMerger(), nil)
}

func TestImportService_ImportFile(t *testing.T) {
	repo := &MockRepo{Projects: sampleProjects()}
	input := `{
  "projects": [{"id": "p3", "name": "Launch", "startDate": "2025-07-01", "tasks": []}],
  "tasks": [
    {"id": "t5", "projectId": "p3", "name": "Press release"},
    {"id": "t6", "projectId": "nowhere", "name": "Lost"}
  ],
  "exportDate": "2025-06-15T09:30:00Z",
  "version": "1.0"
}`

	res, err := newImportService(repo).ImportFile(context.Background(), exchange.FormatJSON, strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}

	if res.ProjectsAdded != 1 || res.TasksAdded != 1 || len(res.Orphans) != 1 {
		t.Errorf("unexpected result %+v", res)
	}
	if repo.SaveCount != 1 || len(repo.Saved) != 3 {
		t.Fatalf("expected one save of 3 projects, got %d saves of %d", repo.SaveCount, len(repo.Saved))
	}
	launch := repo.Saved[2]
	if launch.Status != project.ProjectActive || !launch.EndDate.Equal(day(2025, 7, 1)) {
		t.Errorf("defaults not applied: %+v", launch)
	}
	if len(launch.Tasks) != 1 || launch.Tasks[0].Duration != 1 {
		t.Errorf("task defaults not applied: %+v", launch.Tasks)
	}
}

func TestImportService_NothingSavedOnDecodeError(t *testing.T) {
	repo := &MockRepo{Projects: sampleProjects()}
	svc := newImportService(repo)

	_, err := svc.ImportFile(context.Background(), exchange.FormatJSON, strings.NewReader(`{"projects": "nope"}`))
	if !errors.Is(err, project.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = svc.ImportFile(context.Background(), exchange.FormatCSV, strings.NewReader("a,b"))
	if !errors.Is(err, project.ErrUnsupported) {
		t.Fatalf("expected unsupported error, got %v", err)
	}
	if repo.SaveCount != 0 {
		t.Error("repository must not be written after a failed decode")
	}
}

func TestImportService_RepositoryErrors(t *testing.T) {
	input := `{"projects": []}`

	loadErr := errors.New("locked")
	_, err := newImportService(&MockRepo{LoadError: loadErr}).ImportFile(context.Background(), exchange.FormatJSON, strings.NewReader(input))
	if !errors.Is(err, loadErr) {
		t.Errorf("expected load error, got %v", err)
	}

	saveErr := errors.New("read-only")
	_, err = newImportService(&MockRepo{SaveError: saveErr}).ImportFile(context.Background(), exchange.FormatJSON, strings.NewReader(input))
	if !errors.Is(err, saveErr) {
		t.Errorf("expected save error, got %v", err)
	}
}
