package wiring

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/felixgeelhaar/taskport/internal/infrastructure/config"
	"github.com/felixgeelhaar/taskport/pkg/domain/project"
	"github.com/felixgeelhaar/taskport/pkg/exchange"
	"github.com/felixgeelhaar/taskport/pkg/storage"
)

func TestNewWorkspaceDefaultsToFileStore(t *testing.T) {
	tempDir := t.TempDir()
	ws, err := NewWorkspace(tempDir, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Close()

	if _, ok := ws.Repo.(*storage.FilesystemRepository); !ok {
		t.Fatalf("expected filesystem repository, got %T", ws.Repo)
	}
	dir, files := ws.StoreLocation()
	if dir != filepath.Join(tempDir, ".taskport") || files[0] != "projects.json" {
		t.Errorf("StoreLocation = %s %v", dir, files)
	}
	if ws.ExportDir() != filepath.Join(tempDir, "exports") {
		t.Errorf("ExportDir = %s", ws.ExportDir())
	}
}

func TestNewWorkspaceSQLite(t *testing.T) {
	tempDir := t.TempDir()
	cfg := config.Default()
	cfg.Store = config.StoreSQLite
	if err := config.Save(tempDir, cfg); err != nil {
		t.Fatal(err)
	}

	ws, err := NewWorkspace(tempDir, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Close()

	if _, ok := ws.Repo.(*storage.SQLiteRepository); !ok {
		t.Fatalf("expected sqlite repository, got %T", ws.Repo)
	}
	if err := ws.Repo.Save(context.Background(), []project.Project{{ID: "p1", Tasks: []project.Task{}}}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(tempDir, ".taskport", "taskport.db")); err != nil {
		t.Errorf("database file missing: %v", err)
	}
	_, files := ws.StoreLocation()
	if files[0] != "taskport.db" {
		t.Errorf("files = %v", files)
	}
}

func TestBuildAppServicesExportsToConfiguredDir(t *testing.T) {
	tempDir := t.TempDir()
	var logs bytes.Buffer
	svc, err := BuildAppServices(tempDir, NewLogger(&logs, slog.LevelInfo), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer svc.Close()

	if err := svc.Workspace.Repo.Save(context.Background(), []project.Project{{ID: "p1", Name: "A", Tasks: []project.Task{}}}); err != nil {
		t.Fatal(err)
	}
	a, err := svc.Backup(exchange.FormatJSON, exchange.KindProjects).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(tempDir, "exports", a.Filename)); err != nil {
		t.Errorf("export not written: %v", err)
	}
	if !strings.Contains(logs.String(), "backup written") {
		t.Errorf("expected backup log line, got %q", logs.String())
	}
}

func TestBuildAppServicesBadConfig(t *testing.T) {
	t.Setenv(config.EnvStore, "mongo")
	if _, err := BuildAppServices(t.TempDir(), nil, nil); err == nil {
		t.Fatal("expected error for unknown store")
	}
}

func TestBuildAppServicesRecordsActivityAndNotifies(t *testing.T) {
	var received atomic.Int32
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer hook.Close()

	tempDir := t.TempDir()
	cfg := config.Default()
	cfg.Webhooks = []config.WebhookConfig{{Name: "test", URL: hook.URL, Events: []string{"export"}}}
	if err := config.Save(tempDir, cfg); err != nil {
		t.Fatal(err)
	}

	svc, err := BuildAppServices(tempDir, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if svc.Notifier == nil {
		t.Fatal("expected notifier for configured webhook")
	}

	ctx := context.Background()
	if _, err := svc.Backup(exchange.FormatCSV, exchange.KindTasks).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if err := svc.Close(); err != nil {
		t.Fatal(err)
	}

	if received.Load() != 1 {
		t.Errorf("expected 1 webhook delivery, got %d", received.Load())
	}
	events, err := svc.Activity.Timeline(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Action != "export" || events[0].Format != "csv" {
		t.Errorf("unexpected timeline %+v", events)
	}
	if _, err := os.Stat(filepath.Join(tempDir, ".taskport", "activity.jsonl")); err != nil {
		t.Errorf("activity log missing: %v", err)
	}
}
