package storage

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/felixgeelhaar/taskport/pkg/domain/project"
)

func testProjects() []project.Project {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return []project.Project{
		{
			ID: "p1", Name: "Website", Description: "relaunch", StartDate: start, EndDate: start.AddDate(0, 3, 0),
			Status: project.ProjectActive, Progress: 40,
			Tasks: []project.Task{
				{ID: "t1", ProjectID: "p1", Name: "Design", AssignedTo: []string{"alice", "bob"}, Contacts: []string{"dave"},
					Dependencies: []string{}, StartDate: start, DueDate: start.AddDate(0, 0, 14), Duration: 14,
					Status: project.TaskInProgress, Remarks: "draft"},
				{ID: "t2", ProjectID: "p1", Name: "Build", AssignedTo: []string{}, Contacts: []string{},
					Dependencies: []string{"t1"}, StartDate: start.AddDate(0, 0, 15), DueDate: start.AddDate(0, 1, 0), Duration: 16,
					Status: project.TaskNotStarted},
			},
		},
		{
			ID: "p2", Name: "Office", StartDate: start, EndDate: start,
			Status: project.ProjectOnHold, Tasks: []project.Task{},
		},
	}
}

func TestFilesystemRepository_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	repo := NewFilesystemRepository(dir)
	ctx := context.Background()

	if repo.IsInitialized() {
		t.Fatal("fresh directory should not be initialized")
	}
	if err := repo.Save(ctx, testProjects()); err != nil {
		t.Fatal(err)
	}
	if !repo.IsInitialized() {
		t.Error("Save should create the .taskport directory")
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, testProjects()) {
		t.Errorf("round trip mismatch\n got: %+v\nwant: %+v", got, testProjects())
	}

	info, err := os.Stat(filepath.Join(dir, TaskportDir, ProjectsFile))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestFilesystemRepository_MissingFileIsEmpty(t *testing.T) {
	repo := NewFilesystemRepository(t.TempDir())

	got, err := repo.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty collection, got %#v", got)
	}
}

func TestFilesystemRepository_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	repo := NewFilesystemRepository(dir)
	if err := repo.Initialize(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(repo.Path(), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := repo.Load(context.Background()); err == nil {
		t.Error("expected error for corrupt file")
	}
}

func TestFilesystemRepository_SaveReplaces(t *testing.T) {
	repo := NewFilesystemRepository(t.TempDir())
	ctx := context.Background()

	if err := repo.Save(ctx, testProjects()); err != nil {
		t.Fatal(err)
	}
	if err := repo.Save(ctx, testProjects()[1:]); err != nil {
		t.Fatal(err)
	}
	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "p2" {
		t.Errorf("expected only p2, got %+v", got)
	}

	entries, err := os.ReadDir(filepath.Join(repo.Root(), TaskportDir))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}

func TestFilesystemRepository_ResolvePath(t *testing.T) {
	repo := NewFilesystemRepository("/work")

	path, err := repo.ResolvePath(ProjectsFile)
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join("/work", TaskportDir, ProjectsFile) {
		t.Errorf("path = %s", path)
	}

	for _, bad := range []string{"", "../secrets", "nested/projects.json", "../../etc/passwd"} {
		if _, err := repo.ResolvePath(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestFilesystemRepository_CancelledSave(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	repo := NewFilesystemRepository(t.TempDir())
	if err := repo.Save(ctx, testProjects()); err == nil {
		t.Error("expected context error")
	}
}
