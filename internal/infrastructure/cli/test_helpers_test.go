package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/taskport/pkg/domain/project"
	"github.com/felixgeelhaar/taskport/pkg/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// runCLI executes the root command against workspace dir and returns stdout.
func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	return runCLIWithInput(t, dir, "", args...)
}

func runCLIWithInput(t *testing.T, dir, input string, args ...string) (string, error) {
	t.Helper()

	resetFlags()
	logOutput = io.Discard

	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(io.Discard)
	RootCmd.SetIn(strings.NewReader(input))
	RootCmd.SetArgs(append([]string{"-w", dir}, args...))

	err := RootCmd.Execute()
	return out.String(), err
}

// resetFlags restores every flag to its default; cobra keeps parsed values
// between Execute calls.
func resetFlags() {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	RootCmd.PersistentFlags().VisitAll(reset)
	for _, c := range append([]*cobra.Command{RootCmd}, RootCmd.Commands()...) {
		c.Flags().VisitAll(reset)
	}
}

func sampleProjects() []project.Project {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return []project.Project{
		{
			ID: "p1", Name: "Website Relaunch", StartDate: start, EndDate: start.AddDate(0, 3, 0),
			Status: project.ProjectActive, Progress: 40,
			Tasks: []project.Task{
				{
					ID: "t1", ProjectID: "p1", Name: "Design mockups", AssignedTo: []string{"alice", "bob"},
					Contacts: []string{}, Dependencies: []string{},
					StartDate: start, DueDate: start.AddDate(0, 0, 5), Duration: 5, Status: project.TaskCompleted,
				},
				{
					ID: "t2", ProjectID: "p1", Name: "Build pages", AssignedTo: []string{},
					Contacts: []string{}, Dependencies: []string{"t1"},
					StartDate: start.AddDate(0, 0, 5), DueDate: start.AddDate(0, 0, 15), Duration: 10, Status: project.TaskInProgress,
				},
			},
		},
		{
			ID: "p2", Name: "Office Move", StartDate: start, EndDate: start.AddDate(0, 1, 0),
			Status: project.ProjectOnHold, Tasks: []project.Task{},
		},
	}
}

// seedWorkspace creates a file-store workspace holding the sample projects.
func seedWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := storage.NewFilesystemRepository(dir).Save(context.Background(), sampleProjects()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return dir
}

func loadProjects(t *testing.T, dir string) []project.Project {
	t.Helper()
	projects, err := storage.NewFilesystemRepository(dir).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return projects
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
