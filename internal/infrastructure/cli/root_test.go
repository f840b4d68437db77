package cli

import (
	"strings"
	"testing"
)

func TestExecuteHelp(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "--help")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	for _, sub := range []string{"export", "import", "select", "serve", "watch", "schedule", "history", "formats", "list", "init"} {
		if !strings.Contains(out, sub) {
			t.Errorf("help output missing %q", sub)
		}
	}
}

func TestInvalidWorkspacePath(t *testing.T) {
	if _, err := runCLI(t, "/does/not/exist", "list"); err == nil {
		t.Fatal("expected error for missing workspace")
	}
}
