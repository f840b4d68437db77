package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/felixgeelhaar/taskport/pkg/domain/project"
	"github.com/felixgeelhaar/taskport/pkg/domain/selection"
)

func TestCLIError(t *testing.T) {
	t.Run("Error with cause", func(t *testing.T) {
		cause := errors.New("root cause")
		e := NewCLIError("something failed", "try this", cause)
		if e.Error() != "something failed: root cause" {
			t.Fatalf("unexpected: %s", e.Error())
		}
		if e.ExitCode != 1 {
			t.Fatalf("expected exit code 1, got %d", e.ExitCode)
		}
	})

	t.Run("Error without cause", func(t *testing.T) {
		e := NewCLIError("something failed", "try this", nil)
		if e.Error() != "something failed" {
			t.Fatalf("unexpected: %s", e.Error())
		}
	})

	t.Run("Unwrap returns cause", func(t *testing.T) {
		cause := errors.New("root")
		e := NewCLIError("msg", "", cause)
		if !errors.Is(e, cause) {
			t.Fatal("errors.Is should match wrapped cause")
		}
	})
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantHint string
		wantCLI  bool
	}{
		{
			name: "nil returns nil",
			err:  nil,
		},
		{
			name:     "ParseError",
			err:      fmt.Errorf("decode: %w", &project.ParseError{Format: "json", Field: "startDate", Record: "p1"}),
			wantHint: "Check that the file is an unmodified json export",
			wantCLI:  true,
		},
		{
			name:     "ValidationError with field",
			err:      &project.ValidationError{Format: "json", Field: "projects", Reason: "missing"},
			wantHint: "Check the 'projects' field and import again",
			wantCLI:  true,
		},
		{
			name:     "ValidationError without field",
			err:      &project.ValidationError{Format: "xlsx", Reason: "no Projects sheet"},
			wantHint: "Fix the file and import it again",
			wantCLI:  true,
		},
		{
			name:     "import unsupported",
			err:      &project.UnsupportedOperationError{Format: "pdf", Operation: "import"},
			wantHint: "Only json and xlsx exports can be imported",
			wantCLI:  true,
		},
		{
			name:     "export unsupported",
			err:      &project.UnsupportedOperationError{Format: "odt", Operation: "export"},
			wantHint: "Run 'taskport formats' to list supported formats",
			wantCLI:  true,
		},
		{
			name:     "unknown project",
			err:      fmt.Errorf("%w: p9", selection.ErrUnknownProject),
			wantHint: "Run 'taskport list' to see project IDs",
			wantCLI:  true,
		},
		{
			name:     "unknown task",
			err:      fmt.Errorf("%w: t9", selection.ErrUnknownTask),
			wantHint: "Run 'taskport list' to see task IDs",
			wantCLI:  true,
		},
		{
			name:     "ambiguous task",
			err:      fmt.Errorf("%w: t1", selection.ErrAmbiguousTask),
			wantHint: "Name the task as PROJECT/TASK",
			wantCLI:  true,
		},
		{
			name: "unmapped error passes through",
			err:  errors.New("something else"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if tt.err == nil {
				if got != nil {
					t.Fatalf("expected nil, got %v", got)
				}
				return
			}

			var cliErr *CLIError
			isCLI := errors.As(got, &cliErr)
			if isCLI != tt.wantCLI {
				t.Fatalf("expected CLIError=%v, got %T", tt.wantCLI, got)
			}
			if !tt.wantCLI {
				if got != tt.err {
					t.Fatalf("expected passthrough, got %v", got)
				}
				return
			}
			if cliErr.Hint != tt.wantHint {
				t.Errorf("hint = %q, want %q", cliErr.Hint, tt.wantHint)
			}
			if !errors.Is(got, tt.err) {
				t.Error("mapped error should wrap the original")
			}
		})
	}
}

func TestMapErrorKeepsCLIError(t *testing.T) {
	orig := NewCLIError("already mapped", "hint", nil)
	if got := MapError(orig); got != error(orig) {
		t.Fatalf("expected the same CLIError, got %v", got)
	}
}
