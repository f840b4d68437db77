package cli

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/taskport/pkg/domain/project"
	"github.com/felixgeelhaar/taskport/pkg/domain/selection"
)

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	var unsupported *project.UnsupportedOperationError
	if errors.As(err, &unsupported) {
		hint := "Run 'taskport formats' to list supported formats"
		if unsupported.Operation == "import" {
			hint = "Only json and xlsx exports can be imported"
		}
		return NewCLIError(fmt.Sprintf("%s cannot %s", unsupported.Format, unsupported.Operation), hint, err)
	}

	var parseErr *project.ParseError
	if errors.As(err, &parseErr) {
		return NewCLIError(
			"could not read import file",
			fmt.Sprintf("Check that the file is an unmodified %s export", parseErr.Format),
			err,
		)
	}

	var validationErr *project.ValidationError
	if errors.As(err, &validationErr) {
		hint := "Fix the file and import it again"
		if validationErr.Field != "" {
			hint = fmt.Sprintf("Check the '%s' field and import again", validationErr.Field)
		}
		return NewCLIError("import file is invalid", hint, err)
	}

	switch {
	case errors.Is(err, selection.ErrUnknownProject):
		return NewCLIError("project not found", "Run 'taskport list' to see project IDs", err)
	case errors.Is(err, selection.ErrUnknownTask):
		return NewCLIError("task not found", "Run 'taskport list' to see task IDs", err)
	case errors.Is(err, selection.ErrAmbiguousTask):
		return NewCLIError("task ID is used by several projects", "Name the task as PROJECT/TASK", err)
	}

	return err
}
