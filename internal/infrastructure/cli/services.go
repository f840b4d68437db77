package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/taskport/internal/infrastructure/config"
	"github.com/felixgeelhaar/taskport/internal/infrastructure/wiring"
)

// logOutput receives log lines so stdout stays free for command output.
var logOutput io.Writer = os.Stderr

func getWorkspaceRoot() (string, error) {
	if workspacePath != "" {
		abs, err := filepath.Abs(workspacePath)
		if err != nil {
			return "", fmt.Errorf("invalid workspace path %q: %w", workspacePath, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return "", fmt.Errorf("workspace path %q: %w", abs, err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("workspace path %q is not a directory", abs)
		}
		return abs, nil
	}
	return os.Getwd()
}

// newLogger honours --verbose first, then the configured level.
func newLogger(root string) *slog.Logger {
	level := slog.LevelInfo
	if cfg, err := config.Load(root); err == nil {
		if l, err := config.ParseLevel(cfg.LogLevel); err == nil {
			level = l
		}
	}
	if verbose {
		level = slog.LevelDebug
	}
	return wiring.NewLogger(logOutput, level)
}

func loadServices(root string) (*wiring.AppServices, error) {
	services, err := wiring.BuildAppServices(root, newLogger(root), nil)
	if err != nil {
		return nil, NewCLIError("failed to open workspace", "Check .taskport/config.yaml or run 'taskport init'", err)
	}
	return services, nil
}

func loadServicesForCurrentDir() (*wiring.AppServices, error) {
	root, err := getWorkspaceRoot()
	if err != nil {
		return nil, err
	}
	return loadServices(root)
}
