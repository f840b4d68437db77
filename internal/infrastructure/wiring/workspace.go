package wiring

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/felixgeelhaar/taskport/internal/infrastructure/config"
	"github.com/felixgeelhaar/taskport/pkg/domain/project"
	"github.com/felixgeelhaar/taskport/pkg/storage"
)

// Workspace bundles the configured store of a workspace root.
type Workspace struct {
	Root   string
	Config *config.Config
	Files  *storage.FilesystemRepository
	Repo   project.Repository
	closer io.Closer
}

// NewWorkspace loads the config under root and opens the configured store.
func NewWorkspace(root string, logger *slog.Logger) (*Workspace, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	files := storage.NewFilesystemRepository(root)
	ws := &Workspace{Root: root, Config: cfg, Files: files, Repo: files}

	if cfg.Store == config.StoreSQLite {
		db, err := storage.OpenSQLite(cfg.DatabasePath(root), logger)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		ws.Repo = db
		ws.closer = db
	}
	return ws, nil
}

// StoreLocation returns the directory and file names that hold the data, for
// the watcher.
func (w *Workspace) StoreLocation() (string, []string) {
	if w.Config.Store == config.StoreSQLite {
		path := w.Config.DatabasePath(w.Root)
		return filepath.Dir(path), []string{filepath.Base(path)}
	}
	return filepath.Join(w.Root, storage.TaskportDir), []string{storage.ProjectsFile}
}

// ExportDir is where downloads land.
func (w *Workspace) ExportDir() string {
	return w.Config.ExportPath(w.Root)
}

// Close releases the store.
func (w *Workspace) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}
