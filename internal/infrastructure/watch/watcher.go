package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeEvent describes the last store change in a debounced burst.
type ChangeEvent struct {
	Path       string
	ChangeType string // "create", "write", "remove", "rename"
}

// StoreWatcher watches one directory and reports changes to the named store
// files. Temporary files written during a save are ignored.
type StoreWatcher struct {
	watcher  *fsnotify.Watcher
	dir      string
	files    []string
	debounce time.Duration
	onChange func(context.Context, ChangeEvent)
	logger   *slog.Logger
}

// NewStoreWatcher watches dir for changes to files. A file name also matches
// its SQLite sidecars ("-wal", "-journal").
func NewStoreWatcher(dir string, files []string, debounce time.Duration, onChange func(context.Context, ChangeEvent), logger *slog.Logger) (*StoreWatcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no store files to watch")
	}
	if debounce == 0 {
		debounce = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &StoreWatcher{
		watcher:  w,
		dir:      dir,
		files:    files,
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
	}, nil
}

// Matches reports whether path is one of the watched store files.
func (w *StoreWatcher) Matches(path string) bool {
	base := filepath.Base(path)
	if strings.HasSuffix(base, ".tmp") {
		return false
	}
	for _, f := range w.files {
		if base == f || base == f+"-wal" || base == f+"-journal" {
			return true
		}
	}
	return false
}

// Run blocks until ctx is cancelled, calling onChange once per settled burst.
func (w *StoreWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	settled := make(chan struct{}, 1)
	var last ChangeEvent
	debouncer := NewDebouncer(w.debounce, func() {
		select {
		case settled <- struct{}{}:
		default:
		}
	})
	defer debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-settled:
			w.logger.Debug("store changed", "path", last.Path, "change", last.ChangeType)
			if w.onChange != nil {
				w.onChange(ctx, last)
			}

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			changeType := opToChangeType(event.Op)
			if changeType == "" || !w.Matches(event.Name) {
				continue
			}
			last = ChangeEvent{Path: event.Name, ChangeType: changeType}
			debouncer.Trigger()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

func opToChangeType(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return "create"
	case op.Has(fsnotify.Write):
		return "write"
	case op.Has(fsnotify.Remove):
		return "remove"
	case op.Has(fsnotify.Rename):
		return "rename"
	default:
		return ""
	}
}
