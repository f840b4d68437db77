package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/felixgeelhaar/taskport/pkg/domain/activity"
)

var _ activity.Repository = (*FilesystemRepository)(nil)

// RecordEvent appends event to .taskport/activity.jsonl.
func (r *FilesystemRepository) RecordEvent(ctx context.Context, event activity.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.Initialize(); err != nil {
		return err
	}
	path, err := r.ResolvePath(ActivityFile)
	if err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	data = append(data, '\n')

	// #nosec G304 -- Path is resolved and validated via ResolvePath
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open activity file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

// LoadEvents returns the log in append order. Malformed lines are skipped.
func (r *FilesystemRepository) LoadEvents(ctx context.Context) ([]activity.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := r.ResolvePath(ActivityFile)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- Path is resolved and validated via ResolvePath
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []activity.Event{}, nil
		}
		return nil, fmt.Errorf("failed to read activity file: %w", err)
	}

	events := []activity.Event{}
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var e activity.Event
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		events = append(events, e)
	}
	return events, nil
}
