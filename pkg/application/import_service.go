package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/felixgeelhaar/taskport/pkg/domain/activity"
	"github.com/felixgeelhaar/taskport/pkg/domain/project"
	"github.com/felixgeelhaar/taskport/pkg/exchange"
)

// ImportService decodes a file, merges it into the stored collection and
// saves the result.
type ImportService struct {
	repo     project.Repository
	exchange *ExchangeService
	merger   *ImportMerger
	logger   *slog.Logger
}

func NewImportService(repo project.Repository, svc *ExchangeService, merger *ImportMerger, logger *slog.Logger) *ImportService {
	if merger == nil {
		merger = NewImportMerger()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportService{repo: repo, exchange: svc, merger: merger, logger: logger}
}

// ImportFile reads r in format and persists the merged collection. Nothing is
// saved when decoding fails.
func (s *ImportService) ImportFile(ctx context.Context, format exchange.Format, r io.Reader) (*MergeResult, error) {
	env, err := s.exchange.Import(ctx, format, r)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}

	res := s.merger.Merge(existing, env)
	if err := s.repo.Save(ctx, res.Projects); err != nil {
		return nil, fmt.Errorf("failed to save projects: %w", err)
	}

	for _, t := range res.Orphans {
		s.logger.Warn("dropped task without project", "task", t.ID, "project", t.ProjectID)
	}
	s.logger.Info("import merged",
		"format", format,
		"projects_added", res.ProjectsAdded,
		"projects_updated", res.ProjectsUpdated,
		"tasks_added", res.TasksAdded,
		"tasks_updated", res.TasksUpdated,
		"orphans", len(res.Orphans),
	)
	s.exchange.record(ctx, activity.ActionImport, format, map[string]interface{}{
		"projects_added":   res.ProjectsAdded,
		"projects_updated": res.ProjectsUpdated,
		"tasks_added":      res.TasksAdded,
		"tasks_updated":    res.TasksUpdated,
		"orphans":          len(res.Orphans),
	})
	return &res, nil
}
