package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/taskport/pkg/domain/project"
	"github.com/felixgeelhaar/taskport/pkg/exchange"
)

// BackupService exports the whole stored collection. The watch and schedule
// commands run it unattended.
type BackupService struct {
	repo     project.Repository
	exchange *ExchangeService
	format   exchange.Format
	kind     exchange.Kind
	logger   *slog.Logger
}

func NewBackupService(repo project.Repository, svc *ExchangeService, format exchange.Format, kind exchange.Kind, logger *slog.Logger) *BackupService {
	if logger == nil {
		logger = slog.Default()
	}
	if kind == "" {
		kind = exchange.KindProjects
	}
	return &BackupService{repo: repo, exchange: svc, format: format, kind: kind, logger: logger}
}

// Run loads every project and delivers one export file.
func (s *BackupService) Run(ctx context.Context) (Artifact, error) {
	projects, err := s.repo.Load(ctx)
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to load projects: %w", err)
	}

	a, err := s.exchange.ExportAndDownload(ctx, s.format, projects, s.kind)
	if err != nil {
		return Artifact{}, err
	}
	s.logger.Info("backup written", "file", a.Filename, "format", s.format, "projects", len(projects))
	return a, nil
}
