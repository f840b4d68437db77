package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/taskport/pkg/domain/activity"
	"github.com/felixgeelhaar/taskport/pkg/domain/project"
	"github.com/felixgeelhaar/taskport/pkg/exchange"
	"github.com/felixgeelhaar/taskport/pkg/infrastructure/download"
)

// Artifact is a rendered export file.
type Artifact struct {
	Format   exchange.Format
	Filename string
	MIMEType string
	Content  []byte
}

// ExchangeService renders and reads project files through the codec registry.
// Errors from codecs and the downloader are returned unchanged.
type ExchangeService struct {
	registry   *exchange.Registry
	downloader download.Downloader
	now        func() time.Time
	logger     *slog.Logger
	recorder   activity.Logger
}

// ExchangeOption configures an ExchangeService.
type ExchangeOption func(*ExchangeService)

// WithClock overrides the clock used for export dates and filenames.
func WithClock(now func() time.Time) ExchangeOption {
	return func(s *ExchangeService) { s.now = now }
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) ExchangeOption {
	return func(s *ExchangeService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithActivity records every delivered export and merged import.
func WithActivity(l activity.Logger) ExchangeOption {
	return func(s *ExchangeService) { s.recorder = l }
}

func NewExchangeService(registry *exchange.Registry, downloader download.Downloader, opts ...ExchangeOption) *ExchangeService {
	if registry == nil {
		registry = exchange.DefaultRegistry()
	}
	s := &ExchangeService{
		registry:   registry,
		downloader: downloader,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry exposes the codec registry.
func (s *ExchangeService) Registry() *exchange.Registry {
	return s.registry
}

// Now returns the service clock reading.
func (s *ExchangeService) Now() time.Time {
	return s.now()
}

// Export renders projects in any registered format without delivering them.
func (s *ExchangeService) Export(ctx context.Context, format exchange.Format, projects []project.Project, kind exchange.Kind) (Artifact, error) {
	codec, ok := s.registry.Lookup(format)
	if !ok || codec.Encoder == nil {
		return Artifact{}, &project.UnsupportedOperationError{Format: string(format), Operation: "export"}
	}
	if kind == "" {
		kind = exchange.KindProjects
	}

	at := s.now()
	content, err := codec.Encoder.Encode(ctx, projects, kind, at)
	if err != nil {
		s.logger.Error("export failed", "format", format, "kind", kind, "error", err)
		return Artifact{}, err
	}

	s.logger.Debug("export rendered", "format", format, "kind", kind, "projects", len(projects), "bytes", len(content))
	return Artifact{
		Format:   format,
		Filename: exchange.Filename(kind, codec.Extension, at),
		MIMEType: codec.MIMEType,
		Content:  content,
	}, nil
}

// ExportAndDownload renders projects and hands the file to the downloader.
func (s *ExchangeService) ExportAndDownload(ctx context.Context, format exchange.Format, projects []project.Project, kind exchange.Kind) (Artifact, error) {
	a, err := s.Export(ctx, format, projects, kind)
	if err != nil {
		return Artifact{}, err
	}
	if err := s.DownloadFile(ctx, a.Content, a.Filename, a.MIMEType); err != nil {
		return Artifact{}, err
	}
	if kind == "" {
		kind = exchange.KindProjects
	}
	s.record(ctx, activity.ActionExport, format, map[string]interface{}{
		"filename": a.Filename,
		"kind":     string(kind),
		"projects": len(projects),
		"bytes":    len(a.Content),
	})
	return a, nil
}

// ExportToJSON returns the JSON envelope as text.
func (s *ExchangeService) ExportToJSON(ctx context.Context, projects []project.Project) (string, error) {
	a, err := s.Export(ctx, exchange.FormatJSON, projects, exchange.KindProjects)
	if err != nil {
		return "", err
	}
	return string(a.Content), nil
}

// ExportToCSV returns the CSV table for kind as text.
func (s *ExchangeService) ExportToCSV(ctx context.Context, projects []project.Project, kind exchange.Kind) (string, error) {
	a, err := s.Export(ctx, exchange.FormatCSV, projects, kind)
	if err != nil {
		return "", err
	}
	return string(a.Content), nil
}

// ExportToExcel returns the two-sheet workbook.
func (s *ExchangeService) ExportToExcel(ctx context.Context, projects []project.Project) ([]byte, error) {
	a, err := s.Export(ctx, exchange.FormatExcel, projects, exchange.KindProjects)
	if err != nil {
		return nil, err
	}
	return a.Content, nil
}

// ExportToPDF renders the report and downloads it.
func (s *ExchangeService) ExportToPDF(ctx context.Context, projects []project.Project, kind exchange.Kind) error {
	_, err := s.ExportAndDownload(ctx, exchange.FormatPDF, projects, kind)
	return err
}

// ExportToWord renders the report and downloads it.
func (s *ExchangeService) ExportToWord(ctx context.Context, projects []project.Project, kind exchange.Kind) error {
	_, err := s.ExportAndDownload(ctx, exchange.FormatWord, projects, kind)
	return err
}

// Import decodes r in the given format.
func (s *ExchangeService) Import(ctx context.Context, format exchange.Format, r io.Reader) (*exchange.Envelope, error) {
	env, err := s.registry.Decode(ctx, format, r)
	if err != nil {
		s.logger.Warn("import failed", "format", format, "error", err)
		return nil, err
	}
	s.logger.Debug("import decoded", "format", format, "projects", len(env.Projects), "tasks", len(env.Tasks))
	return env, nil
}

func (s *ExchangeService) ImportFromJSON(ctx context.Context, r io.Reader) (*exchange.Envelope, error) {
	return s.Import(ctx, exchange.FormatJSON, r)
}

func (s *ExchangeService) ImportFromExcel(ctx context.Context, r io.Reader) (*exchange.Envelope, error) {
	return s.Import(ctx, exchange.FormatExcel, r)
}

// DownloadFile delivers bytes through the configured downloader.
func (s *ExchangeService) DownloadFile(ctx context.Context, content []byte, filename, mimeType string) error {
	if s.downloader == nil {
		return fmt.Errorf("no downloader configured for %s", filename)
	}
	if err := s.downloader.Download(ctx, content, filename, mimeType); err != nil {
		s.logger.Error("download failed", "file", filename, "error", err)
		return err
	}
	return nil
}

// WithDownloader returns a copy of the service that delivers through d. The
// HTTP server uses it to bind a response writer per request.
func (s *ExchangeService) WithDownloader(d download.Downloader) *ExchangeService {
	cp := *s
	cp.downloader = d
	return &cp
}

// record logs to the activity log when one is configured. A failure is only
// logged; the file has already been delivered.
func (s *ExchangeService) record(ctx context.Context, action string, format exchange.Format, metadata map[string]interface{}) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Log(ctx, action, string(format), metadata); err != nil {
		s.logger.Warn("failed to record activity", "action", action, "format", format, "error", err)
	}
}
