package wiring

import (
	"log/slog"

	"github.com/felixgeelhaar/taskport/internal/infrastructure/config"
	"github.com/felixgeelhaar/taskport/internal/infrastructure/webhook"
	"github.com/felixgeelhaar/taskport/pkg/application"
	"github.com/felixgeelhaar/taskport/pkg/domain/activity"
	"github.com/felixgeelhaar/taskport/pkg/exchange"
	"github.com/felixgeelhaar/taskport/pkg/infrastructure/download"
	"github.com/felixgeelhaar/taskport/pkg/storage"
)

// AppServices exposes the application layer services wired together with a workspace.
type AppServices struct {
	Workspace *Workspace
	Exchange  *application.ExchangeService
	Import    *application.ImportService
	Activity  *application.ActivityService
	Notifier  *webhook.Notifier // nil without configured webhooks
	Logger    *slog.Logger
}

// BuildAppServices opens the workspace at root. Exports are saved to the
// configured export directory unless downloader overrides it.
func BuildAppServices(root string, logger *slog.Logger, downloader download.Downloader) (*AppServices, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ws, err := NewWorkspace(root, logger)
	if err != nil {
		return nil, err
	}
	if downloader == nil {
		downloader = download.NewDirDownloader(ws.ExportDir(), logger)
	}

	var sinks []activity.Sink
	notifier, err := newNotifier(ws, logger)
	if err != nil {
		_ = ws.Close()
		return nil, err
	}
	if notifier != nil {
		sinks = append(sinks, notifier)
	}
	activitySvc := application.NewActivityService(ws.Files, sinks...)

	exchangeSvc := application.NewExchangeService(exchange.DefaultRegistry(), downloader,
		application.WithLogger(logger),
		application.WithActivity(activitySvc),
	)
	importSvc := application.NewImportService(ws.Repo, exchangeSvc, application.NewImportMerger(), logger)

	return &AppServices{
		Workspace: ws,
		Exchange:  exchangeSvc,
		Import:    importSvc,
		Activity:  activitySvc,
		Notifier:  notifier,
		Logger:    logger,
	}, nil
}

func newNotifier(ws *Workspace, logger *slog.Logger) (*webhook.Notifier, error) {
	if len(ws.Config.Webhooks) == 0 {
		return nil, nil
	}
	path, err := ws.Files.ResolvePath(storage.DeadLetterFile)
	if err != nil {
		return nil, err
	}
	return webhook.NewNotifier(toEndpoints(ws.Config.Webhooks), webhook.NewDeadLetterStore(path), logger), nil
}

func toEndpoints(hooks []config.WebhookConfig) []webhook.Endpoint {
	endpoints := make([]webhook.Endpoint, 0, len(hooks))
	for _, h := range hooks {
		endpoints = append(endpoints, webhook.Endpoint{
			Name:       h.Name,
			URL:        h.URL,
			Secret:     h.Secret,
			Events:     h.Events,
			MaxRetries: h.MaxRetries,
			RetryDelay: h.RetryDelay,
		})
	}
	return endpoints
}

// DeadLetters returns the dead letter store of the workspace.
func (s *AppServices) DeadLetters() (*webhook.DeadLetterStore, error) {
	path, err := s.Workspace.Files.ResolvePath(storage.DeadLetterFile)
	if err != nil {
		return nil, err
	}
	return webhook.NewDeadLetterStore(path), nil
}

// Backup returns a backup service for format and kind.
func (s *AppServices) Backup(format exchange.Format, kind exchange.Kind) *application.BackupService {
	return application.NewBackupService(s.Workspace.Repo, s.Exchange, format, kind, s.Logger)
}

// Close waits for pending webhook deliveries and releases the workspace store.
func (s *AppServices) Close() error {
	if s.Notifier != nil {
		s.Notifier.Wait()
	}
	return s.Workspace.Close()
}
