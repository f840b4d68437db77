package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/taskport/internal/infrastructure/watch"
	"github.com/felixgeelhaar/taskport/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/taskport/pkg/application"
	"github.com/spf13/cobra"
)

var (
	watchFormat   string
	watchKind     string
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Export a fresh backup whenever the project store changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		if !services.Workspace.Files.IsInitialized() {
			return NewCLIError("workspace not initialized", "Run 'taskport init' first", nil)
		}

		backup, err := backupFromFlags(services, watchFormat, watchKind)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		dir, files := services.Workspace.StoreLocation()
		w, err := watch.NewStoreWatcher(dir, files, watchDebounce, func(ctx context.Context, ev watch.ChangeEvent) {
			a, err := backup.Run(ctx)
			if err != nil {
				services.Logger.Error("backup failed", "trigger", ev.Path, "error", err)
				return
			}
			fmt.Fprintf(out, "%s %s, exported %s\n", ev.Path, ev.ChangeType, a.Filename)
		}, services.Logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(out, "Watching %s for changes... (Ctrl+C to stop)\n", dir)
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

// backupFromFlags falls back to the configured schedule format and kind.
func backupFromFlags(services *wiring.AppServices, formatFlag, kindFlag string) (*application.BackupService, error) {
	cfg := services.Workspace.Config
	if formatFlag == "" {
		formatFlag = cfg.Schedule.Format
	}
	if kindFlag == "" {
		kindFlag = cfg.Schedule.Kind
	}
	format, kind, err := parseExportFlags(formatFlag, kindFlag)
	if err != nil {
		return nil, err
	}
	return services.Backup(format, kind), nil
}

func init() {
	watchCmd.Flags().StringVarP(&watchFormat, "format", "f", "", "Backup format (default from config)")
	watchCmd.Flags().StringVarP(&watchKind, "kind", "k", "", "Backup kind (default from config)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "Quiet period before a change triggers a backup")
	RootCmd.AddCommand(watchCmd)
}
