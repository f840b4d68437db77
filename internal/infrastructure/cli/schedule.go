package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/taskport/internal/infrastructure/schedule"
	"github.com/spf13/cobra"
)

var (
	scheduleCron   string
	scheduleFormat string
	scheduleKind   string
	scheduleDryRun bool
	scheduleCount  int
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Export backups on a cron schedule",
	Long: `Schedule runs in the foreground and exports the collection on a cron
schedule. The expression has six fields (seconds first) or is a descriptor
such as @daily. Use --dry-run to print the next run times and exit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		spec := scheduleCron
		if spec == "" {
			spec = services.Workspace.Config.Schedule.Cron
		}
		if err := schedule.Validate(spec); err != nil {
			return NewCLIError("invalid cron expression", "Use six fields, e.g. '0 0 2 * * *', or a descriptor like @daily", err)
		}

		out := cmd.OutOrStdout()
		if scheduleDryRun {
			runs, err := schedule.NextRuns(spec, time.Now(), scheduleCount)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Next runs for %q:\n", spec)
			for _, t := range runs {
				fmt.Fprintf(out, "  %s\n", t.Format(time.RFC3339))
			}
			return nil
		}

		backup, err := backupFromFlags(services, scheduleFormat, scheduleKind)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		s := schedule.NewScheduler(time.Local, services.Logger)
		if _, err := s.Add(ctx, "backup", spec, func(ctx context.Context) error {
			a, err := backup.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Exported %s\n", a.Filename)
			return nil
		}); err != nil {
			return err
		}

		fmt.Fprintf(out, "Scheduled backups on %q (Ctrl+C to stop)\n", spec)
		if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleCron, "cron", "", "Cron expression (default from config)")
	scheduleCmd.Flags().StringVarP(&scheduleFormat, "format", "f", "", "Backup format (default from config)")
	scheduleCmd.Flags().StringVarP(&scheduleKind, "kind", "k", "", "Backup kind (default from config)")
	scheduleCmd.Flags().BoolVar(&scheduleDryRun, "dry-run", false, "Print the next run times and exit")
	scheduleCmd.Flags().IntVar(&scheduleCount, "count", 5, "Number of run times printed by --dry-run")
	RootCmd.AddCommand(scheduleCmd)
}
