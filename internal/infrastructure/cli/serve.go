package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/taskport/pkg/infrastructure/dashboard"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the project dashboard with export and import endpoints",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		addr := serveAddr
		if addr == "" {
			addr = services.Workspace.Config.Serve.Addr
		}

		server, err := dashboard.NewServer(addr, services.Workspace.Repo, services.Exchange, services.Import, services.Logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start()
		}()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Dashboard running at http://%s\n", addr)
		fmt.Fprintln(out, "Endpoints:")
		fmt.Fprintf(out, "  GET  http://%s/export/{format}?kind=&project=&task=\n", addr)
		fmt.Fprintf(out, "  POST http://%s/import/{format}\n", addr)
		fmt.Fprintln(out, "\nPress Ctrl+C to stop")

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		case <-ctx.Done():
			fmt.Fprintln(out, "\nShutting down dashboard...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
	RootCmd.AddCommand(serveCmd)
}
