package cli

import (
	"fmt"

	"github.com/felixgeelhaar/taskport/internal/infrastructure/config"
	"github.com/felixgeelhaar/taskport/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/taskport/pkg/domain/project"
	"github.com/felixgeelhaar/taskport/pkg/storage"
	"github.com/spf13/cobra"
)

var initStore string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a taskport workspace in the current directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getWorkspaceRoot()
		if err != nil {
			return err
		}

		if storage.NewFilesystemRepository(root).IsInitialized() {
			return NewCLIError("workspace already initialized", "Remove .taskport/ to start over", nil)
		}

		cfg := config.Default()
		cfg.Store = initStore
		if err := cfg.Validate(); err != nil {
			return NewCLIError("invalid store", "Use --store file or --store sqlite", err)
		}
		if err := config.Save(root, cfg); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}

		ws, err := wiring.NewWorkspace(root, newLogger(root))
		if err != nil {
			return err
		}
		defer ws.Close()

		if err := ws.Repo.Save(cmd.Context(), []project.Project{}); err != nil {
			return fmt.Errorf("failed to create store: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Initialized taskport workspace in %s (%s store)\n", root, cfg.Store)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initStore, "store", config.StoreFile, "Storage backend: file or sqlite")
	RootCmd.AddCommand(initCmd)
}
