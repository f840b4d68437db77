package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/taskport/pkg/exchange"
	"github.com/spf13/cobra"
)

var listJSONOutput bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects and their tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		projects, err := services.Workspace.Repo.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load projects: %w", err)
		}

		out := cmd.OutOrStdout()
		if listJSONOutput {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(projects)
		}

		if len(projects) == 0 {
			fmt.Fprintln(out, "No projects. Import a file with 'taskport import'.")
			return nil
		}
		for _, p := range projects {
			fmt.Fprintf(out, "%s  %s [%s] %d%%  %s\n",
				p.ID, p.Name, p.Status.DisplayName(), p.Progress, dateRange(p.StartDate, p.EndDate))
			for _, t := range p.Tasks {
				line := fmt.Sprintf("  - %s  %s [%s] due %s", t.ID, t.Name, t.Status.DisplayName(), exchange.FormatDate(t.DueDate))
				if len(t.AssignedTo) > 0 {
					line += " @" + strings.Join(t.AssignedTo, ", @")
				}
				fmt.Fprintln(out, line)
			}
		}
		return nil
	},
}

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List export and import formats",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := exchange.DefaultRegistry()
		importable := make(map[exchange.Format]bool)
		for _, f := range registry.ImportFormats() {
			importable[f] = true
		}

		out := cmd.OutOrStdout()
		for _, f := range registry.Formats() {
			mode := "export"
			if importable[f] {
				mode = "export, import"
			}
			fmt.Fprintf(out, "%-5s %s\n", f, mode)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listJSONOutput, "json", false, "Output in JSON format")
	RootCmd.AddCommand(listCmd)
	RootCmd.AddCommand(formatsCmd)
}
