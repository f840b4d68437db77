package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var (
	historyJSONOutput bool
	historyVerify     bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded exports and imports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		out := cmd.OutOrStdout()
		if historyVerify {
			violations, err := services.Activity.VerifyIntegrity(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to verify activity log: %w", err)
			}
			if len(violations) > 0 {
				for _, v := range violations {
					fmt.Fprintf(out, "  - %s\n", v)
				}
				return NewCLIError(fmt.Sprintf("activity log has %d integrity violations", len(violations)), "The log was edited outside taskport", nil)
			}
			fmt.Fprintln(out, "Activity log intact.")
			return nil
		}

		events, err := services.Activity.Timeline(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load activity log: %w", err)
		}

		if historyJSONOutput {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(events)
		}

		if len(events) == 0 {
			fmt.Fprintln(out, "No exports or imports recorded yet.")
			return nil
		}
		for _, e := range events {
			fmt.Fprintf(out, "%s  %-6s %-4s %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Action, e.Format, formatMetadata(e.Metadata))
		}
		return nil
	},
}

var deadLettersCmd = &cobra.Command{
	Use:   "dead-letters",
	Short: "Show webhook deliveries that failed every attempt",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		store, err := services.DeadLetters()
		if err != nil {
			return err
		}
		entries, err := store.ReadAll()
		if err != nil {
			return fmt.Errorf("failed to read dead letters: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "No failed webhook deliveries.")
			return nil
		}
		for _, dl := range entries {
			fmt.Fprintf(out, "%s  %s %s -> %s (%d attempts): %s\n",
				dl.Timestamp.Local().Format("2006-01-02 15:04:05"), dl.EventType, dl.EventID, dl.WebhookName, dl.Attempts, dl.Error)
		}
		return nil
	},
}

func formatMetadata(m map[string]interface{}) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, m[k]))
	}
	return strings.Join(parts, " ")
}

func init() {
	historyCmd.Flags().BoolVar(&historyJSONOutput, "json", false, "Output in JSON format")
	historyCmd.Flags().BoolVar(&historyVerify, "verify", false, "Check the hash chain instead of listing events")
	historyCmd.AddCommand(deadLettersCmd)
	RootCmd.AddCommand(historyCmd)
}
