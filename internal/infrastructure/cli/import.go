package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/felixgeelhaar/taskport/pkg/exchange"
	"github.com/spf13/cobra"
)

var importFormat string

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import a JSON or Excel export and merge it into the collection",
	Long: `Import reads a file produced by 'taskport export --format json' or
'--format xlsx' and merges it by ID: existing projects and tasks are
updated, new ones are added. Tasks whose project is unknown are skipped.

The format is taken from the file extension unless --format is given.
Use - as FILE to read standard input.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		var (
			format exchange.Format
			err    error
		)
		switch {
		case importFormat != "":
			format, err = exchange.ParseFormat(importFormat)
		case path == "-":
			return NewCLIError("format required for standard input", "Pass --format json or --format xlsx", nil)
		default:
			format, err = exchange.FormatFromPath(path)
		}
		if err != nil {
			return NewCLIError("invalid format", "Pass --format json or --format xlsx", err)
		}

		var r io.Reader = cmd.InOrStdin()
		if path != "-" {
			// #nosec G304 -- Path is provided by the user on the command line
			f, err := os.Open(path)
			if err != nil {
				return NewCLIError("cannot open import file", "Check the path and permissions", err)
			}
			defer f.Close()
			r = f
		}

		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		res, err := services.Import.ImportFile(cmd.Context(), format, r)
		if err != nil {
			return MapError(err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Imported %s: %d projects added, %d updated; %d tasks added, %d updated\n",
			path, res.ProjectsAdded, res.ProjectsUpdated, res.TasksAdded, res.TasksUpdated)
		if len(res.Orphans) > 0 {
			ids := make([]string, 0, len(res.Orphans))
			for _, t := range res.Orphans {
				ids = append(ids, t.ID)
			}
			fmt.Fprintf(out, "Skipped %d tasks with unknown project: %s\n", len(ids), strings.Join(ids, ", "))
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "Input format: json or xlsx (default: from file extension)")
	RootCmd.AddCommand(importCmd)
}
