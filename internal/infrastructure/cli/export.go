package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/felixgeelhaar/taskport/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/taskport/pkg/application"
	"github.com/felixgeelhaar/taskport/pkg/domain/project"
	"github.com/felixgeelhaar/taskport/pkg/exchange"
	"github.com/felixgeelhaar/taskport/pkg/infrastructure/download"
	"github.com/spf13/cobra"
)

var (
	exportFormat   string
	exportKind     string
	exportProjects []string
	exportTasks    []string
	exportOut      string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export projects or tasks to a file",
	Long: `Export writes the collection, or the projects and tasks named with
--project and --task, in one of the supported formats.

The file is saved to the workspace export directory as
{kind}-export-{YYYY-MM-DD}.{ext}. Use --out to pick another directory or
--out - to write to standard output.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, kind, err := parseExportFlags(exportFormat, exportKind)
		if err != nil {
			return err
		}

		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		projects, err := services.Workspace.Repo.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load projects: %w", err)
		}
		selected, err := application.SelectForExport(projects, exportProjects, exportTasks, kind)
		if err != nil {
			return MapError(err)
		}

		return runExport(cmd.Context(), cmd.OutOrStdout(), services, format, kind, selected, exportOut)
	},
}

func parseExportFlags(formatFlag, kindFlag string) (exchange.Format, exchange.Kind, error) {
	format, err := exchange.ParseFormat(formatFlag)
	if err != nil {
		return "", "", NewCLIError("invalid format", "Run 'taskport formats' to list supported formats", err)
	}
	kind, err := exchange.ParseKind(kindFlag)
	if err != nil {
		return "", "", NewCLIError("invalid kind", "Use --kind projects or --kind tasks", err)
	}
	return format, kind, nil
}

// runExport encodes selected and hands it to the downloader picked by out:
// empty for the configured export directory, "-" for out, or a directory.
func runExport(ctx context.Context, out io.Writer, services *wiring.AppServices, format exchange.Format, kind exchange.Kind, selected []project.Project, dest string) error {
	svc := services.Exchange
	dir := services.Workspace.ExportDir()
	switch {
	case download.IsStdout(dest):
		svc = svc.WithDownloader(download.NewWriterDownloader(out))
	case dest != "":
		dir = dest
		svc = svc.WithDownloader(download.NewDirDownloader(dest, services.Logger))
	}

	artifact, err := svc.ExportAndDownload(ctx, format, selected, kind)
	if err != nil {
		return MapError(err)
	}
	if download.IsStdout(dest) {
		return nil
	}

	n, noun := len(selected), "projects"
	if kind == exchange.KindTasks {
		n, noun = len(project.FlattenTasks(selected)), "tasks"
	}
	fmt.Fprintf(out, "Exported %d %s to %s\n", n, noun, filepath.Join(dir, artifact.Filename))
	return nil
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", string(exchange.FormatJSON), "Output format: json, csv, xlsx, pdf or docx")
	exportCmd.Flags().StringVarP(&exportKind, "kind", "k", string(exchange.KindProjects), "Export kind: projects or tasks")
	exportCmd.Flags().StringSliceVar(&exportProjects, "project", nil, "Project IDs to export (repeatable)")
	exportCmd.Flags().StringSliceVar(&exportTasks, "task", nil, "Task IDs to export, as TASK or PROJECT/TASK (repeatable)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output directory, or - for standard output")
	RootCmd.AddCommand(exportCmd)
}
