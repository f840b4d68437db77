package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/felixgeelhaar/taskport/pkg/application"
	"github.com/felixgeelhaar/taskport/pkg/domain/project"
	"github.com/felixgeelhaar/taskport/pkg/domain/selection"
	"github.com/felixgeelhaar/taskport/pkg/exchange"
	"github.com/spf13/cobra"
)

var (
	selectFormat string
	selectKind   string
	selectOut    string
)

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Pick projects and tasks interactively, then export them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, kind, err := parseExportFlags(selectFormat, selectKind)
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
		rec, err := selection.New(projects)
		if err != nil {
			return err
		}

		if os.Getenv("TASKPORT_SKIP_TUI") == "true" {
			return nil
		}
		final, err := tea.NewProgram(newSelectModel(rec, format, kind)).Run()
		if err != nil {
			return fmt.Errorf("selector run failed: %w", err)
		}
		if m, ok := final.(selectModel); !ok || !m.confirmed {
			fmt.Fprintln(cmd.OutOrStdout(), "Export cancelled")
			return nil
		}

		return runExport(cmd.Context(), cmd.OutOrStdout(), services, format, kind, application.ExportSet(rec, kind), selectOut)
	},
}

func init() {
	selectCmd.Flags().StringVarP(&selectFormat, "format", "f", string(exchange.FormatJSON), "Output format: json, csv, xlsx, pdf or docx")
	selectCmd.Flags().StringVarP(&selectKind, "kind", "k", string(exchange.KindProjects), "Export kind: projects or tasks")
	selectCmd.Flags().StringVarP(&selectOut, "out", "o", "", "Output directory, or - for standard output")
	RootCmd.AddCommand(selectCmd)
}

// Styles
var baseStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("240"))

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	PaddingLeft(1).
	PaddingRight(1)

var summaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
var noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))

// selectRow maps a table row back to the selection. taskID is empty on
// project rows.
type selectRow struct {
	projectID string
	taskID    string
}

type selectModel struct {
	table     table.Model
	rec       *selection.Reconciler
	rows      []selectRow
	format    exchange.Format
	kind      exchange.Kind
	confirmed bool
	notice    string
}

func newSelectModel(rec *selection.Reconciler, format exchange.Format, kind exchange.Kind) selectModel {
	m := selectModel{rec: rec, format: format, kind: kind}
	for _, p := range rec.Projects() {
		m.rows = append(m.rows, selectRow{projectID: p.ID})
		for _, t := range p.Tasks {
			m.rows = append(m.rows, selectRow{projectID: p.ID, taskID: t.ID})
		}
	}

	columns := []table.Column{
		{Title: "", Width: 3},
		{Title: "Name", Width: 40},
		{Title: "Status", Width: 12},
		{Title: "Dates", Width: 23},
		{Title: "ID", Width: 20},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(m.tableRows()),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240"))

	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229"))

	t.SetStyles(s)
	m.table = t
	return m
}

func (m selectModel) tableRows() []table.Row {
	projects := m.rec.Projects()
	index := project.IndexByID(projects)

	rows := make([]table.Row, 0, len(m.rows))
	for _, r := range m.rows {
		p := projects[index[r.projectID]]
		if r.taskID == "" {
			rows = append(rows, table.Row{
				checkbox(m.rec.IsProjectSelected(p.ID)),
				p.Name,
				p.Status.DisplayName(),
				dateRange(p.StartDate, p.EndDate),
				p.ID,
			})
			continue
		}
		t, _ := p.FindTask(r.taskID)
		rows = append(rows, table.Row{
			checkbox(m.rec.IsTaskSelected(t.ID, r.projectID)),
			"  " + t.Name,
			t.Status.DisplayName(),
			dateRange(t.StartDate, t.DueDate),
			t.ID,
		})
	}
	return rows
}

// toggle flips the checkbox under the cursor.
func (m selectModel) toggle() error {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.rows) {
		return nil
	}
	r := m.rows[i]
	if r.taskID == "" {
		return m.rec.ToggleProject(r.projectID, !m.rec.IsProjectSelected(r.projectID))
	}
	return m.rec.ToggleTask(r.taskID, r.projectID, !m.rec.IsTaskSelected(r.taskID, r.projectID))
}

func (m selectModel) Init() tea.Cmd { return nil }

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "enter":
			if len(m.rec.SelectedProjectIDs()) == 0 {
				m.notice = "Nothing selected"
				return m, nil
			}
			m.confirmed = true
			return m, tea.Quit
		case " ", "space":
			m.notice = ""
			if err := m.toggle(); err != nil {
				m.notice = err.Error()
			}
			m.table.SetRows(m.tableRows())
			return m, nil
		case "a":
			m.notice = ""
			m.rec.SelectAll()
			m.table.SetRows(m.tableRows())
			return m, nil
		case "n":
			m.notice = ""
			m.rec.DeselectAll()
			m.table.SetRows(m.tableRows())
			return m, nil
		}
	}
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m selectModel) View() string {
	header := headerStyle.Render(fmt.Sprintf("Export %s as %s", m.kind, m.format))
	summary := summaryStyle.Render(fmt.Sprintf("%d projects, %d tasks selected",
		len(m.rec.SelectedProjectIDs()), m.rec.SelectedTaskCount()))

	notice := ""
	if m.notice != "" {
		notice = noticeStyle.Render(m.notice)
	}

	return baseStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			m.table.View(),
			summary,
			notice,
			"[space] Toggle  [a] All  [n] None  [enter] Export  [q] Quit",
		),
	) + "\n"
}

func checkbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}

func dateRange(from, to time.Time) string {
	if from.IsZero() && to.IsZero() {
		return "-"
	}
	return exchange.FormatDate(from) + ".." + exchange.FormatDate(to)
}
