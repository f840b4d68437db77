package exchange

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/felixgeelhaar/taskport/pkg/domain/project"
)

// Description budgets for the PDF report. Reports are display sinks, never import sources.
const (
	projectDescriptionBudget = 50
	taskDescriptionBudget    = 30
)

// reportTable is the single table rendered by the PDF and Word reports.
type reportTable struct {
	Title   string
	Date    string
	Columns []string
	Widths  []float64 // relative column weights
	Rows    [][]string
}

// buildReport lays out one row per project, or one row per task carrying its
// project's name. truncate applies the PDF description budgets.
func buildReport(projects []project.Project, kind Kind, at time.Time, truncate bool) reportTable {
	if kind == KindTasks {
		t := reportTable{
			Title:   "Tasks Export",
			Date:    at.Format(DateLayout),
			Columns: []string{"Project", "Task", "Description", "Assigned To", "Start Date", "Due Date", "Status"},
			Widths:  []float64{1.4, 1.6, 2, 1.6, 1, 1, 1},
		}
		for _, p := range projects {
			for _, task := range p.Tasks {
				desc := task.Description
				if truncate {
					desc = truncateText(desc, taskDescriptionBudget)
				}
				t.Rows = append(t.Rows, []string{
					p.Name,
					task.Name,
					desc,
					strings.Join(task.AssignedTo, AssigneeSeparator),
					FormatDate(task.StartDate),
					FormatDate(task.DueDate),
					task.Status.DisplayName(),
				})
			}
		}
		return t
	}

	t := reportTable{
		Title:   "Projects Export",
		Date:    at.Format(DateLayout),
		Columns: []string{"Name", "Description", "Start Date", "End Date", "Status", "Progress"},
		Widths:  []float64{1.6, 2.6, 1, 1, 1, 0.8},
	}
	for _, p := range projects {
		desc := p.Description
		if truncate {
			desc = truncateText(desc, projectDescriptionBudget)
		}
		t.Rows = append(t.Rows, []string{
			p.Name,
			desc,
			FormatDate(p.StartDate),
			FormatDate(p.EndDate),
			p.Status.DisplayName(),
			strconv.Itoa(p.Progress) + "%",
		})
	}
	return t
}

// truncateText cuts s to limit runes and appends "..." when it was longer.
func truncateText(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}
