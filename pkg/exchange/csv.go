package exchange

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/taskport/pkg/domain/project"
)

// AssigneeSeparator joins assignees in tabular formats. Identifiers containing
// ";" do not survive a round trip.
const AssigneeSeparator = "; "

var (
	projectColumns = []string{"ID", "Name", "Description", "Start Date", "End Date", "Status", "Progress"}
	taskColumns    = []string{"ID", "Project ID", "Name", "Description", "Assigned To", "Responsible Party", "Start Date", "Due Date", "Status", "Duration", "Remarks"}
)

// CSVCodec writes one flat table of projects or tasks. It has no decoder.
// Contacts and dependencies are not represented.
type CSVCodec struct{}

func NewCSVCodec() *CSVCodec {
	return &CSVCodec{}
}

func (c *CSVCodec) Encode(ctx context.Context, projects []project.Project, kind Kind, _ time.Time) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows [][]string
	if kind == KindTasks {
		rows = append(rows, taskColumns)
		for _, t := range project.FlattenTasks(projects) {
			rows = append(rows, taskRow(t))
		}
	} else {
		rows = append(rows, projectColumns)
		for _, p := range projects {
			rows = append(rows, projectRow(p))
		}
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, quoteRow(row))
	}
	return []byte(strings.Join(lines, "\n")), nil
}

func projectRow(p project.Project) []string {
	return []string{
		p.ID,
		p.Name,
		p.Description,
		FormatDate(p.StartDate),
		FormatDate(p.EndDate),
		string(p.Status),
		strconv.Itoa(p.Progress),
	}
}

func taskRow(t project.Task) []string {
	return []string{
		t.ID,
		t.ProjectID,
		t.Name,
		t.Description,
		strings.Join(t.AssignedTo, AssigneeSeparator),
		t.ResponsibleParty,
		FormatDate(t.StartDate),
		FormatDate(t.DueDate),
		string(t.Status),
		strconv.Itoa(t.Duration),
		t.Remarks,
	}
}

// quoteRow quotes every field and doubles embedded quotes.
func quoteRow(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}
