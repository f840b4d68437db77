package exchange

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/taskport/pkg/domain/project"
	"github.com/xuri/excelize/v2"
)

const (
	SheetProjects = "Projects"
	SheetTasks    = "Tasks"

	defaultSheet = "Sheet1"
)

var excelTaskColumns = []string{"ID", "Project ID", "Project Name", "Name", "Description", "Assigned To", "Responsible Party", "Start Date", "Due Date", "Status", "Duration", "Remarks"}

// Layouts spreadsheet tools commonly produce for date cells.
var spreadsheetDateLayouts = []string{"01-02-06", "1/2/2006", "1/2/06", "2006/01/02"}

// ExcelCodec writes a Projects + Tasks workbook and reads either sheet back.
type ExcelCodec struct{}

func NewExcelCodec() *ExcelCodec {
	return &ExcelCodec{}
}

// Encode always writes both sheets; kind only affects the file name.
func (c *ExcelCodec) Encode(ctx context.Context, projects []project.Project, _ Kind, _ time.Time) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(defaultSheet, SheetProjects); err != nil {
		return nil, fmt.Errorf("failed to name projects sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetTasks); err != nil {
		return nil, fmt.Errorf("failed to create tasks sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	projectRows := [][]interface{}{toRow(projectColumns)}
	names := make(map[string]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
		projectRows = append(projectRows, []interface{}{
			p.ID, p.Name, p.Description, FormatDate(p.StartDate), FormatDate(p.EndDate), string(p.Status), p.Progress,
		})
	}

	taskRows := [][]interface{}{toRow(excelTaskColumns)}
	for _, t := range project.FlattenTasks(projects) {
		taskRows = append(taskRows, []interface{}{
			t.ID, t.ProjectID, names[t.ProjectID], t.Name, t.Description,
			strings.Join(t.AssignedTo, AssigneeSeparator), t.ResponsibleParty,
			FormatDate(t.StartDate), FormatDate(t.DueDate), string(t.Status), t.Duration, t.Remarks,
		})
	}

	if err := writeSheet(f, SheetProjects, projectRows, headerStyle); err != nil {
		return nil, err
	}
	if err := writeSheet(f, SheetTasks, taskRows, headerStyle); err != nil {
		return nil, err
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode reads the Projects and Tasks sheets. A missing sheet yields an empty
// slice for that half. Missing IDs, names and statuses are left for the merger.
func (c *ExcelCodec) Decode(ctx context.Context, r io.Reader) (*Envelope, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &project.ParseError{Format: string(FormatExcel), Err: err}
	}
	defer f.Close()

	env := &Envelope{Projects: []project.Project{}, Tasks: []project.Task{}}

	if sheet, ok := findSheet(f, SheetProjects); ok {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, &project.ParseError{Format: string(FormatExcel), Record: sheet, Err: err}
		}
		if env.Projects, err = decodeProjectRows(sheet, rows); err != nil {
			return nil, err
		}
	}

	if sheet, ok := findSheet(f, SheetTasks); ok {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, &project.ParseError{Format: string(FormatExcel), Record: sheet, Err: err}
		}
		if env.Tasks, err = decodeTaskRows(sheet, rows); err != nil {
			return nil, err
		}
	}

	return env, nil
}

func decodeProjectRows(sheet string, rows [][]string) ([]project.Project, error) {
	out := []project.Project{}
	if len(rows) == 0 {
		return out, nil
	}
	cols := newColumnIndex(rows[0])

	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		rec := sheetRecord{sheet: sheet, row: i + 2, cols: cols, values: row}
		p := project.Project{
			ID:          rec.get("ID"),
			Name:        rec.get("Name"),
			Description: rec.get("Description"),
			Status:      project.ProjectStatus(rec.get("Status")),
			Progress:    parseIntOr(rec.get("Progress"), 0),
			Tasks:       []project.Task{},
		}
		var err error
		if p.StartDate, err = rec.date("Start Date"); err != nil {
			return nil, err
		}
		if p.EndDate, err = rec.date("End Date"); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func decodeTaskRows(sheet string, rows [][]string) ([]project.Task, error) {
	out := []project.Task{}
	if len(rows) == 0 {
		return out, nil
	}
	cols := newColumnIndex(rows[0])

	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		rec := sheetRecord{sheet: sheet, row: i + 2, cols: cols, values: row}
		t := project.Task{
			ID:               rec.get("ID"),
			ProjectID:        rec.get("Project ID"),
			Name:             rec.get("Name"),
			Description:      rec.get("Description"),
			AssignedTo:       splitAssignees(rec.get("Assigned To")),
			ResponsibleParty: rec.get("Responsible Party"),
			Contacts:         []string{},
			Dependencies:     []string{},
			Status:           project.TaskStatus(rec.get("Status")),
			Duration:         parseIntOr(rec.get("Duration"), 1),
			Remarks:          rec.get("Remarks"),
		}
		var err error
		if t.StartDate, err = rec.date("Start Date"); err != nil {
			return nil, err
		}
		if t.DueDate, err = rec.date("Due Date"); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

type columnIndex map[string]int

func newColumnIndex(header []string) columnIndex {
	idx := make(columnIndex, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

type sheetRecord struct {
	sheet  string
	row    int
	cols   columnIndex
	values []string
}

func (r sheetRecord) get(column string) string {
	i, ok := r.cols[strings.ToLower(column)]
	if !ok || i >= len(r.values) {
		return ""
	}
	return strings.TrimSpace(r.values[i])
}

func (r sheetRecord) date(column string) (time.Time, error) {
	raw := r.get(column)
	t, err := parseSpreadsheetDate(raw)
	if err != nil {
		return time.Time{}, &project.ParseError{
			Format: string(FormatExcel),
			Field:  column,
			Record: fmt.Sprintf("%s row %d", r.sheet, r.row),
			Err:    err,
		}
	}
	return t, nil
}

func parseSpreadsheetDate(s string) (time.Time, error) {
	t, err := ParseDate(s)
	if err == nil {
		return t, nil
	}
	for _, layout := range spreadsheetDateLayouts {
		if t, perr := time.Parse(layout, s); perr == nil {
			return t, nil
		}
	}
	if serial, perr := strconv.ParseFloat(s, 64); perr == nil && serial > 0 {
		return excelize.ExcelDateToTime(serial, false)
	}
	return time.Time{}, err
}

// splitAssignees is the inverse of joining with AssigneeSeparator.
func splitAssignees(s string) []string {
	out := []string{}
	if s == "" {
		return out
	}
	for _, part := range strings.Split(s, AssigneeSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseIntOr(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return fallback
	}
	f = math.Round(f)
	if f < math.MinInt32 || f > math.MaxInt32 {
		return fallback
	}
	return int(f)
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func findSheet(f *excelize.File, name string) (string, bool) {
	for _, s := range f.GetSheetList() {
		if strings.EqualFold(s, name) {
			return s, true
		}
	}
	return "", false
}

func writeSheet(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	last, err := excelize.ColumnNumberToName(len(rows[0]))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", last, 18)
}

func toRow(columns []string) []interface{} {
	row := make([]interface{}, len(columns))
	for i, c := range columns {
		row[i] = c
	}
	return row
}
