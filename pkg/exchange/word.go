package exchange

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/felixgeelhaar/taskport/pkg/domain/project"
)

const (
	wordTableStyle = "TableGrid"
	wordCellSize   = 9 // points
)

// WordCodec renders a single-table .docx report. It has no decoder.
type WordCodec struct{}

func NewWordCodec() *WordCodec {
	return &WordCodec{}
}

func (c *WordCodec) Encode(ctx context.Context, projects []project.Project, kind Kind, at time.Time) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, fmt.Errorf("failed to create docx: %w", err)
	}

	report := buildReport(projects, kind, at, false)
	if _, err := doc.AddHeading(report.Title, 1); err != nil {
		return nil, fmt.Errorf("failed to add heading: %w", err)
	}
	doc.AddParagraph("Generated: " + report.Date)

	tbl := doc.AddTable()
	tbl.Style(wordTableStyle)

	header := tbl.AddRow()
	for _, col := range report.Columns {
		addWordCell(header, col, true)
	}
	for n, values := range report.Rows {
		if n%50 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row := tbl.AddRow()
		for _, v := range values {
			addWordCell(row, v, false)
		}
	}

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to pack docx: %w", err)
	}
	return buf.Bytes(), nil
}

func addWordCell(row *docx.Row, text string, bold bool) {
	run := row.AddCell().AddEmptyPara().AddText(text).Size(wordCellSize)
	if bold {
		run.Bold(true)
	}
}
