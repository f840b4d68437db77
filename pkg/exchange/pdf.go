package exchange

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/taskport/pkg/domain/project"
	"github.com/go-pdf/fpdf"
)

const (
	pdfFont      = "Helvetica"
	pdfRowHeight = 7.0
)

// PDFCodec renders a landscape single-table report. It has no decoder.
type PDFCodec struct{}

func NewPDFCodec() *PDFCodec {
	return &PDFCodec{}
}

func (c *PDFCodec) Encode(ctx context.Context, projects []project.Project, kind Kind, at time.Time) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table := buildReport(projects, kind, at, true)

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(false, 12)
	pdf.SetTitle(table.Title, true)
	pdf.SetCreationDate(at)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, pageH := pdf.GetPageSize()
	left, _, right, bottom := pdf.GetMargins()
	widths := scaleWidths(table.Widths, pageW-left-right)

	header := func() {
		pdf.SetFont(pdfFont, "B", 9)
		pdf.SetFillColor(66, 66, 66)
		pdf.SetTextColor(255, 255, 255)
		for i, col := range table.Columns {
			pdf.CellFormat(widths[i], pdfRowHeight, tr(col), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(pdfRowHeight)
		pdf.SetFont(pdfFont, "", 8)
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.AddPage()
	pdf.SetFont(pdfFont, "B", 14)
	pdf.CellFormat(0, 8, tr(table.Title), "", 1, "L", false, 0, "")
	pdf.SetFont(pdfFont, "", 9)
	pdf.CellFormat(0, 6, tr("Generated: "+table.Date), "", 1, "L", false, 0, "")
	pdf.Ln(2)
	header()

	for n, row := range table.Rows {
		if n%50 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if pdf.GetY()+pdfRowHeight > pageH-bottom {
			pdf.AddPage()
			header()
		}
		for i, value := range row {
			text := fitText(pdf, tr, value, widths[i]-2)
			pdf.CellFormat(widths[i], pdfRowHeight, text, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(pdfRowHeight)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// fitText shortens value with "..." until it fits the cell width.
func fitText(pdf *fpdf.Fpdf, tr func(string) string, value string, width float64) string {
	text := tr(value)
	if pdf.GetStringWidth(text) <= width {
		return text
	}
	runes := []rune(value)
	for n := len(runes) - 1; n > 0; n-- {
		candidate := tr(string(runes[:n]) + "...")
		if pdf.GetStringWidth(candidate) <= width {
			return candidate
		}
	}
	return ""
}

func scaleWidths(weights []float64, total float64) []float64 {
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	out := make([]float64, len(weights))
	for i, w := range weights {
		out[i] = total * w / sum
	}
	return out
}
