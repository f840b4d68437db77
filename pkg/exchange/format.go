package exchange

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Format identifies a file format.
type Format string

const (
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatExcel Format = "xlsx"
	FormatPDF   Format = "pdf"
	FormatWord  Format = "docx"
)

// Kind selects which half of the graph a tabular export lists.
type Kind string

const (
	KindProjects Kind = "projects"
	KindTasks    Kind = "tasks"
)

// MIME types for the supported formats.
const (
	MIMEJSON  = "application/json"
	MIMECSV   = "text/csv"
	MIMEExcel = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MIMEPDF   = "application/pdf"
	MIMEWord  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// ParseFormat accepts a format name or a common alias ("excel", "word").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatExcel, nil
	case "pdf":
		return FormatPDF, nil
	case "docx", "word":
		return FormatWord, nil
	default:
		return "", fmt.Errorf("unknown format: %s", s)
	}
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", fmt.Errorf("cannot infer format of %s: no file extension", path)
	}
	return ParseFormat(ext)
}

// ParseKind parses a kind, defaulting to projects for an empty string.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case "", KindProjects:
		return KindProjects, nil
	case KindTasks:
		return KindTasks, nil
	default:
		return "", fmt.Errorf("unknown export kind: %s (expected projects or tasks)", s)
	}
}

// Filename returns {kind}-export-{YYYY-MM-DD}.{ext} for the day of at.
func Filename(kind Kind, ext string, at time.Time) string {
	if kind == "" {
		kind = KindProjects
	}
	return fmt.Sprintf("%s-export-%s.%s", kind, at.Format(DateLayout), ext)
}
