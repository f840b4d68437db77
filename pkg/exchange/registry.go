// Package exchange converts project graphs to and from external file formats.
package exchange

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/felixgeelhaar/taskport/pkg/domain/project"
)

// Envelope is the result of an import and the JSON export document. Formats
// that carry no metadata leave ExportDate and Version empty.
type Envelope struct {
	Projects   []project.Project
	Tasks      []project.Task
	ExportDate time.Time
	Version    string
}

// Encoder renders projects to bytes.
type Encoder interface {
	Encode(ctx context.Context, projects []project.Project, kind Kind, at time.Time) ([]byte, error)
}

// Decoder reads an import file.
type Decoder interface {
	Decode(ctx context.Context, r io.Reader) (*Envelope, error)
}

// Codec describes one registered format. Decoder is nil for write-only formats.
type Codec struct {
	Format    Format
	Extension string
	MIMEType  string
	Encoder   Encoder
	Decoder   Decoder
}

// Registry maps formats to codecs.
type Registry struct {
	codecs map[Format]Codec
}

func NewRegistry() *Registry {
	return &Registry{codecs: make(map[Format]Codec)}
}

// DefaultRegistry registers JSON, CSV, Excel, PDF and Word.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	jsonCodec := NewJSONCodec()
	excelCodec := NewExcelCodec()
	r.Register(Codec{Format: FormatJSON, Extension: "json", MIMEType: MIMEJSON, Encoder: jsonCodec, Decoder: jsonCodec})
	r.Register(Codec{Format: FormatCSV, Extension: "csv", MIMEType: MIMECSV, Encoder: NewCSVCodec()})
	r.Register(Codec{Format: FormatExcel, Extension: "xlsx", MIMEType: MIMEExcel, Encoder: excelCodec, Decoder: excelCodec})
	r.Register(Codec{Format: FormatPDF, Extension: "pdf", MIMEType: MIMEPDF, Encoder: NewPDFCodec()})
	r.Register(Codec{Format: FormatWord, Extension: "docx", MIMEType: MIMEWord, Encoder: NewWordCodec()})
	return r
}

// Register adds or replaces a codec.
func (r *Registry) Register(c Codec) {
	r.codecs[c.Format] = c
}

// Lookup returns the codec for a format.
func (r *Registry) Lookup(f Format) (Codec, bool) {
	c, ok := r.codecs[f]
	return c, ok
}

// Formats lists registered formats in name order.
func (r *Registry) Formats() []Format {
	out := make([]Format, 0, len(r.codecs))
	for f := range r.codecs {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ImportFormats lists formats that can be decoded.
func (r *Registry) ImportFormats() []Format {
	var out []Format
	for _, f := range r.Formats() {
		if r.codecs[f].Decoder != nil {
			out = append(out, f)
		}
	}
	return out
}

// Encode renders projects in the given format.
func (r *Registry) Encode(ctx context.Context, f Format, projects []project.Project, kind Kind, at time.Time) ([]byte, error) {
	c, ok := r.codecs[f]
	if !ok || c.Encoder == nil {
		return nil, &project.UnsupportedOperationError{Format: string(f), Operation: "export"}
	}
	return c.Encoder.Encode(ctx, projects, kind, at)
}

// Decode reads an import file in the given format.
func (r *Registry) Decode(ctx context.Context, f Format, rd io.Reader) (*Envelope, error) {
	c, ok := r.codecs[f]
	if !ok || c.Decoder == nil {
		return nil, &project.UnsupportedOperationError{Format: string(f), Operation: "import"}
	}
	return c.Decoder.Decode(ctx, rd)
}
