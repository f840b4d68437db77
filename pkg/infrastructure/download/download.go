// Package download delivers rendered export files to their destination.
package download

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Downloader hands finished bytes to the user under a suggested filename.
type Downloader interface {
	Download(ctx context.Context, content []byte, filename, mimeType string) error
}

// DirDownloader saves files into a fixed export directory.
type DirDownloader struct {
	dir    string
	logger *slog.Logger
}

func NewDirDownloader(dir string, logger *slog.Logger) *DirDownloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &DirDownloader{dir: dir, logger: logger}
}

// Dir returns the export directory.
func (d *DirDownloader) Dir() string {
	return d.dir
}

// ResolvePath keeps filename a direct child of the export directory.
func (d *DirDownloader) ResolvePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	baseDir := filepath.Clean(d.dir)
	cleanPath := filepath.Clean(filepath.Join(baseDir, filename))
	if filepath.Dir(cleanPath) != baseDir {
		return "", fmt.Errorf("invalid file name: %s", filename)
	}
	return cleanPath, nil
}

func (d *DirDownloader) Download(ctx context.Context, content []byte, filename, mimeType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := d.ResolvePath(filename)
	if err != nil {
		return err
	}

	// G301: Use 0700 for directories
	if err := os.MkdirAll(d.dir, 0700); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	// G306: Use 0600 for files
	if err := os.WriteFile(path, content, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}

	d.logger.Info("file saved", "path", path, "mime", mimeType, "bytes", len(content))
	return nil
}

// HTTPDownloader writes the file as an attachment response.
type HTTPDownloader struct {
	w         http.ResponseWriter
	committed bool
}

func NewHTTPDownloader(w http.ResponseWriter) *HTTPDownloader {
	return &HTTPDownloader{w: w}
}

func (d *HTTPDownloader) Download(ctx context.Context, content []byte, filename, mimeType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	h := d.w.Header()
	h.Set("Content-Type", mimeType)
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filepath.Base(filename)}))
	h.Set("Content-Length", strconv.Itoa(len(content)))
	d.w.WriteHeader(http.StatusOK)
	d.committed = true

	if _, err := d.w.Write(content); err != nil {
		return fmt.Errorf("failed to send %s: %w", filename, err)
	}
	return nil
}

// Committed reports whether the response status has been sent. After that an
// error can no longer be reported to the client.
func (d *HTTPDownloader) Committed() bool {
	return d.committed
}

// WriterDownloader streams the file to an io.Writer such as stdout.
type WriterDownloader struct {
	w io.Writer
}

func NewWriterDownloader(w io.Writer) *WriterDownloader {
	return &WriterDownloader{w: w}
}

func (d *WriterDownloader) Download(ctx context.Context, content []byte, filename, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := d.w.Write(content); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}

// IsStdout reports whether an --out value asks for standard output.
func IsStdout(out string) bool {
	return strings.TrimSpace(out) == "-"
}
