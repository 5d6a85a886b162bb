// Package export writes resolved asset records to files.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vietddude/assetscan/internal/core/domain"
)

// Exporter persists a full scan.
type Exporter interface {
	Name() string
	Save(ctx context.Context, records []domain.AssetRecord) error
}

// Format names accepted by New.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Options tunes the CSV exporter. Zero values select the defaults.
type Options struct {
	Delimiter     rune
	ListSeparator string
}

// New returns the file exporter for format.
func New(format, path string, opts Options) (Exporter, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		return &JSON{Path: path}, nil
	case FormatCSV:
		return &CSV{Path: path, Delimiter: opts.Delimiter, ListSeparator: opts.ListSeparator}, nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

// withExtension replaces the last extension of path with ext.
func withExtension(path, ext string) string {
	if filepath.Ext(path) == ext {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// writeFile creates path and runs write; the file is always closed.
func writeFile(path string, write func(f *os.File) error) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	return write(f)
}
