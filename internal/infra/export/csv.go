package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/vietddude/assetscan/internal/core/domain"
)

const (
	DefaultDelimiter     = ','
	DefaultListSeparator = ", "
)

// CSV writes one row per record with list fields joined by ListSeparator.
// Absent lists become empty cells, so the flattening cannot be reversed.
// The file extension is forced to .csv.
type CSV struct {
	Path          string
	Delimiter     rune
	ListSeparator string
}

func (c *CSV) Name() string { return FormatCSV }

// Save writes records, replacing any existing file.
func (c *CSV) Save(_ context.Context, records []domain.AssetRecord) error {
	delimiter := c.Delimiter
	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}
	if !validDelimiter(delimiter) {
		return fmt.Errorf("save csv: invalid delimiter %q", delimiter)
	}
	separator := c.ListSeparator
	if separator == "" {
		separator = DefaultListSeparator
	}

	path := withExtension(c.Path, ".csv")
	err := writeFile(path, func(f *os.File) error {
		w := csv.NewWriter(f)
		w.Comma = delimiter

		if err := w.Write(domain.AssetFields); err != nil {
			return err
		}
		for _, r := range records {
			row := []string{
				r.Name,
				strings.Join(r.Markets, separator),
				strings.Join(r.Platforms, separator),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	})
	if err != nil {
		return fmt.Errorf("save csv: %w", err)
	}
	return nil
}

func validDelimiter(r rune) bool {
	return r != '"' && r != '\r' && r != '\n' && r != utf8.RuneError && utf8.ValidRune(r)
}
