package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/vietddude/assetscan/internal/core/domain"
)

// JSON writes records as a pretty-printed UTF-8 array.
// The file extension is forced to .json.
type JSON struct {
	Path string
}

func (j *JSON) Name() string { return FormatJSON }

// Save writes records, replacing any existing file.
func (j *JSON) Save(_ context.Context, records []domain.AssetRecord) error {
	if records == nil {
		records = []domain.AssetRecord{}
	}
	path := withExtension(j.Path, ".json")
	err := writeFile(path, func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(records)
	})
	if err != nil {
		return fmt.Errorf("save json: %w", err)
	}
	return nil
}
