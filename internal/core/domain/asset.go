package domain

import (
	"context"
	"slices"
)

// AssetRecord is the resolved view of one asset.
// A nil Markets or Platforms slice means the value is unknown: either the
// upstream returned nothing or the payload had an unexpected shape.
type AssetRecord struct {
	Name      string   `json:"name"`
	Markets   []string `json:"markets"`
	Platforms []string `json:"platforms"`
}

// NewAssetRecord copies the slices so the record does not share memory with
// the caller. Empty slices collapse to nil.
func NewAssetRecord(name string, markets, platforms []string) AssetRecord {
	return AssetRecord{
		Name:      name,
		Markets:   cloneOrNil(markets),
		Platforms: cloneOrNil(platforms),
	}
}

// AssetFields lists the exported fields in output order.
var AssetFields = []string{"name", "markets", "platforms"}

func cloneOrNil(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return slices.Clone(s)
}

type scanIDKey struct{}

// WithScanID attaches the scan identifier to ctx so sinks can tag rows.
func WithScanID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, scanIDKey{}, id)
}

// ScanIDFrom returns the scan identifier stored by WithScanID.
func ScanIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(scanIDKey{}).(string)
	return id, ok && id != ""
}
