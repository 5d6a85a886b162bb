package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/vietddude/assetscan/internal/core/domain"
)

var sample = []domain.AssetRecord{
	{Name: "Bitcoin", Markets: []string{"Binance", "Kraken"}, Platforms: []string{"Bitcoin"}},
	{Name: "Tether", Markets: nil, Platforms: []string{"binance-smart-chain", "ethereum"}},
	{Name: "Quote, \"Coin\"", Markets: []string{"OKX"}, Platforms: nil},
}

func TestJSON_Save(t *testing.T) {
	dir := t.TempDir()
	e := &JSON{Path: filepath.Join(dir, "assets.txt")}

	if err := e.Save(context.Background(), sample); err != nil {
		t.Fatalf("Save: %v", err)
	}

	path := filepath.Join(dir, "assets.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}

	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(raw) != len(sample) {
		t.Fatalf("expected %d records, got %d", len(sample), len(raw))
	}
	if raw[1]["markets"] != nil {
		t.Errorf("absent markets should be null, got %v", raw[1]["markets"])
	}
	if raw[2]["platforms"] != nil {
		t.Errorf("absent platforms should be null, got %v", raw[2]["platforms"])
	}

	var got []domain.AssetRecord
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal records: %v", err)
	}
	for i := range sample {
		if got[i].Name != sample[i].Name ||
			!slices.Equal(got[i].Markets, sample[i].Markets) ||
			!slices.Equal(got[i].Platforms, sample[i].Platforms) {
			t.Errorf("record %d: got %+v, want %+v", i, got[i], sample[i])
		}
	}
	if !strings.Contains(string(data), "\n  {") {
		t.Errorf("expected indented output, got %s", data)
	}
}

func TestJSON_SaveEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := (&JSON{Path: path}).Save(context.Background(), nil); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, _ := os.ReadFile(path)
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("expected empty array, got %q", data)
	}
}

func TestCSV_Save(t *testing.T) {
	dir := t.TempDir()
	e := &CSV{Path: filepath.Join(dir, "out", "assets")}

	if err := e.Save(context.Background(), sample); err != nil {
		t.Fatalf("Save: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "out", "assets.csv"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}

	want := [][]string{
		{"name", "markets", "platforms"},
		{"Bitcoin", "Binance, Kraken", "Bitcoin"},
		{"Tether", "", "binance-smart-chain, ethereum"},
		{"Quote, \"Coin\"", "OKX", ""},
	}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d: %v", len(want), len(rows), rows)
	}
	for i := range want {
		if !slices.Equal(rows[i], want[i]) {
			t.Errorf("row %d: got %q, want %q", i, rows[i], want[i])
		}
	}
}

func TestCSV_CustomDelimiter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assets.csv")
	e := &CSV{Path: path, Delimiter: ';', ListSeparator: "|"}

	if err := e.Save(context.Background(), sample[:1]); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, _ := os.ReadFile(path)
	want := "name;markets;platforms\nBitcoin;Binance|Kraken;Bitcoin\n"
	if string(data) != want {
		t.Errorf("got %q, want %q", data, want)
	}
}

func TestCSV_InvalidDelimiter(t *testing.T) {
	e := &CSV{Path: filepath.Join(t.TempDir(), "x.csv"), Delimiter: '"'}
	if err := e.Save(context.Background(), sample); err == nil {
		t.Fatal("expected error for quote delimiter")
	}
}

func TestSave_OverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assets.json")
	if err := os.WriteFile(path, []byte("stale content that is longer than the output"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := (&JSON{Path: path}).Save(context.Background(), nil); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "stale") {
		t.Errorf("file not replaced: %q", data)
	}
}

func TestWithExtension(t *testing.T) {
	tests := []struct {
		path, ext, want string
	}{
		{"assets", ".csv", "assets.csv"},
		{"assets.csv", ".csv", "assets.csv"},
		{"assets.json", ".csv", "assets.csv"},
		{"dir.v1/assets", ".json", "dir.v1/assets.json"},
		{"a.b.c", ".json", "a.b.json"},
	}
	for _, tt := range tests {
		if got := withExtension(tt.path, tt.ext); got != tt.want {
			t.Errorf("withExtension(%q, %q) = %q, want %q", tt.path, tt.ext, got, tt.want)
		}
	}
}

func TestNew(t *testing.T) {
	if e, err := New("JSON", "x", Options{}); err != nil || e.Name() != FormatJSON {
		t.Errorf("New(JSON) = %v, %v", e, err)
	}
	e, err := New("csv", "x", Options{Delimiter: ';', ListSeparator: "|"})
	if err != nil || e.Name() != FormatCSV {
		t.Fatalf("New(csv) = %v, %v", e, err)
	}
	if c := e.(*CSV); c.Delimiter != ';' || c.ListSeparator != "|" {
		t.Errorf("csv options not applied: %+v", c)
	}
	if _, err := New("xml", "x", Options{}); err == nil {
		t.Error("expected error for unknown format")
	}
}
