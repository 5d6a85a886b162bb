package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/vietddude/assetscan/internal/core/domain"
)

// AssetRepo stores every scan as a set of rows sharing a scan_id.
type AssetRepo struct {
	db *DB
}

// NewAssetRepo creates a new PostgreSQL-backed asset repository.
func NewAssetRepo(db *DB) *AssetRepo {
	return &AssetRepo{db: db}
}

func (r *AssetRepo) Name() string { return "postgres" }

type assetRow struct {
	ScanID    string         `db:"scan_id"`
	Position  int            `db:"position"`
	Name      string         `db:"name"`
	Markets   pq.StringArray `db:"markets"`
	Platforms pq.StringArray `db:"platforms"`
	ScannedAt time.Time      `db:"scanned_at"`
}

const insertAsset = `
INSERT INTO asset_records (scan_id, position, name, markets, platforms, scanned_at)
VALUES ($1, $2, $3, $4, $5, $6)`

// Save writes records in one transaction. The scan ID comes from ctx; a new
// one is generated when ctx carries none.
func (r *AssetRepo) Save(ctx context.Context, records []domain.AssetRecord) error {
	scanID, ok := domain.ScanIDFrom(ctx)
	if !ok {
		scanID = uuid.NewString()
	}
	if _, err := uuid.Parse(scanID); err != nil {
		return fmt.Errorf("invalid scan id %q: %w", scanID, err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PreparexContext(ctx, insertAsset)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i, rec := range records {
		_, err := stmt.ExecContext(ctx,
			scanID, i, rec.Name,
			pq.Array(rec.Markets), pq.Array(rec.Platforms),
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert %s: %w", rec.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit scan %s: %w", scanID, err)
	}
	return nil
}

// LatestScan returns the most recent scan in its original order.
// It returns "", nil, nil when nothing has been stored yet.
func (r *AssetRepo) LatestScan(ctx context.Context) (string, []domain.AssetRecord, error) {
	var scanID string
	err := r.db.GetContext(ctx, &scanID,
		`SELECT scan_id::text FROM asset_records ORDER BY scanned_at DESC, scan_id LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to find latest scan: %w", err)
	}

	records, err := r.Scan(ctx, scanID)
	if err != nil {
		return "", nil, err
	}
	return scanID, records, nil
}

// Scan returns the records stored under scanID ordered by position.
func (r *AssetRepo) Scan(ctx context.Context, scanID string) ([]domain.AssetRecord, error) {
	var rows []assetRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT scan_id::text AS scan_id, position, name, markets, platforms, scanned_at
		FROM asset_records
		WHERE scan_id = $1
		ORDER BY position`, scanID)
	if err != nil {
		return nil, fmt.Errorf("failed to load scan %s: %w", scanID, err)
	}

	records := make([]domain.AssetRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, domain.AssetRecord{
			Name:      row.Name,
			Markets:   nilIfEmpty(row.Markets),
			Platforms: nilIfEmpty(row.Platforms),
		})
	}
	return records, nil
}

func nilIfEmpty(a pq.StringArray) []string {
	if len(a) == 0 {
		return nil
	}
	return []string(a)
}
