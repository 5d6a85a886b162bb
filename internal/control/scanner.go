// Package control runs a full asset scan from listing to export.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vietddude/assetscan/internal/core/domain"
	"github.com/vietddude/assetscan/internal/indexing/health"
	"github.com/vietddude/assetscan/internal/indexing/metrics"
	"github.com/vietddude/assetscan/internal/indexing/resolve"
	"github.com/vietddude/assetscan/internal/infra/coingecko"
	"github.com/vietddude/assetscan/internal/infra/export"
)

// ErrNoAssets is returned when the listing call yields nothing to scan.
var ErrNoAssets = errors.New("no assets returned by listing")

// MarketData is the upstream used by a scan. *coingecko.Client satisfies it.
type MarketData interface {
	ListTopAssets(ctx context.Context, params coingecko.ListParams) ([]coingecko.AssetSummary, error)
	GetAssetDetail(ctx context.Context, assetID string) ([]byte, error)
	GetAssetTickers(ctx context.Context, assetID string) ([]byte, error)
}

// Field names used in logs and metrics.
const (
	fieldMarkets   = "markets"
	fieldPlatforms = "platforms"
)

// Config holds scanner settings.
type Config struct {
	List       coingecko.ListParams
	AssetDelay time.Duration
	Preferred  resolve.Preferred

	// Optional
	Progress *health.Progress
	Logger   *slog.Logger
	OnAsset  func(rec domain.AssetRecord)
}

// Scanner walks the top assets one at a time and hands the result to every
// exporter.
type Scanner struct {
	cfg       Config
	source    MarketData
	exporters []export.Exporter
	progress  *health.Progress
	log       *slog.Logger
}

// NewScanner creates a scanner.
func NewScanner(cfg Config, source MarketData, exporters ...export.Exporter) *Scanner {
	progress := cfg.Progress
	if progress == nil {
		progress = health.NewProgress()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		cfg:       cfg,
		source:    source,
		exporters: exporters,
		progress:  progress,
		log:       logger.With("component", "scanner"),
	}
}

// Run performs one scan. A listing failure aborts before any exporter runs;
// per-asset failures only leave that asset's fields absent.
func (s *Scanner) Run(ctx context.Context) ([]domain.AssetRecord, error) {
	scanID := uuid.NewString()
	ctx = domain.WithScanID(ctx, scanID)
	log := s.log.With("scan_id", scanID)

	s.progress.Start(scanID, 0)
	start := time.Now()

	records, err := s.scan(ctx, log)
	if err == nil {
		err = s.export(ctx, log, records)
	}
	s.progress.Finish(err)

	if err != nil {
		log.Error("Scan failed", "processed", len(records), "error", err)
		return records, err
	}
	log.Info("Scan complete", "assets", len(records), "duration", time.Since(start).Round(time.Millisecond))
	return records, nil
}

func (s *Scanner) scan(ctx context.Context, log *slog.Logger) ([]domain.AssetRecord, error) {
	assets, err := s.source.ListTopAssets(ctx, s.cfg.List)
	if err != nil {
		return nil, fmt.Errorf("list top assets: %w", err)
	}
	if len(assets) == 0 {
		return nil, ErrNoAssets
	}

	volume := coingecko.TotalVolume(assets)
	metrics.ScanAssets.Set(float64(len(assets)))
	metrics.ScanListedVolume.Set(volume.InexactFloat64())
	s.progress.SetTotal(len(assets))
	log.Info("Scanning assets", "count", len(assets), "total_volume", volume.StringFixed(0))

	records := make([]domain.AssetRecord, 0, len(assets))
	for i, asset := range assets {
		rec, err := s.resolveAsset(ctx, log, asset)
		if err != nil {
			return records, err
		}
		records = append(records, rec)
		s.progress.Advance(rec.Name, rec.Markets == nil || rec.Platforms == nil)
		if s.cfg.OnAsset != nil {
			s.cfg.OnAsset(rec)
		}

		if i < len(assets)-1 {
			if err := sleep(ctx, s.cfg.AssetDelay); err != nil {
				return records, err
			}
		}
	}
	return records, nil
}

// resolveAsset fetches tickers then detail for one asset. Only context
// cancellation is returned as an error.
func (s *Scanner) resolveAsset(
	ctx context.Context,
	log *slog.Logger,
	asset coingecko.AssetSummary,
) (domain.AssetRecord, error) {
	log = log.With("asset", asset.ID)

	tickers, err := s.source.GetAssetTickers(ctx, asset.ID)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return domain.AssetRecord{}, ctxErr
	}
	markets := s.resolveField(log, fieldMarkets, tickers, err, func(b []byte) []string {
		return resolve.Markets(b, s.cfg.Preferred)
	})

	detail, err := s.source.GetAssetDetail(ctx, asset.ID)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return domain.AssetRecord{}, ctxErr
	}
	platforms := s.resolveField(log, fieldPlatforms, detail, err, resolve.Platforms)

	log.Debug("Asset resolved",
		"markets", len(markets),
		"platforms", len(platforms),
		"volume", asset.TotalVolume.Decimal.StringFixed(0),
	)
	return domain.NewAssetRecord(asset.Name, markets, platforms), nil
}

func (s *Scanner) resolveField(
	log *slog.Logger,
	field string,
	body []byte,
	fetchErr error,
	resolver func([]byte) []string,
) []string {
	if fetchErr != nil {
		log.Warn("Fetch failed, field left empty", "field", field, "error", fetchErr)
		metrics.AssetsProcessed.WithLabelValues(field, "error").Inc()
		return nil
	}
	if body == nil {
		metrics.AssetsProcessed.WithLabelValues(field, "absent").Inc()
		return nil
	}

	values := resolver(body)
	if values == nil {
		metrics.AssetsProcessed.WithLabelValues(field, "absent").Inc()
		return nil
	}
	metrics.AssetsProcessed.WithLabelValues(field, "present").Inc()
	return values
}

// export runs every exporter even if an earlier one failed.
func (s *Scanner) export(ctx context.Context, log *slog.Logger, records []domain.AssetRecord) error {
	var errs []error
	for _, e := range s.exporters {
		if err := e.Save(ctx, records); err != nil {
			metrics.ExportsTotal.WithLabelValues(e.Name(), "error").Inc()
			log.Error("Export failed", "sink", e.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", e.Name(), err))
			continue
		}
		metrics.ExportsTotal.WithLabelValues(e.Name(), "ok").Inc()
		log.Info("Exported scan", "sink", e.Name(), "records", len(records))
	}
	return errors.Join(errs...)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
