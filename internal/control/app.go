package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/vietddude/assetscan/internal/core/config"
	"github.com/vietddude/assetscan/internal/core/domain"
	"github.com/vietddude/assetscan/internal/indexing/health"
	"github.com/vietddude/assetscan/internal/indexing/resolve"
	"github.com/vietddude/assetscan/internal/infra/coingecko"
	"github.com/vietddude/assetscan/internal/infra/export"
	redisclient "github.com/vietddude/assetscan/internal/infra/redis"
	"github.com/vietddude/assetscan/internal/infra/retry"
	"github.com/vietddude/assetscan/internal/infra/storage/postgres"
)

// App owns every component of a scan run and their connections.
type App struct {
	cfg          *config.AppConfig
	scanner      *Scanner
	market       *coingecko.Client
	progress     *health.Progress
	healthServer *health.Server
	db           *postgres.DB
	redisClient  *redisclient.Client
	log          *slog.Logger
}

// Options are runtime hooks that do not belong in the config file.
type Options struct {
	OnAsset func(rec domain.AssetRecord)
}

// NewApp creates an App with all dependencies initialized.
func NewApp(ctx context.Context, cfg *config.AppConfig, opts Options) (*App, error) {
	log := slog.Default()
	a := &App{
		cfg:      cfg,
		progress: health.NewProgress(),
		log:      log,
	}

	// 1. Upstream client
	market, err := coingecko.New(coingecko.Config{
		BaseURL:        cfg.CoinGecko.BaseURL,
		APIKey:         cfg.CoinGecko.APIKey,
		ConnectTimeout: cfg.CoinGecko.ConnectTimeout,
		ReadTimeout:    cfg.CoinGecko.ReadTimeout,
		Retry: retry.Policy{
			MaxAttempts:  cfg.CoinGecko.MaxAttempts,
			Wait:         cfg.CoinGecko.RetryWait,
			OnExhaustion: retry.ReturnZero,
		},
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to init coingecko client: %w", err)
	}
	a.market = market
	if cfg.CoinGecko.APIKey == "" {
		log.Info("No CoinGecko API key configured, using public rate limits")
	}

	// 2. Exporters
	exporters, err := a.buildExporters(ctx)
	if err != nil {
		a.Close(context.Background())
		return nil, err
	}

	// 3. Scanner
	a.scanner = NewScanner(Config{
		List: coingecko.ListParams{
			Currency: cfg.Scan.Currency,
			Order:    cfg.Scan.Order,
			PerPage:  cfg.Scan.PerPage,
			Page:     cfg.Scan.Page,
		},
		AssetDelay: cfg.Scan.AssetDelay,
		Preferred:  resolve.NewPreferred(cfg.Scan.PreferredMarkets...),
		Progress:   a.progress,
		Logger:     log,
		OnAsset:    opts.OnAsset,
	}, market, exporters...)

	// 4. Health server
	if cfg.Server.Port > 0 {
		a.healthServer = health.NewServer(a.progress, cfg.Server.Port)
	}

	return a, nil
}

func (a *App) buildExporters(ctx context.Context) ([]export.Exporter, error) {
	var exporters []export.Exporter

	fileOpts := export.Options{
		Delimiter:     a.cfg.Outputs.Delimiter(),
		ListSeparator: a.cfg.Outputs.ListSeparator,
	}
	for _, out := range []struct{ format, path string }{
		{export.FormatJSON, a.cfg.Outputs.JSON},
		{export.FormatCSV, a.cfg.Outputs.CSV},
	} {
		if out.path == "" {
			continue
		}
		e, err := export.New(out.format, out.path, fileOpts)
		if err != nil {
			return nil, err
		}
		exporters = append(exporters, e)
	}

	if a.cfg.Redis.Enabled() {
		client, err := redisclient.NewClient(a.cfg.Redis)
		if err != nil {
			a.log.Warn("Failed to connect to Redis, redis sink disabled", "error", err)
		} else {
			a.redisClient = client
			exporters = append(exporters, redisclient.NewAssetSink(client, a.cfg.Redis.Prefix, a.cfg.Redis.TTL))
			a.log.Info("Using Redis sink")
		}
	}

	if a.cfg.Database.Enabled() {
		db, err := postgres.NewDB(ctx, a.cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		a.db = db
		if err := db.Migrate(ctx); err != nil {
			return nil, err
		}
		exporters = append(exporters, postgres.NewAssetRepo(db))
		a.log.Info("Using PostgreSQL sink")
	}

	return exporters, nil
}

// Progress exposes the live scan progress.
func (a *App) Progress() *health.Progress {
	return a.progress
}

// Run starts the optional health server and performs one scan.
func (a *App) Run(ctx context.Context) ([]domain.AssetRecord, error) {
	if a.healthServer != nil {
		go func() {
			if err := a.healthServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.Error("Health server failed", "error", err)
			}
		}()
		a.log.Info("Health server listening", "port", a.cfg.Server.Port)
	}

	if a.db != nil {
		a.db.StartMetricsCollector(ctx, 15*time.Second)
	}

	return a.scanner.Run(ctx)
}

// Close releases every connection. It is safe to call on a partially
// initialized App.
func (a *App) Close(ctx context.Context) error {
	var errs []error

	if a.healthServer != nil {
		if err := a.healthServer.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop health server: %w", err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Warn("Failed to close Redis", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close db: %w", err))
		}
	}
	if a.market != nil {
		if err := a.market.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
