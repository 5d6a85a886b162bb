package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/vietddude/assetscan/internal/control"
	"github.com/vietddude/assetscan/internal/core/config"
	"github.com/vietddude/assetscan/internal/core/domain"
	"github.com/vietddude/stylelog"
)

var (
	cfgPath      string
	isDebug      bool
	showProgress bool
)

var rootCmd = &cobra.Command{
	Use:   "assetscan",
	Short: "Scan the top crypto assets by volume",
	Long: `assetscan lists the top assets by trading volume from CoinGecko, resolves the
exchanges and blockchain platforms of each one, and writes the result to JSON,
CSV and any configured Redis or PostgreSQL sink.`,
	Run: runScan,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
	rootCmd.Flags().BoolVar(&showProgress, "progress", false, "show a progress bar while scanning")
}

// loadConfig loads .env and the config file. The default path may be missing.
func loadConfig(cmd *cobra.Command) (*config.AppConfig, error) {
	_ = godotenv.Load()
	return config.Load(cfgPath, !cmd.Flags().Changed("config"))
}

func setupLogging(level string) {
	slogLevel := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	}
	if isDebug {
		slogLevel = slog.LevelDebug
	}

	stylelog.InitDefault(&tint.Options{
		Level:      slogLevel,
		TimeFormat: time.RFC3339,
	})
}

func runScan(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		stylelog.InitDefault()
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogging(cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		app  *control.App
		opts control.Options
		bar  *progressbar.ProgressBar
	)
	if showProgress {
		bar = newProgressBar()
		opts.OnAsset = func(domain.AssetRecord) {
			// The listing size is only known once the scan has started.
			if total := app.Progress().Snapshot().Total; total > 0 && bar.GetMax() != total {
				bar.ChangeMax(total)
			}
			_ = bar.Add(1)
		}
	}

	app, err = control.NewApp(ctx, cfg, opts)
	if err != nil {
		slog.Error("Failed to initialize scanner", "error", err)
		os.Exit(1)
	}

	slog.Info("Scan started", "config", cfgPath, "per_page", cfg.Scan.PerPage, "delay", cfg.Scan.AssetDelay)
	records, runErr := app.Run(ctx)
	if bar != nil {
		_ = bar.Finish()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Close(shutdownCtx); err != nil {
		slog.Error("Error during shutdown", "error", err)
	}

	if runErr != nil {
		slog.Error("Scan failed", "error", runErr)
		os.Exit(1)
	}
	slog.Info("Scan finished", "assets", len(records))
}

func newProgressBar() *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetDescription("[cyan]Scanning assets[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
