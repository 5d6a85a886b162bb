package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vietddude/assetscan/internal/core/domain"
	redisclient "github.com/vietddude/assetscan/internal/infra/redis"
	"github.com/vietddude/assetscan/internal/infra/storage/postgres"
	"github.com/vietddude/stylelog"
)

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the most recent scan stored in PostgreSQL or Redis",
	Run:   runLatest,
}

func init() {
	rootCmd.AddCommand(latestCmd)
}

func runLatest(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		stylelog.InitDefault()
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogging(cfg.Logging.Level)

	ctx := context.Background()

	var (
		scanID  string
		records []domain.AssetRecord
	)
	switch {
	case cfg.Database.Enabled():
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer func() {
			_ = db.Close()
		}()

		scanID, records, err = postgres.NewAssetRepo(db).LatestScan(ctx)
		if err != nil {
			slog.Error("Failed to load latest scan", "error", err)
			os.Exit(1)
		}
	case cfg.Redis.Enabled():
		client, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			slog.Error("Failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer func() {
			_ = client.Close()
		}()

		sink := redisclient.NewAssetSink(client, cfg.Redis.Prefix, cfg.Redis.TTL)
		if scanID, err = sink.ScanID(ctx); err == nil {
			records, err = sink.Load(ctx)
		}
		if err != nil {
			slog.Error("Failed to load latest scan", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("No database or redis configured")
		os.Exit(1)
	}

	if len(records) == 0 {
		fmt.Println("No scan stored yet")
		return
	}

	fmt.Printf("Scan %s (%d assets)\n\n", scanID, len(records))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "NAME\tMARKETS\tPLATFORMS")
	for _, r := range records {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, orDash(r.Markets), orDash(r.Platforms))
	}
	_ = w.Flush()
}

func orDash(values []string) string {
	if values == nil {
		return "-"
	}
	return strings.Join(values, ", ")
}
