package config

import (
	"time"

	redisclient "github.com/vietddude/assetscan/internal/infra/redis"
	"github.com/vietddude/assetscan/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	CoinGecko CoinGeckoConfig    `yaml:"coingecko"`
	Scan      ScanConfig         `yaml:"scan"`
	Outputs   OutputsConfig      `yaml:"outputs"`
	Redis     redisclient.Config `yaml:"redis"`
	Database  postgres.Config    `yaml:"database"`
	Server    ServerConfig       `yaml:"server"`
	Logging   LoggingConfig      `yaml:"logging"`
}

// CoinGeckoConfig holds upstream API settings.
type CoinGeckoConfig struct {
	BaseURL        string        `yaml:"base_url"`
	APIKey         string        `yaml:"api_key"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	MaxAttempts    int           `yaml:"max_attempts"`
	RetryWait      time.Duration `yaml:"retry_wait"`
}

// ScanConfig controls which assets are listed and how fast they are walked.
type ScanConfig struct {
	Currency         string        `yaml:"currency"`
	Order            string        `yaml:"order"`
	PerPage          int           `yaml:"per_page"`
	Page             int           `yaml:"page"`
	AssetDelay       time.Duration `yaml:"asset_delay"`
	PreferredMarkets []string      `yaml:"preferred_markets"`
}

// OutputsConfig names the files written after a scan. Empty disables a format.
type OutputsConfig struct {
	JSON          string `yaml:"json"`
	CSV           string `yaml:"csv"`
	CSVDelimiter  string `yaml:"csv_delimiter"`
	ListSeparator string `yaml:"list_separator"`
}

// ServerConfig holds HTTP server settings. Port 0 disables the server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}
