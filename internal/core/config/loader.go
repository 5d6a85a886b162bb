package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
	"unicode/utf8"

	"github.com/vietddude/assetscan/internal/indexing/resolve"
	"gopkg.in/yaml.v2"
)

// APIKeyEnv is read when the config file does not set coingecko.api_key.
const APIKeyEnv = "COINGECKO_API_KEY"

// Defaults
const (
	DefaultBaseURL        = "https://api.coingecko.com/api/v3"
	DefaultConnectTimeout = 10 * time.Second
	DefaultReadTimeout    = 30 * time.Second
	DefaultMaxAttempts    = 3
	DefaultRetryWait      = 10 * time.Second
	DefaultCurrency       = "usd"
	DefaultOrder          = "volume_desc"
	DefaultPerPage        = 100
	DefaultAssetDelay     = 4 * time.Second
	DefaultJSONOutput     = "assets.json"
	DefaultCSVOutput      = "assets.csv"
	DefaultLogLevel       = "info"
)

// Load reads configuration from a YAML file. When optional is set a missing
// file yields the built-in defaults.
func Load(path string, optional bool) (*AppConfig, error) {
	cfg := newConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// Expand environment variables in the YAML content
		expandedData := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case optional && errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *AppConfig {
	cfg := newConfig()
	cfg.applyDefaults()
	return &cfg
}

// newConfig presets the durations for which zero is a valid setting, so an
// explicit 0s in the file is kept instead of being replaced by a default.
func newConfig() AppConfig {
	var cfg AppConfig
	cfg.CoinGecko.RetryWait = DefaultRetryWait
	cfg.Scan.AssetDelay = DefaultAssetDelay
	return cfg
}

func (c *AppConfig) applyDefaults() {
	cg := &c.CoinGecko
	if cg.BaseURL == "" {
		cg.BaseURL = DefaultBaseURL
	}
	if cg.APIKey == "" {
		cg.APIKey = os.Getenv(APIKeyEnv)
	}
	if cg.ConnectTimeout == 0 {
		cg.ConnectTimeout = DefaultConnectTimeout
	}
	if cg.ReadTimeout == 0 {
		cg.ReadTimeout = DefaultReadTimeout
	}
	if cg.MaxAttempts == 0 {
		cg.MaxAttempts = DefaultMaxAttempts
	}

	s := &c.Scan
	if s.Currency == "" {
		s.Currency = DefaultCurrency
	}
	if s.Order == "" {
		s.Order = DefaultOrder
	}
	if s.PerPage == 0 {
		s.PerPage = DefaultPerPage
	}
	if s.Page == 0 {
		s.Page = 1
	}
	if s.PreferredMarkets == nil {
		s.PreferredMarkets = append([]string(nil), resolve.DefaultPreferredMarkets...)
	}

	o := &c.Outputs
	if o.JSON == "" && o.CSV == "" {
		o.JSON = DefaultJSONOutput
		o.CSV = DefaultCSVOutput
	}
	if o.CSVDelimiter == "" {
		o.CSVDelimiter = ","
	}
	if o.ListSeparator == "" {
		o.ListSeparator = ", "
	}

	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
}

// Validate checks values that defaults cannot repair.
func (c *AppConfig) Validate() error {
	cg := c.CoinGecko
	if cg.MaxAttempts < 1 {
		return fmt.Errorf("coingecko.max_attempts must be >= 1, got %d", cg.MaxAttempts)
	}
	if cg.RetryWait < 0 {
		return fmt.Errorf("coingecko.retry_wait must not be negative, got %s", cg.RetryWait)
	}
	if cg.ReadTimeout <= cg.ConnectTimeout {
		return fmt.Errorf("coingecko.read_timeout (%s) must exceed connect_timeout (%s)",
			cg.ReadTimeout, cg.ConnectTimeout)
	}
	if c.Scan.PerPage < 1 || c.Scan.PerPage > 250 {
		return fmt.Errorf("scan.per_page must be in [1, 250], got %d", c.Scan.PerPage)
	}
	if c.Scan.Page < 1 {
		return fmt.Errorf("scan.page must be >= 1, got %d", c.Scan.Page)
	}
	if c.Scan.AssetDelay < 0 {
		return fmt.Errorf("scan.asset_delay must not be negative, got %s", c.Scan.AssetDelay)
	}
	if utf8.RuneCountInString(c.Outputs.CSVDelimiter) != 1 {
		return fmt.Errorf("outputs.csv_delimiter must be a single character, got %q", c.Outputs.CSVDelimiter)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}

// Delimiter returns the CSV column delimiter as a rune.
func (o OutputsConfig) Delimiter() rune {
	r, _ := utf8.DecodeRuneInString(o.CSVDelimiter)
	return r
}
