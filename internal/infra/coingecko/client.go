// Package coingecko shapes requests for the CoinGecko v3 API.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/vietddude/assetscan/internal/infra/rest"
	"github.com/vietddude/assetscan/internal/infra/retry"
)

const (
	DefaultBaseURL = "https://api.coingecko.com/api/v3"
	APIKeyHeader   = "x-cg-demo-api-key"
)

// Operation names used in logs and metrics.
const (
	OpListTopAssets   = "coins_markets"
	OpGetAssetDetail  = "coin_detail"
	OpGetAssetTickers = "coin_tickers"
)

// Config holds CoinGecko client settings.
type Config struct {
	BaseURL        string
	APIKey         string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	Retry          retry.Policy
}

// Client exposes the read-only endpoints used by a scan.
type Client struct {
	http *rest.Client
}

// New creates a Client. The API key header is only sent when a key is set.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	headers := map[string]string{}
	if cfg.APIKey != "" {
		headers[APIKeyHeader] = cfg.APIKey
	}

	httpClient, err := rest.New(rest.Config{
		BaseURL:        cfg.BaseURL,
		Headers:        headers,
		ConnectTimeout: cfg.ConnectTimeout,
		ReadTimeout:    cfg.ReadTimeout,
		Retry:          cfg.Retry,
		Logger:         logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}
	return &Client{http: httpClient}, nil
}

// ListTopAssets returns one page of assets. A nil slice with a nil error
// means the upstream stayed unavailable.
func (c *Client) ListTopAssets(ctx context.Context, params ListParams) ([]AssetSummary, error) {
	params = params.withDefaults()
	query := url.Values{
		"vs_currency": {params.Currency},
		"order":       {params.Order},
		"per_page":    {strconv.Itoa(params.PerPage)},
		"page":        {strconv.Itoa(params.Page)},
	}

	body, err := c.http.Get(ctx, OpListTopAssets, "/coins/markets", query)
	if err != nil {
		return nil, fmt.Errorf("list top assets: %w", err)
	}
	if body == nil {
		return nil, nil
	}

	var assets []AssetSummary
	if err := json.Unmarshal(body, &assets); err != nil {
		return nil, fmt.Errorf("decode top assets: %w", err)
	}
	return assets, nil
}

// GetAssetDetail returns the raw /coins/{id} payload.
func (c *Client) GetAssetDetail(ctx context.Context, assetID string) ([]byte, error) {
	body, err := c.http.Get(ctx, OpGetAssetDetail, "/coins/"+url.PathEscape(assetID), nil)
	if err != nil {
		return nil, fmt.Errorf("get asset detail %s: %w", assetID, err)
	}
	return body, nil
}

// GetAssetTickers returns the raw /coins/{id}/tickers payload.
func (c *Client) GetAssetTickers(ctx context.Context, assetID string) ([]byte, error) {
	body, err := c.http.Get(ctx, OpGetAssetTickers, "/coins/"+url.PathEscape(assetID)+"/tickers", nil)
	if err != nil {
		return nil, fmt.Errorf("get asset tickers %s: %w", assetID, err)
	}
	return body, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	return c.http.Close()
}
