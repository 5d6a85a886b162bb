// Package rest implements a retrying JSON-over-HTTP client bound to one base URL.
//
// Every request is classified by status code:
//   - < 300: success, the raw body is returned
//   - 429 and >= 500: retryable StatusError, retried under the client's policy
//   - any other status >= 300: fatal StatusError, returned immediately
//
// When retries are exhausted Do returns a nil body and a nil error, so callers
// treat an unavailable upstream like an empty response.
package rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vietddude/assetscan/internal/indexing/metrics"
	"github.com/vietddude/assetscan/internal/infra/retry"
)

const (
	DefaultConnectTimeout = 10 * time.Second
	DefaultReadTimeout    = 30 * time.Second
)

// Config holds client settings.
type Config struct {
	BaseURL        string
	Headers        map[string]string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	Retry          retry.Policy
	Logger         *slog.Logger
}

// Client issues requests against a fixed base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	policy     retry.Policy
	log        *slog.Logger

	mu      sync.RWMutex
	headers map[string]string
}

// New creates a Client. The read timeout must exceed the connect timeout.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base url is required")
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.ReadTimeout <= cfg.ConnectTimeout {
		return nil, fmt.Errorf("read timeout %s must exceed connect timeout %s", cfg.ReadTimeout, cfg.ConnectTimeout)
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = retry.DefaultPolicy
	}
	if err := cfg.Retry.Validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	policy := cfg.Retry
	policy.Retryable = IsRetryable

	headers := make(map[string]string, len(cfg.Headers))
	maps.Copy(headers, cfg.Headers)

	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.ConnectTimeout + cfg.ReadTimeout,
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           dialer.DialContext,
				TLSHandshakeTimeout:   cfg.ConnectTimeout,
				ResponseHeaderTimeout: cfg.ReadTimeout,
				MaxIdleConns:          10,
				IdleConnTimeout:       90 * time.Second,
			},
		},
		policy:  policy,
		log:     cfg.Logger.With("component", "rest"),
		headers: headers,
	}, nil
}

// SetHeader adds or replaces a default header sent with every request.
func (c *Client) SetHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers[key] = value
}

// Header returns the default header value for key.
func (c *Client) Header(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.headers[key]
	return v, ok
}

// Get is a shorthand for Do with a GET Operation.
func (c *Client) Get(ctx context.Context, name, path string, query url.Values) ([]byte, error) {
	return c.Do(ctx, NewGetOperation(name, path, query))
}

// Do executes op under the retry policy.
// A nil body with a nil error means the upstream stayed unavailable.
func (c *Client) Do(ctx context.Context, op Operation) ([]byte, error) {
	policy := c.policy
	policy.OnRetry = func(attempt int, err error) {
		metrics.HTTPRetriesTotal.WithLabelValues(op.name()).Inc()
		c.log.Warn("retrying request",
			"operation", op.name(),
			"attempt", attempt,
			"wait", policy.Wait,
			"error", err,
		)
	}

	body, err := retry.Do(ctx, policy, func(ctx context.Context) ([]byte, error) {
		return c.once(ctx, op)
	})
	if err != nil {
		return nil, err
	}
	if body == nil {
		c.log.Warn("retries exhausted, returning empty result",
			"operation", op.name(),
			"attempts", policy.MaxAttempts,
		)
	}
	return body, nil
}

func (c *Client) once(ctx context.Context, op Operation) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, op.method(), c.url(op), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	c.mu.RLock()
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	c.mu.RUnlock()

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.HTTPRequestDuration.WithLabelValues(op.name()).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.HTTPRequestsTotal.WithLabelValues(op.name(), "error").Inc()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &StatusError{Kind: KindRetryable, Operation: op.name(), Err: err}
	}
	defer resp.Body.Close()

	metrics.HTTPRequestsTotal.WithLabelValues(op.name(), strconv.Itoa(resp.StatusCode)).Inc()

	body, readErr := io.ReadAll(resp.Body)

	// The status decides the kind; a broken body never turns a 4xx retryable.
	if kind, failed := Classify(resp.StatusCode); failed {
		return nil, &StatusError{
			Kind:       kind,
			Operation:  op.name(),
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Err:        readErr,
		}
	}
	if readErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &StatusError{Kind: KindRetryable, Operation: op.name(), StatusCode: resp.StatusCode, Err: readErr}
	}

	c.log.Debug("request completed",
		"operation", op.name(),
		"status", resp.StatusCode,
		"bytes", len(body),
		"latency", time.Since(start),
	)
	return body, nil
}

func (c *Client) url(op Operation) string {
	u := c.baseURL + "/" + strings.TrimLeft(op.Path, "/")
	if len(op.Query) > 0 {
		u += "?" + op.Query.Encode()
	}
	return u
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
