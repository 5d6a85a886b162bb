package coingecko

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vietddude/assetscan/internal/infra/rest"
	"github.com/vietddude/assetscan/internal/infra/retry"
)

func newTestClient(t *testing.T, baseURL, apiKey string) *Client {
	t.Helper()
	c, err := New(Config{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Retry:   retry.Policy{MaxAttempts: 2, Wait: time.Millisecond},
	}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func TestClient_ListTopAssets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/coins/markets" {
			t.Errorf("expected path /coins/markets, got %s", r.URL.Path)
		}
		q := r.URL.Query()
		want := map[string]string{
			"vs_currency": "eur",
			"order":       "volume_desc",
			"per_page":    "10",
			"page":        "1",
		}
		for k, v := range want {
			if q.Get(k) != v {
				t.Errorf("expected %s=%s, got %q", k, v, q.Get(k))
			}
		}
		if got := r.Header.Get(APIKeyHeader); got != "demo-key" {
			t.Errorf("expected api key header demo-key, got %q", got)
		}
		_, _ = w.Write([]byte(`[
			{"id":"bitcoin","symbol":"btc","name":"Bitcoin","current_price":65000.5,"total_volume":31000000000,"market_cap_rank":1},
			{"id":"tether","symbol":"usdt","name":"Tether","current_price":1,"total_volume":null,"market_cap_rank":null}
		]`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "demo-key")
	assets, err := c.ListTopAssets(context.Background(), ListParams{Currency: "eur", PerPage: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("expected 2 assets, got %d", len(assets))
	}
	if assets[0].ID != "bitcoin" || assets[0].Name != "Bitcoin" {
		t.Errorf("unexpected first asset %+v", assets[0])
	}
	if !assets[0].TotalVolume.Valid || assets[0].TotalVolume.Decimal.String() != "31000000000" {
		t.Errorf("unexpected volume %v", assets[0].TotalVolume)
	}
	if assets[0].MarketCapRank == nil || *assets[0].MarketCapRank != 1 {
		t.Errorf("unexpected rank %v", assets[0].MarketCapRank)
	}
	if assets[1].TotalVolume.Valid {
		t.Errorf("expected null volume to be invalid, got %v", assets[1].TotalVolume)
	}
}

func TestClient_ListTopAssets_NoAPIKeyHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Header[http.CanonicalHeaderKey(APIKeyHeader)]; ok {
			t.Error("api key header must be omitted when no key is configured")
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "")
	assets, err := c.ListTopAssets(context.Background(), ListParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(assets) != 0 {
		t.Errorf("expected no assets, got %d", len(assets))
	}
}

func TestClient_ListTopAssets_Unavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "")
	assets, err := c.ListTopAssets(context.Background(), DefaultListParams)
	if err != nil {
		t.Fatalf("expected nil error after exhaustion, got %v", err)
	}
	if assets != nil {
		t.Errorf("expected nil assets, got %v", assets)
	}
}

func TestClient_ListTopAssets_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "bad-key")
	_, err := c.ListTopAssets(context.Background(), DefaultListParams)
	if !rest.IsFatal(err) {
		t.Fatalf("expected fatal error, got %v", err)
	}
}

func TestClient_ListTopAssets_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"not a list"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "")
	if _, err := c.ListTopAssets(context.Background(), DefaultListParams); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestClient_ListTopAssets_BadAmountIsNull(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id":"a","name":"A","current_price":"n/a","total_volume":{"usd":1}},
			{"id":"b","name":"B","current_price":"2.50","total_volume":1200.5},
			{"id":"c","name":"C","total_volume":99.5}
		]`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "")
	assets, err := c.ListTopAssets(context.Background(), DefaultListParams)
	if err != nil {
		t.Fatalf("bad amount should not fail the listing: %v", err)
	}
	if len(assets) != 3 {
		t.Fatalf("expected 3 assets, got %d", len(assets))
	}
	if assets[0].CurrentPrice.Valid || assets[0].TotalVolume.Valid {
		t.Errorf("unparsable amounts should be null: %+v", assets[0])
	}
	if !assets[1].CurrentPrice.Valid || assets[1].CurrentPrice.Decimal.String() != "2.5" {
		t.Errorf("quoted price = %v", assets[1].CurrentPrice)
	}
	if got := TotalVolume(assets).String(); got != "1300" {
		t.Errorf("TotalVolume = %s, want 1300", got)
	}
}

func TestClient_AssetEndpoints(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/coins/wrapped-bitcoin":
			_, _ = w.Write([]byte(`{"name":"Wrapped Bitcoin"}`))
		case "/coins/wrapped-bitcoin/tickers":
			_, _ = w.Write([]byte(`{"tickers":[]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "")
	detail, err := c.GetAssetDetail(context.Background(), "wrapped-bitcoin")
	if err != nil {
		t.Fatalf("GetAssetDetail: %v", err)
	}
	if string(detail) != `{"name":"Wrapped Bitcoin"}` {
		t.Errorf("unexpected detail %s", detail)
	}

	tickers, err := c.GetAssetTickers(context.Background(), "wrapped-bitcoin")
	if err != nil {
		t.Fatalf("GetAssetTickers: %v", err)
	}
	if string(tickers) != `{"tickers":[]}` {
		t.Errorf("unexpected tickers %s", tickers)
	}

	if _, err := c.GetAssetDetail(context.Background(), "missing"); !rest.IsFatal(err) {
		t.Errorf("expected fatal 404, got %v", err)
	}
}
