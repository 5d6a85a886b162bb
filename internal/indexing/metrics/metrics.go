package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal tracks upstream requests per operation and status code
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetscan_http_requests_total",
			Help: "Total number of upstream HTTP requests",
		},
		[]string{"operation", "code"},
	)

	// HTTPRetriesTotal tracks retries scheduled after a retryable failure
	HTTPRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetscan_http_retries_total",
			Help: "Total number of upstream HTTP retries",
		},
		[]string{"operation"},
	)

	// HTTPRequestDuration tracks upstream request latency
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assetscan_http_request_duration_seconds",
			Help:    "Upstream HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// AssetsProcessed tracks resolved fields per outcome (present, absent, error)
	AssetsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetscan_assets_processed_total",
			Help: "Total number of asset fields resolved",
		},
		[]string{"field", "outcome"},
	)

	// ExportsTotal tracks exporter runs per sink and result
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetscan_exports_total",
			Help: "Total number of exporter runs",
		},
		[]string{"sink", "result"},
	)

	// ScanAssets tracks the number of assets returned by the last listing
	ScanAssets = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "assetscan_scan_assets",
			Help: "Number of assets in the current scan",
		},
	)

	// ScanListedVolume tracks the summed 24h volume of the listed assets
	ScanListedVolume = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "assetscan_scan_listed_volume",
			Help: "Summed 24h trading volume of the assets in the current scan, in the listing currency",
		},
	)

	// DBConnectionPoolUsage tracks the share of open database connections (0-100)
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "assetscan_db_connection_pool_usage",
			Help: "Database connection pool usage percentage",
		},
	)
)
