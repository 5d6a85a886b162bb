// Package health reports scan progress over HTTP.
package health

import "time"

// SystemStatus represents the overall health state of the scanner.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// Report is a point-in-time copy of the scan progress.
type Report struct {
	Status     SystemStatus `json:"status"`
	ScanID     string       `json:"scan_id,omitempty"`
	Total      int          `json:"total"`
	Processed  int          `json:"processed"`
	Degraded   int          `json:"degraded"`
	LastAsset  string       `json:"last_asset,omitempty"`
	StartedAt  *time.Time   `json:"started_at,omitempty"`
	FinishedAt *time.Time   `json:"finished_at,omitempty"`
	Finished   bool         `json:"finished"`
	Error      string       `json:"error,omitempty"`
}
