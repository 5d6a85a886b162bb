package health

import (
	"sync"
	"time"
)

// Progress tracks the running scan. It is written by the scanner and read by
// the HTTP server, so every access goes through mu.
type Progress struct {
	mu         sync.RWMutex
	scanID     string
	total      int
	processed  int
	degraded   int
	lastAsset  string
	startedAt  time.Time
	finishedAt time.Time
	finished   bool
	err        error
}

// NewProgress creates an idle progress tracker.
func NewProgress() *Progress {
	return &Progress{}
}

// Start resets the tracker for a new scan.
func (p *Progress) Start(scanID string, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.scanID = scanID
	p.total = total
	p.processed = 0
	p.degraded = 0
	p.lastAsset = ""
	p.startedAt = time.Now()
	p.finishedAt = time.Time{}
	p.finished = false
	p.err = nil
}

// SetTotal updates the number of assets once the listing is known.
func (p *Progress) SetTotal(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
}

// Advance records one processed asset. degraded marks an asset with at
// least one absent field.
func (p *Progress) Advance(asset string, degraded bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.processed++
	p.lastAsset = asset
	if degraded {
		p.degraded++
	}
}

// Finish marks the scan as done. A non-nil err marks it as failed.
func (p *Progress) Finish(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.finished = true
	p.finishedAt = time.Now()
	p.err = err
}

// Snapshot returns a copy of the current state.
func (p *Progress) Snapshot() Report {
	p.mu.RLock()
	defer p.mu.RUnlock()

	r := Report{
		Status:    StatusHealthy,
		ScanID:    p.scanID,
		Total:     p.total,
		Processed: p.processed,
		Degraded:  p.degraded,
		LastAsset: p.lastAsset,
		Finished:  p.finished,
	}
	if !p.startedAt.IsZero() {
		started := p.startedAt
		r.StartedAt = &started
	}
	if !p.finishedAt.IsZero() {
		finished := p.finishedAt
		r.FinishedAt = &finished
	}

	switch {
	case p.err != nil:
		r.Status = StatusCritical
		r.Error = p.err.Error()
	case p.degraded > 0:
		r.Status = StatusDegraded
	}
	return r
}
