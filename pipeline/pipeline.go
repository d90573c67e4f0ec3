// Package pipeline coordinates the fetch and compact steps into a single
// preparation run for the daemon. Run state lives in atomics so the status
// server can read it without locking.
package pipeline

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/giygas/drugdb-prep/config"
	"github.com/giygas/drugdb-prep/interfaces"
	"github.com/giygas/drugdb-prep/logging"
	"github.com/giygas/drugdb-prep/metrics"
	"github.com/giygas/drugdb-prep/validation"
)

// Compile-time check to ensure Preparer implements the Preparer interface
var _ interfaces.Preparer = (*Preparer)(nil)

// Preparer runs the fetch-then-compact pipeline with injected dependencies.
type Preparer struct {
	fetcher   interfaces.Fetcher
	compactor interfaces.Compactor
	cfg       *config.Config

	lastRun atomic.Value // time.Time
	records atomic.Int64
	running atomic.Bool
}

// NewPreparer creates a preparer with injected dependencies
func NewPreparer(fetcher interfaces.Fetcher, compactor interfaces.Compactor, cfg *config.Config) *Preparer {
	p := &Preparer{
		fetcher:   fetcher,
		compactor: compactor,
		cfg:       cfg,
	}
	p.lastRun.Store(time.Time{})
	return p
}

// Run performs one preparation cycle: ensure both database files exist, then
// generate the compact database when the comprehensive one is available.
// Download failures are soft: the run continues and still counts as
// completed. Only a failed compaction is an error. Concurrent calls coalesce
// into the run already in progress.
func (p *Preparer) Run() error {
	if !p.running.CompareAndSwap(false, true) {
		logging.Info("Preparation already in progress, skipping...")
		return nil
	}
	defer p.running.Store(false)

	logging.Info("Starting database preparation")
	start := time.Now()

	compactPath := p.cfg.CompactDatabasePath()
	fullPath := p.cfg.FullDatabasePath()

	// Both downloads are soft failures so one broken URL cannot block the
	// other file.
	_ = p.fetcher.EnsureFile(compactPath, p.cfg.CompactDatabaseURL)
	_ = p.fetcher.EnsureFile(fullPath, p.cfg.FullDatabaseURL)

	if _, err := os.Stat(fullPath); err == nil {
		stats, err := p.compactor.Compact(fullPath, compactPath)
		if err != nil {
			return fmt.Errorf("compacting database: %w", err)
		}
		if !stats.Skipped {
			p.records.Store(int64(stats.Records))

			report, err := validation.ValidateCompactFile(compactPath)
			if err != nil {
				logging.Warn("Compact database failed validation", "error", err)
			} else {
				validation.LogReport(report)
			}
		}
	}

	if !p.HasCompactDatabase() && !fileExists(fullPath) {
		logging.Warn("No database files available, downstream consumers will fail")
	}

	p.lastRun.Store(time.Now())
	metrics.LastRefresh.SetToCurrentTime()

	logging.Info("Database preparation completed", "duration", time.Since(start).String())
	return nil
}

// LastRun returns the completion time of the last successful run.
func (p *Preparer) LastRun() time.Time {
	if v := p.lastRun.Load(); v != nil {
		if t, ok := v.(time.Time); ok {
			return t
		}
	}
	return time.Time{}
}

// IsRunning reports whether a preparation run is in progress.
func (p *Preparer) IsRunning() bool {
	return p.running.Load()
}

// RecordCount returns the record count of the last compaction, 0 when no
// compaction has run in this process.
func (p *Preparer) RecordCount() int {
	return int(p.records.Load())
}

// HasCompactDatabase reports whether the compact database file exists.
func (p *Preparer) HasCompactDatabase() bool {
	return fileExists(p.cfg.CompactDatabasePath())
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
