// Package interfaces defines core abstractions for the drug database
// preparation tools to improve testability and separation of concerns.
package interfaces

import "time"

// CompactStats summarizes a compactor run.
type CompactStats struct {
	Skipped      bool // target already existed, nothing was written
	Records      int
	BytesWritten int64
	Duration     time.Duration
}

// Compactor defines the contract for generating the compact database from
// the comprehensive one.
type Compactor interface {
	// Compact trims the source database into target. An existing target is
	// a no-op skip, a missing source is an error.
	Compact(source, target string) (CompactStats, error)
}

// Fetcher defines the contract for ensuring database files exist locally,
// downloading them from their configured URLs when absent.
type Fetcher interface {
	// EnsureFile downloads url into target unless target already exists.
	// An empty url is a warning, not an error.
	EnsureFile(target, url string) error
}

// Preparer defines the contract for the fetch-then-compact pipeline run by
// the preparation daemon.
type Preparer interface {
	// Run performs one fetch+compact cycle. Concurrent calls coalesce into
	// a single run.
	Run() error

	// State accessors for health reporting
	LastRun() time.Time
	IsRunning() bool
	RecordCount() int
	HasCompactDatabase() bool
}

// Scheduler defines the contract for job scheduling and health monitoring.
type Scheduler interface {
	Start() error
	Stop()
}
