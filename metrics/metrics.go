// Package metrics provides Prometheus metrics for the database preparation
// runs:
//   - drug_records_compacted_total: Counter of trimmed records written
//   - database_compact_duration_seconds: Histogram of full compaction runs
//   - database_download_bytes_total: Counter of payload bytes written to disk
//   - database_download_failures_total: Counter of failed download attempts
//   - database_last_refresh_timestamp_seconds: Gauge set after each pipeline run
//
// All metrics are registered with the Prometheus default registry during
// package initialization and served by the prepd status server.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RecordsCompacted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "drug_records_compacted_total",
			Help: "Total drug records written to the compact database",
		},
	)

	CompactDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "database_compact_duration_seconds",
			Help:    "Duration of full compaction runs",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		},
	)

	DownloadBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "database_download_bytes_total",
			Help: "Total bytes downloaded to database files",
		},
	)

	DownloadFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "database_download_failures_total",
			Help: "Total failed database download attempts",
		},
	)

	LastRefresh = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_last_refresh_timestamp_seconds",
			Help: "Unix time of the last completed preparation run",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RecordsCompacted,
		CompactDuration,
		DownloadBytes,
		DownloadFailures,
		LastRefresh,
	)
}
