// Command fetchdb downloads the database files that are absent locally.
// COMPACT_DATABASE_URL defaults to the shared drive link; DATABASE_URL has
// no default, fetching the full database is opt-in. Download failures are
// logged but never fatal, so the exit code is always zero once the
// configuration loads.
package main

import (
	"os"

	"github.com/giygas/drugdb-prep/config"
	"github.com/giygas/drugdb-prep/fetcher"
	"github.com/giygas/drugdb-prep/logging"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine, the environment may be set directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.InitLoggerWithOptions("logs", cfg.LogLevel, cfg.LogRetentionWeeks, cfg.MaxLogFileSize)

	f := fetcher.New(cfg.DownloadTimeout, cfg.DownloadRateLimit)

	// Failures are soft: each file is independent and a broken URL for one
	// must not prevent fetching the other.
	_ = f.EnsureFile(cfg.CompactDatabasePath(), cfg.CompactDatabaseURL)
	_ = f.EnsureFile(cfg.FullDatabasePath(), cfg.FullDatabaseURL)

	if !fileExists(cfg.CompactDatabasePath()) && !fileExists(cfg.FullDatabasePath()) {
		logging.Warn("No database files available, downstream consumers will fail")
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
