// Command compactdb generates the memory-friendly compact drug database from
// the comprehensive one. It takes no arguments; paths come from DATA_DIR and
// the run is a no-op when the compact file already exists. A missing source
// database is fatal.
package main

import (
	"os"

	"github.com/giygas/drugdb-prep/compactor"
	"github.com/giygas/drugdb-prep/config"
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

	c := compactor.New()
	if _, err := c.Compact(cfg.FullDatabasePath(), cfg.CompactDatabasePath()); err != nil {
		logging.Error("Compact database generation failed", "error", err)
		os.Exit(1)
	}
}
