// Command prepd keeps the database files fresh: it runs an initial
// fetch+compact cycle, schedules daily refreshes and serves /health and
// /metrics while running. Shuts down gracefully on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/giygas/drugdb-prep/compactor"
	"github.com/giygas/drugdb-prep/config"
	"github.com/giygas/drugdb-prep/fetcher"
	"github.com/giygas/drugdb-prep/logging"
	"github.com/giygas/drugdb-prep/pipeline"
	"github.com/giygas/drugdb-prep/scheduler"
	"github.com/giygas/drugdb-prep/server"
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

	preparer := pipeline.NewPreparer(
		fetcher.New(cfg.DownloadTimeout, cfg.DownloadRateLimit),
		compactor.New(),
		cfg,
	)

	sched := scheduler.NewScheduler(preparer, cfg.RefreshTimes)
	if err := sched.Start(); err != nil {
		logging.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	srv := server.NewServer(cfg, preparer)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Status server failed to start", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Status server shutdown failed", "error", err)
	}
}
