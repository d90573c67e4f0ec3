// Package server provides the status HTTP server for the preparation daemon.
// It exposes a health endpoint for the preparation pipeline and the
// Prometheus metrics endpoint, with graceful shutdown.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/giygas/drugdb-prep/config"
	"github.com/giygas/drugdb-prep/interfaces"
	"github.com/giygas/drugdb-prep/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global server start time
var serverStartTime = time.Now()

// Server represents the status HTTP server
type Server struct {
	server   *http.Server
	router   chi.Router
	preparer interfaces.Preparer
	config   *config.Config
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, preparer interfaces.Preparer) *Server {
	router := chi.NewRouter()

	server := &Server{
		server: &http.Server{
			Handler:      router,
			Addr:         cfg.Address + ":" + cfg.Port,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router:   router,
		preparer: preparer,
		config:   cfg,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(requestLogger)
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())
}

// Start starts the server
func (s *Server) Start() error {
	logging.Info(fmt.Sprintf("Starting status server at: %s:%s", s.config.Address, s.config.Port))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down status server...")

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	logging.Info("Status server shutdown complete")
	return nil
}

// HealthData represents health check response data
type HealthData struct {
	Status          string `json:"status"`
	Uptime          string `json:"uptime"`
	MemoryUsage     int    `json:"memory_usage_mb"`
	CompactDatabase bool   `json:"compact_database"`
	LastRefresh     string `json:"last_refresh"`
	Refreshing      bool   `json:"refreshing"`
	RecordCount     int    `json:"record_count"`
}

// handleHealth reports pipeline health. The daemon is unhealthy without a
// compact database, degraded when refreshes have gone stale.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	lastRefresh := s.preparer.LastRun()
	hasCompact := s.preparer.HasCompactDatabase()

	status := "healthy"
	httpStatus := http.StatusOK
	switch {
	case !hasCompact:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	case time.Since(lastRefresh) > 25*time.Hour:
		status = "degraded"
	}

	respondWithJSON(w, httpStatus, HealthData{
		Status:          status,
		Uptime:          formatUptimeHuman(time.Since(serverStartTime)),
		MemoryUsage:     int(m.Alloc / 1024 / 1024),
		CompactDatabase: hasCompact,
		LastRefresh:     lastRefresh.Format(time.RFC3339),
		Refreshing:      s.preparer.IsRunning(),
		RecordCount:     s.preparer.RecordCount(),
	})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		logging.Warn("Failed to write response", "error", err)
	}
}

// formatUptimeHuman formats duration into a human-readable string
func formatUptimeHuman(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return strings.Join(parts, " ")
}

// requestLogger logs each request with its duration and status
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logging.Info("Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).String(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
