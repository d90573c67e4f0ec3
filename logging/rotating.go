package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// RotatingLogger is an io.Writer that appends to a per-ISO-week log file,
// starting a numbered sibling file when the current one crosses the size
// limit. Files older than the retention period are deleted opportunistically
// on rotation.
type RotatingLogger struct {
	logDir      string
	retention   time.Duration
	maxFileSize int64

	mu          sync.Mutex
	currentFile *os.File
	currentWeek string
	currentSeq  int
	currentSize int64
	lastCleanup time.Time
}

// NewRotatingLogger creates a rotating logger writing under logDir.
func NewRotatingLogger(logDir string, retentionWeeks int, maxFileSize int64) *RotatingLogger {
	return &RotatingLogger{
		logDir:      logDir,
		retention:   time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
		maxFileSize: maxFileSize,
	}
}

// weekKey returns the ISO week key in YYYY-Www format
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func (rl *RotatingLogger) fileName() string {
	if rl.currentSeq == 0 {
		return fmt.Sprintf("app-%s.log", rl.currentWeek)
	}
	return fmt.Sprintf("app-%s_%02d.log", rl.currentWeek, rl.currentSeq)
}

// rotate opens the file for the given week, advancing the sequence number
// when the size limit forced the rotation. Caller must hold the lock.
func (rl *RotatingLogger) rotate(week string, sizeRotation bool) error {
	if rl.currentFile != nil {
		if err := rl.currentFile.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file during rotation: %v\n", err)
		}
		rl.currentFile = nil
	}

	if week != rl.currentWeek {
		rl.currentWeek = week
		rl.currentSeq = 0
	} else if sizeRotation {
		rl.currentSeq++
	}

	path := filepath.Join(rl.logDir, rl.fileName())
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	rl.currentFile = file
	rl.currentSize = 0
	if info, err := file.Stat(); err == nil {
		rl.currentSize = info.Size()
	}

	// Piggyback retention cleanup on rotation, at most once a day
	if time.Since(rl.lastCleanup) > 24*time.Hour {
		rl.lastCleanup = time.Now()
		if err := rl.cleanupOldLogs(); err != nil {
			fmt.Fprintf(os.Stderr, "log cleanup failed: %v\n", err)
		}
	}

	return nil
}

// Write appends to the current log file, rotating on week change or when the
// write would exceed the size limit.
func (rl *RotatingLogger) Write(p []byte) (int, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	week := weekKey(time.Now())
	sizeRotation := rl.maxFileSize > 0 && rl.currentSize+int64(len(p)) > rl.maxFileSize

	if rl.currentFile == nil || week != rl.currentWeek || sizeRotation {
		if err := rl.rotate(week, sizeRotation); err != nil {
			return 0, err
		}
	}

	n, err := rl.currentFile.Write(p)
	rl.currentSize += int64(n)
	return n, err
}

// cleanupOldLogs removes log files older than the retention period. Caller
// must hold the lock.
func (rl *RotatingLogger) cleanupOldLogs() error {
	entries, err := os.ReadDir(rl.logDir)
	if err != nil {
		return fmt.Errorf("failed to read log directory: %w", err)
	}

	cutoff := time.Now().Add(-rl.retention)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "app-") || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			_ = os.Remove(filepath.Join(rl.logDir, entry.Name()))
		}
	}

	return nil
}

// Close closes the current log file.
func (rl *RotatingLogger) Close() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.currentFile == nil {
		return nil
	}
	err := rl.currentFile.Close()
	rl.currentFile = nil
	return err
}

// SetupLogger configures slog to log text to the console and JSON to a
// rotating file under logDir. Falls back to console-only logging when the
// directory cannot be used.
func SetupLogger(logDir string) *slog.Logger {
	return SetupLoggerWithOptions(logDir, slog.LevelInfo, 4, 100*1024*1024)
}

// SetupLoggerWithOptions configures slog with a custom console level,
// retention period and size limit. The file handler always records at debug
// level so the rotating file keeps the full history.
func SetupLoggerWithOptions(logDir string, consoleLevel slog.Level, retentionWeeks int, maxFileSize int64) *slog.Logger {
	consoleHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: consoleLevel,
	})

	if err := os.MkdirAll(logDir, 0750); err != nil {
		consoleLogger := slog.New(consoleHandler)
		consoleLogger.Error("Failed to create logs directory, logging to console only", "error", err)
		return consoleLogger
	}

	rotating := NewRotatingLogger(logDir, retentionWeeks, maxFileSize)
	fileHandler := slog.NewJSONHandler(rotating, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})

	return slog.New(&multiHandler{handlers: []slog.Handler{consoleHandler, fileHandler}})
}
