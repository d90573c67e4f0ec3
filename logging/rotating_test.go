package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWeekKeyFormat(t *testing.T) {
	key := weekKey(time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC))
	if key != "2024-W10" {
		t.Errorf("Expected 2024-W10, got %s", key)
	}
}

func TestRotatingLoggerWritesToWeeklyFile(t *testing.T) {
	dir := t.TempDir()
	rl := NewRotatingLogger(dir, 4, 0)
	defer rl.Close()

	msg := []byte("hello log\n")
	n, err := rl.Write(msg)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != len(msg) {
		t.Errorf("Expected %d bytes written, got %d", len(msg), n)
	}

	path := filepath.Join(dir, "app-"+weekKey(time.Now())+".log")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected weekly log file: %v", err)
	}
	if string(data) != string(msg) {
		t.Errorf("Unexpected file content: %q", data)
	}
}

func TestRotatingLoggerSizeRotation(t *testing.T) {
	dir := t.TempDir()
	rl := NewRotatingLogger(dir, 4, 16)
	defer rl.Close()

	line := []byte("0123456789\n") // 11 bytes, two lines cross the 16 byte limit
	if _, err := rl.Write(line); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if _, err := rl.Write(line); err != nil {
		t.Fatalf("second write failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 2 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("Expected 2 log files after size rotation, got %v", names)
	}

	foundNumbered := false
	for _, entry := range entries {
		if strings.Contains(entry.Name(), "_01.log") {
			foundNumbered = true
		}
	}
	if !foundNumbered {
		t.Error("Expected a numbered sibling file after size rotation")
	}
}

func TestRotatingLoggerCleanup(t *testing.T) {
	dir := t.TempDir()

	old := filepath.Join(dir, "app-2020-W01.log")
	if err := os.WriteFile(old, []byte("ancient"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	past := time.Now().Add(-90 * 24 * time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	unrelated := filepath.Join(dir, "keep.txt")
	if err := os.WriteFile(unrelated, []byte("keep"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := os.Chtimes(unrelated, past, past); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	rl := NewRotatingLogger(dir, 4, 0)
	defer rl.Close()
	if err := rl.cleanupOldLogs(); err != nil {
		t.Fatalf("cleanupOldLogs failed: %v", err)
	}

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("Expected old log file to be removed")
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Error("Expected unrelated file to survive cleanup")
	}
}

func TestSetupLoggerFallsBackWithoutDirectory(t *testing.T) {
	// A file where the directory should be forces the fallback path
	dir := t.TempDir()
	blocked := filepath.Join(dir, "blocked")
	if err := os.WriteFile(blocked, []byte("file"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	logger := SetupLogger(filepath.Join(blocked, "logs"))
	if logger == nil {
		t.Fatal("Expected a fallback console logger")
	}
	logger.Info("still works")
}

func TestGlobalLoggingWithoutInit(t *testing.T) {
	saved := DefaultLoggingService
	DefaultLoggingService = nil
	defer func() { DefaultLoggingService = saved }()

	// Must not panic before InitLogger runs
	Info("info message", "key", "value")
	Warn("warn message")
	Error("error message")
	Debug("debug message")
}

func TestSetupLoggerWritesFile(t *testing.T) {
	dir := t.TempDir()
	logger := SetupLoggerWithOptions(dir, slog.LevelInfo, 1, 1024*1024)
	logger.Info("a structured message", "component", "test")

	matches, err := filepath.Glob(filepath.Join(dir, "app-*.log"))
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("Expected one log file, got %v", matches)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.Contains(string(data), "a structured message") {
		t.Errorf("Expected message in log file, got: %s", data)
	}
}
