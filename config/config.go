// Package config has the configuration file for the preparation tools
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// File names of the two database files, always resolved under DataDir.
const (
	FullDatabaseFile    = "comprehensive_drug_database.json"
	CompactDatabaseFile = "comprehensive_drug_database_compact.json"
)

// DefaultCompactDatabaseURL is the share link used when COMPACT_DATABASE_URL
// is not set. The full database has no default: fetching it is opt-in only.
const DefaultCompactDatabaseURL = "https://drive.google.com/file/d/12o_cdObA01lxXJMY8LjCqlPVrXF56bZF/view?usp=drive_link"

// Config holds all application configuration
type Config struct {
	DataDir            string
	CompactDatabaseURL string
	FullDatabaseURL    string
	DownloadRateLimit  int64         // Bytes per second, 0 disables throttling
	DownloadTimeout    time.Duration // Per-request timeout for downloads
	Port               string
	Address            string
	Env                string
	LogLevel           string
	LogRetentionWeeks  int    // Number of weeks to keep log files
	MaxLogFileSize     int64  // Maximum log file size in bytes
	RefreshTimes       string // Daily refresh times for prepd, ";" separated
}

// Load loads and validates configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DataDir:            getEnvWithDefault("DATA_DIR", "."),
		CompactDatabaseURL: getEnvWithDefault("COMPACT_DATABASE_URL", DefaultCompactDatabaseURL),
		FullDatabaseURL:    os.Getenv("DATABASE_URL"),
		DownloadRateLimit:  getInt64EnvWithDefault("DOWNLOAD_RATE_LIMIT", 0),
		DownloadTimeout:    time.Duration(getIntEnvWithDefault("DOWNLOAD_TIMEOUT_MINUTES", 15)) * time.Minute,
		Port:               getEnvWithDefault("PORT", "8000"),
		Address:            getEnvWithDefault("ADDRESS", "127.0.0.1"),
		Env:                getEnvWithDefault("ENV", "dev"),
		LogLevel:           getEnvWithDefault("LOG_LEVEL", "info"),
		LogRetentionWeeks:  getIntEnvWithDefault("LOG_RETENTION_WEEKS", 4),
		MaxLogFileSize:     getInt64EnvWithDefault("MAX_LOG_FILE_SIZE", 104857600), // 100MB default
		RefreshTimes:       getEnvWithDefault("REFRESH_TIMES", "06:00;18:00"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// FullDatabasePath returns the path of the comprehensive database file.
func (c *Config) FullDatabasePath() string {
	return filepath.Join(c.DataDir, FullDatabaseFile)
}

// CompactDatabasePath returns the path of the compact database file.
func (c *Config) CompactDatabasePath() string {
	return filepath.Join(c.DataDir, CompactDatabaseFile)
}

// validateConfig validates all configuration values
func validateConfig(cfg *Config) error {
	if err := validateDataDir(cfg.DataDir); err != nil {
		return fmt.Errorf("invalid DATA_DIR: %w", err)
	}

	if err := validateURL(cfg.CompactDatabaseURL); err != nil {
		return fmt.Errorf("invalid COMPACT_DATABASE_URL: %w", err)
	}

	if err := validateURL(cfg.FullDatabaseURL); err != nil {
		return fmt.Errorf("invalid DATABASE_URL: %w", err)
	}

	if err := validateRateLimit(cfg.DownloadRateLimit); err != nil {
		return fmt.Errorf("invalid DOWNLOAD_RATE_LIMIT: %w", err)
	}

	if err := validateDownloadTimeout(cfg.DownloadTimeout); err != nil {
		return fmt.Errorf("invalid DOWNLOAD_TIMEOUT_MINUTES: %w", err)
	}

	if err := validatePort(cfg.Port); err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	if err := validateAddress(cfg.Address); err != nil {
		return fmt.Errorf("invalid ADDRESS: %w", err)
	}

	if err := validateEnv(cfg.Env); err != nil {
		return fmt.Errorf("invalid ENV: %w", err)
	}

	if err := validateLogLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if err := validateLogRetentionWeeks(cfg.LogRetentionWeeks); err != nil {
		return fmt.Errorf("invalid LOG_RETENTION_WEEKS: %w", err)
	}

	if err := validateMaxLogFileSize(cfg.MaxLogFileSize); err != nil {
		return fmt.Errorf("invalid MAX_LOG_FILE_SIZE: %w", err)
	}

	if err := validateRefreshTimes(cfg.RefreshTimes); err != nil {
		return fmt.Errorf("invalid REFRESH_TIMES: %w", err)
	}

	return nil
}

// validateDataDir validates the DATA_DIR environment variable
func validateDataDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("DATA_DIR cannot be empty")
	}
	return nil
}

// validateURL validates database URL environment variables. An empty URL is
// allowed: the corresponding download is simply skipped.
func validateURL(rawURL string) error {
	if rawURL == "" {
		return nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("must be a valid URL: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must use http or https, got: %s", u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("must include a host")
	}

	return nil
}

// validateRateLimit validates the DOWNLOAD_RATE_LIMIT environment variable
func validateRateLimit(limit int64) error {
	if limit < 0 {
		return fmt.Errorf("DOWNLOAD_RATE_LIMIT must be zero or positive, got: %d", limit)
	}

	// Below 32KB/s a single chunk would take over a second
	if limit > 0 && limit < 32*1024 {
		return fmt.Errorf("DOWNLOAD_RATE_LIMIT is too small (min 32KB/s), got: %d", limit)
	}

	return nil
}

// validateDownloadTimeout validates the DOWNLOAD_TIMEOUT_MINUTES environment variable
func validateDownloadTimeout(timeout time.Duration) error {
	if timeout < time.Minute {
		return fmt.Errorf("DOWNLOAD_TIMEOUT_MINUTES must be at least 1, got: %s", timeout)
	}

	if timeout > 4*time.Hour {
		return fmt.Errorf("DOWNLOAD_TIMEOUT_MINUTES is too large (max 240), got: %s", timeout)
	}

	return nil
}

// validatePort validates the PORT environment variable
func validatePort(port string) error {
	if port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid number: %w", err)
	}

	if portNum < 1 || portNum > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}

	// Check for privileged ports
	if portNum < 1024 {
		return fmt.Errorf("PORT %d is privileged (less than 1024), use ports 1024-65535", portNum)
	}

	return nil
}

// validateAddress validates the ADDRESS environment variable
func validateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("ADDRESS cannot be empty")
	}

	// Check for localhost/loopback addresses first
	if address == "127.0.0.1" || address == "::1" || address == "localhost" {
		return nil
	}

	ip := net.ParseIP(address)
	if ip == nil {
		return fmt.Errorf("ADDRESS must be a valid IP address or 'localhost', got: %s", address)
	}

	// The status server has no auth, keep it off public interfaces
	if !ip.IsLoopback() && !ip.IsPrivate() {
		return fmt.Errorf("ADDRESS %s is a public IP, consider using private network ranges for security", address)
	}

	return nil
}

// validateEnv validates the ENV environment variable
func validateEnv(env string) error {
	if env == "" {
		return fmt.Errorf("ENV cannot be empty")
	}

	validEnvs := []string{"dev", "staging", "prod", "test"}
	env = strings.ToLower(env)

	for _, validEnv := range validEnvs {
		if env == validEnv {
			return nil
		}
	}

	return fmt.Errorf("ENV must be one of: %v, got: %s", validEnvs, env)
}

// validateLogLevel validates the LOG_LEVEL environment variable
func validateLogLevel(logLevel string) error {
	if logLevel == "" {
		return fmt.Errorf("LOG_LEVEL cannot be empty")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	logLevel = strings.ToLower(logLevel)

	for _, level := range validLevels {
		if logLevel == level {
			return nil
		}
	}

	return fmt.Errorf("LOG_LEVEL must be one of: %v, got: %s", validLevels, logLevel)
}

// validateLogRetentionWeeks validates the LOG_RETENTION_WEEKS environment variable
func validateLogRetentionWeeks(weeks int) error {
	if weeks <= 0 {
		return fmt.Errorf("LOG_RETENTION_WEEKS must be positive, got: %d", weeks)
	}

	if weeks > 52 { // 1 year maximum
		return fmt.Errorf("LOG_RETENTION_WEEKS is too large (max 52 weeks), got: %d", weeks)
	}

	return nil
}

// validateMaxLogFileSize validates the MAX_LOG_FILE_SIZE environment variable
func validateMaxLogFileSize(size int64) error {
	if size <= 0 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE must be positive, got: %d", size)
	}

	// Minimum 1MB, maximum 1GB
	if size < 1024*1024 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE is too small (min 1MB), got: %d bytes", size)
	}

	if size > 1024*1024*1024 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE is too large (max 1GB), got: %d bytes", size)
	}

	return nil
}

// validateRefreshTimes validates the REFRESH_TIMES environment variable
func validateRefreshTimes(times string) error {
	if times == "" {
		return fmt.Errorf("REFRESH_TIMES cannot be empty")
	}

	for _, entry := range strings.Split(times, ";") {
		if _, err := time.Parse("15:04", entry); err != nil {
			return fmt.Errorf("REFRESH_TIMES entries must be HH:MM, got: %s", entry)
		}
	}

	return nil
}

// getEnvWithDefault gets an environment variable with a default value
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnvWithDefault gets an environment variable as int with a default value
func getIntEnvWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getInt64EnvWithDefault gets an environment variable as int64 with a default value
func getInt64EnvWithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// GetEnvVars returns a list of all expected environment variables
func GetEnvVars() []string {
	return []string{
		"DATA_DIR",
		"COMPACT_DATABASE_URL",
		"DATABASE_URL",
		"DOWNLOAD_RATE_LIMIT",
		"DOWNLOAD_TIMEOUT_MINUTES",
		"PORT",
		"ADDRESS",
		"ENV",
		"LOG_LEVEL",
		"LOG_RETENTION_WEEKS",
		"MAX_LOG_FILE_SIZE",
		"REFRESH_TIMES",
	}
}
