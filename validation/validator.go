// Package validation provides quality checks for generated compact database
// files. It streams the file the same way the compactor wrote it, so even
// the full compact database can be checked without loading it.
package validation

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/giygas/drugdb-prep/compactor"
	"github.com/giygas/drugdb-prep/logging"
)

// Report summarizes quality issues found in a compact database file.
type Report struct {
	Records          int
	MissingName      int // records without a non-empty name
	MissingPrimaryID int // records without drugbank_ids.primary
}

// ValidateCompactFile streams the compact database at path and returns a
// quality report. A file whose top-level shape is broken (no metadata, drugs
// not an array) is an error, individual bad records are only counted.
func ValidateCompactFile(path string) (*Report, error) {
	if err := checkMetadata(path); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("opening compact database: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("Failed to close compact database", "error", err)
		}
	}()

	report := &Report{}
	records, err := compactor.StreamDrugs(bufio.NewReader(f), func(record map[string]any) error {
		if name, ok := record["name"].(string); !ok || name == "" {
			report.MissingName++
		}
		if ids, ok := record["drugbank_ids"].(map[string]any); !ok || ids["primary"] == nil {
			report.MissingPrimaryID++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("streaming compact database: %w", err)
	}

	report.Records = records
	return report, nil
}

func checkMetadata(path string) error {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("opening compact database: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("Failed to close compact database", "error", err)
		}
	}()

	if _, err := compactor.ExtractMetadata(bufio.NewReader(f)); err != nil {
		return fmt.Errorf("compact database has no metadata: %w", err)
	}
	return nil
}

// LogReport emits the report the way refresh runs expect: warnings only when
// something is off.
func LogReport(report *Report) {
	if report.MissingName > 0 {
		logging.Warn("Compact records without a name", "count", report.MissingName)
	}
	if report.MissingPrimaryID > 0 {
		logging.Warn("Compact records without a primary drugbank ID", "count", report.MissingPrimaryID)
	}
	logging.Info("Compact database validated", "records", report.Records)
}
