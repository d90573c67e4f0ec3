// Package compactor generates the memory-friendly compact drug database by
// streaming the comprehensive database and keeping only the fields the
// downstream application needs. Peak memory stays at one record regardless
// of source size.
package compactor

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/giygas/drugdb-prep/interfaces"
	"github.com/giygas/drugdb-prep/logging"
	"github.com/giygas/drugdb-prep/metrics"
)

// Compile-time check to ensure Compactor implements the Compactor interface
var _ interfaces.Compactor = (*Compactor)(nil)

// Compactor implements the streaming trim of the comprehensive database.
type Compactor struct{}

// New creates a new Compactor instance
func New() *Compactor {
	return &Compactor{}
}

// Compact reads the source database at source and writes the trimmed version
// to target. A missing source is an error; an existing target is a silent
// skip, never an overwrite. The output is written to a temporary file in the
// target directory and renamed into place on success, so an interrupted run
// never leaves a partial compact file behind.
func (c *Compactor) Compact(source, target string) (interfaces.CompactStats, error) {
	start := time.Now()

	info, err := os.Stat(source)
	if err != nil {
		if os.IsNotExist(err) {
			return interfaces.CompactStats{}, fmt.Errorf("source database not found at %s", source)
		}
		return interfaces.CompactStats{}, fmt.Errorf("checking source database: %w", err)
	}

	// Skip if the compact file already exists (useful for local dev)
	if _, err := os.Stat(target); err == nil {
		logging.Info("Compact database already exists, skipping generation", "target", target)
		return interfaces.CompactStats{Skipped: true}, nil
	}

	logging.Info("Reading source database",
		"path", source,
		"size_gb", fmt.Sprintf("%.2f", float64(info.Size())/(1024*1024*1024)))

	metadata, err := readMetadata(source)
	if err != nil {
		return interfaces.CompactStats{}, err
	}

	records, err := writeCompactFile(source, target, metadata)
	if err != nil {
		return interfaces.CompactStats{}, err
	}

	elapsed := time.Since(start)
	metrics.CompactDuration.Observe(elapsed.Seconds())

	stats := interfaces.CompactStats{
		Records:  records,
		Duration: elapsed,
	}
	if out, err := os.Stat(target); err == nil {
		stats.BytesWritten = out.Size()
	}

	logging.Info("Wrote compact database",
		"target", target,
		"records", records,
		"size_mb", fmt.Sprintf("%.1f", float64(stats.BytesWritten)/(1024*1024)),
		"duration", elapsed.String())

	return stats, nil
}

// readMetadata extracts the metadata block in its own pass so it can be
// emitted first even when the source lists it after the drugs array.
func readMetadata(source string) (json.RawMessage, error) {
	f, err := os.Open(filepath.Clean(source))
	if err != nil {
		return nil, fmt.Errorf("opening source database: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("Failed to close source database", "error", err)
		}
	}()

	metadata, err := ExtractMetadata(bufio.NewReaderSize(f, 1024*1024))
	if err != nil {
		return nil, fmt.Errorf("extracting metadata: %w", err)
	}
	return metadata, nil
}

func writeCompactFile(source, target string, metadata json.RawMessage) (records int, err error) {
	src, err := os.Open(filepath.Clean(source))
	if err != nil {
		return 0, fmt.Errorf("opening source database: %w", err)
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			logging.Warn("Failed to close source database", "error", cerr)
		}
	}()

	tmp, err := os.CreateTemp(filepath.Dir(target), filepath.Base(target)+".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("creating temporary file: %w", err)
	}
	tmpName := tmp.Name()
	renamed := false
	defer func() {
		if renamed {
			return
		}
		_ = tmp.Close()
		if rerr := os.Remove(tmpName); rerr != nil && !os.IsNotExist(rerr) {
			logging.Warn("Failed to remove temporary file", "path", tmpName, "error", rerr)
		}
	}()

	out := bufio.NewWriterSize(tmp, 1024*1024)

	var compacted bytes.Buffer
	if err = json.Compact(&compacted, metadata); err != nil {
		return 0, fmt.Errorf("compacting metadata: %w", err)
	}

	if _, err = out.WriteString(`{"metadata":`); err != nil {
		return 0, fmt.Errorf("writing output: %w", err)
	}
	if _, err = out.Write(compacted.Bytes()); err != nil {
		return 0, fmt.Errorf("writing output: %w", err)
	}
	if _, err = out.WriteString(`,"drugs":[`); err != nil {
		return 0, fmt.Errorf("writing output: %w", err)
	}

	first := true
	records, err = StreamDrugs(bufio.NewReaderSize(src, 1024*1024), func(record map[string]any) error {
		trimmed := TrimDrug(record)
		data, err := json.Marshal(trimmed)
		if err != nil {
			return fmt.Errorf("encoding drug record: %w", err)
		}
		if !first {
			if err := out.WriteByte(','); err != nil {
				return err
			}
		}
		first = false
		if _, err := out.Write(data); err != nil {
			return err
		}
		metrics.RecordsCompacted.Inc()
		return nil
	})
	if err != nil {
		return records, fmt.Errorf("streaming drugs: %w", err)
	}

	if _, err = out.WriteString("]}"); err != nil {
		return records, fmt.Errorf("writing output: %w", err)
	}
	if err = out.Flush(); err != nil {
		return records, fmt.Errorf("flushing output: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return records, fmt.Errorf("syncing output: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return records, fmt.Errorf("closing output: %w", err)
	}

	if err = os.Rename(tmpName, target); err != nil {
		return records, fmt.Errorf("renaming %s to %s: %w", tmpName, target, err)
	}
	renamed = true

	return records, nil
}
