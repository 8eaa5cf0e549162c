package tally

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"
)

var errEmptyFile = errors.New("stats file is empty")

// Encode serializes the persisted fields as indented JSON.
func Encode(agg Aggregate) ([]byte, error) {
	data, err := json.MarshalIndent(agg, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Decode parses persisted stats. On failure it returns an empty aggregate
// alongside the error. Transient fields are always reset.
func Decode(data []byte, now time.Time) (Aggregate, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return New(now), errEmptyFile
	}
	var agg Aggregate
	if err := json.Unmarshal(data, &agg); err != nil {
		return New(now), fmt.Errorf("failed to decode stats: %w", err)
	}
	agg.ensureMaps()
	agg.sanitize()
	agg.SessionStart = now
	agg.RecentKeys = nil
	return agg, nil
}

// LoadFile reads stats from path. The returned aggregate is always usable;
// the error only explains why it is empty.
func LoadFile(path string, now time.Time) (Aggregate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return New(now), err
	}
	return Decode(data, now)
}

// Load reads stats from path, falling back to an empty aggregate.
func Load(path string, now time.Time) Aggregate {
	agg, _ := LoadFile(path, now)
	return agg
}

// Save writes the aggregate to path through a temp file and rename. The
// destination directory must exist.
func Save(agg Aggregate, path string) error {
	data, err := Encode(agg)
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}
	return writeFileAtomic(path, data)
}

func writeFileAtomic(path string, data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".stats-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp stats file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write stats: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync stats: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close stats: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("failed to chmod stats: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace stats: %w", err)
	}
	return nil
}

func (a *Aggregate) sanitize() {
	if a.MouseDistance < 0 || math.IsNaN(a.MouseDistance) {
		a.MouseDistance = 0
	}
	if a.ScrollDistance < 0 {
		a.ScrollDistance = 0
	}
	for h := range a.HourlyKeyCounts {
		if h >= hoursPerDay {
			delete(a.HourlyKeyCounts, h)
		}
	}
	for h := range a.HourlyClickCounts {
		if h >= hoursPerDay {
			delete(a.HourlyClickCounts, h)
		}
	}
}
