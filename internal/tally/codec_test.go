package tally

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	day1 := time.Date(2024, 3, 14, 9, 15, 0, 0, time.Local)
	day2 := time.Date(2024, 3, 15, 22, 40, 0, 0, time.Local)
	agg := New(day1)
	agg.RecordKey("A", day1)
	agg.RecordKey("Space", day1)
	agg.RecordKey("↑", day2)
	agg.RecordClick("Left", day1)
	agg.RecordClick("Button(8)", day2)
	agg.RecordMovement(123.456, day1)
	agg.RecordMovement(0.5, day2)
	agg.RecordScroll(-7)

	path := filepath.Join(t.TempDir(), "stats.json")
	if err := Save(agg, path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loadedAt := day2.Add(time.Hour)
	loaded, err := LoadFile(path, loadedAt)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(loaded.KeyCounts, agg.KeyCounts) {
		t.Fatalf("key counts mismatch: %v vs %v", loaded.KeyCounts, agg.KeyCounts)
	}
	if !reflect.DeepEqual(loaded.MouseClicks, agg.MouseClicks) {
		t.Fatalf("mouse clicks mismatch: %v vs %v", loaded.MouseClicks, agg.MouseClicks)
	}
	if loaded.MouseDistance != agg.MouseDistance || loaded.ScrollDistance != agg.ScrollDistance {
		t.Fatalf("distance mismatch: %+v", loaded)
	}
	if !reflect.DeepEqual(loaded.HourlyKeyCounts, agg.HourlyKeyCounts) {
		t.Fatalf("hourly keys mismatch: %v vs %v", loaded.HourlyKeyCounts, agg.HourlyKeyCounts)
	}
	if !reflect.DeepEqual(loaded.HourlyClickCounts, agg.HourlyClickCounts) {
		t.Fatalf("hourly clicks mismatch: %v vs %v", loaded.HourlyClickCounts, agg.HourlyClickCounts)
	}
	if !reflect.DeepEqual(loaded.DailyStats, agg.DailyStats) {
		t.Fatalf("daily stats mismatch: %v vs %v", loaded.DailyStats, agg.DailyStats)
	}
	if !loaded.SessionStart.Equal(loadedAt) {
		t.Fatalf("expected session start %v, got %v", loadedAt, loaded.SessionStart)
	}
	if loaded.RecentKeys != nil {
		t.Fatalf("expected recent keys reset, got %v", loaded.RecentKeys)
	}
}

func TestEncodeOmitsTransientFields(t *testing.T) {
	now := time.Date(2024, 3, 14, 9, 0, 0, 0, time.Local)
	agg := New(now)
	agg.RecordKey("A", now)
	data, err := Encode(agg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out := string(data)
	for _, field := range []string{"key_counts", "mouse_clicks", "mouse_distance", "scroll_distance", "hourly_key_counts", "hourly_click_counts", "daily_stats"} {
		if !strings.Contains(out, `"`+field+`"`) {
			t.Fatalf("expected field %s in output: %s", field, out)
		}
	}
	if strings.Contains(out, "SessionStart") || strings.Contains(out, "RecentKeys") {
		t.Fatalf("transient fields leaked: %s", out)
	}
}

func TestLoadInvalidFilesYieldEmpty(t *testing.T) {
	now := time.Date(2024, 3, 14, 9, 0, 0, 0, time.Local)
	dir := t.TempDir()
	cases := map[string][]byte{
		"empty.json":     {},
		"blank.json":     []byte("  \n"),
		"garbage.json":   []byte("{\"key_counts\": {\"A\": "),
		"wrongtype.json": []byte(`{"key_counts": ["A"]}`),
		"array.json":     []byte(`[1, 2, 3]`),
		"negative.json":  []byte(`{"key_counts": {"A": -1}}`),
	}
	for name, data := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		got := Load(path, now)
		if !reflect.DeepEqual(got, New(now)) {
			t.Fatalf("%s: expected empty aggregate, got %+v", name, got)
		}
	}

	if got := Load(filepath.Join(dir, "missing.json"), now); !reflect.DeepEqual(got, New(now)) {
		t.Fatalf("missing file: expected empty aggregate, got %+v", got)
	}
}

func TestLoadToleratesUnknownAndMissingFields(t *testing.T) {
	now := time.Date(2024, 3, 14, 9, 0, 0, 0, time.Local)
	path := filepath.Join(t.TempDir(), "stats.json")
	data := `{
  "key_counts": {"A": 4},
  "theme": "dark",
  "hourly_key_counts": {"9": 4, "31": 2},
  "mouse_distance": -3
}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	agg, err := LoadFile(path, now)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if agg.KeyCounts["A"] != 4 {
		t.Fatalf("expected A=4, got %v", agg.KeyCounts)
	}
	if agg.MouseClicks == nil || agg.DailyStats == nil || agg.HourlyClickCounts == nil {
		t.Fatalf("expected missing maps initialised")
	}
	if _, ok := agg.HourlyKeyCounts[31]; ok {
		t.Fatalf("expected out-of-range hour dropped")
	}
	if agg.HourlyKeyCounts[9] != 4 {
		t.Fatalf("expected hour 9 kept, got %v", agg.HourlyKeyCounts)
	}
	if agg.MouseDistance != 0 {
		t.Fatalf("expected negative distance clamped, got %v", agg.MouseDistance)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stats.json")
	agg := New(time.Now())
	for i := 0; i < 3; i++ {
		if err := Save(agg, path); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "stats.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("expected only stats.json, got %v", names)
	}
}

func TestSaveMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "stats.json")
	if err := Save(New(time.Now()), path); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}
