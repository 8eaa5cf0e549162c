package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if cfg.Tally.DedupWindow != nil || cfg.Display.TopKeys != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[tally]
dedup-window = "30ms"
data-path = "/tmp/stats.json"

[intervals]
refresh = "250ms"
persist = "2m"

[display]
top-keys = 10

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := *cfg.Tally.DedupWindow.Std(); got != 30*time.Millisecond {
		t.Fatalf("dedup window = %v", got)
	}
	if *cfg.Tally.DataPath != "/tmp/stats.json" {
		t.Fatalf("data path = %q", *cfg.Tally.DataPath)
	}
	if got := *cfg.Intervals.Persist.Std(); got != 2*time.Minute {
		t.Fatalf("persist = %v", got)
	}
	if cfg.Intervals.Shutdown != nil {
		t.Fatalf("expected unset shutdown interval")
	}
	if *cfg.Display.TopKeys != 10 || *cfg.Log.Level != "debug" {
		t.Fatalf("unexpected display/log config %+v %+v", cfg.Display, cfg.Log)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"bad-duration.toml": "[intervals]\npersist = \"soon\"\n",
		"negative.toml":     "[tally]\ndedup-window = \"-5ms\"\n",
		"unknown.toml":      "[tally]\ndedupe = \"5ms\"\n",
	}
	for name, data := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_STATE_HOME", "/state")

	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "fingers", "config.toml") {
		t.Fatalf("config path = %q", got)
	}
	if got := DefaultStatsPath(); got != filepath.Join("/data", "fingers", "stats.json") {
		t.Fatalf("stats path = %q", got)
	}
	if got := DefaultHistoryPath(); !strings.HasSuffix(got, "history.db") {
		t.Fatalf("history path = %q", got)
	}
	if got := DefaultLogPath(); got != filepath.Join("/state", "fingers", "fingers.log") {
		t.Fatalf("log path = %q", got)
	}
}
