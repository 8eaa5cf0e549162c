package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/fingers/internal/config"
	"github.com/verte-zerg/fingers/internal/model"
)

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("template should decode: %v", err)
	}
	if cfg.Tally.DedupWindow != nil || cfg.Intervals.Persist != nil {
		t.Fatalf("expected every value commented out, got %+v", cfg)
	}
}

func TestConfigFileYieldsToFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := "[intervals]\npersist = \"5m\"\nrefresh = \"1s\"\n[display]\ntop-keys = 7\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--config", path, "--refresh", "250ms", "--log-path", "-"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	settings, err := resolveSettings(cmd)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if settings.Persist != 5*time.Minute {
		t.Fatalf("expected persist from file, got %v", settings.Persist)
	}
	if settings.Refresh != 250*time.Millisecond {
		t.Fatalf("expected refresh from flag, got %v", settings.Refresh)
	}
	if settings.TopKeys != 7 {
		t.Fatalf("expected top keys from file, got %d", settings.TopKeys)
	}
}

func TestValidateSettings(t *testing.T) {
	valid := model.Settings{
		DedupWindow: 50 * time.Millisecond,
		DataPath:    "stats.json",
		Refresh:     time.Second,
		Persist:     time.Minute,
		Shutdown:    time.Second,
		TopKeys:     20,
		LogLevel:    "info",
	}
	if err := validateSettings(valid); err != nil {
		t.Fatalf("expected valid settings: %v", err)
	}
	broken := valid
	broken.Persist = 0
	if err := validateSettings(broken); err == nil {
		t.Fatalf("expected error for zero persist interval")
	}
	broken = valid
	broken.LogLevel = "loud"
	if err := validateSettings(broken); err == nil {
		t.Fatalf("expected error for unknown log level")
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandHome("~/stats.json"); got != filepath.Join(home, "stats.json") {
		t.Fatalf("unexpected expansion %q", got)
	}
	if got := expandHome("/abs/stats.json"); got != "/abs/stats.json" {
		t.Fatalf("absolute path changed: %q", got)
	}
}

func TestOpenSessionCreatesStatsDirectory(t *testing.T) {
	dir := t.TempDir()
	statsPath := filepath.Join(dir, "data", "stats.json")
	cmd := newRootCmd()
	args := []string{
		"--config", filepath.Join(dir, "missing.toml"),
		"--data-path", statsPath,
		"--history-path", filepath.Join(dir, "hist", "history.db"),
		"--log-path", "-",
	}
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	s, err := openSession(cmd)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	defer s.close()

	s.store.RecordKey("A")
	if err := s.store.Persist(); err != nil {
		t.Fatalf("persist: %v", err)
	}
	if _, err := os.Stat(statsPath); err != nil {
		t.Fatalf("expected stats file written: %v", err)
	}
}
