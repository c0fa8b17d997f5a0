package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigSourcesAllDefault(t *testing.T) {
	cfg := DefaultConfig()
	eff := cfg.EffectiveConfig()
	if eff["runner.mode"].Source != "default" {
		t.Errorf("expected default source, got %q", eff["runner.mode"].Source)
	}
	if eff["runner.mode"].Value != "auto" {
		t.Errorf("expected auto, got %q", eff["runner.mode"].Value)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Runner.Mode != "auto" {
		t.Errorf("expected default runner mode, got %q", cfg.Runner.Mode)
	}
}

func TestLoadFileOverridesDefaultsAndTracksSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "runner:\n  mode: native\n  timeout: 90s\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Runner.Mode != "native" {
		t.Errorf("expected native, got %q", cfg.Runner.Mode)
	}
	eff := cfg.EffectiveConfig()
	if eff["runner.mode"].Source != "config" {
		t.Errorf("expected config source, got %q", eff["runner.mode"].Source)
	}
	if eff["runner.distro"].Source != "default" {
		t.Errorf("expected untouched field to stay default, got %q", eff["runner.distro"].Source)
	}
}

func TestEnvOverrideWinsOverFileAndTracksSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("runner:\n  mode: native\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SPECFORGE_RUNNER_MODE", "wsl")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Runner.Mode != "wsl" {
		t.Errorf("expected env override wsl, got %q", cfg.Runner.Mode)
	}
	if cfg.EffectiveConfig()["runner.mode"].Source != "env" {
		t.Errorf("expected env source after override")
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Runner.Mode = "native"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Runner.Mode != "native" {
		t.Errorf("expected native after round trip, got %q", loaded.Runner.Mode)
	}
}

func TestRunnerTimeoutFallsBackOnInvalidDuration(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Runner.Timeout = "not-a-duration"
	if got := cfg.RunnerTimeout(); got.Seconds() != 300 {
		t.Errorf("expected 300s fallback, got %v", got)
	}
}
