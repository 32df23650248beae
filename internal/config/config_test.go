package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Mixing.BackgroundAttenuationDB != 15.0 {
		t.Fatalf("unexpected default attenuation: %v", cfg.Mixing.BackgroundAttenuationDB)
	}
	if cfg.Mixing.NarrationGainDB != 0 {
		t.Fatalf("unexpected default narration gain: %v", cfg.Mixing.NarrationGainDB)
	}
}

func TestLoadAppliesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
[paths]
work_dir = "` + filepath.Join(dir, "work") + `"
output_dir = "` + filepath.Join(dir, "out") + `"

[mixing]
background_attenuation_db = -3.0
workers = 2
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	// Negative attenuation (a boost) is allowed; the sign is honored as given.
	if cfg.Mixing.BackgroundAttenuationDB != -3.0 {
		t.Fatalf("unexpected attenuation: %v", cfg.Mixing.BackgroundAttenuationDB)
	}
	if cfg.Mixing.Workers != 2 {
		t.Fatalf("unexpected workers: %d", cfg.Mixing.Workers)
	}
	// Unset sections fall back to defaults.
	if cfg.Export.Format != "mp3" {
		t.Fatalf("unexpected export format: %q", cfg.Export.Format)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[export]\nformat = \"ogg\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := Load(path); err == nil || !strings.Contains(err.Error(), "export.format") {
		t.Fatalf("expected export format error, got %v", err)
	}
}

func TestValidateRejectsBadVADMethod(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatal(err)
	}
	cfg.Detection.VADMethod = "webrtc"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown vad method")
	}
}

func TestExpandPathTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	got, err := expandPath("~/descant")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(home, "descant") {
		t.Fatalf("unexpected expansion %q", got)
	}
}

func TestSampleConfigParses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.toml")
	if err := os.WriteFile(path, []byte(SampleConfig()), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := Load(path); err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}
}
