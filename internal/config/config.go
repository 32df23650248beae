package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkDir   string `toml:"work_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Detection contains configuration for speech detection and window refinement.
type Detection struct {
	WhisperXModel  string  `toml:"whisperx_model"`
	CUDAEnabled    bool    `toml:"cuda_enabled"`
	VADMethod      string  `toml:"vad_method"`
	HFToken        string  `toml:"hf_token"`
	MinWindowSecs  float64 `toml:"min_window_seconds"`
	MergeGapSecs   float64 `toml:"merge_gap_seconds"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// Description contains configuration for the vision LLM that captions key frames.
type Description struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Narration contains configuration for text-to-speech synthesis.
type Narration struct {
	Command        string   `toml:"command"`
	ExtraArgs      []string `toml:"extra_args"`
	Voice          string   `toml:"voice"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

// Mixing contains the levels applied when narration is overlaid onto the
// original soundtrack. BackgroundAttenuationDB is a reduction: positive
// values duck the original, negative values boost it. Both signs are honored
// as given.
type Mixing struct {
	BackgroundAttenuationDB float64 `toml:"background_attenuation_db"`
	NarrationGainDB         float64 `toml:"narration_gain_db"`
	Workers                 int     `toml:"workers"`
	WindowTimeoutSeconds    int     `toml:"window_timeout_seconds"`
}

// Export contains configuration for writing the final track.
type Export struct {
	Format  string `toml:"format"`
	Bitrate string `toml:"bitrate"`
}

// Workflow contains queue polling intervals and timeouts.
type Workflow struct {
	QueuePollInterval  int `toml:"queue_poll_interval"`
	ErrorRetryInterval int `toml:"error_retry_interval"`
	HeartbeatInterval  int `toml:"heartbeat_interval"`
	HeartbeatTimeout   int `toml:"heartbeat_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for descant.
//
// Configuration sections by subsystem:
//   - Paths: working, output, and log directories
//   - Detection: WhisperX speech detection and window refinement thresholds
//   - Description: vision LLM connection for key-frame captions
//   - Narration: TTS command used to synthesize narration clips
//   - Mixing: ducking and narration levels consumed by the mixer core
//   - Export: final track container settings
//   - Workflow: queue polling intervals and heartbeat timeouts
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Detection   Detection   `toml:"detection"`
	Description Description `toml:"description"`
	Narration   Narration   `toml:"narration"`
	Mixing      Mixing      `toml:"mixing"`
	Export      Export      `toml:"export"`
	Workflow    Workflow    `toml:"workflow"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/descant/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a file was actually found; defaults are used when it was not.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	projectPath, err := filepath.Abs("descant.toml")
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// SampleConfig returns the embedded sample configuration document.
func SampleConfig() string {
	return sampleConfig
}

// WriteSample writes the sample configuration to path, refusing to clobber an
// existing file.
func WriteSample(path string) (string, error) {
	expanded, err := expandPath(path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(expanded); err == nil {
		return "", fmt.Errorf("config file already exists at %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return "", fmt.Errorf("ensure config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return "", fmt.Errorf("write sample config: %w", err)
	}
	return expanded, nil
}

// EnsureDirectories creates the work, output, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		trimmed = filepath.Join(home, trimmed[2:])
	}
	return filepath.Abs(trimmed)
}
