package config

import (
	"errors"
	"fmt"
	"math"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateDetection(); err != nil {
		return err
	}
	if err := c.validateMixing(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.WorkDir == "" {
		return errors.New("paths.work_dir must be set")
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	return nil
}

func (c *Config) validateDetection() error {
	if c.Detection.MinWindowSecs < 0 {
		return errors.New("detection.min_window_seconds must not be negative")
	}
	if c.Detection.MergeGapSecs < 0 {
		return errors.New("detection.merge_gap_seconds must not be negative")
	}
	switch c.Detection.VADMethod {
	case "silero", "pyannote":
	default:
		return fmt.Errorf("detection.vad_method must be silero or pyannote, got %q", c.Detection.VADMethod)
	}
	return nil
}

func (c *Config) validateMixing() error {
	// Either sign is allowed on both levels; the mixer honors the sign
	// convention as given. Only non-finite values are rejected.
	if math.IsNaN(c.Mixing.BackgroundAttenuationDB) || math.IsInf(c.Mixing.BackgroundAttenuationDB, 0) {
		return errors.New("mixing.background_attenuation_db must be a finite number")
	}
	if math.IsNaN(c.Mixing.NarrationGainDB) || math.IsInf(c.Mixing.NarrationGainDB, 0) {
		return errors.New("mixing.narration_gain_db must be a finite number")
	}
	if c.Mixing.Workers < 1 {
		return errors.New("mixing.workers must be at least 1")
	}
	return nil
}

func (c *Config) validateExport() error {
	switch c.Export.Format {
	case "mp3", "wav", "flac":
		return nil
	default:
		return fmt.Errorf("export.format must be mp3, wav, or flac, got %q", c.Export.Format)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
