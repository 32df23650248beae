package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDetection()
	c.normalizeDescription()
	c.normalizeNarration()
	c.normalizeMixing()
	c.normalizeExport()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDetection() {
	if strings.TrimSpace(c.Detection.WhisperXModel) == "" {
		c.Detection.WhisperXModel = defaultWhisperXModel
	}
	if strings.TrimSpace(c.Detection.VADMethod) == "" {
		c.Detection.VADMethod = defaultVADMethod
	}
	if c.Detection.HFToken == "" {
		if value, ok := os.LookupEnv("HF_TOKEN"); ok {
			c.Detection.HFToken = value
		}
	}
	if c.Detection.TimeoutSeconds <= 0 {
		c.Detection.TimeoutSeconds = defaultDetectionTimeout
	}
}

func (c *Config) normalizeDescription() {
	if c.Description.APIKey == "" {
		if value, ok := os.LookupEnv("DESCANT_LLM_API_KEY"); ok {
			c.Description.APIKey = value
		} else if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.Description.APIKey = value
		}
	}
	c.Description.BaseURL = strings.TrimSpace(c.Description.BaseURL)
	if c.Description.BaseURL == "" {
		c.Description.BaseURL = defaultDescriptionBaseURL
	}
	if strings.TrimSpace(c.Description.Model) == "" {
		c.Description.Model = defaultDescriptionModel
	}
	if c.Description.TimeoutSeconds <= 0 {
		c.Description.TimeoutSeconds = defaultDescriptionTimeout
	}
}

func (c *Config) normalizeNarration() {
	if strings.TrimSpace(c.Narration.Command) == "" {
		c.Narration.Command = defaultNarrationCommand
	}
	if c.Narration.TimeoutSeconds <= 0 {
		c.Narration.TimeoutSeconds = defaultNarrationTimeout
	}
}

func (c *Config) normalizeMixing() {
	if c.Mixing.Workers <= 0 {
		c.Mixing.Workers = defaultMixWorkers
	}
	if c.Mixing.WindowTimeoutSeconds <= 0 {
		c.Mixing.WindowTimeoutSeconds = defaultWindowTimeoutSeconds
	}
}

func (c *Config) normalizeExport() {
	c.Export.Format = strings.ToLower(strings.TrimSpace(c.Export.Format))
	if c.Export.Format == "" {
		c.Export.Format = defaultExportFormat
	}
	if strings.TrimSpace(c.Export.Bitrate) == "" {
		c.Export.Bitrate = defaultExportBitrate
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.QueuePollInterval <= 0 {
		c.Workflow.QueuePollInterval = defaultQueuePollInterval
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		c.Workflow.ErrorRetryInterval = defaultErrorRetryInterval
	}
	if c.Workflow.HeartbeatInterval <= 0 {
		c.Workflow.HeartbeatInterval = defaultHeartbeatInterval
	}
	if c.Workflow.HeartbeatTimeout <= 0 {
		c.Workflow.HeartbeatTimeout = defaultHeartbeatTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
