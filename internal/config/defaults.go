package config

const (
	defaultWorkDir   = "~/.local/share/descant/work"
	defaultOutputDir = "~/descant-output"
	defaultLogDir    = "~/.local/share/descant/logs"

	defaultWhisperXModel      = "large-v3-turbo"
	defaultVADMethod          = "silero"
	defaultMinWindowSeconds   = 0.5
	defaultMergeGapSeconds    = 2.0
	defaultDetectionTimeout   = 1800
	defaultDescriptionBaseURL = "https://openrouter.ai/api/v1/chat/completions"
	defaultDescriptionModel   = "google/gemini-3-flash-preview"
	defaultDescriptionTimeout = 60
	defaultNarrationCommand   = "piper"
	defaultNarrationTimeout   = 120

	// Default ducking level, in dB of reduction applied to the original
	// soundtrack underneath narration.
	defaultBackgroundAttenuationDB = 15.0
	defaultNarrationGainDB         = 0.0
	defaultMixWorkers              = 4
	defaultWindowTimeoutSeconds    = 60

	defaultExportFormat  = "mp3"
	defaultExportBitrate = "192k"

	defaultQueuePollInterval  = 5
	defaultErrorRetryInterval = 60
	defaultHeartbeatInterval  = 15
	defaultHeartbeatTimeout   = 120

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:   defaultWorkDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Detection: Detection{
			WhisperXModel:  defaultWhisperXModel,
			VADMethod:      defaultVADMethod,
			MinWindowSecs:  defaultMinWindowSeconds,
			MergeGapSecs:   defaultMergeGapSeconds,
			TimeoutSeconds: defaultDetectionTimeout,
		},
		Description: Description{
			BaseURL:        defaultDescriptionBaseURL,
			Model:          defaultDescriptionModel,
			TimeoutSeconds: defaultDescriptionTimeout,
		},
		Narration: Narration{
			Command:        defaultNarrationCommand,
			TimeoutSeconds: defaultNarrationTimeout,
		},
		Mixing: Mixing{
			BackgroundAttenuationDB: defaultBackgroundAttenuationDB,
			NarrationGainDB:         defaultNarrationGainDB,
			Workers:                 defaultMixWorkers,
			WindowTimeoutSeconds:    defaultWindowTimeoutSeconds,
		},
		Export: Export{
			Format:  defaultExportFormat,
			Bitrate: defaultExportBitrate,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			HeartbeatInterval:  defaultHeartbeatInterval,
			HeartbeatTimeout:   defaultHeartbeatTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
