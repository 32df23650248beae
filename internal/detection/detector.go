package detection

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"log/slog"

	"descant/internal/config"
	"descant/internal/logging"
	"descant/internal/media/ffprobe"
	"descant/internal/queue"
	"descant/internal/services"
	"descant/internal/services/whisperx"
	"descant/internal/stage"
	"descant/internal/timeline"
)

// SpeechDetector finds speech in the analysis track.
type SpeechDetector interface {
	DetectSpeech(ctx context.Context, source, outputDir string) ([]timeline.Interval, error)
}

// Detector locates the non-speech stretches of the soundtrack and records
// them as narration windows.
type Detector struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	detector SpeechDetector
}

// NewDetector constructs the detection stage handler with a WhisperX backend.
func NewDetector(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Detector {
	svc := whisperx.NewService(whisperx.Config{
		Model:       cfg.Detection.WhisperXModel,
		CUDAEnabled: cfg.Detection.CUDAEnabled,
		VADMethod:   cfg.Detection.VADMethod,
		HFToken:     cfg.Detection.HFToken,
	})
	return NewDetectorWithDependencies(cfg, store, logger, svc)
}

// NewDetectorWithDependencies allows injecting the speech detector (used in tests).
func NewDetectorWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, detector SpeechDetector) *Detector {
	return &Detector{
		store:    store,
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "detection"),
		detector: detector,
	}
}

func (d *Detector) Prepare(ctx context.Context, item *queue.Item) error {
	item.InitProgress("Detecting", "Preparing speech detection")
	return nil
}

func (d *Detector) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, d.logger)

	if strings.TrimSpace(item.AnalysisAudioFile) == "" {
		return services.Wrap(services.ErrValidation, "detecting", "validate inputs",
			"No analysis track present; run extraction first", nil)
	}
	totalDuration, err := sourceDuration(item)
	if err != nil {
		return err
	}

	item.SetProgress("Detecting", "Running speech detection", 10)
	outputDir := filepath.Join(item.StagingRoot(d.cfg.Paths.WorkDir), "whisperx")
	speech, err := d.detector.DetectSpeech(ctx, item.AnalysisAudioFile, outputDir)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "detecting", "detect speech",
			"WhisperX failed on analysis track", err)
	}

	item.SetProgress("Detecting", "Computing narration windows", 80)
	windows, err := timeline.Complement(speech, totalDuration)
	if err != nil {
		return services.Wrap(services.ErrInvalidInput, "detecting", "complement speech",
			"Speech intervals could not be complemented", err)
	}
	windows = timeline.FilterShort(windows, d.cfg.Detection.MinWindowSecs)
	windows = timeline.MergeNearby(windows, d.cfg.Detection.MergeGapSecs)

	plans := make([]queue.WindowPlan, 0, len(windows))
	for _, w := range windows {
		plans = append(plans, queue.WindowPlan{Start: w.Start, End: w.End})
	}
	if err := item.SetWindows(plans); err != nil {
		return services.Wrap(services.ErrValidation, "detecting", "store windows",
			"Cannot encode narration plan", err)
	}

	item.SetProgressComplete("Detecting", fmt.Sprintf("Found %d narration windows", len(plans)))
	logger.Info("detection complete",
		logging.Int("speech_intervals", len(speech)),
		logging.Int("windows", len(plans)),
		logging.Float64("total_duration", totalDuration),
	)
	return nil
}

func (d *Detector) HealthCheck(ctx context.Context) stage.Health {
	if _, err := exec.LookPath(whisperx.UVXCommand); err != nil {
		return stage.Unhealthy("detection", "uvx not found in PATH")
	}
	return stage.Healthy("detection")
}

// sourceDuration reads the container duration recorded by the extraction stage.
func sourceDuration(item *queue.Item) (float64, error) {
	if strings.TrimSpace(item.MediaInfoJSON) == "" {
		return 0, services.Wrap(services.ErrValidation, "detecting", "read media info",
			"No media info present; run extraction first", nil)
	}
	var result ffprobe.Result
	if err := json.Unmarshal([]byte(item.MediaInfoJSON), &result); err != nil {
		return 0, services.Wrap(services.ErrValidation, "detecting", "read media info",
			"Media info payload is invalid", err)
	}
	duration := result.DurationSeconds()
	if duration <= 0 {
		return 0, services.Wrap(services.ErrInvalidInput, "detecting", "read media info",
			"Source duration must be positive", nil)
	}
	return duration, nil
}
