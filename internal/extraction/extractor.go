package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"log/slog"

	"descant/internal/config"
	"descant/internal/logging"
	"descant/internal/media/extract"
	"descant/internal/media/ffprobe"
	"descant/internal/queue"
	"descant/internal/services"
	"descant/internal/stage"
)

const (
	// MixAudioName is the mixing master written into the item staging dir.
	MixAudioName = "mix.wav"
	// AnalysisAudioName is the mono 16kHz copy used for speech detection.
	AnalysisAudioName = "analysis.wav"
)

// Extractor probes the source file and pulls out the audio tracks the rest
// of the pipeline works on.
type Extractor struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger

	probe           func(ctx context.Context, binary, path string) (ffprobe.Result, error)
	extractMix      func(ctx context.Context, ffmpegBinary, source, dest string) error
	extractAnalysis func(ctx context.Context, ffmpegBinary, source, dest string) error
}

// NewExtractor constructs the extraction stage handler.
func NewExtractor(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Extractor {
	return &Extractor{
		store:           store,
		cfg:             cfg,
		logger:          logging.NewComponentLogger(logger, "extraction"),
		probe:           ffprobe.Inspect,
		extractMix:      extract.MixAudio,
		extractAnalysis: extract.AnalysisAudio,
	}
}

// WithProbe overrides the ffprobe invocation (for testing).
func (e *Extractor) WithProbe(probe func(ctx context.Context, binary, path string) (ffprobe.Result, error)) {
	e.probe = probe
}

// WithExtractors overrides the ffmpeg invocations (for testing).
func (e *Extractor) WithExtractors(mix, analysis func(ctx context.Context, ffmpegBinary, source, dest string) error) {
	e.extractMix = mix
	e.extractAnalysis = analysis
}

func (e *Extractor) Prepare(ctx context.Context, item *queue.Item) error {
	item.InitProgress("Extracting", "Preparing audio extraction")
	logger := logging.WithContext(ctx, e.logger)
	logger.Info("starting extraction preparation", logging.String("source", strings.TrimSpace(item.SourcePath)))
	return nil
}

func (e *Extractor) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, e.logger)

	source := strings.TrimSpace(item.SourcePath)
	if source == "" {
		return services.Wrap(services.ErrValidation, "extracting", "validate inputs",
			"No source path present on queue item", nil)
	}
	if _, err := os.Stat(source); err != nil {
		return services.Wrap(services.ErrNotFound, "extracting", "stat source",
			fmt.Sprintf("Source file %s is not readable", source), err)
	}

	result, err := e.probe(ctx, "ffprobe", source)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "extracting", "probe source",
			"ffprobe failed on source file", err)
	}
	if result.AudioStreamCount() == 0 {
		return services.Wrap(services.ErrValidation, "extracting", "probe source",
			"Source file carries no audio stream", nil)
	}
	if result.DurationSeconds() <= 0 {
		return services.Wrap(services.ErrValidation, "extracting", "probe source",
			"Source file reports no duration", nil)
	}
	mediaInfo, err := json.Marshal(result)
	if err != nil {
		return services.Wrap(services.ErrValidation, "extracting", "encode media info",
			"Cannot encode probe result", err)
	}
	item.MediaInfoJSON = string(mediaInfo)

	staging := item.StagingRoot(e.cfg.Paths.WorkDir)
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "extracting", "ensure staging dir",
			fmt.Sprintf("Cannot create staging directory %s", staging), err)
	}

	mixPath := filepath.Join(staging, MixAudioName)
	item.SetProgress("Extracting", "Extracting mixing master", 20)
	if err := e.extractMix(ctx, "ffmpeg", source, mixPath); err != nil {
		return services.Wrap(services.ErrExternalTool, "extracting", "extract mix audio",
			"ffmpeg failed extracting the mixing master", err)
	}

	analysisPath := filepath.Join(staging, AnalysisAudioName)
	item.SetProgress("Extracting", "Extracting analysis track", 60)
	if err := e.extractAnalysis(ctx, "ffmpeg", source, analysisPath); err != nil {
		return services.Wrap(services.ErrExternalTool, "extracting", "extract analysis audio",
			"ffmpeg failed extracting the analysis track", err)
	}

	item.MixAudioFile = mixPath
	item.AnalysisAudioFile = analysisPath
	item.SetProgressComplete("Extracting", "Audio extracted")
	logger.Info("extraction complete",
		logging.Float64("duration_seconds", result.DurationSeconds()),
		logging.Int("sample_rate", result.SampleRate()),
		logging.Int("channels", result.Channels()),
	)
	return nil
}

func (e *Extractor) HealthCheck(ctx context.Context) stage.Health {
	for _, binary := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(binary); err != nil {
			return stage.Unhealthy("extraction", fmt.Sprintf("%s not found in PATH", binary))
		}
	}
	return stage.Healthy("extraction")
}
