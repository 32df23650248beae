package description

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"log/slog"

	"descant/internal/config"
	"descant/internal/logging"
	"descant/internal/media/extract"
	"descant/internal/queue"
	"descant/internal/services"
	"descant/internal/services/llm"
	"descant/internal/stage"
)

// framesPerWindow is how many frames are sampled across each window for the
// vision model.
const framesPerWindow = 3

// Captioner produces a narration passage for a set of frames.
type Captioner interface {
	DescribeFrames(ctx context.Context, framePaths []string, maxSeconds float64) (string, error)
	HealthCheck(ctx context.Context) error
}

// Describer captions key frames from each narration window.
type Describer struct {
	store     *queue.Store
	cfg       *config.Config
	logger    *slog.Logger
	captioner Captioner

	extractFrame func(ctx context.Context, ffmpegBinary, source string, atSeconds float64, dest string) error
}

// NewDescriber constructs the description stage handler with an OpenRouter backend.
func NewDescriber(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Describer {
	client := llm.NewClient(llm.Config{
		APIKey:         cfg.Description.APIKey,
		BaseURL:        cfg.Description.BaseURL,
		Model:          cfg.Description.Model,
		Referer:        cfg.Description.Referer,
		Title:          cfg.Description.Title,
		TimeoutSeconds: cfg.Description.TimeoutSeconds,
	})
	return NewDescriberWithDependencies(cfg, store, logger, client)
}

// NewDescriberWithDependencies allows injecting the captioner (used in tests).
func NewDescriberWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, captioner Captioner) *Describer {
	return &Describer{
		store:        store,
		cfg:          cfg,
		logger:       logging.NewComponentLogger(logger, "description"),
		captioner:    captioner,
		extractFrame: extract.Frame,
	}
}

// WithFrameExtractor overrides the ffmpeg frame grab (for testing).
func (d *Describer) WithFrameExtractor(fn func(ctx context.Context, ffmpegBinary, source string, atSeconds float64, dest string) error) {
	d.extractFrame = fn
}

func (d *Describer) Prepare(ctx context.Context, item *queue.Item) error {
	item.InitProgress("Describing", "Preparing scene description")
	return nil
}

func (d *Describer) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, d.logger)

	plans, err := stage.WindowPlans(item)
	if err != nil {
		return err
	}
	if len(plans) == 0 {
		item.SetProgressComplete("Describing", "No narration windows to describe")
		logger.Info("no windows to describe")
		return nil
	}
	if strings.TrimSpace(item.SourcePath) == "" {
		return services.Wrap(services.ErrValidation, "describing", "validate inputs",
			"No source path present on queue item", nil)
	}

	framesDir := filepath.Join(item.StagingRoot(d.cfg.Paths.WorkDir), "frames")
	if err := os.MkdirAll(framesDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "describing", "ensure frames dir",
			fmt.Sprintf("Cannot create frames directory %s", framesDir), err)
	}

	described := 0
	for i := range plans {
		plan := &plans[i]
		percent := float64(i) / float64(len(plans)) * 100
		item.SetProgress("Describing", fmt.Sprintf("Describing window %d of %d", i+1, len(plans)), percent)

		framePaths, err := d.sampleFrames(ctx, item.SourcePath, framesDir, i, plan)
		if err == nil {
			var text string
			text, err = d.captioner.DescribeFrames(ctx, framePaths, plan.Duration())
			if err == nil {
				plan.Description = text
				plan.FailureReason = ""
				described++
				continue
			}
		}
		// A window that cannot be described is skipped at mix time rather
		// than failing the whole item.
		plan.FailureReason = err.Error()
		logger.Warn("window description failed",
			logging.String("window", fmt.Sprintf("%.2f-%.2f", plan.Start, plan.End)),
			logging.Error(err),
		)
	}

	if described == 0 {
		return services.Wrap(services.ErrExternalTool, "describing", "caption windows",
			"Every narration window failed to describe", nil)
	}
	if err := item.SetWindows(plans); err != nil {
		return services.Wrap(services.ErrValidation, "describing", "store windows",
			"Cannot encode narration plan", err)
	}
	item.SetProgressComplete("Describing", fmt.Sprintf("Described %d of %d windows", described, len(plans)))
	logger.Info("description complete", logging.Int("described", described), logging.Int("windows", len(plans)))
	return nil
}

// sampleFrames grabs frames spread across the window: start, middle, end.
func (d *Describer) sampleFrames(ctx context.Context, source, framesDir string, windowIndex int, plan *queue.WindowPlan) ([]string, error) {
	duration := plan.Duration()
	paths := make([]string, 0, framesPerWindow)
	for f := 0; f < framesPerWindow; f++ {
		at := plan.Start + duration*float64(f)/float64(framesPerWindow-1)
		if at > plan.End {
			at = plan.End
		}
		dest := filepath.Join(framesDir, fmt.Sprintf("window_%03d_frame_%d.jpg", windowIndex, f))
		if err := d.extractFrame(ctx, "ffmpeg", source, at, dest); err != nil {
			return nil, fmt.Errorf("extract frame at %.2fs: %w", at, err)
		}
		paths = append(paths, dest)
	}
	return paths, nil
}

func (d *Describer) HealthCheck(ctx context.Context) stage.Health {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return stage.Unhealthy("description", "ffmpeg not found in PATH")
	}
	if strings.TrimSpace(d.cfg.Description.APIKey) == "" {
		return stage.Unhealthy("description", "vision model api key not configured")
	}
	return stage.Healthy("description")
}
