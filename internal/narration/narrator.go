package narration

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"log/slog"

	"descant/internal/audio/pcm"
	"descant/internal/config"
	"descant/internal/logging"
	"descant/internal/queue"
	"descant/internal/services"
	"descant/internal/services/tts"
	"descant/internal/stage"
)

// Synthesizer renders narration text to a WAV clip.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, dest string) error
	Command() string
}

// Narrator synthesizes a clip for every described window and re-times clips
// that run past their window.
type Narrator struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
	tts    Synthesizer

	fitDuration func(ctx context.Context, ffmpegBinary, source string, currentSeconds, targetSeconds float64) (string, error)
}

// NewNarrator constructs the narration stage handler with a piper-style backend.
func NewNarrator(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Narrator {
	svc := tts.NewService(tts.Config{
		Command:   cfg.Narration.Command,
		ExtraArgs: cfg.Narration.ExtraArgs,
		Voice:     cfg.Narration.Voice,
	})
	return NewNarratorWithDependencies(cfg, store, logger, svc)
}

// NewNarratorWithDependencies allows injecting the synthesizer (used in tests).
func NewNarratorWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, synthesizer Synthesizer) *Narrator {
	return &Narrator{
		store:       store,
		cfg:         cfg,
		logger:      logging.NewComponentLogger(logger, "narration"),
		tts:         synthesizer,
		fitDuration: tts.FitDuration,
	}
}

// WithDurationFitter overrides the atempo invocation (for testing).
func (n *Narrator) WithDurationFitter(fn func(ctx context.Context, ffmpegBinary, source string, currentSeconds, targetSeconds float64) (string, error)) {
	n.fitDuration = fn
}

func (n *Narrator) Prepare(ctx context.Context, item *queue.Item) error {
	item.InitProgress("Narrating", "Preparing narration synthesis")
	return nil
}

func (n *Narrator) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, n.logger)

	plans, err := stage.WindowPlans(item)
	if err != nil {
		return err
	}
	if len(plans) == 0 {
		item.SetProgressComplete("Narrating", "No narration windows to synthesize")
		logger.Info("no windows to narrate")
		return nil
	}

	clipsDir := filepath.Join(item.StagingRoot(n.cfg.Paths.WorkDir), "clips")
	if err := os.MkdirAll(clipsDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "narrating", "ensure clips dir",
			fmt.Sprintf("Cannot create clips directory %s", clipsDir), err)
	}

	synthesized := 0
	for i := range plans {
		plan := &plans[i]
		if strings.TrimSpace(plan.Description) == "" {
			continue
		}
		percent := float64(i) / float64(len(plans)) * 100
		item.SetProgress("Narrating", fmt.Sprintf("Synthesizing window %d of %d", i+1, len(plans)), percent)

		clipPath := filepath.Join(clipsDir, fmt.Sprintf("window_%03d.wav", i))
		if err := n.synthesizeWindow(ctx, plan, clipPath); err != nil {
			plan.ClipPath = ""
			plan.FailureReason = err.Error()
			logger.Warn("window narration failed",
				logging.String("window", fmt.Sprintf("%.2f-%.2f", plan.Start, plan.End)),
				logging.Error(err),
			)
			continue
		}
		synthesized++
	}

	if synthesized == 0 {
		return services.Wrap(services.ErrExternalTool, "narrating", "synthesize windows",
			"Every narration window failed to synthesize", nil)
	}
	if err := item.SetWindows(plans); err != nil {
		return services.Wrap(services.ErrValidation, "narrating", "store windows",
			"Cannot encode narration plan", err)
	}
	item.SetProgressComplete("Narrating", fmt.Sprintf("Synthesized %d of %d windows", synthesized, len(plans)))
	logger.Info("narration complete", logging.Int("synthesized", synthesized), logging.Int("windows", len(plans)))
	return nil
}

// synthesizeWindow renders the clip and re-times it when it overruns the
// window. The fitted clip path lands in the plan.
func (n *Narrator) synthesizeWindow(ctx context.Context, plan *queue.WindowPlan, clipPath string) error {
	if err := n.tts.Synthesize(ctx, plan.Description, clipPath); err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}

	track, err := pcm.ReadWAVFile(clipPath)
	if err != nil {
		return fmt.Errorf("read clip: %w", err)
	}
	clipSeconds := track.Duration()
	if clipSeconds <= plan.Duration() {
		plan.ClipPath = clipPath
		plan.FailureReason = ""
		return nil
	}

	fitted, err := n.fitDuration(ctx, "ffmpeg", clipPath, clipSeconds, plan.Duration())
	if err != nil {
		return fmt.Errorf("fit clip: %w", err)
	}
	plan.ClipPath = fitted
	plan.FailureReason = ""
	return nil
}

func (n *Narrator) HealthCheck(ctx context.Context) stage.Health {
	command := n.tts.Command()
	if _, err := exec.LookPath(command); err != nil {
		return stage.Unhealthy("narration", fmt.Sprintf("%s not found in PATH", command))
	}
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return stage.Unhealthy("narration", "ffmpeg not found in PATH")
	}
	return stage.Healthy("narration")
}
