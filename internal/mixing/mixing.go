package mixing

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"log/slog"

	"descant/internal/audio/pcm"
	"descant/internal/config"
	"descant/internal/logging"
	"descant/internal/mix"
	"descant/internal/queue"
	"descant/internal/services"
	"descant/internal/stage"
	"descant/internal/timeline"
)

// MixedAudioName is the composite track written into the item staging dir.
const MixedAudioName = "mixed.wav"

// Stage splices narration clips into the extracted soundtrack, ducking the
// background underneath each clip.
type Stage struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
	mixer  *mix.Mixer
}

// NewStage constructs the mixing stage handler.
func NewStage(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Stage {
	return &Stage{
		store:  store,
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "mixing"),
		mixer:  mix.New(logger),
	}
}

func (s *Stage) Prepare(ctx context.Context, item *queue.Item) error {
	item.InitProgress("Mixing", "Preparing narration mix")
	return nil
}

func (s *Stage) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)

	if item.MixAudioFile == "" {
		return services.Wrap(services.ErrValidation, "mixing", "check inputs",
			"Extracted soundtrack missing; rerun extraction", nil)
	}
	plans, err := stage.WindowPlans(item)
	if err != nil {
		return err
	}

	item.SetProgress("Mixing", "Loading extracted soundtrack", 5)
	original, err := pcm.ReadWAVFile(item.MixAudioFile)
	if err != nil {
		return services.Wrap(services.ErrValidation, "mixing", "read soundtrack",
			fmt.Sprintf("Cannot read extracted soundtrack %s", item.MixAudioFile), err)
	}

	windows := make([]mix.Window, 0, len(plans))
	for _, plan := range plans {
		windows = append(windows, mix.Window{
			Span:     timeline.Interval{Start: plan.Start, End: plan.End},
			ClipPath: plan.ClipPath,
		})
	}

	item.SetProgress("Mixing", fmt.Sprintf("Mixing %d narration windows", len(windows)), 20)
	mixed, reports, err := s.mixer.Mix(ctx, original, windows, mix.Config{
		BackgroundAttenuationDB: s.cfg.Mixing.BackgroundAttenuationDB,
		NarrationGainDB:         s.cfg.Mixing.NarrationGainDB,
		Workers:                 s.cfg.Mixing.Workers,
		WindowTimeout:           time.Duration(s.cfg.Mixing.WindowTimeoutSeconds) * time.Second,
	})
	if err != nil {
		// The mixer tags its own errors; pass the classification through.
		return err
	}

	applyReports(plans, reports)
	if err := item.SetWindows(plans); err != nil {
		return services.Wrap(services.ErrValidation, "mixing", "store windows",
			"Cannot encode narration plan", err)
	}

	item.SetProgress("Mixing", "Writing mixed soundtrack", 80)
	mixedPath := filepath.Join(item.StagingRoot(s.cfg.Paths.WorkDir), MixedAudioName)
	if err := pcm.WriteWAVFile(mixedPath, mixed); err != nil {
		return services.Wrap(services.ErrConfiguration, "mixing", "write soundtrack",
			fmt.Sprintf("Cannot write mixed soundtrack %s", mixedPath), err)
	}
	item.MixedFile = mixedPath

	applied := mix.AppliedCount(reports)
	item.SetProgressComplete("Mixing", fmt.Sprintf("Applied narration to %d of %d windows", applied, len(windows)))
	logger.Info("mix complete",
		logging.Int("applied", applied),
		logging.Int("windows", len(windows)),
		logging.String("output", mixedPath),
	)
	return nil
}

// applyReports folds per-window mix outcomes back into the stored plan.
// Reports come back sorted by start time, which matches the plan order the
// detection stage produces.
func applyReports(plans []queue.WindowPlan, reports []mix.Report) {
	byStart := make(map[float64]mix.Report, len(reports))
	for _, r := range reports {
		byStart[r.Start] = r
	}
	for i := range plans {
		r, ok := byStart[plans[i].Start]
		if !ok {
			continue
		}
		plans[i].Applied = r.Applied
		if r.FailureReason != "" {
			plans[i].FailureReason = r.FailureReason
		}
	}
}

func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy("mixing")
}
