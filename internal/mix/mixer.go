package mix

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"descant/internal/audio/pcm"
	"descant/internal/logging"
	"descant/internal/services"
)

// Config carries the levels and limits for a mixing pass. It is supplied by
// the caller; the mixer applies no defaulting beyond rejecting non-finite
// values. BackgroundAttenuationDB is a reduction (positive ducks the
// original, negative boosts it); NarrationGainDB is applied to clips with
// its sign as given.
type Config struct {
	BackgroundAttenuationDB float64
	NarrationGainDB         float64
	Workers                 int
	WindowTimeout           time.Duration
}

// Mixer splices narration clips into an original track, ducking the
// background underneath each clip.
type Mixer struct {
	logger *slog.Logger
}

// New constructs a Mixer. A nil logger is replaced with a no-op logger.
func New(logger *slog.Logger) *Mixer {
	return &Mixer{logger: logging.NewComponentLogger(logger, "mixer")}
}

// segment is the processed replacement for one window, ready to splice.
type segment struct {
	startFrame int
	samples    []int16
}

// Mix produces a new track identical to original except that, within each
// window carrying a readable narration clip, the original is attenuated and
// the clip overlaid. Windows are processed in parallel against the shared
// read-only original; splicing happens in ascending start order, so the
// output is deterministic regardless of completion order.
//
// A window failure (missing clip, decode error, unsupported format, timeout)
// never aborts the pass: the window passes through unmodified and its report
// carries the reason. Overlapping windows are a data-consistency error and
// reject the whole set; the intended producer guarantees disjointness.
func (m *Mixer) Mix(ctx context.Context, original *pcm.Track, windows []Window, cfg Config) (*pcm.Track, []Report, error) {
	if err := original.Validate(); err != nil {
		return nil, nil, err
	}
	if err := validateConfig(cfg); err != nil {
		return nil, nil, err
	}

	ordered := make([]Window, len(windows))
	copy(ordered, windows)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Span.Start < ordered[j].Span.Start })
	if err := rejectOverlaps(ordered); err != nil {
		return nil, nil, err
	}

	reports := make([]Report, len(ordered))
	segments := make([]*segment, len(ordered))

	group, groupCtx := errgroup.WithContext(ctx)
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	group.SetLimit(workers)

	for i, window := range ordered {
		i, window := i, window
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			windowCtx := groupCtx
			if cfg.WindowTimeout > 0 {
				var cancel context.CancelFunc
				windowCtx, cancel = context.WithTimeout(groupCtx, cfg.WindowTimeout)
				defer cancel()
			}
			seg, report := m.processWindow(windowCtx, original, window, cfg)
			segments[i] = seg
			reports[i] = report
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, nil, services.Wrap(services.ErrTransient, "mixing", "mix", "mixing pass interrupted", err)
	}

	// Deterministic splice: segments land in ascending start order into a
	// fresh copy of the original, so unprocessed spans pass through intact.
	output := original.Clone()
	for _, seg := range segments {
		if seg == nil {
			continue
		}
		copy(output.Samples[seg.startFrame*output.Channels:], seg.samples)
	}
	return output, reports, nil
}

// processWindow computes the replacement samples for one window. Any failure
// is reported, not returned: the caller passes the span through unchanged.
func (m *Mixer) processWindow(ctx context.Context, original *pcm.Track, window Window, cfg Config) (*segment, Report) {
	report := Report{Start: window.Span.Start, End: window.Span.End}
	logger := m.logger.With(logging.String(logging.FieldWindow, window.Span.Label()))

	if !window.Span.Valid() {
		report.FailureReason = "malformed window bounds"
		logger.Warn("skipping window", logging.String("reason", report.FailureReason))
		return nil, report
	}
	if window.Span.Start >= original.Duration() {
		report.FailureReason = "window starts past end of track"
		logger.Warn("skipping window", logging.String("reason", report.FailureReason))
		return nil, report
	}
	if !window.HasClip() {
		report.FailureReason = "no narration clip"
		logger.Debug("window has no narration, passing through")
		return nil, report
	}

	clip, err := m.loadClip(ctx, window)
	if err != nil {
		report.FailureReason = err.Error()
		logger.Warn("narration clip unusable, passing window through", logging.Error(err))
		return nil, report
	}
	clip, err = pcm.Convert(clip, original.SampleRate, original.Channels)
	if err != nil {
		report.FailureReason = err.Error()
		logger.Warn("narration clip format unsupported, passing window through", logging.Error(err))
		return nil, report
	}
	if err := ctx.Err(); err != nil {
		report.FailureReason = fmt.Sprintf("window processing timed out: %v", err)
		logger.Warn("window processing timed out, passing through")
		return nil, report
	}

	startFrame := original.FrameAt(window.Span.Start)
	endFrame := original.FrameAt(window.Span.End)
	background := original.Slice(startFrame, endFrame)
	pcm.Attenuate(background, cfg.BackgroundAttenuationDB)

	if cfg.NarrationGainDB != 0 {
		clip = clip.Clone()
		pcm.ApplyGain(clip, cfg.NarrationGainDB)
	}
	// Clips longer than the window are truncated; shorter clips leave the
	// remainder as attenuated background. No looping, no extra padding.
	if clip.Frames() > background.Frames() {
		clip = clip.Slice(0, background.Frames())
	}
	pcm.Overlay(background, clip, 0)

	report.Applied = true
	logger.Debug("window mixed",
		logging.Float64("clip_seconds", clip.Duration()),
		logging.Float64("window_seconds", window.Span.Duration()),
	)
	return &segment{startFrame: startFrame, samples: background.Samples}, report
}

func (m *Mixer) loadClip(ctx context.Context, window Window) (*pcm.Track, error) {
	if window.Clip != nil {
		if err := window.Clip.Validate(); err != nil {
			return nil, err
		}
		return window.Clip, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return pcm.ReadWAVFile(window.ClipPath)
}

func validateConfig(cfg Config) error {
	if math.IsNaN(cfg.BackgroundAttenuationDB) || math.IsInf(cfg.BackgroundAttenuationDB, 0) {
		return services.Wrap(services.ErrInvalidInput, "mixing", "config", "background attenuation must be finite", nil)
	}
	if math.IsNaN(cfg.NarrationGainDB) || math.IsInf(cfg.NarrationGainDB, 0) {
		return services.Wrap(services.ErrInvalidInput, "mixing", "config", "narration gain must be finite", nil)
	}
	return nil
}

// rejectOverlaps enforces disjointness on the sorted window set. Windows with
// invalid bounds are excluded here; they are skipped and reported by the
// per-window pass instead.
func rejectOverlaps(sorted []Window) error {
	prevEnd := math.Inf(-1)
	for _, w := range sorted {
		if !w.Span.Valid() {
			continue
		}
		if w.Span.Start < prevEnd {
			return services.Wrap(services.ErrInvalidInput, "mixing", "validate",
				fmt.Sprintf("window %s overlaps previous window ending at %.3f", w.Span.Label(), prevEnd), nil)
		}
		prevEnd = w.Span.End
	}
	return nil
}
