package tts

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Config captures runtime settings for narration synthesis.
type Config struct {
	// Command is the TTS binary to invoke (e.g., "piper").
	Command string
	// ExtraArgs are passed to the command before the standard flags.
	ExtraArgs []string
	// Voice selects the voice model when the command supports one.
	Voice string
}

// DefaultCommand is the synthesizer used when none is configured.
const DefaultCommand = "piper"

// maxSpeedChange bounds how far narration may be sped up or slowed down to
// fit its window.
const maxSpeedChange = 0.3

// Service synthesizes narration clips by piping text through an external
// piper-style TTS command.
type Service struct {
	cfg           Config
	commandRunner func(ctx context.Context, stdin string, name string, args ...string) error
}

// NewService creates a TTS service with the given configuration.
func NewService(cfg Config) *Service {
	if strings.TrimSpace(cfg.Command) == "" {
		cfg.Command = DefaultCommand
	}
	return &Service{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, stdin string, name string, args ...string) error) {
	s.commandRunner = runner
}

// Command returns the configured synthesizer binary for logging.
func (s *Service) Command() string {
	return s.cfg.Command
}

// Synthesize renders text to a WAV clip at dest. The text is fed to the
// synthesizer on stdin, the way piper expects it.
func (s *Service) Synthesize(ctx context.Context, text, dest string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("synthesize: text required")
	}
	if dest == "" {
		return fmt.Errorf("synthesize: destination path required")
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("synthesize: ensure output dir: %w", err)
	}

	args := make([]string, 0, len(s.cfg.ExtraArgs)+4)
	args = append(args, s.cfg.ExtraArgs...)
	if s.cfg.Voice != "" {
		args = append(args, "--model", s.cfg.Voice)
	}
	args = append(args, "--output_file", dest)

	if s.commandRunner != nil {
		return s.commandRunner(ctx, text, s.cfg.Command, args...)
	}
	cmd := exec.CommandContext(ctx, s.cfg.Command, args...) //nolint:gosec
	cmd.Stdin = strings.NewReader(text)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", s.cfg.Command, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// SpeedFactor returns the playback rate that fits a clip of currentSeconds
// into targetSeconds, limited to a 30% change in either direction. A factor
// of 1 means the clip should be used unchanged.
func SpeedFactor(currentSeconds, targetSeconds float64) (float64, error) {
	if targetSeconds <= 0 {
		return 0, fmt.Errorf("fit duration: target must be positive, got %.3f", targetSeconds)
	}
	if currentSeconds <= 0 {
		return 0, fmt.Errorf("fit duration: clip is empty")
	}
	factor := currentSeconds / targetSeconds
	if math.Abs(1-factor) > maxSpeedChange {
		if factor > 1 {
			factor = 1 + maxSpeedChange
		} else {
			factor = 1 - maxSpeedChange
		}
	}
	if math.Abs(factor-1.0) < 1e-6 {
		return 1, nil
	}
	return factor, nil
}

// FitDuration re-times a narration clip so it plays in targetSeconds,
// clamped to the allowed speed change. It returns the path of the clip to
// use, which is the source itself when no adjustment was needed.
func FitDuration(ctx context.Context, ffmpegBinary, source string, currentSeconds, targetSeconds float64) (string, error) {
	factor, err := SpeedFactor(currentSeconds, targetSeconds)
	if err != nil {
		return "", err
	}
	if factor == 1 {
		return source, nil
	}

	ext := filepath.Ext(source)
	dest := strings.TrimSuffix(source, ext) + "_fitted" + ext
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-filter:a", fmt.Sprintf("atempo=%.4f", factor),
		"-c:a", "pcm_s16le",
		dest,
	}
	cmd := exec.CommandContext(ctx, ffmpegBinary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("ffmpeg atempo: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return dest, nil
}
