package export

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"log/slog"

	"descant/internal/config"
	"descant/internal/fileutil"
	"descant/internal/logging"
	"descant/internal/media/extract"
	"descant/internal/queue"
	"descant/internal/services"
	"descant/internal/stage"
)

// Stage encodes the mixed soundtrack into the configured output format and
// moves it into the output directory.
type Stage struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger

	encode func(ctx context.Context, ffmpegBinary, source, format, bitrate, dest string) error
}

// NewStage constructs the export stage handler.
func NewStage(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Stage {
	return &Stage{
		store:  store,
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "export"),
		encode: extract.Encode,
	}
}

// WithEncoder overrides the ffmpeg invocation (for testing).
func (s *Stage) WithEncoder(fn func(ctx context.Context, ffmpegBinary, source, format, bitrate, dest string) error) {
	s.encode = fn
}

func (s *Stage) Prepare(ctx context.Context, item *queue.Item) error {
	item.InitProgress("Exporting", "Preparing final track")
	return nil
}

func (s *Stage) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)

	if item.MixedFile == "" {
		return services.Wrap(services.ErrValidation, "exporting", "check inputs",
			"Mixed soundtrack missing; rerun mixing", nil)
	}
	if _, err := os.Stat(item.MixedFile); err != nil {
		return services.Wrap(services.ErrValidation, "exporting", "check inputs",
			fmt.Sprintf("Mixed soundtrack %s is not readable", item.MixedFile), err)
	}
	if err := os.MkdirAll(s.cfg.Paths.OutputDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "exporting", "ensure output dir",
			fmt.Sprintf("Cannot create output directory %s", s.cfg.Paths.OutputDir), err)
	}

	format := strings.ToLower(strings.TrimSpace(s.cfg.Export.Format))
	if format == "" {
		format = "mp3"
	}
	finalPath := filepath.Join(s.cfg.Paths.OutputDir, OutputName(item.SourcePath, format))

	item.SetProgress("Exporting", fmt.Sprintf("Encoding %s", filepath.Base(finalPath)), 20)
	staged := fileutil.TempSibling(finalPath)
	if err := s.encode(ctx, "ffmpeg", item.MixedFile, format, s.cfg.Export.Bitrate, staged); err != nil {
		_ = os.Remove(staged)
		return services.Wrap(services.ErrExternalTool, "exporting", "encode track",
			fmt.Sprintf("Encoding to %s failed", format), err)
	}

	item.SetProgress("Exporting", "Publishing final track", 80)
	if err := os.Rename(staged, finalPath); err != nil {
		_ = os.Remove(staged)
		return services.Wrap(services.ErrExport, "exporting", "publish track",
			fmt.Sprintf("Cannot move final track to %s", finalPath), err)
	}
	item.FinalFile = finalPath

	item.SetProgressComplete("Exporting", fmt.Sprintf("Exported %s", filepath.Base(finalPath)))
	logger.Info("export complete", logging.String("final", finalPath))
	return nil
}

// OutputName derives the final track filename from the source path, matching
// the source base name with a _described suffix.
func OutputName(sourcePath, format string) string {
	base := filepath.Base(sourcePath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." {
		base = "output"
	}
	return base + "_described." + format
}

func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return stage.Unhealthy("export", "ffmpeg not found in PATH")
	}
	return stage.Healthy("export")
}
