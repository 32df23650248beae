package extraction_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"descant/internal/extraction"
	"descant/internal/logging"
	"descant/internal/media/ffprobe"
	"descant/internal/services"
	"descant/internal/testsupport"
)

func probeResult(duration string, audioStreams int) ffprobe.Result {
	result := ffprobe.Result{Format: ffprobe.Format{Duration: duration}}
	for i := 0; i < audioStreams; i++ {
		result.Streams = append(result.Streams, ffprobe.Stream{CodecType: "audio", SampleRate: "44100", Channels: 2})
	}
	return result
}

func TestExtractorExecute(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	source := filepath.Join(t.TempDir(), "movie.mp4")
	testsupport.WriteFile(t, source, 64)
	item := testsupport.NewSource(t, store, source)

	extractor := extraction.NewExtractor(cfg, store, logging.NewNop())
	extractor.WithProbe(func(ctx context.Context, binary, path string) (ffprobe.Result, error) {
		return probeResult("120.5", 1), nil
	})
	var mixDest, analysisDest string
	extractor.WithExtractors(
		func(ctx context.Context, ffmpegBinary, src, dest string) error {
			mixDest = dest
			testsupport.WriteWAV(t, dest, 0.1, 44100, 2, 1000)
			return nil
		},
		func(ctx context.Context, ffmpegBinary, src, dest string) error {
			analysisDest = dest
			testsupport.WriteWAV(t, dest, 0.1, 16000, 1, 1000)
			return nil
		},
	)

	ctx := context.Background()
	if err := extractor.Prepare(ctx, item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := extractor.Execute(ctx, item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if item.MixAudioFile != mixDest || item.AnalysisAudioFile != analysisDest {
		t.Fatalf("expected audio paths recorded, got %q / %q", item.MixAudioFile, item.AnalysisAudioFile)
	}
	if item.MediaInfoJSON == "" {
		t.Fatal("expected probe payload persisted")
	}
	if item.ProgressPercent != 100 {
		t.Fatalf("expected complete progress, got %v", item.ProgressPercent)
	}
}

func TestExtractorRejectsSilentContainer(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	source := filepath.Join(t.TempDir(), "silent.mp4")
	testsupport.WriteFile(t, source, 64)
	item := testsupport.NewSource(t, store, source)

	extractor := extraction.NewExtractor(cfg, store, logging.NewNop())
	extractor.WithProbe(func(ctx context.Context, binary, path string) (ffprobe.Result, error) {
		return probeResult("120.5", 0), nil
	})

	err := extractor.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExtractorMissingSource(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewSource(t, store, filepath.Join(t.TempDir(), "missing.mp4"))

	extractor := extraction.NewExtractor(cfg, store, logging.NewNop())
	err := extractor.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestExtractorWrapsToolFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	source := filepath.Join(t.TempDir(), "movie.mp4")
	testsupport.WriteFile(t, source, 64)
	item := testsupport.NewSource(t, store, source)

	extractor := extraction.NewExtractor(cfg, store, logging.NewNop())
	extractor.WithProbe(func(ctx context.Context, binary, path string) (ffprobe.Result, error) {
		return probeResult("120.5", 1), nil
	})
	extractor.WithExtractors(
		func(ctx context.Context, ffmpegBinary, src, dest string) error {
			return errors.New("boom")
		},
		func(ctx context.Context, ffmpegBinary, src, dest string) error {
			return nil
		},
	)

	err := extractor.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}
