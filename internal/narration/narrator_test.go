package narration_test

import (
	"context"
	"errors"
	"testing"

	"descant/internal/audio/pcm"
	"descant/internal/logging"
	"descant/internal/narration"
	"descant/internal/queue"
	"descant/internal/services"
	"descant/internal/testsupport"
)

type fakeSynth struct {
	calls       int
	texts       []string
	failOn      map[int]error
	clipSeconds map[int]float64
}

func (f *fakeSynth) Synthesize(ctx context.Context, text, dest string) error {
	call := f.calls
	f.calls++
	f.texts = append(f.texts, text)
	if err, ok := f.failOn[call]; ok {
		return err
	}
	seconds := 1.0
	if s, ok := f.clipSeconds[call]; ok {
		seconds = s
	}
	frames := int(seconds * 8000)
	track := &pcm.Track{Samples: make([]int16, frames), SampleRate: 8000, Channels: 1}
	return pcm.WriteWAVFile(dest, track)
}

func (f *fakeSynth) Command() string { return "piper" }

func newItem(t *testing.T, store *queue.Store, plans []queue.WindowPlan) *queue.Item {
	t.Helper()
	item := testsupport.NewSource(t, store, "/videos/sample.mp4")
	if err := item.SetWindows(plans); err != nil {
		t.Fatalf("SetWindows: %v", err)
	}
	return item
}

func TestNarratorSynthesizesClips(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := newItem(t, store, []queue.WindowPlan{
		{Start: 0, End: 6, Description: "A dog runs across a field"},
		{Start: 10, End: 14, Description: "The dog catches a ball"},
	})

	synth := &fakeSynth{clipSeconds: map[int]float64{0: 4, 1: 3}}
	narrator := narration.NewNarratorWithDependencies(cfg, store, logging.NewNop(), synth)

	if err := narrator.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	plans, err := item.Windows()
	if err != nil {
		t.Fatalf("Windows: %v", err)
	}
	for i, plan := range plans {
		if plan.ClipPath == "" {
			t.Fatalf("window %d has no clip: %#v", i, plan)
		}
	}
	if synth.texts[0] != "A dog runs across a field" {
		t.Fatalf("unexpected synthesized text %q", synth.texts[0])
	}
}

func TestNarratorFitsOverlongClips(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := newItem(t, store, []queue.WindowPlan{
		{Start: 0, End: 3, Description: "A long scene unfolds"},
	})

	synth := &fakeSynth{clipSeconds: map[int]float64{0: 4}}
	narrator := narration.NewNarratorWithDependencies(cfg, store, logging.NewNop(), synth)

	var fitCurrent, fitTarget float64
	narrator.WithDurationFitter(func(ctx context.Context, ffmpegBinary, source string, currentSeconds, targetSeconds float64) (string, error) {
		fitCurrent = currentSeconds
		fitTarget = targetSeconds
		return source + ".fitted", nil
	})

	if err := narrator.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	plans, err := item.Windows()
	if err != nil {
		t.Fatalf("Windows: %v", err)
	}
	if fitTarget != 3 {
		t.Fatalf("expected fit target 3s, got %.2f (current %.2f)", fitTarget, fitCurrent)
	}
	if plans[0].ClipPath == "" || plans[0].ClipPath[len(plans[0].ClipPath)-7:] != ".fitted" {
		t.Fatalf("expected fitted clip path, got %q", plans[0].ClipPath)
	}
}

func TestNarratorSkipsUndescribedAndRecordsFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := newItem(t, store, []queue.WindowPlan{
		{Start: 0, End: 4, Description: "First window"},
		{Start: 6, End: 9},
		{Start: 12, End: 16, Description: "Third window"},
	})

	synth := &fakeSynth{failOn: map[int]error{1: errors.New("piper exploded")}}
	narrator := narration.NewNarratorWithDependencies(cfg, store, logging.NewNop(), synth)

	if err := narrator.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	plans, err := item.Windows()
	if err != nil {
		t.Fatalf("Windows: %v", err)
	}
	if plans[0].ClipPath == "" {
		t.Fatalf("expected first window to synthesize")
	}
	if plans[1].ClipPath != "" {
		t.Fatalf("undescribed window should not get a clip: %#v", plans[1])
	}
	if plans[2].ClipPath != "" || plans[2].FailureReason == "" {
		t.Fatalf("expected third window to record the failure: %#v", plans[2])
	}
	if synth.calls != 2 {
		t.Fatalf("expected 2 synthesis attempts, got %d", synth.calls)
	}
}

func TestNarratorAllFailuresReturnsError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := newItem(t, store, []queue.WindowPlan{
		{Start: 0, End: 4, Description: "Only window"},
	})

	synth := &fakeSynth{failOn: map[int]error{0: errors.New("no voice model")}}
	narrator := narration.NewNarratorWithDependencies(cfg, store, logging.NewNop(), synth)

	err := narrator.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestNarratorNoWindowsIsNoop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := newItem(t, store, nil)

	synth := &fakeSynth{}
	narrator := narration.NewNarratorWithDependencies(cfg, store, logging.NewNop(), synth)

	if err := narrator.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if synth.calls != 0 {
		t.Fatalf("expected no synthesis, got %d calls", synth.calls)
	}
}
