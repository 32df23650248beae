package workflow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"descant/internal/logging"
	"descant/internal/queue"
	"descant/internal/services"
	"descant/internal/stage"
	"descant/internal/testsupport"
	"descant/internal/workflow"
)

type fakeHandler struct {
	name       string
	prepareErr error
	execErr    error
	onExecute  func(*queue.Item)
	executions int
}

func (f *fakeHandler) Prepare(ctx context.Context, item *queue.Item) error {
	return f.prepareErr
}

func (f *fakeHandler) Execute(ctx context.Context, item *queue.Item) error {
	f.executions++
	if f.execErr != nil {
		return f.execErr
	}
	if f.onExecute != nil {
		f.onExecute(item)
	}
	return nil
}

func (f *fakeHandler) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy(f.name)
}

func passthroughStages() (workflow.StageSet, map[string]*fakeHandler) {
	handlers := map[string]*fakeHandler{
		"extraction":  {name: "extraction"},
		"detection":   {name: "detection"},
		"description": {name: "description"},
		"narration":   {name: "narration"},
		"mixing":      {name: "mixing"},
		"export":      {name: "export"},
	}
	return workflow.StageSet{
		Extractor: handlers["extraction"],
		Detector:  handlers["detection"],
		Describer: handlers["description"],
		Narrator:  handlers["narration"],
		Mixer:     handlers["mixing"],
		Exporter:  handlers["export"],
	}, handlers
}

func TestRunUntilIdleAdvancesThroughAllStages(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewSource(t, store, "/videos/sample.mp4")

	stages, handlers := passthroughStages()
	manager := workflow.NewManager(cfg, store, logging.NewNop(), stages)

	if err := manager.RunUntilIdle(context.Background()); err != nil {
		t.Fatalf("RunUntilIdle: %v", err)
	}

	updated, err := store.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if updated.Status != queue.StatusCompleted {
		t.Fatalf("expected completed, got %s (%s)", updated.Status, updated.ErrorMessage)
	}
	if updated.ProgressPercent != 100 {
		t.Fatalf("expected 100%% progress, got %.0f", updated.ProgressPercent)
	}
	for name, h := range handlers {
		if h.executions != 1 {
			t.Errorf("stage %s executed %d times, want 1", name, h.executions)
		}
	}
}

func TestValidationFailureParksItemForReview(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewSource(t, store, "/videos/sample.mp4")

	stages, _ := passthroughStages()
	stages.Detector = &fakeHandler{
		name:    "detection",
		execErr: services.Wrap(services.ErrValidation, "detecting", "check inputs", "Analysis audio missing", nil),
	}
	manager := workflow.NewManager(cfg, store, logging.NewNop(), stages)

	if err := manager.RunUntilIdle(context.Background()); err != nil {
		t.Fatalf("RunUntilIdle: %v", err)
	}

	updated, err := store.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if updated.Status != queue.StatusReview {
		t.Fatalf("expected review, got %s", updated.Status)
	}
	if !updated.NeedsReview || updated.ReviewReason == "" {
		t.Fatalf("expected review metadata set: %#v", updated)
	}
}

func TestExternalToolFailureMarksItemFailed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewSource(t, store, "/videos/sample.mp4")

	stages, _ := passthroughStages()
	stages.Narrator = &fakeHandler{
		name:    "narration",
		execErr: services.Wrap(services.ErrExternalTool, "narrating", "synthesize windows", "Every narration window failed to synthesize", nil),
	}
	manager := workflow.NewManager(cfg, store, logging.NewNop(), stages)

	if err := manager.RunUntilIdle(context.Background()); err != nil {
		t.Fatalf("RunUntilIdle: %v", err)
	}

	updated, err := store.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if updated.Status != queue.StatusFailed {
		t.Fatalf("expected failed, got %s", updated.Status)
	}
	if updated.ErrorMessage == "" {
		t.Fatal("expected error message recorded")
	}
}

func TestRunUntilIdleDrainsPastFailedItems(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	failing := testsupport.NewSource(t, store, "/videos/broken.mp4")
	healthy := testsupport.NewSource(t, store, "/videos/fine.mp4")

	extractorFailures := 0
	stages, _ := passthroughStages()
	stages.Extractor = handlerFunc(func(ctx context.Context, item *queue.Item) error {
		if item.ID == failing.ID {
			extractorFailures++
			return errors.New("disc on fire")
		}
		return nil
	})
	manager := workflow.NewManager(cfg, store, logging.NewNop(), stages)

	if err := manager.RunUntilIdle(context.Background()); err != nil {
		t.Fatalf("RunUntilIdle: %v", err)
	}

	failed, err := store.GetByID(context.Background(), failing.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	completed, err := store.GetByID(context.Background(), healthy.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if failed.Status != queue.StatusFailed {
		t.Fatalf("expected failing item failed, got %s", failed.Status)
	}
	if completed.Status != queue.StatusCompleted {
		t.Fatalf("expected healthy item completed, got %s", completed.Status)
	}
	if extractorFailures != 1 {
		t.Fatalf("expected a single extraction attempt for the failed item, got %d", extractorFailures)
	}
}

type handlerFunc func(ctx context.Context, item *queue.Item) error

func (f handlerFunc) Prepare(ctx context.Context, item *queue.Item) error { return nil }

func (f handlerFunc) Execute(ctx context.Context, item *queue.Item) error { return f(ctx, item) }

func (f handlerFunc) HealthCheck(ctx context.Context) stage.Health { return stage.Healthy("fake") }

func TestStartAndStopProcessesQueuedItem(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 1
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewSource(t, store, "/videos/sample.mp4")

	stages, _ := passthroughStages()
	manager := workflow.NewManager(cfg, store, logging.NewNop(), stages)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := manager.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer manager.Stop()

	deadline := time.After(10 * time.Second)
	for {
		updated, err := store.GetByID(context.Background(), item.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if updated.Status == queue.StatusCompleted {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("item never completed, status %s", updated.Status)
		case <-time.After(50 * time.Millisecond):
		}
	}

	if !manager.Running() {
		t.Fatal("manager should report running before Stop")
	}
	manager.Stop()
	if manager.Running() {
		t.Fatal("manager should report stopped after Stop")
	}
}

func TestHealthChecksReportPipelineOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	stages, _ := passthroughStages()
	manager := workflow.NewManager(cfg, store, logging.NewNop(), stages)

	checks := manager.HealthChecks(context.Background())
	if len(checks) != 6 {
		t.Fatalf("expected 6 checks, got %d", len(checks))
	}
	want := []string{"extraction", "detection", "description", "narration", "mixing", "export"}
	for i, name := range want {
		if checks[i].Name != name {
			t.Errorf("check %d = %s, want %s", i, checks[i].Name, name)
		}
		if !checks[i].Ready {
			t.Errorf("check %s not ready", name)
		}
	}
}
