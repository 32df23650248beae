package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"descant/internal/config"
	"descant/internal/description"
	"descant/internal/detection"
	"descant/internal/export"
	"descant/internal/extraction"
	"descant/internal/logging"
	"descant/internal/mixing"
	"descant/internal/narration"
	"descant/internal/queue"
	"descant/internal/stage"
)

// StageSet bundles the concrete handlers the manager orchestrates.
type StageSet struct {
	Extractor stage.Handler
	Detector  stage.Handler
	Describer stage.Handler
	Narrator  stage.Handler
	Mixer     stage.Handler
	Exporter  stage.Handler
}

// DefaultStages builds the production pipeline handlers.
func DefaultStages(cfg *config.Config, store *queue.Store, logger *slog.Logger) StageSet {
	return StageSet{
		Extractor: extraction.NewExtractor(cfg, store, logger),
		Detector:  detection.NewDetector(cfg, store, logger),
		Describer: description.NewDescriber(cfg, store, logger),
		Narrator:  narration.NewNarrator(cfg, store, logger),
		Mixer:     mixing.NewStage(cfg, store, logger),
		Exporter:  export.NewStage(cfg, store, logger),
	}
}

type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      queue.Status
	processingStatus queue.Status
	doneStatus       queue.Status
}

// Manager coordinates queue processing across the registered stages.
type Manager struct {
	cfg          *config.Config
	store        *queue.Store
	logger       *slog.Logger
	pollInterval time.Duration
	heartbeat    *HeartbeatMonitor

	stages      []pipelineStage
	stageByStrt map[queue.Status]pipelineStage
	statusOrder []queue.Status

	mu       sync.RWMutex
	running  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	lastErr  error
	lastItem *queue.Item
}

// NewManager constructs a workflow manager over the given stage set.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger, stages StageSet) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logging.NewComponentLogger(logger, "workflow"),
		pollInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		heartbeat: NewHeartbeatMonitor(
			store,
			logger,
			time.Duration(cfg.Workflow.HeartbeatInterval)*time.Second,
			time.Duration(cfg.Workflow.HeartbeatTimeout)*time.Second,
		),
	}
	m.configureStages(stages)
	return m
}

func (m *Manager) configureStages(stages StageSet) {
	m.stages = []pipelineStage{
		{"extraction", stages.Extractor, queue.StatusPending, queue.StatusExtracting, queue.StatusExtracted},
		{"detection", stages.Detector, queue.StatusExtracted, queue.StatusDetecting, queue.StatusDetected},
		{"description", stages.Describer, queue.StatusDetected, queue.StatusDescribing, queue.StatusDescribed},
		{"narration", stages.Narrator, queue.StatusDescribed, queue.StatusNarrating, queue.StatusNarrated},
		{"mixing", stages.Mixer, queue.StatusNarrated, queue.StatusMixing, queue.StatusMixed},
		{"export", stages.Exporter, queue.StatusMixed, queue.StatusExporting, queue.StatusCompleted},
	}
	m.stageByStrt = make(map[queue.Status]pipelineStage, len(m.stages))
	m.statusOrder = make([]queue.Status, 0, len(m.stages))
	for _, stg := range m.stages {
		m.stageByStrt[stg.startStatus] = stg
		m.statusOrder = append(m.statusOrder, stg.startStatus)
	}
}

// Start begins background processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	if reset, err := m.store.ResetStuckProcessing(runCtx); err != nil {
		m.logger.Warn("reset stuck processing failed", logging.Error(err))
	} else if reset > 0 {
		m.logger.Info("reset stuck items from a previous run", logging.Int64("count", reset))
	}

	go m.run(runCtx)
	return nil
}

// Stop terminates background processing and waits for completion.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// Running reports whether the background loop is active.
func (m *Manager) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// LastError returns the most recent processing error, if any.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// LastItem returns a copy of the most recently processed item.
func (m *Manager) LastItem() *queue.Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.lastItem == nil {
		return nil
	}
	clone := *m.lastItem
	return &clone
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setLastItem(item *queue.Item) {
	m.mu.Lock()
	clone := *item
	m.lastItem = &clone
	m.mu.Unlock()
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := m.heartbeat.ReclaimStaleItems(ctx, m.logger); err != nil {
			m.logger.Warn("reclaim stale processing failed; stuck items may remain", logging.Error(err))
		}

		item, err := m.store.NextForStatuses(ctx, m.statusOrder...)
		if err != nil {
			m.setLastError(err)
			m.logger.Error("failed to fetch next queue item", logging.Error(err))
			m.waitOrShutdown(ctx, time.Duration(m.cfg.Workflow.ErrorRetryInterval)*time.Second)
			continue
		}
		if item == nil {
			m.waitOrShutdown(ctx, m.pollInterval)
			continue
		}

		if err := m.processItem(ctx, item); err != nil && errors.Is(err, context.Canceled) {
			return
		}
	}
}

func (m *Manager) waitOrShutdown(ctx context.Context, d time.Duration) {
	if d <= 0 {
		d = time.Second
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
