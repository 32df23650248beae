package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"descant/internal/logging"
	"descant/internal/queue"
	"descant/internal/services"
)

// ProcessItem advances an item through exactly one stage. It is exported for
// the one-shot processing path; the background loop uses the same code.
func (m *Manager) ProcessItem(ctx context.Context, item *queue.Item) error {
	return m.processItem(ctx, item)
}

// RunUntilIdle processes ready items one stage at a time until the queue has
// nothing left to advance. Used by one-shot processing.
func (m *Manager) RunUntilIdle(ctx context.Context) error {
	for {
		item, err := m.store.NextForStatuses(ctx, m.statusOrder...)
		if err != nil {
			return err
		}
		if item == nil {
			return nil
		}
		if err := m.processItem(ctx, item); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			// Stage failures are persisted on the item; keep draining.
		}
	}
}

func (m *Manager) processItem(ctx context.Context, item *queue.Item) error {
	stg, ok := m.stageByStrt[item.Status]
	if !ok {
		m.logger.Warn("no stage configured for status", logging.String("status", string(item.Status)))
		m.waitOrShutdown(ctx, m.pollInterval)
		return nil
	}

	stageCtx := services.WithItemID(ctx, item.ID)
	stageCtx = services.WithStage(stageCtx, stg.name)
	stageCtx = services.WithRequestID(stageCtx, uuid.NewString())
	logger := logging.WithContext(stageCtx, m.logger)

	if err := m.transitionToProcessing(stageCtx, stg, item); err != nil {
		logger.Error("failed to transition item to processing", logging.Error(err))
		m.setLastError(err)
		return err
	}
	return m.executeStage(stageCtx, logger, stg, item)
}

func (m *Manager) executeStage(ctx context.Context, logger *slog.Logger, stg pipelineStage, item *queue.Item) error {
	stageStart := time.Now()
	logger.Info("stage started",
		logging.String("processing_status", string(stg.processingStatus)),
		logging.String("source_file", strings.TrimSpace(item.SourcePath)),
	)

	if stg.handler == nil {
		item.SetFailed(fmt.Sprintf("stage %s missing handler", stg.name))
		if err := m.store.Update(ctx, item); err != nil {
			logger.Error("failed to persist missing handler failure", logging.Error(err))
		}
		err := errors.New("stage handler unavailable")
		m.setLastError(err)
		return err
	}

	if err := stg.handler.Prepare(ctx, item); err != nil {
		m.handleStageFailure(ctx, stg.name, item, err)
		m.setLastError(err)
		return err
	}
	if err := m.store.Update(ctx, item); err != nil {
		wrapped := fmt.Errorf("persist stage preparation: %w", err)
		logger.Error("failed to persist stage preparation", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}

	execErr := m.executeWithHeartbeat(ctx, stg, item)
	if execErr != nil {
		if errors.Is(execErr, context.Canceled) {
			logger.Debug("stage interrupted by shutdown")
			return execErr
		}
		m.handleStageFailure(ctx, stg.name, item, execErr)
		m.setLastError(execErr)
		return execErr
	}

	if item.Status == stg.processingStatus || item.Status == "" {
		item.Status = stg.doneStatus
	}
	item.LastHeartbeat = nil
	if item.Status == queue.StatusCompleted && item.ProgressPercent < 100 {
		item.ProgressPercent = 100
	}
	if err := m.store.Update(ctx, item); err != nil {
		wrapped := fmt.Errorf("persist stage result: %w", err)
		logger.Error("failed to persist stage result", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}

	logger.Info("stage completed",
		logging.String("next_status", string(item.Status)),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	m.setLastItem(item)
	return nil
}

func (m *Manager) executeWithHeartbeat(ctx context.Context, stg pipelineStage, item *queue.Item) error {
	hbCtx, hbCancel := context.WithCancel(ctx)
	var hbWG sync.WaitGroup
	hbWG.Add(1)
	go m.heartbeat.StartLoop(hbCtx, &hbWG, item.ID)

	execErr := stg.handler.Execute(ctx, item)
	hbCancel()
	hbWG.Wait()
	return execErr
}

func (m *Manager) transitionToProcessing(ctx context.Context, stg pipelineStage, item *queue.Item) error {
	now := time.Now().UTC()
	item.Status = stg.processingStatus
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	item.LastHeartbeat = &now
	if err := m.store.Update(ctx, item); err != nil {
		return fmt.Errorf("persist processing transition: %w", err)
	}
	m.setLastItem(item)
	return nil
}

func (m *Manager) handleStageFailure(ctx context.Context, stageName string, item *queue.Item, stageErr error) {
	message := strings.TrimSpace(stageErr.Error())
	if message == "" {
		message = fmt.Sprintf("%s failed", stageName)
	}

	status := services.FailureStatus(stageErr)
	if status == queue.StatusReview {
		item.SetReview(message)
	} else {
		item.SetFailed(message)
	}

	logger := logging.WithContext(ctx, m.logger)
	logger.Error("stage failed",
		logging.String("resolved_status", string(status)),
		logging.String("error_message", message),
		logging.Error(stageErr),
	)

	if err := m.store.Update(ctx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("shutting down, could not persist stage failure")
		} else {
			logger.Error("failed to persist stage failure", logging.Error(err))
		}
	}
	m.setLastItem(item)
}
