package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/shaiso/supercon/internal/domain"
	"github.com/shaiso/supercon/internal/mq"
	"github.com/shaiso/supercon/internal/repo"
	"github.com/shaiso/supercon/internal/telemetry"
)

// handleRunPending обрабатывает событие о новом pending run.
//
// Run не выполняется в handler: он только ставится в очередь,
// чтобы сообщение не висело неподтверждённым часами.
func (o *Orchestrator) handleRunPending(_ context.Context, msg mq.Message) error {
	payload, err := mq.ParsePayload[mq.RunPendingPayload](msg)
	if err != nil {
		o.logger.Error("failed to parse run.pending payload", "error", err)
		return err
	}

	o.logger.Debug("received run.pending event", "run_id", payload.RunID)

	if err := o.enqueue(payload.RunID); err != nil {
		// run остаётся PENDING в БД, его подберёт poll
		o.logger.Warn("run not enqueued, leaving it to poll",
			"run_id", payload.RunID,
			"reason", err,
		)
	}

	return nil
}

// WorkDir возвращает рабочую директорию run.
func (o *Orchestrator) WorkDir(runID uuid.UUID) string {
	return filepath.Join(o.workRoot, runID.String())
}

// processRun забирает PENDING run, выполняет workflow и сохраняет итог.
func (o *Orchestrator) processRun(ctx context.Context, runID uuid.UUID) error {
	workDir := o.WorkDir(runID)

	// 1. Забираем run (PENDING → RUNNING атомарно)
	run, err := o.runs.MarkRunning(ctx, runID, workDir)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		case errors.Is(err, repo.ErrInvalidState):
			return ErrRunNotPending
		default:
			return fmt.Errorf("mark run running: %w", err)
		}
	}

	logger := telemetry.WithRunID(o.logger, runID.String())
	logger.Info("run started", "work_dir", workDir)

	// 2. Выполняем workflow
	rec := newRecorder(runID, o.stages, o.publisher, logger)
	state, runErr := o.execute(ctx, run.Spec, workDir, logger, rec)

	// 3. Финализируем даже при остановке оркестратора
	return o.completeRun(context.WithoutCancel(ctx), run, state, runErr)
}

// completeRun сохраняет итог run, архивирует артефакты и публикует событие.
func (o *Orchestrator) completeRun(ctx context.Context, run *domain.Run, state *State, runErr error) error {
	logger := telemetry.WithRunID(o.logger, run.ID.String())

	if runErr != nil {
		run.MarkFailed(FailedStage(runErr), runErr.Error())
		logger.Warn("run failed",
			"failed_stage", run.FailedStage,
			"error", runErr,
			"duration", run.Duration(),
		)
	} else {
		run.MarkSucceeded(state.Handoff.Results)
		logger.Info("run succeeded",
			"results", len(run.Results),
			"duration", run.Duration(),
		)
	}

	if err := o.runs.Update(ctx, run); err != nil {
		return fmt.Errorf("update run status: %w", err)
	}

	telemetry.ObserveRun(run.Status, len(run.Results))

	// Невалидная спецификация не запускала движок: архивировать нечего.
	if o.archiver != nil && run.WorkDir != "" && !IsInvalidWorkflow(runErr) {
		n, err := o.archiver.ArchiveRun(ctx, run.ID, run.WorkDir)
		if err != nil {
			logger.Warn("failed to archive run artifacts", "error", err)
		} else {
			logger.Debug("run artifacts archived", "files", n)
		}
	}

	if o.publisher != nil {
		payload := mq.RunCompletedPayload{
			RunID:       run.ID,
			Status:      string(run.Status),
			FailedStage: string(run.FailedStage),
			Error:       run.Error,
			Results:     len(run.Results),
		}
		if err := o.publisher.PublishRunCompleted(ctx, payload); err != nil {
			logger.Warn("failed to publish run.completed", "error", err)
		}
	}

	return nil
}
