package orchestrator

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shaiso/supercon/internal/domain"
	"github.com/shaiso/supercon/internal/mq"
)

// recorder сохраняет записи стадий и публикует stage.completed.
// Ошибки хранилища и брокера только логируются: workflow
// не останавливается из-за них.
type recorder struct {
	runID     uuid.UUID
	stages    StageStore
	publisher EventPublisher
	logger    *slog.Logger

	records map[domain.Stage]*domain.StageRecord
}

func newRecorder(runID uuid.UUID, stages StageStore, publisher EventPublisher, logger *slog.Logger) *recorder {
	return &recorder{
		runID:     runID,
		stages:    stages,
		publisher: publisher,
		logger:    logger,
		records:   make(map[domain.Stage]*domain.StageRecord),
	}
}

// StageStarted создаёт запись стадии в статусе RUNNING.
func (r *recorder) StageStarted(ctx context.Context, ev domain.StageEvent) {
	rec := domain.NewStageRecord(r.runID, ev.Stage, ev.Job)
	r.records[ev.Stage] = rec

	if r.stages == nil {
		return
	}
	if err := r.stages.Create(ctx, rec); err != nil {
		r.logger.Warn("failed to create stage record", "stage", ev.Stage, "error", err)
	}
}

// StageFinished обновляет запись стадии и публикует событие.
// Запись сохраняется и после отмены ctx (остановка сервиса).
func (r *recorder) StageFinished(ctx context.Context, ev domain.StageEvent) {
	ctx = context.WithoutCancel(ctx)

	rec, ok := r.records[ev.Stage]
	if !ok {
		rec = domain.NewStageRecord(r.runID, ev.Stage, ev.Job)
		r.records[ev.Stage] = rec
	}

	if ev.Err != nil {
		rec.MarkFailed(ev.Err.Error())
	} else {
		rec.MarkSucceeded()
	}

	if r.stages != nil {
		if err := r.stages.Update(ctx, rec); err != nil {
			r.logger.Warn("failed to update stage record", "stage", ev.Stage, "error", err)
		}
	}

	if r.publisher != nil {
		payload := mq.StageCompletedPayload{
			RunID:      r.runID,
			Stage:      string(ev.Stage),
			Status:     string(rec.Status),
			Error:      rec.Error,
			DurationMs: ev.Duration.Milliseconds(),
		}
		if err := r.publisher.PublishStageCompleted(ctx, payload); err != nil {
			r.logger.Warn("failed to publish stage.completed", "stage", ev.Stage, "error", err)
		}
	}
}
