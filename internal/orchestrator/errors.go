package orchestrator

import (
	"errors"
	"fmt"

	"github.com/shaiso/supercon/internal/domain"
)

// Ошибки оркестратора.
var (
	// ErrRunNotFound — run не найден в БД.
	ErrRunNotFound = errors.New("run not found")

	// ErrRunNotPending — run не в статусе PENDING (уже забран другим процессом).
	ErrRunNotPending = errors.New("run is not in PENDING status")

	// ErrInvalidWorkflow — WorkflowSpec не прошёл валидацию.
	ErrInvalidWorkflow = errors.New("invalid workflow")

	// ErrWorkDirInUse — в директории уже выполняется другой workflow.
	ErrWorkDirInUse = errors.New("work directory already in use")

	// ErrServiceNotConfigured — для service mode не заданы хранилища.
	ErrServiceNotConfigured = errors.New("orchestrator service dependencies not configured")

	// ErrOrchestratorStopped — оркестратор остановлен.
	ErrOrchestratorStopped = errors.New("orchestrator stopped")

	// ErrQueueFull — очередь runs переполнена.
	ErrQueueFull = errors.New("run queue is full")
)

// StageError — ошибка, прервавшая workflow на конкретной стадии.
type StageError struct {
	Stage domain.Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedStage возвращает стадию, на которой упал workflow.
// Пустая строка, если err не содержит StageError.
func FailedStage(err error) domain.Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
