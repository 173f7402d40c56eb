package worker

import (
	"errors"
	"fmt"

	"github.com/shaiso/supercon/internal/domain"
)

// Ошибки выполнения заданий.
var (
	// ErrJobExecution — общий sentinel: errors.Is истинно для любой *JobExecutionError.
	ErrJobExecution = errors.New("job execution failed")

	// ErrNonZeroExit — процесс движка завершился с ненулевым кодом.
	ErrNonZeroExit = errors.New("engine exited with non-zero status")

	// ErrMissingArtifact — стадия не создала объявленный файл.
	ErrMissingArtifact = errors.New("declared artifact is missing")

	// ErrEmptyCommand — у задания нет команды.
	ErrEmptyCommand = errors.New("job has no command")

	// ErrStart — процесс не удалось запустить.
	ErrStart = errors.New("failed to start engine")

	// ErrCancelled — выполнение прервано через context.
	ErrCancelled = errors.New("execution cancelled")
)

// JobExecutionError — сбой запуска движка с контекстом.
type JobExecutionError struct {
	Stage    domain.Stage // стадия
	Command  string       // выполненная команда
	ExitCode int          // код выхода, -1 если процесс не завершился сам
	Stderr   string       // хвост stderr
	Artifact string       // отсутствующий файл для ErrMissingArtifact
	Err      error        // базовая ошибка
}

// Error реализует интерфейс error.
func (e *JobExecutionError) Error() string {
	msg := fmt.Sprintf("%s: %q", e.Stage, e.Command)
	switch {
	case errors.Is(e.Err, ErrMissingArtifact):
		msg += ": " + e.Artifact + " was not produced"
	case errors.Is(e.Err, ErrNonZeroExit):
		msg += fmt.Sprintf(": exit status %d", e.ExitCode)
	default:
		msg += ": " + e.Err.Error()
	}
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Unwrap возвращает базовую ошибку.
func (e *JobExecutionError) Unwrap() error {
	return e.Err
}

// Is позволяет проверять errors.Is(err, ErrJobExecution).
func (e *JobExecutionError) Is(target error) bool {
	return target == ErrJobExecution
}
