package worker

import (
	"context"

	"github.com/shaiso/supercon/internal/domain"
)

// Executor — интерфейс запуска одного задания движка.
//
// Реализации: ProcessExecutor. В тестах — fake, записывающий вызовы.
//
// Execute блокируется до завершения процесса. workDir — рабочая
// директория run: все стадии читают и пишут файлы в ней.
type Executor interface {
	Execute(ctx context.Context, workDir string, job *domain.Job) (*domain.JobResult, error)
}

// ExecutorFunc позволяет использовать функцию как Executor.
type ExecutorFunc func(ctx context.Context, workDir string, job *domain.Job) (*domain.JobResult, error)

// Execute реализует Executor.
func (f ExecutorFunc) Execute(ctx context.Context, workDir string, job *domain.Job) (*domain.JobResult, error) {
	return f(ctx, workDir, job)
}
