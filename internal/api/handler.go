package api

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shaiso/supercon/internal/domain"
	"github.com/shaiso/supercon/internal/repo"
)

// RunStore — операции с runs, нужные API (реализует repo.RunRepo).
type RunStore interface {
	Create(ctx context.Context, run *domain.Run) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error)
	List(ctx context.Context, filter repo.RunFilter) ([]domain.Run, error)
	Count(ctx context.Context, filter repo.RunFilter) (int, error)
}

// StageLister возвращает записи стадий run (реализует repo.StageRepo).
type StageLister interface {
	ListByRunID(ctx context.Context, runID uuid.UUID) ([]domain.StageRecord, error)
}

// RunPublisher уведомляет orchestrator о новом run (реализует mq.Publisher).
type RunPublisher interface {
	PublishRunPending(ctx context.Context, runID uuid.UUID) error
}

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	runs      RunStore
	stages    StageLister
	publisher RunPublisher
	logger    *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Runs   RunStore
	Stages StageLister

	// Publisher может быть nil: orchestrator подберёт run через polling.
	Publisher RunPublisher

	Logger *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		runs:      cfg.Runs,
		stages:    cfg.Stages,
		publisher: cfg.Publisher,
		logger:    logger,
	}
}
