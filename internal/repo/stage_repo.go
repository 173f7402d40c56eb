package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/supercon/internal/domain"
)

// StageRepo — репозиторий записей о стадиях runs.
type StageRepo struct {
	pool *pgxpool.Pool
}

// NewStageRepo создаёт новый StageRepo.
func NewStageRepo(pool *pgxpool.Pool) *StageRepo {
	return &StageRepo{pool: pool}
}

// Create создаёт запись стадии.
func (r *StageRepo) Create(ctx context.Context, rec *domain.StageRecord) error {
	query := `
		INSERT INTO run_stages (id, run_id, stage, status, command, input_file, output_file, started_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		rec.ID,
		rec.RunID,
		rec.Stage,
		rec.Status,
		nullString(rec.Command),
		nullString(rec.InputFile),
		nullString(rec.OutputFile),
		rec.StartedAt,
		rec.CreatedAt,
	)
	if err != nil {
		return insertError("stage", err)
	}
	return nil
}

// Update обновляет статус, время завершения и ошибку стадии.
func (r *StageRepo) Update(ctx context.Context, rec *domain.StageRecord) error {
	query := `
		UPDATE run_stages
		SET status = $2, finished_at = $3, error = $4
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		rec.ID,
		rec.Status,
		rec.FinishedAt,
		nullString(rec.Error),
	)
	if err != nil {
		return fmt.Errorf("update stage: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByRunID возвращает стадии run в порядке выполнения.
func (r *StageRepo) ListByRunID(ctx context.Context, runID uuid.UUID) ([]domain.StageRecord, error) {
	query := `
		SELECT id, run_id, stage, status, command, input_file, output_file,
		       started_at, finished_at, error, created_at
		FROM run_stages
		WHERE run_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("list stages by run_id: %w", err)
	}
	defer rows.Close()

	var records []domain.StageRecord
	for rows.Next() {
		var rec domain.StageRecord
		var command, input, output, stageErr *string
		err := rows.Scan(
			&rec.ID,
			&rec.RunID,
			&rec.Stage,
			&rec.Status,
			&command,
			&input,
			&output,
			&rec.StartedAt,
			&rec.FinishedAt,
			&stageErr,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan stage: %w", err)
		}
		rec.Command = deref(command)
		rec.InputFile = deref(input)
		rec.OutputFile = deref(output)
		rec.Error = deref(stageErr)
		records = append(records, rec)
	}
	return records, rows.Err()
}
