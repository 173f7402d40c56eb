package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/supercon/internal/domain"
)

const runColumns = `id, status, spec, work_dir, results, failed_stage,
		       started_at, finished_at, error, created_at`

// RunRepo — репозиторий для работы с runs.
type RunRepo struct {
	pool *pgxpool.Pool
}

// NewRunRepo создаёт новый RunRepo.
func NewRunRepo(pool *pgxpool.Pool) *RunRepo {
	return &RunRepo{pool: pool}
}

// Create создаёт новый run.
func (r *RunRepo) Create(ctx context.Context, run *domain.Run) error {
	specJSON, err := json.Marshal(run.Spec)
	if err != nil {
		return fmt.Errorf("marshal spec: %w", err)
	}

	query := `
		INSERT INTO runs (id, status, spec, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err = r.pool.Exec(ctx, query, run.ID, run.Status, specJSON, run.CreatedAt)
	if err != nil {
		return insertError("run", err)
	}
	return nil
}

// GetByID возвращает run по ID.
func (r *RunRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = $1`
	return scanRun(r.pool.QueryRow(ctx, query, id))
}

// List возвращает список runs с фильтрацией, новые первыми.
func (r *RunRepo) List(ctx context.Context, filter RunFilter) ([]domain.Run, error) {
	query := `
		SELECT ` + runColumns + `
		FROM runs
		WHERE ($1::text IS NULL OR status = $1::run_status)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query,
		nullString(string(filter.Status)),
		filter.Limit,
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return collectRuns(rows)
}

// Count возвращает количество runs, подходящих под фильтр.
func (r *RunRepo) Count(ctx context.Context, filter RunFilter) (int, error) {
	query := `
		SELECT count(*) FROM runs
		WHERE ($1::text IS NULL OR status = $1::run_status)
	`
	var n int
	if err := r.pool.QueryRow(ctx, query, nullString(string(filter.Status))).Scan(&n); err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return n, nil
}

// ListPending возвращает runs в статусе PENDING, старые первыми.
func (r *RunRepo) ListPending(ctx context.Context, limit int) ([]domain.Run, error) {
	query := `
		SELECT ` + runColumns + `
		FROM runs
		WHERE status = 'PENDING'
		ORDER BY created_at ASC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending runs: %w", err)
	}
	return collectRuns(rows)
}

// MarkRunning атомарно переводит PENDING run в RUNNING.
//
// Два оркестратора не могут забрать один run: второй получит
// ErrInvalidState. Для несуществующего run возвращается ErrNotFound.
func (r *RunRepo) MarkRunning(ctx context.Context, id uuid.UUID, workDir string) (*domain.Run, error) {
	query := `
		UPDATE runs
		SET status = 'RUNNING', work_dir = $2, started_at = $3
		WHERE id = $1 AND status = 'PENDING'
		RETURNING ` + runColumns
	run, err := scanRun(r.pool.QueryRow(ctx, query, id, workDir, time.Now()))
	if !errors.Is(err, ErrNotFound) {
		return run, err
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM runs WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check run: %w", err)
	}
	if exists {
		return nil, ErrInvalidState
	}
	return nil, ErrNotFound
}

// Update обновляет run.
func (r *RunRepo) Update(ctx context.Context, run *domain.Run) error {
	resultsJSON, err := marshalResults(run.Results)
	if err != nil {
		return err
	}

	query := `
		UPDATE runs
		SET status = $2, work_dir = $3, results = $4, failed_stage = $5,
		    started_at = $6, finished_at = $7, error = $8
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		run.ID,
		run.Status,
		nullString(run.WorkDir),
		resultsJSON,
		nullString(string(run.FailedStage)),
		run.StartedAt,
		run.FinishedAt,
		nullString(run.Error),
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Helpers ---

// RunFilter — параметры фильтрации runs.
type RunFilter struct {
	Status domain.RunStatus
	Limit  int
	Offset int
}

// rowScanner — общий интерфейс pgx.Row и pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRun сканирует одну строку в Run.
func scanRun(row rowScanner) (*domain.Run, error) {
	var run domain.Run
	var specJSON, resultsJSON []byte
	var workDir, failedStage, runError *string

	err := row.Scan(
		&run.ID,
		&run.Status,
		&specJSON,
		&workDir,
		&resultsJSON,
		&failedStage,
		&run.StartedAt,
		&run.FinishedAt,
		&runError,
		&run.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}

	if err := json.Unmarshal(specJSON, &run.Spec); err != nil {
		return nil, fmt.Errorf("unmarshal spec: %w", err)
	}
	if resultsJSON != nil {
		if err := json.Unmarshal(resultsJSON, &run.Results); err != nil {
			return nil, fmt.Errorf("unmarshal results: %w", err)
		}
	}

	run.WorkDir = deref(workDir)
	run.FailedStage = domain.Stage(deref(failedStage))
	run.Error = deref(runError)

	return &run, nil
}

// collectRuns сканирует все строки и закрывает rows.
func collectRuns(rows pgx.Rows) ([]domain.Run, error) {
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// marshalResults возвращает nil для пустых результатов (NULL в БД).
func marshalResults(results []domain.TcResult) ([]byte, error) {
	if results == nil {
		return nil, nil
	}
	b, err := json.Marshal(results)
	if err != nil {
		return nil, fmt.Errorf("marshal results: %w", err)
	}
	return b, nil
}

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// deref возвращает "" для NULL.
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
