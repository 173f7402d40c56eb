package repo

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Общие ошибки репозиториев.
var (
	// ErrNotFound — запись не найдена в БД.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists — нарушено ограничение уникальности
	// (повторный id run или повторная стадия в run).
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidState — run не в том статусе, который требует операция.
	ErrInvalidState = errors.New("invalid state")
)

// uniqueViolation — SQLSTATE нарушения уникальности.
const uniqueViolation = "23505"

// insertError оборачивает ошибку INSERT; нарушение уникальности
// превращается в ErrAlreadyExists.
func insertError(what string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("insert %s: %w: %s", what, ErrAlreadyExists, pgErr.ConstraintName)
	}
	return fmt.Errorf("insert %s: %w", what, err)
}
