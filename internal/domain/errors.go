package domain

import "errors"

// Ошибки доменной модели.
var (
	// ErrInvalidSpec — определение workflow не удалось разобрать.
	ErrInvalidSpec = errors.New("invalid workflow spec")
)
