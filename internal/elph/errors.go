package elph

import (
	"errors"
	"fmt"
)

var (
	// ErrParse — файл связи присутствует, но не читается.
	ErrParse = errors.New("coupling file parse failed")

	// ErrDomain — формула Allen-Dynes вне области определения.
	ErrDomain = errors.New("tc formula outside its domain")
)

// ParseError — ошибка разбора файла lambda.
type ParseError struct {
	Path string // путь к файлу, пусто для io.Reader
	Line int    // номер строки, 0 если ошибка не привязана к строке
	Err  error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ParseError) Error() string {
	where := e.Path
	if where == "" {
		where = "coupling data"
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse %s:%d: %v", where, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", where, e.Err)
}

// Unwrap возвращает базовую ошибку.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is позволяет проверять errors.Is(err, ErrParse).
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// DomainError — знаменатель показателя экспоненты неположителен.
type DomainError struct {
	Wlog        float64
	Lambda      float64
	Mu          float64
	Denominator float64
}

// Error реализует интерфейс error.
func (e *DomainError) Error() string {
	return fmt.Sprintf("tc undefined for lambda=%g mu=%g: denominator lambda*(1-0.062*mu)-mu = %g is not positive",
		e.Lambda, e.Mu, e.Denominator)
}

// Is позволяет проверять errors.Is(err, ErrDomain).
func (e *DomainError) Is(target error) bool {
	return target == ErrDomain
}
