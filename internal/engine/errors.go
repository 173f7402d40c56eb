package engine

import "errors"

// ErrConfig — общий sentinel для всех ошибок построения конфигурации.
// errors.Is(err, ErrConfig) истинно для любой *ConfigError.
var ErrConfig = errors.New("invalid stage configuration")

// Ошибки построения конфигурации стадий.
var (
	// ErrEmptyStructure — структура не содержит атомов.
	ErrEmptyStructure = errors.New("structure has no atoms")

	// ErrMissingPseudoDir — не задана директория псевдопотенциалов.
	ErrMissingPseudoDir = errors.New("pseudopotential directory is not set")

	// ErrInvalidRelaxMode — режим релаксации не relax и не vc-relax.
	ErrInvalidRelaxMode = errors.New("invalid relax mode")

	// ErrUnsupportedPressure — давление неподдерживаемого типа.
	ErrUnsupportedPressure = errors.New("unsupported pressure type")

	// ErrEmptyMesh — сетка не содержит ни одной тройки.
	ErrEmptyMesh = errors.New("mesh has no triples")

	// ErrUnknownElement — нет атомной массы для элемента.
	ErrUnknownElement = errors.New("unknown element")

	// ErrEngineCommand — команда движка не ссылается на pw.x.
	ErrEngineCommand = errors.New("engine command does not reference pw.x")

	// ErrMissingKPoints — pw.x задание без k-сетки.
	ErrMissingKPoints = errors.New("pw.x job has no k-points")
)

// ConfigError — ошибка построения конфигурации с контекстом.
type ConfigError struct {
	Section string // секция namelist или часть входных данных
	Field   string // поле, вызвавшее ошибку
	Message string // описание ошибки
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ConfigError) Error() string {
	switch {
	case e.Section != "" && e.Field != "":
		return "config " + e.Section + "." + e.Field + ": " + e.Message
	case e.Field != "":
		return "config " + e.Field + ": " + e.Message
	default:
		return "config: " + e.Message
	}
}

// Unwrap возвращает базовую ошибку.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is позволяет проверять errors.Is(err, ErrConfig).
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// NewConfigError создаёт новую ошибку конфигурации.
func NewConfigError(section, field, message string, err error) *ConfigError {
	return &ConfigError{
		Section: section,
		Field:   field,
		Message: message,
		Err:     err,
	}
}
