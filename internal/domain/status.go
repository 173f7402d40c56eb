package domain

// RunStatus — статус выполнения run.
//
// Жизненный цикл:
//
//	PENDING → RUNNING → SUCCEEDED
//	                  ↘ FAILED
//
// Отдельного статуса отмены нет: остановка сервиса прерывает
// выполняемую стадию, и run завершается FAILED.
type RunStatus string

const (
	// RunStatusPending — run создан, но ещё не начал выполняться.
	RunStatusPending RunStatus = "PENDING"

	// RunStatusRunning — run в процессе выполнения.
	RunStatusRunning RunStatus = "RUNNING"

	// RunStatusSucceeded — все стадии завершены, Tc посчитан.
	RunStatusSucceeded RunStatus = "SUCCEEDED"

	// RunStatusFailed — одна из стадий упала, остальные не запускались.
	RunStatusFailed RunStatus = "FAILED"
)

// IsTerminal возвращает true, если статус финальный (run завершён).
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusSucceeded, RunStatusFailed:
		return true
	default:
		return false
	}
}

// StageStatus — статус выполнения одной стадии.
//
// Жизненный цикл:
//
//	RUNNING → SUCCEEDED
//	        ↘ FAILED
type StageStatus string

const (
	// StageStatusRunning — процесс движка запущен.
	StageStatusRunning StageStatus = "RUNNING"

	// StageStatusSucceeded — стадия завершилась успешно.
	StageStatusSucceeded StageStatus = "SUCCEEDED"

	// StageStatusFailed — стадия завершилась с ошибкой.
	StageStatusFailed StageStatus = "FAILED"
)

// IsTerminal возвращает true, если статус финальный.
func (s StageStatus) IsTerminal() bool {
	return s == StageStatusSucceeded || s == StageStatusFailed
}
