package domain

import (
	"time"

	"github.com/google/uuid"
)

// Run — экземпляр выполнения workflow расчёта Tc.
//
// Run создаётся когда пользователь отправляет WorkflowSpec через API/CLI.
// Каждый run выполняется в своей рабочей директории: стадии общаются
// через файлы, поэтому два run в одной директории недопустимы.
type Run struct {
	// ID — уникальный идентификатор run.
	ID uuid.UUID `json:"id"`

	// Status — текущий статус выполнения.
	Status RunStatus `json:"status"`

	// Spec — определение workflow (структура, сетки, команда движка, давление).
	Spec WorkflowSpec `json:"spec"`

	// WorkDir — рабочая директория run. Заполняется при старте.
	WorkDir string `json:"work_dir,omitempty"`

	// Results — значения Tc по каждому уширению. Заполняется при SUCCEEDED.
	Results []TcResult `json:"results,omitempty"`

	// FailedStage — стадия, на которой run упал.
	FailedStage Stage `json:"failed_stage,omitempty"`

	// StartedAt — время начала выполнения (когда статус стал RUNNING).
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt — время завершения (успешного или с ошибкой).
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// Error — текст ошибки, если run завершился с FAILED.
	Error string `json:"error,omitempty"`

	// CreatedAt — время создания run.
	CreatedAt time.Time `json:"created_at"`
}

// NewRun создаёт run в статусе PENDING.
func NewRun(spec WorkflowSpec) *Run {
	return &Run{
		ID:        uuid.New(),
		Status:    RunStatusPending,
		Spec:      spec,
		CreatedAt: time.Now(),
	}
}

// Duration возвращает продолжительность выполнения.
// Возвращает 0, если run ещё не завершён.
func (r *Run) Duration() time.Duration {
	if r.StartedAt == nil || r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(*r.StartedAt)
}

// MarkRunning переводит run в статус RUNNING.
func (r *Run) MarkRunning(workDir string) {
	now := time.Now()
	r.Status = RunStatusRunning
	r.WorkDir = workDir
	r.StartedAt = &now
}

// MarkSucceeded переводит run в статус SUCCEEDED с результатами.
func (r *Run) MarkSucceeded(results []TcResult) {
	now := time.Now()
	r.Status = RunStatusSucceeded
	r.FinishedAt = &now
	r.Results = results
}

// MarkFailed переводит run в статус FAILED с указанием стадии.
func (r *Run) MarkFailed(stage Stage, err string) {
	now := time.Now()
	r.Status = RunStatusFailed
	r.FinishedAt = &now
	r.FailedStage = stage
	r.Error = err
}
