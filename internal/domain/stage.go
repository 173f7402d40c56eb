package domain

import (
	"time"

	"github.com/google/uuid"
)

// Stage — имя стадии workflow.
type Stage string

// Стадии в порядке выполнения.
const (
	// StageRelax — релаксация структуры (pw.x, vc-relax).
	StageRelax Stage = "relax"

	// StageSCF — самосогласованный расчёт на релаксированной структуре (pw.x).
	StageSCF Stage = "scf"

	// StagePhonon — DFPT расчёт фононов и electron-phonon (ph.x).
	StagePhonon Stage = "phonon"

	// StageForceConstants — перевод динамических матриц в real-space (q2r.x).
	StageForceConstants Stage = "force-constant"

	// StageInterpolation — интерполяция и фононная DOS (matdyn.x).
	StageInterpolation Stage = "interpolation"

	// StageParse — разбор файла lambda.
	StageParse Stage = "parse"

	// StageEvaluate — вычисление Tc по формуле Allen-Dynes.
	StageEvaluate Stage = "evaluate"
)

// Stages возвращает все стадии в порядке выполнения.
func Stages() []Stage {
	return []Stage{
		StageRelax,
		StageSCF,
		StagePhonon,
		StageForceConstants,
		StageInterpolation,
		StageParse,
		StageEvaluate,
	}
}

// String возвращает строковое представление Stage.
func (s Stage) String() string {
	return string(s)
}

// StageRecord — запись о выполнении одной стадии внутри run.
//
// Создаётся Orchestrator'ом при запуске стадии и обновляется
// по её завершению. Хранится в БД для просмотра через API.
type StageRecord struct {
	// ID — уникальный идентификатор записи.
	ID uuid.UUID `json:"id"`

	// RunID — ссылка на родительский run.
	RunID uuid.UUID `json:"run_id"`

	// Stage — имя стадии.
	Stage Stage `json:"stage"`

	// Status — текущий статус стадии.
	Status StageStatus `json:"status"`

	// Command — команда движка (вариант бинарника), пусто для parse/evaluate.
	Command string `json:"command,omitempty"`

	// InputFile — имя входного файла стадии.
	InputFile string `json:"input_file,omitempty"`

	// OutputFile — имя лога стадии.
	OutputFile string `json:"output_file,omitempty"`

	// StartedAt — время начала выполнения.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt — время завершения.
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// Error — текст ошибки при неудаче.
	Error string `json:"error,omitempty"`

	// CreatedAt — время создания записи.
	CreatedAt time.Time `json:"created_at"`
}

// NewStageRecord создаёт запись для стадии в статусе RUNNING.
func NewStageRecord(runID uuid.UUID, stage Stage, job *Job) *StageRecord {
	now := time.Now()
	rec := &StageRecord{
		ID:        uuid.New(),
		RunID:     runID,
		Stage:     stage,
		Status:    StageStatusRunning,
		StartedAt: &now,
		CreatedAt: now,
	}
	if job != nil {
		rec.Command = job.Command
		rec.InputFile = job.InputFile
		rec.OutputFile = job.OutputFile
	}
	return rec
}

// Duration возвращает продолжительность выполнения.
func (r *StageRecord) Duration() time.Duration {
	if r.StartedAt == nil || r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(*r.StartedAt)
}

// MarkSucceeded переводит стадию в статус SUCCEEDED.
func (r *StageRecord) MarkSucceeded() {
	now := time.Now()
	r.Status = StageStatusSucceeded
	r.FinishedAt = &now
}

// MarkFailed переводит стадию в статус FAILED с ошибкой.
func (r *StageRecord) MarkFailed(err string) {
	now := time.Now()
	r.Status = StageStatusFailed
	r.FinishedAt = &now
	r.Error = err
}
