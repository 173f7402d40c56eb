package steps

import (
	"errors"

	"github.com/shaiso/supercon/internal/domain"
)

// Ошибки шагов.
var (
	// ErrStepNotFound — стадия не найдена в pipeline.
	ErrStepNotFound = errors.New("step not found")

	// ErrDuplicateStage — две реализации одной стадии в pipeline.
	ErrDuplicateStage = errors.New("duplicate stage in pipeline")
)

// Step — одна стадия движка.
//
// Step ничего не запускает: он только строит воспроизводимое описание
// задания из входных данных. Один и тот же Request всегда даёт один и
// тот же Job.
type Step interface {
	// Stage возвращает стадию, которую описывает шаг.
	Stage() domain.Stage

	// Job строит задание для стадии.
	Job(req *Request) (*domain.Job, error)
}

// Request — входные данные для построения задания.
type Request struct {
	// Spec — определение workflow (сетки, команда, режим, давление).
	Spec domain.WorkflowSpec

	// Structure — текущая структура: исходная для relax,
	// релаксированная для всех следующих стадий.
	Structure domain.Structure

	// PseudoDir — директория псевдопотенциалов.
	PseudoDir string
}

// NewRequest создаёт новый Request.
func NewRequest(spec domain.WorkflowSpec, structure domain.Structure, pseudoDir string) *Request {
	return &Request{
		Spec:      spec,
		Structure: structure,
		PseudoDir: pseudoDir,
	}
}
