package orchestrator

import (
	"github.com/shaiso/supercon/internal/domain"
)

// Handoff — данные, которые стадии передают друг другу.
type Handoff struct {
	// Structure — релаксированная структура (после relax).
	Structure *domain.Structure

	// XMLPath — structured output релаксации.
	XMLPath string

	// CouplingPath — файл lambda (после interpolation).
	CouplingPath string

	// Records — разобранные записи lambda (после parse).
	Records []domain.CouplingRecord

	// Results — значения Tc (после evaluate).
	Results []domain.TcResult
}

// State — состояние одного выполнения workflow.
//
// State принадлежит одному вызову RunWorkflow и не разделяется
// между горутинами.
type State struct {
	Spec    domain.WorkflowSpec
	WorkDir string

	// Structure — текущая структура: исходная до relax, затем релаксированная.
	Structure domain.Structure

	// Jobs — результаты запусков движка в порядке выполнения.
	Jobs []*domain.JobResult

	Handoff Handoff
}

// NewState создаёт State для spec в директории workDir.
func NewState(spec domain.WorkflowSpec, workDir string) *State {
	return &State{
		Spec:      spec,
		WorkDir:   workDir,
		Structure: spec.Atoms,
	}
}

// Record добавляет результат запуска движка.
func (s *State) Record(res *domain.JobResult) {
	if res != nil {
		s.Jobs = append(s.Jobs, res)
	}
}

// Relaxed фиксирует релаксированную структуру для следующих стадий.
func (s *State) Relaxed(structure domain.Structure, xmlPath string) {
	s.Structure = structure
	s.Handoff.Structure = &structure
	s.Handoff.XMLPath = xmlPath
}
