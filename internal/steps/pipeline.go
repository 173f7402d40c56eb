package steps

import (
	"fmt"

	"github.com/shaiso/supercon/internal/domain"
)

// Pipeline — упорядоченный набор стадий движка.
//
// Порядок фиксирован: каждая стадия читает файлы, записанные
// предыдущей, поэтому стадии выполняются строго одна за другой.
type Pipeline struct {
	steps []Step
	index map[domain.Stage]int
}

// NewPipeline создаёт pipeline из шагов в порядке выполнения.
// Возвращает ErrDuplicateStage, если стадия встречается дважды.
func NewPipeline(steps ...Step) (*Pipeline, error) {
	p := &Pipeline{
		steps: make([]Step, 0, len(steps)),
		index: make(map[domain.Stage]int, len(steps)),
	}

	for _, step := range steps {
		stage := step.Stage()
		if _, exists := p.index[stage]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStage, stage)
		}
		p.index[stage] = len(p.steps)
		p.steps = append(p.steps, step)
	}

	return p, nil
}

// DefaultPipeline создаёт pipeline relax → scf → phonon → force-constant → interpolation.
func DefaultPipeline() *Pipeline {
	p, err := NewPipeline(
		NewRelaxStep(),
		NewSCFStep(),
		NewPhononStep(),
		NewForceConstantStep(),
		NewInterpolationStep(),
	)
	if err != nil {
		panic(err)
	}
	return p
}

// Steps возвращает шаги в порядке выполнения.
func (p *Pipeline) Steps() []Step {
	out := make([]Step, len(p.steps))
	copy(out, p.steps)
	return out
}

// Get возвращает шаг стадии.
// Возвращает ErrStepNotFound, если стадии нет в pipeline.
func (p *Pipeline) Get(stage domain.Stage) (Step, error) {
	idx, exists := p.index[stage]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrStepNotFound, stage)
	}
	return p.steps[idx], nil
}

// Has проверяет, есть ли стадия в pipeline.
func (p *Pipeline) Has(stage domain.Stage) bool {
	_, exists := p.index[stage]
	return exists
}

// Stages возвращает стадии в порядке выполнения.
func (p *Pipeline) Stages() []domain.Stage {
	stages := make([]domain.Stage, len(p.steps))
	for i, step := range p.steps {
		stages[i] = step.Stage()
	}
	return stages
}

// Len возвращает количество стадий.
func (p *Pipeline) Len() int {
	return len(p.steps)
}

// Jobs строит задания всех стадий для одной структуры.
// Используется для предпросмотра входных файлов без запуска движка.
func (p *Pipeline) Jobs(req *Request) ([]*domain.Job, error) {
	jobs := make([]*domain.Job, 0, len(p.steps))
	for _, step := range p.steps {
		job, err := step.Job(req)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Stage(), err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
