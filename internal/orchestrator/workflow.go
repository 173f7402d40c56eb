package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shaiso/supercon/internal/domain"
	"github.com/shaiso/supercon/internal/elph"
	"github.com/shaiso/supercon/internal/engine"
	"github.com/shaiso/supercon/internal/steps"
	"github.com/shaiso/supercon/internal/telemetry"
)

// RunWorkflow выполняет полный workflow в директории workDir:
//
//	relax → scf → phonon → force-constant → interpolation → parse → evaluate
//
// Возвращает Tc для каждого уширения из файла lambda. Пустой файл
// lambda даёт пустой результат без ошибки. Ошибка любой стадии
// возвращается как *StageError, следующие стадии не запускаются.
// Рабочая директория не очищается.
func (o *Orchestrator) RunWorkflow(ctx context.Context, spec domain.WorkflowSpec, workDir string) ([]domain.TcResult, error) {
	state, err := o.execute(ctx, spec, workDir, o.logger, nil)
	if err != nil {
		return nil, err
	}
	return state.Handoff.Results, nil
}

// execute выполняет workflow и возвращает итоговое состояние.
// extra получает уведомления вместе с Config.Observer.
func (o *Orchestrator) execute(ctx context.Context, spec domain.WorkflowSpec, workDir string, logger *slog.Logger, extra Observer) (*State, error) {
	spec = spec.WithDefaults()
	if err := engine.ValidateSpec(spec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidWorkflow, err)
	}

	if workDir == "" {
		return nil, fmt.Errorf("%w: empty work directory", ErrInvalidWorkflow)
	}
	dir, err := filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("resolve work dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}

	release, err := o.acquireDir(dir)
	if err != nil {
		return nil, err
	}
	defer release()

	logger = telemetry.WithWorkDir(logger, dir)
	ctx = telemetry.WithLogger(ctx, logger)
	obs := Observers{o.observer, extra}
	state := NewState(spec, dir)

	logger.Info("workflow started",
		"atoms", spec.Atoms.NumAtoms(),
		"relax_mode", spec.RelaxMode,
		"stages", o.pipeline.Len(),
	)
	started := time.Now()

	for _, step := range o.pipeline.Steps() {
		if err := o.runStep(ctx, state, step, obs, logger); err != nil {
			return state, err
		}
	}

	if err := o.runLocal(ctx, domain.StageParse, obs, logger, func() error {
		return o.parseCoupling(state, logger)
	}); err != nil {
		return state, err
	}

	if err := o.runLocal(ctx, domain.StageEvaluate, obs, logger, func() error {
		results, err := elph.Evaluate(state.Handoff.Records, o.mu)
		if err != nil {
			return err
		}
		state.Handoff.Results = results
		return nil
	}); err != nil {
		return state, err
	}

	logger.Info("workflow finished",
		"results", len(state.Handoff.Results),
		"duration", time.Since(started),
	)

	return state, nil
}

// runStep строит задание стадии, запускает движок и передаёт
// результат следующим стадиям.
func (o *Orchestrator) runStep(ctx context.Context, state *State, step steps.Step, obs Observer, logger *slog.Logger) error {
	stage := step.Stage()
	log := telemetry.WithStage(logger, string(stage))

	if err := ctx.Err(); err != nil {
		return &StageError{Stage: stage, Err: err}
	}

	started := time.Now()
	job, err := step.Job(steps.NewRequest(state.Spec, state.Structure, o.pseudoDir))
	if err != nil {
		ev := domain.StageEvent{Stage: stage}
		obs.StageStarted(ctx, ev)
		ev.Err = err
		obs.StageFinished(ctx, ev)
		log.Error("failed to build stage job", "error", err)
		return &StageError{Stage: stage, Err: err}
	}

	obs.StageStarted(ctx, domain.StageEvent{Stage: stage, Job: job})
	log.Info("stage started", "command", job.Command, "input", job.InputFile)

	res, err := o.executor.Execute(ctx, state.WorkDir, job)
	if err == nil && res == nil {
		res = &domain.JobResult{Stage: stage, Name: job.Name}
	}

	if err == nil && stage == domain.StageRelax {
		err = o.readRelaxed(state, job, res)
	}

	ev := domain.StageEvent{
		Stage:    stage,
		Job:      job,
		Result:   res,
		Duration: time.Since(started),
		Err:      err,
	}
	obs.StageFinished(ctx, ev)

	if err != nil {
		log.Error("stage failed", "error", err, "duration", ev.Duration)
		return &StageError{Stage: stage, Err: err}
	}

	state.Record(res)
	log.Info("stage finished", "duration", ev.Duration)
	return nil
}

// readRelaxed читает структуру после relax; дальше её используют все стадии.
func (o *Orchestrator) readRelaxed(state *State, job *domain.Job, res *domain.JobResult) error {
	path := res.XMLPath
	if path == "" {
		path = filepath.Join(state.WorkDir, job.XMLFile)
	}

	structure, err := o.reader.ReadStructure(path)
	if err != nil {
		return fmt.Errorf("read relaxed structure: %w", err)
	}

	state.Relaxed(structure, path)
	return nil
}

// parseCoupling разбирает файл lambda в рабочей директории.
func (o *Orchestrator) parseCoupling(state *State, logger *slog.Logger) error {
	path := filepath.Join(state.WorkDir, engine.CouplingFile)
	state.Handoff.CouplingPath = path

	records, err := o.parse(path)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		logger.Warn("coupling file has no records", "path", path)
	}

	state.Handoff.Records = records
	return nil
}

// runLocal выполняет стадию без запуска движка (parse, evaluate).
func (o *Orchestrator) runLocal(ctx context.Context, stage domain.Stage, obs Observer, logger *slog.Logger, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return &StageError{Stage: stage, Err: err}
	}

	started := time.Now()
	obs.StageStarted(ctx, domain.StageEvent{Stage: stage})

	err := fn()

	obs.StageFinished(ctx, domain.StageEvent{
		Stage:    stage,
		Duration: time.Since(started),
		Err:      err,
	})

	if err != nil {
		telemetry.WithStage(logger, string(stage)).Error("stage failed", "error", err)
		return &StageError{Stage: stage, Err: err}
	}
	return nil
}

// acquireDir резервирует рабочую директорию за одним workflow.
func (o *Orchestrator) acquireDir(dir string) (func(), error) {
	o.dirMu.Lock()
	defer o.dirMu.Unlock()

	if _, busy := o.dirs[dir]; busy {
		return nil, fmt.Errorf("%w: %s", ErrWorkDirInUse, dir)
	}
	o.dirs[dir] = struct{}{}

	return func() {
		o.dirMu.Lock()
		defer o.dirMu.Unlock()
		delete(o.dirs, dir)
	}, nil
}

// IsInvalidWorkflow сообщает, что err вызван невалидным WorkflowSpec.
func IsInvalidWorkflow(err error) bool {
	return errors.Is(err, ErrInvalidWorkflow)
}
