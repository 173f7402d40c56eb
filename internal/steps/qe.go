package steps

import (
	"github.com/shaiso/supercon/internal/domain"
	"github.com/shaiso/supercon/internal/engine"
	"github.com/shaiso/supercon/internal/namelist"
)

// Имена файлов стадий.
const (
	RelaxInput  = "arelax.in"
	RelaxOutput = "relax.out"

	SCFInput  = "ascf_init.in"
	SCFOutput = "scf_init.out"

	PhononInput  = "aph.in"
	PhononOutput = "ph.out"

	ForceConstantInput  = "aqr.in"
	ForceConstantOutput = "q2r.out"

	InterpolationInput  = "amatdyn.in"
	InterpolationOutput = "matdyn.out"
)

// RelaxStep — релаксация исходной структуры (pw.x).
type RelaxStep struct{}

// NewRelaxStep создаёт RelaxStep.
func NewRelaxStep() *RelaxStep { return &RelaxStep{} }

// Stage возвращает StageRelax.
func (s *RelaxStep) Stage() domain.Stage { return domain.StageRelax }

// Job строит задание relax. Давление попадает в &cell только если задано.
func (s *RelaxStep) Job(req *Request) (*domain.Job, error) {
	params, err := engine.NewParams(req.Structure, req.PseudoDir, req.Spec.RelaxMode)
	if err != nil {
		return nil, err
	}

	cfg, err := engine.BuildRelaxConfig(params, req.Spec.Pressure)
	if err != nil {
		return nil, err
	}

	return pwJob(req, domain.StageRelax, "relax", cfg, RelaxInput, RelaxOutput, engine.RelaxPrefix)
}

// SCFStep — SCF на релаксированной структуре (pw.x).
type SCFStep struct{}

// NewSCFStep создаёт SCFStep.
func NewSCFStep() *SCFStep { return &SCFStep{} }

// Stage возвращает StageSCF.
func (s *SCFStep) Stage() domain.Stage { return domain.StageSCF }

// Job строит задание scf.
func (s *SCFStep) Job(req *Request) (*domain.Job, error) {
	params, err := engine.NewParams(req.Structure, req.PseudoDir, req.Spec.RelaxMode)
	if err != nil {
		return nil, err
	}

	return pwJob(req, domain.StageSCF, "scf_init", engine.BuildScfConfig(params), SCFInput, SCFOutput, engine.SCFPrefix)
}

// PhononStep — DFPT и electron-phonon (ph.x).
// k-сетка не передаётся: ph.x читает состояние SCF с диска.
type PhononStep struct{}

// NewPhononStep создаёт PhononStep.
func NewPhononStep() *PhononStep { return &PhononStep{} }

// Stage возвращает StagePhonon.
func (s *PhononStep) Stage() domain.Stage { return domain.StagePhonon }

// Job строит задание ph.x. nq1..nq3 — первая тройка q-сетки.
func (s *PhononStep) Job(req *Request) (*domain.Job, error) {
	cfg, err := engine.BuildPhononConfig(req.Spec.QPoints)
	if err != nil {
		return nil, err
	}

	cmd, err := engine.CommandVariant(req.Spec.EngineCommand, domain.BinaryPH)
	if err != nil {
		return nil, err
	}

	return &domain.Job{
		Stage:      domain.StagePhonon,
		Name:       "ph",
		Binary:     domain.BinaryPH,
		Command:    cmd,
		Structure:  req.Structure,
		Config:     cfg,
		InputFile:  PhononInput,
		OutputFile: PhononOutput,
		Artifacts:  []string{engine.FilDyn + "0"},
	}, nil
}

// ForceConstantStep — перевод динамических матриц в real-space (q2r.x).
type ForceConstantStep struct{}

// NewForceConstantStep создаёт ForceConstantStep.
func NewForceConstantStep() *ForceConstantStep { return &ForceConstantStep{} }

// Stage возвращает StageForceConstants.
func (s *ForceConstantStep) Stage() domain.Stage { return domain.StageForceConstants }

// Job строит задание q2r.x.
func (s *ForceConstantStep) Job(req *Request) (*domain.Job, error) {
	cmd, err := engine.CommandVariant(req.Spec.EngineCommand, domain.BinaryQ2R)
	if err != nil {
		return nil, err
	}

	return &domain.Job{
		Stage:      domain.StageForceConstants,
		Name:       "qr",
		Binary:     domain.BinaryQ2R,
		Command:    cmd,
		Structure:  req.Structure,
		Config:     engine.BuildForceConstantConfig(),
		InputFile:  ForceConstantInput,
		OutputFile: ForceConstantOutput,
		Artifacts:  []string{engine.FlFrc},
	}, nil
}

// InterpolationStep — интерполяция частот и фононная DOS (matdyn.x).
// matdyn.x с la2F пишет итоговый файл lambda.
type InterpolationStep struct{}

// NewInterpolationStep создаёт InterpolationStep.
func NewInterpolationStep() *InterpolationStep { return &InterpolationStep{} }

// Stage возвращает StageInterpolation.
func (s *InterpolationStep) Stage() domain.Stage { return domain.StageInterpolation }

// Job строит задание matdyn.x. nk1..nk3 — первая тройка k-сетки.
func (s *InterpolationStep) Job(req *Request) (*domain.Job, error) {
	cfg, err := engine.BuildInterpolationConfig(req.Spec.KPoints)
	if err != nil {
		return nil, err
	}

	cmd, err := engine.CommandVariant(req.Spec.EngineCommand, domain.BinaryMatdyn)
	if err != nil {
		return nil, err
	}

	return &domain.Job{
		Stage:      domain.StageInterpolation,
		Name:       "matdyn",
		Binary:     domain.BinaryMatdyn,
		Command:    cmd,
		Structure:  req.Structure,
		Config:     cfg,
		InputFile:  InterpolationInput,
		OutputFile: InterpolationOutput,
		Artifacts:  []string{engine.CouplingFile},
	}, nil
}

func pwJob(req *Request, stage domain.Stage, name string, cfg namelist.Config, input, output, prefix string) (*domain.Job, error) {
	cmd, err := engine.CommandVariant(req.Spec.EngineCommand, domain.BinaryPW)
	if err != nil {
		return nil, err
	}

	kp := req.Spec.KPoints.Clone()
	xml := prefix + ".xml"

	return &domain.Job{
		Stage:      stage,
		Name:       name,
		Binary:     domain.BinaryPW,
		Command:    cmd,
		Structure:  req.Structure,
		Config:     cfg,
		KPoints:    &kp,
		InputFile:  input,
		OutputFile: output,
		XMLFile:    xml,
		Artifacts:  []string{xml},
	}, nil
}
