package steps

import (
	"errors"
	"reflect"
	"testing"

	"github.com/shaiso/supercon/internal/domain"
	"github.com/shaiso/supercon/internal/engine"
)

func testRequest() *Request {
	pressure := 25.0
	spec := domain.WorkflowSpec{
		Atoms: domain.Structure{
			Lattice:  [3][3]float64{{3.3, 0, 0}, {0, 3.3, 0}, {0, 0, 3.3}},
			Elements: []string{"Nb"},
			Coords:   [][3]float64{{0, 0, 0}},
		},
		KPoints:       domain.KPoints{Meshes: [][3]int{{12, 10, 8}, {24, 24, 24}}},
		QPoints:       domain.KPoints{Meshes: [][3]int{{4, 3, 2}, {8, 8, 8}}},
		EngineCommand: "mpirun -np 8 pw.x",
		RelaxMode:     "vc-relax",
		Pressure:      &pressure,
	}
	return NewRequest(spec, spec.Atoms, "/opt/pseudo")
}

// Pipeline Tests

func TestDefaultPipeline_Order(t *testing.T) {
	p := DefaultPipeline()

	want := []domain.Stage{
		domain.StageRelax,
		domain.StageSCF,
		domain.StagePhonon,
		domain.StageForceConstants,
		domain.StageInterpolation,
	}
	if got := p.Stages(); !reflect.DeepEqual(got, want) {
		t.Errorf("Stages() = %v, want %v", got, want)
	}
	if p.Len() != 5 {
		t.Errorf("Len() = %d, want 5", p.Len())
	}
}

func TestPipeline_Get(t *testing.T) {
	p := DefaultPipeline()

	step, err := p.Get(domain.StagePhonon)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if step.Stage() != domain.StagePhonon {
		t.Errorf("Stage() = %s, want phonon", step.Stage())
	}

	// parse и evaluate не являются стадиями движка
	if _, err := p.Get(domain.StageParse); !errors.Is(err, ErrStepNotFound) {
		t.Errorf("Get(parse) error = %v, want ErrStepNotFound", err)
	}
	if p.Has(domain.StageEvaluate) {
		t.Error("Has(evaluate) = true")
	}
}

func TestNewPipeline_Duplicate(t *testing.T) {
	_, err := NewPipeline(NewRelaxStep(), NewSCFStep(), NewRelaxStep())
	if !errors.Is(err, ErrDuplicateStage) {
		t.Errorf("NewPipeline() error = %v, want ErrDuplicateStage", err)
	}
}

func TestPipeline_StepsIsCopy(t *testing.T) {
	p := DefaultPipeline()

	steps := p.Steps()
	steps[0] = NewInterpolationStep()

	if p.Stages()[0] != domain.StageRelax {
		t.Error("Steps() exposed internal slice")
	}
}

// Job Tests

func TestPipeline_Jobs(t *testing.T) {
	jobs, err := DefaultPipeline().Jobs(testRequest())
	if err != nil {
		t.Fatalf("Jobs() error = %v", err)
	}

	tests := []struct {
		stage   domain.Stage
		binary  domain.Binary
		command string
		input   string
		output  string
		hasKP   bool
	}{
		{domain.StageRelax, domain.BinaryPW, "mpirun -np 8 pw.x", "arelax.in", "relax.out", true},
		{domain.StageSCF, domain.BinaryPW, "mpirun -np 8 pw.x", "ascf_init.in", "scf_init.out", true},
		{domain.StagePhonon, domain.BinaryPH, "mpirun -np 8 ph.x", "aph.in", "ph.out", false},
		{domain.StageForceConstants, domain.BinaryQ2R, "mpirun -np 8 q2r.x", "aqr.in", "q2r.out", false},
		{domain.StageInterpolation, domain.BinaryMatdyn, "mpirun -np 8 matdyn.x", "amatdyn.in", "matdyn.out", false},
	}

	if len(jobs) != len(tests) {
		t.Fatalf("got %d jobs, want %d", len(jobs), len(tests))
	}

	for i, tt := range tests {
		job := jobs[i]
		t.Run(string(tt.stage), func(t *testing.T) {
			if job.Stage != tt.stage {
				t.Errorf("Stage = %s, want %s", job.Stage, tt.stage)
			}
			if job.Binary != tt.binary {
				t.Errorf("Binary = %s, want %s", job.Binary, tt.binary)
			}
			if job.Command != tt.command {
				t.Errorf("Command = %q, want %q", job.Command, tt.command)
			}
			if job.InputFile != tt.input || job.OutputFile != tt.output {
				t.Errorf("files = %s/%s, want %s/%s", job.InputFile, job.OutputFile, tt.input, tt.output)
			}
			if (job.KPoints != nil) != tt.hasKP {
				t.Errorf("KPoints present = %v, want %v", job.KPoints != nil, tt.hasKP)
			}
			if len(job.Artifacts) == 0 {
				t.Error("job declares no artifacts")
			}
		})
	}
}

func TestRelaxStep_Pressure(t *testing.T) {
	req := testRequest()

	job, err := NewRelaxStep().Job(req)
	if err != nil {
		t.Fatalf("Job() error = %v", err)
	}
	if v, ok := job.Config.Get("cell", "press"); !ok || v.String() != "25" {
		t.Errorf("press = %v (present %v), want 25", v, ok)
	}
	if job.XMLFile != "RELAX.xml" {
		t.Errorf("XMLFile = %q, want RELAX.xml", job.XMLFile)
	}

	req.Spec.Pressure = nil
	job, err = NewRelaxStep().Job(req)
	if err != nil {
		t.Fatalf("Job() error = %v", err)
	}
	if job.Config.Has("cell", "press") {
		t.Error("press present without pressure")
	}
}

func TestSCFStep_NoPressure(t *testing.T) {
	job, err := NewSCFStep().Job(testRequest())
	if err != nil {
		t.Fatalf("Job() error = %v", err)
	}
	for _, section := range job.Config.Sections() {
		if job.Config.Has(section, "press") {
			t.Errorf("scf config has press in &%s", section)
		}
	}
	if job.XMLFile != "QE.xml" {
		t.Errorf("XMLFile = %q, want QE.xml", job.XMLFile)
	}
}

func TestMeshStages_PassThrough(t *testing.T) {
	req := testRequest()

	ph, err := NewPhononStep().Job(req)
	if err != nil {
		t.Fatalf("phonon Job() error = %v", err)
	}
	for i, key := range []string{"nq1", "nq2", "nq3"} {
		v, _ := ph.Config.Get("inputph", key)
		if n, _ := v.Int(); n != req.Spec.QPoints.Meshes[0][i] {
			t.Errorf("%s = %d, want %d", key, n, req.Spec.QPoints.Meshes[0][i])
		}
	}

	md, err := NewInterpolationStep().Job(req)
	if err != nil {
		t.Fatalf("interpolation Job() error = %v", err)
	}
	for i, key := range []string{"nk1", "nk2", "nk3"} {
		v, _ := md.Config.Get("input", key)
		if n, _ := v.Int(); n != req.Spec.KPoints.Meshes[0][i] {
			t.Errorf("%s = %d, want %d", key, n, req.Spec.KPoints.Meshes[0][i])
		}
	}
}

func TestStep_ConfigErrors(t *testing.T) {
	req := testRequest()
	req.Spec.EngineCommand = "qe-run"

	for _, step := range DefaultPipeline().Steps() {
		_, err := step.Job(req)
		if !errors.Is(err, engine.ErrEngineCommand) {
			t.Errorf("%s: error = %v, want ErrEngineCommand", step.Stage(), err)
		}
	}

	req = testRequest()
	req.PseudoDir = ""
	if _, err := NewRelaxStep().Job(req); !errors.Is(err, engine.ErrMissingPseudoDir) {
		t.Errorf("relax without pseudo dir: error = %v", err)
	}
}

func TestStep_Reproducible(t *testing.T) {
	req := testRequest()

	for _, step := range DefaultPipeline().Steps() {
		a, err := step.Job(req)
		if err != nil {
			t.Fatal(err)
		}
		b, err := step.Job(req)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(a, b) {
			t.Errorf("%s: Job() is not reproducible", step.Stage())
		}
	}
}
