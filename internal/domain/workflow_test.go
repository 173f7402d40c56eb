package domain

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func testSpec() WorkflowSpec {
	pressure := 12.5
	return WorkflowSpec{
		Atoms: Structure{
			Lattice: [3][3]float64{
				{0, 2.0, 2.0},
				{2.0, 0, 2.0},
				{2.0, 2.0, 0},
			},
			Elements: []string{"Mg", "B", "B"},
			Coords: [][3]float64{
				{0, 0, 0},
				{1.0 / 3, 2.0 / 3, 0.5},
				{2.0 / 3, 1.0 / 3, 0.5},
			},
		},
		KPoints:       NewMesh(12, 12, 8),
		QPoints:       NewMesh(4, 4, 3),
		EngineCommand: "mpirun -np 4 pw.x",
		RelaxMode:     "vc-relax",
		Pressure:      &pressure,
	}
}

func TestWorkflowSpec_MapRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		spec WorkflowSpec
	}{
		{name: "with pressure", spec: testSpec()},
		{
			name: "without pressure",
			spec: func() WorkflowSpec {
				s := testSpec()
				s.Pressure = nil
				return s
			}(),
		},
		{
			name: "cartesian coordinates",
			spec: func() WorkflowSpec {
				s := testSpec()
				s.Atoms.Cartesian = true
				s.KPoints.Header = "Gamma centered"
				return s
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := WorkflowSpecFromMap(tt.spec.ToMap())
			if err != nil {
				t.Fatalf("WorkflowSpecFromMap() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.spec) {
				t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, tt.spec)
			}
		})
	}
}

func TestWorkflowSpec_JSONRoundTrip(t *testing.T) {
	spec := testSpec()

	data, err := json.Marshal(spec)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got WorkflowSpec
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if !reflect.DeepEqual(got, spec) {
		t.Errorf("JSON round trip mismatch:\n got  %+v\n want %+v", got, spec)
	}
}

func TestWorkflowSpec_FileRoundTrip(t *testing.T) {
	spec := testSpec()
	path := filepath.Join(t.TempDir(), "mgb2.yaml")

	if err := SaveSpecFile(path, spec); err != nil {
		t.Fatalf("SaveSpecFile() error = %v", err)
	}

	got, err := LoadSpecFile(path)
	if err != nil {
		t.Fatalf("LoadSpecFile() error = %v", err)
	}

	if !reflect.DeepEqual(got, spec) {
		t.Errorf("file round trip mismatch:\n got  %+v\n want %+v", got, spec)
	}
}

func TestParseSpec_JSONDocument(t *testing.T) {
	doc := `{
		"atoms": {
			"lattice_mat": [[3.0, 0, 0], [0, 3.0, 0], [0, 0, 3.0]],
			"coords": [[0, 0, 0]],
			"elements": ["Nb"],
			"cartesian": false
		},
		"kp": {"kpoints": [[8, 8, 8]], "kpoint_mode": "automatic"},
		"qp": {"kpoints": [[2, 2, 2]]},
		"qe_cmd": "pw.x",
		"relax_calc": "relax",
		"pressure": null
	}`

	spec, err := ParseSpec([]byte(doc))
	if err != nil {
		t.Fatalf("ParseSpec() error = %v", err)
	}

	if spec.Pressure != nil {
		t.Errorf("Pressure = %v, want nil", *spec.Pressure)
	}
	if q, _ := spec.QPoints.First(); q != [3]int{2, 2, 2} {
		t.Errorf("QPoints.First() = %v, want [2 2 2]", q)
	}
	if spec.Atoms.NumAtoms() != 1 {
		t.Errorf("NumAtoms() = %d, want 1", spec.Atoms.NumAtoms())
	}
}

func TestWorkflowSpecFromMap_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m map[string]any)
	}{
		{
			name:   "missing atoms",
			mutate: func(m map[string]any) { delete(m, "atoms") },
		},
		{
			name:   "pressure is a string",
			mutate: func(m map[string]any) { m["pressure"] = "high" },
		},
		{
			name:   "fractional mesh",
			mutate: func(m map[string]any) { m["kp"] = map[string]any{"kpoints": []any{[]any{1.5, 2, 2}}} },
		},
		{
			name:   "qe_cmd is a number",
			mutate: func(m map[string]any) { m["qe_cmd"] = 42 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testSpec().ToMap()
			tt.mutate(m)

			_, err := WorkflowSpecFromMap(m)
			if !errors.Is(err, ErrInvalidSpec) {
				t.Errorf("WorkflowSpecFromMap() error = %v, want ErrInvalidSpec", err)
			}
		})
	}
}

func TestWorkflowSpec_WithDefaults(t *testing.T) {
	spec := testSpec()
	spec.EngineCommand = ""
	spec.RelaxMode = ""

	got := spec.WithDefaults()

	if got.EngineCommand != DefaultEngineCommand {
		t.Errorf("EngineCommand = %q, want %q", got.EngineCommand, DefaultEngineCommand)
	}
	if got.RelaxMode != DefaultRelaxMode {
		t.Errorf("RelaxMode = %q, want %q", got.RelaxMode, DefaultRelaxMode)
	}
	// исходное значение не изменилось
	if spec.EngineCommand != "" {
		t.Error("WithDefaults() modified the receiver")
	}
}

func TestStructure_Species(t *testing.T) {
	s := testSpec().Atoms

	if got := s.Species(); !reflect.DeepEqual(got, []string{"Mg", "B"}) {
		t.Errorf("Species() = %v, want [Mg B]", got)
	}
	if s.NumSpecies() != 2 {
		t.Errorf("NumSpecies() = %d, want 2", s.NumSpecies())
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestStructure_FractionalCoords(t *testing.T) {
	s := Structure{
		Lattice:   [3][3]float64{{4, 0, 0}, {0, 4, 0}, {0, 0, 8}},
		Elements:  []string{"Nb"},
		Coords:    [][3]float64{{2, 1, 4}},
		Cartesian: true,
	}

	got := s.FractionalCoords()[0]
	want := [3]float64{0.5, 0.25, 0.5}
	for i := range want {
		if d := got[i] - want[i]; d > 1e-12 || d < -1e-12 {
			t.Errorf("FractionalCoords()[0] = %v, want %v", got, want)
			break
		}
	}
}
