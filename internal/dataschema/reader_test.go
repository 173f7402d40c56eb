package dataschema

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const relaxXML = `<?xml version="1.0" encoding="UTF-8"?>
<qes:espresso xmlns:qes="http://www.quantum-espresso.org/ns/qes/qes-1.0">
  <input>
    <atomic_structure nat="2" alat="7.0">
      <atomic_positions>
        <atom name="Nb" index="1">0.0 0.0 0.0</atom>
        <atom name="Nb" index="2">3.5 3.5 3.5</atom>
      </atomic_positions>
      <cell>
        <a1>7.0 0.0 0.0</a1>
        <a2>0.0 7.0 0.0</a2>
        <a3>0.0 0.0 7.0</a3>
      </cell>
    </atomic_structure>
  </input>
  <output>
    <atomic_structure nat="2" alat="6.8">
      <atomic_positions>
        <atom name="Nb1" index="1">0.000000000000000e+00 0.000000000000000e+00 0.000000000000000e+00</atom>
        <atom name="Nb" index="2">3.400000000000000e+00 3.400000000000000e+00 3.400000000000000e+00</atom>
      </atomic_positions>
      <cell>
        <a1>6.800000000000000e+00 0.000000000000000e+00 0.000000000000000e+00</a1>
        <a2>0.000000000000000e+00 6.800000000000000e+00 0.000000000000000e+00</a2>
        <a3>0.000000000000000e+00 0.000000000000000e+00 6.800000000000000e+00</a3>
      </cell>
    </atomic_structure>
  </output>
</qes:espresso>
`

func TestReadStructure_Output(t *testing.T) {
	path := filepath.Join(t.TempDir(), "RELAX.xml")
	if err := os.WriteFile(path, []byte(relaxXML), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := ReadStructure(path)
	if err != nil {
		t.Fatalf("ReadStructure() error = %v", err)
	}

	if s.NumAtoms() != 2 {
		t.Fatalf("NumAtoms() = %d, want 2", s.NumAtoms())
	}
	if s.Elements[0] != "Nb" || s.Elements[1] != "Nb" {
		t.Errorf("Elements = %v, want [Nb Nb]", s.Elements)
	}
	if !s.Cartesian {
		t.Error("Cartesian = false, want true")
	}

	// берётся output, а не input
	wantA := 6.8 * BohrToAngstrom
	if math.Abs(s.Lattice[0][0]-wantA) > 1e-12 {
		t.Errorf("Lattice[0][0] = %v, want %v", s.Lattice[0][0], wantA)
	}

	frac := s.FractionalCoords()[1]
	for i := range frac {
		if math.Abs(frac[i]-0.5) > 1e-12 {
			t.Errorf("fractional coords = %v, want [0.5 0.5 0.5]", frac)
			break
		}
	}
}

func TestDecode_InputFallback(t *testing.T) {
	doc := strings.Replace(relaxXML, relaxXML[strings.Index(relaxXML, "<output>"):strings.Index(relaxXML, "</qes:espresso>")], "", 1)

	s, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if math.Abs(s.Lattice[2][2]-7.0*BohrToAngstrom) > 1e-12 {
		t.Errorf("Lattice[2][2] = %v, want input cell", s.Lattice[2][2])
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not xml", "pw.x crashed"},
		{"no structure", `<espresso><input></input></espresso>`},
		{"bad vector", `<espresso><output><atomic_structure nat="1">
			<atomic_positions><atom name="H">0 0</atom></atomic_positions>
			<cell><a1>1 0 0</a1><a2>0 1 0</a2><a3>0 0 1</a3></cell>
			</atomic_structure></output></espresso>`},
		{"nat mismatch", `<espresso><output><atomic_structure nat="2">
			<atomic_positions><atom name="H">0 0 0</atom></atomic_positions>
			<cell><a1>1 0 0</a1><a2>0 1 0</a2><a3>0 0 1</a3></cell>
			</atomic_structure></output></espresso>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc))
			if !errors.Is(err, ErrParse) {
				t.Errorf("Decode() error = %v, want ErrParse", err)
			}
		})
	}
}

func TestReadStructure_Missing(t *testing.T) {
	_, err := ReadStructure(filepath.Join(t.TempDir(), "none.xml"))
	if !errors.Is(err, ErrParse) {
		t.Errorf("ReadStructure() error = %v, want ErrParse", err)
	}
}
