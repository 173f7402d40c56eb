package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultEngineCommand — команда электронного солвера по умолчанию.
	DefaultEngineCommand = "pw.x"

	// DefaultRelaxMode — режим релаксации по умолчанию.
	DefaultRelaxMode = "vc-relax"
)

// WorkflowSpec — полное определение расчёта Tc.
//
// Это всё, что нужно для воспроизведения run: исходная структура,
// k-сетка, q-сетка, команда движка, режим релаксации и давление.
// Спецификация сериализуется в plain key-value представление без потерь
// (ToMap / WorkflowSpecFromMap); JSON и YAML используют то же представление.
type WorkflowSpec struct {
	// Atoms — исходная структура.
	Atoms Structure

	// KPoints — электронная k-сетка.
	KPoints KPoints

	// QPoints — фононная q-сетка.
	QPoints KPoints

	// EngineCommand — команда запуска pw.x, например "mpirun -np 4 pw.x".
	EngineCommand string

	// RelaxMode — "vc-relax" или "relax".
	RelaxMode string

	// Pressure — давление для &cell (кбар). nil — не задано.
	Pressure *float64
}

// WithDefaults возвращает копию с заполненными значениями по умолчанию.
func (s WorkflowSpec) WithDefaults() WorkflowSpec {
	out := s.Clone()
	if strings.TrimSpace(out.EngineCommand) == "" {
		out.EngineCommand = DefaultEngineCommand
	}
	if out.RelaxMode == "" {
		out.RelaxMode = DefaultRelaxMode
	}
	if out.KPoints.Mode == "" && !out.KPoints.IsEmpty() {
		out.KPoints.Mode = KPointModeAutomatic
	}
	if out.QPoints.Mode == "" && !out.QPoints.IsEmpty() {
		out.QPoints.Mode = KPointModeAutomatic
	}
	return out
}

// Clone возвращает глубокую копию.
func (s WorkflowSpec) Clone() WorkflowSpec {
	out := s
	out.Atoms = s.Atoms.Clone()
	out.KPoints = s.KPoints.Clone()
	out.QPoints = s.QPoints.Clone()
	if s.Pressure != nil {
		p := *s.Pressure
		out.Pressure = &p
	}
	return out
}

// Validate проверяет, что из спецификации можно построить workflow.
func (s WorkflowSpec) Validate() error {
	if err := s.Atoms.Validate(); err != nil {
		return err
	}
	if s.KPoints.IsEmpty() {
		return fmt.Errorf("%w: k-point mesh is empty", ErrInvalidSpec)
	}
	if s.QPoints.IsEmpty() {
		return fmt.Errorf("%w: q-point mesh is empty", ErrInvalidSpec)
	}
	return nil
}

// ToMap сериализует спецификацию в plain key-value представление.
func (s WorkflowSpec) ToMap() map[string]any {
	var pressure any
	if s.Pressure != nil {
		pressure = *s.Pressure
	}
	return map[string]any{
		"atoms":      s.Atoms.ToMap(),
		"kp":         s.KPoints.ToMap(),
		"qp":         s.QPoints.ToMap(),
		"qe_cmd":     s.EngineCommand,
		"relax_calc": s.RelaxMode,
		"pressure":   pressure,
	}
}

// WorkflowSpecFromMap восстанавливает спецификацию из представления ToMap.
func WorkflowSpecFromMap(m map[string]any) (WorkflowSpec, error) {
	var s WorkflowSpec

	atoms, err := mapField(m, "atoms")
	if err != nil {
		return s, err
	}
	if s.Atoms, err = StructureFromMap(atoms); err != nil {
		return s, fmt.Errorf("atoms: %w", err)
	}

	kp, err := mapField(m, "kp")
	if err != nil {
		return s, err
	}
	if s.KPoints, err = KPointsFromMap(kp); err != nil {
		return s, fmt.Errorf("kp: %w", err)
	}

	qp, err := mapField(m, "qp")
	if err != nil {
		return s, err
	}
	if s.QPoints, err = KPointsFromMap(qp); err != nil {
		return s, fmt.Errorf("qp: %w", err)
	}

	if s.EngineCommand, err = stringField(m, "qe_cmd"); err != nil {
		return s, err
	}
	if s.RelaxMode, err = stringField(m, "relax_calc"); err != nil {
		return s, err
	}

	if v, ok := m["pressure"]; ok && v != nil {
		p, ok := ToFloat(v)
		if !ok {
			return s, fmt.Errorf("%w: pressure is %T, want number", ErrInvalidSpec, v)
		}
		s.Pressure = &p
	}

	return s, nil
}

// MarshalJSON кодирует спецификацию через ToMap.
func (s WorkflowSpec) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.ToMap())
}

// UnmarshalJSON декодирует спецификацию через WorkflowSpecFromMap.
func (s *WorkflowSpec) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}

	spec, err := WorkflowSpecFromMap(m)
	if err != nil {
		return err
	}
	*s = spec
	return nil
}

// ParseSpec разбирает спецификацию из YAML (JSON — подмножество YAML).
func ParseSpec(data []byte) (WorkflowSpec, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return WorkflowSpec{}, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	if m == nil {
		return WorkflowSpec{}, fmt.Errorf("%w: empty document", ErrInvalidSpec)
	}
	return WorkflowSpecFromMap(m)
}

// LoadSpecFile читает спецификацию из YAML или JSON файла
// и заполняет значения по умолчанию.
func LoadSpecFile(path string) (WorkflowSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return WorkflowSpec{}, fmt.Errorf("read spec file: %w", err)
	}

	spec, err := ParseSpec(data)
	if err != nil {
		return WorkflowSpec{}, fmt.Errorf("%s: %w", path, err)
	}
	return spec.WithDefaults(), nil
}

// SaveSpecFile записывает спецификацию в YAML файл.
func SaveSpecFile(path string, spec WorkflowSpec) error {
	data, err := yaml.Marshal(spec.ToMap())
	if err != nil {
		return fmt.Errorf("marshal spec: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write spec file: %w", err)
	}
	return nil
}
