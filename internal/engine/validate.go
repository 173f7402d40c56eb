package engine

import (
	"fmt"

	"github.com/shaiso/supercon/internal/domain"
)

// ValidateSpec проверяет, что по спецификации можно построить все стадии.
//
// Проверяет:
// - согласованность структуры и известность всех элементов
// - наличие k-сетки и q-сетки
// - режим релаксации
// - что команда движка ссылается на pw.x
// - тип давления
func ValidateSpec(spec domain.WorkflowSpec) error {
	s := spec.Atoms
	if s.NumAtoms() == 0 {
		return NewConfigError("", "atoms", "structure has no atoms", ErrEmptyStructure)
	}
	if err := s.Validate(); err != nil {
		return NewConfigError("", "atoms", err.Error(), err)
	}
	for _, el := range s.Species() {
		if _, ok := AtomicMass(el); !ok {
			return NewConfigError("", "atoms",
				fmt.Sprintf("no atomic mass for element %q", el), ErrUnknownElement)
		}
	}

	if spec.KPoints.IsEmpty() {
		return NewConfigError("", "kp", "k-point mesh is empty", ErrEmptyMesh)
	}
	if spec.QPoints.IsEmpty() {
		return NewConfigError("", "qp", "q-point mesh is empty", ErrEmptyMesh)
	}

	mode := NormalizeRelaxMode(spec.RelaxMode)
	if !validRelaxModes[mode] {
		return NewConfigError("", "relax_calc",
			fmt.Sprintf("relax mode %q is not relax or vc-relax", spec.RelaxMode), ErrInvalidRelaxMode)
	}

	if _, err := CommandVariant(spec.EngineCommand, domain.BinaryPW); err != nil {
		return err
	}

	if _, _, err := pressureValue(spec.Pressure); err != nil {
		return err
	}

	return nil
}
