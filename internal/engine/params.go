package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shaiso/supercon/internal/domain"
)

// Допустимые режимы релаксации.
var validRelaxModes = map[string]bool{
	"relax":    true,
	"vc-relax": true,
}

// Params — общие параметры, которые шаблоны pw.x получают во время выполнения.
type Params struct {
	// Structure — структура текущей стадии (nat, ntyp).
	Structure domain.Structure

	// PseudoDir — директория с файлами псевдопотенциалов.
	PseudoDir string

	// RelaxMode — значение calculation для стадии relax.
	RelaxMode string
}

// NewParams проверяет входные данные и создаёт Params.
//
// Режим релаксации принимается и в виде "'vc-relax'": внешние
// кавычки снимаются, пустой режим заменяется на vc-relax.
func NewParams(s domain.Structure, pseudoDir, relaxMode string) (Params, error) {
	if s.NumAtoms() == 0 {
		return Params{}, NewConfigError("system", "nat", "structure has no atoms", ErrEmptyStructure)
	}
	if strings.TrimSpace(pseudoDir) == "" {
		return Params{}, NewConfigError("control", "pseudo_dir", "pseudopotential directory is empty", ErrMissingPseudoDir)
	}

	mode := NormalizeRelaxMode(relaxMode)
	if !validRelaxModes[mode] {
		return Params{}, NewConfigError("control", "calculation",
			fmt.Sprintf("relax mode %q is not relax or vc-relax", relaxMode), ErrInvalidRelaxMode)
	}

	return Params{
		Structure: s,
		PseudoDir: pseudoDir,
		RelaxMode: mode,
	}, nil
}

// NormalizeRelaxMode снимает кавычки и пробелы, пустое значение → vc-relax.
func NormalizeRelaxMode(mode string) string {
	mode = strings.Trim(strings.TrimSpace(mode), `'"`)
	if mode == "" {
		return domain.DefaultRelaxMode
	}
	return mode
}

// pressureValue приводит давление к float64.
// ok == false означает, что давление не задано. NaN и ±Inf отклоняются.
func pressureValue(pressure any) (value float64, ok bool, err error) {
	var f float64
	switch p := pressure.(type) {
	case nil:
		return 0, false, nil
	case *float64:
		if p == nil {
			return 0, false, nil
		}
		f = *p
	case float64:
		f = p
	case float32:
		f = float64(p)
	case int:
		f = float64(p)
	case int64:
		f = float64(p)
	case json.Number:
		n, err := p.Float64()
		if err != nil {
			return 0, false, NewConfigError("cell", "press",
				fmt.Sprintf("pressure %q is not a number", p.String()), ErrUnsupportedPressure)
		}
		f = n
	default:
		return 0, false, NewConfigError("cell", "press",
			fmt.Sprintf("pressure of type %T is not supported", pressure), ErrUnsupportedPressure)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false, NewConfigError("cell", "press",
			fmt.Sprintf("pressure %v is not finite", f), ErrUnsupportedPressure)
	}
	return f, true, nil
}
