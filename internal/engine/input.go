package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shaiso/supercon/internal/domain"
)

// RenderInput формирует текст входного файла для задания.
//
//   - pw.x     — namelist + ATOMIC_SPECIES, CELL_PARAMETERS, ATOMIC_POSITIONS, K_POINTS
//   - ph.x     — строка заголовка + namelist
//   - q2r.x, matdyn.x — только namelist
func RenderInput(job *domain.Job) (string, error) {
	switch job.Binary {
	case domain.BinaryPW:
		return renderPW(job)
	case domain.BinaryPH:
		title := job.Name
		if title == "" {
			title = "phonons"
		}
		return title + "\n" + job.Config.Render(), nil
	default:
		return job.Config.Render(), nil
	}
}

func renderPW(job *domain.Job) (string, error) {
	if job.KPoints == nil {
		return "", NewConfigError("", "kpoints", "pw.x input requires a k-point mesh", ErrMissingKPoints)
	}
	mesh, ok := job.KPoints.First()
	if !ok {
		return "", NewConfigError("", "kpoints", "k-point mesh is empty", ErrEmptyMesh)
	}

	s := job.Structure
	if s.NumAtoms() == 0 {
		return "", NewConfigError("system", "nat", "structure has no atoms", ErrEmptyStructure)
	}

	var b strings.Builder
	b.WriteString(job.Config.Render())

	b.WriteString("ATOMIC_SPECIES\n")
	for _, el := range s.Species() {
		mass, ok := AtomicMass(el)
		if !ok {
			return "", NewConfigError("", "elements",
				fmt.Sprintf("no atomic mass for element %q", el), ErrUnknownElement)
		}
		fmt.Fprintf(&b, "  %s %s %s\n", el, formatFloat(mass), PseudoFile(el))
	}

	b.WriteString("CELL_PARAMETERS angstrom\n")
	for _, row := range s.Lattice {
		fmt.Fprintf(&b, "  %s %s %s\n", formatFloat(row[0]), formatFloat(row[1]), formatFloat(row[2]))
	}

	// Декартовы координаты (например, после relax) переводятся в дробные.
	b.WriteString("ATOMIC_POSITIONS crystal\n")
	for i, c := range s.FractionalCoords() {
		el := s.Elements[i]
		fmt.Fprintf(&b, "  %s %s %s %s\n", el, formatFloat(c[0]), formatFloat(c[1]), formatFloat(c[2]))
	}

	b.WriteString("K_POINTS automatic\n")
	fmt.Fprintf(&b, "  %d %d %d 0 0 0\n", mesh[0], mesh[1], mesh[2])

	return b.String(), nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
