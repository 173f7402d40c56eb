package domain

import (
	"fmt"
	"math"
)

// Structure — снимок атомной геометрии.
//
// Значение считается неизменяемым: методы не модифицируют получателя,
// Clone возвращает глубокую копию. Структура, полученная после relax,
// без изменений используется всеми последующими стадиями.
type Structure struct {
	// Lattice — векторы решётки (строки) в ангстремах.
	Lattice [3][3]float64

	// Elements — химические символы атомов, по одному на атом.
	Elements []string

	// Coords — координаты атомов: дробные или декартовы (Å), см. Cartesian.
	Coords [][3]float64

	// Cartesian — true, если Coords заданы в декартовых координатах.
	Cartesian bool
}

// NumAtoms возвращает количество атомов.
func (s Structure) NumAtoms() int {
	return len(s.Elements)
}

// Species возвращает уникальные символы в порядке первого появления.
func (s Structure) Species() []string {
	seen := make(map[string]bool, len(s.Elements))
	species := make([]string, 0, len(s.Elements))
	for _, el := range s.Elements {
		if seen[el] {
			continue
		}
		seen[el] = true
		species = append(species, el)
	}
	return species
}

// NumSpecies возвращает количество уникальных химических элементов.
func (s Structure) NumSpecies() int {
	return len(s.Species())
}

// Clone возвращает глубокую копию структуры.
func (s Structure) Clone() Structure {
	out := Structure{Lattice: s.Lattice, Cartesian: s.Cartesian}
	if s.Elements != nil {
		out.Elements = append([]string(nil), s.Elements...)
	}
	if s.Coords != nil {
		out.Coords = append([][3]float64(nil), s.Coords...)
	}
	return out
}

// Validate проверяет согласованность структуры.
func (s Structure) Validate() error {
	if len(s.Elements) == 0 {
		return fmt.Errorf("%w: structure has no atoms", ErrInvalidSpec)
	}
	if len(s.Elements) != len(s.Coords) {
		return fmt.Errorf("%w: %d elements but %d coordinates",
			ErrInvalidSpec, len(s.Elements), len(s.Coords))
	}
	if math.Abs(s.Volume()) < 1e-8 {
		return fmt.Errorf("%w: degenerate lattice", ErrInvalidSpec)
	}
	return nil
}

// Volume возвращает объём ячейки (Å³).
func (s Structure) Volume() float64 {
	a, b, c := s.Lattice[0], s.Lattice[1], s.Lattice[2]
	return a[0]*(b[1]*c[2]-b[2]*c[1]) -
		a[1]*(b[0]*c[2]-b[2]*c[0]) +
		a[2]*(b[0]*c[1]-b[1]*c[0])
}

// FractionalCoords возвращает дробные координаты атомов.
// Для декартовых координат решает r = f·L через обратную матрицу решётки.
func (s Structure) FractionalCoords() [][3]float64 {
	out := make([][3]float64, len(s.Coords))
	if !s.Cartesian {
		copy(out, s.Coords)
		return out
	}

	inv, ok := invert3(s.Lattice)
	if !ok {
		copy(out, s.Coords)
		return out
	}
	for i, r := range s.Coords {
		for j := 0; j < 3; j++ {
			out[i][j] = r[0]*inv[0][j] + r[1]*inv[1][j] + r[2]*inv[2][j]
		}
	}
	return out
}

// invert3 обращает матрицу 3×3.
func invert3(m [3][3]float64) ([3][3]float64, bool) {
	var inv [3][3]float64
	det := m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
	if math.Abs(det) < 1e-12 {
		return inv, false
	}

	inv[0][0] = (m[1][1]*m[2][2] - m[1][2]*m[2][1]) / det
	inv[0][1] = (m[0][2]*m[2][1] - m[0][1]*m[2][2]) / det
	inv[0][2] = (m[0][1]*m[1][2] - m[0][2]*m[1][1]) / det
	inv[1][0] = (m[1][2]*m[2][0] - m[1][0]*m[2][2]) / det
	inv[1][1] = (m[0][0]*m[2][2] - m[0][2]*m[2][0]) / det
	inv[1][2] = (m[0][2]*m[1][0] - m[0][0]*m[1][2]) / det
	inv[2][0] = (m[1][0]*m[2][1] - m[1][1]*m[2][0]) / det
	inv[2][1] = (m[0][1]*m[2][0] - m[0][0]*m[2][1]) / det
	inv[2][2] = (m[0][0]*m[1][1] - m[0][1]*m[1][0]) / det
	return inv, true
}

// ToMap сериализует структуру в plain key-value представление.
func (s Structure) ToMap() map[string]any {
	lattice := make([]any, 3)
	for i, row := range s.Lattice {
		lattice[i] = []any{row[0], row[1], row[2]}
	}

	coords := make([]any, len(s.Coords))
	for i, c := range s.Coords {
		coords[i] = []any{c[0], c[1], c[2]}
	}

	elements := make([]any, len(s.Elements))
	for i, el := range s.Elements {
		elements[i] = el
	}

	return map[string]any{
		"lattice_mat": lattice,
		"coords":      coords,
		"elements":    elements,
		"cartesian":   s.Cartesian,
	}
}

// StructureFromMap восстанавливает структуру из представления ToMap.
func StructureFromMap(m map[string]any) (Structure, error) {
	var s Structure

	rows, err := listField(m, "lattice_mat")
	if err != nil {
		return s, err
	}
	if len(rows) != 3 {
		return s, fmt.Errorf("%w: lattice_mat must have 3 rows, got %d", ErrInvalidSpec, len(rows))
	}
	for i, row := range rows {
		vec, err := toFloatTriple(row)
		if err != nil {
			return s, fmt.Errorf("lattice_mat[%d]: %w", i, err)
		}
		s.Lattice[i] = vec
	}

	coords, err := listField(m, "coords")
	if err != nil {
		return s, err
	}
	if len(coords) > 0 {
		s.Coords = make([][3]float64, len(coords))
	}
	for i, c := range coords {
		vec, err := toFloatTriple(c)
		if err != nil {
			return s, fmt.Errorf("coords[%d]: %w", i, err)
		}
		s.Coords[i] = vec
	}

	elements, err := listField(m, "elements")
	if err != nil {
		return s, err
	}
	if len(elements) > 0 {
		s.Elements = make([]string, len(elements))
	}
	for i, el := range elements {
		str, ok := el.(string)
		if !ok {
			return s, fmt.Errorf("%w: elements[%d] is %T, want string", ErrInvalidSpec, i, el)
		}
		s.Elements[i] = str
	}

	if v, ok := m["cartesian"]; ok && v != nil {
		b, ok := v.(bool)
		if !ok {
			return s, fmt.Errorf("%w: cartesian is %T, want bool", ErrInvalidSpec, v)
		}
		s.Cartesian = b
	}

	return s, nil
}
