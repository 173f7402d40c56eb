package domain

import "fmt"

// KPointModeAutomatic — Монкхорст-Пак сетка, задаваемая тройкой чисел.
const KPointModeAutomatic = "automatic"

// KPoints — упорядоченный список тройек сеток зоны Бриллюэна.
//
// Используется и для электронной k-сетки, и для фононной q-сетки.
// Workflow использует только первую тройку.
type KPoints struct {
	// Meshes — тройки (n1, n2, n3).
	Meshes [][3]int

	// Mode — режим сетки, по умолчанию "automatic".
	Mode string

	// Header — произвольная подпись.
	Header string
}

// NewMesh создаёт KPoints с одной автоматической сеткой.
func NewMesh(n1, n2, n3 int) KPoints {
	return KPoints{
		Meshes: [][3]int{{n1, n2, n3}},
		Mode:   KPointModeAutomatic,
	}
}

// First возвращает первую тройку сетки.
func (k KPoints) First() ([3]int, bool) {
	if len(k.Meshes) == 0 {
		return [3]int{}, false
	}
	return k.Meshes[0], true
}

// IsEmpty возвращает true, если сетка не содержит ни одной тройки.
func (k KPoints) IsEmpty() bool {
	return len(k.Meshes) == 0
}

// Clone возвращает глубокую копию.
func (k KPoints) Clone() KPoints {
	out := k
	if k.Meshes != nil {
		out.Meshes = append([][3]int(nil), k.Meshes...)
	}
	return out
}

// ToMap сериализует сетку в plain key-value представление.
func (k KPoints) ToMap() map[string]any {
	meshes := make([]any, len(k.Meshes))
	for i, m := range k.Meshes {
		meshes[i] = []any{m[0], m[1], m[2]}
	}
	return map[string]any{
		"kpoints":     meshes,
		"kpoint_mode": k.Mode,
		"header":      k.Header,
	}
}

// KPointsFromMap восстанавливает сетку из представления ToMap.
func KPointsFromMap(m map[string]any) (KPoints, error) {
	var k KPoints

	meshes, err := listField(m, "kpoints")
	if err != nil {
		return k, err
	}
	if len(meshes) > 0 {
		k.Meshes = make([][3]int, len(meshes))
	}
	for i, raw := range meshes {
		triple, err := toIntTriple(raw)
		if err != nil {
			return k, fmt.Errorf("kpoints[%d]: %w", i, err)
		}
		k.Meshes[i] = triple
	}

	if k.Mode, err = stringField(m, "kpoint_mode"); err != nil {
		return k, err
	}
	if k.Header, err = stringField(m, "header"); err != nil {
		return k, err
	}

	return k, nil
}
