package dataschema

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/shaiso/supercon/internal/domain"
)

// BohrToAngstrom — перевод атомных единиц длины в ангстремы.
const BohrToAngstrom = 0.529177210903

// ErrParse — structured output отсутствует или не читается.
var ErrParse = errors.New("structured output parse failed")

// ErrNoStructure — в документе нет atomic_structure.
var ErrNoStructure = errors.New("no atomic_structure in data file")

type document struct {
	XMLName xml.Name `xml:"espresso"`
	Input   section  `xml:"input"`
	Output  section  `xml:"output"`
}

type section struct {
	Structure *atomicStructure `xml:"atomic_structure"`
}

type atomicStructure struct {
	Nat   int    `xml:"nat,attr"`
	Atoms []atom `xml:"atomic_positions>atom"`
	A1    string `xml:"cell>a1"`
	A2    string `xml:"cell>a2"`
	A3    string `xml:"cell>a3"`
}

type atom struct {
	Name   string `xml:"name,attr"`
	Coords string `xml:",chardata"`
}

// Reader читает структуру из data-file-schema XML.
// Нулевое значение готово к использованию.
type Reader struct{}

// ReadStructure реализует чтение итоговой структуры по пути к XML.
func (Reader) ReadStructure(path string) (domain.Structure, error) {
	return ReadStructure(path)
}

// ReadStructure читает итоговую структуру из XML файла pw.x.
//
// Берётся output/atomic_structure (результат релаксации), при его отсутствии
// input/atomic_structure. Координаты и решётка переводятся из бор в Å,
// координаты возвращаются декартовыми.
func ReadStructure(path string) (domain.Structure, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Structure{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	defer f.Close()

	s, err := Decode(f)
	if err != nil {
		return domain.Structure{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Decode разбирает XML из io.Reader.
func Decode(r io.Reader) (domain.Structure, error) {
	var doc document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return domain.Structure{}, fmt.Errorf("%w: %v", ErrParse, err)
	}

	src := doc.Output.Structure
	if src == nil {
		src = doc.Input.Structure
	}
	if src == nil {
		return domain.Structure{}, fmt.Errorf("%w: %w", ErrParse, ErrNoStructure)
	}

	return src.toStructure()
}

func (a *atomicStructure) toStructure() (domain.Structure, error) {
	var s domain.Structure

	for i, raw := range []string{a.A1, a.A2, a.A3} {
		vec, err := parseVector(raw)
		if err != nil {
			return s, fmt.Errorf("%w: cell a%d: %v", ErrParse, i+1, err)
		}
		s.Lattice[i] = scale(vec)
	}

	if a.Nat > 0 && a.Nat != len(a.Atoms) {
		return s, fmt.Errorf("%w: nat=%d but %d atoms listed", ErrParse, a.Nat, len(a.Atoms))
	}
	if len(a.Atoms) == 0 {
		return s, fmt.Errorf("%w: no atoms", ErrParse)
	}

	s.Elements = make([]string, len(a.Atoms))
	s.Coords = make([][3]float64, len(a.Atoms))
	for i, at := range a.Atoms {
		vec, err := parseVector(at.Coords)
		if err != nil {
			return s, fmt.Errorf("%w: atom %d: %v", ErrParse, i+1, err)
		}
		s.Elements[i] = elementSymbol(at.Name)
		s.Coords[i] = scale(vec)
	}
	s.Cartesian = true

	return s, nil
}

func parseVector(raw string) ([3]float64, error) {
	var v [3]float64
	fields := strings.Fields(raw)
	if len(fields) != 3 {
		return v, fmt.Errorf("expected 3 components, got %d", len(fields))
	}
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return v, err
		}
		v[i] = x
	}
	return v, nil
}

func scale(v [3]float64) [3]float64 {
	return [3]float64{v[0] * BohrToAngstrom, v[1] * BohrToAngstrom, v[2] * BohrToAngstrom}
}

// elementSymbol отрезает суффикс метки вида Fe1 или Fe_up.
func elementSymbol(label string) string {
	end := len(label)
	for i, r := range label {
		if i > 0 && !unicode.IsLower(r) {
			end = i
			break
		}
	}
	return label[:end]
}
