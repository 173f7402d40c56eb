package namelist

import (
	"strconv"
	"strings"
)

// Kind — тип значения namelist.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindBool
	KindString
	KindLiteral
)

// String возвращает имя типа.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

// Value — типизированное скалярное значение namelist.
//
// Value знает, как оно записывается во входной файл:
//
//	Bool(true)       → .true.
//	String("david")  → 'david'
//	Literal("1d-9")  → 1d-9
//	Int(45)          → 45
//	Float(0.01)      → 0.01
//
// Нулевое значение Value — Int(0).
type Value struct {
	kind Kind
	i    int
	f    float64
	b    bool
	s    string
}

// Int создаёт целое значение.
func Int(v int) Value { return Value{kind: KindInt, i: v} }

// Float создаёт вещественное значение.
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// Bool создаёт логическое значение.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// String создаёт строковое значение, записывается в кавычках.
func String(v string) Value { return Value{kind: KindString, s: v} }

// Literal создаёт значение, которое записывается как есть
// (фортрановские числа вида 1.0d-12).
func Literal(v string) Value { return Value{kind: KindLiteral, s: v} }

// Kind возвращает тип значения.
func (v Value) Kind() Kind { return v.kind }

// Int возвращает целое значение, если Kind == KindInt.
func (v Value) Int() (int, bool) {
	return v.i, v.kind == KindInt
}

// Float возвращает вещественное значение для KindFloat и KindInt.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	default:
		return 0, false
	}
}

// Bool возвращает логическое значение, если Kind == KindBool.
func (v Value) Bool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// Text возвращает строку без кавычек для KindString и KindLiteral.
func (v Value) Text() (string, bool) {
	return v.s, v.kind == KindString || v.kind == KindLiteral
}

// String возвращает запись значения во входном файле.
func (v Value) String() string {
	switch v.kind {
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		if v.b {
			return ".true."
		}
		return ".false."
	case KindString:
		return "'" + strings.ReplaceAll(v.s, "'", "''") + "'"
	case KindLiteral:
		return v.s
	default:
		return strconv.Itoa(v.i)
	}
}

// Interface возвращает значение как int, float64, bool или string.
// Для KindString возвращается запись в кавычках, чтобы отличать её от Literal.
func (v Value) Interface() any {
	switch v.kind {
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	case KindString, KindLiteral:
		return v.String()
	default:
		return v.i
	}
}
