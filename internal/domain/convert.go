package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// Helpers для разбора plain key-value представления.
// Значения могут прийти из JSON (float64), YAML (int, float64) или
// напрямую из ToMap (int, float64), поэтому числа приводятся гибко.

// ToFloat приводит числовое значение к float64.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// toInt приводит целое значение к int. Дробные float отвергаются.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	}
	f, ok := ToFloat(v)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func toList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []float64:
		out := make([]any, len(l))
		for i, x := range l {
			out[i] = x
		}
		return out, true
	case []int:
		out := make([]any, len(l))
		for i, x := range l {
			out[i] = x
		}
		return out, true
	case []string:
		out := make([]any, len(l))
		for i, x := range l {
			out[i] = x
		}
		return out, true
	default:
		return nil, false
	}
}

func toMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			key, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[key] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func toFloatTriple(v any) ([3]float64, error) {
	var out [3]float64
	l, ok := toList(v)
	if !ok || len(l) != 3 {
		return out, fmt.Errorf("%w: expected 3 numbers, got %v", ErrInvalidSpec, v)
	}
	for i, x := range l {
		f, ok := ToFloat(x)
		if !ok {
			return out, fmt.Errorf("%w: %v is not a number", ErrInvalidSpec, x)
		}
		out[i] = f
	}
	return out, nil
}

func toIntTriple(v any) ([3]int, error) {
	var out [3]int
	l, ok := toList(v)
	if !ok || len(l) != 3 {
		return out, fmt.Errorf("%w: expected 3 integers, got %v", ErrInvalidSpec, v)
	}
	for i, x := range l {
		n, ok := toInt(x)
		if !ok {
			return out, fmt.Errorf("%w: %v is not an integer", ErrInvalidSpec, x)
		}
		out[i] = n
	}
	return out, nil
}

func listField(m map[string]any, key string) ([]any, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	l, ok := toList(v)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %T, want list", ErrInvalidSpec, key, v)
	}
	return l, nil
}

func mapField(m map[string]any, key string) (map[string]any, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidSpec, key)
	}
	sub, ok := toMap(v)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %T, want mapping", ErrInvalidSpec, key, v)
	}
	return sub, nil
}

func stringField(m map[string]any, key string) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is %T, want string", ErrInvalidSpec, key, v)
	}
	return s, nil
}
