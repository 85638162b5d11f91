// Package params defines the typed parameter values passed to content
// generators and perturbed by the similarity guard.
//
// Parameters are a tagged variant type rather than a bag of any-typed values:
// a Value is exactly a Number, a Bool, or an Enum. This keeps guard nudging
// and validation exhaustive — a switch over Kind covers every case — and
// means a typo'd kind fails loudly at construction instead of silently
// passing through type probes at use sites.
package params

import (
	"fmt"
	"sort"
	"strings"
)

// Kind discriminates the variant held by a Value.
type Kind int

// Value kinds.
const (
	KindNumber Kind = iota
	KindBool
	KindEnum
)

// Value is a tagged parameter variant. Construct values with Number, Bool,
// or Enum; the zero Value is Number(0).
type Value struct {
	kind Kind
	num  float64
	b    bool
	enum string
}

// Number creates a numeric value. Numeric parameters live on the unit range
// by convention; the guard's nudging clamps to [0, 1].
func Number(v float64) Value { return Value{kind: KindNumber, num: v} }

// Bool creates a boolean value.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Enum creates a symbolic value.
func Enum(v string) Value { return Value{kind: KindEnum, enum: v} }

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// Num returns the numeric payload and whether the value is a Number.
func (v Value) Num() (float64, bool) { return v.num, v.kind == KindNumber }

// BoolVal returns the boolean payload and whether the value is a Bool.
func (v Value) BoolVal() (bool, bool) { return v.b, v.kind == KindBool }

// EnumVal returns the symbolic payload and whether the value is an Enum.
func (v Value) EnumVal() (string, bool) { return v.enum, v.kind == KindEnum }

// NumOr returns the numeric payload, or def when the value is not a Number.
func (v Value) NumOr(def float64) float64 {
	if v.kind == KindNumber {
		return v.num
	}
	return def
}

// String formats the value for logs and signatures.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return fmt.Sprintf("%g", v.num)
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	default:
		return v.enum
	}
}

// Map is a named parameter set. Maps are passed by reference; callers that
// need isolation (the retry loop nudges its own copy) use Clone.
type Map map[string]Value

// Clone returns an independent copy of m.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Num returns the numeric parameter named key, or def when absent or not a
// Number. This is the documented defaults-resolution path; call sites do not
// coalesce inline.
func (m Map) Num(key string, def float64) float64 {
	if v, ok := m[key]; ok {
		return v.NumOr(def)
	}
	return def
}

// Bool returns the boolean parameter named key, or def when absent or not a
// Bool.
func (m Map) Bool(key string, def bool) bool {
	if v, ok := m[key]; ok {
		if b, isBool := v.BoolVal(); isBool {
			return b
		}
	}
	return def
}

// Enum returns the symbolic parameter named key, or def when absent or not
// an Enum.
func (m Map) Enum(key string, def string) string {
	if v, ok := m[key]; ok {
		if e, isEnum := v.EnumVal(); isEnum {
			return e
		}
	}
	return def
}

// Keys returns the parameter names in sorted order, so iteration over a Map
// is deterministic wherever ordering matters (nudging draws, logging).
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String renders the map as "k=v k=v" in key order.
func (m Map) String() string {
	parts := make([]string, 0, len(m))
	for _, k := range m.Keys() {
		parts = append(parts, k+"="+m[k].String())
	}
	return strings.Join(parts, " ")
}
