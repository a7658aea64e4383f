package render

import (
	"strconv"
	"strings"
)

// kind enumerates the variants a template variable can hold.
type kind int

const (
	kindNull kind = iota
	kindString
	kindNumber
	kindBool
	kindMap
	kindList
)

// Value is a loosely-typed template variable: string, number, boolean,
// nested mapping, list, or null. The zero Value is null.
//
// Modeling variables as an explicit variant instead of `any` keeps
// truthiness and strict-lookup checks as plain dispatch with no
// reflection involved.
type Value struct {
	kind kind
	str  string
	num  float64
	b    bool
	m    map[string]Value
	list []Value
}

// String wraps a string value.
func String(s string) Value { return Value{kind: kindString, str: s} }

// Number wraps a numeric value.
func Number(n float64) Value { return Value{kind: kindNumber, num: n} }

// Bool wraps a boolean value.
func Bool(b bool) Value { return Value{kind: kindBool, b: b} }

// Map wraps a nested mapping.
func Map(m map[string]Value) Value { return Value{kind: kindMap, m: m} }

// List wraps a list of values.
func List(items ...Value) Value { return Value{kind: kindList, list: items} }

// FromAny converts a JSON-decoded value (string, bool, float64,
// map[string]any, []any, nil) into a Value. Unknown types degrade to
// their fmt-free string forms via strconv where possible, otherwise null.
func FromAny(v any) Value {
	switch val := v.(type) {
	case nil:
		return Value{}
	case string:
		return String(val)
	case bool:
		return Bool(val)
	case float64:
		return Number(val)
	case int:
		return Number(float64(val))
	case int64:
		return Number(float64(val))
	case map[string]any:
		m := make(map[string]Value, len(val))
		for k, item := range val {
			m[k] = FromAny(item)
		}
		return Map(m)
	case []any:
		list := make([]Value, len(val))
		for i, item := range val {
			list[i] = FromAny(item)
		}
		return List(list...)
	default:
		return Value{}
	}
}

// Truthy reports whether the value enables a conditional block:
// false, empty string, empty map/list, and null are falsy; everything
// else, including the number zero, is truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case kindNull:
		return false
	case kindString:
		return v.str != ""
	case kindBool:
		return v.b
	case kindMap:
		return len(v.m) > 0
	case kindList:
		return len(v.list) > 0
	default:
		return true
	}
}

// text renders the scalar form of the value. Lists join their items
// with ", "; maps have no scalar form and report ok=false.
func (v Value) text() (string, bool) {
	switch v.kind {
	case kindNull:
		return "", true
	case kindString:
		return v.str, true
	case kindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64), true
	case kindBool:
		return strconv.FormatBool(v.b), true
	case kindList:
		parts := make([]string, 0, len(v.list))
		for _, item := range v.list {
			s, ok := item.text()
			if !ok {
				return "", false
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ", "), true
	default:
		return "", false
	}
}

// Vars is the per-request variable scope handed to Render.
type Vars map[string]Value

// VarsFromJSON converts a decoded JSON object into a variable scope.
func VarsFromJSON(m map[string]any) Vars {
	vars := make(Vars, len(m))
	for k, v := range m {
		vars[k] = FromAny(v)
	}
	return vars
}

// lookup resolves a dotted path against the scope. The second return
// reports whether every segment of the path was present.
func (vars Vars) lookup(path []string) (Value, bool) {
	if len(path) == 0 {
		return Value{}, false
	}

	v, ok := vars[path[0]]
	if !ok {
		return Value{}, false
	}
	for _, seg := range path[1:] {
		if v.kind != kindMap {
			return Value{}, false
		}
		v, ok = v.m[seg]
		if !ok {
			return Value{}, false
		}
	}
	return v, true
}

// clone copies the scope so partial parameters never leak into the caller.
func (vars Vars) clone() Vars {
	out := make(Vars, len(vars)+2)
	for k, v := range vars {
		out[k] = v
	}
	return out
}
