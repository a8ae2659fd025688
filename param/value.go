package param

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	// KindString is a string scalar.
	KindString Kind = iota
	// KindInt is a signed integer scalar.
	KindInt
	// KindFloat is a floating-point scalar.
	KindFloat
	// KindBool is a boolean scalar.
	KindBool
	// KindArray is an ordered list of values.
	KindArray
	// KindOther is an opaque value rendered through fmt.
	KindOther
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}

// Value is a single parameter value. The zero Value is an empty string.
type Value struct {
	kind  Kind
	str   string
	num   int64
	float float64
	flag  bool
	items []Value
	other any
}

// String creates a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Int creates an integer value.
func Int(n int64) Value { return Value{kind: KindInt, num: n} }

// Float creates a floating-point value.
func Float(f float64) Value { return Value{kind: KindFloat, float: f} }

// Bool creates a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

// Other wraps a value that has no native parameter representation.
func Other(v any) Value { return Value{kind: KindOther, other: v} }

// Array creates an array value from the given items.
func Array(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindArray, items: cp}
}

// Strings creates an array of string values.
func Strings(ss ...string) Value {
	items := make([]Value, len(ss))
	for i, s := range ss {
		items[i] = String(s)
	}
	return Value{kind: KindArray, items: items}
}

// Ints creates an array of integer values.
func Ints(ns ...int) Value {
	items := make([]Value, len(ns))
	for i, n := range ns {
		items[i] = Int(int64(n))
	}
	return Value{kind: KindArray, items: items}
}

// Floats creates an array of floating-point values.
func Floats(fs ...float64) Value {
	items := make([]Value, len(fs))
	for i, f := range fs {
		items[i] = Float(f)
	}
	return Value{kind: KindArray, items: items}
}

// Bools creates an array of boolean values.
func Bools(bs ...bool) Value {
	items := make([]Value, len(bs))
	for i, b := range bs {
		items[i] = Bool(b)
	}
	return Value{kind: KindArray, items: items}
}

// Of lifts a dynamic Go value into a Value. Strings, integers, floats,
// booleans and slices of those map onto their native variants; everything
// else becomes an Other value.
func Of(v any) Value {
	switch x := v.(type) {
	case Value:
		return x
	case string:
		return String(x)
	case bool:
		return Bool(x)
	case int:
		return Int(int64(x))
	case int8:
		return Int(int64(x))
	case int16:
		return Int(int64(x))
	case int32:
		return Int(int64(x))
	case int64:
		return Int(x)
	case uint:
		return ofUnsigned(uint64(x), v)
	case uint8:
		return Int(int64(x))
	case uint16:
		return Int(int64(x))
	case uint32:
		return Int(int64(x))
	case uint64:
		return ofUnsigned(x, v)
	case float32:
		return Float(float64(x))
	case float64:
		return Float(x)
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return Int(n)
		}
		if f, err := x.Float64(); err == nil {
			return Float(f)
		}
		return String(x.String())
	case []Value:
		return Array(x...)
	case []string:
		return Strings(x...)
	case []int:
		return Ints(x...)
	case []int64:
		items := make([]Value, len(x))
		for i, n := range x {
			items[i] = Int(n)
		}
		return Value{kind: KindArray, items: items}
	case []float64:
		return Floats(x...)
	case []bool:
		return Bools(x...)
	case []any:
		items := make([]Value, len(x))
		for i, item := range x {
			items[i] = Of(item)
		}
		return Value{kind: KindArray, items: items}
	default:
		return Other(v)
	}
}

func ofUnsigned(n uint64, orig any) Value {
	if n > math.MaxInt64 {
		return Other(orig)
	}
	return Int(int64(n))
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// Items returns the elements of an array value, or nil for scalars.
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.items
}

// Interface returns the underlying Go value.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return v.num
	case KindFloat:
		return v.float
	case KindBool:
		return v.flag
	case KindArray:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Interface()
		}
		return out
	default:
		return v.other
	}
}

// String renders v as text. Booleans render as true/false; use a
// BoolEncoding for policy-aware rendering.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return strconv.FormatInt(v.num, 10)
	case KindFloat:
		return formatFloat(v.float)
	case KindBool:
		return strconv.FormatBool(v.flag)
	case KindArray:
		parts := make([]string, len(v.items))
		for i, item := range v.items {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(v.other)
	}
}

// MarshalJSON encodes v with its native JSON type. Values that cannot be
// represented in JSON fall back to their string form.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindInt:
		return []byte(strconv.FormatInt(v.num, 10)), nil
	case KindFloat:
		if math.IsNaN(v.float) || math.IsInf(v.float, 0) {
			return json.Marshal(formatFloat(v.float))
		}
		return json.Marshal(v.float)
	case KindBool:
		return []byte(strconv.FormatBool(v.flag)), nil
	case KindArray:
		items := v.items
		if items == nil {
			items = []Value{}
		}
		return json.Marshal(items)
	default:
		if b, err := json.Marshal(v.other); err == nil {
			return b, nil
		}
		return json.Marshal(fmt.Sprint(v.other))
	}
}

// scalarKind reports the common kind of an array's items. ok is false for
// empty, mixed or nested arrays.
func (v Value) scalarKind() (Kind, bool) {
	if v.kind != KindArray || len(v.items) == 0 {
		return 0, false
	}
	first := v.items[0].kind
	if first == KindArray || first == KindOther {
		return first, false
	}
	for _, item := range v.items[1:] {
		if item.kind != first {
			return first, false
		}
	}
	return first, true
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Parameters maps parameter names to values.
type Parameters map[string]Value

// Keys returns the parameter names in ascending order.
func (p Parameters) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy of p.
func (p Parameters) Clone() Parameters {
	if p == nil {
		return nil
	}
	cp := make(Parameters, len(p))
	for k, v := range p {
		cp[k] = v
	}
	return cp
}
