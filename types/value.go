package types

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds
type Kind int

const (
	// KindUndefined is the zero Value: nothing was supplied
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindList
	KindRecord
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindRecord:
		return "record"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a schemaless attribute value: null, bool, number, string,
// a list of values or a nested record. The zero Value is undefined.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	list []Value
	rec  *Record
}

// Null returns the null value
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number wraps a float64
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// Int wraps an int as a number
func Int(i int) Value { return Value{kind: KindNumber, n: float64(i)} }

// String wraps a string
func String(s string) Value { return Value{kind: KindString, s: s} }

// List wraps a sequence of values
func List(vs ...Value) Value {
	if vs == nil {
		vs = []Value{}
	}
	return Value{kind: KindList, list: vs}
}

// Object wraps a record. A nil record becomes null.
func Object(r *Record) Value {
	if r == nil {
		return Null()
	}
	return Value{kind: KindRecord, rec: r}
}

// Kind reports the variant held by v
func (v Value) Kind() Kind { return v.kind }

// IsDefined reports whether a value was supplied at all
func (v Value) IsDefined() bool { return v.kind != KindUndefined }

// IsNil reports whether v is undefined or null
func (v Value) IsNil() bool { return v.kind == KindUndefined || v.kind == KindNull }

func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

func (v Value) AsNumber() (float64, bool) { return v.n, v.kind == KindNumber }

func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsList returns the underlying slice; callers must not modify it
func (v Value) AsList() ([]Value, bool) { return v.list, v.kind == KindList }

// AsRecord returns the underlying record; callers must not modify it
func (v Value) AsRecord() (*Record, bool) { return v.rec, v.kind == KindRecord }

// Truthy follows the usual dynamic-language rules: undefined, null, false,
// 0, NaN and "" are falsy, everything else is truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n != 0 && !math.IsNaN(v.n)
	case KindString:
		return v.s != ""
	case KindList, KindRecord:
		return true
	default:
		return false
	}
}

// Clone returns a deep copy of v
func (v Value) Clone() Value {
	switch v.kind {
	case KindList:
		out := make([]Value, len(v.list))
		for i, e := range v.list {
			out[i] = e.Clone()
		}
		return Value{kind: KindList, list: out}
	case KindRecord:
		return Value{kind: KindRecord, rec: v.rec.Clone()}
	default:
		return v
	}
}

// String returns the loose string form used for comparisons: numbers in
// shortest decimal form, booleans as true/false, null and undefined as "",
// lists comma-joined and records as compact JSON.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return FormatNumber(v.n)
	case KindString:
		return v.s
	case KindList:
		parts := make([]string, len(v.list))
		for i, e := range v.list {
			parts[i] = e.String()
		}
		return strings.Join(parts, ",")
	case KindRecord:
		data, err := json.Marshal(v.rec)
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return ""
	}
}

// FormatNumber renders a number the way it is written in JSON
func FormatNumber(n float64) string {
	if math.IsInf(n, 1) {
		return "Infinity"
	}
	if math.IsInf(n, -1) {
		return "-Infinity"
	}
	if math.IsNaN(n) {
		return "NaN"
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// Equal reports structural equality
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.n == o.n
	case KindString:
		return v.s == o.s
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case KindRecord:
		return v.rec.Equal(o.rec)
	default:
		return true
	}
}

// Interface converts v back to plain Go values: nil, bool, float64, string,
// []interface{} and map[string]interface{}.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindList:
		out := make([]interface{}, len(v.list))
		for i, e := range v.list {
			out[i] = e.Interface()
		}
		return out
	case KindRecord:
		return v.rec.Map()
	default:
		return nil
	}
}

// FromInterface converts plain Go values (as produced by encoding/json,
// yaml.v3 or msgpack) into a Value. Map keys are sorted since Go maps carry
// no order; use Record decoding to keep source order.
func FromInterface(x interface{}) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case *Record:
		return Object(t), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", t, err)
		}
		return Number(f), nil
	case int:
		return Number(float64(t)), nil
	case int8:
		return Number(float64(t)), nil
	case int16:
		return Number(float64(t)), nil
	case int32:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case uint:
		return Number(float64(t)), nil
	case uint8:
		return Number(float64(t)), nil
	case uint16:
		return Number(float64(t)), nil
	case uint32:
		return Number(float64(t)), nil
	case uint64:
		return Number(float64(t)), nil
	case float32:
		return Number(float64(t)), nil
	case float64:
		return Number(t), nil
	case []Value:
		return List(t...), nil
	case []string:
		out := make([]Value, len(t))
		for i, s := range t {
			out[i] = String(s)
		}
		return List(out...), nil
	case []interface{}:
		out := make([]Value, len(t))
		for i, e := range t {
			ev, err := FromInterface(e)
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = ev
		}
		return List(out...), nil
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		rec := NewRecord()
		for _, k := range keys {
			ev, err := FromInterface(t[k])
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", k, err)
			}
			rec.Set(k, ev)
		}
		return Object(rec), nil
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, e := range t {
			m[fmt.Sprintf("%v", k)] = e
		}
		return FromInterface(m)
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", x)
	}
}

// MustValue is FromInterface for literals known to be valid; it panics otherwise
func MustValue(x interface{}) Value {
	v, err := FromInterface(x)
	if err != nil {
		panic(err)
	}
	return v
}
