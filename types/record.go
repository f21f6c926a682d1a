package types

import (
	"fmt"
)

// Record is an ordered mapping from attribute name to Value. Key order is
// kept as inserted (or as decoded) but carries no meaning for matching.
type Record struct {
	keys   []string
	values map[string]Value
}

// NewRecord returns an empty record
func NewRecord() *Record {
	return &Record{values: make(map[string]Value)}
}

// RecordOf builds a record from alternating key/value arguments. Values go
// through FromInterface. It panics on malformed input and is meant for
// literals in code and tests.
//
//	types.RecordOf("id", 1, "name", "alice")
func RecordOf(kv ...interface{}) *Record {
	if len(kv)%2 != 0 {
		panic("types.RecordOf: odd number of arguments")
	}
	r := NewRecord()
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("types.RecordOf: key %v is not a string", kv[i]))
		}
		r.Set(key, MustValue(kv[i+1]))
	}
	return r
}

// Len returns the number of attributes
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Get returns the value stored under key and whether it exists
func (r *Record) Get(key string) (Value, bool) {
	if r == nil || r.values == nil {
		return Value{}, false
	}
	v, ok := r.values[key]
	return v, ok
}

// Has reports whether the attribute exists (even if null)
func (r *Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Set stores v under key, appending the key if it is new
func (r *Record) Set(key string, v Value) {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Delete removes key; deleting a missing key is a no-op
func (r *Record) Delete(key string) {
	if r == nil || r.values == nil {
		return
	}
	if _, exists := r.values[key]; !exists {
		return
	}
	delete(r.values, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i:i], r.keys[i+1:]...)
			break
		}
	}
}

// Keys returns a copy of the attribute names in order
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Range calls fn for every attribute in order until fn returns false
func (r *Record) Range(fn func(key string, v Value) bool) {
	if r == nil {
		return
	}
	for _, k := range r.keys {
		if !fn(k, r.values[k]) {
			return
		}
	}
}

// Clone returns a deep copy
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := &Record{
		keys:   make([]string, len(r.keys)),
		values: make(map[string]Value, len(r.values)),
	}
	copy(out.keys, r.keys)
	for k, v := range r.values {
		out.values[k] = v.Clone()
	}
	return out
}

// Equal reports whether both records hold the same attributes with equal
// values, regardless of key order.
func (r *Record) Equal(o *Record) bool {
	if r.Len() != o.Len() {
		return false
	}
	for _, k := range r.Keys() {
		ov, ok := o.Get(k)
		if !ok {
			return false
		}
		if !r.values[k].Equal(ov) {
			return false
		}
	}
	return true
}

// Map converts the record to a plain map
func (r *Record) Map() map[string]interface{} {
	out := make(map[string]interface{}, r.Len())
	r.Range(func(k string, v Value) bool {
		out[k] = v.Interface()
		return true
	})
	return out
}

// Merge copies every attribute of src into r, overwriting existing keys
func (r *Record) Merge(src *Record) {
	src.Range(func(k string, v Value) bool {
		r.Set(k, v.Clone())
		return true
	})
}

// CloneRecords deep-copies a collection
func CloneRecords(records []*Record) []*Record {
	out := make([]*Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
