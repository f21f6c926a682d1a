package types

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRecordKeyOrder(t *testing.T) {
	r := NewRecord()
	r.Set("b", Int(1))
	r.Set("a", Int(2))
	r.Set("c", Int(3))
	r.Set("b", Int(4))

	if diff := cmp.Diff([]string{"b", "a", "c"}, r.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	if v, _ := r.Get("b"); !v.Equal(Int(4)) {
		t.Errorf("overwrite lost: got %v", v)
	}

	r.Delete("a")
	r.Delete("missing")
	if diff := cmp.Diff([]string{"b", "c"}, r.Keys()); diff != "" {
		t.Errorf("keys after delete mismatch (-want +got):\n%s", diff)
	}

	r.Set("a", Null())
	if !r.Has("a") {
		t.Error("null attribute should still be present")
	}
	if diff := cmp.Diff([]string{"b", "c", "a"}, r.Keys()); diff != "" {
		t.Errorf("re-added key should go last (-want +got):\n%s", diff)
	}
}

func TestRecordNil(t *testing.T) {
	var r *Record
	if r.Len() != 0 || r.Has("x") || r.Keys() != nil {
		t.Error("nil record should behave as empty")
	}
	r.Delete("x")
	if r.Clone() != nil {
		t.Error("clone of nil should be nil")
	}
}

func TestRecordEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b *Record
		want bool
	}{
		{"same order", RecordOf("x", 1, "y", "a"), RecordOf("x", 1, "y", "a"), true},
		{"different order", RecordOf("x", 1, "y", "a"), RecordOf("y", "a", "x", 1), true},
		{"different value", RecordOf("x", 1), RecordOf("x", 2), false},
		{"different kind", RecordOf("x", 1), RecordOf("x", "1"), false},
		{"missing key", RecordOf("x", 1, "y", 2), RecordOf("x", 1, "z", 2), false},
		{"extra key", RecordOf("x", 1), RecordOf("x", 1, "y", nil), false},
		{"nested", RecordOf("n", RecordOf("a", []interface{}{1, 2})), RecordOf("n", RecordOf("a", []interface{}{1, 2})), true},
		{"both empty", NewRecord(), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecordCloneIsDeep(t *testing.T) {
	inner := RecordOf("city", "Lisbon")
	orig := RecordOf("name", "Alice", "address", inner, "tags", []interface{}{"a", "b"})

	clone := orig.Clone()
	inner.Set("city", String("Porto"))
	orig.Set("name", String("Alicia"))

	addr, _ := clone.Get("address")
	rec, _ := addr.AsRecord()
	if city, _ := rec.Get("city"); !city.Equal(String("Lisbon")) {
		t.Errorf("nested record shared with clone: city = %v", city)
	}
	if name, _ := clone.Get("name"); !name.Equal(String("Alice")) {
		t.Errorf("clone changed with original: name = %v", name)
	}
}

func TestRecordMerge(t *testing.T) {
	r := RecordOf("id", 1, "name", "Alice")
	r.Merge(RecordOf("name", "Alicia", "age", 30))

	if diff := cmp.Diff([]string{"id", "name", "age"}, r.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	want := map[string]interface{}{"id": 1.0, "name": "Alicia", "age": 30.0}
	if diff := cmp.Diff(want, r.Map()); diff != "" {
		t.Errorf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordJSON(t *testing.T) {
	input := `{"zeta":1,"alpha":{"d":true,"c":null},"list":[1.5,"x"]}`

	var r Record
	if err := json.Unmarshal([]byte(input), &r); err != nil {
		t.Fatal(err)
	}
	out, err := json.Marshal(&r)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != input {
		t.Errorf("order not kept:\n got %s\nwant %s", out, input)
	}
}
