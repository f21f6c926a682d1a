package testutil

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/arthur-debert/nanoquery/types"
)

// Value decodes a JSON or YAML literal
func Value(t *testing.T, src string) types.Value {
	t.Helper()
	v, err := types.ParseValue([]byte(src))
	if err != nil {
		t.Fatalf("failed to parse %q: %v", src, err)
	}
	return v
}

// Records decodes a JSON or YAML list of objects
func Records(t *testing.T, src string) []*types.Record {
	t.Helper()
	records, err := types.CollectionFromValue(Value(t, src))
	if err != nil {
		t.Fatalf("failed to parse records %q: %v", src, err)
	}
	return records
}

// Record decodes a single JSON or YAML object
func Record(t *testing.T, src string) *types.Record {
	t.Helper()
	r, err := types.ParseRecord([]byte(src))
	if err != nil {
		t.Fatalf("failed to parse record %q: %v", src, err)
	}
	return r
}

// Criteria decodes a criteria dictionary
func Criteria(t *testing.T, src string) types.Criteria {
	t.Helper()
	c, err := types.ParseCriteria([]byte(src))
	if err != nil {
		t.Fatalf("failed to parse criteria %q: %v", src, err)
	}
	return c
}

// Plain converts records to plain maps, the form go-cmp diffs best
func Plain(records []*types.Record) []map[string]interface{} {
	out := make([]map[string]interface{}, len(records))
	for i, r := range records {
		out[i] = r.Map()
	}
	return out
}

// AssertRecords compares records against a JSON list, ignoring key order
func AssertRecords(t *testing.T, got []*types.Record, want string) {
	t.Helper()
	if diff := cmp.Diff(Plain(Records(t, want)), Plain(got)); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

// AssertNames checks the "name" attribute of each record, in order
func AssertNames(t *testing.T, got []*types.Record, want ...string) {
	t.Helper()
	names := make([]string, len(got))
	for i, r := range got {
		v, _ := r.Get("name")
		names[i] = v.String()
	}
	if want == nil {
		want = []string{}
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

// AssertErrorCode checks that err carries the given error code
func AssertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %s, got nil", code)
	}
	var coded *types.Error
	if !errors.As(err, &coded) {
		t.Fatalf("expected a coded error %s, got %T: %v", code, err, err)
	}
	if coded.Code != code {
		t.Errorf("expected error code %s, got %s (%v)", code, coded.Code, err)
	}
}
