package validation_test

import (
	"testing"

	"github.com/arthur-debert/nanoquery/internal/validation"
	"github.com/arthur-debert/nanoquery/testutil"
	"github.com/arthur-debert/nanoquery/types"
)

func TestValidateSortClause(t *testing.T) {
	tests := []struct {
		name    string
		clause  string
		wantErr bool
	}{
		{"absent", ``, false},
		{"null", `null`, false},
		{"dictionary", `{"name": 1, "age": -1}`, false},
		{"string", `"name desc"`, false},
		{"array", `["name"]`, true},
		{"empty array", `[]`, true},
		{"empty string", `""`, true},
		{"number", `1`, true},
		{"boolean", `true`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.ValidateSortClause(testutil.Value(t, tt.clause))
			if tt.wantErr {
				testutil.AssertErrorCode(t, err, types.CodeSortClauseUnparseable)
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateWhereClause(t *testing.T) {
	tests := []struct {
		name    string
		clause  string
		wantErr bool
	}{
		{"absent", ``, false},
		{"null", `null`, false},
		{"empty string", `""`, false},
		{"empty object", `{}`, false},
		{"literal", `{"name": "a"}`, false},
		{"operators are not checked", `{"age": {"between": 1}}`, false},
		{"composites", `{"or": [{"a": 1}, {"not": {"b": 2}}], "AND": [null]}`, false},
		{"array", `[{"name": "a"}]`, true},
		{"string", `"name = a"`, true},
		{"number", `3`, true},
		{"or without list", `{"or": {"a": 1}}`, true},
		{"and with scalar", `{"and": ["a"]}`, true},
		{"not with list", `{"not": [{"a": 1}]}`, true},
		{"deeply nested", `{"or": [{"and": [{"not": 5}]}]}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.ValidateWhereClause(testutil.Value(t, tt.clause))
			if tt.wantErr {
				testutil.AssertErrorCode(t, err, types.CodeWhereClauseUnparseable)
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateRecord(t *testing.T) {
	tests := []struct {
		name    string
		record  string
		wantErr bool
	}{
		{"plain", `{"name": "a", "age": 3}`, false},
		{"nested", `{"dad": {"name": "b"}}`, false},
		{"splat key", `{"*": 1}`, true},
		{"control key", `{"OR": 1}`, true},
		{"empty key", `{"": 1}`, true},
		{"nested reserved", `{"dad": {"not": 1}}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.ValidateRecord(testutil.Record(t, tt.record))
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRecord() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCollectionName(t *testing.T) {
	for _, name := range []string{"users", "user_roles"} {
		if err := validation.ValidateCollectionName(name); err != nil {
			t.Errorf("%q should be valid: %v", name, err)
		}
	}
	for _, name := range []string{"", " ", "a/b", `a\b`} {
		if err := validation.ValidateCollectionName(name); err == nil {
			t.Errorf("%q should be rejected", name)
		}
	}
}
