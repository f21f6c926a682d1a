package formats

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/arthur-debert/nanoquery/types"
)

func stubFormat(name string, exts ...string) *DatasetFormat {
	return &DatasetFormat{
		Name:       name,
		Extensions: exts,
		Encode:     func(d types.Dataset) ([]byte, error) { return nil, nil },
		Decode:     func(data []byte) (types.Value, error) { return types.Null(), nil },
	}
}

func TestRegister(t *testing.T) {
	// Save original registry
	originalRegistry := registry
	defer func() { registry = originalRegistry }()

	// Clear registry for testing
	registry = make(map[string]*DatasetFormat)

	tests := []struct {
		name      string
		format    *DatasetFormat
		wantError bool
		errorMsg  string
	}{
		{
			name:   "valid format",
			format: stubFormat("test-format", ".test"),
		},
		{
			name:      "invalid name with uppercase",
			format:    stubFormat("TestFormat", ".test"),
			wantError: true,
			errorMsg:  "invalid format name",
		},
		{
			name:      "invalid name with special chars",
			format:    stubFormat("test@format", ".test"),
			wantError: true,
			errorMsg:  "invalid format name",
		},
		{
			name:      "empty name",
			format:    stubFormat("", ".test"),
			wantError: true,
			errorMsg:  "invalid format name",
		},
		{
			name:      "missing codec",
			format:    &DatasetFormat{Name: "half", Extensions: []string{".half"}},
			wantError: true,
			errorMsg:  "must provide both",
		},
		{
			name:   "extension without dot",
			format: stubFormat("test-format-2", "TST"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Register(tt.format)

			if tt.wantError {
				if err == nil {
					t.Errorf("expected error but got none")
				} else if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("expected error containing %q, got %q", tt.errorMsg, err.Error())
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			for _, ext := range tt.format.Extensions {
				if !strings.HasPrefix(ext, ".") || strings.ToLower(ext) != ext {
					t.Errorf("extension not normalized: %q", ext)
				}
			}
		})
	}

	t.Run("duplicate format", func(t *testing.T) {
		format := stubFormat("duplicate", ".dup")
		if err := Register(format); err != nil {
			t.Fatalf("first registration failed: %v", err)
		}

		err := Register(format)
		if err == nil {
			t.Error("expected error for duplicate registration")
		} else if !strings.Contains(err.Error(), "already registered") {
			t.Errorf("expected 'already registered' error, got %q", err.Error())
		}
	})
}

func TestGetAndForPath(t *testing.T) {
	for _, name := range []string{"json", "yaml", "msgpack", "YAML"} {
		if _, err := Get(name); err != nil {
			t.Errorf("Get(%q): %v", name, err)
		}
	}
	if _, err := Get("nonexistent"); err == nil {
		t.Error("expected error for unknown format")
	}

	tests := []struct {
		path string
		want string
	}{
		{"data.json", "json"},
		{"/tmp/data.YML", "yaml"},
		{"data.yaml", "yaml"},
		{"dump.mpk", "msgpack"},
		{"dump.msgpack", "msgpack"},
	}
	for _, tt := range tests {
		format, err := ForPath(tt.path)
		if err != nil {
			t.Errorf("ForPath(%q): %v", tt.path, err)
			continue
		}
		if format.Name != tt.want {
			t.Errorf("ForPath(%q) = %s, want %s", tt.path, format.Name, tt.want)
		}
	}
	if _, err := ForPath("notes.txt"); err == nil {
		t.Error("expected error for unregistered extension")
	}
}

func TestList(t *testing.T) {
	originalRegistry := registry
	defer func() { registry = originalRegistry }()

	registry = make(map[string]*DatasetFormat)
	registry["format2"] = stubFormat("format2")
	registry["format1"] = stubFormat("format1")

	if diff := cmp.Diff([]string{"format1", "format2"}, List()); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}

func TestIsValidFormatName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"lowercase letters", "test", true},
		{"with numbers", "test123", true},
		{"with dash", "test-format", true},
		{"with underscore", "test_format", true},
		{"empty", "", false},
		{"uppercase", "Test", false},
		{"space", "test format", false},
		{"dot", "test.format", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isValidFormatName(tt.input); got != tt.want {
				t.Errorf("isValidFormatName(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
