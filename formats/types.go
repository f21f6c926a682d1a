// Package formats reads and writes datasets in the supported file formats.
package formats

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/nanoquery/types"
)

// DatasetFormat defines how datasets are encoded and decoded
type DatasetFormat struct {
	// Name is the format identifier (alphanumeric, dashes, underscores, lowercase)
	Name string

	// Extensions lists the file extensions including the dot (e.g., ".json")
	Extensions []string

	// Encode converts a dataset into the formatted document
	Encode func(d types.Dataset) ([]byte, error)

	// Decode parses a formatted document into a generic value; shape
	// checking and conversion to a dataset happen in Decode below
	Decode func(data []byte) (types.Value, error)
}

// registry holds all available dataset formats
var registry = make(map[string]*DatasetFormat)

// Register adds a new dataset format to the registry
func Register(format *DatasetFormat) error {
	// Validate format name (alphanumeric, dashes, underscores, lowercase)
	if !isValidFormatName(format.Name) {
		return fmt.Errorf("invalid format name %q: must be lowercase alphanumeric with dashes and underscores only", format.Name)
	}
	if format.Encode == nil || format.Decode == nil {
		return fmt.Errorf("format %q must provide both Encode and Decode", format.Name)
	}

	// Normalize extensions
	for i, ext := range format.Extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		format.Extensions[i] = ext
	}

	// Check if format already exists
	if _, exists := registry[format.Name]; exists {
		return fmt.Errorf("format %q already registered", format.Name)
	}

	registry[format.Name] = format
	return nil
}

// Get returns a dataset format by name
func Get(name string) (*DatasetFormat, error) {
	format, exists := registry[strings.ToLower(name)]
	if !exists {
		return nil, fmt.Errorf("unknown format %q", name)
	}
	return format, nil
}

// ForPath picks the format registered for the file's extension
func ForPath(path string) (*DatasetFormat, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, name := range List() {
		format := registry[name]
		for _, candidate := range format.Extensions {
			if candidate == ext {
				return format, nil
			}
		}
	}
	return nil, fmt.Errorf("no format registered for extension %q", ext)
}

// List returns all registered format names, sorted
func List() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Decode parses data with format, checks its shape and builds the dataset
func Decode(format *DatasetFormat, data []byte) (types.Dataset, error) {
	v, err := format.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", format.Name, err)
	}
	if v.IsNil() {
		return types.Dataset{}, nil
	}
	if err := ValidateShape(v); err != nil {
		return nil, err
	}
	rec, _ := v.AsRecord()
	return types.DatasetFromRecord(rec)
}

// isValidFormatName checks if a format name is valid
func isValidFormatName(name string) bool {
	if name == "" {
		return false
	}

	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' && r != '_' {
			return false
		}
	}
	return true
}
