package formats

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/arthur-debert/nanoquery/types"
)

// LoadFile reads one dataset file, choosing the format by extension. A file
// whose top level is an array becomes a single collection named after the
// file (without extension).
func LoadFile(path string) (types.Dataset, error) {
	format, err := ForPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	v, err := format.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	if v.Kind() == types.KindList {
		records, err := types.CollectionFromValue(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return types.Dataset{collectionName(path): records}, nil
	}

	if v.IsNil() {
		return types.Dataset{}, nil
	}
	if err := ValidateShape(v); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	rec, _ := v.AsRecord()
	return types.DatasetFromRecord(rec)
}

// LoadGlob loads every regular file matching pattern (doublestar syntax,
// "**" crosses directories) and merges them in path order. A collection
// present in several files collects the records of all of them.
func LoadGlob(pattern string) (types.Dataset, error) {
	paths, err := Match(pattern)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no dataset files match %q", pattern)
	}

	merged := types.Dataset{}
	for _, path := range paths {
		d, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		for _, name := range d.Names() {
			merged[name] = append(merged[name], d[name]...)
		}
	}
	return merged, nil
}

// Match resolves pattern to the absolute paths of the regular files it
// matches, sorted and without duplicates.
func Match(pattern string) ([]string, error) {
	// Make pattern absolute for consistent paths.
	if !filepath.IsAbs(pattern) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		pattern = filepath.Join(wd, pattern)
	}

	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	seen := make(map[string]bool)
	var result []string
	for _, m := range matches {
		abs, err := filepath.Abs(m)
		if err != nil {
			continue
		}
		info, err := os.Stat(abs)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if !seen[abs] {
			seen[abs] = true
			result = append(result, abs)
		}
	}
	sort.Strings(result)
	return result, nil
}

// IsGlob reports whether path contains glob metacharacters
func IsGlob(path string) bool {
	return strings.ContainsAny(path, "*?[{")
}

func collectionName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
