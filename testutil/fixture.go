// Package testutil holds the shared dataset fixture and assertion helpers
// used across package tests.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/arthur-debert/nanoquery/types"
)

// UniverseData provides typed access to the test fixture data
type UniverseData struct {
	// Dataset holds every collection, as decoded from universe.json
	Dataset types.Dataset

	// users, in file order
	Alice *types.Record // index 0: admin, two friends, dad Adam
	Bob   *types.Record // index 1: lowercase name, age stored as "25"
	Carol *types.Record // index 2: no friends, dad null
	Dave  *types.Record // index 3: no age, email null

	// Path of the fixture file
	Path string
}

// FixturePath returns the absolute path of universe.json
func FixturePath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "testdata", "universe.json")
}

// LoadUniverse decodes the fixture. Every call returns fresh records, so
// tests may modify them freely.
func LoadUniverse(t *testing.T) *UniverseData {
	t.Helper()

	path := FixturePath()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture file: %v", err)
	}
	dataset, err := types.ParseDataset(data)
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}

	users := dataset["users"]
	if len(users) != 4 {
		t.Fatalf("fixture should hold 4 users, got %d", len(users))
	}
	return &UniverseData{
		Dataset: dataset,
		Alice:   users[0],
		Bob:     users[1],
		Carol:   users[2],
		Dave:    users[3],
		Path:    path,
	}
}

// Users returns the users collection
func (u *UniverseData) Users() []*types.Record {
	return u.Dataset["users"]
}

// CopyFixture copies universe.json into dir and returns the new path
func CopyFixture(t *testing.T, dir string) string {
	t.Helper()
	data, err := os.ReadFile(FixturePath())
	if err != nil {
		t.Fatalf("failed to read fixture file: %v", err)
	}
	path := filepath.Join(dir, "universe.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to copy fixture: %v", err)
	}
	return path
}
