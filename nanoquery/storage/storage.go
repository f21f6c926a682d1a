// Package storage persists datasets. A backend loads and saves the whole
// dataset as a single unit, which matches how dataset files are laid out.
package storage

import (
	"github.com/arthur-debert/nanoquery/types"
)

// Storage defines the low-level interface for batch persistence
type Storage interface {
	// Load reads the entire dataset from the backend
	Load() (types.Dataset, error)

	// Save writes the entire dataset to the backend
	Save(d types.Dataset) error

	// Close releases any resources held by the storage
	Close() error
}

// MemoryStorage keeps the dataset in memory. Load and Save copy, so
// callers never share records with the backend.
type MemoryStorage struct {
	data types.Dataset
}

// NewMemoryStorage creates a memory backend seeded with a copy of d
func NewMemoryStorage(d types.Dataset) *MemoryStorage {
	if d == nil {
		d = types.Dataset{}
	}
	return &MemoryStorage{data: d.Clone()}
}

// Load implements Storage.Load
func (m *MemoryStorage) Load() (types.Dataset, error) {
	return m.data.Clone(), nil
}

// Save implements Storage.Save
func (m *MemoryStorage) Save(d types.Dataset) error {
	m.data = d.Clone()
	return nil
}

// Close implements Storage.Close
func (m *MemoryStorage) Close() error {
	return nil
}
