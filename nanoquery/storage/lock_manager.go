package storage

import (
	"sync"
)

// OperationType defines whether an operation is read or write
type OperationType int

const (
	// ReadOperation indicates an operation that only reads data.
	// Multiple read operations can proceed concurrently.
	ReadOperation OperationType = iota

	// WriteOperation indicates an operation that modifies data.
	// Write operations are exclusive.
	WriteOperation
)

// LockManager serializes in-process access to a storage backend: reads
// share an RLock, writes hold the exclusive lock across their whole
// load-modify-save cycle.
type LockManager struct {
	mu *sync.RWMutex
}

// NewLockManager creates a new lock manager instance
func NewLockManager() *LockManager {
	return &LockManager{
		mu: &sync.RWMutex{},
	}
}

// Execute runs fn under the lock matching opType
//
//	err := locks.Execute(storage.WriteOperation, func() error {
//	    d, err := backend.Load()
//	    ...
//	    return backend.Save(d)
//	})
func (lm *LockManager) Execute(opType OperationType, fn func() error) error {
	switch opType {
	case ReadOperation:
		lm.mu.RLock()
		defer lm.mu.RUnlock()
	case WriteOperation:
		lm.mu.Lock()
		defer lm.mu.Unlock()
	}
	return fn()
}
