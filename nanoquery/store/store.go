// Package store is a small document store over a dataset backend. Reads
// run the query engine against the loaded dataset; writes locate their
// targets through the original indices a query reports and patch the
// collection in place before saving it back.
package store

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/arthur-debert/nanoquery/internal/validation"
	"github.com/arthur-debert/nanoquery/nanoquery"
	"github.com/arthur-debert/nanoquery/nanoquery/storage"
	"github.com/arthur-debert/nanoquery/types"
)

// IDField is the attribute Create fills when a record has none
const IDField = "id"

// Store runs find/count/create/update/destroy over a storage backend
type Store struct {
	backend storage.Storage
	locks   *storage.LockManager
	logger  *slog.Logger
	newID   func() string
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger operations are reported to at Debug level
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithIDFunc replaces the uuid generator used by Create
func WithIDFunc(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

// New creates a store over backend
func New(backend storage.Storage, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		locks:   storage.NewLockManager(),
		logger:  slog.Default(),
		newID:   func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close releases the backend
func (s *Store) Close() error {
	return s.backend.Close()
}

// Collections returns the collection names with their record counts
func (s *Store) Collections() (map[string]int, error) {
	counts := map[string]int{}
	err := s.locks.Execute(storage.ReadOperation, func() error {
		d, err := s.backend.Load()
		if err != nil {
			return err
		}
		for name, records := range d {
			counts[name] = len(records)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// Find runs criteria over collection; joins resolve against the whole dataset
func (s *Store) Find(collection string, criteria types.Criteria) (*nanoquery.Result, error) {
	var result *nanoquery.Result
	err := s.locks.Execute(storage.ReadOperation, func() error {
		d, err := s.backend.Load()
		if err != nil {
			return err
		}
		result, err = nanoquery.QueryCollection(collection, d, criteria, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("find", "collection", collection, "results", len(result.Results))
	return result, nil
}

// Count returns how many records of collection match where
func (s *Store) Count(collection string, where types.Value) (int, error) {
	result, err := s.Find(collection, types.Criteria{Where: where})
	if err != nil {
		return 0, err
	}
	return len(result.Indices), nil
}

// Create appends a copy of record to collection, assigning an id when the
// record has none, and returns the stored copy.
func (s *Store) Create(collection string, record *types.Record) (*types.Record, error) {
	if err := validation.ValidateCollectionName(collection); err != nil {
		return nil, err
	}
	if record == nil {
		record = types.NewRecord()
	}
	if err := validation.ValidateRecord(record); err != nil {
		return nil, err
	}

	created := record.Clone()
	if v, ok := created.Get(IDField); !ok || v.IsNil() {
		created.Set(IDField, types.String(s.newID()))
	}

	err := s.locks.Execute(storage.WriteOperation, func() error {
		d, err := s.backend.Load()
		if err != nil {
			return err
		}
		d[collection] = append(d[collection], created.Clone())
		return s.backend.Save(d)
	})
	if err != nil {
		return nil, fmt.Errorf("create in %s: %w", collection, err)
	}

	id, _ := created.Get(IDField)
	s.logger.Debug("create", "collection", collection, "id", id.String())
	return created, nil
}

// Update merges changes into every record criteria selects (where, sort,
// skip and limit apply; select and joins are ignored) and returns the
// updated records.
func (s *Store) Update(collection string, criteria types.Criteria, changes *types.Record) ([]*types.Record, error) {
	if err := validation.ValidateRecord(changes); err != nil {
		return nil, err
	}

	var updated []*types.Record
	err := s.locks.Execute(storage.WriteOperation, func() error {
		d, indices, err := s.locate(collection, criteria)
		if err != nil || len(indices) == 0 {
			return err
		}
		records := d[collection]
		for _, i := range indices {
			records[i].Merge(changes)
			updated = append(updated, records[i].Clone())
		}
		return s.backend.Save(d)
	})
	if err != nil {
		return nil, fmt.Errorf("update in %s: %w", collection, err)
	}

	s.logger.Debug("update", "collection", collection, "updated", len(updated))
	return updated, nil
}

// Destroy removes every record criteria selects and returns them
func (s *Store) Destroy(collection string, criteria types.Criteria) ([]*types.Record, error) {
	var removed []*types.Record
	err := s.locks.Execute(storage.WriteOperation, func() error {
		d, indices, err := s.locate(collection, criteria)
		if err != nil || len(indices) == 0 {
			return err
		}

		drop := make(map[int]bool, len(indices))
		for _, i := range indices {
			drop[i] = true
		}
		sort.Ints(indices)
		for _, i := range indices {
			removed = append(removed, d[collection][i])
		}

		kept := make([]*types.Record, 0, len(d[collection])-len(drop))
		for i, r := range d[collection] {
			if !drop[i] {
				kept = append(kept, r)
			}
		}
		d[collection] = kept
		return s.backend.Save(d)
	})
	if err != nil {
		return nil, fmt.Errorf("destroy in %s: %w", collection, err)
	}

	s.logger.Debug("destroy", "collection", collection, "removed", len(removed))
	return removed, nil
}

// locate loads the dataset and returns the original indices criteria selects
func (s *Store) locate(collection string, criteria types.Criteria) (types.Dataset, []int, error) {
	d, err := s.backend.Load()
	if err != nil {
		return nil, nil, err
	}
	criteria.Select = types.Value{}
	criteria.Joins = nil
	result, err := nanoquery.QueryCollection(collection, d, criteria, nil)
	if err != nil {
		return nil, nil, err
	}
	return d, result.Indices, nil
}
