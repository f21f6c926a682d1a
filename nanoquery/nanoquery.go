// Package nanoquery runs declarative criteria (where, sort, skip, limit,
// select and joins) over in-memory collections of schemaless records.
//
// A query never modifies the records it is given. Besides the projected
// results it reports, for every result, the position of the source record
// in its collection, so callers can patch the underlying store.
package nanoquery

import (
	"fmt"

	"github.com/arthur-debert/nanoquery/internal/validation"
	"github.com/arthur-debert/nanoquery/nanoquery/query"
	"github.com/arthur-debert/nanoquery/types"
)

// Record is an ordered attribute map
type Record = types.Record

// Value is a dynamically typed attribute value
type Value = types.Value

// Dataset maps collection names to records
type Dataset = types.Dataset

// Criteria is the where/sort/skip/limit/select/joins dictionary
type Criteria = types.Criteria

// JoinSpec describes one relationship hop
type JoinSpec = types.JoinSpec

// Result holds the projected records and their original indices
type Result = query.Result

// ParseCriteria decodes a JSON or YAML criteria dictionary
func ParseCriteria(data []byte) (Criteria, error) {
	return types.ParseCriteria(data)
}

// Query evaluates criteria over records. Joins resolve against an empty
// dataset; use QueryCollection to join across collections.
func Query(records []*Record, criteria Criteria) (*Result, error) {
	return run(records, criteria, Dataset{})
}

// QueryCollection evaluates criteria over the collection called name.
// Joins resolve against the whole dataset. schema is accepted for
// compatibility with callers that pass one and is not enforced. An unknown
// collection yields an empty result.
func QueryCollection(name string, dataset Dataset, criteria Criteria, schema interface{}) (*Result, error) {
	return run(dataset[name], criteria, dataset)
}

func run(records []*Record, criteria Criteria, dataset Dataset) (*Result, error) {
	if err := ValidateWhereClause(criteria.Where); err != nil {
		return nil, err
	}
	if err := ValidateSortClause(criteria.Sort); err != nil {
		return nil, err
	}
	return query.Run(records, criteria, dataset)
}

// Where returns deep copies of the records matching where, in order
func Where(records []*Record, where Value) ([]*Record, error) {
	pred, err := query.Compile(where)
	if err != nil {
		return nil, fmt.Errorf("where: %w", err)
	}
	return query.Records(query.Filter(query.NewTuples(records), pred)), nil
}

// Sort returns deep copies of records ordered by sort. Records without a
// value for a key come last in either direction; ties keep input order.
func Sort(records []*Record, sort Value) ([]*Record, error) {
	keys, err := query.CompileSort(sort)
	if err != nil {
		return nil, fmt.Errorf("sort: %w", err)
	}
	tuples := query.NewTuples(records)
	query.SortTuples(tuples, keys)
	return query.Records(tuples), nil
}

// Skip drops the first n records. n <= 0 is a no-op.
func Skip(records []*Record, n int) []*Record {
	return query.Skip(records, n)
}

// Limit keeps the first n records. n <= 0 means no limit.
func Limit(records []*Record, n int) []*Record {
	return query.Limit(records, n)
}

// Select returns projected copies of records
func Select(records []*Record, sel Value) ([]*Record, error) {
	selection, err := query.CompileSelect(sel)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	if selection == nil {
		return types.CloneRecords(records), nil
	}
	return selection.ApplyAll(records), nil
}

// Explain renders criteria as the equivalent SQL SELECT over table
func Explain(table string, criteria Criteria) (string, []interface{}, error) {
	return query.Explain(table, criteria)
}

// ValidateSortClause rejects array, empty-string and other non-dictionary
// sort clauses with E_SORT_CLAUSE_UNPARSEABLE
func ValidateSortClause(sort Value) error {
	return validation.ValidateSortClause(sort)
}

// ValidateWhereClause rejects where clauses that are not dictionaries, and
// malformed and/or/not keys, with E_WHERE_CLAUSE_UNPARSEABLE
func ValidateWhereClause(where Value) error {
	return validation.ValidateWhereClause(where)
}
