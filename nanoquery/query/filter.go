package query

import "github.com/arthur-debert/nanoquery/types"

// Tuple pairs a working copy of a record with its position in the source
// collection
type Tuple struct {
	Index  int
	Record *types.Record
}

// NewTuples deep-copies a collection and numbers each record by position
func NewTuples(records []*types.Record) []Tuple {
	tuples := make([]Tuple, len(records))
	for i, r := range records {
		rec := r.Clone()
		if rec == nil {
			rec = types.NewRecord()
		}
		tuples[i] = Tuple{Index: i, Record: rec}
	}
	return tuples
}

// Records extracts the records of a tuple slice
func Records(tuples []Tuple) []*types.Record {
	out := make([]*types.Record, len(tuples))
	for i, t := range tuples {
		out[i] = t.Record
	}
	return out
}

// Indices extracts the original positions of a tuple slice
func Indices(tuples []Tuple) []int {
	out := make([]int, len(tuples))
	for i, t := range tuples {
		out[i] = t.Index
	}
	return out
}

// Filter keeps the tuples whose record matches pred, in order
func Filter(tuples []Tuple, pred Predicate) []Tuple {
	if pred == nil {
		return tuples
	}
	if _, all := pred.(matchAll); all {
		return tuples
	}
	result := make([]Tuple, 0, len(tuples))
	for _, t := range tuples {
		if pred.Matches(t.Record) {
			result = append(result, t)
		}
	}
	return result
}

// filterRecords is Filter for plain record slices
func filterRecords(records []*types.Record, pred Predicate) []*types.Record {
	result := make([]*types.Record, 0, len(records))
	for _, r := range records {
		if pred.Matches(r) {
			result = append(result, r)
		}
	}
	return result
}
