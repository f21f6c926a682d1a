package query

import (
	"fmt"

	"github.com/arthur-debert/nanoquery/types"
)

// Result is the outcome of a query: the projected records and, for each of
// them, its position in the source collection.
type Result struct {
	Results []*types.Record
	Indices []int
}

// Plan is a compiled criteria, ready to run against any collection
type Plan struct {
	Where  Predicate
	Sort   []SortKey
	Skip   int
	Limit  int
	Select *Selection
	Joins  []types.JoinSpec
}

// Prepare compiles every clause of c. Nothing is evaluated until Run.
func Prepare(c types.Criteria) (*Plan, error) {
	where, err := Compile(c.Where)
	if err != nil {
		return nil, fmt.Errorf("where: %w", err)
	}
	keys, err := CompileSort(c.Sort)
	if err != nil {
		return nil, fmt.Errorf("sort: %w", err)
	}
	sel, err := CompileSelect(c.Select)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	return &Plan{
		Where:  where,
		Sort:   keys,
		Skip:   c.Skip,
		Limit:  c.Limit,
		Select: sel,
		Joins:  c.Joins,
	}, nil
}

// Run executes filter, sort, skip and limit over tuples, captures the
// surviving original indices, then resolves joins against dataset and
// projects. tuples are consumed; callers build them with NewTuples.
func (p *Plan) Run(tuples []Tuple, dataset types.Dataset) (*Result, error) {
	joiner, err := NewJoiner(p.Joins, dataset)
	if err != nil {
		return nil, fmt.Errorf("joins: %w", err)
	}

	tuples = Filter(tuples, p.Where)
	SortTuples(tuples, p.Sort)
	tuples = Skip(tuples, p.Skip)
	tuples = Limit(tuples, p.Limit)

	indices := Indices(tuples)
	records := Records(tuples)
	joiner.Resolve(records)

	return &Result{
		Results: p.Select.ApplyAll(records),
		Indices: indices,
	}, nil
}

// Run compiles c and evaluates it over a deep copy of records
func Run(records []*types.Record, c types.Criteria, dataset types.Dataset) (*Result, error) {
	plan, err := Prepare(c)
	if err != nil {
		return nil, err
	}
	return plan.Run(NewTuples(records), dataset)
}
