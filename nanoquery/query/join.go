package query

import (
	"strings"

	"github.com/arthur-debert/nanoquery/types"
)

// compiledJoin is a JoinSpec with its child projection resolved
type compiledJoin struct {
	spec    types.JoinSpec
	project *Selection
	// sibling is the join that attached the junction rows this one reads
	sibling *types.JoinSpec
}

// Joiner attaches related records from a dataset to query results
type Joiner struct {
	joins   []compiledJoin
	dataset types.Dataset
}

// NewJoiner validates the join specs and precomputes, for junction joins,
// the sibling spec whose child is the junction collection. Junction-row
// joins must come before the entity join they feed.
func NewJoiner(specs []types.JoinSpec, dataset types.Dataset) (*Joiner, error) {
	byChild := make(map[string]int, len(specs))
	for i, spec := range specs {
		if spec.Child == "" || spec.ChildKey == "" || spec.ParentKey == "" {
			return nil, types.Errorf(types.CodeInvalidJoin,
				"join %d needs child, childKey and parentKey", i)
		}
		if _, seen := byChild[spec.Child]; !seen {
			byChild[spec.Child] = i
		}
	}

	j := &Joiner{joins: make([]compiledJoin, len(specs)), dataset: dataset}
	for i, spec := range specs {
		cj := compiledJoin{spec: spec}
		if spec.Select.Kind() == types.KindList || spec.Select.Kind() == types.KindRecord {
			sel, err := CompileSelect(spec.Select)
			if err != nil {
				return nil, err
			}
			cj.project = sel
		}
		if spec.JunctionTable {
			if k, ok := byChild[spec.Parent]; ok && k != i {
				sibling := specs[k]
				cj.sibling = &sibling
			}
		}
		j.joins[i] = cj
	}
	return j, nil
}

// Resolve runs every join over every record, in spec order, then removes
// the raw child keys the caller did not ask to keep. Records are modified
// in place.
func (j *Joiner) Resolve(records []*types.Record) {
	if j == nil || len(j.joins) == 0 {
		return
	}
	for _, cj := range j.joins {
		for _, rec := range records {
			j.joinOne(cj, rec)
		}
	}
	for _, cj := range j.joins {
		if keep, ok := cj.spec.Select.AsBool(); ok && keep {
			continue
		}
		for _, rec := range records {
			rec.Delete(cj.spec.Child)
		}
	}
}

func (j *Joiner) joinOne(cj compiledJoin, rec *types.Record) {
	spec := cj.spec
	criterion, ok := j.childCriterion(cj, rec)
	if !ok {
		return
	}

	var pred Predicate = literalNode{attr: spec.ChildKey, value: criterion}
	if list, ok := criterion.AsList(); ok {
		pred = inNode{attr: spec.ChildKey, values: list}
	}
	matched := filterRecords(j.dataset[spec.Child], pred)

	if spec.RemoveParentKey {
		rec.Delete(spec.ParentKey)
	}

	children := make([]types.Value, len(matched))
	for i, child := range matched {
		if cj.project != nil {
			children[i] = types.Object(cj.project.Apply(child))
		} else {
			children[i] = types.Object(child.Clone())
		}
	}

	key := aliasKey(spec.Alias, spec.Child)
	switch {
	case spec.JunctionTable:
		rec.Delete(aliasKey(cj.sibling.Alias, cj.sibling.Child))
	case spec.Model:
		key = spec.ParentKey
	}
	rec.Set(key, types.List(children...))
}

// childCriterion builds the value children are matched on. The second
// result is false when the record has nothing to join.
func (j *Joiner) childCriterion(cj compiledJoin, rec *types.Record) (types.Value, bool) {
	spec := cj.spec
	if !spec.JunctionTable {
		v, ok := rec.Get(spec.ParentKey)
		if !ok {
			return types.Value{}, false
		}
		return v, true
	}

	if cj.sibling == nil {
		return types.Value{}, false
	}
	rows, ok := rec.Get(aliasKey(cj.sibling.Alias, cj.sibling.Child))
	if !ok {
		return types.Value{}, false
	}
	list, ok := rows.AsList()
	if !ok {
		return types.Value{}, false
	}
	keys := make([]types.Value, 0, len(list))
	for _, row := range list {
		r, ok := row.AsRecord()
		if !ok {
			continue
		}
		if v, ok := r.Get(spec.ParentKey); ok {
			keys = append(keys, v)
		}
	}
	return types.List(keys...), true
}

// aliasKey is the attribute joined children are attached under
func aliasKey(alias, child string) string {
	return strings.ToLower(alias + "_" + child)
}
