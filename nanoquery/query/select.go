package query

import (
	"sort"

	"github.com/arthur-debert/nanoquery/types"
)

// splatKey turns a select dictionary into exclusion mode
const splatKey = "*"

// Selection is a compiled select clause. A nil Selection is the identity.
type Selection struct {
	// splat keeps every attribute except those in exclude
	splat   bool
	include map[string]bool
	exclude map[string]bool
	nested  map[string]*Selection
}

// CompileSelect reads a select clause. Anything that is not a list, a
// dictionary or the "*" wildcard selects everything unchanged.
func CompileSelect(clause types.Value) (*Selection, error) {
	switch clause.Kind() {
	case types.KindString:
		if s, _ := clause.AsString(); s == splatKey {
			return &Selection{splat: true}, nil
		}
		return nil, nil
	case types.KindList:
		list, _ := clause.AsList()
		sel := &Selection{include: make(map[string]bool, len(list))}
		for _, item := range list {
			if !item.IsDefined() || item.IsNil() {
				continue
			}
			sel.include[item.String()] = true
		}
		return sel, nil
	case types.KindRecord:
		rec, _ := clause.AsRecord()
		return compileSelectRecord(rec)
	}
	return nil, nil
}

func compileSelectRecord(rec *types.Record) (*Selection, error) {
	sel := &Selection{}
	if v, ok := rec.Get(splatKey); ok && v.Truthy() {
		sel.splat = true
	}
	var err error
	rec.Range(func(attr string, v types.Value) bool {
		if attr == splatKey {
			return true
		}
		switch v.Kind() {
		case types.KindRecord, types.KindList:
			var sub *Selection
			sub, err = CompileSelect(v)
			if err != nil {
				return false
			}
			if sel.nested == nil {
				sel.nested = make(map[string]*Selection)
			}
			sel.nested[attr] = sub
			sel.keep(attr)
		default:
			if v.Truthy() {
				sel.keep(attr)
			} else if sel.splat {
				if sel.exclude == nil {
					sel.exclude = make(map[string]bool)
				}
				sel.exclude[attr] = true
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return sel, nil
}

func (s *Selection) keep(attr string) {
	if s.splat {
		return
	}
	if s.include == nil {
		s.include = make(map[string]bool)
	}
	s.include[attr] = true
}

// Apply returns a pruned copy of r. The input record is left untouched.
func (s *Selection) Apply(r *types.Record) *types.Record {
	if s == nil || r == nil {
		return r.Clone()
	}
	out := types.NewRecord()
	r.Range(func(attr string, v types.Value) bool {
		if s.splat {
			if s.exclude[attr] {
				return true
			}
		} else if !s.include[attr] {
			return true
		}
		if sub, ok := s.nested[attr]; ok && sub != nil {
			v = sub.applyValue(v)
		} else {
			v = v.Clone()
		}
		out.Set(attr, v)
		return true
	})
	return out
}

// applyValue projects a nested attribute: each record of a list, or a
// single record as if it were a one-element list. Scalars pass through.
func (s *Selection) applyValue(v types.Value) types.Value {
	switch v.Kind() {
	case types.KindList:
		list, _ := v.AsList()
		out := make([]types.Value, len(list))
		for i, item := range list {
			if rec, ok := item.AsRecord(); ok {
				out[i] = types.Object(s.Apply(rec))
			} else {
				out[i] = item.Clone()
			}
		}
		return types.List(out...)
	case types.KindRecord:
		rec, _ := v.AsRecord()
		return types.Object(s.Apply(rec))
	}
	return v.Clone()
}

// ApplyAll projects every record
func (s *Selection) ApplyAll(records []*types.Record) []*types.Record {
	if s == nil {
		return records
	}
	out := make([]*types.Record, len(records))
	for i, r := range records {
		out[i] = s.Apply(r)
	}
	return out
}

// Columns lists the attributes an inclusion selection keeps, sorted. Splat
// selections return nil.
func (s *Selection) Columns() []string {
	if s == nil || s.splat {
		return nil
	}
	cols := make([]string, 0, len(s.include))
	for attr := range s.include {
		cols = append(cols, attr)
	}
	sort.Strings(cols)
	return cols
}
