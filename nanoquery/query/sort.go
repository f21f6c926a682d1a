package query

import (
	"sort"
	"strings"

	"github.com/arthur-debert/nanoquery/types"
)

// SortKey is one term of a sort clause
type SortKey struct {
	Attr       string
	Descending bool
}

// CompileSort reads a sort clause into ordered keys. The clause is a
// dictionary of attribute to direction (a number whose sign picks the
// direction, or "asc"/"desc"), or a string such as "name desc, age".
func CompileSort(clause types.Value) ([]SortKey, error) {
	switch clause.Kind() {
	case types.KindUndefined, types.KindNull:
		return nil, nil
	case types.KindRecord:
		rec, _ := clause.AsRecord()
		keys := make([]SortKey, 0, rec.Len())
		var err error
		rec.Range(func(attr string, dir types.Value) bool {
			var desc bool
			desc, err = parseDirection(attr, dir)
			if err != nil {
				return false
			}
			keys = append(keys, SortKey{Attr: attr, Descending: desc})
			return true
		})
		if err != nil {
			return nil, err
		}
		return keys, nil
	case types.KindString:
		s, _ := clause.AsString()
		return parseSortString(s)
	}
	return nil, types.Errorf(types.CodeSortClauseUnparseable,
		"sort clause must be an object or a string, got %s", clause.Kind())
}

func parseDirection(attr string, dir types.Value) (bool, error) {
	switch dir.Kind() {
	case types.KindNumber:
		n, _ := dir.AsNumber()
		return n < 0, nil
	case types.KindString:
		s, _ := dir.AsString()
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "asc", "ascending", "1":
			return false, nil
		case "desc", "descending", "-1":
			return true, nil
		}
	}
	return false, types.Errorf(types.CodeSortClauseUnparseable,
		"invalid sort direction %q for %q", dir.String(), attr)
}

func parseSortString(s string) ([]SortKey, error) {
	if strings.TrimSpace(s) == "" {
		return nil, types.Errorf(types.CodeSortClauseUnparseable, "sort clause cannot be an empty string")
	}
	var keys []SortKey
	for _, term := range strings.Split(s, ",") {
		fields := strings.Fields(term)
		switch len(fields) {
		case 1:
			keys = append(keys, SortKey{Attr: fields[0]})
		case 2:
			desc, err := parseDirection(fields[0], types.String(fields[1]))
			if err != nil {
				return nil, err
			}
			keys = append(keys, SortKey{Attr: fields[0], Descending: desc})
		default:
			return nil, types.Errorf(types.CodeSortClauseUnparseable, "cannot parse sort term %q", term)
		}
	}
	return keys, nil
}

// SortTuples orders tuples in place by keys. The sort is stable: tuples
// that tie on every key keep their relative order.
func SortTuples(tuples []Tuple, keys []SortKey) {
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(tuples, func(i, j int) bool {
		return compareRecords(tuples[i].Record, tuples[j].Record, keys) < 0
	})
}

func sortRecords(records []*types.Record, keys []SortKey) {
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		return compareRecords(records[i], records[j], keys) < 0
	})
}

// compareRecords applies each key in priority order. Records missing a value
// (or holding null) sort after records that have one, whatever the direction.
func compareRecords(a, b *types.Record, keys []SortKey) int {
	for _, k := range keys {
		av, _ := a.Get(k.Attr)
		bv, _ := b.Get(k.Attr)
		aNil, bNil := av.IsNil(), bv.IsNil()
		switch {
		case aNil && bNil:
			continue
		case aNil:
			return 1
		case bNil:
			return -1
		}
		c := compareNative(av, bv)
		if c == 0 {
			continue
		}
		if k.Descending {
			return -c
		}
		return c
	}
	return 0
}

// kindRank orders values of different kinds; no coercion happens here
var kindRank = map[types.Kind]int{
	types.KindBool:   0,
	types.KindNumber: 1,
	types.KindString: 2,
	types.KindList:   3,
	types.KindRecord: 4,
}

// compareNative compares two defined values by their own ordering
func compareNative(a, b types.Value) int {
	if a.Kind() != b.Kind() {
		return compareInts(kindRank[a.Kind()], kindRank[b.Kind()])
	}
	switch a.Kind() {
	case types.KindNumber:
		x, _ := a.AsNumber()
		y, _ := b.AsNumber()
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case types.KindBool:
		x, _ := a.AsBool()
		y, _ := b.AsBool()
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	case types.KindString:
		x, _ := a.AsString()
		y, _ := b.AsString()
		return strings.Compare(x, y)
	default:
		return strings.Compare(a.String(), b.String())
	}
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
