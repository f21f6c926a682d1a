package types

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dataset maps collection names to their records
type Dataset map[string][]*Record

// Clone deep-copies every collection
func (d Dataset) Clone() Dataset {
	out := make(Dataset, len(d))
	for name, records := range d {
		out[name] = CloneRecords(records)
	}
	return out
}

// Names returns the collection names, sorted
func (d Dataset) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Record converts the dataset to a record of collection name to list of
// records, collections in name order.
func (d Dataset) Record() *Record {
	r := NewRecord()
	for _, name := range d.Names() {
		items := make([]Value, len(d[name]))
		for i, rec := range d[name] {
			items[i] = Object(rec)
		}
		r.Set(name, List(items...))
	}
	return r
}

// DatasetFromRecord reads a record whose values are lists of records
func DatasetFromRecord(r *Record) (Dataset, error) {
	d := make(Dataset, r.Len())
	var err error
	r.Range(func(name string, v Value) bool {
		var records []*Record
		records, err = CollectionFromValue(v)
		if err != nil {
			err = fmt.Errorf("collection %q: %w", name, err)
			return false
		}
		d[name] = records
		return true
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// CollectionFromValue reads a list of records. Null is an empty collection.
func CollectionFromValue(v Value) ([]*Record, error) {
	if v.IsNil() {
		return []*Record{}, nil
	}
	list, ok := v.AsList()
	if !ok {
		return nil, fmt.Errorf("expected a list of objects, got %s", v.Kind())
	}
	records := make([]*Record, len(list))
	for i, item := range list {
		rec, ok := item.AsRecord()
		if !ok {
			return nil, fmt.Errorf("item %d: expected an object, got %s", i, item.Kind())
		}
		records[i] = rec
	}
	return records, nil
}

// ParseDataset decodes a JSON or YAML dataset document
func ParseDataset(data []byte) (Dataset, error) {
	r, err := ParseRecord(data)
	if err != nil {
		return nil, err
	}
	return DatasetFromRecord(r)
}

// Criteria drives one query. Where, Sort and Select are kept as raw values
// and compiled by the query package; an undefined value disables the stage.
type Criteria struct {
	Where  Value
	Sort   Value
	Skip   int
	Limit  int
	Select Value
	Joins  []JoinSpec
}

// JoinSpec describes one relationship hop
type JoinSpec struct {
	Parent          string
	ParentKey       string
	Child           string
	ChildKey        string
	Alias           string
	Model           bool
	JunctionTable   bool
	RemoveParentKey bool
	// Select true keeps the raw child key visible after the join; a list or
	// record projects the attached children.
	Select Value
}

// CriteriaFromRecord reads a criteria dictionary. Unknown keys are ignored.
func CriteriaFromRecord(r *Record) (Criteria, error) {
	var c Criteria
	if r == nil {
		return c, nil
	}
	var err error
	c.Where, _ = r.Get("where")
	c.Sort, _ = r.Get("sort")
	c.Select, _ = r.Get("select")
	if v, ok := r.Get("skip"); ok {
		if c.Skip, err = intOption("skip", v); err != nil {
			return Criteria{}, err
		}
	}
	if v, ok := r.Get("limit"); ok {
		if c.Limit, err = intOption("limit", v); err != nil {
			return Criteria{}, err
		}
	}
	if v, ok := r.Get("joins"); ok && !v.IsNil() {
		list, ok := v.AsList()
		if !ok {
			return Criteria{}, Errorf(CodeInvalidCriteria, "joins must be a list, got %s", v.Kind())
		}
		for i, item := range list {
			rec, ok := item.AsRecord()
			if !ok {
				return Criteria{}, Errorf(CodeInvalidJoin, "join %d must be an object, got %s", i, item.Kind())
			}
			c.Joins = append(c.Joins, JoinSpecFromRecord(rec))
		}
	}
	return c, nil
}

// ParseCriteria decodes a JSON or YAML criteria document
func ParseCriteria(data []byte) (Criteria, error) {
	if strings.TrimSpace(string(data)) == "" {
		return Criteria{}, nil
	}
	v, err := ParseValue(data)
	if err != nil {
		return Criteria{}, err
	}
	if v.IsNil() {
		return Criteria{}, nil
	}
	rec, ok := v.AsRecord()
	if !ok {
		return Criteria{}, Errorf(CodeInvalidCriteria, "criteria must be an object, got %s", v.Kind())
	}
	return CriteriaFromRecord(rec)
}

// UnmarshalJSON implements json.Unmarshaler
func (c *Criteria) UnmarshalJSON(data []byte) error {
	parsed, err := ParseCriteria(data)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (c *Criteria) UnmarshalYAML(node *yaml.Node) error {
	v, err := ValueFromNode(node)
	if err != nil {
		return err
	}
	if v.IsNil() {
		*c = Criteria{}
		return nil
	}
	rec, ok := v.AsRecord()
	if !ok {
		return Errorf(CodeInvalidCriteria, "criteria must be a mapping, got %s", v.Kind())
	}
	parsed, err := CriteriaFromRecord(rec)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Record renders the criteria back into its dictionary form
func (c Criteria) Record() *Record {
	r := NewRecord()
	if c.Where.IsDefined() {
		r.Set("where", c.Where)
	}
	if c.Sort.IsDefined() {
		r.Set("sort", c.Sort)
	}
	if c.Skip != 0 {
		r.Set("skip", Int(c.Skip))
	}
	if c.Limit != 0 {
		r.Set("limit", Int(c.Limit))
	}
	if c.Select.IsDefined() {
		r.Set("select", c.Select)
	}
	if len(c.Joins) > 0 {
		joins := make([]Value, len(c.Joins))
		for i, j := range c.Joins {
			joins[i] = Object(j.Record())
		}
		r.Set("joins", List(joins...))
	}
	return r
}

// JoinSpecFromRecord reads a join dictionary; flags are read by truthiness
func JoinSpecFromRecord(r *Record) JoinSpec {
	str := func(key string) string {
		v, _ := r.Get(key)
		if v.IsNil() {
			return ""
		}
		return v.String()
	}
	flag := func(key string) bool {
		v, _ := r.Get(key)
		return v.Truthy()
	}
	sel, _ := r.Get("select")
	return JoinSpec{
		Parent:          str("parent"),
		ParentKey:       str("parentKey"),
		Child:           str("child"),
		ChildKey:        str("childKey"),
		Alias:           str("alias"),
		Model:           flag("model"),
		JunctionTable:   flag("junctionTable"),
		RemoveParentKey: flag("removeParentKey"),
		Select:          sel,
	}
}

// Record renders the join back into its dictionary form
func (j JoinSpec) Record() *Record {
	r := RecordOf(
		"parent", j.Parent,
		"parentKey", j.ParentKey,
		"child", j.Child,
		"childKey", j.ChildKey,
	)
	if j.Alias != "" {
		r.Set("alias", String(j.Alias))
	}
	if j.Model {
		r.Set("model", Bool(true))
	}
	if j.JunctionTable {
		r.Set("junctionTable", Bool(true))
	}
	if j.RemoveParentKey {
		r.Set("removeParentKey", Bool(true))
	}
	if j.Select.IsDefined() {
		r.Set("select", j.Select)
	}
	return r
}

func intOption(name string, v Value) (int, error) {
	switch v.Kind() {
	case KindUndefined, KindNull:
		return 0, nil
	case KindBool:
		if b, _ := v.AsBool(); !b {
			return 0, nil
		}
	case KindNumber:
		n, _ := v.AsNumber()
		if math.IsNaN(n) || math.IsInf(n, 0) {
			break
		}
		return int(n), nil
	case KindString:
		s, _ := v.AsString()
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, nil
		}
		if n, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
			return int(n), nil
		}
	}
	return 0, Errorf(CodeInvalidCriteria, "%s must be a number, got %s %q", name, v.Kind(), v.String())
}
