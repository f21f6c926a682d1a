// Package query implements the criteria evaluation pipeline: a compiled
// where predicate, stable multi-key sorting, skip/limit pagination, join
// resolution and select projection over schemaless records.
package query

import (
	"regexp"
	"strings"

	"github.com/arthur-debert/nanoquery/types"
)

// opKind is an attribute-scoped operator
type opKind int

const (
	opEqual opKind = iota
	opNotEqual
	opGreaterThan
	opGreaterThanOrEqual
	opLessThan
	opLessThanOrEqual
	opStartsWith
	opEndsWith
	opContains
	opLike
)

// operatorAliases maps every accepted spelling to its operator. Keys are
// case-sensitive.
var operatorAliases = map[string]opKind{
	"equals":             opEqual,
	"=":                  opEqual,
	"equal":              opEqual,
	"not":                opNotEqual,
	"!":                  opNotEqual,
	"greaterThan":        opGreaterThan,
	">":                  opGreaterThan,
	"greaterThanOrEqual": opGreaterThanOrEqual,
	">=":                 opGreaterThanOrEqual,
	"lessThan":           opLessThan,
	"<":                  opLessThan,
	"lessThanOrEqual":    opLessThanOrEqual,
	"<=":                 opLessThanOrEqual,
	"startsWith":         opStartsWith,
	"endsWith":           opEndsWith,
	"contains":           opContains,
	"like":               opLike,
}

func (op opKind) isPattern() bool {
	return op >= opStartsWith
}

func (op opKind) String() string {
	switch op {
	case opEqual:
		return "="
	case opNotEqual:
		return "!"
	case opGreaterThan:
		return ">"
	case opGreaterThanOrEqual:
		return ">="
	case opLessThan:
		return "<"
	case opLessThanOrEqual:
		return "<="
	case opStartsWith:
		return "startsWith"
	case opEndsWith:
		return "endsWith"
	case opContains:
		return "contains"
	default:
		return "like"
	}
}

// Control keys, matched case-insensitively
const (
	keyAnd = "and"
	keyOr  = "or"
	keyNot = "not"
)

// Predicate decides whether a record satisfies a compiled where clause
type Predicate interface {
	Matches(r *types.Record) bool
}

// Compile turns a where clause into a predicate tree. Absent, null, empty
// and "" clauses match everything.
func Compile(where types.Value) (Predicate, error) {
	switch where.Kind() {
	case types.KindUndefined, types.KindNull:
		return matchAll{}, nil
	case types.KindString:
		if s, _ := where.AsString(); s == "" {
			return matchAll{}, nil
		}
	case types.KindRecord:
		rec, _ := where.AsRecord()
		return compileSet(rec)
	}
	return nil, types.Errorf(types.CodeWhereClauseUnparseable,
		"where clause must be an object, got %s", where.Kind())
}

// MustCompile is Compile for clauses known to be valid
func MustCompile(where types.Value) Predicate {
	p, err := Compile(where)
	if err != nil {
		panic(err)
	}
	return p
}

// compileSet compiles a dictionary node: an implicit AND of its keys
func compileSet(rec *types.Record) (Predicate, error) {
	if rec.Len() == 0 {
		return matchAll{}, nil
	}
	children := make([]Predicate, 0, rec.Len())
	var err error
	rec.Range(func(key string, v types.Value) bool {
		var child Predicate
		child, err = compileItem(key, v)
		if err != nil {
			return false
		}
		children = append(children, child)
		return true
	})
	if err != nil {
		return nil, err
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return andNode{children: children}, nil
}

func compileItem(key string, criterion types.Value) (Predicate, error) {
	switch strings.ToLower(key) {
	case keyAnd, keyOr:
		children, err := compileClauses(key, criterion)
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(key, keyAnd) {
			return andNode{children: children}, nil
		}
		return orNode{children: children}, nil
	case keyNot:
		if criterion.Kind() != types.KindRecord {
			return nil, types.Errorf(types.CodeWhereClauseUnparseable,
				"%q expects a single clause, got %s", key, criterion.Kind())
		}
		child, err := Compile(criterion)
		if err != nil {
			return nil, err
		}
		return notNode{child: child}, nil
	}

	if list, ok := criterion.AsList(); ok {
		return inNode{attr: key, values: list}, nil
	}
	if rec, ok := criterion.AsRecord(); ok && hasOperator(rec) {
		return compileOperators(key, rec)
	}
	return literalNode{attr: key, value: criterion}, nil
}

func compileClauses(key string, criterion types.Value) ([]Predicate, error) {
	list, ok := criterion.AsList()
	if !ok {
		return nil, types.Errorf(types.CodeWhereClauseUnparseable,
			"%q expects a list of clauses, got %s", key, criterion.Kind())
	}
	children := make([]Predicate, 0, len(list))
	for i, item := range list {
		if item.Kind() != types.KindRecord && !item.IsNil() {
			return nil, types.Errorf(types.CodeWhereClauseUnparseable,
				"%q clause %d must be an object, got %s", key, i, item.Kind())
		}
		child, err := Compile(item)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

func hasOperator(rec *types.Record) bool {
	for _, k := range rec.Keys() {
		if _, ok := operatorAliases[k]; ok {
			return true
		}
	}
	return false
}

// compileOperators binds attr and compiles each operator key under it.
// Once bound, any key that is not an operator alias is an error.
func compileOperators(attr string, rec *types.Record) (Predicate, error) {
	children := make([]Predicate, 0, rec.Len())
	for _, k := range rec.Keys() {
		op, ok := operatorAliases[k]
		if !ok {
			return nil, types.Errorf(types.CodeUnknownOperator,
				"unrecognized operator %q for attribute %q", k, attr)
		}
		operand, _ := rec.Get(k)
		node := operatorNode{attr: attr, op: op, operand: operand}
		if op.isPattern() && operand.IsDefined() {
			s, ok := operand.AsString()
			if !ok {
				return nil, types.Errorf(types.CodeInvalidPattern,
					"%s operand for %q must be a string, got %s", op, attr, operand.Kind())
			}
			re, err := compilePattern(op, s)
			if err != nil {
				return nil, err
			}
			node.pattern = re
		}
		children = append(children, node)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return andNode{children: children}, nil
}

// matchAll matches every record
type matchAll struct{}

func (matchAll) Matches(*types.Record) bool { return true }

// andNode matches when every child does. All children are evaluated.
type andNode struct {
	children []Predicate
}

func (n andNode) Matches(r *types.Record) bool {
	matched := 0
	for _, c := range n.children {
		if c.Matches(r) {
			matched++
		}
	}
	return matched == len(n.children)
}

// orNode matches when at least one child does. All children are evaluated.
type orNode struct {
	children []Predicate
}

func (n orNode) Matches(r *types.Record) bool {
	matched := 0
	for _, c := range n.children {
		if c.Matches(r) {
			matched++
		}
	}
	return matched > 0
}

type notNode struct {
	child Predicate
}

func (n notNode) Matches(r *types.Record) bool {
	return !n.child.Matches(r)
}

// literalNode is {attr: value}
type literalNode struct {
	attr  string
	value types.Value
}

func (n literalNode) Matches(r *types.Record) bool {
	actual, ok := r.Get(n.attr)
	if !ok || !n.value.IsDefined() {
		return false
	}
	return compareLoose(actual, n.value) == 0
}

// inNode is {attr: [v1, v2, ...]}
type inNode struct {
	attr   string
	values []types.Value
}

func (n inNode) Matches(r *types.Record) bool {
	actual, ok := r.Get(n.attr)
	if !ok {
		return false
	}
	found := false
	for _, v := range n.values {
		if v.IsDefined() && compareLoose(actual, v) == 0 {
			found = true
		}
	}
	return found
}

// operatorNode is {attr: {op: operand}}
type operatorNode struct {
	attr    string
	op      opKind
	operand types.Value
	pattern *regexp.Regexp
}

func (n operatorNode) Matches(r *types.Record) bool {
	actual, ok := r.Get(n.attr)
	if !ok || !n.operand.IsDefined() {
		return false
	}
	if n.op.isPattern() {
		subject, ok := patternSubject(actual)
		return ok && n.pattern.MatchString(subject)
	}
	c := compareLoose(actual, n.operand)
	switch n.op {
	case opEqual:
		return c == 0
	case opNotEqual:
		return c != 0
	case opGreaterThan:
		return c > 0
	case opGreaterThanOrEqual:
		return c >= 0
	case opLessThan:
		return c < 0
	default:
		return c <= 0
	}
}
