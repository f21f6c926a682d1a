package main

import (
	"strings"

	"github.com/arthur-debert/nanoquery/types"
)

// LogicalOperator defines the operator connecting filter groups
type LogicalOperator string

const (
	OpAnd LogicalOperator = "and"
	OpOr  LogicalOperator = "or"
)

// FilterCondition represents a single filter condition, like 'status = "active"'.
type FilterCondition struct {
	Field    string
	Operator string
	Value    string
}

// FilterGroup represents a set of conditions that are implicitly joined by AND.
type FilterGroup struct {
	Conditions []FilterCondition
}

// Query represents parsed trailing filter arguments with logical grouping.
type Query struct {
	// A list of filter groups.
	Groups []FilterGroup
	// A list of logical operators that connect the groups.
	// Example: Groups[0] Operators[0] Groups[1] Operators[1] Groups[2]
	Operators []LogicalOperator
}

// filterOperators maps CLI operator suffixes to where clause operators.
// "eq" and "in" have no operator key: they become literal and IN criteria.
var filterOperators = map[string]string{
	"eq":         "",
	"in":         "",
	"ne":         "not",
	"not":        "not",
	"gt":         ">",
	"gte":        ">=",
	"lt":         "<",
	"lte":        "<=",
	"like":       "like",
	"contains":   "contains",
	"startswith": "startsWith",
	"endswith":   "endsWith",
}

// parseFilters takes a slice of filter arguments and parses them into a Query object,
// handling logical operators for grouping.
func parseFilters(filterArgs []string) (*Query, error) {
	query := &Query{
		Groups:    []FilterGroup{},
		Operators: []LogicalOperator{},
	}

	currentGroup := FilterGroup{Conditions: []FilterCondition{}}

	for _, arg := range filterArgs {
		cleanArg := strings.TrimPrefix(arg, "--")

		// Check for logical operators
		if cleanArg == "and" || cleanArg == "or" {
			query.Groups = append(query.Groups, currentGroup)
			query.Operators = append(query.Operators, LogicalOperator(cleanArg))
			currentGroup = FilterGroup{Conditions: []FilterCondition{}}
			continue
		}

		// It's a filter condition
		parts := strings.SplitN(cleanArg, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, NewFilterError("parse filters", arg, "expected --field=value")
		}

		fieldParts := strings.SplitN(parts[0], "__", 2)
		condition := FilterCondition{Field: fieldParts[0], Operator: "eq", Value: parts[1]}
		if len(fieldParts) == 2 {
			condition.Operator = strings.ToLower(fieldParts[1])
		}
		if _, ok := filterOperators[condition.Operator]; !ok {
			return nil, NewFilterError("parse filters", arg, "unknown operator "+condition.Operator)
		}

		currentGroup.Conditions = append(currentGroup.Conditions, condition)
	}

	// Add the final group to the query
	query.Groups = append(query.Groups, currentGroup)

	return query, nil
}

// IsEmpty reports whether the query holds no condition at all
func (q *Query) IsEmpty() bool {
	for _, g := range q.Groups {
		if len(g.Conditions) > 0 {
			return false
		}
	}
	return true
}

// Where translates the query into a where clause. Groups combine left to
// right: "a --or b --and c" reads as "(a or b) and c".
func (q *Query) Where() types.Value {
	var where types.Value
	for i, g := range q.Groups {
		clause := g.where()
		if !clause.IsDefined() {
			continue
		}
		if !where.IsDefined() {
			where = clause
			continue
		}
		op := OpAnd
		if i > 0 && i-1 < len(q.Operators) {
			op = q.Operators[i-1]
		}
		where = types.Object(types.RecordOf(string(op), types.List(where, clause)))
	}
	return where
}

func (g FilterGroup) where() types.Value {
	clauses := make([]types.Value, 0, len(g.Conditions))
	for _, c := range g.Conditions {
		clauses = append(clauses, types.Object(types.RecordOf(c.Field, c.criterion())))
	}
	switch len(clauses) {
	case 0:
		return types.Value{}
	case 1:
		return clauses[0]
	default:
		return types.Object(types.RecordOf("and", types.List(clauses...)))
	}
}

func (c FilterCondition) criterion() types.Value {
	switch c.Operator {
	case "eq":
		return filterValue(c.Value)
	case "in":
		parts := strings.Split(c.Value, ",")
		values := make([]types.Value, len(parts))
		for i, p := range parts {
			values[i] = filterValue(strings.TrimSpace(p))
		}
		return types.List(values...)
	default:
		return types.Object(types.RecordOf(filterOperators[c.Operator], c.Value))
	}
}

// filterValue reads "null", "true" and "false" as literals; everything
// else stays a string and is coerced by the engine's loose comparison.
func filterValue(s string) types.Value {
	switch s {
	case "null":
		return types.Null()
	case "true":
		return types.Bool(true)
	case "false":
		return types.Bool(false)
	default:
		return types.String(s)
	}
}
