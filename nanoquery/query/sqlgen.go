package query

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/arthur-debert/nanoquery/types"
)

// sqlBuilder renders compiled plans as SQL. The output is for inspection
// only; nothing in this module executes it.
type sqlBuilder struct {
	sq squirrel.StatementBuilderType
}

func newSQLBuilder() *sqlBuilder {
	return &sqlBuilder{
		sq: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

// Explain renders criteria against table as a SELECT statement with ?
// placeholders and its arguments.
func Explain(table string, c types.Criteria) (string, []interface{}, error) {
	if table == "" {
		return "", nil, fmt.Errorf("no table specified")
	}
	plan, err := Prepare(c)
	if err != nil {
		return "", nil, err
	}
	return newSQLBuilder().buildSelect(table, plan)
}

func (b *sqlBuilder) buildSelect(table string, plan *Plan) (string, []interface{}, error) {
	columns := []string{"*"}
	if cols := plan.Select.Columns(); len(cols) > 0 {
		columns = make([]string, len(cols))
		for i, col := range cols {
			columns[i] = quoteIdent(col)
		}
	}

	query := b.sq.Select(columns...).From(quoteIdent(table))
	for _, join := range plan.Joins {
		query = query.LeftJoin(joinClause(table, join))
	}

	where, err := sqlizer(plan.Where)
	if err != nil {
		return "", nil, err
	}
	if where != nil {
		query = query.Where(where)
	}

	for _, key := range plan.Sort {
		dir := "ASC"
		if key.Descending {
			dir = "DESC"
		}
		query = query.OrderBy(quoteIdent(key.Attr) + " " + dir)
	}
	if plan.Limit > 0 {
		query = query.Limit(uint64(plan.Limit))
	}
	if plan.Skip > 0 {
		query = query.Offset(uint64(plan.Skip))
	}
	return query.ToSql()
}

// joinClause joins child on its parent; for junction hops the parent is
// the junction table itself.
func joinClause(table string, join types.JoinSpec) string {
	parent := join.Parent
	if parent == "" {
		parent = table
	}
	return fmt.Sprintf("%s ON %s.%s = %s.%s",
		quoteIdent(join.Child),
		quoteIdent(join.Child), quoteIdent(join.ChildKey),
		quoteIdent(parent), quoteIdent(join.ParentKey))
}

// sqlizer maps a predicate node onto squirrel expressions. A nil result
// means no WHERE clause.
func sqlizer(p Predicate) (squirrel.Sqlizer, error) {
	switch n := p.(type) {
	case nil, matchAll:
		return nil, nil
	case andNode:
		parts, err := sqlizeAll(n.children)
		if err != nil {
			return nil, err
		}
		return squirrel.And(parts), nil
	case orNode:
		parts, err := sqlizeAll(n.children)
		if err != nil {
			return nil, err
		}
		return squirrel.Or(parts), nil
	case notNode:
		child, err := sqlizer(n.child)
		if err != nil {
			return nil, err
		}
		if child == nil {
			return squirrel.Expr("1=0"), nil
		}
		return notExpr{child}, nil
	case literalNode:
		return squirrel.Eq{quoteIdent(n.attr): n.value.Interface()}, nil
	case inNode:
		values := make([]interface{}, len(n.values))
		for i, v := range n.values {
			values[i] = v.Interface()
		}
		return squirrel.Eq{quoteIdent(n.attr): values}, nil
	case operatorNode:
		return operatorSqlizer(n), nil
	}
	return nil, fmt.Errorf("cannot render predicate %T as SQL", p)
}

func sqlizeAll(children []Predicate) ([]squirrel.Sqlizer, error) {
	parts := make([]squirrel.Sqlizer, 0, len(children))
	for _, c := range children {
		s, err := sqlizer(c)
		if err != nil {
			return nil, err
		}
		if s == nil {
			s = squirrel.Expr("1=1")
		}
		parts = append(parts, s)
	}
	return parts, nil
}

func operatorSqlizer(n operatorNode) squirrel.Sqlizer {
	col := quoteIdent(n.attr)
	val := n.operand.Interface()
	switch n.op {
	case opEqual:
		return squirrel.Eq{col: val}
	case opNotEqual:
		return squirrel.NotEq{col: val}
	case opGreaterThan:
		return squirrel.Gt{col: val}
	case opGreaterThanOrEqual:
		return squirrel.GtOrEq{col: val}
	case opLessThan:
		return squirrel.Lt{col: val}
	case opLessThanOrEqual:
		return squirrel.LtOrEq{col: val}
	}
	operand, _ := n.operand.AsString()
	return squirrel.Expr("LOWER("+col+") LIKE LOWER(?) ESCAPE '\\'", likePattern(n.op, operand))
}

type notExpr struct {
	child squirrel.Sqlizer
}

func (e notExpr) ToSql() (string, []interface{}, error) {
	sql, args, err := e.child.ToSql()
	if err != nil {
		return "", nil, err
	}
	return "NOT (" + sql + ")", args, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
