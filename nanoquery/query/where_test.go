package query

import (
	"testing"

	"github.com/arthur-debert/nanoquery/testutil"
	"github.com/arthur-debert/nanoquery/types"
)

func filterByWhere(t *testing.T, records []*types.Record, where string) []*types.Record {
	t.Helper()
	pred, err := Compile(testutil.Value(t, where))
	if err != nil {
		t.Fatalf("compiling %s: %v", where, err)
	}
	return Records(Filter(NewTuples(records), pred))
}

func TestWhereEmpty(t *testing.T) {
	universe := testutil.LoadUniverse(t)

	for _, where := range []string{``, `null`, `""`, `{}`} {
		got := filterByWhere(t, universe.Users(), where)
		testutil.AssertNames(t, got, "Alice", "bob", "Carol", "Dave")
	}

	pred, err := Compile(types.Value{})
	if err != nil {
		t.Fatalf("undefined where should compile: %v", err)
	}
	if got := Filter(NewTuples(universe.Users()), pred); len(got) != 4 {
		t.Errorf("undefined where should match all, got %d", len(got))
	}
}

func TestWhereEvaluator(t *testing.T) {
	universe := testutil.LoadUniverse(t)
	users := universe.Users()

	t.Run("Equality", func(t *testing.T) {
		tests := []struct {
			where    string
			expected []string
		}{
			{`{"name": "Alice"}`, []string{"Alice"}},
			{`{"name": "BOB"}`, []string{"bob"}},
			{`{"age": 25}`, []string{"bob"}},
			{`{"age": "30"}`, []string{"Alice"}},
			{`{"id": 3}`, []string{"Carol"}},
			{`{"email": null}`, []string{"Dave"}},
			{`{"dad": null}`, []string{"Carol"}},
			{`{"name": "Nobody"}`, nil},
			{`{"role": "user", "age": 35}`, []string{"Carol"}},
		}
		for _, tt := range tests {
			t.Run(tt.where, func(t *testing.T) {
				testutil.AssertNames(t, filterByWhere(t, users, tt.where), tt.expected...)
			})
		}
	})

	t.Run("In", func(t *testing.T) {
		tests := []struct {
			where    string
			expected []string
		}{
			{`{"name": ["alice", "carol"]}`, []string{"Alice", "Carol"}},
			{`{"age": [30, "35"]}`, []string{"Alice", "Carol"}},
			{`{"age": [25]}`, []string{"bob"}},
			{`{"name": []}`, nil},
			{`{"age": [99, 100]}`, nil},
		}
		for _, tt := range tests {
			t.Run(tt.where, func(t *testing.T) {
				testutil.AssertNames(t, filterByWhere(t, users, tt.where), tt.expected...)
			})
		}
	})

	t.Run("Operators", func(t *testing.T) {
		tests := []struct {
			where    string
			expected []string
		}{
			{`{"age": {">": 26}}`, []string{"Alice", "Carol"}},
			{`{"age": {"greaterThan": 26}}`, []string{"Alice", "Carol"}},
			{`{"age": {">=": 30}}`, []string{"Alice", "Carol"}},
			{`{"age": {"greaterThanOrEqual": 30}}`, []string{"Alice", "Carol"}},
			{`{"age": {"<": 30}}`, []string{"bob"}},
			{`{"age": {"lessThan": 30}}`, []string{"bob"}},
			{`{"age": {"<=": 30}}`, []string{"Alice", "bob"}},
			{`{"age": {"lessThanOrEqual": 30}}`, []string{"Alice", "bob"}},
			{`{"role": {"equals": "GUEST"}}`, []string{"Dave"}},
			{`{"role": {"=": "admin"}}`, []string{"Alice"}},
			{`{"role": {"equal": "admin"}}`, []string{"Alice"}},
			{`{"role": {"not": "user"}}`, []string{"Alice", "Dave"}},
			{`{"role": {"!": "admin"}}`, []string{"bob", "Carol", "Dave"}},
			{`{"age": {">": 20, "<": 32}}`, []string{"Alice", "bob"}},
			// numeric strings compare as numbers, not as text
			{`{"age": {">": "9"}}`, []string{"Alice", "bob", "Carol"}},
			// a missing attribute never matches, not even inequality
			{`{"age": {"not": 30}}`, []string{"bob", "Carol"}},
		}
		for _, tt := range tests {
			t.Run(tt.where, func(t *testing.T) {
				testutil.AssertNames(t, filterByWhere(t, users, tt.where), tt.expected...)
			})
		}
	})

	t.Run("Patterns", func(t *testing.T) {
		tests := []struct {
			where    string
			expected []string
		}{
			{`{"name": {"startsWith": "c"}}`, []string{"Carol"}},
			{`{"name": {"endsWith": "E"}}`, []string{"Alice", "Dave"}},
			{`{"name": {"contains": "o"}}`, []string{"bob", "Carol"}},
			{`{"email": {"endsWith": "@EXAMPLE.com"}}`, []string{"Alice", "bob", "Carol"}},
			{`{"name": {"like": "%a%e%"}}`, []string{"Alice", "Dave"}},
			{`{"name": {"like": "bob"}}`, []string{"bob"}},
			{`{"name": {"like": "bo"}}`, nil},
			{`{"age": {"startsWith": "3"}}`, []string{"Alice", "Carol"}},
			{`{"name": {"contains": "."}}`, nil},
		}
		for _, tt := range tests {
			t.Run(tt.where, func(t *testing.T) {
				testutil.AssertNames(t, filterByWhere(t, users, tt.where), tt.expected...)
			})
		}
	})

	t.Run("Composites", func(t *testing.T) {
		tests := []struct {
			where    string
			expected []string
		}{
			{`{"or": [{"name": "Alice"}, {"age": {">": 30}}]}`, []string{"Alice", "Carol"}},
			{`{"OR": [{"name": "Alice"}, {"name": "Dave"}]}`, []string{"Alice", "Dave"}},
			{`{"and": [{"role": "user"}, {"age": {"<": 30}}]}`, []string{"bob"}},
			{`{"And": [{"role": "user"}, {"name": "Alice"}]}`, nil},
			{`{"not": {"role": "user"}}`, []string{"Alice", "Dave"}},
			{`{"NOT": {"or": [{"role": "user"}, {"role": "guest"}]}}`, []string{"Alice"}},
			{`{"or": []}`, nil},
			{`{"and": []}`, []string{"Alice", "bob", "Carol", "Dave"}},
			{`{"role": "user", "or": [{"age": 25}, {"age": 30}]}`, []string{"bob"}},
		}
		for _, tt := range tests {
			t.Run(tt.where, func(t *testing.T) {
				testutil.AssertNames(t, filterByWhere(t, users, tt.where), tt.expected...)
			})
		}
	})
}

func TestWhereNotOperatorOnKeys(t *testing.T) {
	records := testutil.Records(t, `[{"key": 0}, {"key": 1}, {"key": 2}]`)
	got := filterByWhere(t, records, `{"key": {"not": 1}}`)
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	testutil.AssertRecords(t, got, `[{"key": 0}, {"key": 2}]`)
}

func TestWhereLiteralPercent(t *testing.T) {
	records := testutil.Records(t, `[{"name": "50%"}, {"name": "50"}, {"name": "500"}, {"name": "5_"}]`)

	testutil.AssertNames(t, filterByWhere(t, records, `{"name": {"like": "50%%%"}}`), "50%")
	testutil.AssertNames(t, filterByWhere(t, records, `{"name": {"like": "50%"}}`), "50%", "50", "500")
	testutil.AssertNames(t, filterByWhere(t, records, `{"name": {"like": "5_"}}`), "5_")
	testutil.AssertNames(t, filterByWhere(t, records, `{"name": {"contains": "%%%"}}`), "50%")
}

func TestWhereErrors(t *testing.T) {
	tests := []struct {
		name  string
		where string
		code  string
	}{
		{"unknown operator", `{"age": {">": 1, "bogus": 2}}`, types.CodeUnknownOperator},
		{"non-string pattern", `{"name": {"like": 5}}`, types.CodeInvalidPattern},
		{"non-string contains", `{"name": {"contains": ["a"]}}`, types.CodeInvalidPattern},
		{"or without list", `{"or": {"name": "x"}}`, types.CodeWhereClauseUnparseable},
		{"and with scalar item", `{"and": [1]}`, types.CodeWhereClauseUnparseable},
		{"not with list", `{"not": [{"name": "x"}]}`, types.CodeWhereClauseUnparseable},
		{"list clause", `[{"name": "x"}]`, types.CodeWhereClauseUnparseable},
		{"number clause", `5`, types.CodeWhereClauseUnparseable},
		{"nested error", `{"or": [{"age": {"<": 5, "between": 1}}]}`, types.CodeUnknownOperator},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(testutil.Value(t, tt.where))
			testutil.AssertErrorCode(t, err, tt.code)
		})
	}
}

func TestLooseComparison(t *testing.T) {
	tests := []struct {
		a, b     types.Value
		expected int
	}{
		{types.Int(2), types.Int(10), -1},
		{types.String("2"), types.String("10"), -1},
		{types.String("2"), types.Int(2), 0},
		{types.String(" 2 "), types.Number(2), 0},
		{types.String("abc"), types.String("ABC"), 0},
		{types.String("b"), types.String("A"), 1},
		{types.Null(), types.String(""), 0},
		{types.Value{}, types.Null(), 0},
		{types.Bool(true), types.String("TRUE"), 0},
		{types.String("1e2"), types.Int(100), 0},
		{types.String("x"), types.Int(1), 1},
	}
	for _, tt := range tests {
		if got := compareLoose(tt.a, tt.b); got != tt.expected {
			t.Errorf("compareLoose(%v, %v) = %d, expected %d", tt.a, tt.b, got, tt.expected)
		}
	}
}
