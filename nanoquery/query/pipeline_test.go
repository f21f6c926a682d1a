package query

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/arthur-debert/nanoquery/testutil"
	"github.com/arthur-debert/nanoquery/types"
)

func runCriteria(t *testing.T, dataset types.Dataset, collection, criteria string) *Result {
	t.Helper()
	result, err := Run(dataset[collection], testutil.Criteria(t, criteria), dataset)
	if err != nil {
		t.Fatalf("running %s: %v", criteria, err)
	}
	return result
}

func assertIndices(t *testing.T, result *Result, expected ...int) {
	t.Helper()
	if expected == nil {
		expected = []int{}
	}
	if diff := cmp.Diff(expected, result.Indices); diff != "" {
		t.Errorf("indices mismatch (-want +got):\n%s", diff)
	}
}

func TestRunIndexPreservation(t *testing.T) {
	records := testutil.Records(t, `[{"name": "a"}, {"name": "b"}, {"name": "c"}]`)

	result, err := Run(records, testutil.Criteria(t, `{"where": {"name": "b"}}`), nil)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertNames(t, result.Results, "b")
	assertIndices(t, result, 1)
}

func TestRunPipeline(t *testing.T) {
	universe := testutil.LoadUniverse(t)

	tests := []struct {
		name     string
		criteria string
		names    []string
		indices  []int
	}{
		{"everything", `{}`, []string{"Alice", "bob", "Carol", "Dave"}, []int{0, 1, 2, 3}},
		{"where and sort", `{"where": {"role": "user"}, "sort": {"name": -1}}`, []string{"bob", "Carol"}, []int{1, 2}},
		{"skip and limit", `{"sort": {"id": 1}, "skip": 1, "limit": 2}`, []string{"bob", "Carol"}, []int{1, 2}},
		{"limit zero", `{"sort": {"id": -1}, "limit": 0}`, []string{"Dave", "Carol", "bob", "Alice"}, []int{3, 2, 1, 0}},
		{"skip past end", `{"skip": 10}`, nil, nil},
		{"string skip", `{"skip": "3"}`, []string{"Dave"}, []int{3}},
		{"unknown keys ignored", `{"groupBy": "role", "where": {"id": 1}}`, []string{"Alice"}, []int{0}},
		{"nulls last", `{"sort": {"age": 1}, "where": {"role": {"!": "admin"}}}`, []string{"Carol", "bob", "Dave"}, []int{2, 1, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := runCriteria(t, universe.Dataset, "users", tt.criteria)
			testutil.AssertNames(t, result.Results, tt.names...)
			assertIndices(t, result, tt.indices...)
		})
	}
}

func TestRunJoinsAndSelect(t *testing.T) {
	universe := testutil.LoadUniverse(t)

	result := runCriteria(t, universe.Dataset, "users", `{
		"where": {"id": {"<=": 2}},
		"sort": {"id": -1},
		"joins": [
			{"parent": "users", "parentKey": "id", "child": "pets", "childKey": "owner", "alias": "owned"}
		],
		"select": {"name": true, "owned_pets": ["name"]}
	}`)

	testutil.AssertRecords(t, result.Results, `[
		{"name": "bob", "owned_pets": [{"name": "Tom"}]},
		{"name": "Alice", "owned_pets": [{"name": "Rex"}, {"name": "Kitty"}]}
	]`)
	assertIndices(t, result, 1, 0)
}

func TestRunJoinsUseFullChildCollection(t *testing.T) {
	universe := testutil.LoadUniverse(t)

	// pets are filtered down to one record, but owners still come from the
	// whole users collection
	result := runCriteria(t, universe.Dataset, "pets", `{
		"where": {"name": "Tom"},
		"joins": [
			{"parent": "pets", "parentKey": "owner", "child": "users", "childKey": "id", "alias": "owner", "model": true}
		],
		"select": {"name": true, "owner": ["name"]}
	}`)
	testutil.AssertRecords(t, result.Results, `[{"name": "Tom", "owner": [{"name": "bob"}]}]`)
	assertIndices(t, result, 1)
}

func TestRunDoesNotMutateInput(t *testing.T) {
	universe := testutil.LoadUniverse(t)
	before := testutil.Plain(types.CloneRecords(universe.Users()))

	runCriteria(t, universe.Dataset, "users", `{
		"sort": {"name": 1},
		"joins": [
			{"parent": "users", "parentKey": "id", "child": "pets", "childKey": "owner", "alias": "owned",
			 "removeParentKey": true}
		],
		"select": {"*": true, "email": false}
	}`)

	if diff := cmp.Diff(before, testutil.Plain(universe.Users())); diff != "" {
		t.Errorf("input collection was modified (-want +got):\n%s", diff)
	}
}

func TestRunCompileErrorsAbort(t *testing.T) {
	universe := testutil.LoadUniverse(t)

	tests := []struct {
		name     string
		criteria string
		code     string
	}{
		{"bad operator", `{"where": {"age": {">": 1, "between": [1, 2]}}}`, types.CodeUnknownOperator},
		{"bad sort", `{"sort": ["age"]}`, types.CodeSortClauseUnparseable},
		{"bad where", `{"where": [1]}`, types.CodeWhereClauseUnparseable},
		{"bad join", `{"joins": [{"child": "pets"}]}`, types.CodeInvalidJoin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Run(universe.Users(), testutil.Criteria(t, tt.criteria), universe.Dataset)
			testutil.AssertErrorCode(t, err, tt.code)
			if result != nil {
				t.Errorf("no partial result expected, got %v", result)
			}
		})
	}
}

func TestPlanReuse(t *testing.T) {
	universe := testutil.LoadUniverse(t)

	plan, err := Prepare(testutil.Criteria(t, `{"where": {"species": "cat"}, "sort": {"name": 1}}`))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		result, err := plan.Run(NewTuples(universe.Dataset["pets"]), universe.Dataset)
		if err != nil {
			t.Fatal(err)
		}
		testutil.AssertNames(t, result.Results, "Kitty", "Tom")
		assertIndices(t, result, 2, 1)
	}
}
