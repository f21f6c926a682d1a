package query

import (
	"testing"

	"github.com/arthur-debert/nanoquery/testutil"
	"github.com/arthur-debert/nanoquery/types"
)

func joinSpecs(t *testing.T, src string) []types.JoinSpec {
	t.Helper()
	c := testutil.Criteria(t, `{"joins": `+src+`}`)
	return c.Joins
}

func resolve(t *testing.T, dataset types.Dataset, records []*types.Record, specs string) []*types.Record {
	t.Helper()
	joiner, err := NewJoiner(joinSpecs(t, specs), dataset)
	if err != nil {
		t.Fatalf("building joiner: %v", err)
	}
	records = types.CloneRecords(records)
	joiner.Resolve(records)
	return records
}

func TestJoinStandard(t *testing.T) {
	universe := testutil.LoadUniverse(t)

	got := resolve(t, universe.Dataset, universe.Users(), `[
		{"parent": "users", "parentKey": "id", "child": "pets", "childKey": "owner", "alias": "Owned"}
	]`)

	sel, _ := CompileSelect(testutil.Value(t, `{"name": true, "owned_pets": ["name"]}`))
	testutil.AssertRecords(t, sel.ApplyAll(got), `[
		{"name": "Alice", "owned_pets": [{"name": "Rex"}, {"name": "Kitty"}]},
		{"name": "bob", "owned_pets": [{"name": "Tom"}]},
		{"name": "Carol", "owned_pets": []},
		{"name": "Dave", "owned_pets": []}
	]`)

	// attached children are copies
	pets, _ := got[0].Get("owned_pets")
	list, _ := pets.AsList()
	rex, _ := list[0].AsRecord()
	rex.Set("name", types.String("changed"))
	if name, _ := universe.Dataset["pets"][0].Get("name"); name.String() != "Rex" {
		t.Errorf("joined child shares state with the dataset: %v", name)
	}
}

func TestJoinBelongsToModel(t *testing.T) {
	universe := testutil.LoadUniverse(t)

	got := resolve(t, universe.Dataset, universe.Dataset["pets"], `[
		{"parent": "pets", "parentKey": "owner", "child": "users", "childKey": "id", "alias": "owner", "model": true,
		 "select": ["name"]}
	]`)

	testutil.AssertRecords(t, got, `[
		{"id": 10, "name": "Rex", "species": "dog", "owner": [{"name": "Alice"}]},
		{"id": 11, "name": "Tom", "species": "cat", "owner": [{"name": "bob"}]},
		{"id": 12, "name": "Kitty", "species": "cat", "owner": [{"name": "Alice"}]}
	]`)
}

func TestJoinRemoveParentKey(t *testing.T) {
	universe := testutil.LoadUniverse(t)

	got := resolve(t, universe.Dataset, universe.Dataset["pets"][:1], `[
		{"parent": "pets", "parentKey": "owner", "child": "users", "childKey": "id", "alias": "Owner",
		 "removeParentKey": true, "select": ["id"]}
	]`)

	testutil.AssertRecords(t, got, `[
		{"id": 10, "name": "Rex", "species": "dog", "owner_users": [{"id": 1}]}
	]`)
}

func TestJoinMissingParentKey(t *testing.T) {
	universe := testutil.LoadUniverse(t)
	records := testutil.Records(t, `[{"name": "orphan"}]`)

	got := resolve(t, universe.Dataset, records, `[
		{"parent": "pets", "parentKey": "owner", "child": "users", "childKey": "id", "alias": "owner",
		 "removeParentKey": true}
	]`)
	testutil.AssertRecords(t, got, `[{"name": "orphan"}]`)
}

func TestJoinJunctionTable(t *testing.T) {
	universe := testutil.LoadUniverse(t)

	specs := `[
		{"parent": "users", "parentKey": "id", "child": "user_roles", "childKey": "userId", "alias": "users"},
		{"parent": "user_roles", "parentKey": "roleId", "child": "roles", "childKey": "id", "alias": "Users",
		 "junctionTable": true, "select": ["name"]}
	]`
	got := resolve(t, universe.Dataset, universe.Users(), specs)

	sel, _ := CompileSelect(testutil.Value(t, `["name", "users_roles", "users_user_roles"]`))
	testutil.AssertRecords(t, sel.ApplyAll(got), `[
		{"name": "Alice", "users_roles": [{"name": "admin"}, {"name": "editor"}]},
		{"name": "bob", "users_roles": [{"name": "editor"}]},
		{"name": "Carol", "users_roles": []},
		{"name": "Dave", "users_roles": []}
	]`)

	t.Run("WithoutJunctionRows", func(t *testing.T) {
		// the entity join alone has no junction rows to read
		got := resolve(t, universe.Dataset, universe.Users()[:1], `[
			{"parent": "user_roles", "parentKey": "roleId", "child": "roles", "childKey": "id", "alias": "users",
			 "junctionTable": true}
		]`)
		if got[0].Has("users_roles") {
			t.Errorf("no children should be attached without junction rows: %v", got[0].Map())
		}
	})
}

func TestJoinCleanse(t *testing.T) {
	universe := testutil.LoadUniverse(t)
	records := testutil.Records(t, `[{"id": 1, "pets": "raw"}]`)

	got := resolve(t, universe.Dataset, records, `[
		{"parent": "users", "parentKey": "id", "child": "pets", "childKey": "owner", "alias": "my", "select": ["id"]}
	]`)
	testutil.AssertRecords(t, got, `[{"id": 1, "my_pets": [{"id": 10}, {"id": 12}]}]`)

	got = resolve(t, universe.Dataset, records, `[
		{"parent": "users", "parentKey": "id", "child": "pets", "childKey": "owner", "alias": "my", "select": true}
	]`)
	if v, _ := got[0].Get("pets"); v.String() != "raw" {
		t.Errorf("select true should keep the raw child key, got %v", got[0].Map())
	}
}

func TestJoinInvalidSpec(t *testing.T) {
	_, err := NewJoiner(joinSpecs(t, `[{"parent": "users", "parentKey": "id", "child": "pets"}]`), nil)
	testutil.AssertErrorCode(t, err, types.CodeInvalidJoin)
}
