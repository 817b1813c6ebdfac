package resolver

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	shared := constant("shared")
	override := constant("override")
	spec := &Spec{Target: "user", Action: "find"}

	generated := Table{}.
		Set("Query", "users", shared).
		Set("Query", "user", &Spec{Target: "user", Action: "findOne"}).
		Set("Query", "articles", constant("articles")).
		Set("Mutation", "createUser", constant("create"))

	custom := Table{}.
		Set("Query", "users", shared).
		Set("Query", "user", &Spec{Target: "user", Action: "findOne"}).
		Set("Query", "me", override).
		Set("Query", "search", spec).
		Set("Mutation", "createUser", Disabled{}).
		SetScalar(&Scalar{Name: "JSON"})

	diff := Diff(custom, generated)

	got := map[string][]string{}
	for _, typeName := range diff.TypeNames() {
		got[typeName] = diff.FieldNames(typeName)
	}
	want := map[string][]string{
		"Mutation": {"createUser"},
		"Query":    {"me", "search"},
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("diff keys mismatch (-want +got):\n%s", d)
	}

	e, _ := diff.Get("Mutation", "createUser")
	require.True(t, IsDisabled(e))
	e, _ = diff.Get("Query", "me")
	require.Same(t, override, e)
	e, _ = diff.Get("Query", "search")
	require.Same(t, spec, e)
}

func TestDiffEmptyInputs(t *testing.T) {
	require.Empty(t, Diff(nil, nil))
	require.Empty(t, Diff(Table{}, Table{}.Set("Query", "a", constant(1))))

	// Any disable survives, even one that matches nothing generated.
	diff := Diff(Table{}.Set("Query", "gone", Disabled{}), nil)
	e, ok := diff.Get("Query", "gone")
	require.True(t, ok)
	require.True(t, IsDisabled(e))
}
