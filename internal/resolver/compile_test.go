package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	reqs []*Request
	out  any
}

func (r *recorder) action(_ context.Context, req *Request) (any, error) {
	r.reqs = append(r.reqs, req)
	return r.out, nil
}

func userEntity(rec *recorder) *Entity {
	return &Entity{
		Name: "user",
		Attributes: map[string]Attribute{
			"username": {Type: AttributeString, Required: true},
			"age":      {Type: AttributeInteger},
			"role":     {Type: AttributeEnumeration, Enum: []string{"admin", "editor"}},
		},
		Actions: map[string]Action{
			"find":    rec.action,
			"findOne": rec.action,
			"create":  rec.action,
			"update":  rec.action,
		},
	}
}

func resolve(t *testing.T, tbl Table, typeName, field string, args map[string]any) (any, error) {
	t.Helper()
	e, ok := tbl.Get(typeName, field)
	require.True(t, ok, "missing %s.%s", typeName, field)
	b, ok := e.(*Binding)
	require.True(t, ok, "%s.%s is %T", typeName, field, e)
	return b.Func(context.Background(), nil, args)
}

func TestCompilePassThroughAndDrop(t *testing.T) {
	b := constant("me")
	s := &Scalar{Name: "JSON"}
	diff := Table{}.
		Set("Query", "me", b).
		Set("Mutation", "createUser", Disabled{}).
		SetScalar(s)

	out, err := NewCompiler(nil).Compile(diff)
	require.NoError(t, err)

	e, ok := out.Get("Query", "me")
	require.True(t, ok)
	require.Same(t, b, e)
	_, ok = out.Get("Mutation", "createUser")
	require.False(t, ok)
	require.Same(t, s, out["JSON"].Scalar)
}

func TestCompileQueryShape(t *testing.T) {
	rec := &recorder{out: []any{map[string]any{"id": "1"}}}
	diff := Table{}.Set("Query", "users", &Spec{Target: "user", Action: "find", Policies: []string{"isAuthenticated"}})

	var policyCalls int
	c := NewCompiler([]*Entity{userEntity(rec)},
		WithLimits(Limits{Default: 10, Max: 50}),
		WithPolicies(map[string]Policy{
			"isAuthenticated": func(context.Context, *Request) error { policyCalls++; return nil },
		}),
	)
	out, err := c.Compile(diff)
	require.NoError(t, err)

	where := map[string]any{"username": "ann"}
	res, err := resolve(t, out, "Query", "users", map[string]any{
		"where":            where,
		"sort":             "username:asc, age:desc",
		"start":            5,
		"limit":            -1,
		"publicationState": "PREVIEW",
	})
	require.NoError(t, err)
	require.Equal(t, rec.out, res)
	require.Equal(t, 1, policyCalls)
	require.Len(t, rec.reqs, 1)

	req := rec.reqs[0]
	require.False(t, req.IsMutation())
	require.Equal(t, "user", req.Entity)
	require.Equal(t, "find", req.Action)
	require.Equal(t, 5, req.Start)
	require.Equal(t, 50, req.Limit)
	require.Equal(t, PublicationPreview, req.PublicationState)
	if diff := cmp.Diff([]SortField{{Field: "username", Order: SortAsc}, {Field: "age", Order: SortDesc}}, req.Sort); diff != "" {
		t.Errorf("sort mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{"username": "ann"}, req.Where); diff != "" {
		t.Errorf("where mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileQueryDefaults(t *testing.T) {
	rec := &recorder{out: map[string]any{"user": map[string]any{"id": "7"}}}
	diff := Table{}.Set("Query", "user", &Spec{
		Target:    "user",
		Action:    "findOne",
		Transform: Transform{Pick: "user", Wrap: "node"},
	})
	out, err := NewCompiler([]*Entity{userEntity(rec)}).Compile(diff)
	require.NoError(t, err)

	res, err := resolve(t, out, "Query", "user", map[string]any{"id": "7"})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"node": map[string]any{"id": "7"}}, res)

	req := rec.reqs[0]
	require.Equal(t, DefaultLimits.Default, req.Limit)
	require.Equal(t, PublicationLive, req.PublicationState)
	require.Equal(t, "7", req.ID)
	require.Equal(t, map[string]any{"id": "7"}, req.Where)
}

func TestCompileQueryRejectsBadArgs(t *testing.T) {
	rec := &recorder{}
	diff := Table{}.Set("Query", "users", &Spec{Target: "user", Action: "find"})
	out, err := NewCompiler([]*Entity{userEntity(rec)}).Compile(diff)
	require.NoError(t, err)

	for name, args := range map[string]map[string]any{
		"sort order":  {"sort": "username:sideways"},
		"limit":       {"limit": -5},
		"start":       {"start": "x"},
		"publication": {"publicationState": "DRAFT"},
		"where":       {"where": "id=1"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := resolve(t, out, "Query", "users", args)
			var inputErr *InputError
			require.ErrorAs(t, err, &inputErr)
		})
	}
	require.Empty(t, rec.reqs)
}

func TestCompileMutationShape(t *testing.T) {
	rec := &recorder{out: map[string]any{"id": "1", "username": "ann"}}
	diff := Table{}.
		Set("Mutation", "createUser", &Spec{Target: "user", Action: "create", Transform: Transform{Wrap: "user"}}).
		Set("Mutation", "updateUser", &Spec{Target: "user", Action: "update"})
	out, err := NewCompiler([]*Entity{userEntity(rec)}).Compile(diff)
	require.NoError(t, err)

	res, err := resolve(t, out, "Mutation", "createUser", map[string]any{
		"input": map[string]any{"data": map[string]any{"username": "ann", "age": 30.0}},
	})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"user": rec.out}, res)
	require.True(t, rec.reqs[0].IsMutation())
	require.Equal(t, map[string]any{"username": "ann", "age": 30.0}, rec.reqs[0].Data)

	_, err = resolve(t, out, "Mutation", "updateUser", map[string]any{
		"input": map[string]any{
			"where": map[string]any{"id": "1"},
			"data":  map[string]any{"role": "editor"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "1", rec.reqs[1].ID)
}

func TestCompileMutationValidation(t *testing.T) {
	rec := &recorder{out: map[string]any{}}
	diff := Table{}.
		Set("Mutation", "createUser", &Spec{Target: "user", Action: "create"}).
		Set("Mutation", "updateUser", &Spec{Target: "user", Action: "update"})
	out, err := NewCompiler([]*Entity{userEntity(rec)}).Compile(diff)
	require.NoError(t, err)

	cases := []struct {
		name  string
		field string
		data  map[string]any
		want  string
	}{
		{"missing required on create", "createUser", map[string]any{"age": 1}, "username"},
		{"unknown attribute", "updateUser", map[string]any{"nickname": "x"}, "nickname"},
		{"wrong type", "updateUser", map[string]any{"age": "old"}, "age"},
		{"enum value", "updateUser", map[string]any{"role": "owner"}, "role"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := resolve(t, out, "Mutation", tc.field, map[string]any{"input": map[string]any{"data": tc.data}})
			var inputErr *InputError
			require.ErrorAs(t, err, &inputErr)
			require.Equal(t, tc.want, inputErr.Field)
		})
	}
	require.Empty(t, rec.reqs)

	// Required attributes are not enforced outside create.
	_, err = resolve(t, out, "Mutation", "updateUser", map[string]any{"data": map[string]any{"age": 2}})
	require.NoError(t, err)
}

func TestCompileMutationRejectsList(t *testing.T) {
	rec := &recorder{out: []any{map[string]any{}, map[string]any{}}}
	diff := Table{}.Set("Mutation", "updateUser", &Spec{Target: "user", Action: "update"})
	out, err := NewCompiler([]*Entity{userEntity(rec)}).Compile(diff)
	require.NoError(t, err)

	_, err = resolve(t, out, "Mutation", "updateUser", nil)
	require.ErrorContains(t, err, "returned a list")
}

func TestCompilePolicyDenies(t *testing.T) {
	rec := &recorder{}
	denied := errors.New("forbidden")
	diff := Table{}.Set("Query", "users", &Spec{Target: "user", Action: "find", Policies: []string{"deny"}})
	out, err := NewCompiler([]*Entity{userEntity(rec)}, WithPolicies(map[string]Policy{
		"deny": func(context.Context, *Request) error { return denied },
	})).Compile(diff)
	require.NoError(t, err)

	_, err = resolve(t, out, "Query", "users", nil)
	require.ErrorIs(t, err, denied)
	require.Empty(t, rec.reqs)
}

func TestCompileSpecErrors(t *testing.T) {
	rec := &recorder{}
	diff := Table{}.
		Set("Query", "posts", &Spec{Target: "post", Action: "find"}).
		Set("Query", "users", &Spec{Target: "user", Action: "count"}).
		Set("Mutation", "createUser", &Spec{Target: "user", Action: "create", Policies: []string{"missing"}})

	_, err := NewCompiler([]*Entity{userEntity(rec)}, WithPolicies(map[string]Policy{})).Compile(diff)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrUnknownEntity)
	require.ErrorIs(t, err, ErrUnknownAction)
	require.ErrorIs(t, err, ErrUnknownPolicy)

	var specErr *SpecError
	require.ErrorAs(t, err, &specErr)
	// Errors are reported type by type in lexical order.
	require.Equal(t, "Mutation", specErr.Type)
	require.Equal(t, "createUser", specErr.Field)

	// Without a registry, policy names are not checked.
	_, err = NewCompiler([]*Entity{userEntity(rec)}).Compile(
		Table{}.Set("Query", "users", &Spec{Target: "user", Action: "find", Policies: []string{"anything"}}),
	)
	require.NoError(t, err)
}

func TestWithLimitsKeepsDefault(t *testing.T) {
	rec := &recorder{out: []any{}}
	diff := Table{}.Set("Query", "users", &Spec{Target: "user", Action: "find"})
	out, err := NewCompiler([]*Entity{userEntity(rec)}, WithLimits(Limits{Max: 50})).Compile(diff)
	require.NoError(t, err)

	_, err = resolve(t, out, "Query", "users", map[string]any{})
	require.NoError(t, err)
	require.Equal(t, 50, rec.reqs[0].Limit)

	out, err = NewCompiler([]*Entity{userEntity(rec)}, WithLimits(Limits{Max: 500})).Compile(diff)
	require.NoError(t, err)
	_, err = resolve(t, out, "Query", "users", nil)
	require.NoError(t, err)
	require.Equal(t, DefaultLimits.Default, rec.reqs[1].Limit)
}

func TestMutationCopiesWhere(t *testing.T) {
	rec := &recorder{out: map[string]any{}}
	edit := func(_ context.Context, req *Request) (any, error) {
		req.Where["id"] = "changed"
		req.Where["extra"] = true
		return map[string]any{}, nil
	}
	entity := userEntity(rec)
	entity.Actions["update"] = edit
	out, err := NewCompiler([]*Entity{entity}).Compile(
		Table{}.Set("Mutation", "updateUser", &Spec{Target: "user", Action: "update"}),
	)
	require.NoError(t, err)

	where := map[string]any{"id": "1"}
	_, err = resolve(t, out, "Mutation", "updateUser", map[string]any{"where": where})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"id": "1"}, where)
}
