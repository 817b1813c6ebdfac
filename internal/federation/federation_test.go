package federation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hanpama/graphcompose/internal/resolver"
	"github.com/hanpama/graphcompose/internal/schema"
)

const productSDL = `
scalar _FieldSet
directive @key(fields: _FieldSet!) on OBJECT | INTERFACE

type Product @key(fields: "upc") {
  upc: String!
  name: String
}

type Review {
  body: String
}

union Content = Product | Review

type Query {
  topProducts(first: Int = 5): [Product]
}
`

func productTable(calls *int) resolver.Table {
	return resolver.Table{}.
		Set("Query", "topProducts", resolver.Bind(func(context.Context, any, map[string]any) (any, error) {
			return []any{map[string]any{"upc": "1"}}, nil
		})).
		Set("Product", resolver.ResolveReferenceField, resolver.Bind(func(_ context.Context, source any, _ map[string]any) (any, error) {
			*calls++
			rep := source.(map[string]any)
			return map[string]any{"upc": rep["upc"], "name": "Product " + rep["upc"].(string)}, nil
		})).
		Set("Content", resolver.ResolveTypeField, resolver.Bind(func(context.Context, any, map[string]any) (any, error) {
			return "Product", nil
		}))
}

func TestBuildIsLossy(t *testing.T) {
	var calls int
	s, err := Build(productSDL, productTable(&calls))
	require.NoError(t, err)

	product := s.Types["Product"]
	require.Nil(t, product.ResolveReference)
	require.Contains(t, product.Hooks, "resolveReference")
	require.NotNil(t, s.Types["Content"].ResolveType)
	require.NotNil(t, s.GetQueryType().Field("topProducts").Resolve)

	for _, name := range []string{AnyScalar, FieldSetScalar, ServiceType, EntityUnion} {
		require.Contains(t, s.Types, name)
	}
	for _, name := range []string{"key", "external", "requires", "provides", "extends"} {
		require.Contains(t, s.Directives, name)
	}
	require.Equal(t, []string{"Product"}, s.Types[EntityUnion].PossibleTypes)
	require.NotNil(t, s.GetQueryType().Field(ServiceField))
	require.NotNil(t, s.GetQueryType().Field(EntitiesField))
}

func TestFederatePreservesReferenceHook(t *testing.T) {
	ctx := context.Background()
	var calls int
	table := productTable(&calls)

	pre, err := schema.BuildFromSDL(productSDL, table)
	require.NoError(t, err)
	require.NotNil(t, pre.Types["Product"].ResolveReference)

	post, err := Federate(pre, table)
	require.NoError(t, err)

	hook := post.Types["Product"].ResolveReference
	require.NotNil(t, hook)

	rep := map[string]any{TypenameKey: "Product", "upc": "42"}
	want, err := pre.Types["Product"].ResolveReference(ctx, rep, nil)
	require.NoError(t, err)
	got, err := hook(ctx, rep, nil)
	require.NoError(t, err)
	require.Equal(t, want, got)

	entities, err := post.GetQueryType().Field(EntitiesField).Resolve(ctx, nil, map[string]any{
		"representations": []any{rep},
	})
	require.NoError(t, err)
	require.Equal(t, []any{want}, entities)
	require.Equal(t, 3, calls)

	typ, err := post.Types[EntityUnion].ResolveType(ctx, rep, nil)
	require.NoError(t, err)
	require.Equal(t, "Product", typ)

	service, err := post.GetQueryType().Field(ServiceField).Resolve(ctx, nil, nil)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"sdl": schema.Render(pre)}, service)
}

func TestEntitiesWithoutHook(t *testing.T) {
	s, err := Build(`
type User @key(fields: "id") { id: ID! }
`, nil)
	require.NoError(t, err)

	rep := map[string]any{TypenameKey: "User", "id": "1"}
	out, err := s.GetQueryType().Field(EntitiesField).Resolve(context.Background(), nil, map[string]any{
		"representations": []any{rep},
	})
	require.NoError(t, err)
	require.Equal(t, []any{rep}, out)

	_, err = s.GetQueryType().Field(EntitiesField).Resolve(context.Background(), nil, map[string]any{
		"representations": []any{map[string]any{TypenameKey: "Ghost"}},
	})
	require.ErrorContains(t, err, "Ghost")
}

func TestBuildWithoutEntities(t *testing.T) {
	s, err := Build("type Query { ok: Boolean }", nil)
	require.NoError(t, err)
	require.NotContains(t, s.Types, EntityUnion)
	require.Nil(t, s.GetQueryType().Field(EntitiesField))
	require.NotNil(t, s.GetQueryType().Field(ServiceField))
}

func TestRepairReferenceHooks(t *testing.T) {
	hook := func(context.Context, any, map[string]any) (any, error) { return "ref", nil }
	pre := &schema.Schema{Types: map[string]*schema.Type{
		"A": {Name: "A", ResolveReference: hook},
		"B": {Name: "B", ResolveReference: hook},
	}}
	post := &schema.Schema{Types: map[string]*schema.Type{
		"A": {Name: "A"},
		"C": {Name: "C"},
	}}
	RepairReferenceHooks(pre, post)
	require.NotNil(t, post.Types["A"].ResolveReference)
	require.Nil(t, post.Types["C"].ResolveReference)
	require.NotContains(t, post.Types, "B")
}

func TestBuildError(t *testing.T) {
	_, err := Build("type Product @key(fields: \"upc\") { upc: Missing }", nil)
	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)

	_, err = Federate(&schema.Schema{Types: map[string]*schema.Type{
		"Query": {Name: "Query", Kind: schema.TypeKindObject, Fields: []*schema.Field{
			{Name: "x", Type: schema.NamedType("Nope")},
		}},
	}, QueryType: "Query"}, nil)
	require.ErrorAs(t, err, &buildErr)
}
