// Package federation turns an executable schema into a federated subgraph.
package federation

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/hanpama/graphcompose/internal/language"
	"github.com/hanpama/graphcompose/internal/resolver"
	"github.com/hanpama/graphcompose/internal/schema"
)

// Names added to a subgraph.
const (
	AnyScalar      = "_Any"
	FieldSetScalar = "_FieldSet"
	ServiceType    = "_Service"
	EntityUnion    = "_Entity"
	ServiceField   = "_service"
	EntitiesField  = "_entities"
	KeyDirective   = "key"
	TypenameKey    = "__typename"
)

var preludeTypes = map[string]string{
	AnyScalar:      "scalar _Any",
	FieldSetScalar: "scalar _FieldSet",
	ServiceType:    "type _Service {\n  sdl: String\n}",
}

var preludeDirectives = map[string]string{
	"key":      "directive @key(fields: _FieldSet!) repeatable on OBJECT | INTERFACE",
	"external": "directive @external on FIELD_DEFINITION | OBJECT",
	"requires": "directive @requires(fields: _FieldSet!) on FIELD_DEFINITION",
	"provides": "directive @provides(fields: _FieldSet!) on FIELD_DEFINITION",
	"extends":  "directive @extends on OBJECT | INTERFACE",
}

// BuildError reports a subgraph that could not be compiled.
type BuildError struct {
	Err error
}

func (e *BuildError) Error() string { return fmt.Sprintf("failed to build federated schema: %v", e.Err) }

func (e *BuildError) Unwrap() error { return e.Err }

// Federate re-renders s as a federated subgraph bound to table and restores
// the reference hooks the subgraph compiler does not carry over.
func Federate(s *schema.Schema, table resolver.Table) (*schema.Schema, error) {
	post, err := Build(schema.Render(s), table)
	if err != nil {
		return nil, err
	}
	RepairReferenceHooks(s, post)
	return post, nil
}

// Build compiles sdl together with the federation types, directives and
// root fields and binds table leniently: entries for unknown types or
// fields are ignored and type-level hooks other than __resolveType are kept
// in Type.Hooks under their bare name.
func Build(sdl string, table resolver.Table) (*schema.Schema, error) {
	doc, err := language.ParseSchema("subgraph.graphql", sdl)
	if err != nil {
		return nil, &BuildError{Err: err}
	}
	entities := entityTypes(doc)

	validated, err := language.LoadSchema(
		language.NewSource("subgraph.graphql", sdl),
		language.NewSource("federation.graphql", prelude(doc, entities)),
	)
	if err != nil {
		return nil, &BuildError{Err: err}
	}
	s := schema.Compile(validated)
	bindLenient(s, table)
	bindFederation(s, sdl, len(entities) > 0)
	return s, nil
}

// entityTypes returns the object types carrying @key, including types that
// only gain the directive through an extension.
func entityTypes(doc *language.SchemaDocument) []string {
	var names []string
	collect := func(defs language.DefinitionList) {
		for _, def := range defs {
			if def.Kind == language.Object && def.Directives.ForName(KeyDirective) != nil {
				names = append(names, def.Name)
			}
		}
	}
	collect(doc.Definitions)
	collect(doc.Extensions)
	names = lo.Uniq(names)
	sort.Strings(names)
	return names
}

func prelude(doc *language.SchemaDocument, entities []string) string {
	defined := language.DefinedNames(doc)
	directives := lo.Associate(doc.Directives, func(d *language.DirectiveDefinition) (string, bool) {
		return d.Name, true
	})

	var parts []string
	for _, name := range lo.Keys(preludeTypes) {
		if _, ok := defined[name]; !ok {
			parts = append(parts, preludeTypes[name])
		}
	}
	for _, name := range lo.Keys(preludeDirectives) {
		if !directives[name] {
			parts = append(parts, preludeDirectives[name])
		}
	}
	sort.Strings(parts)

	if len(entities) > 0 {
		parts = append(parts, "union _Entity = "+strings.Join(entities, " | "))
	}

	fields := "  _service: _Service!\n"
	if len(entities) > 0 {
		fields += "  _entities(representations: [_Any!]!): [_Entity]!\n"
	}
	hasQuery := defined[resolver.QueryType] == language.Object ||
		lo.ContainsBy(doc.Extensions, func(d *language.Definition) bool { return d.Name == resolver.QueryType })
	if hasQuery {
		parts = append(parts, "extend type Query {\n"+fields+"}")
	} else {
		parts = append(parts, "type Query {\n"+fields+"}")
	}
	return strings.Join(parts, "\n\n") + "\n"
}

func bindLenient(s *schema.Schema, table resolver.Table) {
	for _, typeName := range table.TypeNames() {
		tr := table[typeName]
		t := s.Types[typeName]
		if t == nil {
			continue
		}
		if tr.Scalar != nil && t.Kind == schema.TypeKindScalar {
			t.Scalar = tr.Scalar
		}
		if t.Kind == schema.TypeKindEnum {
			for name, v := range tr.Enum {
				if ev := t.EnumValue(name); ev != nil {
					ev.Value = v
				}
			}
		}
		for field, e := range tr.Fields {
			b, ok := e.(*resolver.Binding)
			if !ok {
				continue
			}
			switch {
			case field == resolver.ResolveTypeField:
				if t.Kind.IsAbstract() {
					t.ResolveType = b.Func
				}
			case strings.HasPrefix(field, "__"):
				if t.Hooks == nil {
					t.Hooks = make(map[string]resolver.Func)
				}
				t.Hooks[strings.TrimPrefix(field, "__")] = b.Func
			default:
				if f := t.Field(field); f != nil {
					f.Resolve = b.Func
				}
			}
		}
	}
}

// bindFederation attaches the resolvers of the federation root fields.
// _entities looks hooks up on s when called, so hooks restored after Build
// are honoured.
func bindFederation(s *schema.Schema, sdl string, hasEntities bool) {
	query := s.GetQueryType()
	if f := query.Field(ServiceField); f != nil {
		service := map[string]any{"sdl": sdl}
		f.Resolve = func(context.Context, any, map[string]any) (any, error) { return service, nil }
	}
	if !hasEntities {
		return
	}
	if f := query.Field(EntitiesField); f != nil {
		f.Resolve = func(ctx context.Context, _ any, args map[string]any) (any, error) {
			return resolveEntities(ctx, s, args)
		}
	}
	if u := s.Types[EntityUnion]; u != nil {
		u.ResolveType = func(_ context.Context, source any, _ map[string]any) (any, error) {
			return typename(source)
		}
	}
}

func resolveEntities(ctx context.Context, s *schema.Schema, args map[string]any) (any, error) {
	reps, ok := args["representations"].([]any)
	if !ok {
		return nil, fmt.Errorf("%s: representations must be a list", EntitiesField)
	}
	out := make([]any, len(reps))
	for i, rep := range reps {
		name, err := typename(rep)
		if err != nil {
			return nil, fmt.Errorf("%s: representation %d: %w", EntitiesField, i, err)
		}
		t := s.Types[name]
		if t == nil {
			return nil, fmt.Errorf("%s: representation %d: unknown type %q", EntitiesField, i, name)
		}
		if t.ResolveReference == nil {
			out[i] = rep
			continue
		}
		v, err := t.ResolveReference(ctx, rep, nil)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func typename(v any) (string, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return "", fmt.Errorf("expected an object, got %T", v)
	}
	name, _ := m[TypenameKey].(string)
	if name == "" {
		return "", fmt.Errorf("missing %s", TypenameKey)
	}
	return name, nil
}

// RepairReferenceHooks copies every reference-resolution hook of pre onto the
// type of the same name in post. The subgraph compiler keeps such hooks only
// in Type.Hooks, so without this pass entities would resolve to their bare
// representation.
func RepairReferenceHooks(pre, post *schema.Schema) {
	for name, before := range pre.Types {
		if before.ResolveReference == nil {
			continue
		}
		if after := post.Types[name]; after != nil {
			after.ResolveReference = before.ResolveReference
		}
	}
}
