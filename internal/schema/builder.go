package schema

import (
	"fmt"

	"github.com/hanpama/graphcompose/internal/language"
	"github.com/hanpama/graphcompose/internal/resolver"
)

// Build validates the SDL sources, compiles them and binds table strictly.
// Every failure is reported as a *BuildError.
func Build(table resolver.Table, sources ...*language.Source) (*Schema, error) {
	doc, err := language.LoadSchema(sources...)
	if err != nil {
		return nil, &BuildError{Err: err}
	}
	s := Compile(doc)
	if err := Bind(s, table); err != nil {
		return nil, &BuildError{Err: err}
	}
	return s, nil
}

// BuildFromSDL builds an executable schema from a single SDL document.
func BuildFromSDL(sdl string, table resolver.Table) (*Schema, error) {
	return Build(table, language.NewSource("schema.graphql", sdl))
}

// Compile converts a validated document into a Schema without resolvers.
// Extensions are already folded into their base definitions by validation.
// Introspection types are left out.
func Compile(doc *language.Schema) *Schema {
	s := &Schema{
		Types:       make(map[string]*Type, len(doc.Types)),
		Directives:  make(map[string]*Directive, len(doc.Directives)),
		Description: doc.Description,
	}
	if doc.Query != nil {
		s.QueryType = doc.Query.Name
	}
	if doc.Mutation != nil {
		s.MutationType = doc.Mutation.Name
	}
	if doc.Subscription != nil {
		s.SubscriptionType = doc.Subscription.Name
	}

	for name, def := range doc.Types {
		if IsIntrospectionName(name) {
			continue
		}
		s.Types[name] = compileType(def)
	}
	for name, def := range doc.Directives {
		s.Directives[name] = compileDirective(def)
	}
	return s
}

func compileType(def *language.Definition) *Type {
	t := &Type{
		Name:        def.Name,
		Description: def.Description,
		BuiltIn:     def.BuiltIn,
	}
	var rest language.DirectiveList
	for _, d := range def.Directives {
		switch d.Name {
		case "oneOf":
			t.OneOf = true
		case "specifiedBy":
			if arg := d.Arguments.ForName("url"); arg != nil && arg.Value != nil {
				url := arg.Value.Raw
				t.SpecifiedByURL = &url
			}
		default:
			rest = append(rest, d)
		}
	}
	t.Directives = compileAppliedDirectives(rest)

	switch def.Kind {
	case language.Object:
		t.Kind = TypeKindObject
	case language.Interface:
		t.Kind = TypeKindInterface
	case language.Union:
		t.Kind = TypeKindUnion
	case language.Scalar:
		t.Kind = TypeKindScalar
	case language.Enum:
		t.Kind = TypeKindEnum
	case language.InputObject:
		t.Kind = TypeKindInputObject
	}

	switch t.Kind {
	case TypeKindObject, TypeKindInterface:
		t.Interfaces = append(t.Interfaces, def.Interfaces...)
		for _, fd := range def.Fields {
			if IsIntrospectionName(fd.Name) {
				continue
			}
			t.Fields = append(t.Fields, compileField(fd))
		}
	case TypeKindUnion:
		t.PossibleTypes = append(t.PossibleTypes, def.Types...)
	case TypeKindEnum:
		for _, ev := range def.EnumValues {
			v := &EnumValue{Name: ev.Name, Description: ev.Description}
			v.IsDeprecated, v.DeprecationReason, v.Directives = splitDeprecation(ev.Directives)
			t.EnumValues = append(t.EnumValues, v)
		}
	case TypeKindInputObject:
		for _, fd := range def.Fields {
			in := &InputValue{
				Name:         fd.Name,
				Description:  fd.Description,
				Type:         compileTypeRef(fd.Type),
				DefaultValue: literal(fd.DefaultValue),
			}
			in.IsDeprecated, in.DeprecationReason, in.Directives = splitDeprecation(fd.Directives)
			t.InputFields = append(t.InputFields, in)
		}
	}
	return t
}

func compileField(fd *language.FieldDefinition) *Field {
	f := &Field{
		Name:        fd.Name,
		Description: fd.Description,
		Type:        compileTypeRef(fd.Type),
	}
	f.IsDeprecated, f.DeprecationReason, f.Directives = splitDeprecation(fd.Directives)
	for _, arg := range fd.Arguments {
		f.Arguments = append(f.Arguments, compileArgument(arg))
	}
	return f
}

func compileArgument(arg *language.ArgumentDefinition) *InputValue {
	in := &InputValue{
		Name:         arg.Name,
		Description:  arg.Description,
		Type:         compileTypeRef(arg.Type),
		DefaultValue: literal(arg.DefaultValue),
	}
	in.IsDeprecated, in.DeprecationReason, in.Directives = splitDeprecation(arg.Directives)
	return in
}

func compileDirective(def *language.DirectiveDefinition) *Directive {
	d := &Directive{
		Name:         def.Name,
		Description:  def.Description,
		IsRepeatable: def.IsRepeatable,
		BuiltIn:      def.Position != nil && def.Position.Src != nil && def.Position.Src.BuiltIn,
	}
	for _, loc := range def.Locations {
		d.Locations = append(d.Locations, string(loc))
	}
	for _, arg := range def.Arguments {
		d.Arguments = append(d.Arguments, compileArgument(arg))
	}
	return d
}

func splitDeprecation(list language.DirectiveList) (bool, string, []*AppliedDirective) {
	var (
		deprecated bool
		reason     string
		rest       language.DirectiveList
	)
	for _, d := range list {
		if d.Name != "deprecated" {
			rest = append(rest, d)
			continue
		}
		deprecated = true
		if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
			reason = arg.Value.Raw
		}
	}
	return deprecated, reason, compileAppliedDirectives(rest)
}

func compileAppliedDirectives(list language.DirectiveList) []*AppliedDirective {
	var out []*AppliedDirective
	for _, d := range list {
		ad := &AppliedDirective{Name: d.Name}
		for _, arg := range d.Arguments {
			ad.Arguments = append(ad.Arguments, &DirectiveArgument{Name: arg.Name, Value: literal(arg.Value)})
		}
		out = append(out, ad)
	}
	return out
}

func compileTypeRef(t *language.Type) *TypeRef {
	var ref *TypeRef
	if t.Elem != nil {
		ref = ListType(compileTypeRef(t.Elem))
	} else {
		ref = NamedType(t.NamedType)
	}
	if t.NonNull {
		return NonNullType(ref)
	}
	return ref
}

func literal(v *language.Value) Literal {
	if v == nil {
		return ""
	}
	return Literal(v.String())
}

// BuildError reports a schema that could not be compiled or bound.
type BuildError struct {
	Err error
}

func (e *BuildError) Error() string { return fmt.Sprintf("failed to build schema: %v", e.Err) }

func (e *BuildError) Unwrap() error { return e.Err }
