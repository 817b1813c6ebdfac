package schema

import (
	"strings"

	"github.com/hanpama/graphcompose/internal/resolver"
)

// Schema represents the complete executable GraphQL schema
type Schema struct {
	QueryType        string
	MutationType     string
	SubscriptionType string
	Types            map[string]*Type // All named types keyed by name
	Directives       map[string]*Directive
	Description      string
}

// Empty returns the explicit "no schema" value.
func Empty() *Schema {
	return &Schema{Types: map[string]*Type{}, Directives: map[string]*Directive{}}
}

// IsEmpty reports whether s has no root types and no user-defined types.
func (s *Schema) IsEmpty() bool {
	if s == nil {
		return true
	}
	if s.QueryType != "" || s.MutationType != "" || s.SubscriptionType != "" {
		return false
	}
	for _, t := range s.Types {
		if !t.BuiltIn {
			return false
		}
	}
	return true
}

// GetQueryType returns the root query type (may be nil if absent)
func (s *Schema) GetQueryType() *Type { return s.lookup(s.QueryType) }

// GetMutationType returns the root mutation type (may be nil if absent)
func (s *Schema) GetMutationType() *Type { return s.lookup(s.MutationType) }

// GetSubscriptionType returns the root subscription type (may be nil if absent)
func (s *Schema) GetSubscriptionType() *Type { return s.lookup(s.SubscriptionType) }

func (s *Schema) lookup(name string) *Type {
	if name == "" {
		return nil
	}
	return s.Types[name]
}

// IsRootType reports whether name is one of the root operation types of s.
func (s *Schema) IsRootType(name string) bool {
	return name != "" && (name == s.QueryType || name == s.MutationType || name == s.SubscriptionType)
}

// Type is a named GraphQL type (object, interface, union, scalar, enum, input)
type Type struct {
	Name           string
	Kind           TypeKind
	Description    string
	Fields         []*Field      // For OBJECT and INTERFACE
	Interfaces     []string      // For OBJECT and INTERFACE (implemented/extended)
	PossibleTypes  []string      // For INTERFACE and UNION
	EnumValues     []*EnumValue  // For ENUM
	InputFields    []*InputValue // For INPUT_OBJECT
	Directives     []*AppliedDirective
	SpecifiedByURL *string
	OneOf          bool
	// BuiltIn marks types supplied by the GraphQL prelude.
	BuiltIn bool

	// ResolveType returns the concrete type name of an abstract value.
	ResolveType resolver.Func `json:"-"`
	// ResolveReference loads an entity from its federation representation.
	ResolveReference resolver.Func `json:"-"`
	// Scalar implements a custom scalar.
	Scalar *resolver.Scalar `json:"-"`
	// Hooks holds other type-level hooks keyed by their name without the
	// leading "__".
	Hooks map[string]resolver.Func `json:"-"`
}

// Field looks up a field by name.
func (t *Type) Field(name string) *Field {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// EnumValue looks up an enum value by name.
func (t *Type) EnumValue(name string) *EnumValue {
	for _, v := range t.EnumValues {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// HasDirective reports whether the directive is applied to the type.
func (t *Type) HasDirective(name string) bool {
	return findDirective(t.Directives, name) != nil
}

// Field represents a field on an object or interface
type Field struct {
	Name              string
	Description       string
	Type              *TypeRef
	Arguments         []*InputValue
	Directives        []*AppliedDirective
	IsDeprecated      bool
	DeprecationReason string

	// Resolve produces the field value. Nil means the default property
	// lookup on the parent value.
	Resolve resolver.Func `json:"-"`
}

// TypeKind represents the kind of GraphQL type
type TypeKind string

const (
	TypeKindScalar      TypeKind = "SCALAR"
	TypeKindObject      TypeKind = "OBJECT"
	TypeKindInterface   TypeKind = "INTERFACE"
	TypeKindUnion       TypeKind = "UNION"
	TypeKindEnum        TypeKind = "ENUM"
	TypeKindInputObject TypeKind = "INPUT_OBJECT"
)

// IsAbstract reports whether values of the kind need type resolution.
func (k TypeKind) IsAbstract() bool { return k == TypeKindInterface || k == TypeKindUnion }

// TypeRef represents a reference to a type (can be wrapped)
type TypeRef struct {
	Kind   TypeRefKind
	OfType *TypeRef // For List and NonNull
	Named  string   // For named types
}

type TypeRefKind string

const (
	TypeRefKindNamed   TypeRefKind = "NAMED"
	TypeRefKindList    TypeRefKind = "LIST"
	TypeRefKindNonNull TypeRefKind = "NON_NULL"
)

func (t *TypeRef) IsNonNull() bool {
	return t != nil && t.Kind == TypeRefKindNonNull
}

func (t *TypeRef) IsList() bool {
	if t.Kind == TypeRefKindList {
		return true
	}
	if t.Kind == TypeRefKindNonNull && t.OfType != nil {
		return t.OfType.Kind == TypeRefKindList
	}
	return false
}

func (t *TypeRef) GetNamedType() string {
	current := t
	for current != nil {
		if current.Named != "" {
			return current.Named
		}
		current = current.OfType
	}
	return ""
}

func (t *TypeRef) String() string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case TypeRefKindNamed:
		return t.Named
	case TypeRefKindList:
		return "[" + t.OfType.String() + "]"
	case TypeRefKindNonNull:
		return t.OfType.String() + "!"
	}
	return ""
}

type EnumValue struct {
	Name              string
	Description       string
	Directives        []*AppliedDirective
	IsDeprecated      bool
	DeprecationReason string
	// Value is the internal value of the enum entry. Nil means the name.
	Value any `json:"-"`
}

type InputValue struct {
	Name              string
	Description       string
	Type              *TypeRef
	DefaultValue      Literal
	Directives        []*AppliedDirective
	IsDeprecated      bool
	DeprecationReason string
}

// Literal is a GraphQL value literal kept as written, e.g. `10`, `"x"` or
// `{a: [1, 2]}`. The empty literal means no value.
type Literal string

type Directive struct {
	Name         string
	Description  string
	Locations    []string
	Arguments    []*InputValue
	IsRepeatable bool
	BuiltIn      bool
}

// AppliedDirective is a directive used on a definition, e.g. @key(fields: "id").
type AppliedDirective struct {
	Name      string
	Arguments []*DirectiveArgument
}

type DirectiveArgument struct {
	Name  string
	Value Literal
}

// Argument returns the literal passed for name, if any.
func (d *AppliedDirective) Argument(name string) (Literal, bool) {
	for _, a := range d.Arguments {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

func findDirective(list []*AppliedDirective, name string) *AppliedDirective {
	for _, d := range list {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// IsIntrospectionName reports whether name is reserved for introspection.
func IsIntrospectionName(name string) bool { return strings.HasPrefix(name, "__") }

func NonNullType(t *TypeRef) *TypeRef { return &TypeRef{Kind: TypeRefKindNonNull, OfType: t} }
func ListType(t *TypeRef) *TypeRef    { return &TypeRef{Kind: TypeRefKindList, OfType: t} }
func NamedType(name string) *TypeRef  { return &TypeRef{Kind: TypeRefKindNamed, Named: name} }
