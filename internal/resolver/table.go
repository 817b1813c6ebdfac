package resolver

import (
	"sort"

	"github.com/samber/lo"
)

const (
	// ResolveTypeField holds the abstract type resolution hook of an interface
	// or union. Its binding returns the concrete type name.
	ResolveTypeField = "__resolveType"
	// ResolveReferenceField holds the federation reference-resolution hook of
	// an entity type. Its binding receives the representation as source.
	ResolveReferenceField = "__resolveReference"
)

// Root operation type names.
const (
	QueryType    = "Query"
	MutationType = "Mutation"
)

// TypeResolvers holds the resolver entries of one named type. Fields is a
// field map; Scalar and Enum are leaf values that bypass diffing and
// compilation.
type TypeResolvers struct {
	Fields map[string]Entry
	Scalar *Scalar
	// Enum maps enum value names to their internal values.
	Enum map[string]any
}

// Table maps type names to their resolvers.
type Table map[string]*TypeResolvers

// Set stores e at (typeName, field), creating the type entry when needed.
func (t Table) Set(typeName, field string, e Entry) Table {
	tr := t[typeName]
	if tr == nil {
		tr = &TypeResolvers{}
		t[typeName] = tr
	}
	if tr.Fields == nil {
		tr.Fields = make(map[string]Entry)
	}
	tr.Fields[field] = e
	return t
}

// SetScalar registers a scalar implementation under its name.
func (t Table) SetScalar(s *Scalar) Table {
	tr := t[s.Name]
	if tr == nil {
		tr = &TypeResolvers{}
		t[s.Name] = tr
	}
	tr.Scalar = s
	return t
}

// SetEnum registers internal values for an enum type.
func (t Table) SetEnum(typeName string, values map[string]any) Table {
	tr := t[typeName]
	if tr == nil {
		tr = &TypeResolvers{}
		t[typeName] = tr
	}
	if tr.Enum == nil {
		tr.Enum = make(map[string]any, len(values))
	}
	for k, v := range values {
		tr.Enum[k] = v
	}
	return t
}

// Get returns the entry at (typeName, field).
func (t Table) Get(typeName, field string) (Entry, bool) {
	tr := t[typeName]
	if tr == nil {
		return nil, false
	}
	e, ok := tr.Fields[field]
	return e, ok
}

// TypeNames returns the type names of t in lexical order.
func (t Table) TypeNames() []string {
	names := lo.Keys(t)
	sort.Strings(names)
	return names
}

// FieldNames returns the field names of typeName in lexical order.
func (t Table) FieldNames(typeName string) []string {
	tr := t[typeName]
	if tr == nil {
		return nil
	}
	names := lo.Keys(tr.Fields)
	sort.Strings(names)
	return names
}

// Scalars returns the registered scalars ordered by name.
func (t Table) Scalars() []*Scalar {
	var out []*Scalar
	for _, name := range t.TypeNames() {
		if s := t[name].Scalar; s != nil {
			out = append(out, s)
		}
	}
	return out
}

// Merge deep-merges tables into a new Table. For every (type, field) key the
// entry of the last table holding it wins. Field and enum maps combine; a
// scalar overwrites an earlier scalar of the same name. Inputs are not
// modified.
func Merge(tables ...Table) Table {
	out := make(Table)
	for _, t := range tables {
		for typeName, src := range t {
			if src == nil {
				continue
			}
			dst := out[typeName]
			if dst == nil {
				dst = &TypeResolvers{}
				out[typeName] = dst
			}
			if len(src.Fields) > 0 && dst.Fields == nil {
				dst.Fields = make(map[string]Entry, len(src.Fields))
			}
			for field, e := range src.Fields {
				dst.Fields[field] = e
			}
			if len(src.Enum) > 0 && dst.Enum == nil {
				dst.Enum = make(map[string]any, len(src.Enum))
			}
			for name, v := range src.Enum {
				dst.Enum[name] = v
			}
			if src.Scalar != nil {
				dst.Scalar = src.Scalar
			}
		}
	}
	return out
}

// LeafEntries returns a Table holding only the scalar and enum entries of t.
func LeafEntries(t Table) Table {
	out := make(Table)
	for typeName, tr := range t {
		if tr == nil {
			continue
		}
		if tr.Scalar != nil {
			out.SetScalar(tr.Scalar)
		}
		if len(tr.Enum) > 0 {
			out.SetEnum(typeName, tr.Enum)
		}
	}
	return out
}
