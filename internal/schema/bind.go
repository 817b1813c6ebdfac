package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/hanpama/graphcompose/internal/resolver"
)

// Bind attaches the entries of table to s in place. Every entry must name an
// existing type and field; scalar implementations must target scalars and
// enum values must exist. Disabled entries are ignored and declarative specs
// are rejected since they must be compiled first. All problems are joined
// into the returned error.
func Bind(s *Schema, table resolver.Table) error {
	var errs []error
	for _, typeName := range table.TypeNames() {
		tr := table[typeName]
		t := s.Types[typeName]
		if t == nil {
			errs = append(errs, fmt.Errorf("resolvers given for unknown type %q", typeName))
			continue
		}
		if tr.Scalar != nil {
			if t.Kind != TypeKindScalar {
				errs = append(errs, fmt.Errorf("scalar implementation given for %s type %q", t.Kind, typeName))
			} else {
				t.Scalar = tr.Scalar
			}
		}
		if len(tr.Enum) > 0 {
			errs = append(errs, bindEnum(t, tr.Enum)...)
		}
		for _, field := range table.FieldNames(typeName) {
			if err := bindField(t, field, tr.Fields[field]); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func bindEnum(t *Type, values map[string]any) []error {
	if t.Kind != TypeKindEnum {
		return []error{fmt.Errorf("enum values given for %s type %q", t.Kind, t.Name)}
	}
	var errs []error
	for _, name := range sortedNames(values) {
		v := t.EnumValue(name)
		if v == nil {
			errs = append(errs, fmt.Errorf("enum %q has no value %q", t.Name, name))
			continue
		}
		v.Value = values[name]
	}
	return errs
}

func bindField(t *Type, field string, e resolver.Entry) error {
	var fn resolver.Func
	switch e := e.(type) {
	case resolver.Disabled, nil:
		return nil
	case *resolver.Spec:
		return fmt.Errorf("resolver %s.%s is not compiled", t.Name, field)
	case *resolver.Binding:
		fn = e.Func
	}

	switch field {
	case resolver.ResolveTypeField:
		if !t.Kind.IsAbstract() {
			return fmt.Errorf("%s given for %s type %q", field, t.Kind, t.Name)
		}
		t.ResolveType = fn
		return nil
	case resolver.ResolveReferenceField:
		if t.Kind != TypeKindObject && t.Kind != TypeKindInterface {
			return fmt.Errorf("%s given for %s type %q", field, t.Kind, t.Name)
		}
		t.ResolveReference = fn
		return nil
	}
	if strings.HasPrefix(field, "__") {
		return fmt.Errorf("unknown hook %s.%s", t.Name, field)
	}
	f := t.Field(field)
	if f == nil {
		return fmt.Errorf("resolver given for unknown field %s.%s", t.Name, field)
	}
	f.Resolve = fn
	return nil
}

func sortedNames[V any](m map[string]V) []string {
	names := lo.Keys(m)
	sort.Strings(names)
	return names
}
