package schema

import (
	"github.com/samber/lo"

	"github.com/hanpama/graphcompose/internal/resolver"
)

// FilterDisabled returns a copy of s without the Query and Mutation fields
// whose diff entry is Disabled. Type definitions and their hooks are kept. A
// root type left without fields is removed and its root name cleared. s is
// not modified.
func FilterDisabled(s *Schema, diff resolver.Table) *Schema {
	if s == nil {
		return nil
	}
	out := *s
	out.Types = lo.Assign(s.Types)
	out.Directives = lo.Assign(s.Directives)

	out.QueryType = filterRoot(&out, s.QueryType, diff)
	out.MutationType = filterRoot(&out, s.MutationType, diff)
	return &out
}

func filterRoot(s *Schema, name string, diff resolver.Table) string {
	t := s.Types[name]
	if t == nil {
		return name
	}
	kept := make([]*Field, 0, len(t.Fields))
	for _, f := range t.Fields {
		if e, ok := diff.Get(name, f.Name); ok && resolver.IsDisabled(e) {
			continue
		}
		kept = append(kept, f)
	}
	if len(kept) == len(t.Fields) {
		return name
	}
	if len(kept) == 0 {
		delete(s.Types, name)
		return ""
	}
	copied := *t
	copied.Fields = kept
	s.Types[name] = &copied
	return name
}
