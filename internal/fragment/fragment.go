// Package fragment holds schema fragments and the providers that load them.
package fragment

import (
	"strings"

	"github.com/hanpama/graphcompose/internal/resolver"
)

// Fragment is a self-contained slice of type definitions plus its resolvers.
type Fragment struct {
	// Name identifies the fragment within its provider.
	Name string
	// TypeSDL holds type, input, enum, union, scalar and directive
	// definitions.
	TypeSDL string
	// QuerySDL and MutationSDL hold field definitions to be placed inside the
	// Query and Mutation root types.
	QuerySDL    string
	MutationSDL string
	Resolvers   resolver.Table
}

// IsEmpty reports whether f defines no types.
func (f *Fragment) IsEmpty() bool {
	return f == nil || strings.TrimSpace(f.TypeSDL) == ""
}

// Merge combines fragments in order. SDL texts are joined with a newline and
// not deduplicated; duplicate definitions are reported when the schema is
// compiled. Resolver tables are deep merged with the later fragment winning
// per (type, field). Nil fragments are skipped and the inputs are left
// untouched.
func Merge(frags ...*Fragment) *Fragment {
	var types, queries, mutations []string
	tables := make([]resolver.Table, 0, len(frags))
	for _, f := range frags {
		if f == nil {
			continue
		}
		types = appendSDL(types, f.TypeSDL)
		queries = appendSDL(queries, f.QuerySDL)
		mutations = appendSDL(mutations, f.MutationSDL)
		tables = append(tables, f.Resolvers)
	}
	return &Fragment{
		TypeSDL:     strings.Join(types, "\n"),
		QuerySDL:    strings.Join(queries, "\n"),
		MutationSDL: strings.Join(mutations, "\n"),
		Resolvers:   resolver.Merge(tables...),
	}
}

func appendSDL(parts []string, sdl string) []string {
	if strings.TrimSpace(sdl) == "" {
		return parts
	}
	return append(parts, sdl)
}
