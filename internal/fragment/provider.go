package fragment

import (
	"context"
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/hanpama/graphcompose/internal/resolver"
)

// Provider lists and reads the fragments of a project.
type Provider interface {
	// ListFragments returns the fragment names in lexical order.
	ListFragments(ctx context.Context) ([]string, error)
	ReadFragment(ctx context.Context, name string) (*Fragment, error)
}

// EntityProvider is implemented by providers that also describe the entities
// declarative resolvers may target.
type EntityProvider interface {
	Entities(ctx context.Context) ([]*resolver.Entity, error)
}

// InMemoryProvider serves fragments held in memory. It is mostly useful in
// tests.
type InMemoryProvider struct {
	fragments map[string]*Fragment
	entities  []*resolver.Entity
}

// NewInMemoryProvider creates a provider over frags, keyed by Fragment.Name.
func NewInMemoryProvider(frags []*Fragment, entities ...*resolver.Entity) *InMemoryProvider {
	p := &InMemoryProvider{
		fragments: make(map[string]*Fragment, len(frags)),
		entities:  entities,
	}
	for _, f := range frags {
		p.fragments[f.Name] = f
	}
	return p
}

// ListFragments implements Provider.
func (p *InMemoryProvider) ListFragments(ctx context.Context) ([]string, error) {
	names := lo.Keys(p.fragments)
	sort.Strings(names)
	return names, nil
}

// ReadFragment implements Provider.
func (p *InMemoryProvider) ReadFragment(ctx context.Context, name string) (*Fragment, error) {
	f, ok := p.fragments[name]
	if !ok {
		return nil, fmt.Errorf("fragment %q not found", name)
	}
	return f, nil
}

// Entities implements EntityProvider.
func (p *InMemoryProvider) Entities(ctx context.Context) ([]*resolver.Entity, error) {
	return p.entities, nil
}
