package fragment

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/hanpama/graphcompose/internal/resolver"
)

// ErrActionNotImplemented is returned by entity actions that were declared in
// entities.yaml without an implementation.
var ErrActionNotImplemented = errors.New("entity action not implemented")

// ActionFactory supplies the implementation of a declared entity action.
type ActionFactory func(entity, action string) resolver.Action

func unimplementedAction(entity, action string) resolver.Action {
	return func(context.Context, *resolver.Request) (any, error) {
		return nil, fmt.Errorf("%s.%s: %w", entity, action, ErrActionNotImplemented)
	}
}

// ParseResolvers decodes a resolver table of the form
//
//	Query:
//	  users: {target: user, action: find, policies: [isAuthenticated]}
//	Mutation:
//	  createUser: false
//
// Each field is either false (disable the field) or a declarative spec.
func ParseResolvers(data []byte) (resolver.Table, error) {
	out := make(resolver.Table)
	var doc map[string]map[string]yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode resolvers: %w", err)
	}
	for typeName, fields := range doc {
		for field, node := range fields {
			e, err := decodeEntry(&node)
			if err != nil {
				return nil, fmt.Errorf("resolver %s.%s: %w", typeName, field, err)
			}
			out.Set(typeName, field, e)
		}
	}
	return out, nil
}

func decodeEntry(node *yaml.Node) (resolver.Entry, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		var enabled bool
		if err := node.Decode(&enabled); err != nil || enabled {
			return nil, fmt.Errorf("line %d: expected false or a mapping", node.Line)
		}
		return resolver.Disabled{}, nil
	case yaml.MappingNode:
		spec := &resolver.Spec{}
		if err := node.Decode(spec); err != nil {
			return nil, err
		}
		if spec.Target == "" || spec.Action == "" {
			return nil, fmt.Errorf("line %d: target and action are required", node.Line)
		}
		return spec, nil
	default:
		return nil, fmt.Errorf("line %d: expected false or a mapping", node.Line)
	}
}

type entitiesFile struct {
	Entities []struct {
		Name       string                        `yaml:"name"`
		Attributes map[string]resolver.Attribute `yaml:"attributes"`
		Actions    []string                      `yaml:"actions"`
	} `yaml:"entities"`
}

// ParseEntities decodes an entities document, binding each declared action
// through actions.
func ParseEntities(data []byte, actions ActionFactory) ([]*resolver.Entity, error) {
	var doc entitiesFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode entities: %w", err)
	}
	if actions == nil {
		actions = unimplementedAction
	}
	out := make([]*resolver.Entity, 0, len(doc.Entities))
	seen := make(map[string]bool, len(doc.Entities))
	for _, decl := range doc.Entities {
		if decl.Name == "" {
			return nil, errors.New("entity without a name")
		}
		if seen[decl.Name] {
			return nil, fmt.Errorf("entity %q declared twice", decl.Name)
		}
		seen[decl.Name] = true

		e := &resolver.Entity{
			Name:       decl.Name,
			Attributes: decl.Attributes,
			Actions:    make(map[string]resolver.Action, len(decl.Actions)),
		}
		for _, name := range decl.Actions {
			e.Actions[name] = actions(decl.Name, name)
		}
		out = append(out, e)
	}
	return out, nil
}
