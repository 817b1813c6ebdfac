package language

import (
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// ParseSchema parses SDL without validating it. Extensions and references to
// undeclared types are kept as written.
func ParseSchema(name, source string) (*SchemaDocument, error) {
	doc, err := parser.ParseSchema(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadSchema parses and validates the given sources together with the GraphQL
// prelude. Extensions are folded into their base definitions.
func LoadSchema(sources ...*Source) (*Schema, error) {
	s, err := gqlparser.LoadSchema(sources...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewSource wraps SDL text as a named source.
func NewSource(name, input string) *Source {
	return &Source{Name: name, Input: input}
}

// DefinedNames returns the names of all type definitions (not extensions)
// found in doc.
func DefinedNames(doc *SchemaDocument) map[string]DefinitionKind {
	out := make(map[string]DefinitionKind, len(doc.Definitions))
	for _, def := range doc.Definitions {
		out[def.Name] = def.Kind
	}
	return out
}
