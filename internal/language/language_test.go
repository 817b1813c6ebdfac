package language

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSchemaKeepsExtensions(t *testing.T) {
	doc, err := ParseSchema("a.graphql", `
type User { id: ID! }
enum Role { ADMIN }
extend type Query { me: User }
`)
	require.NoError(t, err)
	require.Equal(t, map[string]DefinitionKind{"User": Object, "Role": Enum}, DefinedNames(doc))
	require.Len(t, doc.Extensions, 1)

	_, err = ParseSchema("b.graphql", "type {")
	require.Error(t, err)
}

func TestLoadSchema(t *testing.T) {
	s, err := LoadSchema(
		NewSource("a.graphql", "type Query { me: User }"),
		NewSource("b.graphql", "type User { id: ID! }\nextend type User { name: String }"),
	)
	require.NoError(t, err)
	require.Equal(t, "Query", s.Query.Name)
	require.NotNil(t, s.Types["User"].Fields.ForName("name"))
	require.True(t, s.Types["String"].BuiltIn)

	_, err = LoadSchema(NewSource("c.graphql", "type Query { me: Missing }"))
	require.ErrorContains(t, err, "Missing")
}
