package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFragment(t *testing.T, root, name string, files map[string]string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for file, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(content), 0o644))
	}
}

func testProject(t *testing.T, federated bool) string {
	t.Helper()
	root := t.TempDir()
	definition := "type User { id: ID! username: String }"
	if federated {
		definition = `type User @key(fields: "id") { id: ID! username: String }`
	}
	writeFragment(t, root, "user", map[string]string{
		"definition.graphql": definition,
		"query.graphql":      "users: [User]\nuser(id: ID!): User",
		"mutation.graphql":   "createUser(username: String!): User",
		"resolvers.yaml": `
Query:
  users: {target: user, action: find}
  user: {target: user, action: findOne}
Mutation:
  createUser: {target: user, action: create}
`,
	})
	writeFragment(t, root, "custom", map[string]string{
		"resolvers.yaml": "Mutation:\n  createUser: false\n",
	})
	require.NoError(t, os.WriteFile(filepath.Join(root, "entities.yaml"), []byte(`
entities:
  - name: user
    attributes:
      username: {type: string, required: true}
    actions: [find, findOne, create]
`), 0o644))
	return root
}

func TestHelp(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"help", "compose"}, &out, new(bytes.Buffer)))
	require.Contains(t, out.String(), "compose FLAGS")

	out.Reset()
	require.NoError(t, run([]string{"help"}, &out, new(bytes.Buffer)))
	require.Contains(t, out.String(), "COMMANDS")

	require.Error(t, run([]string{"help", "serve"}, &out, new(bytes.Buffer)))
}

func TestUnknownCommand(t *testing.T) {
	var stderr bytes.Buffer
	err := run([]string{"serve"}, new(bytes.Buffer), &stderr)
	require.ErrorContains(t, err, `unknown command "serve"`)
	require.Contains(t, stderr.String(), "USAGE")

	require.ErrorContains(t, run(nil, new(bytes.Buffer), new(bytes.Buffer)), "missing command")
}

func TestCompose(t *testing.T) {
	root := testProject(t, false)
	artifact := filepath.Join(t.TempDir(), "schema.graphql")

	var out bytes.Buffer
	err := run([]string{"compose", "-fragments.root", root, "-custom", "custom", "-artifact", artifact}, &out, new(bytes.Buffer))
	require.NoError(t, err)

	sdl := out.String()
	require.Contains(t, sdl, "type Query {")
	require.Contains(t, sdl, "users: [User]")
	// The only mutation was disabled.
	require.NotContains(t, sdl, "createUser")
	require.NotContains(t, sdl, "type Mutation")

	written, err := os.ReadFile(artifact)
	require.NoError(t, err)
	require.Equal(t, sdl, string(written))
}

func TestComposeFederatedToFile(t *testing.T) {
	root := testProject(t, true)
	outFile := filepath.Join(t.TempDir(), "subgraph.graphql")

	err := run([]string{
		"compose", "-fragments.root", root, "-custom", "custom",
		"-federated", "-env", "production", "-out", outFile,
	}, new(bytes.Buffer), new(bytes.Buffer))
	require.NoError(t, err)

	sdl, err := os.ReadFile(outFile)
	require.NoError(t, err)
	require.Contains(t, string(sdl), "_entities(representations: [_Any!]!): [_Entity]!")
	require.Contains(t, string(sdl), "union _Entity = User")
}

func TestComposeErrors(t *testing.T) {
	root := testProject(t, false)
	err := run([]string{"compose", "-fragments.root", root, "-custom", "missing", "-env", "production"},
		new(bytes.Buffer), new(bytes.Buffer))
	require.ErrorContains(t, err, `"missing" not found`)

	var stderr bytes.Buffer
	err = run([]string{"compose", "-bogus"}, new(bytes.Buffer), &stderr)
	require.Error(t, err)
	require.Contains(t, stderr.String(), "compose FLAGS")
}
