package compose

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/hanpama/graphcompose/internal/fragment"
	"github.com/hanpama/graphcompose/internal/language"
	"github.com/hanpama/graphcompose/internal/resolver"
	"github.com/hanpama/graphcompose/internal/schema"
)

// AssembleInput is everything the assembler puts into one schema.
type AssembleInput struct {
	Custom *fragment.Fragment
	// Models is the merged model fragment.
	Models *fragment.Fragment
	// Resolvers is the final, compiled resolver table.
	Resolvers resolver.Table
	Federated bool
}

// Assemble builds the executable schema for in. It returns schema.Empty()
// without compiling anything when neither fragment defines types.
func Assemble(in AssembleInput) (*schema.Schema, error) {
	if in.Custom.IsEmpty() && in.Models.IsEmpty() {
		return schema.Empty(), nil
	}
	sdl, hasMorph, err := assembleSDL(in)
	if err != nil {
		return nil, &schema.BuildError{Err: err}
	}
	table := in.Resolvers
	if !hasMorph {
		// Nothing can be polymorphic, so the union was not declared.
		table = lo.OmitByKeys(table, []string{MorphUnion})
	}
	return schema.Build(table, language.NewSource("schema.graphql", sdl))
}

// AssembleSDL returns the SDL document Assemble compiles. Parts appear in a
// fixed order: custom types, model types, the polymorphic union, built-in
// input, enum and object types, the root types and finally a scalar
// declaration for every registered scalar that is not declared yet.
func AssembleSDL(in AssembleInput) (string, error) {
	sdl, _, err := assembleSDL(in)
	return sdl, err
}

// assembleSDL also reports whether the document declares the Morph union,
// either written by hand or generated.
func assembleSDL(in AssembleInput) (string, bool, error) {
	custom := in.Custom
	if custom == nil {
		custom = &fragment.Fragment{}
	}
	models := in.Models
	if models == nil {
		models = &fragment.Fragment{}
	}

	doc, err := language.ParseSchema("types.graphql", custom.TypeSDL+"\n"+models.TypeSDL)
	if err != nil {
		return "", false, fmt.Errorf("invalid type definitions: %w", err)
	}
	defined := language.DefinedNames(doc)

	var parts []string
	add := func(sdl string) {
		if strings.TrimSpace(sdl) != "" {
			parts = append(parts, strings.TrimSpace(sdl))
		}
	}

	add(custom.TypeSDL)
	add(models.TypeSDL)
	kind, declared := defined[MorphUnion]
	hasMorph := kind == language.Union
	if !declared {
		morph := morphSDL(doc)
		hasMorph = morph != ""
		add(morph)
	}
	add(inputTypesSDL)
	add(publicationStateSDL)
	add(adminUserSDL)
	add(rootSDL(resolver.QueryType, models.QuerySDL, custom.QuerySDL))
	add(rootSDL(resolver.MutationType, models.MutationSDL, custom.MutationSDL))

	for _, s := range in.Resolvers.Scalars() {
		if _, ok := defined[s.Name]; ok {
			continue
		}
		add("scalar " + s.Name)
	}
	if in.Federated {
		if _, ok := defined[fieldSetScalar]; !ok {
			add("scalar " + fieldSetScalar)
		}
		if !lo.ContainsBy(doc.Directives, func(d *language.DirectiveDefinition) bool { return d.Name == keyDirective }) {
			add(keyDirectiveSDL)
		}
	}
	return strings.Join(parts, "\n\n") + "\n", hasMorph, nil
}

// morphSDL declares a union over every object type of doc except the root
// types. No union is declared when there is no such type.
func morphSDL(doc *language.SchemaDocument) string {
	var members []string
	for _, def := range doc.Definitions {
		if def.Kind != language.Object || isRootName(def.Name) {
			continue
		}
		members = append(members, def.Name)
	}
	members = lo.Uniq(members)
	sort.Strings(members)
	if len(members) == 0 {
		return ""
	}
	return "union " + MorphUnion + " = " + strings.Join(members, " | ")
}

func isRootName(name string) bool {
	return name == resolver.QueryType || name == resolver.MutationType || name == "Subscription"
}

// rootSDL wraps the generated and custom field definitions of a root type.
// A root type without fields is omitted.
func rootSDL(name, generated, custom string) string {
	var fields []string
	for _, sdl := range []string{generated, custom} {
		if s := strings.TrimSpace(sdl); s != "" {
			fields = append(fields, indent(s))
		}
	}
	if len(fields) == 0 {
		return ""
	}
	return "type " + name + " {\n" + strings.Join(fields, "\n") + "\n}"
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			lines[i] = "  " + line
		} else {
			lines[i] = ""
		}
	}
	return strings.Join(lines, "\n")
}
