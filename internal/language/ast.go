package language

import "github.com/vektah/gqlparser/v2/ast"

type (
	Source                 = ast.Source
	Schema                 = ast.Schema
	SchemaDocument         = ast.SchemaDocument
	Definition             = ast.Definition
	DefinitionList         = ast.DefinitionList
	FieldDefinition        = ast.FieldDefinition
	FieldList              = ast.FieldList
	ArgumentDefinition     = ast.ArgumentDefinition
	ArgumentDefinitionList = ast.ArgumentDefinitionList
	EnumValueDefinition    = ast.EnumValueDefinition
	DirectiveDefinition    = ast.DirectiveDefinition
	Directive              = ast.Directive
	DirectiveList          = ast.DirectiveList
	Type                   = ast.Type
	Value                  = ast.Value
	Position               = ast.Position
)

type DefinitionKind = ast.DefinitionKind

const (
	Object      DefinitionKind = ast.Object
	Interface   DefinitionKind = ast.Interface
	Union       DefinitionKind = ast.Union
	Scalar      DefinitionKind = ast.Scalar
	Enum        DefinitionKind = ast.Enum
	InputObject DefinitionKind = ast.InputObject
)
