package resolver

import "context"

// Entity describes a data model that declarative resolvers can target.
type Entity struct {
	Name       string
	Attributes map[string]Attribute
	Actions    map[string]Action
}

// AttributeType is the declared type of an entity attribute.
type AttributeType string

const (
	AttributeString      AttributeType = "string"
	AttributeText        AttributeType = "text"
	AttributeEmail       AttributeType = "email"
	AttributeEnumeration AttributeType = "enumeration"
	AttributeInteger     AttributeType = "integer"
	AttributeFloat       AttributeType = "float"
	AttributeBoolean     AttributeType = "boolean"
	AttributeJSON        AttributeType = "json"
	AttributeDate        AttributeType = "date"
	AttributeDateTime    AttributeType = "datetime"
	AttributeTime        AttributeType = "time"
	AttributeRelation    AttributeType = "relation"
)

// Attribute is one field of an entity.
type Attribute struct {
	Type     AttributeType `yaml:"type"`
	Required bool          `yaml:"required,omitempty"`
	// Enum lists the accepted values of an enumeration attribute.
	Enum []string `yaml:"enum,omitempty"`
}

// Action performs an operation on an entity. Implementations live outside this
// module.
type Action func(ctx context.Context, req *Request) (any, error)

// Policy decides whether a request may proceed. A non-nil error aborts the
// resolver with that error.
type Policy func(ctx context.Context, req *Request) error

// SortOrder is the direction of a sort key.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortField is one sort key.
type SortField struct {
	Field string
	Order SortOrder
}

// Publication states accepted by query-shaped bindings.
const (
	PublicationLive    = "live"
	PublicationPreview = "preview"
)

// Unlimited is the Limit value that disables pagination.
const Unlimited = -1

// Request is what a compiled binding hands to an entity action.
type Request struct {
	// Type and Field locate the schema field being resolved.
	Type  string
	Field string

	Entity   string
	Action   string
	Policies []string

	Source any
	Args   map[string]any

	// Query-shaped requests.
	ID               any
	Where            map[string]any
	Sort             []SortField
	Start            int
	Limit            int
	PublicationState string

	// Mutation-shaped requests.
	Data map[string]any
}

// IsMutation reports whether the request was built by a mutation-shaped
// binding.
func (r *Request) IsMutation() bool { return r.Type == MutationType }
