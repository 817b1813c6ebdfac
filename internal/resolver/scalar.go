package resolver

// Scalar implements a custom scalar type.
type Scalar struct {
	Name        string
	Description string
	// Serialize converts an internal value into its wire representation.
	Serialize func(value any) (any, error)
	// ParseValue converts a wire value into its internal representation.
	ParseValue func(value any) (any, error)
}
