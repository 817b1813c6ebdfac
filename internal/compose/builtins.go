package compose

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/samber/lo"

	"github.com/hanpama/graphcompose/internal/resolver"
)

// Names of the built-in definitions added to every composed schema.
const (
	MorphUnion       = "Morph"
	InputIDType      = "InputID"
	PublicationState = "PublicationState"
	AdminUserType    = "AdminUser"
)

const inputTypesSDL = `input InputID {
  id: ID!
}`

const publicationStateSDL = `enum PublicationState {
  LIVE
  PREVIEW
}`

const adminUserSDL = `type AdminUser {
  id: ID!
  username: String
  firstname: String!
  lastname: String!
}`

// Federation declarations appended before compiling a federated schema.
const (
	fieldSetScalar  = "_FieldSet"
	keyDirective    = "key"
	keyDirectiveSDL = "directive @key(fields: _FieldSet!) on OBJECT | INTERFACE"
)

// morphKeys are read in order to find the concrete type of a Morph value.
var morphKeys = []string{"__typename", "kind", "__contentType"}

func polymorphicResolvers() resolver.Table {
	return resolver.Table{}.Set(MorphUnion, resolver.ResolveTypeField, morphResolveType)
}

var morphResolveType = resolver.Bind(func(_ context.Context, source any, _ map[string]any) (any, error) {
	m, ok := source.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("cannot resolve %s member of %T", MorphUnion, source)
	}
	for _, key := range morphKeys {
		if name, ok := m[key].(string); ok && name != "" {
			return name, nil
		}
	}
	return nil, fmt.Errorf("cannot resolve %s member: none of %v is set", MorphUnion, morphKeys)
})

func publicationStateResolvers() resolver.Table {
	return resolver.Table{}.SetEnum(PublicationState, map[string]any{
		"LIVE":    resolver.PublicationLive,
		"PREVIEW": resolver.PublicationPreview,
	})
}

// BuiltinScalars returns the scalar implementations registered by default.
func BuiltinScalars() []*resolver.Scalar {
	return []*resolver.Scalar{
		{Name: "JSON", Description: "Arbitrary JSON value.", Serialize: identity, ParseValue: identity},
		timeScalar("DateTime", "A date-time string in RFC 3339 format.", time.RFC3339Nano, time.RFC3339),
		timeScalar("Date", "A calendar date in YYYY-MM-DD format.", time.DateOnly, time.DateOnly),
		timeScalar("Time", "A time of day in HH:mm:ss.SSS format.", "15:04:05.000", "15:04:05.999"),
		{Name: "Long", Description: "A 64 bit integer.", Serialize: toLong, ParseValue: toLong},
		{
			Name:        "Upload",
			Description: "A file part of a multipart request.",
			Serialize: func(any) (any, error) {
				return nil, errors.New("Upload cannot be serialized")
			},
			ParseValue: identity,
		},
	}
}

func scalarResolvers(scalars []*resolver.Scalar) resolver.Table {
	tables := lo.Map(scalars, func(s *resolver.Scalar, _ int) resolver.Table {
		return resolver.Table{}.SetScalar(s)
	})
	return resolver.Merge(tables...)
}

func identity(v any) (any, error) { return v, nil }

// timeScalar serializes time.Time values with out and parses strings with
// in.
func timeScalar(name, desc, out, in string) *resolver.Scalar {
	parse := func(v any) (any, error) {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%s must be a string, got %T", name, v)
		}
		t, err := time.Parse(in, s)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", name, s, err)
		}
		return t, nil
	}
	return &resolver.Scalar{
		Name:        name,
		Description: desc,
		Serialize: func(v any) (any, error) {
			switch v := v.(type) {
			case time.Time:
				return v.Format(out), nil
			case *time.Time:
				if v == nil {
					return nil, nil
				}
				return v.Format(out), nil
			case string:
				if _, err := parse(v); err != nil {
					return nil, err
				}
				return v, nil
			}
			return nil, fmt.Errorf("%s cannot represent %T", name, v)
		},
		ParseValue: parse,
	}
}

func toLong(v any) (any, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		if n != math.Trunc(n) || n > math.MaxInt64 || n < math.MinInt64 {
			return nil, fmt.Errorf("Long cannot represent %v", n)
		}
		return int64(n), nil
	case json.Number:
		return n.Int64()
	case string:
		return strconv.ParseInt(n, 10, 64)
	}
	return nil, fmt.Errorf("Long cannot represent %T", v)
}
