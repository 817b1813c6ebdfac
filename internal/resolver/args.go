package resolver

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

func readQueryArgs(req *Request, args map[string]any, limits Limits) error {
	req.Limit = limits.Default
	req.PublicationState = PublicationLive

	if id, ok := args["id"]; ok && id != nil {
		req.ID = id
	}
	if v, ok := args["where"]; ok && v != nil {
		where, ok := v.(map[string]any)
		if !ok {
			return &InputError{Field: "where", Message: "expected an object"}
		}
		req.Where = lo.Assign(where)
	}
	if req.ID != nil {
		if req.Where == nil {
			req.Where = map[string]any{}
		}
		req.Where["id"] = req.ID
	}
	if v, ok := args["sort"]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return &InputError{Field: "sort", Message: "expected a string"}
		}
		keys, err := parseSort(s)
		if err != nil {
			return err
		}
		req.Sort = keys
	}
	if v, ok := args["start"]; ok && v != nil {
		n, err := toInt(v)
		if err != nil || n < 0 {
			return &InputError{Field: "start", Message: "expected a non-negative integer"}
		}
		req.Start = n
	}
	if v, ok := args["limit"]; ok && v != nil {
		n, err := toInt(v)
		if err != nil || n < Unlimited {
			return &InputError{Field: "limit", Message: "expected a non-negative integer or -1"}
		}
		req.Limit = n
	}
	if limits.Max > 0 && (req.Limit == Unlimited || req.Limit > limits.Max) {
		req.Limit = limits.Max
	}
	if v, ok := args["publicationState"]; ok && v != nil {
		s, _ := v.(string)
		switch strings.ToLower(s) {
		case PublicationLive:
			req.PublicationState = PublicationLive
		case PublicationPreview:
			req.PublicationState = PublicationPreview
		default:
			return &InputError{Field: "publicationState", Message: fmt.Sprintf("unknown state %v", v)}
		}
	}
	return nil
}

// parseSort reads "field[:asc|:desc][,field...]".
func parseSort(s string) ([]SortField, error) {
	var out []SortField
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, order, _ := strings.Cut(part, ":")
		sf := SortField{Field: strings.TrimSpace(name), Order: SortAsc}
		switch strings.ToLower(strings.TrimSpace(order)) {
		case "", "asc":
		case "desc":
			sf.Order = SortDesc
		default:
			return nil, &InputError{Field: "sort", Message: fmt.Sprintf("unknown order %q for %q", order, sf.Field)}
		}
		if sf.Field == "" {
			return nil, &InputError{Field: "sort", Message: "empty sort key"}
		}
		out = append(out, sf)
	}
	return out, nil
}

func readMutationArgs(req *Request, args map[string]any) error {
	src := args
	if v, ok := args["input"]; ok && v != nil {
		input, ok := v.(map[string]any)
		if !ok {
			return &InputError{Field: "input", Message: "expected an object"}
		}
		src = input
	}
	if v, ok := src["where"]; ok && v != nil {
		where, ok := v.(map[string]any)
		if !ok {
			return &InputError{Field: "where", Message: "expected an object"}
		}
		req.Where = lo.Assign(where)
		req.ID = where["id"]
	}
	if v, ok := src["data"]; ok && v != nil {
		data, ok := v.(map[string]any)
		if !ok {
			return &InputError{Field: "data", Message: "expected an object"}
		}
		req.Data = data
	}
	return nil
}

// validateData checks mutation input against the entity attributes. Required
// attributes are only enforced on create.
func validateData(entity *Entity, action string, data map[string]any) error {
	for _, key := range sortedKeys(data) {
		attr, ok := entity.Attributes[key]
		if !ok {
			return &InputError{Field: key, Message: fmt.Sprintf("%s has no such attribute", entity.Name)}
		}
		if err := checkValue(attr, data[key]); err != nil {
			return &InputError{Field: key, Message: err.Error()}
		}
	}
	if action != "create" {
		return nil
	}
	for _, name := range sortedKeys(entity.Attributes) {
		if !entity.Attributes[name].Required {
			continue
		}
		if v, ok := data[name]; !ok || v == nil {
			return &InputError{Field: name, Message: "required"}
		}
	}
	return nil
}

func checkValue(attr Attribute, v any) error {
	if v == nil {
		if attr.Required {
			return fmt.Errorf("must not be null")
		}
		return nil
	}
	switch attr.Type {
	case AttributeString, AttributeText, AttributeEmail:
		if _, ok := v.(string); !ok {
			return fmt.Errorf("expected a string, got %T", v)
		}
	case AttributeEnumeration:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("expected a string, got %T", v)
		}
		if len(attr.Enum) > 0 && !lo.Contains(attr.Enum, s) {
			return fmt.Errorf("%q is not one of %v", s, attr.Enum)
		}
	case AttributeInteger:
		if _, err := toInt(v); err != nil {
			return err
		}
	case AttributeFloat:
		if _, err := toFloat(v); err != nil {
			return err
		}
	case AttributeBoolean:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("expected a boolean, got %T", v)
		}
	case AttributeDate, AttributeDateTime, AttributeTime:
		switch v.(type) {
		case string, time.Time:
		default:
			return fmt.Errorf("expected a date string, got %T", v)
		}
	case AttributeRelation, AttributeJSON:
	}
	return nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("expected an integer, got %v", n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		return int(i), err
	case string:
		return strconv.Atoi(n)
	}
	return 0, fmt.Errorf("expected an integer, got %T", v)
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case json.Number:
		return n.Float64()
	}
	return 0, fmt.Errorf("expected a number, got %T", v)
}

func isList(v any) bool {
	if v == nil {
		return false
	}
	k := reflect.TypeOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}
