package resolver

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownEntity is reported when a spec targets an entity that is not
	// registered.
	ErrUnknownEntity = errors.New("unknown target entity")
	// ErrUnknownAction is reported when the target entity has no such action.
	ErrUnknownAction = errors.New("unknown action")
	// ErrUnknownPolicy is reported when a spec names an unregistered policy.
	ErrUnknownPolicy = errors.New("unknown policy")
)

// SpecError reports a declarative resolver that cannot be compiled.
type SpecError struct {
	Type   string
	Field  string
	Target string
	Detail string
	Err    error
}

func (e *SpecError) Error() string {
	msg := fmt.Sprintf("resolver %s.%s: %v", e.Type, e.Field, e.Err)
	if e.Detail != "" {
		msg += " " + fmt.Sprintf("%q", e.Detail)
	}
	return msg
}

func (e *SpecError) Unwrap() error { return e.Err }

// InputError reports arguments a compiled binding rejected at resolve time.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Message
	}
	return fmt.Sprintf("invalid input %q: %s", e.Field, e.Message)
}
