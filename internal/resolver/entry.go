package resolver

import (
	"context"
	"reflect"
)

// Func is the body of an executable binding. source is the parent value (nil
// for root fields, the representation for reference hooks) and args holds the
// coerced field arguments.
type Func func(ctx context.Context, source any, args map[string]any) (any, error)

// Entry is the value stored for one (type, field) key of a Table. It is one of
// Disabled, *Binding or *Spec.
type Entry interface {
	isEntry()
}

// Disabled marks a field for removal from the schema.
type Disabled struct{}

// Binding is an executable resolver.
type Binding struct {
	Func Func
}

// Spec is a declarative resolver configuration that the Compiler turns into a
// Binding.
type Spec struct {
	// Target names the entity the resolver operates on.
	Target string `yaml:"target"`
	// Action names the entity action to invoke, e.g. "find" or "create".
	Action string `yaml:"action"`
	// Policies are run in order before the action.
	Policies []string `yaml:"policies,omitempty"`
	// Transform shapes the action result.
	Transform Transform `yaml:",inline"`
	// Description documents the resolver.
	Description string `yaml:"description,omitempty"`
}

// Transform carries output shaping hints for compiled bindings.
type Transform struct {
	// Pick selects a single key of a map result.
	Pick string `yaml:"pick,omitempty"`
	// Wrap nests the result under the given key.
	Wrap string `yaml:"wrap,omitempty"`
}

func (Disabled) isEntry() {}
func (*Binding) isEntry() {}
func (*Spec) isEntry()    {}

// Bind wraps fn as an Entry.
func Bind(fn Func) *Binding { return &Binding{Func: fn} }

// IsDisabled reports whether e is Disabled.
func IsDisabled(e Entry) bool {
	_, ok := e.(Disabled)
	return ok
}

// Equal reports whether a and b are identical entries. Specs compare by value,
// bindings by identity. Disabled never equals anything, so a disable always
// survives a diff.
func Equal(a, b Entry) bool {
	switch a := a.(type) {
	case *Binding:
		bb, ok := b.(*Binding)
		return ok && a == bb
	case *Spec:
		bs, ok := b.(*Spec)
		return ok && reflect.DeepEqual(a, bs)
	default:
		return false
	}
}
