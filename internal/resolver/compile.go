package resolver

import (
	"context"
	"errors"
	"fmt"
)

// Limits bounds the page size of query-shaped bindings.
type Limits struct {
	// Default applies when a query does not pass limit.
	Default int
	// Max clamps requested limits. Zero means no maximum.
	Max int
}

// DefaultLimits are used when a Compiler is built without WithLimits.
var DefaultLimits = Limits{Default: 100}

// Compiler turns declarative specs into executable bindings.
type Compiler struct {
	entities map[string]*Entity
	policies map[string]Policy
	limits   Limits
}

type CompilerOption func(*Compiler)

// WithPolicies registers the access policies specs may name. Without a
// registry, policy names are carried on the Request and not checked.
func WithPolicies(policies map[string]Policy) CompilerOption {
	return func(c *Compiler) { c.policies = policies }
}

// WithLimits bounds the page size of query-shaped bindings. A zero Default
// falls back to DefaultLimits.Default.
func WithLimits(l Limits) CompilerOption {
	if l.Default == 0 {
		l.Default = DefaultLimits.Default
	}
	return func(c *Compiler) { c.limits = l }
}

// NewCompiler creates a Compiler that resolves spec targets against entities.
func NewCompiler(entities []*Entity, opts ...CompilerOption) *Compiler {
	c := &Compiler{
		entities: make(map[string]*Entity, len(entities)),
		limits:   DefaultLimits,
	}
	for _, e := range entities {
		c.entities[e.Name] = e
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Compile returns a table of executable bindings for diff. Bindings pass
// through unchanged, Disabled entries are dropped and specs are compiled into
// mutation-shaped bindings under Mutation and query-shaped bindings elsewhere.
// Scalar and enum entries are copied verbatim.
//
// Every spec that cannot be compiled is reported; the returned error joins
// one *SpecError per failing field.
func (c *Compiler) Compile(diff Table) (Table, error) {
	out := LeafEntries(diff)
	var errs []error
	for _, typeName := range diff.TypeNames() {
		for _, field := range diff.FieldNames(typeName) {
			switch e := diff[typeName].Fields[field].(type) {
			case Disabled:
				continue
			case *Binding:
				out.Set(typeName, field, e)
			case *Spec:
				b, err := c.compileSpec(typeName, field, e)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				out.Set(typeName, field, b)
			}
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func (c *Compiler) compileSpec(typeName, field string, spec *Spec) (*Binding, error) {
	fail := func(err error, detail string) error {
		return &SpecError{Type: typeName, Field: field, Target: spec.Target, Detail: detail, Err: err}
	}

	entity, ok := c.entities[spec.Target]
	if !ok {
		return nil, fail(ErrUnknownEntity, spec.Target)
	}
	action, ok := entity.Actions[spec.Action]
	if !ok {
		return nil, fail(ErrUnknownAction, spec.Action)
	}
	var policies []Policy
	if c.policies != nil {
		for _, name := range spec.Policies {
			p, ok := c.policies[name]
			if !ok {
				return nil, fail(ErrUnknownPolicy, name)
			}
			policies = append(policies, p)
		}
	}

	inv := &invocation{
		typeName: typeName,
		field:    field,
		entity:   entity,
		spec:     spec,
		action:   action,
		policies: policies,
	}
	if typeName == MutationType {
		return Bind(inv.mutation), nil
	}
	limits := c.limits
	return Bind(func(ctx context.Context, source any, args map[string]any) (any, error) {
		return inv.query(ctx, source, args, limits)
	}), nil
}

// invocation holds everything a compiled binding needs at resolve time.
type invocation struct {
	typeName string
	field    string
	entity   *Entity
	spec     *Spec
	action   Action
	policies []Policy
}

func (inv *invocation) newRequest(source any, args map[string]any) *Request {
	return &Request{
		Type:     inv.typeName,
		Field:    inv.field,
		Entity:   inv.entity.Name,
		Action:   inv.spec.Action,
		Policies: inv.spec.Policies,
		Source:   source,
		Args:     args,
	}
}

func (inv *invocation) query(ctx context.Context, source any, args map[string]any, limits Limits) (any, error) {
	req := inv.newRequest(source, args)
	if err := readQueryArgs(req, args, limits); err != nil {
		return nil, err
	}
	out, err := inv.run(ctx, req)
	if err != nil {
		return nil, err
	}
	return applyTransform(out, inv.spec.Transform), nil
}

func (inv *invocation) mutation(ctx context.Context, source any, args map[string]any) (any, error) {
	req := inv.newRequest(source, args)
	if err := readMutationArgs(req, args); err != nil {
		return nil, err
	}
	if err := validateData(inv.entity, inv.spec.Action, req.Data); err != nil {
		return nil, err
	}
	out, err := inv.run(ctx, req)
	if err != nil {
		return nil, err
	}
	if isList(out) {
		return nil, fmt.Errorf("mutation %s returned a list, expected a single %s", inv.field, inv.entity.Name)
	}
	return applyTransform(out, inv.spec.Transform), nil
}

func (inv *invocation) run(ctx context.Context, req *Request) (any, error) {
	for _, p := range inv.policies {
		if err := p(ctx, req); err != nil {
			return nil, err
		}
	}
	return inv.action(ctx, req)
}

func applyTransform(v any, t Transform) any {
	if t.Pick != "" {
		if m, ok := v.(map[string]any); ok {
			v = m[t.Pick]
		}
	}
	if t.Wrap != "" {
		v = map[string]any{t.Wrap: v}
	}
	return v
}
