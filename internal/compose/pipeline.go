// Package compose assembles fragments into one executable schema.
package compose

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hanpama/graphcompose/internal/eventbus"
	"github.com/hanpama/graphcompose/internal/events"
	"github.com/hanpama/graphcompose/internal/federation"
	"github.com/hanpama/graphcompose/internal/fragment"
	"github.com/hanpama/graphcompose/internal/resolver"
	"github.com/hanpama/graphcompose/internal/runid"
	"github.com/hanpama/graphcompose/internal/schema"
)

// Pipeline stage names, as reported in events and logs.
const (
	StageMerge    = "merge"
	StageDiff     = "diff"
	StageCompile  = "compile"
	StageAssemble = "assemble"
	StageFilter   = "filter"
	StageArtifact = "artifact"
	StageFederate = "federate"
)

// Pipeline composes model fragments and a custom fragment into a schema.
type Pipeline struct {
	cfg      Config
	logger   *zap.Logger
	bus      *eventbus.Bus
	entities []*resolver.Entity
	policies map[string]resolver.Policy
	scalars  []*resolver.Scalar
}

// New creates a Pipeline.
func New(cfg Config, opts ...Option) *Pipeline {
	p := &Pipeline{cfg: cfg, logger: zap.NewNop()}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Pipeline) compiler() *resolver.Compiler {
	opts := []resolver.CompilerOption{}
	if p.policies != nil {
		opts = append(opts, resolver.WithPolicies(p.policies))
	}
	if p.cfg.Limits != (resolver.Limits{}) {
		opts = append(opts, resolver.WithLimits(p.cfg.Limits))
	}
	return resolver.NewCompiler(p.entities, opts...)
}

// Generate composes models and custom into an executable schema. custom may
// be nil. When neither defines any type the result is schema.Empty().
func (p *Pipeline) Generate(ctx context.Context, models []*fragment.Fragment, custom *fragment.Fragment) (*schema.Schema, error) {
	ctx, rid := runid.Ensure(ctx)
	log := p.logger.With(zap.Int64("run", rid), zap.Bool("federated", p.cfg.Federated))

	start := time.Now()
	eventbus.Publish(ctx, p.bus, events.CompositionStart{Federated: p.cfg.Federated, Fragments: len(models) + 1})

	s, err := p.generate(ctx, log, models, custom)

	finish := events.CompositionFinish{Federated: p.cfg.Federated, Err: err, Duration: time.Since(start)}
	if s != nil {
		finish.Empty = s.IsEmpty()
		finish.Types = len(s.Types)
	}
	eventbus.Publish(ctx, p.bus, finish)
	if err != nil {
		return nil, err
	}
	log.Debug("schema composed", zap.Int("types", finish.Types), zap.Duration("duration", finish.Duration))
	return s, nil
}

func (p *Pipeline) generate(ctx context.Context, log *zap.Logger, models []*fragment.Fragment, custom *fragment.Fragment) (*schema.Schema, error) {
	if custom == nil {
		custom = &fragment.Fragment{}
	}

	var merged *fragment.Fragment
	var generated resolver.Table
	p.stage(ctx, log, StageMerge, func() error {
		merged = fragment.Merge(models...)
		generated = resolver.Merge(merged.Resolvers, polymorphicResolvers())
		return nil
	})

	if custom.IsEmpty() && merged.IsEmpty() {
		log.Debug("nothing to compose")
		return schema.Empty(), nil
	}

	var diff resolver.Table
	p.stage(ctx, log, StageDiff, func() error {
		diff = resolver.Diff(custom.Resolvers, generated)
		return nil
	})

	// Model fragments may carry declarative specs too; they are compiled
	// with the same compiler as the diff.
	var base, compiled resolver.Table
	if err := p.stage(ctx, log, StageCompile, func() error {
		c := p.compiler()
		var baseErr, diffErr error
		base, baseErr = c.Compile(generated)
		if baseErr != nil {
			baseErr = fmt.Errorf("model resolvers: %w", baseErr)
		}
		compiled, diffErr = c.Compile(diff)
		if diffErr != nil {
			diffErr = fmt.Errorf("custom resolvers: %w", diffErr)
		}
		return errors.Join(baseErr, diffErr)
	}); err != nil {
		return nil, fmt.Errorf("failed to compile resolvers: %w", err)
	}

	table := resolver.Merge(
		base,
		compiled,
		publicationStateResolvers(),
		scalarResolvers(append(BuiltinScalars(), p.scalars...)),
		resolver.LeafEntries(custom.Resolvers),
	)

	var s *schema.Schema
	if err := p.stage(ctx, log, StageAssemble, func() (err error) {
		s, err = Assemble(AssembleInput{
			Custom:    custom,
			Models:    merged,
			Resolvers: table,
			Federated: p.cfg.Federated,
		})
		return err
	}); err != nil {
		return nil, err
	}

	p.stage(ctx, log, StageFilter, func() error {
		s = schema.FilterDisabled(s, diff)
		return nil
	})

	if p.cfg.writesArtifact() {
		p.stage(ctx, log, StageArtifact, func() error {
			p.writeArtifact(ctx, log, s)
			return nil
		})
	}

	if !p.cfg.Federated {
		return s, nil
	}
	if err := p.stage(ctx, log, StageFederate, func() (err error) {
		s, err = federation.Federate(s, table)
		return err
	}); err != nil {
		return nil, err
	}
	return s, nil
}

// stage runs fn as the named stage, publishing its start and finish and
// logging its failure.
func (p *Pipeline) stage(ctx context.Context, log *zap.Logger, name string, fn func() error) error {
	start := time.Now()
	eventbus.Publish(ctx, p.bus, events.StageStart{Stage: name})
	err := fn()
	eventbus.Publish(ctx, p.bus, events.StageFinish{Stage: name, Err: err, Duration: time.Since(start)})
	if err != nil {
		log.Error("composition stage failed", zap.String("stage", name), zap.Error(err))
	}
	return err
}

// Load reads every fragment of provider once. The fragment called customName
// becomes the custom fragment and the rest are model fragments, in provider
// order. An empty customName means there is no custom fragment.
func Load(ctx context.Context, provider fragment.Provider, customName string) (models []*fragment.Fragment, custom *fragment.Fragment, err error) {
	names, err := provider.ListFragments(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list fragments: %w", err)
	}
	for _, name := range names {
		f, err := provider.ReadFragment(ctx, name)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read fragment %q: %w", name, err)
		}
		if customName != "" && name == customName {
			custom = f
			continue
		}
		models = append(models, f)
	}
	if customName != "" && custom == nil {
		return nil, nil, fmt.Errorf("custom fragment %q not found", customName)
	}
	return models, custom, nil
}

// GenerateFrom loads the fragments of provider and composes them. Entities
// described by the provider are registered before compiling.
func (p *Pipeline) GenerateFrom(ctx context.Context, provider fragment.Provider, customName string) (*schema.Schema, error) {
	models, custom, err := Load(ctx, provider, customName)
	if err != nil {
		return nil, err
	}
	if ep, ok := provider.(fragment.EntityProvider); ok {
		entities, err := ep.Entities(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load entities: %w", err)
		}
		clone := *p
		clone.entities = append(append([]*resolver.Entity(nil), p.entities...), entities...)
		return clone.Generate(ctx, models, custom)
	}
	return p.Generate(ctx, models, custom)
}
