package compose

import (
	"go.uber.org/zap"

	"github.com/hanpama/graphcompose/internal/eventbus"
	"github.com/hanpama/graphcompose/internal/resolver"
)

// Production disables environment dependent side effects such as the schema
// artifact.
const Production = "production"

// DefaultArtifactPath is where the composed SDL is written outside production.
const DefaultArtifactPath = "exports/graphql/schema.graphql"

// Config controls a composition.
type Config struct {
	// Federated reshapes the result into a federated subgraph.
	Federated bool
	// Environment names the deployment environment, e.g. "development".
	Environment string
	// ArtifactPath overrides DefaultArtifactPath.
	ArtifactPath string
	// Limits bounds the page size of compiled query resolvers. A zero Default
	// uses resolver.DefaultLimits.Default.
	Limits resolver.Limits
}

func (c Config) artifactPath() string {
	if c.ArtifactPath == "" {
		return DefaultArtifactPath
	}
	return c.ArtifactPath
}

func (c Config) writesArtifact() bool { return c.Environment != Production }

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithBus publishes composition events on b.
func WithBus(b *eventbus.Bus) Option {
	return func(p *Pipeline) { p.bus = b }
}

// WithEntities registers the entities declarative resolvers may target.
func WithEntities(entities ...*resolver.Entity) Option {
	return func(p *Pipeline) { p.entities = append(p.entities, entities...) }
}

// WithPolicies registers the access policies declarative resolvers may name.
func WithPolicies(policies map[string]resolver.Policy) Option {
	return func(p *Pipeline) { p.policies = policies }
}

// WithScalars adds custom scalar implementations to the built-in ones. A
// scalar named like a built-in replaces it.
func WithScalars(scalars ...*resolver.Scalar) Option {
	return func(p *Pipeline) { p.scalars = append(p.scalars, scalars...) }
}
