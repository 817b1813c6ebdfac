package compose

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hanpama/graphcompose/internal/eventbus"
	"github.com/hanpama/graphcompose/internal/events"
	"github.com/hanpama/graphcompose/internal/schema"
)

// writeArtifact stores the SDL of s for tooling. Failures are logged and
// never returned.
func (p *Pipeline) writeArtifact(ctx context.Context, log *zap.Logger, s *schema.Schema) {
	path := p.cfg.artifactPath()
	sdl := schema.Render(s)

	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err == nil {
		err = os.WriteFile(path, []byte(sdl), 0o644)
	}
	if err != nil {
		log.Warn("failed to write schema artifact", zap.String("path", path), zap.Error(err))
		eventbus.Publish(ctx, p.bus, events.ArtifactFailed{Path: path, Err: err})
		return
	}
	log.Debug("schema artifact written", zap.String("path", path), zap.Int("bytes", len(sdl)))
	eventbus.Publish(ctx, p.bus, events.ArtifactWritten{Path: path, Bytes: len(sdl)})
}
