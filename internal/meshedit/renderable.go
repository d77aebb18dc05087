package meshedit

import (
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-meshedit/pkg/formats"
)

// RenderableCache is the renderer's cache of GPU buffers, keyed by drawable.
// Undo and redo tell it which buffers became stale.
type RenderableCache interface {
	VertexDataChanged(asset *formats.Asset)
	IndexDataChanged(asset *formats.Asset)
}

// LogRenderableCache records buffer invalidations in the log. Headless tools use it.
type LogRenderableCache struct {
	Log *zap.Logger
}

// VertexDataChanged logs a vertex buffer invalidation.
func (c LogRenderableCache) VertexDataChanged(asset *formats.Asset) {
	c.logger().Debug("vertex data changed", zap.String("asset", asset.Name))
}

// IndexDataChanged logs an index buffer invalidation.
func (c LogRenderableCache) IndexDataChanged(asset *formats.Asset) {
	c.logger().Debug("index data changed", zap.String("asset", asset.Name))
}

func (c LogRenderableCache) logger() *zap.Logger {
	if c.Log == nil {
		return zap.NewNop()
	}
	return c.Log
}

func (e *Editor) notifyVertexDataChanged() {
	if asset := e.Asset(); asset != nil && e.renderables != nil {
		e.renderables.VertexDataChanged(asset)
	}
}

func (e *Editor) notifyIndexDataChanged() {
	if asset := e.Asset(); asset != nil && e.renderables != nil {
		e.renderables.IndexDataChanged(asset)
	}
}
