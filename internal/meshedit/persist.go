package meshedit

import (
	"fmt"

	"go.uber.org/zap"
)

// UpdateVertexBuffer writes the current position of every vertex back into its
// geometry's raw vertex buffer. Records that would overflow the buffer are skipped.
func (e *Editor) UpdateVertexBuffer() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.writeVertexBuffersLocked()
}

func (e *Editor) writeVertexBuffersLocked() {
	skipped := 0
	// Vertices are built geometry by geometry, so runs share one buffer.
	current := GeometryID(-1)
	var geomOK bool
	for _, v := range e.vertices {
		if v.Geometry != current {
			current = v.Geometry
			geomOK = int(current) >= 0 && int(current) < len(e.geometries) &&
				e.geometries[current].VertexData != nil
		}
		if !geomOK {
			continue
		}
		if !writePosition(e.geometries[current].VertexData, v.Index, v.Position()) {
			skipped++
		}
	}
	if skipped > 0 {
		e.log.Debug("skipped vertices outside their buffers", zap.Int("count", skipped))
	}
}

// SaveModifications flushes vertex positions into the raw buffers and
// serializes the asset. It returns ErrNoAsset without an active session.
func (e *Editor) SaveModifications() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.asset == nil {
		return nil, ErrNoAsset
	}
	e.writeVertexBuffersLocked()

	data, err := e.asset.Save()
	if err != nil {
		return nil, fmt.Errorf("saving %s: %w", e.asset.Name, err)
	}
	return data, nil
}
