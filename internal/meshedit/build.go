package meshedit

import (
	"encoding/binary"
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-meshedit/pkg/formats"
	"github.com/Faultbox/midgard-meshedit/pkg/math"
)

// positionSize is the byte length of the X, Y, Z float32 triple at the start of
// every vertex record.
const positionSize = 12

// buildLocked rebuilds the element model from the asset's raw buffers.
func (e *Editor) buildLocked() {
	e.clearElementsLocked()
	e.geometries = e.geometries[:0]

	for mi, model := range e.asset.AllModels() {
		if model == nil {
			continue
		}
		for gi, geom := range model.Geometries {
			if geom == nil {
				continue
			}
			id := GeometryID(len(e.geometries))
			e.geometries = append(e.geometries, geom)
			e.buildGeometryLocked(id, geom, mi, gi)
		}
	}
}

func (e *Editor) buildGeometryLocked(id GeometryID, geom *formats.Geometry, model, index int) {
	log := e.log.With(zap.Int("model", model), zap.Int("geometry", index))

	if geom.VertexData == nil || geom.IndexBuffer == nil {
		log.Warn("skipping geometry without vertex or index buffer")
		return
	}

	vd := geom.VertexData
	count := max(vd.VertexCount, 0)
	lookup := make([]*Vertex, count)
	short := 0
	for i := 0; i < count; i++ {
		pos, ok := readPosition(vd, i)
		if !ok {
			short++
		}
		v := newVertex(i, id, pos)
		e.vertices = append(e.vertices, v)
		lookup[i] = v
	}
	if short > 0 {
		log.Warn("vertex buffer too short, positions defaulted to origin",
			zap.Int("vertexCount", vd.VertexCount),
			zap.Int("shortRecords", short),
			zap.Int("bytes", len(vd.VertexBytes)),
		)
	}

	indices := geom.IndexBuffer.Indices
	edgeSet := make(map[[2]uint32]struct{})
	skipped := 0
	for i := 0; i+2 < len(indices); i += 3 {
		i1, i2, i3 := indices[i], indices[i+1], indices[i+2]
		if int(i1) >= len(lookup) || int(i2) >= len(lookup) || int(i3) >= len(lookup) {
			skipped++
			continue
		}
		v1, v2, v3 := lookup[i1], lookup[i2], lookup[i3]

		e.faces = append(e.faces, &Face{Index: len(e.faces), V1: v1, V2: v2, V3: v3, session: e.session})

		e.addEdgeIfNew(edgeSet, i1, i2, v1, v2)
		e.addEdgeIfNew(edgeSet, i2, i3, v2, v3)
		e.addEdgeIfNew(edgeSet, i3, i1, v3, v1)
	}
	if skipped > 0 {
		log.Warn("skipped triangles with out-of-range indices",
			zap.Int("triangles", skipped),
			zap.Int("vertexCount", vd.VertexCount),
		)
	}
	if rem := len(indices) % 3; rem != 0 {
		log.Warn("ignoring trailing indices", zap.Int("count", rem))
	}
}

// addEdgeIfNew adds the edge a-b unless the unordered index pair is already known.
func (e *Editor) addEdgeIfNew(set map[[2]uint32]struct{}, a, b uint32, va, vb *Vertex) {
	key := [2]uint32{a, b}
	if b < a {
		key = [2]uint32{b, a}
	}
	if _, ok := set[key]; ok {
		return
	}
	set[key] = struct{}{}
	e.edges = append(e.edges, &Edge{V1: va, V2: vb})
}

// readPosition decodes the local position of vertex index. It reports false and
// the origin when the record does not fit in the buffer.
func readPosition(vd *formats.VertexData, index int) (math.Vec3, bool) {
	offset := index * vd.VertexStride
	if offset < 0 || offset+positionSize > len(vd.VertexBytes) {
		return math.Vec3{}, false
	}
	b := vd.VertexBytes[offset:]
	return math.Vec3{
		X: gomath.Float32frombits(binary.LittleEndian.Uint32(b[0:])),
		Y: gomath.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
		Z: gomath.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
	}, true
}

// writePosition encodes p into the record of vertex index. It reports false,
// leaving the buffer untouched, when the record does not fit.
func writePosition(vd *formats.VertexData, index int, p math.Vec3) bool {
	offset := index * vd.VertexStride
	if offset < 0 || offset+positionSize > len(vd.VertexBytes) {
		return false
	}
	b := vd.VertexBytes[offset:]
	binary.LittleEndian.PutUint32(b[0:], gomath.Float32bits(p.X))
	binary.LittleEndian.PutUint32(b[4:], gomath.Float32bits(p.Y))
	binary.LittleEndian.PutUint32(b[8:], gomath.Float32bits(p.Z))
	return true
}
