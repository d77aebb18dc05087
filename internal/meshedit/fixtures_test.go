package meshedit

import (
	"encoding/binary"
	gomath "math"

	"github.com/Faultbox/midgard-meshedit/pkg/formats"
	"github.com/Faultbox/midgard-meshedit/pkg/math"
	"github.com/Faultbox/midgard-meshedit/pkg/picking"
)

const testStride = 16

// makeGeometry packs positions into testStride records. The four bytes after
// each position are filled with a marker so tests can check they survive writes.
func makeGeometry(positions []math.Vec3, indices []uint32) *formats.Geometry {
	buf := make([]byte, testStride*len(positions))
	for i, p := range positions {
		off := i * testStride
		binary.LittleEndian.PutUint32(buf[off:], gomath.Float32bits(p.X))
		binary.LittleEndian.PutUint32(buf[off+4:], gomath.Float32bits(p.Y))
		binary.LittleEndian.PutUint32(buf[off+8:], gomath.Float32bits(p.Z))
		binary.LittleEndian.PutUint32(buf[off+12:], 0xC0FFEE00+uint32(i))
	}
	return &formats.Geometry{
		VertexData: &formats.VertexData{
			VertexBytes:  buf,
			VertexStride: testStride,
			VertexCount:  len(positions),
		},
		IndexBuffer:    &formats.IndexBuffer{Indices: append([]uint32(nil), indices...), IndicesCount: uint32(len(indices))},
		IndicesCount:   uint32(len(indices)),
		TrianglesCount: uint32(len(indices) / 3),
	}
}

func quadPositions() []math.Vec3 {
	return []math.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
}

// quadAsset is a unit square in the XY plane made of faces 0-1-2 and 0-2-3.
func quadAsset() *formats.Asset {
	return assetOf(makeGeometry(quadPositions(), []uint32{0, 1, 2, 0, 2, 3}))
}

func assetOf(geometries ...*formats.Geometry) *formats.Asset {
	return &formats.Asset{
		Version: formats.CurrentMeshVersion,
		Name:    "fixture",
		Drawable: &formats.Drawable{
			Models: []*formats.Model{{Name: "root", Geometries: geometries}},
		},
	}
}

// downRay points straight down -Z onto the XY plane at (x, y) from height 10.
func downRay(x, y float32) picking.Ray {
	return picking.NewRay(math.Vec3{X: x, Y: y, Z: 10}, math.Vec3{Z: -1})
}

// recordingCache counts invalidations.
type recordingCache struct {
	vertex int
	index  int
}

func (c *recordingCache) VertexDataChanged(*formats.Asset) { c.vertex++ }
func (c *recordingCache) IndexDataChanged(*formats.Asset)  { c.index++ }

func geometryIndices(a *formats.Asset, model, geom int) []uint32 {
	return a.Drawable.Models[model].Geometries[geom].IndexBuffer.Indices
}

// faceIndices flattens the face list of one geometry the way regeneration does.
func faceIndices(faces []*Face, id GeometryID) []uint32 {
	var out []uint32
	for _, f := range faces {
		if f.Geometry() == id {
			out = append(out, uint32(f.V1.Index), uint32(f.V2.Index), uint32(f.V3.Index))
		}
	}
	return out
}
