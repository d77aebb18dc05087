package meshedit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/midgard-meshedit/pkg/math"
)

func TestVertexMoveAndCommit(t *testing.T) {
	v := newVertex(0, 0, math.Vec3{X: 1, Y: 2, Z: 3})
	d := math.Vec3{X: 0.25, Y: -1.5, Z: 4}

	v.Move(d)
	assert.Equal(t, math.Vec3{X: 1.25, Y: 0.5, Z: 7}, v.Position())
	assert.Equal(t, math.Vec3{X: 1, Y: 2, Z: 3}, v.OriginalPosition(), "original moves only on commit")

	v.Move(d.Neg())
	assert.True(t, v.Position().ApproxEqual(math.Vec3{X: 1, Y: 2, Z: 3}, 1e-6))

	v.Move(d)
	v.CommitMove()
	committed := v.OriginalPosition()
	v.CommitMove()
	assert.Equal(t, committed, v.OriginalPosition(), "commit is idempotent")
	assert.Equal(t, v.Position(), v.OriginalPosition())
}

func TestVertexResetPosition(t *testing.T) {
	v := newVertex(0, 0, math.Vec3{X: 1})
	v.Move(math.Vec3{Y: 5})
	v.ResetPosition()
	assert.Equal(t, math.Vec3{X: 1}, v.Position())
}

func TestEdgeAndFacePositions(t *testing.T) {
	v0 := newVertex(0, 0, math.Vec3{})
	v1 := newVertex(1, 0, math.Vec3{X: 3})
	v2 := newVertex(2, 0, math.Vec3{Y: 3})

	edge := &Edge{V1: v0, V2: v1}
	assert.Equal(t, math.Vec3{X: 1.5}, edge.Position())

	face := &Face{V1: v0, V2: v1, V3: v2}
	assert.True(t, face.Position().ApproxEqual(math.Vec3{X: 1, Y: 1}, 1e-6))
	assert.Equal(t, math.Vec3{Z: 1}, face.Normal())

	reversed := &Face{V1: v0, V2: v2, V3: v1}
	assert.Equal(t, math.Vec3{Z: -1}, reversed.Normal(), "normal follows winding")
}

func TestCompoundMoveRoundTrip(t *testing.T) {
	v0 := newVertex(0, 0, math.Vec3{})
	v1 := newVertex(1, 0, math.Vec3{X: 1})
	v2 := newVertex(2, 0, math.Vec3{Y: 1})
	d := math.Vec3{X: 0.1, Y: 0.2, Z: 0.3}

	for _, el := range []Element{&Edge{V1: v0, V2: v1}, &Face{V1: v0, V2: v1, V3: v2}} {
		before := el.Position()
		el.Move(d)
		assert.True(t, el.Position().ApproxEqual(before.Add(d), 1e-6), "%s moves by delta", el.Kind())
		el.Move(d.Neg())
		assert.True(t, el.Position().ApproxEqual(before, 1e-6), "%s returns after inverse move", el.Kind())
	}

	face := &Face{V1: v0, V2: v1, V3: v2}
	face.Move(d)
	face.CommitMove()
	for _, v := range []*Vertex{v0, v1, v2} {
		assert.Equal(t, v.Position(), v.OriginalPosition())
	}
}

func TestUniqueVertices(t *testing.T) {
	v0 := newVertex(0, 0, math.Vec3{})
	v1 := newVertex(1, 0, math.Vec3{X: 1})
	v2 := newVertex(2, 0, math.Vec3{Y: 1})

	got := uniqueVertices([]Element{
		v0,
		&Edge{V1: v0, V2: v1},
		&Face{V1: v0, V2: v1, V3: v2},
	})
	assert.Equal(t, []*Vertex{v0, v1, v2}, got)
	assert.Empty(t, uniqueVertices(nil))
}

func TestModeNames(t *testing.T) {
	assert.Equal(t, "Vertex", ModeVertex.String())
	assert.Equal(t, "Unknown(9)", Mode(9).String())

	m, err := ParseMode("face")
	assert.NoError(t, err)
	assert.Equal(t, ModeFace, m)

	_, err = ParseMode("polygon")
	assert.Error(t, err)
}
