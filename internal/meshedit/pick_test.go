package meshedit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-meshedit/pkg/math"
	"github.com/Faultbox/midgard-meshedit/pkg/picking"
)

func TestPickVertex(t *testing.T) {
	e, _ := startQuad(t)

	hit, d := e.Pick(downRay(1.1, 0), 0)
	require.NotNil(t, hit)
	assert.Same(t, e.Vertices()[1], hit)
	assert.InDelta(t, 0.1, d, 1e-5)

	hit, _ = e.Pick(downRay(3, 3), 0)
	assert.Nil(t, hit)
}

func TestPickVertexBehindRay(t *testing.T) {
	e, _ := startQuad(t)

	// Pointing away from the plane; the distance falls back to the ray origin.
	away := picking.NewRay(math.Vec3{X: 1, Z: 1}, math.Vec3{Z: 1})
	hit, _ := e.Pick(away, 0)
	assert.Nil(t, hit)

	hit, _ = e.Pick(away, 2)
	assert.Same(t, e.Vertices()[1], hit)
}

func TestPickEdgeMidpoint(t *testing.T) {
	e, _ := startQuad(t)
	e.SetMode(ModeEdge)

	hit, d := e.Pick(downRay(0.5, 0), 0)
	require.NotNil(t, hit)
	edge := hit.(*Edge)
	assert.ElementsMatch(t, []int{0, 1}, []int{edge.V1.Index, edge.V2.Index})
	assert.InDelta(t, 0, d, 1e-5)

	// On the edge but far from every midpoint.
	hit, _ = e.Pick(downRay(0.9, 0), 0.1)
	assert.Nil(t, hit)
}

func TestPickEdgeSegment(t *testing.T) {
	e, _ := startQuad(t, WithEdgeMetric(EdgeSegment))
	e.SetMode(ModeEdge)

	hit, d := e.Pick(downRay(0.9, 0), 0.1)
	require.NotNil(t, hit)
	edge := hit.(*Edge)
	assert.ElementsMatch(t, []int{0, 1}, []int{edge.V1.Index, edge.V2.Index})
	assert.InDelta(t, 0, d, 1e-5)
}

func TestPickFaceThroughCentroid(t *testing.T) {
	e, _ := startQuad(t)
	e.SetMode(ModeFace)
	faces := e.Faces()

	hit, tHit := e.Pick(downRay(2.0/3, 1.0/3), 0)
	require.NotNil(t, hit)
	assert.Same(t, faces[0], hit)
	assert.InDelta(t, 10, tHit, 1e-4)

	hit, _ = e.Pick(downRay(1.0/3, 2.0/3), 0)
	assert.Same(t, faces[1], hit)

	hit, _ = e.Pick(downRay(2, 2), 100)
	assert.Nil(t, hit, "faces ignore maxDistance and need an actual hit")
}

func TestPickNearestFace(t *testing.T) {
	near := makeGeometry([]math.Vec3{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}}, []uint32{0, 1, 2})
	far := makeGeometry([]math.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}}, []uint32{0, 1, 2})

	e := New()
	require.True(t, e.StartEditing(assetOf(far, near), math.Identity()))
	e.SetMode(ModeFace)

	hit, tHit := e.Pick(downRay(2.0/3, 1.0/3), 0)
	require.NotNil(t, hit)
	assert.Equal(t, GeometryID(1), hit.(*Face).Geometry())
	assert.InDelta(t, 9, tHit, 1e-4)
}

func TestPickModeNone(t *testing.T) {
	e, _ := startQuad(t)
	e.SetMode(ModeNone)
	hit, _ := e.Pick(downRay(0, 0), 0)
	assert.Nil(t, hit)
}

func TestSelectElement(t *testing.T) {
	e, _ := startQuad(t)
	v := e.Vertices()

	assert.True(t, e.SelectElement(downRay(0, 0), false, 0))
	assert.Equal(t, []Element{v[0]}, e.Selected())
	assert.True(t, v[0].IsSelected())

	assert.True(t, e.SelectElement(downRay(1, 0), false, 0), "replace")
	assert.Equal(t, []Element{v[1]}, e.Selected())
	assert.False(t, v[0].IsSelected())

	assert.True(t, e.SelectElement(downRay(1, 1), true, 0), "add")
	assert.Equal(t, []Element{v[1], v[2]}, e.Selected())

	assert.True(t, e.SelectElement(downRay(1, 0), true, 0), "toggle off")
	assert.Equal(t, []Element{v[2]}, e.Selected())
	assert.False(t, v[1].IsSelected())

	assert.False(t, e.SelectElement(downRay(5, 5), true, 0), "additive miss keeps selection")
	assert.Equal(t, []Element{v[2]}, e.Selected())

	assert.False(t, e.SelectElement(downRay(5, 5), false, 0), "plain miss clears")
	assert.Empty(t, e.Selected())
	assert.False(t, v[2].IsSelected())
}

func TestSelectionFlagsMatchSelection(t *testing.T) {
	e, _ := startQuad(t)
	rays := []struct {
		x, y float32
		add  bool
	}{
		{0, 0, false}, {1, 0, true}, {1, 1, true}, {0, 0, true}, {0, 1, false}, {1, 1, true}, {1, 0, true},
	}

	for _, r := range rays {
		e.SelectElement(downRay(r.x, r.y), r.add, 0)

		selected := e.Selected()
		inSelection := make(map[Element]bool)
		for _, el := range selected {
			assert.False(t, inSelection[el], "element selected twice")
			inSelection[el] = true
		}
		for _, v := range e.Vertices() {
			assert.Equal(t, inSelection[v], v.IsSelected())
		}
	}
}

func TestClearSelection(t *testing.T) {
	e, _ := startQuad(t)
	e.SelectElement(downRay(0, 0), false, 0)
	e.SelectElement(downRay(1, 0), true, 0)

	e.ClearSelection()
	assert.Empty(t, e.Selected())
	for _, v := range e.Vertices() {
		assert.False(t, v.IsSelected())
	}
}

func TestUpdateHover(t *testing.T) {
	e, _ := startQuad(t)

	e.UpdateHover(downRay(0, 1), 0)
	assert.Same(t, e.Vertices()[3], e.Hovered())
	assert.Empty(t, e.Selected())

	e.UpdateHover(downRay(4, 4), 0)
	assert.Nil(t, e.Hovered())
}

func TestLocalRay(t *testing.T) {
	asset := quadAsset()
	e := New()
	require.True(t, e.StartEditing(asset, math.Translate(10, 0, 0)))
	e.SetMode(ModeFace)

	world := picking.NewRay(math.Vec3{X: 10 + 2.0/3, Y: 1.0 / 3, Z: 10}, math.Vec3{Z: -1})
	local := e.LocalRay(world)
	assert.True(t, local.Origin.ApproxEqual(math.Vec3{X: 2.0 / 3, Y: 1.0 / 3, Z: 10}, 1e-5))

	hit, tHit := e.Pick(local, 0)
	require.NotNil(t, hit)
	assert.Same(t, e.Faces()[0], hit)
	assert.InDelta(t, 10, tHit, 1e-4)

	placement, inverse := e.Transform()
	assert.Equal(t, math.Translate(10, 0, 0), placement)
	assert.True(t, inverse.TransformPoint(math.Vec3{X: 10}).ApproxEqual(math.Vec3{}, 1e-6))
}

func TestParseEdgeMetric(t *testing.T) {
	m, err := ParseEdgeMetric("segment")
	require.NoError(t, err)
	assert.Equal(t, EdgeSegment, m)

	m, err = ParseEdgeMetric("")
	require.NoError(t, err)
	assert.Equal(t, EdgeMidpoint, m)

	_, err = ParseEdgeMetric("nearest")
	assert.Error(t, err)
	assert.Equal(t, "midpoint", EdgeMidpoint.String())
}
