package meshedit

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/midgard-meshedit/pkg/formats"
	"github.com/Faultbox/midgard-meshedit/pkg/math"
)

func startQuad(t *testing.T, opts ...Option) (*Editor, *formats.Asset) {
	t.Helper()
	asset := quadAsset()
	e := New(opts...)
	require.True(t, e.StartEditing(asset, math.Identity()))
	return e, asset
}

func TestStartEditingRejectsEmptyAssets(t *testing.T) {
	tests := []struct {
		name  string
		asset *formats.Asset
	}{
		{"nil asset", nil},
		{"no drawable", &formats.Asset{Name: "empty"}},
		{"no models", &formats.Asset{Name: "empty", Drawable: &formats.Drawable{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New()
			assert.False(t, e.StartEditing(tt.asset, math.Identity()))
			assert.False(t, e.IsActive())
			assert.Equal(t, ModeNone, e.Mode())
			assert.Nil(t, e.Asset())
		})
	}
}

func TestStartEditingQuad(t *testing.T) {
	e, asset := startQuad(t)

	assert.True(t, e.IsActive())
	assert.Same(t, asset, e.Asset())
	assert.Equal(t, ModeVertex, e.Mode())
	assert.Len(t, e.Vertices(), 4)
	assert.Len(t, e.Faces(), 2)

	edges := e.Edges()
	require.Len(t, edges, 5, "shared diagonal is built once")
	pairs := make(map[[2]int]bool)
	for _, ed := range edges {
		a, b := ed.V1.Index, ed.V2.Index
		if b < a {
			a, b = b, a
		}
		assert.False(t, pairs[[2]int{a, b}], "duplicate edge %d-%d", a, b)
		pairs[[2]int{a, b}] = true
		assert.Equal(t, ed.V1.Geometry, ed.V2.Geometry)
	}
	assert.True(t, pairs[[2]int{0, 2}])

	for i, v := range e.Vertices() {
		assert.Equal(t, quadPositions()[i], v.Position())
		assert.Equal(t, v.Position(), v.OriginalPosition())
	}

	faces := e.Faces()
	assert.Equal(t, []int{0, 1, 2}, []int{faces[0].V1.Index, faces[0].V2.Index, faces[0].V3.Index})
	assert.Equal(t, []int{0, 2, 3}, []int{faces[1].V1.Index, faces[1].V2.Index, faces[1].V3.Index})
}

func TestStartEditingDiscardsPreviousSession(t *testing.T) {
	e, _ := startQuad(t)
	e.SelectElement(downRay(0, 0), false, 0)
	require.Len(t, e.Selected(), 1)
	old := e.Vertices()[0]

	second := quadAsset()
	require.True(t, e.StartEditing(second, math.Identity()))
	assert.Same(t, second, e.Asset())
	assert.Empty(t, e.Selected())
	assert.False(t, old.IsSelected())
	assert.NotSame(t, old, e.Vertices()[0])
}

func TestBuildSkipsOutOfRangeTriangles(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	geom := makeGeometry(quadPositions(), []uint32{0, 1, 2, 0, 1, 7})

	e := New(WithLogger(zap.New(core)))
	require.True(t, e.StartEditing(assetOf(geom), math.Identity()))

	assert.Len(t, e.Faces(), 1)
	assert.Len(t, e.Edges(), 3)
	assert.Equal(t, 1, logs.FilterMessage("skipped triangles with out-of-range indices").Len())
}

func TestBuildShortVertexBuffer(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	geom := makeGeometry(quadPositions(), []uint32{0, 1, 2})
	geom.VertexData.VertexBytes = geom.VertexData.VertexBytes[:3*testStride]

	e := New(WithLogger(zap.New(core)))
	require.True(t, e.StartEditing(assetOf(geom), math.Identity()))

	vertices := e.Vertices()
	require.Len(t, vertices, 4)
	assert.Equal(t, math.Vec3{}, vertices[3].Position())
	assert.Equal(t, 1, logs.FilterMessage("vertex buffer too short, positions defaulted to origin").Len())
}

func TestBuildSkipsGeometryWithoutBuffers(t *testing.T) {
	bare := &formats.Geometry{}
	e := New()
	require.True(t, e.StartEditing(assetOf(bare, makeGeometry(quadPositions(), []uint32{0, 1, 2})), math.Identity()))

	vertices := e.Vertices()
	require.Len(t, vertices, 4)
	assert.Equal(t, GeometryID(1), vertices[0].Geometry)
	assert.Len(t, e.Faces(), 1)
}

func TestBuildKeepsEdgesPerGeometry(t *testing.T) {
	a := makeGeometry(quadPositions(), []uint32{0, 1, 2})
	b := makeGeometry(quadPositions(), []uint32{0, 1, 2})

	e := New()
	require.True(t, e.StartEditing(assetOf(a, b), math.Identity()))

	assert.Len(t, e.Vertices(), 8)
	assert.Len(t, e.Faces(), 2)
	assert.Len(t, e.Edges(), 6, "equal index pairs in different geometries are different edges")
}

func TestStopEditing(t *testing.T) {
	e, _ := startQuad(t)
	e.SelectElement(downRay(1, 0), false, 0)
	v := e.Selected()[0]

	e.StopEditing()
	assert.False(t, e.IsActive())
	assert.Nil(t, e.Asset())
	assert.Equal(t, ModeNone, e.Mode())
	assert.Empty(t, e.Selected())
	assert.Empty(t, e.Elements())
	assert.False(t, v.IsSelected())
}

func TestCancelDiscardsUncommittedMoves(t *testing.T) {
	e, asset := startQuad(t)
	e.SelectElement(downRay(1, 1), false, 0)
	v := e.Vertices()[2]
	e.MoveSelectedElements(math.Vec3{Z: 2})
	require.Equal(t, math.Vec3{X: 1, Y: 1, Z: 2}, v.Position())

	e.Cancel()
	assert.False(t, e.IsActive())
	assert.Equal(t, math.Vec3{X: 1, Y: 1}, v.Position())

	pos, ok := readPosition(asset.Drawable.Models[0].Geometries[0].VertexData, 2)
	require.True(t, ok)
	assert.Equal(t, math.Vec3{X: 1, Y: 1}, pos, "buffer is untouched without UpdateVertexBuffer")
}

func TestSetModeKeepsSelection(t *testing.T) {
	e, _ := startQuad(t)
	e.SetMode(ModeFace)
	require.True(t, e.SelectElement(downRay(2.0/3, 1.0/3), false, 0))
	e.UpdateHover(downRay(1.0/3, 2.0/3), 0)
	require.NotNil(t, e.Hovered())

	e.SetMode(ModeVertex)
	assert.Nil(t, e.Hovered())
	selected := e.Selected()
	require.Len(t, selected, 1)
	assert.Equal(t, ModeFace, selected[0].Kind())

	for _, el := range e.Elements() {
		assert.Equal(t, ModeVertex, el.Kind())
	}
}

func TestElementsFollowMode(t *testing.T) {
	e, _ := startQuad(t)

	counts := map[Mode]int{ModeVertex: 4, ModeEdge: 5, ModeFace: 2, ModeNone: 0}
	for mode, n := range counts {
		e.SetMode(mode)
		assert.Len(t, e.Elements(), n, mode.String())
	}
}

func TestStatus(t *testing.T) {
	e := New()
	assert.Equal(t, "No active mesh", e.Status())

	require.True(t, e.StartEditing(quadAsset(), math.Identity()))
	assert.Equal(t, "Mode: Vertex\nNo selection", e.Status())

	e.SelectElement(downRay(0, 0), false, 0)
	e.SelectElement(downRay(1, 0), true, 0)
	assert.Equal(t, "Mode: Vertex\n2 element(s) selected", e.Status())
}

func TestSelectionCenter(t *testing.T) {
	e, _ := startQuad(t)
	assert.Equal(t, math.Vec3{}, e.SelectionCenter())

	e.SelectElement(downRay(1, 0), false, 0)
	e.SelectElement(downRay(1, 1), true, 0)
	assert.True(t, e.SelectionCenter().ApproxEqual(math.Vec3{X: 1, Y: 0.5}, 1e-6))
}

func TestViewHoverHighlight(t *testing.T) {
	e, _ := startQuad(t)
	v1 := e.Vertices()[1]
	e.UpdateHover(downRay(1, 0), 0)

	var highlight Element
	e.View(func(v View) {
		assert.True(t, v.Active)
		assert.Equal(t, ModeVertex, v.Mode)
		assert.Len(t, v.Elements, 4)
		highlight = v.HoverHighlight()
	})
	require.NotNil(t, highlight)
	assert.Same(t, v1, highlight)

	e.SelectElement(downRay(1, 0), false, 0)
	e.View(func(v View) {
		assert.Same(t, v1, v.Hovered)
		assert.Nil(t, v.HoverHighlight(), "selected elements are drawn as selected, not hovered")
	})
}

func TestConcurrentViewAndEdits(t *testing.T) {
	e, _ := startQuad(t)
	e.SelectElement(downRay(1, 1), false, 0)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			e.MoveSelectedElements(math.Vec3{Z: 0.01})
			e.UpdateHover(downRay(0, 0), 0)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			e.View(func(v View) {
				for _, el := range v.Elements {
					_ = el.Position()
				}
				_ = v.HoverHighlight()
			})
		}
	}()
	wg.Wait()

	assert.InDelta(t, 2.0, e.Vertices()[2].Position().Z, 1e-3)
}

func TestBounds(t *testing.T) {
	e := New()
	_, _, ok := e.Bounds()
	assert.False(t, ok)

	require.True(t, e.StartEditing(quadAsset(), math.Translate(0, 0, 3)))
	e.SelectElement(downRay(1, 1), false, 0)
	e.MoveSelectedElements(math.Vec3{Z: 1})

	lo, hi, ok := e.Bounds()
	require.True(t, ok)
	assert.Equal(t, math.Vec3{Z: 3}, lo)
	assert.Equal(t, math.Vec3{X: 1, Y: 1, Z: 4}, hi)
}
