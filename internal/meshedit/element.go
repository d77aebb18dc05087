package meshedit

import (
	"github.com/Faultbox/midgard-meshedit/pkg/math"
)

// GeometryID identifies a geometry within an edit session. It indexes the
// session's geometry table and is only meaningful for the session that built it.
type GeometryID int

// Element is a selectable part of the mesh: a *Vertex, *Edge or *Face.
// The set of implementations is closed.
type Element interface {
	// Position returns the element's current local-space position.
	Position() math.Vec3
	// Move translates every underlying vertex by delta.
	Move(delta math.Vec3)
	// CommitMove folds the current position of every underlying vertex into its original.
	CommitMove()
	IsSelected() bool
	Kind() Mode

	setSelected(selected bool)
	appendVertices(dst []*Vertex) []*Vertex
}

// Vertex is one record of a geometry's vertex buffer.
type Vertex struct {
	Index    int        // Record index in the geometry's vertex buffer
	Geometry GeometryID // Owning geometry

	original math.Vec3
	current  math.Vec3
	selected bool
}

func newVertex(index int, geometry GeometryID, position math.Vec3) *Vertex {
	return &Vertex{Index: index, Geometry: geometry, original: position, current: position}
}

// Position returns the current (possibly uncommitted) position.
func (v *Vertex) Position() math.Vec3 { return v.current }

// OriginalPosition returns the position as of the last commit.
func (v *Vertex) OriginalPosition() math.Vec3 { return v.original }

// Move translates the vertex.
func (v *Vertex) Move(delta math.Vec3) { v.current = v.current.Add(delta) }

// CommitMove makes the current position the original one.
func (v *Vertex) CommitMove() { v.original = v.current }

// ResetPosition discards any uncommitted move.
func (v *Vertex) ResetPosition() { v.current = v.original }

func (v *Vertex) IsSelected() bool          { return v.selected }
func (v *Vertex) Kind() Mode                { return ModeVertex }
func (v *Vertex) setSelected(selected bool) { v.selected = selected }

func (v *Vertex) appendVertices(dst []*Vertex) []*Vertex {
	return append(dst, v)
}

// Edge is an undirected pair of vertices of the same geometry.
type Edge struct {
	V1, V2 *Vertex

	selected bool
}

// Position returns the edge midpoint.
func (e *Edge) Position() math.Vec3 {
	return e.V1.Position().Add(e.V2.Position()).Scale(0.5)
}

// Move translates both endpoints.
func (e *Edge) Move(delta math.Vec3) {
	e.V1.Move(delta)
	e.V2.Move(delta)
}

// CommitMove commits both endpoints.
func (e *Edge) CommitMove() {
	e.V1.CommitMove()
	e.V2.CommitMove()
}

func (e *Edge) IsSelected() bool          { return e.selected }
func (e *Edge) Kind() Mode                { return ModeEdge }
func (e *Edge) setSelected(selected bool) { e.selected = selected }

func (e *Edge) appendVertices(dst []*Vertex) []*Vertex {
	return append(dst, e.V1, e.V2)
}

// Face is a triangle in the winding order of the source index buffer.
type Face struct {
	Index      int // Position in the face list when built; display only
	V1, V2, V3 *Vertex

	session  uint64
	selected bool
}

// Position returns the centroid.
func (f *Face) Position() math.Vec3 {
	return f.V1.Position().Add(f.V2.Position()).Add(f.V3.Position()).Scale(1.0 / 3.0)
}

// Move translates all three corners.
func (f *Face) Move(delta math.Vec3) {
	f.V1.Move(delta)
	f.V2.Move(delta)
	f.V3.Move(delta)
}

// CommitMove commits all three corners.
func (f *Face) CommitMove() {
	f.V1.CommitMove()
	f.V2.CommitMove()
	f.V3.CommitMove()
}

// Normal returns the unit normal of the current positions, following the winding order.
func (f *Face) Normal() math.Vec3 {
	edge1 := f.V2.Position().Sub(f.V1.Position())
	edge2 := f.V3.Position().Sub(f.V1.Position())
	return edge1.Cross(edge2).Normalize()
}

// Geometry returns the geometry the face belongs to. All corners share it.
func (f *Face) Geometry() GeometryID { return f.V1.Geometry }

func (f *Face) IsSelected() bool          { return f.selected }
func (f *Face) Kind() Mode                { return ModeFace }
func (f *Face) setSelected(selected bool) { f.selected = selected }

func (f *Face) appendVertices(dst []*Vertex) []*Vertex {
	return append(dst, f.V1, f.V2, f.V3)
}

// uniqueVertices returns the vertices underlying elements, each once, in first-seen order.
func uniqueVertices(elements []Element) []*Vertex {
	seen := make(map[*Vertex]struct{})
	var scratch, result []*Vertex
	for _, el := range elements {
		scratch = el.appendVertices(scratch[:0])
		for _, v := range scratch {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			result = append(result, v)
		}
	}
	return result
}
