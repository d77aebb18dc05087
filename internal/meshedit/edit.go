package meshedit

import (
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-meshedit/pkg/math"
)

// MoveSelectedElements translates every vertex under the selection by delta.
// A vertex shared by several selected elements moves once.
func (e *Editor) MoveSelectedElements(delta math.Vec3) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, v := range uniqueVertices(e.selected) {
		v.Move(delta)
	}
}

// CommitChanges folds the current positions of the selection into their originals.
func (e *Editor) CommitChanges() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, el := range e.selected {
		el.CommitMove()
	}
}

// NewMoveCommand captures the vertices under the current selection and the
// total delta already applied to them, for the undo stack. It returns nil when
// nothing is selected.
func (e *Editor) NewMoveCommand(delta math.Vec3) *VertexMoveCommand {
	e.mu.Lock()
	defer e.mu.Unlock()

	vertices := uniqueVertices(e.selected)
	if len(vertices) == 0 {
		return nil
	}
	return &VertexMoveCommand{editor: e, session: e.session, delta: delta, vertices: vertices}
}

// DeleteSelectedFaces removes the selected faces from the mesh and returns the
// command that restores them. It returns nil outside face mode or when no face
// is selected.
//
// Only the deleted faces leave the selection. Selected vertices and edges,
// which can carry over from another mode, stay selected rather than the whole
// selection being cleared.
func (e *Editor) DeleteSelectedFaces() *FaceDeleteCommand {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode != ModeFace {
		return nil
	}

	var faces []*Face
	for _, el := range e.selected {
		if f, ok := el.(*Face); ok {
			faces = append(faces, f)
		}
	}
	if len(faces) == 0 {
		return nil
	}

	e.deleteFacesLocked(faces)
	e.log.Debug("deleted faces", zap.Int("count", len(faces)))

	return &FaceDeleteCommand{editor: e, session: e.session, faces: faces}
}

// DeleteFaces removes faces from the face list and regenerates the index
// buffers of their geometries. Faces not in the list are ignored, as are faces
// built by an earlier session.
func (e *Editor) DeleteFaces(faces []*Face) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		e.log.Warn("delete faces ignored, no active session")
		return
	}
	e.deleteFacesLocked(e.sessionFacesLocked(faces))
}

// RestoreFaces appends faces back to the face list and regenerates the index
// buffers of their geometries. Faces already in the list are ignored, as are
// faces built by an earlier session.
func (e *Editor) RestoreFaces(faces []*Face) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		e.log.Warn("restore faces ignored, no active session")
		return
	}
	e.restoreFacesLocked(e.sessionFacesLocked(faces))
}

// sessionFacesLocked drops faces whose geometry IDs belong to another session.
func (e *Editor) sessionFacesLocked(faces []*Face) []*Face {
	own := make([]*Face, 0, len(faces))
	for _, f := range faces {
		if f != nil && f.session == e.session {
			own = append(own, f)
		}
	}
	if stale := len(faces) - len(own); stale > 0 {
		e.log.Warn("faces from another edit session ignored",
			zap.Int("count", stale),
			zap.Uint64("session", e.session),
		)
	}
	return own
}

func (e *Editor) restoreFacesLocked(faces []*Face) {
	present := make(map[*Face]struct{}, len(e.faces))
	for _, f := range e.faces {
		present[f] = struct{}{}
	}

	touched := make(map[GeometryID]struct{})
	for _, f := range faces {
		if _, ok := present[f]; ok {
			continue
		}
		present[f] = struct{}{}
		e.faces = append(e.faces, f)
		touched[f.Geometry()] = struct{}{}
	}
	e.regenerateIndexBuffersLocked(touched)
}

func (e *Editor) deleteFacesLocked(faces []*Face) {
	remove := make(map[*Face]struct{}, len(faces))
	touched := make(map[GeometryID]struct{})
	for _, f := range faces {
		remove[f] = struct{}{}
		touched[f.Geometry()] = struct{}{}
	}

	kept := e.faces[:0]
	for _, f := range e.faces {
		if _, ok := remove[f]; !ok {
			kept = append(kept, f)
		}
	}
	clear(e.faces[len(kept):])
	e.faces = kept

	// Deleted faces leave the selection and hover so they come back unselected.
	selected := e.selected[:0]
	for _, el := range e.selected {
		if f, ok := el.(*Face); ok {
			if _, gone := remove[f]; gone {
				f.setSelected(false)
				continue
			}
		}
		selected = append(selected, el)
	}
	clear(e.selected[len(selected):])
	e.selected = selected

	if f, ok := e.hovered.(*Face); ok {
		if _, gone := remove[f]; gone {
			e.hovered = nil
		}
	}

	e.regenerateIndexBuffersLocked(touched)
}

// regenerateIndexBuffersLocked rewrites the index buffer of each geometry from
// its faces, in face-list order and original winding.
func (e *Editor) regenerateIndexBuffersLocked(geometries map[GeometryID]struct{}) {
	ids := make([]GeometryID, 0, len(geometries))
	for id := range geometries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if int(id) < 0 || int(id) >= len(e.geometries) {
			e.log.Warn("face references unknown geometry", zap.Int("geometry", int(id)))
			continue
		}
		geom := e.geometries[id]
		if geom.IndexBuffer == nil {
			continue
		}

		vertexCount := 0
		if geom.VertexData != nil {
			vertexCount = geom.VertexData.VertexCount
		}

		indices := make([]uint32, 0, len(geom.IndexBuffer.Indices))
		for _, f := range e.faces {
			if f.Geometry() != id {
				continue
			}
			for _, v := range [3]*Vertex{f.V1, f.V2, f.V3} {
				if v.Index < 0 || v.Index >= vertexCount {
					// Written anyway; the buffer stays in step with the face list.
					e.log.Warn("face index out of range during regeneration",
						zap.Int("geometry", int(id)),
						zap.Int("face", f.Index),
						zap.Int("index", v.Index),
						zap.Int("vertexCount", vertexCount),
					)
				}
				indices = append(indices, uint32(v.Index))
			}
		}

		geom.IndexBuffer.Indices = indices
		geom.IndexBuffer.IndicesCount = uint32(len(indices))
		geom.IndicesCount = uint32(len(indices))
		geom.TrianglesCount = uint32(len(indices) / 3)
	}
}
