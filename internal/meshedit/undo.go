package meshedit

import (
	"fmt"

	"github.com/Faultbox/midgard-meshedit/pkg/math"
)

// VertexMoveCommand undoes and redoes one translation of a set of vertices.
// It only acts while the session that created it is running.
type VertexMoveCommand struct {
	editor   *Editor
	session  uint64
	delta    math.Vec3
	vertices []*Vertex
}

// Delta returns the captured translation.
func (c *VertexMoveCommand) Delta() math.Vec3 { return c.delta }

// Vertices returns the captured vertices. The slice must not be modified.
func (c *VertexMoveCommand) Vertices() []*Vertex { return c.vertices }

// Undo moves the vertices back by the delta and commits.
func (c *VertexMoveCommand) Undo() {
	if c == nil {
		return
	}
	c.apply(c.delta.Neg())
}

// Redo moves the vertices by the delta again and commits.
func (c *VertexMoveCommand) Redo() {
	if c == nil {
		return
	}
	c.apply(c.delta)
}

func (c *VertexMoveCommand) apply(delta math.Vec3) {
	if c.editor == nil {
		return
	}

	e := c.editor
	applied := e.inSession(c.session, c, func() {
		for _, v := range c.vertices {
			v.Move(delta)
			v.CommitMove()
		}
		e.writeVertexBuffersLocked()
	})
	if applied {
		e.notifyVertexDataChanged()
	}
}

func (c *VertexMoveCommand) String() string {
	if c == nil {
		return "Mesh Transform (0 vertices)"
	}
	return fmt.Sprintf("Mesh Transform (%d vertices)", len(c.vertices))
}

// FaceDeleteCommand undoes and redoes the deletion of a set of faces.
// It only acts while the session that created it is running.
type FaceDeleteCommand struct {
	editor  *Editor
	session uint64
	faces   []*Face
}

// Faces returns the captured faces. The slice must not be modified.
func (c *FaceDeleteCommand) Faces() []*Face { return c.faces }

// Undo restores the faces.
func (c *FaceDeleteCommand) Undo() {
	if c == nil || c.editor == nil {
		return
	}
	if c.editor.inSession(c.session, c, func() { c.editor.restoreFacesLocked(c.faces) }) {
		c.editor.notifyIndexDataChanged()
	}
}

// Redo deletes the faces again.
func (c *FaceDeleteCommand) Redo() {
	if c == nil || c.editor == nil {
		return
	}
	if c.editor.inSession(c.session, c, func() { c.editor.deleteFacesLocked(c.faces) }) {
		c.editor.notifyIndexDataChanged()
	}
}

func (c *FaceDeleteCommand) String() string {
	if c == nil {
		return "Delete 0 Faces"
	}
	return fmt.Sprintf("Delete %d Faces", len(c.faces))
}
