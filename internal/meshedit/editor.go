// Package meshedit implements vertex, edge and face editing over the raw
// vertex and index buffers of a drawable asset.
//
// An Editor owns one edit session at a time. All session state is guarded by a
// single mutex: the input path (picking, moving, deleting) and the render path
// (View) never observe each other half-way through an operation.
package meshedit

import (
	"errors"
	"fmt"
	"sync"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-meshedit/internal/logger"
	"github.com/Faultbox/midgard-meshedit/pkg/formats"
	"github.com/Faultbox/midgard-meshedit/pkg/math"
)

// DefaultPickDistance is the maximum ray distance for vertex and edge picks.
const DefaultPickDistance float32 = 0.5

// ErrNoAsset is returned when saving without an active session.
var ErrNoAsset = errors.New("no asset under edit")

// Editor is a mesh edit session over one asset.
type Editor struct {
	mu sync.Mutex

	log         *zap.Logger
	renderables RenderableCache
	edgeMetric  EdgeMetric

	asset      *formats.Asset
	geometries []*formats.Geometry // indexed by GeometryID
	transform  math.Mat4
	inverse    math.Mat4

	mode     Mode
	vertices []*Vertex
	edges    []*Edge
	faces    []*Face
	selected []Element
	hovered  Element
	active   bool
	session  uint64 // bumped by StartEditing; commands record the one they belong to
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger used for build and regeneration diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.log = l
		}
	}
}

// WithRenderableCache sets the cache notified when undo or redo changes GPU-facing data.
func WithRenderableCache(c RenderableCache) Option {
	return func(e *Editor) { e.renderables = c }
}

// WithEdgeMetric selects how edge picks measure distance.
func WithEdgeMetric(m EdgeMetric) Option {
	return func(e *Editor) { e.edgeMetric = m }
}

// New creates an inactive editor.
func New(opts ...Option) *Editor {
	e := &Editor{
		log:        logger.Log,
		edgeMetric: EdgeMidpoint,
		transform:  math.Identity(),
		inverse:    math.Identity(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	e.log = e.log.Named("meshedit")
	return e
}

// StartEditing begins a session on asset placed with the given transform.
// It returns false if the asset has no drawable or no models. Any previous
// session state is discarded.
func (e *Editor) StartEditing(asset *formats.Asset, placement math.Mat4) bool {
	if asset == nil || asset.Drawable == nil {
		e.log.Warn("cannot edit asset without drawable")
		return false
	}
	if len(asset.Drawable.Models) == 0 {
		e.log.Warn("cannot edit asset without models", zap.String("asset", asset.Name))
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.session++
	e.asset = asset
	e.transform = placement
	e.inverse = placement.Inverse()
	e.buildLocked()
	e.mode = ModeVertex
	e.active = true

	e.log.Info("edit session started",
		zap.String("asset", asset.Name),
		zap.Uint64("session", e.session),
		zap.Int("vertices", len(e.vertices)),
		zap.Int("edges", len(e.edges)),
		zap.Int("faces", len(e.faces)),
	)
	return true
}

// StopEditing ends the session, keeping any committed and uncommitted edits in
// the asset's buffers as they are.
func (e *Editor) StopEditing() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

// Cancel discards uncommitted moves and ends the session.
func (e *Editor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, v := range e.vertices {
		v.ResetPosition()
	}
	e.stopLocked()
}

// inSession runs fn under the lock if session is the running session. Commands
// from a stopped or replaced session are logged and dropped.
func (e *Editor) inSession(session uint64, cmd fmt.Stringer, fn func()) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active || e.session != session {
		e.log.Warn("command from another edit session ignored",
			zap.Stringer("command", cmd),
			zap.Uint64("session", session),
			zap.Uint64("current", e.session),
			zap.Bool("active", e.active),
		)
		return false
	}
	fn()
	return true
}

func (e *Editor) stopLocked() {
	if e.active {
		e.log.Info("edit session stopped")
	}
	e.clearElementsLocked()
	e.asset = nil
	e.geometries = nil
	e.mode = ModeNone
	e.active = false
}

func (e *Editor) clearElementsLocked() {
	for _, el := range e.selected {
		el.setSelected(false)
	}
	e.selected = nil
	e.hovered = nil
	e.vertices = nil
	e.edges = nil
	e.faces = nil
}

// IsActive reports whether a session is running.
func (e *Editor) IsActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Asset returns the asset under edit, or nil.
func (e *Editor) Asset() *formats.Asset {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.asset
}

// Transform returns the placement transform and its inverse.
func (e *Editor) Transform() (placement, inverse math.Mat4) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.transform, e.inverse
}

// Mode returns the active edit mode.
func (e *Editor) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// SetMode switches the edit mode. The selection is kept across modes.
func (e *Editor) SetMode(m Mode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mode = m
	e.hovered = nil
}

// Elements returns a snapshot of the element list for the active mode.
func (e *Editor) Elements() []Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.elementsLocked()
}

func (e *Editor) elementsLocked() []Element {
	var out []Element
	switch e.mode {
	case ModeVertex:
		out = make([]Element, len(e.vertices))
		for i, v := range e.vertices {
			out[i] = v
		}
	case ModeEdge:
		out = make([]Element, len(e.edges))
		for i, ed := range e.edges {
			out[i] = ed
		}
	case ModeFace:
		out = make([]Element, len(e.faces))
		for i, f := range e.faces {
			out[i] = f
		}
	}
	return out
}

// Vertices returns a snapshot of every vertex in the session.
func (e *Editor) Vertices() []*Vertex {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Vertex(nil), e.vertices...)
}

// Edges returns a snapshot of every edge in the session.
func (e *Editor) Edges() []*Edge {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Edge(nil), e.edges...)
}

// Faces returns a snapshot of the current face list.
func (e *Editor) Faces() []*Face {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Face(nil), e.faces...)
}

// Selected returns a snapshot of the selection, in selection order.
func (e *Editor) Selected() []Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Element(nil), e.selected...)
}

// Hovered returns the element under the last hover query, or nil.
func (e *Editor) Hovered() Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hovered
}

// SelectionCenter returns the mean position of the selected elements, or the
// zero vector when nothing is selected.
func (e *Editor) SelectionCenter() math.Vec3 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.selected) == 0 {
		return math.Vec3{}
	}
	var sum math.Vec3
	for _, el := range e.selected {
		sum = sum.Add(el.Position())
	}
	return sum.Scale(1 / float32(len(e.selected)))
}

// Bounds returns the placement-space bounding box of the current vertex
// positions. ok is false when the session has no vertices.
func (e *Editor) Bounds() (lo, hi math.Vec3, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.vertices) == 0 {
		return math.Vec3{}, math.Vec3{}, false
	}
	lo = e.transform.TransformPoint(e.vertices[0].Position())
	hi = lo
	for _, v := range e.vertices[1:] {
		p := e.transform.TransformPoint(v.Position())
		lo = math.Vec3{X: math32.Min(lo.X, p.X), Y: math32.Min(lo.Y, p.Y), Z: math32.Min(lo.Z, p.Z)}
		hi = math.Vec3{X: math32.Max(hi.X, p.X), Y: math32.Max(hi.Y, p.Y), Z: math32.Max(hi.Z, p.Z)}
	}
	return lo, hi, true
}

// Status returns a short description of the session for display.
func (e *Editor) Status() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		return "No active mesh"
	}
	if len(e.selected) == 0 {
		return fmt.Sprintf("Mode: %s\nNo selection", e.mode)
	}
	return fmt.Sprintf("Mode: %s\n%d element(s) selected", e.mode, len(e.selected))
}

// View is the session state handed to a renderer. Its slices alias editor
// state and are only valid inside the View callback.
type View struct {
	Active    bool
	Mode      Mode
	Transform math.Mat4
	Elements  []Element
	Selected  []Element
	Hovered   Element
}

// HoverHighlight returns the hovered element unless it is already drawn as selected.
func (v View) HoverHighlight() Element {
	if v.Hovered == nil || v.Hovered.IsSelected() {
		return nil
	}
	return v.Hovered
}

// View calls fn with the session state while holding the session lock.
// fn must not call back into the editor.
func (e *Editor) View(fn func(v View)) {
	e.mu.Lock()
	defer e.mu.Unlock()

	fn(View{
		Active:    e.active,
		Mode:      e.mode,
		Transform: e.transform,
		Elements:  e.elementsLocked(),
		Selected:  e.selected,
		Hovered:   e.hovered,
	})
}
