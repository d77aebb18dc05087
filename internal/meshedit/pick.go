package meshedit

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-meshedit/pkg/picking"
)

// EdgeMetric selects the distance used when picking edges.
type EdgeMetric int

const (
	// EdgeMidpoint measures the ray distance to the edge midpoint.
	EdgeMidpoint EdgeMetric = iota
	// EdgeSegment measures the exact ray distance to the edge segment.
	EdgeSegment
)

// String returns the config name of the metric.
func (m EdgeMetric) String() string {
	switch m {
	case EdgeMidpoint:
		return "midpoint"
	case EdgeSegment:
		return "segment"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// ParseEdgeMetric converts a config name to an EdgeMetric.
func ParseEdgeMetric(name string) (EdgeMetric, error) {
	switch name {
	case "midpoint", "":
		return EdgeMidpoint, nil
	case "segment":
		return EdgeSegment, nil
	default:
		return EdgeMidpoint, fmt.Errorf("unknown edge picking metric %q", name)
	}
}

// LocalRay converts a ray from placement space into geometry-local space.
// Picking queries expect local rays.
func (e *Editor) LocalRay(ray picking.Ray) picking.Ray {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ray.Transform(e.inverse)
}

// Pick returns the closest element for the active mode along a local-space ray,
// with its distance (ray distance for vertices and edges, hit parameter for
// faces). maxDistance <= 0 selects DefaultPickDistance. It does not change
// selection or hover state.
func (e *Editor) Pick(ray picking.Ray, maxDistance float32) (Element, float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pickLocked(ray, maxDistance)
}

// SelectElement picks along ray and updates the selection. Without
// addToSelection the hit becomes the only selected element and a miss clears
// the selection. With addToSelection the hit's membership is toggled and a
// miss changes nothing. It reports whether something was hit.
func (e *Editor) SelectElement(ray picking.Ray, addToSelection bool, maxDistance float32) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	hit, _ := e.pickLocked(ray, maxDistance)
	if hit == nil {
		if !addToSelection {
			e.clearSelectionLocked()
		}
		return false
	}

	if !addToSelection {
		e.clearSelectionLocked()
		e.selectLocked(hit)
		return true
	}

	if i := e.selectionIndexLocked(hit); i >= 0 {
		e.selected = append(e.selected[:i], e.selected[i+1:]...)
		hit.setSelected(false)
	} else {
		e.selectLocked(hit)
	}
	return true
}

// UpdateHover stores the element under ray as the hovered element, or clears
// it on a miss. The selection is not touched.
func (e *Editor) UpdateHover(ray picking.Ray, maxDistance float32) {
	e.mu.Lock()
	defer e.mu.Unlock()

	hit, _ := e.pickLocked(ray, maxDistance)
	e.hovered = hit
}

// ClearSelection deselects everything.
func (e *Editor) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clearSelectionLocked()
}

func (e *Editor) clearSelectionLocked() {
	for _, el := range e.selected {
		el.setSelected(false)
	}
	e.selected = nil
}

func (e *Editor) selectLocked(el Element) {
	e.selected = append(e.selected, el)
	el.setSelected(true)
}

func (e *Editor) selectionIndexLocked(el Element) int {
	for i, s := range e.selected {
		if s == el {
			return i
		}
	}
	return -1
}

func (e *Editor) pickLocked(ray picking.Ray, maxDistance float32) (Element, float32) {
	if maxDistance <= 0 {
		maxDistance = DefaultPickDistance
	}

	switch e.mode {
	case ModeVertex:
		return e.closestVertex(ray, maxDistance)
	case ModeEdge:
		return e.closestEdge(ray, maxDistance)
	case ModeFace:
		return e.closestFace(ray)
	}
	return nil, 0
}

func (e *Editor) closestVertex(ray picking.Ray, maxDistance float32) (Element, float32) {
	var closest *Vertex
	closestDistance := math32.Inf(1)

	for _, v := range e.vertices {
		d := picking.RayPointDistance(ray, v.Position())
		if d < maxDistance && d < closestDistance {
			closestDistance = d
			closest = v
		}
	}

	if closest == nil {
		return nil, 0
	}
	return closest, closestDistance
}

func (e *Editor) closestEdge(ray picking.Ray, maxDistance float32) (Element, float32) {
	var closest *Edge
	closestDistance := math32.Inf(1)

	for _, edge := range e.edges {
		var d float32
		if e.edgeMetric == EdgeSegment {
			d = picking.RaySegmentDistance(ray, edge.V1.Position(), edge.V2.Position())
		} else {
			d = picking.RaySegmentMidpointDistance(ray, edge.V1.Position(), edge.V2.Position())
		}
		if d < maxDistance && d < closestDistance {
			closestDistance = d
			closest = edge
		}
	}

	if closest == nil {
		return nil, 0
	}
	return closest, closestDistance
}

// closestFace returns the face with the nearest ray hit. Faces the ray misses
// are ignored regardless of how close they are.
func (e *Editor) closestFace(ray picking.Ray) (Element, float32) {
	var closest *Face
	closestT := math32.Inf(1)

	for _, f := range e.faces {
		t, hit := picking.RayTriangle(ray, f.V1.Position(), f.V2.Position(), f.V3.Position())
		if hit && t < closestT {
			closestT = t
			closest = f
		}
	}

	if closest == nil {
		return nil, 0
	}
	return closest, closestT
}
