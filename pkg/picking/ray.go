// Package picking provides the ray queries used to pick mesh elements.
package picking

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-meshedit/pkg/math"
)

// TriangleEpsilon is the determinant threshold below which a ray is treated as
// parallel to a triangle.
const TriangleEpsilon = 1e-7

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // Normalized direction
}

// NewRay returns a ray with a normalized direction.
func NewRay(origin, direction math.Vec3) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize()}
}

// ScreenToRay converts pixel coordinates to a ray in the space invViewProj
// unprojects into. screenY grows downwards.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, invViewProj math.Mat4) Ray {
	ndcX := 2*screenX/viewportW - 1
	ndcY := 1 - 2*screenY/viewportH

	near := invViewProj.TransformPoint(math.Vec3{X: ndcX, Y: ndcY, Z: -1})
	far := invViewProj.TransformPoint(math.Vec3{X: ndcX, Y: ndcY, Z: 1})
	return NewRay(near, far.Sub(near))
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// Transform maps the ray through m. The direction is renormalized, so distances
// measured along the result are in the target space's units.
func (r Ray) Transform(m math.Mat4) Ray {
	return NewRay(m.TransformPoint(r.Origin), m.TransformDirection(r.Direction))
}

// RayPointDistance returns the distance from point to the closest point on the ray.
// Points behind the origin are measured to the origin itself.
func RayPointDistance(r Ray, point math.Vec3) float32 {
	toPoint := point.Sub(r.Origin)
	projection := toPoint.Dot(r.Direction)
	if projection < 0 {
		return r.Origin.Distance(point)
	}
	return r.At(projection).Distance(point)
}

// RaySegmentMidpointDistance approximates the ray/segment distance by measuring
// to the segment midpoint. Edge picking uses this metric by default.
func RaySegmentMidpointDistance(r Ray, p1, p2 math.Vec3) float32 {
	mid := p1.Add(p2).Scale(0.5)
	return RayPointDistance(r, mid)
}

// RaySegmentDistance returns the exact distance between the ray and the segment p1-p2.
func RaySegmentDistance(r Ray, p1, p2 math.Vec3) float32 {
	d1 := r.Direction
	d2 := p2.Sub(p1)
	w := r.Origin.Sub(p1)

	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(w)

	if e <= TriangleEpsilon {
		return RayPointDistance(r, p1)
	}
	if a <= TriangleEpsilon {
		// Degenerate ray, measure from its origin.
		t := clamp(f/e, 0, 1)
		return p1.Add(d2.Scale(t)).Distance(r.Origin)
	}

	b := d1.Dot(d2)
	c := d1.Dot(w)
	denom := a*e - b*b

	var s float32
	if denom != 0 {
		s = math32.Max((b*f-c*e)/denom, 0)
	}

	t := (b*s + f) / e
	if t < 0 {
		t = 0
		s = math32.Max(-c/a, 0)
	} else if t > 1 {
		t = 1
		s = math32.Max((b-c)/a, 0)
	}

	return r.At(s).Distance(p1.Add(d2.Scale(t)))
}

// RayTriangle intersects the ray with triangle v0-v1-v2 using the Möller–Trumbore
// algorithm. It returns the ray parameter of the hit and whether the ray hits the
// triangle in front of its origin. Both windings are hit.
func RayTriangle(r Ray, v0, v1, v2 math.Vec3) (t float32, hit bool) {
	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	h := r.Direction.Cross(edge2)
	det := edge1.Dot(h)

	if det > -TriangleEpsilon && det < TriangleEpsilon {
		return 0, false // Ray parallel to triangle
	}

	inv := 1.0 / det
	s := r.Origin.Sub(v0)
	u := inv * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := inv * r.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t = inv * edge2.Dot(q)
	if t > TriangleEpsilon {
		return t, true
	}
	return 0, false // Intersection behind ray origin
}

func clamp(v, lo, hi float32) float32 {
	return math32.Min(math32.Max(v, lo), hi)
}
