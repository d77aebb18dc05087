// Package camera provides the orbit camera hosts use to turn viewport clicks
// into picking rays.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-meshedit/pkg/math"
	"github.com/Faultbox/midgard-meshedit/pkg/picking"
)

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	Center math.Vec3

	// Spherical coordinates
	Distance float32
	Pitch    float32 // Vertical angle, radians
	Yaw      float32 // Horizontal angle, radians

	// Projection
	FovY      float32 // Radians
	Near, Far float32

	MinPitch float32
	MaxPitch float32
}

// NewOrbitCamera creates an orbit camera looking at the origin along -Z.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance: 10,
		FovY:     0.785398, // 45 degrees
		Near:     0.1,
		Far:      1000,
		MinPitch: -1.5,
		MaxPitch: 1.5,
	}
}

// Position returns the camera position.
func (c *OrbitCamera) Position() math.Vec3 {
	cosPitch := math32.Cos(c.Pitch)
	return c.Center.Add(math.Vec3{
		X: c.Distance * cosPitch * math32.Sin(c.Yaw),
		Y: c.Distance * math32.Sin(c.Pitch),
		Z: c.Distance * cosPitch * math32.Cos(c.Yaw),
	})
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, math.Vec3{Y: 1})
}

// Projection returns the perspective matrix for a viewport of the given aspect ratio.
func (c *OrbitCamera) Projection(aspect float32) math.Mat4 {
	return math.Perspective(c.FovY, aspect, c.Near, c.Far)
}

// SetPitch sets the vertical angle, clamped to the pitch limits.
func (c *OrbitCamera) SetPitch(pitch float32) {
	c.Pitch = math32.Max(c.MinPitch, math32.Min(c.MaxPitch, pitch))
}

// FitToBounds centers the camera on a bounding box and backs off until the
// box's bounding sphere fills the vertical field of view.
func (c *OrbitCamera) FitToBounds(lo, hi math.Vec3) {
	c.Center = lo.Add(hi).Scale(0.5)

	radius := hi.Sub(lo).Length() / 2
	if radius == 0 {
		radius = 1
	}
	c.Distance = radius / math32.Sin(c.FovY/2)
	c.Far = math32.Max(c.Far, c.Distance+radius*2)
}

// ScreenRay returns the ray under pixel (x, y) of a width x height viewport.
func (c *OrbitCamera) ScreenRay(x, y, width, height float32) picking.Ray {
	viewProj := c.Projection(width / height).Mul(c.ViewMatrix())
	return picking.ScreenToRay(x, y, width, height, viewProj.Inverse())
}
