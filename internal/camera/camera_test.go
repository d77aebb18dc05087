package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/midgard-meshedit/pkg/math"
	"github.com/Faultbox/midgard-meshedit/pkg/picking"
)

func TestPositionOrbitsCenter(t *testing.T) {
	c := NewOrbitCamera()
	c.Center = math.Vec3{X: 1, Y: 1}
	c.Distance = 4

	assert.True(t, c.Position().ApproxEqual(math.Vec3{X: 1, Y: 1, Z: 4}, 1e-5))

	c.Yaw = 1.5707964
	assert.True(t, c.Position().ApproxEqual(math.Vec3{X: 5, Y: 1}, 1e-5))
}

func TestSetPitchClamps(t *testing.T) {
	c := NewOrbitCamera()
	c.SetPitch(3)
	assert.Equal(t, c.MaxPitch, c.Pitch)
	c.SetPitch(-3)
	assert.Equal(t, c.MinPitch, c.Pitch)
	c.SetPitch(0.25)
	assert.Equal(t, float32(0.25), c.Pitch)
}

func TestFitToBounds(t *testing.T) {
	c := NewOrbitCamera()
	c.FitToBounds(math.Vec3{X: -1, Y: -1, Z: -1}, math.Vec3{X: 1, Y: 1, Z: 1})

	assert.Equal(t, math.Vec3{}, c.Center)
	// Bounding sphere radius sqrt(3) over sin(22.5 degrees).
	assert.InDelta(t, 4.526, c.Distance, 1e-2)
}

func TestScreenRayThroughCenter(t *testing.T) {
	c := NewOrbitCamera()
	c.Center = math.Vec3{X: 2.0 / 3, Y: 1.0 / 3}

	ray := c.ScreenRay(320, 240, 640, 480)
	assert.True(t, ray.Direction.ApproxEqual(math.Vec3{Z: -1}, 1e-4), "direction %v", ray.Direction)

	tHit, hit := picking.RayTriangle(ray, math.Vec3{}, math.Vec3{X: 1}, math.Vec3{X: 1, Y: 1})
	assert.True(t, hit)
	assert.InDelta(t, 10-0.1, tHit, 1e-2)
}

func TestScreenRayOffCenter(t *testing.T) {
	c := NewOrbitCamera()

	left := c.ScreenRay(0, 240, 640, 480)
	right := c.ScreenRay(640, 240, 640, 480)
	assert.Less(t, left.Direction.X, float32(0))
	assert.Greater(t, right.Direction.X, float32(0))
	assert.InDelta(t, -left.Direction.X, right.Direction.X, 1e-4)
}
