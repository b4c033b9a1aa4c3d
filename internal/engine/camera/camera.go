// Package camera provides cameras that turn screen positions into picking
// rays. The world is Z-up.
package camera

import (
	gomath "math"

	"github.com/Faultbox/tlj-engine/internal/engine/picking"
	"github.com/Faultbox/tlj-engine/pkg/math"
)

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	// Center point to orbit around
	Center math.Vec3

	// Spherical coordinates
	Distance float32 // Distance from center
	Pitch    float32 // Elevation above the XY plane (radians)
	Yaw      float32 // Rotation about Z (radians); 0 looks along +Y

	// Vertical field of view (radians)
	FOV float32

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates a new orbit camera with default settings.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        10.0,
		Pitch:           0.5,
		Yaw:             0.0,
		FOV:             math.Radians(45),
		MinDistance:     0.5,
		MaxDistance:     500.0,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	cosP := float32(gomath.Cos(float64(c.Pitch)))
	offset := math.Vec3{
		X: cosP * float32(gomath.Sin(float64(c.Yaw))),
		Y: -cosP * float32(gomath.Cos(float64(c.Yaw))),
		Z: float32(gomath.Sin(float64(c.Pitch))),
	}
	return c.Center.Add(offset.Scale(c.Distance))
}

// Basis returns the camera's forward, right and up unit vectors.
func (c *OrbitCamera) Basis() (forward, right, up math.Vec3) {
	forward = c.Center.Sub(c.Position()).Normalize()
	right = forward.Cross(math.Vec3{Z: 1}).Normalize()
	up = right.Cross(forward)
	return forward, right, up
}

// ScreenRay returns the world ray through a point on screen given in
// normalized device coordinates: x and y in [-1, 1], +y up. aspect is
// width over height.
func (c *OrbitCamera) ScreenRay(ndcX, ndcY, aspect float32) picking.Ray {
	forward, right, up := c.Basis()
	tanHalf := float32(gomath.Tan(float64(c.FOV) / 2))

	dir := forward.
		Add(right.Scale(ndcX * tanHalf * aspect)).
		Add(up.Scale(ndcY * tanHalf))
	return picking.NewRay(c.Position(), dir)
}

// PixelRay is ScreenRay for a pixel position with the origin at the top left.
func (c *OrbitCamera) PixelRay(px, py, width, height float32) picking.Ray {
	ndcX := 2*px/width - 1
	ndcY := 1 - 2*py/height
	return c.ScreenRay(ndcX, ndcY, width/height)
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch += deltaY * c.DragSensitivity

	// Clamp pitch
	if c.Pitch < c.MinPitch {
		c.Pitch = c.MinPitch
	}
	if c.Pitch > c.MaxPitch {
		c.Pitch = c.MaxPitch
	}
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	if c.Distance < c.MinDistance {
		c.Distance = c.MinDistance
	}
	if c.Distance > c.MaxDistance {
		c.Distance = c.MaxDistance
	}
}

// FitToBounds centers the camera on box and backs off until the whole box
// fits in the vertical field of view.
func (c *OrbitCamera) FitToBounds(box picking.AABB) {
	if !box.Valid {
		return
	}
	c.Center = box.Center()

	radius := box.Size().Length() / 2
	c.Distance = radius / float32(gomath.Sin(float64(c.FOV)/2))
	if c.Distance < c.MinDistance {
		c.Distance = c.MinDistance
	}
}
