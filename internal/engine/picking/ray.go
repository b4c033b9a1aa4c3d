// Package picking provides ray casting and bounding-box hit tests.
package picking

import (
	gomath "math"

	"github.com/Faultbox/tlj-engine/pkg/math"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // Normalized direction
}

// NewRay creates a ray, normalizing the direction.
func NewRay(origin, direction math.Vec3) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize()}
}

// Translate moves the ray origin by offset.
func (r Ray) Translate(offset math.Vec3) Ray {
	return Ray{Origin: r.Origin.Add(offset), Direction: r.Direction}
}

// Rotate rotates both origin and direction by q.
func (r Ray) Rotate(q math.Quat) Ray {
	return Ray{
		Origin:    q.Rotate(r.Origin),
		Direction: q.Rotate(r.Direction).Normalize(),
	}
}

// Transform applies m to the ray: the origin as a point, the direction as a
// vector. The direction is renormalized since m may scale.
func (r Ray) Transform(m math.Mat4) Ray {
	return Ray{
		Origin:    m.TransformPoint(r.Origin),
		Direction: m.TransformDirection(r.Direction).Normalize(),
	}
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// IntersectAABB tests ray intersection with an axis-aligned bounding box
// using the slab method.
// Returns the distance to intersection (t) and whether intersection occurred.
// If the ray starts inside the box, returns the exit distance.
// An empty box never intersects.
func (r Ray) IntersectAABB(box AABB) (t float32, hit bool) {
	if !box.Valid {
		return 0, false
	}

	tmin := float32(-gomath.MaxFloat32)
	tmax := float32(gomath.MaxFloat32)

	for axis := 0; axis < 3; axis++ {
		origin := r.Origin.Component(axis)
		dir := r.Direction.Component(axis)
		lo := box.Min.Component(axis)
		hi := box.Max.Component(axis)

		if dir == 0 {
			// Parallel to the slab: must already lie between its planes
			if origin < lo || origin > hi {
				return 0, false
			}
			continue
		}

		t1 := (lo - origin) / dir
		t2 := (hi - origin) / dir
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
	}

	// Box entirely behind the origin, or slabs do not overlap
	if tmax < tmin || tmax < 0 {
		return 0, false
	}

	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}
