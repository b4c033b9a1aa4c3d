package picking

import "github.com/Faultbox/tlj-engine/pkg/math"

// AABB represents an axis-aligned bounding box. The zero value is empty.
type AABB struct {
	Min   math.Vec3
	Max   math.Vec3
	Valid bool
}

// NewAABB creates a box from two corners in any order.
func NewAABB(a, b math.Vec3) AABB {
	return AABB{Min: a.Min(b), Max: a.Max(b), Valid: true}
}

// Reset empties the box.
func (b *AABB) Reset() {
	*b = AABB{}
}

// Expand grows the box to include p. Expanding an empty box yields the
// degenerate box at p.
func (b *AABB) Expand(p math.Vec3) {
	if !b.Valid {
		b.Min, b.Max, b.Valid = p, p, true
		return
	}
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}

// Contains reports whether p lies inside the box, boundary included.
func (b AABB) Contains(p math.Vec3) bool {
	return b.Valid &&
		p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Size returns the box extent, zero for an empty box.
func (b AABB) Size() math.Vec3 {
	if !b.Valid {
		return math.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Center returns the middle of the box.
func (b AABB) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}
