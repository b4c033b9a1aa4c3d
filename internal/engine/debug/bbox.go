// Package debug provides debug visualization utilities.
package debug

import (
	"github.com/Faultbox/tlj-engine/internal/engine/model"
	"github.com/Faultbox/tlj-engine/internal/engine/picking"
	"github.com/Faultbox/tlj-engine/pkg/math"
)

// BBoxWireframeVertexCount is the number of vertices for a bbox wireframe (12 edges × 2).
const BBoxWireframeVertexCount = 24

// BBoxWireframeVertices creates line vertices for a wireframe box with the
// given corners, two endpoints per edge.
func BBoxWireframeVertices(lo, hi math.Vec3) [][3]float32 {
	c := func(x, y, z float32) [3]float32 { return [3]float32{x, y, z} }
	return [][3]float32{
		// Bottom face (4 edges)
		c(lo.X, lo.Y, lo.Z), c(hi.X, lo.Y, lo.Z),
		c(hi.X, lo.Y, lo.Z), c(hi.X, lo.Y, hi.Z),
		c(hi.X, lo.Y, hi.Z), c(lo.X, lo.Y, hi.Z),
		c(lo.X, lo.Y, hi.Z), c(lo.X, lo.Y, lo.Z),
		// Top face (4 edges)
		c(lo.X, hi.Y, lo.Z), c(hi.X, hi.Y, lo.Z),
		c(hi.X, hi.Y, lo.Z), c(hi.X, hi.Y, hi.Z),
		c(hi.X, hi.Y, hi.Z), c(lo.X, hi.Y, hi.Z),
		c(lo.X, hi.Y, hi.Z), c(lo.X, hi.Y, lo.Z),
		// Vertical edges (4 edges)
		c(lo.X, lo.Y, lo.Z), c(lo.X, hi.Y, lo.Z),
		c(hi.X, lo.Y, lo.Z), c(hi.X, hi.Y, lo.Z),
		c(hi.X, lo.Y, hi.Z), c(hi.X, hi.Y, hi.Z),
		c(lo.X, lo.Y, hi.Z), c(lo.X, hi.Y, hi.Z),
	}
}

// BBoxWireframe creates wireframe vertices for box expanded by padding on
// all sides. An empty box yields nil.
func BBoxWireframe(box picking.AABB, padding float32) [][3]float32 {
	if !box.Valid {
		return nil
	}
	pad := math.Vec3{X: padding, Y: padding, Z: padding}
	return BBoxWireframeVertices(box.Min.Sub(pad), box.Max.Add(pad))
}

// BoneWireframes returns the wireframe of every non-empty bone box, moved
// into model space by the bone's current pose. This is the volume picking
// tests a ray against.
func BoneWireframes(m *model.Model) map[int][][3]float32 {
	out := make(map[int][][3]float32)
	for i := range m.Bones() {
		b := &m.Bones()[i]
		verts := BBoxWireframe(b.BoundingBox, 0)
		if verts == nil {
			continue
		}
		for j, v := range verts {
			p := b.AnimRot.Rotate(math.Vec3{X: v[0], Y: v[1], Z: v[2]}).Add(b.AnimPos)
			verts[j] = p.Array()
		}
		out[i] = verts
	}
	return out
}
