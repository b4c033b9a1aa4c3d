package model

import "github.com/Faultbox/tlj-engine/internal/engine/picking"

// IntersectRay reports whether a model-space ray hits any bone of the
// currently posed skeleton.
func (m *Model) IntersectRay(ray picking.Ray) bool {
	for i := range m.bones {
		if m.bones[i].IntersectRay(ray) {
			return true
		}
	}
	return false
}

// PickBone returns the bone hit closest to the ray origin and the distance
// along the ray. ok is false when nothing is hit.
func (m *Model) PickBone(ray picking.Ray) (bone int, dist float32, ok bool) {
	bone = -1
	for i := range m.bones {
		t, hit := m.bones[i].intersect(ray)
		if hit && (!ok || t < dist) {
			bone, dist, ok = i, t, true
		}
	}
	return bone, dist, ok
}

// IntersectRay tests a model-space ray against the bone's rest box after
// moving the ray into the bone's current pose space.
func (b *Bone) IntersectRay(ray picking.Ray) bool {
	_, hit := b.intersect(ray)
	return hit
}

func (b *Bone) intersect(ray picking.Ray) (float32, bool) {
	local := ray.Translate(b.AnimPos.Negate()).Rotate(b.AnimRot.Inverse())
	return local.IntersectAABB(b.BoundingBox)
}
