package model

import "github.com/Faultbox/tlj-engine/pkg/math"

// PoseProvider supplies the current model-space transform of each bone.
// The animation system implements it; it is sampled once per frame.
type PoseProvider interface {
	BonePose(bone int) (position math.Vec3, rotation math.Quat)
}

// BonePose is a bone translation and rotation.
type BonePose struct {
	Position math.Vec3
	Rotation math.Quat
}

// StaticPose is a fixed pose indexed by bone. Bones past the end of the
// slice, and zero rotations, are treated as identity.
type StaticPose []BonePose

// BonePose implements PoseProvider.
func (p StaticPose) BonePose(bone int) (math.Vec3, math.Quat) {
	if bone < 0 || bone >= len(p) {
		return math.Vec3{}, math.QuatIdentity()
	}
	return p[bone].Position, p[bone].Rotation
}

// ApplyPose copies the current pose of every bone into the model. A nil
// provider resets the skeleton to the rest pose.
func (m *Model) ApplyPose(p PoseProvider) {
	if p == nil {
		m.ResetPose()
		return
	}
	for i := range m.bones {
		pos, rot := p.BonePose(i)
		if rot.IsZero() {
			rot = math.QuatIdentity()
		}
		m.bones[i].AnimPos = pos
		m.bones[i].AnimRot = rot
	}
}

// ResetPose puts every bone back at the rest pose.
func (m *Model) ResetPose() {
	for i := range m.bones {
		m.bones[i].AnimPos = math.Vec3{}
		m.bones[i].AnimRot = math.QuatIdentity()
	}
}

// ComposePose turns bone-local transforms, each relative to its parent, into
// the model-space pose ApplyPose expects. Parents are resolved before their
// children starting from every root.
func (m *Model) ComposePose(local PoseProvider) StaticPose {
	out := make(StaticPose, len(m.bones))
	for _, root := range m.Roots() {
		m.composeBone(local, root, nil, out)
	}
	return out
}

func (m *Model) composeBone(local PoseProvider, i int, parent *BonePose, out StaticPose) {
	pos, rot := local.BonePose(i)
	if rot.IsZero() {
		rot = math.QuatIdentity()
	}

	if parent != nil {
		pos = parent.Position.Add(parent.Rotation.Rotate(pos))
		rot = parent.Rotation.Mul(rot)
	}
	out[i] = BonePose{Position: pos, Rotation: rot}

	for _, c := range m.bones[i].Children {
		m.composeBone(local, int(c), &out[i], out)
	}
}
