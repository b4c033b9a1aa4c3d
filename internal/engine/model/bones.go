package model

import "fmt"

// linkBones assigns parents from the child lists and rejects hierarchies
// that are not a forest.
func (m *Model) linkBones() error {
	count := uint32(len(m.bones))

	for i := range m.bones {
		for _, child := range m.bones[i].Children {
			if child >= count {
				return fmt.Errorf("bone %q: %w: child %d with %d bones",
					m.bones[i].Name, ErrBoneIndexOutOfRange, child, count)
			}
			c := &m.bones[child]
			if c.Parent >= 0 && c.Parent != i {
				return fmt.Errorf("bone %q: %w: %d and %d",
					c.Name, ErrMultipleParents, c.Parent, i)
			}
			c.Parent = i
		}
	}

	return m.checkAcyclic()
}

// checkAcyclic walks every parent chain. With at most one parent per bone
// the only possible cycles are closed parent chains.
func (m *Model) checkAcyclic() error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]uint8, len(m.bones))

	for start := range m.bones {
		var path []int
		i := start
		for i >= 0 && state[i] == unvisited {
			state[i] = visiting
			path = append(path, i)
			i = m.bones[i].Parent
		}
		if i >= 0 && state[i] == visiting {
			return fmt.Errorf("%w: through bone %q", ErrBoneCycle, m.bones[i].Name)
		}
		for _, p := range path {
			state[p] = done
		}
	}
	return nil
}

// buildBoneBounds computes every bone's rest-pose box. A vertex contributes
// Pos1 to Bone1 and Pos2 to Bone2 whatever its weight, so the box is a
// conservative bound of everything the bone can move.
func (m *Model) buildBoneBounds() {
	for i := range m.bones {
		m.buildBoneBoundingBox(&m.bones[i])
	}
}

func (m *Model) buildBoneBoundingBox(bone *Bone) {
	bone.BoundingBox.Reset()
	idx := uint32(bone.Index)

	for i := range m.meshes {
		mesh := &m.meshes[i]
		for j := range mesh.Faces {
			face := &mesh.Faces[j]
			for k := range face.Vertices {
				v := &face.Vertices[k]
				if v.Bone1 == idx {
					bone.BoundingBox.Expand(v.Pos1)
				}
				if v.Bone2 == idx {
					bone.BoundingBox.Expand(v.Pos2)
				}
			}
		}
	}
}

// Roots returns the indices of bones without a parent, in index order.
func (m *Model) Roots() []int {
	var roots []int
	for i := range m.bones {
		if m.bones[i].Parent < 0 {
			roots = append(roots, i)
		}
	}
	return roots
}

// Children returns the child indices of bone i.
func (m *Model) Children(i int) []int {
	if i < 0 || i >= len(m.bones) {
		return nil
	}
	children := make([]int, len(m.bones[i].Children))
	for k, c := range m.bones[i].Children {
		children[k] = int(c)
	}
	return children
}

// BoneByName returns the bone with the given name, or nil if not found.
func (m *Model) BoneByName(name string) *Bone {
	for i := range m.bones {
		if m.bones[i].Name == name {
			return &m.bones[i]
		}
	}
	return nil
}

// Depth returns the number of ancestors of bone i, or -1 if i is not a bone.
func (m *Model) Depth(i int) int {
	if i < 0 || i >= len(m.bones) {
		return -1
	}
	depth := 0
	for p := m.bones[i].Parent; p >= 0; p = m.bones[p].Parent {
		depth++
	}
	return depth
}
