// Package model loads skeletal actor models and answers ray-pick queries
// against their posed skeleton.
package model

import (
	"github.com/Faultbox/tlj-engine/internal/engine/picking"
	"github.com/Faultbox/tlj-engine/pkg/math"
)

// Material describes the surface of a group of faces.
type Material struct {
	Name    string
	Flags   uint32
	Texture string // Texture name inside the actor's texture set
	R, G, B float32
}

// Vertex is a skinned vertex influenced by up to two bones. Pos1 is the
// vertex position relative to Bone1 and Pos2 relative to Bone2; the final
// position is blended by BoneWeight.
type Vertex struct {
	Pos1, Pos2 math.Vec3
	Normal     math.Vec3
	TexS, TexT float32
	Bone1      uint32
	Bone2      uint32
	BoneWeight float32 // Influence of Bone1, Bone2 gets 1 - BoneWeight
}

// Position returns the weighted rest position of the vertex.
func (v *Vertex) Position() math.Vec3 {
	return v.Pos2.Lerp(v.Pos1, v.BoneWeight)
}

// Triangle indexes three vertices of the owning face.
type Triangle struct {
	V1, V2, V3 uint32
}

// Face is a group of triangles sharing one material.
type Face struct {
	MaterialIdx uint32
	Vertices    []Vertex
	Triangles   []Triangle
}

// Mesh is a named list of faces.
type Mesh struct {
	Name  string
	Faces []Face
}

// Bone is a joint of the skeleton.
type Bone struct {
	Name     string
	Unknown  float32
	Children []uint32
	Parent   int // -1 for root bones
	Index    int

	// BoundingBox is expressed in bone space at rest pose.
	BoundingBox picking.AABB

	// AnimPos and AnimRot are the current model-space pose of the bone. They
	// are written by ApplyPose once per frame and never persisted.
	AnimPos math.Vec3
	AnimRot math.Quat
}

// IsRoot reports whether no other bone lists b as a child.
func (b *Bone) IsRoot() bool {
	return b.Parent < 0
}

// Model is a skeletal actor model.
type Model struct {
	format uint32  // Format code the model was read with, 0 for built models
	extra  uint32  // Trailing header field, present only in the extended format
	scalar float32 // Opaque header value

	materials []Material
	meshes    []Mesh
	bones     []Bone
}

// Materials returns the model's materials. The slice must not be modified.
func (m *Model) Materials() []Material {
	return m.materials
}

// Meshes returns the model's meshes. The slice must not be modified.
func (m *Model) Meshes() []Mesh {
	return m.meshes
}

// Bones returns the model's bones, indexed by Bone.Index. Callers must not
// modify them; use ApplyPose to update the pose.
func (m *Model) Bones() []Bone {
	return m.bones
}

// HeaderExtra returns the extended-format header field (0 in compact files).
func (m *Model) HeaderExtra() uint32 {
	return m.extra
}

// Format returns the format code Encode writes: the code the model was read
// with, or the smallest format that holds the header.
func (m *Model) Format() uint32 {
	if m.format == FormatExtended || m.extra != 0 {
		return FormatExtended
	}
	return FormatCompact
}

// HeaderScalar returns the opaque header float.
func (m *Model) HeaderScalar() float32 {
	return m.scalar
}

// VertexCount returns the total number of vertices across all meshes.
func (m *Model) VertexCount() int {
	total := 0
	for i := range m.meshes {
		for j := range m.meshes[i].Faces {
			total += len(m.meshes[i].Faces[j].Vertices)
		}
	}
	return total
}

// TriangleCount returns the total number of triangles across all meshes.
func (m *Model) TriangleCount() int {
	total := 0
	for i := range m.meshes {
		for j := range m.meshes[i].Faces {
			total += len(m.meshes[i].Faces[j].Triangles)
		}
	}
	return total
}
