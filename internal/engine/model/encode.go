package model

import (
	"io"

	"github.com/Faultbox/tlj-engine/pkg/formats"
)

// Encode writes m in the model file format, keeping the format code of a
// loaded model.
func Encode(w io.Writer, m *Model) error {
	fw := formats.NewWriter(w)

	fw.WriteUint32(Magic)
	format := m.Format()
	fw.WriteUint32(format)
	if format == FormatExtended {
		fw.WriteUint32(m.extra)
	}
	fw.WriteUint32(Magic2)
	fw.WriteFloat(m.scalar)

	fw.WriteUint32(uint32(len(m.materials)))
	for _, mat := range m.materials {
		fw.WriteString(mat.Name)
		fw.WriteUint32(mat.Flags)
		fw.WriteString(mat.Texture)
		fw.WriteFloat(mat.R)
		fw.WriteFloat(mat.G)
		fw.WriteFloat(mat.B)
	}

	fw.WriteUint32(0) // reserved

	fw.WriteUint32(uint32(len(m.bones)))
	for i := range m.bones {
		bone := &m.bones[i]
		fw.WriteString(bone.Name)
		fw.WriteFloat(bone.Unknown)
		fw.WriteUint32(uint32(len(bone.Children)))
		for _, c := range bone.Children {
			fw.WriteUint32(c)
		}
	}

	fw.WriteUint32(uint32(len(m.meshes)))
	for i := range m.meshes {
		mesh := &m.meshes[i]
		fw.WriteString(mesh.Name)
		fw.WriteUint32(uint32(len(mesh.Faces)))
		for j := range mesh.Faces {
			face := &mesh.Faces[j]
			fw.WriteUint32(face.MaterialIdx)

			fw.WriteUint32(uint32(len(face.Vertices)))
			for k := range face.Vertices {
				v := &face.Vertices[k]
				fw.WriteVector3(v.Pos1)
				fw.WriteVector3(v.Pos2)
				fw.WriteVector3(v.Normal)
				fw.WriteFloat(v.TexS)
				fw.WriteFloat(v.TexT)
				fw.WriteUint32(v.Bone1)
				fw.WriteUint32(v.Bone2)
				fw.WriteFloat(v.BoneWeight)
			}

			fw.WriteUint32(uint32(len(face.Triangles)))
			for _, tri := range face.Triangles {
				fw.WriteUint32(tri.V1)
				fw.WriteUint32(tri.V2)
				fw.WriteUint32(tri.V3)
			}
		}
	}

	return fw.Err()
}

// Builder assembles a model in memory, mostly for tools and tests. Build runs
// the same validation and bounding-box pass as Load.
type Builder struct {
	m Model
}

// NewBuilder starts an empty model.
func NewBuilder() *Builder {
	return &Builder{}
}

// Header sets the opaque header values.
func (b *Builder) Header(extra uint32, scalar float32) *Builder {
	b.m.extra = extra
	b.m.scalar = scalar
	return b
}

// Material appends a material.
func (b *Builder) Material(mat Material) *Builder {
	b.m.materials = append(b.m.materials, mat)
	return b
}

// Bone appends a bone with the given children.
func (b *Builder) Bone(name string, children ...uint32) *Builder {
	b.m.bones = append(b.m.bones, Bone{
		Name:     name,
		Children: children,
		Parent:   -1,
		Index:    len(b.m.bones),
	})
	return b
}

// Mesh appends a mesh.
func (b *Builder) Mesh(mesh Mesh) *Builder {
	b.m.meshes = append(b.m.meshes, mesh)
	return b
}

// Build validates the model and computes bone bounds.
func (b *Builder) Build() (*Model, error) {
	m := b.m
	m.materials = append([]Material(nil), b.m.materials...)
	m.meshes = append([]Mesh(nil), b.m.meshes...)
	m.bones = append([]Bone(nil), b.m.bones...)
	for i := range m.bones {
		m.bones[i].Parent = -1
	}
	if err := m.linkBones(); err != nil {
		return nil, err
	}
	if err := m.validateReferences(); err != nil {
		return nil, err
	}
	m.buildBoneBounds()
	m.ResetPose()
	return &m, nil
}
