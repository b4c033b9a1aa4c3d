package model

import (
	"errors"
	"fmt"
	"os"

	"github.com/Faultbox/tlj-engine/pkg/formats"
	"github.com/Faultbox/tlj-engine/pkg/math"
)

// Header constants.
const (
	Magic          uint32 = 4
	Magic2         uint32 = 0xDEADBABE
	FormatExtended uint32 = 256 // An extra uint32 follows the format code
	FormatCompact  uint32 = 16
)

// Model format errors.
var (
	ErrInvalidMagic            = errors.New("invalid model magic")
	ErrUnknownFormat           = errors.New("unknown model format code")
	ErrInvalidMagic2           = errors.New("invalid model secondary magic")
	ErrUnsupportedReserved     = errors.New("unsupported model feature: nonzero reserved count")
	ErrBoneIndexOutOfRange     = errors.New("bone index out of range")
	ErrMaterialIndexOutOfRange = errors.New("material index out of range")
	ErrTriangleIndexOutOfRange = errors.New("triangle vertex index out of range")
	ErrMultipleParents         = errors.New("bone listed as child of more than one bone")
	ErrBoneCycle               = errors.New("bone hierarchy contains a cycle")
)

// AssetReader is the sequential primitive reader models are decoded from.
// formats.Stream implements it.
type AssetReader interface {
	ReadUint32() (uint32, error)
	ReadFloat() (float32, error)
	ReadVector3() (math.Vec3, error)
	ReadString() (string, error)
	EOS() bool
}

// Load decodes a model from r. On error no model is returned.
func Load(r AssetReader) (*Model, error) {
	m := &Model{}

	if err := m.readHeader(r); err != nil {
		return nil, err
	}
	if err := m.readMaterials(r); err != nil {
		return nil, err
	}

	reserved, err := r.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("reading reserved count: %w", err)
	}
	if reserved != 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedReserved, reserved)
	}

	if err := m.readBones(r); err != nil {
		return nil, err
	}
	if err := m.readMeshes(r); err != nil {
		return nil, err
	}
	if err := m.validateReferences(); err != nil {
		return nil, err
	}

	m.buildBoneBounds()
	m.ResetPose()

	return m, nil
}

// Parse decodes a model from an in-memory asset.
func Parse(data []byte) (*Model, error) {
	return Load(formats.NewStreamBytes(data))
}

// ParseFile decodes a model file from disk.
func ParseFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening model file: %w", err)
	}
	defer f.Close()

	return Load(formats.NewStream(f))
}

func (m *Model) readHeader(r AssetReader) error {
	id, err := r.ReadUint32()
	if err != nil {
		return fmt.Errorf("reading magic: %w", err)
	}
	if id != Magic {
		return fmt.Errorf("%w: %d", ErrInvalidMagic, id)
	}

	format, err := r.ReadUint32()
	if err != nil {
		return fmt.Errorf("reading format: %w", err)
	}
	m.format = format
	switch format {
	case FormatExtended:
		if m.extra, err = r.ReadUint32(); err != nil {
			return fmt.Errorf("reading header extra: %w", err)
		}
	case FormatCompact:
		m.extra = 0
	default:
		return fmt.Errorf("%w: %d", ErrUnknownFormat, format)
	}

	id2, err := r.ReadUint32()
	if err != nil {
		return fmt.Errorf("reading magic 2: %w", err)
	}
	if id2 != Magic2 {
		return fmt.Errorf("%w: %#x", ErrInvalidMagic2, id2)
	}

	if m.scalar, err = r.ReadFloat(); err != nil {
		return fmt.Errorf("reading header scalar: %w", err)
	}
	return nil
}

func (m *Model) readMaterials(r AssetReader) error {
	count, err := readCount(r, "material")
	if err != nil {
		return err
	}

	m.materials = make([]Material, 0, capHint(count))
	for i := uint32(0); i < count; i++ {
		var mat Material
		if err := readMaterial(r, &mat); err != nil {
			return fmt.Errorf("reading material %d: %w", i, err)
		}
		m.materials = append(m.materials, mat)
	}
	return nil
}

func readMaterial(r AssetReader, mat *Material) error {
	var err error
	if mat.Name, err = r.ReadString(); err != nil {
		return err
	}
	if mat.Flags, err = r.ReadUint32(); err != nil {
		return err
	}
	if mat.Texture, err = r.ReadString(); err != nil {
		return err
	}
	if mat.R, err = r.ReadFloat(); err != nil {
		return err
	}
	if mat.G, err = r.ReadFloat(); err != nil {
		return err
	}
	mat.B, err = r.ReadFloat()
	return err
}

// readBones reads the flat bone array, then links parents in a second pass:
// a bone may be listed as a child before it is itself defined.
func (m *Model) readBones(r AssetReader) error {
	count, err := readCount(r, "bone")
	if err != nil {
		return err
	}

	m.bones = make([]Bone, 0, capHint(count))
	for i := uint32(0); i < count; i++ {
		bone := Bone{Parent: -1, Index: int(i)}
		if err := readBone(r, &bone); err != nil {
			return fmt.Errorf("reading bone %d: %w", i, err)
		}
		m.bones = append(m.bones, bone)
	}

	return m.linkBones()
}

func readBone(r AssetReader, bone *Bone) error {
	var err error
	if bone.Name, err = r.ReadString(); err != nil {
		return err
	}
	if bone.Unknown, err = r.ReadFloat(); err != nil {
		return err
	}

	n, err := readCount(r, "child")
	if err != nil {
		return err
	}
	bone.Children = make([]uint32, 0, capHint(n))
	for j := uint32(0); j < n; j++ {
		child, err := r.ReadUint32()
		if err != nil {
			return err
		}
		bone.Children = append(bone.Children, child)
	}
	return nil
}

func (m *Model) readMeshes(r AssetReader) error {
	count, err := readCount(r, "mesh")
	if err != nil {
		return err
	}

	m.meshes = make([]Mesh, 0, capHint(count))
	for i := uint32(0); i < count; i++ {
		var mesh Mesh
		if err := readMesh(r, &mesh); err != nil {
			return fmt.Errorf("reading mesh %d: %w", i, err)
		}
		m.meshes = append(m.meshes, mesh)
	}
	return nil
}

func readMesh(r AssetReader, mesh *Mesh) error {
	var err error
	if mesh.Name, err = r.ReadString(); err != nil {
		return err
	}

	faceCount, err := readCount(r, "face")
	if err != nil {
		return err
	}
	mesh.Faces = make([]Face, 0, capHint(faceCount))
	for j := uint32(0); j < faceCount; j++ {
		var face Face
		if err := readFace(r, &face); err != nil {
			return fmt.Errorf("face %d: %w", j, err)
		}
		mesh.Faces = append(mesh.Faces, face)
	}
	return nil
}

func readFace(r AssetReader, face *Face) error {
	var err error
	if face.MaterialIdx, err = r.ReadUint32(); err != nil {
		return err
	}

	vertCount, err := readCount(r, "vertex")
	if err != nil {
		return err
	}
	face.Vertices = make([]Vertex, 0, capHint(vertCount))
	for k := uint32(0); k < vertCount; k++ {
		var v Vertex
		if err := readVertex(r, &v); err != nil {
			return fmt.Errorf("vertex %d: %w", k, err)
		}
		face.Vertices = append(face.Vertices, v)
	}

	triCount, err := readCount(r, "triangle")
	if err != nil {
		return err
	}
	face.Triangles = make([]Triangle, 0, capHint(triCount))
	for k := uint32(0); k < triCount; k++ {
		var tri Triangle
		if tri.V1, err = r.ReadUint32(); err != nil {
			return fmt.Errorf("triangle %d: %w", k, err)
		}
		if tri.V2, err = r.ReadUint32(); err != nil {
			return fmt.Errorf("triangle %d: %w", k, err)
		}
		if tri.V3, err = r.ReadUint32(); err != nil {
			return fmt.Errorf("triangle %d: %w", k, err)
		}
		face.Triangles = append(face.Triangles, tri)
	}
	return nil
}

func readVertex(r AssetReader, v *Vertex) error {
	var err error
	if v.Pos1, err = r.ReadVector3(); err != nil {
		return err
	}
	if v.Pos2, err = r.ReadVector3(); err != nil {
		return err
	}
	if v.Normal, err = r.ReadVector3(); err != nil {
		return err
	}
	if v.TexS, err = r.ReadFloat(); err != nil {
		return err
	}
	if v.TexT, err = r.ReadFloat(); err != nil {
		return err
	}
	if v.Bone1, err = r.ReadUint32(); err != nil {
		return err
	}
	if v.Bone2, err = r.ReadUint32(); err != nil {
		return err
	}
	v.BoneWeight, err = r.ReadFloat()
	return err
}

// validateReferences checks every index a face or vertex carries.
func (m *Model) validateReferences() error {
	boneCount := uint32(len(m.bones))
	matCount := uint32(len(m.materials))

	for i := range m.meshes {
		mesh := &m.meshes[i]
		for j := range mesh.Faces {
			face := &mesh.Faces[j]
			if face.MaterialIdx >= matCount {
				return fmt.Errorf("mesh %q face %d: %w: %d >= %d",
					mesh.Name, j, ErrMaterialIndexOutOfRange, face.MaterialIdx, matCount)
			}

			for k := range face.Vertices {
				v := &face.Vertices[k]
				if v.Bone1 >= boneCount || v.Bone2 >= boneCount {
					return fmt.Errorf("mesh %q face %d vertex %d: %w: (%d, %d) with %d bones",
						mesh.Name, j, k, ErrBoneIndexOutOfRange, v.Bone1, v.Bone2, boneCount)
				}
			}

			vertCount := uint32(len(face.Vertices))
			for k, tri := range face.Triangles {
				if tri.V1 >= vertCount || tri.V2 >= vertCount || tri.V3 >= vertCount {
					return fmt.Errorf("mesh %q face %d triangle %d: %w", mesh.Name, j, k, ErrTriangleIndexOutOfRange)
				}
			}
		}
	}
	return nil
}

// readCount reads an element count. A nonzero count at end of stream is
// reported as truncation before anything is allocated for it.
func readCount(r AssetReader, what string) (uint32, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return 0, fmt.Errorf("reading %s count: %w", what, err)
	}
	if n > 0 && r.EOS() {
		return 0, fmt.Errorf("%d %s records: %w", n, what, formats.ErrTruncated)
	}
	return n, nil
}

// capHint caps preallocation for counts read from untrusted data.
func capHint(n uint32) int {
	const maxPrealloc = 4096
	if n > maxPrealloc {
		return maxPrealloc
	}
	return int(n)
}
