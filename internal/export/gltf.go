// Package export converts skeletal models to glTF 2.0.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/tlj-engine/internal/engine/debug"
	"github.com/Faultbox/tlj-engine/internal/engine/model"
)

// Options controls the output container.
type Options struct {
	Binary    bool // .glb instead of JSON with an embedded buffer
	BoneBoxes bool // Add the posed bone pick boxes as a line mesh
}

// Document builds a glTF document for m. Every face becomes one primitive
// of its mesh; bones become a node hierarchy bound to the meshes by a skin.
// Bones carry no rest transform, so the skin uses identity bind matrices.
func Document(m *model.Model, name string, opts Options) *gltf.Document {
	doc := gltf.NewDocument()
	doc.Asset.Generator = "tlj-engine"

	for _, mat := range m.Materials() {
		doc.Materials = append(doc.Materials, &gltf.Material{
			Name:        mat.Name,
			DoubleSided: true,
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor: &[4]float32{mat.R, mat.G, mat.B, 1},
			},
		})
	}

	skin := writeSkeleton(doc, m, name)

	for i := range m.Meshes() {
		mesh := &m.Meshes()[i]
		gm := &gltf.Mesh{Name: mesh.Name}
		for j := range mesh.Faces {
			if p := writeFace(doc, &mesh.Faces[j]); p != nil {
				gm.Primitives = append(gm.Primitives, p)
			}
		}
		if len(gm.Primitives) == 0 {
			continue
		}

		doc.Meshes = append(doc.Meshes, gm)
		node := &gltf.Node{
			Name: mesh.Name,
			Mesh: gltf.Index(uint32(len(doc.Meshes) - 1)),
			Skin: skin,
		}
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)))
		doc.Nodes = append(doc.Nodes, node)
	}

	if opts.BoneBoxes {
		writeBoneBoxes(doc, m)
	}

	return doc
}

// writeBoneBoxes adds one line primitive per non-empty bone box.
func writeBoneBoxes(doc *gltf.Document, m *model.Model) {
	wires := debug.BoneWireframes(m)
	if len(wires) == 0 {
		return
	}

	gm := &gltf.Mesh{Name: "bone_boxes"}
	for i := range m.Bones() {
		verts, ok := wires[i]
		if !ok {
			continue
		}
		gm.Primitives = append(gm.Primitives, &gltf.Primitive{
			Mode:       gltf.PrimitiveLines,
			Attributes: map[string]uint32{"POSITION": modeler.WritePosition(doc, verts)},
		})
	}

	doc.Meshes = append(doc.Meshes, gm)
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)))
	doc.Nodes = append(doc.Nodes, &gltf.Node{
		Name: "bone_boxes",
		Mesh: gltf.Index(uint32(len(doc.Meshes) - 1)),
	})
}

// writeSkeleton appends one node per bone, in bone order, and a skin over
// all of them. Returns nil for a model without bones.
func writeSkeleton(doc *gltf.Document, m *model.Model, name string) *uint32 {
	bones := m.Bones()
	if len(bones) == 0 {
		return nil
	}

	base := uint32(len(doc.Nodes))
	joints := make([]uint32, len(bones))
	for i := range bones {
		node := &gltf.Node{Name: bones[i].Name}
		for _, c := range bones[i].Children {
			node.Children = append(node.Children, base+c)
		}
		joints[i] = base + uint32(i)
		doc.Nodes = append(doc.Nodes, node)
	}

	for _, root := range m.Roots() {
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, base+uint32(root))
	}

	doc.Skins = append(doc.Skins, &gltf.Skin{
		Name:   name,
		Joints: joints,
	})
	return gltf.Index(uint32(len(doc.Skins) - 1))
}

func writeFace(doc *gltf.Document, face *model.Face) *gltf.Primitive {
	n := len(face.Vertices)
	if n == 0 || len(face.Triangles) == 0 {
		return nil
	}

	positions := make([][3]float32, n)
	normals := make([][3]float32, n)
	uvs := make([][2]float32, n)
	joints := make([][4]uint16, n)
	weights := make([][4]float32, n)
	for i := range face.Vertices {
		v := &face.Vertices[i]
		positions[i] = v.Position().Array()
		normals[i] = v.Normal.Normalize().Array()
		uvs[i] = [2]float32{v.TexS, v.TexT}
		joints[i] = [4]uint16{uint16(v.Bone1), uint16(v.Bone2), 0, 0}
		weights[i] = [4]float32{v.BoneWeight, 1 - v.BoneWeight, 0, 0}
	}

	indices := make([]uint32, 0, len(face.Triangles)*3)
	for _, t := range face.Triangles {
		indices = append(indices, t.V1, t.V2, t.V3)
	}

	attributes := map[string]uint32{
		"POSITION":   modeler.WritePosition(doc, positions),
		"NORMAL":     modeler.WriteNormal(doc, normals),
		"TEXCOORD_0": modeler.WriteTextureCoord(doc, uvs),
		"JOINTS_0":   modeler.WriteJoints(doc, joints),
		"WEIGHTS_0":  modeler.WriteWeights(doc, weights),
	}
	indicesAccessor := modeler.WriteIndices(doc, indices)

	p := &gltf.Primitive{
		Indices:    &indicesAccessor,
		Attributes: attributes,
	}
	if int(face.MaterialIdx) < len(doc.Materials) {
		p.Material = gltf.Index(face.MaterialIdx)
	}
	return p
}

// Write encodes m as glTF to w.
func Write(w io.Writer, m *model.Model, name string, opts Options) error {
	doc := Document(m, name, opts)
	if !opts.Binary {
		for _, b := range doc.Buffers {
			b.EmbeddedResource()
		}
	}

	enc := gltf.NewEncoder(w)
	enc.AsBinary = opts.Binary
	if err := enc.Encode(doc); err != nil {
		return errors.Wrapf(err, "encoding %s", name)
	}
	return nil
}

// WriteFile exports m to path. A .glb extension selects the binary container.
func WriteFile(path string, m *model.Model, boneBoxes bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	opts := Options{
		Binary:    strings.EqualFold(filepath.Ext(path), ".glb"),
		BoneBoxes: boneBoxes,
	}
	if err := Write(f, m, name, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// FileName returns the export file name for a model asset name.
func FileName(asset string, binary bool) string {
	base := strings.TrimSuffix(filepath.Base(filepath.FromSlash(asset)), filepath.Ext(asset))
	if binary {
		return fmt.Sprintf("%s.glb", base)
	}
	return fmt.Sprintf("%s.gltf", base)
}
