package web

import (
	"github.com/Faultbox/tlj-engine/internal/engine/model"
)

type boxSummary struct {
	Min   [3]float32 `json:"min"`
	Max   [3]float32 `json:"max"`
	Valid bool       `json:"valid"`
}

type boneSummary struct {
	Index    int        `json:"index"`
	Name     string     `json:"name"`
	Parent   int        `json:"parent"`
	Children []uint32   `json:"children"`
	Depth    int        `json:"depth"`
	Box      boxSummary `json:"box"`
}

type materialSummary struct {
	Name    string     `json:"name"`
	Flags   uint32     `json:"flags"`
	Texture string     `json:"texture"`
	Color   [3]float32 `json:"color"`
}

type meshSummary struct {
	Name      string `json:"name"`
	Faces     int    `json:"faces"`
	Vertices  int    `json:"vertices"`
	Triangles int    `json:"triangles"`
}

type modelSummary struct {
	Name      string            `json:"name"`
	Extra     uint32            `json:"extra"`
	Scalar    float32           `json:"scalar"`
	Vertices  int               `json:"vertices"`
	Triangles int               `json:"triangles"`
	Roots     []int             `json:"roots"`
	Materials []materialSummary `json:"materials"`
	Meshes    []meshSummary     `json:"meshes"`
	Bones     []boneSummary     `json:"bones"`
}

func summarize(name string, m *model.Model) modelSummary {
	s := modelSummary{
		Name:      name,
		Extra:     m.HeaderExtra(),
		Scalar:    m.HeaderScalar(),
		Vertices:  m.VertexCount(),
		Triangles: m.TriangleCount(),
		Roots:     m.Roots(),
		Materials: make([]materialSummary, 0, len(m.Materials())),
		Meshes:    make([]meshSummary, 0, len(m.Meshes())),
		Bones:     make([]boneSummary, 0, len(m.Bones())),
	}

	if s.Roots == nil {
		s.Roots = []int{}
	}

	for _, mat := range m.Materials() {
		s.Materials = append(s.Materials, materialSummary{
			Name:    mat.Name,
			Flags:   mat.Flags,
			Texture: mat.Texture,
			Color:   [3]float32{mat.R, mat.G, mat.B},
		})
	}

	for _, mesh := range m.Meshes() {
		ms := meshSummary{Name: mesh.Name, Faces: len(mesh.Faces)}
		for _, f := range mesh.Faces {
			ms.Vertices += len(f.Vertices)
			ms.Triangles += len(f.Triangles)
		}
		s.Meshes = append(s.Meshes, ms)
	}

	for i, b := range m.Bones() {
		children := b.Children
		if children == nil {
			children = []uint32{}
		}
		s.Bones = append(s.Bones, boneSummary{
			Index:    i,
			Name:     b.Name,
			Parent:   b.Parent,
			Children: children,
			Depth:    m.Depth(i),
			Box: boxSummary{
				Min:   b.BoundingBox.Min.Array(),
				Max:   b.BoundingBox.Max.Array(),
				Valid: b.BoundingBox.Valid,
			},
		})
	}
	return s
}
