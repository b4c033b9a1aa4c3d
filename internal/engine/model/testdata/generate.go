//go:build ignore

// This program generates a sample model archive for manual testing of
// modeltool and modelserver.
// Run with: go run generate.go
package main

import (
	"bytes"
	"os"

	"github.com/Faultbox/tlj-engine/internal/engine/model"
	"github.com/Faultbox/tlj-engine/pkg/math"
	"github.com/Faultbox/tlj-engine/pkg/xarc"
)

func vertex(bone uint32, x, y, z float32) model.Vertex {
	p := math.Vec3{X: x, Y: y, Z: z}
	return model.Vertex{Pos1: p, Pos2: p, Bone1: bone, Bone2: bone, BoneWeight: 1, Normal: math.Vec3{Y: 1}}
}

// box returns the eight corners of an axis aligned box owned by one bone.
func box(bone uint32, lo, hi math.Vec3) model.Face {
	var f model.Face
	for i := 0; i < 8; i++ {
		x, y, z := lo.X, lo.Y, lo.Z
		if i&1 != 0 {
			x = hi.X
		}
		if i&2 != 0 {
			y = hi.Y
		}
		if i&4 != 0 {
			z = hi.Z
		}
		f.Vertices = append(f.Vertices, vertex(bone, x, y, z))
	}
	f.Triangles = []model.Triangle{
		{V1: 0, V2: 1, V3: 3}, {V1: 0, V2: 3, V3: 2},
		{V1: 4, V2: 6, V3: 7}, {V1: 4, V2: 7, V3: 5},
		{V1: 0, V2: 4, V3: 5}, {V1: 0, V2: 5, V3: 1},
		{V1: 2, V2: 3, V3: 7}, {V1: 2, V2: 7, V3: 6},
		{V1: 0, V2: 2, V3: 6}, {V1: 0, V2: 6, V3: 4},
		{V1: 1, V2: 5, V3: 7}, {V1: 1, V2: 7, V3: 3},
	}
	return f
}

func figure() *model.Model {
	m, err := model.NewBuilder().
		Material(model.Material{Name: "skin", Texture: "april_skin.dds", R: 1, G: 0.8, B: 0.7}).
		Bone("pelvis", 1, 2, 3).
		Bone("spine", 4).
		Bone("leg_l").
		Bone("leg_r").
		Bone("head").
		Mesh(model.Mesh{Name: "body", Faces: []model.Face{
			box(0, math.Vec3{X: -0.3, Y: 0.9, Z: -0.2}, math.Vec3{X: 0.3, Y: 1.1, Z: 0.2}),
			box(1, math.Vec3{X: -0.3, Y: 1.1, Z: -0.2}, math.Vec3{X: 0.3, Y: 1.6, Z: 0.2}),
			box(2, math.Vec3{X: -0.3, Y: 0, Z: -0.1}, math.Vec3{X: -0.05, Y: 0.9, Z: 0.1}),
			box(3, math.Vec3{X: 0.05, Y: 0, Z: -0.1}, math.Vec3{X: 0.3, Y: 0.9, Z: 0.1}),
			box(4, math.Vec3{X: -0.15, Y: 1.6, Z: -0.15}, math.Vec3{X: 0.15, Y: 1.9, Z: 0.15}),
		}}).
		Build()
	if err != nil {
		panic(err)
	}
	return m
}

func crate() *model.Model {
	m, err := model.NewBuilder().
		Header(0, 1).
		Material(model.Material{Name: "wood", Texture: "crate.dds", R: 1, G: 1, B: 1}).
		Bone("root").
		Mesh(model.Mesh{Name: "crate", Faces: []model.Face{
			box(0, math.Vec3{X: -0.5, Y: 0, Z: -0.5}, math.Vec3{X: 0.5, Y: 1, Z: 0.5}),
		}}).
		Build()
	if err != nil {
		panic(err)
	}
	return m
}

func encode(m *model.Model) []byte {
	var buf bytes.Buffer
	if err := model.Encode(&buf, m); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func main() {
	f, err := os.Create("sample.xarc")
	if err != nil {
		panic(err)
	}
	defer f.Close()

	err = xarc.Write(f, []xarc.Member{
		{Name: "data/models/april.cir", Data: encode(figure())},
		{Name: "data/models/crate.cir", Data: encode(crate())},
		{Name: "data/readme.txt", Data: []byte("sample model archive\n")},
	})
	if err != nil {
		panic(err)
	}
}
