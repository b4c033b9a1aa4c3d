package model

import (
	"bytes"
	"encoding/binary"

	"github.com/Faultbox/tlj-engine/pkg/math"
)

// assetWriter writes raw model bytes field by field so tests can produce
// malformed files the encoder never would.
type assetWriter struct {
	bytes.Buffer
}

func (w *assetWriter) u32(v uint32) *assetWriter {
	binary.Write(&w.Buffer, binary.LittleEndian, v)
	return w
}

func (w *assetWriter) f32(v float32) *assetWriter {
	binary.Write(&w.Buffer, binary.LittleEndian, v)
	return w
}

func (w *assetWriter) vec(v math.Vec3) *assetWriter {
	return w.f32(v.X).f32(v.Y).f32(v.Z)
}

func (w *assetWriter) str(s string) *assetWriter {
	binary.Write(&w.Buffer, binary.LittleEndian, uint16(len(s)))
	w.WriteString(s)
	return w
}

type testBone struct {
	name     string
	children []uint32
}

type testVertex struct {
	pos1, pos2   math.Vec3
	bone1, bone2 uint32
	weight       float32
}

type testAsset struct {
	magic    uint32
	format   uint32
	extra    uint32
	magic2   uint32
	reserved uint32
	matIdx   uint32
	bones    []testBone
	verts    []testVertex
	tris     [][3]uint32
}

func newTestAsset() *testAsset {
	return &testAsset{
		magic:  Magic,
		format: FormatCompact,
		magic2: Magic2,
		bones:  []testBone{{name: "root"}},
	}
}

// bytes serializes the asset: one material, the bones, and one mesh with a
// single face holding every vertex.
func (a *testAsset) bytes() []byte {
	w := &assetWriter{}
	w.u32(a.magic).u32(a.format)
	if a.format == FormatExtended {
		w.u32(a.extra)
	}
	w.u32(a.magic2).f32(0.5)

	w.u32(1)
	w.str("skin").u32(7).str("april_skin.dds").f32(1).f32(0.5).f32(0.25)

	w.u32(a.reserved)

	w.u32(uint32(len(a.bones)))
	for _, b := range a.bones {
		w.str(b.name).f32(1)
		w.u32(uint32(len(b.children)))
		for _, c := range b.children {
			w.u32(c)
		}
	}

	w.u32(1)
	w.str("body").u32(1)
	w.u32(a.matIdx).u32(uint32(len(a.verts)))
	for _, v := range a.verts {
		w.vec(v.pos1).vec(v.pos2).vec(math.Vec3{Y: 1})
		w.f32(0.1).f32(0.9)
		w.u32(v.bone1).u32(v.bone2).f32(v.weight)
	}
	w.u32(uint32(len(a.tris)))
	for _, t := range a.tris {
		w.u32(t[0]).u32(t[1]).u32(t[2])
	}
	return w.Bytes()
}

// unitCube is a single-bone asset whose box spans [-1,1] on every axis.
func unitCube() *testAsset {
	a := newTestAsset()
	a.verts = []testVertex{
		{pos1: math.Vec3{X: -1, Y: -1, Z: -1}, pos2: math.Vec3{X: -1, Y: -1, Z: -1}, weight: 1},
		{pos1: math.Vec3{X: 1, Y: 1, Z: 1}, pos2: math.Vec3{X: 1, Y: 1, Z: 1}, weight: 1},
		{pos1: math.Vec3{X: 1, Y: -1, Z: 1}, pos2: math.Vec3{X: 1, Y: -1, Z: 1}, weight: 1},
	}
	a.tris = [][3]uint32{{0, 1, 2}}
	return a
}
