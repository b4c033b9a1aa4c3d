package model

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/tlj-engine/pkg/formats"
	"github.com/Faultbox/tlj-engine/pkg/math"
)

func TestParse_Structure(t *testing.T) {
	a := unitCube()
	m, err := Parse(a.bytes())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(m.Materials()) != 1 {
		t.Fatalf("material count = %d, want 1", len(m.Materials()))
	}
	mat := m.Materials()[0]
	if mat.Name != "skin" || mat.Flags != 7 || mat.Texture != "april_skin.dds" {
		t.Errorf("material = %+v", mat)
	}
	if mat.R != 1 || mat.G != 0.5 || mat.B != 0.25 {
		t.Errorf("material color = (%v, %v, %v)", mat.R, mat.G, mat.B)
	}

	if len(m.Meshes()) != 1 || m.Meshes()[0].Name != "body" {
		t.Fatalf("meshes = %+v", m.Meshes())
	}
	face := m.Meshes()[0].Faces[0]
	if len(face.Vertices) != 3 || len(face.Triangles) != 1 {
		t.Errorf("face has %d vertices, %d triangles", len(face.Vertices), len(face.Triangles))
	}
	v := face.Vertices[1]
	if v.Pos1 != (math.Vec3{X: 1, Y: 1, Z: 1}) || v.Normal != (math.Vec3{Y: 1}) || v.TexS != 0.1 || v.TexT != 0.9 {
		t.Errorf("vertex = %+v", v)
	}

	if m.HeaderScalar() != 0.5 || m.HeaderExtra() != 0 {
		t.Errorf("header = (%v, %v)", m.HeaderExtra(), m.HeaderScalar())
	}
	if m.VertexCount() != 3 || m.TriangleCount() != 1 {
		t.Errorf("counts = %d vertices, %d triangles", m.VertexCount(), m.TriangleCount())
	}
}

func TestParse_LongNames(t *testing.T) {
	a := unitCube()
	long := "character_" + strings.Repeat("bone", 80)
	a.bones = []testBone{{name: "pelvis_root_bone"}, {name: long}}

	m, err := Parse(a.bytes())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := m.Materials()[0].Texture; got != "april_skin.dds" {
		t.Errorf("texture = %q", got)
	}
	if m.Bones()[0].Name != "pelvis_root_bone" || m.Bones()[1].Name != long {
		t.Errorf("bone names = %q, %q", m.Bones()[0].Name, m.Bones()[1].Name)
	}
}

func TestParse_ExtendedFormat(t *testing.T) {
	a := unitCube()
	a.format = FormatExtended
	a.extra = 99

	m, err := Parse(a.bytes())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if m.HeaderExtra() != 99 {
		t.Errorf("HeaderExtra = %d, want 99", m.HeaderExtra())
	}
}

func TestParse_FormatRejection(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*testAsset)
		wantErr error
	}{
		{"wrong magic", func(a *testAsset) { a.magic = 5 }, ErrInvalidMagic},
		{"wrong format code", func(a *testAsset) { a.format = 17 }, ErrUnknownFormat},
		{"wrong magic 2", func(a *testAsset) { a.magic2 = 0xCAFEBABE }, ErrInvalidMagic2},
		{"nonzero reserved", func(a *testAsset) { a.reserved = 1 }, ErrUnsupportedReserved},
		{"vertex bone out of range", func(a *testAsset) { a.verts[0].bone2 = 3 }, ErrBoneIndexOutOfRange},
		{"child out of range", func(a *testAsset) { a.bones[0].children = []uint32{4} }, ErrBoneIndexOutOfRange},
		{"material out of range", func(a *testAsset) { a.matIdx = 1 }, ErrMaterialIndexOutOfRange},
		{"triangle out of range", func(a *testAsset) { a.tris[0][2] = 3 }, ErrTriangleIndexOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := unitCube()
			tt.mutate(a)
			m, err := Parse(a.bytes())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got error %v, want %v", err, tt.wantErr)
			}
			if m != nil {
				t.Error("no model should be returned on failure")
			}
		})
	}
}

func TestParse_Truncated(t *testing.T) {
	data := unitCube().bytes()

	// Every proper prefix must fail, whichever field it cuts through
	for n := 0; n < len(data); n++ {
		m, err := Parse(data[:n])
		if err == nil || m != nil {
			t.Fatalf("prefix of %d/%d bytes: got model=%v err=%v", n, len(data), m != nil, err)
		}
		if !errors.Is(err, formats.ErrTruncated) {
			t.Fatalf("prefix of %d bytes: got %v, want ErrTruncated", n, err)
		}
	}
}

func TestParse_EmptyModel(t *testing.T) {
	w := &assetWriter{}
	w.u32(Magic).u32(FormatCompact).u32(Magic2).f32(0)
	w.u32(0) // materials
	w.u32(0) // reserved
	w.u32(0) // bones
	w.u32(0) // meshes

	m, err := Parse(w.Bytes())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(m.Bones()) != 0 || len(m.Meshes()) != 0 || len(m.Materials()) != 0 {
		t.Error("expected an empty model")
	}
}

func TestParse_Idempotent(t *testing.T) {
	a := newTestAsset()
	a.bones = []testBone{{name: "pelvis", children: []uint32{1, 2}}, {name: "leg"}, {name: "spine"}}
	a.verts = []testVertex{
		{pos1: math.Vec3{X: 1}, pos2: math.Vec3{X: 2}, bone1: 0, bone2: 1, weight: 0.3},
		{pos1: math.Vec3{Y: 4}, pos2: math.Vec3{Z: -3}, bone1: 2, bone2: 1, weight: 0.6},
	}
	data := a.bytes()

	m1, err1 := Parse(data)
	m2, err2 := Parse(data)
	if err1 != nil || err2 != nil {
		t.Fatalf("Parse failed: %v, %v", err1, err2)
	}

	if len(m1.Bones()) != len(m2.Bones()) || len(m1.Meshes()) != len(m2.Meshes()) ||
		len(m1.Materials()) != len(m2.Materials()) {
		t.Fatal("counts differ between loads")
	}
	for i := range m1.Bones() {
		if m1.Bones()[i].BoundingBox != m2.Bones()[i].BoundingBox {
			t.Errorf("bone %d box differs: %+v vs %+v", i, m1.Bones()[i].BoundingBox, m2.Bones()[i].BoundingBox)
		}
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "april.cir")
	if err := os.WriteFile(path, unitCube().bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if len(m.Bones()) != 1 {
		t.Errorf("bone count = %d, want 1", len(m.Bones()))
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.cir")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestVertexPosition(t *testing.T) {
	v := Vertex{Pos1: math.Vec3{X: 10}, Pos2: math.Vec3{X: 0}, BoneWeight: 0.25}
	if got := v.Position(); !got.ApproxEqual(math.Vec3{X: 2.5}, 1e-6) {
		t.Errorf("Position = %v, want (2.5,0,0)", got)
	}
}
