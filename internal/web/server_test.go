package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Faultbox/tlj-engine/internal/assets"
	"github.com/Faultbox/tlj-engine/internal/engine/model"
	"github.com/Faultbox/tlj-engine/pkg/math"
	"github.com/Faultbox/tlj-engine/pkg/xarc"
)

// cubeModel has a root bone boxed at [-1,1] and a child boxed at [4,6] on X.
func cubeModel(t *testing.T) []byte {
	t.Helper()
	v := func(bone uint32, p math.Vec3) model.Vertex {
		return model.Vertex{Pos1: p, Pos2: p, Bone1: bone, Bone2: bone, BoneWeight: 1}
	}
	face := model.Face{
		Vertices: []model.Vertex{
			v(0, math.Vec3{X: -1, Y: -1, Z: -1}),
			v(0, math.Vec3{X: 1, Y: 1, Z: 1}),
			v(1, math.Vec3{X: 4, Y: -1, Z: -1}),
			v(1, math.Vec3{X: 6, Y: 1, Z: 1}),
		},
		Triangles: []model.Triangle{{V1: 0, V2: 1, V3: 2}, {V1: 1, V2: 2, V3: 3}},
	}
	m, err := model.NewBuilder().
		Material(model.Material{Name: "skin", Texture: "april.dds", R: 1, G: 1, B: 1}).
		Bone("pelvis", 1).
		Bone("arm").
		Mesh(model.Mesh{Name: "body", Faces: []model.Face{face}}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	var buf bytes.Buffer
	if err := model.Encode(&buf, m); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newTestServer(t *testing.T, logs *bytes.Buffer) http.Handler {
	t.Helper()
	var buf bytes.Buffer
	err := xarc.Write(&buf, []xarc.Member{
		{Name: "april.cir", Data: cubeModel(t)},
		{Name: "broken.cir", Data: []byte{1, 2, 3, 4}},
		{Name: "readme.txt", Data: []byte("hi")},
	})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "test.xarc")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	mgr := assets.NewManager(nil)
	if err := mgr.AddArchive(path); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(mgr.Close)

	opts := Options{}
	if logs != nil {
		opts.RequestLog = logs
	}
	return NewServer(mgr, nil, opts).Handler()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestModelsList(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(t, h, http.MethodGet, "/json/models", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var names []string
	if err := json.Unmarshal(rec.Body.Bytes(), &names); err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "april.cir" {
		t.Errorf("models = %v", names)
	}
}

func TestModelSummary(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(t, h, http.MethodGet, "/json/models/april.cir", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var s modelSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
		t.Fatal(err)
	}
	if s.Vertices != 4 || s.Triangles != 2 || len(s.Bones) != 2 {
		t.Errorf("summary = %+v", s)
	}
	if b := s.Bones[1]; b.Parent != 0 || b.Depth != 1 || b.Box.Min[0] != 4 || !b.Box.Valid {
		t.Errorf("arm = %+v", b)
	}
	if s.Materials[0].Texture != "april.dds" {
		t.Errorf("material = %+v", s.Materials[0])
	}
}

func TestErrorStatus(t *testing.T) {
	h := newTestServer(t, nil)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{"missing model", http.MethodGet, "/json/models/nobody.cir", "", http.StatusNotFound},
		{"broken model", http.MethodGet, "/json/models/broken.cir", "", http.StatusUnprocessableEntity},
		{"bad json", http.MethodPost, "/json/models/april.cir/pick", "{", http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/json/models/april.cir/pick", `{"bogus":1}`, http.StatusBadRequest},
		{"zero direction", http.MethodPost, "/json/models/april.cir/pick", `{"origin":[0,0,5]}`, http.StatusBadRequest},
		{"camera without distance", http.MethodPost, "/json/models/april.cir/pick", `{"camera":{"pitch":45}}`, http.StatusBadRequest},
		{"wrong method", http.MethodGet, "/json/models/april.cir/pick", "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.target, tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestPick(t *testing.T) {
	h := newTestServer(t, nil)

	tests := []struct {
		name     string
		body     string
		hit      bool
		bone     string
		distance float32
	}{
		{
			name: "straight down on the root",
			body: `{"origin":[0,0,10],"direction":[0,0,-1],"position":[0,0,0],"facing":270}`,
			hit:  true, bone: "pelvis", distance: 9,
		},
		{
			name: "arm at facing 270 lies along +X",
			body: `{"origin":[5,0,10],"direction":[0,0,-1],"facing":270}`,
			hit:  true, bone: "arm", distance: 9,
		},
		{
			name: "far away",
			body: `{"origin":[100,100,10],"direction":[0,0,-1],"facing":270}`,
		},
		{
			name: "posed root moved away",
			body: `{"origin":[0,0,10],"direction":[0,0,-1],"facing":270,
				"pose":[{"position":[50,0,0]},{"position":[50,0,0]}]}`,
		},
		{
			name: "camera looking down at the root",
			body: `{"camera":{"center":[0,0,0],"distance":10,"pitch":80,"yaw":0},"facing":270}`,
			hit:  true, bone: "pelvis",
		},
		{
			name: "camera looking past the model",
			body: `{"camera":{"center":[0,50,0],"distance":10,"pitch":80,"yaw":0},"facing":270}`,
		},
		{
			name: "actor moved under the ray",
			body: `{"origin":[30,0,10],"direction":[0,0,-1],"position":[30,0,0],"facing":270}`,
			hit:  true, bone: "pelvis", distance: 9,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/json/models/april.cir/pick", tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body)
			}
			var resp pickResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Hit != tt.hit || resp.BoneName != tt.bone {
				t.Errorf("pick = %+v, want hit %v bone %q", resp, tt.hit, tt.bone)
			}
			if tt.hit && tt.distance > 0 && (resp.Distance < tt.distance-0.01 || resp.Distance > tt.distance+0.01) {
				t.Errorf("distance = %v, want %v", resp.Distance, tt.distance)
			}
			if !tt.hit && resp.Bone != -1 {
				t.Errorf("bone = %d on a miss", resp.Bone)
			}
		})
	}

	// Posing a request must not leak into the shared model
	rec := do(t, h, http.MethodGet, "/json/models/april.cir", "")
	if !strings.Contains(rec.Body.String(), `"name":"pelvis"`) {
		t.Errorf("summary after pick: %s", rec.Body)
	}
}

func TestDumpAndExport(t *testing.T) {
	var logs bytes.Buffer
	h := newTestServer(t, &logs)

	rec := do(t, h, http.MethodGet, "/dump/models/april.cir", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "pelvis") {
		t.Errorf("dump = %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("dump content type = %q", ct)
	}

	rec = do(t, h, http.MethodGet, "/export/models/april.cir.glb", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d: %s", rec.Code, rec.Body)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("glTF")) {
		t.Error("export is not a glb")
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "april.glb") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	if !strings.Contains(logs.String(), "GET /export/models/april.cir.glb") {
		t.Errorf("request log missing export: %q", logs.String())
	}
}

func TestStats(t *testing.T) {
	h := newTestServer(t, nil)
	do(t, h, http.MethodGet, "/json/models/april.cir", "")

	rec := do(t, h, http.MethodGet, "/json/stats", "")
	var st assets.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatal(err)
	}
	if st.Archives != 1 || st.Models != 1 {
		t.Errorf("stats = %+v", st)
	}
}

func TestListenAndServeAddressInUse(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	srv := NewServer(assets.NewManager(nil), nil, Options{})
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe(context.Background(), l.Addr().String())
	}()

	select {
	case err := <-errc:
		if err == nil {
			t.Error("expected an error for an address in use")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("ListenAndServe did not return after failing to listen")
	}
}
