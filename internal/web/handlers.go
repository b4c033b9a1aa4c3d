package web

import (
	"bytes"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/Faultbox/tlj-engine/internal/dump"
	"github.com/Faultbox/tlj-engine/internal/engine/actor"
	"github.com/Faultbox/tlj-engine/internal/engine/camera"
	"github.com/Faultbox/tlj-engine/internal/engine/model"
	"github.com/Faultbox/tlj-engine/internal/engine/picking"
	"github.com/Faultbox/tlj-engine/internal/export"
	"github.com/Faultbox/tlj-engine/pkg/math"
)

func modelName(r *http.Request) (string, error) {
	name, err := url.PathUnescape(mux.Vars(r)["name"])
	if err != nil {
		return "", errors.Wrapf(errBadRequest, "model name: %v", err)
	}
	return name, nil
}

func (s *Server) loadModel(r *http.Request) (string, *model.Model, error) {
	name, err := modelName(r)
	if err != nil {
		return "", nil, err
	}
	m, err := s.assets.LoadModel(name)
	return name, m, err
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.assets.Stats())
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	models := s.assets.ListModels()
	if models == nil {
		models = []string{}
	}
	s.writeJSON(w, models)
}

func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	name, m, err := s.loadModel(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, summarize(name, m))
}

func (s *Server) handleDump(w http.ResponseWriter, r *http.Request) {
	name, m, err := s.loadModel(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := dump.Model(&buf, name, m, r.URL.Query().Get("full") != ""); err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	s.writeResult(w, buf.Bytes())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	name, m, err := s.loadModel(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, m, name, export.Options{
		Binary:    true,
		BoneBoxes: r.URL.Query().Get("boxes") != "",
	}); err != nil {
		s.writeError(w, err)
		return
	}
	writeFileHeaders(w, "model/gltf-binary", export.FileName(name, true))
	s.writeResult(w, buf.Bytes())
}

// pickRequest is a world-space ray against a placed, optionally posed, model.
// With a camera the ray is cast through a screen point instead.
type pickRequest struct {
	Origin    [3]float32     `json:"origin"`
	Direction [3]float32     `json:"direction"`
	Camera    *cameraRequest `json:"camera,omitempty"`
	Position  [3]float32     `json:"position"`
	Facing    *float32       `json:"facing,omitempty"`
	Pose      []struct {
		Position [3]float32  `json:"position"`
		Rotation *[4]float32 `json:"rotation,omitempty"` // x, y, z, w
	} `json:"pose,omitempty"`
}

// cameraRequest is an orbit camera; angles are in degrees and the screen
// point in normalized device coordinates.
type cameraRequest struct {
	Center   [3]float32 `json:"center"`
	Distance float32    `json:"distance"`
	Pitch    float32    `json:"pitch"`
	Yaw      float32    `json:"yaw"`
	FOV      float32    `json:"fov,omitempty"`
	Aspect   float32    `json:"aspect,omitempty"`
	X        float32    `json:"x"`
	Y        float32    `json:"y"`
}

func (c *cameraRequest) ray() (picking.Ray, error) {
	if c.Distance <= 0 {
		return picking.Ray{}, errors.Wrap(errBadRequest, "camera distance must be positive")
	}
	cam := camera.NewOrbitCamera()
	cam.Center = vec3(c.Center)
	cam.Distance = c.Distance
	cam.Pitch = math.Radians(c.Pitch)
	cam.Yaw = math.Radians(c.Yaw)
	if c.FOV > 0 {
		cam.FOV = math.Radians(c.FOV)
	}
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	return cam.ScreenRay(c.X, c.Y, aspect), nil
}

func (req *pickRequest) ray() (picking.Ray, error) {
	if req.Camera != nil {
		return req.Camera.ray()
	}
	dir := vec3(req.Direction)
	if dir.Length() == 0 {
		return picking.Ray{}, errors.Wrap(errBadRequest, "direction must be nonzero")
	}
	return picking.NewRay(vec3(req.Origin), dir), nil
}

type pickResponse struct {
	Hit      bool    `json:"hit"`
	Bone     int     `json:"bone"`
	BoneName string  `json:"bone_name,omitempty"`
	Distance float32 `json:"distance"`
}

func vec3(a [3]float32) math.Vec3 {
	return math.Vec3{X: a[0], Y: a[1], Z: a[2]}
}

func (s *Server) handlePick(w http.ResponseWriter, r *http.Request) {
	name, err := modelName(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req pickRequest
	if err := readJSON(r.Body, &req); err != nil {
		s.writeError(w, err)
		return
	}
	ray, err := req.ray()
	if err != nil {
		s.writeError(w, err)
		return
	}

	// A private copy: posing writes into the bones
	m, err := s.assets.NewModel(name)
	if err != nil {
		s.writeError(w, err)
		return
	}

	facing := s.opts.DefaultFacing
	if req.Facing != nil {
		facing = *req.Facing
	}

	a := actor.New(name, m)
	a.SetPlacement(vec3(req.Position), facing)
	if len(req.Pose) > 0 {
		pose := make(model.StaticPose, len(req.Pose))
		for i, p := range req.Pose {
			pose[i].Position = vec3(p.Position)
			if p.Rotation != nil {
				q := p.Rotation
				pose[i].Rotation = math.Quat{X: q[0], Y: q[1], Z: q[2], W: q[3]}.Normalize()
			}
		}
		a.SetPose(pose)
	}

	resp := pickResponse{Hit: a.IntersectRay(ray), Bone: -1}
	if bone, dist, ok := a.PickBone(ray); ok {
		resp.Bone = bone
		resp.BoneName = m.Bones()[bone].Name
		resp.Distance = dist
	}
	s.writeJSON(w, resp)
}
