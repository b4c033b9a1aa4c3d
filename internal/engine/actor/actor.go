// Package actor places skeletal models in the world and answers picking
// queries against them.
package actor

import (
	"sync"

	"github.com/Faultbox/tlj-engine/internal/engine/model"
	"github.com/Faultbox/tlj-engine/internal/engine/picking"
	"github.com/Faultbox/tlj-engine/pkg/math"
)

// Fixed axis corrections between model files and world space.
const (
	authoringTilt = 90  // Degrees about X
	facingOffset  = 270 // Facing 270 leaves the model unrotated about Y
)

// ModelMatrix returns the model-to-world transform for a model placed at pos
// and turned to facing degrees.
func ModelMatrix(pos math.Vec3, facing float32) math.Mat4 {
	return math.Translate(pos).
		Mul(math.RotateX(math.Radians(authoringTilt))).
		Mul(math.RotateY(math.Radians(facingOffset - facing))).
		Mul(math.Scale(1, 1, -1))
}

// Actor is a visible model with a world placement. The pose and the
// placement are guarded so that a render loop and input handlers may share
// one actor.
type Actor struct {
	Name string

	mu       sync.Mutex
	model    *model.Model
	position math.Vec3
	facing   float32
}

// New wraps m in an actor at the origin with facing 0.
func New(name string, m *model.Model) *Actor {
	return &Actor{Name: name, model: m}
}

// Model returns the actor's model.
func (a *Actor) Model() *model.Model {
	return a.model
}

// SetPlacement moves and turns the actor.
func (a *Actor) SetPlacement(pos math.Vec3, facing float32) {
	a.mu.Lock()
	a.position = pos
	a.facing = facing
	a.mu.Unlock()
}

// Placement returns the actor's position and facing.
func (a *Actor) Placement() (math.Vec3, float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.position, a.facing
}

// SetPose writes the current pose into the model's bones. A nil provider
// restores the rest pose.
func (a *Actor) SetPose(p model.PoseProvider) {
	a.mu.Lock()
	a.model.ApplyPose(p)
	a.mu.Unlock()
}

// WorldMatrix is ModelMatrix for the actor's current placement.
func (a *Actor) WorldMatrix() math.Mat4 {
	pos, facing := a.Placement()
	return ModelMatrix(pos, facing)
}

// IntersectRay reports whether a world-space ray hits any bone of the posed
// model.
func (a *Actor) IntersectRay(world picking.Ray) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.model.IntersectRay(a.toModel(world))
}

// PickBone returns the closest bone hit by a world-space ray. The world
// transform is rigid so dist is a world-space distance.
func (a *Actor) PickBone(world picking.Ray) (bone int, dist float32, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.model.PickBone(a.toModel(world))
}

func (a *Actor) toModel(world picking.Ray) picking.Ray {
	return world.Transform(ModelMatrix(a.position, a.facing).Inverse())
}
