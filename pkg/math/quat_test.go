package math

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
	if v := (Vec3{1, 2, 3}); q.Rotate(v) != v {
		t.Errorf("identity rotation changed %v", v)
	}
}

func TestQuatNormalize(t *testing.T) {
	n := Quat{X: 1, Y: 2, Z: 3, W: 4}.Normalize()

	length := float32(math.Sqrt(float64(n.X*n.X + n.Y*n.Y + n.Z*n.Z + n.W*n.W)))
	if math.Abs(float64(length-1.0)) > 0.0001 {
		t.Errorf("Normalized quaternion length should be 1, got %v", length)
	}
	if got := (Quat{}).Normalize(); got != QuatIdentity() {
		t.Errorf("zero quaternion should normalize to identity, got %v", got)
	}
}

func TestQuatRotateMatchesMathgl(t *testing.T) {
	tests := []struct {
		axis  Vec3
		angle float32
		v     Vec3
	}{
		{Vec3{0, 1, 0}, 90, Vec3{1, 0, 0}},
		{Vec3{1, 0, 0}, 45, Vec3{0, 1, 1}},
		{Vec3{0, 0, 1}, -120, Vec3{3, -2, 5}},
		{Vec3{1, 1, 0}.Normalize(), 33, Vec3{0.5, 7, -1}},
	}

	for _, tt := range tests {
		q := QuatFromAxisAngle(tt.axis, Radians(tt.angle))
		got := q.Rotate(tt.v)

		ref := mgl32.QuatRotate(Radians(tt.angle), mgl32.Vec3{tt.axis.X, tt.axis.Y, tt.axis.Z})
		r := ref.Rotate(mgl32.Vec3{tt.v.X, tt.v.Y, tt.v.Z})
		if !got.ApproxEqual(Vec3{r[0], r[1], r[2]}, 1e-4) {
			t.Errorf("Rotate(%v by %v about %v) = %v, want %v", tt.v, tt.angle, tt.axis, got, r)
		}
	}
}

func TestQuatInverseUndoesRotation(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{0, 0, 1}, Radians(70))
	v := Vec3{4, -1, 2}

	back := q.Inverse().Rotate(q.Rotate(v))
	if !back.ApproxEqual(v, 1e-4) {
		t.Errorf("inverse rotation: got %v, want %v", back, v)
	}
}

func TestQuatMulComposes(t *testing.T) {
	a := QuatFromAxisAngle(Vec3{0, 1, 0}, Radians(90))
	b := QuatFromAxisAngle(Vec3{1, 0, 0}, Radians(90))
	v := Vec3{0, 1, 0}

	got := a.Mul(b).Rotate(v)
	want := a.Rotate(b.Rotate(v))
	if !got.ApproxEqual(want, 1e-4) {
		t.Errorf("(a*b).Rotate = %v, want a.Rotate(b.Rotate) = %v", got, want)
	}
}
