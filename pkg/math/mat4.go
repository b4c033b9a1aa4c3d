package math

import "math"

// Mat4 is a 4x4 matrix in column-major order (OpenGL compatible).
// Layout: [m0 m4 m8  m12]
//
//	[m1 m5 m9  m13]
//	[m2 m6 m10 m14]
//	[m3 m7 m11 m15]
type Mat4 [16]float32

// Identity returns an identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate returns a translation matrix.
func Translate(v Vec3) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = v.X, v.Y, v.Z
	return m
}

// Scale returns a scale matrix.
func Scale(x, y, z float32) Mat4 {
	m := Identity()
	m[0], m[5], m[10] = x, y, z
	return m
}

// RotateX returns a rotation matrix around the X axis.
// angle is in radians.
func RotateX(angle float32) Mat4 {
	c := float32(math.Cos(float64(angle)))
	s := float32(math.Sin(float64(angle)))

	return Mat4{
		1, 0, 0, 0,
		0, c, s, 0,
		0, -s, c, 0,
		0, 0, 0, 1,
	}
}

// RotateY returns a rotation matrix around the Y axis.
// angle is in radians.
func RotateY(angle float32) Mat4 {
	c := float32(math.Cos(float64(angle)))
	s := float32(math.Sin(float64(angle)))

	return Mat4{
		c, 0, -s, 0,
		0, 1, 0, 0,
		s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// Mul multiplies this matrix by another (m * other).
func (m Mat4) Mul(other Mat4) Mat4 {
	var result Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			result[col*4+row] =
				m[0*4+row]*other[col*4+0] +
					m[1*4+row]*other[col*4+1] +
					m[2*4+row]*other[col*4+2] +
					m[3*4+row]*other[col*4+3]
		}
	}
	return result
}

// TransformPoint transforms a point (w=1), dividing by w when the matrix is
// projective.
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	x := m[0]*p.X + m[4]*p.Y + m[8]*p.Z + m[12]
	y := m[1]*p.X + m[5]*p.Y + m[9]*p.Z + m[13]
	z := m[2]*p.X + m[6]*p.Y + m[10]*p.Z + m[14]
	w := m[3]*p.X + m[7]*p.Y + m[11]*p.Z + m[15]
	if w != 0 && w != 1 {
		return Vec3{x / w, y / w, z / w}
	}
	return Vec3{x, y, z}
}

// TransformDirection transforms a direction vector (ignores translation).
func (m Mat4) TransformDirection(d Vec3) Vec3 {
	return Vec3{
		m[0]*d.X + m[4]*d.Y + m[8]*d.Z,
		m[1]*d.X + m[5]*d.Y + m[9]*d.Z,
		m[2]*d.X + m[6]*d.Y + m[10]*d.Z,
	}
}

// Inverse returns the inverse of the matrix, or identity when it is
// singular. It expands along the 2x2 minors of the first and last pairs of
// columns.
func (m Mat4) Inverse() Mat4 {
	a00, a01, a02, a03 := m[0], m[1], m[2], m[3]
	a10, a11, a12, a13 := m[4], m[5], m[6], m[7]
	a20, a21, a22, a23 := m[8], m[9], m[10], m[11]
	a30, a31, a32, a33 := m[12], m[13], m[14], m[15]

	s0 := a00*a11 - a10*a01
	s1 := a00*a12 - a10*a02
	s2 := a00*a13 - a10*a03
	s3 := a01*a12 - a11*a02
	s4 := a01*a13 - a11*a03
	s5 := a02*a13 - a12*a03

	c0 := a20*a31 - a30*a21
	c1 := a20*a32 - a30*a22
	c2 := a20*a33 - a30*a23
	c3 := a21*a32 - a31*a22
	c4 := a21*a33 - a31*a23
	c5 := a22*a33 - a32*a23

	det := s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
	if det == 0 {
		return Identity()
	}
	k := 1 / det

	return Mat4{
		(a11*c5 - a12*c4 + a13*c3) * k,
		(-a01*c5 + a02*c4 - a03*c3) * k,
		(a31*s5 - a32*s4 + a33*s3) * k,
		(-a21*s5 + a22*s4 - a23*s3) * k,

		(-a10*c5 + a12*c2 - a13*c1) * k,
		(a00*c5 - a02*c2 + a03*c1) * k,
		(-a30*s5 + a32*s2 - a33*s1) * k,
		(a20*s5 - a22*s2 + a23*s1) * k,

		(a10*c4 - a11*c2 + a13*c0) * k,
		(-a00*c4 + a01*c2 - a03*c0) * k,
		(a30*s4 - a31*s2 + a33*s0) * k,
		(-a20*s4 + a21*s2 - a23*s0) * k,

		(-a10*c3 + a11*c1 - a12*c0) * k,
		(a00*c3 - a01*c1 + a02*c0) * k,
		(-a30*s3 + a31*s1 - a32*s0) * k,
		(a20*s3 - a21*s1 + a22*s0) * k,
	}
}
