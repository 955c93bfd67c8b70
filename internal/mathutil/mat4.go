package mathutil

import "math"

// Mat4 is a 4×4 matrix stored row-major, applied to column vectors.
type Mat4 [16]float64

func Mat4Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mat4Mul returns a × b.
func Mat4Mul(a, b Mat4) Mat4 {
	var m Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m[r*4+c] = a[r*4+0]*b[0*4+c] + a[r*4+1]*b[1*4+c] +
				a[r*4+2]*b[2*4+c] + a[r*4+3]*b[3*4+c]
		}
	}
	return m
}

// MulPoint transforms a 3D point (w=1) by the 4×4 matrix, ignoring the projective row.
func (m Mat4) MulPoint(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2] + m[3],
		m[4]*v[0] + m[5]*v[1] + m[6]*v[2] + m[7],
		m[8]*v[0] + m[9]*v[1] + m[10]*v[2] + m[11],
	}
}

// MulPointW transforms a 3D point (w=1) and returns homogeneous clip coordinates.
func (m Mat4) MulPointW(v Vec3) (x, y, z, w float64) {
	x = m[0]*v[0] + m[1]*v[1] + m[2]*v[2] + m[3]
	y = m[4]*v[0] + m[5]*v[1] + m[6]*v[2] + m[7]
	z = m[8]*v[0] + m[9]*v[1] + m[10]*v[2] + m[11]
	w = m[12]*v[0] + m[13]*v[1] + m[14]*v[2] + m[15]
	return
}

// FromMat3Translation builds a 4×4 affine matrix from a 3×3 rotation and translation.
func FromMat3Translation(r Mat3, t Vec3) Mat4 {
	return Mat4{
		r[0], r[1], r[2], t[0],
		r[3], r[4], r[5], t[1],
		r[6], r[7], r[8], t[2],
		0, 0, 0, 1,
	}
}

// LookAt builds a right-handed view matrix for a camera at eye looking at target.
// When up is parallel to the view axis an orthogonal fallback up is used.
func LookAt(eye, target, up Vec3) Mat4 {
	f := target.Sub(eye).Normalize()
	s := f.Cross(up)
	if s.LenSq() < 1e-12 {
		alt := Vec3{0, 0, 1}
		if math.Abs(f[2]) > 0.9 {
			alt = Vec3{1, 0, 0}
		}
		s = f.Cross(alt)
	}
	s = s.Normalize()
	u := s.Cross(f)

	return Mat4{
		s[0], s[1], s[2], -s.Dot(eye),
		u[0], u[1], u[2], -u.Dot(eye),
		-f[0], -f[1], -f[2], f.Dot(eye),
		0, 0, 0, 1,
	}
}

// Perspective builds an OpenGL-style projection. fovY is the vertical field of view in degrees.
func Perspective(fovY, aspect, near, far float64) Mat4 {
	f := 1 / math.Tan(Deg2Rad(fovY)/2)
	nf := 1 / (near - far)
	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) * nf, 2 * far * near * nf,
		0, 0, -1, 0,
	}
}
