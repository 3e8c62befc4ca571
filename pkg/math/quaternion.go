package math

import stdmath "math"

// Quaternion represents a rotation as a scalar part A and vector part V.
type Quaternion struct {
	A float64
	V Vec3
}

func NewQuaternion(a float64, v Vec3) Quaternion { return Quaternion{A: a, V: v} }

// QuaternionFromAxisAngle builds a unit quaternion rotating by rad radians
// around axis (which need not be normalized).
func QuaternionFromAxisAngle(axis Vec3, rad float64) Quaternion {
	axis = axis.Normalize()
	half := rad / 2
	s := stdmath.Sin(half)
	return Quaternion{A: stdmath.Cos(half), V: axis.Multiply(s)}
}

func (q Quaternion) Add(o Quaternion) Quaternion {
	return Quaternion{A: q.A + o.A, V: q.V.Add(o.V)}
}

func (q Quaternion) Subtract(o Quaternion) Quaternion {
	return Quaternion{A: q.A - o.A, V: q.V.Subtract(o.V)}
}

// Mul is the Hamilton product.
func (q Quaternion) Mul(o Quaternion) Quaternion {
	return Quaternion{
		A: q.A*o.A - q.V.Dot(o.V),
		V: o.V.Multiply(q.A).Add(q.V.Multiply(o.A)).Add(q.V.Cross(o.V)),
	}
}

func (q Quaternion) Scale(s float64) Quaternion {
	return Quaternion{A: q.A * s, V: q.V.Multiply(s)}
}

func (q Quaternion) SizeSquared() float64 {
	return q.A*q.A + q.V.Dot(q.V)
}

func (q Quaternion) Size() float64 { return stdmath.Sqrt(q.SizeSquared()) }

func (q Quaternion) Normalized() Quaternion {
	s := q.Size()
	if s == 0 {
		return Quaternion{A: 1}
	}
	return q.Scale(1 / s)
}

func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{A: q.A, V: q.V.Negate()}
}

// Inverse returns q^-1; for unit quaternions this equals the conjugate.
func (q Quaternion) Inverse() Quaternion {
	n2 := q.SizeSquared()
	if n2 == 0 {
		return Quaternion{A: 1}
	}
	return q.Conjugate().Scale(1 / n2)
}

// ToMatrix converts a (assumed-unit) quaternion to its equivalent rotation
// matrix embedded in a Matrix4. For unit q the result is orthogonal with
// determinant +1.
func (q Quaternion) ToMatrix() Matrix4 {
	x, y, z, w := q.V.X, q.V.Y, q.V.Z, q.A
	m := Identity4()
	m.Value[0][0] = 1 - 2*(y*y+z*z)
	m.Value[0][1] = 2 * (x*y - z*w)
	m.Value[0][2] = 2 * (x*z + y*w)

	m.Value[1][0] = 2 * (x*y + z*w)
	m.Value[1][1] = 1 - 2*(x*x+z*z)
	m.Value[1][2] = 2 * (y*z - x*w)

	m.Value[2][0] = 2 * (x*z - y*w)
	m.Value[2][1] = 2 * (y*z + x*w)
	m.Value[2][2] = 1 - 2*(x*x+y*y)

	return m
}
