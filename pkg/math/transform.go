package math

import stdmath "math"

// Transform pairs a matrix with its precomputed inverse, avoiding a
// re-inversion every time a ray or bounds needs mapping both ways.
type Transform struct {
	Mat    Matrix4
	MatInv Matrix4
}

// IdentityTransform is the do-nothing transform.
func IdentityTransform() Transform {
	return Transform{Mat: Identity4(), MatInv: Identity4()}
}

// NewTransform builds a Transform from a matrix, computing its inverse.
func NewTransform(m Matrix4) Transform {
	return Transform{Mat: m, MatInv: m.Inverse()}
}

// NewTransformWithInverse builds a Transform from a matrix and a
// known-correct inverse, skipping the (more expensive, less numerically
// stable) general inversion.
func NewTransformWithInverse(m, inv Matrix4) Transform {
	return Transform{Mat: m, MatInv: inv}
}

// Inverse swaps the matrix and its inverse -- O(1), no recomputation.
func (t Transform) Inverse() Transform {
	return Transform{Mat: t.MatInv, MatInv: t.Mat}
}

// Compose returns a transform equivalent to applying `t` first, then `o`
// (t.Compose(o) means: world = o(t(local))).
func (t Transform) Compose(o Transform) Transform {
	return Transform{Mat: o.Mat.Mul(t.Mat), MatInv: t.MatInv.Mul(o.MatInv)}
}

// HandSwapped reports whether this transform flips handedness (negative
// determinant upper-left 3x3), which matters for normal transformation.
func (t Transform) HandSwapped() bool {
	m := t.Mat.Value
	det := m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
	return det < 0
}

// Point applies the transform to a position (w=1).
func (t Transform) Point(p Vec3) Vec3 {
	r := t.Mat.MulVec4(Vec4FromVec3(p, 1))
	if r.W != 0 && r.W != 1 {
		return r.Vec3().Multiply(1 / r.W)
	}
	return r.Vec3()
}

// Vector applies the transform to a direction (w=0); translation has no effect.
func (t Transform) Vector(v Vec3) Vec3 {
	return t.Mat.MulVec4(Vec4FromVec3(v, 0)).Vec3()
}

// Normal transforms a surface normal using the inverse-transpose, the
// standard rule that keeps normals perpendicular to transformed surfaces
// under non-uniform scale.
func (t Transform) Normal(n Vec3) Vec3 {
	invT := t.MatInv.Transpose()
	return invT.MulVec4(Vec4FromVec3(n, 0)).Vec3()
}

// Ray transforms a ray's origin and direction, preserving TMax and Medium.
func (t Transform) Ray(r Ray) Ray {
	out := NewRay(t.Point(r.Origin), t.Vector(r.Direction))
	out.TMax = r.TMax
	out.Medium = r.Medium
	return out
}

// Translate builds a pure-translation transform.
func Translate(d Vec3) Transform {
	m := Identity4()
	m.Value[0][3] = d.X
	m.Value[1][3] = d.Y
	m.Value[2][3] = d.Z
	inv := Identity4()
	inv.Value[0][3] = -d.X
	inv.Value[1][3] = -d.Y
	inv.Value[2][3] = -d.Z
	return NewTransformWithInverse(m, inv)
}

// Scale builds a non-uniform scale transform.
func Scale(s Vec3) Transform {
	m := Identity4()
	m.Value[0][0] = s.X
	m.Value[1][1] = s.Y
	m.Value[2][2] = s.Z
	inv := Identity4()
	inv.Value[0][0] = 1 / s.X
	inv.Value[1][1] = 1 / s.Y
	inv.Value[2][2] = 1 / s.Z
	return NewTransformWithInverse(m, inv)
}

// Rotate builds a rotation transform of rad radians around axis, via the
// equivalent unit quaternion (keeps a single source of truth for rotation
// math instead of duplicating the Rodrigues formula here).
func Rotate(axis Vec3, rad float64) Transform {
	q := QuaternionFromAxisAngle(axis, rad)
	m := q.ToMatrix()
	return NewTransformWithInverse(m, m.Transpose())
}

// LookAt builds a camera-to-world transform placing the camera at eye,
// looking toward target, with worldUp establishing the up direction.
func LookAt(eye, target, worldUp Vec3) Transform {
	dir := target.Subtract(eye).Normalize()
	right := worldUp.Normalize().Cross(dir).Normalize()
	if right.IsZero() {
		right = Vec3{X: 1}
	}
	newUp := dir.Cross(right)

	m := Identity4()
	m.Value[0][0], m.Value[1][0], m.Value[2][0] = right.X, right.Y, right.Z
	m.Value[0][1], m.Value[1][1], m.Value[2][1] = newUp.X, newUp.Y, newUp.Z
	m.Value[0][2], m.Value[1][2], m.Value[2][2] = dir.X, dir.Y, dir.Z
	m.Value[0][3], m.Value[1][3], m.Value[2][3] = eye.X, eye.Y, eye.Z

	return NewTransform(m)
}

// Perspective builds the camera->NDC projection transform: a standard
// depth-remapping perspective projection parameterized by vertical FOV
// (degrees) and aspect ratio, mapping the view frustum to [-1,1]^2 x [0,1].
func Perspective(fovyDeg, aspect, near, far float64) Transform {
	invTan := 1.0 / stdmath.Tan(fovyDeg*stdmath.Pi/180.0/2.0)
	m := Matrix4{}
	m.Value[0][0] = invTan / aspect
	m.Value[1][1] = invTan
	m.Value[2][2] = far / (far - near)
	m.Value[2][3] = -far * near / (far - near)
	m.Value[3][2] = 1
	return NewTransform(m)
}

// Orthographic builds the camera->NDC projection for an orthographic camera:
// translate near to 0, then scale [0,far-near] to [0,1] depth. Transforms
// compose left-to-right (a.Compose(b) applies a then b).
func Orthographic(near, far float64) Transform {
	return Translate(Vec3{Z: -near}).Compose(Scale(Vec3{X: 1, Y: 1, Z: 1 / (far - near)}))
}

// NDCToRaster maps NDC coordinates in [-ndcRes/2, ndcRes/2] (x right, y up)
// to raster pixel coordinates [0,imgRes] (x right, y down, top-left
// origin): center to [0,ndcRes] with y flipped, normalize, then scale to
// pixel resolution.
func NDCToRaster(imgRes Vec2, ndcRes Vec2) Transform {
	flip := Scale(Vec3{X: 1, Y: -1, Z: 1})
	center := Translate(Vec3{X: ndcRes.X / 2, Y: ndcRes.Y / 2})
	normalize := Scale(Vec3{X: 1 / ndcRes.X, Y: 1 / ndcRes.Y, Z: 1})
	toRaster := Scale(Vec3{X: imgRes.X, Y: imgRes.Y, Z: 1})
	return flip.Compose(center).Compose(normalize).Compose(toRaster)
}
