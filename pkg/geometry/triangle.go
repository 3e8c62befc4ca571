package geometry

import (
	gomath "math"

	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

// Triangle stores its three vertices already in world space: a mesh's
// transform is baked into every vertex once at load time rather than
// carried per-triangle, since a mesh BVH traverses many triangles per ray
// and a per-hit local<->world round trip would dominate the cost.
type Triangle struct {
	P0, P1, P2 rtmath.Vec3
	N0, N1, N2 rtmath.Vec3 // per-vertex shading normals (Phong-interpolated)
	UV0, UV1, UV2 rtmath.Vec2
	material   MaterialRef
}

func NewTriangle(p0, p1, p2 rtmath.Vec3, mat MaterialRef) *Triangle {
	n := p1.Subtract(p0).Cross(p2.Subtract(p0)).Normalize()
	return &Triangle{
		P0: p0, P1: p1, P2: p2,
		N0: n, N1: n, N2: n,
		UV0: rtmath.NewVec2(0, 0), UV1: rtmath.NewVec2(1, 0), UV2: rtmath.NewVec2(0, 1),
		material: mat,
	}
}

// NewTriangleShaded attaches independent per-vertex normals and UVs, used
// when loading a mesh that carries its own shading-normal/UV data.
func NewTriangleShaded(p0, p1, p2, n0, n1, n2 rtmath.Vec3, uv0, uv1, uv2 rtmath.Vec2, mat MaterialRef) *Triangle {
	return &Triangle{P0: p0, P1: p1, P2: p2, N0: n0, N1: n1, N2: n2, UV0: uv0, UV1: uv1, UV2: uv2, material: mat}
}

func (tr *Triangle) Bounds() Bounds3       { return tr.WorldBounds() }
func (tr *Triangle) WorldBounds() Bounds3  { return NewBounds3FromPoints(tr.P0, tr.P1, tr.P2) }
func (tr *Triangle) Material() MaterialRef { return tr.material }

// Intersect implements the Möller-Trumbore ray-triangle test directly in
// world space.
func (tr *Triangle) Intersect(r rtmath.Ray, opts IntersectOpts, tMin, tMax float64) (*Hit, bool) {
	e1 := tr.P1.Subtract(tr.P0)
	e2 := tr.P2.Subtract(tr.P0)
	pvec := r.Direction.Cross(e2)
	det := e1.Dot(pvec)
	if gomath.Abs(det) < 1e-12 {
		return nil, false
	}
	invDet := 1 / det

	tvec := r.Origin.Subtract(tr.P0)
	u := tvec.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return nil, false
	}

	qvec := tvec.Cross(e1)
	v := r.Direction.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return nil, false
	}

	t := e2.Dot(qvec) * invDet
	if t <= tMin || t > tMax {
		return nil, false
	}

	w := 1 - u - v
	shadingNormal := tr.N0.Multiply(w).Add(tr.N1.Multiply(u)).Add(tr.N2.Multiply(v)).Normalize()
	uv := rtmath.Vec2{
		X: tr.UV0.X*w + tr.UV1.X*u + tr.UV2.X*v,
		Y: tr.UV0.Y*w + tr.UV1.Y*u + tr.UV2.Y*v,
	}
	worldNormal, front := faceForwardHit(shadingNormal, r.Direction)

	return &Hit{
		T:         t,
		Point:     r.At(t),
		Normal:    worldNormal,
		UV:        uv,
		FrontFace: front,
		Shape:     tr,
		Material:  tr.material,
	}, true
}
