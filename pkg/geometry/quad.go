package geometry

import (
	gomath "math"

	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

// Quad is a local width x height rectangle in the XY plane ([-HalfW,HalfW] x
// [-HalfH,HalfH], z=0) with outward normal +Z, transformed by ToWorld.
// Used for rectangular area lights and planar surfaces alike.
type Quad struct {
	shapeBase
	HalfW, HalfH float64
}

func NewQuad(toWorld rtmath.Transform, width, height float64, mat MaterialRef) *Quad {
	return &Quad{shapeBase: newShapeBase(toWorld, mat), HalfW: width / 2, HalfH: height / 2}
}

func (q *Quad) Bounds() Bounds3 {
	const eps = 1e-4
	return NewBounds3(
		rtmath.NewVec3(-q.HalfW, -q.HalfH, -eps),
		rtmath.NewVec3(q.HalfW, q.HalfH, eps),
	)
}

func (q *Quad) WorldBounds() Bounds3 { return worldBounds(q.ToWorld, q.Bounds()) }

func (q *Quad) Intersect(r rtmath.Ray, opts IntersectOpts, tMin, tMax float64) (*Hit, bool) {
	local := q.ToWorld.Inverse().Ray(r)
	if gomath.Abs(local.Direction.Z) < 1e-12 {
		return nil, false
	}
	t := -local.Origin.Z / local.Direction.Z
	if t <= tMin || t > tMax {
		return nil, false
	}
	p := local.At(t)
	if p.X < -q.HalfW || p.X > q.HalfW || p.Y < -q.HalfH || p.Y > q.HalfH {
		return nil, false
	}

	worldPoint := q.ToWorld.Point(p)
	worldNormalOut := q.ToWorld.Normal(rtmath.Vec3{Z: 1}).Normalize()
	worldNormal, front := faceForwardHit(worldNormalOut, r.Direction)

	u := (p.X + q.HalfW) / (2 * q.HalfW)
	v := (p.Y + q.HalfH) / (2 * q.HalfH)

	return &Hit{
		T:         t,
		Point:     worldPoint,
		Normal:    worldNormal,
		UV:        rtmath.NewVec2(u, v),
		FrontFace: front,
		Shape:     q,
		Material:  q.material,
	}, true
}

// Area returns the quad's world-space area as the product of the
// world-space lengths of its two edge vectors (exact whenever the
// transformed edges stay perpendicular; a shear is not accounted for).
func (q *Quad) Area() float64 {
	ex := q.ToWorld.Vector(rtmath.Vec3{X: 2 * q.HalfW}).Length()
	ey := q.ToWorld.Vector(rtmath.Vec3{Y: 2 * q.HalfH}).Length()
	return ex * ey
}
