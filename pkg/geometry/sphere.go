package geometry

import (
	gomath "math"

	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

// Sphere is a radius-scalable sphere centered at the local origin. Its
// local bounds span the full extent, {(-r,-r,-r),(+r,+r,+r)}.
type Sphere struct {
	shapeBase
	Radius float64
}

func NewSphere(toWorld rtmath.Transform, radius float64, mat MaterialRef) *Sphere {
	return &Sphere{shapeBase: newShapeBase(toWorld, mat), Radius: radius}
}

func (s *Sphere) Bounds() Bounds3 {
	r := s.Radius
	return NewBounds3(rtmath.NewVec3(-r, -r, -r), rtmath.NewVec3(r, r, r))
}

func (s *Sphere) WorldBounds() Bounds3 { return worldBounds(s.ToWorld, s.Bounds()) }

func (s *Sphere) Intersect(r rtmath.Ray, opts IntersectOpts, tMin, tMax float64) (*Hit, bool) {
	local := s.ToWorld.Inverse().Ray(r)

	oc := local.Origin
	a := local.Direction.Dot(local.Direction)
	halfB := oc.Dot(local.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius
	disc := halfB*halfB - a*c
	if disc < 0 {
		return nil, false
	}
	sqrtD := gomath.Sqrt(disc)

	root := (-halfB - sqrtD) / a
	if root <= tMin || root > tMax {
		root = (-halfB + sqrtD) / a
		if root <= tMin || root > tMax {
			return nil, false
		}
	}

	localPoint := local.At(root)
	localNormal := localPoint.Multiply(1 / s.Radius)

	worldPoint := s.ToWorld.Point(localPoint)
	worldNormalOut := s.ToWorld.Normal(localNormal).Normalize()
	worldNormal, front := faceForwardHit(worldNormalOut, r.Direction)

	theta := gomath.Acos(rtmath.Clamp(localNormal.Y, -1, 1))
	phi := gomath.Atan2(localNormal.Z, localNormal.X)
	if phi < 0 {
		phi += 2 * gomath.Pi
	}
	uv := rtmath.NewVec2(phi/(2*gomath.Pi), theta/gomath.Pi)

	return &Hit{
		T:         root,
		Point:     worldPoint,
		Normal:    worldNormal,
		UV:        uv,
		FrontFace: front,
		Shape:     s,
		Material:  s.material,
	}, true
}
