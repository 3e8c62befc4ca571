package geometry

import (
	gomath "math"

	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

// Disk lies in the local XY plane (z=0) centered at the origin, with an
// optional InnerRadius for annular/spot apertures (a flat circular cap
// used for spotlights and caps).
type Disk struct {
	shapeBase
	Radius, InnerRadius float64
}

func NewDisk(toWorld rtmath.Transform, radius, innerRadius float64, mat MaterialRef) *Disk {
	return &Disk{shapeBase: newShapeBase(toWorld, mat), Radius: radius, InnerRadius: innerRadius}
}

func (d *Disk) Bounds() Bounds3 {
	const eps = 1e-4
	r := d.Radius
	return NewBounds3(rtmath.NewVec3(-r, -r, -eps), rtmath.NewVec3(r, r, eps))
}

func (d *Disk) WorldBounds() Bounds3 { return worldBounds(d.ToWorld, d.Bounds()) }

func (d *Disk) Intersect(r rtmath.Ray, opts IntersectOpts, tMin, tMax float64) (*Hit, bool) {
	local := d.ToWorld.Inverse().Ray(r)
	if gomath.Abs(local.Direction.Z) < 1e-12 {
		return nil, false
	}
	t := -local.Origin.Z / local.Direction.Z
	if t <= tMin || t > tMax {
		return nil, false
	}
	p := local.At(t)
	dist2 := p.X*p.X + p.Y*p.Y
	if dist2 > d.Radius*d.Radius || dist2 < d.InnerRadius*d.InnerRadius {
		return nil, false
	}

	worldPoint := d.ToWorld.Point(p)
	worldNormalOut := d.ToWorld.Normal(rtmath.Vec3{Z: 1}).Normalize()
	worldNormal, front := faceForwardHit(worldNormalOut, r.Direction)

	radial := gomath.Sqrt(dist2)
	phi := gomath.Atan2(p.Y, p.X)
	if phi < 0 {
		phi += 2 * gomath.Pi
	}
	uv := rtmath.NewVec2(phi/(2*gomath.Pi), 1-(radial-d.InnerRadius)/(d.Radius-d.InnerRadius))

	return &Hit{
		T:         t,
		Point:     worldPoint,
		Normal:    worldNormal,
		UV:        uv,
		FrontFace: front,
		Shape:     d,
		Material:  d.material,
	}, true
}
