package geometry

import (
	gomath "math"

	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

// Tube is a finite, capless right circular cylinder of constant Radius
// running along the local Y axis from y=0 to y=Height (used for
// hair/fiber strand segments and props).
type Tube struct {
	shapeBase
	Radius, Height float64
}

func NewTube(toWorld rtmath.Transform, radius, height float64, mat MaterialRef) *Tube {
	return &Tube{shapeBase: newShapeBase(toWorld, mat), Radius: radius, Height: height}
}

func (tb *Tube) Bounds() Bounds3 {
	r := tb.Radius
	return NewBounds3(rtmath.NewVec3(-r, 0, -r), rtmath.NewVec3(r, tb.Height, r))
}

func (tb *Tube) WorldBounds() Bounds3 { return worldBounds(tb.ToWorld, tb.Bounds()) }

func (tb *Tube) Intersect(r rtmath.Ray, opts IntersectOpts, tMin, tMax float64) (*Hit, bool) {
	local := tb.ToWorld.Inverse().Ray(r)

	ox, oz := local.Origin.X, local.Origin.Z
	dx, dz := local.Direction.X, local.Direction.Z

	a := dx*dx + dz*dz
	if a < 1e-12 {
		return nil, false
	}
	b := 2 * (ox*dx + oz*dz)
	c := ox*ox + oz*oz - tb.Radius*tb.Radius
	disc := b*b - 4*a*c
	if disc < 0 {
		return nil, false
	}
	sqrtD := gomath.Sqrt(disc)

	t0 := (-b - sqrtD) / (2 * a)
	t1 := (-b + sqrtD) / (2 * a)

	var hitT float64
	found := false
	for _, t := range []float64{t0, t1} {
		if t <= tMin || t > tMax {
			continue
		}
		y := local.Origin.Y + t*local.Direction.Y
		if y < 0 || y > tb.Height {
			continue
		}
		hitT = t
		found = true
		break
	}
	if !found {
		return nil, false
	}

	localPoint := local.At(hitT)
	localNormal := rtmath.NewVec3(localPoint.X, 0, localPoint.Z).Multiply(1 / tb.Radius)

	worldPoint := tb.ToWorld.Point(localPoint)
	worldNormalOut := tb.ToWorld.Normal(localNormal).Normalize()
	worldNormal, front := faceForwardHit(worldNormalOut, r.Direction)

	phi := gomath.Atan2(localNormal.Z, localNormal.X)
	if phi < 0 {
		phi += 2 * gomath.Pi
	}
	uv := rtmath.NewVec2(phi/(2*gomath.Pi), localPoint.Y/tb.Height)

	return &Hit{
		T:         hitT,
		Point:     worldPoint,
		Normal:    worldNormal,
		Tangent:   tb.ToWorld.Vector(rtmath.Vec3{Y: 1}).Normalize(),
		UV:        uv,
		FrontFace: front,
		Shape:     tb,
		Material:  tb.material,
	}, true
}
