package geometry

import (
	gomath "math"

	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

// Funnel is a capless right circular cone frustum along the local Y axis
// from y=0 (RadiusBottom) to y=Height (RadiusTop), used for tapered hair
// roots/tips and props.
type Funnel struct {
	shapeBase
	RadiusBottom, RadiusTop, Height float64
}

func NewFunnel(toWorld rtmath.Transform, radiusBottom, radiusTop, height float64, mat MaterialRef) *Funnel {
	return &Funnel{shapeBase: newShapeBase(toWorld, mat), RadiusBottom: radiusBottom, RadiusTop: radiusTop, Height: height}
}

func (f *Funnel) Bounds() Bounds3 {
	r := gomath.Max(f.RadiusBottom, f.RadiusTop)
	return NewBounds3(rtmath.NewVec3(-r, 0, -r), rtmath.NewVec3(r, f.Height, r))
}

func (f *Funnel) WorldBounds() Bounds3 { return worldBounds(f.ToWorld, f.Bounds()) }

// radiusAt linearly interpolates the cross-section radius along the axis.
func (f *Funnel) radiusAt(y float64) float64 {
	t := Clamp01(y / f.Height)
	return f.RadiusBottom + t*(f.RadiusTop-f.RadiusBottom)
}

// Clamp01 mirrors rtmath.Clamp01 for local use without importing it twice.
func Clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func (f *Funnel) Intersect(r rtmath.Ray, opts IntersectOpts, tMin, tMax float64) (*Hit, bool) {
	local := f.ToWorld.Inverse().Ray(r)

	k := (f.RadiusTop - f.RadiusBottom) / f.Height
	// Cone equation in local space: x^2+z^2 = (RadiusBottom + k*y)^2
	ox, oy, oz := local.Origin.X, local.Origin.Y, local.Origin.Z
	dx, dy, dz := local.Direction.X, local.Direction.Y, local.Direction.Z

	rb := f.RadiusBottom
	a := dx*dx + dz*dz - k*k*dy*dy
	b := 2*(ox*dx+oz*dz) - 2*k*dy*(rb+k*oy)
	c := ox*ox + oz*oz - (rb+k*oy)*(rb+k*oy)

	var candidates []float64
	if gomath.Abs(a) < 1e-12 {
		if gomath.Abs(b) > 1e-12 {
			candidates = []float64{-c / b}
		}
	} else {
		disc := b*b - 4*a*c
		if disc < 0 {
			return nil, false
		}
		sqrtD := gomath.Sqrt(disc)
		candidates = []float64{(-b - sqrtD) / (2 * a), (-b + sqrtD) / (2 * a)}
	}

	var hitT float64
	found := false
	for _, t := range candidates {
		if t <= tMin || t > tMax {
			continue
		}
		y := oy + t*dy
		if y < 0 || y > f.Height {
			continue
		}
		if !found || t < hitT {
			hitT = t
			found = true
		}
	}
	if !found {
		return nil, false
	}

	localPoint := local.At(hitT)
	radial := gomath.Hypot(localPoint.X, localPoint.Z)
	var localNormal rtmath.Vec3
	if radial < 1e-12 {
		localNormal = rtmath.Vec3{Y: 1}
	} else {
		nx, nz := localPoint.X/radial, localPoint.Z/radial
		localNormal = rtmath.NewVec3(nx, -k, nz).Normalize()
	}

	worldPoint := f.ToWorld.Point(localPoint)
	worldNormalOut := f.ToWorld.Normal(localNormal).Normalize()
	worldNormal, front := faceForwardHit(worldNormalOut, r.Direction)

	phi := gomath.Atan2(localPoint.Z, localPoint.X)
	if phi < 0 {
		phi += 2 * gomath.Pi
	}
	uv := rtmath.NewVec2(phi/(2*gomath.Pi), localPoint.Y/f.Height)

	return &Hit{
		T:         hitT,
		Point:     worldPoint,
		Normal:    worldNormal,
		Tangent:   f.ToWorld.Vector(rtmath.Vec3{Y: 1}).Normalize(),
		UV:        uv,
		FrontFace: front,
		Shape:     f,
		Material:  f.material,
	}, true
}
