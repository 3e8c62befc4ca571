package geometry

import (
	gomath "math"

	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

// DistanceFn is a signed-distance estimator in local space: negative
// inside, zero on the surface, positive outside.
type DistanceFn func(p rtmath.Vec3) float64

// DEShape sphere-traces an arbitrary DistanceFn. LocalBounds must enclose
// the whole distance field; tracing steps stop at opts.TraceMaxIters or
// once the estimate falls below opts.HitEpsilon.
type DEShape struct {
	shapeBase
	LocalBounds Bounds3
	Distance    DistanceFn
}

func NewDEShape(toWorld rtmath.Transform, bounds Bounds3, fn DistanceFn, mat MaterialRef) *DEShape {
	return &DEShape{shapeBase: newShapeBase(toWorld, mat), LocalBounds: bounds, Distance: fn}
}

func (d *DEShape) Bounds() Bounds3      { return d.LocalBounds }
func (d *DEShape) WorldBounds() Bounds3 { return worldBounds(d.ToWorld, d.LocalBounds) }

func (d *DEShape) Intersect(r rtmath.Ray, opts IntersectOpts, tMin, tMax float64) (*Hit, bool) {
	local := d.ToWorld.Inverse().Ray(r)

	if !d.LocalBounds.Hit(local, tMin, tMax) {
		return nil, false
	}

	t := tMin
	dirLen := local.Direction.Length()
	if dirLen < 1e-12 {
		return nil, false
	}
	unitDir := local.Direction.Multiply(1 / dirLen)

	for i := 0; i < opts.TraceMaxIters; i++ {
		p := local.Origin.Add(unitDir.Multiply(t))
		dist := d.Distance(p)
		if dist < opts.HitEpsilon {
			worldPoint := d.ToWorld.Point(p)
			localNormal := d.gradient(p, opts.NormalDelta)
			worldNormalOut := d.ToWorld.Normal(localNormal).Normalize()
			worldNormal, front := faceForwardHit(worldNormalOut, r.Direction)
			hitT := t / dirLen
			if hitT <= tMin || hitT > tMax {
				return nil, false
			}
			return &Hit{
				T:         hitT,
				Point:     worldPoint,
				Normal:    worldNormal,
				FrontFace: front,
				Shape:     d,
				Material:  d.material,
			}, true
		}
		t += dist
		if t > tMax*dirLen {
			return nil, false
		}
	}
	return nil, false
}

// gradient estimates the surface normal via a central-difference of the
// distance field, the standard technique for sphere-traced SDFs.
func (d *DEShape) gradient(p rtmath.Vec3, h float64) rtmath.Vec3 {
	dx := d.Distance(p.Add(rtmath.Vec3{X: h})) - d.Distance(p.Subtract(rtmath.Vec3{X: h}))
	dy := d.Distance(p.Add(rtmath.Vec3{Y: h})) - d.Distance(p.Subtract(rtmath.Vec3{Y: h}))
	dz := d.Distance(p.Add(rtmath.Vec3{Z: h})) - d.Distance(p.Subtract(rtmath.Vec3{Z: h}))
	return rtmath.NewVec3(dx, dy, dz).Normalize()
}

// DESphere is the signed-distance field of a sphere of radius r at the origin.
func DESphere(radius float64) DistanceFn {
	return func(p rtmath.Vec3) float64 { return p.Length() - radius }
}

// DEBox is the signed-distance field of an axis-aligned box with the given
// half-extents, centered at the origin.
func DEBox(halfExtent rtmath.Vec3) DistanceFn {
	return func(p rtmath.Vec3) float64 {
		qx := gomath.Abs(p.X) - halfExtent.X
		qy := gomath.Abs(p.Y) - halfExtent.Y
		qz := gomath.Abs(p.Z) - halfExtent.Z
		outside := rtmath.NewVec3(gomath.Max(qx, 0), gomath.Max(qy, 0), gomath.Max(qz, 0)).Length()
		inside := gomath.Min(gomath.Max(qx, gomath.Max(qy, qz)), 0)
		return outside + inside
	}
}

// DEQuad is the signed-distance field of a thin box approximating a finite
// planar quad lying in the local XY plane.
func DEQuad(halfWidth, halfHeight, thickness float64) DistanceFn {
	return DEBox(rtmath.NewVec3(halfWidth, halfHeight, thickness))
}

// DETriangle is the unsigned-distance field to a flat triangle, extruded to
// a thin slab along its normal so it behaves as a two-sided surface under
// sphere tracing.
func DETriangle(p0, p1, p2 rtmath.Vec3, thickness float64) DistanceFn {
	e0 := p1.Subtract(p0)
	e1 := p2.Subtract(p1)
	e2 := p0.Subtract(p2)
	n := e0.Cross(p2.Subtract(p0)).Normalize()

	return func(p rtmath.Vec3) float64 {
		planeDist := p.Subtract(p0).Dot(n)

		v0 := p.Subtract(p0)
		v1 := p.Subtract(p1)
		v2 := p.Subtract(p2)

		c0 := e0.Cross(v0).Dot(n)
		c1 := e1.Cross(v1).Dot(n)
		c2 := e2.Cross(v2).Dot(n)

		var inPlaneDist float64
		if c0 >= 0 && c1 >= 0 && c2 >= 0 {
			inPlaneDist = 0
		} else {
			d0 := pointSegmentDist(p, p0, p1)
			d1 := pointSegmentDist(p, p1, p2)
			d2 := pointSegmentDist(p, p2, p0)
			inPlaneDist = gomath.Min(d0, gomath.Min(d1, d2))
		}
		return gomath.Hypot(inPlaneDist, gomath.Max(gomath.Abs(planeDist)-thickness, 0))
	}
}

func pointSegmentDist(p, a, b rtmath.Vec3) float64 {
	ab := b.Subtract(a)
	t := Clamp01(p.Subtract(a).Dot(ab) / gomath.Max(ab.Dot(ab), 1e-12))
	closest := a.Add(ab.Multiply(t))
	return p.Subtract(closest).Length()
}

// DEInfSpheres tiles spheres of radius `radius` over a cubic lattice of
// period `cell`, wrapping each coordinate into [-cell/2, cell/2) before
// measuring from the cell center, so every sphere sits centered in its
// lattice cell.
func DEInfSpheres(radius, cell float64) DistanceFn {
	return func(p rtmath.Vec3) float64 {
		wrap := func(x float64) float64 {
			m := gomath.Mod(x+cell/2, cell)
			if m < 0 {
				m += cell
			}
			return m - cell/2
		}
		q := rtmath.NewVec3(wrap(p.X), wrap(p.Y), wrap(p.Z))
		return q.Length() - radius
	}
}

// DEMandelbulb is the distance estimate of the classic Mandelbulb fractal
// at the given power, iterated bailout-style up to maxIters.
func DEMandelbulb(power float64, maxIters int, bailout float64) DistanceFn {
	return func(pos rtmath.Vec3) float64 {
		z := pos
		dr := 1.0
		r := 0.0
		for i := 0; i < maxIters; i++ {
			r = z.Length()
			if r > bailout {
				break
			}
			theta := gomath.Acos(z.Z / r)
			phi := gomath.Atan2(z.Y, z.X)
			dr = gomath.Pow(r, power-1)*power*dr + 1.0

			zr := gomath.Pow(r, power)
			theta *= power
			phi *= power

			z = rtmath.NewVec3(
				gomath.Sin(theta)*gomath.Cos(phi),
				gomath.Sin(phi)*gomath.Sin(theta),
				gomath.Cos(theta),
			).Multiply(zr)
			z = z.Add(pos)
		}
		return 0.5 * gomath.Log(r) * r / dr
	}
}
