package geometry

import (
	gomath "math"

	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

// CubicBezierCurve is a tapered-radius hair/fiber strand defined by four
// local-space control points. Catmull-Rom control polylines (the usual
// strand input format) convert to this basis via CatmullRomToBezier
// before construction.
//
// Intersection approximates the curve as a chain of capsule (swept-sphere)
// segments along a fixed subdivision of the parametric domain, a simpler
// alternative to PBRT's recursive curve-refinement test.
type CubicBezierCurve struct {
	shapeBase
	P0, P1, P2, P3     rtmath.Vec3
	RadiusStart, RadiusEnd float64
	Segments           int
}

func NewCubicBezierCurve(toWorld rtmath.Transform, p0, p1, p2, p3 rtmath.Vec3, radiusStart, radiusEnd float64, mat MaterialRef) *CubicBezierCurve {
	return &CubicBezierCurve{
		shapeBase:   newShapeBase(toWorld, mat),
		P0: p0, P1: p1, P2: p2, P3: p3,
		RadiusStart: radiusStart, RadiusEnd: radiusEnd,
		Segments: 8,
	}
}

// CatmullRomToBezier converts four consecutive Catmull-Rom control points
// (p_{i-1}, p_i, p_{i+1}, p_{i+2}) to the four Bezier control points for
// the segment between p_i and p_{i+1}, the standard 1/6-tangent-scaled
// conversion used when importing strand polylines.
func CatmullRomToBezier(pPrev, p0, p1, pNext rtmath.Vec3) (b0, b1, b2, b3 rtmath.Vec3) {
	b0 = p0
	b1 = p0.Add(p1.Subtract(pPrev).Multiply(1.0 / 6.0))
	b2 = p1.Subtract(pNext.Subtract(p0).Multiply(1.0 / 6.0))
	b3 = p1
	return
}

func (c *CubicBezierCurve) eval(t float64) rtmath.Vec3 {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	d := 3 * u * t * t
	e := t * t * t
	return c.P0.Multiply(a).Add(c.P1.Multiply(b)).Add(c.P2.Multiply(d)).Add(c.P3.Multiply(e))
}

func (c *CubicBezierCurve) tangent(t float64) rtmath.Vec3 {
	u := 1 - t
	return c.P1.Subtract(c.P0).Multiply(3 * u * u).
		Add(c.P2.Subtract(c.P1).Multiply(6 * u * t)).
		Add(c.P3.Subtract(c.P2).Multiply(3 * t * t))
}

func (c *CubicBezierCurve) radiusAt(t float64) float64 {
	return c.RadiusStart + t*(c.RadiusEnd-c.RadiusStart)
}

func (c *CubicBezierCurve) Bounds() Bounds3 {
	maxR := gomath.Max(c.RadiusStart, c.RadiusEnd)
	pts := []rtmath.Vec3{c.P0, c.P1, c.P2, c.P3}
	b := NewBounds3FromPoints(pts...)
	return b.Expand(maxR)
}

func (c *CubicBezierCurve) WorldBounds() Bounds3 { return worldBounds(c.ToWorld, c.Bounds()) }

// Intersect walks each linear sub-segment of the subdivided curve, testing
// it as a capsule (a tube with spherical caps) of linearly-interpolated
// radius, and keeps the closest hit across all segments.
func (c *CubicBezierCurve) Intersect(r rtmath.Ray, opts IntersectOpts, tMin, tMax float64) (*Hit, bool) {
	local := c.ToWorld.Inverse().Ray(r)

	var best *Hit
	bestT := tMax
	n := c.Segments
	for i := 0; i < n; i++ {
		t0 := float64(i) / float64(n)
		t1 := float64(i+1) / float64(n)
		a := c.eval(t0)
		b := c.eval(t1)
		ra := c.radiusAt(t0)
		rb := c.radiusAt(t1)

		if hit, ok := intersectCapsule(local, a, b, ra, rb, tMin, bestT); ok {
			bestT = hit.t
			paramT := t0 + (t1-t0)*hit.along
			tangentLocal := c.tangent(paramT).Normalize()

			worldPoint := c.ToWorld.Point(hit.point)
			worldNormalOut := c.ToWorld.Normal(hit.normal).Normalize()
			worldNormal, front := faceForwardHit(worldNormalOut, r.Direction)

			best = &Hit{
				T:         hit.t,
				Point:     worldPoint,
				Normal:    worldNormal,
				Tangent:   c.ToWorld.Vector(tangentLocal).Normalize(),
				UV:        rtmath.NewVec2(paramT, 0),
				FrontFace: front,
				Shape:     c,
				Material:  c.material,
			}
		}
	}
	return best, best != nil
}

type capsuleHit struct {
	t      float64
	point  rtmath.Vec3
	normal rtmath.Vec3
	along  float64 // fraction along the segment axis, in [0,1]
}

// intersectCapsule finds the nearest intersection of a local-space ray
// with the capsule swept between centers a (radius ra) and b (radius rb),
// approximating a linearly-tapered cylinder by testing the (conservative)
// average-radius cylinder plus the two end spheres.
func intersectCapsule(r rtmath.Ray, a, b rtmath.Vec3, ra, rb float64, tMin, tMax float64) (capsuleHit, bool) {
	axis := b.Subtract(a)
	axisLen := axis.Length()
	if axisLen < 1e-12 {
		return capsuleHit{}, false
	}
	axisDir := axis.Multiply(1 / axisLen)
	avgR := (ra + rb) / 2

	oc := r.Origin.Subtract(a)
	dPerp := r.Direction.Subtract(axisDir.Multiply(r.Direction.Dot(axisDir)))
	ocPerp := oc.Subtract(axisDir.Multiply(oc.Dot(axisDir)))

	aq := dPerp.Dot(dPerp)
	found := false
	var bestT float64
	var bestPoint, bestNormal rtmath.Vec3
	var bestAlong float64

	if aq > 1e-12 {
		bq := 2 * dPerp.Dot(ocPerp)
		cq := ocPerp.Dot(ocPerp) - avgR*avgR
		disc := bq*bq - 4*aq*cq
		if disc >= 0 {
			sqrtD := gomath.Sqrt(disc)
			for _, t := range []float64{(-bq - sqrtD) / (2 * aq), (-bq + sqrtD) / (2 * aq)} {
				if t <= tMin || t > tMax {
					continue
				}
				p := r.At(t)
				along := p.Subtract(a).Dot(axisDir)
				if along < 0 || along > axisLen {
					continue
				}
				if !found || t < bestT {
					bestT = t
					found = true
					center := a.Add(axisDir.Multiply(along))
					bestNormal = p.Subtract(center).Normalize()
					bestPoint = p
					bestAlong = along / axisLen
				}
			}
		}
	}

	// End caps as spheres, to close the capsule.
	for _, cap := range []struct {
		center rtmath.Vec3
		radius float64
		along  float64
	}{{a, ra, 0}, {b, rb, 1}} {
		oc := r.Origin.Subtract(cap.center)
		aa := r.Direction.Dot(r.Direction)
		bb := 2 * oc.Dot(r.Direction)
		cc := oc.Dot(oc) - cap.radius*cap.radius
		disc := bb*bb - 4*aa*cc
		if disc < 0 {
			continue
		}
		sqrtD := gomath.Sqrt(disc)
		for _, t := range []float64{(-bb - sqrtD) / (2 * aa), (-bb + sqrtD) / (2 * aa)} {
			if t <= tMin || t > tMax {
				continue
			}
			p := r.At(t)
			// Only accept the cap hemisphere outside the cylinder's span.
			along := p.Subtract(a).Dot(axisDir) / axisLen
			if along > 0.001 && along < 0.999 {
				continue
			}
			if !found || t < bestT {
				bestT = t
				found = true
				bestNormal = p.Subtract(cap.center).Normalize()
				bestPoint = p
				bestAlong = cap.along
			}
		}
	}

	if !found {
		return capsuleHit{}, false
	}
	return capsuleHit{t: bestT, point: bestPoint, normal: bestNormal, along: bestAlong}, true
}
