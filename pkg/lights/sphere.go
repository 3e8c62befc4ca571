package lights

import (
	stdmath "math"

	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

// Sphere is a uniform-emission spherical area light of local radius
// Radius at the origin, transformed by ToWorld. Sampling uses the
// solid-angle cone the sphere subtends from the reference point rather
// than sampling its full surface uniformly, since the cone strategy has
// much lower variance for compact lights seen from far away.
type Sphere struct {
	ToWorld rtmath.Transform
	Color   rtmath.Vec3
	Radius  float64
}

func NewSphere(toWorld rtmath.Transform, color rtmath.Vec3, radius float64) *Sphere {
	return &Sphere{ToWorld: toWorld, Color: color, Radius: radius}
}

func (s *Sphere) center() rtmath.Vec3 { return s.ToWorld.Point(rtmath.Vec3{}) }

func (s *Sphere) worldRadius() float64 {
	return s.ToWorld.Vector(rtmath.Vec3{X: s.Radius}).Length()
}

func (s *Sphere) Sample(ref rtmath.Vec3, u rtmath.Vec2) (Sample, bool) {
	c := s.center()
	r := s.worldRadius()
	toCenter := c.Subtract(ref)
	dist2 := toCenter.LengthSquared()
	if dist2 <= r*r {
		// Reference point is inside the sphere; fall back to uniform
		// surface sampling, which remains well-defined in that case.
		dir := rtmath.UniformSampleSphere(u)
		point := c.Add(dir.Multiply(r))
		normal := dir
		wi := point.Subtract(ref)
		d2 := wi.LengthSquared()
		if d2 <= 0 {
			return Sample{}, false
		}
		d := stdmath.Sqrt(d2)
		wi = wi.Multiply(1 / d)
		cosLight := stdmath.Abs(wi.Dot(normal))
		if cosLight <= 1e-9 {
			return Sample{}, false
		}
		area := 4 * stdmath.Pi * r * r
		pdf := d2 / (cosLight * area)
		return Sample{Point: point, Normal: normal, Color: s.Color, PDF: pdf}, true
	}

	dist := stdmath.Sqrt(dist2)
	sinThetaMax2 := (r * r) / dist2
	cosThetaMax := stdmath.Sqrt(stdmath.Max(0, 1-sinThetaMax2))

	cosTheta := 1 - u.X*(1-cosThetaMax)
	sinTheta2 := stdmath.Max(0, 1-cosTheta*cosTheta)
	phi := 2 * stdmath.Pi * u.Y

	dc := toCenter.Multiply(1 / dist)
	var helper rtmath.Vec3
	if stdmath.Abs(dc.X) > 0.9 {
		helper = rtmath.Vec3{Y: 1}
	} else {
		helper = rtmath.Vec3{X: 1}
	}
	tangentX := helper.Cross(dc).Normalize()
	tangentY := dc.Cross(tangentX)

	sinTheta := stdmath.Sqrt(sinTheta2)
	wi := tangentX.Multiply(sinTheta * stdmath.Cos(phi)).
		Add(tangentY.Multiply(sinTheta * stdmath.Sin(phi))).
		Add(dc.Multiply(cosTheta))

	// Project wi onto the sphere surface to get the sampled point.
	ds := dist*cosTheta - stdmath.Sqrt(stdmath.Max(0, r*r-dist2*sinTheta2))
	point := ref.Add(wi.Multiply(ds))
	normal := point.Subtract(c).Multiply(1 / r)

	pdf := 1 / (2 * stdmath.Pi * (1 - cosThetaMax))
	// Convert the cone's direction PDF to the same units PDF(ref,wi)
	// returns (solid angle about ref), which this already is.
	return Sample{Point: point, Normal: normal, Color: s.Color, PDF: pdf}, true
}

func (s *Sphere) PDF(ref, wi rtmath.Vec3) float64 {
	c := s.center()
	r := s.worldRadius()
	dist2 := c.Subtract(ref).LengthSquared()
	if dist2 <= r*r {
		return 0
	}
	sinThetaMax2 := (r * r) / dist2
	cosThetaMax := stdmath.Sqrt(stdmath.Max(0, 1-sinThetaMax2))
	return 1 / (2 * stdmath.Pi * (1 - cosThetaMax))
}
