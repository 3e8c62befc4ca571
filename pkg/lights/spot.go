package lights

import (
	stdmath "math"

	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

// Spot is a delta-distribution point emitter with a directional cone
// falloff: full intensity inside CosFalloffStart, a quartic falloff out to
// CosTotalWidth, and darkness beyond it.
type Spot struct {
	Position        rtmath.Vec3
	Direction       rtmath.Vec3 // normalized, points from Position toward the target
	Color           rtmath.Vec3
	CosTotalWidth   float64
	CosFalloffStart float64
}

// NewSpot builds a Spot aimed from `from` to `to` with a total cone angle
// and an inner falloff-start angle, both in degrees measured from the
// cone's axis.
func NewSpot(from, to, color rtmath.Vec3, coneAngleDegrees, falloffStartDegrees float64) *Spot {
	direction := to.Subtract(from).Normalize()
	return &Spot{
		Position:        from,
		Direction:       direction,
		Color:           color,
		CosTotalWidth:   stdmath.Cos(coneAngleDegrees * stdmath.Pi / 180),
		CosFalloffStart: stdmath.Cos(falloffStartDegrees * stdmath.Pi / 180),
	}
}

// falloff returns the attenuation for a direction cosAngle from the cone
// axis: 1 inside the falloff-start angle, a smooth quartic ramp to 0 at
// the total cone width, and 0 beyond it.
func (s *Spot) falloff(cosAngle float64) float64 {
	if cosAngle < s.CosTotalWidth {
		return 0
	}
	if cosAngle >= s.CosFalloffStart {
		return 1
	}
	delta := (cosAngle - s.CosTotalWidth) / (s.CosFalloffStart - s.CosTotalWidth)
	return delta * delta * delta * delta
}

func (s *Spot) Sample(ref rtmath.Vec3, u rtmath.Vec2) (Sample, bool) {
	toRef := ref.Subtract(s.Position)
	d2 := toRef.LengthSquared()
	if d2 <= 0 {
		return Sample{}, false
	}
	lightToRef := toRef.Multiply(1 / stdmath.Sqrt(d2))
	attenuation := s.falloff(s.Direction.Dot(lightToRef))
	if attenuation <= 0 {
		return Sample{}, false
	}
	return Sample{
		Point:   s.Position,
		Normal:  rtmath.Vec3{},
		Color:   s.Color.Multiply(attenuation / d2),
		PDF:     1,
		IsDelta: true,
	}, true
}

// PDF is always zero, matching every other delta light: a cone can never
// be hit by chance via BxDF sampling.
func (s *Spot) PDF(ref, wi rtmath.Vec3) float64 { return 0 }
