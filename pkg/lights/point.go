package lights

import (
	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

// Point is a delta-distribution emitter at a single world position, with
// no surface to hit directly.
type Point struct {
	Position rtmath.Vec3
	Color    rtmath.Vec3
}

func NewPoint(position, color rtmath.Vec3) *Point {
	return &Point{Position: position, Color: color}
}

func (p *Point) Sample(ref rtmath.Vec3, u rtmath.Vec2) (Sample, bool) {
	d2 := p.Position.Subtract(ref).LengthSquared()
	if d2 <= 0 {
		return Sample{}, false
	}
	return Sample{
		Point:   p.Position,
		Normal:  rtmath.Vec3{},
		Color:   p.Color.Multiply(1 / d2),
		PDF:     1,
		IsDelta: true,
	}, true
}

// PDF is always zero: a delta light can never be hit by chance via BxDF
// sampling, so it contributes nothing to the MIS weight of that strategy.
func (p *Point) PDF(ref, wi rtmath.Vec3) float64 { return 0 }
