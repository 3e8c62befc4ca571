package math

import "math"

// Medium tags which side of a refractive boundary a ray is travelling
// through. Shapes orient their returned normal by the ray direction, not
// by this tag, so that it always points against the incoming ray.
type Medium uint8

const (
	Outside Medium = iota
	Inside
)

// Ray is a parametric ray: Origin + t*Direction, t in [0, TMax]. InvDir is
// precomputed per-component so the BVH slab test avoids repeated divides.
type Ray struct {
	Origin    Vec3
	Direction Vec3
	InvDir    Vec3
	TMax      float64
	Medium    Medium
}

// NewRay builds a ray with TMax=+Inf and precomputes InvDir.
func NewRay(origin, direction Vec3) Ray {
	return Ray{
		Origin:    origin,
		Direction: direction,
		InvDir:    direction.Inverse(),
		TMax:      math.Inf(1),
		Medium:    Outside,
	}
}

// NewRayTMax builds a ray with an explicit maximum parameter, used for
// shadow rays bounded by the distance to a light sample.
func NewRayTMax(origin, direction Vec3, tMax float64) Ray {
	r := NewRay(origin, direction)
	r.TMax = tMax
	return r
}

// At evaluates the ray at parameter t.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}

// WithMedium returns a copy of the ray tagged with the given medium.
func (r Ray) WithMedium(m Medium) Ray {
	r.Medium = m
	return r
}
