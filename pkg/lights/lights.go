// Package lights implements the emitter model: point, rectangular, and
// spherical light sources, each able to sample a direction from a shading
// point toward the emitter and to evaluate the solid-angle PDF of that
// sampling strategy, the two operations MIS needs to combine light
// sampling with BxDF sampling.
package lights

import (
	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

// Sample carries one direct-lighting candidate: the point sampled on the
// light, its emitted color, and the solid-angle PDF of having sampled that
// direction from the reference point. Delta lights set IsDelta and report
// a PDF of 1; the integrator uses their samples without MIS weighting.
type Sample struct {
	Point  rtmath.Vec3
	Normal rtmath.Vec3
	Color  rtmath.Vec3
	PDF    float64
	IsDelta bool
}

// Light is the tagged-variant contract every emitter implements.
type Light interface {
	// Sample draws a point on the light visible from ref, returning the
	// direct-lighting sample (position, color, solid-angle PDF).
	Sample(ref rtmath.Vec3, u rtmath.Vec2) (Sample, bool)
	// PDF evaluates the solid-angle density of sampling direction wi from
	// ref via this light's Sample strategy -- used to MIS-weight a path
	// that reached the light by BxDF sampling instead.
	PDF(ref, wi rtmath.Vec3) float64
}

// Sampler picks one light uniformly among a fixed set, the simplest
// unbiased multi-light strategy.
type Sampler struct {
	Lights []Light
}

func NewSampler(lights []Light) *Sampler { return &Sampler{Lights: lights} }

func (s *Sampler) Pick(u float64) (Light, float64) {
	if len(s.Lights) == 0 {
		return nil, 0
	}
	idx := int(u * float64(len(s.Lights)))
	if idx >= len(s.Lights) {
		idx = len(s.Lights) - 1
	}
	return s.Lights[idx], 1.0 / float64(len(s.Lights))
}

// SelectionPDF returns the probability this sampler would have picked the
// given light, needed to scale a per-light PDF into the sampler's PDF.
func (s *Sampler) SelectionPDF() float64 {
	if len(s.Lights) == 0 {
		return 0
	}
	return 1.0 / float64(len(s.Lights))
}
