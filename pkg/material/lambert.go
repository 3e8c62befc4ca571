package material

import (
	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

// Lambert is a perfectly diffuse BRDF: evaluate returns the reflectance
// directly (the cosine factor is folded into the sampler's PDF).
type Lambert struct {
	base
}

func NewLambert(reflectance rtmath.Vec3) *Lambert {
	return &Lambert{base{Refl: reflectance, DefaultTransport: Reflect}}
}

func NewEmissiveLambert(reflectance, emittance rtmath.Vec3) *Lambert {
	return &Lambert{base{Refl: reflectance, Emittance: emittance, DefaultTransport: Reflect}}
}

func (l *Lambert) Evaluate(omegaIn, omegaOut, mfNormal rtmath.Vec3, t Transport) rtmath.Vec3 {
	return l.Refl
}

func (l *Lambert) Sample(omegaOut rtmath.Vec3, t Transport, u rtmath.Vec3) (rtmath.Vec3, rtmath.Vec3, float64, Transport, bool) {
	omegaIn := rtmath.CosineSampleHemisphere(rtmath.Vec2{X: u.X, Y: u.Y})
	pdf := omegaIn.Y
	if pdf <= 0 {
		return rtmath.Vec3{}, rtmath.Vec3{}, 0, t, false
	}
	next := Transport{Type: Reflect, Medium: rtmath.Outside}
	return omegaIn, rtmath.Vec3{Y: 1}, pdf, next, true
}

// PDF returns the Lambertian sampling density for a given incoming
// direction, the same cos(theta) value Sample reports, used by the
// integrator's MIS weighting against light sampling.
func (l *Lambert) PDF(omegaIn, omegaOut rtmath.Vec3) float64 {
	if omegaIn.Y <= 0 {
		return 0
	}
	return omegaIn.Y
}
