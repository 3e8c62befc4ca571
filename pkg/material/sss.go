package material

import (
	stdmath "math"

	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

// SSS embeds GGX for the entry/exit surface bounce and adds the volumetric
// random-walk machinery: absorption/scattering coefficients, extinction
// and its inverse, the mean absorption probability, and a
// Henyey-Greenstein anisotropy parameter for the walk's scattering
// direction.
type SSS struct {
	GGX
	SigmaA, SigmaS, Sigma, InvSigma rtmath.Vec3
	G                               float64
	AbsorptionProb                  float64
}

func NewSSS(reflectance, transmittance rtmath.Vec3, roughness, etaI, etaT float64, sigmaA, sigmaS rtmath.Vec3, g float64) *SSS {
	sigma := sigmaA.Add(sigmaS)
	return &SSS{
		GGX:            *NewGGX(reflectance, transmittance, roughness, etaI, etaT, SSSTransport),
		SigmaA:         sigmaA,
		SigmaS:         sigmaS,
		Sigma:          sigma,
		InvSigma:       sigma.InverseSpectrum(),
		G:              g,
		AbsorptionProb: sigmaA.DivideVec(sigma).Average(),
	}
}

// Transmittance evaluates Beer-Lambert attenuation per channel over the
// given travel distance.
func (s *SSS) Transmittance(dist float64) rtmath.Vec3 {
	return s.Sigma.Multiply(-dist).Exp()
}

// Beta scales the path throughput after a random-walk step: inside the
// medium the step also carries the scattering coefficient SigmaS, while exiting
// applies transmittance alone.
func (s *SSS) Beta(inside bool, dist float64) rtmath.Vec3 {
	tr := s.Transmittance(dist)
	if inside {
		return tr.MultiplyVec(s.SigmaS)
	}
	return tr
}

// SampleDistance draws a free-flight distance by picking a spectral
// channel uniformly and sampling its exponential extinction distribution.
func (s *SSS) SampleDistance(u1, u2 float64) float64 {
	channels := [3]float64{s.Sigma.X, s.Sigma.Y, s.Sigma.Z}
	idx := int(u1 * 3)
	if idx > 2 {
		idx = 2
	}
	sigma := channels[idx]
	if sigma <= 0 {
		return stdmath.Inf(1)
	}
	return -stdmath.Log(stdmath.Max(1e-12, 1-u2)) / sigma
}

// PDF returns the mean density used to importance-weight a sampled
// distance.
func (s *SSS) PDF(density rtmath.Vec3) float64 {
	return density.Average()
}

// SampleHenyeyGreenstein draws a scattering direction relative to the
// incoming direction wi with anisotropy g, the standard analytic inverse-CDF
// construction.
func SampleHenyeyGreenstein(wi rtmath.Vec3, g float64, u rtmath.Vec2) rtmath.Vec3 {
	var cosTheta float64
	if stdmath.Abs(g) < 1e-3 {
		cosTheta = 1 - 2*u.X
	} else {
		sqr := (1 - g*g) / (1 + g - 2*g*u.X)
		cosTheta = (1 + g*g - sqr*sqr) / (2 * g)
	}
	sinTheta := stdmath.Sqrt(stdmath.Max(0, 1-cosTheta*cosTheta))
	phi := 2 * stdmath.Pi * u.Y

	frame := orthonormalBasis(wi)
	localDir := rtmath.NewVec3(sinTheta*stdmath.Cos(phi), cosTheta, sinTheta*stdmath.Sin(phi))
	return frame[0].Multiply(localDir.X).Add(wi.Multiply(localDir.Y)).Add(frame[1].Multiply(localDir.Z))
}

func orthonormalBasis(n rtmath.Vec3) [2]rtmath.Vec3 {
	var helper rtmath.Vec3
	if stdmath.Abs(n.X) > 0.9 {
		helper = rtmath.Vec3{Y: 1}
	} else {
		helper = rtmath.Vec3{X: 1}
	}
	t := helper.Cross(n).Normalize()
	b := n.Cross(t)
	return [2]rtmath.Vec3{t, b}
}
