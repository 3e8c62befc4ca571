package material

import (
	stdmath "math"

	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

// Dipole is the direct-evaluation (non-walk) subsurface BSSRDF variant:
// it evaluates the classical dipole diffusion profile Rd(r) in closed
// form rather than random-walking through the medium.
type Dipole struct {
	base
	SigmaA, SigmaS, SigmaTPrime, SigmaTr, AlphaPrime rtmath.Vec3
	EtaI, EtaT                                       float64
	Fdr                                               float64
}

func NewDipole(reflectance, emittance, sigmaA, sigmaS rtmath.Vec3, etaI, etaT float64) *Dipole {
	sigmaTPrime := sigmaA.Add(sigmaS)
	sigmaTr := rtmath.NewVec3(
		stdmath.Sqrt(3*sigmaA.X*sigmaTPrime.X),
		stdmath.Sqrt(3*sigmaA.Y*sigmaTPrime.Y),
		stdmath.Sqrt(3*sigmaA.Z*sigmaTPrime.Z),
	)
	alphaPrime := sigmaS.DivideVec(sigmaTPrime)

	eta := etaT / etaI
	fdr := fresnelDiffuseReflectance(eta)

	return &Dipole{
		base:        base{Refl: reflectance, Emittance: emittance, DefaultTransport: SSSTransport},
		SigmaA:      sigmaA,
		SigmaS:      sigmaS,
		SigmaTPrime: sigmaTPrime,
		SigmaTr:     sigmaTr,
		AlphaPrime:  alphaPrime,
		EtaI:        etaI,
		EtaT:        etaT,
		Fdr:         fdr,
	}
}

// fresnelDiffuseReflectance approximates the hemispherically-averaged
// Fresnel reflectance Fdr for a relative IOR eta, the Egan-Hilgeman
// polynomial fit used throughout dipole-BSSRDF literature.
func fresnelDiffuseReflectance(eta float64) float64 {
	if eta < 1 {
		return -0.4399 + 0.7099/eta - 0.3319/(eta*eta) + 0.0636/(eta*eta*eta)
	}
	return -1.4399/(eta*eta) + 0.7099/eta + 0.6681 + 0.0636*eta
}

// rdChannel evaluates the classical dipole diffusion profile for a single
// spectral channel at radius r.
func rdChannel(r, sigmaTPrime, sigmaTr, alphaPrime, A float64) float64 {
	if sigmaTPrime <= 0 {
		return 0
	}
	zr := 1 / sigmaTPrime
	zv := zr * (1 + 4.0/3.0*A)
	dr := stdmath.Sqrt(r*r + zr*zr)
	dv := stdmath.Sqrt(r*r + zv*zv)

	term := func(z, d float64) float64 {
		return z * (sigmaTr*d + 1) * stdmath.Exp(-sigmaTr*d) / (d * d * d)
	}
	return alphaPrime / (4 * stdmath.Pi) * (term(zr, dr) + term(zv, dv))
}

// Rd evaluates the dipole diffusion profile at radius r across all three
// channels.
func (d *Dipole) Rd(r float64) rtmath.Vec3 {
	A := (1 + d.Fdr) / (1 - d.Fdr)
	return rtmath.NewVec3(
		rdChannel(r, d.SigmaTPrime.X, d.SigmaTr.X, d.AlphaPrime.X, A),
		rdChannel(r, d.SigmaTPrime.Y, d.SigmaTr.Y, d.AlphaPrime.Y, A),
		rdChannel(r, d.SigmaTPrime.Z, d.SigmaTr.Z, d.AlphaPrime.Z, A),
	)
}

// fresnelTransmittance is 1 minus the dielectric Fresnel reflectance at
// incidence cosine cosTheta, the entry/exit transmission factor Ft in Sd's
// definition.
func fresnelTransmittance(cosTheta, etaI, etaT float64) float64 {
	return 1 - fresnelDielectric(cosTheta, etaI, etaT)
}

// Sd evaluates the full dipole BSSRDF term at a fixed separation r,
// including the entry/exit Fresnel transmittance factors.
func (d *Dipole) Sd(cosIn, cosOut, r float64) rtmath.Vec3 {
	ftIn := fresnelTransmittance(cosIn, d.EtaI, d.EtaT)
	ftOut := fresnelTransmittance(cosOut, d.EtaI, d.EtaT)
	return d.Rd(r).Multiply(ftIn * ftOut / stdmath.Pi)
}

func (d *Dipole) Evaluate(omegaIn, omegaOut, mfNormal rtmath.Vec3, t Transport) rtmath.Vec3 {
	// mfNormal here carries the in-plane displacement between the exit and
	// entry points; its XZ length is the dipole separation r.
	r := stdmath.Hypot(mfNormal.X, mfNormal.Z)
	return d.Sd(omegaIn.AbsDot(normalY), omegaOut.AbsDot(normalY), r).MultiplyVec(d.Refl)
}

func (d *Dipole) Sample(omegaOut rtmath.Vec3, t Transport, u rtmath.Vec3) (rtmath.Vec3, rtmath.Vec3, float64, Transport, bool) {
	omegaIn := rtmath.CosineSampleHemisphere(rtmath.Vec2{X: u.X, Y: u.Y})
	if omegaIn.Y <= 0 {
		return rtmath.Vec3{}, rtmath.Vec3{}, 0, t, false
	}

	// Draw a surface offset from a standard-normal 2D Gaussian in the
	// tangent plane via Box-Muller, scaled by the dominant diffusion
	// length 1/sigma_tr, and stash it in the mf_normal slot.
	meanSigmaTr := d.SigmaTr.Average()
	scale := 1.0
	if meanSigmaTr > 0 {
		scale = 1 / meanSigmaTr
	}
	r := stdmath.Sqrt(-2 * stdmath.Log(stdmath.Max(1e-12, u.Z)))
	theta := 2 * stdmath.Pi * u.X
	displacement := rtmath.NewVec3(r*stdmath.Cos(theta)*scale, 0, r*stdmath.Sin(theta)*scale)

	pdf := omegaIn.Y / stdmath.Pi
	next := Transport{Type: SSSTransport, Medium: rtmath.Outside}
	return omegaIn, displacement, pdf, next, true
}
