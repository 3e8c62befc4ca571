package material

import (
	stdmath "math"

	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

// normalY is the tangent-frame shading normal, (0,1,0) by convention.
var normalY = rtmath.Vec3{Y: 1}

// GGX is the isotropic Trowbridge-Reitz microfacet model with Smith
// shadowing-masking, supporting both reflection and refraction through a
// dielectric interface.
type GGX struct {
	base
	Alpha, Alpha2  float64
	EtaI, EtaT     float64
}

func NewGGX(reflectance, transmittance rtmath.Vec3, roughness, etaI, etaT float64, transport TransportType) *GGX {
	alpha := roughness * roughness
	return &GGX{
		base:  base{Refl: reflectance, Refr: transmittance, DefaultTransport: transport},
		Alpha: alpha, Alpha2: alpha * alpha,
		EtaI: etaI, EtaT: etaT,
	}
}

func chiPlus(x float64) float64 {
	if x > 0 {
		return 1
	}
	return 0
}

// distribution evaluates D(m), the GGX normal distribution function
// relative to the shading normal n (assumed (0,1,0)).
func (g *GGX) distribution(m rtmath.Vec3) float64 {
	cosThetaM := m.Y
	if chiPlus(cosThetaM) == 0 {
		return 0
	}
	cos2 := cosThetaM * cosThetaM
	cos4 := cos2 * cos2
	tan2 := (1 - cos2) / cos2
	denom := stdmath.Pi * cos4 * (g.Alpha2 + tan2) * (g.Alpha2 + tan2)
	if denom <= 0 {
		return 0
	}
	return g.Alpha2 / denom
}

// geometry1 evaluates the Smith G1 shadowing term for a single direction.
func (g *GGX) geometry1(omega, m rtmath.Vec3) float64 {
	cosThetaO := omega.Y
	if chiPlus(omega.Dot(m)/cosThetaO) == 0 {
		return 0
	}
	if cosThetaO == 0 {
		return 0
	}
	cos2 := cosThetaO * cosThetaO
	tan2 := (1 - cos2) / cos2
	return 2 / (1 + stdmath.Sqrt(1+g.Alpha2*tan2))
}

func (g *GGX) geometry(omegaIn, omegaOut, m rtmath.Vec3) float64 {
	return g.geometry1(omegaIn, m) * g.geometry1(omegaOut, m)
}

// fresnelDielectric is the exact unpolarized Fresnel reflectance for a
// dielectric interface, used both for evaluation and the reflect/refract
// sampling decision.
func fresnelDielectric(cosThetaI, etaI, etaT float64) float64 {
	cosThetaI = rtmath.Clamp(cosThetaI, -1, 1)
	if cosThetaI < 0 {
		etaI, etaT = etaT, etaI
		cosThetaI = -cosThetaI
	}
	sin2ThetaI := stdmath.Max(0, 1-cosThetaI*cosThetaI)
	sin2ThetaT := (etaI / etaT) * (etaI / etaT) * sin2ThetaI
	if sin2ThetaT >= 1 {
		return 1 // total internal reflection
	}
	cosThetaT := stdmath.Sqrt(1 - sin2ThetaT)

	rParl := (etaT*cosThetaI - etaI*cosThetaT) / (etaT*cosThetaI + etaI*cosThetaT)
	rPerp := (etaI*cosThetaI - etaT*cosThetaT) / (etaI*cosThetaI + etaT*cosThetaT)
	return (rParl*rParl + rPerp*rPerp) / 2
}

func (g *GGX) Evaluate(omegaIn, omegaOut, mfNormal rtmath.Vec3, t Transport) rtmath.Vec3 {
	gTerm := g.geometry(omegaIn, omegaOut, mfNormal)
	if gTerm <= 0 {
		return rtmath.Vec3{}
	}
	inDotM := omegaIn.AbsDot(mfNormal)
	if inDotM <= 0 {
		return rtmath.Vec3{}
	}
	factor := rtmath.Clamp01(omegaIn.AbsDot(normalY) * mfNormal.AbsDot(normalY) / (inDotM * gTerm))

	var albedo rtmath.Vec3
	if t.Type == Reflect {
		albedo = g.Refl
	} else {
		albedo = g.Refr
	}

	cosIn := omegaIn.AbsDot(normalY)
	if cosIn <= 1e-7 {
		return rtmath.Vec3{}
	}
	return albedo.Multiply(factor / cosIn)
}

func (g *GGX) sampleMicrofacetNormal(u rtmath.Vec2) rtmath.Vec3 {
	thetaM := stdmath.Atan(g.Alpha * stdmath.Sqrt(u.X) / stdmath.Sqrt(stdmath.Max(1e-12, 1-u.X)))
	phiM := 2 * stdmath.Pi * u.Y
	sinThetaM := stdmath.Sin(thetaM)
	return rtmath.NewVec3(sinThetaM*stdmath.Cos(phiM), stdmath.Cos(thetaM), sinThetaM*stdmath.Sin(phiM))
}

func (g *GGX) Sample(omegaOut rtmath.Vec3, t Transport, u rtmath.Vec3) (rtmath.Vec3, rtmath.Vec3, float64, Transport, bool) {
	m := g.sampleMicrofacetNormal(rtmath.Vec2{X: u.X, Y: u.Y})
	if omegaOut.Dot(m) < 0 {
		m = m.Negate()
	}

	refractive := IsRefractive(g.DefaultTransport)
	var omegaIn rtmath.Vec3
	next := t

	if refractive {
		cosO := omegaOut.Dot(m)
		etaI, etaT := g.EtaI, g.EtaT
		if t.Medium == rtmath.Inside {
			etaI, etaT = etaT, etaI
		}
		fr := fresnelDielectric(cosO, etaI, etaT)

		if u.Z < fr {
			omegaIn = reflectAbout(omegaOut, m)
			next.Type = Reflect
		} else {
			refracted, tir := refractAbout(omegaOut, m, etaI, etaT)
			if tir {
				omegaIn = reflectAbout(omegaOut, m)
				next.Type = Reflect
			} else {
				omegaIn = refracted
				next.Type = Refract
				if t.Medium == rtmath.Outside {
					next.Medium = rtmath.Inside
				} else {
					next.Medium = rtmath.Outside
				}
			}
		}
	} else {
		omegaIn = reflectAbout(omegaOut, m)
		next.Type = Reflect
		if omegaIn.Y < 0 {
			omegaIn = rtmath.CosineSampleHemisphere(rtmath.Vec2{X: u.X, Y: u.Y})
		}
	}

	pdf := g.distribution(m) * m.AbsDot(normalY)
	denom := 4 * omegaOut.AbsDot(m)
	if denom > 1e-12 {
		pdf /= denom
	}
	if pdf <= 0 {
		return rtmath.Vec3{}, rtmath.Vec3{}, 0, t, false
	}
	return omegaIn, m, pdf, next, true
}

func reflectAbout(omega, m rtmath.Vec3) rtmath.Vec3 {
	return m.Multiply(2 * omega.Dot(m)).Subtract(omega)
}

// refractAbout applies Snell's law about microfacet normal m, returning
// the refracted direction and a total-internal-reflection flag.
func refractAbout(omega, m rtmath.Vec3, etaI, etaT float64) (rtmath.Vec3, bool) {
	cosI := omega.Dot(m)
	n := m
	eta := etaI / etaT
	if cosI < 0 {
		cosI = -cosI
		n = n.Negate()
		eta = etaT / etaI
	}
	sin2ThetaT := eta * eta * stdmath.Max(0, 1-cosI*cosI)
	if sin2ThetaT >= 1 {
		return rtmath.Vec3{}, true
	}
	cosThetaT := stdmath.Sqrt(1 - sin2ThetaT)
	dir := omega.Negate().Multiply(eta).Add(n.Multiply(eta*cosI - cosThetaT))
	return dir.Normalize(), false
}
