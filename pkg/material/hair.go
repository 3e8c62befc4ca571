package material

import (
	stdmath "math"

	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

// Hair is a path-traced Marschner-style BCSDF: four lobes (R, TT, TRT, and
// a lumped "residual" catching TRRT and beyond), each the product of a
// longitudinal distribution M, an azimuthal distribution D, and an
// attenuation term A. Angles are measured in a local frame whose x-axis
// is the hair's long (tangent) axis.
type Hair struct {
	base
	EtaI, EtaT       float64
	BetaM, BetaN     float64
	Alpha            float64
	SigmaA           rtmath.Vec3
	variance         [4]float64
	azimuthalScale   float64
}

func NewHair(sigmaA rtmath.Vec3, betaM, betaN, alphaDeg, etaI, etaT float64) *Hair {
	v0 := stdmath.Pow(0.726*betaM+0.812*betaM*betaM+3.7*stdmath.Pow(betaM, 20), 2)
	variance := [4]float64{v0, v0 / 4, 4 * v0, 4 * v0}

	s := stdmath.Sqrt(stdmath.Pi/8) * (0.265*betaN + 1.194*betaN*betaN + 5.372*stdmath.Pow(betaN, 22))

	return &Hair{
		base:           base{DefaultTransport: HairTransport},
		EtaI:           etaI,
		EtaT:           etaT,
		BetaM:          betaM,
		BetaN:          betaN,
		Alpha:          alphaDeg * stdmath.Pi / 180,
		SigmaA:         sigmaA,
		variance:       variance,
		azimuthalScale: s,
	}
}

// SigmaAFromReflectance maps a desired visible reflectance R to the
// per-channel absorption coefficient via the Chiang mapping.
func SigmaAFromReflectance(reflectance rtmath.Vec3, betaN float64) rtmath.Vec3 {
	denom := 5.969 - 0.215*betaN + 2.532*betaN*betaN - 10.73*stdmath.Pow(betaN, 3) +
		5.574*stdmath.Pow(betaN, 4) + 0.245*stdmath.Pow(betaN, 5)
	channel := func(r float64) float64 {
		r = stdmath.Max(r, 1e-5)
		v := stdmath.Log(r) / denom
		return stdmath.Max(v*v, 1e-5)
	}
	return rtmath.NewVec3(channel(reflectance.X), channel(reflectance.Y), channel(reflectance.Z))
}

// logBesselI0 returns ln(I0(x)) for large x, via an asymptotic expansion
// that avoids overflow in the direct series.
func logBesselI0(x float64) float64 {
	return x + 0.5*(-stdmath.Log(2*stdmath.Pi)+stdmath.Log(1/x)+1/(8*x))
}

// besselI0 evaluates the modified Bessel function of the first kind,
// order 0, via its power series -- accurate for the x<=12 domain this
// BCSDF restricts it to before switching to the log-space fallback.
func besselI0(x float64) float64 {
	sum := 1.0
	term := 1.0
	halfX2 := (x / 2) * (x / 2)
	for k := 1; k < 30; k++ {
		term *= halfX2 / (float64(k) * float64(k))
		sum += term
		if term < sum*1e-12 {
			break
		}
	}
	return sum
}

// longitudinalM evaluates M_i(sinIn, cosIn, sinOut, cosOut; v).
func longitudinalM(sinIn, cosIn, sinOut, cosOut, v float64) float64 {
	invV := 1 / v
	cosTerm := cosIn * cosOut * invV
	exponent := -sinIn * sinOut * invV

	if cosTerm > 12 {
		logI0 := logBesselI0(cosTerm)
		logNorm := -stdmath.Log(2 * v * stdmath.Sinh(invV))
		return stdmath.Exp(logI0 + exponent + logNorm)
	}
	norm := invV / (2 * stdmath.Sinh(invV))
	return norm * stdmath.Exp(exponent) * besselI0(cosTerm)
}

// trimmedLogistic is the normalized logistic density used for the
// azimuthal term, trimmed to the finite domain [-pi,pi].
func trimmedLogistic(x, s float64) float64 {
	e := stdmath.Exp(-stdmath.Abs(x) / s)
	g := e / (s * (1 + e) * (1 + e))

	// Normalize over [-pi, pi]; the logistic's tails outside that range
	// are negligible for the beta_n values hair uses in practice.
	cdfAtPi := 1.0 / (1.0 + stdmath.Exp(-stdmath.Pi/s))
	cdfAtNegPi := 1.0 / (1.0 + stdmath.Exp(stdmath.Pi/s))
	norm := cdfAtPi - cdfAtNegPi
	if norm <= 0 {
		norm = 1
	}
	return g / norm
}

// demuxFloat de-interleaves one canonical sample into two roughly
// independent floats by splitting its bits into even/odd streams, so the
// longitudinal and azimuthal draws below don't reuse the same uniform.
func demuxFloat(f float64) (float64, float64) {
	v := uint64(f * (1 << 32))
	return float64(compact1By1(uint32(v))) / float64(1<<16), float64(compact1By1(uint32(v>>1))) / float64(1<<16)
}

func compact1By1(x uint32) uint32 {
	x &= 0x55555555
	x = (x ^ (x >> 1)) & 0x33333333
	x = (x ^ (x >> 2)) & 0x0f0f0f0f
	x = (x ^ (x >> 4)) & 0x00ff00ff
	x = (x ^ (x >> 8)) & 0x0000ffff
	return x
}

// phiLobe returns the net azimuthal deflection Phi(i, gammaO, gammaT).
func phiLobe(i int, gammaO, gammaT float64) float64 {
	return 2*float64(i)*gammaT - 2*gammaO + float64(i)*stdmath.Pi
}

// lobeAngles decomposes a local-frame direction (x=tangent axis) into its
// longitudinal sin/cos and azimuthal angle.
func lobeAngles(omega rtmath.Vec3) (sinTheta, cosTheta, phi float64) {
	sinTheta = rtmath.Clamp(omega.X, -1, 1)
	cosTheta = stdmath.Sqrt(stdmath.Max(0, 1-sinTheta*sinTheta))
	phi = stdmath.Atan2(omega.Z, omega.Y)
	return
}

// attenuations computes the four lobe attenuation spectra A_R, A_TT,
// A_TRT, A_residual given the entry offset h and the exit angle cosThetaO.
func (h *Hair) attenuations(hOffset, cosThetaO float64) [4]rtmath.Vec3 {
	etaPrime := stdmath.Sqrt(stdmath.Max(1e-9, h.EtaT*h.EtaT-(1-cosThetaO*cosThetaO))) / stdmath.Max(cosThetaO, 1e-6)

	gammaO := stdmath.Asin(rtmath.Clamp(hOffset, -1, 1))
	sinGammaT := rtmath.Clamp(hOffset/etaPrime, -1, 1)
	gammaT := stdmath.Asin(sinGammaT)

	f := fresnelDielectric(cosThetaO*stdmath.Cos(gammaO), 1, h.EtaT)
	one := rtmath.NewVec3(1, 1, 1)

	absorb := func(n float64) rtmath.Vec3 {
		return h.SigmaA.Multiply(-2 * n * stdmath.Cos(gammaT)).Exp()
	}
	T := absorb(1)

	aR := one.Multiply(f)
	aTT := one.Subtract(one.Multiply(f)).MultiplyVec(one.Subtract(one.Multiply(f))).MultiplyVec(T)
	aTRT := aTT.MultiplyVec(one.Multiply(f)).MultiplyVec(T)
	// Residual lobe sums the rest of the geometric series in fT.
	fT := T.Multiply(f)
	denom := one.Subtract(fT)
	aResidual := aTRT.MultiplyVec(fT).DivideVec(rtmath.NewVec3(
		stdmath.Max(denom.X, 1e-6), stdmath.Max(denom.Y, 1e-6), stdmath.Max(denom.Z, 1e-6),
	))

	return [4]rtmath.Vec3{aR, aTT, aTRT, aResidual}
}

func (h *Hair) lobeWeights(sinThetaI, cosThetaI, sinThetaO, cosThetaO, phi, hOffset float64) (bcsdf rtmath.Vec3, pdf float64, probs [4]float64) {
	gammaO := stdmath.Asin(rtmath.Clamp(hOffset, -1, 1))
	etaPrime := stdmath.Sqrt(stdmath.Max(1e-9, h.EtaT*h.EtaT-(1-cosThetaO*cosThetaO))) / stdmath.Max(cosThetaO, 1e-6)
	gammaT := stdmath.Asin(rtmath.Clamp(hOffset/etaPrime, -1, 1))

	tilts := [4]float64{-2 * h.Alpha, h.Alpha, 4 * h.Alpha, 0}
	attens := h.attenuations(hOffset, cosThetaO)

	var lum [4]float64
	lumSum := 0.0
	for i := 0; i < 4; i++ {
		lum[i] = attens[i].Luminance()
		lumSum += lum[i]
	}
	if lumSum <= 0 {
		lumSum = 1
	}

	bcsdf = rtmath.Vec3{}
	pdf = 0
	for i := 0; i < 4; i++ {
		tiltedSinO := stdmath.Sin(stdmath.Asin(rtmath.Clamp(sinThetaO, -1, 1)) + tilts[i])
		tiltedCosO := stdmath.Sqrt(stdmath.Max(0, 1-tiltedSinO*tiltedSinO))

		mi := longitudinalM(sinThetaI, cosThetaI, tiltedSinO, tiltedCosO, h.variance[i])

		var di float64
		if i < 3 {
			phiTarget := phiLobe(i, gammaO, gammaT)
			di = trimmedLogistic(phi-phiTarget, h.azimuthalScale)
		} else {
			di = 1 / (2 * stdmath.Pi)
		}

		probs[i] = lum[i] / lumSum
		bcsdf = bcsdf.Add(attens[i].Multiply(mi * di))
		pdf += mi * di * probs[i]
	}
	return
}

func (h *Hair) Evaluate(omegaIn, omegaOut, mfNormal rtmath.Vec3, t Transport) rtmath.Vec3 {
	sinIn, cosIn, phiIn := lobeAngles(omegaIn)
	sinOut, cosOut, phiOut := lobeAngles(omegaOut)
	hOffset := 2*mfNormal.Y - 1 // UV.v stashed in mf_normal.Y by the caller
	bcsdf, _, _ := h.lobeWeights(sinIn, cosIn, sinOut, cosOut, phiIn-phiOut, hOffset)
	return bcsdf
}

func (h *Hair) Sample(omegaOut rtmath.Vec3, t Transport, u rtmath.Vec3) (rtmath.Vec3, rtmath.Vec3, float64, Transport, bool) {
	hOffset := 2*u.Z - 1
	sinOut, cosOut, phiOut := lobeAngles(omegaOut)

	tilts := [4]float64{-2 * h.Alpha, h.Alpha, 4 * h.Alpha, 0}
	attens := h.attenuations(hOffset, cosOut)
	var lum [4]float64
	lumSum := 0.0
	for i := 0; i < 4; i++ {
		lum[i] = attens[i].Luminance()
		lumSum += lum[i]
	}
	if lumSum <= 0 {
		lumSum = 1
	}

	lobe := 3
	cum := 0.0
	pick := u.X
	for i := 0; i < 4; i++ {
		cum += lum[i] / lumSum
		if pick <= cum {
			lobe = i
			break
		}
	}

	dLong, dAzimuth := demuxFloat(u.Y)

	v := h.variance[lobe]
	sinhInvV := stdmath.Sinh(1 / v)
	uXi := v * stdmath.Log(stdmath.Exp(1/v)-2*dLong*sinhInvV)
	tiltedSinO := stdmath.Sin(stdmath.Asin(rtmath.Clamp(sinOut, -1, 1)) + tilts[lobe])
	cosThetaI := stdmath.Cos(uXi)
	sinThetaI := -stdmath.Sin(uXi)*stdmath.Sqrt(stdmath.Max(0, 1-tiltedSinO*tiltedSinO)) + cosThetaI*tiltedSinO
	sinThetaI = rtmath.Clamp(sinThetaI, -1, 1)
	cosThetaI = stdmath.Sqrt(stdmath.Max(0, 1-sinThetaI*sinThetaI))

	etaPrime := stdmath.Sqrt(stdmath.Max(1e-9, h.EtaT*h.EtaT-(1-cosOut*cosOut))) / stdmath.Max(cosOut, 1e-6)
	gammaO := stdmath.Asin(rtmath.Clamp(hOffset, -1, 1))
	gammaT := stdmath.Asin(rtmath.Clamp(hOffset/etaPrime, -1, 1))

	var phi float64
	if lobe < 3 {
		target := phiLobe(lobe, gammaO, gammaT)
		dx := h.azimuthalScale * stdmath.Log(dAzimuth/(1-dAzimuth))
		phi = target + dx
	} else {
		phi = 2 * stdmath.Pi * dAzimuth
	}
	phiIn := phiOut + phi

	omegaIn := rtmath.NewVec3(sinThetaI, cosThetaI*stdmath.Cos(phiIn), cosThetaI*stdmath.Sin(phiIn))

	bcsdf, pdf, _ := h.lobeWeights(sinThetaI, cosThetaI, sinOut, cosOut, phi, hOffset)
	if pdf <= 1e-9 {
		return rtmath.Vec3{}, rtmath.Vec3{}, 0, t, false
	}
	next := Transport{Type: HairTransport, Medium: t.Medium}
	mfNormal := rtmath.Vec3{Y: (hOffset + 1) / 2}
	_ = bcsdf
	return omegaIn, mfNormal, pdf, next, true
}
