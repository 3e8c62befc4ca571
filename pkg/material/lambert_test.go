package material

import (
	stdmath "math"
	"testing"

	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

func TestLambertSamplePDFMatchesReportedPDF(t *testing.T) {
	l := NewLambert(rtmath.NewVec3(0.5, 0.5, 0.5))
	rng := rtmath.NewPCG(1)
	omegaOut := rtmath.NewVec3(0, 1, 0)

	for i := 0; i < 64; i++ {
		omegaIn, _, pdf, _, ok := l.Sample(omegaOut, Transport{}, rng.Vec3Sample())
		if !ok {
			continue
		}
		if pdf <= 0 {
			t.Fatalf("sample %d: reported pdf %v, want > 0", i, pdf)
		}
		want := l.PDF(omegaIn, omegaOut)
		if stdmath.Abs(pdf-want) > 1e-9 {
			t.Errorf("sample %d: Sample's pdf=%v, PDF()=%v, should agree", i, pdf, want)
		}
	}
}

func TestLambertMonteCarloEstimateMatchesReflectance(t *testing.T) {
	refl := rtmath.NewVec3(0.8, 0.3, 0.1)
	l := NewLambert(refl)
	rng := rtmath.NewPCG(7)
	omegaOut := rtmath.NewVec3(0, 1, 0)

	const n = 20000
	sum := rtmath.Vec3{}
	for i := 0; i < n; i++ {
		omegaIn, mfNormal, pdf, transport, ok := l.Sample(omegaOut, Transport{}, rng.Vec3Sample())
		if !ok {
			continue
		}
		f := l.Evaluate(omegaIn, omegaOut, mfNormal, transport)
		cosTheta := omegaIn.Y
		sum = sum.Add(f.Multiply(cosTheta / pdf))
	}
	estimate := sum.Multiply(1.0 / n)

	if d := estimate.Subtract(refl).Length(); d > 0.02 {
		t.Errorf("Monte Carlo estimate %v too far from reflectance %v", estimate, refl)
	}
}

func TestLambertEmissionZeroWhenNotEmissive(t *testing.T) {
	l := NewLambert(rtmath.NewVec3(1, 1, 1))
	if l.IsEmissive() {
		t.Errorf("plain Lambert should not be emissive")
	}
	if !l.Emission().IsZero() {
		t.Errorf("Emission() = %v, want zero", l.Emission())
	}

	el := NewEmissiveLambert(rtmath.NewVec3(1, 1, 1), rtmath.NewVec3(2, 2, 2))
	if !el.IsEmissive() {
		t.Errorf("emissive Lambert should report IsEmissive")
	}
}
