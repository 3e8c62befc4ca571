package material

import (
	stdmath "math"
	"testing"

	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

func TestGGXSampleConvergesToMirrorAtLowRoughness(t *testing.T) {
	g := NewGGX(rtmath.NewVec3(1, 1, 1), rtmath.Vec3{}, 0.001, 1, 1.5, Reflect)
	rng := rtmath.NewPCG(3)
	omegaOut := rtmath.NewVec3(0.3, 0.9, 0).Normalize()
	wantMirror := rtmath.NewVec3(-omegaOut.X, omegaOut.Y, -omegaOut.Z)

	for i := 0; i < 16; i++ {
		omegaIn, _, pdf, _, ok := g.Sample(omegaOut, Transport{Type: Reflect}, rng.Vec3Sample())
		if !ok || pdf <= 0 {
			continue
		}
		if d := omegaIn.Subtract(wantMirror).Length(); d > 0.05 {
			t.Errorf("near-zero roughness sample %v too far from mirror reflection %v", omegaIn, wantMirror)
		}
	}
}

func TestFresnelDielectricBounded(t *testing.T) {
	cases := []struct{ cosTheta, etaI, etaT float64 }{
		{1.0, 1.0, 1.5},
		{0.5, 1.0, 1.5},
		{0.1, 1.5, 1.0}, // near grazing, dense-to-sparse, can hit TIR
		{0.0, 1.5, 1.0},
	}
	for _, c := range cases {
		fr := fresnelDielectric(c.cosTheta, c.etaI, c.etaT)
		if fr < 0 || fr > 1 {
			t.Errorf("fresnelDielectric(%v,%v,%v) = %v, want in [0,1]", c.cosTheta, c.etaI, c.etaT, fr)
		}
	}
}

func TestFresnelDielectricTotalInternalReflection(t *testing.T) {
	// Dense-to-sparse at grazing incidence should hit total internal reflection.
	fr := fresnelDielectric(0.05, 1.5, 1.0)
	if stdmath.Abs(fr-1) > 1e-9 {
		t.Errorf("expected total internal reflection (fr=1), got %v", fr)
	}
}

func TestGGXDistributionPeaksAtNormal(t *testing.T) {
	g := NewGGX(rtmath.NewVec3(1, 1, 1), rtmath.Vec3{}, 0.3, 1, 1.5, Reflect)
	atNormal := g.distribution(rtmath.NewVec3(0, 1, 0))
	atGrazing := g.distribution(rtmath.NewVec3(0, 0.1, stdmath.Sqrt(1-0.01)))
	if atNormal <= atGrazing {
		t.Errorf("D(normal)=%v should exceed D(grazing)=%v for a moderately rough surface", atNormal, atGrazing)
	}
}
