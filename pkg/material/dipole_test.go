package material

import (
	stdmath "math"
	"testing"

	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

func TestDipoleRdDecaysWithRadius(t *testing.T) {
	d := NewDipole(rtmath.NewVec3(1, 1, 1), rtmath.Vec3{}, rtmath.NewVec3(0.02, 0.03, 0.04), rtmath.NewVec3(2, 2.5, 3), 1, 1.3)
	near := d.Rd(0.01)
	far := d.Rd(1.0)
	if near.X <= far.X || near.Y <= far.Y || near.Z <= far.Z {
		t.Errorf("Rd should decay with radius: near=%v, far=%v", near, far)
	}
}

func TestFresnelDiffuseReflectanceContinuousAtOne(t *testing.T) {
	below := fresnelDiffuseReflectance(0.999)
	above := fresnelDiffuseReflectance(1.001)
	if stdmath.Abs(below-above) > 0.01 {
		t.Errorf("Fdr should be continuous near eta=1: below=%v, above=%v", below, above)
	}
}

func TestDipoleSamplePDFPositiveForValidHemisphereSample(t *testing.T) {
	d := NewDipole(rtmath.NewVec3(1, 1, 1), rtmath.Vec3{}, rtmath.NewVec3(0.02, 0.03, 0.04), rtmath.NewVec3(2, 2.5, 3), 1, 1.3)
	rng := rtmath.NewPCG(11)
	omegaOut := rtmath.NewVec3(0, 1, 0)

	sawValid := false
	for i := 0; i < 32; i++ {
		_, _, pdf, transport, ok := d.Sample(omegaOut, Transport{}, rng.Vec3Sample())
		if !ok {
			continue
		}
		sawValid = true
		if pdf <= 0 {
			t.Fatalf("sample %d: pdf=%v, want > 0", i, pdf)
		}
		if transport.Type != SSSTransport {
			t.Errorf("sample %d: transport=%v, want SSSTransport", i, transport.Type)
		}
	}
	if !sawValid {
		t.Fatalf("expected at least one valid sample")
	}
}
