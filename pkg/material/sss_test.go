package material

import (
	stdmath "math"
	"testing"

	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

func TestSSSSampleDistanceMeanMatchesExtinction(t *testing.T) {
	s := NewSSS(rtmath.Vec3{}, rtmath.Vec3{}, 0.2, 1, 1.3, rtmath.Vec3{}, rtmath.NewVec3(2, 2, 2), 0)
	rng := rtmath.NewPCG(5)

	const n = 40000
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += s.SampleDistance(rng.Float64(), rng.Float64())
	}
	mean := sum / n
	want := 1.0 / 2.0
	if stdmath.Abs(mean-want) > 0.05 {
		t.Errorf("mean sampled distance = %v, want close to 1/sigma = %v", mean, want)
	}
}

func TestSSSTransmittanceDecreasesWithDistance(t *testing.T) {
	s := NewSSS(rtmath.Vec3{}, rtmath.Vec3{}, 0.2, 1, 1.3, rtmath.NewVec3(0.1, 0.1, 0.1), rtmath.NewVec3(0.5, 0.5, 0.5), 0)
	near := s.Transmittance(0.1)
	far := s.Transmittance(5.0)
	if near.X <= far.X {
		t.Errorf("Transmittance should decay with distance: near=%v, far=%v", near.X, far.X)
	}
}

func TestSampleHenyeyGreensteinForwardBias(t *testing.T) {
	wi := rtmath.NewVec3(0, 0, 1)
	rng := rtmath.NewPCG(9)
	const n = 4000
	sumCos := 0.0
	for i := 0; i < n; i++ {
		dir := SampleHenyeyGreenstein(wi, 0.9, rng.Vec2())
		sumCos += dir.Dot(wi)
	}
	meanCos := sumCos / n
	if meanCos < 0.5 {
		t.Errorf("strongly forward-scattering g=0.9 should bias samples toward wi, mean cos=%v", meanCos)
	}
}

func TestSampleHenyeyGreensteinIsotropicMeanNearZero(t *testing.T) {
	wi := rtmath.NewVec3(0, 0, 1)
	rng := rtmath.NewPCG(13)
	const n = 8000
	sumCos := 0.0
	for i := 0; i < n; i++ {
		dir := SampleHenyeyGreenstein(wi, 0, rng.Vec2())
		sumCos += dir.Dot(wi)
	}
	meanCos := sumCos / n
	if stdmath.Abs(meanCos) > 0.05 {
		t.Errorf("isotropic g=0 should have mean cos near 0, got %v", meanCos)
	}
}
