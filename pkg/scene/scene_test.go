package scene

import (
	"testing"

	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

func TestEnvironmentRadianceFallsBackToConstant(t *testing.T) {
	e := Environment{Constant: rtmath.NewVec3(0.1, 0.2, 0.3)}
	got := e.Radiance(rtmath.NewVec3(0, 1, 0))
	if got != e.Constant {
		t.Errorf("Radiance() = %v, want constant %v", got, e.Constant)
	}
}

func TestEnvironmentRadiancePrefersTextureWhenPresent(t *testing.T) {
	tex := &EnvironmentTexture{
		Width: 2, Height: 2,
		Pixels: []rtmath.Vec3{
			{X: 1}, {X: 2},
			{X: 3}, {X: 4},
		},
	}
	e := Environment{Constant: rtmath.NewVec3(9, 9, 9), Texture: tex}
	got := e.Radiance(rtmath.NewVec3(0, -1, 0))
	if got == e.Constant {
		t.Errorf("Radiance() returned constant %v, want a texture sample", got)
	}
}

func TestEnvironmentTextureSampleNilSafe(t *testing.T) {
	var tex *EnvironmentTexture
	if got := tex.Sample(rtmath.NewVec3(0, 1, 0)); got != (rtmath.Vec3{}) {
		t.Errorf("nil texture Sample() = %v, want zero", got)
	}
}

func TestEnvironmentTextureSampleInBounds(t *testing.T) {
	tex := &EnvironmentTexture{
		Width: 4, Height: 4,
		Pixels: make([]rtmath.Vec3, 16),
	}
	for i := range tex.Pixels {
		tex.Pixels[i] = rtmath.NewVec3(float64(i), 0, 0)
	}
	dirs := []rtmath.Vec3{
		rtmath.NewVec3(0, 1, 0),
		rtmath.NewVec3(1, 0, 0),
		rtmath.NewVec3(0, -1, 0),
		rtmath.NewVec3(-1, 0, 0.3),
	}
	for _, d := range dirs {
		got := tex.Sample(d)
		if got.X < 0 || got.X > 15 {
			t.Errorf("Sample(%v) = %v, index out of expected pixel range", d, got)
		}
	}
}
