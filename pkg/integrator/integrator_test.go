package integrator

import (
	stdmath "math"
	"testing"

	"github.com/df07/go-progressive-raytracer/pkg/camera"
	"github.com/df07/go-progressive-raytracer/pkg/geometry"
	"github.com/df07/go-progressive-raytracer/pkg/lights"
	"github.com/df07/go-progressive-raytracer/pkg/material"
	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
	"github.com/df07/go-progressive-raytracer/pkg/scene"
)

func emptyScene(env scene.Environment) *scene.Scene {
	bvh := geometry.NewBVH(nil)
	sampler := lights.NewSampler(nil)
	return scene.NewScene(bvh, sampler, &camera.Camera{}, env, geometry.DefaultIntersectOpts())
}

func TestRayColorFallsBackToEnvironmentOnMiss(t *testing.T) {
	env := scene.Environment{Constant: rtmath.NewVec3(0.2, 0.4, 0.6)}
	s := emptyScene(env)
	pt := NewPathTracer(s, DefaultParams())

	r := rtmath.NewRay(rtmath.NewVec3(0, 0, -10), rtmath.NewVec3(0, 0, 1))
	rng := rtmath.NewPCG(1)
	got := pt.RayColor(r, rng)
	if d := got.Subtract(env.Constant).Length(); d > 1e-9 {
		t.Errorf("RayColor on a miss = %v, want environment constant %v", got, env.Constant)
	}
}

func TestRayColorDirectEmissiveHitReturnsFullEmission(t *testing.T) {
	emittance := rtmath.NewVec3(3, 2, 1)
	mat := material.NewEmissiveLambert(rtmath.Vec3{}, emittance)
	sph := geometry.NewSphere(rtmath.IdentityTransform(), 1, mat)
	bvh := geometry.NewBVH([]geometry.Shape{sph})
	s := scene.NewScene(bvh, lights.NewSampler(nil), &camera.Camera{}, scene.Environment{}, geometry.DefaultIntersectOpts())
	pt := NewPathTracer(s, DefaultParams())

	r := rtmath.NewRay(rtmath.NewVec3(0, 0, -5), rtmath.NewVec3(0, 0, 1))
	rng := rtmath.NewPCG(2)
	got := pt.RayColor(r, rng)
	if d := got.Subtract(emittance).Length(); d > 1e-6 {
		t.Errorf("direct emissive hit radiance = %v, want exactly the emission %v", got, emittance)
	}
}

func TestBalanceHeuristicWeightsSumToOne(t *testing.T) {
	cases := [][2]float64{{1, 1}, {3, 1}, {0.1, 9.9}}
	for _, c := range cases {
		w1 := balanceHeuristic(c[0], c[1])
		w2 := balanceHeuristic(c[1], c[0])
		if stdmath.Abs((w1+w2)-1) > 1e-9 {
			t.Errorf("balanceHeuristic(%v,%v)+balanceHeuristic(%v,%v) = %v, want 1", c[0], c[1], c[1], c[0], w1+w2)
		}
	}
}

func TestBalanceHeuristicZeroWhenBothZero(t *testing.T) {
	if w := balanceHeuristic(0, 0); w != 0 {
		t.Errorf("balanceHeuristic(0,0) = %v, want 0", w)
	}
}

func TestSSSWalkStepReachesBoundaryWhenExtinctionIsZero(t *testing.T) {
	pt := NewPathTracer(emptyScene(scene.Environment{}), DefaultParams())
	mat := material.NewSSS(rtmath.Vec3{}, rtmath.Vec3{}, 0.2, 1, 1.3, rtmath.Vec3{}, rtmath.Vec3{}, 0)
	r := rtmath.NewRay(rtmath.NewVec3(0, 0, 0), rtmath.NewVec3(0, 0, 1)).WithMedium(rtmath.Inside)
	rng := rtmath.NewPCG(11)
	throughput := rtmath.NewVec3(1, 1, 1)

	_, exited, ok := pt.sssWalkStep(mat, r, 1.0, &throughput, rng)
	if !ok || !exited {
		t.Errorf("sssWalkStep with zero extinction = (exited=%v, ok=%v), want (true, true): a medium with no scattering/absorption should always reach the boundary", exited, ok)
	}
}

func TestSSSWalkStepAbsorbsWhenPurelyAbsorptive(t *testing.T) {
	pt := NewPathTracer(emptyScene(scene.Environment{}), DefaultParams())
	sigmaA := rtmath.NewVec3(1, 1, 1)
	mat := material.NewSSS(rtmath.Vec3{}, rtmath.Vec3{}, 0.2, 1, 1.3, sigmaA, rtmath.Vec3{}, 0)
	r := rtmath.NewRay(rtmath.NewVec3(0, 0, 0), rtmath.NewVec3(0, 0, 1)).WithMedium(rtmath.Inside)
	rng := rtmath.NewPCG(17)
	throughput := rtmath.NewVec3(1, 1, 1)

	// A boundary far past any plausible free-flight distance forces a
	// collision, and AbsorptionProb=1 (no scattering coefficient) forces
	// that collision to be an absorption event.
	_, _, ok := pt.sssWalkStep(mat, r, 1e6, &throughput, rng)
	if ok {
		t.Errorf("sssWalkStep with sigma_s=0 should always absorb on collision, got ok=true")
	}
}

func TestSSSWalkStepScattersWhenPurelyScattering(t *testing.T) {
	pt := NewPathTracer(emptyScene(scene.Environment{}), DefaultParams())
	sigmaS := rtmath.NewVec3(1, 1, 1)
	mat := material.NewSSS(rtmath.Vec3{}, rtmath.Vec3{}, 0.2, 1, 1.3, rtmath.Vec3{}, sigmaS, 0)
	r := rtmath.NewRay(rtmath.NewVec3(0, 0, 0), rtmath.NewVec3(0, 0, 1)).WithMedium(rtmath.Inside)
	rng := rtmath.NewPCG(23)
	throughput := rtmath.NewVec3(1, 1, 1)

	next, exited, ok := pt.sssWalkStep(mat, r, 1e6, &throughput, rng)
	if !ok || exited {
		t.Errorf("sssWalkStep with sigma_a=0 should always scatter on collision, got (exited=%v, ok=%v)", exited, ok)
	}
	if d := next.Direction.Length(); stdmath.Abs(d-1) > 1e-6 {
		t.Errorf("redirected ray direction isn't normalized, length=%v", d)
	}
	if next.Medium != rtmath.Inside {
		t.Errorf("a scatter event should keep the ray tagged Inside the medium, got %v", next.Medium)
	}
}

func TestRayColorThroughSSSSphereStaysFinite(t *testing.T) {
	mat := material.NewSSS(rtmath.NewVec3(0.9, 0.9, 0.9), rtmath.NewVec3(0.9, 0.9, 0.9), 0.1, 1, 1.3,
		rtmath.NewVec3(0.2, 0.4, 0.8), rtmath.NewVec3(2, 2, 2), 0)
	sph := geometry.NewSphere(rtmath.IdentityTransform(), 1, mat)
	bvh := geometry.NewBVH([]geometry.Shape{sph})
	env := scene.Environment{Constant: rtmath.NewVec3(0.5, 0.5, 0.5)}
	s := scene.NewScene(bvh, lights.NewSampler(nil), &camera.Camera{}, env, geometry.DefaultIntersectOpts())
	pt := NewPathTracer(s, DefaultParams())

	r := rtmath.NewRay(rtmath.NewVec3(0, 0, -5), rtmath.NewVec3(0, 0, 1))
	for seed := uint64(1); seed <= 20; seed++ {
		rng := rtmath.NewPCG(seed)
		got := pt.RayColor(r, rng)
		if stdmath.IsNaN(got.X) || stdmath.IsNaN(got.Y) || stdmath.IsNaN(got.Z) || got.X < 0 || got.Y < 0 || got.Z < 0 {
			t.Fatalf("RayColor through an SSS sphere produced a non-finite/negative radiance %v at seed %d", got, seed)
		}
	}
}
