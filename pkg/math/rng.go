package math

import stdmath "math"

// PCG is a PCG-XSH-RR 64->32 generator: the per-worker stream source for
// the whole renderer. Two renders with the same seed and worker count
// reproduce bit-identical output because every draw is a deterministic
// function of this state.
type PCG struct {
	state uint64
}

const (
	pcgMultiplier uint64 = 6364136223846793005
	pcgIncrement  uint64 = 1442695040888963407
)

// NewPCG seeds a generator: state = seed + increment, then advances once,
// matching the reference PCG-XSH-RR seeding sequence.
func NewPCG(seed uint64) *PCG {
	r := &PCG{state: seed + pcgIncrement}
	r.step()
	return r
}

func (r *PCG) step() {
	r.state = r.state*pcgMultiplier + pcgIncrement
}

// NextU32 advances the generator and extracts a 32-bit output via the
// XSH-RR (xorshift-high, random-rotate) transform.
func (r *PCG) NextU32() uint32 {
	old := r.state
	r.step()
	xshifted := uint32(((old >> 18) ^ old) >> 27)
	rot := uint32(old >> 59)
	return rotate32(xshifted, rot)
}

func rotate32(x uint32, r uint32) uint32 {
	return (x >> r) | (x << ((-r) & 31))
}

// NextFloat32 normalizes a 32-bit draw to [0,1); a draw of 0 maps to 0
// exactly rather than letting n-1 wrap to 2^32-1 (just under 1).
func (r *PCG) NextFloat32() float64 {
	n := r.NextU32()
	if n == 0 {
		return 0
	}
	return float64(n-1) / 4294967296.0
}

// Float64 draws a uniform float in [0,1), the unit used throughout
// sampling code that wants full float64 precision for its inputs.
func (r *PCG) Float64() float64 {
	return r.NextFloat32()
}

// Vec2 draws an independent pair of uniform floats, used for 2D sampling
// (e.g. light-area or lens samples).
func (r *PCG) Vec2() Vec2 {
	return Vec2{X: r.Float64(), Y: r.Float64()}
}

// Vec3Sample draws three independent uniform floats, used by samplers that
// need a 3-tuple (e.g. GGX sample() takes u in [0,1]^3).
func (r *PCG) Vec3Sample() Vec3 {
	return Vec3{X: r.Float64(), Y: r.Float64(), Z: r.Float64()}
}

// Intn draws a uniform integer in [0,n).
func (r *PCG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Float64() * float64(n))
}

// DeriveSeed produces a per-tile seed from a global seed and a tile index,
// using SplitMix64-style mixing so adjacent tile indices don't produce
// correlated streams.
func DeriveSeed(globalSeed uint64, tileIndex uint64) uint64 {
	z := globalSeed + tileIndex*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// CosineSampleHemisphere draws a direction in the hemisphere around
// (0,1,0) (tangent-frame up) with PDF = cos(theta)/pi, via the standard
// concentric-disk-then-project-up construction.
func CosineSampleHemisphere(u Vec2) Vec3 {
	// Map [0,1)^2 to a concentric disk.
	ox := 2*u.X - 1
	oy := 2*u.Y - 1
	var r, theta float64
	if ox == 0 && oy == 0 {
		return Vec3{Y: 1}
	}
	if stdmath.Abs(ox) > stdmath.Abs(oy) {
		r = ox
		theta = (stdmath.Pi / 4) * (oy / ox)
	} else {
		r = oy
		theta = stdmath.Pi/2 - (stdmath.Pi/4)*(ox/oy)
	}
	dx := r * stdmath.Cos(theta)
	dz := r * stdmath.Sin(theta)
	y := stdmath.Sqrt(stdmath.Max(0, 1-dx*dx-dz*dz))
	return Vec3{X: dx, Y: y, Z: dz}
}

// UniformSampleSphere draws a direction uniformly over the unit sphere.
func UniformSampleSphere(u Vec2) Vec3 {
	z := 1 - 2*u.X
	r := stdmath.Sqrt(stdmath.Max(0, 1-z*z))
	phi := 2 * stdmath.Pi * u.Y
	return Vec3{X: r * stdmath.Cos(phi), Y: r * stdmath.Sin(phi), Z: z}
}

// UniformSampleDisk draws a point uniformly over the unit disk.
func UniformSampleDisk(u Vec2) Vec2 {
	r := stdmath.Sqrt(u.X)
	theta := 2 * stdmath.Pi * u.Y
	return Vec2{X: r * stdmath.Cos(theta), Y: r * stdmath.Sin(theta)}
}
