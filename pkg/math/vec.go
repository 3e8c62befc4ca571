// Package math provides the vector, matrix, quaternion, transform, spectrum
// and random-number primitives shared by every other package in the
// raytracer. Everything here is a value type: copies are cheap and callers
// never need to worry about aliasing.
package math

import (
	"fmt"
	"math"
)

// Vec2 is a 2D vector, used for texture coordinates and raster points.
type Vec2 struct {
	X, Y float64
}

// NewVec2 creates a new Vec2.
func NewVec2(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Subtract(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Multiply(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Vec3 is a 3D vector. It plays the role of point, direction and normal;
// callers are expected to know which is which from context.
type Vec3 struct {
	X, Y, Z float64
}

// Vec4 is a homogeneous 4D vector, used only as the operand of Matrix4.
type Vec4 struct {
	X, Y, Z, W float64
}

func NewVec3(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }
func NewVec4(x, y, z, w float64) Vec4 { return Vec4{X: x, Y: y, Z: z, W: w} }

// Vec4FromVec3 builds a homogeneous vector from a Vec3 with the given w.
// w=1 for points, w=0 for directions/normals.
func Vec4FromVec3(v Vec3, w float64) Vec4 { return Vec4{v.X, v.Y, v.Z, w} }

func (v Vec4) Vec3() Vec3 { return Vec3{v.X, v.Y, v.Z} }

func (v Vec3) String() string {
	return fmt.Sprintf("{%.3g, %.3g, %.3g}", v.X, v.Y, v.Z)
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Subtract(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Multiply(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}
func (v Vec3) Negate() Vec3 { return Vec3{-v.X, -v.Y, -v.Z} }

func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

func (v Vec3) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vec3) AbsDot(o Vec3) float64 { return math.Abs(v.Dot(o)) }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// MultiplyVec is component-wise (Hadamard) multiplication, used throughout
// for tinting spectra stored as Vec3 (RGB throughput).
func (v Vec3) MultiplyVec(o Vec3) Vec3 {
	return Vec3{v.X * o.X, v.Y * o.Y, v.Z * o.Z}
}

func (v Vec3) DivideVec(o Vec3) Vec3 {
	return Vec3{v.X / o.X, v.Y / o.Y, v.Z / o.Z}
}

// Normalize returns a unit vector in the same direction; the zero vector
// normalizes to itself rather than producing NaNs.
func (v Vec3) Normalize() Vec3 {
	length := v.Length()
	if length == 0 {
		return Vec3{}
	}
	return Vec3{v.X / length, v.Y / length, v.Z / length}
}

func (v Vec3) IsZero() bool { return v.X == 0 && v.Y == 0 && v.Z == 0 }

// Inverse returns the component-wise reciprocal, used to precompute a ray's
// inverse direction for the BVH slab test. A zero component maps to +Inf
// (or -Inf), which the slab test treats as "parallel to this axis".
func (v Vec3) Inverse() Vec3 {
	return Vec3{1.0 / v.X, 1.0 / v.Y, 1.0 / v.Z}
}

func (v Vec3) Clamp(lo, hi float64) Vec3 {
	clamp := func(x float64) float64 {
		if x < lo {
			return lo
		}
		if x > hi {
			return hi
		}
		return x
	}
	return Vec3{clamp(v.X), clamp(v.Y), clamp(v.Z)}
}

// Luminance returns perceptual luminance using Rec.709 weights, used by
// Russian roulette and by the hair BCSDF's lobe-selection probabilities.
func (v Vec3) Luminance() float64 {
	return 0.2126*v.X + 0.7152*v.Y + 0.0722*v.Z
}

func (v Vec3) Average() float64 { return (v.X + v.Y + v.Z) / 3.0 }

func (v Vec3) Max() float64 { return math.Max(v.X, math.Max(v.Y, v.Z)) }

func (v Vec3) Sqrt() Vec3 {
	return Vec3{math.Sqrt(v.X), math.Sqrt(v.Y), math.Sqrt(v.Z)}
}

func (v Vec3) Pow(p float64) Vec3 {
	return Vec3{math.Pow(v.X, p), math.Pow(v.Y, p), math.Pow(v.Z, p)}
}

func (v Vec3) Exp() Vec3 {
	return Vec3{math.Exp(v.X), math.Exp(v.Y), math.Exp(v.Z)}
}

// InverseSpectrum returns the component-wise reciprocal, mapping a zero
// component to zero; named distinctly from Inverse (ray direction) to keep the two
// uses -- direction inversion vs spectrum inversion -- visually distinct.
func (v Vec3) InverseSpectrum() Vec3 {
	safe := func(x float64) float64 {
		if x == 0 {
			return 0
		}
		return 1.0 / x
	}
	return Vec3{safe(v.X), safe(v.Y), safe(v.Z)}
}

func (v Vec3) Equals(o Vec3) bool {
	const tol = 1e-9
	return math.Abs(v.X-o.X) < tol && math.Abs(v.Y-o.Y) < tol && math.Abs(v.Z-o.Z) < tol
}

// Axis returns the value along a 0=X,1=Y,2=Z axis index.
func (v Vec3) Axis(axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// FaceForward flips n to lie in the same hemisphere as ref.
func FaceForward(n, ref Vec3) Vec3 {
	if n.Dot(ref) < 0 {
		return n.Negate()
	}
	return n
}

// Min / Max are component-wise.
func MinVec3(a, b Vec3) Vec3 {
	return Vec3{math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Min(a.Z, b.Z)}
}

func MaxVec3(a, b Vec3) Vec3 {
	return Vec3{math.Max(a.X, b.X), math.Max(a.Y, b.Y), math.Max(a.Z, b.Z)}
}

// Lerp linearly interpolates between a and b.
func Lerp(t float64, a, b Vec3) Vec3 {
	return a.Multiply(1 - t).Add(b.Multiply(t))
}

// Clamp01 clamps a scalar into [0,1].
func Clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Clamp clamps a scalar into [lo,hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
