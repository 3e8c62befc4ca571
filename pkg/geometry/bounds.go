// Package geometry holds the ray/shape/acceleration layer: axis-aligned
// bounds, the Shape variant and its concrete primitives, and the SAH BVH
// that accelerates ray-scene intersection.
package geometry

import (
	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

// Bounds3 is a 3D axis-aligned box. Invalid() holds whenever any axis has
// non-positive extent.
type Bounds3 struct {
	Min, Max rtmath.Vec3
}

func NewBounds3(min, max rtmath.Vec3) Bounds3 { return Bounds3{Min: min, Max: max} }

// NewBounds3FromPoints bounds every given point.
func NewBounds3FromPoints(points ...rtmath.Vec3) Bounds3 {
	if len(points) == 0 {
		return Bounds3{}
	}
	min, max := points[0], points[0]
	for _, p := range points[1:] {
		min = rtmath.MinVec3(min, p)
		max = rtmath.MaxVec3(max, p)
	}
	return Bounds3{Min: min, Max: max}
}

func (b Bounds3) Invalid() bool {
	return b.Max.X <= b.Min.X || b.Max.Y <= b.Min.Y || b.Max.Z <= b.Min.Z
}

func (b Bounds3) Merge(o Bounds3) Bounds3 {
	return Bounds3{Min: rtmath.MinVec3(b.Min, o.Min), Max: rtmath.MaxVec3(b.Max, o.Max)}
}

func (b Bounds3) Intersect(o Bounds3) Bounds3 {
	return Bounds3{Min: rtmath.MaxVec3(b.Min, o.Min), Max: rtmath.MinVec3(b.Max, o.Max)}
}

func (b Bounds3) Contains(o Bounds3) bool {
	return b.Min.X <= o.Min.X && b.Min.Y <= o.Min.Y && b.Min.Z <= o.Min.Z &&
		b.Max.X >= o.Max.X && b.Max.Y >= o.Max.Y && b.Max.Z >= o.Max.Z
}

func (b Bounds3) Centroid() rtmath.Vec3 {
	return b.Min.Add(b.Max).Multiply(0.5)
}

func (b Bounds3) Diagonal() rtmath.Vec3 { return b.Max.Subtract(b.Min) }

func (b Bounds3) SurfaceArea() float64 {
	d := b.Diagonal()
	if b.Invalid() {
		return 0
	}
	return 2 * (d.X*d.Y + d.Y*d.Z + d.Z*d.X)
}

// LongestAxis returns 0=X, 1=Y, 2=Z.
func (b Bounds3) LongestAxis() int {
	d := b.Diagonal()
	if d.X > d.Y && d.X > d.Z {
		return 0
	}
	if d.Y > d.Z {
		return 1
	}
	return 2
}

func (b Bounds3) Expand(amount float64) Bounds3 {
	e := rtmath.Vec3{X: amount, Y: amount, Z: amount}
	return Bounds3{Min: b.Min.Subtract(e), Max: b.Max.Add(e)}
}

// BoundingRadius returns the distance from the box center to a corner.
func (b Bounds3) BoundingRadius() float64 {
	return b.Max.Subtract(b.Centroid()).Length()
}

// Hit performs the slab test against a ray's precomputed inverse
// direction, pruning the subtree on a miss.
func (b Bounds3) Hit(r rtmath.Ray, tMin, tMax float64) bool {
	for axis := 0; axis < 3; axis++ {
		var lo, hi, origin, invDir float64
		switch axis {
		case 0:
			lo, hi, origin, invDir = b.Min.X, b.Max.X, r.Origin.X, r.InvDir.X
		case 1:
			lo, hi, origin, invDir = b.Min.Y, b.Max.Y, r.Origin.Y, r.InvDir.Y
		default:
			lo, hi, origin, invDir = b.Min.Z, b.Max.Z, r.Origin.Z, r.InvDir.Z
		}
		t0 := (lo - origin) * invDir
		t1 := (hi - origin) * invDir
		if invDir < 0 {
			t0, t1 = t1, t0
		}
		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMin > tMax {
			return false
		}
	}
	return true
}

// Bounds2 is a 2D axis-aligned box of type T (int for raster tiles, float64
// for NDC/UV rectangles).
type Bounds2[T int | float64] struct {
	Min, Max [2]T
}

func NewBounds2[T int | float64](min, max [2]T) Bounds2[T] {
	return Bounds2[T]{Min: min, Max: max}
}

func (b Bounds2[T]) Width() T  { return b.Max[0] - b.Min[0] }
func (b Bounds2[T]) Height() T { return b.Max[1] - b.Min[1] }
func (b Bounds2[T]) Area() T   { return b.Width() * b.Height() }

func (b Bounds2[T]) Invalid() bool { return b.Width() <= 0 || b.Height() <= 0 }

// bounds2Max/Min live here only to avoid importing the generic math/Min in
// call sites that mix int and float64 bounds.
func bounds2MinT[T int | float64](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func bounds2MaxT[T int | float64](a, b T) T {
	if a > b {
		return a
	}
	return b
}

func (b Bounds2[T]) Merge(o Bounds2[T]) Bounds2[T] {
	return Bounds2[T]{
		Min: [2]T{bounds2MinT(b.Min[0], o.Min[0]), bounds2MinT(b.Min[1], o.Min[1])},
		Max: [2]T{bounds2MaxT(b.Max[0], o.Max[0]), bounds2MaxT(b.Max[1], o.Max[1])},
	}
}

func (b Bounds2[T]) Intersect(o Bounds2[T]) Bounds2[T] {
	return Bounds2[T]{
		Min: [2]T{bounds2MaxT(b.Min[0], o.Min[0]), bounds2MaxT(b.Min[1], o.Min[1])},
		Max: [2]T{bounds2MinT(b.Max[0], o.Max[0]), bounds2MinT(b.Max[1], o.Max[1])},
	}
}
