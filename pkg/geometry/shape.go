package geometry

import (
	gomath "math"

	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

// IntersectOpts carries the intersection tolerances derived from render
// parameters: the hit-distance epsilon used as tMin, the ray bias offset
// used when spawning secondary/shadow rays, the normal-delta used for SDF
// gradient estimation, and the sphere-tracing iteration cap.
type IntersectOpts struct {
	HitEpsilon    float64
	BiasEpsilon   float64
	NormalDelta   float64
	TraceMaxIters int
}

// DefaultIntersectOpts returns the conventional tolerances used when a
// scene description doesn't override them.
func DefaultIntersectOpts() IntersectOpts {
	return IntersectOpts{
		HitEpsilon:    1e-4,
		BiasEpsilon:   1e-4,
		NormalDelta:   1e-4,
		TraceMaxIters: 1000,
	}
}

// Hit carries the result of a successful ray-shape intersection, all in
// world space.
type Hit struct {
	T         float64
	Point     rtmath.Vec3
	Normal    rtmath.Vec3 // faces against the incoming ray on an opaque surface
	Tangent   rtmath.Vec3 // explicit x-basis, used by curve shapes
	UV        rtmath.Vec2
	FrontFace bool
	Shape     Shape
	Material  MaterialRef
}

// MaterialRef is satisfied by *material.Material; declared here (instead
// of importing pkg/material) to avoid a geometry<->material import cycle,
// since materials don't need to know about shapes but shapes carry a
// material reference.
type MaterialRef interface {
	IsMaterial()
}

// Shape is the contract every primitive implements: local-space bounds,
// world-space bounds, and world-space intersection (transforming the
// incoming ray to local space internally).
type Shape interface {
	// Bounds returns the shape's axis-aligned bounds in its own local space.
	Bounds() Bounds3
	// WorldBounds returns the shape's bounds transformed to world space.
	// The shapes in this package recompute it on every call; it is not
	// cached.
	WorldBounds() Bounds3
	// Intersect tests a world-space ray, returning the closest hit with
	// t in (tMin, tMax].
	Intersect(r rtmath.Ray, opts IntersectOpts, tMin, tMax float64) (*Hit, bool)
	// Material returns the shape's surface material (nil for shapes used
	// purely as light geometry with an external emissive material).
	Material() MaterialRef
}

// shapeBase factors the shape-to-world/world-to-shape transform pair and
// the material reference shared by every concrete shape. worldBoundsCache
// is never filled: WorldBounds recomputes the transformed bounds each call.
type shapeBase struct {
	ToWorld  rtmath.Transform
	material MaterialRef

	worldBoundsCache *Bounds3
}

func newShapeBase(toWorld rtmath.Transform, mat MaterialRef) shapeBase {
	return shapeBase{ToWorld: toWorld, material: mat}
}

func (s shapeBase) Material() MaterialRef { return s.material }

// worldBounds transforms the eight corners of a local AABB and rebuilds
// the union -- correct for any affine (including rotating) transform.
func worldBounds(toWorld rtmath.Transform, local Bounds3) Bounds3 {
	corners := [8]rtmath.Vec3{}
	i := 0
	for _, x := range []float64{local.Min.X, local.Max.X} {
		for _, y := range []float64{local.Min.Y, local.Max.Y} {
			for _, z := range []float64{local.Min.Z, local.Max.Z} {
				corners[i] = toWorld.Point(rtmath.NewVec3(x, y, z))
				i++
			}
		}
	}
	return NewBounds3FromPoints(corners[:]...)
}

// faceForwardHit orients a world-space outward normal against the ray
// direction: when the ray arrives from the back side the normal is flipped
// so it still opposes the incoming direction, and front is false.
func faceForwardHit(normal rtmath.Vec3, rayDir rtmath.Vec3) (rtmath.Vec3, bool) {
	front := rayDir.Dot(normal) < 0
	if front {
		return normal, true
	}
	return normal.Negate(), false
}

// TangentFrame is an orthonormal basis at a hit point with the shading
// normal mapped to local Y ("up"). X is either supplied explicitly (curve
// shapes, via Hit.Tangent) or derived arbitrarily from the normal.
type TangentFrame struct {
	X, Y, Z rtmath.Vec3
}

// NewTangentFrame builds a frame from a shading normal only.
func NewTangentFrame(normal rtmath.Vec3) TangentFrame {
	y := normal.Normalize()
	var helper rtmath.Vec3
	if gomath.Abs(y.X) > 0.9 {
		helper = rtmath.Vec3{Y: 1}
	} else {
		helper = rtmath.Vec3{X: 1}
	}
	x := helper.Cross(y).Normalize()
	z := y.Cross(x)
	return TangentFrame{X: x, Y: y, Z: z}
}

// NewTangentFrameWithTangent builds a frame from a shading normal and an
// explicit tangent direction (used by curves, where the tangent comes from
// the Bezier derivative rather than an arbitrary helper vector).
func NewTangentFrameWithTangent(normal, tangent rtmath.Vec3) TangentFrame {
	y := normal.Normalize()
	x := tangent.Normalize()
	z := y.Cross(x)
	if z.IsZero() {
		return NewTangentFrame(normal)
	}
	z = z.Normalize()
	x = z.Cross(y)
	return TangentFrame{X: x, Y: y, Z: z}
}

// ToLocal projects a world-space direction into the tangent frame.
func (f TangentFrame) ToLocal(v rtmath.Vec3) rtmath.Vec3 {
	return rtmath.Vec3{X: v.Dot(f.X), Y: v.Dot(f.Y), Z: v.Dot(f.Z)}
}

// ToWorld expands a tangent-frame direction back to world space.
func (f TangentFrame) ToWorld(v rtmath.Vec3) rtmath.Vec3 {
	return f.X.Multiply(v.X).Add(f.Y.Multiply(v.Y)).Add(f.Z.Multiply(v.Z))
}
