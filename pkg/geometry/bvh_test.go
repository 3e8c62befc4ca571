package geometry

import (
	"testing"

	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

func TestBVHIntersectReturnsNearestByMinT(t *testing.T) {
	xs := []float64{-10, 0, 10}
	var shapes []Shape
	for _, x := range xs {
		shapes = append(shapes, NewSphere(rtmath.Translate(rtmath.NewVec3(x, 0, 0)), 1, fakeMaterial{}))
	}
	bvh := NewBVH(shapes)
	opts := DefaultIntersectOpts()

	for _, x := range xs {
		r := rtmath.NewRay(rtmath.NewVec3(0, 0, -100), rtmath.NewVec3(x, 0, 100).Normalize())
		hit, ok := bvh.Intersect(r, opts, opts.HitEpsilon, 1e9)
		if !ok {
			t.Fatalf("expected a hit toward sphere at x=%v", x)
		}
		gotCenter := hit.Point.Subtract(rtmath.NewVec3(0, 0, 0))
		_ = gotCenter
		if dist := hit.Point.Subtract(rtmath.NewVec3(x, 0, 0)).Length(); dist > 1.01 {
			t.Errorf("ray toward x=%v hit point %v, too far from expected sphere", x, hit.Point)
		}
	}
}

func TestBVHOccludedMatchesIntersect(t *testing.T) {
	shapes := []Shape{
		NewSphere(rtmath.IdentityTransform(), 1, fakeMaterial{}),
	}
	bvh := NewBVH(shapes)
	opts := DefaultIntersectOpts()

	hitRay := rtmath.NewRay(rtmath.NewVec3(0, 0, -5), rtmath.NewVec3(0, 0, 1))
	_, intersects := bvh.Intersect(hitRay, opts, opts.HitEpsilon, 1e9)
	occluded := bvh.Occluded(hitRay, opts, opts.HitEpsilon, 1e9)
	if intersects != occluded {
		t.Errorf("Intersect() ok=%v but Occluded()=%v, should agree", intersects, occluded)
	}

	missRay := rtmath.NewRay(rtmath.NewVec3(0, 5, -5), rtmath.NewVec3(0, 0, 1))
	if bvh.Occluded(missRay, opts, opts.HitEpsilon, 1e9) {
		t.Errorf("Occluded() true for a ray that should miss")
	}
}

func TestBVHAddingPrimitiveNeverDecreasesHits(t *testing.T) {
	opts := DefaultIntersectOpts()
	r := rtmath.NewRay(rtmath.NewVec3(0, 0, -100), rtmath.NewVec3(0, 0, 1))

	before := NewBVH([]Shape{NewSphere(rtmath.Translate(rtmath.NewVec3(5, 5, 0)), 1, fakeMaterial{})})
	_, hitBefore := before.Intersect(r, opts, opts.HitEpsilon, 1e9)

	after := NewBVH([]Shape{
		NewSphere(rtmath.Translate(rtmath.NewVec3(5, 5, 0)), 1, fakeMaterial{}),
		NewSphere(rtmath.IdentityTransform(), 1, fakeMaterial{}),
	})
	_, hitAfter := after.Intersect(r, opts, opts.HitEpsilon, 1e9)

	if hitBefore && !hitAfter {
		t.Errorf("adding a primitive decreased whether the ray registered a hit")
	}
}
