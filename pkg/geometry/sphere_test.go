package geometry

import (
	"testing"

	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

type fakeMaterial struct{}

func (fakeMaterial) IsMaterial() {}

func TestSphereIntersectCentered(t *testing.T) {
	s := NewSphere(rtmath.IdentityTransform(), 1, fakeMaterial{})
	opts := DefaultIntersectOpts()

	r := rtmath.NewRay(rtmath.NewVec3(0, 0, -5), rtmath.NewVec3(0, 0, 1))
	hit, ok := s.Intersect(r, opts, opts.HitEpsilon, 1e9)
	if !ok {
		t.Fatalf("expected a hit")
	}
	if got := hit.Point.Length(); got < 0.999 || got > 1.001 {
		t.Errorf("hit point %v not on unit sphere (len=%v)", hit.Point, got)
	}
	if hit.Normal.Dot(r.Direction) >= 0 {
		t.Errorf("normal %v should face against incoming ray %v", hit.Normal, r.Direction)
	}
}

func TestSphereMissesTangentRay(t *testing.T) {
	s := NewSphere(rtmath.IdentityTransform(), 1, fakeMaterial{})
	opts := DefaultIntersectOpts()
	r := rtmath.NewRay(rtmath.NewVec3(0, 5, -5), rtmath.NewVec3(0, 0, 1))
	if _, ok := s.Intersect(r, opts, opts.HitEpsilon, 1e9); ok {
		t.Errorf("expected ray well outside sphere to miss")
	}
}

func TestSphereBoundsNotCollapsed(t *testing.T) {
	s := NewSphere(rtmath.IdentityTransform(), 2, fakeMaterial{})
	b := s.Bounds()
	if b.Diagonal().Length() == 0 {
		t.Errorf("sphere bounds collapsed to a point")
	}
	want := rtmath.NewVec3(-2, -2, -2)
	if b.Min != want {
		t.Errorf("bounds.Min = %v, want %v", b.Min, want)
	}
}
