package geometry

import (
	"testing"

	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

func TestBounds3MergeContains(t *testing.T) {
	a := NewBounds3(rtmath.NewVec3(0, 0, 0), rtmath.NewVec3(1, 1, 1))
	b := NewBounds3(rtmath.NewVec3(2, 2, 2), rtmath.NewVec3(3, 3, 3))

	merged := a.Merge(b)
	if !merged.Contains(a) || !merged.Contains(b) {
		t.Fatalf("merge(%v,%v) = %v, should contain both", a, b, merged)
	}

	if self := a.Intersect(a); self.Min != a.Min || self.Max != a.Max {
		t.Errorf("A.Intersect(A) = %v, want %v", self, a)
	}
}

func TestBounds2WidthHeightArea(t *testing.T) {
	b := NewBounds2([2]int{2, 3}, [2]int{10, 9})
	if b.Width() != 8 || b.Height() != 6 {
		t.Fatalf("width/height = %d/%d, want 8/6", b.Width(), b.Height())
	}
	if b.Area() != 48 {
		t.Errorf("area = %d, want 48", b.Area())
	}
	if b.Invalid() {
		t.Errorf("bounds should be valid")
	}
}
