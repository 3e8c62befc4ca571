package lights

import (
	stdmath "math"
	"testing"

	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

func TestSamplerPickUniform(t *testing.T) {
	a := NewPoint(rtmath.NewVec3(1, 0, 0), rtmath.NewVec3(1, 1, 1))
	b := NewPoint(rtmath.NewVec3(-1, 0, 0), rtmath.NewVec3(1, 1, 1))
	s := NewSampler([]Light{a, b})

	if pdf := s.SelectionPDF(); stdmath.Abs(pdf-0.5) > 1e-9 {
		t.Errorf("SelectionPDF() = %v, want 0.5", pdf)
	}

	if got, pdf := s.Pick(0.0); got != a || pdf != 0.5 {
		t.Errorf("Pick(0.0) = %v,%v, want a,0.5", got, pdf)
	}
	if got, pdf := s.Pick(0.99); got != b || pdf != 0.5 {
		t.Errorf("Pick(0.99) = %v,%v, want b,0.5", got, pdf)
	}
}

func TestSamplerPickEmpty(t *testing.T) {
	s := NewSampler(nil)
	if light, pdf := s.Pick(0.5); light != nil || pdf != 0 {
		t.Errorf("Pick on empty sampler = %v,%v, want nil,0", light, pdf)
	}
}

func TestRectPDFMatchesSampleForSampledDirection(t *testing.T) {
	r := NewRect(rtmath.IdentityTransform(), rtmath.NewVec3(1, 1, 1), rtmath.Vec2{X: -1, Y: -1}, rtmath.Vec2{X: 1, Y: 1})
	ref := rtmath.NewVec3(0, 0, 5)

	samp, ok := r.Sample(ref, rtmath.Vec2{X: 0.5, Y: 0.5})
	if !ok {
		t.Fatalf("expected a valid sample")
	}
	wi := samp.Point.Subtract(ref).Normalize()
	pdf := r.PDF(ref, wi)
	if stdmath.Abs(pdf-samp.PDF) > 1e-6 {
		t.Errorf("PDF(ref,wi)=%v disagrees with Sample's reported PDF=%v", pdf, samp.PDF)
	}
}

func TestRectPDFZeroForDirectionMissingRect(t *testing.T) {
	r := NewRect(rtmath.IdentityTransform(), rtmath.NewVec3(1, 1, 1), rtmath.Vec2{X: -1, Y: -1}, rtmath.Vec2{X: 1, Y: 1})
	ref := rtmath.NewVec3(0, 0, -5)
	wi := rtmath.NewVec3(1, 0, 0) // parallel to the rect's plane, never crosses it
	if pdf := r.PDF(ref, wi); pdf != 0 {
		t.Errorf("PDF for a direction that never reaches the rect = %v, want 0", pdf)
	}
}

func TestSphereLightPDFZeroInsideSphere(t *testing.T) {
	s := NewSphere(rtmath.IdentityTransform(), rtmath.NewVec3(1, 1, 1), 2)
	if pdf := s.PDF(rtmath.Vec3{}, rtmath.NewVec3(1, 0, 0)); pdf != 0 {
		t.Errorf("PDF from a point inside the sphere = %v, want 0", pdf)
	}
}

func TestSphereLightConePDFMatchesSampleFarAway(t *testing.T) {
	s := NewSphere(rtmath.IdentityTransform(), rtmath.NewVec3(1, 1, 1), 1)
	ref := rtmath.NewVec3(0, 0, -100)

	samp, ok := s.Sample(ref, rtmath.Vec2{X: 0.1, Y: 0.3})
	if !ok {
		t.Fatalf("expected a valid sample")
	}
	if samp.PDF <= 0 {
		t.Errorf("cone sample PDF = %v, want > 0", samp.PDF)
	}
	pdf := s.PDF(ref, rtmath.NewVec3(0, 0, 1))
	if stdmath.Abs(pdf-samp.PDF) > 1e-6 {
		t.Errorf("PDF(ref,wi)=%v should match the cone PDF %v for any direction when far away", pdf, samp.PDF)
	}
}

func TestPointLightHasDeltaPDF(t *testing.T) {
	p := NewPoint(rtmath.NewVec3(0, 5, 0), rtmath.NewVec3(1, 1, 1))
	if pdf := p.PDF(rtmath.Vec3{}, rtmath.NewVec3(0, 1, 0)); pdf != 0 {
		t.Errorf("point light PDF() = %v, want 0 (delta lights aren't MIS-weighted)", pdf)
	}
	samp, ok := p.Sample(rtmath.Vec3{}, rtmath.Vec2{})
	if !ok {
		t.Fatalf("expected point light sample to succeed")
	}
	if samp.Point != p.Position {
		t.Errorf("point light sample position = %v, want %v", samp.Point, p.Position)
	}
}

func TestSpotConstructionComputesCosines(t *testing.T) {
	from := rtmath.NewVec3(0, 5, 0)
	to := rtmath.NewVec3(0, 0, 0)
	s := NewSpot(from, to, rtmath.NewVec3(1, 1, 1), 45, 40)

	wantDir := to.Subtract(from).Normalize()
	if s.Direction.Subtract(wantDir).Length() > 1e-9 {
		t.Errorf("Direction = %v, want %v", s.Direction, wantDir)
	}
	if got, want := s.CosTotalWidth, stdmath.Cos(45*stdmath.Pi/180); stdmath.Abs(got-want) > 1e-9 {
		t.Errorf("CosTotalWidth = %v, want %v", got, want)
	}
	if got, want := s.CosFalloffStart, stdmath.Cos(40*stdmath.Pi/180); stdmath.Abs(got-want) > 1e-9 {
		t.Errorf("CosFalloffStart = %v, want %v", got, want)
	}
}

func TestSpotSampleWithinInnerConeIsUnattenuated(t *testing.T) {
	from := rtmath.NewVec3(0, 5, 0)
	to := rtmath.NewVec3(0, 0, 0)
	s := NewSpot(from, to, rtmath.NewVec3(100, 100, 100), 60, 55)

	ref := rtmath.NewVec3(0, 1, 0) // directly below the light, inside the cone
	samp, ok := s.Sample(ref, rtmath.Vec2{})
	if !ok {
		t.Fatalf("expected a valid sample")
	}
	d2 := from.Subtract(ref).LengthSquared()
	want := s.Color.Multiply(1 / d2)
	if samp.Color.Subtract(want).Length() > 1e-6 {
		t.Errorf("Color = %v, want %v (no falloff inside the inner cone)", samp.Color, want)
	}
}

func TestSpotSampleOutsideConeReturnsFalse(t *testing.T) {
	from := rtmath.NewVec3(0, 5, 0)
	to := rtmath.NewVec3(0, 0, 0)
	s := NewSpot(from, to, rtmath.NewVec3(1, 1, 1), 10, 5)

	ref := rtmath.NewVec3(100, 5, 0) // off to the side, well outside the cone
	if _, ok := s.Sample(ref, rtmath.Vec2{}); ok {
		t.Errorf("expected no sample outside the cone")
	}
}

func TestSpotPDFIsAlwaysZero(t *testing.T) {
	s := NewSpot(rtmath.NewVec3(0, 5, 0), rtmath.NewVec3(0, 0, 0), rtmath.NewVec3(1, 1, 1), 30, 25)
	if pdf := s.PDF(rtmath.Vec3{}, rtmath.NewVec3(0, 1, 0)); pdf != 0 {
		t.Errorf("spot light PDF() = %v, want 0 (delta lights aren't MIS-weighted)", pdf)
	}
}
