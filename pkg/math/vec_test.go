package math

import (
	"math"
	"testing"
)

func TestVec3NormalizeUnitLength(t *testing.T) {
	vs := []Vec3{
		NewVec3(3, 4, 0),
		NewVec3(1, 1, 1),
		NewVec3(-2, 5, -7),
	}
	for _, v := range vs {
		n := v.Normalize()
		if math.Abs(n.Length()-1) > 1e-9 {
			t.Errorf("Normalize(%v).Length() = %v, want 1", v, n.Length())
		}
	}
}

func TestVec3NormalizeZero(t *testing.T) {
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("Normalize(zero) = %v, want zero", got)
	}
}

func TestRayAt(t *testing.T) {
	r := NewRay(NewVec3(1, 2, 3), NewVec3(1, 0, 0))
	for _, tt := range []float64{0, 1, 5.5} {
		want := r.Origin.Add(r.Direction.Multiply(tt))
		if got := r.At(tt); got != want {
			t.Errorf("At(%v) = %v, want %v", tt, got, want)
		}
	}
}

func TestPCGReproducibility(t *testing.T) {
	const n = 64
	a := NewPCG(42)
	b := NewPCG(42)
	for i := 0; i < n; i++ {
		if av, bv := a.NextU32(), b.NextU32(); av != bv {
			t.Fatalf("sample %d diverged: %d != %d", i, av, bv)
		}
	}
}

func TestQuaternionToMatrixOrthogonal(t *testing.T) {
	q := QuaternionFromAxisAngle(NewVec3(0, 1, 0), math.Pi/3).Normalized()
	m := q.ToMatrix()
	mt := m.Transpose()
	prod := m.Mul(mt)
	id := Identity4()
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			if math.Abs(prod.Value[r][c]-id.Value[r][c]) > 1e-6 {
				t.Fatalf("M*M^T not identity at (%d,%d): %v", r, c, prod.Value[r][c])
			}
		}
	}
}

func TestQuaternionDeterminantPositive(t *testing.T) {
	q := QuaternionFromAxisAngle(NewVec3(1, 1, 0).Normalize(), 1.234).Normalized()
	m := q.ToMatrix()
	det := m.Value[0][0]*(m.Value[1][1]*m.Value[2][2]-m.Value[1][2]*m.Value[2][1]) -
		m.Value[0][1]*(m.Value[1][0]*m.Value[2][2]-m.Value[1][2]*m.Value[2][0]) +
		m.Value[0][2]*(m.Value[1][0]*m.Value[2][1]-m.Value[1][1]*m.Value[2][0])
	if math.Abs(det-1) > 1e-6 {
		t.Errorf("determinant = %v, want 1", det)
	}
}
