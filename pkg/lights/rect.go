package lights

import (
	stdmath "math"

	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

// Rect is a one-sided rectangular area emitter spanning [PMin,PMax] in the
// local XY plane (z=0, normal +Z), transformed by ToWorld. PMin and PMax
// are stored by value.
type Rect struct {
	ToWorld    rtmath.Transform
	Color      rtmath.Vec3
	PMin, PMax rtmath.Vec2
}

func NewRect(toWorld rtmath.Transform, color rtmath.Vec3, pMin, pMax rtmath.Vec2) *Rect {
	return &Rect{ToWorld: toWorld, Color: color, PMin: pMin, PMax: pMax}
}

func (r *Rect) area() float64 {
	localArea := (r.PMax.X - r.PMin.X) * (r.PMax.Y - r.PMin.Y)
	ex := r.ToWorld.Vector(rtmath.Vec3{X: r.PMax.X - r.PMin.X}).Length()
	ey := r.ToWorld.Vector(rtmath.Vec3{Y: r.PMax.Y - r.PMin.Y}).Length()
	if localArea == 0 {
		return 0
	}
	scale := (ex * ey) / localArea
	return localArea * scale
}

func (r *Rect) worldNormal() rtmath.Vec3 {
	return r.ToWorld.Normal(rtmath.Vec3{Z: 1}).Normalize()
}

func (r *Rect) Sample(ref rtmath.Vec3, u rtmath.Vec2) (Sample, bool) {
	lx := r.PMin.X + u.X*(r.PMax.X-r.PMin.X)
	ly := r.PMin.Y + u.Y*(r.PMax.Y-r.PMin.Y)
	worldPoint := r.ToWorld.Point(rtmath.NewVec3(lx, ly, 0))
	normal := r.worldNormal()

	toLight := worldPoint.Subtract(ref)
	dist2 := toLight.LengthSquared()
	if dist2 <= 0 {
		return Sample{}, false
	}
	dist := stdmath.Sqrt(dist2)
	wi := toLight.Multiply(1 / dist)
	cosLight := -wi.Dot(normal)
	if cosLight <= 0 {
		return Sample{}, false
	}

	area := r.area()
	if area <= 0 {
		return Sample{}, false
	}
	pdf := dist2 / (cosLight * area)

	return Sample{Point: worldPoint, Normal: normal, Color: r.Color, PDF: pdf}, true
}

func (r *Rect) PDF(ref, wi rtmath.Vec3) float64 {
	hit, ok := r.intersect(ref, wi)
	if !ok {
		return 0
	}
	dist2 := hit.Subtract(ref).LengthSquared()
	normal := r.worldNormal()
	cosLight := stdmath.Abs(wi.Dot(normal))
	if cosLight <= 1e-9 {
		return 0
	}
	area := r.area()
	if area <= 0 {
		return 0
	}
	return dist2 / (cosLight * area)
}

// intersect finds where the ray from ref along wi crosses the rectangle's
// plane within its local extent, used only to evaluate PDF for a
// direction a BxDF sample already produced.
func (r *Rect) intersect(ref, wi rtmath.Vec3) (rtmath.Vec3, bool) {
	inv := r.ToWorld.Inverse()
	localOrigin := inv.Point(ref)
	localDir := inv.Vector(wi)
	if stdmath.Abs(localDir.Z) < 1e-12 {
		return rtmath.Vec3{}, false
	}
	t := -localOrigin.Z / localDir.Z
	if t <= 1e-6 {
		return rtmath.Vec3{}, false
	}
	p := localOrigin.Add(localDir.Multiply(t))
	if p.X < r.PMin.X || p.X > r.PMax.X || p.Y < r.PMin.Y || p.Y > r.PMax.Y {
		return rtmath.Vec3{}, false
	}
	return r.ToWorld.Point(p), true
}
