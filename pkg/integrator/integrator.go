// Package integrator implements the unidirectional path tracer: MIS
// between BxDF and light sampling, Russian-roulette termination,
// direct-light shadow-ray evaluation, and a volumetric random walk for
// rays that have entered a subsurface-scattering medium.
package integrator

import (
	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"

	"github.com/df07/go-progressive-raytracer/pkg/geometry"
	"github.com/df07/go-progressive-raytracer/pkg/material"
	"github.com/df07/go-progressive-raytracer/pkg/scene"
)

// Params carries the render-time knobs the integrator itself consumes
// (resolution, tiling and worker count belong to the scheduler/camera
// instead).
type Params struct {
	MaxDepth int
	MaxRR    float64
	UseMIS   bool
}

// DefaultParams matches the conventional values used when a scene
// description doesn't override them.
func DefaultParams() Params {
	return Params{MaxDepth: 16, MaxRR: 0.95, UseMIS: true}
}

// PathTracer drives the per-sample bounce loop.
type PathTracer struct {
	Scene  *scene.Scene
	Params Params
}

func NewPathTracer(s *scene.Scene, p Params) *PathTracer {
	return &PathTracer{Scene: s, Params: p}
}

// RayColor traces one camera path and returns its estimated radiance. The
// algorithm is iterative: throughput accumulates multiplicatively across
// bounces instead of the call stack growing with depth.
func (pt *PathTracer) RayColor(ray rtmath.Ray, rng *rtmath.PCG) rtmath.Vec3 {
	radiance := rtmath.Vec3{}
	throughput := rtmath.Vec3{X: 1, Y: 1, Z: 1}
	currentRay := ray
	bsdfPDF := 0.0
	specularBounce := true

	for depth := 0; depth < pt.Params.MaxDepth; depth++ {
		hit, ok := pt.Scene.BVH.Intersect(currentRay, pt.Scene.Opts, pt.Scene.Opts.HitEpsilon, currentRay.TMax)
		if !ok {
			radiance = radiance.Add(throughput.MultiplyVec(pt.Scene.Environment.Radiance(currentRay.Direction)))
			break
		}

		mat, hasMat := hit.Material.(material.Material)
		if !hasMat {
			break
		}

		if currentRay.Medium == rtmath.Inside {
			if sssMat, isSSS := mat.(*material.SSS); isSSS {
				walkRay, exited, ok := pt.sssWalkStep(sssMat, currentRay, hit.T, &throughput, rng)
				if !ok {
					break
				}
				if !exited {
					currentRay = walkRay
					specularBounce = true // no light sampling happened mid-walk; skip MIS weighting on next emissive hit
					continue
				}
				// Reached the boundary without a collision: fall through and
				// let the ordinary surface code below handle the exit bounce
				// through mat (the dielectric Fresnel split at this same
				// surface).
			}
		}

		if mat.IsEmissive() && (specularBounce || !pt.Params.UseMIS) {
			radiance = radiance.Add(throughput.MultiplyVec(mat.Emission()))
		} else if mat.IsEmissive() {
			radiance = radiance.Add(throughput.MultiplyVec(mat.Emission()).Multiply(pt.misWeightEmissive(hit, currentRay, bsdfPDF)))
		}

		contProb := rtmath.Clamp01(throughput.Luminance())
		if contProb > pt.Params.MaxRR {
			contProb = pt.Params.MaxRR
		}
		if depth > 3 {
			if rng.Float64() >= contProb || contProb <= 0 {
				break
			}
			throughput = throughput.Multiply(1 / contProb)
		}

		frame := tangentFrameFor(hit)
		localOut := frame.ToLocal(currentRay.Direction.Negate())

		transport := material.Transport{Type: material.Reflect, Medium: currentRay.Medium}

		if pt.Params.UseMIS {
			radiance = radiance.Add(throughput.MultiplyVec(pt.sampleDirectLighting(hit, frame, localOut, mat, transport, rng)))
		}

		omegaIn, mfNormal, pdf, next, sampled := mat.Sample(localOut, transport, rng.Vec3Sample())
		if !sampled || pdf <= 0 {
			break
		}

		worldDir := frame.ToWorld(omegaIn).Normalize()
		f := mat.Evaluate(omegaIn, localOut, mfNormal, transport)
		cosTerm := rtmath.Clamp(omegaIn.Y, -1, 1)
		if cosTerm < 0 {
			cosTerm = -cosTerm
		}

		throughput = throughput.MultiplyVec(f).Multiply(cosTerm / pdf)
		if throughput.IsZero() {
			break
		}

		bias := hit.Normal.Multiply(pt.Scene.Opts.BiasEpsilon)
		if worldDir.Dot(hit.Normal) < 0 {
			bias = bias.Negate()
		}
		currentRay = rtmath.NewRay(hit.Point.Add(bias), worldDir).WithMedium(next.Medium)
		bsdfPDF = pdf
		specularBounce = false
	}

	return radiance
}

// misWeightEmissive weights a BxDF-sampled path landing on a light by the
// balance heuristic against the light's own area-sampling PDF.
func (pt *PathTracer) misWeightEmissive(hit *geometry.Hit, ray rtmath.Ray, bsdfPDF float64) float64 {
	if pt.Scene.Lights == nil || bsdfPDF <= 0 {
		return 1
	}
	lightPDFSum := 0.0
	for _, l := range pt.Scene.Lights.Lights {
		lightPDFSum += l.PDF(ray.Origin, ray.Direction) * pt.Scene.Lights.SelectionPDF()
	}
	return balanceHeuristic(bsdfPDF, lightPDFSum)
}

func balanceHeuristic(p1, p2 float64) float64 {
	if p1+p2 <= 0 {
		return 0
	}
	return p1 / (p1 + p2)
}

// sampleDirectLighting picks a light, casts a shadow ray, and returns the
// MIS-weighted direct contribution.
func (pt *PathTracer) sampleDirectLighting(hit *geometry.Hit, frame geometry.TangentFrame, localOut rtmath.Vec3, mat material.Material, transport material.Transport, rng *rtmath.PCG) rtmath.Vec3 {
	if pt.Scene.Lights == nil || len(pt.Scene.Lights.Lights) == 0 {
		return rtmath.Vec3{}
	}
	light, selectPDF := pt.Scene.Lights.Pick(rng.Float64())
	if light == nil || selectPDF <= 0 {
		return rtmath.Vec3{}
	}

	sample, ok := light.Sample(hit.Point, rng.Vec2())
	if !ok || sample.PDF <= 0 {
		return rtmath.Vec3{}
	}

	toLight := sample.Point.Subtract(hit.Point)
	dist := toLight.Length()
	if dist <= 1e-8 {
		return rtmath.Vec3{}
	}
	wi := toLight.Multiply(1 / dist)

	localIn := frame.ToLocal(wi)
	if localIn.Y <= 0 {
		return rtmath.Vec3{}
	}

	bias := hit.Normal.Multiply(pt.Scene.Opts.BiasEpsilon)
	if wi.Dot(hit.Normal) < 0 {
		bias = bias.Negate()
	}
	shadowRay := rtmath.NewRayTMax(hit.Point.Add(bias), wi, dist*(1-1e-4))
	if pt.Scene.BVH.Occluded(shadowRay, pt.Scene.Opts, pt.Scene.Opts.HitEpsilon, shadowRay.TMax) {
		return rtmath.Vec3{}
	}

	f := mat.Evaluate(localIn, localOut, rtmath.Vec3{Y: 1}, transport)
	lightPDF := sample.PDF * selectPDF

	var weight float64
	if sample.IsDelta {
		weight = 1
	} else {
		bxdfPDF := bxdfPDFFor(mat, localIn, localOut)
		weight = balanceHeuristic(lightPDF, bxdfPDF)
	}

	return f.MultiplyVec(sample.Color).Multiply(localIn.Y * weight / lightPDF)
}

// bxdfPDFFor asks for the PDF a BxDF sampler would assign to the
// direct-light direction, used for MIS; Lambert is the only material that
// currently exposes this explicitly, so other materials fall back to a
// cosine-weighted estimate as a reasonable stand-in.
func bxdfPDFFor(mat material.Material, localIn, localOut rtmath.Vec3) float64 {
	if l, ok := mat.(*material.Lambert); ok {
		return l.PDF(localIn, localOut)
	}
	if localIn.Y <= 0 {
		return 0
	}
	const pi = 3.14159265358979323846
	return localIn.Y / pi
}

// sssWalkStep advances one step of a random walk through an entered
// subsurface medium: it samples a free-flight distance and compares it
// against the distance to the medium's boundary. Reaching the boundary
// first attenuates throughput by transmittance and reports exited=true so
// the caller resumes ordinary surface handling (the Fresnel split at
// exit). Colliding first attenuates by the scattering Beta, stochastically
// terminates the path on an absorption event, and otherwise redirects the
// ray via the Henyey-Greenstein phase function, reporting exited=false so
// the caller continues the walk. ok=false means the path is dead (either
// absorbed or throughput collapsed to zero).
func (pt *PathTracer) sssWalkStep(mat *material.SSS, currentRay rtmath.Ray, distToBoundary float64, throughput *rtmath.Vec3, rng *rtmath.PCG) (next rtmath.Ray, exited, ok bool) {
	d := mat.SampleDistance(rng.Float64(), rng.Float64())
	if d >= distToBoundary {
		pdf := mat.PDF(mat.Transmittance(distToBoundary))
		if pdf <= 0 {
			return rtmath.Ray{}, false, false
		}
		*throughput = throughput.MultiplyVec(mat.Beta(false, distToBoundary)).Multiply(1 / pdf)
		return currentRay, true, !throughput.IsZero()
	}

	pdf := mat.PDF(mat.Transmittance(d).MultiplyVec(mat.Sigma))
	if pdf <= 0 {
		return rtmath.Ray{}, false, false
	}
	*throughput = throughput.MultiplyVec(mat.Beta(true, d)).Multiply(1 / pdf)
	if throughput.IsZero() {
		return rtmath.Ray{}, false, false
	}

	if rng.Float64() < mat.AbsorptionProb {
		return rtmath.Ray{}, false, false
	}
	*throughput = throughput.Multiply(1 / (1 - mat.AbsorptionProb))

	scatterPoint := currentRay.At(d)
	newDir := material.SampleHenyeyGreenstein(currentRay.Direction, mat.G, rng.Vec2())
	return rtmath.NewRay(scatterPoint, newDir).WithMedium(rtmath.Inside), false, true
}

func tangentFrameFor(hit *geometry.Hit) geometry.TangentFrame {
	if !hit.Tangent.IsZero() {
		return geometry.NewTangentFrameWithTangent(hit.Normal, hit.Tangent)
	}
	return geometry.NewTangentFrame(hit.Normal)
}
