// Package scene assembles the BVH, materials, lights, camera and
// environment into a single immutable, read-only-after-build structure
// shared by every render worker.
package scene

import (
	stdmath "math"

	"github.com/df07/go-progressive-raytracer/pkg/camera"
	"github.com/df07/go-progressive-raytracer/pkg/geometry"
	"github.com/df07/go-progressive-raytracer/pkg/lights"
	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

// Environment supplies background radiance for rays that escape the
// scene: either a constant color, or a lat-long-mapped texture sampled by
// ray direction.
type Environment struct {
	Constant rtmath.Vec3
	Texture  *EnvironmentTexture
}

// EnvironmentTexture is a lat-long (equirectangular) HDR environment map.
type EnvironmentTexture struct {
	Width, Height int
	Pixels        []rtmath.Vec3 // row-major, top-left origin
}

// Sample looks up radiance for a world-space direction via the standard
// spherical (lat-long) mapping: azimuth to U, polar angle to V.
func (e *EnvironmentTexture) Sample(dir rtmath.Vec3) rtmath.Vec3 {
	if e == nil || e.Width == 0 || e.Height == 0 {
		return rtmath.Vec3{}
	}
	d := dir.Normalize()
	u := (stdmath.Atan2(-d.Z, d.X)/(2*stdmath.Pi) + 0.5)
	v := stdmath.Acos(rtmath.Clamp(d.Y, -1, 1)) / stdmath.Pi

	px := int(u * float64(e.Width))
	py := int(v * float64(e.Height))
	if px < 0 {
		px = 0
	}
	if px >= e.Width {
		px = e.Width - 1
	}
	if py < 0 {
		py = 0
	}
	if py >= e.Height {
		py = e.Height - 1
	}
	return e.Pixels[py*e.Width+px]
}

func (e *Environment) Radiance(dir rtmath.Vec3) rtmath.Vec3 {
	if e.Texture != nil {
		return e.Texture.Sample(dir)
	}
	return e.Constant
}

// Scene bundles everything an integrator needs to trace a path: the
// accelerated primitive set, the light sampler, the camera, and the
// background environment. Built once at load time and never mutated
// afterward, so workers can share it without locking.
type Scene struct {
	BVH         *geometry.BVH
	Lights      *lights.Sampler
	Camera      *camera.Camera
	Environment Environment
	Opts        geometry.IntersectOpts
}

func NewScene(bvh *geometry.BVH, lightSampler *lights.Sampler, cam *camera.Camera, env Environment, opts geometry.IntersectOpts) *Scene {
	return &Scene{BVH: bvh, Lights: lightSampler, Camera: cam, Environment: env, Opts: opts}
}
