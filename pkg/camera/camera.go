// Package camera builds perspective and orthographic cameras: a raster
// point maps to a world-space ray via a fixed chain of transforms
// (raster -> camera -> world), with optional thin-lens depth of field.
package camera

import (
	stdmath "math"

	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

// Config mirrors the fields a scene description supplies for a camera:
// placement (Center/LookAt/Up), the perspective frustum (Width aka image
// width in pixels paired with AspectRatio, VFov in degrees), and the
// thin-lens depth-of-field parameters (Aperture diameter, FocusDistance).
type Config struct {
	Center, LookAt, Up rtmath.Vec3
	Width              int
	AspectRatio        float64
	VFov               float64
	Aperture           float64
	FocusDistance      float64
}

// Camera generates world-space rays from raster-space pixel coordinates.
type Camera struct {
	cfg         Config
	camToWorld  rtmath.Transform
	rasterToCam rtmath.Transform
	height      int
	tMax        float64
	ortho       bool
}

// NewPerspectiveCamera builds a raster->camera->world ray-generation
// chain for a standard perspective frustum: cam->ndc is a depth-remapping
// projection parameterized by vertical FOV and aspect ratio; raster->camera
// is the inverse of ndc->raster composed after cam->ndc.
func NewPerspectiveCamera(cfg Config) *Camera {
	const near, far = 0.01, 1000.0

	height := int(float64(cfg.Width) / cfg.AspectRatio)
	if height < 1 {
		height = 1
	}

	camToWorld := rtmath.LookAt(cfg.Center, cfg.LookAt, cfg.Up)
	camToNDC := rtmath.Perspective(cfg.VFov, cfg.AspectRatio, near, far)
	ndcToRaster := rtmath.NDCToRaster(
		rtmath.NewVec2(float64(cfg.Width), float64(height)),
		rtmath.NewVec2(2, 2),
	)
	// raster->camera = (ndc->raster . cam->ndc)^-1: cam->ndc applied
	// first, then ndc->raster.
	camToRaster := camToNDC.Compose(ndcToRaster)
	rasterToCam := camToRaster.Inverse()

	tMax := (far - near) / stdmath.Cos(cfg.VFov*stdmath.Pi/180.0/2.0)

	return &Camera{cfg: cfg, camToWorld: camToWorld, rasterToCam: rasterToCam, height: height, tMax: tMax}
}

// NewOrthographicCamera builds the analogous chain for a fixed-width
// orthographic view (no perspective divide).
func NewOrthographicCamera(cfg Config) *Camera {
	const near, far = 0.01, 1000.0

	height := int(float64(cfg.Width) / cfg.AspectRatio)
	if height < 1 {
		height = 1
	}

	camToWorld := rtmath.LookAt(cfg.Center, cfg.LookAt, cfg.Up)
	camToNDC := rtmath.Orthographic(near, far)
	ndcToRaster := rtmath.NDCToRaster(
		rtmath.NewVec2(float64(cfg.Width), float64(height)),
		rtmath.NewVec2(2, 2),
	)
	camToRaster := camToNDC.Compose(ndcToRaster)
	rasterToCam := camToRaster.Inverse()

	return &Camera{cfg: cfg, camToWorld: camToWorld, rasterToCam: rasterToCam, height: height, tMax: far - near, ortho: true}
}

func (c *Camera) Height() int { return c.height }
func (c *Camera) Width() int  { return c.cfg.Width }

// GenerateRay maps a raster-space sample point (subpixel jitter already
// applied by the caller) to a world-space ray. lensU/lensV are an
// independent [0,1)^2 pair consumed only when Aperture > 0.
func (c *Camera) GenerateRay(rasterX, rasterY, lensU, lensV float64) rtmath.Ray {
	camPoint := c.rasterToCam.Point(rtmath.NewVec3(rasterX, rasterY, 0))
	if c.ortho {
		// Orthographic rays start on the camera plane and all travel along
		// the camera's forward (+Z) axis.
		origin := c.camToWorld.Point(rtmath.NewVec3(camPoint.X, camPoint.Y, 0))
		r := rtmath.NewRay(origin, c.camToWorld.Vector(rtmath.Vec3{Z: 1}).Normalize())
		r.TMax = c.tMax
		return r
	}
	camDir := camPoint.Normalize()

	origin := c.cfg.Center
	direction := c.camToWorld.Vector(camDir).Normalize()

	if c.cfg.Aperture > 0 && c.cfg.FocusDistance > 0 {
		focusPoint := origin.Add(direction.Multiply(c.cfg.FocusDistance))

		forward := c.cfg.LookAt.Subtract(c.cfg.Center).Normalize()
		right := c.cfg.Up.Normalize().Cross(forward).Normalize()
		up := forward.Cross(right)

		lens := rtmath.UniformSampleDisk(rtmath.NewVec2(lensU, lensV)).Multiply(c.cfg.Aperture / 2)
		origin = origin.Add(right.Multiply(lens.X)).Add(up.Multiply(lens.Y))
		direction = focusPoint.Subtract(origin).Normalize()
	}

	r := rtmath.NewRay(origin, direction)
	r.TMax = c.tMax
	return r
}
