// Package material implements the BxDF/BCSDF model: Lambert, GGX
// microfacet reflection/refraction, dipole and volumetric subsurface
// scattering, and a path-traced Marschner-style hair BCSDF, all behind a
// single evaluate/sample contract. The integrator type-asserts only *SSS
// (for the random walk) and *Lambert (for its MIS density).
package material

import (
	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

// TransportType tags which scattering event produced (or should produce)
// a bounce, used both to select the correct BxDF branch and to let the
// integrator choose direct-light strategies.
type TransportType uint8

const (
	Reflect TransportType = iota
	Refract
	SSSTransport
	Emit
	HairTransport
	None
)

// Medium distinguishes the side of a refractive interface a ray currently
// occupies, mirroring rtmath.Ray's medium tag.
type Medium = rtmath.Medium

// Transport bundles the transport tag with the medium a bounce continues in.
type Transport struct {
	Type   TransportType
	Medium Medium
}

// Material is the single contract every BxDF/BCSDF implements. All
// directions are expressed in the local tangent frame, with the shading
// normal at (0,1,0). Lambert, GGX, SSS, the dipole model, and hair all
// evaluate and sample through this one signature rather than each
// exposing a differently-shaped scatter/evaluate/pdf split.
type Material interface {
	// IsMaterial satisfies geometry.MaterialRef without geometry importing
	// this package.
	IsMaterial()

	// Evaluate returns the BxDF value for a given incoming/outgoing
	// direction pair and microfacet normal, in the given transport.
	Evaluate(omegaIn, omegaOut, mfNormal rtmath.Vec3, t Transport) rtmath.Vec3

	// Sample importance-samples an incoming direction given the outgoing
	// direction, returning the sampled direction, the microfacet normal
	// used, its PDF, and the transport the bounce continues in.
	Sample(omegaOut rtmath.Vec3, t Transport, u rtmath.Vec3) (omegaIn, mfNormal rtmath.Vec3, pdf float64, next Transport, ok bool)

	// Emission returns the material's emitted radiance (zero for
	// non-emissive materials).
	Emission() rtmath.Vec3

	// IsEmissive reports whether Emission can be non-zero.
	IsEmissive() bool
}

// base factors the reflectance/transmittance/emittance triple and default
// transport tag shared by every concrete material.
type base struct {
	Refl, Refr, Emittance rtmath.Vec3
	DefaultTransport      TransportType
}

func (base) IsMaterial() {}

func (b base) Emission() rtmath.Vec3 { return b.Emittance }
func (b base) IsEmissive() bool      { return !b.Emittance.IsZero() }

// IsRefractive reports whether a transport type represents a ray that
// continues inside the medium rather than bouncing off its surface.
func IsRefractive(t TransportType) bool { return t == Refract || t == SSSTransport }
