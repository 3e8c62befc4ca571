package loaders

import (
	"encoding/binary"
	"os"

	"github.com/pkg/errors"

	"github.com/df07/go-progressive-raytracer/pkg/geometry"
	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

// hairHeader mirrors the fixed 128-byte cyHairFile header: a 4-byte
// magic, then strand/point counts, a bit-flag field selecting which
// optional per-point arrays follow, and scene-wide defaults used wherever
// a flag is unset.
type hairHeader struct {
	Signature           [4]byte
	NumStrands          uint32
	NumPoints            uint32
	Flags                uint32
	DefaultSegments      uint32
	DefaultThickness     float32
	DefaultTransparency  float32
	DefaultColor         [3]float32
	FileInfo             [88]byte
}

const (
	hairHasSegments     = 1 << 0
	hairHasPoints       = 1 << 1
	hairHasThickness    = 1 << 2
	hairHasTransparency = 1 << 3
	hairHasColor        = 1 << 4
)

// LoadHair reads a cyHairFile-format strand file, converts each strand's
// Catmull-Rom control polyline into a chain of CubicBezierCurve shapes via
// geometry.CatmullRomToBezier, and packs the whole (typically
// many-thousand-segment) curve set into its own sub-BVH rather than handing
// every segment to the top-level scene BVH individually -- the scene BVH
// then sees one aggregate primitive per hair file instead of one per
// strand segment, keeping its own build cost independent of strand count.
func LoadHair(path string, toWorld rtmath.Transform, thicknessScale float64, mat geometry.MaterialRef) (geometry.Shape, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open hair file %q", path)
	}
	defer file.Close()

	var header hairHeader
	if err := binary.Read(file, binary.LittleEndian, &header); err != nil {
		return nil, errors.Wrapf(err, "read hair header %q", path)
	}
	if string(header.Signature[:]) != "HAIR" {
		return nil, errors.Errorf("%q is not a cyHairFile (bad signature)", path)
	}

	segments := make([]uint16, header.NumStrands)
	if header.Flags&hairHasSegments != 0 {
		if err := binary.Read(file, binary.LittleEndian, &segments); err != nil {
			return nil, errors.Wrapf(err, "read hair segment counts %q", path)
		}
	} else {
		for i := range segments {
			segments[i] = uint16(header.DefaultSegments)
		}
	}

	if header.Flags&hairHasPoints == 0 {
		return nil, errors.Errorf("%q has no point array", path)
	}
	points := make([]float32, header.NumPoints*3)
	if err := binary.Read(file, binary.LittleEndian, &points); err != nil {
		return nil, errors.Wrapf(err, "read hair points %q", path)
	}

	var thickness []float32
	if header.Flags&hairHasThickness != 0 {
		thickness = make([]float32, header.NumPoints)
		if err := binary.Read(file, binary.LittleEndian, &thickness); err != nil {
			return nil, errors.Wrapf(err, "read hair thickness %q", path)
		}
	}

	// Transparency and per-point color arrays may follow but aren't used
	// by the renderer's hair material (sigma_a is derived once per
	// strand, not carried per point), so they're skipped without being
	// decoded.
	_ = hairHasTransparency
	_ = hairHasColor

	var shapes []geometry.Shape
	pointAt := func(i uint32) rtmath.Vec3 {
		return rtmath.NewVec3(float64(points[3*i]), float64(points[3*i+1]), float64(points[3*i+2]))
	}
	radiusAt := func(i uint32) float64 {
		if thickness == nil {
			return float64(header.DefaultThickness) * thicknessScale / 2
		}
		return float64(thickness[i]) * thicknessScale / 2
	}

	var pointOffset uint32
	for s := uint32(0); s < header.NumStrands; s++ {
		n := uint32(segments[s]) + 1
		if n < 2 {
			pointOffset += n
			continue
		}
		strand := make([]rtmath.Vec3, n)
		for i := uint32(0); i < n; i++ {
			strand[i] = pointAt(pointOffset + i)
		}

		for i := uint32(0); i+1 < n; i++ {
			prev := strand[clampIdx(int(i)-1, int(n))]
			p0 := strand[i]
			p1 := strand[i+1]
			next := strand[clampIdx(int(i)+2, int(n))]

			b0, b1, b2, b3 := geometry.CatmullRomToBezier(prev, p0, p1, next)
			r0 := radiusAt(pointOffset + i)
			r1 := radiusAt(pointOffset + i + 1)
			shapes = append(shapes, geometry.NewCubicBezierCurve(toWorld, b0, b1, b2, b3, r0, r1, mat))
		}
		pointOffset += n
	}

	return geometry.NewBVH(shapes), nil
}

// clampIdx clamps a Catmull-Rom neighbor index to the strand's valid
// range, duplicating the end control point at either boundary -- the
// usual treatment for open (non-looping) strand polylines.
func clampIdx(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
