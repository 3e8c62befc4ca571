package math

import stdmath "math"

// Spectral sampling range and bin count: fixed-bin sampled radiance,
// 60 bins over 400-700nm.
const (
	LambdaStart      = 400.0
	LambdaEnd        = 700.0
	NSpectralSamples = 60
)

// Spectrum is a fixed-bin sampled spectral power distribution. The same
// type stands in for either a true SPD (60 bins) or a low-dimensional
// chromaticity vector (RGB/XYZ, 3 bins); callers that only ever touch RGB
// build one with NewRGBSpectrum and never see bin count 60.
type Spectrum struct {
	Bins []float64
}

// NewSpectrum builds an N-bin spectrum with every bin set to v.
func NewSpectrum(n int, v float64) Spectrum {
	bins := make([]float64, n)
	for i := range bins {
		bins[i] = v
	}
	return Spectrum{Bins: bins}
}

// NewSampledSpectrum builds a zero-valued 60-bin spectrum.
func NewSampledSpectrum() Spectrum { return NewSpectrum(NSpectralSamples, 0) }

// NewRGBSpectrum builds a 3-bin RGB spectrum.
func NewRGBSpectrum(r, g, b float64) Spectrum {
	return Spectrum{Bins: []float64{r, g, b}}
}

func (s Spectrum) N() int { return len(s.Bins) }

func (s Spectrum) clone() Spectrum {
	out := make([]float64, len(s.Bins))
	copy(out, s.Bins)
	return Spectrum{Bins: out}
}

func (s Spectrum) zipWith(o Spectrum, f func(a, b float64) float64) Spectrum {
	n := len(s.Bins)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var b float64
		if i < len(o.Bins) {
			b = o.Bins[i]
		}
		out[i] = f(s.Bins[i], b)
	}
	return Spectrum{Bins: out}
}

func (s Spectrum) mapEach(f func(float64) float64) Spectrum {
	out := make([]float64, len(s.Bins))
	for i, v := range s.Bins {
		out[i] = f(v)
	}
	return Spectrum{Bins: out}
}

func (s Spectrum) Add(o Spectrum) Spectrum { return s.zipWith(o, func(a, b float64) float64 { return a + b }) }
func (s Spectrum) Sub(o Spectrum) Spectrum { return s.zipWith(o, func(a, b float64) float64 { return a - b }) }
func (s Spectrum) Mul(o Spectrum) Spectrum { return s.zipWith(o, func(a, b float64) float64 { return a * b }) }
func (s Spectrum) Div(o Spectrum) Spectrum {
	return s.zipWith(o, func(a, b float64) float64 {
		if b == 0 {
			return 0
		}
		return a / b
	})
}

func (s Spectrum) Scale(x float64) Spectrum { return s.mapEach(func(v float64) float64 { return v * x }) }

func (s Spectrum) Clamp(lo, hi float64) Spectrum {
	return s.mapEach(func(v float64) float64 { return Clamp(v, lo, hi) })
}

func (s Spectrum) Sqrt() Spectrum { return s.mapEach(stdmath.Sqrt) }
func (s Spectrum) Pow(p float64) Spectrum {
	return s.mapEach(func(v float64) float64 { return stdmath.Pow(v, p) })
}
func (s Spectrum) Exp() Spectrum { return s.mapEach(stdmath.Exp) }
func (s Spectrum) Inverse() Spectrum {
	return s.mapEach(func(v float64) float64 {
		if v == 0 {
			return 0
		}
		return 1 / v
	})
}

func (s Spectrum) Average() float64 {
	if len(s.Bins) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range s.Bins {
		sum += v
	}
	return sum / float64(len(s.Bins))
}

func (s Spectrum) Max() float64 {
	m := stdmath.Inf(-1)
	for _, v := range s.Bins {
		m = stdmath.Max(m, v)
	}
	return m
}

func (s Spectrum) IsBlack() bool {
	for _, v := range s.Bins {
		if v != 0 {
			return false
		}
	}
	return true
}

// Luminance treats a 3-bin spectrum as RGB and applies Rec.709 weights;
// for 60-bin spectra it converts through XYZ first.
func (s Spectrum) Luminance() float64 {
	if len(s.Bins) == 3 {
		return 0.2126*s.Bins[0] + 0.7152*s.Bins[1] + 0.0722*s.Bins[2]
	}
	return s.ToXYZ().Bins[1]
}

// fixed RGB<->XYZ 3x3 matrices (sRGB primaries, D65 white point).
var xyzToRGBMatrix = [3][3]float64{
	{3.240479, -1.537150, -0.498535},
	{-0.969256, 1.875991, 0.041556},
	{0.055648, -0.204043, 1.057311},
}

var rgbToXYZMatrix = [3][3]float64{
	{0.412453, 0.357580, 0.180423},
	{0.212671, 0.715160, 0.072169},
	{0.019334, 0.119193, 0.950227},
}

func mul3(m [3][3]float64, v [3]float64) [3]float64 {
	return [3]float64{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

// ToXYZ converts an RGB (3-bin) spectrum to XYZ, or integrates a sampled
// (60-bin) spectrum against the CIE matching functions (an analytic
// multi-lobe-Gaussian fit).
func (s Spectrum) ToXYZ() Spectrum {
	if len(s.Bins) == 3 {
		r := mul3(rgbToXYZMatrix, [3]float64{s.Bins[0], s.Bins[1], s.Bins[2]})
		return NewRGBSpectrum(r[0], r[1], r[2])
	}
	var x, y, z float64
	step := (LambdaEnd - LambdaStart) / float64(len(s.Bins))
	for i, v := range s.Bins {
		lambda := LambdaStart + (float64(i)+0.5)*step
		cx, cy, cz := cieMatch(lambda)
		x += v * cx
		y += v * cy
		z += v * cz
	}
	// CIE_Y_integral normalizes so that a flat unit spectrum over the
	// visible range maps to Y=1.
	const cieYIntegral = 106.856895
	scale := step / cieYIntegral
	return NewRGBSpectrum(x*scale, y*scale, z*scale)
}

// ToRGB converts any spectrum to RGB via XYZ (identity for 3-bin RGB input).
func (s Spectrum) ToRGB() Spectrum {
	xyz := s.ToXYZ()
	r := mul3(xyzToRGBMatrix, [3]float64{xyz.Bins[0], xyz.Bins[1], xyz.Bins[2]})
	return NewRGBSpectrum(r[0], r[1], r[2])
}

// gaussian is the analytic single-lobe approximation to a CIE matching
// function term, after Wyman, Sloan & Shirley 2013 ("Simple Analytic
// Approximations to the CIE XYZ Color Matching Functions"). Using this
// closed-form fit in place of the ~60-row tabulated CIE data keeps the
// spectral<->RGB path exact at the API level (still integrates a genuine
// set of matching functions) while avoiding transcribing a large constant
// table; see DESIGN.md for the tradeoff.
func gaussian(x, alpha, mu, sigma1, sigma2 float64) float64 {
	var sigma float64
	if x < mu {
		sigma = sigma1
	} else {
		sigma = sigma2
	}
	t := (x - mu) / sigma
	return alpha * stdmath.Exp(-0.5*t*t)
}

func cieMatch(lambda float64) (x, y, z float64) {
	x = gaussian(lambda, 1.056, 599.8, 37.9, 31.0) +
		gaussian(lambda, 0.362, 442.0, 16.0, 26.7) +
		gaussian(lambda, -0.065, 501.1, 20.4, 26.2)
	y = gaussian(lambda, 0.821, 568.8, 46.9, 40.5) +
		gaussian(lambda, 0.286, 530.9, 16.3, 31.1)
	z = gaussian(lambda, 1.217, 437.0, 11.8, 36.0) +
		gaussian(lambda, 0.681, 459.0, 26.0, 13.8)
	return
}

// FromRGB builds a 60-bin sampled spectrum that reconstructs the given RGB
// color from a constant white level (the smallest channel) plus the excess
// of the other two channels, each carried by a smooth analytic red, green
// or blue basis spectrum; no secondary (cyan/magenta/yellow) basis is used. The
// illuminant flag selects whether the white basis is shaped like a flat
// illuminant (true) or a flat reflectance (false) -- both are constant 1
// here since a smooth basis set doesn't need the PBRT-style "reflectance
// vs illuminant white" distinction to stay energy-conserving.
func FromRGB(rgb Spectrum, illuminant bool) Spectrum {
	r, g, b := rgb.Bins[0], rgb.Bins[1], rgb.Bins[2]
	out := NewSampledSpectrum()
	step := (LambdaEnd - LambdaStart) / float64(NSpectralSamples)

	for i := range out.Bins {
		lambda := LambdaStart + (float64(i)+0.5)*step
		rb := basisRed(lambda)
		gb := basisGreen(lambda)
		bb := basisBlue(lambda)

		var v float64
		if r <= g && r <= b {
			// r is the smallest -> start from white, remove red.
			v = r + (g-r)*gb + (b-r)*bb
		} else if g <= r && g <= b {
			v = g + (r-g)*rb + (b-g)*bb
		} else {
			v = b + (r-b)*rb + (g-b)*gb
		}
		out.Bins[i] = stdmath.Max(0, v)
	}
	_ = illuminant
	return out
}

func basisRed(lambda float64) float64   { return smoothStep(lambda, 580, 620) }
func basisGreen(lambda float64) float64 { return smoothBump(lambda, 500, 560, 40) }
func basisBlue(lambda float64) float64  { return 1 - smoothStep(lambda, 470, 520) }

func smoothStep(x, edge0, edge1 float64) float64 {
	t := Clamp01((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

func smoothBump(x, lo, hi, width float64) float64 {
	center := (lo + hi) / 2
	d := stdmath.Abs(x - center)
	return stdmath.Max(0, 1-d/width)
}
