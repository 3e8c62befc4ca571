// Package loaders holds everything the renderer needs to get scene
// descriptions, mesh/hair assets and images in and out of process --
// none of it touched by the core tracing packages.
package loaders

import (
	"image"
	"image/color"
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	stdmath "math"
	"os"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder

	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
	"github.com/df07/go-progressive-raytracer/pkg/scene"
)

// LoadEnvironmentTexture decodes an on-disk image (PNG/JPEG/BMP/TIFF) into
// a lat-long environment map. If wantWidth/wantHeight are both positive
// and the decoded image doesn't match, it's resized with
// disintegration/imaging's Lanczos filter before conversion -- environment
// maps in the wild rarely arrive at the resolution a scene expects.
func LoadEnvironmentTexture(path string, wantWidth, wantHeight int) (*scene.EnvironmentTexture, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open environment map %q", path)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, errors.Wrapf(err, "decode environment map %q", path)
	}

	bounds := img.Bounds()
	if wantWidth > 0 && wantHeight > 0 && (bounds.Dx() != wantWidth || bounds.Dy() != wantHeight) {
		img = imaging.Resize(img, wantWidth, wantHeight, imaging.Lanczos)
		bounds = img.Bounds()
	}

	width, height := bounds.Dx(), bounds.Dy()
	pixels := make([]rtmath.Vec3, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			pixels[y*width+x] = rtmath.NewVec3(float64(r)/65535.0, float64(g)/65535.0, float64(b)/65535.0)
		}
	}

	return &scene.EnvironmentTexture{Width: width, Height: height, Pixels: pixels}, nil
}

// LoadTexture is LoadEnvironmentTexture without a target resolution, for
// surface textures that don't need resampling.
func LoadTexture(path string) (*scene.EnvironmentTexture, error) {
	return LoadEnvironmentTexture(path, 0, 0)
}

// SaveImage writes a row-major, top-left-origin Float RGB buffer to path
// as a PNG, clamping each channel to [0,1] and applying the conventional
// 1/2.2 display gamma. The accumulator itself never clamps -- radiance
// can exceed 1 between bounces -- so this is strictly an output-time
// tonemap.
func SaveImage(path string, width, height int, pixels []rtmath.Vec3) error {
	if len(pixels) != width*height {
		return errors.Errorf("pixel buffer has %d entries, want %d (%dx%d)", len(pixels), width*height, width, height)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	const invGamma = 1.0 / 2.2
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := pixels[y*width+x]
			img.SetRGBA(x, y, color.RGBA{
				R: toByte(c.X, invGamma),
				G: toByte(c.Y, invGamma),
				B: toByte(c.Z, invGamma),
				A: 255,
			})
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create output image %q", path)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return errors.Wrapf(err, "encode output image %q", path)
	}
	return nil
}

func toByte(v, invGamma float64) uint8 {
	v = rtmath.Clamp01(v)
	v = stdmath.Pow(v, invGamma)
	return uint8(v*255 + 0.5)
}
