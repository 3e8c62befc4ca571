package loaders

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

func TestSaveImageRejectsMismatchedBuffer(t *testing.T) {
	err := SaveImage(filepath.Join(t.TempDir(), "out.png"), 4, 4, make([]rtmath.Vec3, 3))
	if err == nil {
		t.Fatalf("expected an error for a mismatched pixel buffer length")
	}
}

func TestSaveImageWritesDecodablePNG(t *testing.T) {
	w, h := 3, 2
	pixels := make([]rtmath.Vec3, w*h)
	pixels[0] = rtmath.NewVec3(1, 0, 0)
	pixels[1] = rtmath.NewVec3(0, 1, 0)

	path := filepath.Join(t.TempDir(), "out.png")
	if err := SaveImage(path, w, h, pixels); err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("could not reopen saved image: %v", err)
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		t.Fatalf("saved file is not a valid PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != w || b.Dy() != h {
		t.Errorf("decoded image size = %dx%d, want %dx%d", b.Dx(), b.Dy(), w, h)
	}

	r, _, _, _ := img.At(0, 0).RGBA()
	if r < 0xf000 {
		t.Errorf("red channel at (0,0) = %x, want near full intensity after gamma", r)
	}
}

func TestToByteClampsOutOfRangeInput(t *testing.T) {
	if got := toByte(-1, 1/2.2); got != 0 {
		t.Errorf("toByte(-1) = %d, want 0", got)
	}
	if got := toByte(2, 1/2.2); got != 255 {
		t.Errorf("toByte(2) = %d, want 255", got)
	}
}

func TestLoadEnvironmentTextureResizesToRequestedDimensions(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 4))
	path := filepath.Join(t.TempDir(), "env.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create source image: %v", err)
	}
	if err := png.Encode(f, src); err != nil {
		t.Fatalf("encode source image: %v", err)
	}
	f.Close()

	tex, err := LoadEnvironmentTexture(path, 4, 2)
	if err != nil {
		t.Fatalf("LoadEnvironmentTexture failed: %v", err)
	}
	if tex.Width != 4 || tex.Height != 2 {
		t.Errorf("resized texture = %dx%d, want 4x2", tex.Width, tex.Height)
	}
	if len(tex.Pixels) != 4*2 {
		t.Errorf("pixel buffer length = %d, want 8", len(tex.Pixels))
	}
}
