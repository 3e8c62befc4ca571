package loaders

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/go-progressive-raytracer/pkg/geometry"
	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

func writeHairFixture(t *testing.T, header hairHeader, points []float32) string {
	t.Helper()
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, header); err != nil {
		t.Fatalf("encode header: %v", err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, points); err != nil {
		t.Fatalf("encode points: %v", err)
	}
	path := filepath.Join(t.TempDir(), "strand.hair")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadHairDefaultSegmentsProducesBezierChain(t *testing.T) {
	header := hairHeader{
		Signature:       [4]byte{'H', 'A', 'I', 'R'},
		NumStrands:      1,
		NumPoints:       4,
		Flags:           hairHasPoints,
		DefaultSegments: 3, // 4 points => 3 Bezier segments
		DefaultThickness: 0.1,
	}
	points := []float32{
		0, 0, 0,
		1, 0, 0,
		2, 0, 0,
		3, 0, 0,
	}
	path := writeHairFixture(t, header, points)

	strandBVH, err := LoadHair(path, rtmath.IdentityTransform(), 1, fakeMaterial{})
	if err != nil {
		t.Fatalf("LoadHair failed: %v", err)
	}

	bounds := strandBVH.WorldBounds()
	want := geometry.NewBounds3FromPoints(rtmath.NewVec3(0, -0.05, -0.05), rtmath.NewVec3(3, 0.05, 0.05))
	if bounds.Min.X > want.Min.X+1e-6 || bounds.Max.X < want.Max.X-1e-6 {
		t.Errorf("sub-BVH bounds %v don't span the strand's control points (want roughly %v)", bounds, want)
	}

	// A ray crossing the middle of the strand should hit one of its three
	// Bezier segments, confirming they were packed into the sub-BVH rather
	// than dropped.
	ray := rtmath.NewRay(rtmath.NewVec3(1.5, 1, 0), rtmath.NewVec3(0, -1, 0))
	if _, ok := strandBVH.Intersect(ray, geometry.IntersectOpts{}, 1e-4, 10); !ok {
		t.Errorf("expected a ray through the strand's midpoint to hit the sub-BVH")
	}
}

func TestLoadHairRejectsBadSignature(t *testing.T) {
	header := hairHeader{Signature: [4]byte{'N', 'O', 'P', 'E'}, NumStrands: 0, NumPoints: 0}
	path := writeHairFixture(t, header, nil)
	if _, err := LoadHair(path, rtmath.IdentityTransform(), 1, fakeMaterial{}); err == nil {
		t.Errorf("expected an error for a bad cyHairFile signature")
	}
}

func TestLoadHairRejectsMissingPointArray(t *testing.T) {
	header := hairHeader{Signature: [4]byte{'H', 'A', 'I', 'R'}, NumStrands: 1, NumPoints: 2, Flags: 0}
	path := writeHairFixture(t, header, nil)
	if _, err := LoadHair(path, rtmath.IdentityTransform(), 1, fakeMaterial{}); err == nil {
		t.Errorf("expected an error when the points flag isn't set")
	}
}

func TestClampIdxBoundaries(t *testing.T) {
	if got := clampIdx(-1, 5); got != 0 {
		t.Errorf("clampIdx(-1,5) = %d, want 0", got)
	}
	if got := clampIdx(5, 5); got != 4 {
		t.Errorf("clampIdx(5,5) = %d, want 4", got)
	}
	if got := clampIdx(2, 5); got != 2 {
		t.Errorf("clampIdx(2,5) = %d, want 2", got)
	}
}
