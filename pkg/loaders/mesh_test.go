package loaders

import (
	"os"
	"path/filepath"
	"testing"

	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

type fakeMaterial struct{}

func (fakeMaterial) IsMaterial() {}

const asciiPlyQuad = `ply
format ascii 1.0
element vertex 4
property float x
property float y
property float z
element face 2
property list uchar int vertex_indices
end_header
0 0 0
1 0 0
1 1 0
0 1 0
3 0 1 2
3 0 2 3
`

func TestLoadMeshASCIIFanTriangulates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.ply")
	if err := os.WriteFile(path, []byte(asciiPlyQuad), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	shapes, err := LoadMesh(path, rtmath.IdentityTransform(), fakeMaterial{})
	if err != nil {
		t.Fatalf("LoadMesh failed: %v", err)
	}
	if len(shapes) != 2 {
		t.Fatalf("LoadMesh returned %d triangles, want 2", len(shapes))
	}
}

const asciiPlyWithNormals = `ply
format ascii 1.0
element vertex 3
property float x
property float y
property float z
property float nx
property float ny
property float nz
element face 1
property list uchar int vertex_indices
end_header
0 0 0 0 0 1
1 0 0 0 0 1
0 1 0 0 0 1
3 0 1 2
`

func TestLoadMeshASCIIWithNormals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.ply")
	if err := os.WriteFile(path, []byte(asciiPlyWithNormals), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	shapes, err := LoadMesh(path, rtmath.IdentityTransform(), fakeMaterial{})
	if err != nil {
		t.Fatalf("LoadMesh failed: %v", err)
	}
	if len(shapes) != 1 {
		t.Fatalf("LoadMesh returned %d triangles, want 1", len(shapes))
	}
}

func TestLoadMeshRejectsUnsupportedFormat(t *testing.T) {
	const header = "ply\nformat binary_big_endian 1.0\nelement vertex 0\nend_header\n"
	path := filepath.Join(t.TempDir(), "bad.ply")
	os.WriteFile(path, []byte(header), 0o644)
	if _, err := LoadMesh(path, rtmath.IdentityTransform(), fakeMaterial{}); err == nil {
		t.Errorf("expected an error for an unsupported PLY format")
	}
}

func TestLoadMeshMissingFile(t *testing.T) {
	if _, err := LoadMesh(filepath.Join(t.TempDir(), "missing.ply"), rtmath.IdentityTransform(), fakeMaterial{}); err == nil {
		t.Errorf("expected an error for a missing mesh file")
	}
}
