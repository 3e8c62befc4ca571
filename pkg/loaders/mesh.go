package loaders

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/df07/go-progressive-raytracer/pkg/geometry"
	rtmath "github.com/df07/go-progressive-raytracer/pkg/math"
)

// plyProperty is one `property` line from a PLY header.
type plyProperty struct {
	name     string
	isList   bool
	listType string
}

// plyHeader is the parsed preamble of a PLY file up to end_header.
type plyHeader struct {
	format      string
	vertexCount int
	faceCount   int
	vertexProps []plyProperty

	hasNormal, hasUV bool
	nIdx             [3]int
	uvIdx            [2]int
}

// LoadMesh reads a PLY file (ASCII or binary_little_endian) and returns
// one triangle Shape per face, transformed by toWorld and carrying mat.
// Per-vertex normals are used when present; otherwise each triangle gets
// a flat face normal.
func LoadMesh(path string, toWorld rtmath.Transform, mat geometry.MaterialRef) ([]geometry.Shape, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open mesh file %q", path)
	}
	defer file.Close()

	header, headerBytes, err := parsePLYHeader(file)
	if err != nil {
		return nil, errors.Wrapf(err, "parse PLY header %q", path)
	}

	switch header.format {
	case "ascii":
		if _, err := file.Seek(int64(headerBytes), io.SeekStart); err != nil {
			return nil, errors.Wrapf(err, "seek past PLY header %q", path)
		}
		return readPLYASCII(file, header, toWorld, mat)
	case "binary_little_endian":
		if _, err := file.Seek(int64(headerBytes), io.SeekStart); err != nil {
			return nil, errors.Wrapf(err, "seek past PLY header %q", path)
		}
		return readPLYBinaryLE(file, header, toWorld, mat)
	default:
		return nil, errors.Errorf("unsupported PLY format %q in %q", header.format, path)
	}
}

func parsePLYHeader(r io.Reader) (*plyHeader, int, error) {
	header := &plyHeader{}
	scanner := bufio.NewScanner(r)
	var bytesRead int
	currentElement := ""

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		bytesRead += len(scanner.Bytes()) + 1
		if line == "end_header" {
			break
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "format":
			if len(fields) >= 2 {
				header.format = fields[1]
			}
		case "element":
			if len(fields) < 3 {
				continue
			}
			currentElement = fields[1]
			count, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, 0, errors.Errorf("invalid element count %q", fields[2])
			}
			switch currentElement {
			case "vertex":
				header.vertexCount = count
			case "face":
				header.faceCount = count
			}
		case "property":
			if currentElement != "vertex" {
				continue
			}
			prop := plyProperty{}
			if fields[1] == "list" {
				prop.isList = true
				prop.listType = fields[2]
				prop.name = fields[4]
			} else {
				prop.name = fields[2]
			}
			header.vertexProps = append(header.vertexProps, prop)
			idx := len(header.vertexProps) - 1
			switch prop.name {
			case "nx":
				header.hasNormal = true
				header.nIdx[0] = idx
			case "ny":
				header.nIdx[1] = idx
			case "nz":
				header.nIdx[2] = idx
			case "u", "s":
				header.hasUV = true
				header.uvIdx[0] = idx
			case "v", "t":
				header.uvIdx[1] = idx
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, err
	}
	return header, bytesRead, nil
}

type plyVertexData struct {
	pos     []rtmath.Vec3
	normal  []rtmath.Vec3
	uv      []rtmath.Vec2
}

func buildTriangles(verts plyVertexData, faces [][3]int, toWorld rtmath.Transform, mat geometry.MaterialRef) []geometry.Shape {
	shapes := make([]geometry.Shape, 0, len(faces))
	hasNormal := len(verts.normal) == len(verts.pos) && len(verts.pos) > 0
	hasUV := len(verts.uv) == len(verts.pos) && len(verts.pos) > 0

	for _, f := range faces {
		p0 := toWorld.Point(verts.pos[f[0]])
		p1 := toWorld.Point(verts.pos[f[1]])
		p2 := toWorld.Point(verts.pos[f[2]])

		if !hasNormal {
			shapes = append(shapes, geometry.NewTriangle(p0, p1, p2, mat))
			continue
		}

		n0 := toWorld.Normal(verts.normal[f[0]]).Normalize()
		n1 := toWorld.Normal(verts.normal[f[1]]).Normalize()
		n2 := toWorld.Normal(verts.normal[f[2]]).Normalize()

		var uv0, uv1, uv2 rtmath.Vec2
		if hasUV {
			uv0, uv1, uv2 = verts.uv[f[0]], verts.uv[f[1]], verts.uv[f[2]]
		} else {
			uv0, uv1, uv2 = rtmath.NewVec2(0, 0), rtmath.NewVec2(1, 0), rtmath.NewVec2(0, 1)
		}
		shapes = append(shapes, geometry.NewTriangleShaded(p0, p1, p2, n0, n1, n2, uv0, uv1, uv2, mat))
	}
	return shapes
}

func readPLYASCII(file *os.File, header *plyHeader, toWorld rtmath.Transform, mat geometry.MaterialRef) ([]geometry.Shape, error) {
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024)

	verts := plyVertexData{pos: make([]rtmath.Vec3, 0, header.vertexCount)}
	if header.hasNormal {
		verts.normal = make([]rtmath.Vec3, 0, header.vertexCount)
	}
	if header.hasUV {
		verts.uv = make([]rtmath.Vec2, 0, header.vertexCount)
	}

	for i := 0; i < header.vertexCount; i++ {
		if !scanner.Scan() {
			return nil, errors.Errorf("truncated vertex data at vertex %d", i)
		}
		fields := strings.Fields(scanner.Text())
		nums := make([]float64, len(fields))
		for j, s := range fields {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "parse vertex %d field %d", i, j)
			}
			nums[j] = v
		}
		verts.pos = append(verts.pos, rtmath.NewVec3(nums[0], nums[1], nums[2]))
		if header.hasNormal {
			verts.normal = append(verts.normal, rtmath.NewVec3(nums[header.nIdx[0]], nums[header.nIdx[1]], nums[header.nIdx[2]]))
		}
		if header.hasUV {
			verts.uv = append(verts.uv, rtmath.NewVec2(nums[header.uvIdx[0]], nums[header.uvIdx[1]]))
		}
	}

	faces := make([][3]int, 0, header.faceCount)
	for i := 0; i < header.faceCount; i++ {
		if !scanner.Scan() {
			return nil, errors.Errorf("truncated face data at face %d", i)
		}
		fields := strings.Fields(scanner.Text())
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, errors.Wrapf(err, "parse face %d vertex count", i)
		}
		idx := make([]int, n)
		for j := 0; j < n; j++ {
			idx[j], err = strconv.Atoi(fields[j+1])
			if err != nil {
				return nil, errors.Wrapf(err, "parse face %d index %d", i, j)
			}
		}
		for j := 1; j+1 < n; j++ {
			faces = append(faces, [3]int{idx[0], idx[j], idx[j+1]})
		}
	}

	return buildTriangles(verts, faces, toWorld, mat), nil
}

func readPLYBinaryLE(file *os.File, header *plyHeader, toWorld rtmath.Transform, mat geometry.MaterialRef) ([]geometry.Shape, error) {
	r := bufio.NewReaderSize(file, 1<<20)

	verts := plyVertexData{pos: make([]rtmath.Vec3, 0, header.vertexCount)}
	if header.hasNormal {
		verts.normal = make([]rtmath.Vec3, 0, header.vertexCount)
	}
	if header.hasUV {
		verts.uv = make([]rtmath.Vec2, 0, header.vertexCount)
	}

	row := make([]float32, len(header.vertexProps))
	for i := 0; i < header.vertexCount; i++ {
		for j := range row {
			if err := binary.Read(r, binary.LittleEndian, &row[j]); err != nil {
				return nil, errors.Wrapf(err, "read vertex %d property %d", i, j)
			}
		}
		verts.pos = append(verts.pos, rtmath.NewVec3(float64(row[0]), float64(row[1]), float64(row[2])))
		if header.hasNormal {
			verts.normal = append(verts.normal, rtmath.NewVec3(
				float64(row[header.nIdx[0]]), float64(row[header.nIdx[1]]), float64(row[header.nIdx[2]])))
		}
		if header.hasUV {
			verts.uv = append(verts.uv, rtmath.NewVec2(float64(row[header.uvIdx[0]]), float64(row[header.uvIdx[1]])))
		}
	}

	faces := make([][3]int, 0, header.faceCount)
	for i := 0; i < header.faceCount; i++ {
		var count uint8
		if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
			return nil, errors.Wrapf(err, "read face %d vertex count", i)
		}
		idx := make([]int32, count)
		if err := binary.Read(r, binary.LittleEndian, &idx); err != nil {
			return nil, errors.Wrapf(err, "read face %d indices", i)
		}
		for j := 1; j+1 < int(count); j++ {
			faces = append(faces, [3]int{int(idx[0]), int(idx[j]), int(idx[j+1])})
		}
	}

	return buildTriangles(verts, faces, toWorld, mat), nil
}
