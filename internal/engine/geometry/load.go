package geometry

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/lumen/internal/logger"
)

// Load reads a mesh file, choosing the parser by extension.
//
// Supported formats are glTF 2.0 (.gltf, .glb) and the plain-text .mesh
// format. All triangle primitives of a glTF document are merged into one
// geometry.
func Load(path string) (*Geometry, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var (
		g   *Geometry
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		g, err = loadGLTF(name, path)
	case ".mesh":
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open mesh: %w", err)
		}
		defer f.Close()
		g, err = ReadMesh(name, f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	logger.Debug("geometry loaded",
		zap.String("path", path),
		zap.Int("vertices", g.NumVertices()),
		zap.Int("elements", g.NumElements()))
	return g, nil
}

func loadGLTF(name, path string) (*Geometry, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, err
	}

	var (
		vertices []float32
		normals  []float32
		elements []uint16
	)
	for _, mesh := range doc.Meshes {
		for _, prim := range mesh.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				continue
			}
			posAccessor, ok := prim.Attributes[gltf.POSITION]
			if !ok {
				continue
			}
			positions, err := modeler.ReadPosition(doc, doc.Accessors[posAccessor], nil)
			if err != nil {
				return nil, fmt.Errorf("mesh %q positions: %w", mesh.Name, err)
			}

			primNormals := make([][3]float32, len(positions))
			if normAccessor, ok := prim.Attributes[gltf.NORMAL]; ok {
				primNormals, err = modeler.ReadNormal(doc, doc.Accessors[normAccessor], nil)
				if err != nil {
					return nil, fmt.Errorf("mesh %q normals: %w", mesh.Name, err)
				}
			}

			var indices []uint32
			if prim.Indices != nil {
				indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
				if err != nil {
					return nil, fmt.Errorf("mesh %q indices: %w", mesh.Name, err)
				}
			} else {
				indices = make([]uint32, len(positions))
				for i := range indices {
					indices[i] = uint32(i)
				}
			}

			base := uint32(len(vertices) / 3)
			if int(base)+len(positions) > MaxVertices {
				return nil, fmt.Errorf("%w: %s exceeds %d vertices", ErrInvalid, name, MaxVertices)
			}
			for i, p := range positions {
				vertices = append(vertices, p[0], p[1], p[2])
				n := primNormals[i]
				normals = append(normals, n[0], n[1], n[2])
			}
			for _, idx := range indices {
				if idx >= uint32(len(positions)) {
					return nil, fmt.Errorf("%w: %s: mesh %q index %d references vertex %d of %d",
						ErrInvalid, name, mesh.Name, len(elements), idx, len(positions))
				}
				elements = append(elements, uint16(base+idx))
			}
		}
	}
	if len(vertices) == 0 {
		return nil, fmt.Errorf("%w: %s has no triangle primitives", ErrInvalid, name)
	}
	return New(name, vertices, normals, elements)
}

// ReadMesh parses the .mesh text format:
//
//	# comment
//	v x y z   vertex position
//	n x y z   vertex normal (same order as positions)
//	f a b c   triangle, zero-based vertex indices
func ReadMesh(name string, r io.Reader) (*Geometry, error) {
	var (
		vertices []float32
		normals  []float32
		elements []uint16
	)

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if len(fields) != 4 {
			return nil, fmt.Errorf("%w: %s:%d: expected 3 values after %q", ErrInvalid, name, line, fields[0])
		}

		switch fields[0] {
		case "v", "n":
			var vec [3]float32
			for i, s := range fields[1:] {
				f, err := strconv.ParseFloat(s, 32)
				if err != nil {
					return nil, fmt.Errorf("%w: %s:%d: %v", ErrInvalid, name, line, err)
				}
				vec[i] = float32(f)
			}
			if fields[0] == "v" {
				vertices = append(vertices, vec[:]...)
			} else {
				normals = append(normals, vec[:]...)
			}
		case "f":
			for _, s := range fields[1:] {
				idx, err := strconv.ParseUint(s, 10, 16)
				if err != nil {
					return nil, fmt.Errorf("%w: %s:%d: %v", ErrInvalid, name, line, err)
				}
				elements = append(elements, uint16(idx))
			}
		default:
			return nil, fmt.Errorf("%w: %s:%d: unknown record %q", ErrInvalid, name, line, fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return New(name, vertices, normals, elements)
}
