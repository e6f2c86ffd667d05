// Package geometry holds triangle mesh data and its GPU bookkeeping.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/lumen/internal/engine/gpu"
)

// MaxVertices is the largest vertex count addressable by uint16 elements.
const MaxVertices = math.MaxUint16 + 1

var (
	// ErrInvalid reports malformed vertex, normal or element arrays.
	ErrInvalid = errors.New("invalid geometry")
	// ErrUnsupportedFormat reports a file extension no loader handles.
	ErrUnsupportedFormat = errors.New("unsupported geometry format")
)

// Geometry is raw mesh data shared by any number of objects.
//
// Buffers are zero until the renderer uploads the data; upload happens once
// per geometry. VertexOffset and IndexOffset locate this geometry inside the
// scene-wide shared buffers and are only meaningful after Pack.
type Geometry struct {
	Name     string
	Vertices []float32 // xyz per vertex
	Normals  []float32 // xyz per vertex, may be empty
	Elements []uint16  // three per triangle (two per line for line meshes)

	VertexBuffer  gpu.Handle
	NormalBuffer  gpu.Handle
	ElementBuffer gpu.Handle

	VertexOffset int // in vertices
	IndexOffset  int // in elements

	boundsValid bool
	min, max    mgl32.Vec3
}

// New validates the arrays and returns a geometry that owns them.
func New(name string, vertices, normals []float32, elements []uint16) (*Geometry, error) {
	if len(vertices)%3 != 0 {
		return nil, fmt.Errorf("%w: %s: %d vertex floats is not a multiple of 3", ErrInvalid, name, len(vertices))
	}
	if len(normals) != 0 && len(normals) != len(vertices) {
		return nil, fmt.Errorf("%w: %s: %d normal floats for %d vertex floats", ErrInvalid, name, len(normals), len(vertices))
	}
	count := len(vertices) / 3
	if count > MaxVertices {
		return nil, fmt.Errorf("%w: %s: %d vertices exceed uint16 elements", ErrInvalid, name, count)
	}
	for i, e := range elements {
		if int(e) >= count {
			return nil, fmt.Errorf("%w: %s: element %d references vertex %d of %d", ErrInvalid, name, i, e, count)
		}
	}
	return &Geometry{
		Name:     name,
		Vertices: vertices,
		Normals:  normals,
		Elements: elements,
	}, nil
}

// NumVertices returns the vertex count.
func (g *Geometry) NumVertices() int {
	return len(g.Vertices) / 3
}

// NumNormals returns the normal count.
func (g *Geometry) NumNormals() int {
	return len(g.Normals) / 3
}

// NumElements returns the element (index) count.
func (g *Geometry) NumElements() int {
	return len(g.Elements)
}

// Uploaded reports whether the per-geometry GPU buffers exist.
func (g *Geometry) Uploaded() bool {
	return g.VertexBuffer != 0
}

// Bounds returns the local-space axis-aligned bounds.
func (g *Geometry) Bounds() (min, max mgl32.Vec3) {
	if !g.boundsValid {
		g.computeBounds()
	}
	return g.min, g.max
}

// Radius returns the distance from the local origin to the farthest vertex.
func (g *Geometry) Radius() float32 {
	var r2 float32
	for i := 0; i+2 < len(g.Vertices); i += 3 {
		v := mgl32.Vec3{g.Vertices[i], g.Vertices[i+1], g.Vertices[i+2]}
		if d := v.Dot(v); d > r2 {
			r2 = d
		}
	}
	return float32(math.Sqrt(float64(r2)))
}

func (g *Geometry) computeBounds() {
	g.boundsValid = true
	if len(g.Vertices) < 3 {
		g.min, g.max = mgl32.Vec3{}, mgl32.Vec3{}
		return
	}
	g.min = mgl32.Vec3{g.Vertices[0], g.Vertices[1], g.Vertices[2]}
	g.max = g.min
	for i := 3; i+2 < len(g.Vertices); i += 3 {
		for a := 0; a < 3; a++ {
			v := g.Vertices[i+a]
			if v < g.min[a] {
				g.min[a] = v
			}
			if v > g.max[a] {
				g.max[a] = v
			}
		}
	}
}

// ResetBuffers forgets GPU handles after the renderer released them.
func (g *Geometry) ResetBuffers() {
	g.VertexBuffer, g.NormalBuffer, g.ElementBuffer = 0, 0, 0
}
