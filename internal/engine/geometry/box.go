package geometry

import "github.com/go-gl/mathgl/mgl32"

// BoxVertexCount is the number of corners in a wireframe box.
const BoxVertexCount = 8

// BoxElementCount is the number of line elements in a wireframe box (12 edges × 2).
const BoxElementCount = 24

// boxEdges indexes the corners produced by boxCorners.
var boxEdges = [BoxElementCount]uint16{
	// Bottom face
	0, 1, 1, 2, 2, 3, 3, 0,
	// Top face
	4, 5, 5, 6, 6, 7, 7, 4,
	// Vertical edges
	0, 4, 1, 5, 2, 6, 3, 7,
}

// Box creates line geometry for the wireframe of an axis-aligned box.
func Box(min, max mgl32.Vec3) *Geometry {
	g := &Geometry{Name: "box"}
	g.Vertices, g.Elements = AppendBox(nil, nil, min, max)
	return g
}

// AppendBox appends the wireframe corners and edges of one box, offsetting
// elements by the vertices already present. Used to merge many boxes into a
// single line mesh.
func AppendBox(vertices []float32, elements []uint16, min, max mgl32.Vec3) ([]float32, []uint16) {
	base := uint16(len(vertices) / 3)
	vertices = append(vertices,
		min[0], min[1], min[2],
		max[0], min[1], min[2],
		max[0], min[1], max[2],
		min[0], min[1], max[2],
		min[0], max[1], min[2],
		max[0], max[1], min[2],
		max[0], max[1], max[2],
		min[0], max[1], max[2],
	)
	for _, e := range boxEdges {
		elements = append(elements, base+e)
	}
	return vertices, elements
}
