package geometry

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxSubdivisions keeps an icosphere under the uint16 element limit.
const MaxSubdivisions = 6

// Icosphere builds a unit sphere by subdividing an icosahedron. Normals equal
// the vertex positions.
func Icosphere(subdivisions int) (*Geometry, error) {
	if subdivisions < 0 || subdivisions > MaxSubdivisions {
		return nil, fmt.Errorf("%w: icosphere subdivisions %d out of [0, %d]", ErrInvalid, subdivisions, MaxSubdivisions)
	}

	t := float32((1 + math.Sqrt(5)) / 2)
	points := []mgl32.Vec3{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}
	for i := range points {
		points[i] = points[i].Normalize()
	}
	faces := []uint16{
		0, 11, 5, 0, 5, 1, 0, 1, 7, 0, 7, 10, 0, 10, 11,
		1, 5, 9, 5, 11, 4, 11, 10, 2, 10, 7, 6, 7, 1, 8,
		3, 9, 4, 3, 4, 2, 3, 2, 6, 3, 6, 8, 3, 8, 9,
		4, 9, 5, 2, 4, 11, 6, 2, 10, 8, 6, 7, 9, 8, 1,
	}

	for s := 0; s < subdivisions; s++ {
		midpoints := make(map[[2]uint16]uint16)
		midpoint := func(a, b uint16) uint16 {
			key := [2]uint16{a, b}
			if a > b {
				key = [2]uint16{b, a}
			}
			if idx, ok := midpoints[key]; ok {
				return idx
			}
			points = append(points, points[a].Add(points[b]).Mul(0.5).Normalize())
			idx := uint16(len(points) - 1)
			midpoints[key] = idx
			return idx
		}

		next := make([]uint16, 0, len(faces)*4)
		for i := 0; i < len(faces); i += 3 {
			a, b, c := faces[i], faces[i+1], faces[i+2]
			ab, bc, ca := midpoint(a, b), midpoint(b, c), midpoint(c, a)
			next = append(next,
				a, ab, ca,
				b, bc, ab,
				c, ca, bc,
				ab, bc, ca,
			)
		}
		faces = next
	}

	vertices := make([]float32, 0, len(points)*3)
	for _, p := range points {
		vertices = append(vertices, p[0], p[1], p[2])
	}
	normals := make([]float32, len(vertices))
	copy(normals, vertices)

	return New(fmt.Sprintf("icosphere-%d", subdivisions), vertices, normals, faces)
}
