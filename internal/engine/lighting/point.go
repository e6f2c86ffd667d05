package lighting

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/lumen/internal/engine/gpu"
)

// DefaultAttenuation is the linear falloff of a new point light.
const DefaultAttenuation = 0.1

// Point is a positional light with linear distance attenuation:
// color / (1 + attenuation·distance).
type Point struct {
	Position    mgl32.Vec3
	Color       mgl32.Vec3
	Intensity   float32
	Attenuation float32
}

// NewPoint creates a white point light at pos.
func NewPoint(pos mgl32.Vec3) *Point {
	return &Point{
		Position:    pos,
		Color:       mgl32.Vec3{1, 1, 1},
		Intensity:   1,
		Attenuation: DefaultAttenuation,
	}
}

// PackPoint serializes up to MaxLights lights with positions in view space.
func PackPoint(lights []*Point, view mgl32.Mat4) []byte {
	n := Capped(len(lights))
	b := gpu.NewBlock(n * PointStride)
	for _, l := range lights[:n] {
		pos := view.Mul4x1(l.Position.Vec4(1))
		b.Vec4(l.Color.Vec4(1)).
			Vec4(pos).
			Float(l.Intensity).
			Float(l.Attenuation).
			Align(16)
	}
	return b.Bytes()
}
