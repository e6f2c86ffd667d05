// Package lighting provides the directional, point and ambient lights of a
// scene and their GPU block layouts.
package lighting

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/lumen/internal/engine/gpu"
)

// MaxLights caps how many lights of each kind reach the shaders.
const MaxLights = 10

// Block strides in bytes. Both structs round up to a std140 vec4 multiple.
const (
	DirectionalStride = 48 // vec4 color, vec4 vectorToLight, float intensity
	PointStride       = 48 // vec4 color, vec4 position, float intensity, float attenuation
	AmbientSize       = 16 // vec4 color
)

// Capped returns how many of n lights are uploaded.
func Capped(n int) int {
	return min(n, MaxLights)
}

// Ambient is the single global light term.
type Ambient struct {
	Color mgl32.Vec3
}

// NewAmbient creates an ambient light of the given color.
func NewAmbient(color mgl32.Vec3) *Ambient {
	return &Ambient{Color: color}
}

// PackAmbient serializes the ambient block. A nil light packs as black.
func PackAmbient(a *Ambient) []byte {
	var c mgl32.Vec3
	if a != nil {
		c = a.Color
	}
	return gpu.NewBlock(AmbientSize).Vec4(c.Vec4(1)).Bytes()
}
