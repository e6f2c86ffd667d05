package lighting

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/lumen/internal/engine/gpu"
)

// Directional is a light infinitely far away.
type Directional struct {
	Direction mgl32.Vec3 // world-space vector pointing toward the light
	Color     mgl32.Vec3
	Intensity float32
}

// NewDirectional creates a white light shining straight down.
func NewDirectional() *Directional {
	return &Directional{
		Direction: mgl32.Vec3{0, 1, 0},
		Color:     mgl32.Vec3{1, 1, 1},
		Intensity: 1,
	}
}

// Toward points the light from the direction of pos, as seen from the origin.
// A zero vector leaves the direction unchanged.
func (d *Directional) Toward(pos mgl32.Vec3) {
	if pos.Len() == 0 {
		return
	}
	d.Direction = pos.Normalize()
}

// PackDirectional serializes up to MaxLights lights with directions in view
// space. Lights beyond the cap are dropped.
func PackDirectional(lights []*Directional, view mgl32.Mat4) []byte {
	n := Capped(len(lights))
	b := gpu.NewBlock(n * DirectionalStride)
	for _, l := range lights[:n] {
		dir := view.Mul4x1(l.Direction.Vec4(0))
		b.Vec4(l.Color.Vec4(1)).
			Vec4(dir).
			Float(l.Intensity).
			Align(16)
	}
	return b.Bytes()
}
