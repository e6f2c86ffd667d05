// Package camera provides the perspective camera and spherical orbit
// navigation used to move it (and lights) around a center point.
package camera

import (
	"github.com/go-gl/mathgl/mgl32"
)

// MatricesSize is the byte size of the global matrices block (view, projection).
const MatricesSize = 2 * 16 * 4

// Camera is a perspective look-at camera.
//
// View and projection are derived lazily. Dirty reports whether the
// matrices changed since the last MarkClean, so the renderer re-uploads
// the global matrices block only when needed.
type Camera struct {
	position mgl32.Vec3
	target   mgl32.Vec3
	up       mgl32.Vec3

	fov    float32 // vertical, degrees
	aspect float32
	near   float32
	far    float32

	view  mgl32.Mat4
	proj  mgl32.Mat4
	stale bool
	dirty bool
}

// New creates a camera at (0, 0, 1) looking at the origin.
func New(fov, aspect, near, far float32) *Camera {
	return &Camera{
		position: mgl32.Vec3{0, 0, 1},
		up:       mgl32.Vec3{0, 1, 0},
		fov:      fov,
		aspect:   aspect,
		near:     near,
		far:      far,
		stale:    true,
		dirty:    true,
	}
}

// NewDefault creates a 45° camera with a 16:9 aspect.
func NewDefault() *Camera {
	return New(45, 16.0/9.0, 0.1, 500)
}

// Position returns the eye position.
func (c *Camera) Position() mgl32.Vec3 { return c.position }

// Target returns the look-at point.
func (c *Camera) Target() mgl32.Vec3 { return c.target }

// Up returns the up vector.
func (c *Camera) Up() mgl32.Vec3 { return c.up }

// FOV returns the vertical field of view in degrees.
func (c *Camera) FOV() float32 { return c.fov }

// Aspect returns the width/height ratio.
func (c *Camera) Aspect() float32 { return c.aspect }

// Near returns the near clip distance.
func (c *Camera) Near() float32 { return c.near }

// Far returns the far clip distance.
func (c *Camera) Far() float32 { return c.far }

// SetPosition moves the eye.
func (c *Camera) SetPosition(p mgl32.Vec3) {
	if p == c.position {
		return
	}
	c.position = p
	c.invalidate()
}

// SetTarget changes the look-at point.
func (c *Camera) SetTarget(t mgl32.Vec3) {
	if t == c.target {
		return
	}
	c.target = t
	c.invalidate()
}

// SetFOV changes the vertical field of view in degrees.
func (c *Camera) SetFOV(fov float32) {
	c.fov = fov
	c.invalidate()
}

// SetAspect changes the width/height ratio, typically after a resize.
func (c *Camera) SetAspect(aspect float32) {
	if aspect == c.aspect || aspect <= 0 {
		return
	}
	c.aspect = aspect
	c.invalidate()
}

// SetClip changes the near and far planes.
func (c *Camera) SetClip(near, far float32) {
	c.near, c.far = near, far
	c.invalidate()
}

// ViewMatrix returns the world-to-view transform.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	c.update()
	return c.view
}

// ProjectionMatrix returns the perspective projection.
func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	c.update()
	return c.proj
}

// ViewProjection returns projection × view.
func (c *Camera) ViewProjection() mgl32.Mat4 {
	c.update()
	return c.proj.Mul4(c.view)
}

// Matrices returns the global matrices block: view then projection, column-major.
func (c *Camera) Matrices() [32]float32 {
	c.update()
	var out [32]float32
	copy(out[:16], c.view[:])
	copy(out[16:], c.proj[:])
	return out
}

// Dirty reports whether the matrices changed since the last MarkClean.
func (c *Camera) Dirty() bool { return c.dirty }

// MarkClean records that the current matrices have been uploaded.
func (c *Camera) MarkClean() { c.dirty = false }

func (c *Camera) invalidate() {
	c.stale = true
	c.dirty = true
}

func (c *Camera) update() {
	if !c.stale {
		return
	}
	c.view = mgl32.LookAtV(c.position, c.target, c.up)
	c.proj = mgl32.Perspective(mgl32.DegToRad(c.fov), c.aspect, c.near, c.far)
	c.stale = false
}
