// Package transform composes position, rotation and scale into a world matrix.
package transform

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Transform is an object's placement in world space.
//
// The quaternion is the canonical rotation; the Euler angles (radians, applied
// X then Y then Z) are a synchronized view kept for editing convenience.
// The world matrix is T(position) * R(quaternion) * S(scale), cached behind
// a dirty flag.
type Transform struct {
	position   mgl32.Vec3
	scale      mgl32.Vec3
	quaternion mgl32.Quat
	euler      mgl32.Vec3

	matrix mgl32.Mat4
	dirty  bool
}

// New returns an identity transform.
func New() *Transform {
	return &Transform{
		scale:      mgl32.Vec3{1, 1, 1},
		quaternion: mgl32.QuatIdent(),
		matrix:     mgl32.Ident4(),
	}
}

// Position returns the translation.
func (t *Transform) Position() mgl32.Vec3 {
	return t.position
}

// SetPosition sets the translation.
func (t *Transform) SetPosition(p mgl32.Vec3) {
	t.position = p
	t.dirty = true
}

// Translate moves the transform by d.
func (t *Transform) Translate(d mgl32.Vec3) {
	t.SetPosition(t.position.Add(d))
}

// Scale returns the per-axis scale.
func (t *Transform) Scale() mgl32.Vec3 {
	return t.scale
}

// SetScale sets the per-axis scale.
func (t *Transform) SetScale(s mgl32.Vec3) {
	t.scale = s
	t.dirty = true
}

// Quaternion returns the canonical rotation.
func (t *Transform) Quaternion() mgl32.Quat {
	return t.quaternion
}

// SetQuaternion sets the rotation and recomputes the Euler view.
func (t *Transform) SetQuaternion(q mgl32.Quat) {
	t.quaternion = q.Normalize()
	t.euler = quatToEuler(t.quaternion)
	t.dirty = true
}

// Euler returns the rotation as X, Y, Z angles in radians.
func (t *Transform) Euler() mgl32.Vec3 {
	return t.euler
}

// SetEuler sets the rotation from X, Y, Z angles and recomputes the quaternion.
func (t *Transform) SetEuler(e mgl32.Vec3) {
	t.euler = e
	t.quaternion = eulerToQuat(e)
	t.dirty = true
}

// Rotate applies an additional rotation of angle radians around axis, in world space.
func (t *Transform) Rotate(axis mgl32.Vec3, angle float32) {
	t.SetQuaternion(mgl32.QuatRotate(angle, axis.Normalize()).Mul(t.quaternion))
}

// Dirty reports whether the cached matrix is stale.
func (t *Transform) Dirty() bool {
	return t.dirty
}

// UpdateModelMatrix recomputes the world matrix if any component changed
// since the last computation. It reports whether a recomputation happened.
func (t *Transform) UpdateModelMatrix() bool {
	if !t.dirty {
		return false
	}
	t.ForceUpdate()
	return true
}

// ForceUpdate recomputes the world matrix unconditionally.
func (t *Transform) ForceUpdate() {
	translate := mgl32.Translate3D(t.position.X(), t.position.Y(), t.position.Z())
	rotate := t.quaternion.Mat4()
	scale := mgl32.Scale3D(t.scale.X(), t.scale.Y(), t.scale.Z())
	t.matrix = translate.Mul4(rotate).Mul4(scale)
	t.dirty = false
}

// ModelMatrix returns the cached world matrix. Call UpdateModelMatrix first.
func (t *Transform) ModelMatrix() mgl32.Mat4 {
	return t.matrix
}

// eulerToQuat builds Rz * Ry * Rx: X is applied first.
func eulerToQuat(e mgl32.Vec3) mgl32.Quat {
	qx := mgl32.QuatRotate(e.X(), mgl32.Vec3{1, 0, 0})
	qy := mgl32.QuatRotate(e.Y(), mgl32.Vec3{0, 1, 0})
	qz := mgl32.QuatRotate(e.Z(), mgl32.Vec3{0, 0, 1})
	return qz.Mul(qy).Mul(qx).Normalize()
}

// quatToEuler inverts eulerToQuat. At gimbal lock (Y = ±90°) the X angle is
// folded into Z.
func quatToEuler(q mgl32.Quat) mgl32.Vec3 {
	m := q.Mat4()
	r20 := float64(m.At(2, 0))
	if r20 > 1 {
		r20 = 1
	} else if r20 < -1 {
		r20 = -1
	}
	y := math.Asin(-r20)

	var x, z float64
	if math.Abs(r20) < 0.9999999 {
		x = math.Atan2(float64(m.At(2, 1)), float64(m.At(2, 2)))
		z = math.Atan2(float64(m.At(1, 0)), float64(m.At(0, 0)))
	} else {
		z = math.Atan2(-float64(m.At(0, 1)), float64(m.At(1, 1)))
	}
	return mgl32.Vec3{float32(x), float32(y), float32(z)}
}
