package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultEpsilon keeps the polar angle away from the poles.
const DefaultEpsilon = 1e-6

// Orbit is a position on a sphere around Center.
//
// Phi is the polar angle from +Y, Theta the azimuth around Y measured from
// +Z. The spherical state is canonical; Position derives the cartesian point,
// so applying a zero delta leaves it unchanged.
type Orbit struct {
	Center mgl32.Vec3
	Radius float32
	Phi    float32
	Theta  float32

	MinRadius float32
	MaxRadius float32
	Epsilon   float32
}

// FromPosition builds an orbit around center passing through pos, clamped
// to the radius band and the polar limits.
func FromPosition(center, pos mgl32.Vec3, minRadius, maxRadius, epsilon float32) *Orbit {
	o := &Orbit{
		Center:    center,
		MinRadius: minRadius,
		MaxRadius: maxRadius,
		Epsilon:   epsilon,
		Phi:       math.Pi / 2,
	}
	off := pos.Sub(center)
	o.Radius = off.Len()
	if o.Radius > 0 {
		o.Phi = float32(math.Acos(float64(mgl32.Clamp(off[1]/o.Radius, -1, 1))))
		o.Theta = float32(math.Atan2(float64(off[0]), float64(off[2])))
	}
	o.Radius = o.clampRadius(o.Radius)
	o.Phi = o.clampPhi(o.Phi)
	return o
}

// Apply adds the angle deltas and scales the radius, clamping phi to
// [ε, π−ε] and the radius to [MinRadius, MaxRadius]. It reports whether the
// orbit moved.
func (o *Orbit) Apply(dPhi, dTheta, radiusFactor float32) bool {
	if dPhi == 0 && dTheta == 0 && radiusFactor == 1 {
		return false
	}
	r := o.clampRadius(o.Radius * radiusFactor)
	phi := o.clampPhi(o.Phi + dPhi)
	theta := o.Theta + dTheta

	if r == o.Radius && phi == o.Phi && theta == o.Theta {
		return false
	}
	o.Radius, o.Phi, o.Theta = r, phi, theta
	return true
}

// Position returns the cartesian point of the orbit.
func (o *Orbit) Position() mgl32.Vec3 {
	sp, cp := math.Sincos(float64(o.Phi))
	st, ct := math.Sincos(float64(o.Theta))
	r := float64(o.Radius)
	return o.Center.Add(mgl32.Vec3{
		float32(r * sp * st),
		float32(r * cp),
		float32(r * sp * ct),
	})
}

func (o *Orbit) clampRadius(r float32) float32 {
	if o.MaxRadius > 0 {
		r = min(r, o.MaxRadius)
	}
	return max(r, o.MinRadius)
}

func (o *Orbit) clampPhi(phi float32) float32 {
	eps := o.Epsilon
	if eps <= 0 {
		eps = DefaultEpsilon
	}
	return mgl32.Clamp(phi, eps, math.Pi-eps)
}
