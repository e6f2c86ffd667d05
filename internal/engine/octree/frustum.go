package octree

import "github.com/go-gl/mathgl/mgl32"

// Plane is the half-space n·p + d >= 0, with n pointing into the frustum.
type Plane struct {
	Normal mgl32.Vec3
	D      float32
}

// Distance returns the signed distance from p to the plane.
func (p Plane) Distance(pt mgl32.Vec3) float32 {
	return p.Normal.Dot(pt) + p.D
}

// Frustum holds the six clip planes: left, right, bottom, top, near, far.
type Frustum struct {
	Planes [6]Plane
}

// Containment classifies a box against a frustum.
type Containment int

const (
	Outside Containment = iota
	Intersecting
	Inside
)

// NewFrustum extracts normalized planes from a view-projection matrix
// (Gribb/Hartmann). mgl32 matrices are column-major, so Row(i) is a row of
// the matrix the shaders see.
func NewFrustum(viewProj mgl32.Mat4) Frustum {
	r0, r1, r2, r3 := viewProj.Row(0), viewProj.Row(1), viewProj.Row(2), viewProj.Row(3)

	var f Frustum
	f.Planes[0] = plane(r3.Add(r0))
	f.Planes[1] = plane(r3.Sub(r0))
	f.Planes[2] = plane(r3.Add(r1))
	f.Planes[3] = plane(r3.Sub(r1))
	f.Planes[4] = plane(r3.Add(r2))
	f.Planes[5] = plane(r3.Sub(r2))
	return f
}

func plane(v mgl32.Vec4) Plane {
	n := v.Vec3()
	l := n.Len()
	if l == 0 {
		return Plane{}
	}
	return Plane{Normal: n.Mul(1 / l), D: v[3] / l}
}

// Classify tests box against every plane using its positive and negative
// vertices. Degenerate planes never reject.
func (f *Frustum) Classify(box AABB) Containment {
	result := Inside
	for _, p := range f.Planes {
		var pos, neg mgl32.Vec3
		for a := 0; a < 3; a++ {
			if p.Normal[a] >= 0 {
				pos[a], neg[a] = box.Max[a], box.Min[a]
			} else {
				pos[a], neg[a] = box.Min[a], box.Max[a]
			}
		}
		if p.Distance(pos) < 0 {
			return Outside
		}
		if p.Distance(neg) < 0 {
			result = Intersecting
		}
	}
	return result
}
