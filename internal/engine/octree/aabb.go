package octree

import "github.com/go-gl/mathgl/mgl32"

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max mgl32.Vec3
}

// Center returns the midpoint of the box.
func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the extent along each axis.
func (b AABB) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Contains reports whether p lies inside the box, boundaries included.
func (b AABB) Contains(p mgl32.Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// Expand grows the box by m on every side.
func (b AABB) Expand(m float32) AABB {
	d := mgl32.Vec3{m, m, m}
	return AABB{Min: b.Min.Sub(d), Max: b.Max.Add(d)}
}

// Octant returns the index of the child octant containing p.
// Bit 0 is +X, bit 1 is +Y, bit 2 is +Z relative to the center.
func (b AABB) Octant(p mgl32.Vec3) int {
	c := b.Center()
	i := 0
	if p[0] >= c[0] {
		i |= 1
	}
	if p[1] >= c[1] {
		i |= 2
	}
	if p[2] >= c[2] {
		i |= 4
	}
	return i
}

// Child returns the bounds of octant i.
func (b AABB) Child(i int) AABB {
	c := b.Center()
	child := AABB{Min: b.Min, Max: c}
	for a := 0; a < 3; a++ {
		if i&(1<<a) != 0 {
			child.Min[a] = c[a]
			child.Max[a] = b.Max[a]
		}
	}
	return child
}

// Distance returns the distance from p to the nearest point of the box,
// zero when p is inside.
func (b AABB) Distance(p mgl32.Vec3) float32 {
	var d mgl32.Vec3
	for a := 0; a < 3; a++ {
		switch {
		case p[a] < b.Min[a]:
			d[a] = b.Min[a] - p[a]
		case p[a] > b.Max[a]:
			d[a] = p[a] - b.Max[a]
		}
	}
	return d.Len()
}

// cubeAround returns a cube enclosing every point, padded on every side.
func cubeAround(points []mgl32.Vec3, padding float32) AABB {
	if len(points) == 0 {
		return AABB{}.Expand(padding)
	}
	box := AABB{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		for a := 0; a < 3; a++ {
			box.Min[a] = min(box.Min[a], p[a])
			box.Max[a] = max(box.Max[a], p[a])
		}
	}
	size := box.Size()
	half := max(size[0], size[1], size[2])/2 + padding
	c := box.Center()
	h := mgl32.Vec3{half, half, half}
	return AABB{Min: c.Sub(h), Max: c.Add(h)}
}
