package scene

import (
	"github.com/Faultbox/lumen/internal/engine/geometry"
	"github.com/Faultbox/lumen/internal/engine/material"
	"github.com/Faultbox/lumen/internal/engine/octree"
	"github.com/Faultbox/lumen/internal/engine/transform"
)

// Object is a drawable instance: a placement plus shared geometry and
// material. Moving an object does not update the octree; call
// Scene.UpdateObject afterwards.
type Object struct {
	*transform.Transform

	Name     string
	Geometry *geometry.Geometry
	Material *material.Material
	Visible  bool

	// Distance is the eye distance computed by the last rendered frame.
	Distance float32

	node *octree.Node
}

var _ octree.Item = (*Object)(nil)

// NewObject creates a visible object at the origin.
func NewObject(g *geometry.Geometry, m *material.Material) *Object {
	return &Object{
		Transform: transform.New(),
		Geometry:  g,
		Material:  m,
		Visible:   true,
	}
}

// Node returns the octree leaf holding the object, nil when unindexed.
func (o *Object) Node() *octree.Node { return o.node }

// SetNode is called by the octree.
func (o *Object) SetNode(n *octree.Node) { o.node = n }

// Drawable reports whether the object should be drawn this frame: it is
// visible itself and, when indexed, its leaf survived culling.
func (o *Object) Drawable() bool {
	if !o.Visible {
		return false
	}
	return o.node == nil || o.node.Visible
}

// Radius is the bounding radius of the object's geometry in world units.
func (o *Object) Radius() float32 {
	if o.Geometry == nil {
		return 0
	}
	s := o.Scale()
	return o.Geometry.Radius() * max(s[0], s[1], s[2])
}
