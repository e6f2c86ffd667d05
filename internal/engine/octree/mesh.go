package octree

import "github.com/Faultbox/lumen/internal/engine/geometry"

// TreeMesh returns line geometry outlining every node box. Nil for an empty tree.
func (t *Octree) TreeMesh() *geometry.Geometry {
	if t.root == nil {
		return nil
	}
	g := &geometry.Geometry{Name: "octree"}
	t.Walk(func(n *Node) bool {
		// uint16 elements cap the mesh; deeper nodes are dropped past the limit.
		if (len(g.Vertices)/3)+geometry.BoxVertexCount > geometry.MaxVertices {
			return false
		}
		g.Vertices, g.Elements = geometry.AppendBox(g.Vertices, g.Elements, n.Bounds.Min, n.Bounds.Max)
		return true
	})
	return g
}
