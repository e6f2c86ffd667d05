package picking

import (
	"github.com/Faultbox/lumen/internal/engine/octree"
)

// Pick returns the nearest item whose bounding sphere the ray hits. Subtrees
// whose boxes, grown by the tree margin, miss the ray are skipped. radius
// gives the bounding radius of an item.
func Pick(t *octree.Octree, r Ray, radius func(octree.Item) float32) (octree.Item, float32, bool) {
	var (
		best  octree.Item
		bestT float32
		found bool
	)
	if t.Root() == nil {
		return nil, 0, false
	}
	margin := t.Options().Margin
	t.Walk(func(n *octree.Node) bool {
		if _, hit := r.IntersectAABB(n.Bounds.Expand(margin)); !hit {
			return false
		}
		for _, it := range n.Items() {
			d, hit := r.IntersectSphere(it.Position(), radius(it))
			if hit && (!found || d < bestT) {
				best, bestT, found = it, d, true
			}
		}
		return true
	})
	return best, bestT, found
}
