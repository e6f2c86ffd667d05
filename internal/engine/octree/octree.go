// Package octree partitions object positions into an 8-way spatial hierarchy
// used for coarse visibility culling.
//
// The tree holds non-owning references to items and stores each item in the
// leaf that contains its position. It reflects item positions as of the last
// explicit Generate, Insert or Update call; moving an item does not touch the
// tree by itself.
package octree

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/lumen/internal/logger"
)

// Item is anything the tree can index by position.
type Item interface {
	Position() mgl32.Vec3
	// Node returns the leaf currently holding the item, or nil.
	Node() *Node
	SetNode(*Node)
}

// Options controls subdivision and culling.
type Options struct {
	MaxObjects  int     // leaf capacity before subdividing
	MaxDepth    int     // root is depth 0
	Padding     float32 // added around item positions when sizing the root
	Margin      float32 // node boxes are grown by this much when culling (item radius)
	MaxDistance float32 // nodes farther than this from the eye are culled; 0 disables
}

// DefaultOptions returns the settings used by the viewer.
func DefaultOptions() Options {
	return Options{
		MaxObjects: 8,
		MaxDepth:   6,
		Padding:    1,
	}
}

// Octree is the root of the hierarchy plus the set of indexed items.
type Octree struct {
	opts  Options
	root  *Node
	items map[Item]struct{}
}

// New creates an empty tree.
func New(opts Options) *Octree {
	if opts.MaxObjects < 1 {
		opts.MaxObjects = 1
	}
	if opts.MaxDepth < 0 {
		opts.MaxDepth = 0
	}
	return &Octree{
		opts:  opts,
		items: make(map[Item]struct{}),
	}
}

// Options returns the tree's settings.
func (t *Octree) Options() Options {
	return t.opts
}

// SetMargin changes the culling margin without rebuilding.
func (t *Octree) SetMargin(m float32) {
	t.opts.Margin = m
}

// Root returns the root node, nil before the first Generate or Insert.
func (t *Octree) Root() *Node {
	return t.root
}

// Len returns the number of indexed items.
func (t *Octree) Len() int {
	return len(t.items)
}

// Generate rebuilds the tree around items, replacing any previous content.
func (t *Octree) Generate(items []Item) {
	for it := range t.items {
		it.SetNode(nil)
	}
	t.items = make(map[Item]struct{}, len(items))

	unique := make([]Item, 0, len(items))
	points := make([]mgl32.Vec3, 0, len(items))
	for _, it := range items {
		if _, dup := t.items[it]; dup {
			continue
		}
		t.items[it] = struct{}{}
		unique = append(unique, it)
		points = append(points, it.Position())
	}

	t.root = newNode(cubeAround(points, t.opts.Padding), nil, 0)
	for _, it := range unique {
		t.insert(t.root, it)
	}

	logger.Debug("octree generated",
		zap.Int("items", len(t.items)),
		zap.Int("nodes", t.NodeCount()),
		zap.Int("depth", t.Depth()))
}

// Insert adds one item. An item outside the current root triggers a rebuild.
func (t *Octree) Insert(it Item) {
	if _, ok := t.items[it]; ok {
		t.Update(it)
		return
	}
	if t.root == nil || !t.root.Bounds.Contains(it.Position()) {
		t.Generate(append(t.Items(), it))
		return
	}
	t.items[it] = struct{}{}
	t.insert(t.root, it)
}

// Update re-inserts an item after it moved. It reports whether the item
// changed leaves. Items not yet in the tree are inserted.
func (t *Octree) Update(it Item) bool {
	if _, ok := t.items[it]; !ok {
		t.Insert(it)
		return true
	}
	p := it.Position()
	old := it.Node()
	if old != nil && old.Bounds.Contains(p) {
		return false
	}

	if !t.root.Bounds.Contains(p) {
		t.Generate(t.Items())
		return true
	}
	t.detach(it)
	t.insert(t.root, it)
	return it.Node() != old
}

// Remove drops an item from the tree. It reports whether the item was present.
func (t *Octree) Remove(it Item) bool {
	if _, ok := t.items[it]; !ok {
		return false
	}
	t.detach(it)
	delete(t.items, it)
	return true
}

// Items returns the indexed items in no particular order.
func (t *Octree) Items() []Item {
	out := make([]Item, 0, len(t.items))
	for it := range t.items {
		out = append(out, it)
	}
	return out
}

// Walk visits nodes depth-first, parents before children. Returning false
// from fn skips that node's children.
func (t *Octree) Walk(fn func(*Node) bool) {
	if t.root != nil {
		t.root.walk(fn)
	}
}

// NodeCount returns the number of nodes in the tree.
func (t *Octree) NodeCount() int {
	n := 0
	t.Walk(func(*Node) bool {
		n++
		return true
	})
	return n
}

// Depth returns the depth of the deepest node.
func (t *Octree) Depth() int {
	d := 0
	t.Walk(func(n *Node) bool {
		d = max(d, n.depth)
		return true
	})
	return d
}

// CalculateVisibility marks every node against the frustum of viewProj.
// Outside nodes hide their subtree, inside nodes show it, and anything
// ambiguous is visible and tested further down.
func (t *Octree) CalculateVisibility(viewProj mgl32.Mat4, eye mgl32.Vec3) {
	if t.root == nil {
		return
	}
	f := NewFrustum(viewProj)
	t.visibility(t.root, &f, eye)
}

func (t *Octree) visibility(n *Node, f *Frustum, eye mgl32.Vec3) {
	box := n.Bounds.Expand(t.opts.Margin)
	if t.opts.MaxDistance > 0 && box.Distance(eye) > t.opts.MaxDistance {
		n.setVisible(false)
		return
	}
	switch f.Classify(box) {
	case Outside:
		n.setVisible(false)
	case Inside:
		n.setVisible(true)
	default:
		n.Visible = true
		for _, c := range n.children {
			t.visibility(c, f, eye)
		}
	}
}

func (t *Octree) insert(n *Node, it Item) {
	p := it.Position()
	for !n.IsLeaf() {
		n.count++
		n = n.children[n.Bounds.Octant(p)]
	}
	n.count++
	n.items = append(n.items, it)
	it.SetNode(n)

	if len(n.items) > t.opts.MaxObjects && n.depth < t.opts.MaxDepth {
		t.subdivide(n)
	}
}

// subdivide creates all eight children at once and pushes the leaf's items down.
func (t *Octree) subdivide(n *Node) {
	n.children = make([]*Node, 8)
	for i := range n.children {
		n.children[i] = newNode(n.Bounds.Child(i), n, n.depth+1)
	}
	items := n.items
	n.items = nil
	n.count -= len(items)
	for _, it := range items {
		t.insert(n, it)
	}
}

// detach removes an item from its leaf and collapses the highest ancestor
// whose subtree no longer needs subdividing.
func (t *Octree) detach(it Item) {
	leaf := it.Node()
	if leaf == nil {
		return
	}
	leaf.removeItem(it)
	it.SetNode(nil)

	var collapse *Node
	for n := leaf; n != nil; n = n.parent {
		n.count--
		if !n.IsLeaf() && n.count <= t.opts.MaxObjects {
			collapse = n
		}
	}
	if collapse != nil {
		collapse.collapse()
	}
}
