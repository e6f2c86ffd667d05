package octree

// Node is one cell of the tree. It has either no children or exactly eight.
type Node struct {
	Bounds  AABB
	Visible bool

	parent   *Node
	children []*Node
	items    []Item
	depth    int
	count    int // items in this subtree
}

func newNode(b AABB, parent *Node, depth int) *Node {
	return &Node{Bounds: b, Visible: true, parent: parent, depth: depth}
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.children) == 0
}

// Children returns the eight children, or nil for a leaf.
func (n *Node) Children() []*Node {
	return n.children
}

// Parent returns the enclosing node, nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Items returns the items stored directly in this node.
func (n *Node) Items() []Item {
	return n.items
}

// Depth returns the node's distance from the root.
func (n *Node) Depth() int {
	return n.depth
}

// Count returns the number of items in the subtree.
func (n *Node) Count() int {
	return n.count
}

func (n *Node) walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.walk(fn)
	}
}

func (n *Node) setVisible(v bool) {
	n.walk(func(c *Node) bool {
		c.Visible = v
		return true
	})
}

func (n *Node) removeItem(it Item) {
	for i, x := range n.items {
		if x == it {
			last := len(n.items) - 1
			n.items[i] = n.items[last]
			n.items[last] = nil
			n.items = n.items[:last]
			return
		}
	}
}

// collapse pulls every item of the subtree into n and drops the children.
func (n *Node) collapse() {
	var items []Item
	for _, c := range n.children {
		c.walk(func(d *Node) bool {
			items = append(items, d.items...)
			return true
		})
	}
	n.children = nil
	n.items = append(n.items, items...)
	for _, it := range items {
		it.SetNode(n)
	}
}
