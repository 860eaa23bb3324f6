package layout

// Engine creates layout nodes. A document asks its engine for exactly one
// node per tree node and owns the node from then on.
type Engine interface {
	NewNode() Node
}

// Node is a handle into a layout engine. Handles are single-owner: the
// owner frees them, and a handle must never be shared between documents.
type Node interface {
	SetWidth(Value)
	SetHeight(Value)
	SetMargin(Edge, Value)

	// InsertChild links child below this node at position index
	InsertChild(child Node, index int)
	ChildCount() int

	// CalculateLayout lays out the subtree rooted at this node
	CalculateLayout(width, height float32, dir Direction)

	// Layout returns the geometry computed by the last CalculateLayout
	Layout() Rect

	// Free releases this node only; FreeRecursive releases the whole subtree
	Free()
	FreeRecursive()
}
