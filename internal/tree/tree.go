/*
Package tree is an arena-backed ordered tree.

Nodes live in one slice and refer to each other by NodeID, so there are no
pointer cycles and the tree can be copied or serialized as plain data.
Structure can only grow: Append adds a node as the last child of its parent,
and all navigation is read-only.
*/
package tree

import "iter"

// NodeID addresses a node of a Tree. IDs are stable for the life of the tree.
type NodeID int

// None is the NodeID of a missing node
const None NodeID = -1

type node[T any] struct {
	parent, prev, next, first, last NodeID
	data                            T
}

// Tree owns its nodes. The root is always NodeID 0.
type Tree[T any] struct {
	nodes []node[T]
}

// New creates a tree holding just a root node
func New[T any](root T) *Tree[T] {
	t := &Tree[T]{}
	t.nodes = append(t.nodes, node[T]{parent: None, prev: None, next: None, first: None, last: None, data: root})
	return t
}

// Root returns the ID of the root node
func (t *Tree[T]) Root() NodeID {
	return 0
}

// Len returns the number of nodes, the root included
func (t *Tree[T]) Len() int {
	return len(t.nodes)
}

// Valid reports whether id names a node of t
func (t *Tree[T]) Valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

// Append adds data as the last child of parent and returns the new node's ID.
// It panics if parent is not a node of t.
func (t *Tree[T]) Append(parent NodeID, data T) NodeID {
	if !t.Valid(parent) {
		panic("tree: append to unknown parent")
	}
	id := NodeID(len(t.nodes))
	p := &t.nodes[parent]
	n := node[T]{parent: parent, prev: p.last, next: None, first: None, last: None, data: data}
	if p.last != None {
		t.nodes[p.last].next = id
	} else {
		p.first = id
	}
	p.last = id
	t.nodes = append(t.nodes, n)
	return id
}

// Get returns a pointer to the payload of id. The pointer is invalidated by Append.
func (t *Tree[T]) Get(id NodeID) *T {
	return &t.nodes[id].data
}

// Parent returns the parent of id, or None for the root
func (t *Tree[T]) Parent(id NodeID) NodeID { return t.nodes[id].parent }

// PrevSibling returns the sibling before id, or None
func (t *Tree[T]) PrevSibling(id NodeID) NodeID { return t.nodes[id].prev }

// NextSibling returns the sibling after id, or None
func (t *Tree[T]) NextSibling(id NodeID) NodeID { return t.nodes[id].next }

// FirstChild returns the first child of id, or None
func (t *Tree[T]) FirstChild(id NodeID) NodeID { return t.nodes[id].first }

// LastChild returns the last child of id, or None
func (t *Tree[T]) LastChild(id NodeID) NodeID { return t.nodes[id].last }

// Children iterates the direct children of id in document order
func (t *Tree[T]) Children(id NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		for ch := t.nodes[id].first; ch != None; ch = t.nodes[ch].next {
			if !yield(ch) {
				return
			}
		}
	}
}

// Descendants iterates id and everything below it, depth first, parents
// before children. Each call of the returned sequence starts over.
func (t *Tree[T]) Descendants(id NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		for e := range t.Traverse(id) {
			if e.Kind == Start && !yield(e.Node) {
				return
			}
		}
	}
}

// EdgeKind tells whether a traversal enters or leaves a node
type EdgeKind uint8

const (
	Start EdgeKind = iota
	End
)

// Edge is one step of a traversal
type Edge struct {
	Kind EdgeKind
	Node NodeID
}

// Traverse walks the subtree at id, producing a Start edge when a node is
// entered and an End edge after all of its children were visited.
func (t *Tree[T]) Traverse(id NodeID) iter.Seq[Edge] {
	return func(yield func(Edge) bool) {
		cur, kind := id, Start
		for {
			if !yield(Edge{Kind: kind, Node: cur}) {
				return
			}
			if kind == Start {
				if ch := t.nodes[cur].first; ch != None {
					cur = ch
					continue
				}
				kind = End
				continue
			}
			if cur == id {
				return
			}
			if next := t.nodes[cur].next; next != None {
				cur, kind = next, Start
			} else {
				cur = t.nodes[cur].parent
			}
		}
	}
}
