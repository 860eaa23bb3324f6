package html

import (
	"github.com/Hackzzila/FrameUi/internal/css"
	"github.com/Hackzzila/FrameUi/internal/tree"
)

// Node is one document element as seen by the selector engine
type Node interface {
	// Core node information
	NodeID() tree.NodeID
	LocalName() string
	Namespace() string // always empty
	HasID(id string) bool
	HasClass(class string) bool // case-sensitive
	IsRoot() bool               // true only for the Root kind
	IsEmpty() bool

	// Tree navigation, nil at the edges
	Parent() Node
	FirstChild() Node
	NextSibling() Node
	PrevSibling() Node

	// Selector matching support
	Matches(sel css.SelectorList) bool
}

// Document is a read-only snapshot of the document tree for matching.
// It has to be rebuilt after ids or classes change.
type Document interface {
	// Root access
	Root() Node
	Node(id tree.NodeID) Node

	// Element selection, in document order
	QuerySelector(sel css.SelectorList) (tree.NodeID, bool)
	QuerySelectorAll(sel css.SelectorList) []tree.NodeID

	// Serialization
	HTML() (string, error)
}
