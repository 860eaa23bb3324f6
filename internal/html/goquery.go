package html

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/Hackzzila/FrameUi/internal/css"
	"github.com/Hackzzila/FrameUi/internal/dom"
	"github.com/Hackzzila/FrameUi/internal/tree"
)

// View mirrors a document tree into golang.org/x/net/html nodes so that
// cascadia selectors and goquery can run against it. Elements become
// element nodes named after their kind (css.MatchName of "#root" or
// "Unstyled") with their effective id and class as attributes.
type View struct {
	tree  *tree.Tree[dom.Element]
	doc   *goquery.Document
	nodes []*html.Node // indexed by NodeID
	ids   map[*html.Node]tree.NodeID
}

// ViewNode wraps one element of a View to implement our Node interface
type ViewNode struct {
	view *View
	id   tree.NodeID
}

// NewView builds the mirror of t
func NewView(t *tree.Tree[dom.Element]) *View {
	v := &View{
		tree:  t,
		nodes: make([]*html.Node, t.Len()),
		ids:   make(map[*html.Node]tree.NodeID, t.Len()),
	}
	top := &html.Node{Type: html.DocumentNode}
	for id := range t.Descendants(t.Root()) {
		n := mirror(t.Get(id))
		v.nodes[id] = n
		v.ids[n] = id
		if p := t.Parent(id); p != tree.None {
			v.nodes[p].AppendChild(n)
		} else {
			top.AppendChild(n)
		}
	}
	v.doc = goquery.NewDocumentFromNode(top)
	return v
}

func mirror(e *dom.Element) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: css.MatchName(e.Kind.LocalName())}
	if e.HasID {
		n.Attr = append(n.Attr, html.Attribute{Key: "id", Val: e.ID})
	}
	if len(e.Classes) > 0 {
		n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: strings.Join(e.Classes, " ")})
	}
	return n
}

// Document implementation

// Root returns the root element
func (v *View) Root() Node {
	return &ViewNode{view: v, id: v.tree.Root()}
}

// Node returns the element with the given ID
func (v *View) Node(id tree.NodeID) Node {
	if !v.tree.Valid(id) {
		return nil
	}
	return &ViewNode{view: v, id: id}
}

// QuerySelector returns the first element matching sel in document order
func (v *View) QuerySelector(sel css.SelectorList) (tree.NodeID, bool) {
	selection := v.doc.FindMatcher(sel).First()
	if selection.Length() == 0 {
		return tree.None, false
	}
	return v.ids[selection.Get(0)], true
}

// QuerySelectorAll returns all elements matching sel in document order
func (v *View) QuerySelectorAll(sel css.SelectorList) []tree.NodeID {
	selection := v.doc.FindMatcher(sel)
	ids := make([]tree.NodeID, selection.Length())
	selection.Each(func(i int, s *goquery.Selection) {
		ids[i] = v.ids[s.Get(0)]
	})
	return ids
}

// HTML returns the mirror as markup, for debugging
func (v *View) HTML() (string, error) {
	out, err := v.doc.Html()
	if err != nil {
		return "", fmt.Errorf("failed to serialize view: %w", err)
	}
	return out, nil
}

// Node implementation

func (n *ViewNode) element() *dom.Element {
	return n.view.tree.Get(n.id)
}

func (n *ViewNode) wrap(id tree.NodeID) Node {
	if id == tree.None {
		return nil
	}
	return &ViewNode{view: n.view, id: id}
}

// NodeID returns the tree node this wraps
func (n *ViewNode) NodeID() tree.NodeID { return n.id }

// LocalName is "#root" for the root and the kind name otherwise
func (n *ViewNode) LocalName() string { return n.element().Kind.LocalName() }

// Namespace is always empty
func (n *ViewNode) Namespace() string { return "" }

// HasID reports whether the element has exactly this id
func (n *ViewNode) HasID(id string) bool {
	e := n.element()
	return e.HasID && e.ID == id
}

// HasClass reports whether the element has class, compared case-sensitively
func (n *ViewNode) HasClass(class string) bool { return n.element().HasClass(class) }

// IsRoot reports whether the element is the document root
func (n *ViewNode) IsRoot() bool { return n.element().Kind == dom.KindRoot }

// IsEmpty reports whether the element has no children
func (n *ViewNode) IsEmpty() bool { return n.view.tree.FirstChild(n.id) == tree.None }

// Parent returns the parent element, nil for the root
func (n *ViewNode) Parent() Node { return n.wrap(n.view.tree.Parent(n.id)) }

// FirstChild returns the first child element or nil
func (n *ViewNode) FirstChild() Node { return n.wrap(n.view.tree.FirstChild(n.id)) }

// NextSibling returns the following sibling or nil
func (n *ViewNode) NextSibling() Node { return n.wrap(n.view.tree.NextSibling(n.id)) }

// PrevSibling returns the preceding sibling or nil
func (n *ViewNode) PrevSibling() Node { return n.wrap(n.view.tree.PrevSibling(n.id)) }

// Matches checks if the element matches any selector of sel
func (n *ViewNode) Matches(sel css.SelectorList) bool {
	return sel.Match(n.view.nodes[n.id])
}

var (
	_ Document = (*View)(nil)
	_ Node     = (*ViewNode)(nil)
)
