// Package dom defines the elements a compiled document tree is made of.
package dom

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Hackzzila/FrameUi/internal/css"
	"github.com/Hackzzila/FrameUi/internal/expr"
	"github.com/Hackzzila/FrameUi/internal/layout"
)

// Kind is the element type
type Kind uint8

const (
	KindRoot Kind = iota
	KindUnstyled
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "Root"
	case KindUnstyled:
		return "Unstyled"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// LocalName is the name selectors match the kind against
func (k Kind) LocalName() string {
	if k == KindRoot {
		return "#root"
	}
	return k.String()
}

// Element is the payload of a document tree node. It owns one layout
// engine node, which is never handed out.
type Element struct {
	Kind    Kind
	Classes []string
	ID      string
	HasID   bool
	Inline  []css.Declaration // from the style attribute, applied after stylesheet rules
	Attrs   RawAttributes

	Computed css.ComputedStyle
	Render   css.RenderStyle

	node layout.Node
}

// NewElement creates an element with default styles and no layout node
func NewElement(kind Kind) Element {
	return Element{
		Kind:     kind,
		Computed: css.DefaultComputedStyle(),
		Render:   css.EmptyRenderStyle(),
	}
}

// HasClass reports class membership, case-sensitively
func (e *Element) HasClass(class string) bool {
	return slices.Contains(e.Classes, class)
}

// SetClasses replaces the class set, dropping duplicates
func (e *Element) SetClasses(classes []string) {
	out := make([]string, 0, len(classes))
	for _, c := range classes {
		if c != "" && !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	e.Classes = out
}

// SetID sets the id; an empty id removes it
func (e *Element) SetID(id string) {
	e.ID, e.HasID = id, id != ""
}

// ComputeAttributes evaluates dynamic class and id attributes. Attributes
// whose result is still valid for scope are skipped.
func (e *Element) ComputeAttributes(ev expr.Evaluator, scope *expr.Scope) error {
	if a := e.Attrs.Class; a != nil && a.Dynamic && !a.upToDate(scope) {
		if err := a.compile(ev, scope); err != nil {
			return fmt.Errorf("class: %w", err)
		}
		classes, err := ev.EvalStrings(a.program, scope)
		if err != nil {
			return fmt.Errorf("class: %w", err)
		}
		e.SetClasses(classes)
		a.gen, a.stale = scope.Generation(), false
	}
	if a := e.Attrs.ID; a != nil && a.Dynamic && !a.upToDate(scope) {
		if err := a.compile(ev, scope); err != nil {
			return fmt.Errorf("id: %w", err)
		}
		id, err := ev.EvalString(a.program, scope)
		if err != nil {
			return fmt.Errorf("id: %w", err)
		}
		e.SetID(id)
		a.gen, a.stale = scope.Generation(), false
	}
	return nil
}

// Attach creates the element's layout node. It is a no-op when one exists.
func (e *Element) Attach(engine layout.Engine) {
	if e.node == nil {
		e.node = engine.NewNode()
	}
}

// AppendLayoutChild makes child's layout node the last child of e's
func (e *Element) AppendLayoutChild(child *Element) {
	e.node.InsertChild(child.node, e.node.ChildCount())
}

// PushStyle hands the computed geometry to the layout node
func (e *Element) PushStyle() {
	n, c := e.node, &e.Computed
	n.SetWidth(c.Width)
	n.SetHeight(c.Height)
	n.SetMargin(layout.EdgeTop, c.MarginTop)
	n.SetMargin(layout.EdgeBottom, c.MarginBottom)
	n.SetMargin(layout.EdgeLeft, c.MarginLeft)
	n.SetMargin(layout.EdgeRight, c.MarginRight)
}

// CalculateLayout lays out the layout tree rooted at e
func (e *Element) CalculateLayout(width, height float32, dir layout.Direction) {
	e.node.CalculateLayout(width, height, dir)
}

// PullLayout reads the laid out geometry back into Render
func (e *Element) PullLayout() {
	r := e.node.Layout()
	e.Render = css.RenderStyle{
		Left:            r.Left,
		Top:             r.Top,
		Width:           r.Width,
		Height:          r.Height,
		BackgroundColor: e.Computed.BackgroundColor,
	}
}

// ReleaseLayout frees the layout node and everything linked below it.
// Descendants must then be cleared with ForgetLayout.
func (e *Element) ReleaseLayout() {
	if e.node != nil {
		e.node.FreeRecursive()
		e.node = nil
	}
}

// ForgetLayout drops a layout node that an ancestor's ReleaseLayout freed
func (e *Element) ForgetLayout() {
	e.node = nil
}

func (e *Element) String() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.HasID {
		b.WriteString("#" + e.ID)
	}
	for _, c := range e.Classes {
		b.WriteString("." + c)
	}
	return b.String()
}
