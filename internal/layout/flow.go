package layout

import "sync/atomic"

// FlowEngine is a small column layout engine: children are stacked
// top to bottom, auto widths stretch to the parent's width, auto heights
// shrink to the content. Percentages resolve against the parent box.
type FlowEngine struct {
	live atomic.Int64
}

// NewFlowEngine creates the built-in layout engine
func NewFlowEngine() *FlowEngine {
	return &FlowEngine{}
}

// NewNode creates a detached node with default style
func (e *FlowEngine) NewNode() Node {
	e.live.Add(1)
	return &flowNode{
		engine: e,
		width:  Auto(),
		height: Auto(),
		margin: [4]Value{Px(0), Px(0), Px(0), Px(0)},
		layout: Rect{UndefinedLength, UndefinedLength, UndefinedLength, UndefinedLength},
	}
}

// Live returns the number of nodes created and not yet freed
func (e *FlowEngine) Live() int {
	return int(e.live.Load())
}

var _ Engine = &FlowEngine{}

type flowNode struct {
	engine   *FlowEngine
	width    Value
	height   Value
	margin   [4]Value // indexed by Edge
	parent   *flowNode
	children []*flowNode
	layout   Rect
	freed    bool
}

func (n *flowNode) SetWidth(v Value)          { n.width = v }
func (n *flowNode) SetHeight(v Value)         { n.height = v }
func (n *flowNode) SetMargin(e Edge, v Value) { n.margin[e] = v }
func (n *flowNode) ChildCount() int           { return len(n.children) }
func (n *flowNode) Layout() Rect              { return n.layout }

// InsertChild panics if child already has a parent or belongs to another engine.
func (n *flowNode) InsertChild(child Node, index int) {
	ch, ok := child.(*flowNode)
	if !ok || ch.engine != n.engine {
		panic("layout: child node belongs to a different engine")
	}
	if ch.parent != nil {
		panic("layout: child node already has an owner")
	}
	if index < 0 || index > len(n.children) {
		index = len(n.children)
	}
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = ch
	ch.parent = n
}

func (n *flowNode) Free() {
	if n.freed {
		return
	}
	n.freed = true
	n.engine.live.Add(-1)
	if n.parent != nil {
		n.parent.removeChild(n)
		n.parent = nil
	}
	for _, ch := range n.children {
		ch.parent = nil
	}
	n.children = nil
}

func (n *flowNode) FreeRecursive() {
	for len(n.children) > 0 {
		n.children[len(n.children)-1].FreeRecursive()
	}
	n.Free()
}

func (n *flowNode) removeChild(ch *flowNode) {
	for i, c := range n.children {
		if c == ch {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

// CalculateLayout treats the viewport as the containing block of n.
func (n *flowNode) CalculateLayout(width, height float32, dir Direction) {
	if dir == DirectionInherit {
		dir = DirectionLTR
	}
	mt, mb, ml, mr := n.resolveMargins(width)
	w, ok := n.width.Resolve(width)
	if !ok {
		w = nonNegative(orZero(width) - ml - mr)
	}
	h, definite := n.height.Resolve(height)
	if !definite && !isUndefined(height) {
		h, definite = nonNegative(height-mt-mb), true
	}
	n.layout = Rect{Left: ml, Top: mt, Width: w}
	if dir == DirectionRTL {
		n.layout.Left = orZero(width) - mr - w
	}
	content := n.layoutChildren(w, h, definite, dir)
	if !definite {
		h = content
	}
	n.layout.Height = h
}

// layoutChildren places the children of n inside a box of width w and
// returns the height of the stacked content.
func (n *flowNode) layoutChildren(w, h float32, hDefinite bool, dir Direction) float32 {
	parentH := UndefinedLength
	if hDefinite {
		parentH = h
	}
	var y float32
	for _, ch := range n.children {
		mt, mb, ml, mr := ch.resolveMargins(w)
		cw, ok := ch.width.Resolve(w)
		if !ok {
			cw = nonNegative(w - ml - mr)
		}
		ch.layout = Rect{Left: ml, Top: y + mt, Width: cw}
		if dir == DirectionRTL {
			ch.layout.Left = w - mr - cw
		}
		chh, chDefinite := ch.height.Resolve(parentH)
		content := ch.layoutChildren(cw, chh, chDefinite, dir)
		if !chDefinite {
			chh = content
		}
		ch.layout.Height = chh
		y += mt + chh + mb
	}
	return y
}

// margins resolve against the containing block's width, for all four edges
func (n *flowNode) resolveMargins(base float32) (top, bottom, left, right float32) {
	r := func(v Value) float32 {
		f, _ := v.Resolve(base)
		return f
	}
	return r(n.margin[EdgeTop]), r(n.margin[EdgeBottom]), r(n.margin[EdgeLeft]), r(n.margin[EdgeRight])
}

func orZero(f float32) float32 {
	if isUndefined(f) {
		return 0
	}
	return f
}

func nonNegative(f float32) float32 {
	if f < 0 {
		return 0
	}
	return f
}
