// Package frame compiles FrameUI documents and computes their layout.
//
//	doc, diags, err := frame.Compile("app.frame")
//	if err != nil {
//		// diags explains what went wrong
//	}
//	defer doc.Close()
//	doc.ComputeStyle(800, 600, layout.DirectionLTR)
//	id, ok, _ := doc.QuerySelector("#main")
//	box, _ := doc.Render(id)
//
// A Document is safe for concurrent use. ComputeStyle, SetVar and Close take
// the write lock; queries, snapshots and Save share the read lock.
package frame

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Hackzzila/FrameUi/internal/compiler"
	"github.com/Hackzzila/FrameUi/internal/css"
	"github.com/Hackzzila/FrameUi/internal/diag"
	"github.com/Hackzzila/FrameUi/internal/dom"
	"github.com/Hackzzila/FrameUi/internal/expr"
	"github.com/Hackzzila/FrameUi/internal/html"
	"github.com/Hackzzila/FrameUi/internal/layout"
	"github.com/Hackzzila/FrameUi/internal/resolver"
	"github.com/Hackzzila/FrameUi/internal/tree"
)

// ErrClosed is returned by operations on a closed document
var ErrClosed = errors.New("frame: document is closed")

// Document is a compiled document: its element tree, its stylesheet and the
// layout nodes backing every element
type Document struct {
	mu sync.RWMutex

	tree  *tree.Tree[dom.Element]
	sheet *css.Stylesheet
	scope *expr.Scope
	eval  expr.Evaluator
	log   *zap.Logger

	// view mirrors the tree for selector queries; rebuilt by ComputeStyle
	view   *html.View
	stats  Stats
	closed bool
}

// Stats describes the last ComputeStyle pass
type Stats struct {
	Nodes   int           // elements styled, the root included
	Rules   int           // rules in the stylesheet
	Matched int           // rule matches over all elements
	Elapsed time.Duration // wall time of the pass
}

// ElementInfo is a snapshot of one element
type ElementInfo struct {
	Kind     dom.Kind
	ID       string
	HasID    bool
	Classes  []string
	Computed css.ComputedStyle
	Render   css.RenderStyle
}

// Compile reads and compiles the document at location, a local path or an
// http(s) URL. The collector holds every diagnostic, also on failure.
func Compile(location string, opts ...Option) (*Document, *diag.Collector, error) {
	o := newOptions(opts)
	c := o.collector
	if c == nil {
		c = diag.NewCollector(o.log)
	}
	out, err := compiler.Compile(location, c, compiler.Options{
		Resolver: o.resolver(),
		Bridge:   o.bridge,
		Log:      o.log,
	})
	if err != nil {
		return nil, c, fmt.Errorf("failed to compile %s: %w", location, err)
	}
	return newDocument(out.Tree, out.Stylesheet, o), c, nil
}

// newDocument takes ownership of t and gives every element a layout node,
// linked below its parent's in document order
func newDocument(t *tree.Tree[dom.Element], sheet *css.Stylesheet, o *options) *Document {
	root := t.Root()
	for id := range t.Descendants(root) {
		el := t.Get(id)
		el.Attach(o.engine)
		if id != root {
			t.Get(t.Parent(id)).AppendLayoutChild(el)
		}
	}
	return &Document{
		tree:  t,
		sheet: sheet,
		scope: o.scope,
		eval:  o.evaluator,
		log:   o.log,
	}
}

// ComputeStyle evaluates dynamic attributes, runs the cascade for every
// element and lays the document out in a width by height viewport
func (d *Document) ComputeStyle(width, height float32, dir layout.Direction) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	start := time.Now()
	root := d.tree.Root()

	for id := range d.tree.Descendants(root) {
		el := d.tree.Get(id)
		if err := el.ComputeAttributes(d.eval, d.scope); err != nil {
			return fmt.Errorf("failed to evaluate attributes of %s: %w", el, err)
		}
	}

	d.view = html.NewView(d.tree)
	r := resolver.New(d.sheet, d.log)
	matched := 0
	for id := range d.tree.Descendants(root) {
		el := d.tree.Get(id)
		node := d.view.Node(id)
		matched += len(r.MatchingRules(node))
		el.Computed = r.Resolve(node, el.Inline)
		el.PushStyle()
	}

	d.tree.Get(root).CalculateLayout(width, height, dir)
	for id := range d.tree.Descendants(root) {
		d.tree.Get(id).PullLayout()
	}

	d.stats = Stats{
		Nodes:   d.tree.Len(),
		Rules:   len(d.sheet.Rules),
		Matched: matched,
		Elapsed: time.Since(start),
	}
	d.log.Debug("computed style",
		zap.Float32("width", width),
		zap.Float32("height", height),
		zap.Stringer("direction", dir),
		zap.Int("nodes", d.stats.Nodes),
		zap.Int("matched", matched),
		zap.Duration("elapsed", d.stats.Elapsed))
	return nil
}

// Stats returns the statistics of the last ComputeStyle
func (d *Document) Stats() Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.stats
}

// currentView returns the view built by the last ComputeStyle, or a fresh
// one when there was none. Callers hold at least the read lock.
func (d *Document) currentView() *html.View {
	if d.view != nil {
		return d.view
	}
	return html.NewView(d.tree)
}

// QuerySelector returns the first element in document order matching sel.
// Class and id changes from dynamic attributes are seen after ComputeStyle.
func (d *Document) QuerySelector(sel string) (tree.NodeID, bool, error) {
	list, err := css.ParseSelectorList(sel)
	if err != nil {
		return tree.None, false, fmt.Errorf("invalid selector %q: %w", sel, err)
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	id, ok := d.currentView().QuerySelector(list)
	return id, ok, nil
}

// QuerySelectorAll returns every element matching sel in document order
func (d *Document) QuerySelectorAll(sel string) ([]tree.NodeID, error) {
	list, err := css.ParseSelectorList(sel)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", sel, err)
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.currentView().QuerySelectorAll(list), nil
}

// Root returns the ID of the root element
func (d *Document) Root() tree.NodeID {
	return d.tree.Root()
}

// Render returns the laid out geometry of id
func (d *Document) Render(id tree.NodeID) (css.RenderStyle, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.tree.Valid(id) {
		return css.RenderStyle{}, false
	}
	return d.tree.Get(id).Render, true
}

// Element returns a snapshot of id
func (d *Document) Element(id tree.NodeID) (ElementInfo, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.tree.Valid(id) {
		return ElementInfo{}, false
	}
	return info(d.tree.Get(id)), true
}

func info(el *dom.Element) ElementInfo {
	return ElementInfo{
		Kind:     el.Kind,
		ID:       el.ID,
		HasID:    el.HasID,
		Classes:  slices.Clone(el.Classes),
		Computed: el.Computed,
		Render:   el.Render,
	}
}

// Walk calls fn for every element in document order. The root's parent is
// tree.None. Returning false stops the walk.
func (d *Document) Walk(fn func(id, parent tree.NodeID, el ElementInfo) bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for id := range d.tree.Descendants(d.tree.Root()) {
		if !fn(id, d.tree.Parent(id), info(d.tree.Get(id))) {
			return
		}
	}
}

// Markup renders the element tree as HTML, for debugging selectors
func (d *Document) Markup() (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.currentView().HTML()
}

// SetVar sets a variable of the expression scope. Dynamic attributes are
// evaluated again by the next ComputeStyle.
func (d *Document) SetVar(name string, value any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scope.Set(name, value)
}

// DeleteVar removes a variable of the expression scope
func (d *Document) DeleteVar(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scope.Delete(name)
}

// Close frees the layout nodes. Calling it again does nothing.
func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	root := d.tree.Root()
	d.tree.Get(root).ReleaseLayout()
	for id := range d.tree.Descendants(root) {
		if id != root {
			d.tree.Get(id).ForgetLayout()
		}
	}
	d.closed = true
	d.view = nil
	return nil
}
