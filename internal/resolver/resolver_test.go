package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hackzzila/FrameUi/internal/css"
	"github.com/Hackzzila/FrameUi/internal/dom"
	"github.com/Hackzzila/FrameUi/internal/html"
	"github.com/Hackzzila/FrameUi/internal/layout"
	"github.com/Hackzzila/FrameUi/internal/tree"
)

func parse(t *testing.T, text string) *css.Stylesheet {
	sheet, err := css.NewParser().Parse(text)
	require.NoError(t, err)
	return sheet
}

func build() (*tree.Tree[dom.Element], tree.NodeID) {
	tr := tree.New(dom.NewElement(dom.KindRoot))
	e := dom.NewElement(dom.KindUnstyled)
	e.SetID("n")
	e.SetClasses([]string{"box"})
	return tr, tr.Append(tr.Root(), e)
}

func TestLaterRuleWinsRegardlessOfSpecificity(t *testing.T) {
	tr, n := build()
	view := html.NewView(tr)

	r := New(parse(t, `#n { width: 10px } .box { width: 20px }`), nil)
	assert.Equal(t, layout.Px(20), r.Resolve(view.Node(n), nil).Width)

	r = New(parse(t, `.box { width: 20px } #n { width: 10px }`), nil)
	assert.Equal(t, layout.Px(10), r.Resolve(view.Node(n), nil).Width)
}

func TestRulesOnlySetTheirProperties(t *testing.T) {
	tr, n := build()
	view := html.NewView(tr)
	r := New(parse(t, `
		Unstyled { height: 5px; margin-left: 2px }
		.box { width: 50% }
		.other { width: 1px }
	`), nil)

	got := r.Resolve(view.Node(n), nil)
	want := css.DefaultComputedStyle()
	want.Width = layout.Percent(50)
	want.Height = layout.Px(5)
	want.MarginLeft = layout.Px(2)
	assert.Equal(t, want, got)
	assert.Len(t, r.MatchingRules(view.Node(n)), 2)

	assert.Equal(t, css.DefaultComputedStyle(), r.Resolve(view.Root(), nil))
}

func TestInlineAppliedAfterRules(t *testing.T) {
	tr, n := build()
	view := html.NewView(tr)
	inline, err := css.NewParser().ParseInlineStyle("width: 7px")
	require.NoError(t, err)

	r := New(parse(t, `#n { width: 10px; height: 3px }`), nil)
	got := r.Resolve(view.Node(n), inline)
	assert.Equal(t, layout.Px(7), got.Width)
	assert.Equal(t, layout.Px(3), got.Height)
}

func TestNilStylesheet(t *testing.T) {
	tr, n := build()
	got := New(nil, nil).Resolve(html.NewView(tr).Node(n), nil)
	assert.Equal(t, css.DefaultComputedStyle(), got)
}
