package html

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hackzzila/FrameUi/internal/css"
	"github.com/Hackzzila/FrameUi/internal/dom"
	"github.com/Hackzzila/FrameUi/internal/tree"
)

func unstyled(id string, classes ...string) dom.Element {
	e := dom.NewElement(dom.KindUnstyled)
	e.SetID(id)
	e.SetClasses(classes)
	return e
}

// Root > a.x.y, (b > c.x)
func sampleTree() (*tree.Tree[dom.Element], map[string]tree.NodeID) {
	t := tree.New(dom.NewElement(dom.KindRoot))
	ids := map[string]tree.NodeID{"root": t.Root()}
	ids["a"] = t.Append(t.Root(), unstyled("a", "x", "y"))
	ids["b"] = t.Append(t.Root(), unstyled("b"))
	ids["c"] = t.Append(ids["b"], unstyled("", "x"))
	return t, ids
}

func selectors(t *testing.T, text string) css.SelectorList {
	l, err := css.ParseSelectorList(text)
	require.NoError(t, err)
	return l
}

func TestQuerySelector(t *testing.T) {
	tr, ids := sampleTree()
	v := NewView(tr)

	for sel, want := range map[string]tree.NodeID{
		"#a":       ids["a"],
		".x":       ids["a"],
		".y":       ids["a"],
		"#b .x":    ids["c"],
		"#b > .x":  ids["c"],
		"Unstyled": ids["a"],
		"*":        ids["root"],
		".x.y, #b": ids["a"],
		"#a ~ #b":  ids["b"],
	} {
		got, ok := v.QuerySelector(selectors(t, sel))
		require.True(t, ok, sel)
		assert.Equal(t, want, got, sel)
	}

	_, ok := v.QuerySelector(selectors(t, ".z"))
	assert.False(t, ok)
	_, ok = v.QuerySelector(selectors(t, "unstyled"))
	assert.False(t, ok)
	_, ok = v.QuerySelector(selectors(t, ".x:hover"))
	assert.False(t, ok)

	assert.Equal(t, []tree.NodeID{ids["a"], ids["c"]}, v.QuerySelectorAll(selectors(t, ".x")))
}

func TestPredicateSurface(t *testing.T) {
	tr, ids := sampleTree()
	v := NewView(tr)

	root := v.Root()
	assert.True(t, root.IsRoot())
	assert.Equal(t, "#root", root.LocalName())
	assert.Nil(t, root.Parent())
	assert.False(t, root.IsEmpty())

	a := root.FirstChild()
	require.NotNil(t, a)
	assert.Equal(t, ids["a"], a.NodeID())
	assert.Equal(t, "Unstyled", a.LocalName())
	assert.Empty(t, a.Namespace())
	assert.True(t, a.HasID("a"))
	assert.False(t, a.HasID("A"))
	assert.True(t, a.HasClass("x"))
	assert.False(t, a.HasClass("X"))
	assert.False(t, a.IsRoot())
	assert.True(t, a.IsEmpty())
	assert.Nil(t, a.PrevSibling())

	b := a.NextSibling()
	require.NotNil(t, b)
	assert.Equal(t, ids["b"], b.NodeID())
	assert.Equal(t, ids["a"], b.PrevSibling().NodeID())
	assert.Equal(t, ids["root"], b.Parent().NodeID())

	c := v.Node(ids["c"])
	assert.False(t, c.HasID(""), "no id attribute")
	assert.True(t, c.Matches(selectors(t, "#b > .x")))
	assert.False(t, c.Matches(selectors(t, "#a .x")))
	assert.Nil(t, v.Node(tree.NodeID(42)))
}

func TestViewHTML(t *testing.T) {
	tr, _ := sampleTree()
	out, err := NewView(tr).HTML()
	require.NoError(t, err)
	assert.Contains(t, out, `id="a"`)
	assert.Contains(t, out, `class="x y"`)
}
