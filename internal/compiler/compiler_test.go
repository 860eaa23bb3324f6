package compiler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hackzzila/FrameUi/internal/css"
	"github.com/Hackzzila/FrameUi/internal/diag"
	"github.com/Hackzzila/FrameUi/internal/dom"
	"github.com/Hackzzila/FrameUi/internal/layout"
	"github.com/Hackzzila/FrameUi/internal/sass"
	"github.com/Hackzzila/FrameUi/internal/tree"
)

type bridgeFunc func(sass.Input) (*sass.Output, error)

func (f bridgeFunc) Compile(in sass.Input) (*sass.Output, error) { return f(in) }

// passthrough hands the source back as CSS without a source map
var passthrough = bridgeFunc(func(in sass.Input) (*sass.Output, error) {
	return &sass.Output{CSS: in.Source}, nil
})

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func compileIn(t *testing.T, dir, doc string, bridge sass.Bridge) (*Output, *diag.Collector, error) {
	t.Helper()
	if bridge == nil {
		bridge = passthrough
	}
	path := writeFile(t, dir, "doc.frame", doc)
	c := diag.NewCollector(nil)
	out, err := Compile(path, c, Options{Bridge: bridge})
	return out, c, err
}

func compileDoc(t *testing.T, doc string) (*Output, *diag.Collector, error) {
	return compileIn(t, t.TempDir(), doc, nil)
}

func kinds(c *diag.Collector) []diag.Kind {
	var out []diag.Kind
	for _, d := range c.Diagnostics() {
		out = append(out, d.Kind)
	}
	return out
}

// only returns the single diagnostic of the given kind
func only(t *testing.T, c *diag.Collector, kind diag.Kind) diag.Diagnostic {
	t.Helper()
	var found []diag.Diagnostic
	for _, d := range c.Diagnostics() {
		if d.Kind == kind {
			found = append(found, d)
		}
	}
	require.Len(t, found, 1, "diagnostics: %v", c.Diagnostics())
	return found[0]
}

func lineColumn(t *testing.T, c *diag.Collector, d diag.Diagnostic) (string, int, int) {
	t.Helper()
	require.NotNil(t, d.Location)
	name, _ := c.File(d.Location.File)
	line, col := c.LineColumn(d.Location.File, d.Location.Offset)
	return name, line, col
}

func TestCompileDocument(t *testing.T) {
	out, c, err := compileDoc(t, `<Frame>
  <!-- comments are fine -->
  <Head>
    <Style type="css">.box { width: 10px }</Style>
  </Head>
  <Body>
    <Unstyled class="box" id="a">
      <Unstyled/>
    </Unstyled>
    <Unstyled class="a b a"/>
  </Body>
</Frame>
`)
	require.NoError(t, err)
	assert.Empty(t, c.Diagnostics())

	tr := out.Tree
	assert.Equal(t, 4, tr.Len())
	children := collect(tr, tr.Root())
	require.Len(t, children, 2)

	first := tr.Get(children[0])
	assert.Equal(t, "a", first.ID)
	assert.Equal(t, []string{"box"}, first.Classes)
	assert.Len(t, collect(tr, children[0]), 1)
	assert.Equal(t, []string{"a", "b"}, tr.Get(children[1]).Classes)

	require.Len(t, out.Stylesheet.Rules, 1)
	assert.Equal(t, layout.Px(10), out.Stylesheet.Rules[0].Declarations[0].Value)
}

func collect(tr *tree.Tree[dom.Element], id tree.NodeID) []tree.NodeID {
	var ids []tree.NodeID
	for c := range tr.Children(id) {
		ids = append(ids, c)
	}
	return ids
}

func TestStructureErrors(t *testing.T) {
	for name, doc := range map[string]string{
		"empty":           ``,
		"duplicate frame": `<Frame><Body></Body></Frame><Frame><Body></Body></Frame>`,
		"duplicate head":  `<Frame><Head></Head><Head></Head><Body></Body></Frame>`,
		"duplicate body":  `<Frame><Body></Body><Body></Body></Frame>`,
		"missing body":    `<Frame><Head></Head></Frame>`,
		"self-closing":    `<Frame/>`,
	} {
		t.Run(name, func(t *testing.T) {
			out, c, err := compileDoc(t, doc)
			assert.ErrorIs(t, err, ErrStructure)
			assert.Nil(t, out)
			assert.Contains(t, kinds(c), diag.MarkupError)
		})
	}
}

func TestCheckpointGating(t *testing.T) {
	// an unknown attribute is only informational
	out, c, err := compileDoc(t, `<Frame><Body><Unstyled foo="x"/></Body></Frame>`)
	require.NoError(t, err)
	require.NotNil(t, out)
	d := only(t, c, diag.InvalidAttribute)
	assert.Equal(t, diag.Info, d.Level)
	assert.Equal(t, "`foo` for `Unstyled`", d.Detail)

	// an unknown element is an error, reported once for its whole subtree
	out, c, err = compileDoc(t, `<Frame><Body><Button><Unstyled/><Image/></Button><Unstyled/></Body></Frame>`)
	assert.ErrorIs(t, err, diag.ErrCompileAborted)
	assert.Nil(t, out)
	d = only(t, c, diag.InvalidElement)
	assert.Equal(t, diag.Error, d.Level)
	assert.Equal(t, "`Button`", d.Detail)

	_, c, err = compileDoc(t, `<Frame><Unstyled/><Body></Body></Frame>`)
	assert.ErrorIs(t, err, diag.ErrCompileAborted)
	assert.Equal(t, "`Unstyled` is not allowed inside `Frame`", only(t, c, diag.InvalidContext).Detail)
}

func TestElementNamesAreCaseSensitive(t *testing.T) {
	_, c, err := compileDoc(t, `<Frame><Body><unstyled/></Body></Frame>`)
	assert.ErrorIs(t, err, diag.ErrCompileAborted)
	assert.Equal(t, "`unstyled`", only(t, c, diag.InvalidElement).Detail)
}

func TestAttributeNamesAreCaseSensitive(t *testing.T) {
	doc := `<Frame><Body><Unstyled data="Class=1" Class="x" id="a"/></Body></Frame>`
	out, c, err := compileDoc(t, doc)
	require.NoError(t, err)

	var details []string
	for _, d := range c.Diagnostics() {
		require.Equal(t, diag.InvalidAttribute, d.Kind)
		details = append(details, d.Detail)
		if d.Detail == "`Class` for `Unstyled`" {
			assert.Equal(t, strings.Index(doc, `Class="x"`), d.Location.Offset)
		}
	}
	assert.Equal(t, []string{"`data` for `Unstyled`", "`Class` for `Unstyled`"}, details)

	el := out.Tree.Get(out.Tree.FirstChild(out.Tree.Root()))
	assert.Empty(t, el.Classes)
	assert.Equal(t, "a", el.ID)
}

func TestRawAttrNames(t *testing.T) {
	raw := `<Style SRC = 'a b.css' type=css/>`
	assert.Equal(t, []attr{{key: "SRC", at: 7}, {key: "type", at: 23}}, rawAttrNames(raw))
	assert.Empty(t, rawAttrNames(`</Body>`))
}

func TestUnexpectedTokens(t *testing.T) {
	for doc, kind := range map[string]diag.Kind{
		`<Frame><Body>hello</Body></Frame>`:                 diag.UnexpectedText,
		`<Frame><Body><![CDATA[x]]></Body></Frame>`:         diag.UnexpectedCData,
		`<?xml version="1.0"?><Frame><Body></Body></Frame>`: diag.UnexpectedDecl,
		`<Frame><?php echo 1 ?><Body></Body></Frame>`:       diag.UnexpectedPI,
		`<!DOCTYPE html><Frame><Body></Body></Frame>`:       diag.UnexpectedDocType,
		`<Frame><Body>`:                diag.UnexpectedEOF,
		`<Frame><Body></Head></Frame>`: diag.MarkupError,
	} {
		t.Run(kind.String(), func(t *testing.T) {
			out, c, err := compileDoc(t, doc)
			require.Error(t, err)
			assert.Nil(t, out)
			assert.Equal(t, diag.Error, only(t, c, kind).Level)
		})
	}
}

func TestUnexpectedTextPosition(t *testing.T) {
	_, c, err := compileDoc(t, "<Frame>\n  <Body>\n    oops\n  </Body>\n</Frame>")
	require.Error(t, err)
	d := only(t, c, diag.UnexpectedText)
	assert.Equal(t, "oops", d.Detail)
	_, line, col := lineColumn(t, c, d)
	assert.Equal(t, 2, line)
	assert.Equal(t, 4, col)
}

func TestFormattingWarnings(t *testing.T) {
	out, c, err := compileDoc(t, `<Frame><Head/><Body><Unstyled></Unstyled></Body></Frame>`)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, diag.Warn, only(t, c, diag.ExpectedClosingTag).Level)
	assert.Equal(t, diag.Warn, only(t, c, diag.ExpectedSelfClosing).Level)
	assert.Equal(t, 2, out.Tree.Len())
}

func TestStyleTypes(t *testing.T) {
	for name, want := range map[string]styleType{
		"theme.css":       styleCSS,
		"theme.sass":      styleSass,
		"theme.scss":      styleSCSS,
		"theme":           styleSCSS,
		"theme.less":      styleSCSS,
		"archive.tar.css": styleCSS,
		"":                styleSCSS,
	} {
		assert.Equal(t, want, inferStyleType(name), name)
	}

	ty, ok := parseStyleType(" CSS ")
	assert.True(t, ok)
	assert.Equal(t, styleCSS, ty)
	_, ok = parseStyleType("less")
	assert.False(t, ok)
}

func TestInlineCSSErrorPosition(t *testing.T) {
	_, c, err := compileDoc(t, `<Frame>
  <Head>
    <Style type="css">
      .a { width: 10em }
    </Style>
  </Head>
  <Body></Body>
</Frame>`)
	assert.ErrorIs(t, err, diag.ErrCompileAborted)
	d := only(t, c, diag.CSSParseError)
	assert.Contains(t, d.Detail, "10em")
	_, line, col := lineColumn(t, c, d)
	assert.Equal(t, 3, line)
	assert.Equal(t, 18, col)
}

func TestStyleAttribute(t *testing.T) {
	out, _, err := compileDoc(t, `<Frame><Body><Unstyled style="width: 5px; margin-top: 10%"/></Body></Frame>`)
	require.NoError(t, err)
	el := out.Tree.Get(out.Tree.FirstChild(out.Tree.Root()))
	require.Len(t, el.Inline, 2)
	assert.Equal(t, css.PropWidth, el.Inline[0].Property)
	assert.Equal(t, layout.Percent(10), el.Inline[1].Value)

	_, c, err := compileDoc(t, `<Frame><Body><Unstyled style="width: 5em"/></Body></Frame>`)
	assert.ErrorIs(t, err, diag.ErrCompileAborted)
	only(t, c, diag.CSSParseError)
}

func TestLinkedStylesheets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "theme.css", ".x { height: 3px }\n.y { height: 3em }\n")
	writeFile(t, dir, "layout.sass", ".z\n  width: 1px\n")

	var inputs []sass.Input
	bridge := bridgeFunc(func(in sass.Input) (*sass.Output, error) {
		inputs = append(inputs, in)
		return &sass.Output{CSS: ".z { width: 1px }"}, nil
	})
	out, c, err := compileIn(t, dir, `<Frame><Head>
  <Style src="theme.css"/>
  <Style src="layout.sass"/>
  <Style src="missing.css"/>
</Head><Body></Body></Frame>`, bridge)
	assert.ErrorIs(t, err, diag.ErrCompileAborted)
	assert.Nil(t, out)

	require.Len(t, inputs, 1)
	assert.True(t, inputs[0].Indented)
	assert.Equal(t, "layout.sass", filepath.Base(inputs[0].Path))

	d := only(t, c, diag.CSSParseError)
	name, line, col := lineColumn(t, c, d)
	assert.Equal(t, "theme.css", filepath.Base(name))
	assert.Equal(t, 1, line)
	assert.Equal(t, 13, col)

	missing := only(t, c, diag.IOError)
	assert.Contains(t, missing.Detail, "missing.css")
	name, line, _ = lineColumn(t, c, missing)
	assert.Equal(t, "doc.frame", filepath.Base(name))
	assert.Equal(t, 3, line)
}

func TestLinkedStylesheetRegisteredOnce(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "theme.css", ".y { height: 3em }\n")
	_, c, err := compileIn(t, dir, `<Frame><Head>
  <Style src="theme.css"/>
  <Style src="theme.css"/>
</Head><Body></Body></Frame>`, nil)
	assert.ErrorIs(t, err, diag.ErrCompileAborted)

	var files []diag.FileID
	for _, d := range c.Diagnostics() {
		require.Equal(t, diag.CSSParseError, d.Kind)
		files = append(files, d.Location.File)
	}
	require.Len(t, files, 2)
	assert.Equal(t, files[0], files[1])
	name, _ := c.File(files[0])
	id, ok := c.FileByName(name)
	require.True(t, ok)
	assert.Equal(t, files[0], id)
}

func TestSelfClosingStyleNeedsSrc(t *testing.T) {
	_, c, err := compileDoc(t, `<Frame><Head><Style type="css"/></Head><Body></Body></Frame>`)
	assert.ErrorIs(t, err, diag.ErrCompileAborted)
	assert.Equal(t, diag.Error, only(t, c, diag.InvalidAttribute).Level)
}

func TestSassErrorInInlineStyle(t *testing.T) {
	var input sass.Input
	bridge := bridgeFunc(func(in sass.Input) (*sass.Output, error) {
		input = in
		return nil, &sass.Error{File: in.Path, Line: 1, Column: 2, Message: "undefined variable"}
	})
	_, c, err := compileIn(t, t.TempDir(), "<Frame><Head><Style>\na {\n  b: $c\n}</Style></Head><Body></Body></Frame>", bridge)
	assert.ErrorIs(t, err, diag.ErrCompileAborted)
	assert.False(t, input.Indented)
	assert.Equal(t, "doc.frame", filepath.Base(input.Path))

	d := only(t, c, diag.PreprocessorError)
	assert.Equal(t, "undefined variable", d.Detail)
	name, line, col := lineColumn(t, c, d)
	assert.Equal(t, "doc.frame", filepath.Base(name))
	assert.Equal(t, 1, line)
	assert.Equal(t, 2, col)
}

func TestSassOutputErrorsFollowSourceMap(t *testing.T) {
	bridge := bridgeFunc(func(in sass.Input) (*sass.Output, error) {
		return &sass.Output{
			CSS: ".a { width: 1em }\n",
			SourceMap: []byte(`{"version":3,"sources":["_vars.scss"],` +
				`"sourcesContent":["$w: 1em;\n.a { width: $w }\n"],"names":[],"mappings":"AACA"}`),
		}, nil
	})
	_, c, err := compileIn(t, t.TempDir(), `<Frame><Head><Style>@use "vars";</Style></Head><Body></Body></Frame>`, bridge)
	assert.ErrorIs(t, err, diag.ErrCompileAborted)

	d := only(t, c, diag.CSSParseError)
	name, line, col := lineColumn(t, c, d)
	assert.Equal(t, "_vars.scss", name)
	assert.Equal(t, 1, line)
	assert.Equal(t, 0, col)
}

func TestSassOutputErrorAtEndOfInput(t *testing.T) {
	bridge := bridgeFunc(func(in sass.Input) (*sass.Output, error) {
		return &sass.Output{
			CSS: ".a {\n  width: 1px;\n",
			SourceMap: []byte(`{"version":3,"sources":["_vars.scss"],` +
				`"sourcesContent":["$w: 1px;\n.a {\n  width: $w;\n"],"names":[],"mappings":"AACA"}`),
		}, nil
	})
	_, c, err := compileIn(t, t.TempDir(), `<Frame><Head><Style>@use "vars";</Style></Head><Body></Body></Frame>`, bridge)
	assert.ErrorIs(t, err, diag.ErrCompileAborted)

	d := only(t, c, diag.CSSParseError)
	assert.Contains(t, d.Detail, "expected '}'")
	name, line, col := lineColumn(t, c, d)
	assert.Equal(t, "_vars.scss", name)
	assert.Equal(t, 1, line)
	assert.Equal(t, 0, col)
}

func TestBridgeFailure(t *testing.T) {
	bridge := bridgeFunc(func(sass.Input) (*sass.Output, error) {
		return nil, os.ErrNotExist
	})
	_, c, err := compileIn(t, t.TempDir(), `<Frame><Head><Style>a { b: c }</Style></Head><Body></Body></Frame>`, bridge)
	assert.ErrorIs(t, err, diag.ErrCompileAborted)
	d := only(t, c, diag.PreprocessorError)
	name, line, col := lineColumn(t, c, d)
	assert.Equal(t, "doc.frame", filepath.Base(name))
	assert.Equal(t, 0, line)
	assert.Equal(t, 20, col)
}

func TestMissingDocument(t *testing.T) {
	c := diag.NewCollector(nil)
	_, err := Compile(filepath.Join(t.TempDir(), "nope.frame"), c, Options{Bridge: passthrough})
	require.Error(t, err)
	assert.Equal(t, []diag.Kind{diag.IOError}, kinds(c))
}
