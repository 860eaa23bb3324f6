// Package compiler turns FrameUI markup into a document tree and a
// stylesheet.
//
// A document looks like
//
//	<Frame>
//	  <Head>
//	    <Style src="theme.scss"/>
//	    <Style type="css">.box { width: 50% }</Style>
//	  </Head>
//	  <Body>
//	    <Unstyled class="box" id="main">
//	      <Unstyled/>
//	    </Unstyled>
//	  </Body>
//	</Frame>
//
// Element names are case-sensitive. Problems are reported to a
// diag.Reporter; the compile fails at the end if any of them was an error.
// Broken structure (a second Frame, Head or Body, or no Body) fails
// immediately with ErrStructure.
package compiler

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/Hackzzila/FrameUi/internal/css"
	"github.com/Hackzzila/FrameUi/internal/diag"
	"github.com/Hackzzila/FrameUi/internal/dom"
	"github.com/Hackzzila/FrameUi/internal/sass"
	"github.com/Hackzzila/FrameUi/internal/source"
	"github.com/Hackzzila/FrameUi/internal/tree"
)

// ErrStructure is returned for documents whose Frame, Head and Body
// structure is broken
var ErrStructure = errors.New("invalid document structure")

// errAbort stops the compile after an error diagnostic was reported
var errAbort = errors.New("compile aborted")

// Options configures a compile. Zero values get defaults.
type Options struct {
	Resolver *source.Resolver
	Bridge   sass.Bridge
	Log      *zap.Logger
}

// Output is a successfully compiled document
type Output struct {
	Tree       *tree.Tree[dom.Element]
	Stylesheet *css.Stylesheet
}

type attr struct {
	key, val string
	at       int
}

type parser struct {
	z        *html.Tokenizer
	reporter diag.Reporter
	opts     Options
	log      *zap.Logger
	url      *url.URL
	file     diag.FileID
	css      *css.Parser

	tree  *tree.Tree[dom.Element]
	sheet *css.Stylesheet

	// current token
	tt    html.TokenType
	raw   string
	start int // offset of the token
	pos   int // offset after the token
	name  string
	attrs []attr
	text  string
}

// Compile reads the document at location (a path or URL) and compiles it.
// Diagnostics go to reporter, whose Checkpoint decides the outcome.
func Compile(location string, reporter diag.Reporter, opts Options) (*Output, error) {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Resolver == nil {
		opts.Resolver = source.New(nil, opts.Log)
	}
	if opts.Bridge == nil {
		opts.Bridge = sass.NewCLIBridge("", opts.Log)
	}

	u, err := source.FromLocation(location)
	if err != nil {
		reporter.AddDiagnostic(diag.Diagnostic{Kind: diag.URLParseError, Level: diag.Error, Detail: err.Error()})
		return nil, fmt.Errorf("failed to resolve %s: %w", location, err)
	}
	b, err := opts.Resolver.ReadAll(u)
	if err != nil {
		reporter.AddDiagnostic(diag.Diagnostic{Kind: resourceKind(err), Level: diag.Error, Detail: err.Error()})
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	text := string(b)

	p := &parser{
		z:        html.NewTokenizer(strings.NewReader(text)),
		reporter: reporter,
		opts:     opts,
		log:      opts.Log,
		url:      u,
		css:      css.NewParser(),
		tree:     tree.New(dom.NewElement(dom.KindRoot)),
		sheet:    &css.Stylesheet{Rules: make([]css.Rule, 0)},
	}
	p.file = p.reporter.AddFile(source.DisplayName(u), text)
	p.log.Debug("compiling document", zap.Stringer("url", u), zap.Int("bytes", len(text)))

	err = p.document()
	if errors.Is(err, ErrStructure) {
		return nil, err
	}
	if cerr := reporter.Checkpoint(); cerr != nil {
		return nil, cerr
	}
	if err != nil {
		return nil, err
	}
	p.log.Debug("compiled document",
		zap.Int("nodes", p.tree.Len()),
		zap.Int("rules", len(p.sheet.Rules)))
	return &Output{Tree: p.tree, Stylesheet: p.sheet}, nil
}

func resourceKind(err error) diag.Kind {
	var netErr *source.NetworkError
	var urlErr *source.URLError
	switch {
	case errors.As(err, &netErr):
		return diag.NetworkError
	case errors.As(err, &urlErr):
		return diag.URLParseError
	}
	return diag.IOError
}

// addFile registers a file with the reporter once per name
func (p *parser) addFile(name, contents string) diag.FileID {
	if id, ok := p.reporter.FileByName(name); ok {
		return id
	}
	return p.reporter.AddFile(name, contents)
}

func (p *parser) report(kind diag.Kind, level diag.Level, offset int, detail string) {
	p.reporter.AddDiagnostic(diag.Diagnostic{
		Kind:     kind,
		Level:    level,
		Location: diag.At(p.file, offset),
		Detail:   detail,
	})
}

func (p *parser) abort(kind diag.Kind, offset int, detail string) error {
	p.report(kind, diag.Error, offset, detail)
	return errAbort
}

func (p *parser) structure(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	p.report(diag.MarkupError, diag.Error, p.start, msg)
	return fmt.Errorf("%w: %s", ErrStructure, msg)
}

// next advances to the next token. The raw text is copied first because the
// tokenizer rewrites its buffer when names and text are read.
func (p *parser) next() {
	p.tt = p.z.Next()
	p.raw = string(p.z.Raw())
	p.start = p.pos
	p.pos += len(p.raw)
	p.name, p.attrs, p.text = "", p.attrs[:0], ""

	switch p.tt {
	case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
		p.name = rawTagName(p.raw)
		written := rawAttrNames(p.raw)
		_, more := p.z.TagName()
		for i := 0; more; i++ {
			var k, v []byte
			k, v, more = p.z.TagAttr()
			a := attr{key: string(k), val: string(v), at: p.start}
			if i < len(written) && strings.EqualFold(written[i].key, a.key) {
				a.key, a.at = written[i].key, p.start+written[i].at
			}
			p.attrs = append(p.attrs, a)
		}
		if p.tt == html.SelfClosingTagToken {
			// <Style/> would otherwise start raw text
			p.z.NextIsNotRawText()
		}
	case html.TextToken:
		p.text = string(p.z.Text())
	}
}

const whitespace = " \t\r\n\f"

// rawTagName returns the element name of a tag as written
func rawTagName(raw string) string {
	s := strings.TrimPrefix(strings.TrimPrefix(raw, "<"), "/")
	end := strings.IndexAny(s, whitespace+"/>")
	if end < 0 {
		return s
	}
	return s[:end]
}

// rawAttrNames lists the attribute names of a tag as written, with their
// offsets in raw. The tokenizer only reports them lower-cased.
func rawAttrNames(raw string) []attr {
	n := 1
	if strings.HasPrefix(raw, "</") {
		n = 2
	}
	i := strings.IndexAny(raw[n:], whitespace+"/>")
	if i < 0 {
		return nil
	}
	i += n

	isSpace := func(c byte) bool { return strings.IndexByte(whitespace, c) >= 0 }
	var out []attr
	for i < len(raw) {
		for i < len(raw) && (isSpace(raw[i]) || raw[i] == '/') {
			i++
		}
		if i >= len(raw) || raw[i] == '>' {
			break
		}
		start := i
		for i < len(raw) && !isSpace(raw[i]) && strings.IndexByte("=/>", raw[i]) < 0 {
			i++
		}
		if i == start {
			i++
			continue
		}
		out = append(out, attr{key: raw[start:i], at: start})

		for i < len(raw) && isSpace(raw[i]) {
			i++
		}
		if i >= len(raw) || raw[i] != '=' {
			continue
		}
		i++
		for i < len(raw) && isSpace(raw[i]) {
			i++
		}
		if i < len(raw) && (raw[i] == '"' || raw[i] == '\'') {
			end := strings.IndexByte(raw[i+1:], raw[i])
			if end < 0 {
				break
			}
			i += end + 2
			continue
		}
		for i < len(raw) && !isSpace(raw[i]) && raw[i] != '>' {
			i++
		}
	}
	return out
}

// attrOffset returns the offset of an attribute of the current tag
func (p *parser) attrOffset(key string) int {
	for _, a := range p.attrs {
		if a.key == key {
			return a.at
		}
	}
	return p.start
}

// other handles every token that is not an element of the current context.
// Comments and whitespace are skipped, everything else is an error.
func (p *parser) other() error {
	switch p.tt {
	case html.TextToken:
		trimmed := strings.TrimLeft(p.raw, whitespace)
		if trimmed == "" {
			return nil
		}
		return p.abort(diag.UnexpectedText, p.start+len(p.raw)-len(trimmed), strings.TrimSpace(p.text))
	case html.CommentToken:
		switch {
		case strings.HasPrefix(p.raw, "<![CDATA["):
			return p.abort(diag.UnexpectedCData, p.start, "")
		case strings.HasPrefix(p.raw, "<?xml"):
			return p.abort(diag.UnexpectedDecl, p.start, "")
		case strings.HasPrefix(p.raw, "<?"):
			return p.abort(diag.UnexpectedPI, p.start, "")
		}
		return nil
	case html.DoctypeToken:
		return p.abort(diag.UnexpectedDocType, p.start, "")
	case html.ErrorToken:
		if err := p.z.Err(); err != nil && err != io.EOF {
			return p.abort(diag.MarkupError, p.start, err.Error())
		}
		return p.abort(diag.UnexpectedEOF, p.start, "")
	}
	return p.abort(diag.MarkupError, p.start, fmt.Sprintf("unexpected %s", p.tt))
}

// closes checks the end tag that ends an element's content
func (p *parser) closes(name string) error {
	if p.name != name {
		return p.abort(diag.MarkupError, p.start, fmt.Sprintf("expected </%s>, found </%s>", name, p.name))
	}
	return nil
}

// skip reports an element that is not allowed where it is and consumes it
// with everything inside
func (p *parser) skip(kind diag.Kind, parent string) error {
	detail := fmt.Sprintf("`%s`", p.name)
	if kind == diag.InvalidContext {
		detail = fmt.Sprintf("`%s` is not allowed inside `%s`", p.name, parent)
	}
	p.report(kind, diag.Error, p.start, detail)
	if p.tt == html.SelfClosingTagToken {
		return nil
	}
	for depth := 1; depth > 0; {
		p.next()
		switch p.tt {
		case html.StartTagToken:
			depth++
		case html.EndTagToken:
			depth--
		case html.ErrorToken:
			return p.other()
		}
	}
	return nil
}

func isTag(tt html.TokenType) bool {
	return tt == html.StartTagToken || tt == html.SelfClosingTagToken
}

func (p *parser) document() error {
	foundFrame := false
	for {
		p.next()
		switch {
		case isTag(p.tt) && p.name == "Frame":
			if foundFrame {
				return p.structure("duplicate <Frame>")
			}
			foundFrame = true
			if err := p.frame(); err != nil {
				return err
			}
		case isTag(p.tt):
			if err := p.skip(diag.InvalidContext, "document"); err != nil {
				return err
			}
		case p.tt == html.EndTagToken:
			return p.abort(diag.MarkupError, p.start, fmt.Sprintf("unexpected </%s>", p.name))
		case p.tt == html.ErrorToken && p.z.Err() == io.EOF:
			if !foundFrame {
				return p.structure("missing <Frame>")
			}
			return nil
		default:
			if err := p.other(); err != nil {
				return err
			}
		}
	}
}

func (p *parser) frame() error {
	if p.tt == html.SelfClosingTagToken {
		p.report(diag.ExpectedClosingTag, diag.Warn, p.start, "Frame")
		return p.structure("missing <Body>")
	}
	foundHead, foundBody := false, false
	for {
		p.next()
		switch {
		case isTag(p.tt) && p.name == "Head":
			if foundHead {
				return p.structure("duplicate <Head>")
			}
			foundHead = true
			if err := p.head(); err != nil {
				return err
			}
		case isTag(p.tt) && p.name == "Body":
			if foundBody {
				return p.structure("duplicate <Body>")
			}
			foundBody = true
			if err := p.body(); err != nil {
				return err
			}
		case isTag(p.tt):
			if err := p.skip(diag.InvalidContext, "Frame"); err != nil {
				return err
			}
		case p.tt == html.EndTagToken:
			if err := p.closes("Frame"); err != nil {
				return err
			}
			if !foundBody {
				return p.structure("missing <Body>")
			}
			return nil
		default:
			if err := p.other(); err != nil {
				return err
			}
		}
	}
}

func (p *parser) head() error {
	if p.tt == html.SelfClosingTagToken {
		p.report(diag.ExpectedClosingTag, diag.Warn, p.start, "Head")
		return nil
	}
	for {
		p.next()
		switch {
		case isTag(p.tt) && p.name == "Style":
			if err := p.style(); err != nil {
				return err
			}
		case isTag(p.tt):
			if err := p.skip(diag.InvalidContext, "Head"); err != nil {
				return err
			}
		case p.tt == html.EndTagToken:
			return p.closes("Head")
		default:
			if err := p.other(); err != nil {
				return err
			}
		}
	}
}

func (p *parser) body() error {
	if p.tt == html.SelfClosingTagToken {
		p.report(diag.ExpectedClosingTag, diag.Warn, p.start, "Body")
		return nil
	}
	return p.children(p.tree.Root(), "Body")
}

// children compiles the content of a Body or Unstyled element up to its
// end tag
func (p *parser) children(parent tree.NodeID, closing string) error {
	for {
		p.next()
		switch {
		case isTag(p.tt) && p.name == "Unstyled":
			if err := p.unstyled(parent); err != nil {
				return err
			}
		case isTag(p.tt):
			if err := p.skip(diag.InvalidElement, closing); err != nil {
				return err
			}
		case p.tt == html.EndTagToken:
			return p.closes(closing)
		default:
			if err := p.other(); err != nil {
				return err
			}
		}
	}
}

func (p *parser) unstyled(parent tree.NodeID) error {
	el := dom.NewElement(dom.KindUnstyled)
	for _, a := range p.attrs {
		switch a.key {
		case "class":
			v := dom.ParseAttrValue(a.val)
			el.Attrs.Class = v
			if !v.Dynamic {
				el.SetClasses(strings.Fields(v.Text))
			}
		case "id":
			v := dom.ParseAttrValue(a.val)
			el.Attrs.ID = v
			if !v.Dynamic {
				el.SetID(v.Text)
			}
		case "style":
			el.Attrs.Style = &dom.AttrValue{Text: a.val}
			decls, err := p.css.ParseInlineStyle(a.val)
			if err != nil {
				p.cssErrors(err, p.attrOffset("style"))
			}
			el.Inline = decls
		default:
			p.report(diag.InvalidAttribute, diag.Info, p.attrOffset(a.key), fmt.Sprintf("`%s` for `Unstyled`", a.key))
		}
	}

	id := p.tree.Append(parent, el)
	if p.tt == html.SelfClosingTagToken {
		return nil
	}
	start := p.start
	if err := p.children(id, "Unstyled"); err != nil {
		return err
	}
	if p.tree.FirstChild(id) == tree.None {
		p.report(diag.ExpectedSelfClosing, diag.Warn, start, "Unstyled")
	}
	return nil
}

// cssErrors reports the errors of an inline style attribute at offset
func (p *parser) cssErrors(err error, offset int) {
	var errs css.ParseErrors
	if !errors.As(err, &errs) {
		p.report(diag.CSSParseError, diag.Error, offset, err.Error())
		return
	}
	for _, e := range errs {
		p.report(diag.CSSParseError, diag.Error, offset, e.Message)
	}
}
