package compiler

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/Hackzzila/FrameUi/internal/css"
	"github.com/Hackzzila/FrameUi/internal/diag"
	"github.com/Hackzzila/FrameUi/internal/sass"
	"github.com/Hackzzila/FrameUi/internal/source"
)

type styleType uint8

const (
	styleCSS styleType = iota
	styleSass
	styleSCSS
)

func (t styleType) String() string {
	switch t {
	case styleCSS:
		return "css"
	case styleSass:
		return "sass"
	}
	return "scss"
}

func parseStyleType(s string) (styleType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "css":
		return styleCSS, true
	case "sass":
		return styleSass, true
	case "scss":
		return styleSCSS, true
	}
	return styleSCSS, false
}

// inferStyleType guesses the type from a file name. Only names with an
// extension count, and anything that is not css or sass is scss.
func inferStyleType(name string) styleType {
	parts := strings.Split(name, ".")
	if len(parts) < 2 {
		return styleSCSS
	}
	switch parts[len(parts)-1] {
	case "css":
		return styleCSS
	case "sass":
		return styleSass
	}
	return styleSCSS
}

// styleInput is the text of one Style element. url is nil for inline
// styles, which start at offset at of the document.
type styleInput struct {
	text string
	url  *url.URL
	ty   styleType
	at   int
}

func (p *parser) style() error {
	tagStart := p.start
	self := p.tt == html.SelfClosingTagToken

	var src string
	hasSrc, hasType := false, false
	ty := styleSCSS
	for _, a := range p.attrs {
		switch {
		case a.key == "src" && self:
			src, hasSrc = a.val, true
		case a.key == "type":
			if t, ok := parseStyleType(a.val); ok {
				ty, hasType = t, true
			} else {
				p.report(diag.InvalidAttribute, diag.Info, p.attrOffset("type"), fmt.Sprintf("unknown type %q for `Style`", a.val))
			}
		default:
			p.report(diag.InvalidAttribute, diag.Info, p.attrOffset(a.key), fmt.Sprintf("`%s` for `Style`", a.key))
		}
	}

	if self {
		if !hasSrc {
			p.report(diag.InvalidAttribute, diag.Error, tagStart, "self-closing `Style` needs a `src`")
			return nil
		}
		u, err := source.Join(p.url, src)
		if err != nil {
			p.report(diag.URLParseError, diag.Error, p.attrOffset("src"), err.Error())
			return nil
		}
		if !hasType {
			ty = inferStyleType(path.Base(u.Path))
		}
		b, err := p.opts.Resolver.ReadAll(u)
		if err != nil {
			p.report(resourceKind(err), diag.Error, p.attrOffset("src"), err.Error())
			return nil
		}
		return p.compileStyle(styleInput{text: string(b), url: u, ty: ty, at: tagStart})
	}

	p.next()
	text, contentStart := "", p.start
	if p.tt == html.TextToken {
		text = p.raw
		p.next()
	}
	if p.tt != html.EndTagToken {
		return p.other()
	}
	if err := p.closes("Style"); err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return p.compileStyle(styleInput{text: text, ty: ty, at: contentStart})
}

// origin returns the line and column of a document offset
func (p *parser) origin(offset int) css.Position {
	line := p.reporter.Line(p.file, offset)
	return css.Position{Line: line, Column: offset - p.reporter.Position(p.file, line, 0)}
}

func (p *parser) locate(file diag.FileID, line, column int) *diag.Location {
	return diag.At(file, p.reporter.Position(file, line, column))
}

func (p *parser) compileStyle(in styleInput) error {
	p.log.Debug("compiling style",
		zap.Stringer("type", in.ty),
		zap.Bool("inline", in.url == nil),
		zap.Int("bytes", len(in.text)))

	if in.ty == styleCSS {
		file, origin := p.file, css.Position{}
		if in.url != nil {
			file = p.addFile(source.DisplayName(in.url), in.text)
		} else {
			origin = p.origin(in.at)
		}
		sheet, err := p.css.ParseAt(in.text, origin)
		p.sheet.AppendRules(sheet)
		p.styleErrors(err, in, func(e *css.ParseError) *diag.Location {
			return p.locate(file, e.Position.Line, e.Position.Column)
		})
		return nil
	}

	inputPath := ""
	if in.url != nil && in.url.Scheme == "file" {
		inputPath = source.DisplayName(in.url)
	} else if in.url == nil && p.url.Scheme == "file" {
		inputPath = source.DisplayName(p.url)
	}
	out, err := p.opts.Bridge.Compile(sass.Input{Source: in.text, Path: inputPath, Indented: in.ty == styleSass})
	if err != nil {
		var serr *sass.Error
		if errors.As(err, &serr) {
			loc := p.locateSass(serr.File, serr.Line, serr.Column, in, inputPath, nil)
			if loc == nil {
				loc = diag.At(p.file, in.at)
			}
			p.reporter.AddDiagnostic(diag.Diagnostic{Kind: diag.PreprocessorError, Level: diag.Error, Location: loc, Detail: serr.Message})
			return nil
		}
		p.report(diag.PreprocessorError, diag.Error, in.at, err.Error())
		return nil
	}

	sheet, err := p.css.Parse(out.CSS)
	p.sheet.AppendRules(sheet)
	if err == nil {
		return nil
	}
	tr, terr := sass.NewTranslator(out.SourceMap)
	if terr != nil {
		p.log.Warn("unusable source map", zap.Error(terr))
	}
	p.styleErrors(err, in, func(e *css.ParseError) *diag.Location {
		if tr == nil {
			return nil
		}
		orig, ok := tr.Original(e.Position.Line, e.Position.Column)
		if !ok {
			return nil
		}
		return p.locateSass(orig.Source, orig.Line, orig.Column, in, inputPath, tr)
	})
	return nil
}

// styleErrors reports stylesheet parse errors. Errors that cannot be
// located are reported at the Style element.
func (p *parser) styleErrors(err error, in styleInput, locate func(*css.ParseError) *diag.Location) {
	if err == nil {
		return
	}
	var errs css.ParseErrors
	if !errors.As(err, &errs) {
		p.report(diag.CSSParseError, diag.Error, in.at, err.Error())
		return
	}
	for _, e := range errs {
		loc := locate(e)
		if loc == nil {
			loc = diag.At(p.file, in.at)
		}
		detail := e.Message
		if e.Token != "" {
			detail = fmt.Sprintf("%s: %q", e.Message, e.Token)
		}
		p.reporter.AddDiagnostic(diag.Diagnostic{Kind: diag.CSSParseError, Level: diag.Error, Location: loc, Detail: detail})
	}
}

// isMainSource reports whether a source named by the preprocessor is the
// text that was handed to it
func isMainSource(src, inputPath string) bool {
	switch {
	case src == "", src == "-", src == "stdin", strings.HasPrefix(src, "data:"):
		return true
	case inputPath == "":
		return false
	}
	return src == inputPath || localPath(src) == inputPath
}

func localPath(src string) string {
	if u, err := url.Parse(src); err == nil && u.Scheme == "file" {
		return filepath.FromSlash(u.Path)
	}
	return src
}

// locateSass maps a position reported in preprocessor terms to a registered
// file. Imported files are registered on first use with the content from
// the source map, or read from disk.
func (p *parser) locateSass(src string, line, column int, in styleInput, inputPath string, tr *sass.Translator) *diag.Location {
	if isMainSource(src, inputPath) {
		if in.url == nil {
			origin := p.origin(in.at)
			if line == 0 {
				column += origin.Column
			}
			return p.locate(p.file, line+origin.Line, column)
		}
		file := p.addFile(source.DisplayName(in.url), in.text)
		return p.locate(file, line, column)
	}

	name := localPath(src)
	if id, ok := p.reporter.FileByName(name); ok {
		return p.locate(id, line, column)
	}
	content, ok := "", false
	if tr != nil {
		content, ok = tr.Content(src)
	}
	if !ok {
		u, err := source.FromLocation(name)
		if err != nil {
			return nil
		}
		b, err := p.opts.Resolver.ReadAll(u)
		if err != nil {
			p.log.Debug("cannot read preprocessor source", zap.String("source", src), zap.Error(err))
			return nil
		}
		content = string(b)
	}
	return p.locate(p.addFile(name, content), line, column)
}
