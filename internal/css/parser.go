package css

import (
	"strings"

	douceur "github.com/aymerick/douceur/parser"
	"github.com/gorilla/css/scanner"
)

// Parser handles stylesheet parsing. It is stateless and safe for
// concurrent use.
type Parser struct{}

// NewParser creates a new CSS parser
func NewParser() *Parser {
	return &Parser{}
}

// Parse parses CSS text into a Stylesheet
func (p *Parser) Parse(cssText string) (*Stylesheet, error) {
	return p.ParseAt(cssText, Position{})
}

// ParseAt parses CSS text that starts at origin inside some larger file, so
// that error positions point into that file. Every rule is parsed even after
// an error; the returned error is then a ParseErrors holding all of them and
// the stylesheet only contains the rules that parsed cleanly.
func (p *Parser) ParseAt(cssText string, origin Position) (*Stylesheet, error) {
	rp := &ruleParser{toks: tokenize(cssText, origin), end: endOf(cssText, origin)}
	sheet := &Stylesheet{Rules: make([]Rule, 0)}
	for {
		rp.skipSpace()
		t := rp.peek()
		if t == nil {
			break
		}
		switch {
		case t.Type == scanner.TokenError:
			rp.errs = append(rp.errs, t.errorf("invalid token"))
			rp.pos = len(rp.toks)
		case t.Type == scanner.TokenCDO || t.Type == scanner.TokenCDC:
			rp.pos++
		case t.Type == scanner.TokenAtKeyword:
			rp.errs = append(rp.errs, t.errorf("at-rules are not supported"))
			rp.skipAtRule()
		default:
			if rule, ok := rp.rule(); ok {
				sheet.Rules = append(sheet.Rules, rule)
			}
		}
	}
	if len(rp.errs) > 0 {
		return sheet, rp.errs
	}
	return sheet, nil
}

// ParseInlineStyle parses the body of a style attribute, e.g.
// "width: 10px; margin-top: 5%"
func (p *Parser) ParseInlineStyle(style string) ([]Declaration, error) {
	decls, err := douceur.ParseDeclarations(style)
	if err != nil {
		return nil, &ParseError{Token: style, Message: err.Error()}
	}
	var out []Declaration
	var errs ParseErrors
	for _, d := range decls {
		name := &token{Token: &scanner.Token{Type: scanner.TokenIdent, Value: d.Property}}
		if d.Important {
			errs = append(errs, name.errorf("!important is not supported"))
			continue
		}
		decl, perr := parseDeclaration(name, trimSpace(tokenize(d.Value, Position{})))
		if perr != nil {
			errs = append(errs, perr)
			continue
		}
		out = append(out, decl)
	}
	if len(errs) > 0 {
		return out, errs
	}
	return out, nil
}

type ruleParser struct {
	toks []*token
	pos  int
	end  Position
	errs ParseErrors
}

func endOf(text string, origin Position) Position {
	nl := strings.Count(text, "\n")
	col := len(text) - strings.LastIndexByte(text, '\n') - 1
	if nl == 0 {
		col += origin.Column
	}
	return Position{Line: origin.Line + nl, Column: col}
}

func (rp *ruleParser) peek() *token {
	if rp.pos >= len(rp.toks) {
		return nil
	}
	return rp.toks[rp.pos]
}

func (rp *ruleParser) skipSpace() {
	for t := rp.peek(); t != nil && t.isSpace(); t = rp.peek() {
		rp.pos++
	}
}

func (rp *ruleParser) eofError(msg string) {
	rp.errs = append(rp.errs, &ParseError{Position: rp.end, Message: msg})
}

// skipAtRule consumes an at-rule up to its semicolon or through its block
func (rp *ruleParser) skipAtRule() {
	rp.pos++
	for t := rp.peek(); t != nil; t = rp.peek() {
		rp.pos++
		if t.is(";") {
			return
		}
		if t.is("{") {
			rp.block()
			return
		}
	}
}

// block consumes tokens up to the "}" matching an already consumed "{"
func (rp *ruleParser) block() ([]*token, bool) {
	start := rp.pos
	depth := 0
	for t := rp.peek(); t != nil; t = rp.peek() {
		rp.pos++
		switch {
		case t.is("{"):
			depth++
		case t.is("}"):
			if depth == 0 {
				return rp.toks[start : rp.pos-1], true
			}
			depth--
		}
	}
	return rp.toks[start:], false
}

// rule parses one qualified rule. Errors are recorded and the whole rule
// is dropped.
func (rp *ruleParser) rule() (Rule, bool) {
	start := rp.pos
	var open *token
	for t := rp.peek(); t != nil; t = rp.peek() {
		rp.pos++
		if t.is("{") {
			open = t
			break
		}
		if t.is("}") || t.is(";") {
			rp.errs = append(rp.errs, t.errorf("unexpected %q", t.Value))
			return Rule{}, false
		}
	}
	if open == nil {
		rp.eofError("unexpected end of stylesheet, expected '{'")
		return Rule{}, false
	}
	prelude := rp.toks[start : rp.pos-1]
	body, closed := rp.block()

	ok := true
	selectors, perr := parseSelectorTokens(prelude, open.pos)
	if perr != nil {
		rp.errs = append(rp.errs, perr)
		ok = false
	}
	decls, errs := parseDeclarationBlock(body)
	if len(errs) > 0 {
		rp.errs = append(rp.errs, errs...)
		ok = false
	}
	if !closed {
		rp.eofError("unexpected end of stylesheet, expected '}'")
		ok = false
	}
	if !ok {
		return Rule{}, false
	}
	return Rule{Selectors: selectors, Declarations: decls}, true
}

// parseDeclarationBlock parses "name: value; ..." keeping every declaration
// that is valid. Empty declarations are allowed.
func parseDeclarationBlock(toks []*token) ([]Declaration, ParseErrors) {
	var decls []Declaration
	var errs ParseErrors
	var part []*token
	depth := 0
	flush := func() {
		part = trimSpace(part)
		if len(part) == 0 {
			return
		}
		d, err := splitDeclaration(part)
		if err != nil {
			errs = append(errs, err)
		} else {
			decls = append(decls, d)
		}
		part = nil
	}
	for _, t := range toks {
		switch {
		case t.Type == scanner.TokenFunction || t.is("(") || t.is("[") || t.is("{"):
			depth++
		case t.is(")") || t.is("]") || t.is("}"):
			depth--
		case t.is(";") && depth == 0:
			flush()
			continue
		}
		part = append(part, t)
	}
	flush()
	return decls, errs
}

func splitDeclaration(toks []*token) (Declaration, *ParseError) {
	name := toks[0]
	if name.Type != scanner.TokenIdent {
		return Declaration{}, name.errorf("expected property name")
	}
	rest := toks[1:]
	for len(rest) > 0 && rest[0].isSpace() {
		rest = rest[1:]
	}
	if len(rest) == 0 || !rest[0].is(":") {
		return Declaration{}, name.errorf("expected ':' after property name")
	}
	return parseDeclaration(name, trimSpace(rest[1:]))
}

func parseDeclaration(name *token, value []*token) (Declaration, *ParseError) {
	prop, ok := LookupProperty(name.Value)
	if !ok {
		return Declaration{}, name.errorf("unknown property %q", name.Value)
	}
	if len(value) == 0 {
		return Declaration{}, name.errorf("missing value for %s", prop)
	}
	for _, t := range value {
		if t.is("!") {
			return Declaration{}, t.errorf("!important is not supported")
		}
	}
	d := Declaration{Property: prop}
	if prop == PropBackgroundColor {
		c, err := parseColor(value)
		if err != nil {
			return Declaration{}, err
		}
		d.Color = c
		return d, nil
	}
	v, err := parseLength(value)
	if err != nil {
		return Declaration{}, err
	}
	d.Value = v
	return d, nil
}
