package css

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/gorilla/css/scanner"
	"golang.org/x/net/html"
)

// Selector is one complex selector of a selector list. Selectors using
// pseudo-classes, pseudo-elements or attribute conditions are kept (so they
// survive serialization) but never match.
type Selector struct {
	text string
	sel  cascadia.Sel
}

// Text returns the selector as written, whitespace-trimmed
func (s Selector) Text() string {
	return s.text
}

// Inert reports whether s can never match
func (s Selector) Inert() bool {
	return s.sel == nil
}

// Match reports whether n matches s
func (s Selector) Match(n *html.Node) bool {
	return s.sel != nil && s.sel.Match(n)
}

// SelectorList matches if any of its selectors matches. It implements
// cascadia.Matcher and goquery.Matcher.
type SelectorList []Selector

// ParseSelectorList compiles a comma separated list of selectors
func ParseSelectorList(text string) (SelectorList, error) {
	toks := tokenize(text, Position{})
	list, perr := parseSelectorTokens(toks, Position{})
	if perr != nil {
		return nil, perr
	}
	return list, nil
}

// Match reports whether any selector of l matches n
func (l SelectorList) Match(n *html.Node) bool {
	for _, s := range l {
		if s.Match(n) {
			return true
		}
	}
	return false
}

// MatchAll returns n and its element descendants matching l, in document order
func (l SelectorList) MatchAll(n *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && l.Match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

// Filter returns the nodes of nodes that match l
func (l SelectorList) Filter(nodes []*html.Node) []*html.Node {
	var out []*html.Node
	for _, n := range nodes {
		if l.Match(n) {
			out = append(out, n)
		}
	}
	return out
}

func (l SelectorList) String() string {
	parts := make([]string, len(l))
	for i, s := range l {
		parts[i] = s.text
	}
	return strings.Join(parts, ", ")
}

var _ cascadia.Matcher = SelectorList(nil)

// MatchName is the spelling of an element name that selectors are matched
// against. Type selectors compare case-sensitively but cascadia lower-cases
// them, so each upper-case ASCII letter is written as '_' and its lower-case
// form ('_' itself doubles).
func MatchName(name string) string {
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		switch c := name[i]; {
		case c >= 'A' && c <= 'Z':
			b.WriteByte('_')
			b.WriteByte(c + 'a' - 'A')
		case c == '_':
			b.WriteString("__")
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// parseSelectorTokens splits a rule prelude at top-level commas and
// compiles every part. at is used for errors on empty input.
func parseSelectorTokens(toks []*token, at Position) (SelectorList, *ParseError) {
	var list SelectorList
	var part []*token
	depth := 0
	flush := func(sep *token) *ParseError {
		s, err := compileSelector(part, sep, at)
		if err != nil {
			return err
		}
		list = append(list, s)
		part = nil
		return nil
	}
	for _, t := range toks {
		switch {
		case t.Type == scanner.TokenFunction:
			depth++
		case t.is("(") || t.is("["):
			depth++
		case t.is(")") || t.is("]"):
			depth--
		case t.is(",") && depth == 0:
			if err := flush(t); err != nil {
				return nil, err
			}
			continue
		}
		part = append(part, t)
	}
	if err := flush(nil); err != nil {
		return nil, err
	}
	return list, nil
}

func compileSelector(toks []*token, sep *token, at Position) (Selector, *ParseError) {
	toks = trimSpace(toks)
	if len(toks) == 0 {
		if sep != nil {
			return Selector{}, sep.errorf("empty selector")
		}
		return Selector{}, &ParseError{Token: "", Position: at, Message: "empty selector"}
	}
	var b, match strings.Builder
	inert := false
	for i, t := range toks {
		if t.is(":") || t.is("[") {
			inert = true
		}
		b.WriteString(t.Value)
		if t.Type == scanner.TokenIdent && (i == 0 || !toks[i-1].is(".")) {
			match.WriteString(MatchName(t.Value))
		} else {
			match.WriteString(t.Value)
		}
	}
	text := b.String()
	if inert {
		return Selector{text: text}, nil
	}
	sel, err := cascadia.Parse(match.String())
	if err != nil {
		return Selector{}, toks[0].errorf("invalid selector: %v", err)
	}
	return Selector{text: text, sel: sel}, nil
}
