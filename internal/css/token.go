package css

import (
	"fmt"
	"strings"

	"github.com/gorilla/css/scanner"
)

// Position is a zero-based line and column inside the text a stylesheet
// was embedded in.
type Position struct {
	Line   int
	Column int
}

// ParseError is a stylesheet syntax or value error.
// Token is the offending source text.
type ParseError struct {
	Token    string
	Position Position
	Message  string
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("%d:%d: %s", e.Position.Line+1, e.Position.Column+1, e.Message)
	}
	return fmt.Sprintf("%d:%d: %s (at %q)", e.Position.Line+1, e.Position.Column+1, e.Message, e.Token)
}

// ParseErrors collects every error of one Parse call, in source order
type ParseErrors []*ParseError

func (e ParseErrors) Error() string {
	switch len(e) {
	case 0:
		return "no errors"
	case 1:
		return e[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", e[0].Error(), len(e)-1)
}

type token struct {
	*scanner.Token
	pos Position
}

func (t *token) is(ch string) bool {
	return t.Type == scanner.TokenChar && t.Value == ch
}

func (t *token) isSpace() bool {
	return t.Type == scanner.TokenS
}

func (t *token) errorf(format string, args ...any) *ParseError {
	return &ParseError{Token: t.Value, Position: t.pos, Message: fmt.Sprintf(format, args...)}
}

// tokenize scans text, dropping comments. Positions are shifted by origin,
// whose column only applies to the first line.
func tokenize(text string, origin Position) []*token {
	s := scanner.New(text)
	lines := strings.Split(text, "\n")
	var toks []*token
	for {
		t := s.Next()
		if t.Type == scanner.TokenEOF {
			return toks
		}
		if t.Type == scanner.TokenComment || t.Type == scanner.TokenBOM {
			continue
		}
		pos := Position{Line: t.Line - 1, Column: t.Column - 1}
		if pos.Line < len(lines) {
			pos.Column = byteColumn(lines[pos.Line], pos.Column)
		}
		if pos.Line == 0 {
			pos.Column += origin.Column
		}
		pos.Line += origin.Line
		toks = append(toks, &token{Token: t, pos: pos})
		if t.Type == scanner.TokenError {
			return toks
		}
	}
}

// byteColumn converts a column counted in runes, as the scanner reports
// them, to a byte column within line
func byteColumn(line string, runes int) int {
	for i := range line {
		if runes == 0 {
			return i
		}
		runes--
	}
	return len(line)
}

func trimSpace(toks []*token) []*token {
	for len(toks) > 0 && toks[0].isSpace() {
		toks = toks[1:]
	}
	for len(toks) > 0 && toks[len(toks)-1].isSpace() {
		toks = toks[:len(toks)-1]
	}
	return toks
}

func joinTokens(toks []*token) string {
	var b strings.Builder
	for _, t := range toks {
		b.WriteString(t.Value)
	}
	return b.String()
}
