package dom

import (
	"fmt"
	"strings"

	"github.com/Hackzzila/FrameUi/internal/expr"
)

// AttrValue is an attribute as written in the markup: either a literal or,
// for values of the form ${...}, an expression evaluated on every style
// pass in which the document scope changed
type AttrValue struct {
	Text    string // the literal, or the expression source without ${}
	Dynamic bool

	program expr.Program
	gen     uint64
	stale   bool
}

// ParseAttrValue classifies a raw attribute value
func ParseAttrValue(raw string) *AttrValue {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return &AttrValue{Text: strings.TrimSpace(s[2 : len(s)-1]), Dynamic: true, stale: true}
	}
	return &AttrValue{Text: raw}
}

// MarkStale forces the next evaluation to run
func (a *AttrValue) MarkStale() {
	a.stale = true
}

// upToDate reports whether the last result is still valid for scope
func (a *AttrValue) upToDate(scope *expr.Scope) bool {
	return !a.stale && a.program != nil && a.gen == scope.Generation()
}

func (a *AttrValue) compile(ev expr.Evaluator, scope *expr.Scope) error {
	if a.program != nil {
		return nil
	}
	p, err := ev.Compile(a.Text, scope)
	if err != nil {
		return err
	}
	a.program = p
	return nil
}

func (a *AttrValue) String() string {
	if a.Dynamic {
		return fmt.Sprintf("${%s}", a.Text)
	}
	return a.Text
}

// RawAttributes holds the recognized attributes of an element as written.
// Absent attributes are nil.
type RawAttributes struct {
	Class *AttrValue
	ID    *AttrValue
	Style *AttrValue
}

// Dynamic reports whether any attribute needs the expression evaluator
func (r *RawAttributes) Dynamic() bool {
	return r.Class != nil && r.Class.Dynamic || r.ID != nil && r.ID.Dynamic
}
