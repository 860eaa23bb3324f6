package resolver

import (
	"go.uber.org/zap"

	"github.com/Hackzzila/FrameUi/internal/css"
	"github.com/Hackzzila/FrameUi/internal/html"
)

// Resolver computes the style of document elements from a stylesheet.
//
// Rules are applied in source order and a later rule overwrites what an
// earlier one set, whatever the selectors' specificity. Stylesheets have to
// be ordered by override priority. Inline declarations from the style
// attribute are applied last.
type Resolver struct {
	stylesheet *css.Stylesheet
	log        *zap.Logger
}

// New creates a new style resolver
func New(stylesheet *css.Stylesheet, log *zap.Logger) *Resolver {
	if stylesheet == nil {
		stylesheet = &css.Stylesheet{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{stylesheet: stylesheet, log: log}
}

// Resolve computes the style of node, starting from the default style
func (r *Resolver) Resolve(node html.Node, inline []css.Declaration) css.ComputedStyle {
	computed := css.DefaultComputedStyle()
	matched := r.MatchingRules(node)
	for _, rule := range matched {
		rule.Apply(&computed)
	}
	for _, d := range inline {
		d.Apply(&computed)
	}
	if ce := r.log.Check(zap.DebugLevel, "resolved style"); ce != nil {
		ce.Write(
			zap.Int("node", int(node.NodeID())),
			zap.Int("rules", len(matched)),
			zap.Int("inline", len(inline)))
	}
	return computed
}

// MatchingRules returns the rules whose selectors match node, in source order
func (r *Resolver) MatchingRules(node html.Node) []*css.Rule {
	var matches []*css.Rule
	for i := range r.stylesheet.Rules {
		rule := &r.stylesheet.Rules[i]
		if node.Matches(rule.Selectors) {
			matches = append(matches, rule)
		}
	}
	return matches
}
