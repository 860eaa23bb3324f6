package css

import (
	"strconv"
	"strings"

	"github.com/gorilla/css/scanner"
	"github.com/mazznoer/csscolorparser"

	"github.com/Hackzzila/FrameUi/internal/layout"
)

// parseLength accepts <length-px> | <percentage> | auto | none and a
// unitless zero. none leaves the length undefined.
func parseLength(toks []*token) (layout.Value, *ParseError) {
	if len(toks) > 1 {
		return layout.Value{}, toks[1].errorf("unexpected %q after value", toks[1].Value)
	}
	t := toks[0]
	switch t.Type {
	case scanner.TokenIdent:
		switch strings.ToLower(t.Value) {
		case "auto":
			return layout.Auto(), nil
		case "none":
			return layout.Undefined(), nil
		}
	case scanner.TokenPercentage:
		f, err := strconv.ParseFloat(strings.TrimSuffix(t.Value, "%"), 32)
		if err != nil {
			return layout.Value{}, t.errorf("invalid percentage")
		}
		return layout.Percent(float32(f)), nil
	case scanner.TokenDimension:
		num, unit := splitDimension(t.Value)
		if !strings.EqualFold(unit, "px") {
			return layout.Value{}, t.errorf("unsupported unit %q", unit)
		}
		f, err := strconv.ParseFloat(num, 32)
		if err != nil {
			return layout.Value{}, t.errorf("invalid length")
		}
		return layout.Px(float32(f)), nil
	case scanner.TokenNumber:
		f, err := strconv.ParseFloat(t.Value, 32)
		if err == nil && f == 0 {
			return layout.Px(0), nil
		}
		return layout.Value{}, t.errorf("length needs a unit")
	}
	return layout.Value{}, t.errorf("expected length, percentage, auto or none")
}

// splitDimension cuts "12.5px" into "12.5" and "px"
func splitDimension(s string) (string, string) {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
		i++
	}
	if i+1 < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if s[j] == '+' || s[j] == '-' {
			j++
		}
		if j < len(s) && s[j] >= '0' && s[j] <= '9' {
			for j < len(s) && s[j] >= '0' && s[j] <= '9' {
				j++
			}
			i = j
		}
	}
	return s[:i], s[i:]
}

// parseColor accepts any CSS color syntax except currentcolor
func parseColor(toks []*token) (RGBA, *ParseError) {
	if toks[0].Type == scanner.TokenIdent && strings.EqualFold(toks[0].Value, "currentcolor") {
		return RGBA{}, toks[0].errorf("currentcolor is not supported")
	}
	c, err := csscolorparser.Parse(joinTokens(toks))
	if err != nil {
		return RGBA{}, toks[0].errorf("invalid color: %v", err)
	}
	r, g, b, a := c.RGBA255()
	return RGBA{R: r, G: g, B: b, A: a}, nil
}
