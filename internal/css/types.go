package css

import (
	"fmt"
	"strings"

	"github.com/Hackzzila/FrameUi/internal/layout"
)

// Property is one of the style properties the engine understands
type Property uint8

const (
	PropWidth Property = iota + 1
	PropHeight
	PropBackgroundColor
	PropMarginTop
	PropMarginBottom
	PropMarginLeft
	PropMarginRight
)

var propertyNames = map[string]Property{
	"width":            PropWidth,
	"height":           PropHeight,
	"background-color": PropBackgroundColor,
	"margin-top":       PropMarginTop,
	"margin-bottom":    PropMarginBottom,
	"margin-left":      PropMarginLeft,
	"margin-right":     PropMarginRight,
}

// LookupProperty finds a property by its CSS name (case-insensitive)
func LookupProperty(name string) (Property, bool) {
	p, ok := propertyNames[strings.ToLower(name)]
	return p, ok
}

func (p Property) String() string {
	for name, q := range propertyNames {
		if p == q {
			return name
		}
	}
	return fmt.Sprintf("property(%d)", uint8(p))
}

// RGBA is a non-premultiplied 8-bit color
type RGBA struct {
	R uint8 `msgpack:"r"`
	G uint8 `msgpack:"g"`
	B uint8 `msgpack:"b"`
	A uint8 `msgpack:"a"`
}

func (c RGBA) String() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %d)", c.R, c.G, c.B, c.A)
}

// Declaration represents a single property declaration.
// Color is used by background-color, Value by every other property.
type Declaration struct {
	Property Property     `msgpack:"p"`
	Value    layout.Value `msgpack:"v"`
	Color    RGBA         `msgpack:"c"`
}

// Apply overwrites the field of computed that d sets
func (d Declaration) Apply(computed *ComputedStyle) {
	switch d.Property {
	case PropWidth:
		computed.Width = d.Value
	case PropHeight:
		computed.Height = d.Value
	case PropBackgroundColor:
		computed.BackgroundColor = d.Color
	case PropMarginTop:
		computed.MarginTop = d.Value
	case PropMarginBottom:
		computed.MarginBottom = d.Value
	case PropMarginLeft:
		computed.MarginLeft = d.Value
	case PropMarginRight:
		computed.MarginRight = d.Value
	}
}

func (d Declaration) String() string {
	if d.Property == PropBackgroundColor {
		return fmt.Sprintf("%s: %s", d.Property, d.Color)
	}
	return fmt.Sprintf("%s: %s", d.Property, d.Value)
}

// Rule represents a single CSS rule with its selectors and declarations
type Rule struct {
	Selectors    SelectorList  // any one matching applies the rule
	Declarations []Declaration // applied in order
}

// Apply writes the rule's declarations into computed
func (r *Rule) Apply(computed *ComputedStyle) {
	for _, d := range r.Declarations {
		d.Apply(computed)
	}
}

// Stylesheet is the ordered list of rules of a document. Order matters:
// the cascade applies rules in this order, later ones overwriting earlier ones.
type Stylesheet struct {
	Rules []Rule
}

// AppendRules appends rules from another stylesheet
func (s *Stylesheet) AppendRules(other *Stylesheet) {
	if other == nil {
		return
	}
	s.Rules = append(s.Rules, other.Rules...)
}

// ComputedStyle holds a node's property values before layout
type ComputedStyle struct {
	Width           layout.Value
	Height          layout.Value
	BackgroundColor RGBA
	MarginTop       layout.Value
	MarginBottom    layout.Value
	MarginLeft      layout.Value
	MarginRight     layout.Value
}

// DefaultComputedStyle is the initial style: auto size, no margins, transparent
func DefaultComputedStyle() ComputedStyle {
	return ComputedStyle{
		Width:        layout.Auto(),
		Height:       layout.Auto(),
		MarginTop:    layout.Px(0),
		MarginBottom: layout.Px(0),
		MarginLeft:   layout.Px(0),
		MarginRight:  layout.Px(0),
	}
}

// RenderStyle is a node's geometry and paint after layout
type RenderStyle struct {
	Left            float32
	Top             float32
	Width           float32
	Height          float32
	BackgroundColor RGBA
}

// EmptyRenderStyle is the render style of a node that was never laid out
func EmptyRenderStyle() RenderStyle {
	u := layout.UndefinedLength
	return RenderStyle{Left: u, Top: u, Width: u, Height: u}
}
