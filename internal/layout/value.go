package layout

import (
	"fmt"
	"math"
)

// Unit tells how a Value is to be interpreted by a layout engine
type Unit uint8

const (
	UnitUndefined Unit = iota // no value set
	UnitPoint                 // absolute length in px
	UnitPercent               // relative to the containing box
	UnitAuto                  // engine decides
)

// Value is a length, percentage, auto or undefined.
// It is what style declarations push into layout nodes.
type Value struct {
	Unit  Unit    `msgpack:"u"`
	Value float32 `msgpack:"v"`
}

// Px creates an absolute length
func Px(v float32) Value {
	return Value{Unit: UnitPoint, Value: v}
}

// Percent creates a relative length, 50 meaning 50%
func Percent(v float32) Value {
	return Value{Unit: UnitPercent, Value: v}
}

// Auto creates an auto value
func Auto() Value {
	return Value{Unit: UnitAuto}
}

// Undefined creates an unset value
func Undefined() Value {
	return Value{Unit: UnitUndefined}
}

// Resolve turns v into an absolute length relative to base.
// The second result is false for auto, undefined, and percentages of an undefined base.
func (v Value) Resolve(base float32) (float32, bool) {
	switch v.Unit {
	case UnitPoint:
		return v.Value, true
	case UnitPercent:
		if isUndefined(base) {
			return 0, false
		}
		return base * v.Value / 100, true
	}
	return 0, false
}

func (v Value) String() string {
	switch v.Unit {
	case UnitPoint:
		return fmt.Sprintf("%gpx", v.Value)
	case UnitPercent:
		return fmt.Sprintf("%g%%", v.Value)
	case UnitAuto:
		return "auto"
	}
	return "none"
}

// Direction is the inline direction used for a layout pass
type Direction uint8

const (
	DirectionInherit Direction = iota
	DirectionLTR
	DirectionRTL
)

func (d Direction) String() string {
	switch d {
	case DirectionLTR:
		return "ltr"
	case DirectionRTL:
		return "rtl"
	}
	return "inherit"
}

// Edge selects one side of a box
type Edge uint8

const (
	EdgeTop Edge = iota
	EdgeBottom
	EdgeLeft
	EdgeRight
)

// Rect is the computed geometry of a node, relative to its parent
type Rect struct {
	Left   float32
	Top    float32
	Width  float32
	Height float32
}

// UndefinedLength is the value of lengths nobody computed yet
var UndefinedLength = float32(math.NaN())

func isUndefined(f float32) bool {
	return f != f
}
