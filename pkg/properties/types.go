// Package properties derives editable property descriptors from element
// nodes and writes edits back into them.
//
// Extraction rules and value renderers are contributed by plugins installed
// into a Registry. The Engine combines a Registry with the element model to
// list, validate, transform and apply property edits.
package properties

import (
	"math"

	"github.com/gnana997/compedit/pkg/element"
)

// PropertyType selects the renderer that edits a property.
type PropertyType string

const (
	TypeText               PropertyType = "text"
	TypeNumber             PropertyType = "number"
	TypeColor              PropertyType = "color"
	TypeBoolean            PropertyType = "boolean"
	TypeSelect             PropertyType = "select"
	TypeSlider             PropertyType = "slider"
	TypeDimension          PropertyType = "dimension"
	TypeSpacing            PropertyType = "spacing"
	TypeSpacingDirectional PropertyType = "spacing-directional"
)

// AllTypes lists every property type in declaration order.
var AllTypes = []PropertyType{
	TypeText, TypeNumber, TypeColor, TypeBoolean, TypeSelect,
	TypeSlider, TypeDimension, TypeSpacing, TypeSpacingDirectional,
}

// Valid reports whether t is one of the known property types.
func (t PropertyType) Valid() bool {
	for _, known := range AllTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Directional reports whether properties of this type carry per-side values
// alongside their scalar.
func (t PropertyType) Directional() bool {
	return t == TypeSpacingDirectional
}

// TextContentKey is the property key that edits a node's text instead of
// its style.
const TextContentKey = "textContent"

// DefaultCategory is used when neither the property nor its extractor name
// a category.
const DefaultCategory = "Other"

// Option is one entry of an enumerated property.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label,omitempty"`
}

// Options builds options whose labels equal their values.
func Options(values ...string) []Option {
	opts := make([]Option, len(values))
	for i, v := range values {
		opts[i] = Option{Value: v}
	}
	return opts
}

// Sides holds the four per-side values of a directional property.
type Sides struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Uniform returns sides that all equal v.
func Uniform(v float64) Sides {
	return Sides{Top: v, Right: v, Bottom: v, Left: v}
}

// Mean is the arithmetic mean of the four sides.
func (s Sides) Mean() float64 {
	return (s.Top + s.Right + s.Bottom + s.Left) / 4
}

// Scalar is the value stored under the base key: the common value when all
// sides agree, otherwise the mean rounded half up.
func (s Sides) Scalar() float64 {
	if s.Equal() {
		return s.Top
	}
	return math.Floor(s.Mean() + 0.5)
}

// Equal reports whether all four sides hold the same value.
func (s Sides) Equal() bool {
	return s.Top == s.Right && s.Right == s.Bottom && s.Bottom == s.Left
}

// SideKeys returns the style keys of the four sides of base, in
// top, right, bottom, left order.
func SideKeys(base string) [4]string {
	return [4]string{base + "Top", base + "Right", base + "Bottom", base + "Left"}
}

func (s Sides) values() [4]float64 {
	return [4]float64{s.Top, s.Right, s.Bottom, s.Left}
}

func sidesFrom(v [4]float64) Sides {
	return Sides{Top: v[0], Right: v[1], Bottom: v[2], Left: v[3]}
}

// EditableProperty describes one editable attribute of a node.
type EditableProperty struct {
	Key      string        `json:"key"`
	Type     PropertyType  `json:"type"`
	Label    string        `json:"label"`
	Value    element.Value `json:"value"`
	Category string        `json:"category,omitempty"`

	Min  *float64 `json:"min,omitempty"`
	Max  *float64 `json:"max,omitempty"`
	Step *float64 `json:"step,omitempty"`

	Options []Option `json:"options,omitempty"`

	// Sides is set for directional properties.
	Sides *Sides `json:"sides,omitempty"`

	// Meta carries renderer-specific extras.
	Meta map[string]any `json:"meta,omitempty"`
}

// Bound returns a pointer to v, for the optional numeric fields of
// EditableProperty.
func Bound(v float64) *float64 {
	return &v
}

// PropertyExtractor derives at most one property from a node.
type PropertyExtractor struct {
	ID string

	// Categories is non-empty; the first entry is the default category of
	// the properties this extractor produces.
	Categories []string

	// Priority orders extractors; higher runs first and wins key conflicts.
	Priority int

	// CanExtract gates Extract. Nil applies to every node.
	CanExtract func(n *element.Node) bool

	// Extract returns nil when the node has nothing to offer.
	Extract func(n *element.Node) (*EditableProperty, error)
}

// PropertyRenderer owns the editing behaviour of one property type.
type PropertyRenderer struct {
	Type PropertyType

	// Render describes the control for a property. Nil renders a generic
	// input.
	Render func(p EditableProperty) Control

	// Validate rejects candidate values. Nil accepts everything.
	Validate func(v element.Value) bool

	// Transform normalises accepted values before they are written. Nil is
	// the identity.
	Transform func(v element.Value) element.Value
}

// Control is a toolkit-neutral description of an editing widget.
type Control struct {
	Widget      string        `json:"widget"`
	Key         string        `json:"key"`
	Label       string        `json:"label"`
	Value       element.Value `json:"value"`
	Placeholder string        `json:"placeholder,omitempty"`
	Min         *float64      `json:"min,omitempty"`
	Max         *float64      `json:"max,omitempty"`
	Step        *float64      `json:"step,omitempty"`
	Options     []Option      `json:"options,omitempty"`
	Sides       *Sides        `json:"sides,omitempty"`

	// Error is set on inert placeholder controls.
	Error string `json:"error,omitempty"`
}

// Widget names used by the built-in controls.
const (
	WidgetInput   = "input"
	WidgetSlider  = "slider"
	WidgetSelect  = "select"
	WidgetColor   = "color"
	WidgetSpacing = "spacing"
	WidgetError   = "error"
)

// Inert reports whether the control is an error placeholder.
func (c Control) Inert() bool {
	return c.Widget == WidgetError
}

// DefaultControl builds a control that mirrors the property's fields.
func DefaultControl(widget string, p EditableProperty) Control {
	label := p.Label
	if label == "" {
		label = p.Key
	}
	return Control{
		Widget:  widget,
		Key:     p.Key,
		Label:   label,
		Value:   p.Value,
		Min:     p.Min,
		Max:     p.Max,
		Step:    p.Step,
		Options: p.Options,
		Sides:   p.Sides,
	}
}
