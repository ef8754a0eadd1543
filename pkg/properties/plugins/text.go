package plugins

import (
	"fmt"
	"math"
	"strings"

	"github.com/gnana997/compedit/pkg/element"
	"github.com/gnana997/compedit/pkg/properties"
)

const categoryTypography = "Typography"

// fontWeights maps the weights offered by the font weight select to their
// display names.
var fontWeights = []properties.Option{
	{Value: "300", Label: "Light"},
	{Value: "400", Label: "Regular"},
	{Value: "500", Label: "Medium"},
	{Value: "600", Label: "Semibold"},
	{Value: "700", Label: "Bold"},
	{Value: "800", Label: "Extra Bold"},
}

// Text edits text content, font size and font weight. It also provides the
// default text, slider and select renderers.
func Text() properties.Plugin {
	return &properties.StaticPlugin{
		PluginID:      "core.text",
		PluginName:    "Text Properties",
		PluginVersion: "1.1.0",
		Extract: []properties.PropertyExtractor{
			{
				ID:         "textContent",
				Categories: []string{categoryTypography},
				Priority:   100,
				CanExtract: func(n *element.Node) bool {
					return strings.TrimSpace(n.TextContent) != ""
				},
				Extract: func(n *element.Node) (*properties.EditableProperty, error) {
					return &properties.EditableProperty{
						Key:      properties.TextContentKey,
						Type:     properties.TypeText,
						Label:    "Text Content",
						Value:    element.String(n.TextContent),
						Category: categoryTypography,
					}, nil
				},
			},
			{
				ID:         "fontSize",
				Categories: []string{categoryTypography},
				Priority:   90,
				CanExtract: isText,
				Extract: func(n *element.Node) (*properties.EditableProperty, error) {
					return &properties.EditableProperty{
						Key:      "fontSize",
						Type:     properties.TypeSlider,
						Label:    "Font Size",
						Value:    element.Number(pixels(style(n, "fontSize"), 16)),
						Category: categoryTypography,
						Min:      properties.Bound(8),
						Max:      properties.Bound(72),
						Step:     properties.Bound(1),
					}, nil
				},
			},
			{
				ID:         "fontWeight",
				Categories: []string{categoryTypography},
				Priority:   85,
				CanExtract: isText,
				Extract: func(n *element.Node) (*properties.EditableProperty, error) {
					weight := or(style(n, "fontWeight"), element.String("400"))
					return &properties.EditableProperty{
						Key:      "fontWeight",
						Type:     properties.TypeSelect,
						Label:    "Font Weight",
						Value:    element.String(weight.String()),
						Category: categoryTypography,
						Options:  fontWeights,
					}, nil
				},
			},
		},
		Render: []properties.PropertyRenderer{
			{
				Type:   properties.TypeText,
				Render: renderTextInput,
				Validate: func(v element.Value) bool {
					return v.IsString()
				},
				Transform: func(v element.Value) element.Value {
					return element.String(or(v, element.String("")).String())
				},
			},
			{
				Type:   properties.TypeSlider,
				Render: renderSlider,
				Validate: func(v element.Value) bool {
					f := v.Float()
					return !math.IsNaN(f) && f >= 0
				},
				Transform: func(v element.Value) element.Value {
					return element.Number(numberOrZero(v))
				},
			},
			{
				Type:   properties.TypeSelect,
				Render: renderSelect,
				Validate: func(v element.Value) bool {
					return v.IsString()
				},
				Transform: func(v element.Value) element.Value {
					return element.String(or(v, element.String("")).String())
				},
			},
		},
	}
}

func isText(n *element.Node) bool {
	return n.Is(element.ClassText)
}

func renderTextInput(p properties.EditableProperty) properties.Control {
	c := properties.DefaultControl(properties.WidgetInput, p)
	c.Value = element.String(or(p.Value, element.String("")).String())
	noun := "text"
	if p.Label != "" {
		noun = strings.ToLower(p.Label)
	}
	c.Placeholder = fmt.Sprintf("Enter %s", noun)
	return c
}

func renderSlider(p properties.EditableProperty) properties.Control {
	c := properties.DefaultControl(properties.WidgetSlider, p)
	c.Value = element.Number(numberOrZero(p.Value))
	c.Min = boundOr(p.Min, 0)
	c.Max = boundOr(p.Max, 100)
	c.Step = boundOr(p.Step, 1)
	return c
}

func renderSelect(p properties.EditableProperty) properties.Control {
	c := properties.DefaultControl(properties.WidgetSelect, p)
	c.Value = element.String(or(p.Value, element.String("")).String())
	opts := make([]properties.Option, len(p.Options))
	for i, o := range p.Options {
		if o.Label == "" {
			o.Label = o.Value
		}
		opts[i] = o
	}
	c.Options = opts
	return c
}

// boundOr returns b unless it is unset or zero.
func boundOr(b *float64, def float64) *float64 {
	if b == nil || *b == 0 {
		return properties.Bound(def)
	}
	return b
}
