package plugins

import (
	"math"

	"github.com/gnana997/compedit/pkg/element"
	"github.com/gnana997/compedit/pkg/properties"
)

// Layout edits padding and margin as directional spacing.
func Layout() properties.Plugin {
	return &properties.StaticPlugin{
		PluginID:      "core.layout",
		PluginName:    "Layout",
		PluginVersion: "1.2.0",
		Extract: []properties.PropertyExtractor{
			spacingExtractor("padding", "Padding", 90),
			spacingExtractor("margin", "Margin", 85),
		},
		Render: []properties.PropertyRenderer{
			{
				Type:   properties.TypeSpacingDirectional,
				Render: renderSpacing,
				Validate: func(v element.Value) bool {
					return !math.IsNaN(v.Float())
				},
				Transform: func(v element.Value) element.Value {
					return element.Number(numberOrZero(v))
				},
			},
		},
	}
}

func spacingExtractor(key, label string, priority int) properties.PropertyExtractor {
	return properties.PropertyExtractor{
		ID:         key,
		Categories: []string{"Layout"},
		Priority:   priority,
		Extract: func(n *element.Node) (*properties.EditableProperty, error) {
			base, _ := parseSpacing(style(n, key))
			s := sides(n, key)
			return &properties.EditableProperty{
				Key:      key,
				Type:     properties.TypeSpacingDirectional,
				Label:    label,
				Value:    element.Number(base),
				Category: "Layout",
				Min:      properties.Bound(0),
				Max:      properties.Bound(100),
				Sides:    &s,
			}, nil
		},
	}
}

func renderSpacing(p properties.EditableProperty) properties.Control {
	c := properties.DefaultControl(properties.WidgetSpacing, p)
	value := numberOrZero(p.Value)
	c.Value = element.Number(value)
	c.Min = boundOr(p.Min, 0)
	c.Max = boundOr(p.Max, 200)
	if p.Sides == nil {
		s := properties.Uniform(value)
		c.Sides = &s
	}
	return c
}
