package plugins

import (
	"math"

	"github.com/gnana997/compedit/pkg/element"
	"github.com/gnana997/compedit/pkg/properties"
)

// Appearance edits opacity, corner radius and shadow. Its renderers are
// shadowed by Text when both are installed in Core order.
func Appearance() properties.Plugin {
	return &properties.StaticPlugin{
		PluginID:      "core.appearance",
		PluginName:    "Appearance",
		PluginVersion: "1.0.0",
		Extract: []properties.PropertyExtractor{
			{
				ID:         "opacity",
				Categories: []string{"Appearance"},
				Priority:   80,
				Extract: func(n *element.Node) (*properties.EditableProperty, error) {
					opacity := style(n, "opacity")
					if opacity.IsNull() {
						opacity = element.Number(1)
					}
					return &properties.EditableProperty{
						Key:      "opacity",
						Type:     properties.TypeSlider,
						Label:    "Opacity",
						Value:    element.Number(opacity.Float()),
						Category: "Appearance",
						Min:      properties.Bound(0),
						Max:      properties.Bound(1),
						Step:     properties.Bound(0.05),
					}, nil
				},
			},
			{
				ID:         "borderRadius",
				Categories: []string{"Appearance"},
				Priority:   75,
				CanExtract: isBlock,
				Extract: func(n *element.Node) (*properties.EditableProperty, error) {
					return &properties.EditableProperty{
						Key:      "borderRadius",
						Type:     properties.TypeSlider,
						Label:    "Corner Radius",
						Value:    element.Number(pixels(style(n, "borderRadius"), 0)),
						Category: "Appearance",
						Min:      properties.Bound(0),
						Max:      properties.Bound(50),
					}, nil
				},
			},
			{
				ID:         "boxShadow",
				Categories: []string{"Appearance"},
				Priority:   70,
				CanExtract: isBlock,
				Extract: func(n *element.Node) (*properties.EditableProperty, error) {
					return &properties.EditableProperty{
						Key:      "boxShadow",
						Type:     properties.TypeText,
						Label:    "Box Shadow",
						Value:    element.String(or(style(n, "boxShadow"), element.String("")).String()),
						Category: "Appearance",
					}, nil
				},
			},
		},
		Render: []properties.PropertyRenderer{
			{
				Type:   properties.TypeSlider,
				Render: renderSlider,
				Validate: func(v element.Value) bool {
					return !math.IsNaN(v.Float())
				},
				Transform: func(v element.Value) element.Value {
					return element.Number(v.Float())
				},
			},
			{
				Type:   properties.TypeText,
				Render: renderTextInput,
				Validate: func(v element.Value) bool {
					return v.IsString()
				},
				Transform: func(v element.Value) element.Value {
					return element.String(v.String())
				},
			},
		},
	}
}

func isBlock(n *element.Node) bool {
	return n.Is(element.ClassBlock)
}
