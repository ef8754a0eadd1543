package plugins

import (
	"math"

	"github.com/gnana997/compedit/pkg/element"
	"github.com/gnana997/compedit/pkg/properties"
)

var borderStyles = properties.Options("solid", "dashed", "dotted", "double", "none")

// Borders edits border width, style and color on block elements.
func Borders() properties.Plugin {
	return &properties.StaticPlugin{
		PluginID:      "core.borders",
		PluginName:    "Borders",
		PluginVersion: "1.0.0",
		Extract: []properties.PropertyExtractor{
			{
				ID:         "borderWidth",
				Categories: []string{"Borders"},
				Priority:   80,
				CanExtract: isBlock,
				Extract: func(n *element.Node) (*properties.EditableProperty, error) {
					width := or(style(n, "borderWidth"), element.Number(0))
					return &properties.EditableProperty{
						Key:      "borderWidth",
						Type:     properties.TypeSlider,
						Label:    "Border Width",
						Value:    element.Number(width.Float()),
						Category: "Borders",
						Min:      properties.Bound(0),
						Max:      properties.Bound(20),
					}, nil
				},
			},
			{
				ID:         "borderStyle",
				Categories: []string{"Borders"},
				Priority:   75,
				CanExtract: isBlock,
				Extract: func(n *element.Node) (*properties.EditableProperty, error) {
					return &properties.EditableProperty{
						Key:      "borderStyle",
						Type:     properties.TypeSelect,
						Label:    "Border Style",
						Value:    element.String(or(style(n, "borderStyle"), element.String("solid")).String()),
						Category: "Borders",
						Options:  borderStyles,
					}, nil
				},
			},
			{
				ID:         "borderColor",
				Categories: []string{"Borders"},
				Priority:   70,
				CanExtract: isBlock,
				Extract: func(n *element.Node) (*properties.EditableProperty, error) {
					return &properties.EditableProperty{
						Key:      "borderColor",
						Type:     properties.TypeColor,
						Label:    "Border Color",
						Value:    or(style(n, "borderColor"), element.String(defaultColor)),
						Category: "Borders",
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
				Type:   properties.TypeSelect,
				Render: renderSelect,
				Validate: func(v element.Value) bool {
					return v.IsString()
				},
				Transform: func(v element.Value) element.Value {
					return element.String(v.String())
				},
			},
			{
				Type:   properties.TypeColor,
				Render: renderColor,
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
