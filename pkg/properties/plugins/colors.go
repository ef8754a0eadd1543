package plugins

import (
	"strings"

	"golang.org/x/image/colornames"

	"github.com/gnana997/compedit/pkg/element"
	"github.com/gnana997/compedit/pkg/properties"
)

const (
	defaultColor = "#000000"
	transparent  = "transparent"
)

// Colors edits text and background colors and provides the hex color
// renderer.
func Colors() properties.Plugin {
	return &properties.StaticPlugin{
		PluginID:      "core.colors",
		PluginName:    "Colors",
		PluginVersion: "1.0.0",
		Extract: []properties.PropertyExtractor{
			{
				ID:         "textColor",
				Categories: []string{"Colors"},
				Priority:   80,
				CanExtract: isText,
				Extract: func(n *element.Node) (*properties.EditableProperty, error) {
					return &properties.EditableProperty{
						Key:      "color",
						Type:     properties.TypeColor,
						Label:    "Text Color",
						Value:    element.String(or(style(n, "color"), element.String(defaultColor)).String()),
						Category: "Colors",
					}, nil
				},
			},
			{
				ID:         "backgroundColor",
				Categories: []string{"Colors"},
				Priority:   70,
				CanExtract: func(n *element.Node) bool {
					return n.Is(element.ClassBlock) || n.TagIs("span")
				},
				Extract: func(n *element.Node) (*properties.EditableProperty, error) {
					bg := or(style(n, "backgroundColor"), element.String(transparent)).String()
					if bg == transparent {
						bg = "#ffffff"
					}
					return &properties.EditableProperty{
						Key:      "backgroundColor",
						Type:     properties.TypeColor,
						Label:    "Background Color",
						Value:    element.String(bg),
						Category: "Colors",
					}, nil
				},
			},
		},
		Render: []properties.PropertyRenderer{
			{
				Type:     properties.TypeColor,
				Render:   renderColor,
				Validate: isColor,
				Transform: func(v element.Value) element.Value {
					return element.String(or(v, element.String(defaultColor)).String())
				},
			},
		},
	}
}

// isColor accepts hex colors, CSS named colors and transparent.
func isColor(v element.Value) bool {
	s, ok := v.AsString()
	if !ok {
		return false
	}
	if hexColor.MatchString(s) {
		return true
	}
	name := strings.ToLower(strings.TrimSpace(s))
	if name == transparent {
		return true
	}
	_, named := colornames.Map[name]
	return named
}

func renderColor(p properties.EditableProperty) properties.Control {
	c := properties.DefaultControl(properties.WidgetColor, p)
	c.Value = element.String(or(p.Value, element.String(defaultColor)).String())
	return c
}
