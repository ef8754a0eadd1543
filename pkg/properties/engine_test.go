package properties

import (
	"context"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/compedit/pkg/element"
)

// fixturePlugin covers text content, a validated style key and a
// directional key.
func fixturePlugin() *StaticPlugin {
	return &StaticPlugin{
		PluginID:      "fixture",
		PluginName:    "Fixture",
		PluginVersion: "0.0.1",
		Extract: []PropertyExtractor{
			{
				ID: "text", Categories: []string{"Typography"}, Priority: 100,
				CanExtract: func(n *element.Node) bool { return n.HasText() },
				Extract: func(n *element.Node) (*EditableProperty, error) {
					return &EditableProperty{Key: TextContentKey, Type: TypeText, Value: element.String(n.TextContent)}, nil
				},
			},
			{
				ID: "padding", Categories: []string{"Layout"}, Priority: 90,
				Extract: func(n *element.Node) (*EditableProperty, error) {
					v, _ := n.StyleValue("padding")
					return &EditableProperty{Key: "padding", Type: TypeSpacingDirectional, Value: v}, nil
				},
			},
			{
				ID: "color", Categories: []string{"Colors"}, Priority: 80,
				Extract: func(n *element.Node) (*EditableProperty, error) {
					v, _ := n.StyleValue("color")
					return &EditableProperty{Key: "color", Type: TypeColor, Value: v}, nil
				},
			},
		},
		Render: []PropertyRenderer{
			{
				Type:      TypeText,
				Validate:  func(v element.Value) bool { return v.IsString() || v.IsNull() },
				Transform: func(v element.Value) element.Value { return v },
			},
			{
				Type:     TypeColor,
				Validate: func(v element.Value) bool { return len(v.String()) == 7 && v.String()[0] == '#' },
				Render: func(p EditableProperty) Control {
					return DefaultControl(WidgetColor, p)
				},
			},
			{
				Type: TypeSpacingDirectional,
				Validate: func(v element.Value) bool {
					return !math.IsNaN(v.Float())
				},
				Transform: func(v element.Value) element.Value { return element.Number(finite(v.Float())) },
			},
		},
	}
}

func newTestEngine(t *testing.T) (*Engine, *recorder) {
	t.Helper()
	reg, rec := newTestRegistry(t)
	require.NoError(t, reg.RegisterPlugin(context.Background(), fixturePlugin()))
	return NewEngine(reg, slog.New(rec)), rec
}

func styleNumber(t *testing.T, n *element.Node, key string) float64 {
	t.Helper()
	v, ok := n.StyleValue(key)
	require.True(t, ok, "missing style key %s", key)
	f, ok := v.AsNumber()
	require.True(t, ok, "style key %s is not a number", key)
	return f
}

func TestApply_StyleValue(t *testing.T) {
	eng, _ := newTestEngine(t)
	node := element.NewNode("element-0", "div")

	out := eng.Apply(node, "color", element.String("#ff0000"))

	v, ok := out.StyleValue("color")
	require.True(t, ok)
	assert.Equal(t, "#ff0000", v.String())
	_, touched := node.StyleValue("color")
	assert.False(t, touched, "input node must not change")
}

func TestApply_TextContent(t *testing.T) {
	eng, _ := newTestEngine(t)
	node := element.NewNode("element-0", "span").WithText("Old")

	assert.Equal(t, "New", eng.Apply(node, TextContentKey, element.String("New")).TextContent)
	assert.Equal(t, "", eng.Apply(node, TextContentKey, element.Null()).TextContent)
	assert.Equal(t, 0, eng.Apply(node, TextContentKey, element.Null()).Style.Len())
}

func TestApply_ValidationRejectionIsNoop(t *testing.T) {
	eng, rec := newTestEngine(t)
	node := element.NewNode("element-0", "div").WithStyle("color", element.String("#000000"))

	out := eng.Apply(node, "color", element.String("red"))

	assert.True(t, out.Equal(node))
	assert.Same(t, node, out)
	assert.Equal(t, 1, rec.count(slog.LevelWarn, "rejected property value"))
}

func TestApply_UnknownKeyIsNoop(t *testing.T) {
	eng, _ := newTestEngine(t)
	node := element.NewNode("element-0", "div")
	assert.Same(t, node, eng.Apply(node, "letterSpacing", element.Number(2)))

	// textContent is only editable on nodes that carry text.
	assert.Same(t, node, eng.Apply(node, TextContentKey, element.String("x")))
}

func TestApply_Idempotent(t *testing.T) {
	eng, _ := newTestEngine(t)
	node := element.NewNode("element-0", "div")

	once := eng.Apply(node, "color", element.String("#123456"))
	twice := eng.Apply(once, "color", element.String("#123456"))
	assert.True(t, once.Equal(twice))

	onceDir := eng.ApplyDirectional(node, "padding", Sides{Top: 1, Right: 2, Bottom: 3, Left: 4})
	twiceDir := eng.ApplyDirectional(onceDir, "padding", Sides{Top: 1, Right: 2, Bottom: 3, Left: 4})
	assert.True(t, onceDir.Equal(twiceDir))
}

func TestApplyDirectional_ScalarIsRoundedMean(t *testing.T) {
	eng, _ := newTestEngine(t)
	node := element.NewNode("element-0", "div")

	out := eng.ApplyDirectional(node, "padding", Sides{Top: 2, Right: 4, Bottom: 6, Left: 8})

	assert.Equal(t, 2.0, styleNumber(t, out, "paddingTop"))
	assert.Equal(t, 4.0, styleNumber(t, out, "paddingRight"))
	assert.Equal(t, 6.0, styleNumber(t, out, "paddingBottom"))
	assert.Equal(t, 8.0, styleNumber(t, out, "paddingLeft"))
	assert.Equal(t, 5.0, styleNumber(t, out, "padding"))
}

func TestApplyDirectional_EqualSides(t *testing.T) {
	eng, _ := newTestEngine(t)
	node := element.NewNode("element-0", "div")

	for _, v := range []float64{0, 7, 12.5} {
		out := eng.ApplyDirectional(node, "padding", Uniform(v))
		assert.Equal(t, v, styleNumber(t, out, "padding"))
	}
}

func TestApplyDirectional_RoundsHalfUp(t *testing.T) {
	eng, _ := newTestEngine(t)
	out := eng.ApplyDirectional(element.NewNode("element-0", "div"), "padding", Sides{Top: 1, Right: 2, Bottom: 2, Left: 1})
	assert.Equal(t, 2.0, styleNumber(t, out, "padding"))
}

func TestApply_DirectionalScalarSetsAllSides(t *testing.T) {
	eng, _ := newTestEngine(t)
	out := eng.Apply(element.NewNode("element-0", "div"), "padding", element.String("12"))

	for _, k := range SideKeys("padding") {
		assert.Equal(t, 12.0, styleNumber(t, out, k))
	}
	assert.Equal(t, 12.0, styleNumber(t, out, "padding"))
}

func TestApplyDirectional_NonDirectionalKey(t *testing.T) {
	eng, _ := newTestEngine(t)
	node := element.NewNode("element-0", "div")
	assert.Same(t, node, eng.ApplyDirectional(node, "color", Uniform(1)))
}

func TestApplyTo(t *testing.T) {
	eng, _ := newTestEngine(t)
	child := element.NewNode("element-0", "span").WithText("Hi")
	root := element.NewNode("element-1", "div").WithChildren([]*element.Node{child})
	roots := []*element.Node{root}

	updated, ok := eng.ApplyTo(roots, "element-0", TextContentKey, element.String("Bye"))
	require.True(t, ok)
	assert.Equal(t, "Bye", element.Find(updated, "element-0").TextContent)
	assert.Equal(t, "Hi", element.Find(roots, "element-0").TextContent)

	_, ok = eng.ApplyTo(roots, "element-9", TextContentKey, element.String("x"))
	assert.False(t, ok)

	updated, ok = eng.ApplyDirectionalTo(roots, "element-1", "padding", Uniform(3))
	require.True(t, ok)
	assert.Equal(t, 3.0, styleNumber(t, element.Find(updated, "element-1"), "padding"))
}

func TestRender(t *testing.T) {
	eng, rec := newTestEngine(t)

	c := eng.Render(EditableProperty{Key: "color", Type: TypeColor, Label: "Color", Value: element.String("#fff000")})
	assert.Equal(t, WidgetColor, c.Widget)
	assert.False(t, c.Inert())

	c = eng.Render(EditableProperty{Key: "visible", Type: TypeBoolean})
	assert.True(t, c.Inert())
	assert.Contains(t, c.Error, "boolean")
	assert.Equal(t, "visible", c.Label)
	assert.Equal(t, 1, rec.count(slog.LevelWarn, "no renderer for property type"))

	c = eng.Render(EditableProperty{Key: "padding", Type: TypeSpacingDirectional})
	assert.Equal(t, WidgetInput, c.Widget)
}

func TestRender_PanicBecomesPlaceholder(t *testing.T) {
	reg, rec := newTestRegistry(t)
	require.NoError(t, reg.RegisterPlugin(context.Background(), &StaticPlugin{
		PluginID: "fragile",
		Render: []PropertyRenderer{{
			Type:   TypeSelect,
			Render: func(EditableProperty) Control { panic("options missing") },
		}},
	}))
	eng := NewEngine(reg, slog.New(rec))

	c := eng.Render(EditableProperty{Key: "fontWeight", Type: TypeSelect})
	assert.True(t, c.Inert())
	assert.Equal(t, 1, rec.count(slog.LevelError, "property renderer failed"))
}

func TestGroup(t *testing.T) {
	props := []EditableProperty{
		{Key: "padding", Category: "Layout"},
		{Key: "color", Category: "Colors"},
		{Key: "textContent", Category: "Typography"},
		{Key: "opacity", Category: "appearance"},
		{Key: "fontSize", Category: "Typography"},
		{Key: "custom"},
	}

	groups := Group(props)

	var cats []string
	for _, g := range groups {
		cats = append(cats, g.Category)
	}
	assert.Equal(t, []string{"Typography", "appearance", "Colors", "Layout", "Other"}, cats)
	require.Len(t, groups[0].Properties, 2)
	assert.Equal(t, "textContent", groups[0].Properties[0].Key)
	assert.Equal(t, "fontSize", groups[0].Properties[1].Key)
}

func TestSides(t *testing.T) {
	s := Sides{Top: 2, Right: 4, Bottom: 6, Left: 8}
	assert.Equal(t, 5.0, s.Mean())
	assert.Equal(t, 5.0, s.Scalar())
	assert.False(t, s.Equal())
	assert.True(t, Uniform(3).Equal())
	assert.Equal(t, [4]string{"marginTop", "marginRight", "marginBottom", "marginLeft"}, SideKeys("margin"))
}
