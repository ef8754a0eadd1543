package properties

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/gnana997/compedit/pkg/element"
)

// Engine lists the properties of nodes and applies edits to them.
//
// Every Apply method is pure with respect to its input: the node passed in
// is never modified, and a rejected edit returns it unchanged.
type Engine struct {
	registry *Registry
	logger   *slog.Logger
}

// NewEngine creates an engine over registry.
func NewEngine(registry *Registry, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{registry: registry, logger: logger}
}

// Registry returns the registry the engine reads from.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Properties returns the editable properties of n in priority order.
func (e *Engine) Properties(n *element.Node) []EditableProperty {
	return e.registry.ExtractProperties(n)
}

// Property returns the property extraction currently yields for key.
func (e *Engine) Property(n *element.Node, key string) (EditableProperty, bool) {
	for _, p := range e.registry.ExtractProperties(n) {
		if p.Key == key {
			return p, true
		}
	}
	return EditableProperty{}, false
}

// Apply writes one property value into n.
//
// The value is validated and transformed by the renderer of the property's
// type. textContent replaces the node text, directional properties set all
// four sides and their scalar, every other key is written to the style map.
// Unknown keys and rejected values leave n unchanged.
func (e *Engine) Apply(n *element.Node, key string, v element.Value) *element.Node {
	if n == nil {
		return nil
	}

	prop, ok := e.Property(n, key)
	if !ok {
		e.logger.Debug("no editable property for key",
			"element", n.ID, "key", key)
		return n
	}

	if !e.registry.Validate(prop, v) {
		e.logger.Warn("rejected property value",
			"element", n.ID, "key", key, "value", v.String())
		return n
	}
	v = e.registry.Transform(prop, v)

	switch {
	case key == TextContentKey:
		text := ""
		if !v.IsNull() {
			text = v.String()
		}
		return n.WithText(text)

	case prop.Type.Directional():
		return writeSides(n, key, Uniform(finite(v.Float())))

	default:
		return n.WithStyle(key, v)
	}
}

// ApplyDirectional writes four per-side values of a directional property and
// recomputes its scalar. Each side goes through the property's renderer; if
// any side is rejected n is returned unchanged.
func (e *Engine) ApplyDirectional(n *element.Node, key string, sides Sides) *element.Node {
	if n == nil {
		return nil
	}

	prop, ok := e.Property(n, key)
	if !ok {
		e.logger.Debug("no editable property for key",
			"element", n.ID, "key", key)
		return n
	}
	if !prop.Type.Directional() {
		e.logger.Warn("property is not directional",
			"element", n.ID, "key", key, "type", prop.Type)
		return n
	}

	in := sides.values()
	var out [4]float64
	for i, side := range in {
		v := element.Number(side)
		if !e.registry.Validate(prop, v) {
			e.logger.Warn("rejected directional value",
				"element", n.ID, "key", SideKeys(key)[i], "value", v.String())
			return n
		}
		out[i] = finite(e.registry.Transform(prop, v).Float())
	}

	return writeSides(n, key, sidesFrom(out))
}

// writeSides stores the four sides and the scalar under key.
func writeSides(n *element.Node, key string, sides Sides) *element.Node {
	keys := SideKeys(key)
	vals := sides.values()
	return n.EditStyle(func(style *element.Map) {
		for i, k := range keys {
			style.Set(k, element.Number(vals[i]))
		}
		style.Set(key, element.Number(sides.Scalar()))
	})
}

// finite maps NaN and infinities to zero.
func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ApplyTo applies an edit to the node with the given id inside roots. It
// returns the new roots and whether the node was found.
func (e *Engine) ApplyTo(roots []*element.Node, id, key string, v element.Value) ([]*element.Node, bool) {
	return element.Update(roots, id, func(n *element.Node) *element.Node {
		return e.Apply(n, key, v)
	})
}

// ApplyDirectionalTo is ApplyTo for directional properties.
func (e *Engine) ApplyDirectionalTo(roots []*element.Node, id, key string, sides Sides) ([]*element.Node, bool) {
	return element.Update(roots, id, func(n *element.Node) *element.Node {
		return e.ApplyDirectional(n, key, sides)
	})
}

// Render describes the control for p. A missing or failing renderer yields
// an inert placeholder control.
func (e *Engine) Render(p EditableProperty) (c Control) {
	rend, ok := e.registry.Renderer(p.Type)
	if !ok {
		e.logger.Warn("no renderer for property type", "key", p.Key, "type", p.Type)
		return errorControl(p, fmt.Sprintf("No renderer available for type: %s", p.Type))
	}
	if rend.Render == nil {
		return DefaultControl(WidgetInput, p)
	}

	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Error("property renderer failed", "key", p.Key, "type", p.Type, "panic", rec)
			c = errorControl(p, fmt.Sprintf("Error rendering %s", p.Key))
		}
	}()
	return rend.Render(p)
}

func errorControl(p EditableProperty, msg string) Control {
	c := DefaultControl(WidgetError, p)
	c.Error = msg
	return c
}
