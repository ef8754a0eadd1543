// Package element is the editable tree model shared by the extractor, the
// property engine and the code generator.
//
// Nodes are treated as immutable once they are part of a tree: every edit
// goes through a With* method or Update, which copy the parts they change and
// share everything else.
package element

import (
	"bytes"
	"encoding/json"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// StyleKey is the reserved attribute that holds the inline style map.
const StyleKey = "style"

// DefaultTag is used when an element's name cannot be read.
const DefaultTag = "div"

// Map is an insertion-ordered attribute or style map.
type Map = orderedmap.OrderedMap[string, Value]

// NewMap returns an empty Map.
func NewMap() *Map {
	return orderedmap.New[string, Value]()
}

// Position is layout metadata reported by the canvas. The extractor always
// leaves it zero.
type Position struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Node is one UI element.
type Node struct {
	// ID is "element-<n>", unique within one ParsedComponent. Numbering is
	// post-order: every child is numbered before its parent, so in
	// <div><h2/></div> the h2 is element-0 and the div element-1.
	ID string

	// TagName is stored as written; compare with TagIs.
	TagName string

	// Props holds every attribute except an inline style object.
	Props *Map

	// Style holds the flattened inline style object. It is never nil for
	// nodes built by NewNode.
	Style *Map

	Children []*Node

	// TextContent is the flattened text of text-only children; empty means
	// the node has no text.
	TextContent string

	Position Position
}

// NewNode returns a node with empty attribute and style maps.
func NewNode(id, tag string) *Node {
	if tag == "" {
		tag = DefaultTag
	}
	return &Node{ID: id, TagName: tag, Props: NewMap(), Style: NewMap()}
}

// TagIs reports whether the tag matches any of names, ignoring case.
func (n *Node) TagIs(names ...string) bool {
	for _, name := range names {
		if strings.EqualFold(n.TagName, name) {
			return true
		}
	}
	return false
}

// Prop returns an attribute value.
func (n *Node) Prop(key string) (Value, bool) {
	if n.Props == nil {
		return Null(), false
	}
	return n.Props.Get(key)
}

// StyleValue returns an inline style value.
func (n *Node) StyleValue(key string) (Value, bool) {
	if n.Style == nil {
		return Null(), false
	}
	return n.Style.Get(key)
}

// HasText reports whether the node carries text content.
func (n *Node) HasText() bool {
	return n.TextContent != ""
}

// shallow copies the node struct. Maps and the children slice are shared.
func (n *Node) shallow() *Node {
	c := *n
	return &c
}

// WithStyle returns a copy of n with one style entry set.
func (n *Node) WithStyle(key string, v Value) *Node {
	return n.EditStyle(func(style *Map) {
		style.Set(key, v)
	})
}

// EditStyle returns a copy of n whose style map is a private copy passed to
// fn for modification.
func (n *Node) EditStyle(fn func(style *Map)) *Node {
	c := n.shallow()
	c.Style = CopyMap(n.Style)
	fn(c.Style)
	return c
}

// WithProp returns a copy of n with one attribute set.
func (n *Node) WithProp(key string, v Value) *Node {
	c := n.shallow()
	c.Props = CopyMap(n.Props)
	c.Props.Set(key, v)
	return c
}

// WithText returns a copy of n with the given text content.
func (n *Node) WithText(text string) *Node {
	c := n.shallow()
	c.TextContent = text
	return c
}

// WithPosition returns a copy of n with new layout metadata.
func (n *Node) WithPosition(p Position) *Node {
	c := n.shallow()
	c.Position = p
	return c
}

// WithChildren returns a copy of n with a new children slice.
func (n *Node) WithChildren(children []*Node) *Node {
	c := n.shallow()
	c.Children = children
	return c
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := n.shallow()
	c.Props = CopyMap(n.Props)
	c.Style = CopyMap(n.Style)
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return c
}

// Equal reports deep value equality, including ids and attribute order.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n == o {
		return true
	}
	if n.ID != o.ID || n.TagName != o.TagName || n.TextContent != o.TextContent || n.Position != o.Position {
		return false
	}
	if !MapEqual(n.Props, o.Props) || !MapEqual(n.Style, o.Style) {
		return false
	}
	return Equal(n.Children, o.Children)
}

// CopyMap returns a copy of m. A nil map copies to an empty one.
func CopyMap(m *Map) *Map {
	c := NewMap()
	if m == nil {
		return c
	}
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		c.Set(pair.Key, pair.Value)
	}
	return c
}

// MapEqual compares two maps by keys, order and values. Nil equals empty.
func MapEqual(a, b *Map) bool {
	if mapLen(a) != mapLen(b) {
		return false
	}
	if mapLen(a) == 0 {
		return true
	}
	pa, pb := a.Oldest(), b.Oldest()
	for pa != nil && pb != nil {
		if pa.Key != pb.Key || !pa.Value.Equal(pb.Value) {
			return false
		}
		pa, pb = pa.Next(), pb.Next()
	}
	return pa == nil && pb == nil
}

// Keys returns the keys of m in insertion order.
func Keys(m *Map) []string {
	keys := make([]string, 0, mapLen(m))
	if m == nil {
		return keys
	}
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

func mapLen(m *Map) int {
	if m == nil {
		return 0
	}
	return m.Len()
}

// nodeJSON is the wire form. The style map is nested under props["style"].
type nodeJSON struct {
	ID          string                                         `json:"id"`
	TagName     string                                         `json:"tagName"`
	Props       *orderedmap.OrderedMap[string, json.RawMessage] `json:"props"`
	Children    []*Node                                        `json:"children"`
	TextContent string                                         `json:"textContent,omitempty"`
	Position    Position                                       `json:"position"`
}

// MarshalJSON encodes the node with its style map nested under props.style.
func (n *Node) MarshalJSON() ([]byte, error) {
	props := orderedmap.New[string, json.RawMessage]()
	if n.Props != nil {
		for pair := n.Props.Oldest(); pair != nil; pair = pair.Next() {
			if pair.Key == StyleKey && mapLen(n.Style) > 0 {
				continue
			}
			raw, err := pair.Value.MarshalJSON()
			if err != nil {
				return nil, err
			}
			props.Set(pair.Key, raw)
		}
	}
	if mapLen(n.Style) > 0 {
		raw, err := n.Style.MarshalJSON()
		if err != nil {
			return nil, err
		}
		props.Set(StyleKey, raw)
	}

	children := n.Children
	if children == nil {
		children = []*Node{}
	}

	return json.Marshal(nodeJSON{
		ID:          n.ID,
		TagName:     n.TagName,
		Props:       props,
		Children:    children,
		TextContent: n.TextContent,
		Position:    n.Position,
	})
}

// UnmarshalJSON decodes the wire form produced by MarshalJSON.
func (n *Node) UnmarshalJSON(data []byte) error {
	wire := nodeJSON{Props: orderedmap.New[string, json.RawMessage]()}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	out := NewNode(wire.ID, wire.TagName)
	out.Children = wire.Children
	out.TextContent = wire.TextContent
	out.Position = wire.Position

	if wire.Props != nil {
		for pair := wire.Props.Oldest(); pair != nil; pair = pair.Next() {
			raw := bytes.TrimSpace(pair.Value)
			if pair.Key == StyleKey && len(raw) > 0 && raw[0] == '{' {
				if err := out.Style.UnmarshalJSON(raw); err != nil {
					return err
				}
				continue
			}
			var v Value
			if err := v.UnmarshalJSON(raw); err != nil {
				return err
			}
			out.Props.Set(pair.Key, v)
		}
	}

	*n = *out
	return nil
}
