package element

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleTree builds:
//
//	div#element-3
//	  h2#element-1 "Title"
//	  p#element-2 "Body"
//	section#element-4
func sampleTree() []*Node {
	title := NewNode(FormatID(1), "h2")
	title.TextContent = "Title"
	title.Style.Set("color", String("red"))

	body := NewNode(FormatID(2), "p")
	body.TextContent = "Body"

	card := NewNode(FormatID(3), "div")
	card.Props.Set("className", String("card"))
	card.Children = []*Node{title, body}

	return []*Node{card, NewNode(FormatID(4), "section")}
}

func TestFind(t *testing.T) {
	roots := sampleTree()

	assert.Equal(t, "p", Find(roots, "element-2").TagName)
	assert.Equal(t, "section", Find(roots, "element-4").TagName)
	assert.Nil(t, Find(roots, "element-99"))
}

func TestPath(t *testing.T) {
	path := Path(sampleTree(), "element-2")
	require.Len(t, path, 2)
	assert.Equal(t, "element-3", path[0].ID)
	assert.Equal(t, "element-2", path[1].ID)
	assert.Nil(t, Path(sampleTree(), "nope"))
}

func TestUpdate_StructuralSharing(t *testing.T) {
	roots := sampleTree()
	before := CloneAll(roots)

	updated, ok := Update(roots, "element-1", func(n *Node) *Node {
		return n.WithStyle("color", String("blue"))
	})
	require.True(t, ok)

	// Input is untouched.
	assert.True(t, Equal(before, roots))

	// Path nodes are new, siblings and other roots are shared.
	assert.NotSame(t, roots[0], updated[0])
	assert.NotSame(t, roots[0].Children[0], updated[0].Children[0])
	assert.Same(t, roots[0].Children[1], updated[0].Children[1])
	assert.Same(t, roots[1], updated[1])

	color, _ := Find(updated, "element-1").StyleValue("color")
	assert.Equal(t, String("blue"), color)
}

func TestUpdate_Missing(t *testing.T) {
	roots := sampleTree()
	updated, ok := Update(roots, "element-42", func(n *Node) *Node { return n.WithText("x") })
	assert.False(t, ok)
	assert.Equal(t, roots, updated)
}

func TestWalkAndCount(t *testing.T) {
	roots := sampleTree()
	assert.Equal(t, 4, Count(roots))

	var order []string
	Walk(roots, func(n *Node, depth int) bool {
		order = append(order, n.ID)
		return depth == 0 && n.TagName != "div"
	})
	assert.Equal(t, []string{"element-3", "element-4"}, order)
}

func TestCopyOnWriteSetters(t *testing.T) {
	n := NewNode("element-1", "span")
	n.Props.Set("title", String("a"))

	styled := n.WithStyle("color", String("red"))
	propped := n.WithProp("title", String("b"))
	texted := n.WithText("Hi")
	moved := n.WithPosition(Position{X: 10, Y: 20, Width: 30, Height: 40})

	assert.Equal(t, 0, n.Style.Len())
	assert.Equal(t, 1, styled.Style.Len())
	v, _ := n.Prop("title")
	assert.Equal(t, String("a"), v)
	v, _ = propped.Prop("title")
	assert.Equal(t, String("b"), v)
	assert.False(t, n.HasText())
	assert.Equal(t, "Hi", texted.TextContent)
	assert.Equal(t, 40.0, moved.Position.Height)
	assert.Zero(t, n.Position)
}

func TestEqual(t *testing.T) {
	a, b := sampleTree(), sampleTree()
	assert.True(t, Equal(a, b))

	b[0].Children[1] = b[0].Children[1].WithText("Other")
	assert.False(t, Equal(a, b))

	c := sampleTree()
	c[0] = c[0].EditStyle(func(s *Map) { s.Set("padding", Number(4)) })
	assert.False(t, Equal(a, c))

	assert.True(t, (*Node)(nil).Equal(nil))
	assert.False(t, a[0].Equal(nil))
}

func TestMapEqual_Order(t *testing.T) {
	a := NewMap()
	a.Set("x", Number(1))
	a.Set("y", Number(2))

	b := NewMap()
	b.Set("y", Number(2))
	b.Set("x", Number(1))

	assert.False(t, MapEqual(a, b))
	assert.True(t, MapEqual(a, CopyMap(a)))
	assert.True(t, MapEqual(nil, NewMap()))
	assert.Equal(t, []string{"y", "x"}, Keys(b))
}

func TestTagClasses(t *testing.T) {
	assert.True(t, NewNode("a", "H1").Is(ClassText))
	assert.False(t, NewNode("a", "h1").Is(ClassBlock))
	assert.True(t, NewNode("a", "div").Is(ClassText))
	assert.True(t, NewNode("a", "div").Is(ClassBlock))
	assert.True(t, NewNode("a", "Section").Is(ClassBlock))
	assert.False(t, NewNode("a", "button").Is(ClassText|ClassBlock))
	assert.True(t, NewNode("a", "Button").TagIs("button", "a"))
	assert.Equal(t, DefaultTag, NewNode("a", "").TagName)
}

func TestNodeJSON(t *testing.T) {
	roots := sampleTree()
	roots[0].Props.Set("hidden", Bool(true))

	data, err := json.Marshal(roots[0])
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"id": "element-3",
		"tagName": "div",
		"props": {"className": "card", "hidden": true},
		"children": [
			{"id": "element-1", "tagName": "h2", "props": {"style": {"color": "red"}}, "children": [], "textContent": "Title", "position": {"x":0,"y":0,"width":0,"height":0}},
			{"id": "element-2", "tagName": "p", "props": {}, "children": [], "textContent": "Body", "position": {"x":0,"y":0,"width":0,"height":0}}
		],
		"position": {"x":0,"y":0,"width":0,"height":0}
	}`, string(data))

	var decoded Node
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, roots[0].Equal(&decoded))
	assert.Equal(t, []string{"className", "hidden"}, Keys(decoded.Props))
}

func TestNodeJSON_NonObjectStyle(t *testing.T) {
	var n Node
	require.NoError(t, json.Unmarshal([]byte(`{"id":"element-1","tagName":"div","props":{"style":"styles.box"}}`), &n))
	v, ok := n.Prop("style")
	assert.True(t, ok)
	assert.Equal(t, String("styles.box"), v)
	assert.Equal(t, 0, n.Style.Len())
}

type closeCounter struct{ closed int }

func (c *closeCounter) Close() { c.closed++ }

func TestParsedComponentClose(t *testing.T) {
	tree := &closeCounter{}
	pc := &ParsedComponent{Name: "Badge", Tree: tree}
	pc.Close()
	pc.Close()
	assert.Equal(t, 1, tree.closed)
}
