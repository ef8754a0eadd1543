package extractor

import (
	"html"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/compedit/pkg/element"
)

// builder turns JSX syntax nodes into element nodes. One builder is used per
// extraction so ids are unique within a ParsedComponent.
type builder struct {
	source []byte
	nextID int
}

func (b *builder) id() string {
	id := element.FormatID(b.nextID)
	b.nextID++
	return id
}

func (b *builder) text(n *ts.Node) string {
	return n.Utf8Text(b.source)
}

// roots collects every JSX element that has no enclosing JSX element.
// Fragments are transparent: their elements become roots.
func (b *builder) roots(root *ts.Node) []*element.Node {
	roots := []*element.Node{}
	visit(root, func(n *ts.Node) bool {
		if isElement(n) {
			roots = append(roots, b.build(n))
			return false
		}
		return true
	})
	return roots
}

// build converts one element. Children are numbered before their parent.
func (b *builder) build(n *ts.Node) *element.Node {
	open := n
	if n.Kind() == "jsx_element" {
		if tag := n.ChildByFieldName("open_tag"); tag != nil {
			open = tag
		}
	}

	node := element.NewNode("", b.tagName(open))
	b.attributes(open, node)

	var texts []string
	if n.Kind() == "jsx_element" {
		node.Children, texts = b.children(n, nil, nil)
	}
	if node.Children == nil {
		node.Children = []*element.Node{}
	}
	node.TextContent = strings.Join(texts, " ")
	node.ID = b.id()
	return node
}

// tagName reads the element name as written. Member paths such as Foo.Bar
// are kept whole.
func (b *builder) tagName(open *ts.Node) string {
	name := open.ChildByFieldName("name")
	if name == nil {
		return element.DefaultTag
	}
	switch name.Kind() {
	case "identifier", "member_expression", "jsx_namespace_name", "nested_identifier", "property_identifier":
		return strings.Join(strings.Fields(b.text(name)), "")
	}
	return element.DefaultTag
}

// attributes fills node.Props and node.Style. Spread attributes are ignored.
func (b *builder) attributes(open *ts.Node, node *element.Node) {
	for _, attr := range namedChildren(open) {
		if attr.Kind() != "jsx_attribute" {
			continue
		}

		parts := namedChildren(attr)
		if len(parts) == 0 {
			continue
		}
		name := b.text(parts[0])

		if len(parts) == 1 {
			node.Props.Set(name, element.Bool(true))
			continue
		}

		value := parts[1]
		switch value.Kind() {
		case "string":
			node.Props.Set(name, element.String(jsxAttributeString(value, b.source)))

		case "jsx_expression":
			expr := firstNamedChild(value)
			if expr == nil {
				node.Props.Set(name, element.String(""))
				continue
			}
			if name == element.StyleKey {
				if obj := unwrapParens(expr); obj.Kind() == "object" {
					b.style(obj, node.Style)
					continue
				}
			}
			node.Props.Set(name, element.String(b.text(expr)))

		default:
			node.Props.Set(name, element.String(b.text(value)))
		}
	}
}

// style flattens an inline style object literal.
func (b *builder) style(obj *ts.Node, out *element.Map) {
	for _, prop := range namedChildren(obj) {
		switch prop.Kind() {
		case "pair":
			key := propertyKey(prop.ChildByFieldName("key"), b.source)
			if key == "" {
				continue
			}
			value := prop.ChildByFieldName("value")
			if value == nil {
				continue
			}
			out.Set(key, literalValue(value, b.source))

		case "shorthand_property_identifier":
			name := b.text(prop)
			out.Set(name, element.String(name))
		}
	}
}

// children converts the content between an element's tags. Text runs are
// decoded, trimmed and collected separately from child elements.
func (b *builder) children(n *ts.Node, nodes []*element.Node, texts []string) ([]*element.Node, []string) {
	var run strings.Builder
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if t := trimJS(html.UnescapeString(run.String())); t != "" {
			texts = append(texts, t)
		}
		run.Reset()
	}

	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil {
			continue
		}

		switch child.Kind() {
		case "jsx_text", "html_character_reference":
			run.WriteString(b.text(child))
			continue
		case "jsx_opening_element", "jsx_closing_element", "comment":
			continue
		}

		flush()
		switch {
		case isElement(child):
			nodes = append(nodes, b.build(child))

		case isFragment(child):
			nodes, texts = b.children(child, nodes, texts)

		case child.Kind() == "jsx_expression":
			expr := firstNamedChild(child)
			if expr == nil {
				continue
			}
			inner := unwrapParens(expr)
			switch {
			case isElement(inner):
				nodes = append(nodes, b.build(inner))
			case isFragment(inner):
				nodes, texts = b.children(inner, nodes, texts)
			default:
				if code := b.text(expr); code != "" && code != "{}" {
					texts = append(texts, code)
				}
			}
		}
	}
	flush()

	return nodes, texts
}
