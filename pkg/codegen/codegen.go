// Package codegen renders an element tree back into component source.
package codegen

import (
	"strconv"
	"strings"

	"github.com/gnana997/compedit/pkg/element"
)

// DefaultName is used when the component name is empty.
const DefaultName = "Component"

// Generate renders roots as the body of a default-exported function component
// named name. It is pure and never fails.
func Generate(roots []*element.Node, name string) string {
	if name == "" {
		name = DefaultName
	}

	markup := make([]string, 0, len(roots))
	for _, root := range roots {
		var sb strings.Builder
		render(&sb, root)
		markup = append(markup, sb.String())
	}

	var out strings.Builder
	out.WriteString("export default function ")
	out.WriteString(name)
	out.WriteString("() {\n  return (\n    <>\n      ")
	out.WriteString(strings.Join(markup, "\n"))
	out.WriteString("\n    </>\n  );\n}\n")
	return out.String()
}

// Element renders a single node without the component wrapper.
func Element(n *element.Node) string {
	var sb strings.Builder
	render(&sb, n)
	return sb.String()
}

func render(sb *strings.Builder, n *element.Node) {
	if n == nil {
		return
	}
	tag := n.TagName
	if tag == "" {
		tag = element.DefaultTag
	}

	sb.WriteByte('<')
	sb.WriteString(tag)
	writeAttributes(sb, n)

	if n.TextContent == "" && len(n.Children) == 0 {
		sb.WriteString(" />")
		return
	}

	sb.WriteByte('>')
	sb.WriteString(escapeText(n.TextContent))
	for _, child := range n.Children {
		render(sb, child)
	}
	sb.WriteString("</")
	sb.WriteString(tag)
	sb.WriteByte('>')
}

func writeAttributes(sb *strings.Builder, n *element.Node) {
	if n.Props != nil {
		for pair := n.Props.Oldest(); pair != nil; pair = pair.Next() {
			if pair.Key == element.StyleKey && n.Style != nil && n.Style.Len() > 0 {
				continue
			}
			sb.WriteByte(' ')
			sb.WriteString(pair.Key)
			if b, ok := pair.Value.AsBool(); ok && b {
				continue
			}
			sb.WriteString(`="`)
			sb.WriteString(escapeAttr(pair.Value.String()))
			sb.WriteByte('"')
		}
	}

	if n.Style == nil || n.Style.Len() == 0 {
		return
	}

	sb.WriteString(" style={{ ")
	first := true
	for pair := n.Style.Oldest(); pair != nil; pair = pair.Next() {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(quoteJS(pair.Key))
		sb.WriteString(": ")
		sb.WriteString(styleValue(pair.Value))
	}
	sb.WriteString(" }}")
}

// styleValue quotes strings and inlines everything else.
func styleValue(v element.Value) string {
	if s, ok := v.AsString(); ok {
		return quoteJS(s)
	}
	return v.String()
}

// quoteJS renders s as a double-quoted JavaScript string literal.
func quoteJS(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\u2028':
			sb.WriteString(`\u2028`)
		case '\u2029':
			sb.WriteString(`\u2029`)
		default:
			if r < 0x20 {
				sb.WriteString(`\x`)
				sb.WriteString(strconv.FormatInt(int64(r)+0x100, 16)[1:])
				continue
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// The extractor decodes character references in attribute strings and text,
// so a literal & is escaped as well.
var (
	attrEscaper = strings.NewReplacer("&", "&amp;", `"`, "&quot;")
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"{", "&#123;",
		"}", "&#125;",
	)
)

func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}

// escapeText keeps captured expressions from being read back as markup or
// as an expression container.
func escapeText(s string) string {
	return textEscaper.Replace(s)
}
