package extractor

import (
	"html"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/compedit/pkg/element"
)

// literalValue converts a style value expression. String, number, boolean and
// null literals are copied by value, a template literal without substitutions
// by its cooked text, and everything else by its source text.
func literalValue(n *ts.Node, source []byte) element.Value {
	switch n.Kind() {
	case "string":
		return element.String(stringLiteral(n, source))

	case "number":
		if v, ok := numberLiteral(n.Utf8Text(source)); ok {
			return element.Number(v)
		}

	case "true":
		return element.Bool(true)

	case "false":
		return element.Bool(false)

	case "null":
		return element.Null()

	case "template_string":
		if cooked, ok := templateLiteral(n, source); ok {
			return element.String(cooked)
		}
	}
	return element.String(n.Utf8Text(source))
}

// propertyKey returns the name of an object key, or "" for keys that are not
// identifiers or string literals.
func propertyKey(n *ts.Node, source []byte) string {
	if n == nil {
		return ""
	}
	switch n.Kind() {
	case "property_identifier", "identifier":
		return n.Utf8Text(source)
	case "string":
		return stringLiteral(n, source)
	}
	return ""
}

// stringLiteral decodes a JavaScript string literal node.
func stringLiteral(n *ts.Node, source []byte) string {
	return decodeEscapes(stripDelimiters(n.Utf8Text(source)))
}

// jsxAttributeString decodes a JSX attribute string. These carry no
// backslash escapes, only HTML character references.
func jsxAttributeString(n *ts.Node, source []byte) string {
	return html.UnescapeString(stripDelimiters(n.Utf8Text(source)))
}

// templateLiteral returns the cooked text of a template literal that has no
// substitutions.
func templateLiteral(n *ts.Node, source []byte) (string, bool) {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if c := n.NamedChild(i); c != nil && c.Kind() == "template_substitution" {
			return "", false
		}
	}
	return decodeEscapes(stripDelimiters(n.Utf8Text(source))), true
}

// numberLiteral parses a numeric literal. BigInt literals are not numbers.
func numberLiteral(text string) (float64, bool) {
	if strings.HasSuffix(text, "n") {
		return 0, false
	}
	text = strings.ReplaceAll(text, "_", "")

	// Legacy octal: 017
	if len(text) > 1 && text[0] == '0' && isDigits(text[1:]) && !strings.ContainsAny(text, "89") {
		if v, err := strconv.ParseUint(text[1:], 8, 64); err == nil {
			return float64(v), true
		}
	}

	v := element.ParseNumber(text)
	if v != v { // NaN
		return 0, false
	}
	return v, true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func stripDelimiters(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}

// trimJS trims the characters JavaScript's String.prototype.trim removes.
func trimJS(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}

// decodeEscapes interprets JavaScript backslash escapes.
func decodeEscapes(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}

	var out strings.Builder
	out.Grow(len(s))

	for i := 0; i < len(s); {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			out.WriteByte(c)
			i++
			continue
		}

		i++
		esc := s[i]
		i++
		switch esc {
		case 'n':
			out.WriteByte('\n')
		case 't':
			out.WriteByte('\t')
		case 'r':
			out.WriteByte('\r')
		case 'b':
			out.WriteByte('\b')
		case 'f':
			out.WriteByte('\f')
		case 'v':
			out.WriteByte('\v')
		case '0':
			out.WriteByte(0)
		case '\n':
			// line continuation
		case '\r':
			if i < len(s) && s[i] == '\n' {
				i++
			}
		case 'x':
			if r, ok := parseHex(s, i, 2); ok {
				out.WriteRune(r)
				i += 2
			} else {
				out.WriteByte('x')
			}
		case 'u':
			r, n := parseUnicodeEscape(s, i)
			if n == 0 {
				out.WriteByte('u')
				break
			}
			i += n
			// Surrogate pair written as two \u escapes.
			if utf16High(r) && i+1 < len(s) && s[i] == '\\' && s[i+1] == 'u' {
				if low, m := parseUnicodeEscape(s, i+2); m != 0 && utf16Low(low) {
					r = (r-0xD800)<<10 + (low - 0xDC00) + 0x10000
					i += 2 + m
				}
			}
			if !utf8.ValidRune(r) {
				r = utf8.RuneError
			}
			out.WriteRune(r)
		default:
			out.WriteByte(esc)
		}
	}
	return out.String()
}

// parseUnicodeEscape parses the part after `\u`: either XXXX or {X...}.
// It returns the rune and the number of bytes consumed.
func parseUnicodeEscape(s string, i int) (rune, int) {
	if i < len(s) && s[i] == '{' {
		end := strings.IndexByte(s[i:], '}')
		if end < 2 {
			return 0, 0
		}
		v, err := strconv.ParseUint(s[i+1:i+end], 16, 32)
		if err != nil {
			return 0, 0
		}
		return rune(v), end + 1
	}
	if r, ok := parseHex(s, i, 4); ok {
		return r, 4
	}
	return 0, 0
}

func parseHex(s string, i, width int) (rune, bool) {
	if i+width > len(s) {
		return 0, false
	}
	v, err := strconv.ParseUint(s[i:i+width], 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}

func utf16High(r rune) bool { return r >= 0xD800 && r <= 0xDBFF }
func utf16Low(r rune) bool  { return r >= 0xDC00 && r <= 0xDFFF }
