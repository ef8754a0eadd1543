package plugins

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/gnana997/compedit/pkg/element"
	"github.com/gnana997/compedit/pkg/properties"
)

var (
	spacingPattern = regexp.MustCompile(`^(\d+)px`)
	hexColor       = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)
)

// style returns a style entry, null when absent.
func style(n *element.Node, key string) element.Value {
	v, _ := n.StyleValue(key)
	return v
}

// or returns v when it is truthy and def otherwise.
func or(v, def element.Value) element.Value {
	if v.Truthy() {
		return v
	}
	return def
}

// numberOrZero coerces v to a number. NaN becomes zero.
func numberOrZero(v element.Value) float64 {
	f := v.Float()
	if math.IsNaN(f) {
		return 0
	}
	return f
}

// parseSpacing reads a spacing value: numbers as they are, strings with a
// leading pixel amount such as "16px" or "0px 8px". Anything else is not a
// spacing value.
func parseSpacing(v element.Value) (float64, bool) {
	if f, ok := v.AsNumber(); ok {
		return f, true
	}
	s, ok := v.AsString()
	if !ok {
		return 0, false
	}
	m := spacingPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	return parseIntPrefix(m[1])
}

// sides reads the four per-side entries of a spacing key. Unreadable sides
// count as zero.
func sides(n *element.Node, key string) properties.Sides {
	var vals [4]float64
	for i, k := range properties.SideKeys(key) {
		if f, ok := parseSpacing(style(n, k)); ok {
			vals[i] = f
		}
	}
	return properties.Sides{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}
}

// pixels reads a dimension that may be written as "24px" or 24. Strings
// without a leading non-zero integer, and values of other kinds, fall back
// to def.
func pixels(v element.Value, def float64) float64 {
	if f, ok := v.AsNumber(); ok {
		return f
	}
	if s, ok := v.AsString(); ok {
		if f, ok := parseIntPrefix(strings.Replace(s, "px", "", 1)); ok && f != 0 {
			return f
		}
	}
	return def
}

// parseIntPrefix reads the leading base-10 integer of s, skipping leading
// white space and accepting a sign.
func parseIntPrefix(s string) (float64, bool) {
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	var n float64
	digits := 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		n = n*10 + float64(s[digits]-'0')
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}
