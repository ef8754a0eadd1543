package extractor

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/compedit/pkg/element"
)

// resolveComponentName picks the component's name.
//
// An `export default` of an identifier or a named function always wins.
// Otherwise the last declaration in file order that renders markup is used:
// a function declaration with a return of a JSX element, or a variable bound
// to an arrow/function expression that returns or evaluates to one.
func resolveComponentName(root *ts.Node, source []byte) string {
	var candidate, exported string

	visit(root, func(n *ts.Node) bool {
		switch n.Kind() {
		case "function_declaration", "generator_function_declaration":
			if name := n.ChildByFieldName("name"); name != nil && name.Kind() == "identifier" {
				if returnsElement(n, false) {
					candidate = name.Utf8Text(source)
				}
			}

		case "variable_declarator":
			name := n.ChildByFieldName("name")
			value := n.ChildByFieldName("value")
			if name != nil && name.Kind() == "identifier" && value != nil && isFunctionExpression(value) {
				if returnsElement(value, true) {
					candidate = name.Utf8Text(source)
				}
			}

		case "export_statement":
			if name := defaultExportName(n, source); name != "" {
				exported = name
			}
		}
		return true
	})

	switch {
	case exported != "":
		return exported
	case candidate != "":
		return candidate
	default:
		return element.DefaultComponentName
	}
}

// defaultExportName handles `export default Name` and
// `export default function Name() {}`.
func defaultExportName(n *ts.Node, source []byte) string {
	if !hasToken(n, "default") {
		return ""
	}

	if decl := n.ChildByFieldName("declaration"); decl != nil {
		switch decl.Kind() {
		case "function_declaration", "generator_function_declaration":
			if name := decl.ChildByFieldName("name"); name != nil {
				return name.Utf8Text(source)
			}
		}
		return ""
	}

	if value := n.ChildByFieldName("value"); value != nil {
		value = unwrapParens(value)
		switch value.Kind() {
		case "identifier":
			return value.Utf8Text(source)
		case "function_expression", "function":
			// Some grammar versions parse a named default function as an
			// expression.
			if name := value.ChildByFieldName("name"); name != nil {
				return name.Utf8Text(source)
			}
		}
	}
	return ""
}

// returnsElement reports whether fn, or any function nested in it, returns
// a JSX element. With arrowBodies, an arrow function whose expression body is
// an element also counts.
func returnsElement(fn *ts.Node, arrowBodies bool) bool {
	found := false
	visit(fn, func(n *ts.Node) bool {
		if found {
			return false
		}
		switch n.Kind() {
		case "return_statement":
			if arg := firstNamedChild(n); arg != nil && isElement(unwrapParens(arg)) {
				found = true
			}
		case "arrow_function":
			if !arrowBodies {
				break
			}
			if body := n.ChildByFieldName("body"); body != nil && isElement(unwrapParens(body)) {
				found = true
			}
		}
		return !found
	})
	return found
}

func isFunctionExpression(n *ts.Node) bool {
	switch n.Kind() {
	case "arrow_function", "function_expression", "function", "generator_function":
		return true
	}
	return false
}

func hasToken(n *ts.Node, token string) bool {
	for i := uint(0); i < n.ChildCount(); i++ {
		if c := n.Child(i); c != nil && !c.IsNamed() && c.Kind() == token {
			return true
		}
	}
	return false
}
