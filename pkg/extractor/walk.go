package extractor

import (
	ts "github.com/tree-sitter/go-tree-sitter"
)

// visit walks n depth-first in document order. Returning false from fn
// skips the node's children.
func visit(n *ts.Node, fn func(*ts.Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		visit(n.Child(i), fn)
	}
}

// namedChildren returns the named children of n, comments excluded.
func namedChildren(n *ts.Node) []*ts.Node {
	var out []*ts.Node
	for i := uint(0); i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if c == nil || c.Kind() == "comment" {
			continue
		}
		out = append(out, c)
	}
	return out
}

func firstNamedChild(n *ts.Node) *ts.Node {
	if children := namedChildren(n); len(children) > 0 {
		return children[0]
	}
	return nil
}

// unwrapParens strips any number of enclosing parentheses.
func unwrapParens(n *ts.Node) *ts.Node {
	for n != nil && n.Kind() == "parenthesized_expression" {
		inner := firstNamedChild(n)
		if inner == nil {
			return n
		}
		n = inner
	}
	return n
}

// isElement reports whether n is a JSX element that is not a fragment.
func isElement(n *ts.Node) bool {
	if n == nil {
		return false
	}
	switch n.Kind() {
	case "jsx_self_closing_element":
		return true
	case "jsx_element":
		return !isFragment(n)
	}
	return false
}

// isFragment reports whether n is `<>...</>`.
func isFragment(n *ts.Node) bool {
	if n == nil {
		return false
	}
	if n.Kind() == "jsx_fragment" {
		return true
	}
	if n.Kind() != "jsx_element" {
		return false
	}
	open := n.ChildByFieldName("open_tag")
	if open == nil {
		open = n.NamedChild(0)
	}
	return open != nil && open.ChildByFieldName("name") == nil
}
