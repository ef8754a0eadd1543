package parser

import (
	"fmt"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// maxSnippet bounds the source excerpt carried by a SyntaxError.
const maxSnippet = 40

// SyntaxError reports the first malformed region of a component's source.
//
// Line and Column are 1-based.
type SyntaxError struct {
	Line    int
	Column  int
	Missing bool
	Kind    string
	Snippet string
}

func (e *SyntaxError) Error() string {
	if e.Missing {
		return fmt.Sprintf("Failed to parse component: missing %s (%d:%d)", e.Kind, e.Line, e.Column)
	}
	if e.Snippet == "" {
		return fmt.Sprintf("Failed to parse component: unexpected end of input (%d:%d)", e.Line, e.Column)
	}
	return fmt.Sprintf("Failed to parse component: unexpected %q (%d:%d)", e.Snippet, e.Line, e.Column)
}

// FirstSyntaxError returns the earliest ERROR or MISSING node of tree, or nil
// when the tree parsed cleanly.
func FirstSyntaxError(tree *ts.Tree, source []byte) *SyntaxError {
	if tree == nil {
		return &SyntaxError{Line: 1, Column: 1}
	}
	root := tree.RootNode()
	if !root.HasError() {
		return nil
	}

	node := findErrorNode(root)
	if node == nil {
		// HasError without a locatable node; report the root.
		node = root
	}

	pos := node.StartPosition()
	se := &SyntaxError{
		Line:    int(pos.Row) + 1,
		Column:  int(pos.Column) + 1,
		Missing: node.IsMissing(),
		Kind:    node.Kind(),
	}
	if !se.Missing {
		se.Snippet = snippet(node.Utf8Text(source))
	}
	return se
}

// findErrorNode walks down the leftmost branch that contains an error.
func findErrorNode(node *ts.Node) *ts.Node {
	if node.IsError() || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if found := findErrorNode(child); found != nil {
			return found
		}
	}
	return nil
}

func snippet(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	if len(text) > maxSnippet {
		text = text[:maxSnippet] + "..."
	}
	return text
}
