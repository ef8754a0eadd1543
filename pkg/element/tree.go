package element

import "fmt"

// DefaultComponentName is used when no component declaration can be found.
const DefaultComponentName = "UnnamedComponent"

// SyntaxTree is the opaque parse-tree handle kept by a ParsedComponent.
type SyntaxTree interface {
	Close()
}

// ParsedComponent is the unit of editing.
type ParsedComponent struct {
	Name         string   `json:"name"`
	Code         string   `json:"code"`
	Dependencies []string `json:"dependencies"`
	Elements     []*Node  `json:"elements"`

	// Tree is only set when the caller asked the extractor to keep it.
	Tree SyntaxTree `json:"-"`
}

// Close releases the syntax tree, if one was kept.
func (pc *ParsedComponent) Close() {
	if pc.Tree != nil {
		pc.Tree.Close()
		pc.Tree = nil
	}
}

// FormatID renders the n-th element id, counted in post-order.
func FormatID(n int) string {
	return fmt.Sprintf("element-%d", n)
}

// Find returns the node with the given id, searching depth-first.
func Find(roots []*Node, id string) *Node {
	var found *Node
	Walk(roots, func(n *Node, _ int) bool {
		if found != nil {
			return false
		}
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Path returns the chain of nodes from a root down to the node with id.
func Path(roots []*Node, id string) []*Node {
	for _, root := range roots {
		if path := pathFrom(root, id); path != nil {
			return path
		}
	}
	return nil
}

func pathFrom(n *Node, id string) []*Node {
	if n.ID == id {
		return []*Node{n}
	}
	for _, child := range n.Children {
		if rest := pathFrom(child, id); rest != nil {
			return append([]*Node{n}, rest...)
		}
	}
	return nil
}

// Update replaces the node with id by fn(node) and returns the new root list.
//
// Only the nodes on the path to the target are copied; every other subtree
// is shared with the input. The input slice is never modified. When id is not
// found the original roots are returned with ok false.
func Update(roots []*Node, id string, fn func(*Node) *Node) (updated []*Node, ok bool) {
	for i, root := range roots {
		replaced, hit := updateNode(root, id, fn)
		if !hit {
			continue
		}
		updated = make([]*Node, len(roots))
		copy(updated, roots)
		updated[i] = replaced
		return updated, true
	}
	return roots, false
}

func updateNode(n *Node, id string, fn func(*Node) *Node) (*Node, bool) {
	if n.ID == id {
		return fn(n), true
	}
	for i, child := range n.Children {
		replaced, hit := updateNode(child, id, fn)
		if !hit {
			continue
		}
		children := make([]*Node, len(n.Children))
		copy(children, n.Children)
		children[i] = replaced
		return n.WithChildren(children), true
	}
	return n, false
}

// Walk visits nodes depth-first in document order. Returning false from fn
// skips the node's children.
func Walk(roots []*Node, fn func(n *Node, depth int) bool) {
	for _, root := range roots {
		walk(root, 0, fn)
	}
}

func walk(n *Node, depth int, fn func(*Node, int) bool) {
	if n == nil || !fn(n, depth) {
		return
	}
	for _, child := range n.Children {
		walk(child, depth+1, fn)
	}
}

// Count returns the number of nodes in the forest.
func Count(roots []*Node) int {
	count := 0
	Walk(roots, func(*Node, int) bool {
		count++
		return true
	})
	return count
}

// Equal compares two forests by value.
func Equal(a, b []*Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// CloneAll deep-copies a forest.
func CloneAll(roots []*Node) []*Node {
	if roots == nil {
		return nil
	}
	out := make([]*Node, len(roots))
	for i, root := range roots {
		out[i] = root.Clone()
	}
	return out
}
