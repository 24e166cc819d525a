package extract

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// nodeText returns the source text spanned by node.
func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return node.Content(source)
}

// lineRange converts tree-sitter's 0-based row positions into the
// 1-based inclusive line numbers the data model requires.
func lineRange(node *sitter.Node) (start, end int) {
	return int(node.StartPoint().Row) + 1, int(node.EndPoint().Row) + 1
}

// findChildByType returns the first direct child of the given type.
func findChildByType(node *sitter.Node, nodeType string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == nodeType {
			return child
		}
	}
	return nil
}

// findChildrenByType returns every direct child of the given type.
func findChildrenByType(node *sitter.Node, nodeType string) []*sitter.Node {
	if node == nil {
		return nil
	}
	var out []*sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == nodeType {
			out = append(out, child)
		}
	}
	return out
}

// findDescendantsByType walks the whole subtree (not just direct
// children) collecting nodes of the given type, stopping the descent at
// any node in boundary so callers can scope a search to one function
// body without crossing into nested ones.
func findDescendantsByType(node *sitter.Node, nodeType string, boundary map[string]bool) []*sitter.Node {
	var out []*sitter.Node
	var walk func(n *sitter.Node, isRoot bool)
	walk = func(n *sitter.Node, isRoot bool) {
		if n == nil {
			return
		}
		if !isRoot && boundary[n.Type()] {
			return
		}
		if n.Type() == nodeType {
			out = append(out, n)
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i), false)
		}
	}
	walk(node, true)
	return out
}

// ancestorOfType walks up from node looking for the nearest ancestor
// whose type is in types, following node.Parent().
func ancestorOfType(node *sitter.Node, types map[string]bool) *sitter.Node {
	for n := node.Parent(); n != nil; n = n.Parent() {
		if types[n.Type()] {
			return n
		}
	}
	return nil
}

// snippet returns node's source text for Entity.SourceSnippet, cut off
// after the first 2000 bytes so very large entities do not carry their
// whole body. Callers pass the full definition node.
func snippet(node *sitter.Node, source []byte) string {
	text := nodeText(node, source)
	if len(text) > 2000 {
		text = text[:2000]
	}
	return text
}
