package model

import "sort"

// MaxDepthCap is the hard ceiling on call_chain / hierarchical walks,
// regardless of what a caller requests (§6 hierarchical_max_depth_cap).
const MaxDepthCap = 16

// DefaultCallChainDepth is the call_chain default when max_depth is
// unspecified (§4.5).
const DefaultCallChainDepth = 3

// HierarchicalNode is one node of a bounded-depth call-chain tree,
// mirroring the shape used by query_hierarchical_graph and draw_call_graph.
type HierarchicalNode struct {
	Name       string              `json:"name"`
	FunctionID string              `json:"function_id,omitempty"`
	FilePath   string              `json:"file_path,omitempty"`
	LineStart  int                 `json:"line_start,omitempty"`
	LineEnd    int                 `json:"line_end,omitempty"`
	Children   []*HierarchicalNode `json:"children,omitempty"`
	CallType   string              `json:"call_type,omitempty"`
}

// CallChain performs a bounded-depth BFS tree walk rooted at rootID,
// following outgoing call edges. Depth is capped at MaxDepthCap even if
// maxDepth requests more. Edges from the root are annotated "direct";
// everything deeper is "indirect". A node already seen earlier in the
// walk is emitted once more as a leaf (no children) rather than
// recursed into, which is how cycles are broken per §4.5/§8.
func (g *Graph) CallChain(rootID string, maxDepth int) *HierarchicalNode {
	if maxDepth > MaxDepthCap {
		maxDepth = MaxDepthCap
	}
	if maxDepth < 0 {
		maxDepth = 0
	}

	visited := map[string]struct{}{rootID: {}}
	root := g.hierarchicalNode(rootID, "")
	g.expand(root, rootID, 0, maxDepth, visited)
	return root
}

func (g *Graph) expand(node *HierarchicalNode, id string, depth, maxDepth int, visited map[string]struct{}) {
	if depth >= maxDepth {
		return
	}

	callType := CallTypeIndirect
	if depth == 0 {
		callType = CallTypeDirect
	}

	callees := uniqueCallees(g.forward[id])
	for _, calleeID := range callees {
		child := g.hierarchicalNode(calleeID, callType)
		node.Children = append(node.Children, child)

		if _, seen := visited[calleeID]; seen {
			continue // cycle: emit as a leaf, do not recurse
		}
		visited[calleeID] = struct{}{}
		g.expand(child, calleeID, depth+1, maxDepth, visited)
	}
}

func uniqueCallees(edges []EdgeKey) []string {
	seen := make(map[string]struct{}, len(edges))
	var out []string
	for _, ek := range edges {
		if _, ok := seen[ek.CalleeID]; ok {
			continue
		}
		seen[ek.CalleeID] = struct{}{}
		out = append(out, ek.CalleeID)
	}
	sort.Strings(out)
	return out
}

func (g *Graph) hierarchicalNode(id, callType string) *HierarchicalNode {
	n := &HierarchicalNode{FunctionID: id, CallType: callType}
	if e, ok := g.Entities[id]; ok {
		n.Name = e.Name
		n.FilePath = e.FilePath
		n.LineStart = e.LineStart
		n.LineEnd = e.LineEnd
	}
	return n
}
