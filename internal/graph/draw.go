package graph

import (
	"sort"

	"github.com/anthropics/codegraph/internal/model"
)

// Node is one entity in a draw_call_graph payload.
type Node struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	FilePath  string `json:"file_path"`
	LineStart int    `json:"line_start"`
	LineEnd   int    `json:"line_end"`
}

// Edge is one resolved call relation in a draw_call_graph payload.
type Edge struct {
	From     string `json:"from"`
	To       string `json:"to"`
	CallType string `json:"call_type"`
}

// Payload is the rendering payload draw_call_graph returns: a bounded
// node/edge set suitable for a browser visualization front-end, plus
// the same data pre-rendered as D2 and Mermaid diagram source (§6).
type Payload struct {
	Nodes   []Node `json:"nodes"`
	Edges   []Edge `json:"edges"`
	D2      string `json:"d2"`
	Mermaid string `json:"mermaid"`
}

// BuildPayload flattens a bounded-depth call-chain tree (as produced by
// model.Graph.CallChain) into the node/edge lists draw_call_graph
// returns, then renders both diagram formats from the same data.
func BuildPayload(root *model.HierarchicalNode, opts *DiagramOptions) Payload {
	if opts == nil {
		opts = DefaultDiagramOptions()
	}

	nodes := make(map[string]Node)
	var edges []Edge

	var walk func(n *model.HierarchicalNode)
	walk = func(n *model.HierarchicalNode) {
		if n.FunctionID == "" {
			return
		}
		if _, ok := nodes[n.FunctionID]; !ok {
			nodes[n.FunctionID] = Node{
				ID:        n.FunctionID,
				Name:      n.Name,
				FilePath:  n.FilePath,
				LineStart: n.LineStart,
				LineEnd:   n.LineEnd,
			}
		}
		for _, child := range n.Children {
			if child.FunctionID == "" {
				continue
			}
			edges = append(edges, Edge{From: n.FunctionID, To: child.FunctionID, CallType: child.CallType})
			walk(child)
		}
	}
	walk(root)

	nodeList := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		nodeList = append(nodeList, n)
	}
	sort.Slice(nodeList, func(i, j int) bool { return nodeList[i].ID < nodeList[j].ID })

	if opts.MaxNodes > 0 && len(nodeList) > opts.MaxNodes {
		nodeList = nodeList[:opts.MaxNodes]
		kept := make(map[string]struct{}, len(nodeList))
		for _, n := range nodeList {
			kept[n.ID] = struct{}{}
		}
		filtered := edges[:0]
		for _, e := range edges {
			if _, ok := kept[e.From]; !ok {
				continue
			}
			if _, ok := kept[e.To]; !ok {
				continue
			}
			filtered = append(filtered, e)
		}
		edges = filtered
	}

	return Payload{
		Nodes:   nodeList,
		Edges:   edges,
		D2:      GenerateD2(nodeList, edges, opts),
		Mermaid: GenerateMermaid(nodeList, edges, opts),
	}
}
