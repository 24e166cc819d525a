package graph

import (
	"strings"
	"testing"

	"github.com/anthropics/codegraph/internal/model"
)

func sampleTree() *model.HierarchicalNode {
	leaf := &model.HierarchicalNode{FunctionID: "c", Name: "leaf", CallType: model.CallTypeIndirect}
	mid := &model.HierarchicalNode{FunctionID: "b", Name: "mid", CallType: model.CallTypeDirect, Children: []*model.HierarchicalNode{leaf}}
	root := &model.HierarchicalNode{FunctionID: "a", Name: "root", Children: []*model.HierarchicalNode{mid}}
	return root
}

func TestBuildPayload_FlattensTreeIntoNodesAndEdges(t *testing.T) {
	payload := BuildPayload(sampleTree(), nil)

	if len(payload.Nodes) != 3 {
		t.Fatalf("expected 3 distinct nodes, got %d", len(payload.Nodes))
	}
	if len(payload.Edges) != 2 {
		t.Fatalf("expected 2 edges, got %d", len(payload.Edges))
	}
	if payload.D2 == "" || payload.Mermaid == "" {
		t.Fatalf("expected both diagram formats rendered")
	}
}

func TestBuildPayload_SkipsNodesWithoutFunctionID(t *testing.T) {
	root := &model.HierarchicalNode{FunctionID: "a", Name: "root"}
	root.Children = []*model.HierarchicalNode{{FunctionID: "", Name: "unresolved"}}

	payload := BuildPayload(root, nil)
	if len(payload.Nodes) != 1 {
		t.Fatalf("expected unresolved child dropped, got %d nodes", len(payload.Nodes))
	}
	if len(payload.Edges) != 0 {
		t.Fatalf("expected no edge to an unresolved callee, got %d", len(payload.Edges))
	}
}

func TestBuildPayload_TruncatesAtMaxNodesAndDropsDanglingEdges(t *testing.T) {
	opts := &DiagramOptions{MaxNodes: 2, Direction: "right"}
	payload := BuildPayload(sampleTree(), opts)

	if len(payload.Nodes) != 2 {
		t.Fatalf("expected truncation to 2 nodes, got %d", len(payload.Nodes))
	}
	for _, e := range payload.Edges {
		foundFrom, foundTo := false, false
		for _, n := range payload.Nodes {
			if n.ID == e.From {
				foundFrom = true
			}
			if n.ID == e.To {
				foundTo = true
			}
		}
		if !foundFrom || !foundTo {
			t.Fatalf("expected no dangling edge after truncation, got %#v", e)
		}
	}
}

func TestBuildPayload_DeduplicatesRepeatedCycleNode(t *testing.T) {
	// A node appearing twice in the tree (once expanded, once as a cycle
	// leaf) must still collapse to a single entry in the flattened node set.
	leaf := &model.HierarchicalNode{FunctionID: "a", Name: "root", CallType: model.CallTypeIndirect}
	mid := &model.HierarchicalNode{FunctionID: "b", Name: "mid", CallType: model.CallTypeDirect, Children: []*model.HierarchicalNode{leaf}}
	root := &model.HierarchicalNode{FunctionID: "a", Name: "root", Children: []*model.HierarchicalNode{mid}}

	payload := BuildPayload(root, nil)
	if len(payload.Nodes) != 2 {
		t.Fatalf("expected node 'a' deduplicated, got %d nodes", len(payload.Nodes))
	}
}

func TestGenerateD2_QuotesUUIDLikeIDs(t *testing.T) {
	nodes := []Node{{ID: "abc-123", Name: "f"}}
	out := GenerateD2(nodes, nil, nil)
	if !strings.Contains(out, `"abc-123"`) {
		t.Fatalf("expected hyphenated id quoted in D2 output, got:\n%s", out)
	}
}

func TestGenerateD2_EdgeUsesEdgeStyleArrow(t *testing.T) {
	nodes := []Node{{ID: "a"}, {ID: "b"}}
	edges := []Edge{{From: "a", To: "b", CallType: model.CallTypeDirect}}
	out := GenerateD2(nodes, edges, &DiagramOptions{ShowLabels: false})
	if !strings.Contains(out, "a -> b") {
		t.Fatalf("expected 'a -> b' edge line, got:\n%s", out)
	}
}

func TestGenerateMermaid_SanitizesHyphenatedIDs(t *testing.T) {
	nodes := []Node{{ID: "abc-123", Name: "f"}}
	out := GenerateMermaid(nodes, nil, nil)
	if strings.Contains(out, "abc-123") {
		t.Fatalf("expected hyphen stripped from mermaid id, got:\n%s", out)
	}
	if !strings.Contains(out, "abc_123") {
		t.Fatalf("expected sanitized id present, got:\n%s", out)
	}
}

func TestGenerateMermaid_IndirectEdgeUsesDottedArrow(t *testing.T) {
	nodes := []Node{{ID: "a"}, {ID: "b"}}
	edges := []Edge{{From: "a", To: "b", CallType: model.CallTypeIndirect}}
	out := GenerateMermaid(nodes, edges, nil)
	if !strings.Contains(out, "-.->") {
		t.Fatalf("expected dotted arrow for an indirect call, got:\n%s", out)
	}
}

func TestGenerateMermaid_EscapesSpecialCharactersInLabels(t *testing.T) {
	nodes := []Node{{ID: "a", Name: `f<"x">`}}
	out := GenerateMermaid(nodes, nil, nil)
	if strings.Contains(out, `<`) || strings.Contains(out, `>`) || !strings.Contains(out, `a["f#lt;#quot;x#quot;#gt;"]`) {
		t.Fatalf("expected label characters escaped, got:\n%s", out)
	}
}
