package graph

import (
	"fmt"
	"regexp"
	"strings"
)

// GenerateMermaid renders a Mermaid flowchart from a draw_call_graph
// node/edge set, adapted from this codebase's previous Mermaid writer.
// Every node is a function or method, so all nodes share one shape;
// edge styles come from GetEdgeStyle (direct vs. indirect).
func GenerateMermaid(nodes []Node, edges []Edge, opts *DiagramOptions) string {
	if opts == nil {
		opts = DefaultDiagramOptions()
	}
	direction := opts.Direction
	if direction != "TD" && direction != "LR" {
		direction = "LR"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("flowchart %s\n", direction))
	if opts.Title != "" {
		sb.WriteString(fmt.Sprintf("    subgraph title[\"%s\"]\n    end\n", escapeMermaidString(opts.Title)))
	}

	for _, n := range nodes {
		sb.WriteString(fmt.Sprintf("    %s\n", generateMermaidNode(sanitizeMermaidID(n.ID), n.Name)))
	}
	for _, e := range edges {
		sb.WriteString(fmt.Sprintf("    %s\n", generateMermaidEdge(sanitizeMermaidID(e.From), sanitizeMermaidID(e.To), e.CallType)))
	}

	return sb.String()
}

// generateMermaidNode creates a Mermaid node declaration. Every
// draw_call_graph node is a call-graph entity (function or method), so
// it always uses the rectangle shape.
func generateMermaidNode(id, name string) string {
	return fmt.Sprintf("%s[\"%s\"]", id, escapeMermaidString(name))
}

func generateMermaidEdge(from, to, callType string) string {
	style := GetEdgeStyle(callType)
	return fmt.Sprintf("%s %s %s", from, style.MermaidStyle, to)
}

var mermaidIDRegex = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// sanitizeMermaidID converts an opaque entity id into a valid Mermaid
// node identifier (alphanumeric + underscore, not digit-leading).
func sanitizeMermaidID(id string) string {
	sanitized := mermaidIDRegex.ReplaceAllString(id, "_")
	if len(sanitized) > 0 && sanitized[0] >= '0' && sanitized[0] <= '9' {
		sanitized = "_" + sanitized
	}
	if sanitized == "" {
		sanitized = "_empty"
	}
	return sanitized
}

func escapeMermaidString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "#quot;")
	s = strings.ReplaceAll(s, "<", "#lt;")
	s = strings.ReplaceAll(s, ">", "#gt;")
	return s
}
