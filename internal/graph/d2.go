package graph

import (
	"fmt"
	"strings"
)

// GenerateD2 renders a D2 diagram source string from a draw_call_graph
// node/edge set (§6), adapted from this codebase's previous D2 writer.
func GenerateD2(nodes []Node, edges []Edge, opts *DiagramOptions) string {
	if opts == nil {
		opts = DefaultDiagramOptions()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("direction: %s\n", opts.Direction))
	if opts.Title != "" {
		sb.WriteString(fmt.Sprintf("title: {\n  label: %s\n  near: top-center\n}\n", opts.Title))
	}
	sb.WriteString("\n# Nodes\n")
	for _, n := range nodes {
		sb.WriteString(generateD2Node(n))
		sb.WriteString("\n")
	}

	sb.WriteString("\n# Edges\n")
	for _, e := range edges {
		sb.WriteString(generateD2Edge(e, opts.ShowLabels))
		sb.WriteString("\n")
	}

	return sb.String()
}

func generateD2Node(n Node) string {
	safeID := sanitizeD2ID(n.ID)
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: {\n", safeID))
	sb.WriteString(fmt.Sprintf("  label: \"%s\"\n", n.Name))
	sb.WriteString("}")
	return sb.String()
}

func generateD2Edge(e Edge, showLabel bool) string {
	style := GetEdgeStyle(e.CallType)
	safeFrom := sanitizeD2ID(e.From)
	safeTo := sanitizeD2ID(e.To)
	if showLabel {
		return fmt.Sprintf("%s %s %s: %s", safeFrom, style.D2Style, safeTo, e.CallType)
	}
	return fmt.Sprintf("%s %s %s", safeFrom, style.D2Style, safeTo)
}

// sanitizeD2ID quotes an ID containing characters D2 identifiers can't
// carry unquoted (entity ids are opaque UUIDs, which always need this).
func sanitizeD2ID(id string) string {
	for _, c := range id {
		if !isAlphanumeric(c) && c != '_' {
			escaped := strings.ReplaceAll(id, "\"", "\\\"")
			return fmt.Sprintf("\"%s\"", escaped)
		}
	}
	return id
}

func isAlphanumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
