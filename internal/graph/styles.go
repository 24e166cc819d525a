// Package graph renders draw_call_graph's visualization payload (§6):
// a bounded node/edge set plus D2 and Mermaid diagram source, adapted
// from this codebase's prior-generation diagram styling tables to the
// Entity/HierarchicalNode shapes of internal/model instead of a
// generic dependency-store record.
package graph

import "github.com/anthropics/codegraph/internal/model"

// EdgeStyle defines diagram edge styles for a call_type (§3, §4.5).
type EdgeStyle struct {
	D2Style      string
	MermaidStyle string
}

var edgeStyles = map[string]EdgeStyle{
	model.CallTypeDirect:   {D2Style: "->", MermaidStyle: "-->"},
	model.CallTypeIndirect: {D2Style: "->", MermaidStyle: "-.->"},
}

// GetEdgeStyle returns the style for a call_type, falling back to a
// plain solid arrow.
func GetEdgeStyle(callType string) EdgeStyle {
	if style, ok := edgeStyles[callType]; ok {
		return style
	}
	return EdgeStyle{D2Style: "->", MermaidStyle: "-->"}
}

// DiagramOptions are the shared rendering knobs for both backends.
type DiagramOptions struct {
	MaxNodes   int
	Direction  string // D2: "right"/"down"; Mermaid: "LR"/"TD"
	ShowLabels bool
	Title      string
}

// DefaultDiagramOptions mirrors the defaults of this codebase's
// previous-generation diagram commands.
func DefaultDiagramOptions() *DiagramOptions {
	return &DiagramOptions{MaxNodes: 30, Direction: "right", ShowLabels: true}
}
