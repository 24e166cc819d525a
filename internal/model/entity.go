// Package model defines the shared call-graph data model: entities, call
// sites, and the directed multigraph that links them. Every language
// extractor in internal/extract produces these types; every persistence
// backend in internal/store serializes them.
package model

// Kind classifies a declared code entity.
type Kind string

const (
	KindFunction  Kind = "function"
	KindMethod    Kind = "method"
	KindClass     Kind = "class"
	KindStruct    Kind = "struct"
	KindInterface Kind = "interface" // covers traits and interfaces
	KindModule    Kind = "module"
	KindOther     Kind = "other"
)

// Param is one declared parameter of a function or method.
type Param struct {
	Name     string `json:"name"`
	TypeName string `json:"type_name,omitempty"`
}

// Entity is one declared code element tracked as a graph node.
//
// id is stable across rebuilds only for files that did not change; a
// reparsed file reissues fresh ids for all of its entities.
type Entity struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Kind            Kind    `json:"kind"`
	FilePath        string  `json:"file_path"`
	LineStart       int     `json:"line_start"`
	LineEnd         int     `json:"line_end"`
	Language        string  `json:"language"`
	Namespace       string  `json:"namespace,omitempty"`
	ParentEntityID  string  `json:"parent_entity_id,omitempty"`
	Parameters      []Param `json:"parameters,omitempty"`
	ReturnType      string  `json:"return_type,omitempty"`
	SourceSnippet   string  `json:"source_snippet,omitempty"`
	Annotations     []string `json:"annotations,omitempty"`
}

// Key returns the tuple the spec uses to identify an entity across
// rebuilds when ids are not stable: (file_path, name, line_start, kind).
func (e *Entity) Key() EntityKey {
	return EntityKey{FilePath: e.FilePath, Name: e.Name, LineStart: e.LineStart, Kind: e.Kind}
}

// EntityKey is the rebuild-stable identity of an entity, used to test
// structural equivalence between two builds of the same tree.
type EntityKey struct {
	FilePath  string
	Name      string
	LineStart int
	Kind      Kind
}

// CallSite is one syntactic invocation expression inside an entity's body.
type CallSite struct {
	ID             string `json:"id"`
	CallerEntityID string `json:"caller_entity_id"`
	CalleeName     string `json:"callee_name"`
	ReceiverType   string `json:"receiver_type,omitempty"`
	FilePath       string `json:"file_path"`
	LineNumber     int    `json:"line_number"`
}
