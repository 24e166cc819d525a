// Package extract implements C1 (per-language raw symbol extraction) and
// C2 (normalization into the shared model.Entity / model.CallSite
// records) of the call-graph pipeline. Each supported language has its
// own file (rust.go, c.go, cpp.go, python.go, java.go, typescript.go)
// exposing an Extract function with the same shape, dispatched on
// internal/parser.Language by Extract in extract.go.
package extract

import "github.com/anthropics/codegraph/internal/model"

// RawEntity is the language-agnostic shape every C1 extractor produces
// for one declared code element, before C2 assigns it a stable id and
// resolves its parent/namespace relationships.
type RawEntity struct {
	Kind      model.Kind
	Name      string
	LineStart int
	LineEnd   int

	// Namespace is the ordered chain of enclosing scope names (package,
	// module, outer class, ...), not including Name itself.
	Namespace []string

	// ParentScopeName is the short name of the innermost enclosing
	// class/struct/trait/module, used by the normalizer to attach
	// ParentEntityID. Empty for top-level entities.
	ParentScopeName string

	Parameters []model.Param
	ReturnType string
	Snippet    string

	// Annotations holds decorator/annotation names attached to this
	// entity (Python decorators, Java annotations). They are carried as
	// metadata on the entity, never turned into separate entities or
	// call-graph nodes.
	Annotations []string
}

// RawCall is one syntactic invocation expression found inside a
// function or method body.
type RawCall struct {
	// CallerIndex is the index into RawFile.Entities of the entity whose
	// body contains this call. A call found outside any entity body
	// (e.g. at module scope) is not recorded: the spec requires every
	// call site's caller_entity_id to reference an existing entity.
	CallerIndex  int
	CalleeName   string
	ReceiverType string
	Line         int
}

// RawFile is everything one language parser extracts from a single file.
type RawFile struct {
	FilePath string
	Language string
	Entities []RawEntity
	Calls    []RawCall

	// Degraded is true when the parser signaled a whole-file syntax
	// failure and returned a partial result rather than aborting.
	Degraded bool

	// Imports records ES import module specifiers (TypeScript/JavaScript
	// only). They are auxiliary metadata about the file, never call-graph
	// nodes or edges.
	Imports []string
}
