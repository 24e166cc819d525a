package parser

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"
)

// newRustParser creates a tree-sitter parser configured for Rust.
func newRustParser() (*sitter.Parser, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(rust.GetLanguage())
	return parser, nil
}
