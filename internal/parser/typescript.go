package parser

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// newTypeScriptParser creates a tree-sitter parser configured for TypeScript.
func newTypeScriptParser() (*sitter.Parser, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(typescript.GetLanguage())
	return parser, nil
}

// newJavaScriptParser creates a tree-sitter parser configured for JavaScript.
func newJavaScriptParser() (*sitter.Parser, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())
	return parser, nil
}
