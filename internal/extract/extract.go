package extract

import (
	"fmt"

	"github.com/anthropics/codegraph/internal/model"
	"github.com/anthropics/codegraph/internal/parser"
)

// Extract dispatches a parsed file to its language's C1 extractor.
func Extract(result *parser.ParseResult, filePath string) (*RawFile, error) {
	switch result.Language {
	case parser.Python:
		return ExtractPython(result, filePath), nil
	case parser.Rust:
		return ExtractRust(result, filePath), nil
	case parser.C:
		return ExtractC(result, filePath), nil
	case parser.Cpp:
		return ExtractCpp(result, filePath), nil
	case parser.Java:
		return ExtractJava(result, filePath), nil
	case parser.TypeScript:
		return ExtractTypeScript(result, filePath, "typescript"), nil
	case parser.JavaScript:
		return ExtractTypeScript(result, filePath, "javascript"), nil
	default:
		return nil, fmt.Errorf("extract: unsupported language %q", result.Language)
	}
}

// ExtractAndNormalize runs C1 followed by C2 and returns the shared-model
// records ready for graph insertion, along with a count of anything
// dropped along the way.
func ExtractAndNormalize(result *parser.ParseResult, filePath string) ([]model.Entity, []model.CallSite, Diagnostics, error) {
	raw, err := Extract(result, filePath)
	if err != nil {
		return nil, nil, Diagnostics{}, err
	}
	entities, callSites, diag := Normalize(raw)
	return entities, callSites, diag, nil
}
