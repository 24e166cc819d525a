package extract

import (
	"github.com/anthropics/codegraph/internal/model"
	"github.com/anthropics/codegraph/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

var cScopeBoundary = map[string]bool{"function_definition": true}

// ExtractC implements C1 for C: function definitions, struct/union/enum
// declarations. C has no namespaces; overload resolution does not apply.
func ExtractC(result *parser.ParseResult, filePath string) *RawFile {
	raw := &RawFile{FilePath: filePath, Language: "c", Degraded: result.HasErrors()}
	source := result.Source

	type fnRef struct {
		node *sitter.Node
		idx  int
	}
	var fns []fnRef

	for _, fn := range findDescendantsByType(result.Root, "function_definition", map[string]bool{}) {
		declarator := fn.ChildByFieldName("declarator")
		fnDeclarator := cFunctionDeclarator(declarator)
		if fnDeclarator == nil {
			continue
		}
		nameNode := fnDeclarator.ChildByFieldName("declarator")
		if nameNode == nil || nameNode.Type() != "identifier" {
			continue
		}
		start, end := lineRange(fn)
		var returnType string
		if rt := fn.ChildByFieldName("type"); rt != nil {
			returnType = rt.Content(source)
		}
		var params []model.Param
		if plist := fnDeclarator.ChildByFieldName("parameters"); plist != nil {
			params = cParams(plist, source)
		}
		raw.Entities = append(raw.Entities, RawEntity{
			Kind: model.KindFunction, Name: nameNode.Content(source),
			LineStart: start, LineEnd: end, Parameters: params,
			ReturnType: returnType, Snippet: snippet(fn, source),
		})
		fns = append(fns, fnRef{node: fn, idx: len(raw.Entities) - 1})
	}

	for _, kind := range []struct {
		nodeType string
		kind     model.Kind
	}{
		{"struct_specifier", model.KindStruct},
		{"union_specifier", model.KindStruct},
		{"enum_specifier", model.KindOther},
	} {
		for _, n := range findDescendantsByType(result.Root, kind.nodeType, map[string]bool{}) {
			nameNode := n.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			start, end := lineRange(n)
			raw.Entities = append(raw.Entities, RawEntity{
				Kind: kind.kind, Name: nameNode.Content(source),
				LineStart: start, LineEnd: end, Snippet: snippet(n, source),
			})
		}
	}

	for _, fn := range fns {
		body := fn.node.ChildByFieldName("body")
		if body == nil {
			continue
		}
		for _, c := range findDescendantsByType(body, "call_expression", cScopeBoundary) {
			funcField := c.ChildByFieldName("function")
			if funcField == nil || funcField.Type() != "identifier" {
				continue
			}
			raw.Calls = append(raw.Calls, RawCall{
				CallerIndex: fn.idx, CalleeName: funcField.Content(source),
				Line: int(c.StartPoint().Row) + 1,
			})
		}
	}

	return raw
}

// cFunctionDeclarator unwraps pointer_declarator layers (e.g. `char
// *foo(...)`) to reach the function_declarator carrying the name.
func cFunctionDeclarator(n *sitter.Node) *sitter.Node {
	for n != nil {
		switch n.Type() {
		case "function_declarator":
			return n
		case "pointer_declarator":
			n = n.ChildByFieldName("declarator")
		default:
			return nil
		}
	}
	return nil
}

func cParams(plist *sitter.Node, source []byte) []model.Param {
	var params []model.Param
	for _, p := range findChildrenByType(plist, "parameter_declaration") {
		typeNode := p.ChildByFieldName("type")
		declNode := p.ChildByFieldName("declarator")
		param := model.Param{}
		if typeNode != nil {
			param.TypeName = typeNode.Content(source)
		}
		if declNode != nil {
			param.Name = declNode.Content(source)
		}
		params = append(params, param)
	}
	return params
}
