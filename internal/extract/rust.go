package extract

import (
	"github.com/anthropics/codegraph/internal/model"
	"github.com/anthropics/codegraph/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

var rustScopeBoundary = map[string]bool{"function_item": true}

// ExtractRust implements C1 for Rust: free functions, struct/trait
// declarations, and impl-block methods bound to their receiver type
// (Type::method). pub/pub(crate) visibility is available on the node
// but not surfaced as a separate field; it is metadata the normalizer
// does not need.
func ExtractRust(result *parser.ParseResult, filePath string) *RawFile {
	raw := &RawFile{FilePath: filePath, Language: "rust", Degraded: result.HasErrors()}
	source := result.Source

	type fnRef struct {
		node *sitter.Node
		idx  int
	}
	var fns []fnRef

	addFunction := func(n *sitter.Node, parentScope string, kind model.Kind) {
		nameNode := n.ChildByFieldName("name")
		if nameNode == nil {
			return
		}
		start, end := lineRange(n)
		var params []model.Param
		if plist := n.ChildByFieldName("parameters"); plist != nil {
			params = rustParams(plist, source)
		}
		var returnType string
		if rt := n.ChildByFieldName("return_type"); rt != nil {
			returnType = rt.Content(source)
		}
		raw.Entities = append(raw.Entities, RawEntity{
			Kind:            kind,
			Name:            nameNode.Content(source),
			LineStart:       start,
			LineEnd:         end,
			ParentScopeName: parentScope,
			Parameters:      params,
			ReturnType:      returnType,
			Snippet:         snippet(n, source),
		})
		fns = append(fns, fnRef{node: n, idx: len(raw.Entities) - 1})
	}

	for _, item := range findChildrenByType(result.Root, "function_item") {
		addFunction(item, "", model.KindFunction)
	}

	for _, impl := range findChildrenByType(result.Root, "impl_item") {
		typeNode := impl.ChildByFieldName("type")
		typeName := ""
		if typeNode != nil {
			typeName = typeNode.Content(source)
		}
		if body := impl.ChildByFieldName("body"); body != nil {
			for _, m := range findChildrenByType(body, "function_item") {
				addFunction(m, typeName, model.KindMethod)
			}
		}
	}

	for _, s := range findChildrenByType(result.Root, "struct_item") {
		nameNode := s.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		start, end := lineRange(s)
		raw.Entities = append(raw.Entities, RawEntity{
			Kind: model.KindStruct, Name: nameNode.Content(source),
			LineStart: start, LineEnd: end, Snippet: snippet(s, source),
		})
	}

	for _, tr := range findChildrenByType(result.Root, "trait_item") {
		nameNode := tr.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		traitName := nameNode.Content(source)
		start, end := lineRange(tr)
		raw.Entities = append(raw.Entities, RawEntity{
			Kind: model.KindInterface, Name: traitName,
			LineStart: start, LineEnd: end, Snippet: snippet(tr, source),
		})
		if body := tr.ChildByFieldName("body"); body != nil {
			for _, m := range findChildrenByType(body, "function_item") {
				addFunction(m, traitName, model.KindMethod)
			}
			for _, m := range findChildrenByType(body, "function_signature_item") {
				nameNode := m.ChildByFieldName("name")
				if nameNode == nil {
					continue
				}
				start, end := lineRange(m)
				raw.Entities = append(raw.Entities, RawEntity{
					Kind: model.KindMethod, Name: nameNode.Content(source),
					LineStart: start, LineEnd: end, ParentScopeName: traitName,
					Snippet: snippet(m, source),
				})
			}
		}
	}

	for _, fn := range fns {
		body := fn.node.ChildByFieldName("body")
		if body == nil {
			continue
		}
		for _, c := range findDescendantsByType(body, "call_expression", rustScopeBoundary) {
			funcField := c.ChildByFieldName("function")
			if funcField == nil {
				continue
			}
			name, receiver := rustCallTarget(funcField, source)
			if name == "" {
				continue
			}
			raw.Calls = append(raw.Calls, RawCall{
				CallerIndex: fn.idx, CalleeName: name, ReceiverType: receiver,
				Line: int(c.StartPoint().Row) + 1,
			})
		}
	}

	return raw
}

func rustParams(plist *sitter.Node, source []byte) []model.Param {
	var params []model.Param
	for i := 0; i < int(plist.ChildCount()); i++ {
		p := plist.Child(i)
		switch p.Type() {
		case "parameter":
			pattern := p.ChildByFieldName("pattern")
			typeNode := p.ChildByFieldName("type")
			param := model.Param{}
			if pattern != nil {
				param.Name = pattern.Content(source)
			}
			if typeNode != nil {
				param.TypeName = typeNode.Content(source)
			}
			params = append(params, param)
		case "self_parameter":
			params = append(params, model.Param{Name: p.Content(source)})
		}
	}
	return params
}

// rustCallTarget returns (calleeName, receiverType). Qualified calls
// `Ns::X::foo(...)` yield receiverType "Ns::X"; method calls `a.foo()`
// yield the textual receiver unresolved; anything more complex falls
// back to name-only matching (Open Question #1).
func rustCallTarget(fn *sitter.Node, source []byte) (string, string) {
	switch fn.Type() {
	case "identifier":
		return fn.Content(source), ""
	case "scoped_identifier":
		nameNode := fn.ChildByFieldName("name")
		pathNode := fn.ChildByFieldName("path")
		if nameNode == nil {
			return "", ""
		}
		receiver := ""
		if pathNode != nil {
			receiver = pathNode.Content(source)
		}
		return nameNode.Content(source), receiver
	case "field_expression":
		field := fn.ChildByFieldName("field")
		value := fn.ChildByFieldName("value")
		if field == nil {
			return "", ""
		}
		receiver := ""
		if value != nil && value.Type() == "identifier" {
			receiver = value.Content(source)
		}
		return field.Content(source), receiver
	default:
		return "", ""
	}
}
