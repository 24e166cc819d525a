package extract

import (
	"github.com/anthropics/codegraph/internal/model"
	"github.com/anthropics/codegraph/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

var tsScopeBoundary = map[string]bool{
	"function_declaration": true,
	"function_expression":  true,
	"arrow_function":       true,
	"method_definition":    true,
}

type tsFnRef struct {
	node *sitter.Node
	idx  int
}

// ExtractTypeScript implements C1 for both TypeScript and JavaScript
// (one grammar-agnostic walk: the teacher's parser package already
// dispatches to distinct tree-sitter languages, but the resulting node
// shapes relevant to call-graph extraction — function_declaration,
// arrow_function, class_declaration, method_definition — are identical).
// Arrow/function expressions are entities only when assigned to a named
// binding (a variable declarator or an object-literal key); functions
// assigned to class fields or member expressions, and anonymous ones
// passed inline as callback arguments, are not recorded.
func ExtractTypeScript(result *parser.ParseResult, filePath, language string) *RawFile {
	raw := &RawFile{FilePath: filePath, Language: language, Degraded: result.HasErrors()}
	source := result.Source
	var fns []tsFnRef

	var walk func(n *sitter.Node, namespace []string, className string)
	walk = func(n *sitter.Node, namespace []string, className string) {
		for i := 0; i < int(n.ChildCount()); i++ {
			child := n.Child(i)
			switch child.Type() {
			case "import_statement":
				if src := child.ChildByFieldName("source"); src != nil {
					raw.Imports = append(raw.Imports, src.Content(source))
				}
			case "function_declaration", "generator_function_declaration":
				addTsFunction(raw, &fns, child, child.ChildByFieldName("name"), namespace, "", source)
			case "class_declaration", "class_expression":
				nameNode := child.ChildByFieldName("name")
				clsName := ""
				if nameNode != nil {
					clsName = nameNode.Content(source)
					start, end := lineRange(child)
					raw.Entities = append(raw.Entities, RawEntity{
						Kind: model.KindClass, Name: clsName, LineStart: start, LineEnd: end,
						Namespace: namespace, Snippet: snippet(child, source),
					})
				}
				if body := child.ChildByFieldName("body"); body != nil {
					walk(body, namespace, clsName)
				}
			case "method_definition":
				addTsFunction(raw, &fns, child, child.ChildByFieldName("name"), namespace, className, source)
			case "lexical_declaration", "variable_declaration":
				for _, decl := range findChildrenByType(child, "variable_declarator") {
					nameNode := decl.ChildByFieldName("name")
					valueNode := decl.ChildByFieldName("value")
					if nameNode == nil || valueNode == nil || nameNode.Type() != "identifier" {
						continue
					}
					if valueNode.Type() == "arrow_function" || valueNode.Type() == "function_expression" {
						addTsFunction(raw, &fns, valueNode, nameNode, namespace, className, source)
					}
				}
			case "pair":
				// object-literal key bound to a function: `{ key: function(...) {} }`
				keyNode := child.ChildByFieldName("key")
				valueNode := child.ChildByFieldName("value")
				if keyNode != nil && valueNode != nil &&
					(valueNode.Type() == "arrow_function" || valueNode.Type() == "function_expression") {
					addTsFunction(raw, &fns, valueNode, keyNode, namespace, className, source)
				}
			default:
				if child.ChildCount() > 0 {
					walk(child, namespace, className)
				}
			}
		}
	}

	walk(result.Root, nil, "")

	for _, fn := range fns {
		body := fn.node.ChildByFieldName("body")
		if body == nil {
			continue
		}
		for _, c := range findDescendantsByType(body, "call_expression", tsScopeBoundary) {
			funcField := c.ChildByFieldName("function")
			if funcField == nil {
				continue
			}
			name, receiver := tsCallTarget(funcField, source)
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

func addTsFunction(raw *RawFile, fns *[]tsFnRef, n *sitter.Node, nameNode *sitter.Node, namespace []string, className string, source []byte) {
	if nameNode == nil {
		return
	}
	start, end := lineRange(n)
	kind := model.KindFunction
	if className != "" {
		kind = model.KindMethod
	}
	var params []model.Param
	if plist := n.ChildByFieldName("parameters"); plist != nil {
		params = tsParams(plist, source)
	}
	var returnType string
	if rt := n.ChildByFieldName("return_type"); rt != nil {
		returnType = rt.Content(source)
	}
	raw.Entities = append(raw.Entities, RawEntity{
		Kind: kind, Name: nameNode.Content(source), LineStart: start, LineEnd: end,
		Namespace: namespace, ParentScopeName: className,
		Parameters: params, ReturnType: returnType, Snippet: snippet(n, source),
	})
	*fns = append(*fns, tsFnRef{node: n, idx: len(raw.Entities) - 1})
}

func tsParams(plist *sitter.Node, source []byte) []model.Param {
	var params []model.Param
	for i := 0; i < int(plist.ChildCount()); i++ {
		p := plist.Child(i)
		switch p.Type() {
		case "identifier":
			params = append(params, model.Param{Name: p.Content(source)})
		case "required_parameter", "optional_parameter":
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
		}
	}
	return params
}

// tsCallTarget returns (calleeName, receiverType). `a.b()` yields
// receiver "a" when the object is a plain identifier; anything more
// complex falls back to name-only matching (Open Question #1).
func tsCallTarget(fn *sitter.Node, source []byte) (string, string) {
	switch fn.Type() {
	case "identifier":
		return fn.Content(source), ""
	case "member_expression":
		prop := fn.ChildByFieldName("property")
		obj := fn.ChildByFieldName("object")
		if prop == nil {
			return "", ""
		}
		receiver := ""
		if obj != nil && obj.Type() == "identifier" {
			receiver = obj.Content(source)
		}
		return prop.Content(source), receiver
	default:
		return "", ""
	}
}
