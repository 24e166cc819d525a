package extract

import (
	"github.com/anthropics/codegraph/internal/model"
	"github.com/anthropics/codegraph/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

var cppScopeBoundary = map[string]bool{"function_definition": true}

type cppFnRef struct {
	node *sitter.Node
	idx  int
}

// ExtractCpp implements C1 for C++: namespaces, classes (with in-class
// and out-of-line `Type::method` method definitions), templates (treated
// as if instantiated on the declaration), and constructors/destructors.
// Overloads are not told apart: C++ parameters are not recorded, so each
// overload is a separate entity with the same name, and C3 matches calls
// by name and keeps every tied candidate.
func ExtractCpp(result *parser.ParseResult, filePath string) *RawFile {
	raw := &RawFile{FilePath: filePath, Language: "cpp", Degraded: result.HasErrors()}
	source := result.Source

	var fns []cppFnRef

	var walk func(n *sitter.Node, namespace []string, className string)
	walk = func(n *sitter.Node, namespace []string, className string) {
		for i := 0; i < int(n.ChildCount()); i++ {
			child := n.Child(i)
			switch child.Type() {
			case "namespace_definition":
				nameNode := child.ChildByFieldName("name")
				ns := namespace
				if nameNode != nil {
					ns = append(append([]string{}, namespace...), nameNode.Content(source))
				}
				if body := child.ChildByFieldName("body"); body != nil {
					walk(body, ns, className)
				}
			case "template_declaration":
				walk(child, namespace, className)
			case "class_specifier", "struct_specifier":
				nameNode := child.ChildByFieldName("name")
				name := ""
				if nameNode != nil {
					name = nameNode.Content(source)
					kind := model.KindClass
					if child.Type() == "struct_specifier" {
						kind = model.KindStruct
					}
					start, end := lineRange(child)
					raw.Entities = append(raw.Entities, RawEntity{
						Kind: kind, Name: name, LineStart: start, LineEnd: end,
						Namespace: namespace, Snippet: snippet(child, source),
					})
				}
				if body := findChildByType(child, "field_declaration_list"); body != nil {
					walk(body, namespace, name)
				}
			case "function_definition":
				addCppFunction(raw, &fns, child, namespace, className, source)
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
		for _, c := range findDescendantsByType(body, "call_expression", cppScopeBoundary) {
			funcField := c.ChildByFieldName("function")
			if funcField == nil {
				continue
			}
			name, receiver := cppCallTarget(funcField, source)
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

func addCppFunction(raw *RawFile, fns *[]cppFnRef, fn *sitter.Node, namespace []string, className string, source []byte) {
	declarator := fn.ChildByFieldName("declarator")
	nameNode, parentScope := cppFunctionName(declarator, source, className)
	if nameNode == "" {
		return
	}
	start, end := lineRange(fn)
	kind := model.KindFunction
	if parentScope != "" {
		kind = model.KindMethod
	}
	var returnType string
	if rt := fn.ChildByFieldName("type"); rt != nil {
		returnType = rt.Content(source)
	}
	raw.Entities = append(raw.Entities, RawEntity{
		Kind: kind, Name: nameNode, LineStart: start, LineEnd: end,
		Namespace: namespace, ParentScopeName: parentScope,
		ReturnType: returnType, Snippet: snippet(fn, source),
	})
	*fns = append(*fns, cppFnRef{node: fn, idx: len(raw.Entities) - 1})
}

// cppFunctionName unwraps a declarator to find the function's short
// name, and, for an out-of-line `Type::method` definition, the class
// name to use as ParentScopeName (falling back to className when the
// function is defined inside the class body itself).
func cppFunctionName(n *sitter.Node, source []byte, className string) (string, string) {
	for n != nil {
		switch n.Type() {
		case "function_declarator":
			decl := n.ChildByFieldName("declarator")
			if decl == nil {
				return "", ""
			}
			switch decl.Type() {
			case "identifier", "destructor_name":
				return decl.Content(source), className
			case "field_identifier":
				return decl.Content(source), className
			case "qualified_identifier":
				scope := decl.ChildByFieldName("scope")
				name := decl.ChildByFieldName("name")
				if name == nil {
					return "", ""
				}
				parent := className
				if scope != nil {
					parent = scope.Content(source)
				}
				return name.Content(source), parent
			default:
				return decl.Content(source), className
			}
		case "pointer_declarator", "reference_declarator":
			n = n.ChildByFieldName("declarator")
		default:
			return "", ""
		}
	}
	return "", ""
}

func cppCallTarget(fn *sitter.Node, source []byte) (string, string) {
	switch fn.Type() {
	case "identifier":
		return fn.Content(source), ""
	case "qualified_identifier":
		scope := fn.ChildByFieldName("scope")
		name := fn.ChildByFieldName("name")
		if name == nil {
			return "", ""
		}
		receiver := ""
		if scope != nil {
			receiver = scope.Content(source)
		}
		return name.Content(source), receiver
	case "field_expression":
		field := fn.ChildByFieldName("field")
		arg := fn.ChildByFieldName("argument")
		if field == nil {
			return "", ""
		}
		receiver := ""
		if arg != nil && arg.Type() == "identifier" {
			receiver = arg.Content(source)
		}
		return field.Content(source), receiver
	default:
		return "", ""
	}
}
