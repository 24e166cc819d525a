package extract

import (
	"strings"

	"github.com/anthropics/codegraph/internal/model"
	"github.com/anthropics/codegraph/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

var pyScopeBoundary = map[string]bool{"function_definition": true, "class_definition": true}

// pyFuncRef remembers which RawEntity index a def node became, so call
// expressions found inside its body can be attributed to the right caller.
type pyFuncRef struct {
	node *sitter.Node
	idx  int
}

// ExtractPython implements C1 for Python: functions, classes and their
// methods, decorators attached as metadata rather than separate
// entities, async defs, and nested defs.
func ExtractPython(result *parser.ParseResult, filePath string) *RawFile {
	raw := &RawFile{FilePath: filePath, Language: "python", Degraded: result.HasErrors()}
	source := result.Source
	var funcNodes []pyFuncRef

	var walkScope func(n *sitter.Node, className string)
	walkScope = func(n *sitter.Node, className string) {
		for i := 0; i < int(n.ChildCount()); i++ {
			child := n.Child(i)
			switch child.Type() {
			case "decorated_definition":
				inner := findChildByType(child, "function_definition")
				if inner == nil {
					inner = findChildByType(child, "class_definition")
				}
				if inner == nil {
					continue
				}
				pyHandleDef(raw, source, inner, className, &funcNodes, pythonDecorators(child, source))
				if inner.Type() == "class_definition" {
					if body := inner.ChildByFieldName("body"); body != nil {
						if nameNode := inner.ChildByFieldName("name"); nameNode != nil {
							walkScope(body, nameNode.Content(source))
						}
					}
				} else if body := inner.ChildByFieldName("body"); body != nil {
					walkScope(body, className)
				}
			case "function_definition":
				pyHandleDef(raw, source, child, className, &funcNodes, nil)
				if body := child.ChildByFieldName("body"); body != nil {
					walkScope(body, className)
				}
			case "class_definition":
				nameNode := child.ChildByFieldName("name")
				clsName := ""
				if nameNode != nil {
					clsName = nameNode.Content(source)
				}
				pyHandleDef(raw, source, child, className, &funcNodes, nil)
				if body := child.ChildByFieldName("body"); body != nil {
					walkScope(body, clsName)
				}
			default:
				// descend through compound statements (if/for/try/with) that
				// can still contain nested defs without introducing scope.
				if child.ChildCount() > 0 && !pyScopeBoundary[child.Type()] {
					walkScope(child, className)
				}
			}
		}
	}

	walkScope(result.Root, "")

	for _, fn := range funcNodes {
		body := fn.node.ChildByFieldName("body")
		if body == nil {
			continue
		}
		calls := findDescendantsByType(body, "call", pyScopeBoundary)
		for _, c := range calls {
			funcField := c.ChildByFieldName("function")
			if funcField == nil {
				continue
			}
			name, receiver := pythonCallTarget(funcField, source)
			if name == "" {
				continue
			}
			line := int(c.StartPoint().Row) + 1
			raw.Calls = append(raw.Calls, RawCall{CallerIndex: fn.idx, CalleeName: name, ReceiverType: receiver, Line: line})
		}
	}

	return raw
}

func pyHandleDef(raw *RawFile, source []byte, n *sitter.Node, className string, funcNodes *[]pyFuncRef, decorators []string) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nameNode.Content(source)
	start, end := lineRange(n)

	kind := model.KindFunction
	if n.Type() == "class_definition" {
		kind = model.KindClass
	} else if className != "" {
		kind = model.KindMethod
	}

	var params []model.Param
	if kind != model.KindClass {
		if plist := n.ChildByFieldName("parameters"); plist != nil {
			params = pythonParams(plist, source)
		}
	}

	raw.Entities = append(raw.Entities, RawEntity{
		Kind:            kind,
		Name:            name,
		LineStart:       start,
		LineEnd:         end,
		ParentScopeName: className,
		Parameters:      params,
		Snippet:         snippet(n, source),
		Annotations:     decorators,
	})
	idx := len(raw.Entities) - 1

	if kind != model.KindClass {
		*funcNodes = append(*funcNodes, pyFuncRef{node: n, idx: idx})
	}
}

// pythonDecorators returns the textual form of each decorator attached
// to a decorated_definition node (e.g. "@staticmethod", "@app.route(\"/x\")").
func pythonDecorators(decorated *sitter.Node, source []byte) []string {
	var out []string
	for _, d := range findChildrenByType(decorated, "decorator") {
		out = append(out, d.Content(source))
	}
	return out
}

func pythonParams(plist *sitter.Node, source []byte) []model.Param {
	var params []model.Param
	for i := 0; i < int(plist.ChildCount()); i++ {
		p := plist.Child(i)
		switch p.Type() {
		case "identifier":
			params = append(params, model.Param{Name: p.Content(source)})
		case "typed_parameter":
			id := findChildByType(p, "identifier")
			typeNode := p.ChildByFieldName("type")
			param := model.Param{}
			if id != nil {
				param.Name = id.Content(source)
			}
			if typeNode != nil {
				param.TypeName = typeNode.Content(source)
			}
			params = append(params, param)
		case "default_parameter", "typed_default_parameter":
			nameNode := p.ChildByFieldName("name")
			typeNode := p.ChildByFieldName("type")
			param := model.Param{}
			if nameNode != nil {
				param.Name = nameNode.Content(source)
			}
			if typeNode != nil {
				param.TypeName = typeNode.Content(source)
			}
			params = append(params, param)
		case "list_splat_pattern", "dictionary_splat_pattern":
			if id := findChildByType(p, "identifier"); id != nil {
				params = append(params, model.Param{Name: "*" + id.Content(source)})
			}
		}
	}
	return params
}

// pythonCallTarget returns (calleeName, receiverType) for a call's
// function expression, falling back to name-only matching for any
// receiver shape more complex than `identifier.identifier` (Open
// Question #1).
func pythonCallTarget(fn *sitter.Node, source []byte) (string, string) {
	switch fn.Type() {
	case "identifier":
		return fn.Content(source), ""
	case "attribute":
		attr := fn.ChildByFieldName("attribute")
		obj := fn.ChildByFieldName("object")
		if attr == nil {
			return "", ""
		}
		name := attr.Content(source)
		receiver := ""
		if obj != nil && obj.Type() == "identifier" {
			receiver = obj.Content(source)
		}
		return name, receiver
	default:
		text := fn.Content(source)
		if idx := strings.LastIndexByte(text, '.'); idx >= 0 {
			return text[idx+1:], ""
		}
		return "", ""
	}
}
