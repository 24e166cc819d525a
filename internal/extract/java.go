package extract

import (
	"github.com/anthropics/codegraph/internal/model"
	"github.com/anthropics/codegraph/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

var javaScopeBoundary = map[string]bool{
	"method_declaration":      true,
	"constructor_declaration": true,
	"class_declaration":       true,
	"interface_declaration":   true,
}

type javaFnRef struct {
	node *sitter.Node
	idx  int
}

// ExtractJava implements C1 for Java: package-qualified classes and
// interfaces, methods and constructors (flattened Outer.Inner naming for
// nested named classes via the namespace chain), and annotations
// attached as entity metadata. Anonymous classes get no entity and no
// namespace segment of their own.
func ExtractJava(result *parser.ParseResult, filePath string) *RawFile {
	raw := &RawFile{FilePath: filePath, Language: "java", Degraded: result.HasErrors()}
	source := result.Source
	var fns []javaFnRef

	pkg := ""
	if pkgNode := findChildByType(result.Root, "package_declaration"); pkgNode != nil {
		if scoped := findChildByType(pkgNode, "scoped_identifier"); scoped != nil {
			pkg = scoped.Content(source)
		} else if id := findChildByType(pkgNode, "identifier"); id != nil {
			pkg = id.Content(source)
		}
	}
	var rootNamespace []string
	if pkg != "" {
		rootNamespace = []string{pkg}
	}

	var walk func(n *sitter.Node, namespace []string, enclosingType string)
	walk = func(n *sitter.Node, namespace []string, enclosingType string) {
		for i := 0; i < int(n.ChildCount()); i++ {
			child := n.Child(i)
			switch child.Type() {
			case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration":
				nameNode := child.ChildByFieldName("name")
				if nameNode == nil {
					continue
				}
				typeName := nameNode.Content(source)
				kind := model.KindClass
				if child.Type() == "interface_declaration" {
					kind = model.KindInterface
				}
				start, end := lineRange(child)
				raw.Entities = append(raw.Entities, RawEntity{
					Kind: kind, Name: typeName, LineStart: start, LineEnd: end,
					Namespace: namespace, ParentScopeName: enclosingType,
					Annotations: javaAnnotations(child, source),
					Snippet:     snippet(child, source),
				})
				childNamespace := append(append([]string{}, namespace...), typeName)
				if body := child.ChildByFieldName("body"); body != nil {
					walk(body, childNamespace, typeName)
				}
			case "method_declaration", "constructor_declaration":
				addJavaMethod(raw, &fns, child, namespace, enclosingType, source)
			default:
				if child.ChildCount() > 0 {
					walk(child, namespace, enclosingType)
				}
			}
		}
	}

	walk(result.Root, rootNamespace, "")

	for _, fn := range fns {
		body := fn.node.ChildByFieldName("body")
		if body == nil {
			continue
		}
		invocations := findDescendantsByType(body, "method_invocation", javaScopeBoundary)
		invocations = append(invocations, findDescendantsByType(body, "object_creation_expression", javaScopeBoundary)...)
		for _, c := range invocations {
			name, receiver := javaCallTarget(c, source)
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

func addJavaMethod(raw *RawFile, fns *[]javaFnRef, n *sitter.Node, namespace []string, enclosingType string, source []byte) {
	var name string
	if n.Type() == "constructor_declaration" {
		name = enclosingType
	} else if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		name = nameNode.Content(source)
	}
	if name == "" {
		return
	}
	start, end := lineRange(n)
	var params []model.Param
	if plist := n.ChildByFieldName("parameters"); plist != nil {
		params = javaParams(plist, source)
	}
	var returnType string
	if rt := n.ChildByFieldName("type"); rt != nil {
		returnType = rt.Content(source)
	}
	raw.Entities = append(raw.Entities, RawEntity{
		Kind: model.KindMethod, Name: name, LineStart: start, LineEnd: end,
		Namespace: namespace, ParentScopeName: enclosingType,
		Parameters: params, ReturnType: returnType,
		Annotations: javaAnnotations(n, source),
		Snippet:     snippet(n, source),
	})
	*fns = append(*fns, javaFnRef{node: n, idx: len(raw.Entities) - 1})
}

func javaParams(plist *sitter.Node, source []byte) []model.Param {
	var params []model.Param
	for _, p := range findChildrenByType(plist, "formal_parameter") {
		typeNode := p.ChildByFieldName("type")
		nameNode := p.ChildByFieldName("name")
		param := model.Param{}
		if typeNode != nil {
			param.TypeName = typeNode.Content(source)
		}
		if nameNode != nil {
			param.Name = nameNode.Content(source)
		}
		params = append(params, param)
	}
	return params
}

// javaAnnotations collects the annotation siblings preceding a
// declaration, carried on the "modifiers" child node.
func javaAnnotations(n *sitter.Node, source []byte) []string {
	modifiers := findChildByType(n, "modifiers")
	if modifiers == nil {
		return nil
	}
	var out []string
	for i := 0; i < int(modifiers.ChildCount()); i++ {
		c := modifiers.Child(i)
		if c.Type() == "marker_annotation" || c.Type() == "annotation" {
			out = append(out, c.Content(source))
		}
	}
	return out
}

// javaCallTarget handles both method_invocation (name/object fields)
// and object_creation_expression (constructor calls, type field only).
func javaCallTarget(n *sitter.Node, source []byte) (string, string) {
	switch n.Type() {
	case "method_invocation":
		nameNode := n.ChildByFieldName("name")
		if nameNode == nil {
			return "", ""
		}
		receiver := ""
		if obj := n.ChildByFieldName("object"); obj != nil && obj.Type() == "identifier" {
			receiver = obj.Content(source)
		}
		return nameNode.Content(source), receiver
	case "object_creation_expression":
		typeNode := n.ChildByFieldName("type")
		if typeNode == nil {
			return "", ""
		}
		return typeNode.Content(source), ""
	default:
		return "", ""
	}
}
