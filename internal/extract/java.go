package extract

import (
	"strings"

	"github.com/tdkit/tdselect/internal/model"
	"github.com/tdkit/tdselect/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// generatedMarkers are matched case-insensitively against the comments that
// precede the package declaration.
var generatedMarkers = []string{
	"@generated",
	"auto-generated",
	"autogenerated",
	"generated by",
	"do not edit",
}

// javaExtractor extracts facts from a parsed Java AST.
type javaExtractor struct {
	result *parser.ParseResult
	pkg    string
}

func newJavaExtractor(result *parser.ParseResult) *javaExtractor {
	e := &javaExtractor{result: result}
	e.pkg = e.packageName()
	return e
}

// packageName returns the declared package, empty for the default package.
func (e *javaExtractor) packageName() string {
	if e.result.Root == nil {
		return ""
	}
	decl := findChildByType(e.result.Root, "package_declaration")
	if decl == nil {
		return ""
	}
	for i := 0; i < int(decl.NamedChildCount()); i++ {
		child := decl.NamedChild(i)
		if child.Type() == "scoped_identifier" || child.Type() == "identifier" {
			return e.compactText(child)
		}
	}
	return ""
}

// imports returns single-type, non-static imports in source order.
func (e *javaExtractor) imports() []string {
	if e.result.Root == nil {
		return nil
	}
	var paths []string
	for _, node := range findChildrenByType(e.result.Root, "import_declaration") {
		var path string
		skip := false
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			switch child.Type() {
			case "static", "asterisk":
				skip = true
			case "scoped_identifier", "identifier":
				path = e.compactText(child)
			}
		}
		if !skip && path != "" {
			paths = append(paths, path)
		}
	}
	return paths
}

// hasGeneratedHeader reports whether the leading comments of the file carry a
// generated-code marker.
func (e *javaExtractor) hasGeneratedHeader() bool {
	root := e.result.Root
	if root == nil {
		return false
	}
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		if !isComment(child) {
			break
		}
		text := strings.ToLower(e.nodeText(child))
		for _, marker := range generatedMarkers {
			if strings.Contains(text, marker) {
				return true
			}
		}
	}
	return false
}

// collectTypes extracts every top-level type of the compilation unit and,
// recursively, their member types.
func (e *javaExtractor) collectTypes(root *sitter.Node, facts *FileFacts) {
	if root == nil {
		return
	}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if parser.IsJavaTypeDeclaration(child) {
			e.extractType(child, "", facts.Generated, nil, facts)
		}
	}
}

// extractType records a type declaration, its methods and its member types.
// fieldScopes holds the field maps of the enclosing types, innermost first.
func (e *javaExtractor) extractType(decl *sitter.Node, outer string, generated bool, fieldScopes []map[string]string, facts *FileFacts) {
	nameNode := decl.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := e.nodeText(nameNode)

	qualified := name
	switch {
	case outer != "":
		qualified = outer + "." + name
	case e.pkg != "":
		qualified = e.pkg + "." + name
	}

	mods := e.modifiers(decl, model.VisibilityPackage)
	generated = generated || mods.HasAnnotation("Generated")

	class := ClassFacts{
		Name:          name,
		QualifiedName: qualified,
		Outer:         outer,
		Kind:          parser.JavaTypeDeclarations[decl.Type()],
		Fields:        make(map[string]string),
		Generated:     generated,
	}
	class.Line, _ = getLineRange(decl)

	if sc := decl.ChildByFieldName("superclass"); sc != nil {
		for i := 0; i < int(sc.NamedChildCount()); i++ {
			if t := simpleTypeName(e, sc.NamedChild(i)); t != "" {
				class.Superclass = t
				break
			}
		}
	}

	// Record components behave as fields.
	if decl.Type() == "record_declaration" {
		for _, p := range e.params(decl.ChildByFieldName("parameters")) {
			addBinding(class.Fields, p.Name, p.SimpleType)
		}
	}

	members := e.members(decl)
	for _, m := range members {
		if m.Type() == "field_declaration" || m.Type() == "constant_declaration" {
			e.declareVariables(m, class.Fields)
		}
	}
	facts.Classes = append(facts.Classes, class)

	scopes := append([]map[string]string{class.Fields}, fieldScopes...)
	interfaceMember := decl.Type() == "interface_declaration"
	for _, m := range members {
		switch {
		case m.Type() == "method_declaration":
			if mf := e.extractMethod(m, qualified, interfaceMember, generated, scopes); mf != nil {
				facts.Methods = append(facts.Methods, *mf)
			}
		case parser.IsJavaTypeDeclaration(m):
			e.extractType(m, qualified, generated, scopes, facts)
		}
	}
}

// members returns the member declarations of a type body.
func (e *javaExtractor) members(decl *sitter.Node) []*sitter.Node {
	body := decl.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	var out []*sitter.Node
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		if child.Type() == "enum_body_declarations" {
			for j := 0; j < int(child.NamedChildCount()); j++ {
				out = append(out, child.NamedChild(j))
			}
			continue
		}
		out = append(out, child)
	}
	return out
}

// extractMethod extracts a method declaration. Methods without a body
// (abstract, native, interface signatures) yield nil.
func (e *javaExtractor) extractMethod(node *sitter.Node, className string, interfaceMember, generated bool, fieldScopes []map[string]string) *MethodFacts {
	body := node.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	defaultVisibility := model.VisibilityPackage
	if interfaceMember {
		defaultVisibility = model.VisibilityPublic
	}
	mods := e.modifiers(node, defaultVisibility)
	mods.Generated = generated || mods.HasAnnotation("Generated")

	mf := &MethodFacts{
		Class:     className,
		Name:      e.nodeText(nameNode),
		Params:    e.params(node.ChildByFieldName("parameters")),
		Modifiers: mods,
	}
	if t := node.ChildByFieldName("type"); t != nil {
		mf.ReturnType = e.compactText(t)
	}
	mf.StartLine, mf.EndLine = getLineRange(node)

	counts := countBody(body)
	mf.StatementCount = counts.statements
	mf.BranchCount = counts.branches
	mf.LoopCount = counts.loops
	mf.CatchCount = counts.catches
	mf.ReturnCount = counts.returns

	sc := &scope{locals: make(map[string]string), fields: fieldScopes}
	for _, p := range mf.Params {
		addBinding(sc.locals, p.Name, p.SimpleType)
	}
	e.collectLocals(body, sc.locals)
	mf.Calls = e.callSites(body, sc)

	return mf
}

// modifiers reads the modifiers node of a declaration.
func (e *javaExtractor) modifiers(node *sitter.Node, defaultVisibility model.Visibility) model.Modifiers {
	mods := model.Modifiers{Visibility: defaultVisibility}
	modNode := findChildByType(node, "modifiers")
	if modNode == nil {
		return mods
	}
	for i := 0; i < int(modNode.ChildCount()); i++ {
		child := modNode.Child(i)
		switch child.Type() {
		case "public":
			mods.Visibility = model.VisibilityPublic
		case "protected":
			mods.Visibility = model.VisibilityProtected
		case "private":
			mods.Visibility = model.VisibilityPrivate
		case "static":
			mods.Static = true
		case "abstract":
			mods.Abstract = true
		case "final":
			mods.Final = true
		case "synchronized":
			mods.Synchronized = true
		case "native":
			mods.Native = true
		case "default":
			mods.Default = true
		case "marker_annotation", "annotation":
			if name := e.annotationName(child); name != "" {
				mods.Annotations = append(mods.Annotations, name)
			}
		}
	}
	return mods
}

// annotationName returns the annotation name without the leading '@'.
func (e *javaExtractor) annotationName(node *sitter.Node) string {
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		return e.compactText(nameNode)
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "identifier" || child.Type() == "scoped_identifier" {
			return e.compactText(child)
		}
	}
	return ""
}

// params extracts formal parameters, varargs included.
func (e *javaExtractor) params(node *sitter.Node) []Param {
	if node == nil {
		return nil
	}
	var params []Param
	for i := 0; i < int(node.NamedChildCount()); i++ {
		decl := node.NamedChild(i)
		switch decl.Type() {
		case "formal_parameter":
			typeNode := decl.ChildByFieldName("type")
			if typeNode == nil {
				continue
			}
			p := Param{Type: e.compactText(typeNode), SimpleType: simpleTypeName(e, typeNode)}
			if nameNode := decl.ChildByFieldName("name"); nameNode != nil {
				p.Name = e.nodeText(nameNode)
			}
			// int values[] declares an array parameter.
			if dims := decl.ChildByFieldName("dimensions"); dims != nil {
				p.Type += e.compactText(dims)
				p.SimpleType = ""
			}
			params = append(params, p)
		case "spread_parameter":
			params = append(params, e.spreadParam(decl))
		}
	}
	return params
}

// spreadParam extracts a varargs parameter: its type is the first named
// child that is neither a modifier nor the declarator.
func (e *javaExtractor) spreadParam(decl *sitter.Node) Param {
	var p Param
	for i := 0; i < int(decl.NamedChildCount()); i++ {
		child := decl.NamedChild(i)
		switch child.Type() {
		case "modifiers":
		case "variable_declarator":
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				p.Name = e.nodeText(nameNode)
			}
		default:
			if p.Type == "" {
				p.Type = e.compactText(child)
			}
		}
	}
	p.Type += "..."
	return p
}

// declareVariables adds the declarators of a field or local variable
// declaration to bindings.
func (e *javaExtractor) declareVariables(decl *sitter.Node, bindings map[string]string) {
	typeNode := decl.ChildByFieldName("type")
	if typeNode == nil {
		return
	}
	typeName := simpleTypeName(e, typeNode)
	for _, d := range findChildrenByType(decl, "variable_declarator") {
		nameNode := d.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		t := typeName
		if t == "var" {
			t = ""
			if v := d.ChildByFieldName("value"); v != nil && v.Type() == "object_creation_expression" {
				t = simpleTypeName(e, v.ChildByFieldName("type"))
			}
		}
		if d.ChildByFieldName("dimensions") != nil {
			t = ""
		}
		addBinding(bindings, e.nodeText(nameNode), t)
	}
}

// collectLocals adds every local variable, loop variable and resource
// declared under node to bindings.
func (e *javaExtractor) collectLocals(node *sitter.Node, bindings map[string]string) {
	parser.Walk(node, func(n *sitter.Node) bool {
		switch n.Type() {
		case "local_variable_declaration", "field_declaration":
			e.declareVariables(n, bindings)
		case "enhanced_for_statement", "resource":
			typeNode := n.ChildByFieldName("type")
			nameNode := n.ChildByFieldName("name")
			if typeNode != nil && nameNode != nil {
				addBinding(bindings, e.nodeText(nameNode), simpleTypeName(e, typeNode))
			}
		case "formal_parameters":
			for _, p := range e.params(n) {
				addBinding(bindings, p.Name, p.SimpleType)
			}
		}
		return true
	})
}

// addBinding records name -> typeName. A name bound to two different types
// keeps an empty type: it is known to be a variable but its type is not.
func addBinding(bindings map[string]string, name, typeName string) {
	if name == "" {
		return
	}
	if prev, ok := bindings[name]; ok && prev != typeName {
		bindings[name] = ""
		return
	}
	bindings[name] = typeName
}

// simpleTypeName returns the outermost simple class name of a type node:
// Account for Account, List for List<Account>, Entry for Map.Entry. Arrays
// and primitives yield "".
func simpleTypeName(e *javaExtractor, node *sitter.Node) string {
	if node == nil {
		return ""
	}
	switch node.Type() {
	case "type_identifier", "identifier":
		return e.nodeText(node)
	case "generic_type":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child.Type() == "type_identifier" || child.Type() == "scoped_type_identifier" {
				return simpleTypeName(e, child)
			}
		}
	case "scoped_type_identifier":
		for i := int(node.ChildCount()) - 1; i >= 0; i-- {
			child := node.Child(i)
			if child.Type() == "type_identifier" {
				return e.nodeText(child)
			}
		}
	case "annotated_type":
		for i := int(node.NamedChildCount()) - 1; i >= 0; i-- {
			if t := simpleTypeName(e, node.NamedChild(i)); t != "" {
				return t
			}
		}
	}
	return ""
}
