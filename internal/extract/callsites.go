package extract

import (
	"github.com/tdkit/tdselect/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// scope resolves identifiers to declared simple type names: locals and
// parameters first, then the fields of the enclosing types, innermost first.
type scope struct {
	locals map[string]string
	fields []map[string]string
}

// typeOf returns the declared type of name and whether name is a known
// variable at all.
func (s *scope) typeOf(name string) (string, bool) {
	if t, ok := s.locals[name]; ok {
		return t, true
	}
	return s.fieldType(name)
}

func (s *scope) fieldType(name string) (string, bool) {
	for _, fields := range s.fields {
		if t, ok := fields[name]; ok {
			return t, true
		}
	}
	return "", false
}

// callSites returns every method invocation and method reference under node
// in source order.
func (e *javaExtractor) callSites(node *sitter.Node, sc *scope) []CallSite {
	var sites []CallSite
	parser.Walk(node, func(n *sitter.Node) bool {
		switch n.Type() {
		case "method_invocation":
			if site, ok := e.invocation(n, sc); ok {
				sites = append(sites, site)
			}
		case "method_reference":
			if site, ok := e.reference(n, sc); ok {
				sites = append(sites, site)
			}
		}
		return true
	})
	return sites
}

// invocation reads a method_invocation node: object (optional), name
// and arguments.
func (e *javaExtractor) invocation(n *sitter.Node, sc *scope) (CallSite, bool) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return CallSite{}, false
	}
	site := CallSite{
		Name: e.nodeText(nameNode),
		Args: countArgs(n.ChildByFieldName("arguments")),
		Kind: ReceiverNone,
	}
	site.Line, _ = getLineRange(n)

	obj := n.ChildByFieldName("object")
	if obj == nil {
		return site, true
	}
	switch obj.Type() {
	case "this":
		site.Kind = ReceiverThis
	case "super":
		site.Kind = ReceiverSuper
	case "identifier":
		site.Kind = ReceiverIdentifier
		site.Receiver = e.nodeText(obj)
		site.ReceiverType, _ = sc.typeOf(site.Receiver)
	case "field_access":
		site.Kind = ReceiverOther
		// this.account.deposit(...) goes through a field.
		if inner := obj.ChildByFieldName("object"); inner != nil && inner.Type() == "this" {
			if field := obj.ChildByFieldName("field"); field != nil {
				site.Kind = ReceiverIdentifier
				site.Receiver = e.nodeText(field)
				site.ReceiverType, _ = sc.fieldType(site.Receiver)
			}
		}
	case "object_creation_expression":
		site.Kind = ReceiverOther
		site.ReceiverType = simpleTypeName(e, obj.ChildByFieldName("type"))
	default:
		site.Kind = ReceiverOther
	}
	return site, true
}

// reference reads a method_reference node such as Type::name or this::name.
// Constructor references (Type::new) are skipped.
func (e *javaExtractor) reference(n *sitter.Node, sc *scope) (CallSite, bool) {
	count := int(n.ChildCount())
	if count < 3 {
		return CallSite{}, false
	}
	last := n.Child(count - 1)
	if last.Type() != "identifier" {
		return CallSite{}, false
	}
	site := CallSite{
		Name:      e.nodeText(last),
		Args:      AnyArity,
		Kind:      ReceiverOther,
		Reference: true,
	}
	site.Line, _ = getLineRange(n)

	recv := n.NamedChild(0)
	switch recv.Type() {
	case "this":
		site.Kind = ReceiverThis
	case "super":
		site.Kind = ReceiverSuper
	case "identifier":
		site.Kind = ReceiverIdentifier
		site.Receiver = e.nodeText(recv)
		site.ReceiverType, _ = sc.typeOf(site.Receiver)
	case "type_identifier", "scoped_type_identifier", "generic_type":
		site.Kind = ReceiverIdentifier
		site.Receiver = simpleTypeName(e, recv)
	}
	return site, true
}

// countArgs counts the expressions of an argument_list, comments excluded.
func countArgs(args *sitter.Node) int {
	if args == nil {
		return 0
	}
	n := 0
	for i := 0; i < int(args.NamedChildCount()); i++ {
		if !isComment(args.NamedChild(i)) {
			n++
		}
	}
	return n
}
