package extract

import (
	"sort"
	"strings"
	"unicode"

	"github.com/tdkit/tdselect/internal/model"
)

// ReceiverKind classifies the expression a method is invoked on.
type ReceiverKind string

const (
	// ReceiverNone is an unqualified call: foo().
	ReceiverNone ReceiverKind = "none"
	// ReceiverThis is this.foo() or this::foo.
	ReceiverThis ReceiverKind = "this"
	// ReceiverSuper is super.foo() or super::foo.
	ReceiverSuper ReceiverKind = "super"
	// ReceiverIdentifier is x.foo() where x is a variable, a field or a
	// class name.
	ReceiverIdentifier ReceiverKind = "identifier"
	// ReceiverOther is any other receiver expression.
	ReceiverOther ReceiverKind = "other"
)

// AnyArity marks a call site whose argument count is unknown, as for method
// references.
const AnyArity = -1

// CallSite is an unresolved method invocation or method reference.
type CallSite struct {
	Name string
	// Args is the argument count, or AnyArity.
	Args int
	Kind ReceiverKind
	// Receiver is the identifier text for ReceiverIdentifier.
	Receiver string
	// ReceiverType is the simple type name of the receiver when it could be
	// read from a declaration in scope.
	ReceiverType string
	Line         int
	Reference    bool
}

// Param is one formal parameter.
type Param struct {
	Name string
	// Type is the declared type with whitespace removed. Varargs end in "...".
	Type string
	// SimpleType is the outermost simple type name, used to resolve calls
	// on the parameter.
	SimpleType string
}

// ClassFacts describes one named type declaration.
type ClassFacts struct {
	// Name is the simple name.
	Name string
	// QualifiedName is package plus the nesting path, e.g. p.Outer.Inner.
	QualifiedName string
	// Outer is the qualified name of the enclosing type, empty at top level.
	Outer string
	// Kind is class, interface, enum or record.
	Kind string
	// Superclass is the simple name of the extended class, if any.
	Superclass string
	// Fields maps field names to their simple type names.
	Fields    map[string]string
	Generated bool
	Line      int
}

// MethodFacts holds what the extractor learned about one method.
type MethodFacts struct {
	// Class is the qualified name of the declaring type.
	Class      string
	Name       string
	Params     []Param
	ReturnType string
	Modifiers  model.Modifiers
	StartLine  int
	EndLine    int

	StatementCount int
	BranchCount    int
	LoopCount      int
	CatchCount     int
	ReturnCount    int

	Calls []CallSite
}

// ParamTypes returns the declared parameter types in order.
func (m *MethodFacts) ParamTypes() []string {
	types := make([]string, len(m.Params))
	for i, p := range m.Params {
		types[i] = p.Type
	}
	return types
}

// ID returns the method id.
func (m *MethodFacts) ID() string {
	return model.MethodID(m.Class, m.Name, m.ParamTypes())
}

// Varargs reports whether the last parameter is variadic.
func (m *MethodFacts) Varargs() bool {
	return len(m.Params) > 0 && strings.HasSuffix(m.Params[len(m.Params)-1].Type, "...")
}

// AcceptsArgs reports whether a call with n arguments can target the method.
func (m *MethodFacts) AcceptsArgs(n int) bool {
	if n == AnyArity {
		return true
	}
	if m.Varargs() {
		return n >= len(m.Params)-1
	}
	return n == len(m.Params)
}

// IsEntryPoint reports whether the method is a static void main(String[]).
func (m *MethodFacts) IsEntryPoint() bool {
	if m.Name != "main" || !m.Modifiers.Static || m.ReturnType != "void" || len(m.Params) != 1 {
		return false
	}
	t := m.Params[0].Type
	return t == "String[]" || t == "String..." || t == "java.lang.String[]"
}

// IsAccessor reports whether the method is named like a getter, setter or
// predicate: get, set or is followed by an upper-case letter, a digit or an
// underscore. The body size does not matter.
func (m *MethodFacts) IsAccessor() bool {
	for _, prefix := range []string{"get", "set", "is"} {
		if rest, ok := strings.CutPrefix(m.Name, prefix); ok && rest != "" {
			r := []rune(rest)[0]
			if unicode.IsUpper(r) || unicode.IsDigit(r) || r == '_' {
				return true
			}
		}
	}
	return false
}

// Info converts the facts into a MethodInfo rooted at file.
func (m *MethodFacts) Info(file string) model.MethodInfo {
	types := m.ParamTypes()
	return model.MethodInfo{
		ID:             model.MethodID(m.Class, m.Name, types),
		ClassName:      m.Class,
		Name:           m.Name,
		Signature:      model.Signature(m.Name, types),
		ParamTypes:     types,
		File:           file,
		StartLine:      m.StartLine,
		EndLine:        m.EndLine,
		Modifiers:      m.Modifiers,
		StatementCount: m.StatementCount,
		BranchCount:    m.BranchCount,
		LoopCount:      m.LoopCount,
		CatchCount:     m.CatchCount,
		ReturnCount:    m.ReturnCount,
		IsEntryPoint:   m.IsEntryPoint(),
		IsAccessor:     m.IsAccessor(),
	}
}

// FileFacts is everything extracted from one main source file.
type FileFacts struct {
	Path    string
	Package string
	// Imports lists single-type imports by qualified name.
	Imports []string
	// Generated is set when the file header carries a generated-code marker.
	Generated bool
	Classes   []ClassFacts
	Methods   []MethodFacts
}

// TestFacts is everything extracted from one test source file.
type TestFacts struct {
	Path    string
	Package string
	Imports []string
	Calls   []CallSite
	// TypeRefs lists, sorted, the simple type names the file mentions.
	TypeRefs []string
}

// References reports whether the test file mentions the simple type name.
func (t *TestFacts) References(simpleName string) bool {
	i := sort.SearchStrings(t.TypeRefs, simpleName)
	return i < len(t.TypeRefs) && t.TypeRefs[i] == simpleName
}
