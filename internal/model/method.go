// Package model holds the Method Index: one MethodInfo per analyzed Java
// method and the project-wide call graph between them.
//
// A Project is built once by a Builder during scanning and frozen. After
// Freeze nothing mutates it; every accessor hands out copies so scorers and
// the ranker can read it concurrently.
package model

import (
	"strings"
)

// Visibility is the Java access level of a method.
type Visibility string

const (
	// VisibilityPublic is declared public.
	VisibilityPublic Visibility = "public"
	// VisibilityProtected is declared protected.
	VisibilityProtected Visibility = "protected"
	// VisibilityPackage has no access modifier (package-private).
	VisibilityPackage Visibility = "package"
	// VisibilityPrivate is declared private.
	VisibilityPrivate Visibility = "private"
)

// Modifiers describes the declaration modifiers of a method.
type Modifiers struct {
	Visibility   Visibility
	Static       bool
	Abstract     bool
	Final        bool
	Synchronized bool
	Native       bool
	Default      bool
	// Annotations holds annotation names without the leading '@'.
	Annotations []string
	// Generated is set when the method, its class or its file is marked as
	// generated code.
	Generated bool
}

// HasAnnotation reports whether the method carries the named annotation.
// Qualified names match on their last segment.
func (m Modifiers) HasAnnotation(name string) bool {
	for _, a := range m.Annotations {
		if a == name || strings.HasSuffix(a, "."+name) {
			return true
		}
	}
	return false
}

// MethodInfo holds the facts extracted for one method.
type MethodInfo struct {
	// ID is "<qualified class>#<name>(<param types>)".
	ID string
	// ClassName is the qualified name of the owning class.
	ClassName string
	// Name is the simple method name.
	Name string
	// Signature is "<name>(<param types>)".
	Signature string
	// ParamTypes lists parameter types as written, whitespace removed.
	ParamTypes []string
	// File is the source file, relative to the project root.
	File      string
	StartLine int
	EndLine   int
	Modifiers Modifiers

	// StatementCount counts executable statements in the body, nested
	// statements included.
	StatementCount int
	// BranchCount counts conditional, looping and switch-case constructs.
	BranchCount int
	LoopCount   int
	CatchCount  int
	ReturnCount int

	// Calls lists, sorted, the ids this method's body statically references.
	Calls []string
	// Callers lists, sorted, the ids whose Calls contain this method.
	Callers []string
	// Recursive is set when the body references the method itself. The
	// self-reference is not an edge in Calls or Callers.
	Recursive bool

	// TestReferences counts occurrences of the method in test sources.
	TestReferences int
	// TestFiles counts distinct test files with at least one occurrence.
	TestFiles int

	// IsEntryPoint marks public static void main(String[]).
	IsEntryPoint bool
	// IsAccessor marks methods named get*, set* or is* at a camel-case boundary.
	IsAccessor bool
}

// FanIn returns the number of distinct callers.
func (m *MethodInfo) FanIn() int {
	return len(m.Callers)
}

// FanOut returns the number of distinct callees.
func (m *MethodInfo) FanOut() int {
	return len(m.Calls)
}

// Complexity returns the cyclomatic complexity proxy: 1 + BranchCount.
func (m *MethodInfo) Complexity() int {
	return 1 + m.BranchCount
}

// clone returns a deep copy of m.
func (m *MethodInfo) clone() MethodInfo {
	c := *m
	c.ParamTypes = cloneStrings(m.ParamTypes)
	c.Calls = cloneStrings(m.Calls)
	c.Callers = cloneStrings(m.Callers)
	c.Modifiers.Annotations = cloneStrings(m.Modifiers.Annotations)
	return c
}

// MethodID builds the stable method identifier.
func MethodID(className, name string, paramTypes []string) string {
	return className + "#" + Signature(name, paramTypes)
}

// Signature builds "<name>(<param types>)".
func Signature(name string, paramTypes []string) string {
	return name + "(" + strings.Join(paramTypes, ",") + ")"
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
