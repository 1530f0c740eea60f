// Package extract turns parsed Java syntax trees into method-level facts.
//
// File pulls the classes and methods of a main source file together with the
// raw counts and unresolved call sites of each method body. TestFile pulls
// the call sites and type references of a test source file. Call sites are
// resolved to method ids later by the scan package, once every file is known.
package extract

import (
	"strings"

	"github.com/tdkit/tdselect/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// File extracts the facts of a main source file. relPath is recorded as the
// file path of every method.
func File(result *parser.ParseResult, relPath string) *FileFacts {
	e := newJavaExtractor(result)
	facts := &FileFacts{
		Path:      relPath,
		Package:   e.packageName(),
		Imports:   e.imports(),
		Generated: e.hasGeneratedHeader(),
	}
	e.collectTypes(result.Root, facts)
	return facts
}

// TestFile extracts the call sites and type references of a test source file.
func TestFile(result *parser.ParseResult, relPath string) *TestFacts {
	e := newJavaExtractor(result)
	return e.testFacts(relPath)
}

// nodeText returns the source text for a node.
func (e *javaExtractor) nodeText(node *sitter.Node) string {
	return e.result.NodeText(node)
}

// compactText returns the node text with all whitespace removed.
func (e *javaExtractor) compactText(node *sitter.Node) string {
	return strings.Join(strings.Fields(e.nodeText(node)), "")
}

// findChildByType finds the first child node of the given type.
func findChildByType(node *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == nodeType {
			return child
		}
	}
	return nil
}

// findChildrenByType finds all direct child nodes of the given type.
func findChildrenByType(node *sitter.Node, nodeType string) []*sitter.Node {
	var children []*sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == nodeType {
			children = append(children, child)
		}
	}
	return children
}

// isComment reports whether node is a Java comment.
func isComment(node *sitter.Node) bool {
	t := node.Type()
	return t == "line_comment" || t == "block_comment"
}

// getLineRange returns the start and end line numbers for a node.
func getLineRange(node *sitter.Node) (int, int) {
	// tree-sitter lines are 0-based, we want 1-based
	start := int(node.StartPoint().Row) + 1
	end := int(node.EndPoint().Row) + 1
	return start, end
}
