package extract

import (
	"github.com/tdkit/tdselect/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// statementParents are the node types whose direct children sit in
// statement position.
var statementParents = map[string]bool{
	"block":                        true,
	"switch_block_statement_group": true,
	"labeled_statement":            true,
	"if_statement":                 true,
	"while_statement":              true,
	"for_statement":                true,
	"enhanced_for_statement":       true,
	"do_statement":                 true,
}

type bodyCounts struct {
	statements int
	branches   int
	loops      int
	catches    int
	returns    int
}

// countBody counts statements and branching constructs under a method body.
// Nested statements count; the body block itself does not.
func countBody(body *sitter.Node) bodyCounts {
	var c bodyCounts
	parser.Walk(body, func(n *sitter.Node) bool {
		t := n.Type()
		if isStatement(n) {
			c.statements++
		}
		switch {
		case parser.JavaLoopTypes[t]:
			c.loops++
			c.branches++
		case parser.JavaBranchTypes[t]:
			c.branches++
			if t == "catch_clause" {
				c.catches++
			}
		case parser.JavaSwitchCaseTypes[t]:
			if t == "switch_rule" || hasGroupStatements(n) {
				c.branches++
			}
		}
		if t == "return_statement" {
			c.returns++
		}
		return true
	})
	return c
}

// hasGroupStatements reports whether a switch group holds anything besides
// its labels. An empty group falls through to the next label and shares
// its branch.
func hasGroupStatements(group *sitter.Node) bool {
	for i := 0; i < int(group.NamedChildCount()); i++ {
		switch group.NamedChild(i).Type() {
		case "switch_label", "line_comment", "block_comment":
		default:
			return true
		}
	}
	return false
}

// isStatement reports whether n counts as an executable statement.
func isStatement(n *sitter.Node) bool {
	t := n.Type()
	if !parser.JavaStatementTypes[t] {
		return false
	}
	parent := n.Parent()
	switch t {
	case "switch_expression":
		// A switch used as a value is part of the enclosing statement.
		return parent != nil && statementParents[parent.Type()]
	case "local_variable_declaration":
		// for (int i = 0; ...) declares in the loop header.
		return parent == nil || parent.Type() != "for_statement"
	}
	return true
}
