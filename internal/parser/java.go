package parser

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

// newJavaParser creates a tree-sitter parser configured for Java.
func newJavaParser() (*sitter.Parser, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(java.GetLanguage())
	return parser, nil
}

// JavaTypeDeclarations maps tree-sitter node types that open a type body to
// the kind of type they declare.
var JavaTypeDeclarations = map[string]string{
	"class_declaration":     "class",
	"interface_declaration": "interface",
	"enum_declaration":      "enum",
	"record_declaration":    "record",
}

// IsJavaTypeDeclaration reports whether node declares a named Java type.
func IsJavaTypeDeclaration(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	_, ok := JavaTypeDeclarations[node.Type()]
	return ok
}

// JavaStatementTypes lists the node types counted as executable statements.
// Blocks are containers, not statements.
var JavaStatementTypes = map[string]bool{
	"expression_statement":            true,
	"local_variable_declaration":      true,
	"return_statement":                true,
	"if_statement":                    true,
	"for_statement":                   true,
	"enhanced_for_statement":          true,
	"while_statement":                 true,
	"do_statement":                    true,
	"switch_expression":               true,
	"try_statement":                   true,
	"try_with_resources_statement":    true,
	"throw_statement":                 true,
	"break_statement":                 true,
	"continue_statement":              true,
	"yield_statement":                 true,
	"assert_statement":                true,
	"synchronized_statement":          true,
	"labeled_statement":               true,
	"explicit_constructor_invocation": true,
}

// JavaLoopTypes lists looping constructs.
var JavaLoopTypes = map[string]bool{
	"for_statement":          true,
	"enhanced_for_statement": true,
	"while_statement":        true,
	"do_statement":           true,
}

// JavaBranchTypes lists conditional constructs other than loops and switch
// labels.
var JavaBranchTypes = map[string]bool{
	"if_statement":       true,
	"ternary_expression": true,
	"catch_clause":       true,
}

// JavaSwitchCaseTypes lists the nodes that represent one case of a switch.
var JavaSwitchCaseTypes = map[string]bool{
	"switch_block_statement_group": true,
	"switch_rule":                  true,
}
