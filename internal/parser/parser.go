// Package parser provides tree-sitter based parsing of Java source files.
//
// The parser package wraps the tree-sitter library and its Java grammar. It
// produces the syntax view consumed by the extract package: method
// boundaries, statements and call expressions. A Parser is not safe for
// concurrent use; create one per goroutine.
package parser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// JavaExtension is the file extension of Java source files.
const JavaExtension = ".java"

// Parser wraps a tree-sitter parser configured for Java.
type Parser struct {
	parser *sitter.Parser
}

// ParseResult contains the parsed AST and metadata.
type ParseResult struct {
	// Tree is the complete tree-sitter parse tree.
	Tree *sitter.Tree
	// Root is the root node of the AST.
	Root *sitter.Node
	// Source is the original source code that was parsed.
	Source []byte
	// FilePath is the path to the source file (empty for in-memory parsing).
	FilePath string
}

// NewParser creates a Java parser.
func NewParser() (*Parser, error) {
	p, err := newJavaParser()
	if err != nil {
		return nil, err
	}
	return &Parser{parser: p}, nil
}

// Parse parses source code and returns the AST.
func (p *Parser) Parse(ctx context.Context, source []byte) (*ParseResult, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if tree == nil {
		return nil, ErrNoTree
	}

	return &ParseResult{
		Tree:   tree,
		Root:   tree.RootNode(),
		Source: source,
	}, nil
}

// ParseFile parses a file from disk.
func (p *Parser) ParseFile(ctx context.Context, path string) (*ParseResult, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	result, err := p.Parse(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	result.FilePath = path
	return result, nil
}

// Close releases parser resources.
// After calling Close, the parser should not be used.
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
		p.parser = nil
	}
}

// Close releases the parse tree resources.
func (r *ParseResult) Close() {
	if r.Tree != nil {
		r.Tree.Close()
		r.Tree = nil
		r.Root = nil
	}
}

// HasErrors returns true if the parse tree contains syntax errors.
func (r *ParseResult) HasErrors() bool {
	if r.Root == nil {
		return false
	}
	return r.Root.HasError()
}

// SyntaxErrors returns one SyntaxError per ERROR or MISSING node, in source
// order. The tree stays usable around the broken region.
func (r *ParseResult) SyntaxErrors() []*SyntaxError {
	if !r.HasErrors() {
		return nil
	}

	var errs []*SyntaxError
	Walk(r.Root, func(node *sitter.Node) bool {
		if node.Type() == "ERROR" || node.IsMissing() {
			pos := node.StartPoint()
			msg := "syntax error"
			if node.IsMissing() {
				msg = "missing " + node.Type()
			}
			errs = append(errs, &SyntaxError{
				Message: msg,
				File:    r.FilePath,
				Line:    pos.Row + 1,
				Column:  pos.Column + 1,
			})
			return false
		}
		return node.HasError()
	})
	return errs
}

// Walk traverses the subtree rooted at node depth-first. Returning false from
// the visitor skips that node's children.
func Walk(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visitor(node) {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		Walk(node.Child(i), visitor)
	}
}

// FindNodes returns all nodes matching the given predicate.
func (r *ParseResult) FindNodes(predicate func(*sitter.Node) bool) []*sitter.Node {
	var nodes []*sitter.Node
	Walk(r.Root, func(node *sitter.Node) bool {
		if predicate(node) {
			nodes = append(nodes, node)
		}
		return true
	})
	return nodes
}

// FindNodesByType returns all nodes of the specified type.
func (r *ParseResult) FindNodesByType(nodeType string) []*sitter.Node {
	return r.FindNodes(func(node *sitter.Node) bool {
		return node.Type() == nodeType
	})
}

// NodeText returns the source text for a node.
func (r *ParseResult) NodeText(node *sitter.Node) string {
	if node == nil || r.Source == nil {
		return ""
	}
	return node.Content(r.Source)
}

// IsJavaFile reports whether path names a Java source file.
func IsJavaFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), JavaExtension)
}
