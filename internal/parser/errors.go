package parser

import (
	"errors"
	"fmt"
)

// ErrNoTree is returned when tree-sitter yields no tree, which happens only
// when parsing is cancelled or times out.
var ErrNoTree = errors.New("parser returned no tree")

// SyntaxError locates one ERROR or MISSING node. Positions are 1-based.
type SyntaxError struct {
	File    string
	Line    uint32
	Column  uint32
	Message string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
}

// ReadError wraps a failure to load a source file.
type ReadError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ReadError) Unwrap() error { return e.Err }
