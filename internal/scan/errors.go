package scan

import "fmt"

// ScanError is a fatal scan failure: the root is missing, is not a
// directory, or holds no parseable main source.
type ScanError struct {
	Root   string
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *ScanError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scan %s: %s: %v", e.Root, e.Reason, e.Err)
	}
	return fmt.Sprintf("scan %s: %s", e.Root, e.Reason)
}

// Unwrap returns the underlying error.
func (e *ScanError) Unwrap() error {
	return e.Err
}

// ParseWarning reports a per-file problem that did not stop the scan: a
// syntax error region, or a file that could not be read or parsed and was
// left out.
type ParseWarning struct {
	File    string
	Line    int
	Message string
}

// Error implements the error interface.
func (w ParseWarning) Error() string {
	if w.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", w.File, w.Line, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.File, w.Message)
}
