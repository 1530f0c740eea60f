package model

import "fmt"

// DuplicateMethodError is returned when two methods resolve to the same id.
// Overloads never collide because the id carries the parameter types; a
// collision means the same qualified class is declared twice.
type DuplicateMethodError struct {
	ID     string
	First  string
	Second string
}

// Error implements the error interface.
func (e *DuplicateMethodError) Error() string {
	return fmt.Sprintf("duplicate method id %s: declared in %s and %s", e.ID, e.First, e.Second)
}

// FrozenError is returned when a Builder is used after Freeze.
type FrozenError struct {
	Op string
}

// Error implements the error interface.
func (e *FrozenError) Error() string {
	return fmt.Sprintf("model: %s called on a frozen builder", e.Op)
}
