// Package output provides the report formats and their encoders.
package output

import (
	"fmt"
	"strings"
)

// Format represents the output format type.
type Format string

const (
	// FormatYAML is the default report format
	FormatYAML Format = "yaml"

	// FormatJSON is the JSON report format
	FormatJSON Format = "json"
)

// DefaultFormat is the default output format when none is specified.
const DefaultFormat = FormatYAML

// ParseFormat parses a format string into a Format value.
// Accepts: "yaml", "yml", "json" (case-insensitive). An empty string
// selects the default.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("invalid format: %q (expected yaml or json)", s)
	}
}

// FormatForPath infers the format from a file extension, falling back to
// the default format.
func FormatForPath(path string) Format {
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		return FormatJSON
	}
	return DefaultFormat
}

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// Extension returns the conventional file extension including the dot.
func (f Format) Extension() string {
	if f == FormatJSON {
		return ".json"
	}
	return ".yaml"
}

// ValidateFormat checks if a format value is valid.
func ValidateFormat(f Format) bool {
	switch f {
	case FormatYAML, FormatJSON:
		return true
	default:
		return false
	}
}
