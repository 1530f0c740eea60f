package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Formatter encodes a value in one format.
type Formatter interface {
	// Format returns the encoded document.
	Format(v interface{}) ([]byte, error)

	// FormatToWriter writes the encoded document to a writer.
	FormatToWriter(w io.Writer, v interface{}) error
}

// YAMLFormatter formats values as YAML with two-space indentation.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// Format formats a value as YAML.
func (f *YAMLFormatter) Format(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.FormatToWriter(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FormatToWriter writes YAML output to a writer.
func (f *YAMLFormatter) FormatToWriter(w io.Writer, v interface{}) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return encoder.Close()
}

// JSONFormatter formats values as indented JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format formats a value as JSON.
func (f *JSONFormatter) Format(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.FormatToWriter(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FormatToWriter writes JSON output to a writer.
func (f *JSONFormatter) FormatToWriter(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// GetFormatter returns the formatter for a format.
func GetFormatter(f Format) (Formatter, error) {
	if !ValidateFormat(f) {
		return nil, fmt.Errorf("unsupported format: %q", f)
	}
	if f == FormatJSON {
		return NewJSONFormatter(), nil
	}
	return NewYAMLFormatter(), nil
}
