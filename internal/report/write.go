package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tdkit/tdselect/internal/output"
)

// Encode renders the report in the given format.
func Encode(r *Report, format output.Format) ([]byte, error) {
	f, err := output.GetFormatter(format)
	if err != nil {
		return nil, err
	}
	return f.Format(r)
}

// WriteFile encodes the report and replaces path atomically, creating
// parent directories as needed.
func WriteFile(path string, r *Report, format output.Format) error {
	data, err := Encode(r, format)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp report: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename report: %w", err)
	}
	return nil
}
