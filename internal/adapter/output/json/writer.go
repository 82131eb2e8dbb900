package json

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/codeforesight/foresight/internal/usecase/scan"
)

// Writer implements the scan.JSONWriter interface.
type Writer struct {
	now func() string
}

// NewWriter creates a new JSON writer.
func NewWriter(now func() string) *Writer {
	return &Writer{now: now}
}

// Write persists a scan report to disk as a JSON file.
func (w *Writer) Write(ctx context.Context, artifact scan.ReportArtifact) (string, error) {
	if err := os.MkdirAll(artifact.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(artifact.OutputDir, fmt.Sprintf("%s_%s.json", Sanitise(artifact.Input), w.now()))

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create json file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(artifact.Report); err != nil {
		return "", fmt.Errorf("encode report to json: %w", err)
	}

	return path, nil
}

// Sanitise turns an input path into a filename-safe slug.
func Sanitise(value string) string {
	if value == "" {
		return "unknown"
	}
	value = filepath.Base(value)
	value = strings.TrimSuffix(value, filepath.Ext(value))
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, " ", "-")
	return value
}
