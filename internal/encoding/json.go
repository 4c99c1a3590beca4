// Package encoding renders the finished document: JSON for downstream
// ingestion, Graphviz DOT for inspection, and the JSON Schema describing
// the output contract.
package encoding

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/standardbeagle/atomizer/internal/types"
)

// WriteJSON renders the document as indented JSON.
func WriteJSON(w io.Writer, doc *types.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

// WriteJSONFile writes the document to path via a temp file and rename so a
// failed run never leaves a truncated output behind.
func WriteJSONFile(path string, doc *types.Document) error {
	tmp, err := os.CreateTemp("", "atoms-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp output: %w", err)
	}
	tmpPath := tmp.Name()

	if err := WriteJSON(tmp, doc); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		// Cross-device rename fails; fall back to a direct copy.
		data, readErr := os.ReadFile(tmpPath)
		os.Remove(tmpPath)
		if readErr != nil {
			return fmt.Errorf("failed to move output: %w", err)
		}
		return os.WriteFile(path, data, 0644)
	}
	return nil
}
