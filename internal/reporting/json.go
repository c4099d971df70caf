// File: internal/reporting/json.go
package reporting

import (
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/mkaresz/locascope/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONReporter writes the envelope verbatim. Its output is the canonical
// artifact: the report subcommand can re-render every other format from it.
type JSONReporter struct {
	writer io.WriteCloser
}

// NewJSONReporter creates the JSON reporter. It takes ownership of the
// writer.
func NewJSONReporter(w io.WriteCloser) *JSONReporter {
	return &JSONReporter{writer: w}
}

// Write serializes the envelope with indentation.
func (r *JSONReporter) Write(envelope *schemas.ReportEnvelope) error {
	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(envelope); err != nil {
		return fmt.Errorf("failed to encode report envelope: %w", err)
	}
	return nil
}

// Close releases the underlying writer.
func (r *JSONReporter) Close() error { return r.writer.Close() }

// LoadEnvelope reads a previously saved JSON report back into an envelope.
func LoadEnvelope(path string) (*schemas.ReportEnvelope, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report %s: %w", path, err)
	}
	var envelope schemas.ReportEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", path, err)
	}
	return &envelope, nil
}
