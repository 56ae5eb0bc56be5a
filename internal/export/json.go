package export

import (
	"encoding/json"
	"io"

	"github.com/iksnae/visual-session/internal/journal"
)

// JSONExporter writes one pretty-printed report per session. Session URLs
// are written as-is, without HTML escaping of their query strings.
type JSONExporter struct{}

// Export writes the session report as JSON
func (e *JSONExporter) Export(session *journal.Session, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	return enc.Encode(newReport(session))
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
