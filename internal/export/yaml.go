package export

import (
	"fmt"
	"io"

	"github.com/iksnae/visual-session/internal/journal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter writes the same report as JSONExporter, indented by two
// spaces.
type YAMLExporter struct{}

func (e *YAMLExporter) Export(session *journal.Session, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(newReport(session)); err != nil {
		_ = enc.Close()
		return fmt.Errorf("failed to encode session %s: %w", session.SessionID, err)
	}
	return enc.Close()
}

func (e *YAMLExporter) Extension() string {
	return "yaml"
}
