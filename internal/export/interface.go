// Package export renders journaled sessions for CI artifacts and humans.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/visual-session/internal/journal"
)

// Exporter renders one journaled session
type Exporter interface {
	Export(session *journal.Session, w io.Writer) error
	Extension() string
}

var formats = []string{"jsonl", "md", "yaml", "json"}

// Formats lists the accepted --format values
func Formats() []string {
	return append([]string(nil), formats...)
}

// NewExporter returns the exporter for a format name, case-insensitively
func NewExporter(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %q (supported: %s)", format, strings.Join(formats, ", "))
	}
}
