package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/visual-session/internal/journal"
)

// JSONLExporter exports sessions in JSONL format: one line per match step,
// then a summary line with the session results.
type JSONLExporter struct{}

// Export exports a session to JSONL format
func (e *JSONLExporter) Export(session *journal.Session, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, step := range session.Steps {
		obj := map[string]interface{}{
			"type":        "step",
			"session_id":  session.SessionID,
			"step":        step.Step,
			"as_expected": step.AsExpected,
			"matched_at":  step.MatchedAt,
		}
		if step.Tag != "" {
			obj["tag"] = step.Tag
		}
		if step.Source != "" {
			obj["source"] = step.Source
		}

		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode step: %w", err)
		}
	}

	summary := map[string]interface{}{
		"type":       "session",
		"session_id": session.SessionID,
		"state":      session.State,
		"is_new":     session.IsNew,
	}
	if session.Results != nil {
		summary["results"] = session.Results
	}
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
