package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/visual-session/internal/journal"
)

// MarkdownExporter exports sessions in Markdown format
type MarkdownExporter struct{}

// Export exports a session to Markdown format
func (e *MarkdownExporter) Export(session *journal.Session, w io.Writer) error {
	// Header
	_, _ = fmt.Fprintf(w, "# Session %s\n\n", session.SessionID)

	if session.App != "" {
		_, _ = fmt.Fprintf(w, "**App:** %s  \n", escapeMarkdown(session.App))
	}
	if session.Scenario != "" {
		_, _ = fmt.Fprintf(w, "**Test:** %s  \n", escapeMarkdown(session.Scenario))
	}
	if session.BatchName != "" {
		_, _ = fmt.Fprintf(w, "**Batch:** %s  \n", escapeMarkdown(session.BatchName))
	}
	if session.SessionURL != "" {
		_, _ = fmt.Fprintf(w, "**URL:** %s  \n", session.SessionURL)
	}
	_, _ = fmt.Fprintf(w, "**State:** %s\n\n", session.State)

	if len(session.Steps) > 0 {
		_, _ = fmt.Fprintf(w, "## Steps\n\n")
		_, _ = fmt.Fprintf(w, "| # | Tag | Source | Result |\n|---|---|---|---|\n")
		for _, step := range session.Steps {
			result := "mismatch"
			if step.AsExpected {
				result = "match"
			}
			_, _ = fmt.Fprintf(w, "| %d | %s | %s | %s |\n", step.Step, escapeCell(step.Tag), escapeCell(step.Source), result)
		}
		_, _ = fmt.Fprintln(w)
	}

	if r := session.Results; r != nil {
		_, _ = fmt.Fprintf(w, "## Results\n\n")
		rows := []struct {
			name  string
			value *int
		}{
			{"Steps", r.Steps},
			{"Matches", r.Matches},
			{"Mismatches", r.Mismatches},
			{"Missing", r.Missing},
			{"Exact matches", r.ExactMatches},
			{"Strict matches", r.StrictMatches},
			{"Content matches", r.ContentMatches},
			{"Layout matches", r.LayoutMatches},
			{"None matches", r.NoneMatches},
		}
		for _, row := range rows {
			_, _ = fmt.Fprintf(w, "- **%s:** %s\n", row.name, formatCount(row.value))
		}
	}

	return nil
}

func formatCount(p *int) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("%d", *p)
}

// escapeMarkdown escapes markdown emphasis characters
func escapeMarkdown(text string) string {
	text = strings.ReplaceAll(text, "**", "\\*\\*")
	return strings.ReplaceAll(text, "__", "\\_\\_")
}

func escapeCell(text string) string {
	return strings.ReplaceAll(escapeMarkdown(text), "|", "\\|")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
