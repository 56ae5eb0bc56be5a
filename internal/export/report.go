package export

import "github.com/iksnae/visual-session/internal/journal"

// Verdicts derived from a journaled session
const (
	VerdictRunning = "running"
	VerdictAborted = "aborted"
	VerdictPassed  = "passed"
	VerdictFailed  = "failed"
)

// report is the document the structured exporters write: the journaled
// session plus what a reader of a visual test run wants first, whether it
// passed and which steps differed from the baseline.
type report struct {
	journal.Session `yaml:",inline"`
	Verdict         string `json:"verdict" yaml:"verdict"`
	MismatchedSteps []int  `json:"mismatched_steps,omitempty" yaml:"mismatched_steps,omitempty"`
}

func newReport(session *journal.Session) *report {
	r := &report{Session: *session, Verdict: verdictOf(session)}
	for _, step := range session.Steps {
		if !step.AsExpected {
			r.MismatchedSteps = append(r.MismatchedSteps, step.Step)
		}
	}
	return r
}

// verdictOf uses the server's results when the session has ended and
// falls back to the recorded steps otherwise.
func verdictOf(session *journal.Session) string {
	switch {
	case session.IsRunning():
		return VerdictRunning
	case session.Aborted:
		return VerdictAborted
	case session.Results != nil:
		if session.Results.IsPassed() {
			return VerdictPassed
		}
		return VerdictFailed
	}
	for _, step := range session.Steps {
		if !step.AsExpected {
			return VerdictFailed
		}
	}
	return VerdictPassed
}
