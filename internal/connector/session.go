package connector

import (
	"encoding/json"
	"fmt"
)

// SessionStartInfo is the caller-supplied description of the baseline and
// test a session belongs to. It is sent to the server unmodified.
type SessionStartInfo any

// RunningSession identifies a session opened by StartSession
type RunningSession struct {
	id           string
	url          string
	isNewSession bool
}

// RestoreSession rebuilds a session handle from the values of a
// RunningSession that an earlier StartSession returned and the caller
// persisted.
func RestoreSession(id, url string, isNewSession bool) *RunningSession {
	return &RunningSession{id: id, url: url, isNewSession: isNewSession}
}

// ID returns the server-assigned session identifier
func (s *RunningSession) ID() string {
	return s.id
}

// URL returns the session's page on the server
func (s *RunningSession) URL() string {
	return s.url
}

// IsNewSession reports whether the server created a new session (201)
// rather than linking to an existing one (200).
func (s *RunningSession) IsNewSession() bool {
	return s.isNewSession
}

// MatchWindowData is the raw body of a match window request
type MatchWindowData []byte

// MatchResult is the server's verdict for one match window call
type MatchResult struct {
	AsExpected bool `json:"asExpected"`
}

// SessionResults holds the aggregated counts returned when a session ends.
// A field is nil when the server omitted it.
type SessionResults struct {
	Steps          *int `json:"steps" yaml:"steps"`
	Matches        *int `json:"matches" yaml:"matches"`
	Mismatches     *int `json:"mismatches" yaml:"mismatches"`
	Missing        *int `json:"missing" yaml:"missing"`
	ExactMatches   *int `json:"exactMatches" yaml:"exactMatches"`
	StrictMatches  *int `json:"strictMatches" yaml:"strictMatches"`
	ContentMatches *int `json:"contentMatches" yaml:"contentMatches"`
	LayoutMatches  *int `json:"layoutMatches" yaml:"layoutMatches"`
	NoneMatches    *int `json:"noneMatches" yaml:"noneMatches"`
}

// IsPassed reports whether the session finished with no mismatches and
// nothing missing. Absent counts are treated as zero.
func (r *SessionResults) IsPassed() bool {
	return valueOf(r.Mismatches) == 0 && valueOf(r.Missing) == 0
}

func valueOf(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

type startSessionRequest struct {
	StartInfo SessionStartInfo `json:"startInfo"`
}

type startSessionResponse struct {
	ID  sessionID `json:"id"`
	URL string    `json:"url"`
}

// sessionID accepts both string and numeric ids
type sessionID string

func (id *sessionID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = sessionID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("session id: %w", err)
	}
	*id = sessionID(n.String())
	return nil
}

type endSessionRequest struct {
	Aborted        bool `json:"aborted"`
	UpdateBaseline bool `json:"updateBaseline"`
}
