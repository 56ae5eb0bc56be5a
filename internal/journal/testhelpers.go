package journal

import (
	"time"

	"github.com/iksnae/visual-session/internal/connector"
)

// CreateTestSession creates an ended session with two steps and results
func CreateTestSession(id string) *Session {
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ended := started.Add(time.Minute)
	n := func(v int) *int { return &v }

	return &Session{
		SessionID:  id,
		SessionURL: "http://server/sessions/" + id,
		IsNew:      true,
		App:        "shop",
		Scenario:   "checkout",
		BatchID:    "batch-1",
		BatchName:  "nightly",
		StartedAt:  started,
		State:      StateEnded,
		EndedAt:    &ended,
		Saved:      true,
		Steps: []Step{
			{Step: 1, Tag: "cart", Source: "cart.png", AsExpected: true, MatchedAt: started.Add(10 * time.Second)},
			{Step: 2, Tag: "payment", Source: "payment.png", AsExpected: false, MatchedAt: started.Add(20 * time.Second)},
		},
		Results: &connector.SessionResults{
			Steps:          n(2),
			Matches:        n(1),
			Mismatches:     n(1),
			Missing:        n(0),
			ExactMatches:   n(0),
			StrictMatches:  n(1),
			ContentMatches: n(0),
			LayoutMatches:  n(0),
			NoneMatches:    n(0),
		},
	}
}

// CreateRunningSession creates a session with no steps and no results
func CreateRunningSession(id string) *Session {
	return &Session{
		SessionID: id,
		IsNew:     false,
		StartedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		State:     StateRunning,
	}
}
