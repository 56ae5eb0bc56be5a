package journal

import (
	"database/sql"
	"time"

	"github.com/iksnae/visual-session/internal/connector"
)

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*Session, error) {
	var (
		s         Session
		isNew     int
		aborted   int
		saved     int
		startedAt string
		endedAt   sql.NullString
		counts    [9]sql.NullInt64
	)
	err := row.Scan(
		&s.SessionID, &s.SessionURL, &isNew, &s.App, &s.Scenario, &s.BatchID, &s.BatchName,
		&startedAt, &s.State, &endedAt, &aborted, &saved,
		&counts[0], &counts[1], &counts[2], &counts[3], &counts[4],
		&counts[5], &counts[6], &counts[7], &counts[8],
	)
	if err != nil {
		return nil, err
	}

	s.IsNew = isNew != 0
	s.Aborted = aborted != 0
	s.Saved = saved != 0
	s.StartedAt = parseTime(startedAt)
	if endedAt.Valid {
		t := parseTime(endedAt.String)
		s.EndedAt = &t
		s.Results = &connector.SessionResults{
			Steps:          intPtr(counts[0]),
			Matches:        intPtr(counts[1]),
			Mismatches:     intPtr(counts[2]),
			Missing:        intPtr(counts[3]),
			ExactMatches:   intPtr(counts[4]),
			StrictMatches:  intPtr(counts[5]),
			ContentMatches: intPtr(counts[6]),
			LayoutMatches:  intPtr(counts[7]),
			NoneMatches:    intPtr(counts[8]),
		}
	}
	return &s, nil
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// timeLayout is fixed-width so stored timestamps sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
