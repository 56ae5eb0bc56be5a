// Package journal keeps a local SQLite record of the sessions this client
// started, the match steps sent to them and their final results.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iksnae/visual-session/internal"
	"github.com/iksnae/visual-session/internal/connector"
)

// Session states
const (
	StateRunning = "running"
	StateEnded   = "ended"
	StateAborted = "aborted"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id      TEXT PRIMARY KEY,
	session_url     TEXT NOT NULL DEFAULT '',
	is_new          INTEGER NOT NULL DEFAULT 0,
	app             TEXT NOT NULL DEFAULT '',
	scenario        TEXT NOT NULL DEFAULT '',
	batch_id        TEXT NOT NULL DEFAULT '',
	batch_name      TEXT NOT NULL DEFAULT '',
	started_at      TEXT NOT NULL,
	state           TEXT NOT NULL,
	ended_at        TEXT,
	aborted         INTEGER NOT NULL DEFAULT 0,
	saved           INTEGER NOT NULL DEFAULT 0,
	steps           INTEGER,
	matches         INTEGER,
	mismatches      INTEGER,
	missing         INTEGER,
	exact_matches   INTEGER,
	strict_matches  INTEGER,
	content_matches INTEGER,
	layout_matches  INTEGER,
	none_matches    INTEGER
);
CREATE TABLE IF NOT EXISTS steps (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL REFERENCES sessions(session_id) ON DELETE CASCADE,
	step        INTEGER NOT NULL,
	tag         TEXT NOT NULL DEFAULT '',
	source      TEXT NOT NULL DEFAULT '',
	as_expected INTEGER NOT NULL,
	matched_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_steps_session ON steps(session_id, step);
`

// StartMeta is what the journal keeps about the start request
type StartMeta struct {
	App       string
	Scenario  string
	BatchID   string
	BatchName string
}

// Session is one journaled session
type Session struct {
	SessionID  string                    `json:"session_id" yaml:"session_id"`
	SessionURL string                    `json:"session_url,omitempty" yaml:"session_url,omitempty"`
	IsNew      bool                      `json:"is_new" yaml:"is_new"`
	App        string                    `json:"app,omitempty" yaml:"app,omitempty"`
	Scenario   string                    `json:"scenario,omitempty" yaml:"scenario,omitempty"`
	BatchID    string                    `json:"batch_id,omitempty" yaml:"batch_id,omitempty"`
	BatchName  string                    `json:"batch_name,omitempty" yaml:"batch_name,omitempty"`
	StartedAt  time.Time                 `json:"started_at" yaml:"started_at"`
	State      string                    `json:"state" yaml:"state"`
	EndedAt    *time.Time                `json:"ended_at,omitempty" yaml:"ended_at,omitempty"`
	Aborted    bool                      `json:"aborted" yaml:"aborted"`
	Saved      bool                      `json:"saved" yaml:"saved"`
	Results    *connector.SessionResults `json:"results,omitempty" yaml:"results,omitempty"`
	Steps      []Step                    `json:"steps,omitempty" yaml:"steps,omitempty"`
}

// Step is one match window call recorded for a session
type Step struct {
	Step       int       `json:"step" yaml:"step"`
	Tag        string    `json:"tag,omitempty" yaml:"tag,omitempty"`
	Source     string    `json:"source,omitempty" yaml:"source,omitempty"`
	AsExpected bool      `json:"as_expected" yaml:"as_expected"`
	MatchedAt  time.Time `json:"matched_at" yaml:"matched_at"`
}

// Handle returns the connector handle for a journaled session
func (s *Session) Handle() *connector.RunningSession {
	return connector.RestoreSession(s.SessionID, s.SessionURL, s.IsNew)
}

// IsRunning reports whether the session has not been ended yet
func (s *Session) IsRunning() bool {
	return s.State == StateRunning
}

// Journal records sessions in a SQLite database
type Journal struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open opens the journal database at path, creating it if needed
func Open(path string) (*Journal, error) {
	db, err := internal.OpenDatabase(path)
	if err != nil {
		return nil, err
	}
	j, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	j.path = path
	return j, nil
}

// New wraps an open database and creates the schema if missing
func New(db *sql.DB) (*Journal, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, &internal.StorageError{Path: ":db", Op: "migrate", Err: err}
	}
	return &Journal{db: db, path: ":db", now: time.Now}, nil
}

// Path returns the database path
func (j *Journal) Path() string {
	return j.path
}

// Close closes the database
func (j *Journal) Close() error {
	return j.db.Close()
}

// RecordStart stores a session returned by StartSession. Starting a
// session the server linked to an existing one marks it running again
// and drops the outcome of its previous end.
func (j *Journal) RecordStart(ctx context.Context, session *connector.RunningSession, meta StartMeta) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO sessions (session_id, session_url, is_new, app, scenario, batch_id, batch_name, started_at, state)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			session_url = excluded.session_url,
			is_new      = excluded.is_new,
			state       = excluded.state,
			started_at  = excluded.started_at,
			ended_at    = NULL,
			aborted     = 0,
			saved       = 0,
			steps = NULL, matches = NULL, mismatches = NULL, missing = NULL,
			exact_matches = NULL, strict_matches = NULL, content_matches = NULL,
			layout_matches = NULL, none_matches = NULL`,
		session.ID(), session.URL(), boolInt(session.IsNewSession()),
		meta.App, meta.Scenario, meta.BatchID, meta.BatchName,
		formatTime(j.now()), StateRunning)
	if err != nil {
		return j.writeErr(err)
	}
	internal.LogDebug("Journaled session %s (new=%v)", session.ID(), session.IsNewSession())
	return nil
}

// RecordMatch appends a match step to a running session and returns its
// step number, starting at 1.
func (j *Journal) RecordMatch(ctx context.Context, sessionID, tag, source string, result *connector.MatchResult) (int, error) {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, j.writeErr(err)
	}
	defer func() { _ = tx.Rollback() }()

	var state string
	err = tx.QueryRowContext(ctx, `SELECT state FROM sessions WHERE session_id = ?`, sessionID).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%s: %w", sessionID, internal.ErrSessionNotFound)
	}
	if err != nil {
		return 0, j.readErr(err)
	}
	if state != StateRunning {
		return 0, fmt.Errorf("%s: %w", sessionID, internal.ErrSessionClosed)
	}

	var step int
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(step), 0) + 1 FROM steps WHERE session_id = ?`, sessionID).Scan(&step)
	if err != nil {
		return 0, j.readErr(err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO steps (session_id, step, tag, source, as_expected, matched_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, step, tag, source, boolInt(result.AsExpected), formatTime(j.now()))
	if err != nil {
		return 0, j.writeErr(err)
	}
	if err := tx.Commit(); err != nil {
		return 0, j.writeErr(err)
	}
	return step, nil
}

// RecordEnd stores the outcome of EndSession
func (j *Journal) RecordEnd(ctx context.Context, sessionID string, aborted, saved bool, results *connector.SessionResults) error {
	state := StateEnded
	if aborted {
		state = StateAborted
	}
	if results == nil {
		results = &connector.SessionResults{}
	}

	res, err := j.db.ExecContext(ctx, `
		UPDATE sessions SET
			state = ?, ended_at = ?, aborted = ?, saved = ?,
			steps = ?, matches = ?, mismatches = ?, missing = ?,
			exact_matches = ?, strict_matches = ?, content_matches = ?,
			layout_matches = ?, none_matches = ?
		WHERE session_id = ?`,
		state, formatTime(j.now()), boolInt(aborted), boolInt(saved),
		nullInt(results.Steps), nullInt(results.Matches), nullInt(results.Mismatches), nullInt(results.Missing),
		nullInt(results.ExactMatches), nullInt(results.StrictMatches), nullInt(results.ContentMatches),
		nullInt(results.LayoutMatches), nullInt(results.NoneMatches),
		sessionID)
	if err != nil {
		return j.writeErr(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", sessionID, internal.ErrSessionNotFound)
	}
	return nil
}

const sessionColumns = `session_id, session_url, is_new, app, scenario, batch_id, batch_name,
	started_at, state, ended_at, aborted, saved,
	steps, matches, mismatches, missing, exact_matches, strict_matches,
	content_matches, layout_matches, none_matches`

// Get returns a session with its steps
func (j *Journal) Get(ctx context.Context, sessionID string) (*Session, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE session_id = ?`, sessionID)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", sessionID, internal.ErrSessionNotFound)
	}
	if err != nil {
		return nil, j.readErr(err)
	}

	steps, err := j.Steps(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.Steps = steps
	return s, nil
}

// List returns all sessions, most recently started first, without steps
func (j *Journal) List(ctx context.Context) ([]*Session, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT `+sessionColumns+` FROM sessions ORDER BY started_at DESC, session_id`)
	if err != nil {
		return nil, j.readErr(err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, j.readErr(err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, j.readErr(err)
	}
	return sessions, nil
}

// Steps returns the match steps of a session in order
func (j *Journal) Steps(ctx context.Context, sessionID string) ([]Step, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT step, tag, source, as_expected, matched_at
		FROM steps WHERE session_id = ? ORDER BY step`, sessionID)
	if err != nil {
		return nil, j.readErr(err)
	}
	defer rows.Close()

	var steps []Step
	for rows.Next() {
		var (
			st         Step
			asExpected int
			matchedAt  string
		)
		if err := rows.Scan(&st.Step, &st.Tag, &st.Source, &asExpected, &matchedAt); err != nil {
			return nil, j.readErr(err)
		}
		st.AsExpected = asExpected != 0
		st.MatchedAt = parseTime(matchedAt)
		steps = append(steps, st)
	}
	if err := rows.Err(); err != nil {
		return nil, j.readErr(err)
	}
	return steps, nil
}

func (j *Journal) readErr(err error) error {
	return &internal.StorageError{Path: j.path, Op: "read", Err: err}
}

func (j *Journal) writeErr(err error) error {
	return &internal.StorageError{Path: j.path, Op: "write", Err: err}
}
