package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/iksnae/visual-session/internal"
)

const (
	// DefaultTimeout is applied to every request unless overridden
	DefaultTimeout = 5 * time.Minute

	// APIPath is appended to the server URL to form the session endpoint
	APIPath = "/api/sessions/running"

	contentTypeJSON   = "application/json"
	contentTypeBinary = "application/octet-stream"
)

// Operation names reported in errors
const (
	OpStartSession = "startSession"
	OpMatchWindow  = "matchWindow"
	OpEndSession   = "endSession"
)

// Connector talks to the running-sessions API of a visual testing server.
// It holds no per-session state and is safe for concurrent use.
type Connector struct {
	endpoint   string
	username   string
	password   string
	headers    http.Header
	httpClient *http.Client
	timeout    time.Duration
}

// Option configures the connector.
type Option func(*Connector)

// WithHTTPClient sets a custom HTTP client. The client is never modified;
// the connector's timeout still applies to every request.
func WithHTTPClient(c *http.Client) Option {
	return func(conn *Connector) {
		conn.httpClient = c
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(conn *Connector) {
		conn.timeout = d
	}
}

// New creates a connector for the given server. No request is made.
func New(serverURL, username, password string, opts ...Option) *Connector {
	c := &Connector{
		endpoint: URLConcat(serverURL, APIPath),
		username: username,
		password: password,
		headers: http.Header{
			"Accept":       []string{contentTypeJSON},
			"Content-Type": []string{contentTypeJSON},
		},
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the running-sessions endpoint URL.
func (c *Connector) Endpoint() string {
	return c.endpoint
}

// Timeout returns the per-request timeout.
func (c *Connector) Timeout() time.Duration {
	return c.timeout
}

// StartSession opens a running session on the server. Depending on the
// start info the server either links it to an existing session (200) or
// creates a new one (201).
func (c *Connector) StartSession(ctx context.Context, startInfo SessionStartInfo) (*RunningSession, error) {
	body, err := json.Marshal(startSessionRequest{StartInfo: startInfo})
	if err != nil {
		return nil, fmt.Errorf("%s: marshal: %w", OpStartSession, err)
	}

	resp, err := c.do(ctx, OpStartSession, http.MethodPost, c.endpoint, c.headers, body)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, newServerRequestError(OpStartSession, resp.status, resp.body)
	}

	var out startSessionResponse
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return nil, &TransportError{Operation: OpStartSession, URL: c.endpoint, Status: resp.status, Err: err}
	}
	if out.ID == "" {
		return nil, &TransportError{Operation: OpStartSession, URL: c.endpoint, Status: resp.status, Err: ErrEmptySessionID}
	}

	return &RunningSession{
		id:           string(out.ID),
		url:          out.URL,
		isNewSession: resp.status == http.StatusCreated,
	}, nil
}

// EndSession closes a running session and returns the aggregated results.
// isAborted marks the session as ended without a verdict; save asks the
// server to store the tested images as the new baseline.
func (c *Connector) EndSession(ctx context.Context, session *RunningSession, isAborted, save bool) (*SessionResults, error) {
	body, err := json.Marshal(endSessionRequest{Aborted: isAborted, UpdateBaseline: save})
	if err != nil {
		return nil, fmt.Errorf("%s: marshal: %w", OpEndSession, err)
	}
	internal.LogDebug("end session: %s", body)

	target, err := c.sessionURL(OpEndSession, session)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, OpEndSession, http.MethodDelete, target, c.headers, body)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, newServerRequestError(OpEndSession, resp.status, resp.body)
	}

	var results SessionResults
	if err := json.Unmarshal(resp.body, &results); err != nil {
		return nil, &TransportError{Operation: OpEndSession, URL: target, Status: resp.status, Err: err}
	}
	return &results, nil
}

// MatchWindow submits one capture for comparison against the baseline.
// The body is sent as octet-stream; the connector's base headers stay
// untouched.
func (c *Connector) MatchWindow(ctx context.Context, session *RunningSession, data MatchWindowData) (*MatchResult, error) {
	target, err := c.sessionURL(OpMatchWindow, session)
	if err != nil {
		return nil, err
	}

	headers := c.headers.Clone()
	headers.Set("Content-Type", contentTypeBinary)

	resp, err := c.do(ctx, OpMatchWindow, http.MethodPost, target, headers, data)
	if err != nil {
		return nil, err
	}

	if !resp.ok() {
		var detail any
		if err := json.Unmarshal(resp.body, &detail); err != nil {
			return nil, &TransportError{Operation: OpMatchWindow, URL: target, Status: resp.status, Err: fmt.Errorf("unparseable error body: %w", err)}
		}
		return nil, &ServerRequestError{Operation: OpMatchWindow, Status: resp.status, Body: resp.body, Detail: detail}
	}

	var result MatchResult
	if err := json.Unmarshal(resp.body, &result); err != nil {
		return nil, &TransportError{Operation: OpMatchWindow, URL: target, Status: resp.status, Err: err}
	}
	return &result, nil
}

// sessionURL addresses one session. An empty id would collapse onto the
// collection endpoint, so it is refused.
func (c *Connector) sessionURL(op string, session *RunningSession) (string, error) {
	if session == nil || session.ID() == "" {
		return "", fmt.Errorf("%s: %w", op, ErrEmptySessionID)
	}
	return URLConcat(c.endpoint, url.PathEscape(session.ID())), nil
}

type response struct {
	status int
	body   []byte
}

func (r *response) ok() bool {
	return r.status == http.StatusOK || r.status == http.StatusCreated
}

// do performs one request and reads the whole response body. Any failure
// before a complete response is available is a TransportError.
func (c *Connector) do(ctx context.Context, op, method, target string, headers http.Header, body []byte) (*response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Operation: op, URL: target, Err: err}
	}
	req.Header = headers.Clone()
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Operation: op, URL: target, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Operation: op, URL: target, Status: resp.StatusCode, Err: err}
	}
	return &response{status: resp.StatusCode, body: data}, nil
}
