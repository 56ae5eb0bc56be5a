package connector

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrEmptySessionID is returned when a session has no server-assigned id
var ErrEmptySessionID = errors.New("empty session id")

// ServerRequestError is returned when the server answers with a status
// other than 200 or 201.
type ServerRequestError struct {
	Operation string
	Status    int
	Body      []byte
	Detail    any // Body decoded as JSON, nil if it was not JSON
}

func newServerRequestError(op string, status int, body []byte) *ServerRequestError {
	e := &ServerRequestError{Operation: op, Status: status, Body: body}
	var detail any
	if err := json.Unmarshal(body, &detail); err == nil {
		e.Detail = detail
	}
	return e
}

func (e *ServerRequestError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("server request error [%s]: status %d", e.Operation, e.Status)
	}
	return fmt.Sprintf("server request error [%s]: status %d: %s", e.Operation, e.Status, truncate(e.Body, 512))
}

// TransportError is returned when no usable response was received: the
// request could not be sent, timed out, or its body could not be read or
// decoded.
type TransportError struct {
	Operation string
	URL       string
	Status    int // 0 when no response arrived
	Err       error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("transport error [%s] %s (status %d): %v", e.Operation, e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("transport error [%s] %s: %v", e.Operation, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
