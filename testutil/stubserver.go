package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// RecordedRequest is a request captured by StubServer
type RecordedRequest struct {
	Method    string
	Path      string
	SessionID string
	Header    http.Header
	Body      []byte
	Username  string
	Password  string
}

// StubResponse is a canned reply
type StubResponse struct {
	Status int
	Body   string
}

// StubServer is an httptest server that speaks the running-sessions API
// with canned responses.
type StubServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []RecordedRequest

	Start StubResponse
	Match StubResponse
	End   StubResponse
}

// NewStubServer starts a stub server that answers every call with success
// defaults. Tests override Start, Match and End before issuing requests.
func NewStubServer(t *testing.T) *StubServer {
	t.Helper()
	s := &StubServer{
		Start: StubResponse{Status: http.StatusCreated, Body: `{"id":"abc","url":"http://x/abc"}`},
		Match: StubResponse{Status: http.StatusOK, Body: `{"asExpected":true}`},
		End: StubResponse{Status: http.StatusOK, Body: `{"steps":1,"matches":1,"mismatches":0,"missing":0,` +
			`"exactMatches":0,"strictMatches":1,"contentMatches":0,"layoutMatches":0,"noneMatches":0}`},
	}

	r := chi.NewRouter()
	r.Route("/api/sessions/running", func(r chi.Router) {
		r.Post("/", s.handle(func() StubResponse { return s.Start }))
		r.Post("/{sessionID}", s.handle(func() StubResponse { return s.Match }))
		r.Delete("/{sessionID}", s.handle(func() StubResponse { return s.End }))
	})

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

func (s *StubServer) handle(reply func() StubResponse) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		user, pass, _ := r.BasicAuth()

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:    r.Method,
			Path:      r.URL.Path,
			SessionID: chi.URLParam(r, "sessionID"),
			Header:    r.Header.Clone(),
			Body:      body,
			Username:  user,
			Password:  pass,
		})
		resp := reply()
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.Status)
		_, _ = io.WriteString(w, resp.Body)
	}
}

// Requests returns a copy of all recorded requests in arrival order
func (s *StubServer) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request. It fails the test if none
// was recorded.
func (s *StubServer) LastRequest(t *testing.T) RecordedRequest {
	t.Helper()
	reqs := s.Requests()
	if len(reqs) == 0 {
		t.Fatal("stub server received no requests")
	}
	return reqs[len(reqs)-1]
}
