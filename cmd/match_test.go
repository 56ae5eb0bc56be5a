package cmd

import (
	"bytes"
	"errors"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/iksnae/visual-session/internal"
	"github.com/iksnae/visual-session/internal/connector"
)

func startTestSession(t *testing.T, env *testEnv) {
	t.Helper()
	if _, err := env.run(t, "start", "--app", "shop", "--test", "checkout"); err != nil {
		t.Fatalf("start error = %v", err)
	}
}

func TestMatchCommand(t *testing.T) {
	env := newTestEnv(t)
	startTestSession(t, env)
	img := env.image(t, "cart.png")

	out, err := env.run(t, "match", "abc", img, "--tag", "cart", "--title", "Cart page")
	if err != nil {
		t.Fatalf("match error = %v", err)
	}
	if !strings.Contains(out, "Step 1") || !strings.Contains(out, "matches the baseline") {
		t.Errorf("output = %q", out)
	}

	req := env.srv.LastRequest(t)
	if req.Method != http.MethodPost || req.SessionID != "abc" {
		t.Errorf("request = %s %s", req.Method, req.Path)
	}
	if ct := req.Header.Get("Content-Type"); ct != "application/octet-stream" {
		t.Errorf("Content-Type = %q", ct)
	}
	meta, image, err := connector.DecodeMatchWindowData(req.Body)
	if err != nil {
		t.Fatalf("DecodeMatchWindowData() error = %v", err)
	}
	if meta.Tag != "cart" || meta.AppOutput.Title != "Cart page" {
		t.Errorf("meta = %+v", meta)
	}
	want, _ := os.ReadFile(img)
	if !bytes.Equal(image, want) {
		t.Errorf("image bytes differ from the file")
	}

	s := env.session(t, "abc")
	if len(s.Steps) != 1 || s.Steps[0].Tag != "cart" || !s.Steps[0].AsExpected || s.Steps[0].Source != img {
		t.Errorf("steps = %+v", s.Steps)
	}
}

func TestMatchCommand_DefaultTagAndOrder(t *testing.T) {
	env := newTestEnv(t)
	startTestSession(t, env)

	for _, name := range []string{"one.png", "two.png"} {
		if _, err := env.run(t, "match", "abc", env.image(t, name)); err != nil {
			t.Fatalf("match %s error = %v", name, err)
		}
	}

	steps := env.session(t, "abc").Steps
	if len(steps) != 2 {
		t.Fatalf("got %d steps, want 2", len(steps))
	}
	for i, want := range []string{"one.png", "two.png"} {
		if steps[i].Step != i+1 || steps[i].Tag != want {
			t.Errorf("step %d = %+v, want tag %s", i, steps[i], want)
		}
	}
}

func TestMatchCommand_Raw(t *testing.T) {
	env := newTestEnv(t)
	startTestSession(t, env)
	img := env.image(t, "raw.png")

	if _, err := env.run(t, "match", "abc", img, "--raw"); err != nil {
		t.Fatalf("match error = %v", err)
	}
	want, _ := os.ReadFile(img)
	if got := env.srv.LastRequest(t).Body; !bytes.Equal(got, want) {
		t.Errorf("body = %q, want file content %q", got, want)
	}
}

func TestMatchCommand_Mismatch(t *testing.T) {
	env := newTestEnv(t)
	startTestSession(t, env)
	env.srv.Match.Body = `{"asExpected":false}`

	out, err := env.run(t, "match", "abc", env.image(t, "diff.png"))
	if err != nil {
		t.Fatalf("match error = %v, a mismatch is not an error", err)
	}
	if !strings.Contains(out, "differs from the baseline") {
		t.Errorf("output = %q", out)
	}
	if env.session(t, "abc").Steps[0].AsExpected {
		t.Error("journaled step AsExpected = true")
	}
}

func TestMatchCommand_ServerError(t *testing.T) {
	env := newTestEnv(t)
	startTestSession(t, env)
	env.srv.Match = testStub(http.StatusInternalServerError, `{"error":"boom"}`)

	_, err := env.run(t, "match", "abc", env.image(t, "x.png"))
	var reqErr *connector.ServerRequestError
	if !errors.As(err, &reqErr) || reqErr.Operation != connector.OpMatchWindow {
		t.Fatalf("error = %v, want matchWindow *ServerRequestError", err)
	}
	if n := len(env.session(t, "abc").Steps); n != 0 {
		t.Errorf("journal has %d steps after a failed match", n)
	}
}

func TestMatchCommand_UnknownSession(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "match", "missing", env.image(t, "x.png"))
	if !errors.Is(err, internal.ErrSessionNotFound) {
		t.Errorf("error = %v, want ErrSessionNotFound", err)
	}
	if n := len(env.srv.Requests()); n != 0 {
		t.Errorf("server got %d requests, want 0", n)
	}
}

func TestMatchCommand_MissingImage(t *testing.T) {
	env := newTestEnv(t)
	startTestSession(t, env)
	if _, err := env.run(t, "match", "abc", "/nonexistent.png"); err == nil {
		t.Fatal("match error = nil, want error")
	}
	if n := len(env.srv.Requests()); n != 1 {
		t.Errorf("server got %d requests, want only the start", n)
	}
}

func TestMatchCommand_Args(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.run(t, "match", "abc"); err == nil {
		t.Error("match with one argument should fail")
	}
}

func TestEndCommand(t *testing.T) {
	env := newTestEnv(t)
	startTestSession(t, env)

	out, err := env.run(t, "end", "abc", "--save")
	if err != nil {
		t.Fatalf("end error = %v", err)
	}
	if !strings.Contains(out, "Session passed") || !strings.Contains(out, "Strict") {
		t.Errorf("output = %q", out)
	}

	req := env.srv.LastRequest(t)
	if req.Method != http.MethodDelete || req.SessionID != "abc" {
		t.Errorf("request = %s %s", req.Method, req.Path)
	}
	if got := string(req.Body); got != `{"aborted":false,"updateBaseline":true}` {
		t.Errorf("body = %s", got)
	}

	s := env.session(t, "abc")
	if s.State != "ended" || !s.Saved || s.Aborted {
		t.Errorf("journaled state = %s saved=%v aborted=%v", s.State, s.Saved, s.Aborted)
	}
	if s.Results == nil || s.Results.StrictMatches == nil || *s.Results.StrictMatches != 1 {
		t.Errorf("results = %+v", s.Results)
	}
}

func TestEndCommand_FailOnDiff(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		body    string
		wantErr error
		state   string
	}{
		{
			name:  "passed",
			args:  []string{"--fail-on-diff"},
			body:  `{"steps":1,"matches":1,"mismatches":0,"missing":0}`,
			state: "ended",
		},
		{
			name:    "mismatch",
			args:    []string{"--fail-on-diff"},
			body:    `{"steps":2,"matches":1,"mismatches":1,"missing":0}`,
			wantErr: ErrDifferences,
			state:   "ended",
		},
		{
			name:    "missing",
			args:    []string{"--fail-on-diff"},
			body:    `{"steps":2,"matches":1,"mismatches":0,"missing":1}`,
			wantErr: ErrDifferences,
			state:   "ended",
		},
		{
			name:  "mismatch without flag",
			body:  `{"steps":2,"matches":1,"mismatches":1,"missing":0}`,
			state: "ended",
		},
		{
			name:  "aborted",
			args:  []string{"--fail-on-diff", "--abort"},
			body:  `{"steps":2,"matches":1,"mismatches":1,"missing":0}`,
			state: "aborted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			startTestSession(t, env)
			env.srv.End.Body = tt.body

			_, err := env.run(t, append([]string{"end", "abc"}, tt.args...)...)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("end error = %v, want %v", err, tt.wantErr)
			}
			if got := env.session(t, "abc").State; got != tt.state {
				t.Errorf("state = %s, want %s", got, tt.state)
			}
		})
	}
}

func TestEndCommand_AbsentCounts(t *testing.T) {
	env := newTestEnv(t)
	startTestSession(t, env)
	env.srv.End.Body = `{"steps":1}`

	out, err := env.run(t, "end", "abc")
	if err != nil {
		t.Fatalf("end error = %v", err)
	}
	if !strings.Contains(out, "n/a") {
		t.Errorf("output = %q, want absent counts shown as n/a", out)
	}
	r := env.session(t, "abc").Results
	if r.Steps == nil || *r.Steps != 1 || r.Matches != nil {
		t.Errorf("results = %+v", r)
	}
}

func TestEndCommand_AlreadyEnded(t *testing.T) {
	env := newTestEnv(t)
	startTestSession(t, env)
	if _, err := env.run(t, "end", "abc"); err != nil {
		t.Fatal(err)
	}

	for _, args := range [][]string{{"end", "abc"}, {"match", "abc", env.image(t, "late.png")}} {
		_, err := env.run(t, args...)
		if !errors.Is(err, internal.ErrSessionClosed) {
			t.Errorf("%s error = %v, want ErrSessionClosed", args[0], err)
		}
	}
	if n := len(env.srv.Requests()); n != 2 {
		t.Errorf("server got %d requests, want start and end only", n)
	}
}

func TestEndCommand_Rejected(t *testing.T) {
	env := newTestEnv(t)
	startTestSession(t, env)
	env.srv.End = testStub(http.StatusNotFound, `{"message":"no such session"}`)

	_, err := env.run(t, "end", "abc")
	var reqErr *connector.ServerRequestError
	if !errors.As(err, &reqErr) || reqErr.Status != http.StatusNotFound {
		t.Fatalf("error = %v, want 404 *ServerRequestError", err)
	}
	if !env.session(t, "abc").IsRunning() {
		t.Error("session should stay running when the server rejects the end")
	}
}
