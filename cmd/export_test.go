package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/visual-session/internal"
	"github.com/iksnae/visual-session/internal/journal"
)

func TestExportCommand_Stdout(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.run(t, "run", "--app", "shop", "--test", "t", env.image(t, "a.png"), env.image(t, "b.png")); err != nil {
		t.Fatalf("run error = %v", err)
	}

	out, err := env.run(t, "export", "abc", "--format", "json", "--stdout")
	if err != nil {
		t.Fatalf("export error = %v", err)
	}

	var s journal.Session
	if err := json.Unmarshal([]byte(out), &s); err != nil {
		t.Fatalf("export output is not JSON: %v\n%s", err, out)
	}
	if s.SessionID != "abc" || s.App != "shop" || len(s.Steps) != 2 {
		t.Errorf("exported session = %+v", s)
	}
	if s.Results == nil || s.Results.Steps == nil || *s.Results.Steps != 1 {
		t.Errorf("exported results = %+v", s.Results)
	}
}

func TestExportCommand_Files(t *testing.T) {
	tests := []struct {
		format string
		ext    string
		want   string
	}{
		{"json", "json", `"session_id": "abc"`},
		{"jsonl", "jsonl", `"type":"session"`},
		{"yaml", "yaml", "session_id: abc"},
		{"md", "md", "# Session abc"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			env := newTestEnv(t)
			if _, err := env.run(t, "run", "--app", "shop", "--test", "t", env.image(t, "a.png")); err != nil {
				t.Fatalf("run error = %v", err)
			}

			outDir := filepath.Join(env.dir, "exports")
			out, err := env.run(t, "export", "--format", tt.format, "--out", outDir)
			if err != nil {
				t.Fatalf("export error = %v", err)
			}
			if !strings.Contains(out, "1 session(s) exported") {
				t.Errorf("output = %q", out)
			}

			data, err := os.ReadFile(filepath.Join(outDir, "session_abc."+tt.ext))
			if err != nil {
				t.Fatalf("exported file: %v", err)
			}
			if !strings.Contains(string(data), tt.want) {
				t.Errorf("exported %s missing %q:\n%s", tt.format, tt.want, data)
			}
		})
	}
}

func TestExportCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		is   error
	}{
		{"invalid format", []string{"export", "--format", "invalid"}, nil},
		{"stdout without id", []string{"export", "--stdout"}, nil},
		{"unknown session", []string{"export", "nope"}, internal.ErrSessionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			_, err := env.run(t, tt.args...)
			if err == nil {
				t.Fatal("export error = nil, want error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("export error = %v, want %v", err, tt.is)
			}
		})
	}
}

func TestExportCommand_Empty(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run(t, "export", "--out", filepath.Join(env.dir, "exports"))
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	if !strings.Contains(out, "No sessions to export") {
		t.Errorf("output = %q", out)
	}
}

func TestExportFileName(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"abc-123", "session_abc-123.json"},
		{"a/b c", "session_a_b_c.json"},
		{"../x", "session_.._x.json"},
	}
	for _, tt := range tests {
		if got := exportFileName(tt.id, "json"); got != tt.want {
			t.Errorf("exportFileName(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
