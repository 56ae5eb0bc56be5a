package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/iksnae/visual-session/internal"
	"github.com/iksnae/visual-session/internal/journal"
	"github.com/iksnae/visual-session/testutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// testEnv isolates a command run from the user's home, environment and
// journal, and points it at a stub server.
type testEnv struct {
	srv     *testutil.StubServer
	journal string
	dir     string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv(internal.EnvServerURL, "")
	t.Setenv(internal.EnvUsername, "")
	t.Setenv(internal.EnvPassword, "")

	dir := t.TempDir()
	return &testEnv{
		srv:     testutil.NewStubServer(t),
		journal: filepath.Join(dir, "journal.db"),
		dir:     dir,
	}
}

// run executes the root command with connection flags prepended
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	full := append([]string{
		"--server", e.srv.URL,
		"--journal", e.journal,
		"--username", "user",
		"--password", "secret",
	}, args...)
	return executeCommand(t, full...)
}

// session reads a session back from the journal
func (e *testEnv) session(t *testing.T, id string) *journal.Session {
	t.Helper()
	j, err := journal.Open(e.journal)
	if err != nil {
		t.Fatalf("journal.Open() error = %v", err)
	}
	defer j.Close()

	s, err := j.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("journal Get(%q) error = %v", id, err)
	}
	return s
}

func (e *testEnv) image(t *testing.T, name string) string {
	t.Helper()
	return testutil.CreateImageFixture(t, e.dir, name)
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags restores every flag to its default so runs do not leak state
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func testStub(status int, body string) testutil.StubResponse {
	return testutil.StubResponse{Status: status, Body: body}
}
