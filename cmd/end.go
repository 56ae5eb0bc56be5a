package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/iksnae/visual-session/internal"
	"github.com/iksnae/visual-session/internal/connector"
	"github.com/iksnae/visual-session/internal/journal"
	"github.com/spf13/cobra"
)

var (
	endAbort      bool
	endSave       bool
	endFailOnDiff bool
)

// ErrDifferences is returned with --fail-on-diff when a session did not pass
var ErrDifferences = errors.New("session has differences")

var endCmd = &cobra.Command{
	Use:   "end <session-id>",
	Short: "End a running session and show its results",
	Long: `Close a running session. The server returns the aggregated results,
which are printed and stored in the journal.

--abort ends the session without a verdict. --save stores the tested
images as the new baseline.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := newConnector()
		if err != nil {
			return err
		}
		j, err := openJournal()
		if err != nil {
			return err
		}
		defer j.Close()

		session, err := runningSession(cmd.Context(), j, args[0])
		if err != nil {
			return err
		}

		results, err := endSession(cmd.Context(), conn, j, session, endAbort, endSave)
		if err != nil {
			return err
		}
		printResults(cmd.OutOrStdout(), results)
		return checkResults(results, endAbort, endFailOnDiff)
	},
}

// endSession closes the session on the server and journals the results
func endSession(ctx context.Context, conn *connector.Connector, j *journal.Journal, session *connector.RunningSession, aborted, save bool) (*connector.SessionResults, error) {
	var results *connector.SessionResults
	err := internal.ShowProgress(ctx, "Ending session", func(ctx context.Context) error {
		var err error
		results, err = conn.EndSession(ctx, session, aborted, save)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := j.RecordEnd(ctx, session.ID(), aborted, save, results); err != nil {
		return nil, fmt.Errorf("session %s ended but not journaled: %w", session.ID(), err)
	}
	return results, nil
}

func checkResults(results *connector.SessionResults, aborted, failOnDiff bool) error {
	if !failOnDiff || aborted || results.IsPassed() {
		return nil
	}
	return ErrDifferences
}

func printResults(w io.Writer, r *connector.SessionResults) {
	rows := []struct {
		label string
		value *int
	}{
		{"Steps", r.Steps},
		{"Matches", r.Matches},
		{"Mismatches", r.Mismatches},
		{"Missing", r.Missing},
		{"Exact", r.ExactMatches},
		{"Strict", r.StrictMatches},
		{"Content", r.ContentMatches},
		{"Layout", r.LayoutMatches},
		{"None", r.NoneMatches},
	}
	for _, row := range rows {
		fmt.Fprintln(w, labelStyle.Width(12).Render(row.label)+valueStyle.Render(formatCount(row.value)))
	}
	if r.IsPassed() {
		internal.PrintSuccess(w, "Session passed")
	} else {
		internal.PrintWarning(w, "Session has differences")
	}
}

func formatCount(n *int) string {
	if n == nil {
		return "n/a"
	}
	return fmt.Sprintf("%d", *n)
}

func init() {
	rootCmd.AddCommand(endCmd)
	endCmd.Flags().BoolVar(&endAbort, "abort", false, "End the session without a verdict")
	endCmd.Flags().BoolVar(&endSave, "save", false, "Save the tested images as the new baseline")
	endCmd.Flags().BoolVar(&endFailOnDiff, "fail-on-diff", false, "Exit with an error when the session has differences")
}
