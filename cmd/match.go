package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iksnae/visual-session/internal"
	"github.com/iksnae/visual-session/internal/connector"
	"github.com/iksnae/visual-session/internal/journal"
	"github.com/spf13/cobra"
)

var (
	matchTag            string
	matchTitle          string
	matchRaw            bool
	matchIgnoreMismatch bool
)

var matchCmd = &cobra.Command{
	Use:   "match <session-id> <image>",
	Short: "Submit a screenshot to a running session",
	Long: `Send one screenshot to a running session for comparison against the
baseline. The image is framed with its tag and title unless --raw is set,
in which case the file is sent unchanged.

A mismatch is reported but is not an error; use "end --fail-on-diff" to
fail on mismatches.`,
	Args: cobra.ExactArgs(2),
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

		opts := matchOptions{tag: matchTag, title: matchTitle, raw: matchRaw, ignoreMismatch: matchIgnoreMismatch}
		result, step, err := matchImage(cmd.Context(), conn, j, session, args[1], opts)
		if err != nil {
			return err
		}
		printMatch(cmd, step, args[1], result)
		return nil
	},
}

type matchOptions struct {
	tag            string
	title          string
	raw            bool
	ignoreMismatch bool
}

// runningSession loads a journaled session that can still accept matches
func runningSession(ctx context.Context, j *journal.Journal, id string) (*connector.RunningSession, error) {
	s, err := j.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.IsRunning() {
		return nil, fmt.Errorf("session %s is %s: %w", id, s.State, internal.ErrSessionClosed)
	}
	return s.Handle(), nil
}

// matchImage sends one image file and journals the step
func matchImage(ctx context.Context, conn *connector.Connector, j *journal.Journal, session *connector.RunningSession, path string, opts matchOptions) (*connector.MatchResult, int, error) {
	image, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read image: %w", err)
	}

	tag := opts.tag
	if tag == "" {
		tag = filepath.Base(path)
	}

	data := connector.MatchWindowData(image)
	if !opts.raw {
		meta := connector.MatchWindowMeta{
			Tag:            tag,
			IgnoreMismatch: opts.ignoreMismatch,
			AppOutput:      connector.AppOutput{Title: opts.title},
		}
		data, err = connector.EncodeMatchWindowData(meta, image)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", path, err)
		}
	}

	var result *connector.MatchResult
	err = internal.ShowProgress(ctx, fmt.Sprintf("Matching %s", tag), func(ctx context.Context) error {
		var err error
		result, err = conn.MatchWindow(ctx, session, data)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	step, err := j.RecordMatch(ctx, session.ID(), tag, path, result)
	if err != nil {
		return nil, 0, err
	}
	internal.LogDebug("Session %s step %d as expected: %v", session.ID(), step, result.AsExpected)
	return result, step, nil
}

func printMatch(cmd *cobra.Command, step int, path string, result *connector.MatchResult) {
	w := cmd.OutOrStdout()
	msg := fmt.Sprintf("Step %d: %s", step, path)
	if result.AsExpected {
		internal.PrintSuccess(w, msg+" matches the baseline")
	} else {
		internal.PrintWarning(w, msg+" differs from the baseline")
	}
}

func init() {
	rootCmd.AddCommand(matchCmd)
	matchCmd.Flags().StringVar(&matchTag, "tag", "", "Step tag (default: image file name)")
	matchCmd.Flags().StringVar(&matchTitle, "title", "", "Window title of the capture")
	matchCmd.Flags().BoolVar(&matchRaw, "raw", false, "Send the file as the request body without framing")
	matchCmd.Flags().BoolVar(&matchIgnoreMismatch, "ignore-mismatch", false, "Do not count a mismatch of this step")
}
