package cmd

import (
	"context"
	"fmt"

	"github.com/iksnae/visual-session/internal"
	"github.com/spf13/cobra"
)

var (
	runApp        string
	runTest       string
	runBatch      string
	runBatchID    string
	runMatchLevel string
	runTitle      string
	runSave       bool
	runFailOnDiff bool
)

var runCmd = &cobra.Command{
	Use:   "run <image>...",
	Short: "Run a whole session over a list of screenshots",
	Long: `Start a session, submit every image in the given order and end the
session. Images are matched one at a time so steps keep their order.

If a match fails the session is ended as aborted and the error is
returned.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := buildStartInfo(runApp, runTest, runBatch, runBatchID, runMatchLevel)
		if err != nil {
			return err
		}
		conn, err := newConnector()
		if err != nil {
			return err
		}
		j, err := openJournal()
		if err != nil {
			return err
		}
		defer j.Close()

		ctx := cmd.Context()
		session, err := startSession(ctx, conn, j, info)
		if err != nil {
			return err
		}
		printSessionStarted(cmd, session, info)

		for _, path := range args {
			result, step, err := matchImage(ctx, conn, j, session, path, matchOptions{title: runTitle})
			if err != nil {
				// the context may be cancelled already; aborting still has to reach the server
				abortCtx := context.WithoutCancel(ctx)
				if _, abortErr := endSession(abortCtx, conn, j, session, true, false); abortErr != nil {
					internal.LogWarn("Failed to abort session %s: %v", session.ID(), abortErr)
				}
				return fmt.Errorf("match %s: %w", path, err)
			}
			printMatch(cmd, step, path, result)
		}

		results, err := endSession(ctx, conn, j, session, false, runSave)
		if err != nil {
			return err
		}
		printResults(cmd.OutOrStdout(), results)
		return checkResults(results, false, runFailOnDiff)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	addStartFlags(runCmd, &runApp, &runTest, &runBatch, &runBatchID, &runMatchLevel)
	runCmd.Flags().StringVar(&runTitle, "title", "", "Window title reported for every capture")
	runCmd.Flags().BoolVar(&runSave, "save", false, "Save the tested images as the new baseline")
	runCmd.Flags().BoolVar(&runFailOnDiff, "fail-on-diff", false, "Exit with an error when the session has differences")
}
