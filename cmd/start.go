package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/visual-session/internal"
	"github.com/iksnae/visual-session/internal/connector"
	"github.com/iksnae/visual-session/internal/journal"
	"github.com/spf13/cobra"
)

var (
	startApp        string
	startTest       string
	startBatch      string
	startBatchID    string
	startMatchLevel string
	startBranch     string
	startOS         string
	startHostingApp string
	startPrintID    bool
)

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Width(10)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212"))
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a running session",
	Long: `Open a running session on the server and record it in the journal.

The server either links the start request to an existing session or
creates a new one; both are reported.`,
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

		info, err := buildStartInfo(startApp, startTest, startBatch, startBatchID, startMatchLevel)
		if err != nil {
			return err
		}
		info.BranchName = startBranch
		if startOS != "" || startHostingApp != "" {
			info.Environment = &connector.Environment{OS: startOS, HostingApp: startHostingApp}
		}

		session, err := startSession(cmd.Context(), conn, j, info)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if startPrintID {
			fmt.Fprintln(w, session.ID())
			return nil
		}
		printSessionStarted(cmd, session, info)
		return nil
	},
}

func buildStartInfo(app, test, batchName, batchID, matchLevel string) (*connector.StartInfo, error) {
	if app == "" || test == "" {
		return nil, fmt.Errorf("--app and --test are required")
	}
	if matchLevel != "" && !connector.IsValidMatchLevel(matchLevel) {
		return nil, fmt.Errorf("invalid match level %q", matchLevel)
	}

	batch := connector.NewBatchInfo(batchName)
	if batchID != "" {
		batch.ID = batchID
	}
	return &connector.StartInfo{
		AgentID:          "visual-session/" + version,
		AppIDOrName:      app,
		ScenarioIDOrName: test,
		BatchInfo:        batch,
		MatchLevel:       matchLevel,
	}, nil
}

// startSession opens the session on the server and journals it
func startSession(ctx context.Context, conn *connector.Connector, j *journal.Journal, info *connector.StartInfo) (*connector.RunningSession, error) {
	var session *connector.RunningSession
	err := internal.ShowProgress(ctx, "Starting session", func(ctx context.Context) error {
		var err error
		session, err = conn.StartSession(ctx, info)
		return err
	})
	if err != nil {
		return nil, err
	}

	meta := journal.StartMeta{
		App:       info.AppIDOrName,
		Scenario:  info.ScenarioIDOrName,
		BatchID:   info.BatchInfo.ID,
		BatchName: info.BatchInfo.Name,
	}
	if err := j.RecordStart(ctx, session, meta); err != nil {
		return nil, fmt.Errorf("session %s started but not journaled: %w", session.ID(), err)
	}
	return session, nil
}

func printSessionStarted(cmd *cobra.Command, session *connector.RunningSession, info *connector.StartInfo) {
	w := cmd.OutOrStdout()
	if session.IsNewSession() {
		internal.PrintSuccess(w, "New session started")
	} else {
		internal.PrintSuccess(w, "Linked to existing session")
	}
	fmt.Fprintln(w, labelStyle.Render("ID")+valueStyle.Render(session.ID()))
	if session.URL() != "" {
		fmt.Fprintln(w, labelStyle.Render("URL")+valueStyle.Render(session.URL()))
	}
	fmt.Fprintln(w, labelStyle.Render("Batch")+valueStyle.Render(info.BatchInfo.ID))
}

func init() {
	rootCmd.AddCommand(startCmd)
	addStartFlags(startCmd, &startApp, &startTest, &startBatch, &startBatchID, &startMatchLevel)
	startCmd.Flags().StringVar(&startBranch, "branch", "", "Branch name")
	startCmd.Flags().StringVar(&startOS, "os", "", "Operating system reported in the environment")
	startCmd.Flags().StringVar(&startHostingApp, "hosting-app", "", "Hosting application reported in the environment")
	startCmd.Flags().BoolVar(&startPrintID, "print-id", false, "Print only the session id")
}

func addStartFlags(c *cobra.Command, app, test, batch, batchID, matchLevel *string) {
	c.Flags().StringVar(app, "app", "", "Application id or name (required)")
	c.Flags().StringVar(test, "test", "", "Scenario id or name (required)")
	c.Flags().StringVar(batch, "batch", "", "Batch name")
	c.Flags().StringVar(batchID, "batch-id", "", "Batch id to join (default: a new id)")
	c.Flags().StringVar(matchLevel, "match-level", "", "Match level: None, Layout, Content, Strict or Exact")
}
