package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/visual-session/internal/journal"
	"github.com/spf13/cobra"
)

var (
	listState string
	listLimit int
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	stateStyles = map[string]lipgloss.Style{
		journal.StateRunning: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		journal.StateEnded:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		journal.StateAborted: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List journaled sessions",
	Long:  `List the sessions recorded in the local journal, most recent first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		switch listState {
		case "", journal.StateRunning, journal.StateEnded, journal.StateAborted:
		default:
			return fmt.Errorf("invalid state %q (valid: running, ended, aborted)", listState)
		}

		j, err := openJournal()
		if err != nil {
			return err
		}
		defer j.Close()

		sessions, err := j.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}

		sessions = filterSessions(sessions, listState, listLimit)
		displaySessions(cmd.OutOrStdout(), sessions, time.Now())
		return nil
	},
}

func filterSessions(sessions []*journal.Session, state string, limit int) []*journal.Session {
	filtered := make([]*journal.Session, 0, len(sessions))
	for _, s := range sessions {
		if state != "" && s.State != state {
			continue
		}
		filtered = append(filtered, s)
		if limit > 0 && len(filtered) == limit {
			break
		}
	}
	return filtered
}

func displaySessions(out io.Writer, sessions []*journal.Session, now time.Time) {
	if len(sessions) == 0 {
		fmt.Fprintln(out, headerStyle.Render("No sessions found"))
		return
	}

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("Found %d session(s)", len(sessions))))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, strings.Join([]string{
		titleStyle.Render("ID"), titleStyle.Render("App"), titleStyle.Render("Test"),
		titleStyle.Render("State"), titleStyle.Render("Steps"), titleStyle.Render("Started"),
	}, "\t")+"\t")

	for _, s := range sessions {
		steps := "-"
		if s.Results != nil && s.Results.Steps != nil {
			steps = fmt.Sprintf("%d", *s.Results.Steps)
		}
		_, _ = fmt.Fprintln(w, strings.Join([]string{
			s.SessionID,
			truncateText(s.App, 30),
			truncateText(s.Scenario, 30),
			renderState(s.State),
			steps,
			dateStyle.Render(formatRelativeTime(s.StartedAt, now)),
		}, "\t")+"\t")
	}
	_ = w.Flush()
}

func renderState(state string) string {
	if style, ok := stateStyles[state]; ok {
		return style.Render(state)
	}
	return state
}

func truncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// formatRelativeTime shows recent times compactly and older ones in full
func formatRelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	t = t.Local()
	diff := now.Sub(t)
	switch {
	case diff < 24*time.Hour:
		return t.Format("Today 15:04")
	case diff < 7*24*time.Hour:
		return t.Format("Mon 15:04")
	case diff < 365*24*time.Hour:
		return t.Format("Jan 02 15:04")
	default:
		return t.Format("2006-01-02")
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVar(&listState, "state", "", "Only show sessions in this state (running, ended, aborted)")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Show at most this many sessions")
}
