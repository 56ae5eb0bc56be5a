package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/visual-session/internal/journal"
	"github.com/spf13/cobra"
)

var showLimit int

var (
	// Styles for show command
	sessionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				Padding(0, 1).
				MarginBottom(1)

	sessionMetaStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				MarginBottom(1)

	passStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	diffStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show the steps and results of a session",
	Long:  `Display a journaled session: its start details, every match step and, once ended, the results.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		j, err := openJournal()
		if err != nil {
			return err
		}
		defer j.Close()

		session, err := j.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		displaySession(cmd.OutOrStdout(), session, showLimit)
		return nil
	},
}

func displaySession(w io.Writer, s *journal.Session, limit int) {
	title := s.SessionID
	if s.App != "" || s.Scenario != "" {
		title = fmt.Sprintf("%s / %s", s.App, s.Scenario)
	}
	fmt.Fprintln(w, sessionHeaderStyle.Render(title))

	metaParts := []string{
		fmt.Sprintf("ID: %s", s.SessionID),
		fmt.Sprintf("State: %s", s.State),
		fmt.Sprintf("Started: %s", s.StartedAt.Local().Format(time.DateTime)),
	}
	if s.EndedAt != nil {
		metaParts = append(metaParts, fmt.Sprintf("Ended: %s", s.EndedAt.Local().Format(time.DateTime)))
	}
	if s.BatchName != "" {
		metaParts = append(metaParts, fmt.Sprintf("Batch: %s", s.BatchName))
	}
	if s.Saved {
		metaParts = append(metaParts, "Baseline saved")
	}
	fmt.Fprintln(w, sessionMetaStyle.Render(strings.Join(metaParts, " • ")))
	if s.SessionURL != "" {
		fmt.Fprintln(w, s.SessionURL)
		fmt.Fprintln(w)
	}

	steps := s.Steps
	if limit > 0 && limit < len(steps) {
		steps = steps[:limit]
	}
	if len(s.Steps) == 0 {
		fmt.Fprintln(w, timestampStyle.Render("(no steps)"))
	}
	for _, st := range steps {
		fmt.Fprintln(w, formatStep(st))
	}
	if len(steps) < len(s.Steps) {
		fmt.Fprintln(w, timestampStyle.Render(fmt.Sprintf("... (%d more step(s))", len(s.Steps)-len(steps))))
	}

	if s.Results != nil {
		fmt.Fprintln(w)
		printResults(w, s.Results)
	}
}

func formatStep(st journal.Step) string {
	verdict := passStyle.Render("match")
	if !st.AsExpected {
		verdict = diffStyle.Render("diff")
	}
	line := fmt.Sprintf("[%d] %s %s", st.Step, verdict, st.Tag)
	if st.Source != "" && st.Source != st.Tag {
		line += " " + timestampStyle.Render(st.Source)
	}
	return line
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().IntVar(&showLimit, "limit", 0, "Show at most this many steps")
}
