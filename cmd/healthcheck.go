package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var healthcheckProbeTimeout time.Duration

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check configuration, journal and server reachability",
	Long: `Check the health of visual-session by verifying:
  • The configuration is complete and valid
  • The session journal can be opened
  • The server endpoint answers HTTP requests

This command is useful for debugging setup issues, especially in CI/CD environments.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, sectionStyle.Render("Visual Session Health Check"))
		fmt.Fprintln(w)

		failed := 0

		// Step 1: Configuration
		fmt.Fprintln(w, infoStyle.Render("Step 1: Checking configuration..."))
		conn, err := newConnector()
		if err != nil {
			fmt.Fprintln(w, errorStyle.Render("❌ Invalid configuration:"), err)
			failed++
		} else {
			fmt.Fprintln(w, successStyle.Render("✅ Configuration valid"))
			if verbose {
				fmt.Fprintf(w, "   Endpoint: %s\n", conn.Endpoint())
				fmt.Fprintf(w, "   Timeout: %s\n", conn.Timeout())
				if cfg.Username == "" {
					fmt.Fprintln(w, "   No username set")
				}
			}
		}
		fmt.Fprintln(w)

		// Step 2: Journal
		fmt.Fprintln(w, infoStyle.Render("Step 2: Opening session journal..."))
		if n, err := checkJournal(cmd.Context()); err != nil {
			fmt.Fprintln(w, errorStyle.Render("❌ Journal not accessible:"), err)
			failed++
		} else {
			fmt.Fprintln(w, successStyle.Render(fmt.Sprintf("✅ Journal ready (%d session(s))", n)))
			if verbose {
				fmt.Fprintf(w, "   Database: %s\n", cfg.JournalPath)
			}
		}
		fmt.Fprintln(w)

		// Step 3: Server
		fmt.Fprintln(w, infoStyle.Render("Step 3: Contacting server..."))
		if conn == nil {
			fmt.Fprintln(w, errorStyle.Render("❌ Skipped: no valid server configured"))
		} else if status, err := probeServer(cmd.Context(), conn.Endpoint(), healthcheckProbeTimeout); err != nil {
			fmt.Fprintln(w, errorStyle.Render("❌ Server unreachable:"), err)
			failed++
		} else {
			fmt.Fprintln(w, successStyle.Render(fmt.Sprintf("✅ Server reachable (HTTP %d)", status)))
		}
		fmt.Fprintln(w)

		// Summary
		fmt.Fprintln(w, sectionStyle.Render("Summary"))
		fmt.Fprintln(w)
		if failed > 0 {
			fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("❌ Health check failed (%d problem(s))", failed)))
			return fmt.Errorf("health check failed: %d problem(s)", failed)
		}
		fmt.Fprintln(w, successStyle.Render("✅ Health check passed!"))
		return nil
	},
}

func checkJournal(ctx context.Context) (int, error) {
	j, err := openJournal()
	if err != nil {
		return 0, err
	}
	defer j.Close()

	sessions, err := j.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(sessions), nil
}

// probeServer reports the status of a plain GET. Any HTTP answer counts as
// reachable; only transport failures are errors.
func probeServer(ctx context.Context, target string, timeout time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().DurationVar(&healthcheckProbeTimeout, "probe-timeout", 10*time.Second, "Timeout for the server reachability check")
}
