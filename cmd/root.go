package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iksnae/visual-session/internal"
	"github.com/iksnae/visual-session/internal/connector"
	"github.com/iksnae/visual-session/internal/journal"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	configPath  string
	serverURL   string
	username    string
	password    string
	journalPath string
	logFile     string
	timeout     time.Duration
	version     string = "dev"
	commit      string = "unknown"
	date        string = "unknown"
)

// cfg is the resolved configuration for the running command
var cfg *internal.Config

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "visual-session",
	Short: "Drive visual test sessions against a visual testing server",
	Long: `A CLI client for the running-sessions API of a visual testing server.

Open a session, submit screenshots for comparison against the baseline
and close the session to get its results. Every session is recorded in
a local journal so a session can span several invocations.

Quick Start:
  visual-session start --app shop --test checkout --print-id
  visual-session match <session-id> screenshot.png --tag cart
  visual-session end <session-id> --save
  visual-session run --app shop --test checkout shots/*.png`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		internal.SetVerbose(verbose)

		loaded, err := internal.LoadConfig(configPath)
		if err != nil {
			return err
		}
		applyFlags(cmd, loaded)
		cfg = loaded

		if cfg.LogFile != "" {
			internal.SetLogFile(cfg.LogFile)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		internal.CloseLogFile()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// applyFlags lets explicitly set flags win over file and environment values
func applyFlags(cmd *cobra.Command, c *internal.Config) {
	flags := cmd.Flags()
	if flags.Changed("server") {
		c.ServerURL = serverURL
	}
	if flags.Changed("username") {
		c.Username = username
	}
	if flags.Changed("password") {
		c.Password = password
	}
	if flags.Changed("journal") {
		c.JournalPath = journalPath
	}
	if flags.Changed("log-file") {
		c.LogFile = logFile
	}
	if flags.Changed("timeout") {
		c.Timeout = timeout
	}
}

// newConnector validates the configuration and builds a connector from it
func newConnector() (*connector.Connector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return connector.New(cfg.ServerURL, cfg.Username, cfg.Password, connector.WithTimeout(cfg.Timeout)), nil
}

func openJournal() (*journal.Journal, error) {
	return journal.Open(cfg.JournalPath)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVar(&configPath, "config", "", "Config file (default ~/.visual-session/config.yaml)")
	flags.StringVar(&serverURL, "server", "", "Server URL (overrides config and "+internal.EnvServerURL+")")
	flags.StringVar(&username, "username", "", "Server username")
	flags.StringVar(&password, "password", "", "Server password")
	flags.StringVar(&journalPath, "journal", "", "Session journal database path")
	flags.StringVar(&logFile, "log-file", "", "Also write logs to this file, rotated by size")
	flags.DurationVar(&timeout, "timeout", connector.DefaultTimeout, "Per-request timeout")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
