package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iksnae/visual-session/internal"
	"github.com/iksnae/visual-session/internal/export"
	"github.com/iksnae/visual-session/internal/journal"
	"github.com/spf13/cobra"
)

var (
	format    string
	outputDir string
	toStdout  bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export [session-id...]",
	Short: "Export session results to file",
	Long: `Export journaled sessions with their steps and results to various
formats (jsonl, md, yaml, json).

Without session ids every journaled session is exported.
Use 'visual-session list' to see available session IDs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}
		if toStdout && len(args) != 1 {
			return fmt.Errorf("--stdout needs exactly one session id")
		}

		j, err := openJournal()
		if err != nil {
			return err
		}
		defer j.Close()

		ctx := cmd.Context()
		sessions, err := loadSessions(ctx, j, args)
		if err != nil {
			return err
		}

		if toStdout {
			if err := exporter.Export(sessions[0], cmd.OutOrStdout()); err != nil {
				return &internal.ExportError{Format: format, Path: "-", Err: err}
			}
			return nil
		}

		if len(sessions) == 0 {
			internal.PrintWarning(cmd.OutOrStdout(), "No sessions to export")
			return nil
		}

		// Ensure output directory exists
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		msg := fmt.Sprintf("Exporting %d session(s) to %s", len(sessions), outputDir)
		err = internal.ShowProgress(ctx, msg, func(ctx context.Context) error {
			for _, session := range sessions {
				path := filepath.Join(outputDir, exportFileName(session.SessionID, exporter.Extension()))
				if err := exportToFile(exporter, session, path); err != nil {
					return &internal.ExportError{Format: format, Path: path, Err: err}
				}
			}
			return nil
		})
		if err != nil {
			return err
		}

		internal.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Export complete: %d session(s) exported to %s", len(sessions), outputDir))
		return nil
	},
}

// loadSessions returns the named sessions, or all of them, with their steps
func loadSessions(ctx context.Context, j *journal.Journal, ids []string) ([]*journal.Session, error) {
	if len(ids) == 0 {
		all, err := j.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, s := range all {
			ids = append(ids, s.SessionID)
		}
	}

	sessions := make([]*journal.Session, 0, len(ids))
	for _, id := range ids {
		s, err := j.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%w (use 'visual-session list' to see available sessions)", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

func exportToFile(exporter export.Exporter, session *journal.Session, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := exporter.Export(session, file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// exportFileName keeps session ids usable as file names
func exportFileName(sessionID, ext string) string {
	safe := make([]rune, 0, len(sessionID))
	for _, r := range sessionID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			safe = append(safe, r)
		default:
			safe = append(safe, '_')
		}
	}
	return fmt.Sprintf("session_%s.%s", string(safe), ext)
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Export format ("+strings.Join(export.Formats(), ", ")+")")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory")
	exportCmd.Flags().BoolVar(&toStdout, "stdout", false, "Write a single session to stdout instead of a file")
}
