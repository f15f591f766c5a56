package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sessionintel/session-intel/pkg/ingest"
	"github.com/sessionintel/session-intel/pkg/logger"
	"github.com/sessionintel/session-intel/pkg/patterns"
	"github.com/sessionintel/session-intel/pkg/store"
)

var ingestOpts ingest.Options

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest Claude Code session transcripts",
	Long: `Scans ~/.claude/projects for session JSONL files, classifies each message,
and writes per-session aggregates to the local database. Unchanged sessions
(same modification time as last ingest) are skipped.

Examples:
  session-intel ingest                  # Everything under ~/.claude/projects
  session-intel ingest --hours 24      # Only sessions modified in the last day
  session-intel ingest --project my-app # Only one project
  session-intel ingest --force         # Re-ingest even unchanged sessions`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Info("Running ingest command (hours=%d, project=%q, force=%v)",
			ingestOpts.Hours, ingestOpts.Project, ingestOpts.Force)

		st, err := store.Open()
		if err != nil {
			return fmt.Errorf("failed to open session store: %w", err)
		}
		defer st.Close()

		summary, err := ingest.Run(st, patterns.Default(), ingestOpts)
		if err != nil {
			return err
		}
		fmt.Println(summary)
		return nil
	},
}

func init() {
	ingestCmd.Flags().IntVar(&ingestOpts.Hours, "hours", 0, "Only sessions modified in the last N hours (0 = all)")
	ingestCmd.Flags().StringVar(&ingestOpts.Project, "project", "", "Only sessions whose project name contains this substring")
	ingestCmd.Flags().BoolVar(&ingestOpts.Force, "force", false, "Re-ingest sessions even when unchanged")
	rootCmd.AddCommand(ingestCmd)
}
