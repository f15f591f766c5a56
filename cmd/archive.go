package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sessionintel/session-intel/pkg/archive"
	"github.com/sessionintel/session-intel/pkg/config"
	"github.com/sessionintel/session-intel/pkg/logger"
	"github.com/sessionintel/session-intel/pkg/store"
)

var (
	archiveProject   string
	archiveOlderThan time.Duration
	archiveVerify    bool
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Snapshot raw transcripts before Claude Code prunes them",
	Long: `Compresses each ingested session's raw JSONL transcript into
~/.session-intel/archive/ with zstd. Sessions whose snapshot is already
current are skipped.

Examples:
  session-intel archive
  session-intel archive --project my-app
  session-intel archive --older-than 720h   # Only sessions older than 30 days
  session-intel archive --verify            # Check existing snapshots`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Info("Running archive command (project=%q, older-than=%s, verify=%v)",
			archiveProject, archiveOlderThan, archiveVerify)

		archiveDir, err := config.GetArchiveDir()
		if err != nil {
			return err
		}
		st, err := store.Open()
		if err != nil {
			return fmt.Errorf("failed to open session store: %w", err)
		}
		defer st.Close()

		a := &archive.Archiver{Store: st, Dir: archiveDir}

		if archiveVerify {
			results, err := a.Verify(archiveProject)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Println("No archives to verify")
				return nil
			}
			bad := 0
			for _, r := range results {
				if r.OK() {
					continue
				}
				bad++
				if r.Err != nil {
					fmt.Printf("CORRUPT %s/%s: %v\n", r.Project, r.SessionID, r.Err)
				} else {
					fmt.Printf("SHORT   %s/%s: %d lines, %d messages stored\n",
						r.Project, r.SessionID, r.Lines, r.MessageCount)
				}
			}
			fmt.Printf("Verified %d archive(s), %d problem(s)\n", len(results), bad)
			return nil
		}

		summary, err := a.Run(archive.Options{Project: archiveProject, OlderThan: archiveOlderThan})
		if err != nil {
			return err
		}
		fmt.Println(summary)
		return nil
	},
}

func init() {
	archiveCmd.Flags().StringVar(&archiveProject, "project", "", "Only sessions whose project name contains this substring")
	archiveCmd.Flags().DurationVar(&archiveOlderThan, "older-than", 0, "Only sessions last modified more than this long ago")
	archiveCmd.Flags().BoolVar(&archiveVerify, "verify", false, "Verify existing archives instead of writing new ones")
	rootCmd.AddCommand(archiveCmd)
}
