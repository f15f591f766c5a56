package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sessionintel/session-intel/pkg/logger"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:     "session-intel",
	Version: "0.3.0",
	Short:   "Mine struggle signals from Claude Code sessions",
	Long: `Session-intel ingests Claude Code session transcripts into local SQLite
storage, scores each session for struggle, and extracts the evidence
(retry chains, error resolutions, corrections, tool repetition) that
feeds skill recommendations for your projects.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := logger.Init(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
		}
		if verbose {
			logger.Get().SetLevel(logger.DEBUG)
			logger.Get().SetAlsoStderr(true)
		}
	},
}

func Execute() {
	err := rootCmd.Execute()
	logger.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging to stderr")
}
