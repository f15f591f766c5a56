package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sessionintel/session-intel/pkg/config"
	"github.com/sessionintel/session-intel/pkg/ingest"
	"github.com/sessionintel/session-intel/pkg/logger"
	"github.com/sessionintel/session-intel/pkg/patterns"
	"github.com/sessionintel/session-intel/pkg/store"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch for session writes and ingest continuously",
	Long: `Watches ~/.claude/projects for transcript writes and re-ingests each
session once it has been quiet for the debounce interval. Runs until
interrupted.

Examples:
  session-intel watch
  session-intel watch --debounce 10s`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Info("Running watch command (debounce=%s)", watchDebounce)

		projectsDir, err := config.GetProjectsDir()
		if err != nil {
			return err
		}
		st, err := store.Open()
		if err != nil {
			return fmt.Errorf("failed to open session store: %w", err)
		}
		defer st.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		w := ingest.NewWatcher(st, patterns.Default())
		if watchDebounce > 0 {
			w.Debounce = watchDebounce
		}

		fmt.Printf("Watching %s (Ctrl-C to stop)\n", projectsDir)
		if err := w.Watch(ctx, projectsDir); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		fmt.Println("Stopped")
		return nil
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", ingest.DefaultDebounce, "Quiet period before a changed session is re-ingested")
	rootCmd.AddCommand(watchCmd)
}
