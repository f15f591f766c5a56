package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sessionintel/session-intel/pkg/config"
	"github.com/sessionintel/session-intel/pkg/llm"
	"github.com/sessionintel/session-intel/pkg/logger"
	"github.com/sessionintel/session-intel/pkg/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session-intel status",
	Long:  `Displays state directory paths, database totals, and claude CLI availability.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Info("Running status command")

		fmt.Println("=== Session-Intel: Status ===")
		fmt.Println()

		stateDir, err := config.GetStateDir()
		if err != nil {
			return err
		}
		projectsDir, err := config.GetProjectsDir()
		if err != nil {
			return err
		}
		dbPath, err := config.GetDBPath()
		if err != nil {
			return err
		}
		fmt.Printf("State dir:    %s\n", stateDir)
		fmt.Printf("Sessions dir: %s\n", projectsDir)

		info, err := os.Stat(dbPath)
		if os.IsNotExist(err) {
			fmt.Println("Database:     not created yet (run 'session-intel ingest')")
		} else if err != nil {
			return fmt.Errorf("failed to stat database: %w", err)
		} else {
			fmt.Printf("Database:     %s (%s)\n", dbPath, humanize.Bytes(uint64(info.Size())))

			st, err := store.Open()
			if err != nil {
				return fmt.Errorf("failed to open session store: %w", err)
			}
			defer st.Close()

			sessions, err := st.CountSessions("")
			if err != nil {
				return err
			}
			messages, err := st.CountMessages()
			if err != nil {
				return err
			}
			fmt.Printf("Total: %d sessions, %d messages\n", sessions, messages)

			bySource, err := st.SourceCounts()
			if err != nil {
				return err
			}
			sources := make([]string, 0, len(bySource))
			for source := range bySource {
				sources = append(sources, source)
			}
			sort.Strings(sources)
			for _, source := range sources {
				fmt.Printf("  %s: %d sessions\n", source, bySource[source])
			}

			newest, err := st.NewestIngestedAt()
			if err != nil {
				return err
			}
			if newest != "" {
				fmt.Printf("Last ingest:  %s\n", newest)
			}
		}

		fmt.Println()
		if llm.NewCLI().Available() {
			fmt.Println("Claude CLI: ✓ Available (analyze will work)")
		} else {
			fmt.Println("Claude CLI: ✗ Not found (ingest/extract still work; analyze will not)")
		}

		configPath, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(configPath); err == nil {
			fmt.Printf("Config:     %s\n", configPath)
		} else {
			fmt.Printf("Config:     not present (optional, %s)\n", configPath)
		}

		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
