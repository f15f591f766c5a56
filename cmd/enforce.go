package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sessionintel/session-intel/pkg/config"
	"github.com/sessionintel/session-intel/pkg/logger"
	"github.com/sessionintel/session-intel/pkg/skills"
	"github.com/sessionintel/session-intel/pkg/store"
)

var (
	enforceDomain   string
	enforceCheckAll bool
)

var enforceCmd = &cobra.Command{
	Use:   "enforce PROJECT [SKILL]",
	Short: "Check whether applied skills are used and effective",
	Long: `Compares struggle metrics before and after a skill was created and scans
recent transcripts for mentions of the skill, then prints enforcement
recommendations for skills that are being ignored or not helping.

Examples:
  session-intel enforce my-app retry-discipline
  session-intel enforce my-app retry-discipline --domain data
  session-intel enforce my-app --check-all`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		project := args[0]
		logger.Info("Running enforce command (project=%s, check-all=%v)", project, enforceCheckAll)

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		st, err := store.Open()
		if err != nil {
			return fmt.Errorf("failed to open session store: %w", err)
		}
		defer st.Close()

		e := &skills.Enforcer{Store: st, Config: cfg, Out: os.Stdout}
		if enforceCheckAll {
			return e.CheckAll(project, enforceDomain)
		}
		if len(args) < 2 {
			return fmt.Errorf("either name a skill or pass --check-all")
		}
		return e.Check(project, args[1], enforceDomain)
	},
}

func init() {
	enforceCmd.Flags().StringVar(&enforceDomain, "domain", "", "Only compare sessions in this domain")
	enforceCmd.Flags().BoolVar(&enforceCheckAll, "check-all", false, "Check every skill in the project's skills directory")
	rootCmd.AddCommand(enforceCmd)
}
