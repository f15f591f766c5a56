package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sessionintel/session-intel/pkg/config"
	"github.com/sessionintel/session-intel/pkg/logger"
	"github.com/sessionintel/session-intel/pkg/skills"
)

var applyDryRun bool

var applyCmd = &cobra.Command{
	Use:   "apply REPORT",
	Short: "Apply skill recommendations from an analysis report",
	Long: `Parses the create/update recommendations out of a saved analysis report
and writes each SKILL.md into the project's skills directory. The project
is taken from the report filename.

Examples:
  session-intel apply ~/.session-intel/reviews/my-app-analysis-all-20260115-103000.md
  session-intel apply report.md --dry-run   # Show what would be written`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Info("Running apply command (report=%s, dry-run=%v)", args[0], applyDryRun)

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return skills.Apply(cfg, args[0], applyDryRun, os.Stdout)
	},
}

func init() {
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Print what would be written without writing")
	rootCmd.AddCommand(applyCmd)
}
