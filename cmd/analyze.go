package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sessionintel/session-intel/pkg/analyze"
	"github.com/sessionintel/session-intel/pkg/config"
	"github.com/sessionintel/session-intel/pkg/llm"
	"github.com/sessionintel/session-intel/pkg/logger"
	"github.com/sessionintel/session-intel/pkg/store"
)

var analyzeStrategy string

var analyzeCmd = &cobra.Command{
	Use:   "analyze PROJECT",
	Short: "Analyze struggle signals and recommend skills",
	Long: `Extracts struggle signals for a project, asks the claude CLI to classify
the pain points and draft skill recommendations, and saves a markdown
report under ~/.session-intel/reviews/.

Examples:
  session-intel analyze my-app
  session-intel analyze my-app --strategy a   # Retry-chain signals only`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project := args[0]
		logger.Info("Running analyze command (project=%s, strategy=%s)", project, analyzeStrategy)

		model := llm.NewCLI()
		if !model.Available() {
			return fmt.Errorf("claude CLI not found in PATH; analysis needs it for classification")
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		st, err := store.Open()
		if err != nil {
			return fmt.Errorf("failed to open session store: %w", err)
		}
		defer st.Close()

		analyzer := &analyze.Analyzer{Store: st, Model: model, Config: cfg}
		result, err := analyzer.Run(cmd.Context(), project, analyzeStrategy)
		if err != nil {
			return err
		}
		if result == nil {
			return nil // nothing to analyze; Run already said so
		}

		fmt.Printf("\nReport saved: %s\n", result.ReportPath)
		if len(result.Recommendations) > 0 {
			fmt.Printf("Apply with: session-intel apply %s\n", result.ReportPath)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeStrategy, "strategy", "all", "Signal strategy: a, b, c, d, or all")
	rootCmd.AddCommand(analyzeCmd)
}
