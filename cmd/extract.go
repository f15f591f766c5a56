package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sessionintel/session-intel/pkg/extract"
	"github.com/sessionintel/session-intel/pkg/logger"
	"github.com/sessionintel/session-intel/pkg/store"
)

var (
	extractStrategy   string
	extractMinChain   int
	extractMinRepeats int
)

var extractCmd = &cobra.Command{
	Use:   "extract PROJECT",
	Short: "Extract struggle signals for a project",
	Long: `Runs the signal extractors over ingested sessions and prints the raw
evidence: retry chains (a), error resolutions (b), correction context (c),
and tool repetition (d).

Examples:
  session-intel extract my-app                 # All four strategies
  session-intel extract my-app --strategy a    # Retry chains only
  session-intel extract my-app --min-chain 5   # Longer chains only`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project := args[0]
		logger.Info("Running extract command (project=%s, strategy=%s)", project, extractStrategy)

		st, err := store.Open()
		if err != nil {
			return fmt.Errorf("failed to open session store: %w", err)
		}
		defer st.Close()

		ex := extract.New(st)
		if extractMinChain > 0 {
			ex.MinChain = extractMinChain
		}
		if extractMinRepeats > 0 {
			ex.MinRepeats = extractMinRepeats
		}

		out, err := ex.Run(project, extractStrategy)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractStrategy, "strategy", "all", "Strategy to run: a, b, c, d, or all")
	extractCmd.Flags().IntVar(&extractMinChain, "min-chain", 0, "Minimum retries per chain (default 3)")
	extractCmd.Flags().IntVar(&extractMinRepeats, "min-repeats", 0, "Minimum repeated tool calls (default 3)")
	rootCmd.AddCommand(extractCmd)
}
