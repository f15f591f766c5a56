package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sessionintel/session-intel/pkg/analyze"
	"github.com/sessionintel/session-intel/pkg/logger"
	"github.com/sessionintel/session-intel/pkg/store"
	"github.com/sessionintel/session-intel/pkg/utils"
)

var (
	statsHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statsWarnStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

var statsCmd = &cobra.Command{
	Use:   "stats PROJECT",
	Short: "Show struggle statistics for a project",
	Long: `Prints session totals, per-intent and per-domain breakdowns with average
struggle scores, and the highest-struggle sessions.

Examples:
  session-intel stats my-app`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project := args[0]
		logger.Info("Running stats command (project=%s)", project)

		st, err := store.Open()
		if err != nil {
			return fmt.Errorf("failed to open session store: %w", err)
		}
		defer st.Close()

		stats, err := analyze.LoadProjectStats(st, project)
		if err != nil {
			return err
		}
		if stats.TotalSessions == 0 {
			fmt.Printf("No ingested sessions for project %s. Run 'session-intel ingest' first.\n", project)
			return nil
		}

		fmt.Println(statsHeaderStyle.Render(fmt.Sprintf("=== %s ===", project)))
		fmt.Printf("Sessions: %d total, ", stats.TotalSessions)
		if stats.HighStruggle > 0 {
			fmt.Printf("%s high-struggle\n", statsWarnStyle.Render(fmt.Sprintf("%d", stats.HighStruggle)))
		} else {
			fmt.Println("0 high-struggle")
		}
		fmt.Printf("Transcripts: %s\n", humanize.Bytes(uint64(stats.TotalBytes)))

		printLabelTable("By intent", stats.ByIntent)
		printLabelTable("By domain", stats.ByDomain)

		if len(stats.TopStruggle) > 0 {
			fmt.Println()
			fmt.Println(statsHeaderStyle.Render("Top struggle sessions"))
			w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SESSION\tSCORE\tINTENT\tDOMAIN\tFIRST MESSAGE")
			for _, s := range stats.TopStruggle {
				first := utils.Truncate(s.FirstMessage, 100)
				if first == "" {
					first = "(no message)"
				}
				fmt.Fprintf(w, "%s\t%.1f\t%s\t%s\t%s\n",
					utils.Truncate(s.SessionID, 12), s.Score, s.Intent, s.Domain, first)
			}
			w.Flush()
		}
		return nil
	},
}

func printLabelTable(title string, rows []store.LabelStat) {
	if len(rows) == 0 {
		return
	}
	fmt.Println()
	fmt.Println(statsHeaderStyle.Render(title))
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LABEL\tCOUNT\tAVG STRUGGLE")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%d\t%.1f\n", r.Label, r.Count, r.AvgStruggle)
	}
	w.Flush()
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
