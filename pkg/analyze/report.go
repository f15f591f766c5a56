package analyze

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sessionintel/session-intel/pkg/config"
)

// SaveReport writes the analysis report to the reviews directory and
// returns its path. The filename encodes project, strategy, and timestamp;
// the apply command later recovers the project from the prefix.
func SaveReport(project, strategy string, stats *ProjectStats, signals string,
	classification Classification, recommendations []Recommendation) (string, error) {

	reviewsDir, err := config.GetReviewsDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(reviewsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create reviews directory: %w", err)
	}

	now := time.Now()
	filename := fmt.Sprintf("%s-analysis-%s-%s.md", project, strategy, now.Format("20060102-150405"))
	path := filepath.Join(reviewsDir, filename)

	content := renderReport(project, strategy, path, now, stats, signals, classification, recommendations)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

func renderReport(project, strategy, path string, now time.Time, stats *ProjectStats,
	signals string, classification Classification, recommendations []Recommendation) string {

	var b strings.Builder

	fmt.Fprintf(&b, "# Session Intelligence Analysis: %s\n\n", project)
	fmt.Fprintf(&b, "**Generated:** %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Strategy:** %s\n", strategy)
	fmt.Fprintf(&b, "**Run ID:** %s\n\n", uuid.NewString())
	b.WriteString("---\n\n")

	b.WriteString("## Project Stats\n\n")
	fmt.Fprintf(&b, "- **Total sessions:** %d\n", stats.TotalSessions)
	fmt.Fprintf(&b, "- **High struggle (>5):** %d\n\n", stats.HighStruggle)

	b.WriteString("### By Intent\n")
	for _, row := range stats.ByIntent {
		fmt.Fprintf(&b, "- %s: %d sessions, avg struggle %.1f\n", row.Label, row.Count, row.AvgStruggle)
	}
	b.WriteString("\n### By Domain\n")
	for _, row := range stats.ByDomain {
		fmt.Fprintf(&b, "- %s: %d sessions, avg struggle %.1f\n", row.Label, row.Count, row.AvgStruggle)
	}

	b.WriteString("\n---\n\n## Classification Summary\n\n")
	summary := classification.Summary
	if summary == "" {
		summary = "(no summary)"
	}
	fmt.Fprintf(&b, "%s\n\n", summary)
	fmt.Fprintf(&b, "**Pain Points Found:** %d\n\n", len(classification.PainPoints))

	b.WriteString("---\n\n## Skill Recommendations\n\n")
	if len(recommendations) == 0 {
		b.WriteString("(no recommendations generated)\n")
	}
	for i, rec := range recommendations {
		fmt.Fprintf(&b, "\n### %d. [%s] %s\n\n", i+1, strings.ToUpper(rec.Action), rec.SkillName)
		fmt.Fprintf(&b, "**Category:** %s\n", rec.PainPoint.Category)
		fmt.Fprintf(&b, "**Severity:** %d/5\n", rec.PainPoint.Severity)
		fmt.Fprintf(&b, "**Description:** %s\n\n", rec.PainPoint.Description)
		fmt.Fprintf(&b, "**Reasoning:** %s\n\n", rec.Reasoning)
		if rec.SkillContent != "" {
			fmt.Fprintf(&b, "**Proposed SKILL.md:**\n\n```markdown\n%s\n```\n\n", rec.SkillContent)
		}
	}

	b.WriteString("\n---\n\n## Raw Signals\n\n")
	b.WriteString(signals)

	b.WriteString("\n\n---\n\n## Next Steps\n\n")
	b.WriteString("**To apply recommendations:**\n\n")
	fmt.Fprintf(&b, "```bash\nsession-intel apply %s\n```\n\n", path)
	b.WriteString("**To check enforcement after creating skills:**\n\n")
	fmt.Fprintf(&b, "```bash\nsession-intel enforce %s <skill-name>\n```\n", project)

	return b.String()
}
