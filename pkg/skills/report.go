// Package skills applies analysis-report recommendations to SKILL.md files
// and checks whether applied skills actually get used and reduce struggle.
package skills

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Recommendation is one actionable skill change parsed from a report.
type Recommendation struct {
	Action      string // "create" | "update"
	SkillName   string
	Category    string
	Description string
	Content     string // full SKILL.md body
}

var headerRe = regexp.MustCompile(`\[(\w+)\]\s+(.+)`)

// ProjectFromReportName recovers the project from a report filename of the
// form {project}-analysis-{strategy}-{timestamp}.md.
func ProjectFromReportName(filename string) (string, error) {
	base := strings.TrimSuffix(filename, ".md")
	idx := strings.Index(base, "-analysis-")
	if idx <= 0 {
		return "", fmt.Errorf("report name %q does not look like <project>-analysis-<strategy>-<timestamp>.md", filename)
	}
	return base[:idx], nil
}

// ParseReport extracts actionable recommendations from a saved analysis
// report. Only create/update actions carrying a fenced markdown skill body
// are actionable; everything else in the section is ignored.
func ParseReport(path string) ([]Recommendation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	content := string(data)

	_, rest, found := strings.Cut(content, "## Skill Recommendations")
	if !found {
		return nil, nil
	}
	section, _, _ := strings.Cut(rest, "## Raw Signals")

	var recs []Recommendation
	blocks := strings.Split(section, "###")
	for _, block := range blocks[1:] {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) == 0 {
			continue
		}

		m := headerRe.FindStringSubmatch(lines[0])
		if m == nil {
			continue
		}
		rec := Recommendation{
			Action:    strings.ToLower(m[1]),
			SkillName: strings.TrimSpace(m[2]),
		}

		for _, line := range lines[1:] {
			if v, ok := strings.CutPrefix(line, "**Category:**"); ok {
				rec.Category = strings.TrimSpace(v)
			} else if v, ok := strings.CutPrefix(line, "**Description:**"); ok {
				rec.Description = strings.TrimSpace(v)
			}
		}

		if _, body, ok := strings.Cut(block, "```markdown"); ok {
			fenced, _, _ := strings.Cut(body, "```")
			rec.Content = strings.TrimSpace(fenced)
		}

		if (rec.Action == "create" || rec.Action == "update") && rec.Content != "" {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}
