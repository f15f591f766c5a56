package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sessionintel/session-intel/pkg/config"
	"github.com/sessionintel/session-intel/pkg/extract"
	"github.com/sessionintel/session-intel/pkg/llm"
	"github.com/sessionintel/session-intel/pkg/logger"
	"github.com/sessionintel/session-intel/pkg/store"
	"github.com/sessionintel/session-intel/pkg/utils"
)

// PainPoint is one classified struggle cluster.
type PainPoint struct {
	Category    string   `json:"category"`
	Severity    int      `json:"severity"`
	Description string   `json:"description"`
	Sessions    []string `json:"sessions"`
}

// Classification is the model's reading of the extracted signals.
type Classification struct {
	PainPoints []PainPoint `json:"pain_points"`
	Summary    string      `json:"summary"`
}

// Recommendation is the model's suggested skill action for one pain point.
type Recommendation struct {
	Action       string `json:"action"`
	SkillName    string `json:"skill_name"`
	Reasoning    string `json:"reasoning"`
	SkillContent string `json:"skill_content"`

	PainPoint PainPoint `json:"-"`
}

// Result is what an analysis run produced.
type Result struct {
	Stats           *ProjectStats
	Signals         string
	Classification  Classification
	Recommendations []Recommendation
	ReportPath      string
}

// signalsLimit bounds how much signal text goes into the classification
// prompt.
const signalsLimit = 8000

// Analyzer wires the pipeline output to the language model.
type Analyzer struct {
	Store  *store.Store
	Model  llm.Model
	Config *config.Config
	// Out receives progress lines; defaults to stdout.
	Out io.Writer
}

func (a *Analyzer) out() io.Writer {
	if a.Out != nil {
		return a.Out
	}
	return os.Stdout
}

// Run executes the full analysis workflow for one project: stats, signal
// extraction, pain-point classification, skill recommendations, report.
// Classification failures degrade to an empty pain-point list so the raw
// signals still get saved; a nil Result with nil error means there was
// nothing worth analyzing.
func (a *Analyzer) Run(ctx context.Context, project, strategy string) (*Result, error) {
	w := a.out()

	stats, err := LoadProjectStats(a.Store, project)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "Total sessions: %d\n", stats.TotalSessions)
	fmt.Fprintf(w, "High struggle:  %d\n\n", stats.HighStruggle)

	if stats.HighStruggle == 0 {
		fmt.Fprintln(w, "No high-struggle sessions found. All clear!")
		return nil, nil
	}

	fmt.Fprintf(w, "Extracting signals (strategy: %s)...\n", strategy)
	signals, err := extract.New(a.Store).Run(project, strategy)
	if err != nil {
		return nil, fmt.Errorf("failed to extract signals: %w", err)
	}

	if strings.Contains(signals, "(no ") && strings.Count(signals, "\n") < 5 {
		fmt.Fprintln(w, "No significant signals found.")
		return nil, nil
	}
	fmt.Fprintf(w, "Found %d signal clusters\n\n", strings.Count(signals, "SESSION"))

	fmt.Fprintln(w, "Classifying pain points...")
	classification, err := a.classifySignals(ctx, signals)
	if err != nil {
		logger.Warn("Classification failed for %s: %v", project, err)
		fmt.Fprintf(w, "Classification failed: %v\nSaving raw signals for manual review.\n", err)
		classification = Classification{Summary: fmt.Sprintf("Classification failed: %v", err)}
	} else {
		fmt.Fprintf(w, "%s\nPain points: %d\n", classification.Summary, len(classification.PainPoints))
	}

	var recommendations []Recommendation
	if len(classification.PainPoints) > 0 {
		fmt.Fprintln(w, "\nGenerating skill recommendations...")
		for _, pp := range classification.PainPoints {
			rec, err := a.recommendSkill(ctx, project, pp)
			if err != nil {
				logger.Warn("Recommendation failed for %s/%s: %v", project, pp.Category, err)
				fmt.Fprintf(w, "  Failed for %s: %v\n", pp.Category, err)
				continue
			}
			rec.PainPoint = pp
			recommendations = append(recommendations, rec)
			fmt.Fprintf(w, "  [%s] %s\n", strings.ToUpper(rec.Action), rec.SkillName)
		}
	}

	reportPath, err := SaveReport(project, strategy, stats, signals, classification, recommendations)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "\nReport: %s\n", reportPath)

	return &Result{
		Stats:           stats,
		Signals:         signals,
		Classification:  classification,
		Recommendations: recommendations,
		ReportPath:      reportPath,
	}, nil
}

// classifySignals asks the model to turn raw signal text into structured
// pain points.
func (a *Analyzer) classifySignals(ctx context.Context, signals string) (Classification, error) {
	prompt := fmt.Sprintf(`Analyze these AI coding session struggle signals and classify the pain points.

For each distinct pain point, provide:
- category: one of (ui/design, data, api, workflow, infra, config, architecture, metadata, test)
- severity: 1-5 (where 5 = critical skill gap, 1 = minor issue)
- description: one sentence describing what goes wrong
- sessions: list of session IDs mentioned in the signals (just first 7-12 chars)

Return ONLY valid JSON with this exact structure (no explanatory text before or after):
{
  "pain_points": [
    {
      "category": "workflow",
      "severity": 4,
      "description": "Claude doesn't respect branch isolation",
      "sessions": ["766aaac"]
    }
  ],
  "summary": "Brief overview of what the signals show"
}

SIGNALS:
%s
`, utils.Truncate(signals, signalsLimit))

	callCtx, cancel := context.WithTimeout(ctx, llm.ClassifyTimeout)
	defer cancel()

	response, err := a.Model.Generate(callCtx, prompt)
	if err != nil {
		return Classification{}, err
	}

	var classification Classification
	if err := json.Unmarshal([]byte(llm.ExtractJSON(response)), &classification); err != nil {
		return Classification{}, fmt.Errorf("failed to parse classification: %w", err)
	}
	return classification, nil
}

// recommendSkill asks the model for a create/update/none decision on one
// pain point, listing the project's existing skills so updates win over
// duplicates.
func (a *Analyzer) recommendSkill(ctx context.Context, project string, pp PainPoint) (Recommendation, error) {
	existing, err := a.existingSkills(project)
	if err != nil {
		logger.Debug("Could not list existing skills for %s: %v", project, err)
	}
	existingList := "(none)"
	if len(existing) > 0 {
		existingList = "- " + strings.Join(existing, "\n- ")
	}

	prompt := fmt.Sprintf(`Based on this pain point, recommend a skill for %s.

PAIN POINT:
- Category: %s
- Severity: %d/5
- Description: %s
- Affected sessions: %s

EXISTING SKILLS:
%s

Return ONLY valid JSON:
{
  "action": "create|update|none",
  "skill_name": "skill-folder-name",
  "reasoning": "why this skill is needed or why existing skill should be updated",
  "skill_content": "full SKILL.md content (if action=create/update, else null)"
}

If creating/updating, generate a complete SKILL.md with:
- Frontmatter (name, description)
- Clear trigger conditions
- Concrete examples from the pain point
- Anti-patterns to avoid
`, project, pp.Category, pp.Severity, pp.Description, strings.Join(pp.Sessions, ", "), existingList)

	callCtx, cancel := context.WithTimeout(ctx, llm.RecommendTimeout)
	defer cancel()

	response, err := a.Model.Generate(callCtx, prompt)
	if err != nil {
		return Recommendation{}, err
	}

	var rec Recommendation
	if err := json.Unmarshal([]byte(llm.ExtractJSON(response)), &rec); err != nil {
		return Recommendation{}, fmt.Errorf("failed to parse recommendation: %w", err)
	}
	return rec, nil
}

// existingSkills lists skill directory names under the project's skills dir.
func (a *Analyzer) existingSkills(project string) ([]string, error) {
	skillsDir, err := a.Config.SkillsDir(project)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(skillsDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(skillsDir, entry.Name(), "SKILL.md")); err == nil {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
