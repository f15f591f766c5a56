package skills

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sessionintel/session-intel/pkg/config"
	"github.com/sessionintel/session-intel/pkg/logger"
	"github.com/sessionintel/session-intel/pkg/store"
	"github.com/sessionintel/session-intel/pkg/utils"
)

const (
	usageSampleLimit    = 10
	ineffectiveMinScore = 10
	metadataHeadLines   = 10
	descriptionLimit    = 200
)

// SkillMetadata describes one SKILL.md file on disk.
type SkillMetadata struct {
	Name        string
	CreatedAt   string // file ModTime, RFC 3339
	Trigger     string
	Description string
}

// Effectiveness compares struggle metrics before and after a skill existed.
type Effectiveness struct {
	Verdict     string // "effective" | "ineffective" | "insufficient_data"
	BeforeCount int
	AfterCount  int
	BeforeAvg   Averages
	AfterAvg    Averages
	Improvement float64 // before struggle avg minus after struggle avg
}

// Averages holds per-session mean counters for one side of the split.
type Averages struct {
	Struggle float64
	Retries  float64
	Errors   float64
}

// UsageResult records whether a session's raw transcript mentions the skill.
type UsageResult struct {
	SessionID string
	Status    string // "used" | "ignored" | "not_found"
}

// Enforcer checks skill effectiveness and usage against ingested sessions.
type Enforcer struct {
	Store  *store.Store
	Config *config.Config
	Out    io.Writer
}

// LoadSkillMetadata reads {skillsDir}/{name}/SKILL.md and extracts the
// trigger and description from its first lines.
func LoadSkillMetadata(skillsDir, name string) (*SkillMetadata, error) {
	path := filepath.Join(skillsDir, name, "SKILL.md")
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("skill %s not found: %w", name, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read skill %s: %w", name, err)
	}

	meta := &SkillMetadata{
		Name:      name,
		CreatedAt: utils.FormatTime(info.ModTime()),
	}

	lines := strings.Split(string(data), "\n")
	if len(lines) > metadataHeadLines {
		lines = lines[:metadataHeadLines]
	}
	for _, line := range lines {
		lower := strings.ToLower(line)
		for _, marker := range []string{"use when:", "trigger:"} {
			if idx := strings.Index(lower, marker); idx >= 0 {
				meta.Trigger = strings.TrimSpace(line[idx+len(marker):])
				break
			}
		}
		if meta.Trigger != "" {
			break
		}
	}
	meta.Description = utils.Truncate(strings.Join(lines, "\n"), descriptionLimit)
	return meta, nil
}

// CalculateEffectiveness splits the project's sessions around the skill's
// creation time and compares average struggle on each side. Domain narrows
// the comparison to sessions the skill plausibly covers.
func (e *Enforcer) CalculateEffectiveness(project, domain string, meta *SkillMetadata) (*Effectiveness, []store.SessionMetrics, error) {
	sessions, err := e.Store.SessionsByCreated(project, domain)
	if err != nil {
		return nil, nil, err
	}

	var before, after []store.SessionMetrics
	for _, sm := range sessions {
		if sm.CreatedAt != "" && sm.CreatedAt < meta.CreatedAt {
			before = append(before, sm)
		} else {
			after = append(after, sm)
		}
	}

	eff := &Effectiveness{
		BeforeCount: len(before),
		AfterCount:  len(after),
	}
	if len(before) == 0 || len(after) == 0 {
		eff.Verdict = "insufficient_data"
		return eff, after, nil
	}

	eff.BeforeAvg = averages(before)
	eff.AfterAvg = averages(after)
	eff.Improvement = eff.BeforeAvg.Struggle - eff.AfterAvg.Struggle
	if eff.Improvement > 0 {
		eff.Verdict = "effective"
	} else {
		eff.Verdict = "ineffective"
	}
	return eff, after, nil
}

func averages(sessions []store.SessionMetrics) Averages {
	var a Averages
	for _, sm := range sessions {
		a.Struggle += sm.StruggleScore
		a.Retries += float64(sm.RetryCount)
		a.Errors += float64(sm.ErrorCount)
	}
	n := float64(len(sessions))
	a.Struggle /= n
	a.Retries /= n
	a.Errors /= n
	return a
}

// CheckUsage scans the raw transcripts of up to 10 post-skill sessions for a
// mention of the skill name.
func (e *Enforcer) CheckUsage(meta *SkillMetadata, after []store.SessionMetrics) []UsageResult {
	sample := after
	if len(sample) > usageSampleLimit {
		sample = sample[:usageSampleLimit]
	}

	needle := strings.ToLower(meta.Name)
	spaced := strings.ReplaceAll(needle, "-", " ")

	var results []UsageResult
	for _, sm := range sample {
		r := UsageResult{SessionID: sm.SessionID}
		data, err := os.ReadFile(sm.RawPath)
		if err != nil {
			logger.Debug("usage check: cannot read %s: %v", sm.RawPath, err)
			r.Status = "not_found"
			results = append(results, r)
			continue
		}
		haystack := strings.ToLower(string(data))
		if strings.Contains(haystack, needle) || strings.Contains(haystack, spaced) {
			r.Status = "used"
		} else {
			r.Status = "ignored"
		}
		results = append(results, r)
	}
	return results
}

// Check runs the full effectiveness and usage report for one skill.
func (e *Enforcer) Check(project, skillName, domain string) error {
	skillsDir, err := e.Config.SkillsDir(project)
	if err != nil {
		return err
	}
	meta, err := LoadSkillMetadata(skillsDir, skillName)
	if err != nil {
		return err
	}

	fmt.Fprintf(e.Out, "Skill: %s\n", meta.Name)
	fmt.Fprintf(e.Out, "Created: %s\n", meta.CreatedAt)
	if meta.Trigger != "" {
		fmt.Fprintf(e.Out, "Trigger: %s\n", meta.Trigger)
	}

	eff, after, err := e.CalculateEffectiveness(project, domain, meta)
	if err != nil {
		return err
	}

	fmt.Fprintf(e.Out, "\nSessions: %d before, %d after\n", eff.BeforeCount, eff.AfterCount)
	if eff.Verdict == "insufficient_data" {
		fmt.Fprintln(e.Out, "Verdict: insufficient_data (need sessions on both sides of the skill's creation)")
		return nil
	}

	fmt.Fprintf(e.Out, "Avg struggle: %s before -> %s after\n",
		utils.FormatScore(eff.BeforeAvg.Struggle), utils.FormatScore(eff.AfterAvg.Struggle))
	fmt.Fprintf(e.Out, "Avg retries:  %.1f before -> %.1f after\n", eff.BeforeAvg.Retries, eff.AfterAvg.Retries)
	fmt.Fprintf(e.Out, "Avg errors:   %.1f before -> %.1f after\n", eff.BeforeAvg.Errors, eff.AfterAvg.Errors)
	fmt.Fprintf(e.Out, "Verdict: %s\n", eff.Verdict)

	usage := e.CheckUsage(meta, after)
	var used, ignored int
	for _, u := range usage {
		if u.Status == "used" {
			used++
		} else if u.Status == "ignored" {
			ignored++
		}
	}
	if len(usage) > 0 {
		fmt.Fprintf(e.Out, "\nUsage in %d recent sessions: %d used, %d ignored\n", len(usage), used, ignored)
	}

	if ignored > used {
		fmt.Fprintln(e.Out, "\nThe skill is mostly being ignored. Recommendations:")
		fmt.Fprintf(e.Out, "  - Strengthen the trigger line so it matches real prompts (current: %q)\n", meta.Trigger)
		fmt.Fprintln(e.Out, "  - Mention the skill by name in CLAUDE.md for this project")
		fmt.Fprintln(e.Out, "  - Shorten the skill body so the key instruction is near the top")
	}

	if eff.Verdict == "ineffective" {
		var worst []store.SessionMetrics
		for _, sm := range after {
			if sm.StruggleScore > ineffectiveMinScore {
				worst = append(worst, sm)
			}
		}
		if len(worst) > 0 {
			sort.Slice(worst, func(i, j int) bool { return worst[i].StruggleScore > worst[j].StruggleScore })
			if len(worst) > 5 {
				worst = worst[:5]
			}
			fmt.Fprintln(e.Out, "\nHigh-struggle sessions after the skill was added:")
			for _, sm := range worst {
				fmt.Fprintf(e.Out, "  %s (score=%s, intent=%s): %s\n",
					utils.Truncate(sm.SessionID, 12), utils.FormatScore(sm.StruggleScore),
					sm.Intent, utils.Truncate(sm.FirstMessage, 80))
			}
			fmt.Fprintln(e.Out, "\nFollow-ups:")
			fmt.Fprintln(e.Out, "  - Re-run analyze to see whether the pain point has shifted")
			fmt.Fprintln(e.Out, "  - Consider splitting the skill into narrower, more specific ones")
		}
	}
	return nil
}

// CheckAll runs Check for every skill directory under the project's skills
// dir, in sorted order.
func (e *Enforcer) CheckAll(project, domain string) error {
	skillsDir, err := e.Config.SkillsDir(project)
	if err != nil {
		return err
	}
	entries, err := os.ReadDir(skillsDir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(e.Out, "No skills directory at %s\n", skillsDir)
			return nil
		}
		return fmt.Errorf("failed to read skills dir: %w", err)
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

	if len(names) == 0 {
		fmt.Fprintf(e.Out, "No skills found under %s\n", skillsDir)
		return nil
	}

	for i, name := range names {
		if i > 0 {
			fmt.Fprintln(e.Out, "\n"+strings.Repeat("-", 60)+"\n")
		}
		if err := e.Check(project, name, domain); err != nil {
			return err
		}
	}
	return nil
}
