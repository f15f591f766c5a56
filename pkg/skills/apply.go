package skills

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sessionintel/session-intel/pkg/config"
	"github.com/sessionintel/session-intel/pkg/logger"
)

// Apply writes the recommendations parsed from the report at reportPath into
// the project's skills directory. With dryRun set it only prints what would
// be written.
func Apply(cfg *config.Config, reportPath string, dryRun bool, out io.Writer) error {
	project, err := ProjectFromReportName(filepath.Base(reportPath))
	if err != nil {
		return err
	}

	recs, err := ParseReport(reportPath)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(out, "No actionable recommendations found in report")
		return nil
	}

	skillsDir, err := cfg.SkillsDir(project)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Applying %d recommendation(s) for project %s\n", len(recs), project)

	for _, rec := range recs {
		dest := filepath.Join(skillsDir, rec.SkillName, "SKILL.md")
		if dryRun {
			fmt.Fprintf(out, "  [dry-run] would %s %s (%d bytes)\n", rec.Action, dest, len(rec.Content))
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("failed to create skill dir: %w", err)
		}
		if err := os.WriteFile(dest, []byte(rec.Content+"\n"), 0o644); err != nil {
			return fmt.Errorf("failed to write skill %s: %w", rec.SkillName, err)
		}
		logger.Info("applied skill %s (%s) to %s", rec.SkillName, rec.Action, dest)
		fmt.Fprintf(out, "  %sd %s\n", rec.Action, dest)
	}
	return nil
}
