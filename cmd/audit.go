package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mj1618/a11y-audit/internal/audit"
	"github.com/mj1618/a11y-audit/internal/model"
	"github.com/mj1618/a11y-audit/internal/output"
)

var auditCmd = &cobra.Command{
	Use:   "audit FILE",
	Short: "Audit a document and print a scored report",
	Long: `Run every enabled rule family over a rendered HTML document and print the
report: per-element results and scores, structural issues, ranked
recommendations, the overall score, derived WCAG level and status.

With several --profiles, one report per viewport profile is printed, keyed
by profile name.

--baseline compares the report with one saved earlier by --save-baseline and
lists new and resolved issues and score changes.

Examples:
  a11y-audit audit page.html
  a11y-audit audit page.html --profiles all --format markdown
  a11y-audit audit page.html --scope "#checkout" --disable motion
  a11y-audit audit page.html --save-baseline .a11y/baseline.json
  a11y-audit audit page.html --baseline .a11y/baseline.json --fail-on regression`,
	Args: cobra.ExactArgs(1),
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	addAuditFlags(auditCmd)
	auditCmd.Flags().String("baseline", "", "Compare against a saved baseline report")
	auditCmd.Flags().String("save-baseline", "", "Save the report as a baseline to this path")
	auditCmd.Flags().String("overlay", "", "Write a PNG of element boxes colored by score to this path")
	auditCmd.Flags().String("fail-on", "", "Exit non-zero on: fail, warning, regression")
}

func runAudit(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	baselinePath, _ := cmd.Flags().GetString("baseline")
	savePath, _ := cmd.Flags().GetString("save-baseline")
	overlayPath, _ := cmd.Flags().GetString("overlay")
	failOn, _ := cmd.Flags().GetString("fail-on")

	switch failOn {
	case "", "fail", "warning", "regression":
	default:
		return fmt.Errorf("unsupported --fail-on value: %s (use fail, warning or regression)", failOn)
	}
	if failOn == "regression" && baselinePath == "" {
		return fmt.Errorf("--fail-on regression requires --baseline")
	}

	opts, profiles, err := auditOptions(cmd)
	if err != nil {
		return err
	}
	if len(profiles) > 1 && (baselinePath != "" || savePath != "" || overlayPath != "") {
		return fmt.Errorf("--baseline, --save-baseline and --overlay need a single profile")
	}

	logger.Debug().Str("document", args[0]).Int("profiles", len(profiles)).Msg("auditing")
	reports, err := audit.New(opts).RunProfiles(ctx, documentOpener(args[0]), profiles)
	if err != nil {
		return err
	}

	if len(profiles) > 1 {
		if err := output.Print(reports); err != nil {
			return err
		}
		for _, name := range profileNames(profiles) {
			if err := checkFailOn(failOn, reports[name], nil); err != nil {
				return err
			}
		}
		return nil
	}

	vp := profiles[0]
	report := reports[vp.Name]
	if overlayPath != "" {
		if err := writeOverlay(overlayPath, report, vp); err != nil {
			return err
		}
	}

	var diff *audit.BaselineDiff
	if baselinePath != "" {
		prev, err := audit.LoadBaseline(baselinePath)
		if err != nil {
			return err
		}
		d := audit.DiffReports(prev, report)
		diff = &d
		if err := output.Print(&output.AuditResult{Report: report, Baseline: diff}); err != nil {
			return err
		}
	} else if err := output.Print(report); err != nil {
		return err
	}

	if savePath != "" {
		if err := audit.SaveBaseline(savePath, report); err != nil {
			return err
		}
		logger.Info().Str("path", savePath).Msg("baseline saved")
	}
	return checkFailOn(failOn, report, diff)
}

func profileNames(profiles []model.Viewport) []string {
	names := make([]string, len(profiles))
	for i, p := range profiles {
		names[i] = p.Name
	}
	return names
}

// checkFailOn turns a report outcome into a command error so the process
// exits non-zero.
func checkFailOn(failOn string, r *audit.AuditReport, diff *audit.BaselineDiff) error {
	switch failOn {
	case "fail":
		if r.Status == audit.StatusFail {
			return fmt.Errorf("audit failed: score %.1f, level %s", r.Score, r.Level)
		}
	case "warning":
		if r.Status != audit.StatusPass {
			return fmt.Errorf("audit status %s: score %.1f, level %s", r.Status, r.Score, r.Level)
		}
	case "regression":
		if diff != nil && diff.Regressed {
			return fmt.Errorf("regression against baseline: %d new issues, score %+.1f", len(diff.New), diff.ScoreDelta)
		}
	}
	return nil
}

func writeOverlay(path string, r *audit.AuditReport, vp model.Viewport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create overlay: %w", err)
	}
	if err := output.WritePNG(f, r, vp); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
