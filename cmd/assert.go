package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mj1618/a11y-audit/internal/audit"
	"github.com/mj1618/a11y-audit/internal/output"
)

// AssertResult is the output of an assert command.
type AssertResult struct {
	OK       bool         `yaml:"ok"                 json:"ok"`
	Action   string       `yaml:"action"             json:"action"`
	Pass     bool         `yaml:"pass"               json:"pass"`
	Error    string       `yaml:"error,omitempty"    json:"error,omitempty"`
	Score    float64      `yaml:"score"              json:"score"`
	Level    audit.Level  `yaml:"level"              json:"level"`
	Status   audit.Status `yaml:"status"             json:"status"`
	Failures []string     `yaml:"failures,omitempty" json:"failures,omitempty"`
}

var assertCmd = &cobra.Command{
	Use:   "assert FILE",
	Short: "Assert a document meets accessibility thresholds",
	Long: `Audit a document and check the report against thresholds.

Returns pass/fail with structured output and exit code 0 (pass) or 1 (fail).
Each profile selected with --profiles must pass.

Examples:
  a11y-audit assert page.html --min-score 90
  a11y-audit assert page.html --level AA --max-critical 0
  a11y-audit assert page.html --clean contrast,focus --profiles all`,
	Args: cobra.ExactArgs(1),
	RunE: runAssert,
}

func init() {
	rootCmd.AddCommand(assertCmd)
	addAuditFlags(assertCmd)
	assertCmd.Flags().Float64("min-score", 0, "Minimum overall score")
	assertCmd.Flags().String("level", "", "Minimum derived level: A, AA, AAA")
	assertCmd.Flags().Int("max-critical", -1, "Maximum critical issues (-1 = no limit)")
	assertCmd.Flags().Int("max-serious", -1, "Maximum serious issues (-1 = no limit)")
	assertCmd.Flags().Int("max-issues", -1, "Maximum issues of any impact (-1 = no limit)")
	assertCmd.Flags().StringSlice("clean", nil, "Rule families that must report no issues")
}

type assertOptions struct {
	minScore    float64
	level       audit.Level
	maxCritical int
	maxSerious  int
	maxIssues   int
	clean       []string
}

func runAssert(cmd *cobra.Command, args []string) error {
	minScore, _ := cmd.Flags().GetFloat64("min-score")
	level, _ := cmd.Flags().GetString("level")
	maxCritical, _ := cmd.Flags().GetInt("max-critical")
	maxSerious, _ := cmd.Flags().GetInt("max-serious")
	maxIssues, _ := cmd.Flags().GetInt("max-issues")
	clean, _ := cmd.Flags().GetStringSlice("clean")

	opts := assertOptions{
		minScore:    minScore,
		level:       audit.Level(strings.ToUpper(level)),
		maxCritical: maxCritical,
		maxSerious:  maxSerious,
		maxIssues:   maxIssues,
		clean:       clean,
	}
	if opts.level != "" && levelRank(opts.level) == 0 {
		return fmt.Errorf("unsupported level: %s (use A, AA or AAA)", level)
	}
	for _, r := range clean {
		if !audit.KnownRule(r) {
			return fmt.Errorf("unknown rule %q", r)
		}
	}

	auditOpts, profiles, err := auditOptions(cmd)
	if err != nil {
		return err
	}
	reports, err := audit.New(auditOpts).RunProfiles(commandContext(cmd), documentOpener(args[0]), profiles)
	if err != nil {
		return err
	}

	results := make(map[string]AssertResult, len(reports))
	var failed []string
	for _, name := range profileNames(profiles) {
		res := checkAssert(reports[name], opts)
		results[name] = res
		if !res.Pass {
			failed = append(failed, fmt.Sprintf("%s: %s", name, res.Error))
		}
	}

	var printErr error
	if len(results) == 1 {
		printErr = output.Print(results[profiles[0].Name])
	} else {
		printErr = output.Print(results)
	}
	if len(failed) > 0 {
		return fmt.Errorf("assert failed: %s", strings.Join(failed, "; "))
	}
	return printErr
}

func levelRank(l audit.Level) int {
	switch l {
	case audit.LevelA:
		return 1
	case audit.LevelAA:
		return 2
	case audit.LevelAAA:
		return 3
	}
	return 0
}

// checkAssert evaluates one report against the thresholds.
func checkAssert(r *audit.AuditReport, opts assertOptions) AssertResult {
	res := AssertResult{Action: "assert", Score: r.Score, Level: r.Level, Status: r.Status}

	if r.Score < opts.minScore {
		res.Failures = append(res.Failures, fmt.Sprintf("score %.1f is below %.1f", r.Score, opts.minScore))
	}
	if opts.level != "" && levelRank(r.Level) < levelRank(opts.level) {
		res.Failures = append(res.Failures, fmt.Sprintf("level %s is below %s", r.Level, opts.level))
	}
	if opts.maxCritical >= 0 && r.Summary.Critical > opts.maxCritical {
		res.Failures = append(res.Failures, fmt.Sprintf("%d critical issues exceed %d", r.Summary.Critical, opts.maxCritical))
	}
	if opts.maxSerious >= 0 && r.Summary.Serious > opts.maxSerious {
		res.Failures = append(res.Failures, fmt.Sprintf("%d serious issues exceed %d", r.Summary.Serious, opts.maxSerious))
	}
	if opts.maxIssues >= 0 && r.Summary.Issues > opts.maxIssues {
		res.Failures = append(res.Failures, fmt.Sprintf("%d issues exceed %d", r.Summary.Issues, opts.maxIssues))
	}
	if len(opts.clean) > 0 {
		counts := map[string]int{}
		for _, is := range r.AllIssues() {
			counts[is.Rule]++
		}
		for _, rule := range opts.clean {
			if n := counts[rule]; n > 0 {
				res.Failures = append(res.Failures, fmt.Sprintf("%d %s issues", n, rule))
			}
		}
	}

	res.Pass = len(res.Failures) == 0
	res.OK = res.Pass
	if !res.Pass {
		res.Error = strings.Join(res.Failures, "; ")
	}
	return res
}
