package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mj1618/a11y-audit/internal/output"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List rule families and whether they are enabled",
	Long: `List every rule family with its WCAG success criteria and whether it runs
under the current configuration and --disable flags.`,
	Args: cobra.NoArgs,
	RunE: runRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.Flags().StringSlice("disable", nil, "Rule families to switch off")
}

func runRules(cmd *cobra.Command, args []string) error {
	opts, _, err := auditOptions(cmd)
	if err != nil {
		return err
	}
	return output.Print(opts.RuleList())
}
