package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mj1618/a11y-audit/internal/audit"
	"github.com/mj1618/a11y-audit/internal/output"
)

var contrastCmd = &cobra.Command{
	Use:   "contrast FOREGROUND BACKGROUND",
	Short: "Check the contrast ratio of a color pair",
	Long: `Grade a text color against a background color for WCAG 1.4.3 and 1.4.6.

Colors may be hex (#777, #777777, #7778), rgb()/rgba(), hsl()/hsla() or CSS
color names. Translucent colors are composited over white. When the pair
fails, a passing foreground with the same hue is suggested.

Examples:
  a11y-audit contrast "#777" white
  a11y-audit contrast "rgb(118,118,118)" "#fff" --size 24
  a11y-audit contrast navy "hsl(60, 100%, 90%)" --size 19 --weight bold`,
	Args: cobra.ExactArgs(2),
	RunE: runContrast,
}

func init() {
	rootCmd.AddCommand(contrastCmd)
	contrastCmd.Flags().Float64("size", 16, "Font size in px")
	contrastCmd.Flags().String("weight", "normal", "Font weight, e.g. normal, bold, 700")
	contrastCmd.Flags().Bool("require-aaa", false, "Exit non-zero unless the pair reaches AAA")
}

func runContrast(cmd *cobra.Command, args []string) error {
	size, _ := cmd.Flags().GetFloat64("size")
	weight, _ := cmd.Flags().GetString("weight")
	requireAAA, _ := cmd.Flags().GetBool("require-aaa")

	res, err := audit.CheckColors(args[0], args[1], size, weight)
	if err != nil {
		return err
	}
	res.Selector = fmt.Sprintf("%s on %s", args[0], args[1])
	if err := output.Print(res); err != nil {
		return err
	}
	if !res.Passes {
		return fmt.Errorf("contrast %.2f:1 fails AA for %s text", res.Ratio, res.SizeClass)
	}
	if requireAAA && res.Level != audit.GradeAAA {
		return fmt.Errorf("contrast %.2f:1 does not reach AAA for %s text", res.Ratio, res.SizeClass)
	}
	return nil
}
