package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mj1618/a11y-audit/internal/audit"
	"github.com/mj1618/a11y-audit/internal/model"
	"github.com/mj1618/a11y-audit/internal/output"
	"github.com/mj1618/a11y-audit/internal/platform"
)

var announceCmd = &cobra.Command{
	Use:   "announce FILE",
	Short: "Print what a screen reader would announce for each element",
	Long: `Simulate screen reader output for the elements of a document: the spoken
string (name, role, states), the landmark and list context, a clarity grade
and any wording issues.

--roles limits the output to elements with those roles. Meta-roles expand:
interactive, landmark, live, heading, image, dialog.

Examples:
  a11y-audit announce page.html
  a11y-audit announce page.html --roles interactive --in-viewport
  a11y-audit announce page.html --scope "#checkout" --locale de`,
	Args: cobra.ExactArgs(1),
	RunE: runAnnounce,
}

func init() {
	rootCmd.AddCommand(announceCmd)
	addAuditFlags(announceCmd)
	announceCmd.Flags().StringSlice("roles", nil, "Only elements with these roles (e.g. button,link,landmark)")
	announceCmd.Flags().Bool("in-viewport", false, "Only elements that intersect the viewport")
}

func runAnnounce(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	roles, _ := cmd.Flags().GetStringSlice("roles")
	inViewport, _ := cmd.Flags().GetBool("in-viewport")

	opts, profiles, err := auditOptions(cmd)
	if err != nil {
		return err
	}
	if len(profiles) > 1 {
		return fmt.Errorf("announce takes a single profile")
	}
	if !opts.Enabled(audit.RuleAnnouncement) {
		return fmt.Errorf("the %s rule is disabled", audit.RuleAnnouncement)
	}
	opts.Viewport = profiles[0]

	p, err := platform.Open(ctx, args[0], opts.Viewport)
	if err != nil {
		return err
	}

	var keep map[string]bool
	if len(roles) > 0 || inViewport {
		tree, err := p.Tree.ReadElements(ctx, platform.ReadOptions{Viewport: opts.Viewport})
		if err != nil {
			return fmt.Errorf("reading element tree: %w", err)
		}
		model.GenerateRefs(tree)
		var bbox *[4]int
		if inViewport {
			b := opts.Viewport.Bounds()
			bbox = &b
		}
		keep = map[string]bool{}
		collectRefSet(model.FilterElements(tree, roles, bbox), keep)
	}

	report, err := audit.New(opts).Run(ctx, p)
	if err != nil {
		return err
	}
	return output.Print(selectAnnouncements(report.Checks.Announcements, keep))
}

// selectAnnouncements keeps results whose selector is in keep; a nil keep
// keeps everything.
func selectAnnouncements(all []*audit.AnnouncementResult, keep map[string]bool) []*audit.AnnouncementResult {
	if keep == nil {
		return all
	}
	out := make([]*audit.AnnouncementResult, 0, len(all))
	for _, a := range all {
		if keep[a.Selector] {
			out = append(out, a)
		}
	}
	return out
}

func collectRefSet(elements []model.Element, set map[string]bool) {
	for _, el := range elements {
		if el.Ref != "" {
			set[el.Ref] = true
		}
		collectRefSet(el.Children, set)
	}
}
