package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mj1618/a11y-audit/internal/audit"
	"github.com/mj1618/a11y-audit/internal/config"
	"github.com/mj1618/a11y-audit/internal/model"
	"github.com/mj1618/a11y-audit/internal/platform"
	_ "github.com/mj1618/a11y-audit/internal/platform/htmldoc"
)

// addAuditFlags registers the flags shared by commands that run the engine.
func addAuditFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("profiles", nil, "Viewport profiles to audit: desktop, tablet, mobile, or all (default: first configured)")
	cmd.Flags().String("scope", "", "Only audit the subtree at this selector (ref or #id)")
	cmd.Flags().String("locale", "", "Locale of the page text (default from config)")
	cmd.Flags().String("context", "", "Label carried into the report overview")
	cmd.Flags().StringSlice("disable", nil, "Rule families to switch off (see 'rules')")
	cmd.Flags().String("patterns", "", "YAML file extending the heuristic pattern tables")
}

// loadedConfig returns the root-loaded config, or the defaults when a
// command runs without the root pre-run (tests).
func loadedConfig() *config.Config {
	if cfg == nil {
		return config.Default()
	}
	return cfg
}

// auditOptions merges the loaded config with the command's audit flags.
// It returns the options and the selected viewport profiles. Flags the
// command does not define are ignored.
func auditOptions(cmd *cobra.Command) (audit.Options, []model.Viewport, error) {
	c := *loadedConfig()
	rules := make(map[string]bool, len(c.Rules))
	for k, v := range c.Rules {
		rules[k] = v
	}
	c.Rules = rules

	if cmd.Flags().Changed("profiles") {
		c.Profiles, _ = cmd.Flags().GetStringSlice("profiles")
	}
	if v, _ := cmd.Flags().GetString("scope"); v != "" {
		c.Scope = v
	}
	if v, _ := cmd.Flags().GetString("locale"); v != "" {
		c.Locale = v
	}
	if v, _ := cmd.Flags().GetString("context"); v != "" {
		c.Context = v
	}
	if v, _ := cmd.Flags().GetString("patterns"); v != "" {
		c.PatternsFile = v
	}
	disabled, _ := cmd.Flags().GetStringSlice("disable")
	for _, r := range disabled {
		r = strings.TrimSpace(r)
		if !audit.KnownRule(r) {
			return audit.Options{}, nil, fmt.Errorf("unknown rule %q (known: %s)", r, strings.Join(audit.RuleNames(), ", "))
		}
		c.Rules[r] = false
	}

	opts, err := c.AuditOptions()
	if err != nil {
		return audit.Options{}, nil, err
	}
	profiles, err := c.SelectedViewports()
	if err != nil {
		return audit.Options{}, nil, err
	}
	return opts, profiles, nil
}

// commandContext returns the command context carrying the CLI logger.
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logger.WithContext(ctx)
}

// documentOpener opens path once per viewport profile.
func documentOpener(path string) audit.Opener {
	return func(ctx context.Context, vp model.Viewport) (*platform.Provider, error) {
		return platform.Open(ctx, path, vp)
	}
}

// resolveTarget finds the element ID for a ref, an #id, or, failing both,
// the single element whose text contains target.
func resolveTarget(tree []model.Element, target string) (int, error) {
	if el, err := model.FindElementByRef(tree, target); err == nil {
		return el.ID, nil
	}
	flat := model.FlattenElements(tree)
	id := strings.TrimPrefix(target, "#")
	for _, f := range flat {
		if f.Attrs["id"] == id {
			return f.ID, nil
		}
	}

	var matches []model.Element
	collectTextMatches(model.FilterByText(tree, target), strings.ToLower(target), &matches)
	switch len(matches) {
	case 0:
		return 0, fmt.Errorf("no element matches %q", target)
	case 1:
		return matches[0].ID, nil
	}
	refs := make([]string, len(matches))
	for i, m := range matches {
		refs[i] = m.Ref
	}
	return 0, fmt.Errorf("%q matches %d elements: %s", target, len(matches), strings.Join(refs, ", "))
}

// collectTextMatches keeps the deepest elements of a FilterByText result,
// so a match is not shadowed by the ancestors kept for context.
func collectTextMatches(elements []model.Element, textLower string, out *[]model.Element) {
	for _, el := range elements {
		if len(el.Children) > 0 {
			before := len(*out)
			collectTextMatches(el.Children, textLower, out)
			if len(*out) > before {
				continue
			}
		}
		if strings.Contains(strings.ToLower(el.Text), textLower) ||
			strings.Contains(strings.ToLower(el.Attrs["aria-label"]), textLower) ||
			strings.Contains(strings.ToLower(el.Attrs["title"]), textLower) {
			*out = append(*out, el)
		}
	}
}
