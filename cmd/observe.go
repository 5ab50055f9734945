package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mj1618/a11y-audit/internal/audit"
	"github.com/mj1618/a11y-audit/internal/model"
	"github.com/mj1618/a11y-audit/internal/output"
	"github.com/mj1618/a11y-audit/internal/platform"
)

// Step actions of an observe script.
const (
	stepSetText    = "set_text"
	stepSetAttr    = "set_attr"
	stepRemoveAttr = "remove_attr"
	stepWait       = "wait"
)

// Step is one mutation applied to the document during observation.
type Step struct {
	Action string        `yaml:"action"`
	Target string        `yaml:"target,omitempty"`
	Text   string        `yaml:"text,omitempty"`
	Name   string        `yaml:"name,omitempty"`
	Value  string        `yaml:"value,omitempty"`
	Wait   time.Duration `yaml:"wait,omitempty"`
}

// Script is the YAML document read by observe --script.
type Script struct {
	Steps []Step `yaml:"steps"`
}

// ObserveResult is the output of the observe command.
type ObserveResult struct {
	Regions       []audit.LiveRegion   `yaml:"regions"                 json:"regions"`
	Steps         int                  `yaml:"steps"                   json:"steps"`
	Announcements []audit.Announcement `yaml:"announcements"           json:"announcements"`
	Dropped       int                  `yaml:"dropped,omitempty"       json:"dropped,omitempty"`
	Cleared       int                  `yaml:"cleared,omitempty"       json:"cleared,omitempty"`
}

var observeCmd = &cobra.Command{
	Use:   "observe FILE",
	Short: "Replay a mutation script and log live region announcements",
	Long: `Monitor the live regions of a document while a scripted sequence of
mutations is applied, and print what a screen reader would announce.

The script is YAML:

  steps:
    - action: set_text
      target: "#status"
      text: Saved
    - action: wait
      wait: 100ms
    - action: set_attr
      target: "main/div:toast"
      name: role
      value: alert
    - action: remove_attr
      target: "#banner"
      name: hidden

Targets are refs, #ids, or text that matches exactly one element.

Examples:
  a11y-audit observe page.html --script flows/save.yaml
  a11y-audit observe page.html --script flows/save.yaml --buffer 32 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runObserve,
}

func init() {
	rootCmd.AddCommand(observeCmd)
	observeCmd.Flags().String("script", "", "YAML mutation script (required)")
	observeCmd.Flags().Int("buffer", 0, "Announcement log capacity (default from config)")
	observeCmd.Flags().Duration("settle", 50*time.Millisecond, "Time to wait after the last step before stopping")
	observeCmd.Flags().StringSlice("profiles", nil, "Viewport profile (one)")
	observeCmd.Flags().String("locale", "", "Locale of the page text")
}

func runObserve(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	scriptPath, _ := cmd.Flags().GetString("script")
	buffer, _ := cmd.Flags().GetInt("buffer")
	settle, _ := cmd.Flags().GetDuration("settle")

	if scriptPath == "" {
		return fmt.Errorf("--script is required")
	}
	data, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	script, err := parseScript(data)
	if err != nil {
		return err
	}

	opts, profiles, err := auditOptions(cmd)
	if err != nil {
		return err
	}
	if len(profiles) > 1 {
		return fmt.Errorf("observe takes a single profile")
	}
	opts.Viewport = profiles[0]
	if buffer > 0 {
		opts.LiveBuffer = buffer
	}

	p, err := platform.Open(ctx, args[0], opts.Viewport)
	if err != nil {
		return err
	}
	result, err := observe(ctx, audit.New(opts), p, script, settle)
	if err != nil {
		return err
	}
	return output.Print(result)
}

func parseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	for i, st := range s.Steps {
		switch st.Action {
		case stepSetText:
		case stepSetAttr, stepRemoveAttr:
			if st.Name == "" {
				return nil, fmt.Errorf("step %d: %s needs a name", i+1, st.Action)
			}
		case stepWait:
			if st.Wait <= 0 {
				return nil, fmt.Errorf("step %d: wait needs a positive duration", i+1)
			}
			continue
		default:
			return nil, fmt.Errorf("step %d: unknown action %q (use set_text, set_attr, remove_attr, wait)", i+1, st.Action)
		}
		if st.Target == "" {
			return nil, fmt.Errorf("step %d: %s needs a target", i+1, st.Action)
		}
	}
	return &s, nil
}

// observe starts a live region monitor over p, applies the script and
// returns the announcement log.
func observe(ctx context.Context, eng *audit.Engine, p *platform.Provider, script *Script, settle time.Duration) (*ObserveResult, error) {
	if p.Mutator == nil {
		return nil, fmt.Errorf("document host cannot apply mutations")
	}
	mon, regions, err := eng.Monitor(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := mon.Start(ctx); err != nil {
		return nil, err
	}
	readOpts := platform.ReadOptions{Viewport: eng.Options().Viewport}
	for i, st := range script.Steps {
		if err := applyStep(ctx, p, readOpts, st); err != nil {
			mon.Stop()
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	if settle > 0 {
		select {
		case <-time.After(settle):
		case <-ctx.Done():
		}
	}
	log := mon.Stop()
	if log == nil {
		log = []audit.Announcement{}
	}
	return &ObserveResult{
		Regions:       regions,
		Steps:         len(script.Steps),
		Announcements: log,
		Dropped:       mon.Dropped(),
		Cleared:       mon.Cleared(),
	}, nil
}

// applyStep resolves the step's target against the document as earlier
// steps left it, then applies the mutation.
func applyStep(ctx context.Context, p *platform.Provider, opts platform.ReadOptions, st Step) error {
	if st.Action == stepWait {
		select {
		case <-time.After(st.Wait):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	tree, err := p.Tree.ReadElements(ctx, opts)
	if err != nil {
		return fmt.Errorf("reading element tree: %w", err)
	}
	model.GenerateRefs(tree)
	id, err := resolveTarget(tree, st.Target)
	if err != nil {
		return err
	}
	m := p.Mutator
	switch st.Action {
	case stepSetText:
		return m.SetText(ctx, id, st.Text)
	case stepSetAttr:
		return m.SetAttr(ctx, id, st.Name, st.Value)
	case stepRemoveAttr:
		return m.RemoveAttr(ctx, id, st.Name)
	}
	return fmt.Errorf("unknown action %q", st.Action)
}
