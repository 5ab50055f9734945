package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mj1618/a11y-audit/internal/model"
	"github.com/mj1618/a11y-audit/internal/platform"
)

// Engine runs audits with fixed options. It holds no per-run state and is
// safe for concurrent use.
type Engine struct {
	opts Options
}

// New returns an engine. Zero option fields take their defaults.
func New(opts Options) *Engine {
	return &Engine{opts: opts.withDefaults()}
}

// Options returns the engine options with defaults applied.
func (e *Engine) Options() Options { return e.opts }

// Snapshot reads the document behind p and builds the analyzer context
// for the configured scope.
func (e *Engine) Snapshot(ctx context.Context, p *platform.Provider) (*Context, error) {
	if p == nil || p.Tree == nil {
		return nil, ErrNoTree
	}
	tree, err := p.Tree.ReadElements(ctx, platform.ReadOptions{Viewport: e.opts.Viewport})
	if err != nil {
		return nil, fmt.Errorf("reading element tree: %w", err)
	}
	if len(tree) == 0 {
		return nil, ErrDetachedRoot
	}
	model.GenerateRefs(tree)
	flat := model.FlattenElements(tree)

	scope := -1
	if e.opts.Scope != "" {
		scope, err = findScope(tree, flat, e.opts.Scope)
		if err != nil {
			return nil, err
		}
	}
	return NewContext(ctx, p, flat, scope, e.opts)
}

// findScope resolves a scope selector to an index into flat. The selector
// is a ref as produced by GenerateRefs, or an id with or without "#".
func findScope(tree []model.Element, flat []model.FlatElement, selector string) (int, error) {
	el, err := model.FindElementByRef(tree, selector)
	if err != nil {
		id := strings.TrimPrefix(selector, "#")
		for i, f := range flat {
			if f.Attrs["id"] == id {
				return i, nil
			}
		}
		return -1, fmt.Errorf("%w: %v", ErrScopeNotFound, err)
	}
	for i, f := range flat {
		if f.ID == el.ID {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrScopeNotFound, selector)
}

// Run audits the document behind p. Violations and abstentions are part
// of the report; an error means the run itself could not complete.
func (e *Engine) Run(ctx context.Context, p *platform.Provider) (*AuditReport, error) {
	started := time.Now()
	log := zerolog.Ctx(ctx)
	opts := e.opts

	if p == nil || p.Tree == nil {
		return nil, ErrNoTree
	}
	if p.Styles == nil {
		return nil, ErrNoResolver
	}
	if opts.Enabled(RuleFocus) && p.Focus == nil {
		return nil, ErrNoFocus
	}
	ac, err := e.Snapshot(ctx, p)
	if err != nil {
		log.Error().Err(err).Msg("audit failed")
		return nil, err
	}

	n := len(ac.Elements)
	var (
		contrast    = make([]*ContrastResult, n)
		focus       = make([]*FocusIndicatorResult, n)
		keyboard    = make([]*KeyboardResult, n)
		aria        = make([]*AriaResult, n)
		motion      = make([]*MotionResult, n)
		target      = make([]*TargetSizeResult, n)
		announce    = make([]*AnnouncementResult, n)
		colorCue    = make([]*ColorCueResult, n)
		live        []*LiveRegionResult
		scopes      []*ScopeResult
		tabOrder    []Issue
		tabStops    []string
		structure   []Issue
		abstained   [3]int
		interactive = ac.Family(FamilyInteractive)
	)

	g, gctx := errgroup.WithContext(ctx)
	each := func(rule string, indices []int, fn func(i int) error) {
		if !opts.Enabled(rule) {
			return
		}
		g.Go(func() error {
			for _, i := range indices {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := fn(i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	all := ac.Family(FamilyAll)

	each(RuleContrast, ac.Family(FamilyText), func(i int) error {
		if contrast[i] = AnalyzeContrast(ac, i); contrast[i] == nil {
			abstained[0]++
		}
		return nil
	})
	each(RuleFocus, interactive, func(i int) error {
		r, err := AnalyzeFocusIndicator(ac, i)
		if err != nil {
			return err
		}
		if focus[i] = r; r == nil {
			abstained[1]++
		}
		return nil
	})
	each(RuleTargetSize, interactive, func(i int) error {
		if target[i] = AnalyzeTargetSize(ac, i, interactive); target[i] == nil {
			abstained[2]++
		}
		return nil
	})
	each(RuleKeyboard, all, func(i int) error {
		keyboard[i] = AnalyzeKeyboard(ac, i)
		return nil
	})
	each(RuleAria, all, func(i int) error {
		aria[i] = AnalyzeAria(ac, i)
		return nil
	})
	each(RuleMotion, all, func(i int) error {
		motion[i] = AnalyzeMotion(ac, i)
		return nil
	})
	each(RuleAnnouncement, all, func(i int) error {
		announce[i] = Announce(ac, i)
		return nil
	})
	each(RuleColorOnly, all, func(i int) error {
		colorCue[i] = AnalyzeColorCue(ac, i)
		return nil
	})
	single := func(rule string, fn func()) {
		if opts.Enabled(rule) {
			g.Go(func() error { fn(); return nil })
		}
	}
	single(RuleLiveRegions, func() { live = AnalyzeLiveRegions(ac) })
	single(RuleFocus, func() { scopes = AnalyzeFocusScopes(ac) })
	single(RuleKeyboard, func() {
		tabOrder = ValidateTabOrder(ac)
		for _, i := range TabSequence(ac) {
			tabStops = append(tabStops, ac.Selector(i))
		}
	})
	single(RuleStructure, func() { structure = StructuralIssues(ac) })

	if err := g.Wait(); err != nil {
		if errors.Is(err, ErrEngineFault) {
			log.Error().Err(err).Msg("audit failed")
		}
		return nil, err
	}

	report := &AuditReport{}
	bySelector := map[string]*ElementResult{}
	for i := ac.start; i < ac.end; i++ {
		el := ac.Elements[i]
		r := &ElementResult{
			Selector:     ac.Selector(i),
			Tag:          el.Tag,
			Role:         el.EffectiveRole(),
			Bounds:       el.Bounds,
			Contrast:     contrast[i],
			Focus:        focus[i],
			Keyboard:     keyboard[i],
			Aria:         aria[i],
			Motion:       motion[i],
			TargetSize:   target[i],
			Announcement: announce[i],
			ColorCue:     colorCue[i],
		}
		if !r.collect(&report.Checks) {
			continue
		}
		r.Score = ScoreElement(r)
		report.Elements = append(report.Elements, r)
		bySelector[r.Selector] = r
	}

	attach := func(issues []Issue) {
		for _, is := range issues {
			if r, ok := bySelector[is.Selector]; ok && is.Selector != "" {
				r.Issues = append(r.Issues, is)
				continue
			}
			report.Structural = append(report.Structural, is)
		}
	}
	attach(tabOrder)
	report.Checks.TabOrder = tabStops
	for _, lr := range live {
		report.Checks.LiveRegions = append(report.Checks.LiveRegions, lr)
		attach(lr.Issues)
	}
	for _, sc := range scopes {
		report.Checks.FocusScopes = append(report.Checks.FocusScopes, sc)
		attach(sc.Issues)
	}
	report.Structural = append(report.Structural, structure...)

	s := &report.Summary
	s.Elements = len(report.Elements)
	scores := make([]int, 0, len(report.Elements))
	for _, r := range report.Elements {
		scores = append(scores, r.Score)
		if r.Contrast != nil {
			s.ContrastChecks++
			if r.Contrast.Passes {
				s.ContrastPassed++
			}
		}
	}
	s.Abstentions = abstained[0] + abstained[1] + abstained[2]
	issues := report.AllIssues()
	countIssues(s, issues)

	report.Score = OverallScore(s.ContrastChecks, s.ContrastPassed, scores)
	report.Level = DeriveLevel(*s)
	report.Status = DeriveStatus(report.Score, *s)
	report.Recommendations = RankRecommendations(issues, opts.MaxRecommendations)
	report.Overview = Overview{
		Context:   opts.Context,
		Profile:   opts.Viewport.Name,
		RunID:     ulid.Make().String(),
		Timestamp: opts.Now().UTC(),
		Score:     report.Score,
		Level:     report.Level,
		Status:    report.Status,
	}

	log.Info().
		Str("run_id", report.Overview.RunID).
		Str("profile", report.Overview.Profile).
		Int("elements", s.Elements).
		Int("issues", s.Issues).
		Float64("score", report.Score).
		Str("level", string(report.Level)).
		Dur("elapsed", time.Since(started)).
		Msg("audit complete")
	return report, nil
}

// collect appends r's non-nil results to the check arrays and gathers
// their issues. It reports whether any check produced a result.
func (r *ElementResult) collect(c *Checks) bool {
	found := false
	if r.Contrast != nil {
		c.Contrast = append(c.Contrast, r.Contrast)
		r.Issues = append(r.Issues, r.Contrast.Issues...)
		found = true
	}
	if r.Focus != nil {
		c.Focus = append(c.Focus, r.Focus)
		r.Issues = append(r.Issues, r.Focus.Issues...)
		found = true
	}
	if r.Keyboard != nil {
		c.Keyboard = append(c.Keyboard, r.Keyboard)
		r.Issues = append(r.Issues, r.Keyboard.Issues...)
		found = true
	}
	if r.Aria != nil {
		c.Aria = append(c.Aria, r.Aria)
		r.Issues = append(r.Issues, r.Aria.Issues...)
		found = true
	}
	if r.Motion != nil {
		c.Motion = append(c.Motion, r.Motion)
		r.Issues = append(r.Issues, r.Motion.Issues...)
		found = true
	}
	if r.TargetSize != nil {
		c.TargetSize = append(c.TargetSize, r.TargetSize)
		r.Issues = append(r.Issues, r.TargetSize.Issues...)
		found = true
	}
	if r.Announcement != nil {
		c.Announcements = append(c.Announcements, r.Announcement)
		r.Issues = append(r.Issues, r.Announcement.Issues...)
		found = true
	}
	if r.ColorCue != nil {
		c.ColorCues = append(c.ColorCues, r.ColorCue)
		r.Issues = append(r.Issues, r.ColorCue.Issues...)
		found = true
	}
	return found
}

// Opener loads a fresh document rendered for one viewport profile.
type Opener func(ctx context.Context, vp model.Viewport) (*platform.Provider, error)

// RunProfiles audits one document per viewport profile in parallel and
// returns the reports keyed by profile name. Each profile gets its own
// document so focus probes never interfere.
func (e *Engine) RunProfiles(ctx context.Context, open Opener, profiles []model.Viewport) (map[string]*AuditReport, error) {
	reports := make([]*AuditReport, len(profiles))
	g, gctx := errgroup.WithContext(ctx)
	for k, vp := range profiles {
		g.Go(func() error {
			p, err := open(gctx, vp)
			if err != nil {
				return fmt.Errorf("profile %s: %w", vp.Name, err)
			}
			eng := &Engine{opts: e.opts}
			eng.opts.Viewport = vp
			r, err := eng.Run(gctx, p)
			if err != nil {
				return fmt.Errorf("profile %s: %w", vp.Name, err)
			}
			reports[k] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make(map[string]*AuditReport, len(profiles))
	for k, vp := range profiles {
		out[vp.Name] = reports[k]
	}
	return out, nil
}

// Monitor builds a live region monitor over the regions of the document
// behind p. The caller starts and stops it.
func (e *Engine) Monitor(ctx context.Context, p *platform.Provider) (*Monitor, []LiveRegion, error) {
	if p == nil || p.Mutations == nil {
		return nil, nil, ErrNoWatcher
	}
	ac, err := e.Snapshot(ctx, p)
	if err != nil {
		return nil, nil, err
	}
	regions := Regions(ac)
	return NewMonitor(p.Mutations, regions, e.opts.LiveBuffer), regions, nil
}
