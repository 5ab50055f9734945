// Package fake is an in-memory document host for tests.
package fake

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mj1618/a11y-audit/internal/model"
	"github.com/mj1618/a11y-audit/internal/platform"
)

// Doc is an in-memory document. Fields may be set directly before the
// document is shared; afterwards use the methods.
type Doc struct {
	Elements []model.Element

	// Styles holds each element's resting style; FocusStyles overrides it
	// while the element is focused.
	Styles      map[int]platform.ResolvedStyle
	FocusStyles map[int]platform.ResolvedStyle
	// Unavailable marks elements whose style cannot be read.
	Unavailable map[int]bool
	// Reduced marks elements covered by a reduced-motion rule.
	Reduced map[int]bool
	// Clock stamps mutations; defaults to time.Now.
	Clock func() time.Time

	mu       sync.Mutex
	active   int
	calls    []string
	watchers map[int]*watcher
	nextW    int
}

type watcher struct {
	regions map[int]bool
	ch      chan platform.Mutation
}

// New returns a document over the given tree.
func New(elements ...model.Element) *Doc {
	return &Doc{
		Elements:    elements,
		Styles:      map[int]platform.ResolvedStyle{},
		FocusStyles: map[int]platform.ResolvedStyle{},
		Unavailable: map[int]bool{},
		Reduced:     map[int]bool{},
		watchers:    map[int]*watcher{},
	}
}

// Provider exposes every capability of the document.
func (d *Doc) Provider() *platform.Provider {
	return &platform.Provider{Tree: d, Styles: d, Focus: d, Mutations: d, Mutator: d}
}

// Calls returns the focus operations performed so far, e.g. "focus 3".
func (d *Doc) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

// ReadElements returns a copy of the tree with the focused flag applied.
func (d *Doc) ReadElements(_ context.Context, opts platform.ReadOptions) ([]model.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return copyTree(d.Elements, d.active, opts.Depth, 1), nil
}

func copyTree(els []model.Element, active, maxDepth, depth int) []model.Element {
	if len(els) == 0 {
		return nil
	}
	out := make([]model.Element, len(els))
	for i, el := range els {
		el.Focused = active != 0 && el.ID == active
		if maxDepth > 0 && depth >= maxDepth {
			el.Children = nil
		} else {
			el.Children = copyTree(el.Children, active, maxDepth, depth+1)
		}
		out[i] = el
	}
	return out
}

// ResolveStyle returns the configured style, or ErrStyleUnavailable.
func (d *Doc) ResolveStyle(_ context.Context, id int) (platform.ResolvedStyle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Unavailable[id] {
		return platform.ResolvedStyle{}, platform.ErrStyleUnavailable
	}
	if id == d.active {
		if s, ok := d.FocusStyles[id]; ok {
			return s, nil
		}
	}
	return d.Styles[id], nil
}

// ReducedMotion reports the configured accommodation.
func (d *Doc) ReducedMotion(_ context.Context, id int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Reduced[id]
}

// ActiveElement returns the focused element, 0 for none.
func (d *Doc) ActiveElement(context.Context) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active, nil
}

// Focus moves focus to any known element.
func (d *Doc) Focus(_ context.Context, id int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if findElement(d.Elements, id) == nil {
		return fmt.Errorf("focus %d: %w", id, platform.ErrUnknownElement)
	}
	d.active = id
	d.calls = append(d.calls, fmt.Sprintf("focus %d", id))
	return nil
}

// Blur clears focus.
func (d *Doc) Blur(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.active = 0
	d.calls = append(d.calls, "blur")
	return nil
}

// Watch subscribes to text changes of the given regions.
func (d *Doc) Watch(_ context.Context, regions []int) (<-chan platform.Mutation, func(), error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	w := &watcher{regions: map[int]bool{}, ch: make(chan platform.Mutation, 64)}
	for _, r := range regions {
		w.regions[r] = true
	}
	if d.watchers == nil {
		d.watchers = map[int]*watcher{}
	}
	key := d.nextW
	d.nextW++
	d.watchers[key] = w

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.watchers, key)
			d.mu.Unlock()
			close(w.ch)
		})
	}
	return w.ch, cancel, nil
}

// SetText replaces an element's own text and notifies region watchers.
func (d *Doc) SetText(_ context.Context, id int, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	el := findElement(d.Elements, id)
	if el == nil {
		return fmt.Errorf("set text %d: %w", id, platform.ErrUnknownElement)
	}
	el.Text = model.CollapseSpace(text)
	el.Content = ""
	el.Children = nil
	d.notifyLocked(id, platform.MutationText)
	return nil
}

// SetAttr sets an attribute and notifies region watchers.
func (d *Doc) SetAttr(_ context.Context, id int, name, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	el := findElement(d.Elements, id)
	if el == nil {
		return fmt.Errorf("set attr %d: %w", id, platform.ErrUnknownElement)
	}
	if el.Attrs == nil {
		el.Attrs = map[string]string{}
	}
	el.Attrs[name] = value
	d.notifyLocked(id, platform.MutationAttr)
	return nil
}

// RemoveAttr deletes an attribute and notifies region watchers.
func (d *Doc) RemoveAttr(_ context.Context, id int, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	el := findElement(d.Elements, id)
	if el == nil {
		return fmt.Errorf("remove attr %d: %w", id, platform.ErrUnknownElement)
	}
	delete(el.Attrs, name)
	d.notifyLocked(id, platform.MutationAttr)
	return nil
}

// notifyLocked emits the text of every watched region containing target.
// Delivery never blocks; a full subscriber misses the event.
func (d *Doc) notifyLocked(target int, kind string) {
	now := time.Now()
	if d.Clock != nil {
		now = d.Clock()
	}
	for _, w := range d.watchers {
		for region := range w.regions {
			r := findElement(d.Elements, region)
			if r == nil || (region != target && findElement(r.Children, target) == nil) {
				continue
			}
			m := platform.Mutation{Region: region, Target: target, Kind: kind, Text: r.TextContent(), Time: now}
			select {
			case w.ch <- m:
			default:
			}
		}
	}
}

func findElement(els []model.Element, id int) *model.Element {
	for i := range els {
		if els[i].ID == id {
			return &els[i]
		}
		if found := findElement(els[i].Children, id); found != nil {
			return found
		}
	}
	return nil
}
