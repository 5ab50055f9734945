package audit

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mj1618/a11y-audit/internal/model"
	"github.com/mj1618/a11y-audit/internal/platform"
)

// Politeness returns the effective aria-live policy of el and whether it
// is a live region at all.
func Politeness(el model.FlatElement) (string, bool) {
	if v := strings.ToLower(strings.TrimSpace(el.Attrs["aria-live"])); v != "" {
		return v, true
	}
	p, ok := model.LiveRoles[el.EffectiveRole()]
	return p, ok
}

// AnalyzeLiveRegions lists live regions and status-like elements that
// should be live regions but are not.
func AnalyzeLiveRegions(ac *Context) []*LiveRegionResult {
	var out []*LiveRegionResult
	for i := ac.start; i < ac.end; i++ {
		el := ac.Elements[i]
		sel := ac.Selector(i)
		role := el.EffectiveRole()
		politeness, live := Politeness(el)
		if !live {
			if statusLike(ac, el) {
				out = append(out, &LiveRegionResult{
					Selector:   sel,
					Politeness: "none",
					Candidate:  true,
					Issues: []Issue{{
						Rule: RuleLiveRegions, Impact: Moderate, Selector: sel, WCAG: "4.1.3",
						Message:        "Status message is not exposed as a live region",
						Recommendation: "Add role=\"status\" or aria-live=\"polite\" to status messages",
					}},
				})
			}
			continue
		}
		res := &LiveRegionResult{
			Selector:   sel,
			Role:       el.Role,
			Politeness: politeness,
			Atomic:     strings.EqualFold(el.Attrs["aria-atomic"], "true") || role == "alert" || role == "status",
			Empty:      strings.TrimSpace(el.Content) == "",
		}
		if politeness == "off" && (role == "alert" || role == "status") {
			res.Issues = append(res.Issues, Issue{
				Rule: RuleLiveRegions, Impact: Minor, Selector: sel, WCAG: "4.1.3",
				Message:        fmt.Sprintf("role=%s is silenced by aria-live=\"off\"", role),
				Recommendation: "Remove aria-live=\"off\" from alert and status regions",
			})
		}
		if res.Empty && role == "alert" && el.Element().HasAttr("data-expect-content") {
			res.Issues = append(res.Issues, Issue{
				Rule: RuleLiveRegions, Impact: Minor, Selector: sel, WCAG: "4.1.3",
				Message:        "Alert region is empty when it is expected to announce",
				Recommendation: "Insert the alert text into the region after it is rendered",
			})
		}
		out = append(out, res)
	}
	return out
}

// statusLike reports whether el's classes name a status message pattern.
// Elements nested in an existing live region are covered by it.
func statusLike(ac *Context, el model.FlatElement) bool {
	found := false
	for _, cls := range el.Element().Classes() {
		for _, p := range strings.FieldsFunc(strings.ToLower(cls), func(r rune) bool { return r == '-' || r == '_' }) {
			if oneOf(p, ac.opts.Patterns.StatusClasses) {
				found = true
			}
		}
	}
	if !found {
		return false
	}
	for j := el.Parent; j >= 0; j = ac.Elements[j].Parent {
		if _, live := Politeness(ac.Elements[j]); live {
			return false
		}
	}
	return true
}

// Announcement is one spoken live region update.
type Announcement struct {
	Time       time.Time        `yaml:"time"       json:"time"`
	Selector   string           `yaml:"selector"   json:"selector"`
	Politeness string           `yaml:"politeness" json:"politeness"`
	Change     model.ChangeType `yaml:"change"     json:"change"`
	Text       string           `yaml:"text"       json:"text"`
}

// LiveRegion identifies a watched region.
type LiveRegion struct {
	ID         int    `yaml:"id"             json:"id"`
	Selector   string `yaml:"selector"       json:"selector"`
	Politeness string `yaml:"politeness"     json:"politeness"`
	Text       string `yaml:"text,omitempty" json:"text,omitempty"`
}

// Regions returns the live regions of an audit context in document order.
func Regions(ac *Context) []LiveRegion {
	var out []LiveRegion
	for i := ac.start; i < ac.end; i++ {
		el := ac.Elements[i]
		if p, ok := Politeness(el); ok {
			out = append(out, LiveRegion{ID: el.ID, Selector: ac.Selector(i), Politeness: p, Text: el.Content})
		}
	}
	return out
}

// Monitor records announcements of live regions between Start and Stop.
// The log is a ring: when full, the oldest entry is dropped.
type Monitor struct {
	watcher platform.MutationWatcher
	regions map[int]LiveRegion

	mu      sync.Mutex
	buf     []Announcement
	head    int
	n       int
	dropped int
	last    map[int]string
	cleared int

	cancel  func()
	done    chan struct{}
	stopped bool
}

// NewMonitor returns a stopped monitor over regions with a log of at most
// capacity entries.
func NewMonitor(w platform.MutationWatcher, regions []LiveRegion, capacity int) *Monitor {
	if capacity <= 0 {
		capacity = 256
	}
	m := &Monitor{
		watcher: w,
		regions: make(map[int]LiveRegion, len(regions)),
		buf:     make([]Announcement, capacity),
		last:    make(map[int]string, len(regions)),
	}
	for _, r := range regions {
		m.regions[r.ID] = r
		m.last[r.ID] = r.Text
	}
	return m
}

// Start subscribes to mutations. It returns ErrNoWatcher without a
// watcher; calling Start twice is an error.
func (m *Monitor) Start(ctx context.Context) error {
	if m.watcher == nil {
		return ErrNoWatcher
	}
	m.mu.Lock()
	if m.done != nil {
		m.mu.Unlock()
		return fmt.Errorf("monitor already started")
	}
	ids := make([]int, 0, len(m.regions))
	for id := range m.regions {
		ids = append(ids, id)
	}
	ch, cancel, err := m.watcher.Watch(ctx, ids)
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("watching live regions: %w", err)
	}
	m.cancel = cancel
	m.done = make(chan struct{})
	m.mu.Unlock()

	zerolog.Ctx(ctx).Debug().Int("regions", len(ids)).Msg("live region monitor started")
	go m.run(ctx, ch)
	return nil
}

func (m *Monitor) run(ctx context.Context, ch <-chan platform.Mutation) {
	defer close(m.done)
	for {
		select {
		case <-ctx.Done():
			return
		case mut, ok := <-ch:
			if !ok {
				return
			}
			m.record(mut)
		}
	}
}

func (m *Monitor) record(mut platform.Mutation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	region, ok := m.regions[mut.Region]
	if !ok {
		return
	}
	change, changed := model.DiffText(m.last[mut.Region], mut.Text)
	m.last[mut.Region] = mut.Text
	if !changed {
		return
	}
	if change.Type == model.ChangeRemoved {
		m.cleared++
		return
	}
	if change.Delta == "" || region.Politeness == "off" {
		return
	}
	m.push(Announcement{
		Time:       mut.Time,
		Selector:   region.Selector,
		Politeness: region.Politeness,
		Change:     change.Type,
		Text:       change.Delta,
	})
}

func (m *Monitor) push(a Announcement) {
	capacity := len(m.buf)
	if m.n == capacity {
		m.buf[m.head] = a
		m.head = (m.head + 1) % capacity
		m.dropped++
		return
	}
	m.buf[(m.head+m.n)%capacity] = a
	m.n++
}

// Stop unsubscribes and returns the log, oldest first. Stop without Start
// or without any mutation returns an empty log; later calls return the
// same log.
func (m *Monitor) Stop() []Announcement {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	first := !m.stopped
	m.stopped = true
	m.mu.Unlock()

	if first && cancel != nil {
		cancel()
		<-done
	}
	return m.Log()
}

// Log returns a copy of the current log, oldest first.
func (m *Monitor) Log() []Announcement {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Announcement, 0, m.n)
	for k := 0; k < m.n; k++ {
		out = append(out, m.buf[(m.head+k)%len(m.buf)])
	}
	return out
}

// Dropped returns how many entries the ring discarded.
func (m *Monitor) Dropped() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped
}

// Cleared returns how many updates emptied a region.
func (m *Monitor) Cleared() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cleared
}
