package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mj1618/a11y-audit/internal/model"
	"github.com/mj1618/a11y-audit/internal/platform"
	"github.com/mj1618/a11y-audit/internal/platform/fake"
	"github.com/mj1618/a11y-audit/internal/platform/htmldoc"
)

func TestAnalyzeLiveRegions(t *testing.T) {
	doc := fake.New(
		node(1, "div", attrs("role", "status"), "Saved"),
		node(2, "div", attrs("class", "toast toast-success"), "Copied"),
		node(3, "div", attrs("aria-live", "polite"), "", node(4, "p", attrs("class", "flash"), "Welcome back")),
		node(5, "div", attrs("role", "alert", "aria-live", "off"), "Oops"),
		node(6, "div", attrs("role", "alert", "data-expect-content", ""), ""),
		node(7, "div", attrs("class", "statusbar"), "Ready"),
	)
	ac := snapshot(t, doc, Options{})

	results := AnalyzeLiveRegions(ac)
	require.Len(t, results, 5)

	status := results[0]
	assert.Equal(t, "polite", status.Politeness)
	assert.True(t, status.Atomic)
	assert.Empty(t, status.Issues)

	toast := results[1]
	assert.True(t, toast.Candidate)
	assert.Equal(t, "none", toast.Politeness)
	assert.Equal(t, []string{"Status message is not exposed as a live region"}, messages(toast.Issues))

	polite := results[2]
	assert.Equal(t, ac.Selector(at(t, ac, 3)), polite.Selector, "flash inside a live region is covered")
	assert.False(t, polite.Atomic)

	assert.Equal(t, []string{`role=alert is silenced by aria-live="off"`}, messages(results[3].Issues))
	assert.True(t, results[4].Empty)
	assert.Equal(t, []string{"Alert region is empty when it is expected to announce"}, messages(results[4].Issues))
}

func TestRegions(t *testing.T) {
	doc := fake.New(
		node(1, "div", attrs("role", "log"), "Line one"),
		node(2, "p", nil, "Static"),
		node(3, "span", attrs("aria-live", "assertive"), ""),
	)
	ac := snapshot(t, doc, Options{})

	regions := Regions(ac)
	require.Len(t, regions, 2)
	assert.Equal(t, LiveRegion{ID: 1, Selector: ac.Selector(at(t, ac, 1)), Politeness: "polite", Text: "Line one"}, regions[0])
	assert.Equal(t, "assertive", regions[1].Politeness)
}

func startMonitor(t *testing.T, doc *fake.Doc, capacity int) *Monitor {
	t.Helper()
	ctx := context.Background()
	m, _, err := New(Options{LiveBuffer: capacity}).Monitor(ctx, doc.Provider())
	require.NoError(t, err)
	require.NoError(t, m.Start(ctx))
	return m
}

func TestMonitor_StopWithoutStart(t *testing.T) {
	m := NewMonitor(nil, nil, 4)
	log := m.Stop()
	assert.NotNil(t, log)
	assert.Empty(t, log)
	assert.ErrorIs(t, m.Start(context.Background()), ErrNoWatcher)
}

func TestMonitor_NoMutations(t *testing.T) {
	doc := fake.New(node(1, "div", attrs("role", "status"), ""))
	m := startMonitor(t, doc, 0)

	log := m.Stop()
	assert.NotNil(t, log)
	assert.Empty(t, log)
	assert.Empty(t, m.Stop(), "stop is idempotent")
}

func TestMonitor_StartTwice(t *testing.T) {
	doc := fake.New(node(1, "div", attrs("role", "status"), ""))
	m := startMonitor(t, doc, 0)
	defer m.Stop()

	assert.Error(t, m.Start(context.Background()))
}

func TestMonitor_RecordsDeltas(t *testing.T) {
	ctx := context.Background()
	stamp := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	doc := fake.New(
		node(1, "div", attrs("role", "status"), "Saving"),
		node(2, "div", attrs("aria-live", "assertive"), "", node(3, "span", nil, "")),
	)
	doc.Clock = func() time.Time { return stamp }
	m := startMonitor(t, doc, 0)

	require.NoError(t, doc.SetText(ctx, 1, "Saving done"))
	require.NoError(t, doc.SetText(ctx, 1, "Saved"))
	require.NoError(t, doc.SetText(ctx, 3, "Connection lost"))
	require.NoError(t, doc.SetText(ctx, 1, "Saved"))

	log := m.Stop()
	require.Len(t, log, 3)
	assert.Equal(t, Announcement{Time: stamp, Selector: log[0].Selector, Politeness: "polite", Change: model.ChangeAdded, Text: "done"}, log[0])
	assert.Equal(t, model.ChangeChanged, log[1].Change)
	assert.Equal(t, "Saved", log[1].Text)
	assert.Equal(t, "assertive", log[2].Politeness)
	assert.Equal(t, "Connection lost", log[2].Text)
}

func TestMonitor_OffRegionIsSilent(t *testing.T) {
	doc := fake.New(node(1, "div", attrs("aria-live", "off"), "0"))
	m := startMonitor(t, doc, 0)

	require.NoError(t, doc.SetText(context.Background(), 1, "1"))
	assert.Empty(t, m.Stop())
}

func TestMonitor_RingOverflow(t *testing.T) {
	ctx := context.Background()
	doc := fake.New(node(1, "div", attrs("role", "log"), ""))
	m := startMonitor(t, doc, 2)

	for _, s := range []string{"one", "two", "three"} {
		require.NoError(t, doc.SetText(ctx, 1, s))
	}
	log := m.Stop()
	require.Len(t, log, 2)
	assert.Equal(t, "two", log[0].Text)
	assert.Equal(t, "three", log[1].Text)
	assert.Equal(t, 1, m.Dropped())
}

func TestMonitor_ClearedRegion(t *testing.T) {
	doc := fake.New(node(1, "div", attrs("role", "alert"), "Payment failed"))
	m := startMonitor(t, doc, 0)

	require.NoError(t, doc.SetText(context.Background(), 1, ""))
	assert.Empty(t, m.Stop())
	assert.Equal(t, 1, m.Cleared())
}

func TestMonitor_HTMLRegionSurvivesEarlierEdit(t *testing.T) {
	ctx := context.Background()
	doc, err := htmldoc.ParseString(`<body>
<div id="card"><span>a</span><span>b</span></div>
<div id="status" role="status">Idle</div>
</body>`, htmldoc.Options{})
	require.NoError(t, err)
	p := doc.Provider()

	m, regions, err := New(Options{}).Monitor(ctx, p)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	require.NoError(t, m.Start(ctx))

	ids := map[string]int{}
	els, err := p.Tree.ReadElements(ctx, platform.ReadOptions{})
	require.NoError(t, err)
	for _, f := range model.FlattenElements(els) {
		if id := f.Attrs["id"]; id != "" {
			ids[id] = f.ID
		}
	}
	require.NoError(t, doc.SetText(ctx, ids["card"], "Empty"))
	require.NoError(t, doc.SetText(ctx, ids["status"], "Saved"))

	log := m.Stop()
	require.Len(t, log, 1)
	assert.Equal(t, regions[0].Selector, log[0].Selector)
	assert.Equal(t, "Saved", log[0].Text)
}
