package htmldoc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mj1618/a11y-audit/internal/model"
	"github.com/mj1618/a11y-audit/internal/platform"
)

func TestWatch_TextChange(t *testing.T) {
	ctx := context.Background()
	d := openFixture(t, model.DefaultViewports[0])
	flat := flatByText(t, d)
	region := flat["div#status"].ID
	msg := flat["Idle"].ID

	ch, cancel, err := d.Watch(ctx, []int{region})
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, d.SetText(ctx, msg, "Saved 3 items"))
	select {
	case m := <-ch:
		assert.Equal(t, region, m.Region)
		assert.Equal(t, platform.MutationText, m.Kind)
		assert.Equal(t, "Saved 3 items", m.Text)
	case <-time.After(time.Second):
		t.Fatal("no mutation delivered")
	}

	// Changes outside the region are not delivered.
	require.NoError(t, d.SetAttr(ctx, flat["Save"].ID, "aria-pressed", "true"))
	select {
	case m := <-ch:
		t.Fatalf("unexpected mutation %+v", m)
	default:
	}
}

func TestSetAttr_Style(t *testing.T) {
	ctx := context.Background()
	d := openFixture(t, model.DefaultViewports[0])
	flat := flatByText(t, d)
	id := flat["Save"].ID

	require.NoError(t, d.SetAttr(ctx, id, "style", "color: #ff0000"))
	s, err := d.ResolveStyle(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", s.Color)

	require.NoError(t, d.RemoveAttr(ctx, id, "style"))
	s, err = d.ResolveStyle(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "#333333", s.Color)
}

func TestSetText_KeepsFocus(t *testing.T) {
	ctx := context.Background()
	d := openFixture(t, model.DefaultViewports[0])
	flat := flatByText(t, d)

	require.NoError(t, d.Focus(ctx, flat["Save"].ID))
	require.NoError(t, d.SetText(ctx, flat["div#status"].ID, "Done"))

	flat = flatByText(t, d)
	active, err := d.ActiveElement(ctx)
	require.NoError(t, err)
	assert.Equal(t, flat["Save"].ID, active)
}

func TestMutations_UnknownElement(t *testing.T) {
	ctx := context.Background()
	d := openFixture(t, model.DefaultViewports[0])
	assert.ErrorIs(t, d.SetText(ctx, 9999, "x"), platform.ErrUnknownElement)
	_, _, err := d.Watch(ctx, []int{9999})
	assert.ErrorIs(t, err, platform.ErrUnknownElement)
}

const cardPage = `<body>
<div id="card"><span>a</span><span>b</span></div>
<div id="status" role="status">Idle</div>
<button id="save">Save</button>
</body>`

func TestSetText_KeepsLaterIDs(t *testing.T) {
	ctx := context.Background()
	d, err := ParseString(cardPage, Options{})
	require.NoError(t, err)
	before := flatByText(t, d)
	card := before["div#card"].ID
	status := before["Idle"].ID
	save := before["Save"].ID

	ch, cancel, err := d.Watch(ctx, []int{status})
	require.NoError(t, err)
	defer cancel()

	// Replacing the card's spans removes two elements ahead of the region.
	require.NoError(t, d.SetText(ctx, card, "Empty"))
	after := flatByText(t, d)
	assert.Equal(t, status, after["Idle"].ID)
	assert.Equal(t, save, after["Save"].ID)
	assert.NotContains(t, after, "a")

	require.NoError(t, d.SetText(ctx, status, "Saved"))
	select {
	case m := <-ch:
		assert.Equal(t, status, m.Region)
		assert.Equal(t, status, m.Target)
		assert.Equal(t, "Saved", m.Text)
	case <-time.After(time.Second):
		t.Fatal("no mutation delivered")
	}

	require.NoError(t, d.Focus(ctx, save))
	active, err := d.ActiveElement(ctx)
	require.NoError(t, err)
	assert.Equal(t, save, active)
}

func TestSetText_RemovedElementIsUnknown(t *testing.T) {
	ctx := context.Background()
	d, err := ParseString(cardPage, Options{})
	require.NoError(t, err)
	els, err := d.ReadElements(ctx, platform.ReadOptions{})
	require.NoError(t, err)
	var span int
	for _, f := range model.FlattenElements(els) {
		if f.Tag == "span" {
			span = f.ID
			break
		}
	}
	require.NotZero(t, span)

	flat := flatByText(t, d)
	require.NoError(t, d.SetText(ctx, flat["div#card"].ID, "Empty"))
	assert.ErrorIs(t, d.SetText(ctx, span, "x"), platform.ErrUnknownElement)
}
