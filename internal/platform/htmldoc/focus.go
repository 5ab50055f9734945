package htmldoc

import (
	"context"
	"fmt"

	"github.com/mj1618/a11y-audit/internal/platform"
)

// ActiveElement returns the focused element ID, 0 for the body.
func (d *Document) ActiveElement(context.Context) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active < 0 {
		return 0, nil
	}
	return d.nodes[d.active].id, nil
}

// Focus moves focus to the element. Elements that are neither natively
// focusable nor carry a tabindex, and hidden elements, refuse focus.
func (d *Document) Focus(_ context.Context, id int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	idx, ok := d.indexOf(id)
	if !ok {
		return fmt.Errorf("focus %d: %w", id, platform.ErrUnknownElement)
	}
	if !d.focusable(idx) {
		return fmt.Errorf("focus <%s> %d: %w", d.nodes[idx].tag, id, platform.ErrNotFocusable)
	}
	if s, _ := d.style(idx); s.Hidden {
		return fmt.Errorf("focus hidden <%s> %d: %w", d.nodes[idx].tag, id, platform.ErrNotFocusable)
	}
	if d.active != idx {
		d.active = idx
		d.cache = map[int]computed{}
	}
	return nil
}

// Blur returns focus to the body.
func (d *Document) Blur(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active != -1 {
		d.active = -1
		d.cache = map[int]computed{}
	}
	return nil
}
