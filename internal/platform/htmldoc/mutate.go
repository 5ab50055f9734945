package htmldoc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/net/html"

	"github.com/mj1618/a11y-audit/internal/model"
	"github.com/mj1618/a11y-audit/internal/platform"
)

type watcher struct {
	regions []*html.Node
	ch      chan platform.Mutation
}

// Watch subscribes to text changes of the given regions.
func (d *Document) Watch(_ context.Context, regions []int) (<-chan platform.Mutation, func(), error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	w := &watcher{ch: make(chan platform.Mutation, 64)}
	for _, id := range regions {
		idx, ok := d.indexOf(id)
		if !ok {
			return nil, nil, fmt.Errorf("watch %d: %w", id, platform.ErrUnknownElement)
		}
		w.regions = append(w.regions, d.nodes[idx].html)
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

// SetText replaces the element's children with a single text node.
func (d *Document) SetText(_ context.Context, id int, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := d.lookup(id)
	if err != nil {
		return fmt.Errorf("set text: %w", err)
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})

	activeNode := d.activeNode()
	d.reindex()
	d.restoreActive(activeNode)
	d.notifyLocked(n, platform.MutationText)
	return nil
}

// SetAttr sets an attribute value.
func (d *Document) SetAttr(_ context.Context, id int, name, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := d.lookup(id)
	if err != nil {
		return fmt.Errorf("set attr: %w", err)
	}
	replaced := false
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == name {
			n.Attr[i].Val = value
			replaced = true
		}
	}
	if !replaced {
		n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
	}
	d.attrChanged(n, name)
	return nil
}

// RemoveAttr deletes an attribute.
func (d *Document) RemoveAttr(_ context.Context, id int, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := d.lookup(id)
	if err != nil {
		return fmt.Errorf("remove attr: %w", err)
	}
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace != "" || a.Key != name {
			kept = append(kept, a)
		}
	}
	n.Attr = kept
	d.attrChanged(n, name)
	return nil
}

func (d *Document) attrChanged(n *html.Node, name string) {
	if name == "style" {
		d.parseInline()
	}
	d.cache = map[int]computed{}
	d.notifyLocked(n, platform.MutationAttr)
}

func (d *Document) lookup(id int) (*html.Node, error) {
	idx, ok := d.indexOf(id)
	if !ok {
		return nil, fmt.Errorf("element %d: %w", id, platform.ErrUnknownElement)
	}
	return d.nodes[idx].html, nil
}

func (d *Document) activeNode() *html.Node {
	if d.active < 0 {
		return nil
	}
	return d.nodes[d.active].html
}

// restoreActive re-resolves focus after a reindex; focus is lost if the
// focused node left the document.
func (d *Document) restoreActive(n *html.Node) {
	d.active = -1
	if n == nil {
		return
	}
	if idx, ok := d.index[n]; ok {
		d.active = idx
	}
}

// notifyLocked emits the text of every watched region containing target.
// Delivery never blocks; a full subscriber misses the event.
func (d *Document) notifyLocked(target *html.Node, kind string) {
	now := time.Now()
	targetID := d.ids[target]
	for _, w := range d.watchers {
		for _, region := range w.regions {
			if !isAncestorOrSelf(region, target) {
				continue
			}
			m := platform.Mutation{
				Region: d.ids[region],
				Target: targetID,
				Kind:   kind,
				Text:   model.CollapseSpace(fullText(region)),
				Time:   now,
			}
			select {
			case w.ch <- m:
			default:
			}
		}
	}
}

func isAncestorOrSelf(anc, n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == anc {
			return true
		}
	}
	return false
}
