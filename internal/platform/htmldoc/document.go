// Package htmldoc hosts a rendered HTML snapshot: it parses the markup with
// x/net/html, resolves styles from the document's stylesheets with douceur,
// and emulates focus and DOM mutations so the audit engine can probe it.
package htmldoc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/mj1618/a11y-audit/internal/model"
	"github.com/mj1618/a11y-audit/internal/platform"
)

func init() {
	platform.Register(Open, ".html", ".htm", ".xhtml")
}

// node is an element of the parsed document. Nodes are indexed in
// document order. The element ID is assigned once per *html.Node and
// survives reindexing, so IDs stay valid across mutations.
type node struct {
	html     *html.Node
	id       int
	tag      string
	parent   int
	children []int
}

// Document is a parsed, mutable HTML document rendered for one viewport.
type Document struct {
	mu        sync.Mutex
	root      *html.Node
	nodes     []*node
	index     map[*html.Node]int
	ids       map[*html.Node]int
	byID      map[int]int
	nextID    int
	rules     []rule
	inline    map[int][]decl
	badInline map[int]bool
	sheetErr  error
	viewport  model.Viewport
	active    int // node index, -1 for none
	cache     map[int]computed
	watchers  map[int]*watcher
	nextW     int
}

// Options configures Parse.
type Options struct {
	Viewport model.Viewport
	// BaseDir resolves relative <link rel="stylesheet"> hrefs. Empty skips
	// linked stylesheets.
	BaseDir string
}

// skippedTags never render as elements.
var skippedTags = map[string]bool{
	"head":     true,
	"script":   true,
	"style":    true,
	"template": true,
	"noscript": true,
	"link":     true,
	"meta":     true,
	"title":    true,
}

// Open loads an HTML file and returns a provider for it.
func Open(_ context.Context, source string, vp model.Viewport) (*platform.Provider, error) {
	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()
	doc, err := Parse(f, Options{Viewport: vp, BaseDir: filepath.Dir(source)})
	if err != nil {
		return nil, err
	}
	return doc.Provider(), nil
}

// Parse reads an HTML document.
func Parse(r io.Reader, opts Options) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	vp := opts.Viewport
	if vp.Width == 0 {
		vp = model.DefaultViewports[0]
	}
	d := &Document{
		root:     root,
		index:    map[*html.Node]int{},
		ids:      map[*html.Node]int{},
		byID:     map[int]int{},
		viewport: vp,
		active:   -1,
		cache:    map[int]computed{},
		watchers: map[int]*watcher{},
	}
	if body := findTag(root, "body"); body != nil {
		d.indexNode(body, -1)
	}
	if err := d.loadStyles(opts.BaseDir); err != nil {
		return nil, err
	}
	// Autofocus takes focus on load, like a browser would.
	for i, n := range d.nodes {
		if _, ok := attrOK(n.html, "autofocus"); ok && d.focusable(i) {
			d.active = i
			break
		}
	}
	return d, nil
}

// ParseString is Parse over an in-memory document.
func ParseString(s string, opts Options) (*Document, error) {
	return Parse(strings.NewReader(s), opts)
}

// Provider exposes every capability of the document.
func (d *Document) Provider() *platform.Provider {
	return &platform.Provider{Tree: d, Styles: d, Focus: d, Mutations: d, Mutator: d}
}

func (d *Document) indexNode(n *html.Node, parent int) int {
	idx := len(d.nodes)
	id, ok := d.ids[n]
	if !ok {
		d.nextID++
		id = d.nextID
		d.ids[n] = id
	}
	d.nodes = append(d.nodes, &node{html: n, id: id, tag: n.Data, parent: parent})
	d.index[n] = idx
	d.byID[id] = idx
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || skippedTags[c.Data] {
			continue
		}
		d.nodes[idx].children = append(d.nodes[idx].children, d.indexNode(c, idx))
	}
	return idx
}

// reindex rebuilds the node index after a structural mutation. Surviving
// nodes keep their IDs; removed nodes' IDs are never reused.
func (d *Document) reindex() {
	d.nodes = nil
	d.index = map[*html.Node]int{}
	d.byID = map[int]int{}
	if body := findTag(d.root, "body"); body != nil {
		d.indexNode(body, -1)
	}
	d.parseInline()
	d.cache = map[int]computed{}
}

// indexOf maps an element ID to its current node index.
func (d *Document) indexOf(id int) (int, bool) {
	idx, ok := d.byID[id]
	return idx, ok
}

// ReadElements returns the rendered tree: hidden subtrees are omitted.
func (d *Document) ReadElements(ctx context.Context, opts platform.ReadOptions) ([]model.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.nodes) == 0 {
		return nil, nil
	}
	el, ok := d.buildElement(ctx, 0, opts.Depth, 1)
	if !ok {
		return nil, nil
	}
	return []model.Element{el}, nil
}

func (d *Document) buildElement(ctx context.Context, idx, maxDepth, depth int) (model.Element, bool) {
	n := d.nodes[idx]
	st, err := d.style(idx)
	if err == nil && st.Hidden {
		return model.Element{}, false
	}
	el := model.Element{
		ID:      n.id,
		Tag:     n.tag,
		Role:    attr(n.html, "role"),
		Text:    ownText(n.html),
		Content: model.CollapseSpace(fullText(n.html)),
		Focused: idx == d.active,
	}
	if len(n.html.Attr) > 0 {
		el.Attrs = make(map[string]string, len(n.html.Attr))
		for _, a := range n.html.Attr {
			el.Attrs[a.Key] = a.Val
		}
	}
	if b, ok := d.bounds(idx); ok {
		el.Bounds = b
	} else {
		el.Unmeasured = true
	}
	if maxDepth > 0 && depth >= maxDepth {
		return el, true
	}
	for _, c := range n.children {
		if ctx.Err() != nil {
			break
		}
		if child, ok := d.buildElement(ctx, c, maxDepth, depth+1); ok {
			el.Children = append(el.Children, child)
		}
	}
	return el, true
}

// bounds reads geometry from a data-bounds="x,y,w,h" attribute, or from
// absolute left/top/width/height declarations in px.
func (d *Document) bounds(idx int) ([4]int, bool) {
	n := d.nodes[idx]
	if v, ok := attrOK(n.html, "data-bounds"); ok {
		if b, err := platform.ParseBBox(v); err == nil {
			return b.Array(), true
		}
	}
	vals := d.cascade(idx, matchState{active: d.active})
	var out [4]int
	for i, prop := range []string{"left", "top", "width", "height"} {
		v, ok := vals[prop]
		if !ok {
			return out, false
		}
		px, ok := parseLength(v, 16, 16)
		if !ok {
			return out, false
		}
		out[i] = int(px + 0.5)
	}
	return out, true
}

func findTag(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if f := findTag(c, tag); f != nil {
			return f
		}
	}
	return nil
}

func attrOK(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func attr(n *html.Node, key string) string {
	v, _ := attrOK(n, key)
	return v
}

// ownText joins the element's direct text nodes.
func ownText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
			b.WriteByte(' ')
		}
	}
	return model.CollapseSpace(b.String())
}

// fullText returns all descendant text in document order.
func fullText(n *html.Node) string {
	var b bytes.Buffer
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				b.WriteString(c.Data)
			case html.ElementNode:
				if skippedTags[c.Data] {
					continue
				}
				if _, hidden := attrOK(c, "hidden"); hidden {
					continue
				}
				// Replaced content reads as a word boundary.
				b.WriteByte(' ')
				walk(c)
				b.WriteByte(' ')
			}
		}
	}
	walk(n)
	return b.String()
}

// focusable reports whether the node can take focus at all (sequentially
// or programmatically).
func (d *Document) focusable(idx int) bool {
	n := d.nodes[idx]
	if _, ok := attrOK(n.html, "disabled"); ok && isFormTag(n.tag) {
		return false
	}
	if v, ok := attrOK(n.html, "tabindex"); ok {
		if _, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return true
		}
	}
	el := model.Element{Tag: n.tag}
	if len(n.html.Attr) > 0 {
		el.Attrs = map[string]string{}
		for _, a := range n.html.Attr {
			el.Attrs[a.Key] = a.Val
		}
	}
	return model.IsNativelyFocusable(el)
}

func isFormTag(tag string) bool {
	switch tag {
	case "button", "input", "select", "textarea", "fieldset", "optgroup", "option":
		return true
	}
	return false
}
