package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mj1618/a11y-audit/internal/model"
	"github.com/mj1618/a11y-audit/internal/platform/fake"
)

// attrs builds an attribute map from key/value pairs.
func attrs(kv ...string) map[string]string {
	m := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i]] = kv[i+1]
	}
	return m
}

// node builds a measured 100x50 element.
func node(id int, tag string, a map[string]string, text string, children ...model.Element) model.Element {
	return model.Element{ID: id, Tag: tag, Attrs: a, Text: text, Bounds: [4]int{0, 0, 100, 50}, Children: children}
}

func snapshot(t *testing.T, doc *fake.Doc, opts Options) *Context {
	t.Helper()
	ac, err := New(opts).Snapshot(context.Background(), doc.Provider())
	require.NoError(t, err)
	return ac
}

// at returns the flat index of the element with the given ID.
func at(t *testing.T, ac *Context, id int) int {
	t.Helper()
	for i, el := range ac.Elements {
		if el.ID == id {
			return i
		}
	}
	t.Fatalf("element %d not in snapshot", id)
	return -1
}

func run(t *testing.T, doc *fake.Doc, opts Options) *AuditReport {
	t.Helper()
	r, err := New(opts).Run(context.Background(), doc.Provider())
	require.NoError(t, err)
	return r
}

func messages(issues []Issue) []string {
	out := make([]string, len(issues))
	for i, is := range issues {
		out[i] = is.Message
	}
	return out
}
