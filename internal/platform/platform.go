package platform

import (
	"context"
	"time"

	"github.com/mj1618/a11y-audit/internal/model"
)

// TreeReader reads the rendered element tree from a document host.
type TreeReader interface {
	// ReadElements returns the element tree in document order. IDs are
	// stable for the lifetime of the host and start at 1.
	ReadElements(ctx context.Context, opts ReadOptions) ([]model.Element, error)
}

// StyleResolver resolves computed style for elements.
type StyleResolver interface {
	// ResolveStyle returns the element's computed style in its current
	// state (including focus). ErrStyleUnavailable means the style source
	// cannot be read; callers treat it as an unknown style.
	ResolveStyle(ctx context.Context, id int) (ResolvedStyle, error)

	// ReducedMotion reports whether the active style rules carry a
	// prefers-reduced-motion accommodation that applies to the element.
	ReducedMotion(ctx context.Context, id int) bool
}

// FocusController moves keyboard focus. Callers must restore the previous
// owner after a probe; see audit.FocusProbe.
type FocusController interface {
	// ActiveElement returns the focused element ID, or 0 when focus is on
	// the document body.
	ActiveElement(ctx context.Context) (int, error)
	Focus(ctx context.Context, id int) error
	Blur(ctx context.Context) error
}

// MutationWatcher delivers text changes of watched regions.
type MutationWatcher interface {
	// Watch subscribes to changes of the regions with the given IDs. Each
	// Mutation carries the region's full text after the change. The
	// returned cancel func unsubscribes and closes the channel.
	Watch(ctx context.Context, regions []int) (<-chan Mutation, func(), error)
}

// Mutator changes a live document. It drives scripted observation runs.
type Mutator interface {
	SetText(ctx context.Context, id int, text string) error
	SetAttr(ctx context.Context, id int, name, value string) error
	RemoveAttr(ctx context.Context, id int, name string) error
}

// Mutation is a change observed in a watched region.
type Mutation struct {
	Region int       `yaml:"region" json:"region"`
	Target int       `yaml:"target" json:"target"`
	Kind   string    `yaml:"kind"   json:"kind"`
	Text   string    `yaml:"text"   json:"text"`
	Time   time.Time `yaml:"time"   json:"time"`
}

// Mutation kinds.
const (
	MutationText = "text"
	MutationAttr = "attr"
)
