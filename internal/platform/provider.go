package platform

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mj1618/a11y-audit/internal/model"
)

// Provider bundles the capabilities of one document host.
type Provider struct {
	Tree      TreeReader
	Styles    StyleResolver
	Focus     FocusController
	Mutations MutationWatcher
	Mutator   Mutator
}

var (
	// ErrUnsupported is returned by Open for sources no host can load.
	ErrUnsupported = errors.New("unsupported document source")
	// ErrStyleUnavailable means the element's style source cannot be read.
	ErrStyleUnavailable = errors.New("style unavailable")
	// ErrNotFocusable is returned by Focus for elements that cannot take focus.
	ErrNotFocusable = errors.New("element is not focusable")
	// ErrUnknownElement is returned for IDs the host does not know.
	ErrUnknownElement = errors.New("unknown element")
)

// OpenFunc loads a document source rendered for a viewport.
type OpenFunc func(ctx context.Context, source string, vp model.Viewport) (*Provider, error)

var (
	openersMu sync.RWMutex
	openers   = map[string]OpenFunc{}
)

// Register makes a host available for sources with the given file
// extensions. Host packages call it from init.
func Register(fn OpenFunc, exts ...string) {
	openersMu.Lock()
	defer openersMu.Unlock()
	for _, ext := range exts {
		openers[strings.ToLower(ext)] = fn
	}
}

// Open returns a Provider for source, chosen by file extension.
func Open(ctx context.Context, source string, vp model.Viewport) (*Provider, error) {
	ext := strings.ToLower(filepath.Ext(source))
	openersMu.RLock()
	fn, ok := openers[ext]
	known := make([]string, 0, len(openers))
	for k := range openers {
		known = append(known, k)
	}
	openersMu.RUnlock()
	if !ok {
		sort.Strings(known)
		return nil, fmt.Errorf("%w: %q (known extensions: %s)", ErrUnsupported, source, strings.Join(known, ", "))
	}
	return fn(ctx, source, vp)
}
