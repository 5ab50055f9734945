// Package server exposes the audit engine over MCP and HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mj1618/a11y-audit/internal/audit"
	"github.com/mj1618/a11y-audit/internal/model"
	"github.com/mj1618/a11y-audit/internal/platform"
	"github.com/mj1618/a11y-audit/internal/platform/htmldoc"
)

// ErrBadRequest marks caller mistakes; transports map it to a client error.
var ErrBadRequest = errors.New("bad request")

// AuditRequest is the input of the audit tool and POST /audit.
type AuditRequest struct {
	// HTML is an inline document. Exactly one of HTML and Path is set.
	HTML string `json:"html,omitempty"`
	// Path names a local document. Only honored when files are allowed.
	Path     string          `json:"path,omitempty"`
	Profiles []string        `json:"profiles,omitempty"`
	Scope    string          `json:"scope,omitempty"`
	Locale   string          `json:"locale,omitempty"`
	Context  string          `json:"context,omitempty"`
	Rules    map[string]bool `json:"rules,omitempty"`
}

// AuditResponse carries one report per requested profile.
type AuditResponse struct {
	Cached  bool                          `json:"cached"  yaml:"cached"`
	Reports map[string]*audit.AuditReport `json:"reports" yaml:"reports"`
}

// ContrastRequest is the input of the contrast tool and POST /contrast.
type ContrastRequest struct {
	Foreground string  `json:"foreground"`
	Background string  `json:"background"`
	FontSize   float64 `json:"font_size,omitempty"`
	FontWeight string  `json:"font_weight,omitempty"`
}

// Service runs audits for the transports. It is safe for concurrent use;
// every request audits its own document.
type Service struct {
	opts       audit.Options
	viewports  []model.Viewport
	cache      *ReportCache
	allowFiles bool
}

// NewService builds a service around base engine options. viewports are the
// selectable profiles; nil means the defaults.
func NewService(opts audit.Options, viewports []model.Viewport, cache *ReportCache, allowFiles bool) *Service {
	if len(viewports) == 0 {
		viewports = model.DefaultViewports
	}
	return &Service{opts: opts, viewports: viewports, cache: cache, allowFiles: allowFiles}
}

// Audit runs the engine over the requested document once per profile.
func (s *Service) Audit(ctx context.Context, req AuditRequest) (*AuditResponse, error) {
	logger := zerolog.Ctx(ctx)

	if (req.HTML == "") == (req.Path == "") {
		return nil, fmt.Errorf("%w: set exactly one of html and path", ErrBadRequest)
	}
	if req.Path != "" && !s.allowFiles {
		return nil, fmt.Errorf("%w: path is not allowed on this transport", ErrBadRequest)
	}
	for name := range req.Rules {
		if !audit.KnownRule(name) {
			return nil, fmt.Errorf("%w: unknown rule %q", ErrBadRequest, name)
		}
	}
	profiles, err := model.SelectViewports(s.viewports, req.Profiles)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	document := []byte(req.HTML)
	if req.Path != "" {
		if document, err = os.ReadFile(req.Path); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
	}
	key := ReportKey(document, req)
	if reports, ok := s.cache.Get(ctx, key); ok {
		logger.Debug().Str("key", key).Msg("report cache hit")
		return &AuditResponse{Cached: true, Reports: reports}, nil
	}

	opts := s.opts
	if req.Scope != "" {
		opts.Scope = req.Scope
	}
	if req.Locale != "" {
		opts.Locale = req.Locale
	}
	if req.Context != "" {
		opts.Context = req.Context
	}
	if len(req.Rules) > 0 {
		merged := make(map[string]bool, len(opts.Rules)+len(req.Rules))
		for k, v := range opts.Rules {
			merged[k] = v
		}
		for k, v := range req.Rules {
			merged[k] = v
		}
		opts.Rules = merged
	}

	open := func(ctx context.Context, vp model.Viewport) (*platform.Provider, error) {
		if req.Path != "" {
			return platform.Open(ctx, req.Path, vp)
		}
		doc, err := htmldoc.ParseString(req.HTML, htmldoc.Options{Viewport: vp})
		if err != nil {
			return nil, err
		}
		return doc.Provider(), nil
	}
	reports, err := audit.New(opts).RunProfiles(ctx, open, profiles)
	if err != nil {
		if isCallerError(err) {
			return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		return nil, err
	}
	if err := s.cache.Put(ctx, key, reports); err != nil {
		logger.Warn().Err(err).Msg("failed to cache reports")
	}
	return &AuditResponse{Reports: reports}, nil
}

func isCallerError(err error) bool {
	return errors.Is(err, audit.ErrScopeNotFound) ||
		errors.Is(err, audit.ErrUnknownLocale) ||
		errors.Is(err, audit.ErrDetachedRoot) ||
		errors.Is(err, platform.ErrUnsupported)
}

// Contrast grades a single color pair.
func (s *Service) Contrast(req ContrastRequest) (audit.ContrastResult, error) {
	if strings.TrimSpace(req.Foreground) == "" || strings.TrimSpace(req.Background) == "" {
		return audit.ContrastResult{}, fmt.Errorf("%w: foreground and background are required", ErrBadRequest)
	}
	res, err := audit.CheckColors(req.Foreground, req.Background, req.FontSize, req.FontWeight)
	if err != nil {
		return audit.ContrastResult{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return res, nil
}

// Rules lists the rule families with their default state.
func (s *Service) Rules() []audit.RuleInfo {
	return s.opts.RuleList()
}
