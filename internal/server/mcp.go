package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/mj1618/a11y-audit/internal/model"
	"github.com/mj1618/a11y-audit/internal/output"
)

// Transports accepted by MCPServer.Serve.
const (
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable-http"
)

// MCPServer exposes the audit, contrast and rules tools to MCP clients.
type MCPServer struct {
	svc    *Service
	logger zerolog.Logger
	mcp    *mcpserver.MCPServer
}

func NewMCPServer(svc *Service, logger zerolog.Logger, version string) *MCPServer {
	s := &MCPServer{
		svc:    svc,
		logger: logger,
		mcp:    mcpserver.NewMCPServer("a11y-audit", version, mcpserver.WithToolCapabilities(false)),
	}
	s.registerTools()
	return s
}

// Serve blocks serving the configured transport.
func (s *MCPServer) Serve(transport string, port int) error {
	switch transport {
	case TransportStdio:
		return mcpserver.ServeStdio(s.mcp)
	case TransportStreamableHTTP:
		addr := fmt.Sprintf(":%d", port)
		s.logger.Info().Str("addr", addr).Msg("starting MCP server")
		return mcpserver.NewStreamableHTTPServer(s.mcp).Start(addr)
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", transport)
	}
}

func (s *MCPServer) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("audit",
			mcp.WithDescription("Audit an HTML document for WCAG visual and interaction accessibility: contrast, focus indicators, keyboard access, ARIA, motion, target size, screen reader announcements and live regions. Returns one scored report per viewport profile."),
			mcp.WithString("html", mcp.Description("Inline HTML document to audit")),
			mcp.WithString("path", mcp.Description("Path of a local HTML file (stdio transport only)")),
			mcp.WithArray("profiles", mcp.Description("Viewport profiles: desktop, tablet, mobile or all"), mcp.WithStringItems()),
			mcp.WithString("scope", mcp.Description("Only audit the subtree at this selector, e.g. '#checkout'")),
			mcp.WithString("locale", mcp.Description("Locale of the page text (default en)")),
			mcp.WithString("context", mcp.Description("Free-form label carried into the report")),
			mcp.WithArray("disable", mcp.Description("Rule families to switch off"), mcp.WithStringItems()),
			mcp.WithBoolean("overlay", mcp.Description("Also return a PNG of element boxes colored by score")),
		),
		s.handleAudit,
	)

	s.mcp.AddTool(
		mcp.NewTool("contrast",
			mcp.WithDescription("Check the WCAG contrast ratio of a text and background color pair and suggest a passing color"),
			mcp.WithString("foreground", mcp.Required(), mcp.Description("Text color, e.g. '#777' or 'rgb(119,119,119)'")),
			mcp.WithString("background", mcp.Required(), mcp.Description("Background color")),
			mcp.WithNumber("font-size", mcp.Description("Font size in px (default 16)")),
			mcp.WithString("font-weight", mcp.Description("Font weight, e.g. 'bold' or '700'")),
		),
		s.handleContrast,
	)

	s.mcp.AddTool(
		mcp.NewTool("rules",
			mcp.WithDescription("List the rule families with their WCAG criteria and default state"),
		),
		s.handleRules,
	)
}

// toText serializes a tool result to YAML.
func toText(v interface{}) string {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(b)
}

func toolError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(toText(map[string]string{"error": err.Error()}))
}

func (s *MCPServer) handleAudit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = s.logger.With().Str("tool", "audit").Logger().WithContext(ctx)
	req := AuditRequest{
		HTML:     request.GetString("html", ""),
		Path:     request.GetString("path", ""),
		Profiles: request.GetStringSlice("profiles", nil),
		Scope:    request.GetString("scope", ""),
		Locale:   request.GetString("locale", ""),
		Context:  request.GetString("context", ""),
	}
	if disabled := request.GetStringSlice("disable", nil); len(disabled) > 0 {
		req.Rules = make(map[string]bool, len(disabled))
		for _, r := range disabled {
			req.Rules[r] = false
		}
	}

	resp, err := s.svc.Audit(ctx, req)
	if err != nil {
		if !errors.Is(err, ErrBadRequest) {
			zerolog.Ctx(ctx).Error().Err(err).Msg("audit failed")
		}
		return toolError(err), nil
	}

	text := toText(resp)
	if !request.GetBool("overlay", false) {
		return mcp.NewToolResultText(text), nil
	}
	profiles, _ := model.SelectViewports(s.svc.viewports, req.Profiles)
	vp := profiles[0]
	var png bytes.Buffer
	if err := output.WritePNG(&png, resp.Reports[vp.Name], vp); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultImage(text, base64.StdEncoding.EncodeToString(png.Bytes()), "image/png"), nil
}

func (s *MCPServer) handleContrast(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.svc.Contrast(ContrastRequest{
		Foreground: request.GetString("foreground", ""),
		Background: request.GetString("background", ""),
		FontSize:   request.GetFloat("font-size", 0),
		FontWeight: request.GetString("font-weight", ""),
	})
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(toText(res)), nil
}

func (s *MCPServer) handleRules(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(toText(s.svc.Rules())), nil
}
