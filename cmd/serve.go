package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mj1618/a11y-audit/internal/server"
	"github.com/mj1618/a11y-audit/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the audit engine over MCP or HTTP",
	Long: `Start a Model Context Protocol (MCP) server exposing the audit, contrast
and rules tools, or with --http a REST API.

Supported transports:
  stdio             Standard I/O (default, for MCP clients)
  streamable-http   Streamable HTTP transport (for remote agents)

REST endpoints (--http):
  GET  /healthz
  GET  /api/v1/rules
  POST /api/v1/audit      JSON {"html": ..., "profiles": [...]} or a text/html body
  POST /api/v1/contrast   JSON {"foreground": ..., "background": ...}

Reports are cached by document content for --cache-ttl; set cache.redis_url
in the config (or A11Y_AUDIT_CACHE_REDIS_URL) to share the cache.

Examples:
  a11y-audit serve
  a11y-audit serve --transport streamable-http --port 8081
  a11y-audit serve --http --addr :8080 --cache-ttl 0`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "", "MCP transport: stdio, streamable-http (default from config)")
	serveCmd.Flags().Int("port", 0, "HTTP port for the streamable-http transport (default from config)")
	serveCmd.Flags().Bool("http", false, "Serve the REST API instead of MCP")
	serveCmd.Flags().String("addr", "", "REST API listen address (default from config)")
	serveCmd.Flags().Duration("cache-ttl", -1, "Report cache TTL (0 disables; default from config)")
	addAuditFlags(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	c := loadedConfig()

	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")
	useHTTP, _ := cmd.Flags().GetBool("http")
	addr, _ := cmd.Flags().GetString("addr")
	ttl, _ := cmd.Flags().GetDuration("cache-ttl")
	if transport == "" {
		transport = c.Server.Transport
	}
	if port == 0 {
		port = c.Server.Port
	}
	if addr == "" {
		addr = c.Server.Addr
	}
	if ttl < 0 {
		ttl = c.Cache.TTL
	}

	opts, _, err := auditOptions(cmd)
	if err != nil {
		return err
	}

	var backend server.CacheBackend = server.NewMemoryCache(c.Cache.Size)
	if c.Cache.RedisURL != "" && ttl > 0 {
		rc, err := server.NewRedisCache(ctx, c.Cache.RedisURL, "a11y-audit:report:")
		if err != nil {
			return err
		}
		backend = rc
		logger.Info().Msg("using redis report cache")
	}
	cache := server.NewReportCache(backend, ttl)
	defer cache.Close()

	// Local files are only readable when the client is the local process.
	allowFiles := !useHTTP && transport == server.TransportStdio
	svc := server.NewService(opts, c.Viewports, cache, allowFiles)

	if useHTTP {
		api := server.NewWebAPI(logger, server.Config{
			Addr:            addr,
			ShutdownTimeout: c.Server.ShutdownTimeout,
			Service:         svc,
		})
		return api.Start()
	}

	srv := server.NewMCPServer(svc, logger, version.Version)
	if err := srv.Serve(transport, port); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
