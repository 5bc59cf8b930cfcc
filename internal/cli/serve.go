package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/varp-dev/varp/internal/config"
	"github.com/varp-dev/varp/internal/content"
	"github.com/varp-dev/varp/internal/mcp"
	"github.com/varp-dev/varp/internal/tools"
)

var serveHTTP bool

const shutdownGrace = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server",
	Long: `Run the MCP server, exposing every core operation as a tool.

Transport defaults to stdio (JSON-RPC over stdin/stdout), the mode an MCP
client launches as a subprocess. Pass --http to instead run the Streamable
HTTP transport (MCP spec 2025-03-26) on VARP_PORT (default 21452).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cfgFile, serveHTTP)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveHTTP, "http", false, "serve over HTTP instead of stdio")
	rootCmd.AddCommand(serveCmd)
}

func runServe(configPath string, httpMode bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if httpMode {
		cfg.Transport.Mode = "http"
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	registry := mcp.NewRegistry()
	registerTools(registry)
	registry.RegisterPrompt(&content.GuidePrompt{})
	registry.RegisterResource(&content.ManifestFormatResource{})
	registry.RegisterResource(&content.HazardRulesResource{})
	registry.RegisterResource(&content.ToolReferenceResource{})

	version := cfg.Server.Version
	if Version != "dev" {
		version = Version
	}

	server := mcp.NewServer(registry, mcp.ServerInfo{Name: cfg.Server.Name, Version: version}, logger)

	if cfg.Transport.Mode != "http" {
		logger.Info("starting varp", "version", version, "transport", "stdio", "manifest_path", cfg.Workspace.ManifestPath)
		return server.Run(ctx)
	}

	httpServer := mcp.NewHTTPServer(server, cfg.Transport.CORSOrigins, logger)
	addr := cfg.Transport.Host + ":" + cfg.Transport.Port
	logger.Info("starting varp", "version", version, "transport", "http", "addr", addr)

	srv := &http.Server{Addr: addr, Handler: httpServer.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// registerTools wires every internal/tools wrapper into the registry, in
// the same grouped-by-file order the package is laid out in.
func registerTools(registry *mcp.Registry) {
	registry.Register(tools.NewParseManifest())
	registry.Register(tools.NewResolveDocs())
	registry.Register(tools.NewInvalidationCascade())
	registry.Register(tools.NewCheckFreshness())
	registry.Register(tools.NewAckFreshness())
	registry.Register(tools.NewParsePlan())
	registry.Register(tools.NewValidatePlan())
	registry.Register(tools.NewDiffPlan())
	registry.Register(tools.NewSchedule())
	registry.Register(tools.NewVerifyCapabilities())
	registry.Register(tools.NewDeriveRestartStrategy())
	registry.Register(tools.NewInferImports())
	registry.Register(tools.NewScanLinks())
	registry.Register(tools.NewSuggestTouches())
	registry.Register(tools.NewScopedTests())
	registry.Register(tools.NewVerifyEnv())
	registry.Register(tools.NewHealth())
	registry.Register(tools.NewCoupling())
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
