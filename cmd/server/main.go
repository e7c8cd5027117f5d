// Package main provides the entry point for the BRP MCP server.
// It wires together all components using dependency injection and manages
// the server lifecycle with graceful shutdown.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bevybrp/brp-mcp-server/internal/brp"
	"github.com/bevybrp/brp-mcp-server/internal/brptools"
	"github.com/bevybrp/brp-mcp-server/internal/config"
	"github.com/bevybrp/brp-mcp-server/internal/debugtrail"
	"github.com/bevybrp/brp-mcp-server/internal/discovery"
	"github.com/bevybrp/brp-mcp-server/internal/handler"
	"github.com/bevybrp/brp-mcp-server/internal/launcher"
	"github.com/bevybrp/brp-mcp-server/internal/mcp"
	"github.com/bevybrp/brp-mcp-server/internal/transport"
	"github.com/bevybrp/brp-mcp-server/internal/watch"
	"github.com/bevybrp/brp-mcp-server/internal/workspace"
)

func main() {
	// Set up structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	slog.Info("server configuration loaded",
		"addr", cfg.Addr,
		"brp_host", cfg.BRPHost,
		"default_brp_port", cfg.DefaultBRPPort,
		"jsonrpc_path", cfg.JSONRPCPath,
	)

	// Wire MCP components
	mcpCfg := &mcp.Config{
		ServerName:    "brp-mcp-server",
		ServerVersion: "1.0.0",
	}

	mcpHandler, toolRegistry, resourceRegistry := mcp.NewMCPServices(mcpCfg)

	// Wire the BRP backend: a bare JSON-RPC client, the format-discovery
	// repair engine built on top of it, and the request handler that glues
	// extraction, the repair-enabled client, and response spillover. The
	// debug flag is shared with the local handlers so brp_set_debug_mode
	// controls the same channel the handler checks.
	debugFlag := debugtrail.NewFlag(cfg.DebugDefault)
	brpClient := brp.NewClient(cfg.BRPHost, cfg.JSONRPCPath, cfg.BRPTimeout)
	repairEngine := discovery.NewEngine(brpClient)
	reqHandler := handler.New(brpClient, repairEngine, debugFlag, cfg.TempDir, cfg.SpilloverBudgetTokens)

	// Wire the local subsystems: the streaming watch table, the workspace
	// scanner, and the process launcher, bundled behind one dispatch table.
	watchManager := watch.NewManager(cfg.TempDir, cfg.BRPHost, cfg.JSONRPCPath, nil)
	localHandlers := brptools.NewLocalHandlers(
		watchManager,
		debugFlag,
		workspace.NewScanner(),
		launcher.NewLauncher(cfg.TempDir),
		cfg.WorkspaceRoots,
		cfg.TempDir,
	)

	generator := brptools.NewGenerator(reqHandler, localHandlers, cfg.DefaultBRPPort)
	if err := generator.Compile(brptools.BuildRegistry(), toolRegistry); err != nil {
		log.Fatalf("failed to compile tool catalog: %v", err)
	}

	slog.Info("mcp services initialized",
		"server_name", mcpCfg.ServerName,
		"server_version", mcpCfg.ServerVersion,
		"tool_count", len(toolRegistry.ListTools()),
		"resource_count", len(resourceRegistry.ListResources()),
	)

	// Wire transport layer
	transportCfg := &transport.Config{
		ServerConfig: cfg,
		MCPHandler:   mcpHandler,
	}

	server, router, err := transport.NewTransportServices(transportCfg)
	if err != nil {
		log.Fatalf("failed to create transport services: %v", err)
	}
	_ = router // Router is used internally by server

	// Create context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server in background goroutine
	serverErrCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.Addr)
		if err := server.Start(); err != nil {
			serverErrCh <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received, stopping server gracefully...")
	case err := <-serverErrCh:
		slog.Error("server error", "error", err)
		stop()
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped successfully")
}
