package transport

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bevybrp/brp-mcp-server/internal/config"
	"github.com/bevybrp/brp-mcp-server/internal/mcp"
	"github.com/bevybrp/brp-mcp-server/internal/transport/internal/handlers"
	transporthttp "github.com/bevybrp/brp-mcp-server/internal/transport/internal/http"
	"github.com/bevybrp/brp-mcp-server/internal/transport/internal/middleware"
)

// NewServer creates a configured HTTP server.
// The server is configured with timeouts from the config and uses the provided router.
func NewServer(cfg *config.Config, router Router) Server {
	return transporthttp.NewServer(cfg, router)
}

// NewRouter creates a new HTTP router backed by http.ServeMux.
func NewRouter() Router {
	return transporthttp.NewRouter()
}

// NewErrorResponder creates an error responder.
func NewErrorResponder() ErrorResponder {
	return transporthttp.NewErrorResponder()
}

// NewMCPHandler creates the MCP protocol handler.
// It handles JSON-RPC requests at the configured MCP endpoint.
func NewMCPHandler(handler mcp.Handler, responder ErrorResponder) http.Handler {
	return handlers.NewMCPHandler(handler, responder)
}

// NewHealthHandler creates the health check handler.
// It provides a simple health status endpoint.
func NewHealthHandler(responder ErrorResponder) http.Handler {
	return handlers.NewHealthHandler(responder)
}

// NewLoggingMiddleware creates request logging middleware.
// It logs HTTP request details using structured logging.
// If logger is nil, it uses the default slog logger.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return middleware.NewLoggingMiddleware(logger)
}

// NewRecoveryMiddleware creates panic recovery middleware.
// It recovers from panics and returns a 500 error to the client.
// If logger is nil, it uses the default slog logger.
func NewRecoveryMiddleware(responder ErrorResponder, logger *slog.Logger) Middleware {
	return middleware.NewRecoveryMiddleware(responder, logger)
}

// Config holds the configuration needed for the transport layer.
type Config struct {
	// ServerConfig is the server configuration.
	ServerConfig *config.Config

	// MCPHandler processes MCP protocol requests.
	MCPHandler mcp.Handler
}

// NewTransportServices creates all transport layer services from the configuration.
// This is a convenience function for dependency injection that wires up the complete
// HTTP transport layer with routing, middleware, and handlers.
func NewTransportServices(cfg *Config) (Server, Router, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.ServerConfig == nil {
		return nil, nil, fmt.Errorf("server config cannot be nil")
	}
	if cfg.MCPHandler == nil {
		return nil, nil, fmt.Errorf("mcp handler cannot be nil")
	}

	// Create error responder
	responder := NewErrorResponder()

	// Create middleware
	recoveryMiddleware := NewRecoveryMiddleware(responder, nil)
	loggingMiddleware := NewLoggingMiddleware(nil)

	// Create handlers
	mcpHandler := NewMCPHandler(cfg.MCPHandler, responder)
	healthHandler := NewHealthHandler(responder)

	// Create router
	router := NewRouter()

	// Apply global middleware
	router.Use(recoveryMiddleware, loggingMiddleware)

	// Register routes
	router.Handle("GET /health", healthHandler)
	router.Handle("POST "+cfg.ServerConfig.JSONRPCPath, mcpHandler)

	// Create server
	server := NewServer(cfg.ServerConfig, router)

	return server, router, nil
}
