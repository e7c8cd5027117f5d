// Package transport provides the HTTP transport layer for the BRP MCP server.
//
// # Architecture
//
// The transport package exposes the MCP JSON-RPC endpoint over HTTP. It
// follows the adapter pattern to bridge the internal MCP dispatch vertical
// with net/http.
//
// Package structure:
//
//	internal/transport/
//	├── transport.go              # Public interfaces
//	├── errors.go                 # Transport domain errors
//	├── wire.go                   # Factory functions
//	├── internal/
//	│   ├── http/
//	│   │   ├── server.go         # HTTP server with graceful shutdown
//	│   │   ├── router.go         # HTTP routing
//	│   │   └── response.go       # Error responder
//	│   ├── middleware/
//	│   │   ├── logging.go        # Request logging
//	│   │   └── recovery.go       # Panic recovery
//	│   └── handlers/
//	│       ├── mcp.go            # MCP protocol endpoint
//	│       └── health.go         # Health check endpoint
//
// # Middleware Chain
//
// The middleware chain is applied in this order:
//
//  1. Recovery - catches panics and returns 500 errors
//  2. Logging - logs request details
//
// # Usage Example
//
//	// Create transport services
//	cfg := &transport.Config{
//		ServerConfig: serverConfig,
//		MCPHandler:   mcpHandler,
//	}
//
//	server, router, err := transport.NewTransportServices(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Start server
//	if err := server.Start(); err != nil {
//		log.Fatal(err)
//	}
//
//	// Graceful shutdown
//	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
//	defer cancel()
//	if err := server.Shutdown(ctx); err != nil {
//		log.Printf("shutdown error: %v", err)
//	}
//
// # Endpoints
//
//   - GET /health - Health check
//   - POST /mcp - MCP protocol (JSON-RPC 2.0)
package transport
