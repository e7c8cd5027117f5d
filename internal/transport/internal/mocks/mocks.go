// Package mocks provides mock implementations for testing the transport layer.
package mocks

import (
	"context"
	"net/http"

	"github.com/bevybrp/brp-mcp-server/internal/mcp"
)

// MCPHandler is a mock implementation of mcp.Handler.
type MCPHandler struct {
	HandleFunc func(ctx context.Context, req *mcp.Request) (*mcp.Response, error)
}

// HandleRequest calls the mock HandleFunc.
func (m *MCPHandler) HandleRequest(ctx context.Context, req *mcp.Request) (*mcp.Response, error) {
	if m.HandleFunc != nil {
		return m.HandleFunc(ctx, req)
	}
	return &mcp.Response{
		JSONRPC: "2.0",
		ID:      req.ID,
	}, nil
}

// ErrorResponder is a mock implementation for error response handling.
type ErrorResponder struct {
	NotFoundCalled   bool
	NotFoundErr      error
	InternalCalled   bool
	InternalErr      error
	BadRequestCalled bool
	BadRequestErr    error
}

// NotFound records the call and writes a 404 response.
func (m *ErrorResponder) NotFound(w http.ResponseWriter, err error) {
	m.NotFoundCalled = true
	m.NotFoundErr = err
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(`{"error":"not found"}`))
}

// InternalError records the call and writes a 500 response.
func (m *ErrorResponder) InternalError(w http.ResponseWriter, err error) {
	m.InternalCalled = true
	m.InternalErr = err
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(`{"error":"internal server error"}`))
}

// BadRequest records the call and writes a 400 response.
func (m *ErrorResponder) BadRequest(w http.ResponseWriter, err error) {
	m.BadRequestCalled = true
	m.BadRequestErr = err
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_, _ = w.Write([]byte(`{"error":"bad request"}`))
}

// Reset clears all recorded state.
func (m *ErrorResponder) Reset() {
	m.NotFoundCalled = false
	m.NotFoundErr = nil
	m.InternalCalled = false
	m.InternalErr = nil
	m.BadRequestCalled = false
	m.BadRequestErr = nil
}
