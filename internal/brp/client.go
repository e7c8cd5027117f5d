// Package brp implements a single-shot JSON-RPC client against a locally
// running Bevy Remote Protocol endpoint.
package brp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	internalerrors "github.com/bevybrp/brp-mcp-server/internal/errors"
)

// Client sends JSON-RPC requests to a BRP endpoint and parses the typed
// result. It holds no retry or repair logic; that belongs to the
// format-discovery engine built on top of it.
type Client struct {
	httpClient *http.Client
	host       string
	path       string
	nextID     atomic.Uint64
}

// NewClient creates a BRP client. host and path identify the endpoint
// (e.g. "127.0.0.1", "/"); port is supplied per call. timeout bounds the
// overall HTTP round trip for every Invoke call.
func NewClient(host, path string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		host: host,
		path: path,
	}
}

// Invoke sends a single JSON-RPC request and returns the typed BRP result.
// params may be nil. The returned error is non-nil only for transport or
// decoding failures; a BRP-level failure is reported via Result.Failure.
func (c *Client) Invoke(ctx context.Context, method string, params any, port uint16) (*Result, error) {
	id := c.nextID.Add(1)

	reqBody := wireRequest{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, internalerrors.New("brp", "Invoke", internalerrors.ErrInternal, err).
			WithContext("method", method)
	}

	url := fmt.Sprintf("http://%s:%d%s", c.host, port, c.path)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, internalerrors.New("brp", "Invoke", ErrTransport, err).
			WithContext("method", method).WithContext("port", port)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, internalerrors.New("brp", "Invoke", ErrTransport, err).
			WithContext("method", method).WithContext("port", port)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, internalerrors.New("brp", "Invoke", ErrTransport, err).
			WithContext("method", method).WithContext("port", port)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, internalerrors.New("brp", "Invoke", ErrTransport,
			fmt.Errorf("brp endpoint returned status %d", resp.StatusCode)).
			WithContext("method", method).WithContext("port", port)
	}

	var wireResp wireResponse
	if err := json.Unmarshal(respBody, &wireResp); err != nil {
		return nil, internalerrors.New("brp", "Invoke", ErrInvalidResponse, err).
			WithContext("method", method).WithContext("port", port)
	}

	if wireResp.Error != nil {
		return &Result{Failure: decorateFailure(method, wireResp.Error)}, nil
	}

	return &Result{Value: wireResp.Result}, nil
}

// decorateFailure converts a wire error into a FailureInfo, augmenting the
// message when the call targeted a known-missing optional plugin method.
// The code is never altered.
func decorateFailure(method string, wireErr *wireError) *FailureInfo {
	message := wireErr.Message
	if wireErr.Code == CodeMethodNotFound && strings.HasPrefix(method, ExtrasPrefix) {
		message = fmt.Sprintf(
			"%s (method %q requires the optional bevy_brp_extras crate with BrpExtrasPlugin added to the app; see https://github.com/natepiano/bevy_brp for setup)",
			wireErr.Message, method,
		)
	}

	return &FailureInfo{
		Code:    wireErr.Code,
		Message: message,
		Data:    wireErr.Data,
	}
}
