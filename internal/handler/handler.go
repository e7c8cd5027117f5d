// Package handler glues the parameter extractor, the BRP backend (plain or
// repair-enabled), and the response formatter into one request pipeline,
// and applies the large-response spillover policy to whatever a formatter
// produces. It knows nothing about the declarative tool catalog; it is
// invoked by internal/brptools's generated tool adapters.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bevybrp/brp-mcp-server/internal/brp"
	"github.com/bevybrp/brp-mcp-server/internal/config"
	"github.com/bevybrp/brp-mcp-server/internal/debugtrail"
	"github.com/bevybrp/brp-mcp-server/internal/discovery"
)

// Handler is the shared invocation and spillover primitive every remote
// tool adapter is built on.
type Handler struct {
	client                *brp.Client
	repair                *discovery.Engine
	debug                 *debugtrail.Flag
	tempDir               string
	spilloverBudgetTokens int
}

// New builds a Handler. repair may be nil for deployments that never need
// the format-discovery engine; Invoke then never attempts a repair cycle
// regardless of repairEligible.
func New(client *brp.Client, repair *discovery.Engine, debug *debugtrail.Flag, tempDir string, spilloverBudgetTokens int) *Handler {
	return &Handler{
		client:                client,
		repair:                repair,
		debug:                 debug,
		tempDir:               tempDir,
		spilloverBudgetTokens: spilloverBudgetTokens,
	}
}

// Invoke sends one BRP call, through the repair engine when the method is
// repair-eligible and a repair engine is configured, and returns the
// enhanced result plus a debug trail populated only when the debug channel
// is enabled.
func (h *Handler) Invoke(ctx context.Context, method string, params any, port uint16, repairEligible bool) (*discovery.EnhancedResult, *debugtrail.Trail, error) {
	var trail *debugtrail.Trail
	if h.debug.Enabled() {
		trail = debugtrail.NewTrail()
	}

	if !repairEligible || h.repair == nil {
		raw, err := h.client.Invoke(ctx, method, params, port)
		if err != nil {
			return nil, trail, err
		}
		trail.Push(fmt.Sprintf("invoked %s on port %d without repair eligibility", method, port))
		return &discovery.EnhancedResult{Raw: raw}, trail, nil
	}

	result, err := h.repair.InvokeWithRepair(ctx, method, params, port)
	if err != nil {
		return nil, trail, err
	}

	for _, tier := range result.Tiers {
		trail.Push(fmt.Sprintf("tier %d (%s): %s succeeded=%t", tier.TierNumber, tier.TierName, tier.Action, tier.Succeeded))
	}
	for _, corr := range result.Corrections {
		trail.Push(fmt.Sprintf("correction for %q: %s", corr.TypeName, corr.Hint))
	}

	return result, trail, nil
}

// estimateTokens applies the server's coarse token-estimation ratio to a
// byte length.
func estimateTokens(n int) int {
	return n / config.EstimateBytesPerToken
}

// ApplySpillover marshals response and, if its estimated token count
// exceeds the configured budget, writes it to a temp file and returns a
// small stub response pointing at that file instead.
func (h *Handler) ApplySpillover(method string, response map[string]any) (map[string]any, error) {
	encoded, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("handler: marshaling response for spillover check: %w", err)
	}

	tokens := estimateTokens(len(encoded))
	if tokens <= h.spilloverBudgetTokens {
		return response, nil
	}

	path := filepath.Join(h.tempDir, fmt.Sprintf("brp_response_%s_%d.json", sanitizeMethod(method), time.Now().Unix()))
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return nil, fmt.Errorf("handler: writing spillover file: %w", err)
	}

	return map[string]any{
		"spilled_to":       path,
		"estimated_tokens": tokens,
		"spillover_budget": h.spilloverBudgetTokens,
		"message":          fmt.Sprintf("response exceeded the %d token inline budget and was written to %s", h.spilloverBudgetTokens, path),
	}, nil
}

func sanitizeMethod(method string) string {
	return strings.NewReplacer("/", "_", " ", "_").Replace(method)
}
