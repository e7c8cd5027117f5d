package discovery

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bevybrp/brp-mcp-server/internal/brp"
)

// Engine wraps a BRP client with the error-driven repair loop described in
// spec.md §4.5: on a type-shape error from a repair-eligible method, it
// diagnoses and repairs the offending payload(s) and retries exactly once.
type Engine struct {
	client *brp.Client
}

// NewEngine builds a repair engine over an existing BRP client.
func NewEngine(client *brp.Client) *Engine {
	return &Engine{client: client}
}

var repairEligibleMethods = map[string]bool{
	"bevy/spawn":            true,
	"bevy/insert":           true,
	"bevy/mutate_component": true,
	"bevy/insert_resource":  true,
	"bevy/mutate_resource":  true,
}

func isShapeErrorCode(code int) bool {
	return code == brp.CodeComponentShapeError || code == brp.CodeResourceShapeError
}

// InvokeWithRepair always calls the BRP client once. If that call succeeds,
// or fails for a reason the repair loop cannot address, the result is
// returned as-is. Otherwise it attempts one repair cycle per
// type-shaped payload and, if any non-terminal correction was found,
// retries exactly once.
func (e *Engine) InvokeWithRepair(ctx context.Context, method string, params any, port uint16) (*EnhancedResult, error) {
	result, err := e.client.Invoke(ctx, method, params, port)
	if err != nil {
		return nil, err
	}

	if result.IsSuccess() || !repairEligibleMethods[method] || !isShapeErrorCode(result.Failure.Code) {
		return &EnhancedResult{Raw: result}, nil
	}

	entries, err := extractPayloads(method, params)
	if err != nil {
		return &EnhancedResult{Raw: result, Debug: []string{err.Error()}}, nil
	}

	var corrections []Correction
	var tiers []TierEntry
	corrected := map[string]any{}
	anyNonTerminal := false

	for _, entry := range entries {
		trace, corr := attemptRepair(ctx, e.client, method, entry, result.Failure.Message, port)
		tiers = append(tiers, trace...)
		if corr == nil {
			continue
		}
		corrections = append(corrections, *corr)
		if corr.Terminal {
			continue
		}

		if method == "bevy/spawn" && !e.validateSpawnCorrection(ctx, entry.typeName, corr.CorrectedPayload, port) {
			continue
		}

		corrected[entry.typeName] = corr.CorrectedPayload
		anyNonTerminal = true
	}

	if !anyNonTerminal {
		return &EnhancedResult{Raw: result, Corrections: corrections, Tiers: tiers}, nil
	}

	newParams, err := reconstructParams(method, params, corrected)
	if err != nil {
		return &EnhancedResult{Raw: result, Corrections: corrections, Tiers: tiers, Debug: []string{err.Error()}}, nil
	}

	retryResult, err := e.client.Invoke(ctx, method, newParams, port)
	if err != nil {
		return nil, err
	}

	return &EnhancedResult{Raw: retryResult, Corrections: corrections, Tiers: tiers}, nil
}

// extractPayloads locates the type-shaped payloads inside params per the
// method's parameter-location table.
func extractPayloads(method string, params any) ([]payloadEntry, error) {
	obj, ok := params.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("repair: params for %q is not an object", method)
	}

	switch method {
	case "bevy/spawn", "bevy/insert":
		comps, ok := obj["components"].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("repair: params.components missing or not an object")
		}
		entries := make([]payloadEntry, 0, len(comps))
		for typeName, payload := range comps {
			entries = append(entries, payloadEntry{typeName: typeName, payload: payload})
		}
		return entries, nil

	case "bevy/mutate_component":
		typeName, _ := obj["component"].(string)
		if typeName == "" {
			return nil, fmt.Errorf("repair: params.component missing")
		}
		return []payloadEntry{{typeName: typeName, payload: obj["value"]}}, nil

	case "bevy/insert_resource", "bevy/mutate_resource":
		typeName, _ := obj["resource"].(string)
		if typeName == "" {
			return nil, fmt.Errorf("repair: params.resource missing")
		}
		return []payloadEntry{{typeName: typeName, payload: obj["value"]}}, nil

	default:
		return nil, fmt.Errorf("repair: method %q is not repair-eligible", method)
	}
}

// reconstructParams rewrites params with corrected payloads substituted
// back into the same locations extractPayloads read them from. Entries
// without a correction keep their original payload.
func reconstructParams(method string, params any, corrected map[string]any) (any, error) {
	obj, ok := params.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("repair: params for %q is not an object", method)
	}
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		out[k] = v
	}

	switch method {
	case "bevy/spawn", "bevy/insert":
		comps, _ := obj["components"].(map[string]any)
		newComps := make(map[string]any, len(comps))
		for k, v := range comps {
			newComps[k] = v
		}
		for typeName, payload := range corrected {
			newComps[typeName] = payload
		}
		out["components"] = newComps

	case "bevy/mutate_component", "bevy/insert_resource", "bevy/mutate_resource":
		for _, payload := range corrected {
			out["value"] = payload
		}
	}

	return out, nil
}

// validateSpawnCorrection spawns a disposable test entity carrying only
// the corrected component, then destroys it best-effort. A failed destroy
// is not treated as invalidating the correction.
func (e *Engine) validateSpawnCorrection(ctx context.Context, typeName string, payload any, port uint16) bool {
	testParams := map[string]any{"components": map[string]any{typeName: payload}}
	result, err := e.client.Invoke(ctx, "bevy/spawn", testParams, port)
	if err != nil || result == nil || !result.IsSuccess() {
		return false
	}

	if entity, ok := decodeEntityID(result.Value); ok {
		_, _ = e.client.Invoke(ctx, "bevy/destroy", map[string]any{"entity": entity}, port)
	}
	return true
}

func decodeEntityID(value json.RawMessage) (any, bool) {
	if len(value) == 0 {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal(value, &obj); err != nil {
		return nil, false
	}
	entity, ok := obj["entity"]
	return entity, ok
}
