package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bevybrp/brp-mcp-server/internal/brp"
)

const (
	registrySchemaMethod = "bevy/registry/schema"
	discoverFormatMethod = brp.ExtrasPrefix + "discover_format"
)

// tierInvoker is the subset of *brp.Client a tier needs; it is an
// interface so tiers.go stays testable without a live BRP endpoint.
type tierInvoker interface {
	Invoke(ctx context.Context, method string, params any, port uint16) (*brp.Result, error)
}

// attemptRepair runs a single (type_name, payload) through tiers 1-4,
// stopping at the first tier that produces a conclusive result. It
// returns the tier trace for this payload plus a correction when one was
// found (which may be a terminal Tier-1 pseudo-correction).
func attemptRepair(ctx context.Context, client tierInvoker, method string, entry payloadEntry, errMessage string, port uint16) ([]TierEntry, *Correction) {
	var trace []TierEntry

	if method == "bevy/spawn" || method == "bevy/insert" {
		corr, entryLog, ok := tier1SerializationDiagnostics(ctx, client, entry, port)
		trace = append(trace, entryLog)
		if ok {
			return trace, corr
		}
	}

	if corr, entryLog, ok := tier2DirectDiscovery(ctx, client, entry, port); ok {
		trace = append(trace, entryLog)
		return trace, corr
	} else {
		trace = append(trace, entryLog)
	}

	if corr, entryLog, ok := tier3PatternTransform(entry, errMessage); ok {
		trace = append(trace, entryLog)
		return trace, corr
	} else {
		trace = append(trace, entryLog)
	}

	if corr, entryLog, ok := tier4GenericFallback(entry, errMessage); ok {
		trace = append(trace, entryLog)
		return trace, corr
	} else {
		trace = append(trace, entryLog)
	}

	return trace, nil
}

type schemaEntry struct {
	ReflectTypes []string `json:"reflectTypes"`
}

// tier1SerializationDiagnostics queries the registry schema for entry's
// type and checks for the Serialize/Deserialize reflected traits. It is
// terminal: a missing trait produces a pseudo-correction with
// corrected==original and ends this payload's repair attempt entirely.
func tier1SerializationDiagnostics(ctx context.Context, client tierInvoker, entry payloadEntry, port uint16) (*Correction, TierEntry, bool) {
	result, err := client.Invoke(ctx, registrySchemaMethod, map[string]any{"with_crates": crateOf(entry.typeName)}, port)
	if err != nil || result == nil || !result.IsSuccess() {
		return nil, TierEntry{TierNumber: 1, TierName: "serialization_diagnostics", Action: "registry schema query unavailable", Succeeded: false}, false
	}

	var schema map[string]schemaEntry
	if err := json.Unmarshal(result.Value, &schema); err != nil {
		return nil, TierEntry{TierNumber: 1, TierName: "serialization_diagnostics", Action: "registry schema response unparsable", Succeeded: false}, false
	}

	entrySchema, ok := schema[entry.typeName]
	if !ok {
		return nil, TierEntry{TierNumber: 1, TierName: "serialization_diagnostics", Action: fmt.Sprintf("%q not present in registry schema", entry.typeName), Succeeded: false}, false
	}

	missing := missingTraits(entrySchema.ReflectTypes)
	if len(missing) == 0 {
		return nil, TierEntry{TierNumber: 1, TierName: "serialization_diagnostics", Action: "Serialize/Deserialize present", Succeeded: false}, false
	}

	corr := &Correction{
		TypeName:         entry.typeName,
		OriginalPayload:  entry.payload,
		CorrectedPayload: entry.payload,
		Hint: fmt.Sprintf("`%s` cannot be used with BRP: missing reflected trait(s) %s. Add #[reflect(%s)] to the type.",
			entry.typeName, strings.Join(missing, ", "), strings.Join(missing, ", ")),
		Terminal: true,
	}
	return corr, TierEntry{TierNumber: 1, TierName: "serialization_diagnostics", Action: "missing reflected traits", Succeeded: true}, true
}

func missingTraits(reflectTypes []string) []string {
	has := map[string]bool{}
	for _, t := range reflectTypes {
		has[t] = true
	}
	var missing []string
	if !has["Serialize"] {
		missing = append(missing, "Serialize")
	}
	if !has["Deserialize"] {
		missing = append(missing, "Deserialize")
	}
	return missing
}

// crateOf takes the best-effort crate name from a fully qualified type
// path, e.g. "bevy_transform::components::Transform" -> "bevy_transform".
func crateOf(typeName string) string {
	if idx := strings.Index(typeName, "::"); idx >= 0 {
		return typeName[:idx]
	}
	return typeName
}

type discoverFormatEntry struct {
	ExamplePayload json.RawMessage `json:"example"`
}

// tier2DirectDiscovery asks the optional discovery plugin for a known-good
// example payload of entry's type.
func tier2DirectDiscovery(ctx context.Context, client tierInvoker, entry payloadEntry, port uint16) (*Correction, TierEntry, bool) {
	result, err := client.Invoke(ctx, discoverFormatMethod, map[string]any{"types": []string{entry.typeName}}, port)
	if err != nil || result == nil {
		return nil, TierEntry{TierNumber: 2, TierName: "direct_discovery", Action: "transport error calling discover_format", Succeeded: false}, false
	}
	if !result.IsSuccess() {
		if result.Failure != nil && result.Failure.Code == brp.CodeMethodNotFound {
			return nil, TierEntry{TierNumber: 2, TierName: "direct_discovery", Action: "discover_format not available", Succeeded: false}, false
		}
		return nil, TierEntry{TierNumber: 2, TierName: "direct_discovery", Action: "discover_format call failed", Succeeded: false}, false
	}

	var byType map[string]discoverFormatEntry
	if err := json.Unmarshal(result.Value, &byType); err != nil {
		return nil, TierEntry{TierNumber: 2, TierName: "direct_discovery", Action: "discover_format response unparsable", Succeeded: false}, false
	}
	found, ok := byType[entry.typeName]
	if !ok || len(found.ExamplePayload) == 0 {
		return nil, TierEntry{TierNumber: 2, TierName: "direct_discovery", Action: "no example payload for type", Succeeded: false}, false
	}

	var corrected any
	if err := json.Unmarshal(found.ExamplePayload, &corrected); err != nil {
		return nil, TierEntry{TierNumber: 2, TierName: "direct_discovery", Action: "example payload undecodable", Succeeded: false}, false
	}

	corr := &Correction{
		TypeName:         entry.typeName,
		OriginalPayload:  entry.payload,
		CorrectedPayload: corrected,
		Hint:             fmt.Sprintf("`%s` corrected using a known-good example from direct discovery", entry.typeName),
	}
	return corr, TierEntry{TierNumber: 2, TierName: "direct_discovery", Action: "example payload applied", Succeeded: true}, true
}

// tier3PatternTransform classifies errMessage and dispatches to the
// transformer that owns the resulting pattern.
func tier3PatternTransform(entry payloadEntry, errMessage string) (*Correction, TierEntry, bool) {
	pattern := Classify(errMessage)
	if pattern == nil {
		return nil, TierEntry{TierNumber: 3, TierName: "pattern_transform", Action: "no pattern matched error message", Succeeded: false}, false
	}

	corrected, hint, ok := Transform(*pattern, entry.typeName, entry.payload)
	if !ok {
		return nil, TierEntry{TierNumber: 3, TierName: "pattern_transform", Action: fmt.Sprintf("matched %s, transformer declined", pattern.Kind), Succeeded: false}, false
	}

	corr := &Correction{
		TypeName:         entry.typeName,
		OriginalPayload:  entry.payload,
		CorrectedPayload: corrected,
		Hint:             hint,
	}
	return corr, TierEntry{TierNumber: 3, TierName: "pattern_transform", Action: fmt.Sprintf("matched %s", pattern.Kind), Succeeded: true}, true
}

// genericHint is the closed set of structural hints Tier 4 derives from
// raw error text when nothing more specific classified it.
type genericHint string

const (
	hintNeedsString      genericHint = "needs-string"
	hintNeedsArray       genericHint = "needs-array"
	hintNeedsObject      genericHint = "needs-object"
	hintNeedsTupleAccess genericHint = "needs-tuple-access"
	hintUnknown          genericHint = "unknown"
)

func deriveGenericHint(errMessage string) genericHint {
	lower := strings.ToLower(errMessage)
	switch {
	case strings.Contains(lower, "expected a string") || strings.Contains(lower, "expected string"):
		return hintNeedsString
	case strings.Contains(lower, "expected a sequence") || strings.Contains(lower, "expected an array") || strings.Contains(lower, "expected array"):
		return hintNeedsArray
	case strings.Contains(lower, "expected a map") || strings.Contains(lower, "expected struct") || strings.Contains(lower, "expected an object"):
		return hintNeedsObject
	case strings.Contains(lower, "tuple struct") || strings.Contains(lower, "tuple index"):
		return hintNeedsTupleAccess
	default:
		return hintUnknown
	}
}

// tier4GenericFallback applies at most one structural transform implied by
// the raw error text, skipping it if the payload is already of the target
// kind.
func tier4GenericFallback(entry payloadEntry, errMessage string) (*Correction, TierEntry, bool) {
	hint := deriveGenericHint(errMessage)

	switch hint {
	case hintNeedsString:
		if s, source, ok := extractStringValue(entry.payload); ok {
			return makeFallbackCorrection(entry, s, fmt.Sprintf("needs-string: extracted %s", source)), TierEntry{TierNumber: 4, TierName: "generic_fallback", Action: string(hint), Succeeded: true}, true
		}

	case hintNeedsArray:
		if obj, ok := entry.payload.(map[string]any); ok {
			arr := make([]any, 0, len(obj))
			for _, v := range obj {
				arr = append(arr, v)
			}
			return makeFallbackCorrection(entry, arr, "needs-array: collected object values"), TierEntry{TierNumber: 4, TierName: "generic_fallback", Action: string(hint), Succeeded: true}, true
		}

	case hintNeedsObject:
		if arr, ok := entry.payload.([]any); ok {
			return makeFallbackCorrection(entry, map[string]any{"items": arr}, "needs-object: wrapped array under `items`"), TierEntry{TierNumber: 4, TierName: "generic_fallback", Action: string(hint), Succeeded: true}, true
		}

	case hintNeedsTupleAccess:
		if arr, ok := entry.payload.([]any); ok && len(arr) == 1 {
			if s, ok := arr[0].(string); ok {
				return makeFallbackCorrection(entry, s, "needs-tuple-access: single-element array to string"), TierEntry{TierNumber: 4, TierName: "generic_fallback", Action: string(hint), Succeeded: true}, true
			}
		}
	}

	return nil, TierEntry{TierNumber: 4, TierName: "generic_fallback", Action: fmt.Sprintf("%s: no applicable transform", hint), Succeeded: false}, false
}

func makeFallbackCorrection(entry payloadEntry, corrected any, hint string) *Correction {
	return &Correction{
		TypeName:         entry.typeName,
		OriginalPayload:  entry.payload,
		CorrectedPayload: corrected,
		Hint:             hint,
	}
}
