package brptools

import (
	"encoding/json"
	"fmt"
)

// FieldContext carries everything a field extractor might need beyond the
// raw BRP result: the original request params (for *_from_params
// extractors) and a free-form set of extras a local handler can stash
// (watch ids, log lines, workspace targets) for query_params_from_context
// and named_field extractors.
type FieldContext struct {
	RequestParams map[string]any
	Extras        map[string]any
}

// extractField invokes the field extractor named by f against the
// decoded result value and context, per spec.md §4.3's closed set.
func extractField(f ResponseField, value json.RawMessage, ctx FieldContext) (any, error) {
	switch f.Extractor {
	case FieldEntityFromParams:
		return ctx.RequestParams["entity"], nil

	case FieldResourceFromParams:
		return ctx.RequestParams["resource"], nil

	case FieldPassThroughData:
		decoded, err := decodeAny(value)
		if err != nil {
			return nil, err
		}
		if obj, ok := decoded.(map[string]any); ok {
			if data, ok := obj["data"]; ok {
				return data, nil
			}
		}
		return decoded, nil

	case FieldPassThroughWhole:
		return decodeAny(value)

	case FieldArrayCount:
		decoded, err := decodeAny(value)
		if err != nil {
			return nil, err
		}
		arr, ok := decoded.([]any)
		if !ok {
			return nil, fmt.Errorf("array_count: result is not an array")
		}
		return len(arr), nil

	case FieldEntityFromResponse:
		decoded, err := decodeAny(value)
		if err != nil {
			return nil, err
		}
		obj, ok := decoded.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("entity_from_response: result is not an object")
		}
		return obj["entity"], nil

	case FieldNestedComponentCount:
		decoded, err := decodeAny(value)
		if err != nil {
			return nil, err
		}
		arr, ok := decoded.([]any)
		if !ok {
			return nil, fmt.Errorf("nested_component_count: result is not an array")
		}
		total := 0
		for _, item := range arr {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			total += len(obj)
		}
		return total, nil

	case FieldQueryParamsContext:
		if v, ok := ctx.Extras["query_params"]; ok {
			return v, nil
		}
		return ctx.RequestParams, nil

	case FieldNamedContext:
		return ctx.Extras[f.ContextKey], nil

	default:
		return nil, fmt.Errorf("unknown field extractor %q", f.Extractor)
	}
}

// decodeAny decodes a raw JSON value into generic Go values, treating an
// absent or null value as nil.
func decodeAny(value json.RawMessage) (any, error) {
	if len(value) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(value, &v); err != nil {
		return nil, fmt.Errorf("decoding result: %w", err)
	}
	return v, nil
}
