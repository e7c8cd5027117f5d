package brptools

import "fmt"

// ExtractedParams is the normalized triple every extractor produces: an
// optional dynamic method override, an optional params payload to send to
// BRP, and the target port.
type ExtractedParams struct {
	Method *string
	Params any
	Port   uint16
}

// Extract runs the extractor named by def.Extractor against an incoming
// tool call's arguments, producing the normalized triple or a *ParamError.
func Extract(def ToolDef, args map[string]any, defaultPort uint16) (ExtractedParams, error) {
	port, err := extractPort(args, defaultPort)
	if err != nil {
		return ExtractedParams{}, err
	}

	switch def.Extractor {
	case ExtractSimplePort:
		return ExtractedParams{Port: port}, nil

	case ExtractPassthrough:
		rest := map[string]any{}
		for k, v := range args {
			if k == "port" {
				continue
			}
			rest[k] = v
		}
		var params any
		if len(rest) > 0 {
			params = rest
		}
		return ExtractedParams{Params: params, Port: port}, nil

	case ExtractEntity:
		entity, ok, err := numericField(args, "entity")
		if err != nil {
			return ExtractedParams{}, err
		}
		if !ok {
			if def.EntityRequired {
				return ExtractedParams{}, &ParamError{Field: "entity", Msg: "required field is missing"}
			}
			return ExtractedParams{Port: port}, nil
		}
		return ExtractedParams{Params: map[string]any{"entity": entity}, Port: port}, nil

	case ExtractResource:
		resource, ok := args["resource"].(string)
		if !ok || resource == "" {
			return ExtractedParams{}, &ParamError{Field: "resource", Msg: "required field is missing"}
		}
		return ExtractedParams{Params: map[string]any{"resource": resource}, Port: port}, nil

	case ExtractDynamicMethod:
		method, ok := args["method"].(string)
		if !ok || method == "" {
			return ExtractedParams{}, &ParamError{Field: "method", Msg: "required field is missing"}
		}
		var params any
		if v, ok := args["params"]; ok {
			params = v
		}
		return ExtractedParams{Method: &method, Params: params, Port: port}, nil

	case ExtractRegistryFilter:
		filter := map[string]any{}
		for _, name := range []string{"include_crates", "exclude_crates", "include_traits", "exclude_traits"} {
			arr, err := stringArrayField(args, name)
			if err != nil {
				return ExtractedParams{}, err
			}
			if arr != nil {
				filter[name] = arr
			}
		}
		var params any
		if len(filter) > 0 {
			params = filter
		}
		return ExtractedParams{Params: params, Port: port}, nil

	default:
		return ExtractedParams{}, &InvariantError{Tool: def.Name, Msg: fmt.Sprintf("unknown extractor %q", def.Extractor)}
	}
}

// extractPort pulls and range-validates the "port" argument, defaulting
// when absent.
func extractPort(args map[string]any, defaultPort uint16) (uint16, error) {
	raw, ok := args["port"]
	if !ok {
		return defaultPort, nil
	}
	n, ok := toFloat(raw)
	if !ok {
		return 0, &ParamError{Field: "port", Msg: "must be a number"}
	}
	if n < 0 || n > 65535 {
		return 0, &ParamError{Field: "port", Msg: "out of range for a 16-bit port"}
	}
	return uint16(n), nil
}

// numericField reads an optional unsigned numeric field.
func numericField(args map[string]any, name string) (uint64, bool, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return 0, false, nil
	}
	n, ok := toFloat(raw)
	if !ok {
		return 0, false, &ParamError{Field: name, Msg: "must be a number"}
	}
	if n < 0 {
		return 0, false, &ParamError{Field: name, Msg: "must not be negative"}
	}
	return uint64(n), true, nil
}

// stringArrayField reads an optional array of strings.
func stringArrayField(args map[string]any, name string) ([]string, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return nil, nil
	}
	arr, ok := raw.([]any)
	if !ok {
		if strs, ok := raw.([]string); ok {
			return strs, nil
		}
		return nil, &ParamError{Field: name, Msg: "must be an array of strings"}
	}
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		s, ok := v.(string)
		if !ok {
			return nil, &ParamError{Field: name, Msg: "must be an array of strings"}
		}
		out = append(out, s)
	}
	return out, nil
}

// toFloat normalizes the handful of numeric representations that can
// arrive through a decoded map[string]any (float64 from encoding/json,
// plus int/int64 for callers that construct args in Go directly).
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint16:
		return float64(n), true
	default:
		return 0, false
	}
}
