package brptools

import (
	"fmt"
	"strings"

	"github.com/bevybrp/brp-mcp-server/internal/brp"
	"github.com/bevybrp/brp-mcp-server/internal/discovery"
)

// Format renders a successful BRP (or local) result into the tool's
// declared response shape: template substitution, then each declared
// response field, then the correction and debug trails when present and
// allowed. See spec.md §4.3.
func Format(def ToolDef, reqParams map[string]any, value []byte, corrections []discovery.Correction, debug []string, ctx FieldContext) (map[string]any, error) {
	out := map[string]any{}

	if def.Formatter.Template != "" {
		out["message"] = substituteTemplate(def.Formatter.Template, reqParams)
	}

	for _, f := range def.Formatter.Fields {
		val, err := extractField(f, value, ctx)
		if err != nil {
			return nil, &InvariantError{Tool: def.Name, Msg: fmt.Sprintf("response field %q: %v", f.Name, err)}
		}
		out[f.Name] = val
	}

	if len(corrections) > 0 {
		out["format_corrections"] = correctionSummaries(corrections)
	}
	if len(debug) > 0 {
		out["debug"] = debug
	}

	return out, nil
}

// FormatFailure renders a failed BRP call. Formatters that opt into
// default-error mode emit a structured failure object with code, message,
// data and method/port metadata; spec.md §4.3 permits a formatter kind to
// rewrap instead, but every concrete tool in this catalog uses
// default-error mode, so that is the only path implemented.
func FormatFailure(def ToolDef, method string, port uint16, failure *brp.FailureInfo, corrections []discovery.Correction, debug []string) map[string]any {
	errObj := map[string]any{
		"code":    failure.Code,
		"message": failure.Message,
		"method":  method,
		"port":    port,
	}
	if failure.Data != nil {
		errObj["data"] = failure.Data
	}

	out := map[string]any{"error": errObj}

	if len(corrections) > 0 {
		errObj["format_corrections"] = correctionSummaries(corrections)
		for _, c := range corrections {
			if c.Terminal {
				errObj["original_error"] = failure.Message
				break
			}
		}
	}
	if len(debug) > 0 {
		out["debug"] = debug
	}

	return out
}

// correctionSummaries projects the engine's internal Correction records
// into the wire shape spec.md §4.8 names: component, original_format,
// corrected_format, hint.
func correctionSummaries(corrections []discovery.Correction) []map[string]any {
	out := make([]map[string]any, 0, len(corrections))
	for _, c := range corrections {
		out = append(out, map[string]any{
			"component":        c.TypeName,
			"original_format":  c.OriginalPayload,
			"corrected_format": c.CorrectedPayload,
			"hint":             c.Hint,
		})
	}
	return out
}

// substituteTemplate replaces every "{name}" token in template with the
// stringified value of reqParams[name].
func substituteTemplate(template string, reqParams map[string]any) string {
	if !strings.Contains(template, "{") {
		return template
	}
	out := template
	for name, value := range reqParams {
		token := "{" + name + "}"
		if strings.Contains(out, token) {
			out = strings.ReplaceAll(out, token, fmt.Sprintf("%v", value))
		}
	}
	return out
}
