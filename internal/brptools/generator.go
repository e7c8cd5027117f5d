package brptools

import (
	"context"
	"errors"

	"github.com/bevybrp/brp-mcp-server/internal/handler"
	"github.com/bevybrp/brp-mcp-server/internal/mcp"
)

// Generator compiles a declared ToolDef catalog into registered mcp.Tool
// adapters, per spec.md §4.4: one closure per tool wrapping extract ->
// dispatch (remote through the request handler, local through
// LocalHandlers) -> format -> spillover.
type Generator struct {
	handler     *handler.Handler
	local       *LocalHandlers
	defaultPort uint16
}

// NewGenerator builds a Generator. handler serves every Remote-backed
// tool; local serves every Local-backed one.
func NewGenerator(h *handler.Handler, local *LocalHandlers, defaultPort uint16) *Generator {
	return &Generator{handler: h, local: local, defaultPort: defaultPort}
}

// Compile registers one mcp.Tool per def into reg, returning the first
// registration error encountered, if any.
func (g *Generator) Compile(defs []ToolDef, reg mcp.ToolRegistry) error {
	for _, def := range defs {
		t := &adapterTool{def: def, gen: g}
		if err := reg.RegisterTool(def.Name, t); err != nil {
			return err
		}
	}
	return nil
}

// adapterTool is the uniform mcp.Tool built for every catalog entry.
type adapterTool struct {
	def ToolDef
	gen *Generator
}

func (t *adapterTool) Definition() mcp.ToolDefinition {
	return mcp.ToolDefinition{
		Name:        t.def.Name,
		Description: t.def.Description,
		InputSchema: buildSchema(t.def.Parameters),
	}
}

func (t *adapterTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	extracted, err := Extract(t.def, args, t.gen.defaultPort)
	if err != nil {
		return toolLevelError(err), nil
	}

	method := t.def.Backend.Method
	if extracted.Method != nil {
		method = *extracted.Method
	}

	switch t.def.Backend.Kind {
	case BackendLocal:
		return t.executeLocal(ctx, extracted, args)
	case BackendRemote:
		return t.executeRemote(ctx, extracted, method)
	default:
		return nil, &InvariantError{Tool: t.def.Name, Msg: "backend kind not configured"}
	}
}

func (t *adapterTool) executeLocal(ctx context.Context, extracted ExtractedParams, rawArgs map[string]any) (any, error) {
	fn, ok := t.gen.local.Dispatch(t.def.Backend.HandlerID)
	if !ok {
		return nil, &InvariantError{Tool: t.def.Name, Msg: "unknown local handler id " + t.def.Backend.HandlerID}
	}

	extras, err := fn(ctx, rawArgs, extracted.Port)
	if err != nil {
		return toolLevelError(err), nil
	}

	fieldCtx := FieldContext{RequestParams: rawArgs, Extras: extras}
	out, err := Format(t.def, rawArgs, nil, nil, nil, fieldCtx)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (t *adapterTool) executeRemote(ctx context.Context, extracted ExtractedParams, method string) (any, error) {
	result, trail, err := t.gen.handler.Invoke(ctx, method, extracted.Params, extracted.Port, t.def.RepairEligible())
	if err != nil {
		return nil, err
	}

	debugLines := trail.Lines()
	reqParams, _ := extracted.Params.(map[string]any)

	if !result.Raw.IsSuccess() {
		out := FormatFailure(t.def, method, extracted.Port, result.Raw.Failure, result.Corrections, debugLines)
		return t.gen.applySpillover(method, out), nil
	}

	fieldCtx := FieldContext{RequestParams: reqParams}
	out, err := Format(t.def, reqParams, result.Raw.Value, result.Corrections, debugLines, fieldCtx)
	if err != nil {
		return nil, err
	}
	return t.gen.applySpillover(method, out), nil
}

func (g *Generator) applySpillover(method string, response map[string]any) map[string]any {
	out, err := g.handler.ApplySpillover(method, response)
	if err != nil {
		return map[string]any{"error": map[string]any{"message": err.Error(), "method": method}}
	}
	return out
}

// toolLevelError renders a ParamError or InvariantError as a tool result
// rather than a transport-level failure, per spec.md §7: a malformed
// argument or misconfigured definition is reported to the caller inline,
// never retried.
func toolLevelError(err error) map[string]any {
	var paramErr *ParamError
	var invariantErr *InvariantError
	switch {
	case errors.As(err, &paramErr):
		return map[string]any{"error": map[string]any{"message": err.Error(), "field": paramErr.Field}}
	case errors.As(err, &invariantErr):
		return map[string]any{"error": map[string]any{"message": err.Error()}}
	default:
		return map[string]any{"error": map[string]any{"message": err.Error()}}
	}
}

// buildSchema mechanically builds a JSON Schema object from a parameter
// list: one property per Parameter, typed per its ParamType, and a
// required list of every Parameter with Required set.
func buildSchema(params []Parameter) map[string]any {
	properties := map[string]any{}
	var required []string

	for _, p := range params {
		properties[p.Name] = schemaProperty(p)
		if p.Required {
			required = append(required, p.Name)
		}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func schemaProperty(p Parameter) map[string]any {
	prop := map[string]any{"description": p.Description}
	switch p.Type {
	case TypeNumber:
		prop["type"] = "number"
	case TypeString:
		prop["type"] = "string"
	case TypeBool:
		prop["type"] = "boolean"
	case TypeStringArr:
		prop["type"] = "array"
		prop["items"] = map[string]any{"type": "string"}
	case TypeAny:
		// no "type" constraint: accepts any JSON value.
	}
	return prop
}
