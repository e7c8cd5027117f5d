// Package brptools holds the declarative tool catalog that compiles, at
// startup, into the uniform extract -> invoke -> format pipeline: the
// parameter extractors (C2), response formatters (C3), and tool registry
// and generator (C4) of the BRP MCP server.
package brptools

// ParamType enumerates the JSON-Schema-emittable parameter kinds a tool
// definition can declare.
type ParamType string

const (
	TypeNumber    ParamType = "number"
	TypeString    ParamType = "string"
	TypeBool      ParamType = "bool"
	TypeStringArr ParamType = "string[]"
	TypeAny       ParamType = "any"
)

// Parameter describes one tool input field, used mechanically to build the
// MCP input schema.
type Parameter struct {
	Name        string
	Description string
	Required    bool
	Type        ParamType
}

// BackendKind distinguishes a remote (BRP JSON-RPC) tool from one
// dispatched to a local in-process handler.
type BackendKind string

const (
	BackendRemote BackendKind = "remote"
	BackendLocal  BackendKind = "local"
)

// Backend names where a tool call is dispatched: a BRP method name for
// Remote (possibly empty, for dynamic-method tools), or a handler id for
// Local.
type Backend struct {
	Kind      BackendKind
	Method    string
	HandlerID string
}

// ExtractorID names one member of the closed set of parameter extractors
// (C2, spec.md §4.2).
type ExtractorID string

const (
	ExtractSimplePort     ExtractorID = "simple_port"
	ExtractPassthrough    ExtractorID = "passthrough"
	ExtractEntity         ExtractorID = "entity"
	ExtractResource       ExtractorID = "resource"
	ExtractDynamicMethod  ExtractorID = "dynamic_method"
	ExtractRegistryFilter ExtractorID = "registry_filter"
)

// FieldExtractorID names one member of the closed set of response field
// extractors (C3, spec.md §4.3).
type FieldExtractorID string

const (
	FieldEntityFromParams     FieldExtractorID = "entity_from_params"
	FieldResourceFromParams   FieldExtractorID = "resource_from_params"
	FieldPassThroughData      FieldExtractorID = "pass_through_data"
	FieldPassThroughWhole     FieldExtractorID = "pass_through_whole_result"
	FieldArrayCount           FieldExtractorID = "array_count"
	FieldEntityFromResponse   FieldExtractorID = "entity_from_response"
	FieldNestedComponentCount FieldExtractorID = "nested_component_count"
	FieldQueryParamsContext   FieldExtractorID = "query_params_from_context"
	FieldNamedContext         FieldExtractorID = "named_context_field"
)

// FormatterKind selects a response shape family. Neither Format nor
// FormatFailure branches on it.
type FormatterKind string

const (
	FormatterEntity   FormatterKind = "entity"
	FormatterResource FormatterKind = "resource"
	FormatterGeneric  FormatterKind = "generic"
)

// ResponseField names one extractor-populated field of a formatted
// response. ContextKey is only consulted by FieldNamedContext.
type ResponseField struct {
	Name       string
	Extractor  FieldExtractorID
	ContextKey string
}

// FormatterConfig is C3's configuration for one tool: how to render a BRP
// (or local) result into the tool's declared response shape.
type FormatterConfig struct {
	Template     string
	Fields       []ResponseField
	Kind         FormatterKind
	DefaultError bool
}

// ToolDef is one compile-time-declared tool, registry-resident for the
// life of the process.
type ToolDef struct {
	Name        string
	Description string
	Backend     Backend
	Parameters  []Parameter
	Extractor   ExtractorID
	Formatter   FormatterConfig

	// EntityRequired configures ExtractEntity: whether the "entity" field
	// is a required parameter. Unused by every other extractor.
	EntityRequired bool
}

// RepairEligible reports whether this tool's BRP method is one of the
// five methods the format-discovery engine (C5) knows how to repair.
func (t ToolDef) RepairEligible() bool {
	switch t.Backend.Method {
	case "bevy/spawn", "bevy/insert", "bevy/mutate_component", "bevy/insert_resource", "bevy/mutate_resource":
		return true
	default:
		return false
	}
}
