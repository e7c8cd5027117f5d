package brptools

import "github.com/bevybrp/brp-mcp-server/internal/brp"

// BuildRegistry assembles the full concrete tool catalog: the fixed list
// of ToolDefs the generator compiles into MCP tool adapters at startup.
// See spec.md §4.4 and its concrete tool catalog expansion.
func BuildRegistry() []ToolDef {
	defs := make([]ToolDef, 0, 32)
	defs = append(defs, standardRemoteTools()...)
	defs = append(defs, specialRemoteTools()...)
	defs = append(defs, localLogTools()...)
	defs = append(defs, localAppLifecycleTools()...)
	return defs
}

func portParam() Parameter {
	return Parameter{Name: "port", Description: "BRP endpoint port; defaults to the server's configured port", Required: false, Type: TypeNumber}
}

func entityParam(required bool) Parameter {
	return Parameter{Name: "entity", Description: "target entity id", Required: required, Type: TypeNumber}
}

func entityField() ResponseField {
	return ResponseField{Name: "entity", Extractor: FieldEntityFromParams}
}

func remote(name, method, description string) ToolDef {
	return ToolDef{
		Name:        name,
		Description: description,
		Backend:     Backend{Kind: BackendRemote, Method: method},
	}
}

// standardRemoteTools are the entity/resource-centric BRP methods, one
// Remote ToolDef per BRP method name.
func standardRemoteTools() []ToolDef {
	return []ToolDef{
		func() ToolDef {
			t := remote("bevy_spawn", "bevy/spawn", "Spawn a new entity with the given components")
			t.Extractor = ExtractPassthrough
			t.Parameters = []Parameter{
				{Name: "components", Description: "map of fully qualified component type name to its value", Required: true, Type: TypeAny},
				portParam(),
			}
			t.Formatter = FormatterConfig{
				Kind:         FormatterEntity,
				Template:     "Spawned new entity",
				Fields:       []ResponseField{{Name: "entity", Extractor: FieldEntityFromResponse}},
				DefaultError: true,
			}
			return t
		}(),
		func() ToolDef {
			t := remote("bevy_insert", "bevy/insert", "Insert components onto an existing entity")
			t.Extractor = ExtractPassthrough
			t.Parameters = []Parameter{
				entityParam(true),
				{Name: "components", Description: "map of fully qualified component type name to its value", Required: true, Type: TypeAny},
				portParam(),
			}
			t.Formatter = FormatterConfig{
				Kind:         FormatterEntity,
				Template:     "Inserted components onto entity {entity}",
				Fields:       []ResponseField{entityField()},
				DefaultError: true,
			}
			return t
		}(),
		func() ToolDef {
			t := remote("bevy_get", "bevy/get", "Get one or more components from an entity")
			t.Extractor = ExtractPassthrough
			t.Parameters = []Parameter{
				entityParam(true),
				{Name: "components", Description: "component type names to fetch", Required: true, Type: TypeStringArr},
				portParam(),
			}
			t.Formatter = FormatterConfig{
				Kind:         FormatterEntity,
				Fields:       []ResponseField{entityField(), {Name: "components", Extractor: FieldPassThroughData}},
				DefaultError: true,
			}
			return t
		}(),
		func() ToolDef {
			t := remote("bevy_query", "bevy/query", "Query entities matching a component filter")
			t.Extractor = ExtractPassthrough
			t.Parameters = []Parameter{
				{Name: "data", Description: "query data spec: components/option/has", Required: true, Type: TypeAny},
				{Name: "filter", Description: "query filter spec: with/without", Required: false, Type: TypeAny},
				portParam(),
			}
			t.Formatter = FormatterConfig{
				Kind:         FormatterGeneric,
				Fields:       []ResponseField{{Name: "results", Extractor: FieldPassThroughWhole}, {Name: "count", Extractor: FieldArrayCount}},
				DefaultError: true,
			}
			return t
		}(),
		func() ToolDef {
			t := remote("bevy_destroy", "bevy/destroy", "Destroy an entity")
			t.Extractor = ExtractEntity
			t.EntityRequired = true
			t.Parameters = []Parameter{entityParam(true), portParam()}
			t.Formatter = FormatterConfig{
				Kind:         FormatterEntity,
				Template:     "Destroyed entity {entity}",
				Fields:       []ResponseField{entityField()},
				DefaultError: true,
			}
			return t
		}(),
		func() ToolDef {
			t := remote("bevy_remove", "bevy/remove", "Remove components from an entity")
			t.Extractor = ExtractPassthrough
			t.Parameters = []Parameter{
				entityParam(true),
				{Name: "components", Description: "component type names to remove", Required: true, Type: TypeStringArr},
				portParam(),
			}
			t.Formatter = FormatterConfig{
				Kind:         FormatterEntity,
				Template:     "Removed components from entity {entity}",
				Fields:       []ResponseField{entityField()},
				DefaultError: true,
			}
			return t
		}(),
		func() ToolDef {
			t := remote("bevy_mutate_component", "bevy/mutate_component", "Set a single field on a component by reflection path")
			t.Extractor = ExtractPassthrough
			t.Parameters = []Parameter{
				entityParam(true),
				{Name: "component", Description: "fully qualified component type name", Required: true, Type: TypeString},
				{Name: "path", Description: "reflection path to the field", Required: true, Type: TypeString},
				{Name: "value", Description: "new value for the field", Required: true, Type: TypeAny},
				portParam(),
			}
			t.Formatter = FormatterConfig{
				Kind:         FormatterEntity,
				Template:     "Mutated {component} on entity {entity}",
				Fields:       []ResponseField{entityField()},
				DefaultError: true,
			}
			return t
		}(),
		func() ToolDef {
			t := remote("bevy_get_resource", "bevy/get_resource", "Get the current value of a resource")
			t.Extractor = ExtractResource
			t.Parameters = []Parameter{{Name: "resource", Description: "fully qualified resource type name", Required: true, Type: TypeString}, portParam()}
			t.Formatter = FormatterConfig{
				Kind:         FormatterResource,
				Fields:       []ResponseField{{Name: "resource", Extractor: FieldResourceFromParams}, {Name: "value", Extractor: FieldPassThroughWhole}},
				DefaultError: true,
			}
			return t
		}(),
		func() ToolDef {
			t := remote("bevy_insert_resource", "bevy/insert_resource", "Insert or replace a resource")
			t.Extractor = ExtractPassthrough
			t.Parameters = []Parameter{
				{Name: "resource", Description: "fully qualified resource type name", Required: true, Type: TypeString},
				{Name: "value", Description: "resource value", Required: true, Type: TypeAny},
				portParam(),
			}
			t.Formatter = FormatterConfig{
				Kind:         FormatterResource,
				Template:     "Inserted resource {resource}",
				Fields:       []ResponseField{{Name: "resource", Extractor: FieldResourceFromParams}},
				DefaultError: true,
			}
			return t
		}(),
		func() ToolDef {
			t := remote("bevy_remove_resource", "bevy/remove_resource", "Remove a resource")
			t.Extractor = ExtractResource
			t.Parameters = []Parameter{{Name: "resource", Description: "fully qualified resource type name", Required: true, Type: TypeString}, portParam()}
			t.Formatter = FormatterConfig{
				Kind:         FormatterResource,
				Template:     "Removed resource {resource}",
				Fields:       []ResponseField{{Name: "resource", Extractor: FieldResourceFromParams}},
				DefaultError: true,
			}
			return t
		}(),
		func() ToolDef {
			t := remote("bevy_mutate_resource", "bevy/mutate_resource", "Set a single field on a resource by reflection path")
			t.Extractor = ExtractPassthrough
			t.Parameters = []Parameter{
				{Name: "resource", Description: "fully qualified resource type name", Required: true, Type: TypeString},
				{Name: "path", Description: "reflection path to the field", Required: true, Type: TypeString},
				{Name: "value", Description: "new value for the field", Required: true, Type: TypeAny},
				portParam(),
			}
			t.Formatter = FormatterConfig{
				Kind:         FormatterResource,
				Template:     "Mutated resource {resource}",
				Fields:       []ResponseField{{Name: "resource", Extractor: FieldResourceFromParams}},
				DefaultError: true,
			}
			return t
		}(),
		func() ToolDef {
			t := remote("bevy_list", "bevy/list", "List every component type on an entity")
			t.Extractor = ExtractEntity
			t.EntityRequired = true
			t.Parameters = []Parameter{entityParam(true), portParam()}
			t.Formatter = FormatterConfig{
				Kind:         FormatterEntity,
				Fields:       []ResponseField{entityField(), {Name: "components", Extractor: FieldPassThroughWhole}},
				DefaultError: true,
			}
			return t
		}(),
		func() ToolDef {
			t := remote("bevy_list_resources", "bevy/list_resources", "List every registered resource type")
			t.Extractor = ExtractSimplePort
			t.Parameters = []Parameter{portParam()}
			t.Formatter = FormatterConfig{
				Kind:         FormatterGeneric,
				Fields:       []ResponseField{{Name: "resources", Extractor: FieldPassThroughWhole}},
				DefaultError: true,
			}
			return t
		}(),
		func() ToolDef {
			t := remote("bevy_reparent", "bevy/reparent", "Change the parent of one or more entities")
			t.Extractor = ExtractPassthrough
			t.Parameters = []Parameter{
				{Name: "entities", Description: "entity ids to reparent", Required: true, Type: TypeAny},
				{Name: "parent", Description: "new parent entity id, or omit to clear", Required: false, Type: TypeNumber},
				portParam(),
			}
			t.Formatter = FormatterConfig{
				Kind:         FormatterGeneric,
				Template:     "Reparented entities",
				Fields:       []ResponseField{{Name: "entities", Extractor: FieldPassThroughWhole}},
				DefaultError: true,
			}
			return t
		}(),
		func() ToolDef {
			t := remote("bevy_registry_schema", "bevy/registry/schema", "Query the type registry schema, optionally filtered")
			t.Extractor = ExtractRegistryFilter
			t.Parameters = []Parameter{
				{Name: "include_crates", Description: "only include types from these crates", Required: false, Type: TypeStringArr},
				{Name: "exclude_crates", Description: "exclude types from these crates", Required: false, Type: TypeStringArr},
				{Name: "include_traits", Description: "only include types reflecting these traits", Required: false, Type: TypeStringArr},
				{Name: "exclude_traits", Description: "exclude types reflecting these traits", Required: false, Type: TypeStringArr},
				portParam(),
			}
			t.Formatter = FormatterConfig{
				Kind:         FormatterGeneric,
				Fields:       []ResponseField{{Name: "schema", Extractor: FieldPassThroughWhole}},
				DefaultError: true,
			}
			return t
		}(),
	}
}

// specialRemoteTools are remote tools whose method is dynamic or whose
// shape is not entity/resource-centric.
func specialRemoteTools() []ToolDef {
	return []ToolDef{
		func() ToolDef {
			t := ToolDef{Name: "brp_execute", Description: "Invoke an arbitrary BRP method by name", Backend: Backend{Kind: BackendRemote}}
			t.Extractor = ExtractDynamicMethod
			t.Parameters = []Parameter{
				{Name: "method", Description: "BRP method name to invoke", Required: true, Type: TypeString},
				{Name: "params", Description: "method parameters", Required: false, Type: TypeAny},
				portParam(),
			}
			t.Formatter = FormatterConfig{
				Kind:         FormatterGeneric,
				Fields:       []ResponseField{{Name: "result", Extractor: FieldPassThroughWhole}},
				DefaultError: true,
			}
			return t
		}(),
		func() ToolDef {
			t := remote("brp_extras_discover_format", brp.ExtrasPrefix+"discover_format", "Query the optional discovery plugin for known-good example payloads")
			t.Extractor = ExtractPassthrough
			t.Parameters = []Parameter{
				{Name: "types", Description: "fully qualified type names to discover formats for", Required: true, Type: TypeStringArr},
				portParam(),
			}
			t.Formatter = FormatterConfig{
				Kind:         FormatterGeneric,
				Fields:       []ResponseField{{Name: "formats", Extractor: FieldPassThroughWhole}},
				DefaultError: true,
			}
			return t
		}(),
		func() ToolDef {
			t := remote("brp_extras_screenshot", extrasMethod("screenshot"), "Capture a screenshot of the running app")
			t.Extractor = ExtractPassthrough
			t.Parameters = []Parameter{
				{Name: "path", Description: "destination file path for the screenshot", Required: true, Type: TypeString},
				portParam(),
			}
			t.Formatter = FormatterConfig{
				Kind:         FormatterGeneric,
				Fields:       []ResponseField{{Name: "result", Extractor: FieldPassThroughWhole}},
				DefaultError: true,
			}
			return t
		}(),
		func() ToolDef {
			t := remote("brp_extras_send_keys", extrasMethod("send_keys"), "Send a sequence of keyboard inputs to the running app")
			t.Extractor = ExtractPassthrough
			t.Parameters = []Parameter{
				{Name: "keys", Description: "key names to send, in order", Required: true, Type: TypeStringArr},
				{Name: "duration_ms", Description: "how long to hold each key, in milliseconds", Required: false, Type: TypeNumber},
				portParam(),
			}
			t.Formatter = FormatterConfig{
				Kind:         FormatterGeneric,
				Fields:       []ResponseField{{Name: "result", Extractor: FieldPassThroughWhole}},
				DefaultError: true,
			}
			return t
		}(),
	}
}

func extrasMethod(name string) string {
	return brp.ExtrasPrefix + name
}

func local(name, handlerID, description string) ToolDef {
	return ToolDef{
		Name:        name,
		Description: description,
		Backend:     Backend{Kind: BackendLocal, HandlerID: handlerID},
	}
}

// localLogTools dispatch to the watch manager and debug toggle.
func localLogTools() []ToolDef {
	return []ToolDef{
		func() ToolDef {
			t := local("brp_start_watch_entity", "watch_components", "Start a streaming watch over specific components on an entity")
			t.Extractor = ExtractPassthrough
			t.Parameters = []Parameter{
				entityParam(true),
				{Name: "components", Description: "component type names to watch", Required: true, Type: TypeStringArr},
				portParam(),
			}
			t.Formatter = FormatterConfig{
				Kind:   FormatterGeneric,
				Fields: []ResponseField{{Name: "watch_id", ContextKey: "watch_id", Extractor: FieldNamedContext}, {Name: "log_path", ContextKey: "log_path", Extractor: FieldNamedContext}},
			}
			return t
		}(),
		func() ToolDef {
			t := local("brp_start_watch_list", "watch_list", "Start a streaming watch over an entity's full component list")
			t.Extractor = ExtractEntity
			t.EntityRequired = true
			t.Parameters = []Parameter{entityParam(true), portParam()}
			t.Formatter = FormatterConfig{
				Kind:   FormatterGeneric,
				Fields: []ResponseField{{Name: "watch_id", ContextKey: "watch_id", Extractor: FieldNamedContext}, {Name: "log_path", ContextKey: "log_path", Extractor: FieldNamedContext}},
			}
			return t
		}(),
		func() ToolDef {
			t := local("brp_stop_watch", "watch_stop", "Stop an active watch")
			t.Extractor = ExtractPassthrough
			t.Parameters = []Parameter{{Name: "watch_id", Description: "id returned by a start-watch tool", Required: true, Type: TypeNumber}}
			t.Formatter = FormatterConfig{
				Kind:     FormatterGeneric,
				Template: "Stopped watch {watch_id}",
			}
			return t
		}(),
		func() ToolDef {
			t := local("brp_list_watches", "watch_list_active", "List currently active watches")
			t.Extractor = ExtractSimplePort
			t.Formatter = FormatterConfig{
				Kind:   FormatterGeneric,
				Fields: []ResponseField{{Name: "watches", ContextKey: "watches", Extractor: FieldNamedContext}},
			}
			return t
		}(),
		func() ToolDef {
			t := local("brp_get_watch_log", "watch_read_log", "Read back a watch's log file for inline inspection")
			t.Extractor = ExtractPassthrough
			t.Parameters = []Parameter{
				{Name: "watch_id", Description: "id returned by a start-watch tool", Required: true, Type: TypeNumber},
				{Name: "tail_lines", Description: "only return the last N lines", Required: false, Type: TypeNumber},
			}
			t.Formatter = FormatterConfig{
				Kind:   FormatterGeneric,
				Fields: []ResponseField{{Name: "lines", ContextKey: "lines", Extractor: FieldNamedContext}},
			}
			return t
		}(),
		func() ToolDef {
			t := local("brp_set_debug_mode", "debug_toggle", "Enable or disable the debug diagnostic trail")
			t.Extractor = ExtractPassthrough
			t.Parameters = []Parameter{{Name: "enabled", Description: "new debug mode state", Required: true, Type: TypeBool}}
			t.Formatter = FormatterConfig{
				Kind:   FormatterGeneric,
				Fields: []ResponseField{{Name: "previous", ContextKey: "previous", Extractor: FieldNamedContext}, {Name: "enabled", ContextKey: "enabled", Extractor: FieldNamedContext}},
			}
			return t
		}(),
	}
}

// localAppLifecycleTools dispatch to the workspace scanner and launcher.
func localAppLifecycleTools() []ToolDef {
	return []ToolDef{
		func() ToolDef {
			t := local("brp_list_launchable", "app_list", "List Cargo binaries and examples discoverable in the configured workspace roots")
			t.Extractor = ExtractSimplePort
			t.Formatter = FormatterConfig{
				Kind:   FormatterGeneric,
				Fields: []ResponseField{{Name: "targets", ContextKey: "targets", Extractor: FieldNamedContext}},
			}
			return t
		}(),
		func() ToolDef {
			t := local("brp_launch", "app_launch", "Launch a discovered binary or example as a child process")
			t.Extractor = ExtractPassthrough
			t.Parameters = []Parameter{
				{Name: "name", Description: "target name as reported by brp_list_launchable", Required: true, Type: TypeString},
				portParam(),
			}
			t.Formatter = FormatterConfig{
				Kind:   FormatterGeneric,
				Fields: []ResponseField{{Name: "log_path", ContextKey: "log_path", Extractor: FieldNamedContext}, {Name: "port", ContextKey: "port", Extractor: FieldNamedContext}},
			}
			return t
		}(),
		func() ToolDef {
			t := local("brp_shutdown", "app_shutdown", "Shut down a launched app, gracefully if possible")
			t.Extractor = ExtractPassthrough
			t.Parameters = []Parameter{
				{Name: "name", Description: "target name passed to brp_launch", Required: true, Type: TypeString},
				portParam(),
			}
			t.Formatter = FormatterConfig{
				Kind:     FormatterGeneric,
				Template: "Shut down {name}",
			}
			return t
		}(),
		func() ToolDef {
			t := local("brp_cleanup_logs", "logs_cleanup", "Remove stale watch and spillover files older than a TTL")
			t.Extractor = ExtractPassthrough
			t.Parameters = []Parameter{
				{Name: "max_age_seconds", Description: "remove files older than this many seconds", Required: false, Type: TypeNumber},
			}
			t.Formatter = FormatterConfig{
				Kind:   FormatterGeneric,
				Fields: []ResponseField{{Name: "removed", ContextKey: "removed", Extractor: FieldNamedContext}},
			}
			return t
		}(),
	}
}
