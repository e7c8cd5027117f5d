package brptools

import "testing"

func TestBuildSchema(t *testing.T) {
	t.Parallel()

	params := []Parameter{
		{Name: "entity", Description: "target entity", Required: true, Type: TypeNumber},
		{Name: "components", Description: "component names", Required: true, Type: TypeStringArr},
		{Name: "value", Description: "new value", Required: false, Type: TypeAny},
	}

	schema := buildSchema(params)

	if schema["type"] != "object" {
		t.Errorf("type = %v, want object", schema["type"])
	}

	required, ok := schema["required"].([]string)
	if !ok || len(required) != 2 {
		t.Fatalf("required = %#v, want 2 required names", schema["required"])
	}
	requiredSet := map[string]bool{}
	for _, r := range required {
		requiredSet[r] = true
	}
	if !requiredSet["entity"] || !requiredSet["components"] {
		t.Errorf("required = %v, want entity and components", required)
	}
	if requiredSet["value"] {
		t.Error("value marked required, should be optional")
	}

	properties, ok := schema["properties"].(map[string]any)
	if !ok {
		t.Fatalf("properties = %#v, want map", schema["properties"])
	}

	entityProp, ok := properties["entity"].(map[string]any)
	if !ok || entityProp["type"] != "number" {
		t.Errorf("entity property = %#v, want type number", properties["entity"])
	}

	componentsProp, ok := properties["components"].(map[string]any)
	if !ok || componentsProp["type"] != "array" {
		t.Fatalf("components property = %#v, want type array", properties["components"])
	}
	items, ok := componentsProp["items"].(map[string]any)
	if !ok || items["type"] != "string" {
		t.Errorf("components.items = %#v, want {type: string}", componentsProp["items"])
	}

	valueProp, ok := properties["value"].(map[string]any)
	if !ok {
		t.Fatalf("value property = %#v, want map", properties["value"])
	}
	if _, hasType := valueProp["type"]; hasType {
		t.Error("value property declares a type, want unconstrained (TypeAny)")
	}
}

func TestBuildSchema_NoRequiredOmitsKey(t *testing.T) {
	t.Parallel()

	schema := buildSchema([]Parameter{{Name: "port", Required: false, Type: TypeNumber}})
	if _, ok := schema["required"]; ok {
		t.Error("required key present with no required parameters, want omitted")
	}
}

func TestToolLevelError_ParamError(t *testing.T) {
	t.Parallel()

	out := toolLevelError(&ParamError{Field: "port", Msg: "out of range"})
	errObj, ok := out["error"].(map[string]any)
	if !ok {
		t.Fatalf("error = %#v, want map", out["error"])
	}
	if errObj["field"] != "port" {
		t.Errorf("field = %v, want port", errObj["field"])
	}
}

func TestToolLevelError_InvariantError(t *testing.T) {
	t.Parallel()

	out := toolLevelError(&InvariantError{Tool: "bevy_get", Msg: "unknown handler"})
	errObj, ok := out["error"].(map[string]any)
	if !ok {
		t.Fatalf("error = %#v, want map", out["error"])
	}
	if _, hasField := errObj["field"]; hasField {
		t.Error("invariant error unexpectedly carries a field key")
	}
}
