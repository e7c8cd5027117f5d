package brptools

import "testing"

func TestExtract_SimplePort(t *testing.T) {
	t.Parallel()

	def := ToolDef{Name: "t", Extractor: ExtractSimplePort}

	got, err := Extract(def, map[string]any{}, 15702)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got.Port != 15702 {
		t.Errorf("Port = %d, want 15702 (default)", got.Port)
	}
	if got.Params != nil {
		t.Errorf("Params = %v, want nil", got.Params)
	}

	got, err = Extract(def, map[string]any{"port": float64(9999)}, 15702)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got.Port != 9999 {
		t.Errorf("Port = %d, want 9999", got.Port)
	}
}

func TestExtract_SimplePort_OutOfRange(t *testing.T) {
	t.Parallel()

	def := ToolDef{Name: "t", Extractor: ExtractSimplePort}
	_, err := Extract(def, map[string]any{"port": float64(70000)}, 15702)
	if err == nil {
		t.Fatal("Extract() error = nil, want out-of-range error")
	}
	var paramErr *ParamError
	if !asParamError(err, &paramErr) {
		t.Fatalf("error is %T, want *ParamError", err)
	}
	if paramErr.Field != "port" {
		t.Errorf("Field = %q, want \"port\"", paramErr.Field)
	}
}

func TestExtract_Passthrough(t *testing.T) {
	t.Parallel()

	def := ToolDef{Name: "t", Extractor: ExtractPassthrough}
	args := map[string]any{"port": float64(1234), "components": map[string]any{"a": 1}}

	got, err := Extract(def, args, 15702)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got.Port != 1234 {
		t.Errorf("Port = %d, want 1234", got.Port)
	}
	params, ok := got.Params.(map[string]any)
	if !ok {
		t.Fatalf("Params = %#v, want map[string]any", got.Params)
	}
	if _, hasPort := params["port"]; hasPort {
		t.Error("Params still contains \"port\", should be stripped")
	}
	if _, hasComponents := params["components"]; !hasComponents {
		t.Error("Params missing \"components\"")
	}
}

func TestExtract_Passthrough_EmptyYieldsNilParams(t *testing.T) {
	t.Parallel()

	def := ToolDef{Name: "t", Extractor: ExtractPassthrough}
	got, err := Extract(def, map[string]any{}, 15702)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got.Params != nil {
		t.Errorf("Params = %v, want nil when no non-port args given", got.Params)
	}
}

func TestExtract_Entity(t *testing.T) {
	t.Parallel()

	def := ToolDef{Name: "t", Extractor: ExtractEntity, EntityRequired: true}

	got, err := Extract(def, map[string]any{"entity": float64(42)}, 15702)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	params, ok := got.Params.(map[string]any)
	if !ok || params["entity"] != uint64(42) {
		t.Errorf("Params = %#v, want {entity: 42}", got.Params)
	}
}

func TestExtract_Entity_RequiredMissing(t *testing.T) {
	t.Parallel()

	def := ToolDef{Name: "t", Extractor: ExtractEntity, EntityRequired: true}
	_, err := Extract(def, map[string]any{}, 15702)
	if err == nil {
		t.Fatal("Extract() error = nil, want missing-required error")
	}
}

func TestExtract_Entity_OptionalMissing(t *testing.T) {
	t.Parallel()

	def := ToolDef{Name: "t", Extractor: ExtractEntity, EntityRequired: false}
	got, err := Extract(def, map[string]any{}, 15702)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got.Params != nil {
		t.Errorf("Params = %v, want nil for an absent optional entity", got.Params)
	}
}

func TestExtract_Resource(t *testing.T) {
	t.Parallel()

	def := ToolDef{Name: "t", Extractor: ExtractResource}
	got, err := Extract(def, map[string]any{"resource": "my_crate::MyResource"}, 15702)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	params := got.Params.(map[string]any)
	if params["resource"] != "my_crate::MyResource" {
		t.Errorf("resource = %v, want my_crate::MyResource", params["resource"])
	}
}

func TestExtract_Resource_MissingRequired(t *testing.T) {
	t.Parallel()

	def := ToolDef{Name: "t", Extractor: ExtractResource}
	_, err := Extract(def, map[string]any{}, 15702)
	if err == nil {
		t.Fatal("Extract() error = nil, want missing-required error")
	}
}

func TestExtract_DynamicMethod(t *testing.T) {
	t.Parallel()

	def := ToolDef{Name: "t", Extractor: ExtractDynamicMethod}
	got, err := Extract(def, map[string]any{"method": "bevy/get", "params": map[string]any{"entity": float64(1)}}, 15702)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got.Method == nil || *got.Method != "bevy/get" {
		t.Fatalf("Method = %v, want bevy/get", got.Method)
	}
	if got.Params == nil {
		t.Error("Params = nil, want forwarded params")
	}
}

func TestExtract_DynamicMethod_MissingMethod(t *testing.T) {
	t.Parallel()

	def := ToolDef{Name: "t", Extractor: ExtractDynamicMethod}
	_, err := Extract(def, map[string]any{}, 15702)
	if err == nil {
		t.Fatal("Extract() error = nil, want missing method error")
	}
}

func TestExtract_RegistryFilter(t *testing.T) {
	t.Parallel()

	def := ToolDef{Name: "t", Extractor: ExtractRegistryFilter}

	got, err := Extract(def, map[string]any{}, 15702)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got.Params != nil {
		t.Errorf("Params = %v, want nil when all filters absent", got.Params)
	}

	args := map[string]any{"include_crates": []any{"bevy_transform"}}
	got, err = Extract(def, args, 15702)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	params, ok := got.Params.(map[string]any)
	if !ok {
		t.Fatalf("Params = %#v, want map[string]any", got.Params)
	}
	crates, ok := params["include_crates"].([]string)
	if !ok || len(crates) != 1 || crates[0] != "bevy_transform" {
		t.Errorf("include_crates = %#v, want [bevy_transform]", params["include_crates"])
	}
}

func TestExtract_RegistryFilter_NonStringArray(t *testing.T) {
	t.Parallel()

	def := ToolDef{Name: "t", Extractor: ExtractRegistryFilter}
	_, err := Extract(def, map[string]any{"include_crates": []any{float64(1)}}, 15702)
	if err == nil {
		t.Fatal("Extract() error = nil, want array-of-strings error")
	}
}

func TestExtract_UnknownExtractor(t *testing.T) {
	t.Parallel()

	def := ToolDef{Name: "weird_tool", Extractor: ExtractorID("does_not_exist")}
	_, err := Extract(def, map[string]any{}, 15702)
	if err == nil {
		t.Fatal("Extract() error = nil, want invariant error")
	}
	var invariantErr *InvariantError
	if !asInvariantError(err, &invariantErr) {
		t.Fatalf("error is %T, want *InvariantError", err)
	}
	if invariantErr.Tool != "weird_tool" {
		t.Errorf("Tool = %q, want weird_tool", invariantErr.Tool)
	}
}

// asParamError and asInvariantError are small local helpers so the tests
// above read as plain type assertions without importing errors.As for a
// single-level check.
func asParamError(err error, target **ParamError) bool {
	pe, ok := err.(*ParamError)
	if !ok {
		return false
	}
	*target = pe
	return true
}

func asInvariantError(err error, target **InvariantError) bool {
	ie, ok := err.(*InvariantError)
	if !ok {
		return false
	}
	*target = ie
	return true
}
