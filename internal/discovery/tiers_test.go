package discovery

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/bevybrp/brp-mcp-server/internal/brp"
)

// fakeInvoker is a scriptable tierInvoker: it returns canned results keyed
// by the method invoked, so tier 1/tier 2 can be exercised without a live
// BRP endpoint.
type fakeInvoker struct {
	results map[string]*brp.Result
	errs    map[string]error
	calls   []string
}

func (f *fakeInvoker) Invoke(ctx context.Context, method string, params any, port uint16) (*brp.Result, error) {
	f.calls = append(f.calls, method)
	if err, ok := f.errs[method]; ok {
		return nil, err
	}
	if r, ok := f.results[method]; ok {
		return r, nil
	}
	return &brp.Result{Failure: &brp.FailureInfo{Code: brp.CodeMethodNotFound, Message: "not found"}}, nil
}

func mustRaw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshaling fixture: %v", err)
	}
	return b
}

func TestAttemptRepair_TierTraceStrictlyIncreasing(t *testing.T) {
	t.Parallel()

	inv := &fakeInvoker{results: map[string]*brp.Result{}}
	entry := payloadEntry{typeName: "my_crate::Health", payload: map[string]any{"current": 1.0}}

	trace, _ := attemptRepair(context.Background(), inv, "bevy/insert", entry, "my_crate::Health is missing field `current`", 15702)

	if len(trace) == 0 {
		t.Fatal("attemptRepair() produced no tier trace")
	}
	for i := 1; i < len(trace); i++ {
		if trace[i].TierNumber <= trace[i-1].TierNumber {
			t.Errorf("tier trace not strictly increasing: %+v", trace)
		}
	}
}

func TestAttemptRepair_Tier1TerminalStopsEarly(t *testing.T) {
	t.Parallel()

	schema := map[string]schemaEntry{
		"my_crate::Opaque": {ReflectTypes: []string{"Component"}},
	}
	inv := &fakeInvoker{results: map[string]*brp.Result{
		registrySchemaMethod: {Value: mustRaw(t, schema)},
	}}
	entry := payloadEntry{typeName: "my_crate::Opaque", payload: map[string]any{}}

	trace, corr := attemptRepair(context.Background(), inv, "bevy/spawn", entry, "irrelevant", 15702)

	if len(trace) != 1 {
		t.Fatalf("trace = %+v, want exactly one tier-1 entry (terminal)", trace)
	}
	if corr == nil || !corr.Terminal {
		t.Fatalf("correction = %+v, want a terminal correction", corr)
	}
	if len(inv.calls) != 1 {
		t.Errorf("calls = %v, want exactly one call (registry schema), tier 2-4 must not run", inv.calls)
	}
}

func TestAttemptRepair_FallsThroughToTier3OnPatternMatch(t *testing.T) {
	t.Parallel()

	// Tier 1 skipped (method not spawn/insert); tier 2's discover_format
	// reports method-not-found so it declines; tier 3 should then match the
	// missing-field pattern and correct.
	inv := &fakeInvoker{
		errs: map[string]error{},
		results: map[string]*brp.Result{
			discoverFormatMethod: {Failure: &brp.FailureInfo{Code: brp.CodeMethodNotFound, Message: "not found"}},
		},
	}
	entry := payloadEntry{typeName: "my_crate::Health", payload: map[string]any{"0": 42.0}}

	trace, corr := attemptRepair(context.Background(), inv, "bevy/mutate_component", entry, "my_crate::Health is missing field `current`", 15702)

	var sawTier3 bool
	for _, e := range trace {
		if e.TierNumber == 3 {
			sawTier3 = true
		}
	}
	if !sawTier3 {
		t.Fatalf("trace = %+v, want a tier-3 entry", trace)
	}
	if corr == nil {
		t.Fatal("correction = nil, want tier 3 to have produced a correction")
	}
}

func TestTier2DirectDiscovery_AppliesExamplePayload(t *testing.T) {
	t.Parallel()

	byType := map[string]discoverFormatEntry{
		"my_crate::Name": {ExamplePayload: mustRaw(t, "Alice")},
	}
	inv := &fakeInvoker{results: map[string]*brp.Result{
		discoverFormatMethod: {Value: mustRaw(t, byType)},
	}}
	entry := payloadEntry{typeName: "my_crate::Name", payload: map[string]any{"name": "Alice"}}

	corr, entryLog, ok := tier2DirectDiscovery(context.Background(), inv, entry, 15702)
	if !ok {
		t.Fatal("tier2DirectDiscovery() ok = false, want true")
	}
	if !entryLog.Succeeded {
		t.Error("entryLog.Succeeded = false, want true")
	}
	if corr.CorrectedPayload != "Alice" {
		t.Errorf("CorrectedPayload = %v, want \"Alice\"", corr.CorrectedPayload)
	}
}

func TestDeriveGenericHint(t *testing.T) {
	t.Parallel()

	cases := map[string]genericHint{
		"invalid type: map, expected a string":                hintNeedsString,
		"invalid type: string, expected a sequence of values": hintNeedsArray,
		"invalid type: string, expected struct Foo":           hintNeedsObject,
		"found a tuple struct instead":                        hintNeedsTupleAccess,
		"completely unrecognized text":                        hintUnknown,
	}
	for msg, want := range cases {
		if got := deriveGenericHint(msg); got != want {
			t.Errorf("deriveGenericHint(%q) = %s, want %s", msg, got, want)
		}
	}
}
