package brptools

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bevybrp/brp-mcp-server/internal/debugtrail"
	"github.com/bevybrp/brp-mcp-server/internal/launcher"
	"github.com/bevybrp/brp-mcp-server/internal/watch"
	"github.com/bevybrp/brp-mcp-server/internal/workspace"
)

func newTestLocalHandlers(t *testing.T, tempDir string) *LocalHandlers {
	t.Helper()
	return NewLocalHandlers(
		watch.NewManager(tempDir, "127.0.0.1", "/", nil),
		debugtrail.NewFlag(false),
		workspace.NewScanner(),
		launcher.NewLauncher(tempDir),
		nil,
		tempDir,
	)
}

func TestLocalHandlers_Dispatch_KnownIDs(t *testing.T) {
	t.Parallel()

	h := newTestLocalHandlers(t, t.TempDir())
	ids := []string{
		"watch_components", "watch_list", "watch_stop", "watch_list_active",
		"watch_read_log", "debug_toggle", "app_list", "app_launch",
		"app_shutdown", "logs_cleanup",
	}
	for _, id := range ids {
		if _, ok := h.Dispatch(id); !ok {
			t.Errorf("Dispatch(%q) = not found, want a handler", id)
		}
	}
}

func TestLocalHandlers_Dispatch_UnknownID(t *testing.T) {
	t.Parallel()

	h := newTestLocalHandlers(t, t.TempDir())
	if _, ok := h.Dispatch("not_a_real_handler"); ok {
		t.Error("Dispatch() found a handler for an unregistered id")
	}
}

func TestDebugToggle(t *testing.T) {
	t.Parallel()

	h := newTestLocalHandlers(t, t.TempDir())
	fn, _ := h.Dispatch("debug_toggle")

	out, err := fn(context.Background(), map[string]any{"enabled": true}, 0)
	if err != nil {
		t.Fatalf("debug_toggle error = %v", err)
	}
	if out["previous"] != false || out["enabled"] != true {
		t.Errorf("debug_toggle = %#v, want previous=false enabled=true", out)
	}

	out, err = fn(context.Background(), map[string]any{"enabled": false}, 0)
	if err != nil {
		t.Fatalf("debug_toggle error = %v", err)
	}
	if out["previous"] != true {
		t.Errorf("previous = %v, want true (the prior toggle)", out["previous"])
	}
}

func TestDebugToggle_MissingField(t *testing.T) {
	t.Parallel()

	h := newTestLocalHandlers(t, t.TempDir())
	fn, _ := h.Dispatch("debug_toggle")
	_, err := fn(context.Background(), map[string]any{}, 0)
	if err == nil {
		t.Fatal("debug_toggle error = nil, want missing-field error")
	}
}

func TestLogsCleanup_RemovesOnlyStaleKnownPrefixes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	h := newTestLocalHandlers(t, dir)
	fn, _ := h.Dispatch("logs_cleanup")

	stale := filepath.Join(dir, "brp_watch_1_2_components.log")
	fresh := filepath.Join(dir, "brp_watch_2_3_list.log")
	unrelated := filepath.Join(dir, "not_ours.txt")
	for _, p := range []string{stale, fresh, unrelated} {
		if err := os.WriteFile(p, []byte("{}"), 0o644); err != nil {
			t.Fatalf("WriteFile(%s): %v", p, err)
		}
	}
	oldTime := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(stale, oldTime, oldTime); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	out, err := fn(context.Background(), map[string]any{"max_age_seconds": float64(3600)}, 0)
	if err != nil {
		t.Fatalf("logs_cleanup error = %v", err)
	}
	removed, ok := out["removed"].([]string)
	if !ok || len(removed) != 1 || removed[0] != stale {
		t.Fatalf("removed = %#v, want only %q", out["removed"], stale)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale watch log still present after cleanup")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("fresh watch log removed by cleanup, want kept")
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Error("unrelated file removed by cleanup, want kept")
	}
}

func TestWatchReadLog_UnknownWatchID(t *testing.T) {
	t.Parallel()

	h := newTestLocalHandlers(t, t.TempDir())
	fn, _ := h.Dispatch("watch_read_log")

	_, err := fn(context.Background(), map[string]any{"watch_id": float64(999)}, 0)
	if err == nil {
		t.Fatal("watch_read_log error = nil, want error for an id with no active watch")
	}
}

func TestAppShutdown_UnknownProcessName(t *testing.T) {
	t.Parallel()

	h := newTestLocalHandlers(t, t.TempDir())
	fn, _ := h.Dispatch("app_shutdown")

	_, err := fn(context.Background(), map[string]any{"name": "never-launched"}, 0)
	if err == nil {
		t.Fatal("app_shutdown error = nil, want error for an untracked process name")
	}
}

func TestAppList_EmptyRootsYieldsEmptyTargets(t *testing.T) {
	t.Parallel()

	h := newTestLocalHandlers(t, t.TempDir())
	fn, _ := h.Dispatch("app_list")

	out, err := fn(context.Background(), map[string]any{}, 0)
	if err != nil {
		t.Fatalf("app_list error = %v", err)
	}
	targets, ok := out["targets"].([]map[string]any)
	if !ok {
		t.Fatalf("targets = %#v, want []map[string]any", out["targets"])
	}
	if len(targets) != 0 {
		t.Errorf("targets = %v, want empty with no workspace roots configured", targets)
	}
}
