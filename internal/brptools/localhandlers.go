package brptools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bevybrp/brp-mcp-server/internal/debugtrail"
	"github.com/bevybrp/brp-mcp-server/internal/launcher"
	"github.com/bevybrp/brp-mcp-server/internal/watch"
	"github.com/bevybrp/brp-mcp-server/internal/workspace"
)

// LocalHandlerFunc is the shape every local (non-BRP) tool dispatches to.
// It receives the tool call's raw argument map and the resolved port,
// and returns the extras a formatter's named_context_field fields read
// from (FieldContext.Extras).
type LocalHandlerFunc func(ctx context.Context, args map[string]any, port uint16) (map[string]any, error)

// LocalHandlers owns the in-process subsystems (watch table, debug toggle,
// workspace scanner, process launcher) that back the local tool catalog
// declared in localLogTools and localAppLifecycleTools.
type LocalHandlers struct {
	watches *watch.Manager
	debug   *debugtrail.Flag
	scanner *workspace.Scanner
	launch  *launcher.Launcher
	roots   []string
	tempDir string

	mu        sync.Mutex
	processes map[string]*launcher.Process
}

// NewLocalHandlers builds the local-handler bundle. roots are the
// workspace directories app_list scans for launchable targets.
func NewLocalHandlers(watches *watch.Manager, debug *debugtrail.Flag, scanner *workspace.Scanner, l *launcher.Launcher, roots []string, tempDir string) *LocalHandlers {
	return &LocalHandlers{
		watches:   watches,
		debug:     debug,
		scanner:   scanner,
		launch:    l,
		roots:     roots,
		tempDir:   tempDir,
		processes: make(map[string]*launcher.Process),
	}
}

// Dispatch resolves a handler id declared on a ToolDef's Backend to the
// function that serves it.
func (h *LocalHandlers) Dispatch(handlerID string) (LocalHandlerFunc, bool) {
	switch handlerID {
	case "watch_components":
		return h.watchComponents, true
	case "watch_list":
		return h.watchList, true
	case "watch_stop":
		return h.watchStop, true
	case "watch_list_active":
		return h.watchListActive, true
	case "watch_read_log":
		return h.watchReadLog, true
	case "debug_toggle":
		return h.debugToggle, true
	case "app_list":
		return h.appList, true
	case "app_launch":
		return h.appLaunch, true
	case "app_shutdown":
		return h.appShutdown, true
	case "logs_cleanup":
		return h.logsCleanup, true
	default:
		return nil, false
	}
}

func requiredUint(args map[string]any, name string) (uint64, error) {
	raw, ok := args[name]
	if !ok {
		return 0, &ParamError{Field: name, Msg: "required field is missing"}
	}
	n, ok := toFloat(raw)
	if !ok || n < 0 {
		return 0, &ParamError{Field: name, Msg: "must be a non-negative number"}
	}
	return uint64(n), nil
}

func requiredString(args map[string]any, name string) (string, error) {
	s, ok := args[name].(string)
	if !ok || s == "" {
		return "", &ParamError{Field: name, Msg: "required field is missing"}
	}
	return s, nil
}

func (h *LocalHandlers) watchComponents(ctx context.Context, args map[string]any, port uint16) (map[string]any, error) {
	entity, err := requiredUint(args, "entity")
	if err != nil {
		return nil, err
	}
	rawComponents, ok := args["components"].([]any)
	if !ok || len(rawComponents) == 0 {
		return nil, &ParamError{Field: "components", Msg: "must be a non-empty array of strings"}
	}
	components := make([]string, 0, len(rawComponents))
	for _, c := range rawComponents {
		s, ok := c.(string)
		if !ok {
			return nil, &ParamError{Field: "components", Msg: "must be a non-empty array of strings"}
		}
		components = append(components, s)
	}

	id, logPath, err := h.watches.StartComponentsWatch(ctx, entity, components, port)
	if err != nil {
		return nil, err
	}
	return map[string]any{"watch_id": id, "log_path": logPath}, nil
}

func (h *LocalHandlers) watchList(ctx context.Context, args map[string]any, port uint16) (map[string]any, error) {
	entity, err := requiredUint(args, "entity")
	if err != nil {
		return nil, err
	}
	id, logPath, err := h.watches.StartListWatch(ctx, entity, port)
	if err != nil {
		return nil, err
	}
	return map[string]any{"watch_id": id, "log_path": logPath}, nil
}

func (h *LocalHandlers) watchStop(ctx context.Context, args map[string]any, port uint16) (map[string]any, error) {
	id, err := requiredUint(args, "watch_id")
	if err != nil {
		return nil, err
	}
	if err := h.watches.Stop(uint32(id)); err != nil {
		return nil, err
	}
	return map[string]any{}, nil
}

func (h *LocalHandlers) watchListActive(ctx context.Context, args map[string]any, port uint16) (map[string]any, error) {
	active := h.watches.ListActive()
	out := make([]map[string]any, 0, len(active))
	for _, info := range active {
		out = append(out, map[string]any{
			"watch_id": info.WatchID,
			"entity":   info.EntityID,
			"kind":     string(info.Kind),
			"log_path": info.LogPath,
			"port":     info.Port,
		})
	}
	return map[string]any{"watches": out}, nil
}

// watchReadLog reads back a watch's log file. Since internal/watch exposes
// no read API of its own, this locates the log path from the active-watch
// table and reads the file directly; a watch that has already ended is
// reported as not found, since its log path is no longer tracked.
func (h *LocalHandlers) watchReadLog(ctx context.Context, args map[string]any, port uint16) (map[string]any, error) {
	id, err := requiredUint(args, "watch_id")
	if err != nil {
		return nil, err
	}

	var logPath string
	for _, info := range h.watches.ListActive() {
		if uint64(info.WatchID) == id {
			logPath = info.LogPath
			break
		}
	}
	if logPath == "" {
		return nil, &ParamError{Field: "watch_id", Msg: "no active watch with this id"}
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		return nil, fmt.Errorf("handler: reading watch log: %w", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if n, ok := args["tail_lines"]; ok {
		if f, ok := toFloat(n); ok && int(f) > 0 && int(f) < len(lines) {
			lines = lines[len(lines)-int(f):]
		}
	}
	return map[string]any{"lines": lines}, nil
}

func (h *LocalHandlers) debugToggle(ctx context.Context, args map[string]any, port uint16) (map[string]any, error) {
	enabled, ok := args["enabled"].(bool)
	if !ok {
		return nil, &ParamError{Field: "enabled", Msg: "required field is missing"}
	}
	previous := h.debug.Set(enabled)
	return map[string]any{"previous": previous, "enabled": enabled}, nil
}

func (h *LocalHandlers) appList(ctx context.Context, args map[string]any, port uint16) (map[string]any, error) {
	targets, err := h.scanner.Scan(h.roots)
	if err != nil {
		return nil, fmt.Errorf("handler: scanning workspace: %w", err)
	}
	out := make([]map[string]any, 0, len(targets))
	for _, t := range targets {
		out = append(out, map[string]any{
			"name":           t.Name,
			"kind":           string(t.Kind),
			"manifest_path":  t.ManifestPath,
			"workspace_root": t.WorkspaceRoot,
		})
	}
	return map[string]any{"targets": out}, nil
}

func (h *LocalHandlers) appLaunch(ctx context.Context, args map[string]any, port uint16) (map[string]any, error) {
	name, err := requiredString(args, "name")
	if err != nil {
		return nil, err
	}

	targets, err := h.scanner.Scan(h.roots)
	if err != nil {
		return nil, fmt.Errorf("handler: scanning workspace: %w", err)
	}
	var target *workspace.Target
	for i := range targets {
		if targets[i].Name == name {
			target = &targets[i]
			break
		}
	}
	if target == nil {
		return nil, &ParamError{Field: "name", Msg: "no launchable target with this name"}
	}

	proc, err := h.launch.Start(ctx, *target, port)
	if err != nil {
		return nil, fmt.Errorf("handler: launching %s: %w", name, err)
	}

	h.mu.Lock()
	h.processes[name] = proc
	h.mu.Unlock()

	return map[string]any{"log_path": proc.LogPath, "port": proc.Port}, nil
}

func (h *LocalHandlers) appShutdown(ctx context.Context, args map[string]any, port uint16) (map[string]any, error) {
	name, err := requiredString(args, "name")
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	proc, ok := h.processes[name]
	if ok {
		delete(h.processes, name)
	}
	h.mu.Unlock()

	if !ok {
		return nil, &ParamError{Field: "name", Msg: "no tracked process with this name"}
	}
	if err := proc.Stop(ctx); err != nil {
		return nil, fmt.Errorf("handler: stopping %s: %w", name, err)
	}
	return map[string]any{}, nil
}

// spilloverFilePrefixes names the stale-file families logs_cleanup sweeps:
// watch logs, launch logs, and response spillover files.
var spilloverFilePrefixes = []string{"brp_watch_", "brp_launch_", "brp_response_"}

const defaultCleanupMaxAge = time.Hour

func (h *LocalHandlers) logsCleanup(ctx context.Context, args map[string]any, port uint16) (map[string]any, error) {
	maxAge := defaultCleanupMaxAge
	if v, ok := args["max_age_seconds"]; ok {
		if f, ok := toFloat(v); ok && f >= 0 {
			maxAge = time.Duration(f) * time.Second
		}
	}

	entries, err := os.ReadDir(h.tempDir)
	if err != nil {
		return nil, fmt.Errorf("handler: reading temp dir: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() || !hasStalePrefix(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(h.tempDir, entry.Name())
		if err := os.Remove(path); err == nil {
			removed = append(removed, path)
		}
	}

	return map[string]any{"removed": removed}, nil
}

func hasStalePrefix(name string) bool {
	for _, prefix := range spilloverFilePrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
