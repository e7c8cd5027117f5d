package watch

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
)

const (
	dataPrefix          = "data: "
	maxSSEMessageSize   = 1 << 20
	initialSSEBufferCap = 4096
)

// entry pairs a watch's public info with its task's cancellation handle.
type entry struct {
	info   Info
	cancel context.CancelFunc
	done   chan struct{}
}

// Manager is the process-wide, mutex-guarded table of active watches. The
// mutex is only ever held around id allocation and table mutation, never
// across I/O.
type Manager struct {
	mu      sync.Mutex
	nextID  uint32
	entries map[uint32]*entry

	httpClient *http.Client
	tempDir    string
	host       string
	path       string
}

// NewManager creates a watch manager. httpClient, if nil, defaults to a
// client with no overall timeout, since watch connections are long-lived
// streams by design. host and path identify the BRP endpoint watches
// connect to (the same JSON-RPC path used for single-shot calls).
func NewManager(tempDir, host, path string, httpClient *http.Client) *Manager {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Manager{
		entries:    make(map[uint32]*entry),
		httpClient: httpClient,
		tempDir:    tempDir,
		host:       host,
		path:       path,
	}
}

// StartComponentsWatch starts a watch over a fixed set of components on one
// entity. components must be non-empty.
func (m *Manager) StartComponentsWatch(ctx context.Context, entityID uint64, components []string, port uint16) (uint32, string, error) {
	if len(components) == 0 {
		return 0, "", fmt.Errorf("watch: components list must be non-empty")
	}
	params := map[string]any{
		"entity":     entityID,
		"components": components,
	}
	return m.start(ctx, entityID, KindComponents, MethodWatchComponents, params, port)
}

// StartListWatch starts a watch over the full component list of one entity.
func (m *Manager) StartListWatch(ctx context.Context, entityID uint64, port uint16) (uint32, string, error) {
	params := map[string]any{
		"entity": entityID,
	}
	return m.start(ctx, entityID, KindList, MethodWatchList, params, port)
}

// start is the generic starter: allocate an id under the lock, release it
// before any I/O, write the startup log line, register the entry under the
// lock, and spawn the connection-loop goroutine.
func (m *Manager) start(ctx context.Context, entityID uint64, kind Kind, method string, params map[string]any, port uint16) (uint32, string, error) {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.mu.Unlock()

	logPath := filepath.Join(m.tempDir, fmt.Sprintf("brp_watch_%d_%d_%s.log", id, entityID, kind))

	l, err := newLogger(logPath)
	if err != nil {
		return 0, "", fmt.Errorf("watch: failed to create log file: %w", err)
	}

	if err := l.writeEvent(EventWatchStarted, map[string]any{
		"entity": entityID,
		"params": params,
		"port":   port,
	}, true); err != nil {
		_ = l.Close()
		return 0, "", fmt.Errorf("watch: failed to write startup event: %w", err)
	}

	taskCtx, cancel := context.WithCancel(ctx)
	e := &entry{
		info: Info{
			WatchID:  id,
			EntityID: entityID,
			Kind:     kind,
			LogPath:  logPath,
			Port:     port,
		},
		cancel: cancel,
		done:   make(chan struct{}),
	}

	m.mu.Lock()
	m.entries[id] = e
	m.mu.Unlock()

	go m.runConnection(taskCtx, id, kind, method, params, port, l, e.done)

	return id, logPath, nil
}

// runConnection is the per-watch connection loop. It never holds the
// manager's mutex across I/O.
func (m *Manager) runConnection(ctx context.Context, id uint32, kind Kind, method string, params map[string]any, port uint16, l *logger, done chan struct{}) {
	defer close(done)
	defer func() { _ = l.Close() }()
	defer m.deregister(id)

	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
		"params":  params,
	})
	if err != nil {
		_ = l.writeEvent(EventConnectionError, map[string]any{"reason": err.Error()}, false)
		_ = l.writeEvent(EventWatchEnded, map[string]any{"entity": entityFromParams(params)}, true)
		return
	}

	url := fmt.Sprintf("http://%s:%d%s", m.host, port, m.path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		_ = l.writeEvent(EventConnectionError, map[string]any{"reason": err.Error()}, false)
		_ = l.writeEvent(EventWatchEnded, map[string]any{"entity": entityFromParams(params)}, true)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		_ = l.writeEvent(EventConnectionError, map[string]any{"reason": err.Error()}, false)
		_ = l.writeEvent(EventWatchEnded, map[string]any{"entity": entityFromParams(params)}, true)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = l.writeEvent(EventConnectionError, map[string]any{
			"status": resp.StatusCode,
			"reason": resp.Status,
		}, false)
		_ = l.writeEvent(EventWatchEnded, map[string]any{"entity": entityFromParams(params)}, true)
		return
	}

	updateEvent := EventComponentUpdate
	if kind == KindList {
		updateEvent = EventListUpdate
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, initialSSEBufferCap), maxSSEMessageSize)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || !strings.HasPrefix(line, dataPrefix) {
			continue
		}
		data := strings.TrimPrefix(line, dataPrefix)

		var frame map[string]any
		if err := json.Unmarshal([]byte(data), &frame); err != nil {
			continue
		}
		result, ok := frame["result"]
		if !ok {
			continue
		}
		_ = l.writeEvent(updateEvent, result, false)
	}

	_ = l.writeEvent(EventWatchEnded, map[string]any{"entity": entityFromParams(params)}, true)
}

func entityFromParams(params map[string]any) any {
	if params == nil {
		return nil
	}
	return params["entity"]
}

// Stop removes the watch entry and cancels its task. Cancellation is
// best-effort: the task observes ctx.Done() on its next I/O poll.
// Removing an already-removed id is a no-op.
func (m *Manager) Stop(id uint32) error {
	m.mu.Lock()
	e, ok := m.entries[id]
	if ok {
		delete(m.entries, id)
	}
	m.mu.Unlock()

	if !ok {
		return nil
	}
	e.cancel()
	return nil
}

// ListActive returns a snapshot of currently active watches.
func (m *Manager) ListActive() []Info {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Info, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.info)
	}
	return out
}

// deregister removes a watch id from the table on natural task end. It is
// idempotent: removing an already-removed id (e.g. because Stop raced it)
// is a no-op.
func (m *Manager) deregister(id uint32) {
	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()
}
