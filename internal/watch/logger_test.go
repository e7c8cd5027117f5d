package watch

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogger_WriteEventForceFlushesImmediately(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test.log")
	l, err := newLogger(path)
	if err != nil {
		t.Fatalf("newLogger() error: %v", err)
	}
	defer func() { _ = l.Close() }()

	if err := l.writeEvent(EventWatchStarted, map[string]any{"entity": 1}, true); err != nil {
		t.Fatalf("writeEvent() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), EventWatchStarted) {
		t.Errorf("log file does not contain %v after forced flush: %s", EventWatchStarted, data)
	}
}

func TestLogger_LinesAreWellFormedJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test.log")
	l, err := newLogger(path)
	if err != nil {
		t.Fatalf("newLogger() error: %v", err)
	}

	if err := l.writeEvent(EventWatchStarted, map[string]any{"entity": 1}, true); err != nil {
		t.Fatalf("writeEvent() error: %v", err)
	}
	if err := l.writeEvent(EventComponentUpdate, map[string]any{"x": 1}, true); err != nil {
		t.Fatalf("writeEvent() error: %v", err)
	}
	if err := l.writeEvent(EventWatchEnded, map[string]any{"entity": 1}, true); err != nil {
		t.Fatalf("writeEvent() error: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("line %q is not valid JSON: %v", line, err)
		}
		for _, key := range []string{"timestamp", "event_type", "payload"} {
			if _, ok := entry[key]; !ok {
				t.Errorf("line %q missing key %q", line, key)
			}
		}
		lines = append(lines, entry["event_type"].(string))
	}

	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	if lines[0] != EventWatchStarted {
		t.Errorf("first event = %v, want %v", lines[0], EventWatchStarted)
	}
	if lines[len(lines)-1] != EventWatchEnded {
		t.Errorf("last event = %v, want %v", lines[len(lines)-1], EventWatchEnded)
	}
}

func TestLogger_SizeTriggeredFlush(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test.log")
	l, err := newLogger(path)
	if err != nil {
		t.Fatalf("newLogger() error: %v", err)
	}
	defer func() { _ = l.Close() }()

	big := strings.Repeat("x", flushThreshold)
	if err := l.writeEvent(EventComponentUpdate, map[string]any{"blob": big}, false); err != nil {
		t.Fatalf("writeEvent() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected size-triggered flush to write data without a forced flush")
	}
}
