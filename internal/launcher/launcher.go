// Package launcher starts and stops local Cargo binary/example processes
// discovered by internal/workspace, redirecting their output to a log file.
package launcher

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/bevybrp/brp-mcp-server/internal/workspace"
)

// Process is a running (or recently stopped) launched target.
type Process struct {
	Target  workspace.Target
	Port    uint16
	LogPath string

	mu      sync.Mutex
	cmd     *exec.Cmd
	logFile *os.File
	stopped bool
	exited  chan struct{}
}

// Launcher starts Cargo binaries/examples as child processes.
type Launcher struct {
	tempDir string
}

// NewLauncher creates a process launcher. tempDir is the platform temp
// directory launch logs are written under.
func NewLauncher(tempDir string) *Launcher {
	return &Launcher{tempDir: tempDir}
}

// Start runs `cargo run --bin <name>` (or --example) for target, in the
// manifest's directory, with stdout/stderr redirected to a log file. The
// caller is responsible for eventually calling Stop.
func (l *Launcher) Start(ctx context.Context, target workspace.Target, port uint16) (*Process, error) {
	kindFlag := "--bin"
	if target.Kind == workspace.KindExample {
		kindFlag = "--example"
	}

	logPath := filepath.Join(l.tempDir, fmt.Sprintf("brp_launch_%s_%s_%d.log", target.Kind, target.Name, time.Now().Unix()))
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("launcher: failed to create log file: %w", err)
	}

	cmd := exec.CommandContext(ctx, "cargo", "run", kindFlag, target.Name)
	cmd.Dir = filepath.Dir(target.ManifestPath)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.Env = append(os.Environ(), fmt.Sprintf("BRP_PORT=%d", port))

	if err := cmd.Start(); err != nil {
		_ = logFile.Close()
		return nil, fmt.Errorf("launcher: failed to start %s: %w", target.Name, err)
	}

	p := &Process{
		Target:  target,
		Port:    port,
		LogPath: logPath,
		cmd:     cmd,
		logFile: logFile,
		exited:  make(chan struct{}),
	}

	go p.waitAndCleanup()

	return p, nil
}

// waitAndCleanup reaps the child process and closes its log file once it
// exits, whether that exit was natural or caused by Stop. This is the sole
// caller of cmd.Wait; Stop never calls it directly, since Wait must only
// be called once.
func (p *Process) waitAndCleanup() {
	_ = p.cmd.Wait()

	p.mu.Lock()
	_ = p.logFile.Close()
	p.mu.Unlock()

	close(p.exited)
}

// Stop terminates the process. It signals for graceful shutdown first and
// escalates to a kill if the process has not exited after a short grace
// period. Stopping an already-stopped process is a no-op.
func (p *Process) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	proc := p.cmd.Process
	p.mu.Unlock()

	if proc == nil {
		return nil
	}

	if err := proc.Signal(os.Interrupt); err != nil {
		return proc.Kill()
	}

	select {
	case <-p.exited:
		return nil
	case <-time.After(5 * time.Second):
		return proc.Kill()
	case <-ctx.Done():
		return proc.Kill()
	}
}
