// Package config provides configuration management for the BRP MCP server.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds the complete server configuration in a flat structure.
type Config struct {
	// Server settings
	// Addr is the address to bind the HTTP transport (e.g., ":8090").
	Addr string

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration

	// IdleTimeout is the maximum duration to wait for the next request when keep-alives are enabled.
	IdleTimeout time.Duration

	// BRP settings
	// DefaultBRPPort is the port used when a tool call omits one.
	DefaultBRPPort uint16

	// BRPHost is the host the game-engine process listens on.
	BRPHost string

	// JSONRPCPath is the HTTP path the BRP endpoint is served on.
	JSONRPCPath string

	// BRPTimeout is the overall timeout for a single-shot JSON-RPC call.
	BRPTimeout time.Duration

	// Debug settings
	// DebugDefault is the initial value of the debug-info channel toggle.
	DebugDefault bool

	// Spillover settings
	// TempDir is the platform directory watch logs and spillover files are written to.
	TempDir string

	// SpilloverBudgetTokens is the token budget beyond which a response spills to a file.
	SpilloverBudgetTokens int

	// Workspace settings
	// WorkspaceRoots lists directories scanned for launchable Cargo projects.
	WorkspaceRoots []string
}

// Default BRP wire constants, matching the game engine's remote plugin defaults.
const (
	DefaultBRPHost = "127.0.0.1"
	DefaultBRPPort = uint16(15702)
	DefaultPath    = "/"
)

// EstimateBytesPerToken is the coarse token-estimation ratio used by the
// large-response spillover policy: estimated_tokens = byte_length / EstimateBytesPerToken.
const EstimateBytesPerToken = 4

// DefaultSpilloverBudgetTokens is the default token budget before a tool
// response spills over to a temp file instead of being returned inline.
const DefaultSpilloverBudgetTokens = 20000

// Load reads configuration from environment variables and returns a Config.
// It sets default values for optional fields and validates the configuration.
func Load() (*Config, error) {
	readTimeout, err := parseDurationWithDefault("SERVER_READ_TIMEOUT", "30s")
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := parseDurationWithDefault("SERVER_WRITE_TIMEOUT", "30s")
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_WRITE_TIMEOUT: %w", err)
	}

	idleTimeout, err := parseDurationWithDefault("SERVER_IDLE_TIMEOUT", "120s")
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_IDLE_TIMEOUT: %w", err)
	}

	brpTimeout, err := parseDurationWithDefault("BRP_TIMEOUT", "30s")
	if err != nil {
		return nil, fmt.Errorf("invalid BRP_TIMEOUT: %w", err)
	}

	port, err := parsePortWithDefault("BRP_DEFAULT_PORT", DefaultBRPPort)
	if err != nil {
		return nil, fmt.Errorf("invalid BRP_DEFAULT_PORT: %w", err)
	}

	tempDir := getEnvWithDefault("BRP_TEMP_DIR", os.TempDir())

	budget := DefaultSpilloverBudgetTokens
	if v := os.Getenv("BRP_SPILLOVER_BUDGET_TOKENS"); v != "" {
		parsed, err := parsePositiveInt(v)
		if err != nil {
			return nil, fmt.Errorf("invalid BRP_SPILLOVER_BUDGET_TOKENS: %w", err)
		}
		budget = parsed
	}

	cfg := &Config{
		Addr:         getEnvWithDefault("SERVER_ADDR", ":8090"),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,

		DefaultBRPPort: port,
		BRPHost:        getEnvWithDefault("BRP_HOST", DefaultBRPHost),
		JSONRPCPath:    getEnvWithDefault("BRP_JSONRPC_PATH", DefaultPath),
		BRPTimeout:     brpTimeout,

		DebugDefault: os.Getenv("BRP_DEBUG") == "1" || os.Getenv("BRP_DEBUG") == "true",

		TempDir:               filepath.Clean(tempDir),
		SpilloverBudgetTokens: budget,

		WorkspaceRoots: parseCommaSeparated("BRP_WORKSPACE_ROOTS"),
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnvWithDefault returns the environment variable value or the default if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseCommaSeparated parses a comma-separated environment variable into a string slice.
// Empty values are filtered out. Returns nil if the environment variable is not set.
func parseCommaSeparated(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	var result []string
	start := 0
	for i := 0; i <= len(value); i++ {
		if i == len(value) || value[i] == ',' {
			part := trimSpace(value[start:i])
			if part != "" {
				result = append(result, part)
			}
			start = i + 1
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	return s[start:end]
}

// parseDurationWithDefault parses a duration from an environment variable.
// If the variable is not set, it uses the default value.
// Returns an error if the value is set but cannot be parsed.
func parseDurationWithDefault(key, defaultValue string) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		duration, err := time.ParseDuration(defaultValue)
		if err != nil {
			return 0, fmt.Errorf("invalid default duration %q: %w", defaultValue, err)
		}
		return duration, nil
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("cannot parse duration %q: %w", value, err)
	}

	return duration, nil
}

// parsePortWithDefault parses a uint16 port from an environment variable.
func parsePortWithDefault(key string, defaultValue uint16) (uint16, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	n, err := parsePositiveInt(value)
	if err != nil {
		return 0, err
	}
	if n > 65535 {
		return 0, fmt.Errorf("port %d out of range", n)
	}
	return uint16(n), nil
}

func parsePositiveInt(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty integer")
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("invalid integer %q", s)
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}

// String returns a string representation of the configuration (for debugging).
func (c *Config) String() string {
	return fmt.Sprintf("Config{Addr: %s, BRPHost: %s, DefaultBRPPort: %d, JSONRPCPath: %s, BRPTimeout: %v, TempDir: %s, SpilloverBudgetTokens: %d, WorkspaceRoots: %v}",
		c.Addr, c.BRPHost, c.DefaultBRPPort, c.JSONRPCPath, c.BRPTimeout,
		c.TempDir, c.SpilloverBudgetTokens, c.WorkspaceRoots)
}
