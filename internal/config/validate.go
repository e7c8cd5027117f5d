package config

import (
	"fmt"
)

// Validate checks that the configuration is valid and complete.
// It returns an error if required fields are missing or values are invalid.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := validateServer(cfg); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}

	if err := validateBRP(cfg); err != nil {
		return fmt.Errorf("invalid brp config: %w", err)
	}

	return nil
}

// validateServer validates the HTTP transport fields.
func validateServer(cfg *Config) error {
	if cfg.Addr == "" {
		return fmt.Errorf("SERVER_ADDR is required")
	}

	if cfg.ReadTimeout <= 0 {
		return fmt.Errorf("SERVER_READ_TIMEOUT must be positive")
	}

	if cfg.WriteTimeout <= 0 {
		return fmt.Errorf("SERVER_WRITE_TIMEOUT must be positive")
	}

	if cfg.IdleTimeout < 0 {
		return fmt.Errorf("SERVER_IDLE_TIMEOUT must be non-negative")
	}

	return nil
}

// validateBRP validates the BRP wire-protocol fields.
func validateBRP(cfg *Config) error {
	if cfg.BRPHost == "" {
		return fmt.Errorf("BRP_HOST is required")
	}

	if cfg.JSONRPCPath == "" {
		return fmt.Errorf("BRP_JSONRPC_PATH is required")
	}

	if cfg.BRPTimeout <= 0 {
		return fmt.Errorf("BRP_TIMEOUT must be positive")
	}

	if cfg.SpilloverBudgetTokens <= 0 {
		return fmt.Errorf("BRP_SPILLOVER_BUDGET_TOKENS must be positive")
	}

	return nil
}
