// internal/config/validate.go
package config

import "fmt"

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	inv := cfg.Inverter

	if inv.Endpoint == "" {
		return fmt.Errorf("config: inverter endpoint required")
	}

	if inv.TimeoutMs < 0 {
		return fmt.Errorf("config: timeout_ms must be >= 0, got %d", inv.TimeoutMs)
	}

	// Modbus bounds a single read at 125 registers; the engine never
	// issues more than the configured ceiling.
	if inv.Limits.MaxRegistersPerRequest > 125 {
		return fmt.Errorf(
			"config: max_registers_per_request must be <= 125, got %d",
			inv.Limits.MaxRegistersPerRequest,
		)
	}

	if inv.Retry.Attempts < 0 {
		return fmt.Errorf("config: retry attempts must be >= 0, got %d", inv.Retry.Attempts)
	}
	if inv.Retry.BaseDelayMs < 0 || inv.Retry.MaxDelayMs < 0 {
		return fmt.Errorf("config: retry delays must be >= 0")
	}
	if inv.Retry.MaxDelayMs > 0 && inv.Retry.BaseDelayMs > inv.Retry.MaxDelayMs {
		return fmt.Errorf(
			"config: retry base_delay_ms %d exceeds max_delay_ms %d",
			inv.Retry.BaseDelayMs, inv.Retry.MaxDelayMs,
		)
	}

	return nil
}
