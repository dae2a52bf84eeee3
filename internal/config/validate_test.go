// internal/config/validate_test.go
package config

import "testing"

// helper to build a minimal valid config quickly
func inverter(endpoint string) *Config {
	return &Config{
		Inverter: InverterConfig{
			Endpoint: endpoint,
		},
	}
}

// ---- tests ----

func TestValidate_MinimalTCP(t *testing.T) {
	if err := Validate(inverter("192.168.1.10:502")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_EndpointRequired(t *testing.T) {
	if err := Validate(inverter("")); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestValidate_NegativeTimeout(t *testing.T) {
	cfg := inverter("192.168.1.10:502")
	cfg.Inverter.TimeoutMs = -1

	if err := Validate(cfg); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestValidate_RequestLimitCeiling(t *testing.T) {
	cfg := inverter("192.168.1.10:502")
	cfg.Inverter.Limits.MaxRegistersPerRequest = 125

	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.Inverter.Limits.MaxRegistersPerRequest = 126
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestValidate_RetryBounds(t *testing.T) {
	cfg := inverter("192.168.1.10:502")
	cfg.Inverter.Retry.Attempts = -1
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error, got nil")
	}

	cfg = inverter("192.168.1.10:502")
	cfg.Inverter.Retry.BaseDelayMs = 2000
	cfg.Inverter.Retry.MaxDelayMs = 1000
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestNormalize_Defaults(t *testing.T) {
	cfg := inverter("192.168.1.10:502")
	Normalize(cfg)

	inv := cfg.Inverter
	if inv.TimeoutMs != DefaultTimeoutMs {
		t.Fatalf("timeout_ms = %d", inv.TimeoutMs)
	}
	if inv.Retry.Attempts != DefaultAttempts {
		t.Fatalf("attempts = %d", inv.Retry.Attempts)
	}
	if inv.Retry.BaseDelayMs != DefaultBaseDelayMs || inv.Retry.MaxDelayMs != DefaultMaxDelayMs {
		t.Fatalf("retry delays = %+v", inv.Retry)
	}

	// Planner geometry stays zero: the planner owns those defaults.
	if inv.Limits.MaxRegistersPerRequest != 0 || inv.Limits.CoalesceGap != 0 {
		t.Fatalf("limits mutated: %+v", inv.Limits)
	}
}

func TestNormalize_KeepsExplicitValues(t *testing.T) {
	cfg := inverter("192.168.1.10:502")
	cfg.Inverter.TimeoutMs = 250
	cfg.Inverter.Retry.Attempts = 5
	Normalize(cfg)

	if cfg.Inverter.TimeoutMs != 250 {
		t.Fatalf("timeout_ms = %d", cfg.Inverter.TimeoutMs)
	}
	if cfg.Inverter.Retry.Attempts != 5 {
		t.Fatalf("attempts = %d", cfg.Inverter.Retry.Attempts)
	}
}
