// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	raw := `
inverter:
  endpoint: "192.168.1.10:502"
  unit_id: 1
  timeout_ms: 3000
  limits:
    max_registers_per_request: 64
    coalesce_gap: 4
  retry:
    attempts: 5
    base_delay_ms: 250
    max_delay_ms: 2000
`
	path := filepath.Join(t.TempDir(), "solarlink.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load err=%v", err)
	}

	inv := cfg.Inverter
	if inv.Endpoint != "192.168.1.10:502" || inv.UnitID != 1 || inv.TimeoutMs != 3000 {
		t.Fatalf("unexpected inverter config: %+v", inv)
	}
	if inv.Limits.MaxRegistersPerRequest != 64 || inv.Limits.CoalesceGap != 4 {
		t.Fatalf("unexpected limits: %+v", inv.Limits)
	}
	if inv.Retry.Attempts != 5 || inv.Retry.BaseDelayMs != 250 || inv.Retry.MaxDelayMs != 2000 {
		t.Fatalf("unexpected retry: %+v", inv.Retry)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("inverter: [broken"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error, got nil")
	}
}
