// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Inverter InverterConfig `yaml:"inverter"`
}

// ---- INVERTER ----

type InverterConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Serial    bool   `yaml:"serial"`
	BaudRate  int    `yaml:"baud_rate"`
	UnitID    uint8  `yaml:"unit_id"`
	TimeoutMs int    `yaml:"timeout_ms"`

	Limits LimitsConfig `yaml:"limits"`
	Retry  RetryConfig  `yaml:"retry"`
}

// ---- REQUEST GEOMETRY ----

type LimitsConfig struct {
	MaxRegistersPerRequest uint16 `yaml:"max_registers_per_request"`
	CoalesceGap            uint16 `yaml:"coalesce_gap"`
}

// ---- RETRY ----

type RetryConfig struct {
	Attempts    int `yaml:"attempts"`
	BaseDelayMs int `yaml:"base_delay_ms"`
	MaxDelayMs  int `yaml:"max_delay_ms"`
}

// Load reads and parses a YAML config file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}
