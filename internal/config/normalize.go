// internal/config/normalize.go
package config

// Defaults applied by Normalize.
const (
	DefaultTimeoutMs   = 5000
	DefaultAttempts    = 3
	DefaultBaseDelayMs = 500
	DefaultMaxDelayMs  = 5000
)

// Normalize applies post-validation defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	inv := &cfg.Inverter

	if inv.TimeoutMs == 0 {
		inv.TimeoutMs = DefaultTimeoutMs
	}
	if inv.Retry.Attempts == 0 {
		inv.Retry.Attempts = DefaultAttempts
	}
	if inv.Retry.BaseDelayMs == 0 {
		inv.Retry.BaseDelayMs = DefaultBaseDelayMs
	}
	if inv.Retry.MaxDelayMs == 0 {
		inv.Retry.MaxDelayMs = DefaultMaxDelayMs
	}

	// Request geometry defaults live in the planner; zero values mean
	// "use planner defaults" and are left untouched here.
}
