// internal/session/retry_test.go
package session

import (
	"testing"
	"time"
)

func TestPolicyDefaults(t *testing.T) {
	p := Policy{}.withDefaults()
	if p.Attempts != DefaultAttempts || p.BaseDelay != DefaultBaseDelay || p.MaxDelay != DefaultMaxDelay {
		t.Fatalf("unexpected defaults: %+v", p)
	}

	p = Policy{Attempts: 7, BaseDelay: time.Second, MaxDelay: 10 * time.Second}.withDefaults()
	if p.Attempts != 7 || p.BaseDelay != time.Second || p.MaxDelay != 10*time.Second {
		t.Fatalf("explicit values overridden: %+v", p)
	}
}

func TestDelayDoublesAndCaps(t *testing.T) {
	p := Policy{Attempts: 10, BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second}

	want := []time.Duration{
		100 * time.Millisecond, // after attempt 1
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		time.Second, // capped
		time.Second,
	}
	for i, w := range want {
		if got := p.Delay(i + 1); got != w {
			t.Fatalf("Delay(%d) = %v, want %v", i+1, got, w)
		}
	}
}

func TestDelayBaseAboveMax(t *testing.T) {
	p := Policy{BaseDelay: 2 * time.Second, MaxDelay: time.Second}
	if got := p.Delay(1); got != time.Second {
		t.Fatalf("Delay(1) = %v", got)
	}
}
