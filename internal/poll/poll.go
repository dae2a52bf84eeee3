// internal/poll/poll.go

// Package poll is a clock-driven snapshot reader over a fixed set of
// logical registers.
package poll

import (
	"context"
	"errors"
	"time"

	"github.com/tamzrod/solarlink/internal/codec"
)

// Reader abstracts the typed read path the poller needs.
type Reader interface {
	GetMultiple(ctx context.Context, names []string) (map[string]codec.Value, error)
}

// Config is the minimal runtime config the poller needs.
type Config struct {
	Names    []string
	Interval time.Duration
	Timeout  time.Duration // per-cycle bound, 0 means no bound
}

// Snapshot is one poll cycle: either a full consistent value set or an
// error, never a mix.
type Snapshot struct {
	At     time.Time
	Values map[string]codec.Value
	Err    error
}

// Poller reads the configured name set on a fixed interval.
type Poller struct {
	cfg    Config
	reader Reader
}

// New creates a poller with immutable config.
func New(cfg Config, reader Reader) (*Poller, error) {
	if len(cfg.Names) == 0 {
		return nil, errors.New("poll: at least one register name required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poll: interval must be > 0")
	}
	if reader == nil {
		return nil, errors.New("poll: reader required")
	}
	return &Poller{cfg: cfg, reader: reader}, nil
}

// PollOnce performs exactly one poll cycle.
// All-or-nothing: the whole name set reads in one snapshot or fails.
func (p *Poller) PollOnce(ctx context.Context) Snapshot {
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	snap := Snapshot{At: time.Now()}
	snap.Values, snap.Err = p.reader.GetMultiple(ctx, p.cfg.Names)
	return snap
}

// Run starts the ticker loop and emits snapshots on the provided
// channel. No overlap between cycles.
func (p *Poller) Run(ctx context.Context, out chan<- Snapshot) {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			select {
			case out <- p.PollOnce(ctx):
			case <-ctx.Done():
				return
			}
		}
	}
}
