// internal/session/session.go

// Package session owns the single inverter connection and serializes
// all register transactions against it.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tamzrod/solarlink/internal/codec"
	"github.com/tamzrod/solarlink/internal/plan"
	"github.com/tamzrod/solarlink/internal/registry"
)

// Magic register written to keep a maintenance connection alive.
const heartbeatRegister = 49999

// Config assembles a session.
type Config struct {
	Table  *registry.Table // nil selects the built-in catalog
	Dial   Dialer
	Unit   uint8
	Limits plan.Limits
	Retry  Policy
}

// Session owns exactly one live transport connection. Callers may use
// it concurrently; a FIFO semaphore admits one transaction at a time,
// so no two requests are ever in flight on the wire.
type Session struct {
	table  *registry.Table
	dial   Dialer
	unit   uint8
	limits plan.Limits
	retry  Policy

	sem chan struct{}

	// Guarded by sem.
	tr      Transport
	healthy bool
	closed  bool

	// sleep is the backoff wait, replaceable in tests.
	sleep func(ctx context.Context, attempt int) error
}

// Connect dials the transport once and fails fast if it cannot.
func Connect(cfg Config) (*Session, error) {
	if cfg.Dial == nil {
		return nil, fmt.Errorf("session: dialer required")
	}

	table := cfg.Table
	if table == nil {
		table = registry.DefaultTable()
	}

	s := &Session{
		table:  table,
		dial:   cfg.Dial,
		unit:   cfg.Unit,
		limits: cfg.Limits,
		retry:  cfg.Retry.withDefaults(),
		sem:    make(chan struct{}, 1),
	}
	s.sleep = s.backoffWait

	tr, err := cfg.Dial()
	if err != nil {
		return nil, fmt.Errorf("session: connect: %w", err)
	}
	s.tr = tr
	s.healthy = true
	return s, nil
}

// Close releases the transport. Pending callers drain with ErrClosed.
func (s *Session) Close() error {
	s.sem <- struct{}{}
	defer func() { <-s.sem }()

	s.closed = true
	s.healthy = false
	if s.tr == nil {
		return nil
	}
	err := s.tr.Close()
	s.tr = nil
	return err
}

// Get reads one logical register.
func (s *Session) Get(ctx context.Context, name string) (codec.Value, error) {
	vals, err := s.GetMultipleUnit(ctx, s.unit, []string{name})
	if err != nil {
		return codec.Value{}, err
	}
	return vals[name], nil
}

// GetMultiple reads a set of logical registers in one consistent
// snapshot: the whole plan executes under one lock acquisition, and a
// failure in any range fails the call without partial results.
func (s *Session) GetMultiple(ctx context.Context, names []string) (map[string]codec.Value, error) {
	return s.GetMultipleUnit(ctx, s.unit, names)
}

// GetMultipleUnit is GetMultiple with a unit-id override.
func (s *Session) GetMultipleUnit(ctx context.Context, unit uint8, names []string) (map[string]codec.Value, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("session: at least one register name required")
	}

	descs := make([]registry.Descriptor, 0, len(names))
	for _, name := range names {
		d, err := s.table.Lookup(name)
		if err != nil {
			return nil, err
		}
		descs = append(descs, d)
	}

	p, err := plan.Build(descs, s.limits)
	if err != nil {
		return nil, err
	}

	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()

	tr, err := s.ensureTransport()
	if err != nil {
		return nil, err
	}

	words := make([][]uint16, 0, len(p.Ranges))
	for _, r := range p.Ranges {
		w, err := s.readRange(ctx, tr, unit, r, descs)
		if err != nil {
			return nil, err
		}
		words = append(words, w)
	}

	res, err := plan.NewResult(p, words)
	if err != nil {
		return nil, err
	}

	out := make(map[string]codec.Value, len(descs))
	for _, d := range descs {
		w, err := res.Extract(d)
		if err != nil {
			return nil, err
		}
		v, err := codec.Decode(d, w)
		if err != nil {
			return nil, err
		}
		out[d.Name] = v
	}
	return out, nil
}

// Set validates, encodes and writes one logical register.
func (s *Session) Set(ctx context.Context, name string, value any) error {
	return s.SetUnit(ctx, s.unit, name, value)
}

// SetUnit is Set with a unit-id override.
func (s *Session) SetUnit(ctx context.Context, unit uint8, name string, value any) error {
	d, err := s.table.Lookup(name)
	if err != nil {
		return err
	}
	words, err := codec.Encode(d, value)
	if err != nil {
		return err
	}

	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	tr, err := s.ensureTransport()
	if err != nil {
		return err
	}
	return s.writeWords(ctx, tr, unit, d, words)
}

// SetVerified writes the register, then reads it back and compares the
// raw words. The read-back uses the normal read path.
func (s *Session) SetVerified(ctx context.Context, name string, value any) error {
	d, err := s.table.Lookup(name)
	if err != nil {
		return err
	}
	words, err := codec.Encode(d, value)
	if err != nil {
		return err
	}

	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	tr, err := s.ensureTransport()
	if err != nil {
		return err
	}
	if err := s.writeWords(ctx, tr, s.unit, d, words); err != nil {
		return err
	}

	got, err := s.readRange(ctx, tr, s.unit, plan.Range{Start: d.Address, Count: d.Length}, []registry.Descriptor{d})
	if err != nil {
		return err
	}
	for i := range words {
		if got[i] != words[i] {
			return fmt.Errorf(
				"session: verify %q: register %d holds 0x%04x, wrote 0x%04x",
				name, d.Address+uint16(i), got[i], words[i],
			)
		}
	}
	return nil
}

// Heartbeat keeps a maintenance session alive on the device.
func (s *Session) Heartbeat(ctx context.Context) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	tr, err := s.ensureTransport()
	if err != nil {
		return err
	}
	_, err = s.attempt(ctx, heartbeatRegister, 1, "", func() ([]uint16, error) {
		return nil, tr.WriteRegister(s.unit, heartbeatRegister, 0x1)
	})
	return err
}

// Table exposes the session's descriptor catalog.
func (s *Session) Table() *registry.Table { return s.table }

// ---- lock ----

// acquire takes the transaction slot. Blocked callers are admitted in
// FIFO order; the caller's context bounds the wait.
func (s *Session) acquire(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
		if s.closed {
			<-s.sem
			return ErrClosed
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) release() { <-s.sem }

// ---- connection lifecycle ----

// ensureTransport redials once when the connection is unhealthy. A
// failed redial surfaces ErrConnectionUnavailable without touching the
// wire; the next caller-initiated operation tries again.
//
// The returned Transport is the caller's snapshot for the whole
// transaction: wire closures must use it instead of s.tr, which an
// abandoned in-flight call may nil out concurrently.
func (s *Session) ensureTransport() (Transport, error) {
	if s.healthy && s.tr != nil {
		return s.tr, nil
	}
	if s.tr != nil {
		s.tr.Close()
		s.tr = nil
	}
	tr, err := s.dial()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionUnavailable, err)
	}
	s.tr = tr
	s.healthy = true
	return tr, nil
}

// markUnhealthy tears the connection down. Must hold the lock.
func (s *Session) markUnhealthy() {
	s.healthy = false
	if s.tr != nil {
		s.tr.Close()
		s.tr = nil
	}
}

// ---- transaction execution ----

// readRange executes one wire read with retries.
func (s *Session) readRange(ctx context.Context, tr Transport, unit uint8, r plan.Range, descs []registry.Descriptor) ([]uint16, error) {
	name := ""
	for _, d := range descs {
		if uint32(d.Address) >= uint32(r.Start) && uint32(d.Address) < uint32(r.Start)+uint32(r.Count) {
			name = d.Name
			break
		}
	}
	return s.attempt(ctx, r.Start, r.Count, name, func() ([]uint16, error) {
		w, err := tr.ReadRegisters(unit, r.Start, r.Count)
		if err != nil {
			return nil, err
		}
		if len(w) != int(r.Count) {
			return nil, fmt.Errorf("transport returned %d words for %d requested", len(w), r.Count)
		}
		return w, nil
	})
}

// attempt re-issues the identical wire call per the retry policy. A
// context expiry abandons the in-flight call, tears the connection down
// and stops retrying; exhausted retries also mark the session
// unhealthy so later callers fail fast.
func (s *Session) attempt(ctx context.Context, addr, count uint16, name string, fn func() ([]uint16, error)) ([]uint16, error) {
	var last error
	for n := 1; n <= s.retry.Attempts; n++ {
		words, err := s.call(ctx, fn)
		if err == nil {
			return words, nil
		}
		if ctx.Err() != nil {
			// Connection already torn down by call(). An explicit caller
			// cancel is not a wire timeout; it passes through undecorated.
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil, err
			}
			return nil, &TransportError{
				Kind: KindTimeout, Register: name, Address: addr, Count: count,
				Attempts: n, Err: err,
			}
		}
		last = err
		if n < s.retry.Attempts {
			if serr := s.sleep(ctx, n); serr != nil {
				s.markUnhealthy()
				if errors.Is(serr, context.Canceled) {
					return nil, serr
				}
				return nil, &TransportError{
					Kind: KindTimeout, Register: name, Address: addr, Count: count,
					Attempts: n, Err: serr,
				}
			}
		}
	}

	s.markUnhealthy()
	return nil, &TransportError{
		Kind: classify(last), Register: name, Address: addr, Count: count,
		Attempts: s.retry.Attempts, Err: last,
	}
}

// call runs one wire operation, honoring the caller's context. An
// abandoned in-flight request leaves protocol state ambiguous, so a
// context expiry closes the connection rather than reusing it.
func (s *Session) call(ctx context.Context, fn func() ([]uint16, error)) ([]uint16, error) {
	type result struct {
		words []uint16
		err   error
	}
	done := make(chan result, 1)
	go func() {
		w, err := fn()
		done <- result{words: w, err: err}
	}()

	select {
	case res := <-done:
		return res.words, res.err
	case <-ctx.Done():
		s.markUnhealthy()
		return nil, ctx.Err()
	}
}

func (s *Session) backoffWait(ctx context.Context, attempt int) error {
	t := time.NewTimer(s.retry.Delay(attempt))
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ---- write path ----

// writeWords issues the narrowest safe wire primitive: FC6 for a single
// register, an atomic FC16 when the transport supports it, otherwise
// sequential single-register writes in ascending address order.
func (s *Session) writeWords(ctx context.Context, tr Transport, unit uint8, d registry.Descriptor, words []uint16) error {
	if len(words) == 1 {
		_, err := s.attempt(ctx, d.Address, 1, d.Name, func() ([]uint16, error) {
			return nil, tr.WriteRegister(unit, d.Address, words[0])
		})
		return err
	}

	if mw, ok := tr.(MultiWriter); ok {
		_, err := s.attempt(ctx, d.Address, uint16(len(words)), d.Name, func() ([]uint16, error) {
			return nil, mw.WriteRegisters(unit, d.Address, words)
		})
		return err
	}

	// Sequential fallback is not atomic and is never retried: a failure
	// partway leaves partial device state, and re-issuing could
	// double-apply side effects. The split is surfaced instead.
	for i := range words {
		addr := d.Address + uint16(i)
		_, err := s.call(ctx, func() ([]uint16, error) {
			return nil, tr.WriteRegister(unit, addr, words[i])
		})
		if err != nil {
			s.markUnhealthy()
			confirmed := make([]uint16, 0, i)
			unconfirmed := make([]uint16, 0, len(words)-i)
			for j := range words {
				a := d.Address + uint16(j)
				if j < i {
					confirmed = append(confirmed, a)
				} else {
					unconfirmed = append(unconfirmed, a)
				}
			}
			return &PartialWriteFailure{
				Register:    d.Name,
				Confirmed:   confirmed,
				Unconfirmed: unconfirmed,
				Err:         err,
			}
		}
	}
	return nil
}
