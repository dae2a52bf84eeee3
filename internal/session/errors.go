// internal/session/errors.go
package session

import (
	"errors"
	"fmt"
	"net"
	"syscall"
)

// ErrConnectionUnavailable is returned without touching the wire when the
// session is unhealthy and the single reconnect attempt failed.
var ErrConnectionUnavailable = errors.New("session: connection unavailable")

// ErrClosed is returned for operations on an explicitly closed session.
var ErrClosed = errors.New("session: closed")

// Kind classifies a transport failure.
type Kind uint8

const (
	KindTimeout Kind = iota
	KindRefused
	KindProtocol
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindRefused:
		return "refused"
	default:
		return "protocol"
	}
}

// TransportError is a wire failure that survived the retry policy.
// It carries enough context to log without re-deriving state.
type TransportError struct {
	Kind     Kind
	Register string // logical name, empty for raw operations
	Address  uint16
	Count    uint16
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	name := e.Register
	if name == "" {
		name = "-"
	}
	return fmt.Sprintf(
		"session: %s error at register %s (addr=%d count=%d) after %d attempt(s): %v",
		e.Kind, name, e.Address, e.Count, e.Attempts, e.Err,
	)
}

func (e *TransportError) Unwrap() error { return e.Err }

// PartialWriteFailure reports a sequential multi-register write that
// failed partway. It is never retried automatically: re-issuing could
// double-apply side effects on the device.
type PartialWriteFailure struct {
	Register    string
	Confirmed   []uint16 // addresses acknowledged before the failure
	Unconfirmed []uint16 // addresses not acknowledged
	Err         error
}

func (e *PartialWriteFailure) Error() string {
	return fmt.Sprintf(
		"session: partial write of %q: confirmed=%v unconfirmed=%v: %v",
		e.Register, e.Confirmed, e.Unconfirmed, e.Err,
	)
}

func (e *PartialWriteFailure) Unwrap() error { return e.Err }

// classify maps an arbitrary transport error onto the retry taxonomy.
// Anything that is not a timeout or a refused connection is treated as
// a protocol error (Modbus exception responses land here).
func classify(err error) Kind {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return KindTimeout
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return KindRefused
	}
	return KindProtocol
}
