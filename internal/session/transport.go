// internal/session/transport.go
package session

// Transport is the exact wire contract the session uses. PDU framing,
// checksums and transaction ids live behind this boundary.
type Transport interface {
	// ReadRegisters reads qty holding registers starting at addr.
	ReadRegisters(unit uint8, addr, qty uint16) ([]uint16, error)

	// WriteRegister writes a single register (the narrowest wire
	// primitive).
	WriteRegister(unit uint8, addr, value uint16) error

	Close() error
}

// MultiWriter is an optional transport capability: an atomic
// multi-register write. Transports without it fall back to sequential
// single-register writes, which are not atomic.
type MultiWriter interface {
	WriteRegisters(unit uint8, addr uint16, values []uint16) error
}

// Dialer opens a fresh transport connection. The session calls it once
// at connect time and once per reconnect attempt.
type Dialer func() (Transport, error)
