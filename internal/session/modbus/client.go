// internal/session/modbus/client.go

// Package modbus adapts goburrow/modbus to the session.Transport
// contract. PDU framing, checksums and transaction ids stay inside the
// library; this adapter only moves registers.
package modbus

import (
	"errors"
	"fmt"
	"io"
	"time"

	gomodbus "github.com/goburrow/modbus"
)

// Config is the minimal transport config.
type Config struct {
	// Endpoint is host:port for TCP, or a device path for RTU.
	Endpoint string
	Serial   bool
	BaudRate int // RTU only, default 9600
	UnitID   uint8
	Timeout  time.Duration
}

// Client implements session.Transport (and its MultiWriter capability)
// over Modbus TCP or RTU.
type Client struct {
	mb      gomodbus.Client
	setUnit func(uint8)
	closer  io.Closer
}

// New opens a connected client.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("modbus client: endpoint required")
	}
	if cfg.Serial {
		return newRTU(cfg)
	}
	return newTCP(cfg)
}

func newTCP(cfg Config) (*Client, error) {
	handler := gomodbus.NewTCPClientHandler(cfg.Endpoint)
	handler.Timeout = cfg.Timeout
	handler.SlaveId = cfg.UnitID

	if err := handler.Connect(); err != nil {
		return nil, err
	}

	return &Client{
		mb:      gomodbus.NewClient(handler),
		setUnit: func(u uint8) { handler.SlaveId = u },
		closer:  handler,
	}, nil
}

func newRTU(cfg Config) (*Client, error) {
	handler := gomodbus.NewRTUClientHandler(cfg.Endpoint)
	handler.Timeout = cfg.Timeout
	handler.SlaveId = cfg.UnitID
	handler.BaudRate = cfg.BaudRate
	if handler.BaudRate == 0 {
		handler.BaudRate = 9600
	}
	handler.DataBits = 8
	handler.Parity = "N"
	handler.StopBits = 1

	if err := handler.Connect(); err != nil {
		return nil, err
	}

	return &Client{
		mb:      gomodbus.NewClient(handler),
		setUnit: func(u uint8) { handler.SlaveId = u },
		closer:  handler,
	}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c == nil || c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// ---- session.Transport ----

func (c *Client) ReadRegisters(unit uint8, addr, qty uint16) ([]uint16, error) {
	c.setUnit(unit)
	data, err := c.mb.ReadHoldingRegisters(addr, qty)
	if err != nil {
		return nil, err
	}
	if len(data) != int(qty)*2 {
		return nil, fmt.Errorf("modbus: %d response bytes for %d registers", len(data), qty)
	}
	return unpackRegisters(data), nil
}

func (c *Client) WriteRegister(unit uint8, addr, value uint16) error {
	c.setUnit(unit)
	_, err := c.mb.WriteSingleRegister(addr, value)
	return err
}

// WriteRegisters is the atomic multi-register write (FC16).
func (c *Client) WriteRegisters(unit uint8, addr uint16, values []uint16) error {
	c.setUnit(unit)
	_, err := c.mb.WriteMultipleRegisters(addr, uint16(len(values)), packRegisters(values))
	return err
}

// ---- helpers (pure geometry) ----

func unpackRegisters(data []byte) []uint16 {
	n := len(data) / 2
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out
}

func packRegisters(values []uint16) []byte {
	out := make([]byte, 2*len(values))
	for i, v := range values {
		out[2*i] = byte(v >> 8)
		out[2*i+1] = byte(v)
	}
	return out
}
