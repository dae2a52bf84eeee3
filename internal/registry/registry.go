// internal/registry/registry.go
package registry

import (
	"fmt"
	"sort"
)

// Kind selects the wire representation of a descriptor.
type Kind uint8

const (
	Unsigned Kind = iota // 1..4 registers, big-register-first
	Signed               // two's complement, big-register-first
	Bitfield             // named flag bits, unknown bits preserved
	Enum                 // code -> label
	String               // ASCII, high byte first, NUL padded
	Timestamp            // u32 seconds since Unix epoch
)

func (k Kind) String() string {
	switch k {
	case Unsigned:
		return "unsigned"
	case Signed:
		return "signed"
	case Bitfield:
		return "bitfield"
	case Enum:
		return "enum"
	case String:
		return "string"
	case Timestamp:
		return "timestamp"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Scale is an exact rational multiplier applied to raw integers on decode.
// The zero value means 1/1 (no scaling).
type Scale struct {
	Num int64
	Den int64
}

// Gain builds the common 1/gain scale used by inverter register maps
// (a register holding decivolts has gain 10, i.e. scale 1/10).
func Gain(g int64) Scale { return Scale{Num: 1, Den: g} }

// IsUnit reports whether the scale is a no-op.
func (s Scale) IsUnit() bool {
	return (s.Num == 0 && s.Den == 0) || (s.Num == s.Den)
}

func (s Scale) normalized() (num, den int64) {
	if s.Num == 0 && s.Den == 0 {
		return 1, 1
	}
	return s.Num, s.Den
}

// Apply returns raw * Num/Den as a float64.
func (s Scale) Apply(raw int64) float64 {
	num, den := s.normalized()
	return float64(raw) * float64(num) / float64(den)
}

// Invert maps a scaled value back to its raw integer,
// rounding half away from zero.
func (s Scale) Invert(v float64) int64 {
	num, den := s.normalized()
	scaled := v * float64(den) / float64(num)
	if scaled >= 0 {
		return int64(scaled + 0.5)
	}
	return int64(scaled - 0.5)
}

// Descriptor is the static metadata for one logical register value.
// Descriptors are immutable after table construction.
type Descriptor struct {
	Name     string
	Address  uint16
	Length   uint16 // register count, 1 register = 16 bits
	Kind     Kind
	Scale    Scale
	Unit     string
	Writable bool

	// Enum holds the code->label mapping for Kind == Enum.
	Enum map[uint16]string

	// Flags holds the bitmask->label table for Kind == Bitfield.
	Flags map[uint64]string

	// Alias marks a descriptor that intentionally overlaps another
	// (a different view on the same physical registers).
	Alias bool
}

// End returns the first address past the descriptor.
func (d Descriptor) End() uint32 { return uint32(d.Address) + uint32(d.Length) }

// UnknownRegisterError reports a lookup of a name the table does not contain.
type UnknownRegisterError struct {
	Name string
}

func (e *UnknownRegisterError) Error() string {
	return fmt.Sprintf("registry: unknown register %q", e.Name)
}

// Table is a read-only descriptor catalog. It is safe for concurrent
// lookups without synchronization once built.
type Table struct {
	byName map[string]Descriptor
	names  []string
}

// NewTable validates descriptors and builds an immutable table.
// Validation rules:
//   - names are unique and non-empty
//   - length >= 1
//   - enum descriptors carry an Enum mapping, bitfields a Flags table
//   - timestamps are exactly 2 registers
//   - no two descriptors overlap addresses unless one is marked Alias
func NewTable(descs []Descriptor) (*Table, error) {
	byName := make(map[string]Descriptor, len(descs))
	names := make([]string, 0, len(descs))

	for _, d := range descs {
		if d.Name == "" {
			return nil, fmt.Errorf("registry: descriptor at address %d has no name", d.Address)
		}
		if _, dup := byName[d.Name]; dup {
			return nil, fmt.Errorf("registry: duplicate descriptor name %q", d.Name)
		}
		if d.Length == 0 {
			return nil, fmt.Errorf("registry: %q: length must be >= 1", d.Name)
		}
		if d.Kind == Enum && len(d.Enum) == 0 {
			return nil, fmt.Errorf("registry: %q: enum descriptor without mapping", d.Name)
		}
		if d.Kind == Bitfield && len(d.Flags) == 0 {
			return nil, fmt.Errorf("registry: %q: bitfield descriptor without flag table", d.Name)
		}
		if d.Kind == Timestamp && d.Length != 2 {
			return nil, fmt.Errorf("registry: %q: timestamp must span 2 registers, got %d", d.Name, d.Length)
		}
		if (d.Kind == Unsigned || d.Kind == Signed) && d.Length > 4 {
			return nil, fmt.Errorf("registry: %q: integer width %d exceeds 4 registers", d.Name, d.Length)
		}
		byName[d.Name] = d
		names = append(names, d.Name)
	}

	if err := checkOverlaps(descs); err != nil {
		return nil, err
	}

	sort.Strings(names)
	return &Table{byName: byName, names: names}, nil
}

// checkOverlaps rejects address overlap between two descriptors unless
// at least one of the pair is an alias.
func checkOverlaps(descs []Descriptor) error {
	sorted := make([]Descriptor, len(descs))
	copy(sorted, descs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Address != sorted[j].Address {
			return sorted[i].Address < sorted[j].Address
		}
		return sorted[i].Name < sorted[j].Name
	})

	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if uint32(cur.Address) < prev.End() {
			if prev.Alias || cur.Alias {
				continue
			}
			return fmt.Errorf(
				"registry: %q (%d+%d) overlaps %q (%d+%d)",
				prev.Name, prev.Address, prev.Length,
				cur.Name, cur.Address, cur.Length,
			)
		}
	}
	return nil
}

// Lookup resolves a logical name to its descriptor.
func (t *Table) Lookup(name string) (Descriptor, error) {
	d, ok := t.byName[name]
	if !ok {
		return Descriptor{}, &UnknownRegisterError{Name: name}
	}
	return d, nil
}

// Names returns all descriptor names in sorted order.
func (t *Table) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Len returns the number of descriptors in the table.
func (t *Table) Len() int { return len(t.byName) }
