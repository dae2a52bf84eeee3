// internal/codec/codec.go

// Package codec converts raw register words to and from typed values.
// Decoding is a pure function of a descriptor and its exact word slice;
// nothing here touches the wire.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/tamzrod/solarlink/internal/registry"
)

// ErrNotWritable rejects an encode against a read-only descriptor.
var ErrNotWritable = errors.New("codec: register is not writable")

// DecodeError reports raw words that violate the descriptor's domain.
type DecodeError struct {
	Name   string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("codec: decode %q: %s", e.Name, e.Reason)
}

// EncodeError reports a value that cannot be represented by the descriptor.
type EncodeError struct {
	Name   string
	Reason string
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("codec: encode %q: %s", e.Name, e.Reason)
}

// Bits is a decoded bitfield. Unknown set bits are kept in Residual so
// that encode(decode(w)) == w even when the flag table is incomplete.
type Bits struct {
	Flags    []string
	Residual uint64
}

func (b Bits) String() string {
	s := strings.Join(b.Flags, ",")
	if b.Residual != 0 {
		if s != "" {
			s += ","
		}
		s += fmt.Sprintf("unrecognized(0x%x)", b.Residual)
	}
	return s
}

// Value is a decoded register value together with its display unit.
type Value struct {
	Any  any
	Unit string
}

func (v Value) String() string {
	if v.Unit == "" {
		return fmt.Sprint(v.Any)
	}
	return fmt.Sprintf("%v %s", v.Any, v.Unit)
}

// Decode converts raw words into the descriptor's typed value.
//
// The concrete type of Value.Any per kind:
//
//	Unsigned/Signed, unit scale   -> uint64 / int64
//	Unsigned/Signed, scaled       -> float64
//	Bitfield                      -> Bits
//	Enum                          -> string (label)
//	String                        -> string
//	Timestamp                     -> time.Time (UTC)
func Decode(d registry.Descriptor, words []uint16) (Value, error) {
	if len(words) != int(d.Length) {
		return Value{}, &DecodeError{
			Name:   d.Name,
			Reason: fmt.Sprintf("expected %d words, got %d", d.Length, len(words)),
		}
	}

	out := Value{Unit: d.Unit}

	switch d.Kind {
	case registry.Unsigned:
		raw := joinWords(words)
		if d.Scale.IsUnit() {
			out.Any = raw
		} else {
			out.Any = d.Scale.Apply(int64(raw))
		}

	case registry.Signed:
		raw := signExtend(joinWords(words), d.Length)
		if d.Scale.IsUnit() {
			out.Any = raw
		} else {
			out.Any = d.Scale.Apply(raw)
		}

	case registry.Bitfield:
		out.Any = decodeBits(d, joinWords(words))

	case registry.Enum:
		code := words[0]
		label, ok := d.Enum[code]
		if !ok {
			return Value{}, &DecodeError{
				Name:   d.Name,
				Reason: fmt.Sprintf("enum code 0x%x not in mapping", code),
			}
		}
		out.Any = label

	case registry.String:
		out.Any = decodeString(words)

	case registry.Timestamp:
		raw := joinWords(words)
		if raw == 0 {
			out.Any = time.Time{}
		} else {
			out.Any = time.Unix(int64(raw), 0).UTC()
		}

	default:
		return Value{}, &DecodeError{
			Name:   d.Name,
			Reason: fmt.Sprintf("unsupported kind %s", d.Kind),
		}
	}

	return out, nil
}

// Encode converts a typed value into raw words for the descriptor.
// It is the inverse of Decode for every value in the type's domain.
func Encode(d registry.Descriptor, v any) ([]uint16, error) {
	if !d.Writable {
		return nil, fmt.Errorf("%w: %q", ErrNotWritable, d.Name)
	}

	switch d.Kind {
	case registry.Unsigned, registry.Signed:
		pattern, err := rawInteger(d, v)
		if err != nil {
			return nil, err
		}
		return splitRaw(d, pattern), nil

	case registry.Bitfield:
		b, ok := v.(Bits)
		if !ok {
			return nil, &EncodeError{Name: d.Name, Reason: fmt.Sprintf("expected codec.Bits, got %T", v)}
		}
		raw, err := encodeBits(d, b)
		if err != nil {
			return nil, err
		}
		return splitRaw(d, raw), nil

	case registry.Enum:
		code, err := enumCode(d, v)
		if err != nil {
			return nil, err
		}
		return []uint16{code}, nil

	case registry.String:
		s, ok := v.(string)
		if !ok {
			return nil, &EncodeError{Name: d.Name, Reason: fmt.Sprintf("expected string, got %T", v)}
		}
		return encodeString(d, s)

	case registry.Timestamp:
		t, ok := v.(time.Time)
		if !ok {
			return nil, &EncodeError{Name: d.Name, Reason: fmt.Sprintf("expected time.Time, got %T", v)}
		}
		var raw int64
		if !t.IsZero() {
			raw = t.Unix()
		}
		if raw < 0 || raw > math.MaxUint32 {
			return nil, &EncodeError{Name: d.Name, Reason: "timestamp outside u32 range"}
		}
		return splitRaw(d, uint64(raw)), nil
	}

	return nil, &EncodeError{Name: d.Name, Reason: fmt.Sprintf("unsupported kind %s", d.Kind)}
}

// ---- integers ----

// joinWords assembles up to 4 registers most-significant first.
func joinWords(words []uint16) uint64 {
	var raw uint64
	for _, w := range words {
		raw = raw<<16 | uint64(w)
	}
	return raw
}

func signExtend(raw uint64, length uint16) int64 {
	bits := uint(length) * 16
	if bits >= 64 {
		return int64(raw)
	}
	shift := 64 - bits
	return int64(raw<<shift) >> shift
}

// rawInteger produces the descriptor-width two's-complement bit
// pattern for a numeric value.
func rawInteger(d registry.Descriptor, v any) (uint64, error) {
	bits := uint(d.Length) * 16

	if d.Kind == registry.Unsigned {
		// Full-width unsigned passes through without an int64 detour so
		// u64 values above MaxInt64 stay exact.
		if u, ok := v.(uint64); ok && d.Scale.IsUnit() {
			if bits < 64 && u > (uint64(1)<<bits)-1 {
				return 0, &EncodeError{Name: d.Name, Reason: fmt.Sprintf("raw value %d outside u%d range", u, bits)}
			}
			return u, nil
		}
		raw, err := signedRaw(d, v)
		if err != nil {
			return 0, err
		}
		if raw < 0 {
			return 0, &EncodeError{Name: d.Name, Reason: fmt.Sprintf("raw value %d negative for unsigned register", raw)}
		}
		if bits < 64 && uint64(raw) > (uint64(1)<<bits)-1 {
			return 0, &EncodeError{Name: d.Name, Reason: fmt.Sprintf("raw value %d outside u%d range", raw, bits)}
		}
		return uint64(raw), nil
	}

	raw, err := signedRaw(d, v)
	if err != nil {
		return 0, err
	}
	lo, hi := int64(-1)<<(bits-1), int64(1)<<(bits-1)-1
	if bits == 64 {
		lo, hi = math.MinInt64, math.MaxInt64
	}
	if raw < lo || raw > hi {
		return 0, &EncodeError{Name: d.Name, Reason: fmt.Sprintf("raw value %d outside i%d range", raw, bits)}
	}
	return uint64(raw), nil
}

func signedRaw(d registry.Descriptor, v any) (int64, error) {
	switch n := v.(type) {
	case float64:
		return d.Scale.Invert(n), nil
	case float32:
		return d.Scale.Invert(float64(n)), nil
	case int:
		return scaleInt(d, int64(n)), nil
	case int64:
		return scaleInt(d, n), nil
	case uint16:
		return scaleInt(d, int64(n)), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, &EncodeError{Name: d.Name, Reason: "value out of range"}
		}
		return scaleInt(d, int64(n)), nil
	}
	return 0, &EncodeError{Name: d.Name, Reason: fmt.Sprintf("expected numeric value, got %T", v)}
}

func scaleInt(d registry.Descriptor, n int64) int64 {
	if d.Scale.IsUnit() {
		return n
	}
	return d.Scale.Invert(float64(n))
}

func splitRaw(d registry.Descriptor, pattern uint64) []uint16 {
	words := make([]uint16, d.Length)
	for i := int(d.Length) - 1; i >= 0; i-- {
		words[i] = uint16(pattern & 0xFFFF)
		pattern >>= 16
	}
	return words
}

// ---- bitfields ----

func decodeBits(d registry.Descriptor, raw uint64) Bits {
	masks := make([]uint64, 0, len(d.Flags))
	for m := range d.Flags {
		masks = append(masks, m)
	}
	sort.Slice(masks, func(i, j int) bool { return masks[i] < masks[j] })

	b := Bits{Residual: raw}
	for _, m := range masks {
		if raw&m == m {
			b.Flags = append(b.Flags, d.Flags[m])
			b.Residual &^= m
		}
	}
	return b
}

func encodeBits(d registry.Descriptor, b Bits) (uint64, error) {
	byLabel := make(map[string]uint64, len(d.Flags))
	for m, label := range d.Flags {
		byLabel[label] = m
	}

	raw := b.Residual
	for _, label := range b.Flags {
		m, ok := byLabel[label]
		if !ok {
			return 0, &EncodeError{Name: d.Name, Reason: fmt.Sprintf("unknown flag %q", label)}
		}
		raw |= m
	}

	if bits := uint(d.Length) * 16; bits < 64 && raw > (uint64(1)<<bits)-1 {
		return 0, &EncodeError{Name: d.Name, Reason: "flags exceed register width"}
	}
	return raw, nil
}

// ---- enums ----

func enumCode(d registry.Descriptor, v any) (uint16, error) {
	switch e := v.(type) {
	case string:
		for code, label := range d.Enum {
			if label == e {
				return code, nil
			}
		}
		return 0, &EncodeError{Name: d.Name, Reason: fmt.Sprintf("label %q not in mapping", e)}
	case uint16:
		if _, ok := d.Enum[e]; !ok {
			return 0, &EncodeError{Name: d.Name, Reason: fmt.Sprintf("code 0x%x not in mapping", e)}
		}
		return e, nil
	case int:
		if e < 0 || e > math.MaxUint16 {
			return 0, &EncodeError{Name: d.Name, Reason: "code out of range"}
		}
		return enumCode(d, uint16(e))
	}
	return 0, &EncodeError{Name: d.Name, Reason: fmt.Sprintf("expected label or code, got %T", v)}
}

// ---- strings ----

func decodeString(words []uint16) string {
	buf := make([]byte, 0, len(words)*2)
	for _, w := range words {
		buf = append(buf, byte(w>>8), byte(w))
	}
	return string(bytes.TrimRight(buf, "\x00"))
}

func encodeString(d registry.Descriptor, s string) ([]uint16, error) {
	max := int(d.Length) * 2
	if len(s) > max {
		return nil, &EncodeError{
			Name:   d.Name,
			Reason: fmt.Sprintf("string of %d bytes exceeds %d register bytes", len(s), max),
		}
	}

	buf := make([]byte, max)
	copy(buf, s)

	words := make([]uint16, d.Length)
	for i := range words {
		words[i] = uint16(buf[2*i])<<8 | uint16(buf[2*i+1])
	}
	return words, nil
}
