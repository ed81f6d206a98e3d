package simtime

import (
	"bytes"
	"fmt"
	"math/big"
	"strings"
)

// Nanosecond counts travel as decimal strings: JSON numbers cannot carry
// 128-bit integers without loss.

// String returns the decimal nanosecond count.
func (t SimTime) String() string { return t.v.big().String() }

// String returns the decimal nanosecond count.
func (d SimDuration) String() string { return d.v.big().String() }

// Parse parses a decimal nanosecond count.
func Parse(s string) (SimTime, error) {
	v, err := parseDecimal(s)
	if err != nil {
		return SimTime{}, err
	}
	return SimTime{v: v}, nil
}

// ParseDuration parses a decimal nanosecond count.
func ParseDuration(s string) (SimDuration, error) {
	v, err := parseDecimal(s)
	if err != nil {
		return SimDuration{}, err
	}
	return SimDuration{v: v}, nil
}

func parseDecimal(s string) (int128, error) {
	b, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return int128{}, fmt.Errorf("simtime: invalid nanosecond count %q", s)
	}
	v, ok := fromBig(b)
	if !ok {
		return int128{}, fmt.Errorf("%w: %q", ErrOutOfRange, s)
	}
	return v, nil
}

// MarshalText implements encoding.TextMarshaler.
func (t SimTime) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *SimTime) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// UnmarshalJSON accepts the quoted decimal form and, for convenience, bare
// JSON integers.
func (t *SimTime) UnmarshalJSON(b []byte) error {
	if isNull(b) {
		return nil
	}
	return t.UnmarshalText(unquote(b))
}

// MarshalText implements encoding.TextMarshaler.
func (d SimDuration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *SimDuration) UnmarshalText(b []byte) error {
	v, err := ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// UnmarshalJSON accepts quoted or bare decimal integers.
func (d *SimDuration) UnmarshalJSON(b []byte) error {
	if isNull(b) {
		return nil
	}
	return d.UnmarshalText(unquote(b))
}

// isNull reports a JSON null, which leaves the value untouched.
func isNull(b []byte) bool { return string(bytes.TrimSpace(b)) == "null" }

func unquote(b []byte) []byte {
	b = bytes.TrimSpace(b)
	if len(b) >= 2 && b[0] == '"' && b[len(b)-1] == '"' {
		return b[1 : len(b)-1]
	}
	return b
}
