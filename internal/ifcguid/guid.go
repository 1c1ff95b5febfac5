// Package ifcguid converts between 128-bit UUIDs and the 22 character
// base-64 form IFC uses for GlobalId attributes.
package ifcguid

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Len is the length of a compressed IFC GUID.
const Len = 22

// alphabet is the IFC base-64 digit table. It differs from RFC 4648: digits
// come first and the last two symbols are '_' and '$'.
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz_$"

var ErrInvalid = errors.New("ifcguid: invalid guid")

var digitValue [256]int8

func init() {
	for i := range digitValue {
		digitValue[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		digitValue[alphabet[i]] = int8(i)
	}
}

// New returns a fresh random IFC GUID.
func New() string {
	return FromUUID(uuid.New())
}

// FromUUID compresses u. The 16 bytes are split into one leading byte
// (2 digits) followed by five 24-bit groups (4 digits each).
func FromUUID(u uuid.UUID) string {
	var out [Len]byte
	put(out[0:2], uint32(u[0]))
	for g := 0; g < 5; g++ {
		b := 1 + g*3
		v := uint32(u[b])<<16 | uint32(u[b+1])<<8 | uint32(u[b+2])
		put(out[2+g*4:6+g*4], v)
	}
	return string(out[:])
}

// ToUUID expands a compressed GUID.
func ToUUID(s string) (uuid.UUID, error) {
	var u uuid.UUID
	if len(s) != Len {
		return u, fmt.Errorf("%w: length %d", ErrInvalid, len(s))
	}
	v, ok := take(s[0:2])
	if !ok || v > 0xFF {
		return u, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	u[0] = byte(v)
	for g := 0; g < 5; g++ {
		v, ok := take(s[2+g*4 : 6+g*4])
		if !ok {
			return u, fmt.Errorf("%w: %q", ErrInvalid, s)
		}
		b := 1 + g*3
		u[b] = byte(v >> 16)
		u[b+1] = byte(v >> 8)
		u[b+2] = byte(v)
	}
	return u, nil
}

// Valid reports whether s decodes to a UUID.
func Valid(s string) bool {
	_, err := ToUUID(s)
	return err == nil
}

// Prefix returns the leading 22 characters of name when every one of them
// is an IFC base-64 digit. Scene nodes built by older converters carry their
// product's GUID this way.
func Prefix(name string) (string, bool) {
	if len(name) < Len {
		return "", false
	}
	for i := 0; i < Len; i++ {
		if digitValue[name[i]] < 0 {
			return "", false
		}
	}
	return name[:Len], true
}

func put(dst []byte, v uint32) {
	for i := len(dst) - 1; i >= 0; i-- {
		dst[i] = alphabet[v%64]
		v /= 64
	}
}

func take(src string) (uint32, bool) {
	var v uint32
	for i := 0; i < len(src); i++ {
		d := digitValue[src[i]]
		if d < 0 {
			return 0, false
		}
		v = v*64 + uint32(d)
	}
	return v, true
}
