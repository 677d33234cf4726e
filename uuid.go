package fastid

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// UUID is a 128-bit (16 byte) value in the RFC 4122 layout. Workers emit
// UUID-shaped IDs through GenerateUUID; the type itself is a plain value
// with text and binary representations.
type UUID [16]byte

// Nil is the nil UUID (all zeros)
var Nil UUID

// Version returns the version nibble of the UUID. Values produced by
// GenerateUUID carry version 1.
func (u UUID) Version() byte {
	return u[6] >> 4
}

// IsRFC4122 reports whether the variant bits match the RFC 4122 pattern.
func (u UUID) IsRFC4122() bool {
	return u[8]&0xc0 == 0x80
}

// String returns the canonical string representation of the UUID
// in the format: xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx
func (u UUID) String() string {
	var buf [36]byte
	encodeHex(buf[:], u)
	return string(buf[:])
}

func encodeHex(dst []byte, u UUID) {
	hex.Encode(dst[0:8], u[0:4])
	dst[8] = '-'
	hex.Encode(dst[9:13], u[4:6])
	dst[13] = '-'
	hex.Encode(dst[14:18], u[6:8])
	dst[18] = '-'
	hex.Encode(dst[19:23], u[8:10])
	dst[23] = '-'
	hex.Encode(dst[24:36], u[10:16])
}

// ParseUUID parses a UUID from its canonical (hyphenated) or bare 32-hex
// string representation.
func ParseUUID(s string) (UUID, error) {
	var uuid UUID

	s = strings.TrimPrefix(s, "urn:uuid:")

	if len(s) == 36 {
		if s[8] != '-' || s[13] != '-' || s[18] != '-' || s[23] != '-' {
			return uuid, ErrInvalidUUIDFormat
		}
		s = s[0:8] + s[9:13] + s[14:18] + s[19:23] + s[24:36]
	}
	if len(s) != 32 {
		return uuid, ErrInvalidUUIDFormat
	}
	if _, err := hex.Decode(uuid[:], []byte(s)); err != nil {
		return uuid, ErrInvalidUUIDFormat
	}
	return uuid, nil
}

// MustParseUUID is like ParseUUID but panics if the string cannot be
// parsed. It simplifies safe initialization of global variables.
func MustParseUUID(s string) UUID {
	uuid, err := ParseUUID(s)
	if err != nil {
		panic(fmt.Sprintf("fastid: ParseUUID(%q): %v", s, err))
	}
	return uuid
}

// Bytes returns the UUID as a byte slice
func (u UUID) Bytes() []byte {
	return u[:]
}

// IsNil returns true if the UUID is the nil UUID (all zeros)
func (u UUID) IsNil() bool {
	return u == Nil
}

// MarshalText implements the encoding.TextMarshaler interface
func (u UUID) MarshalText() ([]byte, error) {
	var buf [36]byte
	encodeHex(buf[:], u)
	return buf[:], nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface
func (u *UUID) UnmarshalText(data []byte) error {
	parsed, err := ParseUUID(string(data))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// MarshalBinary implements the encoding.BinaryMarshaler interface
func (u UUID) MarshalBinary() ([]byte, error) {
	return u[:], nil
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface
func (u *UUID) UnmarshalBinary(data []byte) error {
	if len(data) != 16 {
		return ErrInvalidUUIDLength
	}
	copy(u[:], data)
	return nil
}
