package fastid

import (
	"encoding/base64"
	"encoding/binary"
	"math"
)

// base62Alphabet orders digits, lowercase, then uppercase.
const base62Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// base62Len is the fixed width of a base62-encoded ID: 62^11 exceeds the
// maximum unsigned 64-bit value, 62^10 does not.
const base62Len = 11

// base64Len is the fixed width of a base64-encoded ID: 8 bytes encode to
// exactly 12 characters with the standard padded alphabet.
const base64Len = 12

var base62Index [256]int8

func init() {
	for i := range base62Index {
		base62Index[i] = -1
	}
	for i := 0; i < len(base62Alphabet); i++ {
		base62Index[base62Alphabet[i]] = int8(i)
	}
}

// Base62 encodes the unsigned value of the ID in base 62, left-padded
// with '0' to a fixed width of 11 characters.
func (id ID) Base62() string {
	var buf [base62Len]byte
	v := uint64(id)
	for i := base62Len - 1; i >= 0; i-- {
		buf[i] = base62Alphabet[v%62]
		v /= 62
	}
	return string(buf[:])
}

// ParseBase62 decodes a fixed-width base62 string produced by Base62.
func ParseBase62(s string) (ID, error) {
	if len(s) != base62Len {
		return 0, ErrInvalidLength
	}
	var v uint64
	for i := 0; i < len(s); i++ {
		d := base62Index[s[i]]
		if d < 0 {
			return 0, ErrInvalidFormat
		}
		if v > math.MaxUint64/62 {
			return 0, ErrInvalidFormat // exceeds 64 bits
		}
		v *= 62
		if v > math.MaxUint64-uint64(d) {
			return 0, ErrInvalidFormat
		}
		v += uint64(d)
	}
	return ID(v), nil
}

// Base64 encodes the little-endian 8-byte representation of the ID with
// the standard padded base64 alphabet, yielding a fixed 12 characters.
func (id ID) Base64() string {
	var raw [8]byte
	binary.LittleEndian.PutUint64(raw[:], uint64(id))
	return base64.StdEncoding.EncodeToString(raw[:])
}

// ParseBase64 decodes a string produced by Base64.
func ParseBase64(s string) (ID, error) {
	if len(s) != base64Len {
		return 0, ErrInvalidLength
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return 0, ErrInvalidFormat
	}
	if len(raw) != 8 {
		return 0, ErrInvalidLength
	}
	return ID(binary.LittleEndian.Uint64(raw)), nil
}
