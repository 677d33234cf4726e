package fastid

import "errors"

var (
	// ErrInvalidFormat indicates that an encoded ID string is malformed
	ErrInvalidFormat = errors.New("fastid: invalid ID format")

	// ErrInvalidLength indicates that an encoded ID string has incorrect length
	ErrInvalidLength = errors.New("fastid: invalid encoded ID length")

	// ErrInvalidUUIDFormat indicates that a UUID string format is invalid
	ErrInvalidUUIDFormat = errors.New("fastid: invalid UUID format")

	// ErrInvalidUUIDLength indicates that a UUID byte slice has incorrect length
	ErrInvalidUUIDLength = errors.New("fastid: invalid UUID length (expected 16 bytes)")
)
