package fastid

import (
	"database/sql/driver"
	"fmt"
	"strconv"
)

// ID is a generated 64-bit identifier. The canonical form is the signed
// value; Uint64 reinterprets the identical bit pattern. With the default
// layout the sign bit is never set, so both forms agree.
type ID int64

// Int64 returns the raw signed value.
func (id ID) Int64() int64 {
	return int64(id)
}

// Uint64 returns the same bits reinterpreted as unsigned.
func (id ID) Uint64() uint64 {
	return uint64(id)
}

// String returns the decimal representation of the raw value.
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Base2 returns the binary text representation of the raw value.
func (id ID) Base2() string {
	return strconv.FormatInt(int64(id), 2)
}

// ParseID parses the decimal representation produced by String.
func ParseID(s string) (ID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidFormat
	}
	return ID(n), nil
}

// MarshalText implements the encoding.TextMarshaler interface.
// IDs marshal as decimal strings, which also keeps them intact in JSON
// consumed by JavaScript (float64 cannot hold all 63-bit values).
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (id *ID) UnmarshalText(data []byte) error {
	parsed, err := ParseID(string(data))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Scan implements the sql.Scanner interface for database compatibility.
func (id *ID) Scan(src interface{}) error {
	switch src := src.(type) {
	case nil:
		return nil
	case int64:
		*id = ID(src)
		return nil
	case string:
		parsed, err := ParseID(src)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	case []byte:
		if len(src) == 0 {
			return nil
		}
		parsed, err := ParseID(string(src))
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	default:
		return fmt.Errorf("fastid: cannot scan type %T into ID", src)
	}
}

// Value implements the driver.Valuer interface for database compatibility.
func (id ID) Value() (driver.Value, error) {
	return int64(id), nil
}
