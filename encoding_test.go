package fastid

import (
	"math"
	"testing"
)

func TestID_Base62RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		id   ID
	}{
		{name: "zero", id: 0},
		{name: "one", id: 1},
		{name: "base boundary", id: 62},
		{name: "typical id", id: 6917529027641081856},
		{name: "max signed", id: math.MaxInt64},
		{name: "max unsigned bits", id: ID(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.id.Base62()
			if len(s) != base62Len {
				t.Fatalf("Base62() length = %d, want %d", len(s), base62Len)
			}
			got, err := ParseBase62(s)
			if err != nil {
				t.Fatalf("ParseBase62(%q) error = %v", s, err)
			}
			if got != tt.id {
				t.Errorf("round trip = %d, want %d", got, tt.id)
			}
		})
	}
}

func TestID_Base62Encoding(t *testing.T) {
	if got := ID(0).Base62(); got != "00000000000" {
		t.Errorf("Base62(0) = %q, want %q", got, "00000000000")
	}
	if got := ID(61).Base62(); got != "0000000000Z" {
		t.Errorf("Base62(61) = %q, want %q", got, "0000000000Z")
	}
	if got := ID(62).Base62(); got != "00000000010" {
		t.Errorf("Base62(62) = %q, want %q", got, "00000000010")
	}
}

func TestParseBase62_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "too short", input: "0000000001"},
		{name: "too long", input: "000000000010"},
		{name: "invalid character", input: "0000000_000"},
		{name: "exceeds 64 bits", input: "ZZZZZZZZZZZ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseBase62(tt.input); err == nil {
				t.Errorf("ParseBase62(%q) succeeded, want error", tt.input)
			}
		})
	}
}

func TestID_Base64RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		id   ID
	}{
		{name: "zero", id: 0},
		{name: "one", id: 1},
		{name: "typical id", id: 6917529027641081856},
		{name: "max signed", id: math.MaxInt64},
		{name: "max unsigned bits", id: ID(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.id.Base64()
			if len(s) != base64Len {
				t.Fatalf("Base64() length = %d, want %d", len(s), base64Len)
			}
			got, err := ParseBase64(s)
			if err != nil {
				t.Fatalf("ParseBase64(%q) error = %v", s, err)
			}
			if got != tt.id {
				t.Errorf("round trip = %d, want %d", got, tt.id)
			}
		})
	}
}

func TestID_Base64LittleEndian(t *testing.T) {
	// 1 encodes as byte 0x01 followed by seven zero bytes.
	if got := ID(1).Base64(); got != "AQAAAAAAAAA=" {
		t.Errorf("Base64(1) = %q, want %q", got, "AQAAAAAAAAA=")
	}
}

func TestParseBase64_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "too short", input: "AQAAAAAAAA="},
		{name: "invalid characters", input: "!!!!!!!!!!!!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseBase64(tt.input); err == nil {
				t.Errorf("ParseBase64(%q) succeeded, want error", tt.input)
			}
		})
	}
}

func TestGenerated_Base62MatchesRaw(t *testing.T) {
	worker := New(3)
	for i := 0; i < 100; i++ {
		id := worker.Generate()
		got, err := ParseBase62(id.Base62())
		if err != nil {
			t.Fatalf("ParseBase62 error = %v", err)
		}
		if got != id {
			t.Fatalf("round trip = %d, want %d", got, id)
		}
	}
}
