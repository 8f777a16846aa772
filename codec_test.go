package jt808

import (
	"bytes"
	"testing"
)

func TestEscapeUnescapeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
	}{
		{"no special bytes", []byte{sentinel, 0x01, 0x02, 0x03, sentinel}},
		{"interior sentinel", []byte{sentinel, 0x01, sentinel, 0x03, sentinel}},
		{"interior escape flag", []byte{sentinel, escapeFlag, 0x02, sentinel}},
		{"both adjacent", []byte{sentinel, sentinel, escapeFlag, sentinel}},
		{"empty body", []byte{sentinel, sentinel}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			escaped, err := Escape(tt.in)
			if err != nil {
				t.Fatalf("Escape: %v", err)
			}
			got, err := Unescape(escaped)
			if err != nil {
				t.Fatalf("Unescape: %v", err)
			}
			if !bytes.Equal(got, tt.in) {
				t.Errorf("round trip mismatch: got %x, want %x", got, tt.in)
			}
		})
	}
}

func TestEscapeRejectsMissingSentinels(t *testing.T) {
	if _, err := Escape([]byte{0x01, 0x02}); err == nil {
		t.Error("expected error for input missing leading/trailing sentinel")
	}
}

func TestUnescapeRejectsInteriorSentinel(t *testing.T) {
	raw := []byte{sentinel, 0x01, sentinel, 0x02, sentinel}
	if _, err := Unescape(raw); err == nil {
		t.Error("expected BadEscape for unescaped interior sentinel")
	}
}

func TestUnescapeRejectsDanglingEscapeFlag(t *testing.T) {
	raw := []byte{sentinel, escapeFlag, sentinel}
	if _, err := Unescape(raw); err == nil {
		t.Error("expected BadEscape for escape flag with no valid follower")
	}
	raw2 := []byte{sentinel, escapeFlag, 0x09, sentinel}
	if _, err := Unescape(raw2); err == nil {
		t.Error("expected BadEscape for escape flag followed by unknown byte")
	}
}

func TestXorChecksum(t *testing.T) {
	if got := Xor([]byte{0x01, 0x02, 0x03}); got != 0x00 {
		t.Errorf("Xor: got %#x, want 0x00", got)
	}
	if got := Xor([]byte{0xff}); got != 0xff {
		t.Errorf("Xor: got %#x, want 0xff", got)
	}
	if got := Xor(nil); got != 0x00 {
		t.Errorf("Xor(nil): got %#x, want 0x00", got)
	}
}

func TestPutGetUint16Uint32(t *testing.T) {
	var b16 [2]byte
	PutUint16(b16[:], 0xabcd)
	if got := GetUint16(b16[:]); got != 0xabcd {
		t.Errorf("uint16 round trip: got %#x", got)
	}
	var b32 [4]byte
	PutUint32(b32[:], 0x01020304)
	if got := GetUint32(b32[:]); got != 0x01020304 {
		t.Errorf("uint32 round trip: got %#x", got)
	}
}

func TestAppendUint16Uint32(t *testing.T) {
	out := AppendUint16(nil, 0x1234)
	if !bytes.Equal(out, []byte{0x12, 0x34}) {
		t.Errorf("AppendUint16: got %x", out)
	}
	out = AppendUint32(out, 0x0a0b0c0d)
	if !bytes.Equal(out, []byte{0x12, 0x34, 0x0a, 0x0b, 0x0c, 0x0d}) {
		t.Errorf("AppendUint32: got %x", out)
	}
}
