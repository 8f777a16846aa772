package jt808

import "encoding/binary"

// Escape/frame sentinel bytes, per the 2011/2013 JT/T 808 byte-stuffing rule.
const (
	sentinel     byte = 0x7e
	escapeFlag   byte = 0x7d
	escapeToSign byte = 0x02 // 0x7d 0x02 <-> 0x7e
	escapeToSelf byte = 0x01 // 0x7d 0x01 <-> 0x7d
)

// Escape byte-stuffs the interior of a sentinel-delimited frame: every 0x7e
// becomes {0x7d, 0x02} and every 0x7d becomes {0x7d, 0x01}. The first and
// last bytes of in must be the 0x7e sentinels and are copied verbatim.
func Escape(in []byte) ([]byte, error) {
	if len(in) < 2 {
		return nil, newErr("Escape", BadHeader, nil)
	}
	if in[0] != sentinel || in[len(in)-1] != sentinel {
		return nil, newErr("Escape", BadHeader, nil)
	}
	out := make([]byte, 0, len(in)+4)
	out = append(out, sentinel)
	for _, b := range in[1 : len(in)-1] {
		switch b {
		case sentinel:
			out = append(out, escapeFlag, escapeToSign)
		case escapeFlag:
			out = append(out, escapeFlag, escapeToSelf)
		default:
			out = append(out, b)
		}
	}
	out = append(out, sentinel)
	return out, nil
}

// Unescape reverses Escape. It fails with BadEscape if an interior 0x7e
// sentinel appears, or if 0x7d is followed by anything other than 0x01/0x02.
func Unescape(in []byte) ([]byte, error) {
	if len(in) < 2 {
		return nil, newErr("Unescape", BadEscape, nil)
	}
	if in[0] != sentinel || in[len(in)-1] != sentinel {
		return nil, newErr("Unescape", BadEscape, nil)
	}
	out := make([]byte, 0, len(in))
	out = append(out, sentinel)
	body := in[1 : len(in)-1]
	for i := 0; i < len(body); i++ {
		b := body[i]
		switch b {
		case sentinel:
			return nil, newErr("Unescape", BadEscape, nil)
		case escapeFlag:
			if i+1 >= len(body) {
				return nil, newErr("Unescape", BadEscape, nil)
			}
			switch body[i+1] {
			case escapeToSign:
				out = append(out, sentinel)
			case escapeToSelf:
				out = append(out, escapeFlag)
			default:
				return nil, newErr("Unescape", BadEscape, nil)
			}
			i++
		default:
			out = append(out, b)
		}
	}
	out = append(out, sentinel)
	return out, nil
}

// Xor computes the bytewise XOR checksum of span.
func Xor(span []byte) byte {
	var s byte
	for _, b := range span {
		s ^= b
	}
	return s
}

// PutUint16 and PutUint32 write big-endian integers; GetUint16/GetUint32 read
// them back. Thin, named wrappers around encoding/binary.BigEndian kept so
// call sites read as protocol operations rather than bare binary.BigEndian
// calls scattered through the body codecs.
func PutUint16(b []byte, v uint16) { binary.BigEndian.PutUint16(b, v) }
func PutUint32(b []byte, v uint32) { binary.BigEndian.PutUint32(b, v) }
func GetUint16(b []byte) uint16    { return binary.BigEndian.Uint16(b) }
func GetUint32(b []byte) uint32    { return binary.BigEndian.Uint32(b) }

// AppendUint16 and AppendUint32 append a big-endian integer to buf.
func AppendUint16(buf []byte, v uint16) []byte {
	var b [2]byte
	PutUint16(b[:], v)
	return append(buf, b[:]...)
}

func AppendUint32(buf []byte, v uint32) []byte {
	var b [4]byte
	PutUint32(b[:], v)
	return append(buf, b[:]...)
}
