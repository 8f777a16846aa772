package jt808

import "strings"

// BcdEncode packs a decimal digit string into width bytes, two digits per
// byte, high nibble first, zero-padding on the left when digits is shorter
// than 2*width decimal digits. It fails if digits contains a non-digit
// character or does not fit in width bytes.
func BcdEncode(digits string, width int) ([]byte, error) {
	if len(digits) > width*2 {
		return nil, newErr("BcdEncode", BadLength, nil)
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return nil, newErr("BcdEncode", NullArgument, nil)
		}
	}
	padded := strings.Repeat("0", width*2-len(digits)) + digits
	out := make([]byte, width)
	for i := 0; i < width; i++ {
		hi := padded[i*2] - '0'
		lo := padded[i*2+1] - '0'
		out[i] = hi<<4 | lo
	}
	return out, nil
}

// BcdDecode unpacks width bytes of BCD into a decimal digit string, two
// digits per byte, high nibble first. When zeroFill is false, leading zero
// digits are stripped (an all-zero input decodes to ""); when true, the
// full fixed-width digit string is returned, which is what phone numbers
// and BCD time fields require.
func BcdDecode(b []byte, zeroFill bool) string {
	var sb strings.Builder
	sb.Grow(len(b) * 2)
	for _, by := range b {
		hi := by >> 4
		lo := by & 0x0f
		sb.WriteByte('0' + hi)
		sb.WriteByte('0' + lo)
	}
	s := sb.String()
	if zeroFill {
		return s
	}
	trimmed := strings.TrimLeft(s, "0")
	return trimmed
}
