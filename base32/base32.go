package base32

import "strings"

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

// reverse maps an ASCII byte to its alphabet index, or -1 when the byte
// is not part of the (case-insensitive) alphabet.
var reverse [256]int8

func init() {
	for i := range reverse {
		reverse[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		c := alphabet[i]
		reverse[c] = int8(i)
		if c >= 'A' && c <= 'Z' {
			reverse[c+'a'-'A'] = int8(i)
		}
	}
}

// Encode returns the unpadded Base32 representation of src. Bits are
// accumulated MSB-first and emitted in 5-bit groups; a final partial
// group is left-padded with zero bits.
func Encode(src []byte) string {
	var b strings.Builder
	b.Grow((len(src)*8 + 4) / 5)

	var buffer uint
	var bits uint

	for _, c := range src {
		buffer = buffer<<8 | uint(c)
		bits += 8
		for bits >= 5 {
			bits -= 5
			b.WriteByte(alphabet[(buffer>>bits)&0x1f])
		}
	}

	if bits > 0 {
		b.WriteByte(alphabet[(buffer<<(5-bits))&0x1f])
	}

	return b.String()
}

// Decode returns the bytes encoded in s. Decoding is case-insensitive;
// bytes outside the alphabet are skipped rather than rejected, and
// trailing bits that do not complete a byte are discarded.
func Decode(s string) []byte {
	out := make([]byte, 0, len(s)*5/8)

	var buffer uint
	var bits uint

	for i := 0; i < len(s); i++ {
		v := reverse[s[i]]
		if v < 0 {
			continue
		}
		buffer = buffer<<5 | uint(v)
		bits += 5
		if bits >= 8 {
			bits -= 8
			out = append(out, byte(buffer>>bits))
		}
	}

	return out
}
