package otp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/ranswife/cmapi/base32"
)

const (
	// SecretBytes is the raw secret size (160 bits, RFC 4226 §4 R6).
	SecretBytes = 20

	// Period is the TOTP time step in seconds.
	Period = 30

	// Digits is the code length.
	Digits = 6

	// DefaultSkew is the number of time steps checked on each side of
	// the current one, tolerating ±30 s of clock drift.
	DefaultSkew = 1
)

// GenerateSecret returns a fresh 20-byte secret, Base32-encoded.
func GenerateSecret() (string, error) {
	raw := make([]byte, SecretBytes)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", err
	}
	return base32.Encode(raw), nil
}

// HOTP computes the 6-digit code for the given secret and counter.
func HOTP(secret []byte, counter uint64) string {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(sha1.New, secret)
	_, _ = mac.Write(msg[:])
	sum := mac.Sum(nil)

	// Dynamic truncation (RFC 4226 §5.3): the last nibble selects a
	// 4-byte window; the top bit is masked to keep the value positive.
	offset := sum[len(sum)-1] & 0x0f
	bin := uint32(sum[offset]&0x7f)<<24 |
		uint32(sum[offset+1])<<16 |
		uint32(sum[offset+2])<<8 |
		uint32(sum[offset+3])

	return fmt.Sprintf("%06d", bin%1_000_000)
}

// TOTP computes the code for the 30-second step containing t.
func TOTP(secret []byte, t time.Time) string {
	return HOTP(secret, uint64(t.Unix()/Period))
}

// Verify reports whether code is valid for the Base32-encoded secret at
// time at, checking counters from skew steps behind to skew steps ahead
// of the current one. Input that is not exactly six digits is rejected
// before any code is computed.
func Verify(secretBase32, code string, at time.Time, skew int) bool {
	if !isSixDigits(code) {
		return false
	}

	secret := base32.Decode(secretBase32)
	if len(secret) == 0 {
		return false
	}

	counter := at.Unix() / Period
	for step := -int64(skew); step <= int64(skew); step++ {
		c := counter + step
		if c < 0 {
			continue
		}
		want := HOTP(secret, uint64(c))
		if subtle.ConstantTimeCompare([]byte(want), []byte(code)) == 1 {
			return true
		}
	}

	return false
}

// ProvisioningURI returns the otpauth:// URI consumed by QR-rendering
// clients. The query parameter order is part of the wire contract, so
// the string is assembled by hand rather than through url.Values (which
// sorts keys).
func ProvisioningURI(secretBase32, issuer, account string) string {
	encIssuer := percentEncode(issuer)
	encAccount := percentEncode(account)

	return "otpauth://totp/" + encIssuer + ":" + encAccount +
		"?secret=" + secretBase32 +
		"&issuer=" + encIssuer +
		"&algorithm=SHA1&digits=6&period=30"
}

// percentEncode matches JavaScript's encodeURIComponent for the label
// components: spaces become %20, never '+'.
func percentEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func isSixDigits(code string) bool {
	if len(code) != Digits {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
