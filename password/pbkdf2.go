package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"io"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// Derivation parameters are fixed. Changing them breaks verification of
// existing hashes, so any future migration needs an explicit re-hash
// path, not a config knob.
const (
	saltLength = 16
	keyLength  = 32
	iterations = 100_000
)

// Hash derives a salted PBKDF2-HMAC-SHA256 key from password and returns
// it in hex(salt):hex(key) form. Each call consumes a fresh random salt,
// so hashing the same password twice yields different strings.
func Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	key := pbkdf2.Key([]byte(password), salt, iterations, keyLength, sha256.New)

	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(key), nil
}

// Verify reports whether password matches stored. Malformed stored
// hashes — missing delimiter, empty halves, invalid hex — verify false
// rather than returning an error.
func Verify(password, stored string) bool {
	saltHex, keyHex, ok := strings.Cut(stored, ":")
	if !ok || saltHex == "" || keyHex == "" {
		return false
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}
	want, err := hex.DecodeString(keyHex)
	if err != nil || len(want) == 0 {
		return false
	}

	got := pbkdf2.Key([]byte(password), salt, iterations, len(want), sha256.New)

	return subtle.ConstantTimeCompare(got, want) == 1
}
