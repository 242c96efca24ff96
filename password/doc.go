// Package password implements password hashing and verification with
// PBKDF2-HMAC-SHA256.
//
// # Output format
//
// Stored hashes are two hex strings joined by a colon:
//
//	hex(salt) + ":" + hex(derivedKey)
//
// with a 16-byte random salt and a 32-byte derived key at 100 000
// iterations. The parameters are package constants rather than caller
// configuration so a stored hash can never be re-verified with weaker
// settings.
//
// # Failure behavior
//
// Verify fails closed: a stored hash with a missing half or invalid hex
// verifies false for every password. Comparison of the derived key uses
// subtle.ConstantTimeCompare.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords — callers supply plaintext and receive hashes.
//   - Log plaintext passwords or derived keys.
//   - Import any other cmapi package.
package password
