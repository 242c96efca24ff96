// Package base32 implements the RFC 4648 Base32 alphabet without padding,
// processing input as an MSB-first bitstream.
//
// # Why not encoding/base32
//
// Authenticator apps and manual secret entry produce strings with mixed
// case, spaces, and dashes. Decode is deliberately lenient: it is
// case-insensitive and silently skips any byte outside the alphabet,
// then discards trailing bits that do not complete a full byte. The
// standard library codec rejects such input, so the codec is owned here.
// The leniency is a usability decision, not a security assumption — the
// decoded secret is always re-verified by the OTP engine.
//
// # Laws
//
//	Decode(Encode(b)) == b            for all byte sequences b
//	len(Encode(b)) == ceil(len(b)*8/5)
//
// # What this package must NOT do
//
//   - Emit or require '=' padding.
//   - Import any other cmapi package.
package base32
