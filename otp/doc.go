// Package otp implements HOTP (RFC 4226) and TOTP (RFC 6238) with the
// fixed profile used by virtually every authenticator app: HMAC-SHA1,
// 6 digits, 30-second steps.
//
// # Time handling
//
// Nothing in this package reads the wall clock. Verify and TOTP take the
// evaluation time as a parameter so callers own the clock and tests are
// deterministic.
//
// # Known limitation
//
// Verify accepts a code for every counter within ±skew steps of the
// current one. A code observed by an attacker remains valid for the rest
// of that window; there is no consumed-code tracking. Callers that need
// replay protection must layer it on top.
//
// # What this package must NOT do
//
//   - Persist secrets — storage belongs to the caller.
//   - Compute any code for input that is not exactly six ASCII digits.
package otp
