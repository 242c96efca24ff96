// Package cmapi provides a session-token authentication engine with opaque
// access and refresh tokens, Redis-backed token storage, PBKDF2 password
// hashing, and TOTP-based two-factor enrollment.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// cmapi is the public surface. It exposes [Engine], [Builder], [Config], and
// value types (LoginResult, MetricsSnapshot, etc.). Token lifecycle, the
// ephemeral store contract, and rate limiting live under internal/ and are
// never exported. The user database, HTTP routing, and QR rendering stay
// outside the module: callers supply a [UserStore] and consume the
// provisioning URI string as-is.
//
// # What this package must NOT do
//
//   - Expose Redis clients, key namespaces, or encoding details in its
//     public API.
//   - Perform I/O outside of Engine methods (construction via Builder is
//     allocation-only until Build).
//   - Distinguish unknown users from wrong passwords in anything observable
//     to a caller of Login.
//
// # Performance contract
//
// Validate is the hot path: one Redis round-trip, no allocation beyond the
// returned AuthResult. Login, Refresh, and account operations are allowed a
// constant number of store round-trips per call.
package cmapi
