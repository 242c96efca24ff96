// Package middleware exposes HTTP adapters built on top of cmapi.Engine
// validation and rate limiting.
//
// # Guards
//
//   - [Guard] — reads the Authorization bearer token, calls Engine.Validate,
//     and injects the resolved AuthResult into the request context.
//   - [RateLimit] — resolves the client identity and charges the request
//     against the engine's per-path budget before dispatch.
//   - [ClientIdentity] — attaches the client IP to the request context for
//     the engine's limiter and audit trail.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself — all decisions are delegated to
// the engine.
//
// # What this package must NOT do
//
//   - Inspect or mint tokens directly (delegates to Engine).
//   - Access Redis (Engine handles I/O).
//   - Make authorization decisions beyond pass/reject from Engine.Validate.
package middleware
