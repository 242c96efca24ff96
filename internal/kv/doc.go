// Package kv defines the ephemeral key-value contract the engine stores
// all transient state in: tokens, pending TOTP secrets, and rate-limit
// counters.
//
// # Contract
//
// Get/Put/Delete with per-entry TTL on every write. Reads of expired
// keys behave exactly like reads of absent keys (ErrNotFound). There are
// no transactions and no atomic increments — callers that read-modify-
// write accept the races that implies.
//
// # Error discipline
//
// Backend failures are wrapped in ErrUnavailable so callers can
// distinguish "absent" from "unknown". No caller may ever treat
// ErrUnavailable as absence.
package kv
