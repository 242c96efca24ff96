// Package rate implements the shared-counter limiter guarding the
// authentication endpoints.
//
// # Window semantics
//
// Keys are scope:identity:path. A check reads the counter; at or over
// the limit it denies without touching the store, otherwise it writes
// count+1 with a fresh window TTL. Every allowed attempt therefore
// resets the window (sliding-reset, not a fixed window or a sliding
// average), so a client probing at the limit keeps itself blocked.
//
// # Known imprecision
//
// The read-then-write increment is not atomic. Two concurrent checks can
// both observe count below the limit and both write, transiently
// admitting more than the limit. This is accepted: the limiter bounds
// abuse, it does not account precisely.
//
// # Failure policy
//
// Fail closed. If the store cannot be read or written the check denies,
// returning ErrRateLimited with the backend cause attached. An outage
// must never widen the gate.
package rate
