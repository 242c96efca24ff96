// Package tokens manages the lifecycle of opaque access and refresh
// tokens, plus pending TOTP secrets, in the ephemeral store.
//
// # Key layout
//
//   - at:<token>          → userID, 1 hour
//   - rt:<token>          → userID, 7 days
//   - totp_pending:<user> → Base32 secret, 5 minutes
//
// Tokens are random UUIDs; validity is purely a function of the store
// lookup, so expiry falls out of the store's TTL and revocation is a
// delete. Access tokens have no revoke path — they die by TTL. Refresh
// tokens are multi-use: issuing an access token does not consume or
// rotate them.
//
// # What this package must NOT do
//
//   - Sign, encode, or otherwise give tokens internal structure.
//   - Treat a store failure as token absence.
package tokens
