// Package token provides token hashing primitives for pichub.
//
// It is the single source of truth for refresh-token hashing: the plain
// refresh token lives only on the client, and the server persists a stable
// 64-char hex digest on the user record.
//
// Behavior:
//   - Default dev mode: SHA-256(token) when no HMAC key is configured.
//   - Production mode: HMAC-SHA256(token, key) when PICHUB_TOKEN_HMAC_KEY is set.
package token
