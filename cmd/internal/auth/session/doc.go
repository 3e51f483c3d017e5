// Package session implements pichub's authentication core: registration,
// login, refresh rotation, logout, and access-token verification.
//
// Access and refresh tokens are both HS256 JWTs signed with separate secrets.
// Each user holds at most one live refresh token; its digest (HMAC-SHA256 when
// PICHUB_TOKEN_HMAC_KEY is set, otherwise SHA-256) is stored on the user row,
// and rotation replaces it with a conditional write so a replayed or raced
// token loses.
//
// Transport (HTTP, cookies) integration is intentionally out of scope here.
package session
