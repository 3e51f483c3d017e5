// Package identity implements pichub's user account foundation.
//
// It contains the user aggregate, the credential store boundary used by the
// session and HTTP layers, ID generation, and username normalization.
//
// This package is intentionally dependency-light and security-first: it never
// sees plaintext passwords or plaintext refresh tokens, only their digests.
package identity
