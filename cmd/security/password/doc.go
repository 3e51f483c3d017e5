// Package password implements pichub's password hashing (bcrypt).
//
// It is the single source of truth for:
//   - bcrypt cost (default + env override, floor enforced)
//   - password length policy (defaults + env overrides)
//
// Hashing happens only when a plaintext password is being set; verification
// never reconstructs the plaintext and compares in constant time (bcrypt's
// comparison is constant-time with respect to the secret).
package password
