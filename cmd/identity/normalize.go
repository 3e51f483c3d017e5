package identity

import "strings"

// NormalizeUsername performs case-insensitive canonicalization.
// Usernames are stored and compared in this form only.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
