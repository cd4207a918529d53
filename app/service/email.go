package service

import "strings"

// NormalizeEmail lowercases and trims an email address so lookups and the
// unique constraint agree on a single spelling.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
