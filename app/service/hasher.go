package service

import (
	"crypto/sha1"
	"encoding/hex"

	"github.com/google/uuid"
)

// HashCredential turns a plaintext secret into the stored digest: a single
// unsalted SHA-1 pass, so the same plaintext always yields the same digest
// and authentication is a plain email+digest equality lookup. Callers must
// reject empty plaintext before calling.
func HashCredential(plaintext string) string {
	sum := sha1.Sum([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// RandomSecret returns a throwaway secret for accounts created without a
// password, so the record never carries an empty or guessable digest.
func RandomSecret() string {
	return uuid.New().String()
}
