package identity

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// MinPasswordLength is enforced at registration.
const MinPasswordLength = 8

// HashPassword returns the stored form of a password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// CheckPassword compares a password with a stored digest in constant time.
func CheckPassword(password, hash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashPassword(password)), []byte(hash)) == 1
}
