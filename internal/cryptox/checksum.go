package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// GenerateContentChecksum returns the hex SHA-256 digest of plaintext.
func GenerateContentChecksum(plaintext []byte) string {
	sum := sha256.Sum256(plaintext)
	return hex.EncodeToString(sum[:])
}

// VerifyContentIntegrity reports whether plaintext matches checksum.
// The check is independent of the cipher's authentication tag.
func VerifyContentIntegrity(plaintext []byte, checksum string) bool {
	actual := GenerateContentChecksum(plaintext)
	return subtle.ConstantTimeCompare([]byte(actual), []byte(checksum)) == 1
}
