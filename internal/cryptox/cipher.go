package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/common"
)

// ContentAlgorithm identifies the content cipher. Stored with every key so
// that a later change of cipher can be detected.
const ContentAlgorithm = "aes-256-gcm"

// KeySize is the size of a data encryption key in bytes (AES-256).
const KeySize = 32

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// EncryptContent seals plaintext with AES-GCM under key.
//
// A fresh random nonce is generated for every call and prepended to the
// result, so the returned ciphertext is nonce||sealed. The returned size is
// the plaintext length in bytes, which is what quotas account for.
func EncryptContent(plaintext, key []byte) (ciphertext []byte, size int64, err error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, 0, err
	}

	nonce := common.GenerateRandByteArray(aesgcm.NonceSize())

	ciphertext = aesgcm.Seal(nonce, nonce, plaintext, nil)

	return ciphertext, int64(len(plaintext)), nil
}

// DecryptContent opens a ciphertext produced by EncryptContent.
//
// Any failure (wrong key, truncated input, authentication tag mismatch) is
// reported as common.ErrorDecryption.
func DecryptContent(ciphertext, key []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorDecryption, err)
	}

	ns := aesgcm.NonceSize()
	if len(ciphertext) < ns+aesgcm.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext too short", common.ErrorDecryption)
	}

	plaintext, err := aesgcm.Open(nil, ciphertext[:ns], ciphertext[ns:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorDecryption, err)
	}

	// Open returns nil for an empty plaintext; callers expect a non-nil slice.
	if plaintext == nil {
		plaintext = []byte{}
	}

	return plaintext, nil
}

// EncryptMetadata serializes v to JSON and seals it like document content.
func EncryptMetadata(v any, key []byte) ([]byte, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	ciphertext, _, err := EncryptContent(plaintext, key)
	return ciphertext, err
}

// DecryptMetadata opens a blob produced by EncryptMetadata and unmarshals
// the JSON into v.
func DecryptMetadata(ciphertext, key []byte, v any) error {
	plaintext, err := DecryptContent(ciphertext, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(plaintext, v)
}
