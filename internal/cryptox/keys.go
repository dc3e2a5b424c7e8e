package cryptox

import (
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/dmitrijs2005/docvault/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

// KeyWrapAlgorithm identifies how stored data keys are wrapped: an Argon2id
// derived wrapping key and a NaCl secretbox around the AES data key.
const KeyWrapAlgorithm = "argon2id+xsalsa20poly1305/" + ContentAlgorithm

// SaltSize is the size of the per-key KDF salt.
const SaltSize = 16

const wrapNonceSize = 24

// DeriveMasterKey derives a 32-byte wrapping key from a user secret and salt
// with Argon2id.
func DeriveMasterKey(secret []byte, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, 32)
}

// GenerateDataKey returns fresh random key material for content encryption.
func GenerateDataKey() []byte {
	return common.GenerateRandByteArray(KeySize)
}

// GenerateSalt returns a fresh random KDF salt.
func GenerateSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

func toKey(b []byte) (*[32]byte, error) {
	if len(b) != 32 {
		return nil, fmt.Errorf("wrapping key must be 32 bytes, got %d", len(b))
	}
	var k [32]byte
	copy(k[:], b)
	return &k, nil
}

// WrapKey seals dataKey under wrappingKey. The result is nonce||box.
func WrapKey(dataKey, wrappingKey []byte) ([]byte, error) {
	k, err := toKey(wrappingKey)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(k[:])

	var nonce [wrapNonceSize]byte
	copy(nonce[:], common.GenerateRandByteArray(wrapNonceSize))

	return secretbox.Seal(nonce[:], dataKey, &nonce, k), nil
}

// UnwrapKey opens a blob produced by WrapKey. A wrong wrapping key or a
// corrupted blob yields common.ErrorDecryption.
func UnwrapKey(wrapped, wrappingKey []byte) ([]byte, error) {
	k, err := toKey(wrappingKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorDecryption, err)
	}
	defer common.WipeByteArray(k[:])

	if len(wrapped) < wrapNonceSize+secretbox.Overhead {
		return nil, fmt.Errorf("%w: wrapped key too short", common.ErrorDecryption)
	}

	var nonce [wrapNonceSize]byte
	copy(nonce[:], wrapped[:wrapNonceSize])

	dataKey, ok := secretbox.Open(nil, wrapped[wrapNonceSize:], &nonce, k)
	if !ok {
		return nil, fmt.Errorf("%w: key unwrap failed", common.ErrorDecryption)
	}
	return dataKey, nil
}

// DeriveUserSecret expands a server master secret into a stable per-user
// secret with HKDF-SHA256. The user id is the HKDF info parameter.
func DeriveUserSecret(master []byte, userID string) ([]byte, error) {
	r := hkdf.New(sha256.New, master, nil, []byte("docvault/user-secret/"+userID))
	out := make([]byte, 32)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, err
	}
	return out, nil
}
