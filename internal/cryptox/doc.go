// Package cryptox holds the pure cryptographic primitives of the document
// vault: authenticated content encryption, metadata sealing, envelope key
// wrapping and plaintext checksums. Nothing here touches storage.
package cryptox
