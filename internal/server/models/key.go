package models

import "time"

// EncryptionKey is a user's data key wrapped under a key derived from the
// user's secret. Rows are never mutated, only deactivated on rotation.
type EncryptionKey struct {
	ID         string
	UserID     string
	WrappedKey []byte
	Salt       []byte
	Algorithm  string
	IsActive   bool
	CreatedAt  time.Time
}
