package models

import (
	"crypto/subtle"
	"time"
)

// ShareGrant delegates access to a document. A nil GrantedTo names no one:
// the grant is honored only for a requester presenting its token.
type ShareGrant struct {
	ID         string
	DocumentID string
	GrantedBy  string
	GrantedTo  *string
	Permission Permission
	Token      string
	ExpiresAt  *time.Time
	IsActive   bool
	CreatedAt  time.Time
}

// Usable reports whether the grant is active and not expired at now.
func (g *ShareGrant) Usable(now time.Time) bool {
	if !g.IsActive {
		return false
	}
	return g.ExpiresAt == nil || g.ExpiresAt.After(now)
}

// Covers reports whether the grant applies to userID presenting token.
// A named grant ignores the token.
func (g *ShareGrant) Covers(userID, token string) bool {
	if g.GrantedTo != nil {
		return *g.GrantedTo == userID
	}
	return token != "" && subtle.ConstantTimeCompare([]byte(token), []byte(g.Token)) == 1
}
