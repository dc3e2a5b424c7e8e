package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/cryptox"
)

// SecretSource supplies the per-user secret KeyService wraps data keys
// under. Decrypting always needs the document owner's secret, even when a
// grantee reads.
type SecretSource interface {
	UserSecret(ctx context.Context, userID string) ([]byte, error)
}

// HKDFSecretSource derives a stable secret per user from one master secret.
type HKDFSecretSource struct {
	master []byte
}

func NewHKDFSecretSource(master string) *HKDFSecretSource {
	return &HKDFSecretSource{master: []byte(master)}
}

func (s *HKDFSecretSource) UserSecret(_ context.Context, userID string) ([]byte, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: empty user id", common.ErrorValidation)
	}
	return cryptox.DeriveUserSecret(s.master, userID)
}

// StaticSecretSource serves fixed secrets, e.g. for tooling.
type StaticSecretSource map[string][]byte

func (s StaticSecretSource) UserSecret(_ context.Context, userID string) ([]byte, error) {
	secret, ok := s[userID]
	if !ok {
		return nil, fmt.Errorf("%w: no secret for user", common.ErrorValidation)
	}
	return append([]byte(nil), secret...), nil
}
