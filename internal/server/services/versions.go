package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/cryptox"
	"github.com/dmitrijs2005/docvault/internal/server/models"
)

// ListVersions returns the history of a document newest first, under the
// same permission as Read.
func (s *DocumentService) ListVersions(ctx context.Context, documentID, requesterID string) ([]*models.DocumentVersion, error) {
	doc, err := s.authorize(ctx, documentID, requesterID, ActionRead)
	if err != nil {
		return nil, err
	}
	list, err := s.repomanager.Versions(s.db).List(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("error listing versions: %w", err)
	}
	return list, nil
}

// VersionContent is one decrypted historical version.
type VersionContent struct {
	Version *models.DocumentVersion
	Content []byte
}

// ReadVersion decrypts version n of a document with the key it was written
// under.
func (s *DocumentService) ReadVersion(ctx context.Context, documentID, requesterID string, n int64) (*VersionContent, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: version must be positive", common.ErrorValidation)
	}
	doc, err := s.authorize(ctx, documentID, requesterID, ActionRead)
	if err != nil {
		return nil, err
	}

	v, err := s.repomanager.Versions(s.db).Get(ctx, doc.ID, n)
	if err != nil {
		return nil, denyMissing(err)
	}

	key, err := s.keys.KeyByID(ctx, doc.OwnerID, v.EncryptionKeyID)
	if err != nil {
		return nil, fmt.Errorf("error reading version: %w", err)
	}
	defer key.Wipe()

	content, err := cryptox.DecryptContent(v.EncryptedContent, key.Material)
	if err != nil {
		return nil, fmt.Errorf("error reading version: %w", err)
	}
	v.EncryptedContent = nil
	return &VersionContent{Version: v, Content: content}, nil
}
