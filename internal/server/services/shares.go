package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/google/uuid"
)

const minShareTokenBytes = 16

// ShareService hands out bearer tokens granting time-limited access to a
// document. Managing grants is reserved to the document owner.
type ShareService struct {
	*base
	activity   *ActivityService
	tokenBytes int
}

// SharedDocument is what a share token resolves to. Content is not
// included: decryption goes through Read with the grant.
type SharedDocument struct {
	Document   *models.DocumentSummary
	GrantID    string
	Permission models.Permission
	ExpiresAt  *time.Time
}

// CreateGrant shares documentID owned by ownerID. A nil targetUserID
// creates a grant usable by anyone holding the token.
func (s *ShareService) CreateGrant(ctx context.Context, documentID, ownerID string, targetUserID *string,
	perm models.Permission, expiresAt *time.Time) (*models.ShareGrant, error) {
	if !perm.Valid() {
		return nil, fmt.Errorf("%w: unknown permission %q", common.ErrorValidation, perm)
	}
	if expiresAt != nil && !expiresAt.After(s.now()) {
		return nil, fmt.Errorf("%w: expiry must be in the future", common.ErrorValidation)
	}
	if targetUserID != nil {
		t := strings.TrimSpace(*targetUserID)
		if t == "" || t == ownerID {
			return nil, fmt.Errorf("%w: invalid share target", common.ErrorValidation)
		}
		targetUserID = &t
	}

	doc, err := s.ownedDocument(ctx, documentID, ownerID)
	if err != nil {
		return nil, err
	}

	token, err := common.MakeRandHexString(max(s.tokenBytes, minShareTokenBytes))
	if err != nil {
		return nil, fmt.Errorf("error generating share token: %w", err)
	}

	g := &models.ShareGrant{
		ID:         uuid.NewString(),
		DocumentID: doc.ID,
		GrantedBy:  ownerID,
		GrantedTo:  targetUserID,
		Permission: perm,
		Token:      token,
		ExpiresAt:  expiresAt,
	}
	if err := s.repomanager.Shares(s.db).Create(ctx, g); err != nil {
		return nil, fmt.Errorf("error creating share: %w", err)
	}

	s.logger.Info(ctx, "share created", "document_id", doc.ID, "grant_id", g.ID, "permission", perm)
	s.activity.Record(ctx, ownerID, doc.ID, models.ActionShareCreated, string(perm))
	return g, nil
}

// ResolveByToken returns the shared document if the grant is active and
// unexpired. Anything else is common.ErrorNotFoundOrDenied.
func (s *ShareService) ResolveByToken(ctx context.Context, token string) (*SharedDocument, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: token is required", common.ErrorValidation)
	}

	g, err := s.repomanager.Shares(s.db).GetByToken(ctx, token)
	if err != nil {
		return nil, denyMissing(err)
	}
	if !g.Usable(s.now()) {
		return nil, common.ErrorNotFoundOrDenied
	}

	doc, err := s.repomanager.Documents(s.db).GetByID(ctx, g.DocumentID)
	if err != nil {
		return nil, denyMissing(err)
	}
	if doc.IsDeleted {
		return nil, common.ErrorNotFoundOrDenied
	}

	return &SharedDocument{Document: doc.Summary(), GrantID: g.ID, Permission: g.Permission, ExpiresAt: g.ExpiresAt}, nil
}

// RevokeGrant deactivates a grant. The row is kept for audit.
func (s *ShareService) RevokeGrant(ctx context.Context, grantID, ownerID string) error {
	g, err := s.ownedGrant(ctx, grantID, ownerID)
	if err != nil {
		return err
	}
	if err := s.repomanager.Shares(s.db).Deactivate(ctx, g.ID); err != nil {
		return fmt.Errorf("error revoking share: %w", denyMissing(err))
	}

	s.logger.Info(ctx, "share revoked", "grant_id", g.ID)
	s.activity.Record(ctx, ownerID, g.DocumentID, models.ActionShareRevoked, g.ID)
	return nil
}

// UpdatePermission changes the level of an active grant.
func (s *ShareService) UpdatePermission(ctx context.Context, grantID, ownerID string, perm models.Permission) error {
	if !perm.Valid() {
		return fmt.Errorf("%w: unknown permission %q", common.ErrorValidation, perm)
	}
	g, err := s.ownedGrant(ctx, grantID, ownerID)
	if err != nil {
		return err
	}
	if err := s.repomanager.Shares(s.db).UpdatePermission(ctx, g.ID, perm); err != nil {
		return fmt.Errorf("error updating share: %w", denyMissing(err))
	}

	s.activity.Record(ctx, ownerID, g.DocumentID, models.ActionShareUpdated, string(perm))
	return nil
}

// ListGrants returns every grant of an owner's document, active or not.
func (s *ShareService) ListGrants(ctx context.Context, documentID, ownerID string) ([]*models.ShareGrant, error) {
	doc, err := s.ownedDocument(ctx, documentID, ownerID)
	if err != nil {
		return nil, err
	}
	list, err := s.repomanager.Shares(s.db).ListByDocument(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("error listing shares: %w", err)
	}
	return list, nil
}

// ExpireStale deactivates all grants whose expiry has passed.
func (s *ShareService) ExpireStale(ctx context.Context) (int64, error) {
	n, err := s.repomanager.Shares(s.db).DeactivateExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("error expiring shares: %w", err)
	}
	s.logger.Info(ctx, "expired shares deactivated", "count", n)
	return n, nil
}

func (s *ShareService) ownedDocument(ctx context.Context, documentID, ownerID string) (*models.Document, error) {
	if documentID == "" {
		return nil, fmt.Errorf("%w: document id is required", common.ErrorValidation)
	}
	if err := checkID(documentID); err != nil {
		return nil, err
	}
	doc, err := s.repomanager.Documents(s.db).GetByID(ctx, documentID)
	if err != nil {
		return nil, denyMissing(err)
	}
	if doc.OwnerID != ownerID || doc.IsDeleted {
		return nil, common.ErrorNotFoundOrDenied
	}
	return doc, nil
}

func (s *ShareService) ownedGrant(ctx context.Context, grantID, ownerID string) (*models.ShareGrant, error) {
	if grantID == "" {
		return nil, fmt.Errorf("%w: grant id is required", common.ErrorValidation)
	}
	if err := checkID(grantID); err != nil {
		return nil, err
	}
	g, err := s.repomanager.Shares(s.db).GetByID(ctx, grantID)
	if err != nil {
		return nil, denyMissing(err)
	}
	if _, err := s.ownedDocument(ctx, g.DocumentID, ownerID); err != nil {
		return nil, err
	}
	return g, nil
}
