package shares

import (
	"context"
	"time"

	"github.com/dmitrijs2005/docvault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, g *models.ShareGrant) error
	GetByID(ctx context.Context, id string) (*models.ShareGrant, error)
	GetByToken(ctx context.Context, token string) (*models.ShareGrant, error)
	ListUsableForUser(ctx context.Context, documentID, userID, token string, now time.Time) ([]*models.ShareGrant, error)
	ListByDocument(ctx context.Context, documentID string) ([]*models.ShareGrant, error)
	Deactivate(ctx context.Context, id string) error
	UpdatePermission(ctx context.Context, id string, p models.Permission) error
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
	DeleteByDocument(ctx context.Context, documentID string) error
}
