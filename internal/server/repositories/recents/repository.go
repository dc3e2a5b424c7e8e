package recents

import (
	"context"

	"github.com/dmitrijs2005/docvault/internal/server/models"
)

type Repository interface {
	Touch(ctx context.Context, userID, documentID string) error
	List(ctx context.Context, userID string, limit int) ([]*models.RecentAccess, error)
	DeleteByDocument(ctx context.Context, documentID string) error
}
