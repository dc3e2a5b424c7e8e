package favorites

import (
	"context"

	"github.com/dmitrijs2005/docvault/internal/server/models"
)

type Repository interface {
	Add(ctx context.Context, userID, documentID string) error
	Remove(ctx context.Context, userID, documentID string) (bool, error)
	List(ctx context.Context, userID string) ([]*models.Favorite, error)
	DeleteByDocument(ctx context.Context, documentID string) error
}
