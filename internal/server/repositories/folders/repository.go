package folders

import (
	"context"

	"github.com/dmitrijs2005/docvault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, f *models.Folder) error
	GetByID(ctx context.Context, id string) (*models.Folder, error)
	List(ctx context.Context, ownerID string, parentID *string, includeDeleted bool) ([]*models.Folder, error)
	ListAll(ctx context.Context, ownerID string) ([]*models.Folder, error)
	CountActive(ctx context.Context, ownerID string) (int64, error)
}
