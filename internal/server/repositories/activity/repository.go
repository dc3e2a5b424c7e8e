package activity

import (
	"context"

	"github.com/dmitrijs2005/docvault/internal/server/models"
)

type Repository interface {
	Insert(ctx context.Context, e *models.ActivityEntry) error
	List(ctx context.Context, userID string, limit, offset int) ([]*models.ActivityEntry, error)
}
