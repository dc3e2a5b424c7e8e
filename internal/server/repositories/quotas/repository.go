package quotas

import (
	"context"

	"github.com/dmitrijs2005/docvault/internal/server/models"
)

type Repository interface {
	Upsert(ctx context.Context, q *models.StorageQuota) (bool, error)
	Get(ctx context.Context, userID string) (*models.StorageQuota, error)
}
