package versions

import (
	"context"

	"github.com/dmitrijs2005/docvault/internal/server/models"
)

type Repository interface {
	Append(ctx context.Context, v *models.DocumentVersion) error
	List(ctx context.Context, documentID string) ([]*models.DocumentVersion, error)
	Get(ctx context.Context, documentID string, versionNumber int64) (*models.DocumentVersion, error)
	DeleteByDocument(ctx context.Context, documentID string) error
}
