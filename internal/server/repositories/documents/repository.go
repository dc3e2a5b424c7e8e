package documents

import (
	"context"

	"github.com/dmitrijs2005/docvault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id string) (*models.Document, error)
	UpdateContent(ctx context.Context, doc *models.Document, expectedVersion int64) error
	Touch(ctx context.Context, id string) error
	SoftDelete(ctx context.Context, id, ownerID string) error
	Delete(ctx context.Context, id, ownerID string) error
	List(ctx context.Context, filter models.DocumentFilter) ([]*models.DocumentSummary, int64, error)
	Totals(ctx context.Context, ownerID string) (count int64, usedBytes int64, err error)
}
