package keys

import (
	"context"

	"github.com/dmitrijs2005/docvault/internal/server/models"
)

type Repository interface {
	GetActive(ctx context.Context, userID string) (*models.EncryptionKey, error)
	GetByID(ctx context.Context, id string) (*models.EncryptionKey, error)
	Create(ctx context.Context, key *models.EncryptionKey) error
	Deactivate(ctx context.Context, id string) error
}
