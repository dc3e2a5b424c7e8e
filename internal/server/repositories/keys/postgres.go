// Package keys stores wrapped per-user data keys.
package keys

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/server/models"
)

// PostgresRepository implements key storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectKey = `SELECT id, user_id, wrapped_key, salt, algorithm, is_active, created_at FROM encryption_keys`

// GetActive returns the user's active key or common.ErrorNotFound.
func (r *PostgresRepository) GetActive(ctx context.Context, userID string) (*models.EncryptionKey, error) {
	row := r.db.QueryRowContext(ctx, selectKey+` WHERE user_id = $1 AND is_active`, userID)
	return scanKey(row)
}

// GetByID returns a key regardless of its active flag, so content written
// before a rotation stays readable.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.EncryptionKey, error) {
	row := r.db.QueryRowContext(ctx, selectKey+` WHERE id = $1`, id)
	return scanKey(row)
}

// Create inserts an active key. A second active key for the same user
// violates encryption_keys_active_user_idx and yields common.ErrorConflict.
func (r *PostgresRepository) Create(ctx context.Context, key *models.EncryptionKey) error {
	query := `
		INSERT INTO encryption_keys (id, user_id, wrapped_key, salt, algorithm, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query, key.ID, key.UserID, key.WrappedKey, key.Salt, key.Algorithm).
		Scan(&key.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	key.IsActive = true
	return nil
}

// Deactivate clears the active flag. Keys are never deleted.
func (r *PostgresRepository) Deactivate(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE encryption_keys SET is_active = FALSE WHERE id = $1 AND is_active`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanKey(row scanner) (*models.EncryptionKey, error) {
	var k models.EncryptionKey
	if err := row.Scan(&k.ID, &k.UserID, &k.WrappedKey, &k.Salt, &k.Algorithm, &k.IsActive, &k.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return &k, nil
}
