// Package quotas caches per-user usage aggregates.
package quotas

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/server/models"
)

// PostgresRepository implements quota storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert stores q unless the cached row was calculated after
// q.LastCalculatedAt, and reports whether q was written. Callers stamp q
// before aggregating, so an older aggregate never replaces a newer one.
func (r *PostgresRepository) Upsert(ctx context.Context, q *models.StorageQuota) (bool, error) {
	query := `
		INSERT INTO storage_quota (user_id, document_count, folder_count, used_bytes, last_calculated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id)
		DO UPDATE SET
			document_count = EXCLUDED.document_count,
			folder_count = EXCLUDED.folder_count,
			used_bytes = EXCLUDED.used_bytes,
			last_calculated_at = EXCLUDED.last_calculated_at
		WHERE storage_quota.last_calculated_at <= EXCLUDED.last_calculated_at
	`
	res, err := r.db.ExecContext(ctx, query, q.UserID, q.DocumentCount, q.FolderCount, q.UsedBytes, q.LastCalculatedAt)
	if err != nil {
		return false, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.StorageQuota, error) {
	query := `SELECT user_id, document_count, folder_count, used_bytes, last_calculated_at FROM storage_quota WHERE user_id = $1`
	var q models.StorageQuota
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&q.UserID, &q.DocumentCount, &q.FolderCount, &q.UsedBytes, &q.LastCalculatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return &q, nil
}
