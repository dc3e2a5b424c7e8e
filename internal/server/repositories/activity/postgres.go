// Package activity stores the per-user audit trail.
package activity

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/server/models"
)

// PostgresRepository implements activity storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, e *models.ActivityEntry) error {
	query := `
		INSERT INTO activity_log (id, user_id, document_id, action, details)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query, e.ID, e.UserID, e.DocumentID, e.Action, e.Details).Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return nil
}

// List returns a page of the user's entries, newest first.
func (r *PostgresRepository) List(ctx context.Context, userID string, limit, offset int) ([]*models.ActivityEntry, error) {
	query := `
		SELECT id, user_id, document_id, action, details, created_at
		FROM activity_log WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	defer rows.Close()

	var result []*models.ActivityEntry
	for rows.Next() {
		var e models.ActivityEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.DocumentID, &e.Action, &e.Details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
		}
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return result, nil
}
