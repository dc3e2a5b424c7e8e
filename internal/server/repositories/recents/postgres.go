// Package recents tracks which documents an owner opened and how often.
package recents

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/server/models"
)

// PostgresRepository implements recent-access storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Touch inserts the record or increments its access counter.
func (r *PostgresRepository) Touch(ctx context.Context, userID, documentID string) error {
	query := `
		INSERT INTO recent_documents (user_id, document_id, access_count, last_accessed_at)
		VALUES ($1, $2, 1, now())
		ON CONFLICT (user_id, document_id)
		DO UPDATE SET
			access_count = recent_documents.access_count + 1,
			last_accessed_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query, userID, documentID); err != nil {
		return fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return nil
}

// List returns up to limit live documents, most recently accessed first.
func (r *PostgresRepository) List(ctx context.Context, userID string, limit int) ([]*models.RecentAccess, error) {
	query := `
		SELECT r.user_id, r.document_id, d.name, r.access_count, r.last_accessed_at
		FROM recent_documents r JOIN documents d ON d.id = r.document_id
		WHERE r.user_id = $1 AND NOT d.is_deleted
		ORDER BY r.last_accessed_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	defer rows.Close()

	var result []*models.RecentAccess
	for rows.Next() {
		var ra models.RecentAccess
		if err := rows.Scan(&ra.UserID, &ra.DocumentID, &ra.DocumentName, &ra.AccessCount, &ra.LastAccessedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
		}
		result = append(result, &ra)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return result, nil
}

func (r *PostgresRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM recent_documents WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return nil
}
