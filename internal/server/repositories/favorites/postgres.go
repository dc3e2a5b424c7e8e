// Package favorites stores per-user favorite marks.
package favorites

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/server/models"
)

// PostgresRepository implements favorite storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Add marks the document. A racing duplicate mark yields common.ErrorConflict.
func (r *PostgresRepository) Add(ctx context.Context, userID, documentID string) error {
	if _, err := r.db.ExecContext(ctx, `INSERT INTO favorites (user_id, document_id) VALUES ($1, $2)`, userID, documentID); err != nil {
		return fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return nil
}

// Remove unmarks the document and reports whether a mark existed.
func (r *PostgresRepository) Remove(ctx context.Context, userID, documentID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = $1 AND document_id = $2`, userID, documentID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n > 0, nil
}

// List returns the user's favorites on live documents, newest first.
func (r *PostgresRepository) List(ctx context.Context, userID string) ([]*models.Favorite, error) {
	query := `
		SELECT f.user_id, f.document_id, d.name, f.created_at
		FROM favorites f JOIN documents d ON d.id = f.document_id
		WHERE f.user_id = $1 AND NOT d.is_deleted
		ORDER BY f.created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	defer rows.Close()

	var result []*models.Favorite
	for rows.Next() {
		var f models.Favorite
		if err := rows.Scan(&f.UserID, &f.DocumentID, &f.DocumentName, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
		}
		result = append(result, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return result, nil
}

func (r *PostgresRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return nil
}
