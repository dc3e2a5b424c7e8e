// Package versions stores the append-only history of document content.
package versions

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/server/models"
)

// PostgresRepository implements version storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Append inserts v. Reusing a (document, version) pair fails with
// common.ErrorConflict through the primary key.
func (r *PostgresRepository) Append(ctx context.Context, v *models.DocumentVersion) error {
	query := `
		INSERT INTO document_versions (document_id, version_number, encrypted_content, encryption_key_id,
			change_description, author_id, content_size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		v.DocumentID, v.VersionNumber, v.EncryptedContent, v.EncryptionKeyID,
		v.ChangeDescription, v.AuthorID, v.ContentSize,
	).Scan(&v.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return nil
}

// List returns version metadata, newest first. Content is not loaded.
func (r *PostgresRepository) List(ctx context.Context, documentID string) ([]*models.DocumentVersion, error) {
	query := `
		SELECT document_id, version_number, encryption_key_id, change_description, author_id,
			content_size_bytes, created_at
		FROM document_versions WHERE document_id = $1
		ORDER BY version_number DESC
	`
	rows, err := r.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	defer rows.Close()

	var result []*models.DocumentVersion
	for rows.Next() {
		var v models.DocumentVersion
		if err := rows.Scan(&v.DocumentID, &v.VersionNumber, &v.EncryptionKeyID, &v.ChangeDescription,
			&v.AuthorID, &v.ContentSize, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
		}
		result = append(result, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return result, nil
}

// Get loads one version including its ciphertext.
func (r *PostgresRepository) Get(ctx context.Context, documentID string, versionNumber int64) (*models.DocumentVersion, error) {
	query := `
		SELECT document_id, version_number, encrypted_content, encryption_key_id, change_description,
			author_id, content_size_bytes, created_at
		FROM document_versions WHERE document_id = $1 AND version_number = $2
	`
	var v models.DocumentVersion
	err := r.db.QueryRowContext(ctx, query, documentID, versionNumber).Scan(
		&v.DocumentID, &v.VersionNumber, &v.EncryptedContent, &v.EncryptionKeyID, &v.ChangeDescription,
		&v.AuthorID, &v.ContentSize, &v.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return &v, nil
}

// DeleteByDocument is only used by hard delete.
func (r *PostgresRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM document_versions WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return nil
}
