// Package documents provides the PostgreSQL repository for encrypted
// documents, including the compare-and-swap used by concurrent updates.
package documents

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/server/models"
)

// PostgresRepository implements document storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts doc and fills its timestamps.
func (r *PostgresRepository) Create(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (id, owner_user_id, parent_folder_id, name, type, file_extension,
			encrypted_content, content_size_bytes, encryption_key_id, version_number,
			is_public, encrypted_metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		doc.ID, doc.OwnerID, doc.ParentFolderID, doc.Name, doc.Type, doc.FileExtension,
		doc.EncryptedContent, doc.ContentSize, doc.EncryptionKeyID, doc.VersionNumber,
		doc.IsPublic, doc.EncryptedMetadata,
	).Scan(&doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return nil
}

// GetByID returns the document, deleted or not, or common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := `
		SELECT id, owner_user_id, parent_folder_id, name, type, file_extension,
			encrypted_content, content_size_bytes, encryption_key_id, version_number,
			is_public, is_deleted, encrypted_metadata, created_at, updated_at, last_accessed_at
		FROM documents WHERE id = $1
	`
	var d models.Document
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&d.ID, &d.OwnerID, &d.ParentFolderID, &d.Name, &d.Type, &d.FileExtension,
		&d.EncryptedContent, &d.ContentSize, &d.EncryptionKeyID, &d.VersionNumber,
		&d.IsPublic, &d.IsDeleted, &d.EncryptedMetadata, &d.CreatedAt, &d.UpdatedAt, &d.LastAccessedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return &d, nil
}

// UpdateContent writes doc's mutable fields only if the stored version still
// equals expectedVersion. A lost race returns common.ErrVersionConflict.
func (r *PostgresRepository) UpdateContent(ctx context.Context, doc *models.Document, expectedVersion int64) error {
	query := `
		UPDATE documents SET
			name = $3,
			encrypted_content = $4,
			content_size_bytes = $5,
			encryption_key_id = $6,
			encrypted_metadata = $7,
			version_number = $8,
			updated_at = now()
		WHERE id = $1 AND version_number = $2 AND NOT is_deleted
	`
	res, err := r.db.ExecContext(ctx, query,
		doc.ID, expectedVersion,
		doc.Name, doc.EncryptedContent, doc.ContentSize, doc.EncryptionKeyID, doc.EncryptedMetadata, doc.VersionNumber,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrVersionConflict
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// Touch records a read.
func (r *PostgresRepository) Touch(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE documents SET last_accessed_at = now() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return nil
}

// SoftDelete flags an owner's live document as deleted.
func (r *PostgresRepository) SoftDelete(ctx context.Context, id, ownerID string) error {
	query := `UPDATE documents SET is_deleted = TRUE, updated_at = now() WHERE id = $1 AND owner_user_id = $2 AND NOT is_deleted`
	return r.execOne(ctx, query, id, ownerID)
}

// Delete removes the row. Dependent rows must be gone already.
func (r *PostgresRepository) Delete(ctx context.Context, id, ownerID string) error {
	return r.execOne(ctx, `DELETE FROM documents WHERE id = $1 AND owner_user_id = $2`, id, ownerID)
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
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

// List returns one page of summaries matching filter and the total number
// of matches. Encrypted columns are never selected.
func (r *PostgresRepository) List(ctx context.Context, filter models.DocumentFilter) ([]*models.DocumentSummary, int64, error) {
	where, args := buildFilter(filter)

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", dbx.Classify(err))
	}

	query := fmt.Sprintf(`
		SELECT id, owner_user_id, parent_folder_id, name, type, file_extension,
			content_size_bytes, version_number, is_public, is_deleted,
			created_at, updated_at, last_accessed_at
		FROM documents WHERE %s
		ORDER BY updated_at DESC, id
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)

	rows, err := r.db.QueryContext(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	defer rows.Close()

	var result []*models.DocumentSummary
	for rows.Next() {
		var s models.DocumentSummary
		if err := rows.Scan(
			&s.ID, &s.OwnerID, &s.ParentFolderID, &s.Name, &s.Type, &s.FileExtension,
			&s.ContentSize, &s.VersionNumber, &s.IsPublic, &s.IsDeleted,
			&s.CreatedAt, &s.UpdatedAt, &s.LastAccessedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("db error: %w", dbx.Classify(err))
		}
		result = append(result, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return result, total, nil
}

func buildFilter(f models.DocumentFilter) (string, []any) {
	conds := []string{"owner_user_id = $1"}
	args := []any{f.OwnerID}

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if !f.IncludeDeleted {
		conds = append(conds, "NOT is_deleted")
	}
	switch {
	case f.RootOnly:
		conds = append(conds, "parent_folder_id IS NULL")
	case f.FolderID != nil:
		add("parent_folder_id = $%d", *f.FolderID)
	}
	if f.Type != "" {
		add("type = $%d", f.Type)
	}
	if f.Search != "" {
		add("name ILIKE $%d", "%"+escapeLike(f.Search)+"%")
	}
	return strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

// Totals aggregates the owner's live documents.
func (r *PostgresRepository) Totals(ctx context.Context, ownerID string) (int64, int64, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(content_size_bytes), 0) FROM documents WHERE owner_user_id = $1 AND NOT is_deleted`
	var count, used int64
	if err := r.db.QueryRowContext(ctx, query, ownerID).Scan(&count, &used); err != nil {
		return 0, 0, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return count, used, nil
}
