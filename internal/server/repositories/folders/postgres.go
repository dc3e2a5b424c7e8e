// Package folders stores the per-user folder namespace.
package folders

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/server/models"
)

// PostgresRepository implements folder storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts f. A live sibling with the same name violates
// folders_owner_parent_name_idx and yields common.ErrorConflict.
func (r *PostgresRepository) Create(ctx context.Context, f *models.Folder) error {
	query := `
		INSERT INTO folders (id, owner_user_id, parent_folder_id, name, description, color, is_public)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, f.ID, f.OwnerID, f.ParentFolderID, f.Name, f.Description, f.Color, f.IsPublic).
		Scan(&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return nil
}

const folderColumns = `f.id, f.owner_user_id, f.parent_folder_id, f.name, f.description, f.color,
	f.is_public, f.is_deleted, f.created_at, f.updated_at`

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	var f models.Folder
	err := r.db.QueryRowContext(ctx, `SELECT `+folderColumns+` FROM folders f WHERE f.id = $1`, id).Scan(
		&f.ID, &f.OwnerID, &f.ParentFolderID, &f.Name, &f.Description, &f.Color,
		&f.IsPublic, &f.IsDeleted, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return &f, nil
}

// List returns the children of parentID (root when nil) with their live
// document and subfolder counts.
func (r *PostgresRepository) List(ctx context.Context, ownerID string, parentID *string, includeDeleted bool) ([]*models.Folder, error) {
	query := `
		SELECT ` + folderColumns + `,
			(SELECT COUNT(*) FROM documents d WHERE d.parent_folder_id = f.id AND NOT d.is_deleted),
			(SELECT COUNT(*) FROM folders c WHERE c.parent_folder_id = f.id AND NOT c.is_deleted)
		FROM folders f
		WHERE f.owner_user_id = $1 AND f.parent_folder_id IS NOT DISTINCT FROM $2 AND ($3 OR NOT f.is_deleted)
		ORDER BY f.name
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID, parentID, includeDeleted)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return scanFolders(rows, true)
}

// ListAll returns every live folder of the owner, for tree rendering.
func (r *PostgresRepository) ListAll(ctx context.Context, ownerID string) ([]*models.Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders f WHERE f.owner_user_id = $1 AND NOT f.is_deleted ORDER BY f.name`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return scanFolders(rows, false)
}

func (r *PostgresRepository) CountActive(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM folders WHERE owner_user_id = $1 AND NOT is_deleted`, ownerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return n, nil
}

func scanFolders(rows *sql.Rows, withCounts bool) ([]*models.Folder, error) {
	defer rows.Close()

	var result []*models.Folder
	for rows.Next() {
		var f models.Folder
		dest := []any{&f.ID, &f.OwnerID, &f.ParentFolderID, &f.Name, &f.Description, &f.Color,
			&f.IsPublic, &f.IsDeleted, &f.CreatedAt, &f.UpdatedAt}
		if withCounts {
			dest = append(dest, &f.DocumentCount, &f.SubfolderCount)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
		}
		result = append(result, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return result, nil
}
