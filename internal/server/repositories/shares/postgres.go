// Package shares stores share grants. Grants are deactivated, never
// deleted, except when their document is hard-deleted.
package shares

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/server/models"
)

// PostgresRepository implements grant storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectGrant = `SELECT id, document_id, granted_by, granted_to, permission, share_token,
	expires_at, is_active, created_at FROM share_grants`

func (r *PostgresRepository) Create(ctx context.Context, g *models.ShareGrant) error {
	query := `
		INSERT INTO share_grants (id, document_id, granted_by, granted_to, permission, share_token, expires_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		g.ID, g.DocumentID, g.GrantedBy, g.GrantedTo, string(g.Permission), g.Token, g.ExpiresAt,
	).Scan(&g.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	g.IsActive = true
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.ShareGrant, error) {
	return scanGrant(r.db.QueryRowContext(ctx, selectGrant+` WHERE id = $1`, id))
}

// GetByToken returns the grant whatever its state; callers check Usable.
func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*models.ShareGrant, error) {
	return scanGrant(r.db.QueryRowContext(ctx, selectGrant+` WHERE share_token = $1`, token))
}

// ListUsableForUser returns the grants on documentID that are active, not
// expired at now, and either name userID or name no one and carry token.
// An empty token matches no unnamed grant.
func (r *PostgresRepository) ListUsableForUser(ctx context.Context, documentID, userID, token string, now time.Time) ([]*models.ShareGrant, error) {
	query := selectGrant + `
		WHERE document_id = $1 AND is_active
			AND (expires_at IS NULL OR expires_at > $4)
			AND (granted_to = $2 OR (granted_to IS NULL AND $3 <> '' AND share_token = $3))`
	rows, err := r.db.QueryContext(ctx, query, documentID, userID, token, now)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return scanGrants(rows)
}

// ListByDocument returns every grant of a document, newest first.
func (r *PostgresRepository) ListByDocument(ctx context.Context, documentID string) ([]*models.ShareGrant, error) {
	rows, err := r.db.QueryContext(ctx, selectGrant+` WHERE document_id = $1 ORDER BY created_at DESC`, documentID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return scanGrants(rows)
}

func (r *PostgresRepository) Deactivate(ctx context.Context, id string) error {
	return r.execOne(ctx, `UPDATE share_grants SET is_active = FALSE WHERE id = $1 AND is_active`, id)
}

// UpdatePermission changes the level of an active grant.
func (r *PostgresRepository) UpdatePermission(ctx context.Context, id string, p models.Permission) error {
	return r.execOne(ctx, `UPDATE share_grants SET permission = $2 WHERE id = $1 AND is_active`, id, string(p))
}

// DeactivateExpired switches off every active grant whose expiry is at or
// before now and reports how many were affected.
func (r *PostgresRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE share_grants SET is_active = FALSE WHERE is_active AND expires_at IS NOT NULL AND expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM share_grants WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return nil
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

type scanner interface {
	Scan(dest ...any) error
}

func scanGrant(row scanner) (*models.ShareGrant, error) {
	var (
		g    models.ShareGrant
		perm string
	)
	if err := row.Scan(&g.ID, &g.DocumentID, &g.GrantedBy, &g.GrantedTo, &perm, &g.Token,
		&g.ExpiresAt, &g.IsActive, &g.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	g.Permission = models.Permission(perm)
	return &g, nil
}

func scanGrants(rows *sql.Rows) ([]*models.ShareGrant, error) {
	defer rows.Close()

	var result []*models.ShareGrant
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	return result, nil
}
