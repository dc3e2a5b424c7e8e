package shares

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

var (
	now       = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	grantCols = []string{"id", "document_id", "granted_by", "granted_to", "permission", "share_token",
		"expires_at", "is_active", "created_at"}
)

func TestCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	to := "u2"
	exp := now.Add(time.Hour)
	mock.ExpectQuery(`INSERT INTO share_grants .* RETURNING created_at`).
		WithArgs("g1", "d1", "u1", "u2", "read", "tok", exp).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	g := &models.ShareGrant{ID: "g1", DocumentID: "d1", GrantedBy: "u1", GrantedTo: &to,
		Permission: models.PermissionRead, Token: "tok", ExpiresAt: &exp}
	require.NoError(t, repo.Create(context.Background(), g))
	assert.True(t, g.IsActive)
	assert.Equal(t, now, g.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByToken(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM share_grants WHERE share_token = \$1`).
		WithArgs("tok").
		WillReturnRows(sqlmock.NewRows(grantCols).
			AddRow("g1", "d1", "u1", nil, "write", "tok", nil, true, now))

	g, err := repo.GetByToken(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, models.PermissionWrite, g.Permission)
	assert.Nil(t, g.GrantedTo)
	assert.Nil(t, g.ExpiresAt)

	mock.ExpectQuery(`FROM share_grants WHERE share_token = \$1`).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByToken(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestListUsableForUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`WHERE document_id = \$1 AND is_active AND \(expires_at IS NULL OR expires_at > \$4\) AND \(granted_to = \$2 OR \(granted_to IS NULL AND \$3 <> '' AND share_token = \$3\)\)`).
		WithArgs("d1", "u2", "t2", now).
		WillReturnRows(sqlmock.NewRows(grantCols).
			AddRow("g1", "d1", "u1", "u2", "read", "t1", nil, true, now).
			AddRow("g2", "d1", "u1", nil, "admin", "t2", now.Add(time.Hour), true, now))

	got, err := repo.ListUsableForUser(context.Background(), "d1", "u2", "t2", now)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "u2", *got[0].GrantedTo)
	assert.Equal(t, models.PermissionAdmin, got[1].Permission)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivateAndUpdatePermission(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE share_grants SET permission = \$2 WHERE id = \$1 AND is_active`).
		WithArgs("g1", "write").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE share_grants SET is_active = FALSE WHERE id = \$1 AND is_active`).
		WithArgs("g1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE share_grants SET permission = \$2`).
		WithArgs("g1", "admin").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.UpdatePermission(context.Background(), "g1", models.PermissionWrite))
	require.NoError(t, repo.Deactivate(context.Background(), "g1"))
	assert.ErrorIs(t, repo.UpdatePermission(context.Background(), "g1", models.PermissionAdmin), common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivateExpired(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE share_grants SET is_active = FALSE WHERE is_active AND expires_at IS NOT NULL AND expires_at <= \$1`).
		WithArgs(now).WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.DeactivateExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	mock.ExpectExec(`UPDATE share_grants`).WillReturnError(errors.New("db is down"))
	_, err = repo.DeactivateExpired(context.Background(), now)
	assert.ErrorIs(t, err, common.ErrorStorage)
}

func TestListByDocument_AndDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM share_grants WHERE document_id = \$1 ORDER BY created_at DESC`).
		WithArgs("d1").
		WillReturnRows(sqlmock.NewRows(grantCols).AddRow("g1", "d1", "u1", nil, "read", "t", nil, false, now))
	mock.ExpectExec(`DELETE FROM share_grants WHERE document_id = \$1`).
		WithArgs("d1").WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := repo.ListByDocument(context.Background(), "d1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].IsActive)
	require.NoError(t, repo.DeleteByDocument(context.Background(), "d1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
