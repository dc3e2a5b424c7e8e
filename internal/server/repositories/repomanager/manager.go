package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/activity"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/documents"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/favorites"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/folders"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/keys"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/quotas"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/recents"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/shares"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/versions"
)

// RepositoryManager vends repositories bound to a DBTX, so the same
// service code runs on the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Keys(db dbx.DBTX) keys.Repository
	Documents(db dbx.DBTX) documents.Repository
	Versions(db dbx.DBTX) versions.Repository
	Folders(db dbx.DBTX) folders.Repository
	Shares(db dbx.DBTX) shares.Repository
	Quotas(db dbx.DBTX) quotas.Repository
	Favorites(db dbx.DBTX) favorites.Repository
	Recents(db dbx.DBTX) recents.Repository
	Activity(db dbx.DBTX) activity.Repository
}
