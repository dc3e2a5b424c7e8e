// Package admin implements vaultadmin, the operator command line for
// maintenance jobs that run directly against the vault database.
package admin

import (
	"context"
	"database/sql"
	"os"

	"github.com/dmitrijs2005/docvault/internal/logging"
	"github.com/dmitrijs2005/docvault/internal/server"
	"github.com/dmitrijs2005/docvault/internal/server/config"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/docvault/internal/server/services"
	"github.com/dmitrijs2005/docvault/internal/server/tasks"
)

// Backend is what the commands need from the vault.
type Backend interface {
	Migrate(ctx context.Context) error
	RecomputeQuota(ctx context.Context, userID string) (*models.StorageQuota, error)
	ExpireShares(ctx context.Context) (int64, error)
	FolderTree(ctx context.Context, userID string) ([]*services.FolderNode, error)
	Close() error
}

// Opener connects a Backend for one command invocation.
type Opener func(ctx context.Context, cfg *config.Config) (Backend, error)

type vaultBackend struct {
	db  *sql.DB
	rm  repomanager.RepositoryManager
	svc *services.Services
}

// OpenVault is the production Opener. Side effects run inline, since the
// process exits right after the command.
func OpenVault(ctx context.Context, cfg *config.Config) (Backend, error) {
	db, err := server.OpenDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel).With("module", "vaultadmin")
	rm := repomanager.NewPostgresRepositoryManager()
	svc := server.NewServices(db, rm, tasks.Inline{Logger: logger}, cfg, logger)

	return &vaultBackend{db: db, rm: rm, svc: svc}, nil
}

func (b *vaultBackend) Migrate(ctx context.Context) error {
	return b.rm.RunMigrations(ctx, b.db)
}

func (b *vaultBackend) RecomputeQuota(ctx context.Context, userID string) (*models.StorageQuota, error) {
	return b.svc.Quota.Recompute(ctx, userID)
}

func (b *vaultBackend) ExpireShares(ctx context.Context) (int64, error) {
	return b.svc.Shares.ExpireStale(ctx)
}

func (b *vaultBackend) FolderTree(ctx context.Context, userID string) ([]*services.FolderNode, error) {
	return b.svc.Folders.Tree(ctx, userID)
}

func (b *vaultBackend) Close() error {
	return b.db.Close()
}
