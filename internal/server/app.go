// Package server wires the vault together: it opens the database, applies
// migrations, builds the services and runs the gRPC endpoint next to the
// background task queue until the process is signalled to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/logging"
	"github.com/dmitrijs2005/docvault/internal/server/config"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/docvault/internal/server/services"
	"github.com/dmitrijs2005/docvault/internal/server/tasks"
	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/docvault/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	queue    *tasks.Queue
	services *services.Services
}

// OpenDB connects to PostgreSQL through the pgx driver and verifies the
// connection.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return db, nil
}

// NewServices builds the service set over db using the configured secret
// source.
func NewServices(db *sql.DB, rm repomanager.RepositoryManager, dispatcher tasks.Dispatcher, c *config.Config, logger logging.Logger) *services.Services {
	secrets := services.NewHKDFSecretSource(c.KeyEncryptionSecret)
	return services.New(dbx.NewDB(db), rm, secrets, dispatcher, c, logger.With("module", "services"))
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	queue := tasks.NewQueue(logger, c.TaskWorkers, c.TaskQueueSize, c.TaskTimeout)

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		queue:    queue,
		services: NewServices(db, rm, queue, c, logger),
	}, nil
}

// Run serves until SIGINT, SIGTERM or SIGQUIT, or until either the gRPC
// server or the task queue fails. The database is closed last.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	srv := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.services, app.config.SecretKey)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.queue.Run(gctx)
	})
	g.Go(func() error {
		return srv.Run(gctx)
	})

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "app stopped with error", "error", err)
	}

	if cerr := app.db.Close(); cerr != nil {
		app.logger.Error(ctx, "db close error", "error", cerr)
	}
	app.logger.Info(ctx, "App stopped")
	return err
}
