package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/poofware/mono-repo/backend/services/catalog-service/internal/config"
	"github.com/poofware/mono-repo/backend/services/catalog-service/internal/services"
	"github.com/poofware/mono-repo/backend/shared/go-optlock"
	"github.com/poofware/mono-repo/backend/shared/go-repositories"
	"github.com/poofware/mono-repo/backend/shared/go-utils"
)

const (
	maxRetries     = 5
	connectTimeout = 5 * time.Second
	initialBackoff = 500 * time.Millisecond
)

// App struct holds references to config, the DB pool & services.
// DB is nil when the service runs on the in-memory store.
type App struct {
	Config      *config.Config
	DB          *pgxpool.Pool
	BookService services.BookService
}

func NewApp(cfg *config.Config) (*App, error) {
	utils.Logger.Info("Initializing catalog-service App")

	app := &App{Config: cfg}

	var bookRepo repositories.BookRepository
	if cfg.DBUrl != "" {
		dbPool, err := connectWithRetry(cfg.DBUrl)
		if err != nil {
			return nil, err
		}
		app.DB = dbPool
		bookRepo = repositories.NewBookRepository(dbPool, cfg.MaxRetries)
	} else {
		bookRepo = repositories.NewMemoryBookRepository(cfg.MaxRetries)
	}

	app.BookService = services.NewBookService(bookRepo, optlock.NewGuard(cfg.LockField))
	return app, nil
}

// Ping checks the only external dependency, if there is one.
func (a *App) Ping(ctx context.Context) error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Ping(ctx)
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
		utils.Logger.Info("catalog-service DB connection closed.")
	}
}

func connectWithRetry(databaseURL string) (*pgxpool.Pool, error) {
	var (
		dbPool  *pgxpool.Pool
		err     error
		backoff = initialBackoff
	)

	for i := 1; i <= maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		dbPool, err = newDBPool(ctx, databaseURL)
		cancel()
		if err == nil {
			utils.Logger.Infof("catalog-service connected to DB on attempt %d", i)
			return dbPool, nil
		}

		utils.Logger.WithError(err).Warnf(
			"Failed DB connect on attempt %d/%d. Retrying in %v...",
			i, maxRetries, backoff,
		)
		if i == maxRetries {
			break
		}
		time.Sleep(backoff)
		backoff *= 2
	}
	return nil, fmt.Errorf("unable to connect after %d attempts: %w", maxRetries, err)
}

func newDBPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	cfg.MaxConnIdleTime = 2 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second
	return pgxpool.ConnectConfig(ctx, cfg)
}
