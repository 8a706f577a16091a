// Package app assembles the search stack from configuration. Both the HTTP
// server and the CLI start from here.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/windoze95/shopcompare-api/internal/ai"
	"github.com/windoze95/shopcompare-api/internal/catalog"
	"github.com/windoze95/shopcompare-api/internal/config"
	"github.com/windoze95/shopcompare-api/internal/db"
	"github.com/windoze95/shopcompare-api/internal/logger"
	"github.com/windoze95/shopcompare-api/internal/models"
	"github.com/windoze95/shopcompare-api/internal/repository"
	"github.com/windoze95/shopcompare-api/internal/service"
	"go.uber.org/zap"
)

// App holds the wired services.
type App struct {
	Config  *config.Config
	Catalog []models.Product
	AI      *ai.QueryClient
	History *service.HistoryService
	Search  *service.SearchService

	closers []func() error
}

// New builds an App. The AI credential is resolved once here; without one
// the app runs in local catalog mode.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	if cfg.Prompts == nil {
		prompts, err := config.LoadPrompts(cfg.EnvVars.PromptsPath)
		if err != nil {
			return nil, err
		}
		cfg.Prompts = prompts
	}

	if cfg.EnvVars.CatalogPath != "" {
		products, err := catalog.Load(cfg.EnvVars.CatalogPath)
		if err != nil {
			return nil, err
		}
		a.Catalog = products
	} else {
		a.Catalog = catalog.Default()
	}

	provider, err := ai.NewListingProvider(ctx, cfg.EnvVars.AI)
	if err != nil {
		return nil, err
	}
	if c, ok := provider.(io.Closer); ok {
		a.closers = append(a.closers, c.Close)
	}
	a.AI = ai.NewQueryClient(provider, cfg.Prompts)

	if a.AI.Available() {
		logger.Get().Info("AI search enabled", zap.String("provider", a.AI.ProviderName()))
	} else {
		logger.Get().Info("no AI credential configured, using local catalog")
	}

	repo, closer, err := NewHistoryRepo(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	a.History = service.NewHistoryService(ctx, repo)
	a.Search = service.NewSearchService(a.AI, a.History, a.Catalog)
	return a, nil
}

// NewHistoryRepo opens the history backend named by HISTORY_BACKEND. The
// returned func, if non-nil, releases the backend's connection.
func NewHistoryRepo(ctx context.Context, cfg *config.Config) (repository.HistoryRepo, func() error, error) {
	h := cfg.EnvVars.History

	switch h.Backend {
	case "", "file":
		return repository.NewFileHistoryRepository(h.Dir, h.Namespace), nil, nil

	case "sqlite":
		path := cfg.EnvVars.SQLitePath
		if path == "" {
			path = filepath.Join(h.Dir, "history.db")
		}
		if err := ensureDir(path); err != nil {
			return nil, nil, err
		}
		database, err := db.OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewSQLiteHistoryRepository(database, h.Namespace), database.Close, nil

	case "postgres":
		database, err := db.New(cfg)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := database.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		return repository.NewPostgresHistoryRepository(database, h.Namespace), sqlDB.Close, nil

	case "s3":
		client, err := repository.NewS3Client(ctx, cfg.EnvVars.AWS)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewS3HistoryRepository(client, cfg.EnvVars.AWS.S3Bucket, h.Namespace), nil, nil

	default:
		return nil, nil, fmt.Errorf("invalid history backend %q", h.Backend)
	}
}

// Close releases every resource opened by New.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
