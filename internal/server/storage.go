package server

import (
	"context"
	"fmt"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/repository"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Storage is the set of repositories backing one configured backend
type Storage struct {
	Backend  string
	Products repository.ProductRepository
	Orders   repository.OrderRepository

	ping  func(ctx context.Context) error
	close func() error
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

func (s *Storage) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenStorage connects to the backend named by cfg.Storage.Backend and
// prepares its schema.
func OpenStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Storage, error) {
	switch cfg.Storage.Backend {
	case config.BackendFile:
		return openFileStorage(afero.NewOsFs(), cfg.Storage.FileDir, logger)
	case config.BackendMongo:
		return openMongoStorage(ctx, cfg.Mongo, logger)
	case config.BackendPostgres:
		return openPostgresStorage(ctx, cfg.Database, logger)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
}

func openFileStorage(fs afero.Fs, dir string, logger *zap.Logger) (*Storage, error) {
	store := repository.NewFileStore(fs, dir)
	if err := store.EnsureCollections(); err != nil {
		return nil, fmt.Errorf("failed to prepare file store: %w", err)
	}

	logger.Info("Using file storage", zap.String("dir", dir))

	return &Storage{
		Backend:  config.BackendFile,
		Products: store.Products(),
		Orders:   store.Orders(),
		ping:     store.Ping,
	}, nil
}

func openMongoStorage(ctx context.Context, cfg config.MongoConfig, logger *zap.Logger) (*Storage, error) {
	svc, err := database.NewMongo(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := repository.EnsureMongoIndexes(ctx, svc.Database()); err != nil {
		svc.Close()
		return nil, fmt.Errorf("failed to create mongo indexes: %w", err)
	}

	return &Storage{
		Backend:  config.BackendMongo,
		Products: repository.NewMongoProductRepository(svc.Database()),
		Orders:   repository.NewMongoOrderRepository(svc.Database()),
		ping:     svc.Ping,
		close:    svc.Close,
	}, nil
}

func openPostgresStorage(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Storage, error) {
	svc, err := database.New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Database health check", zap.Any("health", svc.Health(ctx)))

	if _, err := database.RunMigrations(svc.DB(), cfg.MigrationsDir, logger); err != nil {
		svc.Close()
		return nil, err
	}

	return &Storage{
		Backend:  config.BackendPostgres,
		Products: repository.NewProductRepository(svc.DB()),
		Orders:   repository.NewOrderRepository(svc.DB()),
		ping:     svc.Ping,
		close:    svc.Close,
	}, nil
}
