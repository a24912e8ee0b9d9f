package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"storefront/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

// Service owns the Postgres connection pool
type Service struct {
	db     *sql.DB
	logger *zap.Logger
}

// New opens a pgx backed pool and verifies it with a ping
func New(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Service, error) {
	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database at %s:%s: %w", cfg.Host, cfg.Port, err)
	}

	logger.Info("Connected to Postgres",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database),
	)

	return &Service{db: db, logger: logger}, nil
}

func (s *Service) DB() *sql.DB {
	return s.db
}

func (s *Service) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Health reports pool statistics for startup logging
func (s *Service) Health(ctx context.Context) map[string]string {
	stats := make(map[string]string)

	if err := s.Ping(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = err.Error()
		return stats
	}

	dbStats := s.db.Stats()
	stats["status"] = "up"
	stats["open_connections"] = fmt.Sprint(dbStats.OpenConnections)
	stats["in_use"] = fmt.Sprint(dbStats.InUse)
	stats["idle"] = fmt.Sprint(dbStats.Idle)
	stats["wait_count"] = fmt.Sprint(dbStats.WaitCount)

	return stats
}

func (s *Service) Close() error {
	s.logger.Info("Disconnected from Postgres")
	return s.db.Close()
}
