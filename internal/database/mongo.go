package database

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// MongoService owns the Mongo client and the storefront database handle
type MongoService struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

func NewMongo(ctx context.Context, cfg config.MongoConfig, logger *zap.Logger) (*MongoService, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	logger.Info("Connected to MongoDB", zap.String("database", cfg.Database))

	return &MongoService{
		client: client,
		db:     client.Database(cfg.Database),
		logger: logger,
	}, nil
}

func (s *MongoService) Database() *mongo.Database {
	return s.db
}

func (s *MongoService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoService) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("Disconnected from MongoDB")
	return s.client.Disconnect(ctx)
}
