package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// defaultTimeout bounds each repository call.
const defaultTimeout = 10 * time.Second

// Config selects the deployment and database backing the document store.
type Config struct {
	URI         string
	Database    string
	AppName     string
	MaxPoolSize uint64
}

// Connect dials the deployment, confirms a primary is reachable and returns
// the client with the selected database.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(5 * time.Second).
		SetRetryWrites(true)
	if cfg.AppName != "" {
		opts.SetAppName(cfg.AppName)
	}
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(dialCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	// Conditional claims must hit the primary.
	if err := client.Ping(dialCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, client.Database(cfg.Database), nil
}

// EnsureIndexes creates the indexes of every collection used by the service.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if err := NewLicenseRepository(db).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("license indexes: %w", err)
	}
	if err := NewRewardRepository(db).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("reward indexes: %w", err)
	}
	if err := NewOperatorRepository(db).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("operator indexes: %w", err)
	}
	return nil
}
