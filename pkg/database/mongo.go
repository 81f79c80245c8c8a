// Package database opens the MongoDB connection the whole server shares.
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/bistro-boss-server/config"
)

// Mongo bundles the connected client and the application database. It is
// constructed once at boot and handed to the repositories, never reached
// through a package-level singleton, so tests can substitute their own
// stores.
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// Connect dials MongoDB with the configured URI, pings it, and returns the
// handle for the application database.
func Connect(ctx context.Context) (*Mongo, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	serverAPI := options.ServerAPI(options.ServerAPIVersion1).SetStrict(true)
	clientOpts := options.Client().
		ApplyURI(config.MongoURI()).
		SetServerAPIOptions(serverAPI).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(25)

	client, err := mongo.Connect(dialCtx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("database: connect: %w", err)
	}

	if err := client.Ping(dialCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	return &Mongo{
		Client: client,
		DB:     client.Database(config.MongoDB()),
	}, nil
}

// Close disconnects the client, flushing in-flight operations.
func (m *Mongo) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return m.Client.Disconnect(ctx)
}
